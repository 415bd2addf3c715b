package clip

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/scribe/audio"
	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/storage"
)

// Upload describes an incoming audio file.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Service stores clips and hands out local paths for the audio tools.
type Service struct {
	store    storage.Storage
	repo     Repository
	prober   audio.DurationProber
	cacheDir string
	maxSize  int64
	log      *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithProber probes clip duration on upload.
func WithProber(p audio.DurationProber) Option {
	return func(s *Service) { s.prober = p }
}

// WithCacheDir sets where remote blobs are downloaded for processing.
func WithCacheDir(dir string) Option {
	return func(s *Service) { s.cacheDir = dir }
}

// WithMaxSize rejects uploads larger than n bytes.
func WithMaxSize(n int64) Option {
	return func(s *Service) { s.maxSize = n }
}

// NewService creates a clip service.
func NewService(store storage.Storage, repo Repository, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		repo:     repo,
		cacheDir: filepath.Join(os.TempDir(), "scribe-clips"),
		log:      log.WithComponent("clip"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StorageKey returns the object key for a clip id and original filename.
func StorageKey(id, filename string) string {
	return "clips/" + id + strings.ToLower(path.Ext(filename))
}

// Upload stores the blob and its metadata and returns the new record. The
// duration is probed best effort; zero means unknown.
func (s *Service) Upload(ctx context.Context, in Upload) (*Record, error) {
	id := uuid.NewString()
	rec := &Record{
		ID:          id,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		StorageKey:  StorageKey(id, in.Filename),
		CreatedAt:   time.Now().UTC(),
	}

	body := in.Body
	if s.maxSize > 0 {
		body = io.LimitReader(body, s.maxSize+1)
	}
	counter := &countingReader{r: body}
	if err := s.store.Upload(ctx, rec.StorageKey, counter); err != nil {
		return nil, apperrors.StorageError("upload", err)
	}
	rec.SizeBytes = counter.n

	if s.maxSize > 0 && counter.n > s.maxSize {
		_ = s.store.Delete(ctx, rec.StorageKey)
		return nil, apperrors.InvalidInput("file", fmt.Sprintf("file exceeds %d bytes", s.maxSize))
	}
	if counter.n == 0 {
		_ = s.store.Delete(ctx, rec.StorageKey)
		return nil, apperrors.InvalidInput("file", "file is empty")
	}

	if s.prober != nil {
		if p, err := s.localPath(ctx, rec); err == nil {
			if d, err := s.prober.Probe(ctx, p); err == nil {
				rec.Duration = d
			} else {
				s.log.Warn("duration probe failed", logger.Fields(logger.FieldClipID, id, logger.FieldError, err.Error()))
			}
		}
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		_ = s.store.Delete(ctx, rec.StorageKey)
		return nil, err
	}
	s.log.Info("clip uploaded", logger.Fields(
		logger.FieldClipID, id,
		"size_bytes", rec.SizeBytes,
		"duration", rec.Duration,
	))
	return rec, nil
}

// Get returns the clip record or ClipNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	return s.repo.Get(ctx, id)
}

// Fetch returns the clip with a local path ready for the audio tools.
func (s *Service) Fetch(ctx context.Context, id string) (media.Clip, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return media.Clip{}, err
	}
	p, err := s.localPath(ctx, rec)
	if err != nil {
		return media.Clip{}, err
	}
	return rec.Media(p), nil
}

// Delete removes the metadata and the blob. Transcripts are left untouched.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperrors.DeletionFailed("audio clip", id, err)
	}
	if !existed {
		return apperrors.ClipNotFound(id)
	}
	if err := s.store.Delete(ctx, rec.StorageKey); err != nil {
		s.log.Warn("blob delete failed", logger.Fields(logger.FieldClipID, id, logger.FieldError, err.Error()))
	}
	_ = os.Remove(s.cachePath(rec))
	return nil
}

// localPath returns a readable file for rec, downloading remote blobs into
// the cache directory on first use.
func (s *Service) localPath(ctx context.Context, rec *Record) (string, error) {
	if lp, ok := s.store.(storage.LocalPather); ok {
		return lp.LocalPath(rec.StorageKey), nil
	}

	dst := s.cachePath(rec)
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	}
	if err := os.MkdirAll(s.cacheDir, 0o750); err != nil {
		return "", apperrors.StorageError("cache", err)
	}

	rc, err := s.store.Download(ctx, rec.StorageKey)
	if err != nil {
		return "", apperrors.StorageError("download", err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(s.cacheDir, rec.ID+"-*.part")
	if err != nil {
		return "", apperrors.StorageError("cache", err)
	}
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", apperrors.StorageError("download", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", apperrors.StorageError("cache", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", apperrors.StorageError("cache", err)
	}
	return dst, nil
}

func (s *Service) cachePath(rec *Record) string {
	return filepath.Join(s.cacheDir, path.Base(rec.StorageKey))
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
