// Package redisstore keeps transcripts in Redis as JSON values without
// expiry, so a stored transcript lives until it is deleted.
package redisstore

import (
	"context"

	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/redis"
	"github.com/kbukum/scribe/transcript"
)

// Store implements transcript.Repository on Redis.
type Store struct {
	values *redis.TypedStore[[]media.Segment]
}

// New creates a Store writing keys "<prefix>:transcript:<clip_id>".
func New(client *redis.Client, prefix string) *Store {
	ns := "transcript"
	if prefix != "" {
		ns = prefix + ":" + ns
	}
	return &Store{values: redis.NewTypedStore[[]media.Segment](client, ns)}
}

// Key returns the Redis key holding clipID's transcript.
func (s *Store) Key(clipID string) string { return s.values.Key(clipID) }

func (s *Store) Save(ctx context.Context, clipID string, segments []media.Segment) error {
	return s.values.Save(ctx, clipID, segments, 0)
}

func (s *Store) List(ctx context.Context, clipID string) ([]media.Segment, error) {
	segs, ok, err := s.values.Load(ctx, clipID)
	if err != nil || !ok {
		return nil, err
	}
	media.SortByStart(segs)
	return segs, nil
}

func (s *Store) Delete(ctx context.Context, clipID string) (bool, error) {
	return s.values.Delete(ctx, clipID)
}

var _ transcript.Repository = (*Store)(nil)
