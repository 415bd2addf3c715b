// Package clip manages uploaded audio clips: the blob in object storage and
// its metadata row in the database.
package clip

import (
	"context"
	"time"

	"github.com/kbukum/scribe/media"
)

// Record is the persisted metadata of an uploaded clip. Immutable once stored.
type Record struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	StorageKey  string    `json:"storage_key"`
	SizeBytes   int64     `json:"size_bytes"`
	Duration    float64   `json:"duration"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName binds Record to the audio_clips table.
func (Record) TableName() string { return "audio_clips" }

// Repository persists clip metadata.
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	// Get returns ClipNotFound when id has no record.
	Get(ctx context.Context, id string) (*Record, error)
	// Delete reports whether a record existed.
	Delete(ctx context.Context, id string) (bool, error)
}

// Media converts the record into the clip handed to the audio pipeline. path
// must be readable by the audio tools.
func (r *Record) Media(path string) media.Clip {
	return media.Clip{ID: r.ID, Path: path, Duration: r.Duration}
}
