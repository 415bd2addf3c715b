package transcript

import (
	"context"

	"github.com/kbukum/scribe/media"
)

// Repository persists transcripts keyed by clip id.
type Repository interface {
	// Save stores segments for clipID, replacing any previous transcript.
	Save(ctx context.Context, clipID string, segments []media.Segment) error
	// List returns the stored segments ordered by start, or an empty slice.
	List(ctx context.Context, clipID string) ([]media.Segment, error)
	// Delete removes the transcript and reports whether one existed.
	Delete(ctx context.Context, clipID string) (bool, error)
}

// ClipSource resolves a clip id to a clip readable by the audio tools.
// Missing clips yield ClipNotFound.
type ClipSource interface {
	Fetch(ctx context.Context, clipID string) (media.Clip, error)
}
