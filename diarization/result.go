package diarization

import "github.com/kbukum/scribe/media"

// Result is the outcome of diarizing one clip: either ordered segments or
// the reason diarization could not be used.
type Result struct {
	Segments []media.Segment
	Failure  error
}

// Success wraps segments produced by a completed diarization.
func Success(segments []media.Segment) Result {
	return Result{Segments: segments}
}

// Fail wraps the reason diarization failed.
func Fail(err error) Result {
	return Result{Failure: err}
}

// Succeeded reports whether the segments can be used.
func (r Result) Succeeded() bool { return r.Failure == nil }

// Failed reports whether the caller must fall back.
func (r Result) Failed() bool { return r.Failure != nil }
