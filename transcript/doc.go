// Package transcript orchestrates diarization and per-segment transcription
// into a persisted, time-ordered, speaker-attributed transcript.
//
// A request moves through FetchClip, Diarize, then either per-segment
// transcription or a single whole-clip fallback segment, and finally
// Persist. Batch mode returns the full list; stream mode hands each segment
// to the consumer as soon as its text is attached and persists only once the
// stream is drained.
//
// Stores live in subpackages:
//
//   - gormstore: transcripts table in the service database
//   - redisstore: JSON values in Redis without expiry
package transcript
