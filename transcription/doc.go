// Package transcription converts spans of a clip into text.
//
// A Provider wraps one speech-to-text model; Adapter applies the clip span
// policy on top of it and never fails its caller: errors are logged and
// produce empty text.
//
// # Backends
//
//   - transcription/whisper: faster-whisper HTTP sidecar
//   - transcription/openai: OpenAI-compatible /audio/transcriptions API
package transcription
