package errors

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
)

// Request errors
const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Internal errors
const (
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError   ErrorCode = "DATABASE_ERROR"
	ErrCodeStorageError    ErrorCode = "STORAGE_ERROR"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Transcription domain
const (
	ErrCodeClipNotFound           ErrorCode = "CLIP_NOT_FOUND"
	ErrCodeTranscriptNotFound     ErrorCode = "TRANSCRIPT_NOT_FOUND"
	ErrCodeDiarizationUnavailable ErrorCode = "DIARIZATION_UNAVAILABLE"
	ErrCodeChunkProcessing        ErrorCode = "CHUNK_PROCESSING_FAILED"
	ErrCodeTranscriptionFailed    ErrorCode = "TRANSCRIPTION_FAILED"
	ErrCodeDeletionFailed         ErrorCode = "DELETION_FAILED"
	ErrCodeNoUsableChunks         ErrorCode = "NO_USABLE_CHUNKS"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable:     true,
	ErrCodeTimeout:                true,
	ErrCodeRateLimited:            true,
	ErrCodeDatabaseError:          true,
	ErrCodeStorageError:           true,
	ErrCodeExternalService:        true,
	ErrCodeDiarizationUnavailable: true,
}

// IsRetryableCode reports whether code describes a transient failure.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
