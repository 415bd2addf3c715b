package errors

import (
	"fmt"
	"net/http"
)

// ClipNotFound is returned when an audio clip id has no stored clip.
func ClipNotFound(clipID string) *AppError {
	return &AppError{
		Code: ErrCodeClipNotFound, Message: fmt.Sprintf("Audio clip %s was not found.", clipID),
		HTTPStatus: http.StatusNotFound, Details: map[string]any{"clip_id": clipID},
	}
}

// TranscriptNotFound is returned when deleting or reading a transcript that does not exist.
func TranscriptNotFound(clipID string) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptNotFound, Message: fmt.Sprintf("No transcription stored for clip %s.", clipID),
		HTTPStatus: http.StatusNotFound, Details: map[string]any{"clip_id": clipID},
	}
}

// DiarizationUnavailable signals that the diarizer cannot serve any request.
func DiarizationUnavailable(provider string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDiarizationUnavailable, Message: fmt.Sprintf("Diarization provider %s is unavailable.", provider),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true, Cause: cause,
		Details: map[string]any{"provider": provider},
	}
}

// ChunkProcessing wraps a failure local to one diarization chunk.
func ChunkProcessing(index int, start, end float64, cause error) *AppError {
	return &AppError{
		Code: ErrCodeChunkProcessing, Message: fmt.Sprintf("Chunk %d [%.2f, %.2f] could not be diarized.", index, start, end),
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
		Details: map[string]any{"chunk": index, "start": start, "end": end},
	}
}

// TranscriptionFailed wraps a failure to transcribe one span.
func TranscriptionFailed(start, end float64, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionFailed, Message: fmt.Sprintf("Span [%.2f, %.2f] could not be transcribed.", start, end),
		HTTPStatus: http.StatusBadGateway, Retryable: true, Cause: cause,
		Details: map[string]any{"start": start, "end": end},
	}
}

// DeletionFailed is returned when a store could not remove an existing record.
func DeletionFailed(resource, id string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDeletionFailed, Message: fmt.Sprintf("The %s %s could not be deleted.", resource, id),
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
		Details: map[string]any{"resource": resource, "id": id},
	}
}

// NoUsableChunks is returned when a clip yields no chunk long enough to diarize.
func NoUsableChunks(clipID string) *AppError {
	return &AppError{
		Code: ErrCodeNoUsableChunks, Message: fmt.Sprintf("Audio clip %s has no speech chunk long enough to diarize.", clipID),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{"clip_id": clipID},
	}
}
