// Package api exposes clip management and transcription over HTTP.
//
// Routes (mounted under /api):
//
//	POST   /audio                          multipart "file" -> clip metadata
//	GET    /audio/:clip_id                 clip metadata
//	DELETE /audio/:clip_id                 remove blob and metadata
//	POST   /transcribe?clip_id=            {"segments":[{speaker,start,end,text}]}
//	POST   /transcribe/stream?clip_id=     NDJSON, one {"segment":{...}} per line
//	GET    /transcription/:clip_id         stored or freshly computed transcript
//	GET    /transcription/stream/:clip_id  NDJSON, {"segments":[...]} batches of 10
//	DELETE /transcription/:clip_id         204, or 404 when nothing is stored
//
// Streaming responses are flushed after every line. A failure after the first
// line is reported as a final {"error":{...}} line.
package api
