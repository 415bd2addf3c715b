// Package diarization splits audio into speaker-attributed segments.
//
// A Provider wraps one diarization model. Pipeline runs a provider over a
// clip chunk by chunk: chunks come from silence detection, are diarized in
// bounded parallel batches and are merged back into one stream ordered by
// start time.
//
// # Backends
//
//   - diarization/pyannote: Pyannote HTTP sidecar
//   - diarization/single: one speaker for the whole input, no model
//
// # Usage
//
//	reg := diarization.NewRegistry()
//	reg.RegisterFactory(pyannote.ProviderName, pyannote.Factory)
//	p, err := reg.Build(cfg.Provider, cfg.Sidecar)
//	pipe := diarization.NewPipeline(diarization.Serialize(p, cfg.Lanes), detector, extractor, cfg)
//	res := pipe.Diarize(ctx, clip)
//
// Speaker labels are local to the chunk that produced them; "SPEAKER_01" in
// two chunks need not be the same person.
package diarization
