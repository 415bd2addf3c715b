// Package logger provides structured logging on top of zerolog.
//
// Loggers are created from a Config and carry a service name. Components take
// a tagged child via WithComponent; request-scoped code enriches with
// WithContext to pick up request and trace ids.
//
//	log := logger.New(&cfg, "scribe").WithComponent("diarization")
//	log.Info("chunk diarized", logger.Fields("chunk", 2, "turns", 7))
package logger
