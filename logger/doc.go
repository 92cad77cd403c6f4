// Package logger provides zerolog-backed structured logging for lazyseq
// tools.
//
// Sequence packages never log by themselves. Logging enters through
// observability.WithLogging wrappers and the lazyseq command.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	logger.Init(cfg.Logging, "lazyseq", os.Stderr)
//	logger.RegisterDefaults("chain")
//	logger.Get("chain").Info("chain finished", logger.Fields("values", 12))
package logger
