// Package log provides Pond's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. The Logger methods build an
// Entry and write it through the logger's formatter and outputs directly.
// Each BaseLogger also builds a log/slog handler over the same formatter
// and outputs; entries from that handler additionally carry the caller.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.WithComponent("server").With(log.String("addr", ":5480"))
//	l.Info("listening", log.Int("capacity", 65536))
package log
