// Package log records DNS-SD discovery events.
//
// Operational logging goes through slog. This package is separate: it keeps a
// machine-readable trace of every discovery session, the replies the
// library delivered to it and the errors it saw, so a run can be inspected
// afterwards with the bonjour-log tool.
//
// # Basic Usage
//
// Components accept a Logger in their config:
//
//	// Development: mirror events to the console
//	cfg.EventLog = log.NewSlogAdapter(slog.Default())
//
//	// Production: append to a binary file
//	cfg.EventLog, _ = log.NewFileLogger("/var/log/bonjour/echo.blog")
//
//	// Both
//	cfg.EventLog = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Every Event belongs to a session (one Advertiser, Browser or Resolver
// run) and an Operation. Its Category selects the payload:
//   - Reply: a callback delivered by the discovery library (ReplyEvent)
//   - State: the session started or stopped (StateEvent)
//   - Error: an error detected by the component (ErrorEventData)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys, using the
// .blog extension.
package log
