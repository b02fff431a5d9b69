package log

// Logger receives discovery events.
// A nil Logger field in a component config means NoopLogger.
type Logger interface {
	// Log records one event. It is called on the event loop goroutine, so
	// implementations must not block and must be safe for concurrent use when
	// shared between loops.
	Log(event Event)
}

// NoopLogger drops every event. The zero value is ready to use.
type NoopLogger struct{}

// Log drops the event.
func (NoopLogger) Log(Event) {}

// OrNoop returns l, or NoopLogger when l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
