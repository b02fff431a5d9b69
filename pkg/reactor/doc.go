// Package reactor implements a single-goroutine, readiness-driven event loop.
//
// Readers are registered with AddReader and expose a raw file descriptor.
// Each loop iteration polls every registered descriptor (level-triggered)
// and calls DoRead on the ones that are readable. All DoRead,
// ConnectionLost and CallFromLoop functions run on the goroutine that calls
// Iterate or Run, so code driven by the reactor needs no locking of its own.
//
// # Lifecycle
//
//	r, err := reactor.New(reactor.Config{})
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	_ = r.AddReader(desc)
//	err = r.Run(ctx) // returns when ctx is done or Stop is called
//
// When Run returns, every remaining reader is removed and receives
// ConnectionLost(ErrLoopShutdown).
//
// # Cross-goroutine calls
//
// Code running on another goroutine (signal handlers, an interactive shell)
// must not call into reactor-driven components directly. Queue the call with
// CallFromLoop instead; it wakes the poll and runs the function on the loop
// goroutine before the next dispatch.
package reactor
