package reactor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval bounds how long Run blocks in a single poll.
const DefaultPollInterval = 500 * time.Millisecond

// Reactor errors.
var (
	// ErrLoopShutdown is passed to ConnectionLost when the loop stops.
	ErrLoopShutdown = errors.New("reactor shut down")

	// ErrConnectionDone is passed to ConnectionLost when a descriptor
	// hangs up or reports an invalid file descriptor.
	ErrConnectionDone = errors.New("connection done")

	// ErrClosed is returned when using a closed reactor.
	ErrClosed = errors.New("reactor closed")
)

// ReadDescriptor is a source of read readiness.
type ReadDescriptor interface {
	// Fileno returns the file descriptor to poll, or a negative value if the
	// descriptor is no longer valid.
	Fileno() int

	// DoRead is called when the descriptor is readable. A non-nil error
	// removes the reader and is passed to ConnectionLost.
	DoRead() error

	// ConnectionLost is called once the reader has been removed by the
	// reactor itself (error, hang-up or shutdown).
	ConnectionLost(reason error)
}

// Config configures a Reactor.
type Config struct {
	// PollInterval is the maximum time Run blocks waiting for readiness.
	// Default: 500ms.
	PollInterval time.Duration

	// Logger for operational logging (optional).
	Logger *slog.Logger
}

// Reactor dispatches read readiness to registered descriptors.
type Reactor struct {
	config Config
	logger *slog.Logger

	mu      sync.Mutex
	readers map[ReadDescriptor]struct{}
	order   []ReadDescriptor
	calls   []func()
	closed  bool

	wake *waker

	// stopCh is replaced on every Run.
	stopMu sync.Mutex
	stopCh chan struct{}
}

// New creates a reactor.
func New(config Config) (*Reactor, error) {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w, err := newWaker()
	if err != nil {
		return nil, fmt.Errorf("failed to create wake pipe: %w", err)
	}

	return &Reactor{
		config:  config,
		logger:  logger,
		readers: make(map[ReadDescriptor]struct{}),
		wake:    w,
	}, nil
}

// AddReader registers d for read readiness. Adding a reader twice is a no-op.
func (r *Reactor) AddReader(d ReadDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if _, exists := r.readers[d]; exists {
		return nil
	}
	r.readers[d] = struct{}{}
	r.order = append(r.order, d)
	r.wake.signal()
	return nil
}

// RemoveReader unregisters d. Removing an unknown reader is a no-op.
// ConnectionLost is not called.
func (r *Reactor) RemoveReader(d ReadDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(d)
}

func (r *Reactor) removeLocked(d ReadDescriptor) bool {
	if _, exists := r.readers[d]; !exists {
		return false
	}
	delete(r.readers, d)
	for i, o := range r.order {
		if o == d {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Readers returns the registered readers in registration order.
func (r *Reactor) Readers() []ReadDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ReadDescriptor, len(r.order))
	copy(out, r.order)
	return out
}

// IsReading reports whether d is registered.
func (r *Reactor) IsReading(d ReadDescriptor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.readers[d]
	return ok
}

// CallFromLoop queues fn to run on the loop goroutine at the start of the
// next iteration. It is safe to call from any goroutine.
func (r *Reactor) CallFromLoop(fn func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.calls = append(r.calls, fn)
	r.wake.signal()
	return nil
}

// Iterate runs queued calls, waits up to timeout for readiness and
// dispatches DoRead to every ready descriptor. A zero timeout polls without
// blocking; a negative timeout blocks until something is ready.
func (r *Reactor) Iterate(timeout time.Duration) error {
	if r.runCalls() {
		// Queued work may have registered readers; check readiness without
		// blocking so the calls are not delayed by a full poll interval.
		timeout = 0
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	snapshot := make([]ReadDescriptor, len(r.order))
	copy(snapshot, r.order)
	r.mu.Unlock()

	var invalid []ReadDescriptor
	fds := make([]int, 0, len(snapshot))
	polled := make([]ReadDescriptor, 0, len(snapshot))
	for _, d := range snapshot {
		fd := d.Fileno()
		if fd < 0 {
			invalid = append(invalid, d)
			continue
		}
		fds = append(fds, fd)
		polled = append(polled, d)
	}

	for _, d := range invalid {
		r.drop(d, ErrConnectionDone)
	}

	ready, err := r.wake.poll(fds, timeout)
	if err != nil {
		return fmt.Errorf("poll failed: %w", err)
	}

	for i, state := range ready {
		d := polled[i]
		switch state {
		case readyNone:
			continue
		case readyHangup:
			r.drop(d, ErrConnectionDone)
			continue
		}

		// An earlier callback in this pass may have removed d.
		if !r.IsReading(d) {
			continue
		}
		if err := d.DoRead(); err != nil {
			r.drop(d, err)
		}
	}

	r.runCalls()
	return nil
}

// drop removes d and notifies it, unless something else removed it first.
func (r *Reactor) drop(d ReadDescriptor, reason error) {
	r.mu.Lock()
	removed := r.removeLocked(d)
	r.mu.Unlock()

	if removed {
		r.logger.Debug("reader removed", "fd", d.Fileno(), "reason", reason)
		d.ConnectionLost(reason)
	}
}

// runCalls executes queued calls and reports whether any ran.
func (r *Reactor) runCalls() bool {
	r.mu.Lock()
	calls := r.calls
	r.calls = nil
	r.mu.Unlock()

	for _, fn := range calls {
		fn()
	}
	return len(calls) > 0
}

// Run iterates until ctx is done or Stop is called, then disconnects every
// remaining reader with ErrLoopShutdown.
func (r *Reactor) Run(ctx context.Context) error {
	stopCh := make(chan struct{})
	r.stopMu.Lock()
	r.stopCh = stopCh
	r.stopMu.Unlock()

	defer r.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stopCh:
			return nil
		default:
		}

		if err := r.Iterate(r.config.PollInterval); err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
	}
}

// Stop makes a running Run return after its current iteration.
func (r *Reactor) Stop() {
	r.stopMu.Lock()
	defer r.stopMu.Unlock()

	if r.stopCh != nil {
		close(r.stopCh)
		r.stopCh = nil
	}
	r.wake.signal()
}

// shutdown removes all readers, notifying each with ErrLoopShutdown.
func (r *Reactor) shutdown() {
	r.runCalls()

	r.mu.Lock()
	readers := r.order
	r.order = nil
	r.readers = make(map[ReadDescriptor]struct{})
	r.mu.Unlock()

	for _, d := range readers {
		d.ConnectionLost(ErrLoopShutdown)
	}
}

// Close shuts the reactor down and releases its wake pipe. Remaining
// readers receive ConnectionLost(ErrLoopShutdown). Close is idempotent.
func (r *Reactor) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	r.shutdown()

	r.mu.Lock()
	r.closed = true
	r.calls = nil
	r.mu.Unlock()

	return r.wake.close()
}
