package dnssd

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/mash-protocol/bonjour-go/pkg/reactor"
)

// reply is one queued callback invocation. more carries FlagsMoreComing when
// further replies remain queued at dispatch time.
type reply func(more Flags)

// serviceRef is the ServiceRef shared by all backends. Replies are queued by
// backend goroutines and dispatched one at a time by ProcessResult. The read
// end of a pipe holds one byte while the queue is non-empty.
type serviceRef struct {
	id string

	mu       sync.Mutex
	rfd, wfd int
	queue    []reply
	closed   bool
	onClose  []func()
}

// Compile-time interface satisfaction check.
var _ ServiceRef = (*serviceRef)(nil)

func newServiceRef() (*serviceRef, error) {
	rfd, wfd, err := reactor.NewPipe()
	if err != nil {
		return nil, err
	}
	return &serviceRef{
		id:  uuid.NewString(),
		rfd: rfd,
		wfd: wfd,
	}, nil
}

// ID returns the operation UUID.
func (r *serviceRef) ID() string {
	return r.id
}

// Fileno returns the readiness descriptor, or -1 after Close.
func (r *serviceRef) Fileno() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return -1
	}
	return r.rfd
}

// push queues a reply. Replies pushed after Close are dropped.
func (r *serviceRef) push(fn reply) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.queue = append(r.queue, fn)
	if len(r.queue) == 1 {
		_, _ = unix.Write(r.wfd, []byte{1})
	}
}

// pending returns the number of queued replies.
func (r *serviceRef) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// ProcessResult dispatches the oldest queued reply, if any.
func (r *serviceRef) ProcessResult() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if len(r.queue) == 0 {
		r.mu.Unlock()
		return nil
	}

	fn := r.queue[0]
	r.queue[0] = nil
	r.queue = r.queue[1:]

	var more Flags
	if len(r.queue) > 0 {
		more = FlagsMoreComing
	} else {
		var buf [16]byte
		for {
			n, err := unix.Read(r.rfd, buf[:])
			if n <= 0 || err != nil {
				break
			}
		}
	}
	r.mu.Unlock()

	fn(more)
	return nil
}

// addOnClose registers fn to run once on Close. If the ref is already
// closed fn runs immediately.
func (r *serviceRef) addOnClose(fn func()) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		fn()
		return
	}
	r.onClose = append(r.onClose, fn)
	r.mu.Unlock()
}

// Close stops the operation. Subsequent calls are no-ops.
func (r *serviceRef) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.queue = nil
	err := unix.Close(r.rfd)
	if werr := unix.Close(r.wfd); err == nil {
		err = werr
	}
	r.rfd, r.wfd = -1, -1
	hooks := r.onClose
	r.onClose = nil
	r.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return err
}

// isClosed reports whether Close has been called.
func (r *serviceRef) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
