//go:build unix

package reactor

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

type readyState uint8

const (
	readyNone readyState = iota
	readyRead
	readyHangup
)

// waker is a self-pipe used to interrupt a blocking poll.
type waker struct {
	mu       sync.Mutex
	rfd, wfd int
	signaled bool
	closed   bool
}

func newWaker() (*waker, error) {
	rfd, wfd, err := NewPipe()
	if err != nil {
		return nil, err
	}
	return &waker{rfd: rfd, wfd: wfd}, nil
}

// NewPipe returns a non-blocking, close-on-exec pipe as (read, write).
func NewPipe() (int, int, error) {
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return -1, -1, err
	}
	for _, fd := range p {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(p[0])
			unix.Close(p[1])
			return -1, -1, err
		}
	}
	return p[0], p[1], nil
}

func (w *waker) signal() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.signaled {
		return
	}
	// EAGAIN means the pipe is already readable.
	_, _ = unix.Write(w.wfd, []byte{1})
	w.signaled = true
}

func (w *waker) drain() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	var buf [64]byte
	for {
		n, err := unix.Read(w.rfd, buf[:])
		if n <= 0 || err != nil {
			break
		}
	}
	w.signaled = false
}

// poll waits for read readiness on fds (and the wake pipe) and returns one
// state per fd.
func (w *waker) poll(fds []int, timeout time.Duration) ([]readyState, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrClosed
	}
	wakeFd := w.rfd
	w.mu.Unlock()

	pfds := make([]unix.PollFd, len(fds)+1)
	pfds[0] = unix.PollFd{Fd: int32(wakeFd), Events: unix.POLLIN}
	for i, fd := range fds {
		pfds[i+1] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
	}

	ms := pollTimeout(timeout)
	for {
		_, err := unix.Poll(pfds, ms)
		if err == nil {
			break
		}
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return nil, err
	}

	if pfds[0].Revents != 0 {
		w.drain()
	}

	states := make([]readyState, len(fds))
	for i := range fds {
		rev := pfds[i+1].Revents
		switch {
		case rev&unix.POLLIN != 0:
			states[i] = readyRead
		case rev&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0:
			states[i] = readyHangup
		}
	}
	return states, nil
}

func (w *waker) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	err := unix.Close(w.rfd)
	if werr := unix.Close(w.wfd); err == nil {
		err = werr
	}
	return err
}

// pollTimeout converts a duration to poll(2) milliseconds, rounding up so a
// short positive timeout does not degrade into a busy loop.
func pollTimeout(d time.Duration) int {
	if d < 0 {
		return -1
	}
	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	return int(ms)
}
