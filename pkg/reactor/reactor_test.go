package reactor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// pipeReader is a ReadDescriptor over the read end of a pipe.
type pipeReader struct {
	rfd, wfd int
	reads    int
	lost     []error
	readErr  error
	onRead   func()
}

func newPipeReader(t *testing.T) *pipeReader {
	t.Helper()
	rfd, wfd, err := NewPipe()
	require.NoError(t, err)
	p := &pipeReader{rfd: rfd, wfd: wfd}
	t.Cleanup(func() {
		if p.rfd >= 0 {
			unix.Close(p.rfd)
		}
		if p.wfd >= 0 {
			unix.Close(p.wfd)
		}
	})
	return p
}

func (p *pipeReader) Fileno() int { return p.rfd }

func (p *pipeReader) DoRead() error {
	var buf [1]byte
	_, _ = unix.Read(p.rfd, buf[:])
	p.reads++
	if p.onRead != nil {
		p.onRead()
	}
	return p.readErr
}

func (p *pipeReader) ConnectionLost(reason error) { p.lost = append(p.lost, reason) }

func (p *pipeReader) poke(t *testing.T) {
	t.Helper()
	_, err := unix.Write(p.wfd, []byte{1})
	require.NoError(t, err)
}

func newTestReactor(t *testing.T) *Reactor {
	t.Helper()
	r, err := New(Config{PollInterval: 20 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestReactorDispatchesReadableDescriptor(t *testing.T) {
	r := newTestReactor(t)
	p := newPipeReader(t)
	require.NoError(t, r.AddReader(p))

	p.poke(t)
	require.NoError(t, r.Iterate(time.Second))

	assert.Equal(t, 1, p.reads)
	assert.Empty(t, p.lost)
}

func TestReactorIdleIterateDoesNotDispatch(t *testing.T) {
	r := newTestReactor(t)
	p := newPipeReader(t)
	require.NoError(t, r.AddReader(p))

	require.NoError(t, r.Iterate(10*time.Millisecond))
	assert.Equal(t, 0, p.reads)
}

func TestReactorLevelTriggered(t *testing.T) {
	r := newTestReactor(t)
	p := newPipeReader(t)
	require.NoError(t, r.AddReader(p))

	// Two bytes, one consumed per DoRead: readiness persists.
	p.poke(t)
	p.poke(t)
	require.NoError(t, r.Iterate(time.Second))
	require.NoError(t, r.Iterate(time.Second))
	require.NoError(t, r.Iterate(10*time.Millisecond))

	assert.Equal(t, 2, p.reads)
}

func TestReactorRemoveReader(t *testing.T) {
	r := newTestReactor(t)
	p := newPipeReader(t)
	require.NoError(t, r.AddReader(p))
	assert.True(t, r.IsReading(p))

	r.RemoveReader(p)
	r.RemoveReader(p)
	assert.False(t, r.IsReading(p))

	p.poke(t)
	require.NoError(t, r.Iterate(10*time.Millisecond))
	assert.Equal(t, 0, p.reads)
	assert.Empty(t, p.lost, "RemoveReader must not call ConnectionLost")
}

func TestReactorAddReaderTwiceIsNoop(t *testing.T) {
	r := newTestReactor(t)
	p := newPipeReader(t)
	require.NoError(t, r.AddReader(p))
	require.NoError(t, r.AddReader(p))

	assert.Len(t, r.Readers(), 1)
}

func TestReactorDoReadErrorDropsReader(t *testing.T) {
	r := newTestReactor(t)
	p := newPipeReader(t)
	p.readErr = errors.New("boom")
	require.NoError(t, r.AddReader(p))

	p.poke(t)
	require.NoError(t, r.Iterate(time.Second))

	assert.False(t, r.IsReading(p))
	require.Len(t, p.lost, 1)
	assert.EqualError(t, p.lost[0], "boom")
}

func TestReactorHangupDropsReader(t *testing.T) {
	r := newTestReactor(t)
	p := newPipeReader(t)
	require.NoError(t, r.AddReader(p))

	require.NoError(t, unix.Close(p.wfd))
	p.wfd = -1
	require.NoError(t, r.Iterate(time.Second))

	assert.False(t, r.IsReading(p))
	require.Len(t, p.lost, 1)
	assert.ErrorIs(t, p.lost[0], ErrConnectionDone)
}

func TestReactorNegativeFilenoDropsReader(t *testing.T) {
	r := newTestReactor(t)
	p := newPipeReader(t)
	require.NoError(t, r.AddReader(p))

	unix.Close(p.rfd)
	p.rfd = -1
	require.NoError(t, r.Iterate(0))

	assert.False(t, r.IsReading(p))
	require.Len(t, p.lost, 1)
	assert.ErrorIs(t, p.lost[0], ErrConnectionDone)
}

func TestReactorCallbackRemovingPeerSkipsIt(t *testing.T) {
	r := newTestReactor(t)
	a := newPipeReader(t)
	b := newPipeReader(t)
	a.onRead = func() { r.RemoveReader(b) }
	require.NoError(t, r.AddReader(a))
	require.NoError(t, r.AddReader(b))

	a.poke(t)
	b.poke(t)
	require.NoError(t, r.Iterate(time.Second))

	assert.Equal(t, 1, a.reads)
	assert.Equal(t, 0, b.reads)
}

func TestReactorCallFromLoopWakesPoll(t *testing.T) {
	r := newTestReactor(t)

	ran := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = r.CallFromLoop(func() { close(ran) })
	}()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Iterate(2*time.Second))
		select {
		case <-ran:
			assert.Less(t, time.Since(start), 2*time.Second)
			return
		default:
		}
	}
	t.Fatal("queued call did not run")
}

func TestReactorRunShutsDownReaders(t *testing.T) {
	r := newTestReactor(t)
	p := newPipeReader(t)
	require.NoError(t, r.AddReader(p))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	require.Len(t, p.lost, 1)
	assert.ErrorIs(t, p.lost[0], ErrLoopShutdown)
	assert.Empty(t, r.Readers())
}

func TestReactorStop(t *testing.T) {
	r := newTestReactor(t)

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	// Stop from the loop itself so Run is known to be active.
	require.NoError(t, r.CallFromLoop(r.Stop))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestReactorClose(t *testing.T) {
	r, err := New(Config{})
	require.NoError(t, err)
	p := newPipeReader(t)
	require.NoError(t, r.AddReader(p))

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	require.Len(t, p.lost, 1)
	assert.ErrorIs(t, p.lost[0], ErrLoopShutdown)
	assert.ErrorIs(t, r.AddReader(p), ErrClosed)
	assert.ErrorIs(t, r.CallFromLoop(func() {}), ErrClosed)
	assert.ErrorIs(t, r.Iterate(0), ErrClosed)
}

func TestPollTimeout(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{-1, -1},
		{0, 0},
		{time.Microsecond, 1},
		{time.Millisecond, 1},
		{1500 * time.Microsecond, 2},
		{time.Second, 1000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pollTimeout(tt.in), "pollTimeout(%s)", tt.in)
	}
}
