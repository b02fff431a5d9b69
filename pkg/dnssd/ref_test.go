package dnssd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// readable reports whether fd polls readable without blocking.
func readable(t *testing.T, fd int) bool {
	t.Helper()
	if fd < 0 {
		return false
	}
	pfds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(pfds, 0)
	require.NoError(t, err)
	return n > 0 && pfds[0].Revents&unix.POLLIN != 0
}

// processAll dispatches replies until the ref's descriptor is idle and
// returns how many were dispatched.
func processAll(t *testing.T, ref ServiceRef) int {
	t.Helper()
	n := 0
	for readable(t, ref.Fileno()) {
		require.NoError(t, ref.ProcessResult())
		n++
		require.Less(t, n, 1000, "descriptor never went idle")
	}
	return n
}

func TestServiceRefReadiness(t *testing.T) {
	ref, err := newServiceRef()
	require.NoError(t, err)
	defer ref.Close()

	assert.NotEmpty(t, ref.ID())
	assert.GreaterOrEqual(t, ref.Fileno(), 0)
	assert.False(t, readable(t, ref.Fileno()), "idle ref must not be readable")

	var got []Flags
	ref.push(func(more Flags) { got = append(got, more) })
	ref.push(func(more Flags) { got = append(got, more) })
	assert.True(t, readable(t, ref.Fileno()))

	// One reply per ProcessResult.
	require.NoError(t, ref.ProcessResult())
	assert.Equal(t, []Flags{FlagsMoreComing}, got)
	assert.True(t, readable(t, ref.Fileno()), "still one reply queued")

	require.NoError(t, ref.ProcessResult())
	assert.Equal(t, []Flags{FlagsMoreComing, 0}, got)
	assert.False(t, readable(t, ref.Fileno()), "queue drained")
}

func TestServiceRefProcessResultIdle(t *testing.T) {
	ref, err := newServiceRef()
	require.NoError(t, err)
	defer ref.Close()

	assert.NoError(t, ref.ProcessResult())
}

func TestServiceRefClose(t *testing.T) {
	ref, err := newServiceRef()
	require.NoError(t, err)

	hooks := 0
	ref.addOnClose(func() { hooks++ })

	called := false
	ref.push(func(Flags) { called = true })

	require.NoError(t, ref.Close())
	require.NoError(t, ref.Close())

	assert.Equal(t, 1, hooks)
	assert.Equal(t, -1, ref.Fileno())
	assert.ErrorIs(t, ref.ProcessResult(), ErrClosed)
	assert.False(t, called, "closed ref dispatches nothing")

	// Late pushes and hooks.
	ref.push(func(Flags) { called = true })
	assert.Equal(t, 0, ref.pending())
	ref.addOnClose(func() { hooks++ })
	assert.Equal(t, 2, hooks)
}

func TestServiceRefUniqueIDs(t *testing.T) {
	a, err := newServiceRef()
	require.NoError(t, err)
	defer a.Close()
	b, err := newServiceRef()
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.ID(), b.ID())
}
