package bonjour

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/bonjour-go/pkg/bonjour/mocks"
	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	dnssdmocks "github.com/mash-protocol/bonjour-go/pkg/dnssd/mocks"
	"github.com/mash-protocol/bonjour-go/pkg/reactor"
)

// maxIterations bounds every loop-driven test.
const maxIterations = 50

func newLoop(t *testing.T) *reactor.Reactor {
	t.Helper()
	loop, err := reactor.New(reactor.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { loop.Close() })
	return loop
}

func newMemoryLibrary() *dnssd.MemoryLibrary {
	return dnssd.NewMemoryLibrary(dnssd.Config{Backend: dnssd.BackendMemory})
}

// iterateUntil drives loop until cond holds, failing after maxIterations.
func iterateUntil(t *testing.T, loop *reactor.Reactor, cond func() bool) int {
	t.Helper()
	for i := 1; i <= maxIterations; i++ {
		require.NoError(t, loop.Iterate(10*time.Millisecond))
		if cond() {
			return i
		}
	}
	t.Fatalf("condition not met after %d iterations", maxIterations)
	return 0
}

// newPermissiveLoop returns a mock loop accepting any reader.
func newPermissiveLoop(t *testing.T) *mocks.MockLoop {
	loop := mocks.NewMockLoop(t)
	loop.EXPECT().AddReader(mock.Anything).Return(nil).Maybe()
	loop.EXPECT().RemoveReader(mock.Anything).Return().Maybe()
	return loop
}

// newMockRef returns a ref mock that tolerates any number of Close and
// Fileno calls.
func newMockRef(t *testing.T) *dnssdmocks.MockServiceRef {
	ref := dnssdmocks.NewMockServiceRef(t)
	ref.EXPECT().Close().Return(nil).Maybe()
	ref.EXPECT().Fileno().Return(42).Maybe()
	return ref
}

// closeCalls counts Close calls on a ref mock.
func closeCalls(ref *dnssdmocks.MockServiceRef) int {
	n := 0
	for _, c := range ref.Calls {
		if c.Method == "Close" {
			n++
		}
	}
	return n
}
