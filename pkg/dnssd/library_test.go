package dnssd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackends(t *testing.T) {
	tests := []struct {
		backend string
		want    any
	}{
		{"", &ZeroconfLibrary{}},
		{BackendZeroconf, &ZeroconfLibrary{}},
		{BackendDNSSD, &ResponderLibrary{}},
		{BackendMDNS, &MDNSLibrary{}},
		{BackendMemory, &MemoryLibrary{}},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			lib, err := Open(Config{Backend: tt.backend})
			require.NoError(t, err)
			assert.IsType(t, tt.want, lib)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Config{Backend: "bogus"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	assert.Equal(t, BackendZeroconf, c.Backend)
	assert.Equal(t, DefaultTTL, c.TTL)
	assert.Equal(t, DefaultQueryInterval, c.QueryInterval)
	assert.Equal(t, DefaultQueryTimeout, c.QueryTimeout)
	assert.NotNil(t, c.Logger)

	c = Config{QueryInterval: time.Second}.withDefaults()
	assert.Equal(t, time.Second, c.QueryInterval)
}

func TestConfigHostname(t *testing.T) {
	assert.Equal(t, "station", Config{Hostname: "station."}.hostname())
	assert.NotEmpty(t, Config{}.hostname())
}

func TestConfigUnknownInterface(t *testing.T) {
	_, err := Config{Interface: "does-not-exist0"}.interfaces()
	assert.Error(t, err)

	_, _, err = Config{Interface: "does-not-exist0"}.selectInterfaces(InterfaceIndexAny)
	assert.ErrorIs(t, err, ErrBadInterfaceIndex)
}

// loopbackInterface returns an up loopback interface or skips the test.
func loopbackInterface(t *testing.T) net.Interface {
	t.Helper()
	ifaces, err := net.Interfaces()
	require.NoError(t, err)
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 && iface.Flags&net.FlagUp != 0 {
			return iface
		}
	}
	t.Skip("no loopback interface on this host")
	return net.Interface{}
}

const missingInterfaceIndex = 1 << 30

func TestSelectInterfaces(t *testing.T) {
	t.Run("any", func(t *testing.T) {
		ifaces, index, err := Config{}.selectInterfaces(InterfaceIndexAny)
		require.NoError(t, err)
		assert.Nil(t, ifaces)
		assert.Equal(t, InterfaceIndexAny, index)
	})

	t.Run("configured interface", func(t *testing.T) {
		lo := loopbackInterface(t)
		ifaces, index, err := Config{Interface: lo.Name}.selectInterfaces(InterfaceIndexAny)
		require.NoError(t, err)
		require.Len(t, ifaces, 1)
		assert.Equal(t, lo.Name, ifaces[0].Name)
		assert.Equal(t, uint32(lo.Index), index)
	})

	t.Run("explicit index", func(t *testing.T) {
		lo := loopbackInterface(t)
		ifaces, index, err := Config{}.selectInterfaces(uint32(lo.Index))
		require.NoError(t, err)
		require.Len(t, ifaces, 1)
		assert.Equal(t, lo.Name, ifaces[0].Name)
		assert.Equal(t, uint32(lo.Index), index)
		assert.Equal(t, map[string]bool{lo.Name: true}, interfaceNames(ifaces))
	})

	t.Run("local only", func(t *testing.T) {
		lo := loopbackInterface(t)
		ifaces, index, err := Config{}.selectInterfaces(InterfaceIndexLocalOnly)
		require.NoError(t, err)
		assert.Equal(t, InterfaceIndexLocalOnly, index)
		assert.Contains(t, interfaceNames(ifaces), lo.Name)
	})

	t.Run("missing index", func(t *testing.T) {
		_, _, err := Config{}.selectInterfaces(missingInterfaceIndex)
		assert.ErrorIs(t, err, ErrBadInterfaceIndex)
		assert.Equal(t, ErrBadInterfaceIndex, CodeOf(err))
	})
}

func TestInterfaceNamesAll(t *testing.T) {
	assert.Nil(t, interfaceNames(nil))
}

func TestMDNSInterfaceSelection(t *testing.T) {
	lo := loopbackInterface(t)
	lib := NewMDNSLibrary(Config{})

	iface, index, err := lib.iface(uint32(lo.Index))
	require.NoError(t, err)
	require.NotNil(t, iface)
	assert.Equal(t, lo.Name, iface.Name)
	assert.Equal(t, uint32(lo.Index), index)

	iface, index, err = lib.iface(InterfaceIndexAny)
	require.NoError(t, err)
	assert.Nil(t, iface)
	assert.Equal(t, InterfaceIndexAny, index)
}

// Network backends check the interface index before touching the network.
func TestNetworkBackendsRejectMissingInterface(t *testing.T) {
	for _, backend := range []string{BackendZeroconf, BackendDNSSD, BackendMDNS} {
		t.Run(backend, func(t *testing.T) {
			lib, err := Open(Config{Backend: backend})
			require.NoError(t, err)

			_, err = lib.Register(0, missingInterfaceIndex, "station", "_bgotest._tcp", "", "", 19000, nil,
				func(ServiceRef, Flags, ErrorCode, string, string, string) {})
			assert.ErrorIs(t, err, ErrBadInterfaceIndex)

			_, err = lib.Browse(0, missingInterfaceIndex, "_bgotest._tcp", "",
				func(ServiceRef, Flags, uint32, ErrorCode, string, string, string) {})
			assert.ErrorIs(t, err, ErrBadInterfaceIndex)

			_, err = lib.Resolve(0, missingInterfaceIndex, "station", "_bgotest._tcp", "",
				func(ServiceRef, Flags, uint32, ErrorCode, string, string, uint16, TXTRecord) {})
			assert.ErrorIs(t, err, ErrBadInterfaceIndex)
			assert.Equal(t, ErrBadInterfaceIndex, CodeOf(err))
		})
	}
}

// Network backends are exercised end to end against the host's multicast
// network; skipped in short mode.
func TestNetworkBackendsRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mDNS network test in short mode")
	}

	for _, backend := range []string{BackendZeroconf, BackendDNSSD, BackendMDNS} {
		t.Run(backend, func(t *testing.T) {
			lib, err := Open(Config{Backend: backend, QueryInterval: 500 * time.Millisecond, QueryTimeout: 500 * time.Millisecond})
			require.NoError(t, err)

			name := "bonjour-go-test-" + backend
			var regs []registerResult
			ref, err := lib.Register(0, 0, name, "_bgotest._tcp", "", "", 19000, TXTRecord{"k": "v"},
				func(_ ServiceRef, _ Flags, code ErrorCode, name, regtype, domain string) {
					regs = append(regs, registerResult{code, name, regtype, domain})
				})
			if err != nil {
				t.Skipf("backend %s unavailable: %v", backend, err)
			}
			defer ref.Close()

			found := false
			bref, err := lib.Browse(0, 0, "_bgotest._tcp", "", func(_ ServiceRef, flags Flags, _ uint32, code ErrorCode, serviceName, _, _ string) {
				if code == ErrNoError && flags.Has(FlagsAdd) && serviceName == name {
					found = true
				}
			})
			require.NoError(t, err)
			defer bref.Close()

			deadline := time.Now().Add(10 * time.Second)
			for time.Now().Before(deadline) && !found {
				processAll(t, ref)
				processAll(t, bref)
				time.Sleep(50 * time.Millisecond)
			}
			require.NotEmpty(t, regs)
			assert.Equal(t, ErrNoError, regs[0].code)
			if !found {
				t.Skipf("no multicast loopback for %s on this host", backend)
			}
		})
	}
}
