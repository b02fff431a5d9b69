package dnssd

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendZeroconf = "zeroconf"
	BackendDNSSD    = "dnssd"
	BackendMDNS     = "mdns"
)

// Backends lists the supported backend names.
var Backends = []string{BackendZeroconf, BackendDNSSD, BackendMDNS, BackendMemory}

// Config configures a Library.
type Config struct {
	// Backend selects the implementation. Empty means BackendZeroconf.
	Backend string

	// Interface restricts network backends to one interface by name.
	// Empty means all interfaces.
	Interface string

	// Hostname is advertised when Register is given no host.
	// Empty means os.Hostname.
	Hostname string

	// TTL is the record TTL for backends that support one.
	TTL time.Duration

	// QueryInterval is how often polling backends re-query for browse.
	QueryInterval time.Duration

	// QueryTimeout bounds one query of polling backends.
	QueryTimeout time.Duration

	// Logger receives backend diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default library configuration.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendZeroconf,
		TTL:           DefaultTTL,
		QueryInterval: DefaultQueryInterval,
		QueryTimeout:  DefaultQueryTimeout,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	if c.QueryInterval <= 0 {
		c.QueryInterval = d.QueryInterval
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = d.QueryTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Open returns the Library for config.Backend.
func Open(config Config) (Library, error) {
	config = config.withDefaults()

	switch config.Backend {
	case BackendMemory:
		return NewMemoryLibrary(config), nil
	case BackendZeroconf:
		return NewZeroconfLibrary(config), nil
	case BackendDNSSD:
		return NewResponderLibrary(config), nil
	case BackendMDNS:
		return NewMDNSLibrary(config), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBackend, config.Backend, strings.Join(Backends, ", "))
	}
}

// hostname returns the configured host name or this machine's short name.
func (c Config) hostname() string {
	if c.Hostname != "" {
		return strings.TrimSuffix(c.Hostname, ".")
	}
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "localhost"
	}
	if i := strings.IndexByte(h, '.'); i > 0 {
		h = h[:i]
	}
	return h
}

// interfaces returns the configured interface, or nil for all.
func (c Config) interfaces() ([]net.Interface, error) {
	if c.Interface == "" {
		return nil, nil
	}
	iface, err := net.InterfaceByName(c.Interface)
	if err != nil {
		return nil, fmt.Errorf("failed to find interface %q: %w", c.Interface, err)
	}
	return []net.Interface{*iface}, nil
}

// selectInterfaces returns the interfaces an operation given index runs on,
// and the index its replies report. InterfaceIndexAny falls back to
// Config.Interface (nil meaning all interfaces); InterfaceIndexLocalOnly
// selects the loopback interfaces; any other index must name an existing
// interface.
func (c Config) selectInterfaces(index uint32) ([]net.Interface, uint32, error) {
	switch index {
	case InterfaceIndexAny:
		ifaces, err := c.interfaces()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrBadInterfaceIndex, err)
		}
		if len(ifaces) == 0 {
			return nil, InterfaceIndexAny, nil
		}
		return ifaces, uint32(ifaces[0].Index), nil

	case InterfaceIndexLocalOnly:
		all, err := net.Interfaces()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrBadInterfaceIndex, err)
		}
		var loopback []net.Interface
		for _, iface := range all {
			if iface.Flags&net.FlagLoopback != 0 && iface.Flags&net.FlagUp != 0 {
				loopback = append(loopback, iface)
			}
		}
		if len(loopback) == 0 {
			return nil, 0, fmt.Errorf("%w: no loopback interface", ErrBadInterfaceIndex)
		}
		return loopback, InterfaceIndexLocalOnly, nil

	default:
		iface, err := net.InterfaceByIndex(int(index))
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %d: %w", ErrBadInterfaceIndex, index, err)
		}
		return []net.Interface{*iface}, index, nil
	}
}

// interfaceNames returns the names of ifaces as a set; nil for all.
func interfaceNames(ifaces []net.Interface) map[string]bool {
	if len(ifaces) == 0 {
		return nil
	}
	names := make(map[string]bool, len(ifaces))
	for _, iface := range ifaces {
		names[iface.Name] = true
	}
	return names
}

// interfaceIndexByName maps an interface name to its index.
func interfaceIndexByName(name string) uint32 {
	if name == "" {
		return InterfaceIndexAny
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return InterfaceIndexAny
	}
	return uint32(iface.Index)
}

// localIPs returns the unicast addresses of ifaces, or the non-loopback
// addresses of all interfaces when ifaces is empty.
func localIPs(ifaces []net.Interface) []net.IP {
	loopbackOK := len(ifaces) > 0
	if len(ifaces) == 0 {
		all, err := net.Interfaces()
		if err != nil {
			return nil
		}
		ifaces = all
	}

	var ips []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || (!loopbackOK && iface.Flags&net.FlagLoopback != 0) {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || (!loopbackOK && ipnet.IP.IsLoopback()) || ipnet.IP.IsLinkLocalMulticast() {
				continue
			}
			ips = append(ips, ipnet.IP)
		}
	}
	return ips
}

// checkStart validates the arguments common to every operation.
func checkStart(regtype string, hasCallback bool) error {
	if err := ValidateRegtype(regtype); err != nil {
		return err
	}
	if !hasCallback {
		return fmt.Errorf("%w: nil callback", ErrBadParam)
	}
	return nil
}
