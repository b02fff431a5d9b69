package dnssd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// ZeroconfLibrary implements Library on github.com/enbility/zeroconf/v3.
//
// zeroconf does not report name conflicts, so registrations always
// succeed under the requested name. Resolve is a browse filtered by
// instance name.
type ZeroconfLibrary struct {
	config Config
	logger *slog.Logger

	mu      sync.Mutex
	servers map[*serviceRef]*zeroconf.Server
}

// Compile-time interface satisfaction checks.
var (
	_ Library    = (*ZeroconfLibrary)(nil)
	_ TXTUpdater = (*ZeroconfLibrary)(nil)
)

// NewZeroconfLibrary creates a zeroconf-backed library.
func NewZeroconfLibrary(config Config) *ZeroconfLibrary {
	config = config.withDefaults()
	return &ZeroconfLibrary{
		config:  config,
		logger:  config.Logger,
		servers: make(map[*serviceRef]*zeroconf.Server),
	}
}

// Register publishes the instance until the ref is closed.
func (l *ZeroconfLibrary) Register(flags Flags, interfaceIndex uint32, name, regtype, domain, host string, port uint16, txt TXTRecord, callback RegisterReply) (ServiceRef, error) {
	if err := checkStart(regtype, callback != nil); err != nil {
		return nil, err
	}
	if err := ValidateInstanceName(name); err != nil {
		return nil, err
	}
	if name == "" {
		name = l.config.hostname()
	}
	regtype = NormalizeRegtype(regtype)
	domain = NormalizeDomain(domain)

	ifaces, _, err := l.config.selectInterfaces(interfaceIndex)
	if err != nil {
		return nil, err
	}

	var opts []zeroconf.ServerOption
	if l.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(l.config.TTL.Seconds())))
	}

	ref, err := newServiceRef()
	if err != nil {
		return nil, fmt.Errorf("failed to create service ref: %w", err)
	}

	var server *zeroconf.Server
	if host != "" {
		ips := localIPs(ifaces)
		addrs := make([]string, 0, len(ips))
		for _, ip := range ips {
			addrs = append(addrs, ip.String())
		}
		server, err = zeroconf.RegisterProxy(name, regtype, domain+".", int(port), host, addrs, txt.Strings(), ifaces, opts...)
	} else {
		server, err = zeroconf.Register(name, regtype, domain+".", int(port), txt.Strings(), ifaces, opts...)
	}
	if err != nil {
		_ = ref.Close()
		return nil, fmt.Errorf("failed to register service: %w: %w", ErrUnknown, err)
	}

	l.mu.Lock()
	l.servers[ref] = server
	l.mu.Unlock()

	l.logger.Debug("zeroconf register", "name", name, "regtype", regtype, "domain", domain, "port", port)
	ref.push(func(more Flags) {
		callback(ref, more, ErrNoError, name, regtype, domain)
	})
	ref.addOnClose(func() {
		l.mu.Lock()
		delete(l.servers, ref)
		l.mu.Unlock()
		server.Shutdown()
	})
	return ref, nil
}

// UpdateTXT replaces the TXT record of a registration.
func (l *ZeroconfLibrary) UpdateTXT(ref ServiceRef, txt TXTRecord) error {
	sref, ok := ref.(*serviceRef)
	if !ok {
		return ErrBadReference
	}
	l.mu.Lock()
	server, ok := l.servers[sref]
	l.mu.Unlock()
	if !ok {
		return ErrBadReference
	}
	server.SetText(txt.Strings())
	return nil
}

// Browse reports instances of regtype as zeroconf sees them come and go.
func (l *ZeroconfLibrary) Browse(flags Flags, interfaceIndex uint32, regtype, domain string, callback BrowseReply) (ServiceRef, error) {
	if err := checkStart(regtype, callback != nil); err != nil {
		return nil, err
	}
	regtype = NormalizeRegtype(regtype)
	domain = NormalizeDomain(domain)
	ifaces, ifIndex, err := l.config.selectInterfaces(interfaceIndex)
	if err != nil {
		return nil, err
	}

	ref, err := newServiceRef()
	if err != nil {
		return nil, fmt.Errorf("failed to create service ref: %w", err)
	}

	seen := make(presence)
	l.watch(ref, regtype, domain, ifaces, func(entry *zeroconf.ServiceEntry, added bool) {
		instance := entry.Instance
		if !seen.update(instance, added) {
			return
		}
		var f Flags
		if added {
			f = FlagsAdd
		}
		ref.push(func(more Flags) {
			callback(ref, f|more, ifIndex, ErrNoError, instance, regtype, domain)
		})
	}, func(err error) {
		ref.push(func(more Flags) {
			callback(ref, more, ifIndex, ErrUnknown, "", regtype, domain)
		})
	})
	return ref, nil
}

// Resolve reports host, port and TXT for name whenever they change.
func (l *ZeroconfLibrary) Resolve(flags Flags, interfaceIndex uint32, name, regtype, domain string, callback ResolveReply) (ServiceRef, error) {
	if err := checkStart(regtype, callback != nil); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty instance name", ErrBadParam)
	}
	regtype = NormalizeRegtype(regtype)
	domain = NormalizeDomain(domain)
	ifaces, ifIndex, err := l.config.selectInterfaces(interfaceIndex)
	if err != nil {
		return nil, err
	}

	ref, err := newServiceRef()
	if err != nil {
		return nil, fmt.Errorf("failed to create service ref: %w", err)
	}
	fullname := ConstructFullName(name, regtype, domain)

	tracker := &resolution{name: name, domain: domain}
	l.watch(ref, regtype, domain, ifaces, func(entry *zeroconf.ServiceEntry, added bool) {
		host, port, txt, changed := tracker.update(entry, added)
		if !changed {
			return
		}
		ref.push(func(more Flags) {
			callback(ref, more, ifIndex, ErrNoError, fullname, host, port, txt)
		})
	}, func(err error) {
		ref.push(func(more Flags) {
			callback(ref, more, ifIndex, ErrUnknown, fullname, "", 0, nil)
		})
	})
	return ref, nil
}

// watch runs a zeroconf browse on ifaces (nil for all) until ref is closed.
// onEntry runs on a single watcher goroutine for every entry zeroconf
// reports, including repeats of instances already seen.
func (l *ZeroconfLibrary) watch(ref *serviceRef, regtype, domain string, ifaces []net.Interface, onEntry func(entry *zeroconf.ServiceEntry, added bool), onError func(error)) {
	ctx, cancel := context.WithCancel(context.Background())
	ref.addOnClose(cancel)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	var opts []zeroconf.ClientOption
	if len(ifaces) > 0 {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}

	go func(found, gone <-chan *zeroconf.ServiceEntry) {
		for {
			select {
			case entry, ok := <-found:
				if !ok {
					found = nil
					continue
				}
				if entry != nil {
					onEntry(entry, true)
				}

			case entry, ok := <-gone:
				if !ok {
					gone = nil
					continue
				}
				if entry != nil {
					onEntry(entry, false)
				}

			case <-ctx.Done():
				return
			}
		}
	}(entries, removed)

	go func() {
		if err := zeroconf.Browse(ctx, regtype, domain+".", entries, removed, opts...); err != nil && ctx.Err() == nil {
			l.logger.Warn("zeroconf browse failed", "regtype", regtype, "error", err)
			onError(err)
		}
	}()
}

// presence tracks the instances a browse has reported. zeroconf reports an
// instance once per interface and again on every record change; browse
// replies only track presence.
type presence map[string]bool

// update records the instance and reports whether its presence changed.
func (p presence) update(instance string, added bool) bool {
	if p[instance] == added {
		return false
	}
	if added {
		p[instance] = true
	} else {
		delete(p, instance)
	}
	return true
}

// resolution tracks the last answer a resolve delivered for one instance.
type resolution struct {
	name   string
	domain string
	last   string
}

// update reports the entry's target when it belongs to the resolved
// instance and differs from the previous answer. Removals reset the state so
// a returning instance is reported again.
func (r *resolution) update(entry *zeroconf.ServiceEntry, added bool) (host string, port uint16, txt TXTRecord, changed bool) {
	if !strings.EqualFold(entry.Instance, r.name) {
		return "", 0, nil, false
	}
	if !added {
		r.last = ""
		return "", 0, nil, false
	}
	host = HostTarget(entry.HostName, r.domain)
	txt = StringsToTXTRecord(entry.Text)
	port = uint16(entry.Port)

	sig := fmt.Sprintf("%s|%d|%v", host, port, txt.Strings())
	if sig == r.last {
		return "", 0, nil, false
	}
	r.last = sig
	return host, port, txt, true
}
