package dnssd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// missThreshold is how many consecutive queries an instance may be absent
// from before it is reported removed.
const missThreshold = 2

// MDNSLibrary implements Library on github.com/hashicorp/mdns.
//
// hashicorp/mdns answers queries but has no continuous browse, so Browse and
// Resolve re-query every QueryInterval and diff the results.
type MDNSLibrary struct {
	config Config
	logger *slog.Logger
}

// Compile-time interface satisfaction check.
var _ Library = (*MDNSLibrary)(nil)

// NewMDNSLibrary creates a hashicorp/mdns-backed library.
func NewMDNSLibrary(config Config) *MDNSLibrary {
	config = config.withDefaults()
	return &MDNSLibrary{
		config: config,
		logger: config.Logger,
	}
}

// iface selects the interface for an operation on index. hashicorp/mdns
// binds one interface, so a multi-interface selection uses the first.
func (l *MDNSLibrary) iface(index uint32) (*net.Interface, uint32, error) {
	ifaces, ifIndex, err := l.config.selectInterfaces(index)
	if err != nil || len(ifaces) == 0 {
		return nil, ifIndex, err
	}
	return &ifaces[0], ifIndex, nil
}

// Register answers queries for the instance until the ref is closed.
func (l *MDNSLibrary) Register(flags Flags, interfaceIndex uint32, name, regtype, domain, host string, port uint16, txt TXTRecord, callback RegisterReply) (ServiceRef, error) {
	if err := checkStart(regtype, callback != nil); err != nil {
		return nil, err
	}
	if err := ValidateInstanceName(name); err != nil {
		return nil, err
	}
	if name == "" {
		name = l.config.hostname()
	}
	if host == "" {
		host = l.config.hostname()
	}
	regtype = NormalizeRegtype(regtype)
	domain = NormalizeDomain(domain)

	iface, _, err := l.iface(interfaceIndex)
	if err != nil {
		return nil, err
	}
	var ifaces []net.Interface
	if iface != nil {
		ifaces = []net.Interface{*iface}
	}

	zone, err := mdns.NewMDNSService(name, regtype, domain+".", HostTarget(host, domain), int(port), localIPs(ifaces), txt.Strings())
	if err != nil {
		return nil, fmt.Errorf("failed to create mdns service: %w: %w", ErrBadParam, err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: zone, Iface: iface})
	if err != nil {
		return nil, fmt.Errorf("failed to start mdns server: %w: %w", ErrServiceNotRunning, err)
	}

	ref, err := newServiceRef()
	if err != nil {
		_ = server.Shutdown()
		return nil, fmt.Errorf("failed to create service ref: %w", err)
	}
	ref.addOnClose(func() {
		if err := server.Shutdown(); err != nil {
			l.logger.Debug("mdns server shutdown", "name", name, "error", err)
		}
	})

	l.logger.Debug("mdns register", "name", name, "regtype", regtype, "domain", domain, "port", port)
	ref.push(func(more Flags) {
		callback(ref, more, ErrNoError, name, regtype, domain)
	})
	return ref, nil
}

// Browse reports instances appearing in and disappearing from periodic
// queries.
func (l *MDNSLibrary) Browse(flags Flags, interfaceIndex uint32, regtype, domain string, callback BrowseReply) (ServiceRef, error) {
	if err := checkStart(regtype, callback != nil); err != nil {
		return nil, err
	}
	regtype = NormalizeRegtype(regtype)
	domain = NormalizeDomain(domain)
	iface, ifIndex, err := l.iface(interfaceIndex)
	if err != nil {
		return nil, err
	}

	ref, err := newServiceRef()
	if err != nil {
		return nil, fmt.Errorf("failed to create service ref: %w", err)
	}

	present := make(map[string]int) // instance -> consecutive misses
	l.poll(ref, regtype, domain, iface, func(found map[string]*mdns.ServiceEntry) {
		for instance := range found {
			if _, ok := present[instance]; !ok {
				instance := instance
				ref.push(func(more Flags) {
					callback(ref, FlagsAdd|more, ifIndex, ErrNoError, instance, regtype, domain)
				})
			}
			present[instance] = 0
		}
		for instance, misses := range present {
			if _, ok := found[instance]; ok {
				continue
			}
			if misses+1 < missThreshold {
				present[instance] = misses + 1
				continue
			}
			delete(present, instance)
			instance := instance
			ref.push(func(more Flags) {
				callback(ref, more, ifIndex, ErrNoError, instance, regtype, domain)
			})
		}
	}, func(err error) {
		ref.push(func(more Flags) {
			callback(ref, more, ifIndex, ErrUnknown, "", regtype, domain)
		})
	})
	return ref, nil
}

// Resolve reports host, port and TXT for name whenever a query shows a
// change.
func (l *MDNSLibrary) Resolve(flags Flags, interfaceIndex uint32, name, regtype, domain string, callback ResolveReply) (ServiceRef, error) {
	if err := checkStart(regtype, callback != nil); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty instance name", ErrBadParam)
	}
	regtype = NormalizeRegtype(regtype)
	domain = NormalizeDomain(domain)
	fullname := ConstructFullName(name, regtype, domain)
	iface, ifIndex, err := l.iface(interfaceIndex)
	if err != nil {
		return nil, err
	}

	ref, err := newServiceRef()
	if err != nil {
		return nil, fmt.Errorf("failed to create service ref: %w", err)
	}

	var last string
	l.poll(ref, regtype, domain, iface, func(found map[string]*mdns.ServiceEntry) {
		var entry *mdns.ServiceEntry
		for instance, e := range found {
			if strings.EqualFold(instance, name) {
				entry = e
				break
			}
		}
		if entry == nil {
			return
		}

		host := HostTarget(entry.Host, domain)
		txt := StringsToTXTRecord(entry.InfoFields)
		port := uint16(entry.Port)
		sig := fmt.Sprintf("%s|%d|%v", host, port, txt.Strings())
		if sig == last {
			return
		}
		last = sig

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

// poll queries regtype on iface (nil for all) immediately and then every
// QueryInterval until ref is closed. onResult receives the instances found by one query keyed by
// instance name. A query error is reported once and ends polling.
func (l *MDNSLibrary) poll(ref *serviceRef, regtype, domain string, iface *net.Interface, onResult func(map[string]*mdns.ServiceEntry), onError func(error)) {
	ctx, cancel := context.WithCancel(context.Background())
	ref.addOnClose(cancel)

	suffix := "." + regtype + "." + domain + "."

	go func() {
		ticker := time.NewTicker(l.config.QueryInterval)
		defer ticker.Stop()

		for {
			found, err := l.query(regtype, domain, iface, suffix)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				l.logger.Warn("mdns query failed", "regtype", regtype, "error", err)
				onError(err)
				return
			}
			onResult(found)

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// query runs one mdns query and collects the entries of regtype.
func (l *MDNSLibrary) query(regtype, domain string, iface *net.Interface, suffix string) (map[string]*mdns.ServiceEntry, error) {
	entries := make(chan *mdns.ServiceEntry, 32)
	found := make(map[string]*mdns.ServiceEntry)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entries {
			if !strings.HasSuffix(strings.ToLower(entry.Name), strings.ToLower(suffix)) {
				continue
			}
			instance, _, _, err := SplitFullName(entry.Name)
			if err != nil {
				continue
			}
			found[instance] = entry
		}
	}()

	err := mdns.Query(&mdns.QueryParam{
		Service:     regtype,
		Domain:      domain,
		Timeout:     l.config.QueryTimeout,
		Interface:   iface,
		Entries:     entries,
		DisableIPv6: true,
	})
	close(entries)
	<-done
	return found, err
}
