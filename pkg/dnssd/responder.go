package dnssd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"

	bdnssd "github.com/brutella/dnssd"
)

// ResponderLibrary implements Library on github.com/brutella/dnssd.
//
// Each registration runs its own responder, which probes for the name and
// renames on conflict by itself. FlagsNoAutoRename is not honored. Browse
// and Resolve use type lookups; Resolve filters by instance name.
type ResponderLibrary struct {
	config Config
	logger *slog.Logger

	mu         sync.Mutex
	responders map[*serviceRef]*registration
}

type registration struct {
	responder bdnssd.Responder
	handle    bdnssd.ServiceHandle
}

// Compile-time interface satisfaction checks.
var (
	_ Library    = (*ResponderLibrary)(nil)
	_ TXTUpdater = (*ResponderLibrary)(nil)
)

// NewResponderLibrary creates a brutella/dnssd-backed library.
func NewResponderLibrary(config Config) *ResponderLibrary {
	config = config.withDefaults()
	return &ResponderLibrary{
		config:     config,
		logger:     config.Logger,
		responders: make(map[*serviceRef]*registration),
	}
}

// Register publishes the instance until the ref is closed.
func (l *ResponderLibrary) Register(flags Flags, interfaceIndex uint32, name, regtype, domain, host string, port uint16, txt TXTRecord, callback RegisterReply) (ServiceRef, error) {
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

	cfg := bdnssd.Config{
		Name:   name,
		Type:   regtype,
		Domain: domain,
		Host:   strings.TrimSuffix(strings.TrimSuffix(host, "."), "."+domain),
		Text:   map[string]string(txt.Clone()),
		Port:   int(port),
	}
	for _, iface := range ifaces {
		cfg.Ifaces = append(cfg.Ifaces, iface.Name)
	}

	svc, err := bdnssd.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w: %w", ErrBadParam, err)
	}
	rp, err := bdnssd.NewResponder()
	if err != nil {
		return nil, fmt.Errorf("failed to create responder: %w: %w", ErrServiceNotRunning, err)
	}
	handle, err := rp.Add(svc)
	if err != nil {
		return nil, fmt.Errorf("failed to add service: %w: %w", ErrUnknown, err)
	}

	ref, err := newServiceRef()
	if err != nil {
		return nil, fmt.Errorf("failed to create service ref: %w", err)
	}

	l.mu.Lock()
	l.responders[ref] = &registration{responder: rp, handle: handle}
	l.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	ref.addOnClose(func() {
		cancel()
		l.mu.Lock()
		delete(l.responders, ref)
		l.mu.Unlock()
	})

	go func() {
		if err := rp.Respond(ctx); err != nil && ctx.Err() == nil {
			l.logger.Warn("dnssd responder stopped", "name", name, "error", err)
			ref.push(func(more Flags) {
				callback(ref, more, ErrServiceNotRunning, name, regtype, domain)
			})
		}
	}()

	l.logger.Debug("dnssd register", "name", name, "regtype", regtype, "domain", domain, "port", port)
	ref.push(func(more Flags) {
		callback(ref, more, ErrNoError, name, regtype, domain)
	})
	return ref, nil
}

// UpdateTXT replaces the TXT record of a registration.
func (l *ResponderLibrary) UpdateTXT(ref ServiceRef, txt TXTRecord) error {
	sref, ok := ref.(*serviceRef)
	if !ok {
		return ErrBadReference
	}
	l.mu.Lock()
	reg, ok := l.responders[sref]
	l.mu.Unlock()
	if !ok {
		return ErrBadReference
	}
	reg.handle.UpdateText(map[string]string(txt.Clone()), reg.responder)
	return nil
}

// Browse reports instances of regtype found by a type lookup.
func (l *ResponderLibrary) Browse(flags Flags, interfaceIndex uint32, regtype, domain string, callback BrowseReply) (ServiceRef, error) {
	if err := checkStart(regtype, callback != nil); err != nil {
		return nil, err
	}
	regtype = NormalizeRegtype(regtype)
	domain = NormalizeDomain(domain)
	ifaces, _, err := l.config.selectInterfaces(interfaceIndex)
	if err != nil {
		return nil, err
	}

	ref, err := newServiceRef()
	if err != nil {
		return nil, fmt.Errorf("failed to create service ref: %w", err)
	}

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	emit := func(e bdnssd.BrowseEntry, added bool) {
		mu.Lock()
		if seen[e.Name] == added {
			mu.Unlock()
			return
		}
		seen[e.Name] = added
		mu.Unlock()

		var f Flags
		if added {
			f = FlagsAdd
		}
		ifIndex := interfaceIndexByName(e.IfaceName)
		instance := e.Name
		ref.push(func(more Flags) {
			callback(ref, f|more, ifIndex, ErrNoError, instance, regtype, domain)
		})
	}

	l.lookup(ref, regtype, domain, ifaces,
		func(e bdnssd.BrowseEntry) { emit(e, true) },
		func(e bdnssd.BrowseEntry) { emit(e, false) },
		func(err error) {
			ref.push(func(more Flags) {
				callback(ref, more, InterfaceIndexAny, ErrUnknown, "", regtype, domain)
			})
		})
	return ref, nil
}

// Resolve reports host, port and TXT for name each time a lookup finds it.
func (l *ResponderLibrary) Resolve(flags Flags, interfaceIndex uint32, name, regtype, domain string, callback ResolveReply) (ServiceRef, error) {
	if err := checkStart(regtype, callback != nil); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty instance name", ErrBadParam)
	}
	regtype = NormalizeRegtype(regtype)
	domain = NormalizeDomain(domain)
	fullname := ConstructFullName(name, regtype, domain)
	ifaces, _, err := l.config.selectInterfaces(interfaceIndex)
	if err != nil {
		return nil, err
	}

	ref, err := newServiceRef()
	if err != nil {
		return nil, fmt.Errorf("failed to create service ref: %w", err)
	}

	var (
		mu   sync.Mutex
		last string
	)
	l.lookup(ref, regtype, domain, ifaces,
		func(e bdnssd.BrowseEntry) {
			if !strings.EqualFold(e.Name, name) {
				return
			}
			host := HostTarget(e.Host, domain)
			txt := TXTRecord(e.Text).Clone()
			port := uint16(e.Port)

			sig := fmt.Sprintf("%s|%d|%v", host, port, txt.Strings())
			mu.Lock()
			if sig == last {
				mu.Unlock()
				return
			}
			last = sig
			mu.Unlock()

			ifIndex := interfaceIndexByName(e.IfaceName)
			ref.push(func(more Flags) {
				callback(ref, more, ifIndex, ErrNoError, fullname, host, port, txt)
			})
		},
		func(e bdnssd.BrowseEntry) {
			if strings.EqualFold(e.Name, name) {
				mu.Lock()
				last = ""
				mu.Unlock()
			}
		},
		func(err error) {
			ref.push(func(more Flags) {
				callback(ref, more, InterfaceIndexAny, ErrUnknown, fullname, "", 0, nil)
			})
		})
	return ref, nil
}

// lookup runs a type lookup until ref is closed. LookupType listens on
// every interface, so entries seen on interfaces outside ifaces are
// dropped here.
func (l *ResponderLibrary) lookup(ref *serviceRef, regtype, domain string, ifaces []net.Interface, add, rmv func(bdnssd.BrowseEntry), onError func(error)) {
	ctx, cancel := context.WithCancel(context.Background())
	ref.addOnClose(cancel)

	allowed := interfaceNames(ifaces)
	filter := func(fn func(bdnssd.BrowseEntry)) func(bdnssd.BrowseEntry) {
		if allowed == nil {
			return fn
		}
		return func(e bdnssd.BrowseEntry) {
			if allowed[e.IfaceName] {
				fn(e)
			}
		}
	}

	service := regtype + "." + domain + "."
	go func() {
		if err := bdnssd.LookupType(ctx, service, filter(add), filter(rmv)); err != nil && ctx.Err() == nil {
			l.logger.Warn("dnssd lookup failed", "service", service, "error", err)
			onError(err)
		}
	}()
}
