package dnssd

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// MemoryLibrary is an in-process DNS-SD registry. Operations started on the
// same MemoryLibrary see each other; nothing is sent on the network. TXT
// records are held in wire form, so entries that would not fit in a DNS
// TXT string are rejected at registration.
//
// Registration follows mDNSResponder naming rules: a name already taken
// is renamed to "name (2)", "name (3)" and so on, unless FlagsNoAutoRename
// is set, in which case the registration reply carries ErrNameConflict.
type MemoryLibrary struct {
	config Config
	logger *slog.Logger

	mu        sync.Mutex
	services  map[string]*memService
	browsers  map[*serviceRef]*memBrowser
	resolvers map[*serviceRef]*memResolver
}

// Compile-time interface satisfaction checks.
var (
	_ Library    = (*MemoryLibrary)(nil)
	_ TXTUpdater = (*MemoryLibrary)(nil)
)

type memService struct {
	name    string
	regtype string
	domain  string
	host    string
	port    uint16
	rdata   []byte // TXT record in wire form
	ifIndex uint32
	ref     *serviceRef
}

type memBrowser struct {
	regtype  string
	domain   string
	ifIndex  uint32
	callback BrowseReply
}

type memResolver struct {
	key      string
	ifIndex  uint32
	callback ResolveReply
}

// NewMemoryLibrary creates an empty in-process registry.
func NewMemoryLibrary(config Config) *MemoryLibrary {
	config = config.withDefaults()
	return &MemoryLibrary{
		config:    config,
		logger:    config.Logger,
		services:  make(map[string]*memService),
		browsers:  make(map[*serviceRef]*memBrowser),
		resolvers: make(map[*serviceRef]*memResolver),
	}
}

// serviceKey identifies an instance. Instance names compare case-insensitively.
func serviceKey(name, regtype, domain string) string {
	return strings.ToLower(name) + "\x00" + strings.ToLower(NormalizeRegtype(regtype)) + "\x00" + strings.ToLower(NormalizeDomain(domain))
}

// ifMatch reports whether an operation on want sees a service on have.
func ifMatch(want, have uint32) bool {
	return want == InterfaceIndexAny || have == InterfaceIndexAny || want == have
}

// Register adds an instance to the registry.
func (l *MemoryLibrary) Register(flags Flags, interfaceIndex uint32, name, regtype, domain, host string, port uint16, txt TXTRecord, callback RegisterReply) (ServiceRef, error) {
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
	rdata, err := txt.Encode()
	if err != nil {
		return nil, err
	}

	ref, err := newServiceRef()
	if err != nil {
		return nil, fmt.Errorf("failed to create service ref: %w", err)
	}

	l.mu.Lock()
	finalName := name
	if _, taken := l.services[serviceKey(name, regtype, domain)]; taken {
		if flags.Has(FlagsNoAutoRename) {
			l.mu.Unlock()
			l.logger.Debug("memory register name conflict", "name", name, "regtype", regtype)
			ref.push(func(more Flags) {
				callback(ref, more, ErrNameConflict, name, regtype, domain)
			})
			return ref, nil
		}
		for n := 2; ; n++ {
			finalName = autoRenamed(name, n)
			if _, taken := l.services[serviceKey(finalName, regtype, domain)]; !taken {
				break
			}
		}
	}

	svc := &memService{
		name:    finalName,
		regtype: regtype,
		domain:  domain,
		host:    host,
		port:    port,
		rdata:   rdata,
		ifIndex: interfaceIndex,
		ref:     ref,
	}
	key := serviceKey(finalName, regtype, domain)
	l.services[key] = svc

	ref.push(func(more Flags) {
		callback(ref, more, ErrNoError, finalName, regtype, domain)
	})
	l.announceLocked(svc, true)
	l.resolveWaitingLocked(key, svc)
	l.mu.Unlock()

	l.logger.Debug("memory register", "name", finalName, "regtype", regtype, "domain", domain, "port", port)
	ref.addOnClose(func() { l.unregister(key, ref) })
	return ref, nil
}

// unregister removes the instance owned by ref and announces its removal.
func (l *MemoryLibrary) unregister(key string, ref *serviceRef) {
	l.mu.Lock()
	defer l.mu.Unlock()

	svc, ok := l.services[key]
	if !ok || svc.ref != ref {
		return
	}
	delete(l.services, key)
	l.announceLocked(svc, false)
}

// announceLocked queues an add or remove browse reply on every matching
// browser. l.mu must be held.
func (l *MemoryLibrary) announceLocked(svc *memService, added bool) {
	var flags Flags
	if added {
		flags = FlagsAdd
	}
	for bref, b := range l.browsers {
		if !strings.EqualFold(b.regtype, svc.regtype) || !strings.EqualFold(b.domain, svc.domain) || !ifMatch(b.ifIndex, svc.ifIndex) {
			continue
		}
		bref, cb := bref, b.callback
		name, regtype, domain, ifIndex := svc.name, svc.regtype, svc.domain, svc.ifIndex
		bref.push(func(more Flags) {
			cb(bref, flags|more, ifIndex, ErrNoError, name, regtype, domain)
		})
	}
}

// resolveWaitingLocked answers resolvers waiting for key. l.mu must be held.
func (l *MemoryLibrary) resolveWaitingLocked(key string, svc *memService) {
	for rref, r := range l.resolvers {
		if r.key != key || !ifMatch(r.ifIndex, svc.ifIndex) {
			continue
		}
		l.pushResolveLocked(rref, r.callback, svc)
	}
}

func (l *MemoryLibrary) pushResolveLocked(ref *serviceRef, cb ResolveReply, svc *memService) {
	fullname := ConstructFullName(svc.name, svc.regtype, svc.domain)
	host := HostTarget(svc.host, svc.domain)
	port, ifIndex := svc.port, svc.ifIndex
	txt, err := DecodeTXTRecord(svc.rdata)
	if err != nil {
		l.logger.Warn("memory resolve: bad TXT record", "name", svc.name, "error", err)
		ref.push(func(more Flags) {
			cb(ref, more, ifIndex, ErrBadParam, fullname, host, port, nil)
		})
		return
	}
	ref.push(func(more Flags) {
		cb(ref, more, ifIndex, ErrNoError, fullname, host, port, txt)
	})
}

// Browse watches for instances of regtype. Instances already registered are
// reported immediately.
func (l *MemoryLibrary) Browse(flags Flags, interfaceIndex uint32, regtype, domain string, callback BrowseReply) (ServiceRef, error) {
	if err := checkStart(regtype, callback != nil); err != nil {
		return nil, err
	}

	ref, err := newServiceRef()
	if err != nil {
		return nil, fmt.Errorf("failed to create service ref: %w", err)
	}

	b := &memBrowser{
		regtype:  NormalizeRegtype(regtype),
		domain:   NormalizeDomain(domain),
		ifIndex:  interfaceIndex,
		callback: callback,
	}

	l.mu.Lock()
	l.browsers[ref] = b
	for _, svc := range l.services {
		if !strings.EqualFold(b.regtype, svc.regtype) || !strings.EqualFold(b.domain, svc.domain) || !ifMatch(b.ifIndex, svc.ifIndex) {
			continue
		}
		name, rt, dom, ifIndex := svc.name, svc.regtype, svc.domain, svc.ifIndex
		ref.push(func(more Flags) {
			callback(ref, FlagsAdd|more, ifIndex, ErrNoError, name, rt, dom)
		})
	}
	l.mu.Unlock()

	ref.addOnClose(func() {
		l.mu.Lock()
		delete(l.browsers, ref)
		l.mu.Unlock()
	})
	return ref, nil
}

// Resolve looks up an instance. If it is not registered yet, the reply is
// delivered when it is. Every later registration under the same name is
// reported too, until the ref is closed.
func (l *MemoryLibrary) Resolve(flags Flags, interfaceIndex uint32, name, regtype, domain string, callback ResolveReply) (ServiceRef, error) {
	if err := checkStart(regtype, callback != nil); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty instance name", ErrBadParam)
	}

	ref, err := newServiceRef()
	if err != nil {
		return nil, fmt.Errorf("failed to create service ref: %w", err)
	}

	key := serviceKey(name, regtype, domain)

	l.mu.Lock()
	l.resolvers[ref] = &memResolver{key: key, ifIndex: interfaceIndex, callback: callback}
	if svc, ok := l.services[key]; ok && ifMatch(interfaceIndex, svc.ifIndex) {
		l.pushResolveLocked(ref, callback, svc)
	}
	l.mu.Unlock()

	ref.addOnClose(func() {
		l.mu.Lock()
		delete(l.resolvers, ref)
		l.mu.Unlock()
	})
	return ref, nil
}

// UpdateTXT replaces the TXT record of the instance registered by ref and
// notifies active resolvers.
func (l *MemoryLibrary) UpdateTXT(ref ServiceRef, txt TXTRecord) error {
	sref, ok := ref.(*serviceRef)
	if !ok {
		return ErrBadReference
	}
	rdata, err := txt.Encode()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, svc := range l.services {
		if svc.ref != sref {
			continue
		}
		svc.rdata = rdata
		l.resolveWaitingLocked(key, svc)
		return nil
	}
	return ErrBadReference
}

// Services returns the full names of all registered instances.
func (l *MemoryLibrary) Services() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.services))
	for _, svc := range l.services {
		names = append(names, ConstructFullName(svc.name, svc.regtype, svc.domain))
	}
	return names
}
