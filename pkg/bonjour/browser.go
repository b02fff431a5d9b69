package bonjour

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	"github.com/mash-protocol/bonjour-go/pkg/log"
)

// BrowserConfig configures a Browser.
type BrowserConfig struct {
	// Regtype is the service type to watch, e.g. "_echo._tcp".
	Regtype string

	// Domain defaults to "local".
	Domain string

	// InterfaceIndex restricts browsing. Zero means all interfaces.
	InterfaceIndex uint32

	// ContinuousResolve keeps each instance's Resolver running until the
	// instance is removed.
	ContinuousResolve bool

	// OnAdded is called for every instance that appears, before its
	// resolution starts (optional).
	OnAdded func(Event)

	// OnResolved receives every resolve reply of discovered instances.
	OnResolved func(Event)

	// OnRemoved is called for every browse reply without the Add flag.
	OnRemoved func(Event)

	// OnError receives browse replies carrying an error (optional).
	OnError func(Event)

	// Logger for operational logging. Default: slog.Default().
	Logger *slog.Logger

	// EventLog records discovery events of the browse and of every
	// resolution it starts (optional).
	EventLog log.Logger

	// Backend names the library backend in event logs (optional).
	Backend string
}

// Browser watches a service type and resolves every instance that appears.
type Browser struct {
	lib     dnssd.Library
	loop    Loop
	config  BrowserConfig
	session *session

	// pending holds resolutions in flight.
	pending map[InstanceKey]*Resolver
}

// NewBrowser validates config and returns a stopped Browser.
func NewBrowser(lib dnssd.Library, loop Loop, config BrowserConfig) (*Browser, error) {
	if err := dnssd.ValidateRegtype(config.Regtype); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegtype, err)
	}
	config.Regtype = dnssd.NormalizeRegtype(config.Regtype)
	config.Domain = dnssd.NormalizeDomain(config.Domain)

	b := &Browser{
		lib:     lib,
		loop:    loop,
		config:  config,
		session: newSession(log.OperationBrowse, loop, config.Logger, config.EventLog, config.Backend),
		pending: make(map[InstanceKey]*Resolver),
	}
	b.session.lost = func(error) { b.stopResolvers() }
	return b, nil
}

// StartBrowsing starts watching the service type.
func (b *Browser) StartBrowsing() error {
	c := b.config
	err := b.session.start(func() (dnssd.ServiceRef, error) {
		return b.lib.Browse(0, c.InterfaceIndex, c.Regtype, c.Domain, b.handleReply)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyStarted) {
			return err
		}
		browseErr := &BrowseError{Regtype: c.Regtype, Code: dnssd.CodeOf(err), Err: err}
		b.session.logError(browseErr, "failed to browse")
		return browseErr
	}
	b.session.logger.Debug("browsing", "session", b.session.id, "regtype", c.Regtype, "domain", c.Domain)
	return nil
}

// StopBrowsing stops the browse and every resolution in flight. It is safe
// to call repeatedly.
func (b *Browser) StopBrowsing() {
	b.session.stop("stopped")
	b.stopResolvers()
}

// IsBrowsing reports whether the browse is running.
func (b *Browser) IsBrowsing() bool {
	return b.session.running()
}

// Pending returns the instances whose resolution is in flight, sorted by
// name.
func (b *Browser) Pending() []InstanceKey {
	keys := make([]InstanceKey, 0, len(b.pending))
	for k := range b.pending {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].InterfaceIndex < keys[j].InterfaceIndex
	})
	return keys
}

func (b *Browser) handleReply(_ dnssd.ServiceRef, flags dnssd.Flags, interfaceIndex uint32, errorCode dnssd.ErrorCode, serviceName, regtype, replyDomain string) {
	ev := Event{
		Kind:           KindBrowse,
		ErrorCode:      errorCode,
		Flags:          flags,
		InterfaceIndex: interfaceIndex,
		Name:           serviceName,
		Regtype:        regtype,
		Domain:         replyDomain,
		Added:          flags.Has(dnssd.FlagsAdd),
	}
	b.session.logReply(ev)

	if !ev.OK() {
		if ev.Regtype == "" {
			ev.Regtype = b.config.Regtype
		}
		b.session.logError(ev.Err(), "browse reply failed")
		if b.config.OnError != nil {
			b.config.OnError(ev)
		}
	}

	// Removals are reported whatever the error code; failed adds are
	// discarded.
	if !ev.Added {
		b.removed(ev)
		return
	}
	if ev.OK() {
		b.added(ev)
	}
}

func (b *Browser) added(ev Event) {
	key := ev.Key()
	b.session.logger.Debug("service found", "session", b.session.id, "instance", key, "if_index", key.InterfaceIndex)

	if b.config.OnAdded != nil {
		b.config.OnAdded(ev)
	}
	if _, inFlight := b.pending[key]; inFlight {
		return
	}

	var r *Resolver
	r, err := NewResolver(b.lib, b.loop, ResolverConfig{
		Name:           key.Name,
		Regtype:        key.Regtype,
		Domain:         key.Domain,
		InterfaceIndex: key.InterfaceIndex,
		Continuous:     b.config.ContinuousResolve,
		OnResolved:     b.config.OnResolved,
		OnDone: func() {
			if b.pending[key] == r {
				delete(b.pending, key)
			}
		},
		Logger:   b.session.logger,
		EventLog: b.session.events,
		Backend:  b.config.Backend,
	})
	if err != nil {
		b.session.logError(err, "failed to create resolver")
		return
	}

	b.pending[key] = r
	if err := r.StartResolving(); err != nil {
		delete(b.pending, key)
		return
	}
}

func (b *Browser) removed(ev Event) {
	key := ev.Key()
	for k, r := range b.pending {
		if k.sameInstance(key) {
			delete(b.pending, k)
			r.StopResolving()
		}
	}

	b.session.logger.Debug("service removed", "session", b.session.id, "instance", key)
	if b.config.OnRemoved != nil {
		b.config.OnRemoved(ev)
	}
}

func (b *Browser) stopResolvers() {
	for k, r := range b.pending {
		delete(b.pending, k)
		r.StopResolving()
	}
}
