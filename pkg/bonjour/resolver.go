package bonjour

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	"github.com/mash-protocol/bonjour-go/pkg/log"
)

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	// Name, Regtype and Domain identify the instance, as reported by a
	// browse reply.
	Name    string
	Regtype string
	Domain  string

	// InterfaceIndex the instance was seen on. Zero means any.
	InterfaceIndex uint32

	// Continuous keeps the resolver running after the first reply so
	// later changes (TXT updates, port moves) are delivered too.
	Continuous bool

	// OnResolved receives every reply, successful or not.
	OnResolved func(Event)

	// OnDone is called when the resolver stopped itself, either after its
	// first reply or because the loop dropped it. It is not called by
	// StopResolving.
	OnDone func()

	// Logger for operational logging. Default: slog.Default().
	Logger *slog.Logger

	// EventLog records discovery events (optional).
	EventLog log.Logger

	// Backend names the library backend in event logs (optional).
	Backend string
}

// Resolver resolves one service instance to host, port and TXT record.
type Resolver struct {
	lib     dnssd.Library
	config  ResolverConfig
	session *session

	resolved *Event
}

// NewResolver validates config and returns a stopped Resolver.
func NewResolver(lib dnssd.Library, loop Loop, config ResolverConfig) (*Resolver, error) {
	if config.Name == "" || dnssd.ValidateInstanceName(config.Name) != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, config.Name)
	}
	if err := dnssd.ValidateRegtype(config.Regtype); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegtype, err)
	}
	config.Regtype = dnssd.NormalizeRegtype(config.Regtype)
	config.Domain = dnssd.NormalizeDomain(config.Domain)

	r := &Resolver{
		lib:     lib,
		config:  config,
		session: newSession(log.OperationResolve, loop, config.Logger, config.EventLog, config.Backend),
	}
	r.session.lost = func(error) { r.done() }
	return r, nil
}

// Key returns the instance the resolver looks up.
func (r *Resolver) Key() InstanceKey {
	return InstanceKey{
		Name:           r.config.Name,
		Regtype:        r.config.Regtype,
		Domain:         r.config.Domain,
		InterfaceIndex: r.config.InterfaceIndex,
	}
}

// StartResolving starts the lookup.
func (r *Resolver) StartResolving() error {
	c := r.config
	err := r.session.start(func() (dnssd.ServiceRef, error) {
		return r.lib.Resolve(0, c.InterfaceIndex, c.Name, c.Regtype, c.Domain, r.handleReply)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyStarted) {
			return err
		}
		resErr := &ResolveError{Name: c.Name, Code: dnssd.CodeOf(err), Err: err}
		r.session.logError(resErr, "failed to resolve service")
		return resErr
	}
	r.session.logger.Debug("resolving service", "session", r.session.id, "instance", r.Key())
	return nil
}

// StopResolving cancels the lookup. It is safe to call repeatedly.
func (r *Resolver) StopResolving() {
	r.session.stop("stopped")
}

// IsResolving reports whether the lookup is running.
func (r *Resolver) IsResolving() bool {
	return r.session.running()
}

// Resolved returns the last successful reply.
func (r *Resolver) Resolved() (Event, bool) {
	if r.resolved == nil {
		return Event{}, false
	}
	return *r.resolved, true
}

func (r *Resolver) handleReply(_ dnssd.ServiceRef, flags dnssd.Flags, interfaceIndex uint32, errorCode dnssd.ErrorCode, fullname, hosttarget string, port uint16, txt dnssd.TXTRecord) {
	ev := Event{
		Kind:           KindResolve,
		ErrorCode:      errorCode,
		Flags:          flags,
		InterfaceIndex: interfaceIndex,
		Name:           r.config.Name,
		Regtype:        r.config.Regtype,
		Domain:         r.config.Domain,
		Fullname:       fullname,
		Host:           hosttarget,
		Port:           port,
		TXT:            txt,
	}
	r.session.logReply(ev)

	if ev.OK() {
		r.resolved = &ev
		r.session.logger.Info("service resolved",
			"session", r.session.id,
			"fullname", fullname,
			"host", hosttarget,
			"port", port)
	} else {
		r.session.logError(ev.Err(), "resolve failed")
	}

	if r.config.OnResolved != nil {
		r.config.OnResolved(ev)
	}

	// A failed reply ends the session even when continuous.
	if (!r.config.Continuous || !ev.OK()) && r.session.running() {
		r.session.stop("resolved")
		r.done()
	}
}

func (r *Resolver) done() {
	if r.config.OnDone != nil {
		r.config.OnDone()
	}
}
