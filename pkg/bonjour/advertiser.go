package bonjour

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	"github.com/mash-protocol/bonjour-go/pkg/log"
)

// AdvertiserConfig configures an Advertiser.
type AdvertiserConfig struct {
	// Name is the instance name (1-63 bytes).
	Name string

	// Regtype is the service type, e.g. "_echo._tcp".
	Regtype string

	// Domain defaults to "local".
	Domain string

	// Host is the target host. Empty means this machine.
	Host string

	// Port the service listens on. Must be non-zero.
	Port uint16

	// TXT record published with the instance.
	TXT dnssd.TXTRecord

	// Flags passed to the library, e.g. dnssd.FlagsNoAutoRename.
	Flags dnssd.Flags

	// InterfaceIndex restricts the registration. Zero means all interfaces.
	InterfaceIndex uint32

	// OnRegistered receives every registration reply.
	OnRegistered func(Event)

	// Logger for operational logging. Default: slog.Default().
	Logger *slog.Logger

	// EventLog records discovery events (optional).
	EventLog log.Logger

	// Backend names the library backend in event logs (optional).
	Backend string
}

// Advertiser publishes one service instance.
type Advertiser struct {
	lib     dnssd.Library
	config  AdvertiserConfig
	session *session

	registered *Event
}

// NewAdvertiser validates config and returns a stopped Advertiser.
func NewAdvertiser(lib dnssd.Library, loop Loop, config AdvertiserConfig) (*Advertiser, error) {
	if config.Name == "" || dnssd.ValidateInstanceName(config.Name) != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, config.Name)
	}
	if err := dnssd.ValidateRegtype(config.Regtype); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegtype, err)
	}
	if config.Port == 0 {
		return nil, ErrInvalidPort
	}
	config.Domain = dnssd.NormalizeDomain(config.Domain)

	a := &Advertiser{
		lib:     lib,
		config:  config,
		session: newSession(log.OperationRegister, loop, config.Logger, config.EventLog, config.Backend),
	}
	a.session.lost = func(error) { a.registered = nil }
	return a, nil
}

// StartAdvertising registers the instance. The outcome is delivered to
// OnRegistered from the loop.
func (a *Advertiser) StartAdvertising() error {
	c := a.config
	err := a.session.start(func() (dnssd.ServiceRef, error) {
		return a.lib.Register(c.Flags, c.InterfaceIndex, c.Name, c.Regtype, c.Domain, c.Host, c.Port, c.TXT, a.handleReply)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyStarted) {
			return err
		}
		regErr := &RegistrationError{Name: c.Name, Code: dnssd.CodeOf(err), Err: err}
		a.session.logError(regErr, "failed to register service")
		return regErr
	}

	a.session.logger.Debug("advertising service",
		"session", a.session.id,
		"name", c.Name,
		"regtype", c.Regtype,
		"domain", c.Domain,
		"port", c.Port)
	return nil
}

// StopAdvertising withdraws the instance. It is safe to call repeatedly and
// before StartAdvertising.
func (a *Advertiser) StopAdvertising() {
	a.session.stop("stopped")
	a.registered = nil
}

// IsAdvertising reports whether a registration session is running.
func (a *Advertiser) IsAdvertising() bool {
	return a.session.running()
}

// Registered returns the last successful registration reply.
func (a *Advertiser) Registered() (Event, bool) {
	if a.registered == nil {
		return Event{}, false
	}
	return *a.registered, true
}

// Config returns the advertiser configuration.
func (a *Advertiser) Config() AdvertiserConfig {
	return a.config
}

// UpdateTXT replaces the published TXT record of the running registration.
func (a *Advertiser) UpdateTXT(txt dnssd.TXTRecord) error {
	ref := a.session.ref()
	if ref == nil {
		return ErrNotStarted
	}
	updater, ok := a.lib.(dnssd.TXTUpdater)
	if !ok {
		return fmt.Errorf("%w: TXT update", ErrNotSupported)
	}
	if err := updater.UpdateTXT(ref, txt); err != nil {
		return fmt.Errorf("failed to update TXT record: %w", err)
	}
	a.config.TXT = txt.Clone()
	return nil
}

func (a *Advertiser) handleReply(_ dnssd.ServiceRef, flags dnssd.Flags, errorCode dnssd.ErrorCode, name, regtype, domain string) {
	ev := Event{
		Kind:      KindRegistration,
		ErrorCode: errorCode,
		Flags:     flags,
		Name:      name,
		Regtype:   regtype,
		Domain:    domain,
	}
	a.session.logReply(ev)

	if !ev.OK() {
		if ev.Name == "" {
			ev.Name = a.config.Name
		}
		a.session.logError(ev.Err(), "registration failed")
	} else {
		a.registered = &ev
		a.session.logger.Info("service registered",
			"session", a.session.id,
			"name", name,
			"regtype", regtype,
			"domain", domain)
	}

	if a.config.OnRegistered != nil {
		a.config.OnRegistered(ev)
	}
}
