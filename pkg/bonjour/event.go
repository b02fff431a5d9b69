package bonjour

import (
	"strings"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
)

// Kind identifies the operation an Event belongs to.
type Kind uint8

const (
	KindRegistration Kind = iota
	KindBrowse
	KindResolve
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRegistration:
		return "registration"
	case KindBrowse:
		return "browse"
	case KindResolve:
		return "resolve"
	default:
		return "unknown"
	}
}

// Event is delivered to component callbacks.
type Event struct {
	Kind           Kind
	ErrorCode      dnssd.ErrorCode
	Flags          dnssd.Flags
	InterfaceIndex uint32

	// Instance identity. Resolve events carry the instance that was
	// requested.
	Name    string
	Regtype string
	Domain  string

	// Added is set on browse events announcing an instance.
	Added bool

	// Resolve results.
	Fullname string
	Host     string
	Port     uint16
	TXT      dnssd.TXTRecord
}

// OK reports whether the event carries no error.
func (e Event) OK() bool {
	return e.ErrorCode == dnssd.ErrNoError
}

// Err returns the typed error for a non-zero ErrorCode, or nil.
func (e Event) Err() error {
	if e.OK() {
		return nil
	}
	switch e.Kind {
	case KindRegistration:
		return &RegistrationError{Name: e.Name, Code: e.ErrorCode}
	case KindBrowse:
		return &BrowseError{Regtype: e.Regtype, Code: e.ErrorCode}
	default:
		return &ResolveError{Name: e.Name, Code: e.ErrorCode}
	}
}

// Key returns the instance key of the event.
func (e Event) Key() InstanceKey {
	return InstanceKey{
		Name:           e.Name,
		Regtype:        dnssd.NormalizeRegtype(e.Regtype),
		Domain:         dnssd.NormalizeDomain(e.Domain),
		InterfaceIndex: e.InterfaceIndex,
	}
}

// InstanceKey identifies one discovered service instance.
type InstanceKey struct {
	Name           string
	Regtype        string
	Domain         string
	InterfaceIndex uint32
}

// String returns the instance's full DNS name.
func (k InstanceKey) String() string {
	return dnssd.ConstructFullName(k.Name, k.Regtype, k.Domain)
}

// sameInstance compares keys ignoring case and interface.
func (k InstanceKey) sameInstance(o InstanceKey) bool {
	return strings.EqualFold(k.Name, o.Name) && strings.EqualFold(k.Regtype, o.Regtype) && strings.EqualFold(k.Domain, o.Domain)
}
