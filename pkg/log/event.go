package log

import (
	"strings"
	"time"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
)

// Event is one recorded discovery event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the component run that produced the event (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Operation is the DNS-SD operation of the session.
	Operation Operation `cbor:"3,keyasint"`

	// Category selects the payload.
	Category Category `cbor:"4,keyasint"`

	// Backend names the discovery library backend, when known.
	Backend string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Reply *ReplyEvent     `cbor:"10,keyasint,omitempty"`
	State *StateEvent     `cbor:"11,keyasint,omitempty"`
	Error *ErrorEventData `cbor:"12,keyasint,omitempty"`
}

// Operation is the DNS-SD operation a session performs.
type Operation uint8

const (
	// OperationRegister is a service registration.
	OperationRegister Operation = 0
	// OperationBrowse is a browse for a service type.
	OperationBrowse Operation = 1
	// OperationResolve is a resolve of one instance.
	OperationResolve Operation = 2
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OperationRegister:
		return "REGISTER"
	case OperationBrowse:
		return "BROWSE"
	case OperationResolve:
		return "RESOLVE"
	default:
		return "UNKNOWN"
	}
}

// ParseOperation parses an operation name as printed by String,
// case-insensitively.
func ParseOperation(s string) (Operation, bool) {
	for _, o := range []Operation{OperationRegister, OperationBrowse, OperationResolve} {
		if strings.EqualFold(s, o.String()) {
			return o, true
		}
	}
	return 0, false
}

// Category classifies the event.
type Category uint8

const (
	// CategoryReply is a library reply delivered to the session.
	CategoryReply Category = 0
	// CategoryState is a session lifecycle change.
	CategoryState Category = 1
	// CategoryError is an error detected by the session.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryReply:
		return "REPLY"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory parses a category name as printed by String,
// case-insensitively.
func ParseCategory(s string) (Category, bool) {
	for _, c := range []Category{CategoryReply, CategoryState, CategoryError} {
		if strings.EqualFold(s, c.String()) {
			return c, true
		}
	}
	return 0, false
}

// ReplyEvent captures the arguments of one library reply callback.
// Fields not carried by the reply's operation are left empty.
type ReplyEvent struct {
	Flags          dnssd.Flags     `cbor:"1,keyasint"`
	InterfaceIndex uint32          `cbor:"2,keyasint,omitempty"`
	ErrorCode      dnssd.ErrorCode `cbor:"3,keyasint,omitempty"`

	// Register and browse replies.
	Name    string `cbor:"4,keyasint,omitempty"`
	Regtype string `cbor:"5,keyasint,omitempty"`
	Domain  string `cbor:"6,keyasint,omitempty"`

	// Resolve replies.
	Fullname string            `cbor:"7,keyasint,omitempty"`
	Host     string            `cbor:"8,keyasint,omitempty"`
	Port     uint16            `cbor:"9,keyasint,omitempty"`
	TXT      map[string]string `cbor:"10,keyasint,omitempty"`
}

// Added reports whether a browse reply announced an instance.
func (r *ReplyEvent) Added() bool {
	return r.Flags.Has(dnssd.FlagsAdd)
}

// SessionState is a session lifecycle state.
type SessionState uint8

const (
	// StateStarted means the operation was handed to the library.
	StateStarted SessionState = 0
	// StateStopped means the session was closed.
	StateStopped SessionState = 1
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case StateStarted:
		return "STARTED"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// StateEvent captures a session lifecycle change.
type StateEvent struct {
	State SessionState `cbor:"1,keyasint"`

	// Reason explains a stop ("stopped", "resolved", "connection lost: ...").
	Reason string `cbor:"2,keyasint,omitempty"`
}

// ErrorEventData captures an error.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Code is the DNS-SD error code, if the error carried one.
	Code dnssd.ErrorCode `cbor:"2,keyasint,omitempty"`

	// Context describes what was being done.
	Context string `cbor:"3,keyasint,omitempty"`
}

// IsError reports whether the event is an error event or a reply carrying a
// non-zero error code.
func (e Event) IsError() bool {
	if e.Category == CategoryError {
		return true
	}
	return e.Reply != nil && e.Reply.ErrorCode != dnssd.ErrNoError
}
