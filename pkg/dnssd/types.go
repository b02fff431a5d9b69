package dnssd

import (
	"errors"
	"fmt"
	"time"
)

// Defaults.
const (
	// DefaultDomain is the mDNS domain used when none is given.
	DefaultDomain = "local"

	// DefaultTTL is the record TTL used by backends that support one.
	DefaultTTL = 120 * time.Second

	// DefaultQueryInterval is how often polling backends re-query.
	DefaultQueryInterval = 5 * time.Second

	// DefaultQueryTimeout bounds a single query of polling backends.
	DefaultQueryTimeout = 2 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// MaxTXTStringLen is the maximum length of one TXT string.
	MaxTXTStringLen = 255
)

// InterfaceIndexAny means all interfaces.
const InterfaceIndexAny uint32 = 0

// InterfaceIndexLocalOnly marks operations that never leave this host.
const InterfaceIndexLocalOnly uint32 = ^uint32(0)

// Flags is the dns_sd.h flags bitmask.
type Flags uint32

// Flag values.
const (
	// FlagsMoreComing indicates more replies are queued on the same ref.
	FlagsMoreComing Flags = 0x1

	// FlagsAdd marks a browse reply for a service that appeared. Its absence
	// marks a removal.
	FlagsAdd Flags = 0x2

	// FlagsDefault marks the default domain in domain enumeration.
	FlagsDefault Flags = 0x4

	// FlagsNoAutoRename makes a registration fail with ErrNameConflict
	// instead of picking a new name.
	FlagsNoAutoRename Flags = 0x8

	// FlagsShared is used for shared records.
	FlagsShared Flags = 0x10

	// FlagsUnique is used for unique records.
	FlagsUnique Flags = 0x20
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// String returns the set flag names.
func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	names := []struct {
		flag Flags
		name string
	}{
		{FlagsMoreComing, "MoreComing"},
		{FlagsAdd, "Add"},
		{FlagsDefault, "Default"},
		{FlagsNoAutoRename, "NoAutoRename"},
		{FlagsShared, "Shared"},
		{FlagsUnique, "Unique"},
	}
	s := ""
	rest := f
	for _, n := range names {
		if f&n.flag != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
			rest &^= n.flag
		}
	}
	if rest != 0 {
		if s != "" {
			s += "|"
		}
		s += fmt.Sprintf("0x%x", uint32(rest))
	}
	return s
}

// ErrorCode is a dns_sd.h error code. ErrNoError (0) means success.
type ErrorCode int32

// Error code values.
const (
	ErrNoError           ErrorCode = 0
	ErrUnknown           ErrorCode = -65537
	ErrNoSuchName        ErrorCode = -65538
	ErrNoMemory          ErrorCode = -65539
	ErrBadParam          ErrorCode = -65540
	ErrBadReference      ErrorCode = -65541
	ErrBadState          ErrorCode = -65542
	ErrBadFlags          ErrorCode = -65543
	ErrUnsupported       ErrorCode = -65544
	ErrNotInitialized    ErrorCode = -65545
	ErrAlreadyRegistered ErrorCode = -65547
	ErrNameConflict      ErrorCode = -65548
	ErrInvalid           ErrorCode = -65549
	ErrFirewall          ErrorCode = -65550
	ErrIncompatible      ErrorCode = -65551
	ErrBadInterfaceIndex ErrorCode = -65552
	ErrRefused           ErrorCode = -65553
	ErrNoSuchRecord      ErrorCode = -65554
	ErrNoAuth            ErrorCode = -65555
	ErrNoSuchKey         ErrorCode = -65556
	ErrServiceNotRunning ErrorCode = -65563
	ErrTimeout           ErrorCode = -65568
)

var errorCodeNames = map[ErrorCode]string{
	ErrNoError:           "NoError",
	ErrUnknown:           "Unknown",
	ErrNoSuchName:        "NoSuchName",
	ErrNoMemory:          "NoMemory",
	ErrBadParam:          "BadParam",
	ErrBadReference:      "BadReference",
	ErrBadState:          "BadState",
	ErrBadFlags:          "BadFlags",
	ErrUnsupported:       "Unsupported",
	ErrNotInitialized:    "NotInitialized",
	ErrAlreadyRegistered: "AlreadyRegistered",
	ErrNameConflict:      "NameConflict",
	ErrInvalid:           "Invalid",
	ErrFirewall:          "Firewall",
	ErrIncompatible:      "Incompatible",
	ErrBadInterfaceIndex: "BadInterfaceIndex",
	ErrRefused:           "Refused",
	ErrNoSuchRecord:      "NoSuchRecord",
	ErrNoAuth:            "NoAuth",
	ErrNoSuchKey:         "NoSuchKey",
	ErrServiceNotRunning: "ServiceNotRunning",
	ErrTimeout:           "Timeout",
}

// String returns the code name.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// Error implements error.
func (c ErrorCode) Error() string {
	return fmt.Sprintf("dns-sd error %d (%s)", int32(c), c.String())
}

// OK reports whether c is ErrNoError.
func (c ErrorCode) OK() bool {
	return c == ErrNoError
}

// CodeOf maps err to an ErrorCode. nil maps to ErrNoError, an ErrorCode
// anywhere in the chain is returned as is, anything else maps to ErrUnknown.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrNoError
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	return ErrUnknown
}

// Library errors.
var (
	ErrClosed         = errors.New("service ref closed")
	ErrUnknownBackend = errors.New("unknown dns-sd backend")
)

// ServiceRef is a handle to one active Register, Browse or Resolve
// operation.
type ServiceRef interface {
	// ID uniquely identifies the operation (UUID).
	ID() string

	// Fileno returns a descriptor that is readable while replies are
	// pending, or -1 after Close.
	Fileno() int

	// ProcessResult dispatches at most one pending reply to the operation's
	// callback before returning. It returns ErrClosed after Close.
	ProcessResult() error

	// Close stops the operation and releases the descriptor. Calling Close
	// more than once is a no-op.
	Close() error
}

// RegisterReply is called with the outcome of a registration. name may
// differ from the requested name after an automatic rename.
type RegisterReply func(ref ServiceRef, flags Flags, errorCode ErrorCode, name, regtype, domain string)

// BrowseReply is called for every instance that appears (FlagsAdd set) or
// disappears (FlagsAdd clear).
type BrowseReply func(ref ServiceRef, flags Flags, interfaceIndex uint32, errorCode ErrorCode, serviceName, regtype, replyDomain string)

// ResolveReply is called with the target host, port and TXT record of a
// resolved instance. It may be called more than once.
type ResolveReply func(ref ServiceRef, flags Flags, interfaceIndex uint32, errorCode ErrorCode, fullname, hosttarget string, port uint16, txt TXTRecord)

// Library starts DNS-SD operations.
type Library interface {
	// Register advertises a service instance. An empty name uses the
	// host name, an empty domain uses DefaultDomain and an empty host uses
	// this machine.
	Register(flags Flags, interfaceIndex uint32, name, regtype, domain, host string, port uint16, txt TXTRecord, callback RegisterReply) (ServiceRef, error)

	// Browse watches for instances of regtype in domain.
	Browse(flags Flags, interfaceIndex uint32, regtype, domain string, callback BrowseReply) (ServiceRef, error)

	// Resolve looks up host, port and TXT record of one instance.
	Resolve(flags Flags, interfaceIndex uint32, name, regtype, domain string, callback ResolveReply) (ServiceRef, error)
}

// TXTUpdater is implemented by libraries that can change the TXT record of
// a live registration.
type TXTUpdater interface {
	UpdateTXT(ref ServiceRef, txt TXTRecord) error
}
