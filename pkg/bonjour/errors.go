package bonjour

import (
	"errors"
	"fmt"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
)

// Component errors.
var (
	// ErrAlreadyStarted is returned by Start* while a session is running.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrNotStarted is returned by operations that need a running session.
	ErrNotStarted = errors.New("session not started")

	// ErrInvalidName is returned for an empty or over-long instance name.
	ErrInvalidName = errors.New("invalid instance name")

	// ErrInvalidRegtype is returned for a malformed service type.
	ErrInvalidRegtype = errors.New("invalid service type")

	// ErrInvalidPort is returned for port 0.
	ErrInvalidPort = errors.New("invalid port")

	// ErrNotSupported is returned when the library lacks an optional
	// capability.
	ErrNotSupported = errors.New("not supported by discovery library")
)

// RegistrationError reports a failed registration.
type RegistrationError struct {
	Name string
	Code dnssd.ErrorCode

	// Err is the error returned by the library, if the failure was
	// synchronous.
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration of %q failed: %v", e.Name, e.cause())
}

func (e *RegistrationError) Unwrap() error {
	return e.cause()
}

func (e *RegistrationError) cause() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Code
}

// BrowseError reports a failed browse or a browse reply carrying an error.
type BrowseError struct {
	Regtype string
	Code    dnssd.ErrorCode
	Err     error
}

func (e *BrowseError) Error() string {
	return fmt.Sprintf("browse for %q failed: %v", e.Regtype, e.cause())
}

func (e *BrowseError) Unwrap() error {
	return e.cause()
}

func (e *BrowseError) cause() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Code
}

// ResolveError reports a failed resolution.
type ResolveError struct {
	Name string
	Code dnssd.ErrorCode
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve of %q failed: %v", e.Name, e.cause())
}

func (e *ResolveError) Unwrap() error {
	return e.cause()
}

func (e *ResolveError) cause() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Code
}
