package bonjour

import (
	"log/slog"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	"github.com/mash-protocol/bonjour-go/pkg/reactor"
)

// Descriptor exposes a ServiceRef to the event loop.
type Descriptor struct {
	ref     dnssd.ServiceRef
	session string
	logger  *slog.Logger

	// onLost runs after the loop dropped the descriptor and the ref was
	// closed.
	onLost func(reason error)
}

// Compile-time interface satisfaction check.
var _ reactor.ReadDescriptor = (*Descriptor)(nil)

// NewDescriptor wraps ref. A nil logger uses slog.Default().
func NewDescriptor(ref dnssd.ServiceRef, logger *slog.Logger) *Descriptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Descriptor{ref: ref, logger: logger}
}

// Ref returns the wrapped ref, or nil after Close.
func (d *Descriptor) Ref() dnssd.ServiceRef {
	return d.ref
}

// Fileno returns the ref's descriptor, or -1 once closed.
func (d *Descriptor) Fileno() int {
	if d.ref == nil {
		return -1
	}
	return d.ref.Fileno()
}

// DoRead dispatches one pending reply. A processing failure is logged and
// the session stays open.
func (d *Descriptor) DoRead() error {
	if d.ref == nil {
		return nil
	}
	if err := d.ref.ProcessResult(); err != nil {
		d.logger.Warn("failed to process dns-sd result",
			"session", d.session,
			"fd", d.Fileno(),
			"error", err)
	}
	return nil
}

// ConnectionLost closes the ref after the loop dropped the descriptor.
func (d *Descriptor) ConnectionLost(reason error) {
	if d.ref == nil {
		return
	}
	d.logger.Debug("dns-sd descriptor lost", "session", d.session, "reason", reason)
	d.Close()
	if d.onLost != nil {
		d.onLost(reason)
	}
}

// Close closes the ref. Repeated calls are no-ops.
func (d *Descriptor) Close() {
	if d.ref == nil {
		return
	}
	ref := d.ref
	d.ref = nil
	if err := ref.Close(); err != nil {
		d.logger.Debug("failed to close service ref", "session", d.session, "error", err)
	}
}
