package bonjour

import (
	"github.com/mash-protocol/bonjour-go/pkg/reactor"
)

// Loop is the subset of the event loop the components need.
type Loop interface {
	// AddReader registers d for read readiness.
	AddReader(d reactor.ReadDescriptor) error

	// RemoveReader unregisters d without calling ConnectionLost.
	RemoveReader(d reactor.ReadDescriptor)
}

// Compile-time interface satisfaction check.
var _ Loop = (*reactor.Reactor)(nil)
