// Package dnssd provides a callback-style DNS-SD API over pluggable mDNS
// backends.
//
// The API follows the shape of Apple's dns_sd.h: Register, Browse and
// Resolve each start an operation and return a ServiceRef. Replies are not
// delivered on their own. A backend queues them on the ServiceRef, whose
// Fileno becomes readable while replies are pending; calling ProcessResult
// dispatches exactly one queued reply, synchronously, to the callback given
// when the operation started. This lets a readiness-driven event loop decide
// on which goroutine, and when, callbacks run.
//
// # Backends
//
//   - memory: an in-process registry. Register, Browse and Resolve on the
//     same MemoryLibrary see each other without touching the network.
//   - zeroconf: github.com/enbility/zeroconf/v3.
//   - dnssd: github.com/brutella/dnssd responder and type lookups.
//   - mdns: github.com/hashicorp/mdns server and periodic queries.
//
// Select one with Open:
//
//	lib, err := dnssd.Open(dnssd.Config{Backend: dnssd.BackendZeroconf})
//
// # Error Codes
//
// Replies carry an ErrorCode using the dns_sd.h numbering, with
// ErrNoError (0) meaning success. ErrorCode implements error.
//
// # TXT Records
//
// TXTRecord is a key/value map passed through opaquely. Helpers convert it
// to the "key=value" string list mDNS libraries use and to the RFC 6763
// length-prefixed wire form.
package dnssd
