// Package echo is a TCP echo service that advertises itself over DNS-SD and
// tracks the other echo services it discovers.
//
// Server handles the protocol: every byte received on a connection is sent
// back. Service puts a Server on the network: it registers the listener as
// an "_echo._tcp" instance, browses for peers and resolves each one, all
// driven by the event loop.
package echo
