// Package bonjour bridges DNS-SD sessions into a readiness event loop.
//
// Every active operation (registration, browse or resolve) is a
// dnssd.ServiceRef whose descriptor becomes readable while replies are
// pending. A Descriptor wraps the ref and is registered with a Loop; when
// the loop reports readiness the Descriptor dispatches exactly one reply,
// so all component callbacks run on the loop goroutine.
//
// # Components
//
//   - Advertiser registers one service instance and reports the outcome.
//   - Browser watches a service type. Every instance that appears is handed
//     to a Resolver; every instance that disappears is reported through
//     OnRemoved and its in-flight resolution is cancelled.
//   - Resolver looks up host, port and TXT record of one instance and stops
//     itself after the first reply unless Continuous is set.
//
// # Usage
//
//	loop, _ := reactor.New(reactor.Config{})
//	lib, _ := dnssd.Open(dnssd.Config{Backend: dnssd.BackendZeroconf})
//
//	adv, err := bonjour.NewAdvertiser(lib, loop, bonjour.AdvertiserConfig{
//	    Name:    "myecho",
//	    Regtype: "_echo._tcp",
//	    Port:    8000,
//	    OnRegistered: func(ev bonjour.Event) { ... },
//	})
//	if err != nil { ... }
//	if err := adv.StartAdvertising(); err != nil { ... }
//	defer adv.StopAdvertising()
//
//	loop.Run(ctx)
//
// Components are not safe for concurrent use. Code running outside the loop
// goroutine marshals calls with reactor.CallFromLoop.
package bonjour
