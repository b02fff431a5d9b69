package echo

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mash-protocol/bonjour-go/pkg/bonjour"
	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	"github.com/mash-protocol/bonjour-go/pkg/log"
)

// Service defaults.
const (
	DefaultName     = "myecho"
	DefaultRegtype  = "_echo._tcp"
	DefaultClientID = "station-1"

	// TXTClientID is the TXT key identifying the station.
	TXTClientID = "client_id"
)

// ServiceConfig configures an echo Service.
type ServiceConfig struct {
	// Name is the advertised instance name. Default: "myecho".
	Name string

	// Regtype is the advertised and browsed type. Default: "_echo._tcp".
	Regtype string

	// Domain defaults to "local".
	Domain string

	// Address the echo server listens on. Default: ":8000".
	Address string

	// TXT is published with the instance. Default: client_id=station-1.
	TXT dnssd.TXTRecord

	// Logger for operational logging. Default: slog.Default().
	Logger *slog.Logger

	// EventLog records discovery events (optional).
	EventLog log.Logger

	// Backend names the library backend in event logs (optional).
	Backend string

	// OnPeersChanged is called on the loop goroutine after the peer list
	// changed (optional).
	OnPeersChanged func()
}

// DefaultServiceConfig returns the demo configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:    DefaultName,
		Regtype: DefaultRegtype,
		Domain:  dnssd.DefaultDomain,
		Address: fmt.Sprintf(":%d", DefaultPort),
		TXT:     dnssd.TXTRecord{TXTClientID: DefaultClientID},
	}
}

// Peer is a resolved echo service instance.
type Peer struct {
	Name     string
	Fullname string
	Host     string
	Port     uint16
	TXT      dnssd.TXTRecord

	// Self is set for this service's own registration.
	Self bool

	ResolvedAt time.Time
}

// Address returns host:port for dialing.
func (p Peer) Address() string {
	return fmt.Sprintf("%s:%d", strings.TrimSuffix(p.Host, "."), p.Port)
}

// Service runs an echo server and makes it discoverable.
type Service struct {
	config ServiceConfig
	logger *slog.Logger
	lib    dnssd.Library
	loop   bonjour.Loop

	server     *Server
	advertiser *bonjour.Advertiser
	browser    *bonjour.Browser

	// name is the registered (possibly renamed) instance name.
	name string

	peersMu sync.RWMutex
	peers   map[string]Peer
}

// NewService creates a stopped service.
func NewService(lib dnssd.Library, loop bonjour.Loop, config ServiceConfig) *Service {
	d := DefaultServiceConfig()
	if config.Name == "" {
		config.Name = d.Name
	}
	if config.Regtype == "" {
		config.Regtype = d.Regtype
	}
	if config.Address == "" {
		config.Address = d.Address
	}
	if config.TXT == nil {
		config.TXT = d.TXT
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		config: config,
		logger: logger,
		lib:    lib,
		loop:   loop,
		server: NewServer(ServerConfig{Address: config.Address, Logger: logger}),
		peers:  make(map[string]Peer),
	}
}

// Start starts the echo server, then advertises its port and browses for
// peers. It must run on the loop goroutine or before the loop runs.
func (s *Service) Start(ctx context.Context) error {
	if err := s.server.Start(ctx); err != nil {
		return err
	}

	adv, err := bonjour.NewAdvertiser(s.lib, s.loop, bonjour.AdvertiserConfig{
		Name:         s.config.Name,
		Regtype:      s.config.Regtype,
		Domain:       s.config.Domain,
		Port:         s.server.Port(),
		TXT:          s.config.TXT,
		OnRegistered: s.onRegistered,
		Logger:       s.logger,
		EventLog:     s.config.EventLog,
		Backend:      s.config.Backend,
	})
	if err != nil {
		s.server.Stop()
		return fmt.Errorf("failed to create advertiser: %w", err)
	}

	browser, err := bonjour.NewBrowser(s.lib, s.loop, bonjour.BrowserConfig{
		Regtype:    s.config.Regtype,
		Domain:     s.config.Domain,
		OnResolved: s.onResolved,
		OnRemoved:  s.onRemoved,
		Logger:     s.logger,
		EventLog:   s.config.EventLog,
		Backend:    s.config.Backend,
	})
	if err != nil {
		s.server.Stop()
		return fmt.Errorf("failed to create browser: %w", err)
	}

	if err := adv.StartAdvertising(); err != nil {
		s.server.Stop()
		return err
	}
	if err := browser.StartBrowsing(); err != nil {
		adv.StopAdvertising()
		s.server.Stop()
		return err
	}

	s.advertiser = adv
	s.browser = browser
	return nil
}

// Stop withdraws the advertisement, stops browsing and shuts the server
// down. It must run on the loop goroutine or after the loop stopped.
func (s *Service) Stop() error {
	if s.browser != nil {
		s.browser.StopBrowsing()
	}
	if s.advertiser != nil {
		s.advertiser.StopAdvertising()
	}
	return s.server.Stop()
}

// Server returns the echo server.
func (s *Service) Server() *Server {
	return s.server
}

// Advertiser returns the advertiser, or nil before Start.
func (s *Service) Advertiser() *bonjour.Advertiser {
	return s.advertiser
}

// Browser returns the browser, or nil before Start.
func (s *Service) Browser() *bonjour.Browser {
	return s.browser
}

// Name returns the registered instance name, or "" before registration.
func (s *Service) Name() string {
	return s.name
}

// Peers returns the resolved instances sorted by name. Safe for concurrent
// use.
func (s *Service) Peers() []Peer {
	s.peersMu.RLock()
	defer s.peersMu.RUnlock()

	peers := make([]Peer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].Name < peers[j].Name })
	return peers
}

func (s *Service) onRegistered(ev bonjour.Event) {
	if err := ev.Err(); err != nil {
		s.logger.Error("echo service registration failed", "name", ev.Name, "error", err)
		return
	}
	s.name = ev.Name
	s.logger.Info("echo service registered",
		"name", ev.Name,
		"regtype", ev.Regtype,
		"domain", ev.Domain,
		"port", s.server.Port())

	// A resolve may have arrived before our own registration reply.
	s.peersMu.Lock()
	for k, p := range s.peers {
		p.Self = strings.EqualFold(p.Name, s.name)
		s.peers[k] = p
	}
	s.peersMu.Unlock()
}

func (s *Service) onResolved(ev bonjour.Event) {
	if err := ev.Err(); err != nil {
		s.logger.Warn("echo peer resolution failed", "name", ev.Name, "error", err)
		return
	}

	peer := Peer{
		Name:       ev.Name,
		Fullname:   ev.Fullname,
		Host:       ev.Host,
		Port:       ev.Port,
		TXT:        ev.TXT,
		Self:       s.name != "" && strings.EqualFold(ev.Name, s.name),
		ResolvedAt: time.Now(),
	}
	s.logger.Info("echo peer resolved",
		"name", peer.Name,
		"host", peer.Host,
		"port", peer.Port,
		"client_id", peer.TXT[TXTClientID])

	s.peersMu.Lock()
	s.peers[strings.ToLower(ev.Name)] = peer
	s.peersMu.Unlock()
	s.changed()
}

func (s *Service) onRemoved(ev bonjour.Event) {
	s.logger.Info("echo peer removed", "name", ev.Name)

	s.peersMu.Lock()
	_, known := s.peers[strings.ToLower(ev.Name)]
	delete(s.peers, strings.ToLower(ev.Name))
	s.peersMu.Unlock()

	if known {
		s.changed()
	}
}

func (s *Service) changed() {
	if s.config.OnPeersChanged != nil {
		s.config.OnPeersChanged()
	}
}
