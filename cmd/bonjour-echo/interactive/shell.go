// Package interactive provides the interactive command-line interface
// for bonjour-echo.
package interactive

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	"github.com/mash-protocol/bonjour-go/pkg/echo"
)

// Loop runs functions on the event loop goroutine.
type Loop interface {
	CallFromLoop(fn func()) error
}

// Shell handles interactive mode for bonjour-echo.
type Shell struct {
	loop Loop
	svc  *echo.Service
	rl   *readline.Instance
}

// New creates a shell. Attach the service before calling Run.
func New(loop Loop) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "echo> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{loop: loop, rl: rl}, nil
}

// Attach sets the service the shell controls.
func (s *Shell) Attach(svc *echo.Service) {
	s.svc = svc
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Run starts the interactive command loop. cancel is called when the user
// exits.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		if !s.execute(ctx, s.rl.Stdout(), line) {
			cancel()
			return
		}
	}
}

// execute runs one command line and reports whether the shell should keep
// going.
func (s *Shell) execute(ctx context.Context, out io.Writer, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelpTo(out)
	case "status", "s":
		s.cmdStatus(out)
	case "peers", "p":
		s.cmdPeers(out)
	case "txt":
		s.cmdTXT(out, args)
	case "send":
		s.cmdSend(ctx, out, args)
	case "quit", "exit", "q":
		fmt.Fprintln(out, "Exiting...")
		return false
	default:
		fmt.Fprintf(out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

// loopTimeout bounds how long a command waits for the event loop.
const loopTimeout = 5 * time.Second

// callOnLoop runs fn on the loop goroutine and waits up to timeout for its
// result. A call that times out still runs later; its result is dropped.
func callOnLoop[T any](loop Loop, timeout time.Duration, fn func() T) (T, error) {
	var zero T
	result := make(chan T, 1)
	if err := loop.CallFromLoop(func() { result <- fn() }); err != nil {
		return zero, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case v := <-result:
		return v, nil
	case <-timer.C:
		return zero, fmt.Errorf("event loop did not respond")
	}
}

func (s *Shell) printHelp() {
	s.printHelpTo(s.rl.Stdout())
}

func (s *Shell) printHelpTo(out io.Writer) {
	fmt.Fprintln(out, `Commands:
  status, s               Show registration and browse state
  peers, p                List resolved echo services
  txt key=value ...       Replace the advertised TXT record
  send <peer> <message>   Send a message to a peer and print the echo
  help, ?                 Show this help
  quit, exit, q           Exit`)
}

// status is a snapshot of the service taken on the loop goroutine.
type status struct {
	name        string
	advertising bool
	browsing    bool
	pending     int
	txt         dnssd.TXTRecord
}

func (s *Shell) cmdStatus(out io.Writer) {
	st, err := callOnLoop(s.loop, loopTimeout, func() status {
		st := status{name: s.svc.Name()}
		if adv := s.svc.Advertiser(); adv != nil {
			st.advertising = adv.IsAdvertising()
			st.txt = adv.Config().TXT.Clone()
		}
		if b := s.svc.Browser(); b != nil {
			st.browsing = b.IsBrowsing()
			st.pending = len(b.Pending())
		}
		return st
	})
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	name := st.name
	if name == "" {
		name = "(not registered)"
	}
	fmt.Fprintf(out, "Name:        %s\n", name)
	fmt.Fprintf(out, "Port:        %d\n", s.svc.Server().Port())
	fmt.Fprintf(out, "Advertising: %v\n", st.advertising)
	fmt.Fprintf(out, "TXT:         %s\n", strings.Join(st.txt.Strings(), " "))
	fmt.Fprintf(out, "Browsing:    %v (%d resolving)\n", st.browsing, st.pending)
	fmt.Fprintf(out, "Connections: %d\n", s.svc.Server().ConnectionCount())
}

func (s *Shell) cmdPeers(out io.Writer) {
	peers := s.svc.Peers()
	if len(peers) == 0 {
		fmt.Fprintln(out, "No peers resolved")
		return
	}
	for _, p := range peers {
		self := ""
		if p.Self {
			self = " (self)"
		}
		fmt.Fprintf(out, "  %-24s %s  %s%s\n", p.Name, p.Address(), strings.Join(p.TXT.Strings(), " "), self)
	}
}

func (s *Shell) cmdTXT(out io.Writer, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(out, "Usage: txt key=value ...")
		return
	}
	txt := dnssd.StringsToTXTRecord(args)

	updateErr, err := callOnLoop(s.loop, loopTimeout, func() error {
		adv := s.svc.Advertiser()
		if adv == nil {
			return fmt.Errorf("service not started")
		}
		return adv.UpdateTXT(txt)
	})
	if err == nil {
		err = updateErr
	}
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "TXT updated: %s\n", strings.Join(txt.Strings(), " "))
}

func (s *Shell) cmdSend(ctx context.Context, out io.Writer, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(out, "Usage: send <peer> <message>")
		return
	}

	var peer *echo.Peer
	for _, p := range s.svc.Peers() {
		if strings.EqualFold(p.Name, args[0]) {
			peer = &p
			break
		}
	}
	if peer == nil {
		fmt.Fprintf(out, "Unknown peer: %s\n", args[0])
		return
	}

	reply, err := Send(ctx, peer.Address(), strings.Join(args[1:], " "))
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "%s> %s\n", peer.Name, reply)
}

// Send writes one line to an echo server and returns the echoed line.
func Send(ctx context.Context, address, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return "", fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	if _, err := fmt.Fprintln(conn, message); err != nil {
		return "", fmt.Errorf("failed to send: %w", err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read echo: %w", err)
	}
	return strings.TrimSuffix(line, "\n"), nil
}
