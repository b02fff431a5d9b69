// Command bonjour-echo runs a TCP echo server, advertises it over DNS-SD
// and lists the other echo servers it discovers.
//
// Usage:
//
//	bonjour-echo [flags]
//
// Flags:
//
//	-config string      Configuration file path (YAML)
//	-name string        Service instance name (default "myecho")
//	-type string        Service type (default "_echo._tcp")
//	-domain string      Service domain (default "local")
//	-port int           Echo server port (default 8000)
//	-backend string     Discovery backend: memory, zeroconf, dnssd, mdns (default "zeroconf")
//	-interface string   Network interface (default: all)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-event-log string   Write discovery events to this .blog file
//	-interactive        Start the interactive shell
//	-txt key=value      TXT record entry (repeatable)
//
// Examples:
//
//	# Advertise "myecho" on port 8000 and browse for peers
//	bonjour-echo
//
//	# Second instance on the same host, recording discovery events
//	bonjour-echo -name other -port 8001 -event-log /tmp/other.blog
//
//	# Use the hashicorp/mdns backend with an interactive shell
//	bonjour-echo -backend mdns -interactive -log-level debug
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mash-protocol/bonjour-go/cmd/bonjour-echo/interactive"
	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	"github.com/mash-protocol/bonjour-go/pkg/echo"
	"github.com/mash-protocol/bonjour-go/pkg/log"
	"github.com/mash-protocol/bonjour-go/pkg/reactor"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loop, err := reactor.New(reactor.Config{})
	if err != nil {
		return err
	}
	defer loop.Close()

	var (
		output io.Writer = os.Stderr
		shell  *interactive.Shell
	)
	if cfg.Interactive {
		shell, err = interactive.New(loop)
		if err != nil {
			return err
		}
		output = shell.Stdout()
	}

	logger := setupLogging(cfg.LogLevel, output)
	logger.Info("bonjour-echo starting", "config", cfg.String())

	events, closeEvents, err := setupEventLog(cfg, logger)
	if err != nil {
		return err
	}
	defer closeEvents()

	lib, err := dnssd.Open(dnssd.Config{
		Backend:   cfg.Backend,
		Interface: cfg.Interface,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	svc := echo.NewService(lib, loop, echo.ServiceConfig{
		Name:     cfg.Name,
		Regtype:  cfg.Type,
		Domain:   cfg.Domain,
		Address:  fmt.Sprintf(":%d", cfg.Port),
		TXT:      cfg.TXTRecord(),
		Logger:   logger,
		EventLog: events,
		Backend:  cfg.Backend,
	})
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start echo service: %w", err)
	}

	if shell != nil {
		shell.Attach(svc)
		go shell.Run(ctx, cancel)
	}

	if err := loop.Run(ctx); err != nil {
		logger.Error("event loop failed", "error", err)
	}

	logger.Info("shutting down")
	if err := svc.Stop(); err != nil {
		logger.Warn("error stopping echo server", "error", err)
	}
	return nil
}

func setupLogging(level string, w io.Writer) *slog.Logger {
	lvl, err := parseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// setupEventLog mirrors discovery events to the debug log and, if
// configured, to a .blog file.
func setupEventLog(cfg Config, logger *slog.Logger) (log.Logger, func(), error) {
	var loggers []log.Logger
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		loggers = append(loggers, log.NewSlogAdapter(logger))
	}

	closeFn := func() {}
	if cfg.EventLog != "" {
		fl, err := log.NewFileLogger(cfg.EventLog)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("recording discovery events", "path", fl.Path())
		loggers = append(loggers, fl)
		closeFn = func() {
			if err := fl.Close(); err != nil {
				logger.Warn("failed to close event log", "error", err)
			}
			if n := fl.Dropped(); n > 0 {
				logger.Warn("discovery events dropped", "count", n)
			}
		}
	}

	switch len(loggers) {
	case 0:
		return log.NoopLogger{}, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return log.NewMultiLogger(loggers...), closeFn, nil
	}
}
