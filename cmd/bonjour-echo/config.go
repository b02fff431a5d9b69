package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	"github.com/mash-protocol/bonjour-go/pkg/echo"
)

// Config holds the bonjour-echo configuration. File keys match the flag
// names with dashes replaced by underscores.
type Config struct {
	Name        string            `yaml:"name"`
	Type        string            `yaml:"type"`
	Domain      string            `yaml:"domain"`
	Port        int               `yaml:"port"`
	Backend     string            `yaml:"backend"`
	Interface   string            `yaml:"interface"`
	LogLevel    string            `yaml:"log_level"`
	EventLog    string            `yaml:"event_log"`
	Interactive bool              `yaml:"interactive"`
	TXT         map[string]string `yaml:"txt"`
}

// DefaultConfig returns the demo defaults.
func DefaultConfig() Config {
	return Config{
		Name:     echo.DefaultName,
		Type:     echo.DefaultRegtype,
		Domain:   dnssd.DefaultDomain,
		Port:     echo.DefaultPort,
		Backend:  dnssd.BackendZeroconf,
		LogLevel: "info",
		TXT:      map[string]string{echo.TXTClientID: echo.DefaultClientID},
	}
}

// txtFlag collects repeated -txt key=value flags.
type txtFlag map[string]string

func (t txtFlag) String() string {
	return strings.Join(dnssd.TXTRecord(t).Strings(), ",")
}

func (t txtFlag) Set(s string) error {
	key, value, _ := strings.Cut(s, "=")
	if key == "" {
		return fmt.Errorf("invalid TXT entry %q, want key=value", s)
	}
	t[key] = value
	return nil
}

// parseConfig parses args, loads the -config file if given and applies
// every explicitly set flag on top of it.
func parseConfig(args []string, output io.Writer) (Config, error) {
	fs := flag.NewFlagSet("bonjour-echo", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		path  string
		flags = DefaultConfig()
		txt   = txtFlag{}
	)
	fs.StringVar(&path, "config", "", "Configuration file path (YAML)")
	fs.StringVar(&flags.Name, "name", flags.Name, "Service instance name")
	fs.StringVar(&flags.Type, "type", flags.Type, "Service type")
	fs.StringVar(&flags.Domain, "domain", flags.Domain, "Service domain")
	fs.IntVar(&flags.Port, "port", flags.Port, "Echo server port")
	fs.StringVar(&flags.Backend, "backend", flags.Backend, "Discovery backend: "+strings.Join(dnssd.Backends, ", "))
	fs.StringVar(&flags.Interface, "interface", "", "Network interface (default: all)")
	fs.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&flags.EventLog, "event-log", "", "Write discovery events to this .blog file")
	fs.BoolVar(&flags.Interactive, "interactive", false, "Start the interactive shell")
	fs.Var(txt, "txt", "TXT record entry key=value (repeatable)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			cfg.Name = flags.Name
		case "type":
			cfg.Type = flags.Type
		case "domain":
			cfg.Domain = flags.Domain
		case "port":
			cfg.Port = flags.Port
		case "backend":
			cfg.Backend = flags.Backend
		case "interface":
			cfg.Interface = flags.Interface
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "event-log":
			cfg.EventLog = flags.EventLog
		case "interactive":
			cfg.Interactive = flags.Interactive
		case "txt":
			cfg.TXT = txt
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadConfigFile reads YAML from path into cfg. Keys absent from the file
// keep their current value. A txt key replaces the TXT entries as a whole.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	txt := cfg.TXT
	cfg.TXT = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg.TXT = txt
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.TXT == nil {
		cfg.TXT = txt
	}
	return nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.Name == "" || len(c.Name) > dnssd.MaxInstanceNameLen {
		errs = append(errs, fmt.Errorf("name must be 1-%d bytes", dnssd.MaxInstanceNameLen))
	}
	if err := dnssd.ValidateRegtype(c.Type); err != nil {
		errs = append(errs, err)
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be 1-65535, got %d", c.Port))
	}
	if !slices.Contains(dnssd.Backends, c.Backend) {
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TXTRecord returns the configured TXT entries.
func (c Config) TXTRecord() dnssd.TXTRecord {
	return dnssd.TXTRecord(c.TXT).Clone()
}

// String summarises the configuration for the startup banner.
func (c Config) String() string {
	return fmt.Sprintf("%s.%s.%s port=%d backend=%s txt=%v", c.Name, c.Type, c.Domain, c.Port, c.Backend, c.TXTRecord().Strings())
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
