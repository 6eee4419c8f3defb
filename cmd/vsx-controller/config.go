package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

// FileConfig mirrors the controller flags in YAML form. Durations are
// strings in Go syntax ("500ms", "2s"). Values set explicitly on the
// command line take precedence over the file.
//
//	host: 192.168.1.35
//	zone: 1
//	timeout: 500ms
//	interval: 5s
//	sources:
//	  - DVD
//	  - HDMI 1
//	protocol_log: den.vlog
type FileConfig struct {
	// Host is the receiver's hostname or IP address.
	Host string `yaml:"host"`

	// Port is the receiver's control port.
	Port int `yaml:"port,omitempty"`

	// Name labels the device in logs and output.
	Name string `yaml:"name,omitempty"`

	// Zone is the receiver zone to drive (1 or 2).
	Zone int `yaml:"zone,omitempty"`

	// Timeout bounds connecting and command writes.
	Timeout string `yaml:"timeout,omitempty"`

	// Interval is the watch-mode poll interval.
	Interval string `yaml:"interval,omitempty"`

	// Sources is the source allowlist.
	Sources []string `yaml:"sources,omitempty"`

	// ProtocolLog is the protocol event log path.
	ProtocolLog string `yaml:"protocol_log,omitempty"`

	timeout  time.Duration
	interval time.Duration
}

// TimeoutDuration returns the parsed timeout, zero when unset.
func (c *FileConfig) TimeoutDuration() time.Duration {
	return c.timeout
}

// IntervalDuration returns the parsed interval, zero when unset.
func (c *FileConfig) IntervalDuration() time.Duration {
	return c.interval
}

// ParseFileConfig parses and validates YAML config data.
func ParseFileConfig(data []byte) (*FileConfig, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port %d out of range", cfg.Port)
	}
	if cfg.Zone != 0 && !wire.Zone(cfg.Zone).Valid() {
		return nil, fmt.Errorf("zone %d not supported (use 1 or 2)", cfg.Zone)
	}

	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("timeout must not be negative")
		}
		cfg.timeout = d
	}

	if cfg.Interval != "" {
		d, err := time.ParseDuration(cfg.Interval)
		if err != nil {
			return nil, fmt.Errorf("invalid interval: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("interval must not be negative")
		}
		cfg.interval = d
	}

	return &cfg, nil
}

// LoadFileConfig reads and parses a YAML config file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseFileConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// flagsSet reports which flags were given on the command line.
func flagsSet() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// mergeConfig fills flag values from the config file. Flags listed in
// set were given explicitly on the command line and win.
func mergeConfig(fc *FileConfig, set map[string]bool) {
	if !set["host"] && fc.Host != "" {
		config.Host = fc.Host
	}
	if !set["port"] && fc.Port != 0 {
		config.Port = fc.Port
	}
	if !set["name"] && fc.Name != "" {
		config.Name = fc.Name
	}
	if !set["zone"] && fc.Zone != 0 {
		config.Zone = fc.Zone
	}
	if !set["timeout"] && fc.TimeoutDuration() != 0 {
		config.Timeout = fc.TimeoutDuration()
	}
	if !set["interval"] && fc.IntervalDuration() != 0 {
		config.Interval = fc.IntervalDuration()
	}
	if !set["sources"] && len(fc.Sources) > 0 {
		config.Sources = strings.Join(fc.Sources, ",")
	}
	if !set["protocol-log"] && fc.ProtocolLog != "" {
		config.ProtocolLog = fc.ProtocolLog
	}
}
