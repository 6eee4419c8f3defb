package avr

import (
	"errors"
	"time"

	"github.com/vsx-protocol/vsx-go/pkg/log"
	"github.com/vsx-protocol/vsx-go/pkg/transport"
	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

// Driver errors.
var (
	// ErrHostMissing indicates a Config without a host.
	ErrHostMissing = errors.New("host not configured")

	// ErrZoneCount indicates a zone count outside 1..2.
	ErrZoneCount = errors.New("invalid zone count")

	// ErrNoSources indicates a source selection before any source is
	// known (no allowlist matched and no poll has learned the table yet).
	ErrNoSources = errors.New("no sources known")

	// ErrUnknownSource indicates a source name absent from the table.
	ErrUnknownSource = errors.New("unknown source")
)

// Config configures a Device.
type Config struct {
	// Host is the receiver's hostname or IP address. Required.
	Host string

	// Port is the receiver's control port (default: transport.DefaultPort).
	Port int

	// Name labels the device on log events and in snapshots.
	// If empty, Host is used.
	Name string

	// Zone selects the receiver zone to drive (default: wire.Zone1).
	Zone wire.Zone

	// Timeout bounds connecting and command writes
	// (default: transport.DefaultTimeout).
	Timeout time.Duration

	// Sources is an allowlist of display names, filtered against the
	// built-in catalog. Names the catalog does not know are dropped. If
	// the resulting table is empty, the first poll learns the table from
	// the receiver's named-source registry instead.
	Sources []string

	// Logger receives protocol events. If nil, logging is disabled.
	Logger log.Logger
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if c.Host == "" {
		return ErrHostMissing
	}
	return nil
}

// withDefaults returns a copy of c with unset fields filled in.
func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = transport.DefaultPort
	}
	if c.Zone == 0 {
		c.Zone = wire.Zone1
	}
	if c.Timeout <= 0 {
		c.Timeout = transport.DefaultTimeout
	}
	if c.Name == "" {
		c.Name = c.Host
	}
	if c.Logger == nil {
		c.Logger = log.NoopLogger{}
	}
	return c
}
