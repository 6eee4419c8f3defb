package avr

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/vsx-protocol/vsx-go/pkg/log"
	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

// Device drives one receiver zone. It holds the zone's command set, the
// last polled state and the source table. Create one per zone with New
// or NewZones.
type Device struct {
	name    string
	addr    string
	timeout time.Duration
	zone    wire.Zone
	cmds    wire.CommandSet
	logger  log.Logger

	mu           sync.RWMutex
	power        wire.PowerState
	volume       *float64
	muted        *bool
	source       string
	sourceByName map[string]string
	sourceByCode map[string]string
}

// State is a point-in-time copy of a zone's state. Nil pointers and an
// empty Source mean the field is unknown.
type State struct {
	Power  wire.PowerState
	Volume *float64
	Muted  *bool
	Source string
}

// New creates the Device for one zone. The zone and host are validated
// here; an unsupported zone is a configuration mistake, not a runtime
// condition. The device starts with every field unknown until the first
// poll.
func New(cfg Config) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	cmds, err := wire.Commands(cfg.Zone)
	if err != nil {
		return nil, err
	}

	d := &Device{
		name:         cfg.Name,
		addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		timeout:      cfg.Timeout,
		zone:         cfg.Zone,
		cmds:         cmds,
		sourceByName: make(map[string]string),
		sourceByCode: make(map[string]string),
	}
	d.logger = tagLogger{device: d.name, zone: int(d.zone), next: cfg.Logger}

	d.seedSources(cfg.Sources)
	return d, nil
}

// NewZones creates one Device per zone 1..count sharing the same config.
// Devices for zones above 1 get a " zone N" name suffix. A count beyond
// the supported zones fails the same way an unsupported Config.Zone
// does.
func NewZones(cfg Config, count int) ([]*Device, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: %d", ErrZoneCount, count)
	}

	baseName := cfg.Name
	if baseName == "" {
		baseName = cfg.Host
	}

	devices := make([]*Device, 0, count)
	for z := 1; z <= count; z++ {
		zcfg := cfg
		zcfg.Zone = wire.Zone(z)
		if z > 1 {
			zcfg.Name = fmt.Sprintf("%s %s", baseName, zcfg.Zone)
		}
		d, err := New(zcfg)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// Name returns the device name.
func (d *Device) Name() string {
	return d.name
}

// Zone returns the receiver zone this device drives.
func (d *Device) Zone() wire.Zone {
	return d.zone
}

// Addr returns the receiver address (host:port).
func (d *Device) Addr() string {
	return d.addr
}

// PowerState returns the zone power state, PowerUnknown before the
// first conclusive poll.
func (d *Device) PowerState() wire.PowerState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.power
}

// VolumeLevel returns the volume as a fraction of the wire maximum.
// ok is false while the volume is unknown.
func (d *Device) VolumeLevel() (level float64, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.volume == nil {
		return 0, false
	}
	return *d.volume, true
}

// Muted returns the mute state. ok is false while it is unknown.
func (d *Device) Muted() (muted bool, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.muted == nil {
		return false, false
	}
	return *d.muted, true
}

// Source returns the active input name. ok is false while the source is
// unknown or its code has no name in the table.
func (d *Device) Source() (name string, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.source == "" {
		return "", false
	}
	return d.source, true
}

// SourceNames returns the selectable input names, sorted.
func (d *Device) SourceNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.sourceByName))
	for name := range d.sourceByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the current zone state.
func (d *Device) Snapshot() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := State{Power: d.power, Source: d.source}
	if d.volume != nil {
		v := *d.volume
		s.Volume = &v
	}
	if d.muted != nil {
		m := *d.muted
		s.Muted = &m
	}
	return s
}

// tagLogger stamps the device name and zone onto every event before
// forwarding, so transport lines are attributable to their device.
type tagLogger struct {
	device string
	zone   int
	next   log.Logger
}

func (t tagLogger) Log(event log.Event) {
	if event.Device == "" {
		event.Device = t.device
	}
	if event.Zone == 0 {
		event.Zone = t.zone
	}
	t.next.Log(event)
}

func (d *Device) logAction(connID string, op wire.Op, command string) {
	d.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerDriver,
		Category:     log.CategoryAction,
		RemoteAddr:   d.addr,
		Action:       &log.ActionEvent{Op: op, Command: command},
	})
}

func (d *Device) logStateChange(connID string, entity log.StateEntity, oldState, newState, reason string) {
	d.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Layer:        log.LayerDriver,
		Category:     log.CategoryState,
		RemoteAddr:   d.addr,
		StateChange: &log.StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (d *Device) logError(connID, context string, err error) {
	d.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Layer:        log.LayerDriver,
		Category:     log.CategoryError,
		RemoteAddr:   d.addr,
		Error: &log.ErrorEventData{
			Layer:   log.LayerDriver,
			Message: err.Error(),
			Context: context,
		},
	})
}
