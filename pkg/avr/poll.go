package avr

import (
	"context"
	"errors"
	"strconv"

	"github.com/vsx-protocol/vsx-go/pkg/log"
	"github.com/vsx-protocol/vsx-go/pkg/transport"
	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

// Poll runs one full state refresh over one connection: power, volume,
// mute, the one-time source table learning pass, and the active source.
// It reports whether the receiver could be reached; after a successful
// dial every field degrades individually, so a cycle where every query
// times out still returns true.
//
// Poll must not be called concurrently for the same Device.
func (d *Device) Poll(ctx context.Context) bool {
	conn, err := transport.Dial(ctx, d.addr, d.timeout, d.logger)
	if err != nil {
		d.logError("", "poll connect", err)
		return false
	}
	defer conn.Close()

	d.pollPower(conn)
	d.pollVolume(conn)
	d.pollMute(conn)
	d.learnSources(conn)
	d.pollSource(conn)
	return true
}

// pollPower refreshes the power state. Power is tri-state and sticky: a
// zone that stops answering, or answers with an unrecognized code,
// keeps its previous state rather than flapping to unknown.
func (d *Device) pollPower(conn *transport.Conn) {
	reply, err := conn.Request(wire.OpPower, d.cmds.Power)
	if err != nil {
		if !errors.Is(err, transport.ErrNoReply) {
			d.logError(conn.ID(), "power query", err)
		}
		return
	}
	state, ok := d.cmds.DecodePower(reply)
	if !ok {
		return
	}
	d.setPower(conn.ID(), state)
}

// pollVolume refreshes the volume. No data or a malformed payload makes
// the volume unknown.
func (d *Device) pollVolume(conn *transport.Conn) {
	reply, err := conn.Request(wire.OpVolume, d.cmds.Volume)
	if err != nil {
		if !errors.Is(err, transport.ErrNoReply) {
			d.logError(conn.ID(), "volume query", err)
		}
		d.setVolume(conn.ID(), nil)
		return
	}
	level, err := d.cmds.DecodeVolume(reply)
	if err != nil {
		d.logError(conn.ID(), "volume decode", err)
		d.setVolume(conn.ID(), nil)
		return
	}
	d.setVolume(conn.ID(), &level)
}

// pollMute refreshes the mute state. No data makes it unknown.
func (d *Device) pollMute(conn *transport.Conn) {
	reply, err := conn.Request(wire.OpMute, d.cmds.Mute)
	if err != nil {
		if !errors.Is(err, transport.ErrNoReply) {
			d.logError(conn.ID(), "mute query", err)
		}
		d.setMuted(conn.ID(), nil)
		return
	}
	muted := d.cmds.DecodeMute(reply)
	d.setMuted(conn.ID(), &muted)
}

// pollSource refreshes the active input. A code the source table cannot
// resolve reports the source unknown, not an error.
func (d *Device) pollSource(conn *transport.Conn) {
	reply, err := conn.Request(wire.OpSource, d.cmds.Source)
	if err != nil {
		if !errors.Is(err, transport.ErrNoReply) {
			d.logError(conn.ID(), "source query", err)
		}
		d.setSource(conn.ID(), "")
		return
	}
	code, ok := d.cmds.DecodeSource(reply)
	if !ok {
		d.setSource(conn.ID(), "")
		return
	}
	d.setSource(conn.ID(), d.sourceName(code))
}

func (d *Device) setPower(connID string, state wire.PowerState) {
	d.mu.Lock()
	old := d.power
	d.power = state
	d.mu.Unlock()
	if old != state {
		d.logStateChange(connID, log.StateEntityPower, old.String(), state.String(), "")
	}
}

func (d *Device) setVolume(connID string, level *float64) {
	d.mu.Lock()
	old := d.volume
	d.volume = level
	d.mu.Unlock()
	if !floatEqual(old, level) {
		d.logStateChange(connID, log.StateEntityVolume, formatVolume(old), formatVolume(level), "")
	}
}

func (d *Device) setMuted(connID string, muted *bool) {
	d.mu.Lock()
	old := d.muted
	d.muted = muted
	d.mu.Unlock()
	if !boolEqual(old, muted) {
		d.logStateChange(connID, log.StateEntityMute, formatMuted(old), formatMuted(muted), "")
	}
}

func (d *Device) setSource(connID, name string) {
	d.mu.Lock()
	old := d.source
	d.source = name
	d.mu.Unlock()
	if old != name {
		d.logStateChange(connID, log.StateEntitySource, formatSource(old), formatSource(name), "")
	}
}

func floatEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func boolEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func formatVolume(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

func formatMuted(m *bool) string {
	if m == nil {
		return "unknown"
	}
	if *m {
		return "muted"
	}
	return "unmuted"
}

func formatSource(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}
