package avr

import (
	"context"
	"fmt"

	"github.com/vsx-protocol/vsx-go/pkg/transport"
	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

// send delivers one fire-and-forget command: dial, write, drain, close.
// The receiver acknowledges on its own schedule, if at all, so there is
// no success to report; transport failures are logged and swallowed,
// and the next poll observes whatever the command achieved.
func (d *Device) send(ctx context.Context, op wire.Op, command string) {
	conn, err := transport.Dial(ctx, d.addr, d.timeout, d.logger)
	if err != nil {
		d.logError("", op.String()+" connect", err)
		return
	}
	defer conn.Close()

	if err := conn.SendLine(command); err != nil {
		d.logError(conn.ID(), op.String()+" send", err)
		return
	}
	d.logAction(conn.ID(), op, command)
	conn.Drain()
}

// TurnOn powers the zone on.
func (d *Device) TurnOn(ctx context.Context) {
	d.send(ctx, wire.OpPowerOn, d.cmds.PowerOn)
}

// TurnOff powers the zone off.
func (d *Device) TurnOff(ctx context.Context) {
	d.send(ctx, wire.OpPowerOff, d.cmds.PowerOff)
}

// VolumeUp raises the volume one step.
func (d *Device) VolumeUp(ctx context.Context) {
	d.send(ctx, wire.OpVolumeUp, d.cmds.VolumeUp)
}

// VolumeDown lowers the volume one step.
func (d *Device) VolumeDown(ctx context.Context) {
	d.send(ctx, wire.OpVolumeDown, d.cmds.VolumeDown)
}

// SetVolume sets the volume to a fraction of the wire maximum, clamped
// into [0, 1].
func (d *Device) SetVolume(ctx context.Context, level float64) {
	d.send(ctx, wire.OpVolumeSet, d.cmds.VolumeCommand(level))
}

// Mute engages or releases the zone mute.
func (d *Device) Mute(ctx context.Context, muted bool) {
	if muted {
		d.send(ctx, wire.OpMuteOn, d.cmds.MuteOn)
		return
	}
	d.send(ctx, wire.OpMuteOff, d.cmds.MuteOff)
}

// SelectSource switches the zone to the named input. The name must be
// in the source table. The returned errors report caller mistakes, not
// device conditions: ErrNoSources while the table is still empty,
// ErrUnknownSource for a name the table does not hold.
func (d *Device) SelectSource(ctx context.Context, name string) error {
	code, ok, empty := d.sourceCode(name)
	if !ok {
		if empty {
			return ErrNoSources
		}
		return fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	d.send(ctx, wire.OpSourceSet, d.cmds.SourceCommand(code))
	return nil
}
