package avr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsx-protocol/vsx-go/pkg/log"
	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

// --- action encoding tests ---

func TestActions_Zone1Encoding(t *testing.T) {
	r := newFakeReceiver(t, nil)
	cfg := r.config()
	cfg.Sources = []string{"DVD"}
	d, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	d.TurnOn(ctx)
	d.TurnOff(ctx)
	d.VolumeUp(ctx)
	d.VolumeDown(ctx)
	d.Mute(ctx, true)
	d.Mute(ctx, false)
	d.SetVolume(ctx, 0.5)
	require.NoError(t, d.SelectSource(ctx, "DVD"))

	got := r.waitReceived(t, 8)
	assert.Equal(t, []string{"PO", "PF", "VU", "VD", "MO", "MF", "093VL", "04FN"}, got)
}

func TestActions_Zone2Encoding(t *testing.T) {
	r := newFakeReceiver(t, nil)
	cfg := r.config()
	cfg.Zone = wire.Zone2
	cfg.Sources = []string{"HDMI 1"}
	d, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	d.TurnOn(ctx)
	d.TurnOff(ctx)
	d.VolumeUp(ctx)
	d.VolumeDown(ctx)
	d.Mute(ctx, true)
	d.Mute(ctx, false)
	d.SetVolume(ctx, 0.5)
	require.NoError(t, d.SelectSource(ctx, "HDMI 1"))

	got := r.waitReceived(t, 8)
	assert.Equal(t, []string{"APO", "APF", "ZU", "ZD", "Z2MO", "Z2MF", "093ZV", "19ZS"}, got)
}

func TestSetVolume_Clamps(t *testing.T) {
	r := newFakeReceiver(t, nil)
	d, err := New(r.config())
	require.NoError(t, err)

	ctx := context.Background()
	d.SetVolume(ctx, 1.5)
	d.SetVolume(ctx, -0.2)

	got := r.waitReceived(t, 2)
	assert.Equal(t, []string{"185VL", "000VL"}, got)
}

// --- source selection tests ---

func TestSelectSource_UnknownName(t *testing.T) {
	r := newFakeReceiver(t, nil)
	cfg := r.config()
	cfg.Sources = []string{"DVD"}
	d, err := New(cfg)
	require.NoError(t, err)

	err = d.SelectSource(context.Background(), "Blu-Ray")
	assert.ErrorIs(t, err, ErrUnknownSource)
	assert.Contains(t, err.Error(), "Blu-Ray")

	// Nothing was sent: the lookup fails before any connection.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, r.received())
}

func TestSelectSource_EmptyTable(t *testing.T) {
	r := newFakeReceiver(t, nil)
	d, err := New(r.config())
	require.NoError(t, err)

	err = d.SelectSource(context.Background(), "DVD")
	assert.ErrorIs(t, err, ErrNoSources)
}

// --- transport failure tests ---

func TestActions_SilentOnConnectFailure(t *testing.T) {
	r := newFakeReceiver(t, nil)
	logger := &capturingLogger{}
	cfg := r.config()
	cfg.Logger = logger
	d, err := New(cfg)
	require.NoError(t, err)
	r.close()

	// Fire-and-forget: an unreachable receiver is a logged no-op.
	d.TurnOn(context.Background())

	errs := logger.eventsOf(log.CategoryError)
	require.NotEmpty(t, errs)
	assert.Equal(t, "PowerOn connect", errs[0].Error.Context)
}

// --- action event tests ---

func TestActions_LogActionEvents(t *testing.T) {
	r := newFakeReceiver(t, nil)
	logger := &capturingLogger{}
	cfg := r.config()
	cfg.Name = "den"
	cfg.Logger = logger
	d, err := New(cfg)
	require.NoError(t, err)

	d.SetVolume(context.Background(), 0.5)

	actions := logger.eventsOf(log.CategoryAction)
	require.Len(t, actions, 1)
	assert.Equal(t, wire.OpVolumeSet, actions[0].Action.Op)
	assert.Equal(t, "093VL", actions[0].Action.Command)
	assert.Equal(t, "den", actions[0].Device)
	assert.NotEmpty(t, actions[0].ConnectionID)
}
