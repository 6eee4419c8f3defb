// Package simulator provides a scripted receiver for tests and demos.
//
// Receiver speaks the device side of the line protocol over TCP: it
// answers queries from per-zone state, applies actions to it, and
// serves the named-source registry. Like real hardware, a powered-down
// zone ignores volume, mute and source queries, and unknown commands
// get an error code line the driver treats as noise.
package simulator

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vsx-protocol/vsx-go/pkg/avr"
	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

// Error code lines, as real receivers send them.
const (
	errorCommand   = "E04" // unrecognized command
	errorParameter = "E06" // recognized command, bad or empty parameter
)

// volumeStep is how far one volume up/down command moves.
const volumeStep = 1

// Options configures a Receiver.
type Options struct {
	// Addr is the listen address (default "127.0.0.1:0").
	Addr string

	// NoiseLines are status broadcasts sent before every reply, to
	// exercise the driver's prefix matching.
	NoiseLines []string

	// Silent lists commands the receiver swallows entirely, the
	// no-data case.
	Silent map[string]bool

	// ReplyOverrides substitutes the reply for a command verbatim,
	// for malformed-reply injection.
	ReplyOverrides map[string]string

	// Delay postpones every reply.
	Delay time.Duration

	// Scenario seeds the initial state. Nil means defaults.
	Scenario *Scenario

	// OnCommand, when set, observes every command and the reply lines
	// chosen for it. Called outside the state lock.
	OnCommand func(command string, replies []string)
}

// zoneState is the mutable state of one simulated zone.
type zoneState struct {
	power  bool
	volume int // wire steps 0..wire.MaxVolume
	muted  bool
	source string // active input code
}

// ZoneStatus is a copy of one zone's state for assertions.
type ZoneStatus struct {
	Power  bool
	Volume int
	Muted  bool
	Source string
}

// Receiver is a simulated receiver listening on TCP.
type Receiver struct {
	opts     Options
	listener net.Listener

	mu       sync.Mutex
	zones    map[wire.Zone]*zoneState
	registry map[int]string
	commands []string
	conns    []net.Conn

	wg sync.WaitGroup
}

// New creates a Receiver. Call Start to begin listening.
func New(opts Options) *Receiver {
	r := &Receiver{
		opts: opts,
		zones: map[wire.Zone]*zoneState{
			wire.Zone1: {volume: 100, source: "04"},
			wire.Zone2: {volume: 93, source: "19"},
		},
		registry: defaultRegistry(),
	}
	if opts.Scenario != nil {
		opts.Scenario.apply(r)
	}
	return r
}

// defaultRegistry mirrors the driver's built-in catalog, slot by slot.
func defaultRegistry() map[int]string {
	registry := make(map[int]string)
	for name, code := range avr.DefaultSources() {
		slot, err := strconv.Atoi(code)
		if err != nil {
			continue
		}
		registry[slot] = name
	}
	return registry
}

// Start begins listening and accepting connections.
func (r *Receiver) Start() error {
	addr := r.opts.Addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	r.listener = listener

	r.wg.Add(1)
	go r.acceptLoop()
	return nil
}

// Addr returns the listen address (host:port).
func (r *Receiver) Addr() string {
	return r.listener.Addr().String()
}

// Close stops the listener, closes all connections and waits for the
// handler goroutines to finish.
func (r *Receiver) Close() error {
	err := r.listener.Close()

	r.mu.Lock()
	for _, conn := range r.conns {
		conn.Close()
	}
	r.conns = nil
	r.mu.Unlock()

	r.wg.Wait()
	return err
}

// Commands returns every raw command received so far, in arrival order.
func (r *Receiver) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

// ZoneState returns a copy of one zone's state.
func (r *Receiver) ZoneState(z wire.Zone) (ZoneStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.zones[z]
	if !ok {
		return ZoneStatus{}, false
	}
	return ZoneStatus{Power: st.power, Volume: st.volume, Muted: st.muted, Source: st.source}, true
}

// SetZone replaces one zone's state.
func (r *Receiver) SetZone(z wire.Zone, status ZoneStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones[z] = &zoneState{
		power:  status.Power,
		volume: status.Volume,
		muted:  status.Muted,
		source: status.Source,
	}
}

func (r *Receiver) acceptLoop() {
	defer r.wg.Done()
	for {
		conn, err := r.listener.Accept()
		if err != nil {
			return
		}

		r.mu.Lock()
		r.conns = append(r.conns, conn)
		r.mu.Unlock()

		r.wg.Add(1)
		go r.serve(conn)
	}
}

func (r *Receiver) serve(conn net.Conn) {
	defer r.wg.Done()
	defer conn.Close()

	reader := bufio.NewReader(conn)
	for {
		raw, err := reader.ReadString('\r')
		if err != nil {
			return
		}
		command := strings.TrimSuffix(raw, "\r")

		lines := r.handleCommand(command)
		if r.opts.OnCommand != nil {
			r.opts.OnCommand(command, lines)
		}
		if len(lines) == 0 {
			continue
		}

		if r.opts.Delay > 0 {
			time.Sleep(r.opts.Delay)
		}
		for _, line := range lines {
			if _, err := conn.Write([]byte(line + "\r\n")); err != nil {
				return
			}
		}
	}
}

// handleCommand records the command and produces the reply lines,
// mutating zone state as a side effect.
func (r *Receiver) handleCommand(command string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands = append(r.commands, command)

	if r.opts.Silent[command] {
		return nil
	}
	if override, ok := r.opts.ReplyOverrides[command]; ok {
		return r.withNoise([]string{override})
	}

	if strings.HasPrefix(command, "?RGB") {
		return r.withNoise(r.registryReply(command))
	}

	for _, zone := range []wire.Zone{wire.Zone1, wire.Zone2} {
		if lines, ok := r.zoneReply(zone, command); ok {
			return r.withNoise(lines)
		}
	}
	return r.withNoise([]string{errorCommand})
}

// registryReply answers a named-source registry probe. Slots without a
// name answer with a parameter error, like unused slots on hardware.
func (r *Receiver) registryReply(command string) []string {
	slot, err := strconv.Atoi(strings.TrimPrefix(command, "?RGB"))
	if err != nil || slot < 0 || slot >= wire.SourceRegistrySize {
		return []string{errorParameter}
	}
	name, ok := r.registry[slot]
	if !ok {
		return []string{errorParameter}
	}
	return []string{fmt.Sprintf("%s%02d1%s", wire.SourceReplyPrefix, slot, name)}
}

// zoneReply dispatches one command against one zone's vocabulary.
func (r *Receiver) zoneReply(z wire.Zone, command string) ([]string, bool) {
	cs, err := wire.Commands(z)
	if err != nil {
		return nil, false
	}
	st := r.zones[z]

	switch command {
	case cs.Power.Request:
		return []string{r.powerLine(cs, st)}, true

	// Powered-down zones ignore the remaining queries.
	case cs.Volume.Request:
		if !st.power {
			return nil, true
		}
		return []string{volumeLine(cs, st.volume)}, true
	case cs.Mute.Request:
		if !st.power {
			return nil, true
		}
		return []string{muteLine(cs, st.muted)}, true
	case cs.Source.Request:
		if !st.power {
			return nil, true
		}
		return []string{cs.Source.ReplyPrefix + st.source}, true

	// Actions answer with the status line the change produces.
	case cs.PowerOn:
		st.power = true
		return []string{cs.PowerOnReply}, true
	case cs.PowerOff:
		st.power = false
		return []string{cs.PowerOffReplies[0]}, true
	case cs.VolumeUp:
		st.volume += volumeStep
		if st.volume > wire.MaxVolume {
			st.volume = wire.MaxVolume
		}
		return []string{volumeLine(cs, st.volume)}, true
	case cs.VolumeDown:
		st.volume -= volumeStep
		if st.volume < 0 {
			st.volume = 0
		}
		return []string{volumeLine(cs, st.volume)}, true
	case cs.MuteOn:
		st.muted = true
		return []string{muteLine(cs, true)}, true
	case cs.MuteOff:
		st.muted = false
		return []string{muteLine(cs, false)}, true
	}

	// Parameterised actions carry the value before the zone suffix.
	if steps, ok := parseParameter(command, cs.VolumeSet, 3); ok {
		if steps <= wire.MaxVolume {
			st.volume = steps
		}
		return []string{volumeLine(cs, st.volume)}, true
	}
	if code, ok := parseParameter(command, cs.SourceSet, 2); ok {
		st.source = fmt.Sprintf("%02d", code)
		return []string{cs.Source.ReplyPrefix + st.source}, true
	}
	return nil, false
}

func (r *Receiver) powerLine(cs wire.CommandSet, st *zoneState) string {
	if st.power {
		return cs.PowerOnReply
	}
	return cs.PowerOffReplies[0]
}

func volumeLine(cs wire.CommandSet, steps int) string {
	return fmt.Sprintf("%s%03d", cs.Volume.ReplyPrefix, steps)
}

func muteLine(cs wire.CommandSet, muted bool) string {
	if muted {
		return cs.MutedReply
	}
	return cs.Mute.ReplyPrefix + "1"
}

// parseParameter extracts the numeric field of a parameterised command:
// the given number of digits followed by the zone suffix.
func parseParameter(command, suffix string, digits int) (int, bool) {
	if suffix == "" || !strings.HasSuffix(command, suffix) {
		return 0, false
	}
	field := strings.TrimSuffix(command, suffix)
	if len(field) != digits {
		return 0, false
	}
	value, err := strconv.Atoi(field)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

// withNoise prepends the configured noise lines to a non-empty reply.
func (r *Receiver) withNoise(lines []string) []string {
	if len(lines) == 0 || len(r.opts.NoiseLines) == 0 {
		return lines
	}
	out := make([]string, 0, len(r.opts.NoiseLines)+len(lines))
	out = append(out, r.opts.NoiseLines...)
	out = append(out, lines...)
	return out
}
