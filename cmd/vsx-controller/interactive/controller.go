// Package interactive provides the interactive command-line interface
// for the vsx-controller.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/vsx-protocol/vsx-go/pkg/avr"
)

// pollTimeout bounds one interactive poll cycle. A full cycle against a
// receiver that answers nothing takes a few seconds of reply retries,
// so this stays well above the driver's own timeouts.
const pollTimeout = 10 * time.Second

// Controller handles interactive mode for vsx-controller.
type Controller struct {
	device *avr.Device
	rl     *readline.Instance
}

// New creates a new interactive controller handler.
func New(device *avr.Device) (*Controller, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "vsx> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    newCompleter(device),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Controller{
		device: device,
		rl:     rl,
	}, nil
}

// newCompleter builds tab completion over the command names. Source
// completion is dynamic: the table may still be empty at startup and
// fill in after the first poll.
func newCompleter(device *avr.Device) readline.AutoCompleter {
	sources := readline.PcItemDynamic(func(string) []string {
		return device.SourceNames()
	})
	return readline.NewPrefixCompleter(
		readline.PcItem("status"),
		readline.PcItem("poll"),
		readline.PcItem("on"),
		readline.PcItem("off"),
		readline.PcItem("vol",
			readline.PcItem("up"),
			readline.PcItem("down"),
		),
		readline.PcItem("mute"),
		readline.PcItem("unmute"),
		readline.PcItem("source", sources),
		readline.PcItem("sources"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Controller) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Controller) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop.
func (c *Controller) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "status", "st":
			c.cmdStatus()

		case "poll", "p":
			c.cmdPoll(ctx)

		case "on":
			c.device.TurnOn(ctx)
			fmt.Fprintln(c.rl.Stdout(), "Power on sent")

		case "off":
			c.device.TurnOff(ctx)
			fmt.Fprintln(c.rl.Stdout(), "Power off sent")

		case "vol", "volume", "v":
			c.cmdVolume(ctx, args)

		case "mute":
			c.device.Mute(ctx, true)
			fmt.Fprintln(c.rl.Stdout(), "Mute sent")

		case "unmute":
			c.device.Mute(ctx, false)
			fmt.Fprintln(c.rl.Stdout(), "Unmute sent")

		case "source", "src":
			c.cmdSource(ctx, args)

		case "sources":
			c.cmdSources()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Controller) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Receiver Commands:
  Status:
    status              - Show the last polled state
    poll                - Poll the receiver now

  Control:
    on | off            - Switch zone power
    vol up|down|<pct>   - Step the volume, or set it to a percentage (0-100)
    mute | unmute       - Switch muting
    source <name>       - Select an input source by name
    sources             - List known source names

  General:
    help                - Show this help
    quit                - Exit

  Control commands are fire-and-forget; run 'poll' to see their effect.`)
}

// cmdStatus shows the last polled state without touching the network.
func (c *Controller) cmdStatus() {
	state := c.device.Snapshot()

	fmt.Fprintln(c.rl.Stdout(), "\nReceiver Status")
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(c.rl.Stdout(), "  Device:  %s\n", c.device.Name())
	fmt.Fprintf(c.rl.Stdout(), "  Address: %s\n", c.device.Addr())
	fmt.Fprintf(c.rl.Stdout(), "  Zone:    %s\n", c.device.Zone())
	fmt.Fprintf(c.rl.Stdout(), "  Power:   %s\n", state.Power)
	fmt.Fprintf(c.rl.Stdout(), "  Volume:  %s\n", formatVolume(state.Volume))
	fmt.Fprintf(c.rl.Stdout(), "  Muted:   %s\n", formatMuted(state.Muted))
	fmt.Fprintf(c.rl.Stdout(), "  Source:  %s\n", formatSource(state.Source))
	fmt.Fprintln(c.rl.Stdout())
}

// cmdPoll runs one poll cycle and shows the refreshed state.
func (c *Controller) cmdPoll(ctx context.Context) {
	fmt.Fprintln(c.rl.Stdout(), "Polling...")

	pollCtx, cancel := context.WithTimeout(ctx, pollTimeout)
	ok := c.device.Poll(pollCtx)
	cancel()

	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Receiver unreachable at %s\n", c.device.Addr())
		return
	}

	c.cmdStatus()
}

// cmdVolume handles the vol command.
func (c *Controller) cmdVolume(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: vol up|down|<pct>")
		fmt.Fprintln(c.rl.Stdout(), "  Example: vol 65")
		return
	}

	switch strings.ToLower(args[0]) {
	case "up", "+":
		c.device.VolumeUp(ctx)
		fmt.Fprintln(c.rl.Stdout(), "Volume up sent")
	case "down", "-":
		c.device.VolumeDown(ctx)
		fmt.Fprintln(c.rl.Stdout(), "Volume down sent")
	default:
		pct, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Invalid volume: %v\n", err)
			return
		}
		if pct < 0 || pct > 100 {
			fmt.Fprintln(c.rl.Stdout(), "Volume must be between 0 and 100")
			return
		}
		c.device.SetVolume(ctx, pct/100)
		fmt.Fprintf(c.rl.Stdout(), "Volume %.0f%% sent\n", pct)
	}
}

// cmdSource handles the source command. Source names may contain
// spaces, so the whole argument list is the name.
func (c *Controller) cmdSource(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: source <name>")
		fmt.Fprintln(c.rl.Stdout(), "  Use 'sources' to list known names")
		return
	}

	name := strings.Join(args, " ")

	if err := c.device.SelectSource(ctx, name); err != nil {
		switch {
		case errors.Is(err, avr.ErrNoSources):
			fmt.Fprintln(c.rl.Stdout(), "No sources known yet; run 'poll' to learn them from the receiver")
		case errors.Is(err, avr.ErrUnknownSource):
			fmt.Fprintf(c.rl.Stdout(), "Unknown source: %s (use 'sources' to list known names)\n", name)
		default:
			fmt.Fprintf(c.rl.Stdout(), "Failed to select source: %v\n", err)
		}
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "Source %s sent\n", name)
}

// cmdSources lists the known source names.
func (c *Controller) cmdSources() {
	names := c.device.SourceNames()
	if len(names) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No sources known yet; run 'poll' to learn them from the receiver")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nKnown Sources (%d):\n", len(names))
	for _, name := range names {
		fmt.Fprintf(c.rl.Stdout(), "  %s\n", name)
	}
	fmt.Fprintln(c.rl.Stdout())
}

func formatVolume(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.0f%%", *v*100)
}

func formatMuted(m *bool) string {
	if m == nil {
		return "unknown"
	}
	if *m {
		return "yes"
	}
	return "no"
}

func formatSource(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}
