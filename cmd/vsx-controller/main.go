// Command vsx-controller drives one zone of a VSX network receiver.
//
// This command demonstrates the complete driver surface:
//   - One-shot status polling
//   - Continuous watch mode with reconnect backoff
//   - Fire-and-forget control commands
//   - Interactive command interface
//   - Protocol event logging
//
// Usage:
//
//	vsx-controller -host <addr> [flags]
//
// Flags:
//
//	-host string          Receiver hostname or IP address
//	-port int             Receiver control port (default 23)
//	-zone int             Receiver zone to drive, 1 or 2 (default 1)
//	-name string          Device name for logs and output (default: host)
//	-timeout duration     Connect and write timeout (default 500ms)
//	-sources string       Comma-separated source allowlist
//	-config string        Configuration file path (YAML)
//	-interval duration    Poll interval for watch mode (default 5s)
//	-watch                Poll continuously until interrupted
//	-interactive          Enable interactive command mode
//	-protocol-log string  Write protocol events to this file
//	-verbose              Mirror protocol events to stderr
//
// Examples:
//
//	# Print the current state of the main zone
//	vsx-controller -host 192.168.1.35
//
//	# Watch zone 2 with a 2s poll interval, recording the protocol
//	vsx-controller -host 192.168.1.35 -zone 2 -interval 2s -watch -protocol-log den.vlog
//
//	# Interactive session restricted to two sources
//	vsx-controller -host 192.168.1.35 -sources "DVD,HDMI 1" -interactive
//
//	# Load everything from a config file
//	vsx-controller -config den.yaml
//
// Interactive Commands:
//
//	status            - Show the last polled state
//	poll              - Poll the receiver now
//	on | off          - Switch zone power
//	vol up|down|<pct> - Step or set the volume
//	mute | unmute     - Switch muting
//	source <name>     - Select an input source
//	sources           - List known source names
//	quit              - Exit the controller
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vsx-protocol/vsx-go/cmd/vsx-controller/interactive"
	"github.com/vsx-protocol/vsx-go/pkg/avr"
	protolog "github.com/vsx-protocol/vsx-go/pkg/log"
	"github.com/vsx-protocol/vsx-go/pkg/poll"
	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

// pollTimeout bounds a one-shot poll cycle.
const pollTimeout = 10 * time.Second

// Config holds the controller configuration.
type Config struct {
	ConfigFile  string
	Host        string
	Port        int
	Name        string
	Zone        int
	Timeout     time.Duration
	Interval    time.Duration
	Sources     string
	Watch       bool
	Interactive bool
	ProtocolLog string
	Verbose     bool
}

var config Config

func init() {
	flag.StringVar(&config.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&config.Host, "host", "", "Receiver hostname or IP address")
	flag.IntVar(&config.Port, "port", 0, "Receiver control port (default 23)")
	flag.StringVar(&config.Name, "name", "", "Device name for logs and output (default: host)")
	flag.IntVar(&config.Zone, "zone", 1, "Receiver zone to drive (1 or 2)")
	flag.DurationVar(&config.Timeout, "timeout", 0, "Connect and write timeout (default 500ms)")
	flag.StringVar(&config.Sources, "sources", "", `Comma-separated source allowlist (e.g. "DVD,HDMI 1")`)
	flag.DurationVar(&config.Interval, "interval", 0, "Poll interval for watch mode (default 5s)")
	flag.BoolVar(&config.Watch, "watch", false, "Poll continuously until interrupted")
	flag.BoolVar(&config.Interactive, "interactive", false, "Enable interactive command mode")
	flag.StringVar(&config.ProtocolLog, "protocol-log", "", "Write protocol events to this file")
	flag.BoolVar(&config.Verbose, "verbose", false, "Mirror protocol events to stderr")
}

func main() {
	flag.Parse()

	setupLogging(config.Verbose)

	if config.ConfigFile != "" {
		fc, err := LoadFileConfig(config.ConfigFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		mergeConfig(fc, flagsSet())
	}

	if config.Host == "" {
		fmt.Fprintln(os.Stderr, "vsx-controller: a receiver host is required (-host or config file)")
		flag.Usage()
		os.Exit(2)
	}

	logger, closeLogger, err := buildLogger()
	if err != nil {
		log.Fatalf("Failed to open protocol log: %v", err)
	}
	defer closeLogger()

	device, err := avr.New(avr.Config{
		Host:    config.Host,
		Port:    config.Port,
		Name:    config.Name,
		Zone:    wire.Zone(config.Zone),
		Timeout: config.Timeout,
		Sources: splitSources(config.Sources),
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("Failed to create device: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch {
	case config.Interactive:
		runInteractive(ctx, cancel, device)
	case config.Watch:
		runWatch(ctx, device)
	default:
		runOnce(ctx, device)
	}
}

// runOnce polls the receiver a single time and prints the result.
func runOnce(ctx context.Context, device *avr.Device) {
	pollCtx, cancel := context.WithTimeout(ctx, pollTimeout)
	defer cancel()

	if !device.Poll(pollCtx) {
		log.Fatalf("Receiver unreachable at %s", device.Addr())
	}

	printSnapshot(os.Stdout, device)
}

// runWatch polls until interrupted, printing one line per cycle.
func runWatch(ctx context.Context, device *avr.Device) {
	log.Printf("Watching %s at %s (%s)", device.Name(), device.Addr(), device.Zone())

	p := poll.New(device, config.Interval)
	p.OnResult(func(ok bool) {
		if !ok {
			log.Printf("%s: unreachable", device.Name())
			return
		}
		state := device.Snapshot()
		log.Printf("%s: power=%s volume=%s muted=%s source=%s",
			device.Name(), state.Power, formatVolume(state.Volume),
			formatMuted(state.Muted), formatSource(state.Source))
	})
	p.OnBackoff(func(attempt int, delay time.Duration) {
		log.Printf("%s: retrying in %s (attempt %d)", device.Name(), delay, attempt)
	})

	go p.Run(ctx)

	waitForSignal(ctx)
}

// runInteractive hands control to the interactive command loop.
func runInteractive(ctx context.Context, cancel context.CancelFunc, device *avr.Device) {
	ic, err := interactive.New(device)
	if err != nil {
		log.Fatalf("Failed to create interactive controller: %v", err)
	}

	// Redirect log output through readline to avoid interfering with input
	log.SetOutput(ic.Stdout())
	go ic.Run(ctx, cancel)

	waitForSignal(ctx)
}

// waitForSignal blocks until a shutdown signal arrives or ctx is
// cancelled (e.g. by the interactive quit command).
func waitForSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
}

func setupLogging(verbose bool) {
	log.SetFlags(log.Ltime)
	if verbose {
		log.SetFlags(log.Ltime | log.Lmicroseconds)
	}
}

// buildLogger assembles the protocol event logger from the flags: a
// file logger for -protocol-log, a stderr mirror for -verbose. The
// MultiLogger drops whichever sink is not configured.
func buildLogger() (protolog.Logger, func(), error) {
	var fileLogger protolog.Logger
	if config.ProtocolLog != "" {
		fl, err := protolog.NewFileLogger(config.ProtocolLog)
		if err != nil {
			return nil, nil, err
		}
		fileLogger = fl
	}

	var mirror protolog.Logger
	if config.Verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		mirror = protolog.NewSlogAdapter(slog.New(handler))
	}

	multi := protolog.NewMultiLogger(fileLogger, mirror)
	closer := func() {
		if err := multi.Close(); err != nil {
			log.Printf("Failed to close protocol log: %v", err)
		}
	}
	return multi, closer, nil
}

// printSnapshot prints the device's last polled state.
func printSnapshot(w io.Writer, device *avr.Device) {
	state := device.Snapshot()

	fmt.Fprintf(w, "%s (%s, %s)\n", device.Name(), device.Addr(), device.Zone())
	fmt.Fprintf(w, "  Power:  %s\n", state.Power)
	fmt.Fprintf(w, "  Volume: %s\n", formatVolume(state.Volume))
	fmt.Fprintf(w, "  Muted:  %s\n", formatMuted(state.Muted))
	fmt.Fprintf(w, "  Source: %s\n", formatSource(state.Source))
}

// splitSources parses the comma-separated -sources flag.
func splitSources(s string) []string {
	if s == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
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
