// Command vsx-sim runs a simulated VSX receiver for development and
// testing. It speaks the receiver's line protocol over TCP: zone power,
// volume, mute and source state, the named-source registry, and the
// error code lines real units send for unknown commands.
//
// Usage:
//
//	vsx-sim [flags]
//
// Flags:
//
//	-listen string    Listen address (default ":8102")
//	-scenario string  Scenario file seeding the initial state (YAML)
//	-noise string     Comma-separated status lines sent before every reply
//	-delay duration   Delay before every reply
//	-verbose          Log every command and its replies
//
// Examples:
//
//	# Default receiver: both zones in standby, factory source names
//	vsx-sim
//
//	# Seed powered-on state from a scenario file
//	vsx-sim -scenario den.yaml
//
//	# Display spam between replies, 50ms reply latency
//	vsx-sim -noise "FL020202020202,VTC2" -delay 50ms
//
// Scenario files list per-zone state, registry names and noise lines:
//
//	zones:
//	  - zone: 1
//	    power: true
//	    volume: 121
//	    source: "04"
//	registry:
//	  - slot: 4
//	    name: DVD
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vsx-protocol/vsx-go/internal/simulator"
)

// Config holds the simulator configuration.
type Config struct {
	Listen   string
	Scenario string
	Noise    string
	Delay    time.Duration
	Verbose  bool
}

var config Config

func init() {
	flag.StringVar(&config.Listen, "listen", ":8102", "Listen address")
	flag.StringVar(&config.Scenario, "scenario", "", "Scenario file seeding the initial state (YAML)")
	flag.StringVar(&config.Noise, "noise", "", "Comma-separated status lines sent before every reply")
	flag.DurationVar(&config.Delay, "delay", 0, "Delay before every reply")
	flag.BoolVar(&config.Verbose, "verbose", false, "Log every command and its replies")
}

func main() {
	flag.Parse()

	log.SetFlags(log.Ltime)

	opts := simulator.Options{
		Addr:       config.Listen,
		NoiseLines: splitNoise(config.Noise),
		Delay:      config.Delay,
	}

	if config.Scenario != "" {
		scenario, err := simulator.LoadScenario(config.Scenario)
		if err != nil {
			log.Fatalf("Failed to load scenario: %v", err)
		}
		opts.Scenario = scenario
		log.Printf("Loaded scenario: %s", config.Scenario)
	}

	if config.Verbose {
		opts.OnCommand = func(command string, replies []string) {
			if len(replies) == 0 {
				log.Printf("<- %q (no reply)", command)
				return
			}
			log.Printf("<- %q -> %q", command, replies)
		}
	}

	receiver := simulator.New(opts)
	if err := receiver.Start(); err != nil {
		log.Fatalf("Failed to start receiver: %v", err)
	}
	log.Printf("Simulated receiver listening on %s", receiver.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal: %v", sig)
	log.Println("Shutting down...")

	if err := receiver.Close(); err != nil {
		log.Printf("Error closing receiver: %v", err)
	}
}

// splitNoise parses the comma-separated -noise flag.
func splitNoise(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	for _, part := range strings.Split(s, ",") {
		if line := strings.TrimSpace(part); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
