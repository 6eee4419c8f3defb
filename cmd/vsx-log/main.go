// Command vsx-log is a tool for viewing and analyzing protocol log files.
//
// Log files are created by vsx-controller when running with the
// -protocol-log flag. They hold every line, query, action, state change
// and error the driver saw, in CBOR.
//
// Usage:
//
//	vsx-log <command> [flags] <file.vlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	vsx-log view den.vlog
//
//	# View only raw protocol lines
//	vsx-log view -layer transport den.vlog
//
//	# View only commands sent to the receiver
//	vsx-log view -direction out den.vlog
//
//	# Export to JSONL
//	vsx-log export -format jsonl den.vlog
//
//	# Keep one connection's events
//	vsx-log filter -conn-id abc12345 -o filtered.vlog den.vlog
//
//	# Show statistics
//	vsx-log stats den.vlog
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/vsx-protocol/vsx-go/cmd/vsx-log/commands"
)

const (
	viewSummary   = "View log file in human-readable format"
	exportSummary = "Export log file to JSONL or CSV format"
	filterSummary = "Filter log file and write to new file"
	statsSummary  = "Show statistics about the log file"
)

type subcommand struct {
	name    string
	summary string
	run     func(args []string) error
}

var subcommands = []subcommand{
	{"view", viewSummary, runView},
	{"export", exportSummary, runExport},
	{"filter", filterSummary, runFilter},
	{"stats", statsSummary, runStats},
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	name, args := os.Args[1], os.Args[2:]
	switch name {
	case "-h", "-help", "--help", "help":
		printUsage(os.Stdout)
		return
	}

	for _, cmd := range subcommands {
		if cmd.name == name {
			if err := cmd.run(args); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
	printUsage(os.Stderr)
	os.Exit(1)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "vsx-log - Protocol Log Analyzer")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  vsx-log <command> [flags] <file.vlog>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range subcommands {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, `Use "vsx-log <command> -help" for more information about a command.`)
}

// newFlagSet builds a subcommand flag set whose help banner is derived
// from the flags registered on it by the time it is shown.
func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		var flags int
		fs.VisitAll(func(*flag.Flag) { flags++ })

		form := "<file.vlog>"
		if flags > 0 {
			form = "[flags] <file.vlog>"
		}
		fmt.Fprintf(os.Stderr, "vsx-log %s - %s\n\nUsage:\n  vsx-log %s %s\n", name, summary, name, form)
		if flags > 0 {
			fmt.Fprintln(os.Stderr, "\nFlags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

// requireLogFile returns the positional log file argument, exiting
// with usage when it is missing.
func requireLogFile(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) error {
	fs := newFlagSet("view", viewSummary)
	layer := fs.String("layer", "", "Filter by layer (transport, driver)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (line, query, action, state, error)")
	device := fs.String("device", "", "Filter by device name")
	zone := fs.Int("zone", 0, "Filter by receiver zone (0 matches all)")
	since := fs.String("since", "", "Keep events at or after this time (RFC3339)")
	until := fs.String("until", "", "Keep events before this time (RFC3339)")
	fs.Parse(args)

	path := requireLogFile(fs)

	filter := commands.ViewFilter{Device: *device, Zone: *zone}
	var err error
	if filter.Since, err = commands.ParseTimeFlag("since", *since); err != nil {
		return err
	}
	if filter.Until, err = commands.ParseTimeFlag("until", *until); err != nil {
		return err
	}
	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			return err
		}
		filter.Layer = &l
	}
	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			return err
		}
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			return err
		}
		filter.Category = &c
	}
	return commands.RunView(path, filter, os.Stdout)
}

func runExport(args []string) error {
	fs := newFlagSet("export", exportSummary)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default stdout)")
	fs.Parse(args)

	return commands.RunExport(requireLogFile(fs), *format, *output)
}

func runFilter(args []string) error {
	fs := newFlagSet("filter", filterSummary)
	var opts commands.FilterOptions
	fs.StringVar(&opts.Output, "o", "", "Output file (required)")
	fs.StringVar(&opts.ConnID, "conn-id", "", "Filter by connection ID")
	fs.StringVar(&opts.Device, "device", "", "Filter by device name")
	fs.IntVar(&opts.Zone, "zone", 0, "Filter by receiver zone (0 matches all)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Keep events at or after this time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Keep events before this time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, driver)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (line, query, action, state, error)")
	fs.Parse(args)

	path := requireLogFile(fs)
	if opts.Output == "" {
		return errors.New("output file required (-o)")
	}
	return commands.RunFilter(path, opts)
}

func runStats(args []string) error {
	fs := newFlagSet("stats", statsSummary)
	fs.Parse(args)

	return commands.RunStats(requireLogFile(fs), os.Stdout)
}
