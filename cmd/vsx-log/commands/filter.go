package commands

import (
	"fmt"
	"time"

	"github.com/vsx-protocol/vsx-go/pkg/log"
)

// FilterOptions selects which events the filter command keeps.
type FilterOptions struct {
	Output    string
	ConnID    string
	Device    string
	Zone      int
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string
}

// buildFilter translates the string-typed command options into a
// log.Filter, validating the enum and time flags.
func buildFilter(opts FilterOptions) (log.Filter, error) {
	filter := log.Filter{
		ConnectionID: opts.ConnID,
		Device:       opts.Device,
		Zone:         opts.Zone,
	}

	var err error
	if filter.TimeStart, err = parseTimeFlag("time-start", opts.TimeStart); err != nil {
		return log.Filter{}, err
	}
	if filter.TimeEnd, err = parseTimeFlag("time-end", opts.TimeEnd); err != nil {
		return log.Filter{}, err
	}

	if opts.Layer != "" {
		l, err := parseLayer(opts.Layer)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Layer = &l
	}
	if opts.Direction != "" {
		d, err := parseDirection(opts.Direction)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Direction = &d
	}
	if opts.Category != "" {
		c, err := parseCategory(opts.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}
	return filter, nil
}

// ParseTimeFlag parses an RFC3339 time flag value, nil when unset.
func ParseTimeFlag(name, value string) (*time.Time, error) {
	return parseTimeFlag(name, value)
}

// parseTimeFlag parses an RFC3339 flag value, nil when unset.
func parseTimeFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", name, err)
	}
	return &t, nil
}

// RunFilter copies the events matching the options into a new .vlog
// file at opts.Output.
func RunFilter(path string, opts FilterOptions) error {
	filter, err := buildFilter(opts)
	if err != nil {
		return err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	out, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create output log: %w", err)
	}

	kept := 0
	if err := forEachEvent(reader, func(event log.Event) error {
		out.Log(event)
		kept++
		return nil
	}); err != nil {
		out.Close()
		return err
	}

	// Close flushes; a write error surfaces here.
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to flush output log: %w", err)
	}

	fmt.Printf("Filtered %d events to %s\n", kept, opts.Output)
	return nil
}
