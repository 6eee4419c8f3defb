// Package commands implements the vsx-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vsx-protocol/vsx-go/pkg/log"
)

// ViewFilter narrows which events the view command renders.
type ViewFilter struct {
	Layer     *log.Layer
	Direction *log.Direction
	Category  *log.Category
	Device    string
	Zone      int
	Since     *time.Time
	Until     *time.Time
}

// matches reports whether the event passes every set criterion.
func (f ViewFilter) matches(event log.Event) bool {
	if f.Layer != nil && event.Layer != *f.Layer {
		return false
	}
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.Device != "" && event.Device != f.Device {
		return false
	}
	if f.Zone != 0 && event.Zone != f.Zone {
		return false
	}
	if f.Since != nil && event.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Until != nil && !event.Timestamp.Before(*f.Until) {
		return false
	}
	return true
}

// eventLabel names the detail payload carried by the event.
func eventLabel(event log.Event) string {
	switch {
	case event.Line != nil:
		return "Line"
	case event.Query != nil:
		return "Query"
	case event.Action != nil:
		return "Action"
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	}
	return "Unknown"
}

// formatEvent writes a human-readable rendering of the event to w:
// a header line (timestamp, connection, direction, layer, label,
// device), indented detail lines, then a blank separator.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s",
		ts, shortenConnID(event.ConnectionID), event.Direction, event.Layer, eventLabel(event))
	if event.Device != "" {
		fmt.Fprintf(w, " (%s)", event.Device)
	}
	fmt.Fprintln(w)

	switch {
	case event.Line != nil:
		formatLineDetails(w, event.Line)
	case event.Query != nil:
		formatQueryDetails(w, event.Query)
	case event.Action != nil:
		formatActionDetails(w, event.Action)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenConnID trims the connection UUID to its first 8 characters;
// events logged outside any connection get a dash placeholder.
func shortenConnID(id string) string {
	if id == "" {
		return "--------"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatLineDetails(w io.Writer, line *log.LineEvent) {
	fmt.Fprintf(w, "  Text: %q\n", line.Text)
	fmt.Fprintf(w, "  Size: %d bytes\n", line.Size)
}

func formatQueryDetails(w io.Writer, q *log.QueryEvent) {
	fmt.Fprintf(w, "  Op: %s\n", q.Op)
	fmt.Fprintf(w, "  Command: %s\n", q.Command)
	if q.Matched {
		fmt.Fprintf(w, "  Reply: %s\n", q.Reply)
	} else {
		fmt.Fprintf(w, "  Reply: (none, prefix %s)\n", q.ReplyPrefix)
	}
	fmt.Fprintf(w, "  Attempts: %d", q.Attempts)
	if q.Discarded > 0 {
		fmt.Fprintf(w, "  Discarded: %d", q.Discarded)
	}
	fmt.Fprintln(w)
}

func formatActionDetails(w io.Writer, a *log.ActionEvent) {
	fmt.Fprintf(w, "  Op: %s\n", a.Op)
	fmt.Fprintf(w, "  Command: %s\n", a.Command)
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	transition := "-> " + sc.NewState
	if sc.OldState != "" {
		transition = sc.OldState + " " + transition
	}
	fmt.Fprintf(w, "  %s\n", transition)
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// Flag-value tables for the three enum flags shared by view and filter.
var (
	layerNames = map[string]log.Layer{
		"transport": log.LayerTransport,
		"driver":    log.LayerDriver,
	}
	directionNames = map[string]log.Direction{
		"in":  log.DirectionIn,
		"out": log.DirectionOut,
	}
	categoryNames = map[string]log.Category{
		"line":   log.CategoryLine,
		"query":  log.CategoryQuery,
		"action": log.CategoryAction,
		"state":  log.CategoryState,
		"error":  log.CategoryError,
	}
)

// ParseLayerFlag parses a layer flag value (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	return parseLayer(s)
}

func parseLayer(s string) (log.Layer, error) {
	l, ok := layerNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("invalid layer: %s (must be transport or driver)", s)
	}
	return l, nil
}

// ParseDirectionFlag parses a direction flag value (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	return parseDirection(s)
}

func parseDirection(s string) (log.Direction, error) {
	d, ok := directionNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
	return d, nil
}

// ParseCategoryFlag parses a category flag value (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

func parseCategory(s string) (log.Category, error) {
	c, ok := categoryNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("invalid category: %s (must be line, query, action, state, or error)", s)
	}
	return c, nil
}

// RunView renders every matching event in the log file to output.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	return forEachEvent(reader, func(event log.Event) error {
		if filter.matches(event) {
			formatEvent(output, event)
		}
		return nil
	})
}

// forEachEvent streams the reader's remaining events through fn,
// stopping at end of log or on the first error fn returns.
func forEachEvent(reader *log.Reader, fn func(log.Event) error) error {
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}
