package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/vsx-protocol/vsx-go/pkg/log"
)

// An exporter renders a whole event stream in one output format.
type exporter func(*log.Reader, io.Writer) error

var exporters = map[string]exporter{
	"jsonl": exportJSONL,
	"csv":   exportCSV,
}

// RunExport renders the log file in the given format, to the output
// path or stdout when the path is empty.
func RunExport(path, format, output string) error {
	export, ok := exporters[format]
	if !ok {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return export(reader, w)
}

// exportJSONL writes one JSON object per line, in log order.
func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	return forEachEvent(reader, func(event log.Event) error {
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
		return nil
	})
}

// exportCSV writes one row per event, with the wire text or a state
// summary in the detail column.
func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"timestamp", "connection_id", "direction", "layer", "category", "device", "zone", "type", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	err := forEachEvent(reader, func(event log.Event) error {
		if err := cw.Write(csvRow(event)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// csvRow flattens one event to a CSV row.
func csvRow(event log.Event) []string {
	kind := "unknown"
	detail := ""
	switch {
	case event.Line != nil:
		kind, detail = "line", event.Line.Text
	case event.Query != nil:
		kind, detail = "query", event.Query.Command
	case event.Action != nil:
		kind, detail = "action", event.Action.Command
	case event.StateChange != nil:
		kind = "state"
		detail = fmt.Sprintf("%s -> %s", event.StateChange.Entity, event.StateChange.NewState)
	case event.Error != nil:
		kind, detail = "error", event.Error.Message
	}

	return []string{
		event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
		event.ConnectionID,
		event.Direction.String(),
		event.Layer.String(),
		event.Category.String(),
		event.Device,
		strconv.Itoa(event.Zone),
		kind,
		detail,
	}
}
