package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vsx-protocol/vsx-go/pkg/log"
	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

func TestStatsCountsByLayerAndCategory(t *testing.T) {
	ts := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, []log.Event{
		{Timestamp: ts, Direction: log.DirectionOut, Layer: log.LayerTransport, Category: log.CategoryLine, Line: &log.LineEvent{Text: "?P", Size: 3}},
		{Timestamp: ts.Add(time.Second), Direction: log.DirectionIn, Layer: log.LayerTransport, Category: log.CategoryLine, Line: &log.LineEvent{Text: "PWR0", Size: 6}},
		{Timestamp: ts.Add(2 * time.Second), Layer: log.LayerDriver, Category: log.CategoryQuery, Query: &log.QueryEvent{Op: wire.OpPower, Command: "?P", ReplyPrefix: "PWR", Reply: "PWR0", Attempts: 1, Matched: true}},
		{Timestamp: ts.Add(3 * time.Second), Layer: log.LayerDriver, Category: log.CategoryAction, Action: &log.ActionEvent{Op: wire.OpVolumeUp, Command: "VU"}},
	})

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Total Events: 4") {
		t.Errorf("expected total event count, got:\n%s", output)
	}
	if !strings.Contains(output, "TRANSPORT:") || !strings.Contains(output, "DRIVER:") {
		t.Errorf("expected per-layer counts, got:\n%s", output)
	}
	if !strings.Contains(output, "LINE:") || !strings.Contains(output, "QUERY:") || !strings.Contains(output, "ACTION:") {
		t.Errorf("expected per-category counts, got:\n%s", output)
	}
	if !strings.Contains(output, "Duration:   3s") {
		t.Errorf("expected duration, got:\n%s", output)
	}
}

func TestStatsTracksConnections(t *testing.T) {
	ts := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, []log.Event{
		{Timestamp: ts, ConnectionID: "conn-1111-aaaa", Device: "den", Zone: 1, Layer: log.LayerTransport, Category: log.CategoryLine, Line: &log.LineEvent{Text: "?P", Size: 3}},
		{Timestamp: ts.Add(time.Second), ConnectionID: "conn-1111-aaaa", Device: "den", Zone: 1, Layer: log.LayerTransport, Category: log.CategoryLine, Line: &log.LineEvent{Text: "PWR0", Size: 6}},
		{Timestamp: ts.Add(2 * time.Second), ConnectionID: "conn-2222-bbbb", Device: "den zone 2", Zone: 2, Layer: log.LayerTransport, Category: log.CategoryLine, Line: &log.LineEvent{Text: "?AP", Size: 4}},
		// Driver events without a connection ID should not count as connections.
		{Timestamp: ts.Add(3 * time.Second), Layer: log.LayerDriver, Category: log.CategoryState, StateChange: &log.StateChangeEvent{Entity: log.StateEntityPower, NewState: "on"}},
	})

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Connections: 2") {
		t.Errorf("expected 2 connections, got:\n%s", output)
	}
	if !strings.Contains(output, "[conn-111]") {
		t.Errorf("expected shortened connection ID, got:\n%s", output)
	}
	if !strings.Contains(output, "Device: den") {
		t.Errorf("expected device name, got:\n%s", output)
	}
	if !strings.Contains(output, "Zone: 2") {
		t.Errorf("expected zone detail, got:\n%s", output)
	}
}

func TestStatsQueryOutcomes(t *testing.T) {
	ts := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, []log.Event{
		{Timestamp: ts, Layer: log.LayerDriver, Category: log.CategoryQuery, Query: &log.QueryEvent{Op: wire.OpPower, Command: "?P", ReplyPrefix: "PWR", Reply: "PWR0", Attempts: 1, Matched: true}},
		{Timestamp: ts.Add(time.Second), Layer: log.LayerDriver, Category: log.CategoryQuery, Query: &log.QueryEvent{Op: wire.OpVolume, Command: "?V", ReplyPrefix: "VOL", Reply: "VOL121", Attempts: 3, Discarded: 2, Matched: true}},
		{Timestamp: ts.Add(2 * time.Second), Layer: log.LayerDriver, Category: log.CategoryQuery, Query: &log.QueryEvent{Op: wire.OpMute, Command: "?M", ReplyPrefix: "MUT", Attempts: 3, Discarded: 3}},
	})

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Queries: 3 (67% matched)") {
		t.Errorf("expected query count with match rate, got:\n%s", output)
	}
	if !strings.Contains(output, "Unanswered:      1") {
		t.Errorf("expected unanswered count, got:\n%s", output)
	}
	if !strings.Contains(output, "Noise discarded: 5 lines") {
		t.Errorf("expected discarded line total, got:\n%s", output)
	}
	if !strings.Contains(output, "Events by Operation:") {
		t.Errorf("expected per-operation counts, got:\n%s", output)
	}
	if !strings.Contains(output, "Power:") || !strings.Contains(output, "Volume:") || !strings.Contains(output, "Mute:") {
		t.Errorf("expected op rows for the three queries, got:\n%s", output)
	}
	if !strings.Contains(output, "    1: 1") || !strings.Contains(output, "    3: 2") {
		t.Errorf("expected attempts histogram, got:\n%s", output)
	}
}

func TestStatsCountsErrors(t *testing.T) {
	ts := time.Now()
	path := createTestLogFile(t, []log.Event{
		{Timestamp: ts, Layer: log.LayerDriver, Category: log.CategoryError, Error: &log.ErrorEventData{Layer: log.LayerTransport, Message: "dial tcp: connection refused"}},
		{Timestamp: ts, Layer: log.LayerDriver, Category: log.CategoryError, Error: &log.ErrorEventData{Layer: log.LayerDriver, Message: "no reply"}},
	})

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Errors: 2") {
		t.Errorf("expected error count, got:\n%s", buf.String())
	}
}

func TestStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("expected zero events, got:\n%s", buf.String())
	}
}

func TestStatsMissingFile(t *testing.T) {
	if err := RunStats(filepath.Join(t.TempDir(), "absent.vlog"), &bytes.Buffer{}); err == nil {
		t.Error("expected error for missing file")
	}
}
