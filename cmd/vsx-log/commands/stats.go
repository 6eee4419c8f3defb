package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vsx-protocol/vsx-go/pkg/log"
	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

// Stats aggregates a whole log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	EventsByOp        map[wire.Op]int
	Connections       map[string]*ConnectionStats
	Queries           int
	QueriesUnmatched  int
	QueryAttempts     map[int]int
	NoiseDiscarded    int
	Errors            int
	FirstEvent        time.Time
	LastEvent         time.Time
}

// ConnectionStats aggregates the events of one per-interaction
// connection.
type ConnectionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Device    string
	Zone      int
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		EventsByOp:        make(map[wire.Op]int),
		Connections:       make(map[string]*ConnectionStats),
		QueryAttempts:     make(map[int]int),
	}
}

// observe folds one event into the aggregates.
func (s *Stats) observe(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.FirstEvent.IsZero() || event.Timestamp.Before(s.FirstEvent) {
		s.FirstEvent = event.Timestamp
	}
	if event.Timestamp.After(s.LastEvent) {
		s.LastEvent = event.Timestamp
	}

	// Driver events without a connection (config errors, state
	// snapshots) have no per-connection aggregate.
	if event.ConnectionID != "" {
		s.observeConnection(event)
	}

	if event.Query != nil {
		s.Queries++
		s.EventsByOp[event.Query.Op]++
		s.QueryAttempts[event.Query.Attempts]++
		if !event.Query.Matched {
			s.QueriesUnmatched++
		}
		s.NoiseDiscarded += event.Query.Discarded
	}
	if event.Action != nil {
		s.EventsByOp[event.Action.Op]++
	}
	if event.Error != nil {
		s.Errors++
	}
}

func (s *Stats) observeConnection(event log.Event) {
	conn, ok := s.Connections[event.ConnectionID]
	if !ok {
		conn = &ConnectionStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Connections[event.ConnectionID] = conn
	}
	conn.Events++
	if event.Timestamp.After(conn.LastSeen) {
		conn.LastSeen = event.Timestamp
	}
	if conn.Device == "" {
		conn.Device = event.Device
	}
	if conn.Zone == 0 {
		conn.Zone = event.Zone
	}
}

// RunStats aggregates the log file and prints a summary to w.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	if err := forEachEvent(reader, func(event log.Event) error {
		stats.observe(event)
		return nil
	}); err != nil {
		return err
	}

	printStats(w, stats)
	return nil
}

type countRow struct {
	label string
	count int
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.FirstEvent.Format(time.RFC3339), stats.LastEvent.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.LastEvent.Sub(stats.FirstEvent).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	printBreakdown(w, "Events by Layer:", []countRow{
		{log.LayerTransport.String(), stats.EventsByLayer[log.LayerTransport]},
		{log.LayerDriver.String(), stats.EventsByLayer[log.LayerDriver]},
	})
	printBreakdown(w, "Events by Category:", []countRow{
		{log.CategoryLine.String(), stats.EventsByCategory[log.CategoryLine]},
		{log.CategoryQuery.String(), stats.EventsByCategory[log.CategoryQuery]},
		{log.CategoryAction.String(), stats.EventsByCategory[log.CategoryAction]},
		{log.CategoryState.String(), stats.EventsByCategory[log.CategoryState]},
		{log.CategoryError.String(), stats.EventsByCategory[log.CategoryError]},
	})
	printBreakdown(w, "Events by Direction:", []countRow{
		{log.DirectionIn.String(), stats.EventsByDirection[log.DirectionIn]},
		{log.DirectionOut.String(), stats.EventsByDirection[log.DirectionOut]},
	})

	opRows := make([]countRow, 0, int(wire.OpSourceSet))
	for op := wire.OpPower; op <= wire.OpSourceSet; op++ {
		opRows = append(opRows, countRow{op.String(), stats.EventsByOp[op]})
	}
	printBreakdown(w, "Events by Operation:", opRows)

	if stats.Queries > 0 {
		matched := stats.Queries - stats.QueriesUnmatched
		rate := (matched*100 + stats.Queries/2) / stats.Queries
		fmt.Fprintf(w, "Queries: %d (%d%% matched)\n", stats.Queries, rate)
		if stats.QueriesUnmatched > 0 {
			fmt.Fprintf(w, "  Unanswered:      %d\n", stats.QueriesUnmatched)
		}
		if stats.NoiseDiscarded > 0 {
			fmt.Fprintf(w, "  Noise discarded: %d lines\n", stats.NoiseDiscarded)
		}
		printAttemptsHistogram(w, stats.QueryAttempts)
		fmt.Fprintln(w)
	}

	printConnections(w, stats)

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}

// printBreakdown prints the non-zero rows under a heading.
func printBreakdown(w io.Writer, title string, rows []countRow) {
	fmt.Fprintln(w, title)
	for _, row := range rows {
		if row.count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", row.label+":", row.count)
		}
	}
	fmt.Fprintln(w)
}

// printAttemptsHistogram shows how many reads each query needed.
func printAttemptsHistogram(w io.Writer, attempts map[int]int) {
	if len(attempts) == 0 {
		return
	}
	reads := make([]int, 0, len(attempts))
	for n := range attempts {
		reads = append(reads, n)
	}
	sort.Ints(reads)

	fmt.Fprintln(w, "  Attempts:")
	for _, n := range reads {
		fmt.Fprintf(w, "    %d: %d\n", n, attempts[n])
	}
}

// printConnections lists connections oldest first.
func printConnections(w io.Writer, stats *Stats) {
	fmt.Fprintf(w, "Connections: %d\n", len(stats.Connections))
	if len(stats.Connections) == 0 {
		return
	}

	ids := make([]string, 0, len(stats.Connections))
	for id := range stats.Connections {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return stats.Connections[ids[i]].FirstSeen.Before(stats.Connections[ids[j]].FirstSeen)
	})

	fmt.Fprintln(w)
	for _, id := range ids {
		conn := stats.Connections[id]
		duration := conn.LastSeen.Sub(conn.FirstSeen).Round(time.Millisecond)
		fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenConnID(id), conn.Events, duration)
		if conn.Device != "" {
			fmt.Fprintf(w, "           Device: %s\n", conn.Device)
		}
		if conn.Zone != 0 {
			fmt.Fprintf(w, "           Zone: %d\n", conn.Zone)
		}
	}
}
