package log

// Logger receives protocol events as the driver produces them: one per
// raw line, query exchange, fired action, state change, or error.
// Pass nil or NoopLogger to disable logging.
type Logger interface {
	// Log records one event. Implementations must be safe for
	// concurrent use; Log runs synchronously on poll and action
	// paths, so slow sinks should buffer or queue.
	Log(event Event)
}

// NoopLogger drops every event. The zero value is ready to use.
type NoopLogger struct{}

// Log drops the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}
