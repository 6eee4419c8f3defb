package log

import "io"

// MultiLogger fans events out to several sinks, typically a FileLogger
// for replay plus a SlogAdapter for live reading. Nil sinks are
// skipped at construction, so callers can hand over optional sinks
// without checking which were configured.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger over the given sinks. Nil
// entries are dropped; a MultiLogger over zero sinks discards events
// like NoopLogger.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	kept := make([]Logger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			kept = append(kept, l)
		}
	}
	return &MultiLogger{loggers: kept}
}

// Log sends the event to every sink in construction order.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

// Close closes every sink that has a Close method and reports the
// first error. Sinks without one (SlogAdapter, NoopLogger) are left
// alone.
func (m *MultiLogger) Close() error {
	var first error
	for _, l := range m.loggers {
		c, ok := l.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var _ Logger = (*MultiLogger)(nil)
