// Package log captures receiver protocol traffic as structured events.
//
// The driver emits one Event per raw line on the wire, per query
// exchange, per fired action, and per observed state transition, plus
// errors from either layer. Protocol capture is separate from
// operational logging (slog): it is a complete machine-readable trace
// of a session, meant for later inspection rather than for humans
// tailing a console.
//
// A Logger implementation receives the events:
//
//	// Watch traffic on a console during development.
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// Record a session to a file.
//	cfg.Logger, _ = log.NewFileLogger("living-room.vlog")
//
//	// Or both at once.
//	cfg.Logger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fileLogger)
//
// Transport events carry the raw line text (LineEvent). Driver events
// carry the outcome of a whole query exchange (QueryEvent), a
// fire-and-forget command (ActionEvent), or a state transition
// (StateChangeEvent). ErrorEventData records failures at either layer.
//
// Log files are CBOR, one record per event, with the .vlog extension.
// The vsx-log tool views, filters, and exports them.
package log
