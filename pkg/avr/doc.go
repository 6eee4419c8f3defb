// Package avr implements the driver for one receiver zone.
//
// A Device owns the state of a single zone and talks to the receiver
// over short-lived connections from pkg/transport, using the zone's
// command set from pkg/wire.
//
// # Poll Cycle
//
// Poll runs one full state refresh on one connection: power, volume,
// mute, a one-time source table learning pass, and the active source.
// Per-field "no data" is normal (powered-down zones ignore most
// queries) and degrades that field to unknown rather than failing the
// cycle; only a failed connect fails the poll. Power is special: a zone
// that stops answering keeps its last known power state instead of
// flapping to unknown.
//
// # Actions
//
// Command methods (TurnOn, SetVolume, SelectSource, ...) are
// fire-and-forget: one connection, one write, drain, close. They
// confirm nothing; the next poll is the only way to observe effects.
// Transport failures are logged protocol events and otherwise silent.
// The only action errors a caller sees, ErrNoSources and
// ErrUnknownSource, report caller mistakes rather than device
// conditions.
//
// # Sources
//
// The source table maps display names to the receiver's 2-digit input
// codes. It is seeded from Config.Sources filtered against the built-in
// catalog; when the table starts empty, the first poll learns it from
// the receiver's named-source registry instead. Entries are never
// evicted while the process lives.
//
// # Concurrency
//
// One Device is one zone. Polls and actions must not be overlapped for
// the same Device; the read accessors are safe from any goroutine.
// Devices for different zones are fully independent and may be used
// concurrently.
package avr
