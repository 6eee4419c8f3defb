package log

import (
	"time"

	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	// Empty for events not tied to a live connection.
	ConnectionID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates line flow for transport events.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Device is the configured device name.
	Device string `cbor:"6,keyasint,omitempty"`

	// Zone is the receiver zone the event belongs to (0 if not zoned).
	Zone int `cbor:"7,keyasint,omitempty"`

	// RemoteAddr is the receiver address (host:port).
	RemoteAddr string `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Line        *LineEvent        `cbor:"9,keyasint,omitempty"`  // Transport layer
	Query       *QueryEvent       `cbor:"10,keyasint,omitempty"` // Driver layer (request/reply)
	Action      *ActionEvent      `cbor:"11,keyasint,omitempty"` // Driver layer (fire-and-forget)
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Connection/device state
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of line flow.
type Direction uint8

const (
	// DirectionIn indicates a line received from the receiver.
	DirectionIn Direction = 0
	// DirectionOut indicates a command sent to the receiver.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the line layer (raw text on the wire).
	LayerTransport Layer = 0
	// LayerDriver is the driver layer (decoded queries, actions, state).
	LayerDriver Layer = 1
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerDriver:
		return "DRIVER"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryLine indicates a raw protocol line.
	CategoryLine Category = 0
	// CategoryQuery indicates a query exchange (request plus matched reply).
	CategoryQuery Category = 1
	// CategoryAction indicates a fire-and-forget command.
	CategoryAction Category = 2
	// CategoryState indicates a state change.
	CategoryState Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryLine:
		return "LINE"
	case CategoryQuery:
		return "QUERY"
	case CategoryAction:
		return "ACTION"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LineEvent captures one raw line at the transport layer.
type LineEvent struct {
	// Text is the line content without its terminator.
	Text string `cbor:"1,keyasint"`

	// Size is the byte count on the wire including the terminator.
	Size int `cbor:"2,keyasint"`
}

// QueryEvent captures a complete query exchange at the driver layer:
// the request verb, the reply that matched its prefix (if any), and how
// much noise was discarded along the way.
type QueryEvent struct {
	// Op is the logical operation the query belongs to.
	Op wire.Op `cbor:"1,keyasint"`

	// Command is the query verb as sent (without terminator).
	Command string `cbor:"2,keyasint"`

	// ReplyPrefix is the prefix the reply was matched against.
	ReplyPrefix string `cbor:"3,keyasint"`

	// Reply is the matched reply line (empty when nothing matched).
	Reply string `cbor:"4,keyasint,omitempty"`

	// Attempts is the number of reads consumed.
	Attempts int `cbor:"5,keyasint"`

	// Discarded is the number of non-matching lines skipped.
	Discarded int `cbor:"6,keyasint,omitempty"`

	// Matched reports whether a reply was obtained.
	Matched bool `cbor:"7,keyasint"`
}

// ActionEvent captures a fire-and-forget command at the driver layer.
type ActionEvent struct {
	// Op is the logical operation.
	Op wire.Op `cbor:"1,keyasint"`

	// Command is the full command as sent (without terminator).
	Command string `cbor:"2,keyasint"`
}

// StateChangeEvent captures connection and device state transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntityPower indicates a zone power state change.
	StateEntityPower StateEntity = 1
	// StateEntityVolume indicates a zone volume change.
	StateEntityVolume StateEntity = 2
	// StateEntityMute indicates a zone mute change.
	StateEntityMute StateEntity = 3
	// StateEntitySource indicates an active input change.
	StateEntitySource StateEntity = 4
	// StateEntitySourceTable indicates the learned source table changed.
	StateEntitySourceTable StateEntity = 5
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityPower:
		return "POWER"
	case StateEntityVolume:
		return "VOLUME"
	case StateEntityMute:
		return "MUTE"
	case StateEntitySource:
		return "SOURCE"
	case StateEntitySourceTable:
		return "SOURCE_TABLE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
