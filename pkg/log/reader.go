package log

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter selects log events. The zero value matches everything; each
// set field must match for an event to pass.
type Filter struct {
	// ConnectionID selects events from one per-interaction connection.
	ConnectionID string

	// Device selects events from one configured device name.
	Device string

	// Zone selects events from one receiver zone (0 matches all).
	Zone int

	// Layer selects the capture layer.
	Layer *Layer

	// Direction selects sent or received lines.
	Direction *Direction

	// Category selects the event category.
	Category *Category

	// TimeStart selects events at or after this time.
	TimeStart *time.Time

	// TimeEnd selects events before this time.
	TimeEnd *time.Time
}

// matches returns true if the event passes every set criterion.
func (f Filter) matches(event Event) bool {
	if f.ConnectionID != "" && event.ConnectionID != f.ConnectionID {
		return false
	}
	if f.Device != "" && event.Device != f.Device {
		return false
	}
	if f.Zone != 0 && event.Zone != f.Zone {
		return false
	}
	if f.Layer != nil && event.Layer != *f.Layer {
		return false
	}
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	return f.inTimeRange(event.Timestamp)
}

// inTimeRange checks the half-open window [TimeStart, TimeEnd).
func (f Filter) inTimeRange(ts time.Time) bool {
	if f.TimeStart != nil && ts.Before(*f.TimeStart) {
		return false
	}
	return f.TimeEnd == nil || ts.Before(*f.TimeEnd)
}

// Reader streams protocol events out of a .vlog file.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader creates a Reader over every event in the log file at path.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader creates a Reader that yields only events matching
// the filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		file:    f,
		decoder: NewDecoder(f),
		filter:  filter,
	}, nil
}

// Next returns the next matching event, or io.EOF when the log is
// exhausted. A log cut off mid-record (the writing session was killed
// before its buffer flushed) reads as ending cleanly at the last
// complete record.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		err := r.decoder.Decode(&event)
		switch {
		case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
			return Event{}, io.EOF
		case err != nil:
			return Event{}, err
		}
		if r.filter.matches(event) {
			return event, nil
		}
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
