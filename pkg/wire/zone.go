package wire

import (
	"errors"
	"fmt"
)

// ErrUnsupportedZone is returned when no command set exists for a zone.
var ErrUnsupportedZone = errors.New("unsupported zone")

// Zone identifies a receiver zone. The main listening zone is 1, the
// secondary zone is 2. Higher zones are not part of the vocabulary.
type Zone int

const (
	// Zone1 is the main listening zone.
	Zone1 Zone = 1

	// Zone2 is the secondary zone.
	Zone2 Zone = 2
)

// String returns "zone N".
func (z Zone) String() string {
	return fmt.Sprintf("zone %d", int(z))
}

// Valid reports whether a command set exists for the zone.
func (z Zone) Valid() bool {
	_, ok := commandSets[z]
	return ok
}
