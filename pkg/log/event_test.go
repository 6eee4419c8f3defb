package log

import (
	"fmt"
	"testing"
)

// checkString asserts a Stringer's rendering; the failing line number
// identifies the case.
func checkString(t *testing.T, v fmt.Stringer, want string) {
	t.Helper()
	if got := v.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEnumStrings(t *testing.T) {
	checkString(t, DirectionIn, "IN")
	checkString(t, DirectionOut, "OUT")
	checkString(t, Direction(99), "UNKNOWN")

	checkString(t, LayerTransport, "TRANSPORT")
	checkString(t, LayerDriver, "DRIVER")
	checkString(t, Layer(99), "UNKNOWN")

	checkString(t, CategoryLine, "LINE")
	checkString(t, CategoryQuery, "QUERY")
	checkString(t, CategoryAction, "ACTION")
	checkString(t, CategoryState, "STATE")
	checkString(t, CategoryError, "ERROR")
	checkString(t, Category(99), "UNKNOWN")

	checkString(t, StateEntityConnection, "CONNECTION")
	checkString(t, StateEntityPower, "POWER")
	checkString(t, StateEntityVolume, "VOLUME")
	checkString(t, StateEntityMute, "MUTE")
	checkString(t, StateEntitySource, "SOURCE")
	checkString(t, StateEntitySourceTable, "SOURCE_TABLE")
	checkString(t, StateEntity(99), "UNKNOWN")
}

// The integer values are persisted in .vlog records, so they must not
// move.
func TestEnumValuesAreStable(t *testing.T) {
	values := []struct {
		name string
		got  uint8
		want uint8
	}{
		{"DirectionIn", uint8(DirectionIn), 0},
		{"DirectionOut", uint8(DirectionOut), 1},
		{"LayerTransport", uint8(LayerTransport), 0},
		{"LayerDriver", uint8(LayerDriver), 1},
		{"CategoryLine", uint8(CategoryLine), 0},
		{"CategoryQuery", uint8(CategoryQuery), 1},
		{"CategoryAction", uint8(CategoryAction), 2},
		{"CategoryState", uint8(CategoryState), 3},
		{"CategoryError", uint8(CategoryError), 4},
		{"StateEntityConnection", uint8(StateEntityConnection), 0},
		{"StateEntityPower", uint8(StateEntityPower), 1},
		{"StateEntityVolume", uint8(StateEntityVolume), 2},
		{"StateEntityMute", uint8(StateEntityMute), 3},
		{"StateEntitySource", uint8(StateEntitySource), 4},
		{"StateEntitySourceTable", uint8(StateEntitySourceTable), 5},
	}

	for _, v := range values {
		if v.got != v.want {
			t.Errorf("%s = %d, want %d", v.name, v.got, v.want)
		}
	}
}
