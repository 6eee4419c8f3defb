package wire

// PowerState is the three-valued power condition of a zone. A zone whose
// power query yields no data keeps its previous state rather than
// inventing one, so the zero value is PowerUnknown.
type PowerState uint8

const (
	PowerUnknown PowerState = 0
	PowerOn      PowerState = 1
	PowerOff     PowerState = 2
)

// String returns the state name.
func (p PowerState) String() string {
	switch p {
	case PowerOn:
		return "on"
	case PowerOff:
		return "off"
	default:
		return "unknown"
	}
}

// DecodePower resolves a power reply against the zone's power codes.
// Replies matching neither the on code nor an off code return
// (PowerUnknown, false); the caller keeps whatever state it had.
func (c CommandSet) DecodePower(reply string) (PowerState, bool) {
	if reply == c.PowerOnReply {
		return PowerOn, true
	}
	for _, off := range c.PowerOffReplies {
		if reply == off {
			return PowerOff, true
		}
	}
	return PowerUnknown, false
}
