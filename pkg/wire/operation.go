package wire

// Op names a logical protocol operation. Ops tag log events and let the
// simulator and log tooling group traffic without re-parsing commands.
type Op uint8

const (
	// OpPower queries the zone power state.
	OpPower Op = 1

	// OpVolume queries the zone volume.
	OpVolume Op = 2

	// OpMute queries the zone mute state.
	OpMute Op = 3

	// OpSource queries the active input source.
	OpSource Op = 4

	// OpSourceName probes one source registry slot for its display name.
	OpSourceName Op = 5

	// OpPowerOn and the remaining ops are fire-and-forget actions.
	OpPowerOn    Op = 6
	OpPowerOff   Op = 7
	OpVolumeUp   Op = 8
	OpVolumeDown Op = 9
	OpVolumeSet  Op = 10
	OpMuteOn     Op = 11
	OpMuteOff    Op = 12
	OpSourceSet  Op = 13
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpPower:
		return "Power"
	case OpVolume:
		return "Volume"
	case OpMute:
		return "Mute"
	case OpSource:
		return "Source"
	case OpSourceName:
		return "SourceName"
	case OpPowerOn:
		return "PowerOn"
	case OpPowerOff:
		return "PowerOff"
	case OpVolumeUp:
		return "VolumeUp"
	case OpVolumeDown:
		return "VolumeDown"
	case OpVolumeSet:
		return "VolumeSet"
	case OpMuteOn:
		return "MuteOn"
	case OpMuteOff:
		return "MuteOff"
	case OpSourceSet:
		return "SourceSet"
	default:
		return "Unknown"
	}
}

// IsValid reports whether the op is part of the vocabulary.
func (o Op) IsValid() bool {
	return o >= OpPower && o <= OpSourceSet
}
