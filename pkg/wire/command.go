package wire

import "fmt"

// Query pairs a query verb with the prefix that identifies its reply
// among interleaved status lines.
type Query struct {
	Request     string
	ReplyPrefix string
}

// CommandSet is the complete wire vocabulary of one zone.
//
// Simple actions are complete commands. Parameterised actions carry only
// the suffix; the full command is the encoded parameter followed by the
// suffix ("093" + "ZV"). CommandSet values contain no reference types, so
// they can be compared with == and callers cannot mutate the table
// through them.
type CommandSet struct {
	// Queries.
	Power  Query
	Volume Query
	Mute   Query
	Source Query

	// Complete action commands. MuteOn engages mute, MuteOff releases it.
	PowerOn    string
	PowerOff   string
	VolumeUp   string
	VolumeDown string
	MuteOn     string
	MuteOff    string

	// Suffixes for parameterised actions.
	VolumeSet string
	SourceSet string

	// Decode codes. MutedReply is the exact reply meaning "muted";
	// PowerOnReply and PowerOffReplies are the exact power codes.
	MutedReply      string
	PowerOnReply    string
	PowerOffReplies [2]string
}

var commandSets = map[Zone]CommandSet{
	Zone1: {
		Power:  Query{Request: "?P", ReplyPrefix: "PWR"},
		Volume: Query{Request: "?V", ReplyPrefix: "VOL"},
		Mute:   Query{Request: "?M", ReplyPrefix: "MUT"},
		Source: Query{Request: "?F", ReplyPrefix: "FN"},

		PowerOn:    "PO",
		PowerOff:   "PF",
		VolumeUp:   "VU",
		VolumeDown: "VD",
		MuteOn:     "MO",
		MuteOff:    "MF",

		VolumeSet: "VL",
		SourceSet: "FN",

		MutedReply:      "MUT0",
		PowerOnReply:    "PWR0",
		PowerOffReplies: [2]string{"PWR1", "PWR2"},
	},
	Zone2: {
		Power:  Query{Request: "?AP", ReplyPrefix: "APR"},
		Volume: Query{Request: "?ZV", ReplyPrefix: "ZV"},
		Mute:   Query{Request: "?Z2M", ReplyPrefix: "Z2MUT"},
		Source: Query{Request: "?ZS", ReplyPrefix: "Z2F"},

		PowerOn:    "APO",
		PowerOff:   "APF",
		VolumeUp:   "ZU",
		VolumeDown: "ZD",
		MuteOn:     "Z2MO",
		MuteOff:    "Z2MF",

		VolumeSet: "ZV",
		SourceSet: "ZS",

		MutedReply:      "Z2MUT0",
		PowerOnReply:    "APR0",
		PowerOffReplies: [2]string{"APR1", "APR2"},
	},
}

// Commands returns the command set for a zone. The lookup is pure: every
// call for the same zone returns an identical value.
func Commands(z Zone) (CommandSet, error) {
	cs, ok := commandSets[z]
	if !ok {
		return CommandSet{}, fmt.Errorf("%w: %s", ErrUnsupportedZone, z)
	}
	return cs, nil
}
