package wire

import "fmt"

// SourceRegistrySize is the number of addressable source registry slots.
// Probe indices run 0..SourceRegistrySize-1.
const SourceRegistrySize = 60

// SourceReplyPrefix opens every source registry reply.
const SourceReplyPrefix = "RGB"

const sourceProbeVerb = "?RGB"

// SourceProbe builds the registry query for a slot index.
func SourceProbe(index int) string {
	return fmt.Sprintf("%s%02d", sourceProbeVerb, index)
}

// SourceCode renders a slot index as the 2-digit code used in source
// maps and input selection commands.
func SourceCode(index int) string {
	return fmt.Sprintf("%02d", index)
}

// DecodeSourceName extracts the display name from a registry reply.
// Replies are RGB followed by the 2-digit slot index and a 1-character
// status flag; everything after that is the name. Replies too short to
// carry a name return false.
func DecodeSourceName(reply string) (string, bool) {
	const header = len(SourceReplyPrefix) + 3
	if len(reply) <= header {
		return "", false
	}
	return reply[header:], true
}
