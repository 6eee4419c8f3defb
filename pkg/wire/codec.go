package wire

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxVolume is the highest volume step the wire format can express.
// Volume crosses the wire as an integer step 0..MaxVolume rendered as a
// zero-padded 3-digit field; the driver API deals in fractions of it.
const MaxVolume = 185

// ErrMalformedReply is returned when a reply carries the expected prefix
// but an undecodable payload.
var ErrMalformedReply = errors.New("malformed reply")

// VolumeCommand encodes a volume fraction as an absolute set command.
// level is clamped into [0, 1] and rounded to the nearest wire step, so
// 0.5 on zone 2 encodes "093ZV".
func (c CommandSet) VolumeCommand(level float64) string {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	return fmt.Sprintf("%03d%s", int(math.Round(level*MaxVolume)), c.VolumeSet)
}

// SourceCommand encodes the input selection command for a source code.
func (c CommandSet) SourceCommand(code string) string {
	return code + c.SourceSet
}

// DecodeVolume converts a volume reply to a fraction of MaxVolume.
func (c CommandSet) DecodeVolume(reply string) (float64, error) {
	payload := strings.TrimPrefix(reply, c.Volume.ReplyPrefix)
	steps, err := strconv.Atoi(payload)
	if err != nil {
		return 0, fmt.Errorf("%w: volume payload %q", ErrMalformedReply, payload)
	}
	return float64(steps) / MaxVolume, nil
}

// DecodeMute reports whether a mute reply means the zone is muted. The
// match is exact: any other payload with the same prefix means unmuted.
func (c CommandSet) DecodeMute(reply string) bool {
	return reply == c.MutedReply
}

// DecodeSource extracts the active source code from a source reply by
// stripping the zone's reply prefix. An empty remainder is not a code.
func (c CommandSet) DecodeSource(reply string) (string, bool) {
	code := strings.TrimPrefix(reply, c.Source.ReplyPrefix)
	if code == "" || code == reply {
		return "", false
	}
	return code, true
}
