// Package wire defines the receiver's line protocol vocabulary and codecs.
//
// The protocol is plain ASCII text over TCP (telnet style). Commands are
// short verbs terminated by CR; replies and unsolicited status reports are
// lines terminated by CRLF. A reply is matched to its query by a fixed
// prefix:
//
//	-> ?V\r
//	<- VOL121\r\n
//
// The receiver pushes status lines at any time (volume knob turned on the
// front panel, display updates), so a reply is never assumed to be the
// next line on the wire.
//
// # Zones
//
// Each zone speaks its own dialect of the same vocabulary: the main zone
// answers a power query with PWR0, the sub zone with APR0. CommandSet
// carries one zone's verbs, reply prefixes and decode codes; Commands
// resolves the set for a zone and is the only lookup the rest of the
// module needs.
//
// # Codecs
//
// The codec helpers translate between wire payloads and native values:
// power codes to PowerState, 3-digit volume fields to fractions of
// MaxVolume, source replies to 2-digit source codes, and source registry
// replies to display names. All of them are pure functions.
package wire
