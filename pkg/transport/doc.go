// Package transport implements the receiver's line transport.
//
// The transport layer handles:
//   - Short-lived TCP connections (one per interaction)
//   - CR-terminated commands, CRLF-terminated reply lines
//   - Prefix-matched request/reply exchanges with a bounded read budget
//   - Draining of unsolicited status traffic
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   Driver (poll cycle, actions) │
//	├────────────────────────────────┤
//	│   Line discipline (CR / CRLF)  │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// # Connection Discipline
//
// The receiver's firmware serves its control port best with short
// interactions: connect, exchange a handful of lines, close. Conn is
// built for exactly that and is not reused or pooled. A Conn is owned
// by one goroutine at a time.
//
// # Reply Matching
//
// The receiver interleaves replies with unsolicited status lines
// (front-panel volume changes, display updates). Request matches replies
// by prefix and spends at most ReplyAttempts reads of ReplyTimeout each
// before giving up with ErrNoReply. Giving up is normal: a powered-down
// zone simply does not answer some queries.
package transport
