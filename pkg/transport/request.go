package transport

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/vsx-protocol/vsx-go/pkg/log"
	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

// Reply matching constants. The receiver answers interactive queries
// within tens of milliseconds; three short reads leave room for a couple
// of unsolicited status lines ahead of the reply. These are protocol
// timing, not configuration.
const (
	// ReplyAttempts is the maximum number of reads per request.
	ReplyAttempts = 3

	// ReplyTimeout bounds each individual read.
	ReplyTimeout = 200 * time.Millisecond
)

// Request sends a query and waits for a line starting with the query's
// reply prefix. At most ReplyAttempts reads of ReplyTimeout each are
// spent; non-matching lines are unsolicited status traffic and are
// discarded. When the budget runs out, Request returns ErrNoReply and
// the connection remains usable for further queries.
//
// op tags the query event on the protocol log.
func (c *Conn) Request(op wire.Op, query wire.Query) (string, error) {
	if err := c.SendLine(query.Request); err != nil {
		c.logQuery(op, query, "", 0, 0, false)
		return "", fmt.Errorf("send %q: %w", query.Request, err)
	}

	attempts := 0
	discarded := 0
	for attempts < ReplyAttempts {
		attempts++
		line, err := c.ReadLine(ReplyTimeout)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			c.logQuery(op, query, "", attempts, discarded, false)
			return "", fmt.Errorf("read reply for %q: %w", query.Request, err)
		}
		if strings.HasPrefix(line, query.ReplyPrefix) {
			c.logQuery(op, query, line, attempts, discarded, true)
			return line, nil
		}
		discarded++
	}

	c.logQuery(op, query, "", attempts, discarded, false)
	return "", ErrNoReply
}

func (c *Conn) logQuery(op wire.Op, query wire.Query, reply string, attempts, discarded int, matched bool) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.id,
		Direction:    log.DirectionOut,
		Layer:        log.LayerDriver,
		Category:     log.CategoryQuery,
		RemoteAddr:   c.conn.RemoteAddr().String(),
		Query: &log.QueryEvent{
			Op:          op,
			Command:     query.Request,
			ReplyPrefix: query.ReplyPrefix,
			Reply:       reply,
			Attempts:    attempts,
			Discarded:   discarded,
			Matched:     matched,
		},
	})
}

// isTimeout reports whether err is a read/write deadline expiry.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
