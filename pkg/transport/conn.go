package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vsx-protocol/vsx-go/pkg/log"
)

// Line protocol constants.
const (
	// DefaultPort is the receiver's telnet control port. Some models
	// additionally listen on 8102.
	DefaultPort = 23

	// CommandTerminator ends every command sent to the receiver.
	CommandTerminator = "\r"

	// ReplyTerminator ends every line the receiver sends.
	ReplyTerminator = "\r\n"

	// DefaultTimeout bounds dialing and command writes when the caller
	// does not configure a timeout.
	DefaultTimeout = 500 * time.Millisecond

	// drainTimeout bounds the best-effort read that flushes pending
	// status lines after a fire-and-forget command.
	drainTimeout = 20 * time.Millisecond

	// readBufferSize is the buffered reader size. Lines are tiny; 4KB
	// absorbs display spam between replies.
	readBufferSize = 4096
)

// Transport errors.
var (
	// ErrConnectionClosed indicates use of a closed connection.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrEmptyCommand indicates an attempt to send an empty command.
	ErrEmptyCommand = errors.New("command is empty")

	// ErrNoReply indicates the reply budget was exhausted without a line
	// matching the expected prefix.
	ErrNoReply = errors.New("no matching reply")
)

// Conn is one short-lived connection to a receiver.
//
// The protocol discipline is connect, exchange a handful of lines,
// close; a Conn is never reused across interactions. A Conn is owned by
// a single goroutine; only Close may be called from elsewhere.
type Conn struct {
	conn    net.Conn
	reader  *bufio.Reader
	id      string
	timeout time.Duration
	logger  log.Logger

	closeCh   chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Dial opens a connection to address (host:port). timeout bounds the TCP
// connect and every subsequent command write; zero means DefaultTimeout.
// logger receives transport events and may be nil.
func Dial(ctx context.Context, address string, timeout time.Duration, logger log.Logger) (*Conn, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.NoopLogger{}
	}

	dialer := &net.Dialer{Timeout: timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	c := &Conn{
		conn:    netConn,
		reader:  bufio.NewReaderSize(netConn, readBufferSize),
		id:      uuid.New().String(),
		timeout: timeout,
		logger:  logger,
		closeCh: make(chan struct{}),
	}
	c.logConnState("", "connected", "")
	return c, nil
}

// ID returns the connection's UUID, as tagged on log events.
func (c *Conn) ID() string {
	return c.id
}

// LocalAddr returns the local network address.
func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the receiver's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// SendLine writes one CR-terminated command.
func (c *Conn) SendLine(command string) error {
	if command == "" {
		return ErrEmptyCommand
	}

	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}

	line := command + CommandTerminator
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if _, err := io.WriteString(c.conn, line); err != nil {
		return fmt.Errorf("write command: %w", err)
	}

	c.logLine(command, len(line), log.DirectionOut)
	return nil
}

// ReadLine reads one CRLF-terminated line, waiting at most timeout. The
// returned line has its terminator stripped. A timed-out read leaves any
// partial line buffered for the next call.
func (c *Conn) ReadLine(timeout time.Duration) (string, error) {
	select {
	case <-c.closeCh:
		return "", ErrConnectionClosed
	default:
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", fmt.Errorf("set read deadline: %w", err)
	}
	raw, err := c.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read line: %w", err)
	}

	line := strings.TrimRight(raw, "\r\n")
	c.logLine(line, len(raw), log.DirectionIn)
	return line, nil
}

// Drain reads and discards whatever the receiver has already pushed.
// Fire-and-forget commands call it before closing so acknowledgement
// lines don't arrive on a dead socket. Errors are ignored.
func (c *Conn) Drain() {
	select {
	case <-c.closeCh:
		return
	default:
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(drainTimeout)); err != nil {
		return
	}
	for {
		raw, err := c.reader.ReadString('\n')
		if strings.HasSuffix(raw, "\n") {
			c.logLine(strings.TrimRight(raw, "\r\n"), len(raw), log.DirectionIn)
		}
		if err != nil {
			return
		}
	}
}

// Close closes the connection. It is safe to call Close multiple times.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		c.logConnState("connected", "closed", "")
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *Conn) logLine(text string, size int, direction log.Direction) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.id,
		Direction:    direction,
		Layer:        log.LayerTransport,
		Category:     log.CategoryLine,
		RemoteAddr:   c.conn.RemoteAddr().String(),
		Line:         &log.LineEvent{Text: text, Size: size},
	})
}

func (c *Conn) logConnState(oldState, newState, reason string) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.id,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		RemoteAddr:   c.conn.RemoteAddr().String(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}
