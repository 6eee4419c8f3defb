package transport

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/vsx-protocol/vsx-go/pkg/log"
	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

var powerQuery = wire.Query{Request: "?P", ReplyPrefix: "PWR"}

// replyServer answers every received command with the scripted lines.
func replyServer(t *testing.T, lines ...string) string {
	t.Helper()
	return newTestServer(t, func(c net.Conn) {
		for {
			if _, err := readCommand(c); err != nil {
				return
			}
			for _, line := range lines {
				if _, err := c.Write([]byte(line + ReplyTerminator)); err != nil {
					return
				}
			}
		}
	})
}

func lastQueryEvent(t *testing.T, logger *capturingLogger) *log.QueryEvent {
	t.Helper()
	events := logger.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Query != nil {
			return events[i].Query
		}
	}
	t.Fatal("no query event logged")
	return nil
}

func TestRequestImmediateMatch(t *testing.T) {
	addr := replyServer(t, "PWR0")

	logger := &capturingLogger{}
	conn := mustDial(t, addr, logger)

	reply, err := conn.Request(wire.OpPower, powerQuery)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if reply != "PWR0" {
		t.Errorf("reply = %q, want %q", reply, "PWR0")
	}

	q := lastQueryEvent(t, logger)
	if q.Op != wire.OpPower {
		t.Errorf("event Op = %v, want OpPower", q.Op)
	}
	if q.Attempts != 1 || q.Discarded != 0 || !q.Matched {
		t.Errorf("event counters = (%d, %d, %v), want (1, 0, true)", q.Attempts, q.Discarded, q.Matched)
	}
	if q.Reply != "PWR0" {
		t.Errorf("event Reply = %q, want %q", q.Reply, "PWR0")
	}
}

func TestRequestSkipsNoise(t *testing.T) {
	// Two unsolicited lines arrive ahead of the reply; both fit within
	// the three-read budget.
	addr := replyServer(t, "FL020VOLUME", "VOL121", "PWR0")

	logger := &capturingLogger{}
	conn := mustDial(t, addr, logger)

	reply, err := conn.Request(wire.OpPower, powerQuery)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if reply != "PWR0" {
		t.Errorf("reply = %q, want %q", reply, "PWR0")
	}

	q := lastQueryEvent(t, logger)
	if q.Attempts != 3 || q.Discarded != 2 || !q.Matched {
		t.Errorf("event counters = (%d, %d, %v), want (3, 2, true)", q.Attempts, q.Discarded, q.Matched)
	}
}

func TestRequestBudgetExhausted(t *testing.T) {
	// Three noise lines exhaust the read budget before the real reply.
	addr := replyServer(t, "FL020VOLUME", "VOL121", "MUT1", "PWR0")

	logger := &capturingLogger{}
	conn := mustDial(t, addr, logger)

	_, err := conn.Request(wire.OpPower, powerQuery)
	if !errors.Is(err, ErrNoReply) {
		t.Fatalf("Request error = %v, want ErrNoReply", err)
	}

	q := lastQueryEvent(t, logger)
	if q.Attempts != 3 || q.Discarded != 3 || q.Matched {
		t.Errorf("event counters = (%d, %d, %v), want (3, 3, false)", q.Attempts, q.Discarded, q.Matched)
	}

	// The connection stays usable: the reply that missed the budget is
	// still buffered and satisfies the retry.
	reply, err := conn.Request(wire.OpPower, powerQuery)
	if err != nil {
		t.Fatalf("second Request failed: %v", err)
	}
	if reply != "PWR0" {
		t.Errorf("second reply = %q, want %q", reply, "PWR0")
	}
}

func TestRequestSilentReceiver(t *testing.T) {
	addr := newTestServer(t, func(c net.Conn) {
		// Swallow commands, never answer.
		for {
			if _, err := readCommand(c); err != nil {
				return
			}
		}
	})

	conn := mustDial(t, addr, nil)

	start := time.Now()
	_, err := conn.Request(wire.OpPower, powerQuery)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrNoReply) {
		t.Fatalf("Request error = %v, want ErrNoReply", err)
	}
	if elapsed < 3*ReplyTimeout-100*time.Millisecond {
		t.Errorf("Request returned after %v, want the full %v budget", elapsed, 3*ReplyTimeout)
	}
	if elapsed > 3*ReplyTimeout+2*time.Second {
		t.Errorf("Request took %v, budget not honored", elapsed)
	}
}

func TestRequestPeerClosed(t *testing.T) {
	addr := newTestServer(t, func(c net.Conn) {
		if _, err := readCommand(c); err != nil {
			return
		}
		c.Close()
	})

	conn := mustDial(t, addr, nil)

	_, err := conn.Request(wire.OpPower, powerQuery)
	if err == nil {
		t.Fatal("Request should fail when the peer closes")
	}
	if errors.Is(err, ErrNoReply) {
		t.Errorf("error = %v, want a read error rather than ErrNoReply", err)
	}
}

func TestRequestMixedTimeoutAndNoise(t *testing.T) {
	// One noise line, then silence: one read discards, the remaining
	// reads time out, the budget is shared.
	addr := replyServer(t, "FL020VOLUME")

	logger := &capturingLogger{}
	conn := mustDial(t, addr, logger)

	_, err := conn.Request(wire.OpPower, powerQuery)
	if !errors.Is(err, ErrNoReply) {
		t.Fatalf("Request error = %v, want ErrNoReply", err)
	}

	q := lastQueryEvent(t, logger)
	if q.Attempts != 3 || q.Discarded != 1 {
		t.Errorf("event counters = (%d, %d), want (3, 1)", q.Attempts, q.Discarded)
	}
}

func BenchmarkRequest(b *testing.B) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		b.Fatal(err)
	}
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 64)
				for {
					if _, err := c.Read(buf); err != nil {
						return
					}
					if _, err := c.Write([]byte("PWR0" + ReplyTerminator)); err != nil {
						return
					}
				}
			}(conn)
		}
	}()

	conn, err := Dial(context.Background(), ln.Addr().String(), time.Second, nil)
	if err != nil {
		b.Fatal(err)
	}
	defer conn.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := conn.Request(wire.OpPower, powerQuery); err != nil {
			b.Fatal(err)
		}
	}
}
