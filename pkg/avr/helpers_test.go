package avr

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vsx-protocol/vsx-go/pkg/log"
)

// fakeReceiver is a scripted receiver for driver tests. It accepts any
// number of connections, reads CR-terminated commands and answers each
// from a reply table, recording everything it receives. Commands with
// no table entry get no reply, which is how the real device treats
// queries it will not answer.
type fakeReceiver struct {
	listener net.Listener

	mu       sync.Mutex
	replies  map[string][]string
	commands []string
}

func newFakeReceiver(t *testing.T, replies map[string][]string) *fakeReceiver {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if replies == nil {
		replies = make(map[string][]string)
	}

	r := &fakeReceiver{listener: listener, replies: replies}
	go r.acceptLoop()
	t.Cleanup(func() { listener.Close() })
	return r
}

func (r *fakeReceiver) acceptLoop() {
	for {
		conn, err := r.listener.Accept()
		if err != nil {
			return
		}
		go r.serve(conn)
	}
}

func (r *fakeReceiver) serve(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	for {
		raw, err := reader.ReadString('\r')
		if err != nil {
			return
		}
		command := strings.TrimSuffix(raw, "\r")

		r.mu.Lock()
		r.commands = append(r.commands, command)
		lines := r.replies[command]
		r.mu.Unlock()

		for _, line := range lines {
			if _, err := conn.Write([]byte(line + "\r\n")); err != nil {
				return
			}
		}
	}
}

// setReply replaces the scripted reply for one command.
func (r *fakeReceiver) setReply(command string, lines ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies[command] = lines
}

// clearReply removes the scripted reply for one command, so it times
// out like an unanswered query.
func (r *fakeReceiver) clearReply(command string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.replies, command)
}

// close shuts the listener down, refusing further connections.
func (r *fakeReceiver) close() {
	r.listener.Close()
}

// received returns a copy of all commands seen so far, in arrival order.
func (r *fakeReceiver) received() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

// waitReceived blocks until at least n commands have arrived.
func (r *fakeReceiver) waitReceived(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got := r.received()
		if len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d commands, got %v", n, r.received())
	return nil
}

// config returns a device config pointed at the fake receiver.
func (r *fakeReceiver) config() Config {
	addr := r.listener.Addr().(*net.TCPAddr)
	return Config{
		Host:    "127.0.0.1",
		Port:    addr.Port,
		Timeout: time.Second,
	}
}

// capturingLogger records events for assertions.
type capturingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *capturingLogger) Log(event log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *capturingLogger) Events() []log.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]log.Event(nil), c.events...)
}

// eventsOf filters captured events by category.
func (c *capturingLogger) eventsOf(category log.Category) []log.Event {
	var out []log.Event
	for _, e := range c.Events() {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}
