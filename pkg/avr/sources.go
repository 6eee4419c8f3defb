package avr

import (
	"errors"
	"fmt"

	"github.com/vsx-protocol/vsx-go/pkg/log"
	"github.com/vsx-protocol/vsx-go/pkg/transport"
	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

// seedSources builds the initial source table from an allowlist of
// display names, filtered against the built-in catalog. Names the
// catalog does not know are dropped with an error event. An empty
// result (including an empty allowlist) leaves the table empty, which
// arms learning on the first poll.
func (d *Device) seedSources(allowed []string) {
	if len(allowed) == 0 {
		return
	}
	catalog := DefaultSources()
	for _, name := range allowed {
		code, ok := catalog[name]
		if !ok {
			d.logError("", "source allowlist", fmt.Errorf("%w: %q", ErrUnknownSource, name))
			continue
		}
		d.addSource(name, code)
	}
}

// learnSources fills the source table from the receiver's named-source
// registry, probing every slot on the supplied connection. It runs only
// while the table is empty: a configured allowlist, or an earlier
// successful pass, suppresses it. Empty slots answer nothing and are
// skipped; a broken connection aborts the pass and leaves whatever was
// learned so far.
func (d *Device) learnSources(conn *transport.Conn) {
	d.mu.RLock()
	empty := len(d.sourceByName) == 0
	d.mu.RUnlock()
	if !empty {
		return
	}

	learned := 0
	for i := 0; i < wire.SourceRegistrySize; i++ {
		query := wire.Query{Request: wire.SourceProbe(i), ReplyPrefix: wire.SourceReplyPrefix}
		reply, err := conn.Request(wire.OpSourceName, query)
		if err != nil {
			if errors.Is(err, transport.ErrNoReply) {
				continue
			}
			d.logError(conn.ID(), "source registry probe", err)
			break
		}
		name, ok := wire.DecodeSourceName(reply)
		if !ok {
			continue
		}
		d.addSource(name, wire.SourceCode(i))
		learned++
	}

	if learned > 0 {
		d.logStateChange(conn.ID(), log.StateEntitySourceTable,
			"empty", fmt.Sprintf("%d sources", learned), "learned from receiver registry")
	}
}

// addSource inserts one name/code pair, keeping the two maps exact
// inverses. Re-learning a name or a code evicts the stale counterpart
// entry.
func (d *Device) addSource(name, code string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if old, ok := d.sourceByName[name]; ok {
		delete(d.sourceByCode, old)
	}
	if old, ok := d.sourceByCode[code]; ok {
		delete(d.sourceByName, old)
	}
	d.sourceByName[name] = code
	d.sourceByCode[code] = name
}

// sourceName resolves an input code to its display name, empty when the
// code is not in the table.
func (d *Device) sourceName(code string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sourceByCode[code]
}

// sourceCode resolves a display name to its input code.
func (d *Device) sourceCode(name string) (code string, ok bool, empty bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	code, ok = d.sourceByName[name]
	return code, ok, len(d.sourceByName) == 0
}
