package engagement

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Ledger holds the engagement record of every tracked item.
//
// Writers are serialized and each mutation publishes a complete new Snapshot,
// so readers always see either the state before a mutation or after it. Every
// mutation is handed to the Persister with a monotonically increasing version.
type Ledger struct {
	persister Persister
	now       func() time.Time

	mu      sync.Mutex // serializes writers
	version uint64
	state   atomic.Pointer[Snapshot]
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithLedgerClock overrides time.Now.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates a Ledger hydrated from p. A nil Persister keeps the
// ledger in memory only.
func NewLedger(p Persister, opts ...LedgerOption) *Ledger {
	l := &Ledger{persister: p, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}

	initial := Snapshot{}
	if p != nil {
		initial = p.Load()
	}
	l.state.Store(&initial)
	return l
}

// commit publishes the snapshot built by next and persists it.
func (l *Ledger) commit(next func(prev Snapshot, now time.Time) Snapshot) {
	l.mu.Lock()
	snap := next(*l.state.Load(), l.now())
	l.version++
	version := l.version
	l.state.Store(&snap)
	l.mu.Unlock()

	if l.persister != nil {
		// Failures are reported by the Persister; Close surfaces the last one.
		_ = l.persister.Save(version, snap)
	}
}

func (l *Ledger) update(key Key, fn Reducer) {
	l.commit(func(prev Snapshot, now time.Time) Snapshot {
		return Apply(prev, key, now, fn)
	})
}

// TrackView records that the item was viewed.
func (l *Ledger) TrackView(key Key) {
	l.update(key, Viewed())
}

// TrackCompletion records that the item was completed.
func (l *Ledger) TrackCompletion(key Key) {
	l.update(key, Completed())
}

// TrackProgress records a progress change from oldValue to newValue. A change
// that fails CheckProgress is ignored, since it could never be saved.
func (l *Ledger) TrackProgress(key Key, oldValue, newValue float64) {
	if CheckProgress(oldValue, newValue) != nil {
		return
	}
	l.update(key, Progressed(oldValue, newValue))
}

// TrackNotification records a notification interaction. notificationType may
// be empty.
func (l *Ledger) TrackNotification(key Key, action Action, notificationType string) {
	l.update(key, Notified(action, notificationType))
}

// Stats returns a copy of the record for key, or ZeroRecord if the item has
// never been tracked. It does not create a record.
func (l *Ledger) Stats(key Key) Record {
	rec, ok := (*l.state.Load())[key.String()]
	if !ok {
		return ZeroRecord()
	}
	return rec.Clone()
}

// ClearItem deletes the record for key.
func (l *Ledger) ClearItem(key Key) {
	l.commit(func(prev Snapshot, _ time.Time) Snapshot {
		return Remove(prev, key)
	})
}

// ClearAll deletes every record.
func (l *Ledger) ClearAll() {
	l.commit(func(Snapshot, time.Time) Snapshot {
		return Snapshot{}
	})
}

// Summary totals engagement across all records.
func (l *Ledger) Summary() Summary {
	return Summarize(*l.state.Load())
}

// Snapshot returns the current immutable snapshot.
func (l *Ledger) Snapshot() Snapshot {
	return *l.state.Load()
}

// Keys returns the persisted keys of all records in sorted order.
func (l *Ledger) Keys() []string {
	snap := *l.state.Load()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close makes the current state durable before the process exits. It retries
// the latest version if its save failed and returns an error if the state
// still is not written. Mutations after Close are still accepted.
func (l *Ledger) Close() error {
	if l.persister == nil {
		return nil
	}
	l.mu.Lock()
	version, snap := l.version, *l.state.Load()
	l.mu.Unlock()
	return l.persister.Save(version, snap)
}
