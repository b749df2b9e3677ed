package engagement

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/JamesPrial/todo-engagement/internal/storage"
)

// Persister loads and saves whole ledger snapshots.
//
// Save returns nil when snap is written or when version is already covered
// by a newer write.
type Persister interface {
	Load() Snapshot
	Save(version uint64, snap Snapshot) error
}

// Adapter persists the ledger as one JSON document under a fixed key of a
// storage.KeyValueStore.
//
// Saves carry the ledger's mutation version. A save whose version is older
// than one already written is dropped, so a slow writer can never replace a
// newer ledger with an older one.
type Adapter struct {
	store  storage.KeyValueStore
	key    string
	logger *log.Logger

	mu        sync.Mutex
	attempted uint64
	saved     uint64
}

// NewAdapter creates an Adapter writing under key. A nil logger discards output.
func NewAdapter(store storage.KeyValueStore, key string, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Adapter{store: store, key: key, logger: logger}
}

// Load reads the stored ledger. A missing key, a read error or a document
// that does not parse all yield an empty snapshot; the latter two are logged.
func (a *Adapter) Load() Snapshot {
	raw, ok, err := a.store.Get(a.key)
	if err != nil {
		a.logger.Printf("failed to read engagement ledger, starting empty: %v", err)
		return Snapshot{}
	}
	if !ok {
		return Snapshot{}
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		a.logger.Printf("failed to parse engagement ledger, starting empty: %v", err)
		return Snapshot{}
	}
	if snap == nil {
		return Snapshot{}
	}
	for k, rec := range snap {
		snap[k] = rec.normalize()
	}
	return snap
}

// Save writes snap unless a newer version has already been written. An empty
// snapshot deletes the key. Failures are logged and returned; a later save or
// Ledger.Close retries with newer state.
func (a *Adapter) Save(version uint64, snap Snapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if version < a.attempted || version <= a.saved {
		return nil
	}
	a.attempted = version

	if err := a.write(snap); err != nil {
		a.logger.Printf("%v", err)
		return err
	}
	a.saved = version
	return nil
}

func (a *Adapter) write(snap Snapshot) error {
	if len(snap) == 0 {
		if err := a.store.Delete(a.key); err != nil {
			return fmt.Errorf("failed to delete engagement ledger: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode engagement ledger: %w", err)
	}
	if err := a.store.Set(a.key, string(data)); err != nil {
		return fmt.Errorf("failed to save engagement ledger: %w", err)
	}
	return nil
}

// Saved returns the newest version successfully written.
func (a *Adapter) Saved() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saved
}
