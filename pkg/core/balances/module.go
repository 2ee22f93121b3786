/*
Package balances provides a concurrent balance store on top of the MPT. It
serializes writers, lets readers proceed in parallel and keeps a bounded
history of recent state roots.
*/
package balances

import (
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/statecommit/balance-mpt/pkg/config"
	"github.com/statecommit/balance-mpt/pkg/core/mpt"
	"github.com/statecommit/balance-mpt/pkg/encoding/balance"
	"github.com/statecommit/balance-mpt/pkg/util"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type (
	// Module keeps account balances in an MPT.
	Module struct {
		log *zap.Logger

		mtx  sync.RWMutex
		trie *mpt.Trie
		// history maps version to the mpt.Snapshot of that version.
		history *lru.Cache

		version     atomic.Uint64
		currentRoot atomic.Value
	}

	// Entry is a single balance update.
	Entry struct {
		Address string `json:"address" yaml:"address"`
		Balance string `json:"balance" yaml:"balance"`
	}
)

// ErrUnknownVersion is returned for trie versions not present in history.
var ErrUnknownVersion = errors.New("unknown trie version")

// NewModule returns new empty Module. log can be nil.
func NewModule(cfg config.TrieConfiguration, log *zap.Logger) (*Module, error) {
	if log == nil {
		log = zap.NewNop()
	}
	history, err := lru.New(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("can't create history cache: %w", err)
	}
	m := &Module{
		log:     log,
		trie:    mpt.NewTrie(),
		history: history,
	}
	m.commit()
	return m, nil
}

// commit publishes the current trie state as the next version. It must be
// called with the write lock held.
func (m *Module) commit() {
	s := m.trie.Snapshot()
	v := m.version.Inc()
	m.history.Add(v, s)
	m.currentRoot.Store(s.StateRoot())
	updateTrieMetrics(m.trie.Len(), v)
}

// Upsert sets balance of the address. An empty balance deletes the address.
func (m *Module) Upsert(address string, bal string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.upsert(address, bal)
}

func (m *Module) upsert(address string, bal string) error {
	value, err := balance.Canonical(bal)
	if err != nil {
		return fmt.Errorf("address %s: %w", address, err)
	}
	old := m.trie.Root()
	err = m.trie.Put(address, []byte(value))
	if err != nil {
		return fmt.Errorf("address %s: %w", address, err)
	}
	if m.trie.Root() == old {
		addUpsertMetric(outcomeUnchanged)
		return nil
	}
	m.commit()
	outcome := outcomeUpdated
	if value == "" {
		outcome = outcomeDeleted
	}
	addUpsertMetric(outcome)
	m.log.Debug("balance changed",
		zap.String("address", address),
		zap.String("balance", value),
		zap.String("outcome", outcome),
		zap.Uint64("version", m.version.Load()),
		zap.Stringer("root", m.StateRoot()))
	return nil
}

// UpsertBatch applies entries in order. It stops at the first invalid entry
// leaving it and everything after it unapplied, the number of applied
// entries is returned.
func (m *Module) UpsertBatch(entries []Entry) (int, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	for i, e := range entries {
		if err := m.upsert(e.Address, e.Balance); err != nil {
			m.log.Warn("entry rejected",
				zap.Int("index", i),
				zap.String("address", e.Address),
				zap.Error(err))
			return i, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	m.log.Info("batch applied",
		zap.Int("entries", len(entries)),
		zap.Int("addresses", m.trie.Len()),
		zap.Uint64("version", m.version.Load()),
		zap.Stringer("root", m.StateRoot()))
	return len(entries), nil
}

// Get returns the balance of the address.
func (m *Module) Get(address string) (string, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	v, err := m.trie.Get(address)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// Check compares claimed balance with the stored one. Balances are compared
// by value, so "0x64" matches a stored "100". A claim that isn't a valid
// balance never matches.
func (m *Module) Check(address string, bal string) mpt.VerifyResult {
	value, err := balance.Canonical(bal)
	if err != nil || value == "" {
		value = "-" // Can't be stored.
	}
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.trie.Check(address, []byte(value))
}

// Verify returns true if the address holds exactly the claimed balance.
func (m *Module) Verify(address string, bal string) bool {
	return m.Check(address, bal) == mpt.Present
}

// StateRoot returns the root hash of the latest version without
// taking locks.
func (m *Module) StateRoot() util.Uint256 {
	return m.currentRoot.Load().(util.Uint256)
}

// Version returns the latest trie version. The empty trie has version 1,
// every state change increments it.
func (m *Module) Version() uint64 {
	return m.version.Load()
}

// Len returns the number of stored addresses.
func (m *Module) Len() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.trie.Len()
}

// Snapshot returns the read-only view of the latest version.
func (m *Module) Snapshot() mpt.Snapshot {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.trie.Snapshot()
}

// Validate checks the trie structure.
func (m *Module) Validate() error {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.trie.Validate()
}

func (m *Module) snapshotAt(version uint64) (mpt.Snapshot, error) {
	s, ok := m.history.Get(version)
	if !ok {
		return mpt.Snapshot{}, fmt.Errorf("%w: %d", ErrUnknownVersion, version)
	}
	return s.(mpt.Snapshot), nil
}

// StateRootAt returns root hash of the given version if it's still kept.
func (m *Module) StateRootAt(version uint64) (util.Uint256, error) {
	s, err := m.snapshotAt(version)
	if err != nil {
		return util.Uint256{}, err
	}
	return s.StateRoot(), nil
}

// GetAt returns balance of the address in the given version.
func (m *Module) GetAt(version uint64, address string) (string, error) {
	s, err := m.snapshotAt(version)
	if err != nil {
		return "", err
	}
	v, err := s.Get(address)
	if err != nil {
		return "", err
	}
	return string(v), nil
}
