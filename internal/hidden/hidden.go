// Package hidden persists the per-chain set of tokens the user chose to
// hide from scan results. It is the only state janitor keeps between runs.
package hidden

import (
	"sort"
	"sync"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/holding"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// Set is a set of normalized token addresses.
type Set map[string]struct{}

// NewSet builds a set from addresses, normalized for chainID.
func NewSet(chainID chain.ID, addresses ...string) Set {
	s := make(Set, len(addresses))
	for _, a := range addresses {
		s.Add(chainID, a)
	}
	return s
}

// Add inserts address.
func (s Set) Add(chainID chain.ID, address string) {
	if key := holding.Key(chainID, address); key != "" {
		s[key] = struct{}{}
	}
}

// Remove deletes address. It reports whether it was present.
func (s Set) Remove(chainID chain.ID, address string) bool {
	key := holding.Key(chainID, address)
	_, ok := s[key]
	delete(s, key)
	return ok
}

// Contains reports whether address is hidden.
func (s Set) Contains(chainID chain.ID, address string) bool {
	_, ok := s[holding.Key(chainID, address)]
	return ok
}

// Slice returns the addresses in sorted order.
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Store loads and saves the hidden set of one chain. Save replaces the
// stored set wholesale.
type Store interface {
	Load() (Set, error)
	Save(Set) error
}

// Filter returns the holdings that are not hidden. The native token is
// never hidden.
func Filter(holdings []holding.TokenHolding, s Set) []holding.TokenHolding {
	if len(s) == 0 {
		return holdings
	}
	out := make([]holding.TokenHolding, 0, len(holdings))
	for _, h := range holdings {
		if h.IsNative() {
			out = append(out, h)
			continue
		}
		if _, ok := s[h.Key()]; !ok {
			out = append(out, h)
		}
	}
	return out
}

// Load reads store, treating a corrupt store as empty. reset reports that
// the stored set was unreadable and has been discarded.
func Load(store Store) (s Set, reset bool, err error) {
	s, err = store.Load()
	if err != nil && janitorerr.Is(err, janitorerr.ErrCorruptStore) {
		if s == nil {
			s = Set{}
		}
		return s, true, nil
	}
	return s, false, err
}

// Hide adds address to the stored set.
func Hide(store Store, chainID chain.ID, address string) error {
	s, _, err := Load(store)
	if err != nil {
		return err
	}
	s.Add(chainID, address)
	return store.Save(s)
}

// Unhide removes address from the stored set. It reports whether the
// address was hidden.
func Unhide(store Store, chainID chain.ID, address string) (bool, error) {
	s, _, err := Load(store)
	if err != nil {
		return false, err
	}
	if !s.Remove(chainID, address) {
		return false, nil
	}
	return true, store.Save(s)
}

// MemoryStore keeps the set in memory.
type MemoryStore struct {
	mu  sync.Mutex
	set Set
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{set: Set{}}
}

// Load returns a copy of the stored set.
func (m *MemoryStore) Load() (Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneSet(m.set), nil
}

// Save replaces the stored set.
func (m *MemoryStore) Save(s Set) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = cloneSet(s)
	return nil
}

func cloneSet(s Set) Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
