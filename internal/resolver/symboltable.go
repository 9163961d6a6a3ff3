// Package resolver implements the Cross-File Resolver (C5): a concurrent
// global symbol index, import resolution, and file dependency graph with
// cycle detection (§4.5). Grounded on the teacher's
// internal/symbollinker/linker_engine.go three-phase structure (collect,
// resolve, build-graph) generalized from its per-language
// extractor/resolver pairs to operate uniformly over IRDocuments, and on
// internal/core/symbol_store.go's sharded-map philosophy for the
// lock-free-get/insert contract §5 and §9 require.
package resolver

import (
	"hash/maphash"
	"sync"

	"github.com/standardbeagle/lci/internal/types"
)

// shardCount is a fixed power of two; the teacher's symbol_store.go and
// reference_spatial_index.go both shard on a fixed bucket count rather
// than resizing, so lookups never pay rehash cost mid-build.
const shardCount = 64

type shard struct {
	mu   sync.RWMutex
	data map[string]*types.Symbol
}

// ConcurrentSymbolTable is the lock-free-for-disjoint-keys global symbol
// map §4.5/§5/§9 call for: a sharded hash table where each shard holds its
// own RWMutex, so two goroutines inserting distinct FQNs that happen to
// land in different shards never contend.
type ConcurrentSymbolTable struct {
	shards [shardCount]*shard
	seed   maphash.Seed
}

func NewConcurrentSymbolTable() *ConcurrentSymbolTable {
	t := &ConcurrentSymbolTable{seed: maphash.MakeSeed()}
	for i := range t.shards {
		t.shards[i] = &shard{data: make(map[string]*types.Symbol)}
	}
	return t
}

func (t *ConcurrentSymbolTable) shardFor(fqn string) *shard {
	var h maphash.Hash
	h.SetSeed(t.seed)
	_, _ = h.WriteString(fqn)
	return t.shards[h.Sum64()%shardCount]
}

// Get returns the symbol at fqn, or nil.
func (t *ConcurrentSymbolTable) Get(fqn string) *types.Symbol {
	s := t.shardFor(fqn)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[fqn]
}

// Insert stores sym under fqn, returning the previous occupant (nil if
// none). Overwriting silently is the caller's choice to make (the
// collector below records collisions explicitly per §4.5 Tie-breaks
// instead of hiding them here).
func (t *ConcurrentSymbolTable) Insert(fqn string, sym *types.Symbol) *types.Symbol {
	s := t.shardFor(fqn)
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.data[fqn]
	s.data[fqn] = sym
	return prev
}

// Delete removes fqn if present.
func (t *ConcurrentSymbolTable) Delete(fqn string) {
	s := t.shardFor(fqn)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, fqn)
}

// Keys returns every FQN currently stored, for the unresolved-import
// suggester's nearest-match scan (imports.go); unordered, one-shot use.
func (t *ConcurrentSymbolTable) Keys() []string {
	var out []string
	for _, s := range t.shards {
		s.mu.RLock()
		for k := range s.data {
			out = append(out, k)
		}
		s.mu.RUnlock()
	}
	return out
}

// Snapshot copies the whole table into a plain map -- used once per build
// to hand the GlobalContext its SymbolTable field, after which the
// GlobalContext is immutable and shared (§3 Ownership & lifecycles).
func (t *ConcurrentSymbolTable) Snapshot() map[string]*types.Symbol {
	out := make(map[string]*types.Symbol)
	for _, s := range t.shards {
		s.mu.RLock()
		for k, v := range s.data {
			out[k] = v
		}
		s.mu.RUnlock()
	}
	return out
}
