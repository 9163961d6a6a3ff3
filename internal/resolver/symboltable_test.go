package resolver

import (
	"sync"
	"testing"

	"github.com/standardbeagle/lci/internal/types"
)

func TestConcurrentSymbolTable_InsertGetDelete(t *testing.T) {
	tbl := NewConcurrentSymbolTable()
	sym := &types.Symbol{FQN: "pkg.Foo", Name: "Foo"}

	if prev := tbl.Insert("pkg.Foo", sym); prev != nil {
		t.Fatalf("expected no previous occupant, got %+v", prev)
	}
	if got := tbl.Get("pkg.Foo"); got != sym {
		t.Fatalf("expected Get to return the inserted symbol, got %+v", got)
	}

	tbl.Delete("pkg.Foo")
	if got := tbl.Get("pkg.Foo"); got != nil {
		t.Fatalf("expected nil after Delete, got %+v", got)
	}
}

func TestConcurrentSymbolTable_InsertReturnsPreviousOccupant(t *testing.T) {
	tbl := NewConcurrentSymbolTable()
	first := &types.Symbol{FQN: "pkg.Foo"}
	second := &types.Symbol{FQN: "pkg.Foo"}

	tbl.Insert("pkg.Foo", first)
	prev := tbl.Insert("pkg.Foo", second)
	if prev != first {
		t.Fatalf("expected Insert to return the prior symbol, got %+v", prev)
	}
	if got := tbl.Get("pkg.Foo"); got != second {
		t.Fatalf("expected the table to now hold the second symbol, got %+v", got)
	}
}

func TestConcurrentSymbolTable_SnapshotAndKeysCoverAllShards(t *testing.T) {
	tbl := NewConcurrentSymbolTable()
	want := map[string]*types.Symbol{}
	for i := 0; i < 200; i++ {
		fqn := "pkg.Sym" + string(rune('A'+i%26)) + string(rune('0'+i%10))
		sym := &types.Symbol{FQN: fqn}
		tbl.Insert(fqn, sym)
		want[fqn] = sym
	}

	snap := tbl.Snapshot()
	if len(snap) != len(want) {
		t.Fatalf("expected snapshot of %d symbols, got %d", len(want), len(snap))
	}
	keys := tbl.Keys()
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
}

func TestConcurrentSymbolTable_ConcurrentDisjointInsertsDontRace(t *testing.T) {
	tbl := NewConcurrentSymbolTable()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fqn := "pkg.Concurrent" + string(rune('A'+i))
			tbl.Insert(fqn, &types.Symbol{FQN: fqn})
		}(i)
	}
	wg.Wait()

	if len(tbl.Snapshot()) != 64 {
		t.Fatalf("expected all 64 concurrent inserts to land, got %d", len(tbl.Snapshot()))
	}
}
