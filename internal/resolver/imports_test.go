package resolver

import (
	"testing"

	"github.com/standardbeagle/lci/internal/types"
)

func TestResolveImports_ExactFQNMatch(t *testing.T) {
	table := NewConcurrentSymbolTable()
	table.Insert("pkg.Helper", &types.Symbol{FQN: "pkg.Helper", Span: types.Span{FilePath: "pkg/helper.go"}})

	doc := &types.IRDocument{
		FilePath: "a.go",
		Imports: []*types.IRNode{
			{ID: 1, Kind: types.NodeImport, Name: "Helper", Attrs: map[string]string{"import_path": "pkg.Helper"}},
		},
	}

	out := ResolveImports([]*types.IRDocument{doc}, table, 1)
	resolved := out["a.go"]
	if len(resolved) != 1 {
		t.Fatalf("expected one resolved import, got %d", len(resolved))
	}
	if resolved[0].IsExternal {
		t.Fatal("expected an exact FQN match to resolve, not be marked external")
	}
	if resolved[0].SourceFile != "pkg/helper.go" {
		t.Fatalf("expected SourceFile pkg/helper.go, got %q", resolved[0].SourceFile)
	}
}

func TestResolveImports_RelativeImportResolvesAgainstPackagePrefix(t *testing.T) {
	table := NewConcurrentSymbolTable()
	table.Insert("pkg.sub.Thing", &types.Symbol{FQN: "pkg.sub.Thing", Span: types.Span{FilePath: "pkg/sub/thing.go"}})

	doc := &types.IRDocument{
		FilePath: "pkg/sub/user.go",
		Imports: []*types.IRNode{
			{ID: 1, Kind: types.NodeImport, Attrs: map[string]string{"import_path": ".Thing"}},
		},
	}

	out := ResolveImports([]*types.IRDocument{doc}, table, 1)
	resolved := out["pkg/sub/user.go"]
	if len(resolved) != 1 || resolved[0].IsExternal {
		t.Fatalf("expected the relative import to resolve, got %+v", resolved)
	}
	if resolved[0].ResolvedFQN != "pkg.sub.Thing" {
		t.Fatalf("expected ResolvedFQN pkg.sub.Thing, got %q", resolved[0].ResolvedFQN)
	}
}

func TestResolveImports_UnresolvedMarkedExternalWithSuggestion(t *testing.T) {
	table := NewConcurrentSymbolTable()
	table.Insert("pkg.Helper", &types.Symbol{FQN: "pkg.Helper", Span: types.Span{FilePath: "pkg/helper.go"}})

	doc := &types.IRDocument{
		FilePath: "a.go",
		Imports: []*types.IRNode{
			// close to "pkg.Helper" but not exact: should come back external
			// with that near-miss as the suggestion.
			{ID: 1, Kind: types.NodeImport, Attrs: map[string]string{"import_path": "pkg.Helpr"}},
		},
	}

	out := ResolveImports([]*types.IRDocument{doc}, table, 1)
	resolved := out["a.go"]
	if len(resolved) != 1 || !resolved[0].IsExternal {
		t.Fatalf("expected the unresolved import to be marked external, got %+v", resolved)
	}
	if resolved[0].SuggestedFQN != "pkg.Helper" {
		t.Fatalf("expected suggestion pkg.Helper, got %q", resolved[0].SuggestedFQN)
	}
}

func TestResolveImports_FullyUnrelatedPathGetsNoSuggestion(t *testing.T) {
	table := NewConcurrentSymbolTable()
	table.Insert("pkg.Helper", &types.Symbol{FQN: "pkg.Helper", Span: types.Span{FilePath: "pkg/helper.go"}})

	doc := &types.IRDocument{
		FilePath: "a.go",
		Imports: []*types.IRNode{
			{ID: 1, Kind: types.NodeImport, Attrs: map[string]string{"import_path": "zzz.totally.unrelated.Thing"}},
		},
	}

	out := ResolveImports([]*types.IRDocument{doc}, table, 1)
	resolved := out["a.go"]
	if len(resolved) != 1 || !resolved[0].IsExternal {
		t.Fatalf("expected unresolved import, got %+v", resolved)
	}
	if resolved[0].SuggestedFQN != "" {
		t.Fatalf("expected no suggestion for an unrelated path, got %q", resolved[0].SuggestedFQN)
	}
}
