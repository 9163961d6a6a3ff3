// Package symbolgraph implements the Symbol Graph (C7): a runtime-minimal
// projection of a GraphDocument -- Symbols (no attrs bag) and Relations
// restricted to the five kinds §3 enumerates, with O(1) reverse indices.
// Grounded on internal/core/symbol.go/symbol_store.go's dense-ID,
// no-property-bag philosophy (cited, not copied -- that file's
// CompositeSymbolID/UniversalSymbolNode carry trigram-search-specific
// fields this repo has no use for) and internal/core/universal_graph.go's
// index-on-insert discipline, generalized to the spec's Symbol/Relation
// shapes.
package symbolgraph

import (
	"github.com/standardbeagle/lci/internal/graph"
	"github.com/standardbeagle/lci/internal/types"
)

// SymbolGraph is the primary runtime handle downstream consumers use after
// a build (§3, §6). All four indices are reverse lookups maintained as the
// graph is built (§3 Symbol Graph invariant): for every Relation{source,
// target}, both endpoints are present in Symbols and the corresponding
// index entries contain the edge.
type SymbolGraph struct {
	Symbols   map[types.NodeID]*types.Symbol
	Relations []*types.Relation

	ParentToChildren map[types.NodeID][]types.NodeID
	CallerToCallees  map[types.NodeID][]types.NodeID
	CalleeToCallers  map[types.NodeID][]types.NodeID
	FileToSymbols    map[string][]types.NodeID
}

// relationKindFromEdge maps the richer IREdge kind set onto the five
// Relation kinds the runtime graph preserves (§3); edges outside that set
// (Implements/Raises/Catches) are dropped here, matching I4's "Symbol
// Graph ... never embed IR attribute bags" -- they stay queryable through
// the GraphDocument the Symbol Graph was derived from, not through this
// projection.
func relationKindFromEdge(kind types.EdgeKind) (types.RelationKind, bool) {
	switch kind {
	case types.EdgeCalls:
		return types.RelationCalls, true
	case types.EdgeImports:
		return types.RelationImports, true
	case types.EdgeContains:
		return types.RelationContains, true
	case types.EdgeInherits:
		return types.RelationInherits, true
	case types.EdgeReferences:
		return types.RelationReferences, true
	default:
		return "", false
	}
}

// Build derives a SymbolGraph from g, repoID/snapshotID stamping every
// Symbol per §3's Symbol shape. Only symbols backing an IRNode the
// GraphDocument actually carries are kept; a Relation whose endpoint is
// not (yet) a known symbol is skipped rather than emitted dangling, which
// keeps the "both endpoints present" invariant true by construction
// instead of by a later validation pass.
func Build(g *graph.GraphDocument, repoID, snapshotID string) *SymbolGraph {
	sg := &SymbolGraph{
		Symbols:          make(map[types.NodeID]*types.Symbol, len(g.Nodes)),
		ParentToChildren: make(map[types.NodeID][]types.NodeID),
		CallerToCallees:  make(map[types.NodeID][]types.NodeID),
		CalleeToCallers:  make(map[types.NodeID][]types.NodeID),
		FileToSymbols:    make(map[string][]types.NodeID),
	}

	for _, n := range g.Nodes {
		sym := &types.Symbol{
			ID:          n.ID,
			Kind:        n.Kind,
			FQN:         n.FQN,
			Name:        n.Name,
			RepoID:      repoID,
			SnapshotID:  snapshotID,
			Span:        n.Span,
			ParentID:    n.ParentID,
			SignatureID: n.SignatureID,
			TypeID:      n.DeclaredTypeID,
		}
		sg.Symbols[n.ID] = sym
		sg.FileToSymbols[n.FilePath] = append(sg.FileToSymbols[n.FilePath], n.ID)
	}

	for _, e := range g.Edges {
		kind, ok := relationKindFromEdge(e.Kind)
		if !ok {
			continue
		}
		if _, sOK := sg.Symbols[e.SourceID]; !sOK {
			continue
		}
		if _, tOK := sg.Symbols[e.TargetID]; !tOK {
			continue // external/unresolved target: not a Symbol Graph node (I2 External handling stays at the GraphDocument layer)
		}
		rel := &types.Relation{Kind: kind, SourceID: e.SourceID, TargetID: e.TargetID, Span: e.Span}
		sg.Relations = append(sg.Relations, rel)

		switch kind {
		case types.RelationContains:
			sg.ParentToChildren[e.SourceID] = append(sg.ParentToChildren[e.SourceID], e.TargetID)
		case types.RelationCalls:
			sg.CallerToCallees[e.SourceID] = append(sg.CallerToCallees[e.SourceID], e.TargetID)
			sg.CalleeToCallers[e.TargetID] = append(sg.CalleeToCallers[e.TargetID], e.SourceID)
		}
	}

	return sg
}

// GetSymbol is the O(1) handle lookup (§4.7).
func (sg *SymbolGraph) GetSymbol(id types.NodeID) (*types.Symbol, bool) {
	s, ok := sg.Symbols[id]
	return s, ok
}

// Children returns id's Contains-relation targets, O(degree) (§4.7).
func (sg *SymbolGraph) Children(id types.NodeID) []types.NodeID {
	return sg.ParentToChildren[id]
}

// Callees returns every symbol id calls, O(degree).
func (sg *SymbolGraph) Callees(id types.NodeID) []types.NodeID {
	return sg.CallerToCallees[id]
}

// Callers returns every symbol that calls id, O(degree).
func (sg *SymbolGraph) Callers(id types.NodeID) []types.NodeID {
	return sg.CalleeToCallers[id]
}

// SymbolsInFile returns every symbol id declared in filePath.
func (sg *SymbolGraph) SymbolsInFile(filePath string) []types.NodeID {
	return sg.FileToSymbols[filePath]
}

// Merge folds another file's SymbolGraph into sg, used by the orchestrator
// to accumulate a project-wide Symbol Graph out of per-file C6/C7 runs.
func (sg *SymbolGraph) Merge(other *SymbolGraph) {
	for id, sym := range other.Symbols {
		sg.Symbols[id] = sym
	}
	sg.Relations = append(sg.Relations, other.Relations...)
	for k, v := range other.ParentToChildren {
		sg.ParentToChildren[k] = append(sg.ParentToChildren[k], v...)
	}
	for k, v := range other.CallerToCallees {
		sg.CallerToCallees[k] = append(sg.CallerToCallees[k], v...)
	}
	for k, v := range other.CalleeToCallers {
		sg.CalleeToCallers[k] = append(sg.CalleeToCallers[k], v...)
	}
	for k, v := range other.FileToSymbols {
		sg.FileToSymbols[k] = append(sg.FileToSymbols[k], v...)
	}
}

// New returns an empty SymbolGraph ready for repeated Merge calls.
func New() *SymbolGraph {
	return &SymbolGraph{
		Symbols:          make(map[types.NodeID]*types.Symbol),
		ParentToChildren: make(map[types.NodeID][]types.NodeID),
		CallerToCallees:  make(map[types.NodeID][]types.NodeID),
		CalleeToCallers:  make(map[types.NodeID][]types.NodeID),
		FileToSymbols:    make(map[string][]types.NodeID),
	}
}
