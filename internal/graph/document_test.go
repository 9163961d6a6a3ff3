package graph

import (
	"testing"

	"github.com/standardbeagle/lci/internal/types"
)

func TestBuild_ParentChildIndexMergesParentIDAndContainsEdges(t *testing.T) {
	file := &types.IRNode{ID: 1, Kind: types.NodeFile, Name: "a.go"}
	fn := &types.IRNode{ID: 2, Kind: types.NodeFunction, Name: "Foo", ParentID: 1}
	inner := &types.IRNode{ID: 3, Kind: types.NodeFunction, Name: "bar"} // reached only via an explicit Contains edge

	doc := &types.IRDocument{
		FilePath: "a.go",
		Nodes:    []*types.IRNode{file, fn, inner},
		Edges: []*types.IREdge{
			{Kind: types.EdgeContains, SourceID: 2, TargetID: 3},
		},
	}

	g := Build(doc, nil)

	children := g.Children(1)
	if len(children) != 1 || children[0] != 2 {
		t.Fatalf("expected node 1's children to be [2] via ParentID, got %v", children)
	}
	children = g.Children(2)
	if len(children) != 1 || children[0] != 3 {
		t.Fatalf("expected node 2's children to be [3] via Contains edge, got %v", children)
	}
}

func TestBuild_CalleeToCallersIndexFromCallsEdges(t *testing.T) {
	caller := &types.IRNode{ID: 1, Kind: types.NodeFunction, Name: "Caller"}
	callee := &types.IRNode{ID: 2, Kind: types.NodeFunction, Name: "Callee"}
	doc := &types.IRDocument{
		FilePath: "a.go",
		Nodes:    []*types.IRNode{caller, callee},
		Edges: []*types.IREdge{
			{Kind: types.EdgeCalls, SourceID: 1, TargetID: 2},
		},
	}

	g := Build(doc, nil)
	callers := g.Callers(2)
	if len(callers) != 1 || callers[0] != 1 {
		t.Fatalf("expected node 2's callers to be [1], got %v", callers)
	}
	if len(g.Callers(1)) != 0 {
		t.Fatalf("expected node 1 (never a Calls target) to have no callers")
	}
}

func TestBuild_ByNameAndByKindIndexEveryNode(t *testing.T) {
	a := &types.IRNode{ID: 1, Kind: types.NodeFunction, Name: "Dup"}
	b := &types.IRNode{ID: 2, Kind: types.NodeClass, Name: "Dup"}
	c := &types.IRNode{ID: 3, Kind: types.NodeFunction, Name: "Other"}
	doc := &types.IRDocument{FilePath: "a.go", Nodes: []*types.IRNode{a, b, c}}

	g := Build(doc, nil)

	byName := g.ByName("Dup")
	if len(byName) != 2 {
		t.Fatalf("expected 2 nodes named Dup, got %d", len(byName))
	}
	byKind := g.ByKind(types.NodeFunction)
	if len(byKind) != 2 {
		t.Fatalf("expected 2 Function-kind nodes, got %d", len(byKind))
	}
}

func TestBuild_NodeByIDLooksUpEveryNode(t *testing.T) {
	a := &types.IRNode{ID: 42, Kind: types.NodeFunction, Name: "Foo"}
	doc := &types.IRDocument{FilePath: "a.go", Nodes: []*types.IRNode{a}}

	g := Build(doc, nil)
	if got := g.NodeByID[42]; got != a {
		t.Fatalf("expected NodeByID[42] to be the Foo node, got %+v", got)
	}
}
