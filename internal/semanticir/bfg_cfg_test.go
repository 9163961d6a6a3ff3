package semanticir

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/standardbeagle/lci/internal/types"
)

// funcNodeWithBranches builds the IRNode attrs the walker's
// complexityAccumulator.attrs() would produce, without reaching into the
// internal/ir package's unexported type.
func funcNodeWithBranches(fqn string, start, end uint32, branchPoints []uint32, hasLoop, hasTry bool) *types.IRNode {
	points := make([]string, len(branchPoints))
	for i, p := range branchPoints {
		points[i] = strconv.FormatUint(uint64(p), 10)
	}
	attrs := map[string]string{
		"cyclomatic_complexity": fmt.Sprintf("%d", 1+len(branchPoints)),
		"branch_count":          fmt.Sprintf("%d", len(branchPoints)),
		"has_loop":              fmt.Sprintf("%t", hasLoop),
		"has_try":               fmt.Sprintf("%t", hasTry),
		"branch_points":         strings.Join(points, ","),
	}
	return &types.IRNode{
		Kind:  types.NodeFunction,
		Name:  fqn,
		FQN:   fqn,
		Span:  types.Span{FilePath: "a.go", StartByte: start, EndByte: end},
		Attrs: attrs,
	}
}

func TestBuildBFGAndCFG_PartitionsAtBranchPoints(t *testing.T) {
	n := funcNodeWithBranches("a.F", 10, 100, []uint32{30, 60}, false, false)
	doc := &types.IRDocument{FilePath: "a.go", Nodes: []*types.IRNode{n}}

	b := NewBuilder(nil, nil)
	blocks, edges, summaries := b.buildBFGAndCFG(doc)

	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks for 2 branch points, got %d", len(blocks))
	}
	wantBounds := [][2]uint32{{10, 30}, {30, 60}, {60, 100}}
	for i, blk := range blocks {
		if blk.Span.StartByte != wantBounds[i][0] || blk.Span.EndByte != wantBounds[i][1] {
			t.Fatalf("block %d span = [%d,%d), want [%d,%d)", i, blk.Span.StartByte, blk.Span.EndByte, wantBounds[i][0], wantBounds[i][1])
		}
	}
	// Every block must own a distinct sub-range, not the whole function span.
	seen := map[[2]uint32]bool{}
	for _, blk := range blocks {
		key := [2]uint32{blk.Span.StartByte, blk.Span.EndByte}
		if seen[key] {
			t.Fatalf("duplicate block span %v", key)
		}
		seen[key] = true
	}
	if len(edges) != 2 {
		t.Fatalf("expected 2 Fallthrough edges chaining 3 blocks, got %d", len(edges))
	}
	for _, e := range edges {
		if e.Kind != types.CFGFallthrough {
			t.Fatalf("expected Fallthrough edges with no loop/try, got %s", e.Kind)
		}
	}
	if summaries["a.F"].BranchCount != 2 {
		t.Fatalf("expected branch count 2, got %d", summaries["a.F"].BranchCount)
	}
}

func TestBuildBFGAndCFG_LoopBackAndExceptionEdges(t *testing.T) {
	n := funcNodeWithBranches("a.G", 0, 50, []uint32{20}, true, true)
	doc := &types.IRDocument{FilePath: "a.go", Nodes: []*types.IRNode{n}}

	b := NewBuilder(nil, nil)
	blocks, edges, _ := b.buildBFGAndCFG(doc)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}

	var hasLoopBack, hasException bool
	for _, e := range edges {
		if e.Kind == types.CFGLoopBack {
			hasLoopBack = true
		}
		if e.Kind == types.CFGExceptionEdge {
			hasException = true
		}
	}
	if !hasLoopBack {
		t.Fatal("expected a LoopBack edge when has_loop")
	}
	if !hasException {
		t.Fatal("expected an ExceptionEdge when has_try")
	}
}

func TestBuildBFGAndCFG_NoBranchesYieldsSingleBlock(t *testing.T) {
	n := funcNodeWithBranches("a.H", 5, 25, nil, false, false)
	doc := &types.IRDocument{FilePath: "a.go", Nodes: []*types.IRNode{n}}

	b := NewBuilder(nil, nil)
	blocks, edges, _ := b.buildBFGAndCFG(doc)
	if len(blocks) != 1 {
		t.Fatalf("expected exactly 1 block for a branch-free function, got %d", len(blocks))
	}
	if blocks[0].Span.StartByte != 5 || blocks[0].Span.EndByte != 25 {
		t.Fatalf("single block should span the whole function, got [%d,%d)", blocks[0].Span.StartByte, blocks[0].Span.EndByte)
	}
	if len(edges) != 0 {
		t.Fatalf("expected no edges for a single block, got %d", len(edges))
	}
}
