package semanticir

import (
	"testing"

	"github.com/standardbeagle/lci/internal/types"
)

func blockAt(fqn string, idx int, start, end uint32) *types.BasicBlock {
	return &types.BasicBlock{
		ID:          types.NodeID(uint64(idx) + 1),
		FunctionFQN: fqn,
		Span:        types.Span{FilePath: "a.go", StartByte: start, EndByte: end},
		Index:       idx,
	}
}

func exprAt(kind types.ExpressionKind, fqn string, blockID types.NodeID, start, end uint32, reads []string, defines string) *types.Expression {
	return &types.Expression{
		ID:          types.DeriveNodeID("Expr:"+string(kind), fqn, types.Span{FilePath: "a.go", StartByte: start, EndByte: end}),
		Kind:        kind,
		Span:        types.Span{FilePath: "a.go", StartByte: start, EndByte: end},
		FunctionFQN: fqn,
		BlockID:     blockID,
		ReadsVars:   reads,
		DefinesVar:  defines,
	}
}

func TestBuildDataFlow_WriteThenReadSameBlockProducesEdge(t *testing.T) {
	blocks := []*types.BasicBlock{blockAt("a.F", 0, 0, 100)}
	write := exprAt(types.ExprAssign, "a.F", blocks[0].ID, 10, 15, nil, "x")
	read := exprAt(types.ExprNameLoad, "a.F", blocks[0].ID, 20, 25, []string{"x"}, "")

	b := NewBuilder(nil, nil)
	_, edges := b.buildDataFlow([]*types.Expression{write, read}, blocks)

	if len(edges) != 1 {
		t.Fatalf("expected 1 DataFlowEdge for a write followed by a read, got %d", len(edges))
	}
}

func TestBuildDataFlow_ReadBeforeWriteSameBlockProducesNoEdge(t *testing.T) {
	blocks := []*types.BasicBlock{blockAt("a.F", 0, 0, 100)}
	read := exprAt(types.ExprNameLoad, "a.F", blocks[0].ID, 5, 10, []string{"x"}, "")
	write := exprAt(types.ExprAssign, "a.F", blocks[0].ID, 20, 25, nil, "x")

	b := NewBuilder(nil, nil)
	_, edges := b.buildDataFlow([]*types.Expression{read, write}, blocks)

	if len(edges) != 0 {
		t.Fatalf("a read that textually precedes the write in the same block must not get an edge, got %d", len(edges))
	}
}

func TestBuildDataFlow_ReadInSuccessorBlockProducesEdge(t *testing.T) {
	blocks := []*types.BasicBlock{
		blockAt("a.F", 0, 0, 50),
		blockAt("a.F", 1, 50, 100),
	}
	write := exprAt(types.ExprAssign, "a.F", blocks[0].ID, 10, 15, nil, "x")
	read := exprAt(types.ExprNameLoad, "a.F", blocks[1].ID, 60, 65, []string{"x"}, "")

	b := NewBuilder(nil, nil)
	_, edges := b.buildDataFlow([]*types.Expression{write, read}, blocks)

	if len(edges) != 1 {
		t.Fatalf("expected 1 edge from a write to a read in a successor block, got %d", len(edges))
	}
}

func TestBuildDataFlow_ReadInPredecessorBlockProducesNoEdge(t *testing.T) {
	blocks := []*types.BasicBlock{
		blockAt("a.F", 0, 0, 50),
		blockAt("a.F", 1, 50, 100),
	}
	read := exprAt(types.ExprNameLoad, "a.F", blocks[0].ID, 10, 15, []string{"x"}, "")
	write := exprAt(types.ExprAssign, "a.F", blocks[1].ID, 60, 65, nil, "x")

	b := NewBuilder(nil, nil)
	_, edges := b.buildDataFlow([]*types.Expression{read, write}, blocks)

	if len(edges) != 0 {
		t.Fatalf("a read in a block strictly before the write's block must not get an edge, got %d", len(edges))
	}
}
