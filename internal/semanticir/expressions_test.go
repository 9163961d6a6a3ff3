package semanticir

import (
	"testing"

	"github.com/standardbeagle/lci/internal/types"
)

func TestPickBlockForSpan_ContainmentNotHash(t *testing.T) {
	blocks := []*types.BasicBlock{
		blockAt("a.F", 0, 0, 10),
		blockAt("a.F", 1, 10, 30),
		blockAt("a.F", 2, 30, 60),
	}

	cases := []struct {
		startByte uint32
		wantIdx   int
	}{
		{0, 0},
		{5, 0},
		{10, 1},
		{25, 1},
		{30, 2},
		{59, 2},
	}
	for _, tc := range cases {
		got := pickBlockForSpan(blocks, types.Span{StartByte: tc.startByte})
		if got != blocks[tc.wantIdx].ID {
			t.Fatalf("span starting at %d: got block id %v, want block %d (%v)", tc.startByte, got, tc.wantIdx, blocks[tc.wantIdx].ID)
		}
	}
}

func TestPickBlockForSpan_OutOfRangeFallsBackToPreceding(t *testing.T) {
	blocks := []*types.BasicBlock{
		blockAt("a.F", 0, 0, 10),
		blockAt("a.F", 1, 10, 30),
	}
	got := pickBlockForSpan(blocks, types.Span{StartByte: 100})
	if got != blocks[1].ID {
		t.Fatalf("expected fallback to the last preceding block, got %v want %v", got, blocks[1].ID)
	}
}
