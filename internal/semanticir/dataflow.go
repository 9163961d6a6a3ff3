package semanticir

import (
	"github.com/standardbeagle/lci/internal/types"
)

// buildDataFlow is phase 4 of §4.4: consumes only the Expression list plus
// BFG blocks. For each Expression it emits a VariableEvent{read} per
// ReadsVars entry and a VariableEvent{write} per DefinesVar, then builds a
// DataFlowEdge from each write to every subsequent read of the same
// variable in the same or a successor block (using BFG order).
func (b *Builder) buildDataFlow(exprs []*types.Expression, blocks []*types.BasicBlock) ([]*types.VariableEvent, []*types.DataFlowEdge) {
	blockIndex := make(map[types.NodeID]int, len(blocks))
	for _, blk := range blocks {
		blockIndex[blk.ID] = blk.Index
	}

	var events []*types.VariableEvent
	writesByVar := make(map[types.NodeID][]*types.VariableEvent)
	readsByVar := make(map[types.NodeID][]*types.VariableEvent)

	for _, e := range exprs {
		for _, v := range e.ReadsVars {
			ev := &types.VariableEvent{
				ID:           types.DeriveNodeID("VarEvent:read", v, e.Span),
				VariableID:   types.DeriveNodeID("Variable", e.FunctionFQN+"."+v, types.Span{}),
				BlockID:      e.BlockID,
				Op:           types.VarEventRead,
				SourceExprID: e.ID,
				StartByte:    e.Span.StartByte,
			}
			events = append(events, ev)
			readsByVar[ev.VariableID] = append(readsByVar[ev.VariableID], ev)
		}
		if e.DefinesVar != "" {
			ev := &types.VariableEvent{
				ID:           types.DeriveNodeID("VarEvent:write", e.DefinesVar, e.Span),
				VariableID:   types.DeriveNodeID("Variable", e.FunctionFQN+"."+e.DefinesVar, types.Span{}),
				BlockID:      e.BlockID,
				Op:           types.VarEventWrite,
				SourceExprID: e.ID,
				StartByte:    e.Span.StartByte,
			}
			events = append(events, ev)
			writesByVar[ev.VariableID] = append(writesByVar[ev.VariableID], ev)
		}
	}

	var edges []*types.DataFlowEdge
	for vid, writes := range writesByVar {
		reads := readsByVar[vid]
		for _, w := range writes {
			wBlock := blockIndex[w.BlockID]
			for _, r := range reads {
				rBlock := blockIndex[r.BlockID]
				if rBlock < wBlock {
					continue // a read strictly before the write in block order cannot be reached
				}
				if rBlock == wBlock && r.StartByte <= w.StartByte {
					continue // same block: only a read textually after the write is "subsequent"
				}
				edges = append(edges, &types.DataFlowEdge{
					VariableID: w.VariableID,
					WriteID:    w.ID,
					ReadID:     r.ID,
				})
			}
		}
	}

	return events, edges
}
