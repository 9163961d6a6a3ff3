// Package semanticir implements the Semantic IR Builder (C4): CFG/BFG, the
// typed Expression IR, Type/Signature entities and the DFG, in the fixed
// four-phase order §4.4 mandates. Grounded on the teacher's
// internal/analysis/metrics_calculator.go (single-pass iterative
// control-flow summary technique, cited not copied) and
// internal/symbollinker's per-language extractor/resolver split (the
// phase-per-concern structure), generalized to the spec's language-agnostic
// CFG/DFG/Expression/Type/Signature shapes instead of the teacher's
// Go/Python/JS/PHP/C#-specific symbol tables.
package semanticir

import (
	"context"

	lcierrors "github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/types"
	"github.com/standardbeagle/lci/internal/typeanalyzer"
)

// Builder runs the four-phase Semantic IR construction for one file. Only
// Builder (via its Type/Signature/Expression phase methods) holds the
// optional type-server adapter; buildBFGAndCFG and buildDataFlow never
// touch b.analyzer, matching §4.3's layering rule structurally even though
// all four phases share one Go receiver for convenience.
type Builder struct {
	analyzer *typeanalyzer.Adapter // nil when degraded (§4.3 Degradation)
	types    *TypeDeduper
}

// NewBuilder constructs a Semantic IR Builder. analyzer may be nil: C4 then
// still runs, but creates no Type entities, leaves signature type text
// empty, and leaves every Expression.inferred_type empty.
func NewBuilder(analyzer *typeanalyzer.Adapter, dedup *TypeDeduper) *Builder {
	if dedup == nil {
		dedup = NewTypeDeduper()
	}
	return &Builder{analyzer: analyzer, types: dedup}
}

// Build runs phases 1-4 in order for one file's IRDocument and returns its
// SemanticIRSnapshot. The only failure mode is a logic invariant violation
// (an Expression referencing a block ID absent from the BFG), surfaced as
// SemanticBuildError per §4.4 Failures -- anything from the type server is
// swallowed upstream in the Adapter itself and never reaches here as an error.
func (b *Builder) Build(ctx context.Context, doc *types.IRDocument) (*types.SemanticIRSnapshot, error) {
	typeEntities, sigs := b.buildTypesAndSignatures(ctx, doc)
	blocks, cfgEdges, summaries := b.buildBFGAndCFG(doc)
	exprs := b.buildExpressions(ctx, doc, blocks)

	if err := validateExpressionBlocks(doc.FilePath, exprs, blocks); err != nil {
		return nil, err
	}

	events, dataflow := b.buildDataFlow(exprs, blocks)

	return &types.SemanticIRSnapshot{
		FilePath:    doc.FilePath,
		Types:       typeEntities,
		Signatures:  sigs,
		Blocks:      blocks,
		CFGEdges:    cfgEdges,
		Summaries:   summaries,
		Expressions: exprs,
		Events:      events,
		DataFlow:    dataflow,
	}, nil
}

func validateExpressionBlocks(filePath string, exprs []*types.Expression, blocks []*types.BasicBlock) error {
	if len(exprs) == 0 {
		return nil
	}
	known := make(map[types.NodeID]bool, len(blocks))
	for _, blk := range blocks {
		known[blk.ID] = true
	}
	for _, e := range exprs {
		if e.BlockID.IsZero() {
			continue // function had zero blocks recorded (e.g. empty body); not an invariant violation
		}
		if !known[e.BlockID] {
			return lcierrors.NewSemanticBuildError(filePath, "dfg", "expression references unknown block id")
		}
	}
	return nil
}
