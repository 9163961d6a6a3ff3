package semanticir

import (
	"context"

	"github.com/standardbeagle/lci/internal/types"
)

// buildTypesAndSignatures is phase 1 of §4.4: for each declared-type span
// and each function/method span, hover via C3 (if available), normalize
// and dedup the result into a TypeEntity, and for callables build a
// SignatureEntity -- including one per overload when the analyzer reports
// more than one, per §4.4 "Overload handling".
func (b *Builder) buildTypesAndSignatures(ctx context.Context, doc *types.IRDocument) (map[types.NodeID]*types.TypeEntity, map[types.NodeID]*types.SignatureEntity) {
	sigs := make(map[types.NodeID]*types.SignatureEntity)

	for _, n := range doc.Nodes {
		switch n.Kind {
		case types.NodeFunction, types.NodeMethod:
			b.buildSignatureFor(ctx, doc, n, sigs)
		case types.NodeVariable, types.NodeParameter:
			b.buildDeclaredTypeFor(ctx, doc, n)
		}
	}

	return b.types.Snapshot(), sigs
}

func (b *Builder) buildDeclaredTypeFor(ctx context.Context, doc *types.IRDocument, n *types.IRNode) {
	if b.analyzer == nil {
		return
	}
	hover := b.analyzer.Hover(ctx, doc.FilePath, n.Span.Start.Line, n.Span.Start.Column)
	if hover == nil || hover.TypeText == "" {
		return
	}
	entity := b.types.GetOrCreate(hover.TypeText)
	if entity != nil {
		n.DeclaredTypeID = entity.ID
	}
}

func (b *Builder) buildSignatureFor(ctx context.Context, doc *types.IRDocument, n *types.IRNode, sigs map[types.NodeID]*types.SignatureEntity) {
	overloads := b.hoverOverloads(ctx, doc, n)
	if len(overloads) == 0 {
		// Degraded (§4.3): still emit an empty-text signature so downstream
		// callers see flavor=User with no enrichment rather than a nil map entry.
		sig := &types.SignatureEntity{ID: types.DeriveNodeID("Signature", n.FQN, n.Span)}
		sigs[sig.ID] = sig
		n.SignatureID = sig.ID
		return
	}

	var ids []types.NodeID
	for _, text := range overloads {
		sig := &types.SignatureEntity{
			ID:                    types.DeriveNodeID("Signature", n.FQN+"#"+text, n.Span),
			ExternalSignatureText: text,
		}
		if docs := b.docstringFor(doc, n); docs != "" {
			sig.ExternalParamDocs = ReconcileParamDocs(ParseParamDocs(docs), parameterNames(doc, n.ID))
		}
		sigs[sig.ID] = sig
		ids = append(ids, sig.ID)
	}

	n.SignatureID = ids[0]
	if len(ids) > 1 {
		if n.Attrs == nil {
			n.Attrs = map[string]string{}
		}
		n.Attrs["overload_signature_ids"] = joinIDs(ids[1:])
	}
}

// hoverOverloads issues the hover query for a function/method's span. The
// adapter contract returns a single HoverResult; when the underlying
// analyzer reports multiple overloads it encodes them newline-separated in
// TypeText (documented adapter convention), which this unpacks.
func (b *Builder) hoverOverloads(ctx context.Context, doc *types.IRDocument, n *types.IRNode) []string {
	if b.analyzer == nil {
		return nil
	}
	hover := b.analyzer.Hover(ctx, doc.FilePath, n.Span.Start.Line, n.Span.Start.Column)
	if hover == nil || hover.TypeText == "" {
		return nil
	}
	return splitNonEmpty(hover.TypeText, '\n')
}

// parameterNames collects the Name of every Parameter IRNode directly
// parented under fnID, for ReconcileParamDocs's stemmed-name matching.
func parameterNames(doc *types.IRDocument, fnID types.NodeID) []string {
	var names []string
	for _, n := range doc.Nodes {
		if n.Kind == types.NodeParameter && n.ParentID == fnID {
			names = append(names, n.Name)
		}
	}
	return names
}

func (b *Builder) docstringFor(doc *types.IRDocument, n *types.IRNode) string {
	if b.analyzer == nil {
		return ""
	}
	hover := b.analyzer.Hover(context.Background(), doc.FilePath, n.Span.Start.Line, n.Span.Start.Column)
	if hover == nil {
		return ""
	}
	return hover.Docs
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func joinIDs(ids []types.NodeID) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += id.String()
	}
	return out
}
