package types

// NodeKind enumerates the IR Node kinds produced by the IR Generator (C2).
type NodeKind string

const (
	NodeFile      NodeKind = "File"
	NodeModule    NodeKind = "Module"
	NodeClass     NodeKind = "Class"
	NodeFunction  NodeKind = "Function"
	NodeMethod    NodeKind = "Method"
	NodeVariable  NodeKind = "Variable"
	NodeParameter NodeKind = "Parameter"
	NodeImport    NodeKind = "Import"
	NodeExpr      NodeKind = "Expression"
	NodeExternal  NodeKind = "External" // I2: edge endpoint outside the project
)

// EdgeKind enumerates IR Edge kinds (§3).
type EdgeKind string

const (
	EdgeContains   EdgeKind = "Contains"
	EdgeCalls      EdgeKind = "Calls"
	EdgeImports    EdgeKind = "Imports"
	EdgeInherits   EdgeKind = "Inherits"
	EdgeImplements EdgeKind = "Implements"
	EdgeReferences EdgeKind = "References"
	EdgeReads      EdgeKind = "Reads"
	EdgeWrites     EdgeKind = "Writes"
	EdgeRaises     EdgeKind = "Raises"
	EdgeCatches    EdgeKind = "Catches"
)

// IRNode is a language-agnostic structural unit: a file, module, class,
// function, method, variable, parameter, import or expression (§3).
type IRNode struct {
	ID              NodeID
	Kind            NodeKind
	Name            string
	FQN             string
	Span            Span
	FilePath        string
	Language        Language
	DeclaredTypeID  NodeID // zero if untyped/unannotated
	SignatureID     NodeID // zero unless Kind is Function/Method
	ParentID        NodeID // zero for File nodes
	Attrs           map[string]string
}

// IREdge connects two IR Nodes, or an IR Node to an External placeholder
// (I2). Span is optional: present for edges anchored at a call site or
// reference expression, absent for structural edges like Contains.
type IREdge struct {
	Kind     EdgeKind
	SourceID NodeID
	TargetID NodeID
	Span     Span
	Attrs    map[string]string
}

// ResolvedImport is one import statement's resolution outcome, produced by
// the Cross-File Resolver (C5 §4.5 phase 2).
type ResolvedImport struct {
	ImportNodeID NodeID
	ImportPath   string
	ResolvedFQN  string
	SourceFile   string // file that defines ResolvedFQN, empty if external
	IsExternal   bool
	IsWildcard   bool
	Alias        string

	// SuggestedFQN is a near-miss candidate for an unresolved import (e.g.
	// a typo'd path), populated by the resolver's fuzzy-match pass; empty
	// when the import resolved cleanly or no candidate cleared threshold.
	SuggestedFQN string
}

// IRDocument is the per-file aggregate the IR Generator hands to every
// downstream phase (§3).
type IRDocument struct {
	FilePath string
	FileID   FileID
	Language Language
	Nodes    []*IRNode
	Edges    []*IREdge
	Imports  []*IRNode // the subset of Nodes with Kind == NodeImport

	// ContentHash is the hash of the file's raw content at parse time. No
	// stage memoizes control-flow summaries on it; they are recomputed on
	// every run.
	ContentHash uint64
}

// NodeByID does a linear scan; callers that need repeated lookups should
// build an index (the Graph Builder's reverse indices exist for exactly
// this reason).
func (d *IRDocument) NodeByID(id NodeID) *IRNode {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
