package types

// Symbol is the lightweight runtime projection of an IR Node: no open
// attribute bag, ~200 bytes (§3, I4).
type Symbol struct {
	ID          NodeID
	Kind        NodeKind
	FQN         string
	Name        string
	RepoID      string
	SnapshotID  string
	Span        Span
	ParentID    NodeID
	SignatureID NodeID
	TypeID      NodeID
}

// RelationKind enumerates the Relation kinds the Symbol Graph preserves
// from the richer IR Edge set (§3).
type RelationKind string

const (
	RelationCalls      RelationKind = "Calls"
	RelationImports    RelationKind = "Imports"
	RelationContains   RelationKind = "Contains"
	RelationInherits   RelationKind = "Inherits"
	RelationReferences RelationKind = "References"
)

// Relation is a runtime-graph edge between two Symbols (§3).
type Relation struct {
	Kind     RelationKind
	SourceID NodeID
	TargetID NodeID
	Span     Span
}
