package types

// TypeFlavor classifies a normalized Type entity (§3, §4.4 normalization rules).
type TypeFlavor string

const (
	TypeFlavorPrimitive TypeFlavor = "Primitive"
	TypeFlavorBuiltin   TypeFlavor = "Builtin"
	TypeFlavorUser      TypeFlavor = "User"
	TypeFlavorGeneric   TypeFlavor = "Generic"
	TypeFlavorUnion     TypeFlavor = "Union"
	TypeFlavorCallable  TypeFlavor = "Callable"
)

// TypeEntity is a deduplicated, normalized type occurring anywhere in the
// project. Types are identified by their normalized text (§3).
type TypeEntity struct {
	ID                NodeID
	RawText           string
	Flavor            TypeFlavor
	IsNullable        bool
	IsTypeAlias       bool
	GenericParamIDs   []NodeID
	ExternalTypeText  string // verbatim hover text when enrichment ran; "" when degraded (§4.3)
}

// SignatureEntity describes a callable's parameter/return types, with
// optional docstring-derived parameter docs (§3, §4.4 phase 1).
type SignatureEntity struct {
	ID                    NodeID
	ParameterTypeIDs      []NodeID
	ReturnTypeID          NodeID
	ExternalSignatureText string
	ExternalParamDocs     map[string]string // parameter name -> doc text
}

// ExpressionKind enumerates the 14 Expression kinds (§3, §4.4 phase 3).
type ExpressionKind string

const (
	ExprNameLoad      ExpressionKind = "NameLoad"
	ExprAttribute     ExpressionKind = "Attribute"
	ExprSubscript     ExpressionKind = "Subscript"
	ExprBinOp         ExpressionKind = "BinOp"
	ExprUnaryOp       ExpressionKind = "UnaryOp"
	ExprCompare       ExpressionKind = "Compare"
	ExprBoolOp        ExpressionKind = "BoolOp"
	ExprCall          ExpressionKind = "Call"
	ExprInstantiate   ExpressionKind = "Instantiate"
	ExprLiteral       ExpressionKind = "Literal"
	ExprCollection    ExpressionKind = "Collection"
	ExprAssign        ExpressionKind = "Assign"
	ExprLambda        ExpressionKind = "Lambda"
	ExprComprehension ExpressionKind = "Comprehension"
)

// Expression is a typed unit of the Expression IR (§3, §4.4 phase 3).
type Expression struct {
	ID             NodeID
	Kind           ExpressionKind
	Span           Span
	FunctionFQN    string
	BlockID        NodeID
	ReadsVars      []string
	DefinesVar     string // "" if this expression does not bind a variable
	InferredType   string // verbatim hover text, "" when degraded
	InferredTypeID NodeID
	ParentExprID   NodeID
	ChildExprIDs   []NodeID
	HasSideEffect  bool // no phase in this repository sets it; always false
}

// CFGEdgeKind classifies a transition between two CFG blocks (§3).
type CFGEdgeKind string

const (
	CFGFallthrough   CFGEdgeKind = "Fallthrough"
	CFGTrueBranch    CFGEdgeKind = "TrueBranch"
	CFGFalseBranch   CFGEdgeKind = "FalseBranch"
	CFGLoopBack      CFGEdgeKind = "LoopBack"
	CFGExceptionEdge CFGEdgeKind = "ExceptionEdge"
)

// BasicBlock is a straight-line sequence of statements (BFG partition, §3).
type BasicBlock struct {
	ID           NodeID
	FunctionFQN  string
	Span         Span
	StatementIDs []NodeID // Expression IDs in source order within the block
	Index        int      // position within the function's block order
}

// CFGEdge connects two BasicBlocks with a classified transition.
type CFGEdge struct {
	Kind     CFGEdgeKind
	SourceID NodeID
	TargetID NodeID
}

// ControlFlowSummary is the single-pass iterative walk result for one
// function (§4.2).
type ControlFlowSummary struct {
	CyclomaticComplexity int
	BranchCount           int
	HasLoop               bool
	HasTry                bool
}

// VariableEventOp classifies a DFG variable event.
type VariableEventOp string

const (
	VarEventRead  VariableEventOp = "read"
	VarEventWrite VariableEventOp = "write"
)

// VariableEvent is one read or write of a variable within a block (§3 DFG).
// StartByte is the originating expression's source position, used to order
// events within the same block when BFG block order alone can't.
type VariableEvent struct {
	ID           NodeID
	VariableID   NodeID
	BlockID      NodeID
	Op           VariableEventOp
	SourceExprID NodeID
	StartByte    uint32
}

// DataFlowEdge connects a variable write to a subsequent read reachable in
// BFG order (§4.4 phase 4).
type DataFlowEdge struct {
	VariableID NodeID
	WriteID    NodeID // VariableEvent ID
	ReadID     NodeID // VariableEvent ID
}

// SemanticIRSnapshot is the per-file output of the four-phase Semantic IR
// Builder (§4.4, §6 output artifacts).
type SemanticIRSnapshot struct {
	FilePath   string
	Types      map[NodeID]*TypeEntity
	Signatures map[NodeID]*SignatureEntity
	Blocks     []*BasicBlock
	CFGEdges   []*CFGEdge
	Summaries  map[string]*ControlFlowSummary // function FQN -> summary
	Expressions []*Expression
	Events      []*VariableEvent
	DataFlow    []*DataFlowEdge
}
