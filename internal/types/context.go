package types

// CyclePolicy controls how the orchestrator reacts to a dependency cycle
// (§6 configuration, §7 DependencyCycle).
type CyclePolicy string

const (
	CyclePolicyError CyclePolicy = "error"
	CyclePolicyWarn  CyclePolicy = "warn"
	CyclePolicyIgnore CyclePolicy = "ignore"
)

// AmbiguityDiagnostic records a cross-file FQN collision (§4.5 tie-breaks, §7).
type AmbiguityDiagnostic struct {
	FQN        string
	Candidates []FileID
}

// GlobalContext is the Cross-File Resolver's output: the project-wide
// symbol table, resolved imports, dependency graph, and its SCC/topological
// decomposition (§3, §6).
type GlobalContext struct {
	SymbolTable   map[string]*Symbol            // fqn -> Symbol; never contains Import-kind entries (I5)
	FileImports   map[string][]ResolvedImport    // file path -> resolved imports
	FileSymbolFQNs map[FileID][]string           // file -> fqns it contributed, for incremental removal

	// DependencyGraph maps a file to the set of files it depends on
	// (edge f -> g means f imports a symbol defined in g).
	DependencyGraph map[string][]string

	StronglyConnectedComponents [][]string
	TopologicalOrder            []string

	Ambiguities []AmbiguityDiagnostic
}

// NewGlobalContext returns an empty, ready-to-populate GlobalContext.
func NewGlobalContext() *GlobalContext {
	return &GlobalContext{
		SymbolTable:     make(map[string]*Symbol),
		FileImports:     make(map[string][]ResolvedImport),
		FileSymbolFQNs:  make(map[FileID][]string),
		DependencyGraph: make(map[string][]string),
	}
}

// SemanticSnapshot is the persistable, cross-run-reusable bundle produced
// jointly by C3/C4 (§3).
type SemanticSnapshot struct {
	SnapshotID    string
	ProjectID     string
	Files         []string
	TypingInfo    map[FileSpanKey]string // (file, span) -> type_text
	SignatureInfo map[FileSpanKey]string // (file, span) -> signature_text
	TimestampUnix int64
}

// FileSpanKey is a map key identifying a (file, span) pair without pulling
// the full Span (and its non-comparable slices, if any) into map identity.
type FileSpanKey struct {
	FilePath  string
	StartByte uint32
	EndByte   uint32
}

func KeyForSpan(s Span) FileSpanKey {
	return FileSpanKey{FilePath: s.FilePath, StartByte: s.StartByte, EndByte: s.EndByte}
}
