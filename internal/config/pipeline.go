package config

import (
	"runtime"

	"github.com/standardbeagle/lci/internal/types"
)

// SnapshotStorageKind selects where Semantic Snapshots and Symbol Graph
// adapters persist cross-run state (§6 configuration object).
type SnapshotStorageKind string

const (
	SnapshotStorageInMemory   SnapshotStorageKind = "in_memory"
	SnapshotStorageRelational SnapshotStorageKind = "relational_url"
)

// Pipeline holds the typed configuration object the orchestrator reads
// (§6): degree of parallelism, whether the external type analyzer runs,
// incremental-mode toggles, which chunk granularities to emit, where
// cross-run snapshots live, and how dependency cycles are treated.
type Pipeline struct {
	Parallelism               int // goroutines; 0 means "derive from ParallelismFraction x cores"
	ParallelismFraction       float64
	EnableExternalTypeAnalyzer bool
	TypeAnalyzerProjectRoot    string
	TypeAnalyzerCommand        []string // argv to launch the type server subprocess
	Incremental                bool
	ChunkKindsEnabled          map[types.ChunkKind]bool
	SnapshotStorage            SnapshotStorageKind
	SnapshotStorageURL         string // relational DSN when SnapshotStorage == relational_url
	CyclePolicy                types.CyclePolicy

	// LargeFileValidationThresholdKB gates C1's file-admission header check
	// (internal/security.FileValidator): files at or under this size skip
	// validation entirely, matching the validator's own "skip small files"
	// rule. 0 falls back to DefaultLargeFileValidationThresholdKB.
	LargeFileValidationThresholdKB int64
}

// DefaultLargeFileValidationThresholdKB is the size above which a
// discovered file gets a magic-byte/content-pattern check before its full
// content is handed to the IR Generator (§4.2 "a malformed or disguised
// file must not reach the parser as a structural surprise").
const DefaultLargeFileValidationThresholdKB = 512

// ResolvedParallelism returns the configured worker count, falling back to
// ParallelismFraction x GOMAXPROCS (default 0.75, per §5 scheduling model)
// when Parallelism is unset.
func (p Pipeline) ResolvedParallelism() int {
	if p.Parallelism > 0 {
		return p.Parallelism
	}
	fraction := p.ParallelismFraction
	if fraction <= 0 {
		fraction = types.DefaultParallelismFraction
	}
	n := int(float64(runtime.GOMAXPROCS(0)) * fraction)
	if n < 1 {
		n = 1
	}
	return n
}

// DefaultPipeline returns the §6 configuration object's defaults.
func DefaultPipeline() Pipeline {
	return Pipeline{
		ParallelismFraction:        types.DefaultParallelismFraction,
		EnableExternalTypeAnalyzer: false,
		Incremental:                false,
		ChunkKindsEnabled: map[types.ChunkKind]bool{
			types.ChunkFile:     true,
			types.ChunkModule:   true,
			types.ChunkClass:    true,
			types.ChunkFunction: true,
			types.ChunkBlock:    false,
		},
		SnapshotStorage:                SnapshotStorageInMemory,
		CyclePolicy:                    types.CyclePolicyWarn,
		LargeFileValidationThresholdKB: DefaultLargeFileValidationThresholdKB,
	}
}
