package types

// ChunkKind enumerates the five chunk granularities (§3, §4.8).
type ChunkKind string

const (
	ChunkFile     ChunkKind = "File"
	ChunkModule   ChunkKind = "Module"
	ChunkClass    ChunkKind = "Class"
	ChunkFunction ChunkKind = "Function"
	ChunkBlock    ChunkKind = "Block"
)

// Chunk is a content-addressed, span-anchored slice of source text (§3).
type Chunk struct {
	ChunkID        NodeID
	RepoID         string
	SnapshotID     string
	Kind           ChunkKind
	FilePath       string
	Span           Span
	ParentChunkID  NodeID
	ChildChunkIDs  []NodeID
	SymbolID       NodeID // zero for File/Module chunks with no anchoring symbol
	ContentHash    uint64
	DuplicateOfID  NodeID // no pass in this repository sets it; always zero
}

// RefreshDelta is the output of an incremental chunk refresh (§4.8, §6).
type RefreshDelta struct {
	Added          []*Chunk
	ContentChanged []*Chunk
	Renamed        []RenamedChunk
	Deleted        []NodeID
	Unchanged      []NodeID
}

// RenamedChunk records a chunk whose ID changed but whose ContentHash
// matched a prior entry (§4.8 step 3ii, §9 open question: symmetry left to
// the implementer, documented in DESIGN.md).
type RenamedChunk struct {
	OldID NodeID
	New   *Chunk
}
