// Package chunker implements the Chunk Builder & Refresher (C8):
// deterministic hierarchical chunk decomposition (File -> Module -> Class
// -> Function/Method -> Block) with content-addressed IDs, plus
// incremental refresh against a prior manifest (§4.8). Grounded on the
// teacher's internal/core/file_content_store.go (byte-range slicing keyed
// on a stable identity, content-hash driven) and
// internal/indexing/deleted_file_tracker.go's one-directional tombstone
// idiom (adopted here for the Open Question decision on rename symmetry,
// recorded in DESIGN.md).
package chunker

import (
	"bytes"
	"strconv"

	"github.com/standardbeagle/lci/internal/graph"
	"github.com/standardbeagle/lci/internal/types"
)

// normalizeLineEndings converts CRLF/CR to LF before hashing, per §9's
// "Content-hash-based chunk IDs must hash the byte slice exactly as
// extracted; normalize line endings before hashing."
func normalizeLineEndings(content []byte) []byte {
	if !bytes.ContainsRune(string(content), '\r') {
		return content
	}
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))
}

// enabledKind reports whether kind is in the configured set (§6
// chunk_kinds_enabled); a nil/empty set means "all enabled" (the default).
func enabledKind(kind types.ChunkKind, enabled map[types.ChunkKind]bool) bool {
	if len(enabled) == 0 {
		return true
	}
	return enabled[kind]
}

// BuildFileChunks produces the full chunk hierarchy for one file per
// §4.8's full-build rule: File chunk -> Module chunk -> Class chunks ->
// Function/Method chunks -> (optional) Block chunks. content is the raw
// file bytes (pre-normalization is applied per-chunk at hash time).
func BuildFileChunks(g *graph.GraphDocument, content []byte, repoID, snapshotID string, enabled map[types.ChunkKind]bool) []*types.Chunk {
	var chunks []*types.Chunk

	fileNodes := g.ByKind(types.NodeFile)
	if len(fileNodes) == 0 {
		return nil
	}
	fileNode := fileNodes[0]

	var fileChunk *types.Chunk
	if enabledKind(types.ChunkFile, enabled) {
		fileChunk = newChunk(repoID, snapshotID, types.ChunkFile, fileNode, content, types.NodeID(0))
		chunks = append(chunks, fileChunk)
	}

	moduleParentID := types.NodeID(0)
	if fileChunk != nil {
		moduleParentID = fileChunk.ChunkID
	}
	var moduleChunk *types.Chunk
	if enabledKind(types.ChunkModule, enabled) {
		moduleChunk = newChunk(repoID, snapshotID, types.ChunkModule, fileNode, content, moduleParentID)
		chunks = append(chunks, moduleChunk)
		if fileChunk != nil {
			fileChunk.ChildChunkIDs = append(fileChunk.ChildChunkIDs, moduleChunk.ChunkID)
		}
	}
	containerParentID := moduleParentID
	if moduleChunk != nil {
		containerParentID = moduleChunk.ChunkID
	}

	classChunkByNodeID := make(map[types.NodeID]*types.Chunk)
	if enabledKind(types.ChunkClass, enabled) {
		for _, n := range g.ByKind(types.NodeClass) {
			c := newChunk(repoID, snapshotID, types.ChunkClass, n, content, containerParentID)
			c.SymbolID = n.ID
			chunks = append(chunks, c)
			classChunkByNodeID[n.ID] = c
			if moduleChunk != nil {
				moduleChunk.ChildChunkIDs = append(moduleChunk.ChildChunkIDs, c.ChunkID)
			}
		}
	}

	if enabledKind(types.ChunkFunction, enabled) {
		for _, kind := range [...]types.NodeKind{types.NodeFunction, types.NodeMethod} {
			for _, n := range g.ByKind(kind) {
				parentID := containerParentID
				if classChunk, ok := classChunkByNodeID[n.ParentID]; ok {
					parentID = classChunk.ChunkID
				}
				c := newChunk(repoID, snapshotID, types.ChunkFunction, n, content, parentID)
				c.SymbolID = n.ID
				chunks = append(chunks, c)
				if classChunk, ok := classChunkByNodeID[n.ParentID]; ok {
					classChunk.ChildChunkIDs = append(classChunk.ChildChunkIDs, c.ChunkID)
				} else if moduleChunk != nil {
					moduleChunk.ChildChunkIDs = append(moduleChunk.ChildChunkIDs, c.ChunkID)
				}

				if enabledKind(types.ChunkBlock, enabled) && g.Semantic != nil {
					chunks = append(chunks, buildBlockChunks(g, n, c, content, repoID, snapshotID)...)
				}
			}
		}
	}

	return chunks
}

func buildBlockChunks(g *graph.GraphDocument, fnNode *types.IRNode, parent *types.Chunk, content []byte, repoID, snapshotID string) []*types.Chunk {
	var out []*types.Chunk
	for _, blk := range g.Semantic.Blocks {
		if blk.FunctionFQN != fnNode.FQN {
			continue
		}
		stableKey := fnNode.FQN + ":" + strconv.Itoa(blk.Index)
		span := blk.Span
		id := types.DeriveChunkID(repoID, fnNode.FilePath, string(types.ChunkBlock), stableKey)
		slice := normalizeLineEndings(span.Slice(content))
		c := &types.Chunk{
			ChunkID:       id,
			RepoID:        repoID,
			SnapshotID:    snapshotID,
			Kind:          types.ChunkBlock,
			FilePath:      fnNode.FilePath,
			Span:          span,
			ParentChunkID: parent.ChunkID,
			ContentHash:   types.ContentHash(slice),
		}
		parent.ChildChunkIDs = append(parent.ChildChunkIDs, c.ChunkID)
		out = append(out, c)
	}
	return out
}

// newChunk derives a chunk's deterministic ID from (repoID, filePath, kind,
// stableKey): stableKey is the node's FQN for symbolic chunks (§4.8).
func newChunk(repoID, snapshotID string, kind types.ChunkKind, n *types.IRNode, content []byte, parentID types.NodeID) *types.Chunk {
	stableKey := n.FQN
	if stableKey == "" {
		stableKey = n.FilePath
	}
	span := n.Span
	if kind == types.ChunkFile || kind == types.ChunkModule {
		// File/Module chunks cover the whole file regardless of where the
		// anchoring File IRNode's own (zero-length) span sits.
		span = types.Span{FilePath: n.FilePath, StartByte: 0, EndByte: uint32(len(content))}
	}
	slice := normalizeLineEndings(span.Slice(content))
	return &types.Chunk{
		ChunkID:       types.DeriveChunkID(repoID, n.FilePath, string(kind), stableKey),
		RepoID:        repoID,
		SnapshotID:    snapshotID,
		Kind:          kind,
		FilePath:      n.FilePath,
		Span:          span,
		ParentChunkID: parentID,
		ContentHash:   types.ContentHash(slice),
	}
}
