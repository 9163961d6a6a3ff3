package chunker

import (
	"testing"

	"github.com/standardbeagle/lci/internal/graph"
	"github.com/standardbeagle/lci/internal/types"
)

func fileNode(path string) *types.IRNode {
	return &types.IRNode{
		ID:       types.DeriveNodeID("File", path, types.Span{FilePath: path}),
		Kind:     types.NodeFile,
		Name:     path,
		FilePath: path,
	}
}

func funcNode(path, fqn string, start, end uint32) *types.IRNode {
	span := types.Span{FilePath: path, StartByte: start, EndByte: end}
	return &types.IRNode{
		ID:       types.DeriveNodeID(string(types.NodeFunction), fqn, span),
		Kind:     types.NodeFunction,
		Name:     fqn,
		FQN:      fqn,
		FilePath: path,
		Span:     span,
	}
}

func TestBuildFileChunks_HierarchyAndContent(t *testing.T) {
	path := "a.go"
	content := []byte("package a\n\nfunc Greet() string {\n\treturn \"hi\"\n}\n")

	doc := &types.IRDocument{
		FilePath: path,
		Nodes: []*types.IRNode{
			fileNode(path),
			funcNode(path, "a.Greet", 11, uint32(len(content))),
		},
	}
	g := graph.Build(doc, nil)

	chunks := BuildFileChunks(g, content, "repo1", "snap1", nil)
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}

	var fileChunk, moduleChunk, fnChunk *types.Chunk
	for _, c := range chunks {
		switch c.Kind {
		case types.ChunkFile:
			fileChunk = c
		case types.ChunkModule:
			moduleChunk = c
		case types.ChunkFunction:
			fnChunk = c
		}
	}

	if fileChunk == nil || moduleChunk == nil || fnChunk == nil {
		t.Fatalf("expected File, Module and Function chunks, got %+v", chunks)
	}
	if fileChunk.ContentHash != types.ContentHash(content) {
		t.Fatalf("file chunk should hash the whole (normalized) file content")
	}
	if moduleChunk.ParentChunkID != fileChunk.ChunkID {
		t.Fatalf("module chunk should be parented under the file chunk")
	}
	found := false
	for _, id := range moduleChunk.ChildChunkIDs {
		if id == fnChunk.ChunkID {
			found = true
		}
	}
	if !found {
		t.Fatalf("function chunk should appear in module's ChildChunkIDs")
	}
	if fnChunk.SymbolID.IsZero() {
		t.Fatalf("function chunk should carry the originating node's SymbolID")
	}
}

func TestBuildFileChunks_RespectsEnabledKinds(t *testing.T) {
	path := "a.go"
	content := []byte("package a\n")
	doc := &types.IRDocument{
		FilePath: path,
		Nodes:    []*types.IRNode{fileNode(path)},
	}
	g := graph.Build(doc, nil)

	enabled := map[types.ChunkKind]bool{types.ChunkFile: true}
	chunks := BuildFileChunks(g, content, "repo1", "snap1", enabled)

	for _, c := range chunks {
		if c.Kind != types.ChunkFile {
			t.Fatalf("expected only File chunks with this config, got %s", c.Kind)
		}
	}
}

func TestBuildFileChunks_DeterministicAcrossRuns(t *testing.T) {
	path := "a.go"
	content := []byte("package a\n\nfunc F() {}\n")
	doc := &types.IRDocument{
		FilePath: path,
		Nodes: []*types.IRNode{
			fileNode(path),
			funcNode(path, "a.F", 11, uint32(len(content))),
		},
	}
	g := graph.Build(doc, nil)

	first := BuildFileChunks(g, content, "repo1", "snap1", nil)
	second := BuildFileChunks(g, content, "repo1", "snap1", nil)

	if len(first) != len(second) {
		t.Fatalf("expected same chunk count across runs, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ChunkID != second[i].ChunkID {
			t.Fatalf("chunk IDs must be deterministic (I3): %v != %v", first[i].ChunkID, second[i].ChunkID)
		}
	}
}
