package chunker

import (
	"testing"

	"github.com/standardbeagle/lci/internal/types"
)

func makeChunk(id types.NodeID, filePath string, kind types.ChunkKind, hash uint64) *types.Chunk {
	return &types.Chunk{
		ChunkID:     id,
		FilePath:    filePath,
		Kind:        kind,
		ContentHash: hash,
	}
}

func TestRefresh_Unchanged(t *testing.T) {
	prior := NewManifest([]*types.Chunk{
		makeChunk(1, "a.go", types.ChunkFunction, 100),
	})
	newChunks := []*types.Chunk{
		makeChunk(1, "a.go", types.ChunkFunction, 100),
	}

	delta := Refresh(prior, "a.go", newChunks)
	if len(delta.Unchanged) != 1 || delta.Unchanged[0] != 1 {
		t.Fatalf("expected chunk 1 unchanged, got %+v", delta)
	}
	if len(delta.Added) != 0 || len(delta.ContentChanged) != 0 || len(delta.Deleted) != 0 || len(delta.Renamed) != 0 {
		t.Fatalf("expected only Unchanged, got %+v", delta)
	}
}

func TestRefresh_ContentChanged(t *testing.T) {
	prior := NewManifest([]*types.Chunk{
		makeChunk(1, "a.go", types.ChunkFunction, 100),
	})
	newChunks := []*types.Chunk{
		makeChunk(1, "a.go", types.ChunkFunction, 200),
	}

	delta := Refresh(prior, "a.go", newChunks)
	if len(delta.ContentChanged) != 1 || delta.ContentChanged[0].ChunkID != 1 {
		t.Fatalf("expected chunk 1 content-changed, got %+v", delta)
	}
}

func TestRefresh_Added(t *testing.T) {
	prior := NewManifest(nil)
	newChunks := []*types.Chunk{
		makeChunk(1, "a.go", types.ChunkFunction, 100),
	}

	delta := Refresh(prior, "a.go", newChunks)
	if len(delta.Added) != 1 || delta.Added[0].ChunkID != 1 {
		t.Fatalf("expected chunk 1 added, got %+v", delta)
	}
}

func TestRefresh_Deleted(t *testing.T) {
	prior := NewManifest([]*types.Chunk{
		makeChunk(1, "a.go", types.ChunkFunction, 100),
	})

	delta := Refresh(prior, "a.go", nil)
	if len(delta.Deleted) != 1 || delta.Deleted[0] != 1 {
		t.Fatalf("expected chunk 1 deleted, got %+v", delta)
	}
}

func TestRefresh_Renamed(t *testing.T) {
	// Same content hash, same kind, different chunk ID (the function moved
	// to a new FQN, e.g. renamed).
	prior := NewManifest([]*types.Chunk{
		makeChunk(1, "a.go", types.ChunkFunction, 100),
	})
	newChunks := []*types.Chunk{
		makeChunk(2, "a.go", types.ChunkFunction, 100),
	}

	delta := Refresh(prior, "a.go", newChunks)
	if len(delta.Renamed) != 1 {
		t.Fatalf("expected one rename, got %+v", delta)
	}
	if delta.Renamed[0].OldID != 1 || delta.Renamed[0].New.ChunkID != 2 {
		t.Fatalf("unexpected rename mapping: %+v", delta.Renamed[0])
	}
	if len(delta.Added) != 0 || len(delta.Deleted) != 0 {
		t.Fatalf("rename should not also appear as Added/Deleted, got %+v", delta)
	}
}

func TestRefresh_RenameDoesNotMatchDifferentKind(t *testing.T) {
	prior := NewManifest([]*types.Chunk{
		makeChunk(1, "a.go", types.ChunkFunction, 100),
	})
	newChunks := []*types.Chunk{
		makeChunk(2, "a.go", types.ChunkBlock, 100),
	}

	delta := Refresh(prior, "a.go", newChunks)
	if len(delta.Renamed) != 0 {
		t.Fatalf("expected no rename across differing kinds, got %+v", delta)
	}
	if len(delta.Added) != 1 || len(delta.Deleted) != 1 {
		t.Fatalf("expected Added+Deleted instead, got %+v", delta)
	}
}

func TestRefresh_IgnoresOtherFiles(t *testing.T) {
	prior := NewManifest([]*types.Chunk{
		makeChunk(1, "a.go", types.ChunkFunction, 100),
		makeChunk(2, "b.go", types.ChunkFunction, 200),
	})

	delta := Refresh(prior, "a.go", []*types.Chunk{makeChunk(1, "a.go", types.ChunkFunction, 100)})
	if len(delta.Deleted) != 0 {
		t.Fatalf("expected b.go's chunk left untouched, got deleted=%+v", delta.Deleted)
	}
}

func TestApplyDelta_RoundTrips(t *testing.T) {
	prior := NewManifest([]*types.Chunk{
		makeChunk(1, "a.go", types.ChunkFunction, 100),
		makeChunk(2, "a.go", types.ChunkFunction, 200),
	})
	newChunks := []*types.Chunk{
		makeChunk(1, "a.go", types.ChunkFunction, 100), // unchanged
		makeChunk(3, "a.go", types.ChunkFunction, 999), // added
	}
	delta := Refresh(prior, "a.go", newChunks)
	next := ApplyDelta(prior, delta)

	if _, ok := next.ByID[2]; ok {
		t.Fatal("expected chunk 2 removed from next manifest")
	}
	if _, ok := next.ByID[3]; !ok {
		t.Fatal("expected chunk 3 present in next manifest")
	}
	if _, ok := next.ByID[1]; !ok {
		t.Fatal("expected chunk 1 retained in next manifest")
	}
}

func TestRefreshRepo_DeletedFileRemovesAllItsChunks(t *testing.T) {
	prior := NewManifest([]*types.Chunk{
		makeChunk(1, "a.go", types.ChunkFile, 1),
		makeChunk(2, "a.go", types.ChunkFunction, 2),
		makeChunk(3, "b.go", types.ChunkFile, 3),
	})

	delta := RefreshRepo(prior, nil, []string{"a.go"})
	if len(delta.Deleted) != 2 {
		t.Fatalf("expected 2 chunks deleted for a.go, got %+v", delta.Deleted)
	}
}
