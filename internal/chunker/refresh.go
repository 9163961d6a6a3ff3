package chunker

import (
	"github.com/standardbeagle/lci/internal/types"
)

// Manifest is the prior build's chunk set, keyed by ChunkID for the §4.8
// diff procedure. Callers persist/reload this between incremental runs
// (e.g. alongside the symbol graph snapshot, §6 snapshot_storage).
type Manifest struct {
	ByID map[types.NodeID]*types.Chunk
}

// NewManifest builds a Manifest from a full chunk list, as returned by
// BuildFileChunks across every file in a repo.
func NewManifest(chunks []*types.Chunk) *Manifest {
	m := &Manifest{ByID: make(map[types.NodeID]*types.Chunk, len(chunks))}
	for _, c := range chunks {
		m.ByID[c.ChunkID] = c
	}
	return m
}

// Refresh computes a RefreshDelta for one file's newly rebuilt chunk set
// against prior, per §4.8's diff-by-chunk-ID procedure:
//
//  1. A new chunk whose ID is unseen in prior is either Added, or --  if
//     its ContentHash matches some prior chunk's hash within the same
//     file that no longer appears by ID -- Renamed (the content moved
//     under a new stable key, e.g. a function rename).
//  2. A chunk whose ID is seen in both with an unchanged ContentHash is
//     Unchanged.
//  3. A chunk whose ID is seen in both with a different ContentHash is
//     ContentChanged.
//  4. A prior chunk for this file whose ID no longer appears, and whose
//     hash was not claimed by a Renamed match, is Deleted.
//
// Per the Open Question decision recorded in DESIGN.md, a rename is
// reported once from the old ID's perspective (RenamedChunk{OldID, New})
// and the new chunk does not separately appear in Added.
func Refresh(prior *Manifest, filePath string, newChunks []*types.Chunk) types.RefreshDelta {
	var delta types.RefreshDelta

	priorForFile := make(map[types.NodeID]*types.Chunk)
	for id, c := range prior.ByID {
		if c.FilePath == filePath {
			priorForFile[id] = c
		}
	}

	// Index prior-by-file chunks by content hash for rename matching. Every
	// prior chunk re-seen by ID is claimed up front, so only chunks whose ID
	// no longer appears are rename candidates; rename matches claim lazily
	// as we walk new chunks so a hash is never matched twice.
	priorByHash := make(map[uint64][]types.NodeID)
	for id, c := range priorForFile {
		priorByHash[c.ContentHash] = append(priorByHash[c.ContentHash], id)
	}
	claimed := make(map[types.NodeID]bool)
	for _, nc := range newChunks {
		if _, ok := priorForFile[nc.ChunkID]; ok {
			claimed[nc.ChunkID] = true
		}
	}

	for _, nc := range newChunks {
		if pc, ok := priorForFile[nc.ChunkID]; ok {
			claimed[nc.ChunkID] = true
			if pc.ContentHash == nc.ContentHash {
				delta.Unchanged = append(delta.Unchanged, nc.ChunkID)
			} else {
				delta.ContentChanged = append(delta.ContentChanged, nc)
			}
			continue
		}

		// Unseen ID: look for an unclaimed prior chunk in this file with
		// the same kind and content hash -- a rename candidate.
		renamed := false
		for _, candidateID := range priorByHash[nc.ContentHash] {
			if claimed[candidateID] {
				continue
			}
			if priorForFile[candidateID].Kind != nc.Kind {
				continue
			}
			claimed[candidateID] = true
			delta.Renamed = append(delta.Renamed, types.RenamedChunk{OldID: candidateID, New: nc})
			renamed = true
			break
		}
		if !renamed {
			delta.Added = append(delta.Added, nc)
		}
	}

	for id := range priorForFile {
		if !claimed[id] {
			delta.Deleted = append(delta.Deleted, id)
		}
	}

	return delta
}

// RefreshRepo runs Refresh across every file touched by added/modified
// files and marks every chunk of a deleted file as Deleted, folding the
// per-file deltas into one RefreshDelta for the whole incremental run
// (§4.8, §6 incremental.{added_files,modified_files,deleted_files}).
func RefreshRepo(prior *Manifest, modifiedOrAdded map[string][]*types.Chunk, deletedFiles []string) types.RefreshDelta {
	var agg types.RefreshDelta

	for filePath, newChunks := range modifiedOrAdded {
		d := Refresh(prior, filePath, newChunks)
		agg.Added = append(agg.Added, d.Added...)
		agg.ContentChanged = append(agg.ContentChanged, d.ContentChanged...)
		agg.Renamed = append(agg.Renamed, d.Renamed...)
		agg.Deleted = append(agg.Deleted, d.Deleted...)
		agg.Unchanged = append(agg.Unchanged, d.Unchanged...)
	}

	for _, filePath := range deletedFiles {
		for id, c := range prior.ByID {
			if c.FilePath == filePath {
				agg.Deleted = append(agg.Deleted, id)
			}
		}
	}

	return agg
}

// ApplyDelta produces the next Manifest by folding a RefreshDelta onto
// prior: Added/ContentChanged/Renamed entries replace or insert, Deleted
// IDs are removed, Unchanged IDs are left untouched.
func ApplyDelta(prior *Manifest, delta types.RefreshDelta) *Manifest {
	next := &Manifest{ByID: make(map[types.NodeID]*types.Chunk, len(prior.ByID))}
	for id, c := range prior.ByID {
		next.ByID[id] = c
	}
	for _, id := range delta.Deleted {
		delete(next.ByID, id)
	}
	for _, r := range delta.Renamed {
		delete(next.ByID, r.OldID)
		next.ByID[r.New.ChunkID] = r.New
	}
	for _, c := range delta.Added {
		next.ByID[c.ChunkID] = c
	}
	for _, c := range delta.ContentChanged {
		next.ByID[c.ChunkID] = c
	}
	return next
}
