package resolver

import (
	"context"

	lcierrors "github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/types"
)

// Resolver is the long-lived C5 handle: it owns the Collector (and thus
// the concurrent symbol table) across a full build and subsequent
// incremental updates, and the file path <-> FileID registry needed to
// translate ambiguity diagnostics and track per-file removal.
type Resolver struct {
	collector  *Collector
	pathToID   map[string]types.FileID
	idToPath   map[types.FileID]string
	docsByPath map[string]*types.IRDocument
	parallelism int
	repoID, snapshotID string
}

func New(repoID, snapshotID string, parallelism int) *Resolver {
	if parallelism <= 0 {
		parallelism = 1
	}
	return &Resolver{
		collector:   NewCollector(),
		pathToID:    make(map[string]types.FileID),
		idToPath:    make(map[types.FileID]string),
		docsByPath:  make(map[string]*types.IRDocument),
		parallelism: parallelism,
		repoID:      repoID,
		snapshotID:  snapshotID,
	}
}

// BuildFull runs all three phases of §4.5 over the complete document set
// and returns the resulting GlobalContext.
func (r *Resolver) BuildFull(ctx context.Context, docs []*types.IRDocument) (*types.GlobalContext, error) {
	for _, d := range docs {
		r.registerFile(d)
	}

	c, err := CollectAll(ctx, docs, r.repoID, r.snapshotID, r.parallelism)
	if err != nil {
		return nil, err
	}
	r.collector = c

	fileImports := ResolveImports(docs, r.collector.table, r.parallelism)
	return r.assembleGlobalContext(fileImports), nil
}

func (r *Resolver) registerFile(d *types.IRDocument) {
	r.pathToID[d.FilePath] = d.FileID
	r.idToPath[d.FileID] = d.FilePath
	r.docsByPath[d.FilePath] = d
}

func (r *Resolver) assembleGlobalContext(fileImports map[string][]types.ResolvedImport) *types.GlobalContext {
	gc := types.NewGlobalContext()
	gc.SymbolTable = r.collector.table.Snapshot()
	gc.FileImports = fileImports
	for _, id := range r.pathToID {
		gc.FileSymbolFQNs[id] = r.collector.fileSymbolFQNs[id]
	}
	gc.DependencyGraph = BuildDependencyGraph(fileImports)
	gc.StronglyConnectedComponents = StronglyConnectedComponents(gc.DependencyGraph)
	if order := TopologicalOrder(gc.DependencyGraph); order != nil {
		gc.TopologicalOrder = order
	}
	gc.Ambiguities = r.collector.Ambiguities(r.pathToID)
	return gc
}

// IncrementalUpdate implements §4.5's five-step incremental procedure:
// (a) remove prior symbols for changed files, (b) reinsert from new IR,
// (c) recompute imports for those files, (d) recompute the transitive
// affected set and reresolve its imports, (e) rebuild the dependency
// graph. changedDocs is the new IRDocuments for modified/added files;
// deletedPaths are files removed entirely.
func (r *Resolver) IncrementalUpdate(ctx context.Context, changedDocs []*types.IRDocument, deletedPaths []string) (*types.GlobalContext, error) {
	select {
	case <-ctx.Done():
		return nil, lcierrors.NewCancelled("cross_file_incremental_update")
	default:
	}

	for _, path := range deletedPaths {
		if id, ok := r.pathToID[path]; ok {
			r.collector.RemoveFile(id)
			delete(r.pathToID, path)
			delete(r.idToPath, id)
			delete(r.docsByPath, path)
		}
	}

	// (a) remove prior symbols for changed files, keyed by their old FileID
	// if this path was already known.
	for _, d := range changedDocs {
		if oldID, ok := r.pathToID[d.FilePath]; ok {
			r.collector.RemoveFile(oldID)
		}
	}

	// (b) reinsert symbols for the new IR; cycle case (old/new FQN sets
	// overlap) cannot double-insert because RemoveFile above already
	// cleared this file's prior contribution before CollectFile runs.
	for _, d := range changedDocs {
		r.registerFile(d)
		r.collector.CollectFile(d, r.repoID, r.snapshotID)
	}

	// (c) recompute imports for the changed files themselves.
	changedPaths := make(map[string]bool, len(changedDocs))
	for _, d := range changedDocs {
		changedPaths[d.FilePath] = true
	}

	// (d) re-resolve the imports of every known file, not only the files
	// that import (directly or transitively) from a changed file: no
	// reverse-edge index is kept between runs, so every file is treated as
	// affected.
	allDocs := make([]*types.IRDocument, 0, len(r.docsByPath))
	for _, d := range r.docsByPath {
		allDocs = append(allDocs, d)
	}

	fileImports := ResolveImports(allDocs, r.collector.table, r.parallelism)
	return r.assembleGlobalContext(fileImports), nil
}
