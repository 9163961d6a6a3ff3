// Package orchestrator implements the Pipeline Orchestrator (C9): the sole
// `index_repository` build entrypoint, running C1-C8 as the DAG topology
// §4.9 specifies with the configured degree of parallelism. Grounded on the
// teacher's internal/indexing/pipeline.go family (FileScanner discovery,
// cooperative ctx.Done() cancellation at file boundaries, debug.LogIndexing
// progress) generalized from the teacher's scan-to-trigram-merge topology
// to this repo's multi-phase parse -> IR -> semantic/resolve -> graph ->
// chunk pipeline, and on golang.org/x/sync/errgroup (already a pack
// dependency) for the bounded-parallelism fan-out the teacher's hand-rolled
// worker-pool channels implement without it.
package orchestrator

import (
	"context"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/lci/internal/chunker"
	"github.com/standardbeagle/lci/internal/config"
	"github.com/standardbeagle/lci/internal/debug"
	lcierrors "github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/graph"
	"github.com/standardbeagle/lci/internal/indexing"
	"github.com/standardbeagle/lci/internal/ir"
	"github.com/standardbeagle/lci/internal/parser"
	"github.com/standardbeagle/lci/internal/resolver"
	"github.com/standardbeagle/lci/internal/security"
	"github.com/standardbeagle/lci/internal/semanticir"
	"github.com/standardbeagle/lci/internal/symbolgraph"
	"github.com/standardbeagle/lci/internal/typeanalyzer"
	"github.com/standardbeagle/lci/internal/types"
)

// IncrementalInput carries the changed/deleted file set for an incremental
// run (§6 `incremental={changed_files, deleted_files}`); a full build passes
// a nil *IncrementalInput.
type IncrementalInput struct {
	ChangedFiles []string
	DeletedFiles []string
}

// BuildSummary is the orchestrator's final report (§7 propagation policy):
// every per-file error plus the file each came from, so a caller sees
// that the build continued past per-file failures rather than aborting.
type BuildSummary struct {
	FilesProcessed int
	FailedFiles    []string
	Errors         []error
	Cancelled      bool
}

// Result bundles every output artifact §6 names.
type Result struct {
	Documents     map[string]*types.IRDocument
	Semantic      map[string]*types.SemanticIRSnapshot
	GlobalContext *types.GlobalContext
	Graphs        map[string]*graph.GraphDocument
	SymbolGraph   *symbolgraph.SymbolGraph
	Chunks        []*types.Chunk
	ChunkDelta     types.RefreshDelta
	Summary        BuildSummary
}

// Orchestrator owns the pipeline state for one build (§3 Ownership &
// lifecycles): the shared tree-sitter parser (C1's cache lives inside it),
// the optional external type analyzer, and the resolver's long-lived
// concurrent symbol table across incremental runs.
type Orchestrator struct {
	cfg      *config.Pipeline
	tsParser *parser.TreeSitterParser
	irBuild  *ir.Builder
	analyzer *typeanalyzer.Adapter
	dedup    *semanticir.TypeDeduper
	semBuild *semanticir.Builder
	resolve  *resolver.Resolver
	validate *security.FileValidator

	manifestMu sync.Mutex
	manifest   *chunker.Manifest
}

// New constructs an Orchestrator. analyzer may be nil: C4 then degrades to
// no type enrichment per §4.3/§7's ExternalAnalyzerUnavailable semantics.
func New(cfg *config.Pipeline, repoID, snapshotID string, analyzer *typeanalyzer.Adapter) *Orchestrator {
	tsParser := parser.NewTreeSitterParser()
	dedup := semanticir.NewTypeDeduper()
	threshold := cfg.LargeFileValidationThresholdKB
	if threshold <= 0 {
		threshold = config.DefaultLargeFileValidationThresholdKB
	}
	return &Orchestrator{
		cfg:      cfg,
		tsParser: tsParser,
		irBuild:  ir.NewBuilder(tsParser),
		analyzer: analyzer,
		dedup:    dedup,
		semBuild: semanticir.NewBuilder(analyzer, dedup),
		resolve:  resolver.New(repoID, snapshotID, cfg.ResolvedParallelism()),
		validate: security.NewFileValidator(threshold),
		manifest: chunker.NewManifest(nil),
	}
}

// IndexRepository is the sole build entrypoint (§6). A nil incremental
// performs a full build over every matching file under repoPath; otherwise
// only ChangedFiles/DeletedFiles are touched and the affected set is
// recomputed by the resolver per §4.5.
func (o *Orchestrator) IndexRepository(ctx context.Context, cfg *config.Config, repoPath, repoID, snapshotID string, incremental *IncrementalInput) (*Result, error) {
	paths, err := o.discoverFiles(ctx, cfg, repoPath, incremental)
	if err != nil {
		return nil, err
	}

	// Phase 1: IR Generation per file (parallel). The "lexical side-index"
	// leg of §4.9's Phase 1 is an external collaborator (internal/semantic's
	// fuzzy/trigram layer) this orchestrator does not own; C2 alone gates
	// Phase 2.
	docs, summary := o.runIRGeneration(ctx, paths)
	if summary.Cancelled {
		return &Result{Summary: summary}, lcierrors.NewCancelled("ir_generation")
	}

	docList := make([]*types.IRDocument, 0, len(docs))
	for _, d := range docs {
		docList = append(docList, d)
	}

	// Phase 2: Semantic IR per file ∥ Cross-File Resolver (whole project).
	// The resolver reads only Phase-1 IRDocuments (never Semantic IR),
	// which is exactly what lets it run concurrently with per-file semantic
	// building (§4.9).
	semantic := make(map[string]*types.SemanticIRSnapshot, len(docList))
	var semMu sync.Mutex
	var gctx *types.GlobalContext

	g, semCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.ResolvedParallelism())

	for _, d := range docList {
		d := d
		g.Go(func() error {
			snap, err := o.semBuild.Build(semCtx, d)
			if err != nil {
				summary.appendErr(d.FilePath, err)
				return nil
			}
			semMu.Lock()
			semantic[d.FilePath] = snap
			semMu.Unlock()
			return nil
		})
	}

	var resolverErr error
	var resolveWG sync.WaitGroup
	resolveWG.Add(1)
	go func() {
		defer resolveWG.Done()
		if incremental != nil {
			changed := make([]*types.IRDocument, 0, len(incremental.ChangedFiles))
			for _, p := range incremental.ChangedFiles {
				if d, ok := docs[p]; ok {
					changed = append(changed, d)
				}
			}
			gctx, resolverErr = o.resolve.IncrementalUpdate(ctx, changed, incremental.DeletedFiles)
		} else {
			gctx, resolverErr = o.resolve.BuildFull(ctx, docList)
		}
	}()

	if err := g.Wait(); err != nil {
		select {
		case <-ctx.Done():
			summary.Cancelled = true
			return &Result{Summary: summary}, lcierrors.NewCancelled("semantic_ir")
		default:
		}
	}
	resolveWG.Wait()
	if resolverErr != nil {
		return nil, resolverErr
	}

	// Phase 3: Graph Builder -> Symbol Graph (sequential, per file then merged).
	graphs := make(map[string]*graph.GraphDocument, len(docList))
	projectSG := symbolgraph.New()
	for _, d := range docList {
		select {
		case <-ctx.Done():
			summary.Cancelled = true
			return &Result{Summary: summary}, lcierrors.NewCancelled("graph_build")
		default:
		}
		gdoc := graph.Build(d, semantic[d.FilePath])
		graphs[d.FilePath] = gdoc
		projectSG.Merge(symbolgraph.Build(gdoc, repoID, snapshotID))
	}

	// Phase 4: Chunk Builder per file ∥ downstream indexers (external). The
	// downstream-indexer leg is, like Phase 1's lexical side-index, an
	// external collaborator this orchestrator only hands artifacts to.
	chunksByFile := make(map[string][]*types.Chunk, len(docList))
	var chunkMu sync.Mutex
	cg, cgctx := errgroup.WithContext(ctx)
	cg.SetLimit(o.cfg.ResolvedParallelism())
	for _, d := range docList {
		d := d
		cg.Go(func() error {
			select {
			case <-cgctx.Done():
				return cgctx.Err()
			default:
			}
			content, err := os.ReadFile(d.FilePath)
			if err != nil {
				summary.appendErr(d.FilePath, lcierrors.NewFileError("read", d.FilePath, err))
				return nil
			}
			fileChunks := chunker.BuildFileChunks(graphs[d.FilePath], content, repoID, snapshotID, o.cfg.ChunkKindsEnabled)
			chunkMu.Lock()
			chunksByFile[d.FilePath] = fileChunks
			chunkMu.Unlock()
			return nil
		})
	}
	if err := cg.Wait(); err != nil {
		summary.Cancelled = true
		return &Result{Summary: summary}, lcierrors.NewCancelled("chunk_build")
	}

	o.manifestMu.Lock()
	var deletedFiles []string
	if incremental != nil {
		deletedFiles = incremental.DeletedFiles
	}
	delta := chunker.RefreshRepo(o.manifest, chunksByFile, deletedFiles)
	o.manifest = chunker.ApplyDelta(o.manifest, delta)
	o.manifestMu.Unlock()

	allChunks := make([]*types.Chunk, 0)
	for _, cs := range chunksByFile {
		allChunks = append(allChunks, cs...)
	}

	summary.FilesProcessed = len(docList)
	debug.LogIndexing("orchestrator: indexed %d files, %d errors", len(docList), len(summary.Errors))

	return &Result{
		Documents:     docs,
		Semantic:      semantic,
		GlobalContext: gctx,
		Graphs:        graphs,
		SymbolGraph:   projectSG,
		Chunks:        allChunks,
		ChunkDelta:    delta,
		Summary:       summary,
	}, nil
}

// discoverFiles enumerates source files under repoPath using the existing
// FileScanner (teacher's internal/indexing/pipeline.go), or, for an
// incremental run, takes the caller-supplied changed-file list directly.
func (o *Orchestrator) discoverFiles(ctx context.Context, cfg *config.Config, repoPath string, incremental *IncrementalInput) ([]string, error) {
	if incremental != nil {
		return incremental.ChangedFiles, nil
	}

	scanner := indexing.NewFileScanner(cfg, 1024)
	taskChan := make(chan indexing.FileTask, 1024)
	progress := indexing.NewProgressTracker()

	var paths []string
	var scanErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for task := range taskChan {
			paths = append(paths, task.Path)
		}
	}()

	scanErr = scanner.ScanDirectory(ctx, repoPath, taskChan, progress)
	close(taskChan)
	wg.Wait()

	if scanErr != nil {
		return nil, scanErr
	}
	sort.Strings(paths)
	return paths, nil
}

// runIRGeneration runs Phase 1 (§4.9): parallel IR Generation with a
// cancellation checkpoint at each file boundary. A per-file IRBuildError is
// isolated (§7): that file's IR is dropped, the build continues.
func (o *Orchestrator) runIRGeneration(ctx context.Context, paths []string) (map[string]*types.IRDocument, BuildSummary) {
	docs := make(map[string]*types.IRDocument, len(paths))
	var mu sync.Mutex
	summary := BuildSummary{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.ResolvedParallelism())

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// File-admission check (§4.2): a file whose extension claims
			// one language but whose header carries another's magic bytes,
			// binary data, or no recognizable pattern of that language
			// never reaches the parser as a structural surprise. Cheap for
			// small files (the validator skips its own check below its
			// threshold), so this runs unconditionally rather than only
			// behind a stat() size check.
			if err := o.validate.ValidateLargeFile(p); err != nil {
				mu.Lock()
				summary.appendErr(p, lcierrors.NewFileError("validate", p, err))
				mu.Unlock()
				return nil
			}
			content, err := os.ReadFile(p)
			if err != nil {
				mu.Lock()
				summary.appendErr(p, lcierrors.NewFileError("read", p, err))
				mu.Unlock()
				return nil
			}
			doc, err := o.irBuild.Build(gctx, p, content)
			if err != nil {
				mu.Lock()
				summary.appendErr(p, err)
				mu.Unlock()
				return nil
			}
			doc.FileID = types.FileID(i)
			doc.ContentHash = types.ContentHash(content)
			mu.Lock()
			docs[p] = doc
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		summary.Cancelled = true
	}
	return docs, summary
}

func (s *BuildSummary) appendErr(path string, err error) {
	s.FailedFiles = append(s.FailedFiles, path)
	s.Errors = append(s.Errors, err)
}

// Close releases the analyzer subprocess, if one was started.
func (o *Orchestrator) Close() error {
	if o.analyzer != nil {
		return o.analyzer.Close()
	}
	return nil
}
