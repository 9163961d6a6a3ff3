package resolver

import (
	"context"
	"sync"

	"github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/types"
)

// Collector runs §4.5 phase 1 (Symbol Collection) in parallel over files;
// phase 3's Tarjan SCC/topological sort lives in depgraph.go. A Resolver
// keeps one Collector for a full build and its later incremental updates,
// which remove and re-collect changed files in place.
type Collector struct {
	table *ConcurrentSymbolTable

	mu             sync.Mutex
	fileSymbolFQNs map[types.FileID][]string
	ambiguousFQNs  map[string]map[string]bool // fqn -> set of file paths that define it
}

func NewCollector() *Collector {
	return &Collector{
		table:          NewConcurrentSymbolTable(),
		fileSymbolFQNs: make(map[types.FileID][]string),
		ambiguousFQNs:  make(map[string]map[string]bool),
	}
}

// CollectFile inserts every non-Import node with a non-empty FQN from doc
// into the shared table (§4.5 phase 1, I5's critical rule: Import nodes
// are skipped -- a bug this repo is explicitly ruling out, per the
// teacher's own extractor/resolver split which never conflates the two).
// Safe to call concurrently for disjoint files from multiple goroutines.
func (c *Collector) CollectFile(doc *types.IRDocument, repoID, snapshotID string) {
	var fqns []string
	for _, n := range doc.Nodes {
		if n.Kind == types.NodeImport || n.FQN == "" {
			continue
		}
		sym := &types.Symbol{
			ID:          n.ID,
			Kind:        n.Kind,
			FQN:         n.FQN,
			Name:        n.Name,
			RepoID:      repoID,
			SnapshotID:  snapshotID,
			Span:        n.Span,
			ParentID:    n.ParentID,
			SignatureID: n.SignatureID,
			TypeID:      n.DeclaredTypeID,
		}
		if prev := c.table.Insert(n.FQN, sym); prev != nil && prev.Span.FilePath != n.FilePath {
			c.recordAmbiguity(n.FQN, prev.Span.FilePath, n.FilePath)
		}
		fqns = append(fqns, n.FQN)
	}
	c.mu.Lock()
	c.fileSymbolFQNs[doc.FileID] = fqns
	c.mu.Unlock()
}

func (c *Collector) recordAmbiguity(fqn, fileA, fileB string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.ambiguousFQNs[fqn]
	if !ok {
		set = make(map[string]bool)
		c.ambiguousFQNs[fqn] = set
	}
	set[fileA] = true
	set[fileB] = true
}

// RemoveFile drops every symbol the given file previously contributed,
// using the recorded fqn list, for incremental re-collection (§4.5
// Incremental update step (a)).
func (c *Collector) RemoveFile(fileID types.FileID) {
	c.mu.Lock()
	fqns := c.fileSymbolFQNs[fileID]
	delete(c.fileSymbolFQNs, fileID)
	c.mu.Unlock()
	for _, fqn := range fqns {
		c.table.Delete(fqn)
	}
}

// Ambiguities returns the diagnostics recorded so far, resolving each
// candidate file path to a FileID via pathToID (files not present in
// pathToID are omitted from that entry's Candidates, never silently
// dropped from the diagnostic itself).
func (c *Collector) Ambiguities(pathToID map[string]types.FileID) []types.AmbiguityDiagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.AmbiguityDiagnostic, 0, len(c.ambiguousFQNs))
	for fqn, set := range c.ambiguousFQNs {
		diag := types.AmbiguityDiagnostic{FQN: fqn}
		for path := range set {
			if id, ok := pathToID[path]; ok {
				diag.Candidates = append(diag.Candidates, id)
			}
		}
		out = append(out, diag)
	}
	return out
}

// CollectAll runs phase 1 across every document, one goroutine per file,
// bounded by parallelism (§4.5 Concurrency: "embarrassingly parallel over
// files"). Cancellation is checked at file boundaries per §5.
func CollectAll(ctx context.Context, docs []*types.IRDocument, repoID, snapshotID string, parallelism int) (*Collector, error) {
	if parallelism <= 0 {
		parallelism = 1
	}
	c := NewCollector()
	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup
	var cancelled bool
	var mu sync.Mutex

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			mu.Lock()
			cancelled = true
			mu.Unlock()
		default:
		}
		mu.Lock()
		if cancelled {
			mu.Unlock()
			break
		}
		mu.Unlock()

		sem <- struct{}{}
		wg.Add(1)
		go func(d *types.IRDocument) {
			defer wg.Done()
			defer func() { <-sem }()
			c.CollectFile(d, repoID, snapshotID)
		}(doc)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if cancelled {
		return c, errors.NewCancelled("cross_file_collection")
	}
	return c, nil
}
