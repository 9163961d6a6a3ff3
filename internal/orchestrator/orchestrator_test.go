package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/lci/internal/config"
	"github.com/standardbeagle/lci/internal/types"
)

// TestMain verifies no goroutine from the errgroup fan-out (IR generation,
// semantic build, chunk building) outlives its phase -- the orchestrator's
// bounded-parallelism contract (§5 Concurrency) is that every spawned
// goroutine exits before IndexRepository returns.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sampleGoSource = `package sample

func Greet(name string) string {
	return "hello " + name
}

func main() {
	Greet("world")
}
`

func testConfig(root string) *config.Config {
	return &config.Config{
		Version: 1,
		Project: config.Project{Root: root},
		Index: config.Index{
			MaxFileSize:  types.DefaultMaxFileSize,
			MaxFileCount: types.DefaultMaxFileCount,
		},
	}
}

// TestIndexRepository_FullBuild runs a full build over a tiny real repo and
// checks every phase's output artifact is present and internally consistent
// (§6 output artifacts, §8 invariants).
func TestIndexRepository_FullBuild(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "sample.go")
	require.NoError(t, os.WriteFile(filePath, []byte(sampleGoSource), 0o644))

	pipelineCfg := config.DefaultPipeline()
	o := New(&pipelineCfg, "repo1", "snap1", nil)
	defer o.Close()

	result, err := o.IndexRepository(context.Background(), testConfig(dir), dir, "repo1", "snap1", nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, result.Summary.Errors, 0, "expected no per-file errors: %v", result.Summary.Errors)
	require.Contains(t, result.Documents, filePath)

	doc := result.Documents[filePath]
	assert.NotEmpty(t, doc.Nodes)

	require.Contains(t, result.Semantic, filePath)
	require.Contains(t, result.Graphs, filePath)

	require.NotNil(t, result.GlobalContext)
	assert.NotContains(t, result.GlobalContext.SymbolTable, "") // sanity: no empty-FQN entries

	// I5: the global symbol table never carries an Import-kind entry.
	for fqn, sym := range result.GlobalContext.SymbolTable {
		assert.NotEqual(t, types.NodeImport, sym.Kind, "symbol table must never contain Import nodes: %s", fqn)
	}

	require.NotNil(t, result.SymbolGraph)
	for _, rel := range result.SymbolGraph.Relations {
		_, sOK := result.SymbolGraph.Symbols[rel.SourceID]
		_, tOK := result.SymbolGraph.Symbols[rel.TargetID]
		assert.True(t, sOK && tOK, "every Relation endpoint must be a known Symbol (§8)")
	}

	assert.NotEmpty(t, result.Chunks)
	for _, c := range result.Chunks {
		assert.Equal(t, filePath, c.FilePath)
	}
}

// TestIndexRepository_IncrementalRefreshIsStableForUnchangedContent exercises
// I6: rebuilding from byte-identical content produces identical chunk
// content hashes and an empty ContentChanged/Renamed/Added set on the second
// pass.
func TestIndexRepository_IncrementalRefreshIsStableForUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "sample.go")
	require.NoError(t, os.WriteFile(filePath, []byte(sampleGoSource), 0o644))

	pipelineCfg := config.DefaultPipeline()
	o := New(&pipelineCfg, "repo1", "snap1", nil)
	defer o.Close()

	ctx := context.Background()
	first, err := o.IndexRepository(ctx, testConfig(dir), dir, "repo1", "snap1", nil)
	require.NoError(t, err)
	require.NotEmpty(t, first.Chunks)

	second, err := o.IndexRepository(ctx, testConfig(dir), dir, "repo1", "snap1", &IncrementalInput{
		ChangedFiles: []string{filePath},
	})
	require.NoError(t, err)

	assert.Empty(t, second.ChunkDelta.Added)
	assert.Empty(t, second.ChunkDelta.ContentChanged)
	assert.Empty(t, second.ChunkDelta.Renamed)
	assert.NotEmpty(t, second.ChunkDelta.Unchanged)
}

// TestIndexRepository_CancellationBeforeStart honors cooperative cancellation
// at the very first phase boundary (§5 Cancellation).
func TestIndexRepository_CancellationBeforeStart(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "sample.go")
	require.NoError(t, os.WriteFile(filePath, []byte(sampleGoSource), 0o644))

	pipelineCfg := config.DefaultPipeline()
	o := New(&pipelineCfg, "repo1", "snap1", nil)
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.IndexRepository(ctx, testConfig(dir), dir, "repo1", "snap1", nil)
	require.Error(t, err)
}
