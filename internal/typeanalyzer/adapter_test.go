package typeanalyzer

import (
	"context"
	"testing"

	"github.com/standardbeagle/lci/internal/cache"
)

// newTestAdapter builds an Adapter with only its query cache initialized --
// no subprocess -- so cache-hit paths can be exercised without exec.Command.
func newTestAdapter() *Adapter {
	cfg := cache.DefaultCacheConfig()
	cfg.AutoCleanup = false
	return &Adapter{queries: cache.NewMetricsCache(cfg)}
}

func TestHover_CacheHitSkipsRPCCall(t *testing.T) {
	a := newTestAdapter()
	want := &HoverResult{TypeText: "string", Docs: "a greeting"}
	a.queries.Put(nil, fileID("a.go"), "hover:"+queryKeyString(3, 5), want)

	// a.stdin is nil here, so a cache miss would panic writing the RPC
	// frame; recover and fail cleanly instead of crashing the test binary.
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Hover fell through to the RPC path on a cache hit (panicked: %v)", r)
		}
	}()

	got := a.Hover(context.Background(), "a.go", 3, 5)
	if got == nil || got.TypeText != want.TypeText {
		t.Fatalf("expected cached hover result %+v, got %+v", want, got)
	}
}

func TestHoverDefinitionReferences_DoNotShareCacheKeys(t *testing.T) {
	a := newTestAdapter()
	hover := &HoverResult{TypeText: "int"}
	def := &Location{FilePath: "b.go", Line: 10, Column: 2}

	a.queries.Put(nil, fileID("b.go"), "hover:"+queryKeyString(1, 1), hover)
	a.queries.Put(nil, fileID("b.go"), "definition:"+queryKeyString(1, 1), def)

	gotHover := a.Hover(context.Background(), "b.go", 1, 1)
	gotDef := a.Definition(context.Background(), "b.go", 1, 1)

	if gotHover == nil || gotHover.TypeText != "int" {
		t.Fatalf("hover cache entry corrupted, got %+v", gotHover)
	}
	if gotDef == nil || gotDef.Line != 10 {
		t.Fatalf("definition cache entry corrupted, got %+v", gotDef)
	}
}

func TestFileID_StableAndPositive(t *testing.T) {
	a := fileID("pkg/file.go")
	b := fileID("pkg/file.go")
	if a != b {
		t.Fatalf("fileID must be stable for the same path: %d != %d", a, b)
	}
	if a < 0 {
		t.Fatalf("fileID must be non-negative, got %d", a)
	}
}
