// Package typeanalyzer implements the External Type Analyzer Adapter (C3):
// a bounded, read-only query interface over a long-running type-inference
// subprocess speaking a JSON-RPC-like framing over stdin/stdout, the same
// shape an LSP server uses for textDocument/hover, /definition and
// /references. No example repo in the retrieval pack ships a JSON-RPC/LSP
// client library, so this subprocess/framing layer is built on the standard
// library (os/exec, bufio, encoding/json) rather than a third-party
// dependency -- see DESIGN.md for why no pack library could serve it.
package typeanalyzer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/standardbeagle/lci/internal/cache"
)

// Location is a position a definition/references query resolves to.
type Location struct {
	FilePath string
	Line     int
	Column   int
}

// HoverResult is the type text (and optional docs) returned for a position.
type HoverResult struct {
	TypeText string
	Docs     string
}

// fileID derives the int file identity MetricsCache's symbol-cache key
// space expects (§3 C3 query cache) from a file path, via the same xxhash
// used for node/content identity (internal/types/ids.go), truncated to a
// positive int -- the hash only needs to disambiguate cache keys, not
// serve as a durable identifier.
func fileID(path string) int {
	return int(xxhash.Sum64String(path) & 0x7fffffff)
}

// Adapter is the read-only query surface over the external type server.
// Per §4.3's access rule, only the Type/Signature/Expression builders in
// internal/semanticir may hold a reference to this type -- DFG, Graph and
// Chunk builders must never import this package. There is no compiler-
// enforced friend mechanism in Go for this, so the boundary is enforced by
// convention plus the architecture check described in DESIGN.md: grep for
// "typeanalyzer" imports outside internal/semanticir, internal/orchestrator
// and cmd/lci-core.
//
// queries caches hover/definition/references results keyed by
// (file, line, col), grounded on the teacher's internal/cache/metrics_cache.go
// lock-free sync.Map cache (adopted here in place of this adapter's former
// unbounded, TTL-less maps, since an analyzer session that stays open for a
// whole incremental-refresh run must not grow its query cache without bound).
type Adapter struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	mu      sync.Mutex // serializes requests; the analyzer is single-threaded (§5)
	pending map[int64]chan rpcResponse
	nextID  int64
	closed  atomic.Bool

	queries *cache.MetricsCache
}

func queryKeyString(line, col int) string {
	return strconv.Itoa(line) + ":" + strconv.Itoa(col)
}

type rpcRequest struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

// Start launches the type-server subprocess and begins its background
// reader goroutine. Returns a wrapped fmt error (not an
// ExternalAnalyzerUnavailable) if the pipes or the process cannot be
// started; the caller decides how to report it.
func Start(ctx context.Context, command string, args []string, projectRoot string) (*Adapter, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = projectRoot
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("type analyzer stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("type analyzer stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("type analyzer start: %w", err)
	}

	cacheCfg := cache.DefaultCacheConfig()
	cacheCfg.AutoCleanup = false // Close() has no cache-cleanup hook; rely on Get's lazy per-entry TTL check instead

	a := &Adapter{
		cmd:     cmd,
		stdin:   stdin,
		stdout:  bufio.NewReader(stdout),
		pending: make(map[int64]chan rpcResponse),
		queries: cache.NewMetricsCache(cacheCfg),
	}
	go a.readLoop()
	return a, nil
}

// readLoop is the background reader (§3 C3, §5 suspension points): each
// line is one JSON-RPC response frame, dispatched to the pending request's
// reply channel by ID.
func (a *Adapter) readLoop() {
	for {
		line, err := a.stdout.ReadString('\n')
		if err != nil {
			a.failAllPending(err)
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var resp rpcResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			continue // malformed frame: drop, never crash the reader
		}
		a.mu.Lock()
		ch, ok := a.pending[resp.ID]
		if ok {
			delete(a.pending, resp.ID)
		}
		a.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

func (a *Adapter) failAllPending(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, ch := range a.pending {
		ch <- rpcResponse{ID: id, Error: err.Error()}
		delete(a.pending, id)
	}
}

func (a *Adapter) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if a.closed.Load() {
		return nil, fmt.Errorf("type analyzer adapter closed")
	}
	id := atomic.AddInt64(&a.nextID, 1)
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	req := rpcRequest{ID: id, Method: method, Params: raw}
	line, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	ch := make(chan rpcResponse, 1)
	a.mu.Lock()
	a.pending[id] = ch
	a.mu.Unlock()

	if _, err := a.stdin.Write(append(line, '\n')); err != nil {
		a.mu.Lock()
		delete(a.pending, id)
		a.mu.Unlock()
		return nil, err
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return nil, fmt.Errorf("type analyzer: %s", resp.Error)
		}
		return resp.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type hoverParams struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

// Hover returns the type text and docs at (file, line, col), or nil if the
// position carries no type information. Any RPC failure degrades to nil --
// C3 failures are non-fatal and per-query (§4.4 Failures).
func (a *Adapter) Hover(ctx context.Context, file string, line, col int) *HoverResult {
	id, symbol := fileID(file), "hover:"+queryKeyString(line, col)
	if v := a.queries.Get(nil, id, symbol); v != nil {
		return v.(*HoverResult)
	}

	raw, err := a.call(ctx, "hover", hoverParams{file, line, col})
	if err != nil {
		return nil
	}
	var result HoverResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}
	a.queries.Put(nil, id, symbol, &result)
	return &result
}

// Definition returns the defining location for (file, line, col), or nil.
func (a *Adapter) Definition(ctx context.Context, file string, line, col int) *Location {
	id, symbol := fileID(file), "definition:"+queryKeyString(line, col)
	if v := a.queries.Get(nil, id, symbol); v != nil {
		return v.(*Location)
	}

	raw, err := a.call(ctx, "definition", hoverParams{file, line, col})
	if err != nil {
		return nil
	}
	var loc Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil
	}
	a.queries.Put(nil, id, symbol, &loc)
	return &loc
}

// References returns all reference locations for (file, line, col).
func (a *Adapter) References(ctx context.Context, file string, line, col int) []Location {
	id, symbol := fileID(file), "references:"+queryKeyString(line, col)
	if v := a.queries.Get(nil, id, symbol); v != nil {
		return v.([]Location)
	}

	raw, err := a.call(ctx, "references", hoverParams{file, line, col})
	if err != nil {
		return nil
	}
	var locs []Location
	if err := json.Unmarshal(raw, &locs); err != nil {
		return nil
	}
	a.queries.Put(nil, id, symbol, locs)
	return locs
}

// Close terminates the subprocess. Safe to call more than once.
func (a *Adapter) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	_ = a.stdin.Close()
	return a.cmd.Wait()
}

// CacheKeyString renders a (file,line,col) key for diagnostics/logging.
func CacheKeyString(file string, line, col int) string {
	return file + ":" + strconv.Itoa(line) + ":" + strconv.Itoa(col)
}
