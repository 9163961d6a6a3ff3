package parser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lci/internal/types"
)

// DiffFallback reports why ParseIncrementalFromDiff fell back to a full
// parse, so callers can log it instead of silently losing the incremental
// fast path (spec §4.1: "fall back to full parse on malformed diff/cache
// miss", which must be signaled, not swallowed).
type DiffFallback string

const (
	// FallbackNone means the edit-based incremental path was used.
	FallbackNone DiffFallback = ""
	// FallbackNoCachedTree means path has no prior cached tree to edit against.
	FallbackNoCachedTree DiffFallback = "no_cached_tree"
	// FallbackMalformedDiff means unified_diff_text failed to parse into hunks.
	FallbackMalformedDiff DiffFallback = "malformed_diff"
	// FallbackHunkOutOfRange means a hunk referenced a line past old_content's end.
	FallbackHunkOutOfRange DiffFallback = "hunk_out_of_range"
)

// diffHunk is one `@@ -old_start,old_len +new_start,new_len @@` region of a
// unified diff, in 1-based line numbers as the format specifies them.
type diffHunk struct {
	oldStart, oldLen int
	newStart, newLen int
}

var hunkHeaderPrefix = "@@ -"

// parseUnifiedDiffHunks extracts the hunk headers from a unified diff body.
// It does not validate the +/-/context line bodies beyond counting them,
// since byte-offset conversion only needs the header ranges plus old_content.
func parseUnifiedDiffHunks(diffText string) ([]diffHunk, error) {
	var hunks []diffHunk
	scanner := bufio.NewScanner(strings.NewReader(diffText))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, hunkHeaderPrefix) {
			continue
		}
		h, err := parseHunkHeader(line)
		if err != nil {
			return nil, err
		}
		hunks = append(hunks, h)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parser: scanning unified diff: %w", err)
	}
	if len(hunks) == 0 {
		return nil, fmt.Errorf("parser: unified diff contains no %q hunk headers", hunkHeaderPrefix)
	}
	return hunks, nil
}

// parseHunkHeader parses "@@ -l,s +l,s @@" (trailing context text ignored).
// Single-line ranges may omit the ",len" part (len defaults to 1), per the
// unified diff format.
func parseHunkHeader(line string) (diffHunk, error) {
	end := strings.Index(line[len(hunkHeaderPrefix):], " @@")
	if end < 0 {
		return diffHunk{}, fmt.Errorf("parser: malformed hunk header %q", line)
	}
	ranges := line[len(hunkHeaderPrefix)-2 : len(hunkHeaderPrefix)+end] // includes "-old +new"
	parts := strings.Fields(ranges)
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "-") || !strings.HasPrefix(parts[1], "+") {
		return diffHunk{}, fmt.Errorf("parser: malformed hunk header %q", line)
	}
	oldStart, oldLen, err := parseRange(parts[0][1:])
	if err != nil {
		return diffHunk{}, fmt.Errorf("parser: malformed old range in %q: %w", line, err)
	}
	newStart, newLen, err := parseRange(parts[1][1:])
	if err != nil {
		return diffHunk{}, fmt.Errorf("parser: malformed new range in %q: %w", line, err)
	}
	return diffHunk{oldStart: oldStart, oldLen: oldLen, newStart: newStart, newLen: newLen}, nil
}

func parseRange(s string) (start, length int, err error) {
	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		start, err = strconv.Atoi(s)
		return start, 1, err
	}
	start, err = strconv.Atoi(s[:comma])
	if err != nil {
		return 0, 0, err
	}
	length, err = strconv.Atoi(s[comma+1:])
	return start, length, err
}

// lineStartTable builds a cumulative table of byte offsets where each
// (1-based) line begins in content, so (line, column) endpoints can be
// converted to byte offsets in O(1) per lookup (spec §4.1, UTF-8-aware: a
// "column" is counted in bytes within the line, matching tree-sitter's own
// Point convention).
type lineStartTable struct {
	starts []uint32 // starts[i] = byte offset of the start of line i+1
}

func newLineStartTable(content []byte) *lineStartTable {
	starts := []uint32{0}
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return &lineStartTable{starts: starts}
}

// byteOffset converts a 1-based line number and 0-based byte column within
// that line to an absolute byte offset. The line just past the last line
// maps to the end of content (len(content) is passed as contentLen for that
// case); any later line, or an offset past contentLen, is reported as out of
// range.
func (t *lineStartTable) byteOffset(line, col, contentLen int) (uint32, bool) {
	if line < 1 {
		return 0, false
	}
	idx := line - 1
	if idx >= len(t.starts) {
		if line == len(t.starts)+1 {
			return uint32(contentLen), true
		}
		return 0, false
	}
	off := t.starts[idx] + uint32(col)
	if off > uint32(contentLen) {
		return 0, false
	}
	return off, true
}

func (t *lineStartTable) point(line, col int) tree_sitter.Point {
	return tree_sitter.Point{Row: uint(line - 1), Column: uint(col)}
}

// hunksToEdits converts parsed unified-diff hunks plus the old content into
// the byte/point-range EditHunk values tree-sitter's Edit API needs. Column
// is always 0 (line-granular diffs, the common case for unified diffs); a
// hunk whose old range runs past old_content's line count is rejected so the
// caller can fall back to a full parse instead of producing a corrupt edit.
func hunksToEdits(oldContent []byte, newContent []byte, hunks []diffHunk) ([]EditHunk, error) {
	oldTable := newLineStartTable(oldContent)
	newTable := newLineStartTable(newContent)

	edits := make([]EditHunk, 0, len(hunks))
	for _, h := range hunks {
		oldEndLine := h.oldStart + h.oldLen
		newEndLine := h.newStart + h.newLen

		startByte, ok := oldTable.byteOffset(h.oldStart, 0, len(oldContent))
		if !ok {
			return nil, fmt.Errorf("parser: hunk old_start line %d out of range", h.oldStart)
		}
		oldEndByte, ok := oldTable.byteOffset(oldEndLine, 0, len(oldContent))
		if !ok {
			return nil, fmt.Errorf("parser: hunk old range [%d,%d) out of range", h.oldStart, oldEndLine)
		}
		newStartByte, ok := newTable.byteOffset(h.newStart, 0, len(newContent))
		if !ok {
			return nil, fmt.Errorf("parser: hunk new_start line %d out of range", h.newStart)
		}
		newEndByte, ok := newTable.byteOffset(newEndLine, 0, len(newContent))
		if !ok {
			return nil, fmt.Errorf("parser: hunk new range [%d,%d) out of range", h.newStart, newEndLine)
		}

		edits = append(edits, EditHunk{
			StartByte:  startByte,
			OldEndByte: oldEndByte,
			NewEndByte: newEndByte,
			StartPos:   oldTable.point(h.oldStart, 0),
			OldEndPos:  oldTable.point(oldEndLine, 0),
			NewEndPos:  newTable.point(newEndLine, 0),
		})
		_ = newStartByte // not needed by tree_sitter.InputEdit, kept for clarity of derivation
	}
	return edits, nil
}

// ParseIncrementalFromDiff implements the §4.1 incremental-edit algorithm:
// parse unified_diff_text into hunks, convert each hunk's line/column
// endpoints to byte offsets via a cumulative line-start table, apply them as
// tree-sitter edits against the cached tree for path, and reparse. It falls
// back to a full Parse (signaled via the returned DiffFallback, never
// silently) when there is no cached tree to edit, or the diff cannot be
// parsed, or a hunk falls outside old_content's bounds.
func (p *TreeSitterParser) ParseIncrementalFromDiff(ctx context.Context, path string, oldContent, newContent []byte, unifiedDiffText string) (*tree_sitter.Tree, types.Language, DiffFallback, error) {
	p.treeMutex.RLock()
	prev, hasPrev := p.trees[path]
	p.treeMutex.RUnlock()

	if !hasPrev {
		tree, lang, err := p.Parse(ctx, path, newContent)
		return tree, lang, FallbackNoCachedTree, err
	}
	if !bytes.Equal(prev.content, oldContent) {
		// The caller's notion of "old content" disagrees with what we last
		// parsed; an edit derived against the wrong baseline would corrupt
		// the tree, so treat it the same as a cache miss.
		tree, lang, err := p.Parse(ctx, path, newContent)
		return tree, lang, FallbackNoCachedTree, err
	}

	hunks, err := parseUnifiedDiffHunks(unifiedDiffText)
	if err != nil {
		tree, lang, perr := p.Parse(ctx, path, newContent)
		return tree, lang, FallbackMalformedDiff, perr
	}

	edits, err := hunksToEdits(oldContent, newContent, hunks)
	if err != nil {
		tree, lang, perr := p.Parse(ctx, path, newContent)
		return tree, lang, FallbackHunkOutOfRange, perr
	}

	tree, lang, err := p.ParseIncremental(ctx, path, newContent, edits)
	return tree, lang, FallbackNone, err
}
