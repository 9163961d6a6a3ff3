package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goFixtureOld = `package sample

func Greet(name string) string {
	return "hello " + name
}
`

// goFixtureNew changes only the literal on the return line (a single-line
// edit), keeping every other line identical.
const goFixtureNew = `package sample

func Greet(name string) string {
	return "hi there " + name
}
`

const goFixtureDiff = `--- a/sample.go
+++ b/sample.go
@@ -2,3 +2,3 @@

 func Greet(name string) string {
-	return "hello " + name
+	return "hi there " + name
`

// TestParseIncrementalFromDiff_SingleLineEdit covers S5: a single-line change
// is served from the cached tree with the diff's edits applied, rather than
// falling back to a full reparse.
func TestParseIncrementalFromDiff_SingleLineEdit(t *testing.T) {
	p := NewTreeSitterParser()
	ctx := context.Background()

	_, lang, err := p.Parse(ctx, "sample.go", []byte(goFixtureOld))
	require.NoError(t, err)
	assert.Equal(t, "go", string(lang))

	tree, lang2, fallback, err := p.ParseIncrementalFromDiff(ctx, "sample.go", []byte(goFixtureOld), []byte(goFixtureNew), goFixtureDiff)
	require.NoError(t, err)
	assert.Equal(t, FallbackNone, fallback, "single-line edit against a matching cached tree must not fall back to a full parse")
	assert.Equal(t, "go", string(lang2))
	require.NotNil(t, tree)

	root := tree.RootNode()
	assert.Equal(t, "source_file", root.Kind())

	content, ok := p.CachedContent("sample.go")
	require.True(t, ok)
	assert.Equal(t, goFixtureNew, string(content))
}

// TestParseIncrementalFromDiff_NoCachedTree covers the cache-miss fallback:
// no prior Parse call means there is nothing to edit against, so the diff
// path must fall back to a full parse and say so.
func TestParseIncrementalFromDiff_NoCachedTree(t *testing.T) {
	p := NewTreeSitterParser()
	ctx := context.Background()

	tree, lang, fallback, err := p.ParseIncrementalFromDiff(ctx, "fresh.go", []byte(goFixtureOld), []byte(goFixtureNew), goFixtureDiff)
	require.NoError(t, err)
	assert.Equal(t, FallbackNoCachedTree, fallback)
	assert.Equal(t, "go", string(lang))
	require.NotNil(t, tree)
}

// TestParseIncrementalFromDiff_MalformedDiff covers the malformed-diff
// fallback: text with no "@@ -" hunk header must not panic or silently
// produce a wrong tree, it must fall back to a full parse and say why.
func TestParseIncrementalFromDiff_MalformedDiff(t *testing.T) {
	p := NewTreeSitterParser()
	ctx := context.Background()

	_, _, err := p.Parse(ctx, "bad.go", []byte(goFixtureOld))
	require.NoError(t, err)

	tree, _, fallback, err := p.ParseIncrementalFromDiff(ctx, "bad.go", []byte(goFixtureOld), []byte(goFixtureNew), "not a diff at all")
	require.NoError(t, err)
	assert.Equal(t, FallbackMalformedDiff, fallback)
	require.NotNil(t, tree)
}

// TestParse_UnchangedContentIsByteIdentical covers I6: reparsing identical
// content yields a cached buffer byte-identical to the original input.
func TestParse_UnchangedContentIsByteIdentical(t *testing.T) {
	p := NewTreeSitterParser()
	ctx := context.Background()

	_, _, err := p.Parse(ctx, "stable.go", []byte(goFixtureOld))
	require.NoError(t, err)

	_, _, err = p.Parse(ctx, "stable.go", []byte(goFixtureOld))
	require.NoError(t, err)

	content, ok := p.CachedContent("stable.go")
	require.True(t, ok)
	assert.Equal(t, goFixtureOld, string(content))
}

func TestLineStartTable_ByteOffset(t *testing.T) {
	content := []byte("ab\ncde\nfg")
	table := newLineStartTable(content)

	off, ok := table.byteOffset(1, 0, len(content))
	require.True(t, ok)
	assert.Equal(t, uint32(0), off)

	off, ok = table.byteOffset(2, 1, len(content))
	require.True(t, ok)
	assert.Equal(t, uint32(4), off) // "ab\n" (3 bytes) + 1 column into "cde"

	off, ok = table.byteOffset(3, 0, len(content))
	require.True(t, ok)
	assert.Equal(t, uint32(7), off)

	_, ok = table.byteOffset(10, 0, len(content))
	assert.False(t, ok)
}

func TestParseUnifiedDiffHunks(t *testing.T) {
	hunks, err := parseUnifiedDiffHunks(goFixtureDiff)
	require.NoError(t, err)
	require.Len(t, hunks, 1)
	assert.Equal(t, diffHunk{oldStart: 2, oldLen: 3, newStart: 2, newLen: 3}, hunks[0])

	_, err = parseUnifiedDiffHunks("no hunks here")
	assert.Error(t, err)
}
