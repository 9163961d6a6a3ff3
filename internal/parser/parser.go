// Package parser wraps go-tree-sitter: lazy per-extension grammar/query
// registration, a shared TreeSitterParser, and a per-path syntax tree cache
// that supports edit-based incremental reparse (spec C1 Parser). The richer
// structural extraction that used to live here (symbols, blocks, imports)
// now happens one layer up in internal/ir, which walks the *tree_sitter.Tree
// this package hands back.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lci/internal/types"
)

// TreeSitterParser owns one tree-sitter *Parser and *Query per registered
// file extension, lazily initialized on first use so a project that only
// contains Python files never pays for loading the Go/Java/C++ grammars.
type TreeSitterParser struct {
	parsers map[string]*tree_sitter.Parser
	queries map[string]*tree_sitter.Query

	parserMutex sync.RWMutex
	lazyInit    map[string]func()
	initialized map[string]bool
	langGroups  map[string][]string

	communityRegistry *CommunityParserRegistry

	treeMutex sync.RWMutex
	trees     map[string]*cachedTree // path -> last-parsed tree + content, for edit-based reparse
}

type cachedTree struct {
	tree    *tree_sitter.Tree
	content []byte
	lang    types.Language
}

func NewTreeSitterParser() *TreeSitterParser {
	p := &TreeSitterParser{
		parsers:           make(map[string]*tree_sitter.Parser),
		queries:           make(map[string]*tree_sitter.Query),
		lazyInit:          make(map[string]func()),
		initialized:       make(map[string]bool),
		langGroups:        make(map[string][]string),
		communityRegistry: NewCommunityParserRegistry(),
		trees:             make(map[string]*cachedTree),
	}

	p.registerLazyInit([]string{".js", ".jsx"}, p.setupJavaScript, "javascript")
	p.registerLazyInit([]string{".ts", ".tsx"}, p.setupTypeScript, "typescript")
	p.registerLazyInit([]string{".go"}, p.setupGo, "go")
	p.registerLazyInit([]string{".py"}, p.setupPython, "python")
	p.registerLazyInit([]string{".rs"}, p.setupRust, "rust")
	p.registerLazyInit([]string{".java"}, p.setupJava, "java")
	p.registerLazyInit([]string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp"}, p.setupCpp, "cpp")
	p.registerLazyInit([]string{".cs"}, p.setupCSharp, "csharp")
	p.registerLazyInit([]string{".zig"}, p.setupZig, "zig")
	p.registerLazyInit([]string{".php", ".phtml"}, p.setupPHP, "php")

	p.setupCommunityParsers()

	return p
}

func (p *TreeSitterParser) registerLazyInit(extensions []string, initFunc func(), langGroup string) {
	for _, ext := range extensions {
		p.lazyInit[ext] = initFunc
	}
	p.langGroups[langGroup] = extensions
}

// ensureParserInitialized lazily runs the grammar+query setup for ext,
// marking every extension in its language group initialized at once (e.g.
// ".ts" and ".tsx" share one init).
func (p *TreeSitterParser) ensureParserInitialized(ext string) bool {
	p.parserMutex.RLock()
	if p.initialized[ext] {
		p.parserMutex.RUnlock()
		return true
	}
	initFunc, hasInitFunc := p.lazyInit[ext]
	p.parserMutex.RUnlock()

	if !hasInitFunc {
		return false
	}

	p.parserMutex.Lock()
	defer p.parserMutex.Unlock()

	if p.initialized[ext] {
		return true
	}

	initFunc()

	for _, extensions := range p.langGroups {
		for _, groupExt := range extensions {
			if groupExt == ext {
				for _, relatedExt := range extensions {
					p.initialized[relatedExt] = true
				}
				return true
			}
		}
	}
	p.initialized[ext] = true
	return true
}

func languageForExtension(ext string) types.Language {
	switch ext {
	case ".go":
		return types.LanguageGo
	case ".py":
		return types.LanguagePython
	case ".js", ".jsx":
		return types.LanguageJavaScript
	case ".ts", ".tsx":
		return types.LanguageTypeScript
	case ".php", ".phtml":
		return types.LanguagePHP
	case ".cs":
		return types.LanguageCSharp
	case ".cpp", ".cc", ".cxx", ".c", ".h", ".hpp":
		return types.LanguageCPP
	case ".java":
		return types.LanguageJava
	case ".zig":
		return types.LanguageZig
	default:
		return types.LanguageUnknown
	}
}

// LanguageForPath exposes extension->Language resolution to callers (C2) that
// need to pick a handler table without reaching into parser internals.
func LanguageForPath(path string) types.Language {
	return languageForExtension(filepath.Ext(path))
}

// Query returns the tree-sitter query registered for path's extension, or
// nil if no grammar is registered for it.
func (p *TreeSitterParser) Query(path string) *tree_sitter.Query {
	ext := filepath.Ext(path)
	if !p.ensureParserInitialized(ext) {
		return nil
	}
	p.parserMutex.RLock()
	defer p.parserMutex.RUnlock()
	return p.queries[ext]
}

// Parse parses content fresh (no incremental reuse) and caches the result
// under path for a subsequent ParseIncremental call.
func (p *TreeSitterParser) Parse(ctx context.Context, path string, content []byte) (*tree_sitter.Tree, types.Language, error) {
	ext := filepath.Ext(path)
	if !p.ensureParserInitialized(ext) {
		return nil, types.LanguageUnknown, fmt.Errorf("parser: no grammar registered for extension %q", ext)
	}

	p.parserMutex.RLock()
	tsParser, ok := p.parsers[ext]
	p.parserMutex.RUnlock()
	if !ok {
		return nil, types.LanguageUnknown, fmt.Errorf("parser: grammar for %q failed to initialize", ext)
	}

	// tree-sitter's C layer mutates the buffer it's handed; keep our own copy
	// so the caller's content slice (often shared via a content store) stays
	// immutable (copy-on-parse).
	buf := make([]byte, len(content))
	copy(buf, content)

	tree := tsParser.Parse(buf, nil)
	if tree == nil {
		return nil, types.LanguageUnknown, fmt.Errorf("parser: tree-sitter returned nil tree for %s", path)
	}
	_ = ctx // reserved: go-tree-sitter's Parse has no context-aware variant; callers cancel between files

	lang := languageForExtension(ext)

	p.treeMutex.Lock()
	p.trees[path] = &cachedTree{tree: tree, content: buf, lang: lang}
	p.treeMutex.Unlock()

	return tree, lang, nil
}

// EditHunk describes one contiguous byte-range replacement, the unit the
// incremental reparse path accepts (derived from a unified diff hunk by the
// caller, per spec §4.1).
type EditHunk struct {
	StartByte  uint32
	OldEndByte uint32
	NewEndByte uint32
	StartPos   tree_sitter.Point
	OldEndPos  tree_sitter.Point
	NewEndPos  tree_sitter.Point
}

// ParseIncremental re-parses path against newContent, reusing the previously
// cached tree as an edit baseline when one exists, so tree-sitter only
// re-derives the subtrees that actually changed (spec §4.1 edit-based
// reparse invariant).
func (p *TreeSitterParser) ParseIncremental(ctx context.Context, path string, newContent []byte, edits []EditHunk) (*tree_sitter.Tree, types.Language, error) {
	ext := filepath.Ext(path)
	if !p.ensureParserInitialized(ext) {
		return nil, types.LanguageUnknown, fmt.Errorf("parser: no grammar registered for extension %q", ext)
	}

	p.parserMutex.RLock()
	tsParser, ok := p.parsers[ext]
	p.parserMutex.RUnlock()
	if !ok {
		return nil, types.LanguageUnknown, fmt.Errorf("parser: grammar for %q failed to initialize", ext)
	}

	p.treeMutex.Lock()
	prev, hasPrev := p.trees[path]
	p.treeMutex.Unlock()

	buf := make([]byte, len(newContent))
	copy(buf, newContent)

	var oldTree *tree_sitter.Tree
	if hasPrev {
		for _, e := range edits {
			prev.tree.Edit(&tree_sitter.InputEdit{
				StartByte:      uint(e.StartByte),
				OldEndByte:     uint(e.OldEndByte),
				NewEndByte:     uint(e.NewEndByte),
				StartPosition:  e.StartPos,
				OldEndPosition: e.OldEndPos,
				NewEndPosition: e.NewEndPos,
			})
		}
		oldTree = prev.tree
	}

	tree := tsParser.Parse(buf, oldTree)
	if tree == nil {
		return nil, types.LanguageUnknown, fmt.Errorf("parser: tree-sitter returned nil tree for %s", path)
	}
	_ = ctx

	lang := languageForExtension(ext)
	p.treeMutex.Lock()
	p.trees[path] = &cachedTree{tree: tree, content: buf, lang: lang}
	p.treeMutex.Unlock()

	return tree, lang, nil
}

// CachedContent returns the content buffer backing the last tree parsed for
// path, so downstream node-text extraction can slice it without rereading
// the file.
func (p *TreeSitterParser) CachedContent(path string) ([]byte, bool) {
	p.treeMutex.RLock()
	defer p.treeMutex.RUnlock()
	ct, ok := p.trees[path]
	if !ok {
		return nil, false
	}
	return ct.content, true
}

// Forget drops the cached tree for path (e.g. on file deletion).
func (p *TreeSitterParser) Forget(path string) {
	p.treeMutex.Lock()
	defer p.treeMutex.Unlock()
	delete(p.trees, path)
}

// GetSupportedLanguages returns every language group this parser knows how
// to initialize, regardless of whether it has been lazily loaded yet.
func (p *TreeSitterParser) GetSupportedLanguages() []string {
	p.parserMutex.RLock()
	defer p.parserMutex.RUnlock()
	languages := make([]string, 0, len(p.langGroups))
	for lang := range p.langGroups {
		languages = append(languages, lang)
	}
	return languages
}

var (
	sharedParserOnce sync.Once
	sharedParser     *TreeSitterParser
)

// Shared returns a process-wide TreeSitterParser. The orchestrator uses one
// shared instance per run rather than a sync.Pool of them, since grammars
// (unlike the old per-call extraction state) hold no per-file mutable data.
func Shared() *TreeSitterParser {
	sharedParserOnce.Do(func() {
		sharedParser = NewTreeSitterParser()
	})
	return sharedParser
}
