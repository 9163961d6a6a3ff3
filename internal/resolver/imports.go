package resolver

import (
	"strings"
	"sync"

	"github.com/standardbeagle/lci/internal/semantic"
	"github.com/standardbeagle/lci/internal/types"
)

// importSuggester ranks unresolved import paths against every known FQN
// with Jaro-Winkler similarity, grounded on the teacher's
// internal/semantic/fuzzy_matcher.go (kept otherwise unused by this repo's
// rewritten resolver/extractor pair until this wiring).
var importSuggester = semantic.NewFuzzyMatcher(true, 0.85, "jaro-winkler")

// ResolveImports runs §4.5 phase 2 in parallel over files: for each Import
// IRNode, attempt exact FQN match, module-level "from M import N" match,
// and leading-dot relative-import resolution. Unresolved imports are
// marked IsExternal. Grounded on the teacher's per-language
// internal/symbollinker/{go,python,js}_resolver.go import-resolution
// strategies, generalized into one language-agnostic three-attempt
// resolution order instead of five separate resolver types.
func ResolveImports(docs []*types.IRDocument, table *ConcurrentSymbolTable, parallelism int) map[string][]types.ResolvedImport {
	if parallelism <= 0 {
		parallelism = 1
	}
	results := make(map[string][]types.ResolvedImport, len(docs))
	knownFQNs := table.Keys()
	var mu sync.Mutex
	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup

	for _, doc := range docs {
		sem <- struct{}{}
		wg.Add(1)
		go func(d *types.IRDocument) {
			defer wg.Done()
			defer func() { <-sem }()
			resolved := resolveFileImports(d, table, knownFQNs)
			mu.Lock()
			results[d.FilePath] = resolved
			mu.Unlock()
		}(doc)
	}
	wg.Wait()
	return results
}

func resolveFileImports(doc *types.IRDocument, table *ConcurrentSymbolTable, knownFQNs []string) []types.ResolvedImport {
	var out []types.ResolvedImport
	for _, imp := range doc.Imports {
		path := imp.Attrs["import_path"]
		alias := imp.Name

		resolved := types.ResolvedImport{
			ImportNodeID: imp.ID,
			ImportPath:   path,
			Alias:        alias,
			IsWildcard:   imp.Attrs["wildcard"] == "true",
		}

		// Exact FQN match also covers the "from M import N" module-level
		// form, since C2 already emits the Import node's FQN as "M.N".
		if sym := table.Get(path); sym != nil {
			resolved.ResolvedFQN = path
			resolved.SourceFile = sym.Span.FilePath
			out = append(out, resolved)
			continue
		}

		// Leading-dot relative import: strip dots, resolve relative to the
		// importing file's package prefix.
		if strings.HasPrefix(path, ".") {
			pkgPrefix := packagePrefix(doc.FilePath)
			candidate := pkgPrefix + strings.TrimLeft(path, ".")
			if sym := table.Get(candidate); sym != nil {
				resolved.ResolvedFQN = candidate
				resolved.SourceFile = sym.Span.FilePath
				out = append(out, resolved)
				continue
			}
		}

		resolved.IsExternal = true
		resolved.SuggestedFQN = suggestFQN(path, knownFQNs)
		out = append(out, resolved)
	}
	return out
}

// suggestFQN picks the highest-scoring known FQN above threshold for an
// unresolved import path, or "" when nothing clears it. Linear scan: the
// symbol table is rebuilt once per (incremental) pass, not per lookup, so
// this trades lookup cost for the teacher's simpler "no secondary index"
// approach (fuzzy_matcher.go never built one either).
func suggestFQN(path string, knownFQNs []string) string {
	best, bestScore := "", 0.0
	for _, fqn := range knownFQNs {
		score := importSuggester.Similarity(path, fqn)
		if score > bestScore {
			best, bestScore = fqn, score
		}
	}
	if bestScore >= importSuggester.GetThreshold() {
		return best
	}
	return ""
}

func packagePrefix(filePath string) string {
	idx := strings.LastIndex(filePath, "/")
	if idx < 0 {
		return ""
	}
	dir := filePath[:idx]
	dir = strings.ReplaceAll(dir, "/", ".")
	return dir + "."
}
