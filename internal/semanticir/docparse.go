package semanticir

import (
	"strings"

	"github.com/standardbeagle/lci/internal/semantic"
)

// paramStemmer normalizes both docstring parameter names and actual
// parameter names before comparing them, so "items" in a docstring matches
// an actual "item" parameter. Grounded on the teacher's
// internal/semantic/stemmer.go (kept otherwise unused by this repo's
// rewritten C4 signature builder until this wiring).
var paramStemmer = semantic.NewStemmer(true, "porter2", 3, nil)

// ParseParamDocs extracts parameter-name -> doc-text pairs from a docstring
// in either Google style (`Args:\n    name: doc`) or Sphinx style
// (`:param name: doc`), per §4.4 phase 1's "Signature enrichment
// additionally parses docstring parameter docs in Google and Sphinx styles".
func ParseParamDocs(docstring string) map[string]string {
	if strings.Contains(docstring, ":param ") {
		return parseSphinxParams(docstring)
	}
	if strings.Contains(docstring, "Args:") || strings.Contains(docstring, "Parameters:") {
		return parseGoogleParams(docstring)
	}
	return nil
}

// ReconcileParamDocs remaps docParams (keyed by the name written in the
// docstring) onto actualParamNames when the exact name isn't one of them --
// matching by stemmed form, so "items"/"item" or "nodes"/"node" still line
// up. Unmatched doc entries are kept under the name the docstring used;
// entries already keyed by an actual name pass through.
func ReconcileParamDocs(docParams map[string]string, actualParamNames []string) map[string]string {
	if len(docParams) == 0 || len(actualParamNames) == 0 {
		return docParams
	}

	actual := make(map[string]bool, len(actualParamNames))
	stemmed := make(map[string]string, len(actualParamNames))
	for _, name := range actualParamNames {
		actual[name] = true
		stemmed[paramStemmer.Stem(name)] = name
	}

	out := make(map[string]string, len(docParams))
	for docName, desc := range docParams {
		if actual[docName] {
			out[docName] = desc
			continue
		}
		if match, ok := stemmed[paramStemmer.Stem(docName)]; ok {
			out[match] = desc
			continue
		}
		out[docName] = desc
	}
	return out
}

func parseSphinxParams(doc string) map[string]string {
	out := map[string]string{}
	lines := strings.Split(doc, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, ":param ") {
			continue
		}
		rest := strings.TrimPrefix(line, ":param ")
		colon := strings.Index(rest, ":")
		if colon < 0 {
			continue
		}
		name := strings.TrimSpace(rest[:colon])
		name = strings.TrimSuffix(name, "*") // *args / **kwargs markers
		desc := strings.TrimSpace(rest[colon+1:])
		if name != "" {
			out[name] = desc
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseGoogleParams(doc string) map[string]string {
	lines := strings.Split(doc, "\n")
	out := map[string]string{}
	inArgs := false
	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		switch {
		case trimmed == "Args:" || trimmed == "Parameters:":
			inArgs = true
			continue
		case inArgs && (trimmed == "Returns:" || trimmed == "Raises:" || trimmed == "Yields:" || trimmed == ""):
			if trimmed != "" {
				inArgs = false
			}
			continue
		}
		if !inArgs {
			continue
		}
		colon := strings.Index(trimmed, ":")
		if colon < 0 {
			continue
		}
		nameField := strings.TrimSpace(trimmed[:colon])
		// "name (type)" -> "name"
		if paren := strings.Index(nameField, "("); paren >= 0 {
			nameField = strings.TrimSpace(nameField[:paren])
		}
		desc := strings.TrimSpace(trimmed[colon+1:])
		if nameField != "" {
			out[nameField] = desc
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
