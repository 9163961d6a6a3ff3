package ir

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/standardbeagle/lci/internal/parser"
	"github.com/standardbeagle/lci/internal/types"
)

func buildGoDoc(t *testing.T, content string) *types.IRDocument {
	t.Helper()
	b := NewBuilder(parser.NewTreeSitterParser())
	doc, err := b.Build(context.Background(), "a.go", []byte(content))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return doc
}

func findFunc(doc *types.IRDocument, name string) *types.IRNode {
	for _, n := range doc.Nodes {
		if n.Kind == types.NodeFunction && n.Name == name {
			return n
		}
	}
	return nil
}

func TestBuild_SimpleFunctionHasFileAndFunctionNodes(t *testing.T) {
	doc := buildGoDoc(t, "package a\n\nfunc Greet() string {\n\treturn \"hi\"\n}\n")

	var hasFile bool
	for _, n := range doc.Nodes {
		if n.Kind == types.NodeFile {
			hasFile = true
		}
	}
	if !hasFile {
		t.Fatal("expected a File node")
	}
	if findFunc(doc, "Greet") == nil {
		t.Fatal("expected a Function node named Greet")
	}
}

func TestBuild_BranchingFunctionRecordsComplexityAndBranchPoints(t *testing.T) {
	src := `package a

func Classify(n int) string {
	if n > 0 {
		return "pos"
	}
	for i := 0; i < n; i++ {
		n++
	}
	return "other"
}
`
	doc := buildGoDoc(t, src)
	fn := findFunc(doc, "Classify")
	if fn == nil {
		t.Fatal("expected a Function node named Classify")
	}

	cc, err := strconv.Atoi(fn.Attrs["cyclomatic_complexity"])
	if err != nil {
		t.Fatalf("cyclomatic_complexity attr: %v", err)
	}
	if cc < 3 {
		t.Fatalf("expected cyclomatic complexity >= 3 for an if + a loop, got %d", cc)
	}
	if fn.Attrs["has_loop"] != "true" {
		t.Fatal("expected has_loop=true")
	}

	branchPointsRaw := fn.Attrs["branch_points"]
	if branchPointsRaw == "" {
		t.Fatal("expected branch_points to be recorded for a function with branches")
	}
	points := strings.Split(branchPointsRaw, ",")
	if len(points) < 2 {
		t.Fatalf("expected at least 2 branch points (if + for), got %d: %v", len(points), points)
	}
	for _, p := range points {
		if _, err := strconv.ParseUint(p, 10, 32); err != nil {
			t.Fatalf("branch point %q is not a valid byte offset: %v", p, err)
		}
	}
}

func TestBuild_BranchFreeFunctionHasNoBranchPoints(t *testing.T) {
	doc := buildGoDoc(t, "package a\n\nfunc Plain() int {\n\treturn 1\n}\n")
	fn := findFunc(doc, "Plain")
	if fn == nil {
		t.Fatal("expected a Function node named Plain")
	}
	if fn.Attrs["branch_points"] != "" {
		t.Fatalf("expected no branch points for a branch-free function, got %q", fn.Attrs["branch_points"])
	}
	if fn.Attrs["cyclomatic_complexity"] != "1" {
		t.Fatalf("expected baseline cyclomatic complexity 1, got %s", fn.Attrs["cyclomatic_complexity"])
	}
}
