package resolver

import (
	"sort"

	"github.com/standardbeagle/lci/internal/types"
)

// BuildDependencyGraph runs §4.5 phase 3, single-threaded: an edge f -> g
// means f imports a symbol defined in g. Returns the adjacency map only;
// StronglyConnectedComponents and TopologicalOrder compute the SCCs and
// order from it.
func BuildDependencyGraph(fileImports map[string][]types.ResolvedImport) map[string][]string {
	graph := make(map[string][]string)
	seen := make(map[string]map[string]bool)
	for file := range fileImports {
		graph[file] = nil
		seen[file] = make(map[string]bool)
	}
	for file, imports := range fileImports {
		for _, imp := range imports {
			if imp.IsExternal || imp.SourceFile == "" || imp.SourceFile == file {
				continue
			}
			if !seen[file][imp.SourceFile] {
				seen[file][imp.SourceFile] = true
				graph[file] = append(graph[file], imp.SourceFile)
			}
		}
	}
	for file := range graph {
		sort.Strings(graph[file])
	}
	return graph
}

// tarjanState carries the single-pass iterative Tarjan SCC walk's indices,
// low-links and stack. Implemented iteratively with an explicit call-stack
// of (node, child-index) frames rather than recursion, per §9's
// recursive-to-iterative conversion requirement (the same technique C2's
// walker uses, applied here to graph traversal instead of AST traversal).
type tarjanState struct {
	graph    map[string][]string
	index    map[string]int
	lowlink  map[string]int
	onStack  map[string]bool
	stack    []string
	counter  int
	sccs     [][]string
}

// StronglyConnectedComponents computes Tarjan's SCCs iteratively. A
// component of size >= 2, or a size-1 component with a self-edge, is a
// dependency cycle (§4.5 phase 3, GLOSSARY SCC).
func StronglyConnectedComponents(graph map[string][]string) [][]string {
	st := &tarjanState{
		graph:   graph,
		index:   make(map[string]int),
		lowlink: make(map[string]int),
		onStack: make(map[string]bool),
	}

	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes) // deterministic traversal order (I3/I6)

	for _, n := range nodes {
		if _, visited := st.index[n]; !visited {
			st.strongConnect(n)
		}
	}
	return st.sccs
}

type tarjanFrame struct {
	node     string
	childIdx int
}

func (st *tarjanState) strongConnect(start string) {
	frames := []*tarjanFrame{{node: start}}
	st.visit(start)

	for len(frames) > 0 {
		top := frames[len(frames)-1]
		children := st.graph[top.node]

		if top.childIdx < len(children) {
			child := children[top.childIdx]
			top.childIdx++
			if _, visited := st.index[child]; !visited {
				st.visit(child)
				frames = append(frames, &tarjanFrame{node: child})
			} else if st.onStack[child] {
				if st.index[child] < st.lowlink[top.node] {
					st.lowlink[top.node] = st.index[child]
				}
			}
			continue
		}

		// all children processed: pop, propagate lowlink to parent, and
		// if this node is an SCC root, pop the component off the stack.
		frames = frames[:len(frames)-1]
		if len(frames) > 0 {
			parent := frames[len(frames)-1]
			if st.lowlink[top.node] < st.lowlink[parent.node] {
				st.lowlink[parent.node] = st.lowlink[top.node]
			}
		}
		if st.lowlink[top.node] == st.index[top.node] {
			var component []string
			for {
				n := st.stack[len(st.stack)-1]
				st.stack = st.stack[:len(st.stack)-1]
				st.onStack[n] = false
				component = append(component, n)
				if n == top.node {
					break
				}
			}
			sort.Strings(component)
			st.sccs = append(st.sccs, component)
		}
	}
}

func (st *tarjanState) visit(n string) {
	st.index[n] = st.counter
	st.lowlink[n] = st.counter
	st.counter++
	st.stack = append(st.stack, n)
	st.onStack[n] = true
}

// TopologicalOrder returns a topological ordering of graph, or nil if the
// graph contains a cycle (callers should consult
// StronglyConnectedComponents first per §3 GlobalContext contract).
func TopologicalOrder(graph map[string][]string) []string {
	inDegree := make(map[string]int, len(graph))
	for n := range graph {
		inDegree[n] = 0
	}
	for _, deps := range graph {
		for _, d := range deps {
			inDegree[d]++
		}
	}
	// Kahn's algorithm over "f depends on g" edges: g must come before f,
	// so we start from nodes that depend on nothing (zero out-edges) and
	// release each dependent once every node it depends on has been
	// emitted, tracking each node's remaining out-degree.
	outDegreeRemaining := make(map[string]int, len(graph))
	for n, deps := range graph {
		outDegreeRemaining[n] = len(deps)
	}

	var ready []string
	for n, d := range outDegreeRemaining {
		if d == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	dependents := make(map[string][]string)
	for n, deps := range graph {
		for _, d := range deps {
			dependents[d] = append(dependents[d], n)
		}
	}
	for n := range dependents {
		sort.Strings(dependents[n])
	}

	var order []string
	for len(ready) > 0 {
		sort.Strings(ready)
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, dep := range dependents[n] {
			outDegreeRemaining[dep]--
			if outDegreeRemaining[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(graph) {
		return nil // cycle present
	}
	return order
}
