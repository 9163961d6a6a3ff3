package ir

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lci/internal/types"
)

// goDispatchTable maps Go grammar node kinds to handlers, grounded on the
// teacher's internal/symbollinker/go_extractor.go switch (function_declaration,
// method_declaration, type_declaration, import_declaration, ...), rebuilt as
// a dispatch-table lookup instead of a type switch.
func goDispatchTable() dispatchTable {
	return dispatchTable{handlers: map[string]handlerFunc{
		"function_declaration":   goFunctionHandler,
		"method_declaration":     goMethodHandler,
		"type_declaration":       goTypeDeclHandler,
		"import_declaration":     goImportDeclHandler,
		"short_var_declaration":  goShortVarHandler,
		"var_declaration":        goVarDeclHandler,
		"call_expression":        goCallHandler,
		"for_statement":          goLoopHandler,
		"if_statement":           goIfHandler,
		"expression_switch_statement": goSwitchHandler,
		"type_switch_statement":  goSwitchHandler,
		"select_statement":       goSwitchHandler,
		"defer_statement":        goDeferHandler,
	}}
}

func goFunctionHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	name := nameOf(w, n)
	if name == "" {
		return dispatchResult{}
	}
	fq := fqn(parent, name)
	span := w.spanOf(n)
	node := &types.IRNode{
		ID:       types.DeriveNodeID(string(types.NodeFunction), fq, span),
		Kind:     types.NodeFunction,
		Name:     name,
		FQN:      fq,
		Span:     span,
		FilePath: w.filePath,
		Language: w.lang,
		ParentID: parent.nodeID,
		Attrs:    map[string]string{},
	}
	w.addNode(node)
	w.addEdge(types.EdgeContains, parent.nodeID, node.ID, types.Span{})
	if params := n.ChildByFieldName("parameters"); params != nil {
		goEmitParameters(w, params, node.ID, fq)
	}
	return dispatchResult{pushScope: true, scope: scopeFrame{
		nodeID:   node.ID,
		fqn:      fq,
		funcInfo: newComplexityAccumulator(),
	}}
}

func goMethodHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	name := nameOf(w, n)
	if name == "" {
		return dispatchResult{}
	}
	receiverType := ""
	if recv := n.ChildByFieldName("receiver"); recv != nil {
		if tn := findFirstChildKind(recv, "type_identifier"); tn != nil {
			receiverType = w.text(tn)
		} else if ptr := findFirstChildKind(recv, "pointer_type"); ptr != nil {
			if tn := findFirstChildKind(ptr, "type_identifier"); tn != nil {
				receiverType = w.text(tn)
			}
		}
	}
	base := parent
	if receiverType != "" {
		base = scopeFrame{nodeID: parent.nodeID, fqn: fqn(parent, receiverType)}
	}
	fq := fqn(base, name)
	span := w.spanOf(n)
	node := &types.IRNode{
		ID:       types.DeriveNodeID(string(types.NodeMethod), fq, span),
		Kind:     types.NodeMethod,
		Name:     name,
		FQN:      fq,
		Span:     span,
		FilePath: w.filePath,
		Language: w.lang,
		ParentID: parent.nodeID,
		Attrs:    map[string]string{"receiver_type": receiverType},
	}
	w.addNode(node)
	w.addEdge(types.EdgeContains, parent.nodeID, node.ID, types.Span{})
	if params := n.ChildByFieldName("parameters"); params != nil {
		goEmitParameters(w, params, node.ID, fq)
	}
	return dispatchResult{pushScope: true, scope: scopeFrame{
		nodeID:   node.ID,
		fqn:      fq,
		funcInfo: newComplexityAccumulator(),
	}}
}

func goEmitParameters(w *walker, params *tree_sitter.Node, funcID types.NodeID, funcFQN string) {
	for i := uint(0); i < params.ChildCount(); i++ {
		child := params.Child(i)
		if child == nil || child.Kind() != "parameter_declaration" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := w.text(nameNode)
		if reservedParamNames[name] {
			continue
		}
		pfqn := funcFQN + "." + name
		span := w.spanOf(child)
		pnode := &types.IRNode{
			ID:       types.DeriveNodeID(string(types.NodeParameter), pfqn, span),
			Kind:     types.NodeParameter,
			Name:     name,
			FQN:      pfqn,
			Span:     span,
			FilePath: w.filePath,
			Language: w.lang,
			ParentID: funcID,
			Attrs:    map[string]string{},
		}
		w.addNode(pnode)
		w.addEdge(types.EdgeContains, funcID, pnode.ID, types.Span{})
	}
}

// goTypeDeclHandler handles `type Foo struct {...}` / `type Foo interface {...}`
// as a Class IRNode (the spec's NodeKind set is language-agnostic and has no
// separate "struct"/"interface" kind -- both map to Class, matching how C6's
// GraphDocument and C7's Symbol Graph treat them uniformly downstream).
func goTypeDeclHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	for i := uint(0); i < n.ChildCount(); i++ {
		spec := n.Child(i)
		if spec == nil || spec.Kind() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := w.text(nameNode)
		fq := fqn(parent, name)
		span := w.spanOf(spec)
		node := &types.IRNode{
			ID:       types.DeriveNodeID(string(types.NodeClass), fq, span),
			Kind:     types.NodeClass,
			Name:     name,
			FQN:      fq,
			Span:     span,
			FilePath: w.filePath,
			Language: w.lang,
			ParentID: parent.nodeID,
			Attrs:    map[string]string{},
		}
		w.addNode(node)
		w.addEdge(types.EdgeContains, parent.nodeID, node.ID, types.Span{})

		if iface := spec.ChildByFieldName("type"); iface != nil && iface.Kind() == "interface_type" {
			node.Attrs["interface"] = "true"
		}
	}
	return dispatchResult{}
}

func goImportDeclHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	walkImportSpecs(w, n, parent)
	return dispatchResult{}
}

func walkImportSpecs(w *walker, n *tree_sitter.Node, parent scopeFrame) {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if c.Kind() == "import_spec" {
			pathNode := c.ChildByFieldName("path")
			if pathNode == nil {
				continue
			}
			path := trimQuotes(w.text(pathNode))
			alias := ""
			if a := c.ChildByFieldName("name"); a != nil {
				alias = w.text(a)
			}
			localName := alias
			if localName == "" {
				parts := splitLast(path, '/')
				localName = parts
			}
			emitPyImportNode(w, c, parent, path, localName, alias == "_")
		} else if c.Kind() == "import_spec_list" {
			walkImportSpecs(w, c, parent)
		}
	}
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}

func splitLast(s string, sep byte) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == sep {
			return s[i+1:]
		}
	}
	return s
}

func goShortVarHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	left := n.ChildByFieldName("left")
	if left == nil {
		return dispatchResult{}
	}
	emitGoVarTargets(w, left, parent)
	return dispatchResult{}
}

func goVarDeclHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	for i := uint(0); i < n.ChildCount(); i++ {
		spec := n.Child(i)
		if spec == nil || spec.Kind() != "var_spec" {
			continue
		}
		if names := spec.ChildByFieldName("name"); names != nil {
			emitGoVarTargets(w, names, parent)
		}
	}
	return dispatchResult{}
}

func emitGoVarTargets(w *walker, left *tree_sitter.Node, parent scopeFrame) {
	targets := []*tree_sitter.Node{left}
	if left.Kind() == "expression_list" {
		targets = nil
		for i := uint(0); i < left.ChildCount(); i++ {
			c := left.Child(i)
			if c != nil && c.Kind() == "identifier" {
				targets = append(targets, c)
			}
		}
	}
	for _, t := range targets {
		if t.Kind() != "identifier" {
			continue
		}
		name := w.text(t)
		if name == "_" {
			continue
		}
		fq := fqn(parent, name)
		span := w.spanOf(t)
		node := &types.IRNode{
			ID:       types.DeriveNodeID(string(types.NodeVariable), fq, span),
			Kind:     types.NodeVariable,
			Name:     name,
			FQN:      fq,
			Span:     span,
			FilePath: w.filePath,
			Language: w.lang,
			ParentID: parent.nodeID,
			Attrs:    map[string]string{},
		}
		w.addNode(node)
		w.addEdge(types.EdgeContains, parent.nodeID, node.ID, types.Span{})
		w.addEdge(types.EdgeWrites, node.ID, node.ID, span)
	}
}

func goCallHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return dispatchResult{}
	}
	var calleeName string
	switch fn.Kind() {
	case "identifier":
		calleeName = w.text(fn)
	case "selector_expression":
		if field := fn.ChildByFieldName("field"); field != nil {
			calleeName = w.text(field)
		}
	default:
		return dispatchResult{}
	}
	if calleeName == "" {
		return dispatchResult{}
	}
	target := types.DeriveNodeID(string(types.NodeExternal), calleeName, types.Span{})
	w.addEdge(types.EdgeCalls, parent.nodeID, target, w.spanOf(n))
	return dispatchResult{}
}

func goLoopHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	w.recordBranch(uint32(n.StartByte()), true, false)
	return dispatchResult{}
}

func goIfHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	w.recordBranch(uint32(n.StartByte()), false, false)
	return dispatchResult{}
}

func goSwitchHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	w.recordBranch(uint32(n.StartByte()), false, false)
	return dispatchResult{}
}

func goDeferHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	w.recordBranch(uint32(n.StartByte()), false, true)
	return dispatchResult{}
}
