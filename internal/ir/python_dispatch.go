package ir

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lci/internal/types"
)

// pythonDispatchTable maps Python grammar node kinds to handlers, replacing
// the teacher's extractSymbolsFromNode if/else ladder
// (internal/symbollinker/python_extractor.go) with the table-driven
// dispatch spec §4.2 requires. Node kind names are the same tree-sitter-python
// grammar the teacher's extractor walks.
func pythonDispatchTable() dispatchTable {
	return dispatchTable{handlers: map[string]handlerFunc{
		"function_definition":       pyFunctionHandler,
		"async_function_definition": pyFunctionHandler,
		"class_definition":          pyClassHandler,
		"import_statement":          pyImportHandler,
		"import_from_statement":     pyImportFromHandler,
		"assignment":                pyAssignmentHandler,
		"call":                      pyCallHandler,
		"raise_statement":           pyRaiseHandler,
		"try_statement":             pyTryHandler,
		"except_clause":             pyExceptHandler,
		"for_statement":             pyLoopHandler,
		"while_statement":           pyWhileHandler,
		"if_statement":              pyIfHandler,
	}}
}

func pyFunctionHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	name := nameOf(w, n)
	if name == "" {
		return dispatchResult{}
	}
	kind := types.NodeFunction
	if parent.funcInfo == nil && len(w.scopes) > 0 && w.isInClassScope() {
		kind = types.NodeMethod
	}
	fq := fqn(parent, name)
	span := w.spanOf(n)
	node := &types.IRNode{
		ID:       types.DeriveNodeID(string(kind), fq, span),
		Kind:     kind,
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
		pyEmitParameters(w, params, node.ID, fq)
	}

	return dispatchResult{pushScope: true, scope: scopeFrame{
		nodeID:   node.ID,
		fqn:      fq,
		funcInfo: newComplexityAccumulator(),
	}}
}

func pyEmitParameters(w *walker, params *tree_sitter.Node, funcID types.NodeID, funcFQN string) {
	count := int(params.ChildCount())
	for i := 0; i < count; i++ {
		child := params.Child(uint(i))
		if child == nil {
			continue
		}
		var ident *tree_sitter.Node
		switch child.Kind() {
		case "identifier":
			ident = child
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			ident = child.ChildByFieldName("name")
			if ident == nil {
				ident = findFirstChildKind(child, "identifier")
			}
		default:
			continue
		}
		if ident == nil {
			continue
		}
		name := w.text(ident)
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

func findFirstChildKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func (w *walker) isInClassScope() bool {
	if len(w.scopes) == 0 {
		return false
	}
	// the immediately enclosing scope is a class iff its funcInfo is nil and
	// it isn't the module/file root (scopes[0]).
	top := w.scopes[len(w.scopes)-1]
	return top.funcInfo == nil && top.fqn != ""
}

func pyClassHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	name := nameOf(w, n)
	if name == "" {
		return dispatchResult{}
	}
	fq := fqn(parent, name)
	span := w.spanOf(n)
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

	if bases := n.ChildByFieldName("superclasses"); bases != nil {
		for i := uint(0); i < bases.ChildCount(); i++ {
			c := bases.Child(i)
			if c == nil || c.Kind() != "identifier" {
				continue
			}
			baseName := w.text(c)
			target := types.DeriveNodeID(string(types.NodeExternal), baseName, types.Span{})
			w.addEdge(types.EdgeInherits, node.ID, target, w.spanOf(c))
		}
	}

	return dispatchResult{pushScope: true, scope: scopeFrame{nodeID: node.ID, fqn: fq}}
}

func pyImportHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if c.Kind() == "dotted_name" || c.Kind() == "identifier" {
			path := w.text(c)
			emitPyImportNode(w, c, parent, path, path, false)
		} else if c.Kind() == "aliased_import" {
			nameNode := findFirstChildKind(c, "dotted_name")
			if nameNode == nil {
				nameNode = findFirstChildKind(c, "identifier")
			}
			if nameNode != nil {
				path := w.text(nameNode)
				emitPyImportNode(w, c, parent, path, path, false)
			}
		}
	}
	return dispatchResult{}
}

func pyImportFromHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	var modulePath string
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "dotted_name", "relative_import":
			if modulePath == "" {
				modulePath = w.text(c)
			}
		case "wildcard_import":
			emitPyImportNode(w, c, parent, modulePath, modulePath+".*", true)
		case "import_list":
			for j := uint(0); j < c.ChildCount(); j++ {
				nc := c.Child(j)
				if nc == nil {
					continue
				}
				if nc.Kind() == "identifier" || nc.Kind() == "dotted_name" {
					name := w.text(nc)
					emitPyImportNode(w, nc, parent, modulePath+"."+name, name, false)
				} else if nc.Kind() == "aliased_import" {
					nameNode := findFirstChildKind(nc, "identifier")
					if nameNode != nil {
						name := w.text(nameNode)
						emitPyImportNode(w, nc, parent, modulePath+"."+name, name, false)
					}
				}
			}
		}
	}
	return dispatchResult{}
}

// emitPyImportNode records an Import IRNode with attrs.import_path, the raw
// dotted source and bound local name. Per I5 the resolver (C5) is relied
// upon to never index these by FQN into the global symbol table -- IR
// generation itself does not special-case that rule.
func emitPyImportNode(w *walker, anchor *tree_sitter.Node, parent scopeFrame, importPath, localName string, wildcard bool) {
	span := w.spanOf(anchor)
	fq := fqn(parent, localName)
	node := &types.IRNode{
		ID:       types.DeriveNodeID(string(types.NodeImport), fq, span),
		Kind:     types.NodeImport,
		Name:     localName,
		FQN:      fq,
		Span:     span,
		FilePath: w.filePath,
		Language: w.lang,
		ParentID: parent.nodeID,
		Attrs: map[string]string{
			"import_path": importPath,
			"wildcard":    boolAttr(wildcard),
		},
	}
	w.addNode(node)
	w.addEdge(types.EdgeImports, parent.nodeID, node.ID, span)
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func pyAssignmentHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	left := n.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return dispatchResult{}
	}
	name := w.text(left)
	fq := fqn(parent, name)
	span := w.spanOf(n)
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
	return dispatchResult{}
}

func pyCallHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return dispatchResult{}
	}
	var calleeName string
	switch fn.Kind() {
	case "identifier":
		calleeName = w.text(fn)
	case "attribute":
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			calleeName = w.text(attr)
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

func pyRaiseHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	w.recordBranch(uint32(n.StartByte()), false, true)
	return dispatchResult{}
}

func pyTryHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	w.recordBranch(uint32(n.StartByte()), false, true)
	return dispatchResult{}
}

func pyExceptHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	w.addEdge(types.EdgeCatches, parent.nodeID, parent.nodeID, w.spanOf(n))
	return dispatchResult{}
}

func pyLoopHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	w.recordBranch(uint32(n.StartByte()), true, false)
	return dispatchResult{}
}

func pyWhileHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	w.recordBranch(uint32(n.StartByte()), true, false)
	return dispatchResult{}
}

func pyIfHandler(w *walker, n *tree_sitter.Node, parent scopeFrame) dispatchResult {
	w.recordBranch(uint32(n.StartByte()), false, false)
	return dispatchResult{}
}
