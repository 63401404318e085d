package analyzer

import "github.com/forcemetrics/apexscan/internal/parser"

// scope is the traversal context threaded through scope-aware walks: the
// name of the innermost enclosing callable and how many loops wrap the
// current node. It is passed by value, so leaving a subtree restores the
// enclosing state without bookkeeping.
type scope struct {
	Method    string
	LoopDepth int
}

// InLoop reports whether the current node sits inside at least one loop.
func (s scope) InLoop() bool {
	return s.LoopDepth > 0
}

// walkScope traverses the AST depth-first, calling visit for every node
// with the scope it sits in. Entering a callable replaces the method
// context rather than stacking it. Entering a loop raises the loop depth
// for the whole subtree, condition and update expressions included.
func walkScope(root *parser.Node, visit func(n *parser.Node, sc scope)) {
	walkScopeNode(root, scope{}, visit)
}

func walkScopeNode(n *parser.Node, sc scope, visit func(*parser.Node, scope)) {
	if n == nil {
		return
	}

	visit(n, sc)

	if n.IsCallable() {
		sc.Method = n.Name
	}
	if n.IsLoop() {
		sc.LoopDepth++
	}

	for _, child := range n.Children {
		walkScopeNode(child, sc, visit)
	}
	for _, param := range n.Params {
		walkScopeNode(param, sc, visit)
	}
	for _, stmt := range n.Body {
		walkScopeNode(stmt, sc, visit)
	}
	for _, caseNode := range n.Cases {
		walkScopeNode(caseNode, sc, visit)
	}
	for _, handler := range n.Handlers {
		walkScopeNode(handler, sc, visit)
	}
	for _, arg := range n.Arguments {
		walkScopeNode(arg, sc, visit)
	}
	for _, decl := range n.Declarations {
		walkScopeNode(decl, sc, visit)
	}

	walkScopeNode(n.Test, sc, visit)
	walkScopeNode(n.Consequent, sc, visit)
	walkScopeNode(n.Alternate, sc, visit)
	walkScopeNode(n.Init, sc, visit)
	walkScopeNode(n.Update, sc, visit)
	walkScopeNode(n.Finalizer, sc, visit)
	walkScopeNode(n.Left, sc, visit)
	walkScopeNode(n.Right, sc, visit)
	walkScopeNode(n.Argument, sc, visit)
	walkScopeNode(n.Object, sc, visit)
	walkScopeNode(n.Property, sc, visit)
}
