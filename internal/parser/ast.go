package parser

import "fmt"

// NodeType represents the type of AST node
type NodeType string

// Apex AST node types
const (
	// Program and structure
	NodeProgram NodeType = "Program"

	// Type declarations
	NodeClass     NodeType = "ClassDeclaration"
	NodeInterface NodeType = "InterfaceDeclaration"
	NodeEnum      NodeType = "EnumDeclaration"

	// Members
	NodeMethod      NodeType = "MethodDeclaration"
	NodeConstructor NodeType = "ConstructorDeclaration"
	NodeField       NodeType = "FieldDeclaration"

	// Variable declarations
	NodeLocalVariableDeclaration NodeType = "LocalVariableDeclaration"
	NodeVariableDeclarator       NodeType = "VariableDeclarator"
	NodeIdentifier               NodeType = "Identifier"

	// Control flow statements
	NodeIfStatement          NodeType = "IfStatement"
	NodeSwitchStatement      NodeType = "SwitchStatement"
	NodeForStatement         NodeType = "ForStatement"
	NodeEnhancedForStatement NodeType = "EnhancedForStatement"
	NodeWhileStatement       NodeType = "WhileStatement"
	NodeDoWhileStatement     NodeType = "DoWhileStatement"
	NodeBreakStatement       NodeType = "BreakStatement"
	NodeContinueStatement    NodeType = "ContinueStatement"
	NodeReturnStatement      NodeType = "ReturnStatement"
	NodeThrowStatement       NodeType = "ThrowStatement"

	// Exception handling
	NodeTryStatement  NodeType = "TryStatement"
	NodeCatchClause   NodeType = "CatchClause"
	NodeFinallyClause NodeType = "FinallyClause"

	// Expressions
	NodeMethodInvocation     NodeType = "MethodInvocation"
	NodeFieldAccess          NodeType = "FieldAccess"
	NodeObjectCreation       NodeType = "ObjectCreationExpression"
	NodeBinaryExpression     NodeType = "BinaryExpression"
	NodeUnaryExpression      NodeType = "UnaryExpression"
	NodeUpdateExpression     NodeType = "UpdateExpression"
	NodeAssignmentExpression NodeType = "AssignmentExpression"
	NodeTernaryExpression    NodeType = "TernaryExpression"
	NodeCastExpression       NodeType = "CastExpression"
	NodeArrayAccess          NodeType = "ArrayAccess"

	// Embedded query language
	NodeQueryExpression  NodeType = "QueryExpression"  // inline SOQL [SELECT ...]
	NodeSearchExpression NodeType = "SearchExpression" // inline SOSL [FIND ...]

	// Literals
	NodeLiteral        NodeType = "Literal"
	NodeStringLiteral  NodeType = "StringLiteral"
	NodeNumberLiteral  NodeType = "NumberLiteral"
	NodeBooleanLiteral NodeType = "BooleanLiteral"
	NodeNullLiteral    NodeType = "NullLiteral"

	// Other statements
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodeBlockStatement      NodeType = "BlockStatement"
)

// Location represents the position of a node in the source code
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// String returns a string representation of the location
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// Node represents an AST node
type Node struct {
	Type     NodeType
	Children []*Node
	Location Location
	Parent   *Node

	// Common fields for various node types
	Name string // Type/method/variable names; invoked method name for calls

	// Member fields
	Params []*Node // Method parameters
	Body   []*Node // Method/block body

	// Control flow fields
	Test       *Node   // Condition for if/while/for, iterable for enhanced-for
	Consequent *Node   // Then branch for if
	Alternate  *Node   // Else branch for if
	Init       *Node   // For loop initializer
	Update     *Node   // For loop update
	Cases      []*Node // Switch cases

	// Try-catch fields
	Handlers  []*Node // Catch clauses
	Finalizer *Node   // Finally block

	// Expression fields
	Left      *Node   // Left operand
	Right     *Node   // Right operand
	Operator  string  // Operator (+, -, ==, etc.)
	Argument  *Node   // Unary expression argument
	Arguments []*Node // Invocation arguments
	Object    *Node   // Receiver in invocations and field accesses
	Property  *Node   // Accessed field

	// Variable declaration fields
	Declarations []*Node // Variable declarators

	// Embedded query fields
	Query *SOQLQuery // Parsed structure for query expressions

	// Utility fields
	Raw string // Exact source text, set for literals, calls, and queries
}

// NewNode creates a new AST node
func NewNode(nodeType NodeType) *Node {
	return &Node{
		Type:         nodeType,
		Children:     []*Node{},
		Params:       []*Node{},
		Body:         []*Node{},
		Cases:        []*Node{},
		Handlers:     []*Node{},
		Arguments:    []*Node{},
		Declarations: []*Node{},
	}
}

// AddChild adds a child node
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Walk traverses the AST depth-first and calls the visitor function for each node
// If the visitor returns false, traversal of that branch is stopped
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}

	if !visitor(n) {
		return
	}

	for _, child := range n.Children {
		child.Walk(visitor)
	}
	for _, param := range n.Params {
		param.Walk(visitor)
	}
	for _, stmt := range n.Body {
		stmt.Walk(visitor)
	}
	for _, caseNode := range n.Cases {
		caseNode.Walk(visitor)
	}
	for _, handler := range n.Handlers {
		handler.Walk(visitor)
	}
	for _, arg := range n.Arguments {
		arg.Walk(visitor)
	}
	for _, decl := range n.Declarations {
		decl.Walk(visitor)
	}

	// Walk individual nodes
	if n.Test != nil {
		n.Test.Walk(visitor)
	}
	if n.Consequent != nil {
		n.Consequent.Walk(visitor)
	}
	if n.Alternate != nil {
		n.Alternate.Walk(visitor)
	}
	if n.Init != nil {
		n.Init.Walk(visitor)
	}
	if n.Update != nil {
		n.Update.Walk(visitor)
	}
	if n.Finalizer != nil {
		n.Finalizer.Walk(visitor)
	}
	if n.Left != nil {
		n.Left.Walk(visitor)
	}
	if n.Right != nil {
		n.Right.Walk(visitor)
	}
	if n.Argument != nil {
		n.Argument.Walk(visitor)
	}
	if n.Object != nil {
		n.Object.Walk(visitor)
	}
	if n.Property != nil {
		n.Property.Walk(visitor)
	}
}

// String returns a string representation of the node
func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s(%s) at %s", n.Type, n.Name, n.Location)
	}
	return fmt.Sprintf("%s at %s", n.Type, n.Location)
}

// IsLoop returns true if the node is a loop construct
func (n *Node) IsLoop() bool {
	switch n.Type {
	case NodeForStatement, NodeEnhancedForStatement,
		NodeWhileStatement, NodeDoWhileStatement:
		return true
	}
	return false
}

// IsCallable returns true if the node declares a callable member
func (n *Node) IsCallable() bool {
	switch n.Type {
	case NodeMethod, NodeConstructor:
		return true
	}
	return false
}

// IsStatement returns true if the node is a statement
func (n *Node) IsStatement() bool {
	switch n.Type {
	case NodeIfStatement, NodeSwitchStatement,
		NodeForStatement, NodeEnhancedForStatement,
		NodeWhileStatement, NodeDoWhileStatement,
		NodeTryStatement, NodeReturnStatement, NodeThrowStatement,
		NodeBreakStatement, NodeContinueStatement,
		NodeLocalVariableDeclaration,
		NodeExpressionStatement, NodeBlockStatement:
		return true
	}
	return false
}

// IsExpression returns true if the node is an expression
func (n *Node) IsExpression() bool {
	switch n.Type {
	case NodeMethodInvocation, NodeFieldAccess, NodeObjectCreation,
		NodeBinaryExpression, NodeUnaryExpression, NodeUpdateExpression,
		NodeAssignmentExpression, NodeTernaryExpression, NodeCastExpression,
		NodeArrayAccess, NodeQueryExpression, NodeSearchExpression,
		NodeIdentifier, NodeLiteral, NodeStringLiteral, NodeNumberLiteral,
		NodeBooleanLiteral, NodeNullLiteral:
		return true
	}
	return false
}
