package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// ASTBuilder builds our internal AST from tree-sitter CST
//
// The CST comes from the normalized text while names and raw snippets
// are read from the original source; both share the same byte offsets.
// Wherever the grammar sees one of the placeholder literals written by
// normalization, the matching query span is substituted back in.
type ASTBuilder struct {
	filename string
	source   []byte
	queries  map[uint32]*QuerySpan
}

// NewASTBuilder creates a new AST builder
func NewASTBuilder(filename string, source []byte, spans []QuerySpan) *ASTBuilder {
	queries := make(map[uint32]*QuerySpan, len(spans))
	for i := range spans {
		if spans[i].NullByte != noPlaceholder {
			queries[spans[i].NullByte] = &spans[i]
		}
	}
	return &ASTBuilder{
		filename: filename,
		source:   source,
		queries:  queries,
	}
}

// Build builds the AST from a tree-sitter node
func (b *ASTBuilder) Build(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	return b.buildNode(tsNode)
}

// buildNode converts a tree-sitter node to our internal AST node
func (b *ASTBuilder) buildNode(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "program":
		return b.buildProgram(tsNode)
	case "class_declaration":
		return b.buildClassDeclaration(tsNode)
	case "interface_declaration":
		return b.buildInterfaceDeclaration(tsNode)
	case "enum_declaration":
		return b.buildEnumDeclaration(tsNode)
	case "method_declaration":
		return b.buildMethodDeclaration(tsNode)
	case "constructor_declaration":
		return b.buildConstructorDeclaration(tsNode)
	case "field_declaration":
		return b.buildFieldDeclaration(tsNode)
	case "local_variable_declaration":
		return b.buildLocalVariableDeclaration(tsNode)
	case "variable_declarator":
		return b.buildVariableDeclarator(tsNode)
	case "if_statement":
		return b.buildIfStatement(tsNode)
	case "switch_expression", "switch_statement":
		return b.buildSwitchStatement(tsNode)
	case "for_statement":
		return b.buildForStatement(tsNode)
	case "enhanced_for_statement":
		return b.buildEnhancedForStatement(tsNode)
	case "while_statement":
		return b.buildWhileStatement(tsNode)
	case "do_statement":
		return b.buildDoWhileStatement(tsNode)
	case "try_statement", "try_with_resources_statement":
		return b.buildTryStatement(tsNode)
	case "catch_clause":
		return b.buildCatchClause(tsNode)
	case "finally_clause":
		return b.buildFinallyClause(tsNode)
	case "return_statement":
		return b.buildReturnStatement(tsNode)
	case "break_statement":
		return b.buildBreakStatement(tsNode)
	case "continue_statement":
		return b.buildContinueStatement(tsNode)
	case "throw_statement":
		return b.buildThrowStatement(tsNode)
	case "expression_statement":
		return b.buildExpressionStatement(tsNode)
	case "method_invocation":
		return b.buildMethodInvocation(tsNode)
	case "field_access":
		return b.buildFieldAccess(tsNode)
	case "array_access":
		return b.buildArrayAccess(tsNode)
	case "object_creation_expression":
		return b.buildObjectCreation(tsNode)
	case "binary_expression":
		return b.buildBinaryExpression(tsNode)
	case "instanceof_expression":
		return b.buildInstanceofExpression(tsNode)
	case "unary_expression":
		return b.buildUnaryExpression(tsNode)
	case "update_expression":
		return b.buildUpdateExpression(tsNode)
	case "assignment_expression":
		return b.buildAssignmentExpression(tsNode)
	case "ternary_expression":
		return b.buildTernaryExpression(tsNode)
	case "cast_expression":
		return b.buildCastExpression(tsNode)
	case "parenthesized_expression":
		return b.buildParenthesizedExpression(tsNode)
	case "identifier", "type_identifier", "scoped_identifier", "scoped_type_identifier", "this", "super":
		return b.buildIdentifier(tsNode)
	case "string_literal", "character_literal",
		"decimal_integer_literal", "hex_integer_literal",
		"octal_integer_literal", "binary_integer_literal",
		"decimal_floating_point_literal", "hex_floating_point_literal",
		"true", "false":
		return b.buildLiteral(tsNode)
	case "null_literal":
		// A null here may be the placeholder normalization wrote over
		// an inline query block
		if span, ok := b.queries[tsNode.StartByte()]; ok {
			return b.buildQueryExpression(span)
		}
		return b.buildLiteral(tsNode)
	case "block", "constructor_body":
		return b.buildBlockStatement(tsNode)
	default:
		// For unknown nodes, create a generic node and process children
		return b.buildGenericNode(tsNode)
	}
}

// buildProgram builds a program node
func (b *ASTBuilder) buildProgram(tsNode *sitter.Node) *Node {
	node := NewNode(NodeProgram)
	node.Location = b.getLocation(tsNode)

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && !b.isTrivia(child) && child.Type() != ";" {
			childNode := b.buildNode(child)
			if childNode != nil {
				node.Body = append(node.Body, childNode)
			}
		}
	}

	return node
}

// buildClassDeclaration builds a class declaration node
func (b *ASTBuilder) buildClassDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeClass)
	node.Location = b.getLocation(tsNode)

	// Extract class name
	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}

	// Extract class body
	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		node.Body = b.buildMemberList(bodyNode)
	}

	return node
}

// buildInterfaceDeclaration builds an interface declaration node
func (b *ASTBuilder) buildInterfaceDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeInterface)
	node.Location = b.getLocation(tsNode)

	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}

	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		node.Body = b.buildMemberList(bodyNode)
	}

	return node
}

// buildEnumDeclaration builds an enum declaration node
func (b *ASTBuilder) buildEnumDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeEnum)
	node.Location = b.getLocation(tsNode)

	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}

	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		node.Body = b.buildMemberList(bodyNode)
	}

	return node
}

// buildMethodDeclaration builds a method declaration node
func (b *ASTBuilder) buildMethodDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeMethod)
	node.Location = b.getLocation(tsNode)

	// Extract method name
	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}

	// Extract parameters
	if paramsNode := b.getChildByFieldName(tsNode, "parameters"); paramsNode != nil {
		node.Params = b.buildParameters(paramsNode)
	}

	// Extract body; interface methods have none
	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		bodyAST := b.buildNode(bodyNode)
		if bodyAST != nil {
			node.Body = bodyAST.Body
		}
	}

	return node
}

// buildConstructorDeclaration builds a constructor declaration node
func (b *ASTBuilder) buildConstructorDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeConstructor)
	node.Location = b.getLocation(tsNode)

	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}

	if paramsNode := b.getChildByFieldName(tsNode, "parameters"); paramsNode != nil {
		node.Params = b.buildParameters(paramsNode)
	}

	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		bodyAST := b.buildNode(bodyNode)
		if bodyAST != nil {
			node.Body = bodyAST.Body
		}
	}

	return node
}

// buildFieldDeclaration builds a field declaration node
func (b *ASTBuilder) buildFieldDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeField)
	node.Location = b.getLocation(tsNode)

	// Declared type
	if typeNode := b.getChildByFieldName(tsNode, "type"); typeNode != nil {
		node.Name = typeNode.Content(b.source)
	}

	// Extract declarators
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && child.Type() == "variable_declarator" {
			declNode := b.buildNode(child)
			if declNode != nil {
				node.Declarations = append(node.Declarations, declNode)
			}
		}
	}

	return node
}

// buildLocalVariableDeclaration builds a local variable declaration node
func (b *ASTBuilder) buildLocalVariableDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeLocalVariableDeclaration)
	node.Location = b.getLocation(tsNode)

	// Declared type
	if typeNode := b.getChildByFieldName(tsNode, "type"); typeNode != nil {
		node.Name = typeNode.Content(b.source)
	}

	// Extract declarators
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && child.Type() == "variable_declarator" {
			declNode := b.buildNode(child)
			if declNode != nil {
				node.Declarations = append(node.Declarations, declNode)
			}
		}
	}

	return node
}

// buildVariableDeclarator builds a variable declarator node
func (b *ASTBuilder) buildVariableDeclarator(tsNode *sitter.Node) *Node {
	node := NewNode(NodeVariableDeclarator)
	node.Location = b.getLocation(tsNode)

	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}

	// Initializer expression
	if valueNode := b.getChildByFieldName(tsNode, "value"); valueNode != nil {
		node.Init = b.buildNode(valueNode)
	}

	return node
}

// buildIfStatement builds an if statement node
func (b *ASTBuilder) buildIfStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeIfStatement)
	node.Location = b.getLocation(tsNode)

	// Extract condition
	if condNode := b.getChildByFieldName(tsNode, "condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
	}

	// Extract consequence (then branch)
	if consNode := b.getChildByFieldName(tsNode, "consequence"); consNode != nil {
		node.Consequent = b.buildNode(consNode)
	}

	// Extract alternative (else branch)
	if altNode := b.getChildByFieldName(tsNode, "alternative"); altNode != nil {
		node.Alternate = b.buildNode(altNode)
	}

	return node
}

// buildSwitchStatement builds a switch statement node
func (b *ASTBuilder) buildSwitchStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeSwitchStatement)
	node.Location = b.getLocation(tsNode)

	// Extract the value being switched on
	if condNode := b.getChildByFieldName(tsNode, "condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
	}

	// Extract case groups
	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		for i := 0; i < int(bodyNode.ChildCount()); i++ {
			child := bodyNode.Child(i)
			if child != nil && !b.isTrivia(child) && child.Type() != "{" && child.Type() != "}" {
				caseNode := b.buildNode(child)
				if caseNode != nil {
					node.Cases = append(node.Cases, caseNode)
				}
			}
		}
	}

	return node
}

// buildForStatement builds a for statement node
func (b *ASTBuilder) buildForStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeForStatement)
	node.Location = b.getLocation(tsNode)

	// Extract initializer
	if initNode := b.getChildByFieldName(tsNode, "init"); initNode != nil {
		node.Init = b.buildNode(initNode)
	}

	// Extract condition
	if condNode := b.getChildByFieldName(tsNode, "condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
	}

	// Extract update
	if updateNode := b.getChildByFieldName(tsNode, "update"); updateNode != nil {
		node.Update = b.buildNode(updateNode)
	}

	// Extract body
	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		node.Body = []*Node{b.buildNode(bodyNode)}
	}

	return node
}

// buildEnhancedForStatement builds an enhanced for (for-each) node.
// In Apex this is also the SOQL for loop: for (Account a : [SELECT ...])
func (b *ASTBuilder) buildEnhancedForStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeEnhancedForStatement)
	node.Location = b.getLocation(tsNode)

	// Loop variable name
	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}

	// Iterated value
	if valueNode := b.getChildByFieldName(tsNode, "value"); valueNode != nil {
		node.Test = b.buildNode(valueNode)
	}

	// Extract body
	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		node.Body = []*Node{b.buildNode(bodyNode)}
	}

	return node
}

// buildWhileStatement builds a while statement node
func (b *ASTBuilder) buildWhileStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeWhileStatement)
	node.Location = b.getLocation(tsNode)

	// Extract condition
	if condNode := b.getChildByFieldName(tsNode, "condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
	}

	// Extract body
	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		node.Body = []*Node{b.buildNode(bodyNode)}
	}

	return node
}

// buildDoWhileStatement builds a do-while statement node
func (b *ASTBuilder) buildDoWhileStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeDoWhileStatement)
	node.Location = b.getLocation(tsNode)

	// Extract body
	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		node.Body = []*Node{b.buildNode(bodyNode)}
	}

	// Extract condition
	if condNode := b.getChildByFieldName(tsNode, "condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
	}

	return node
}

// buildTryStatement builds a try statement node
func (b *ASTBuilder) buildTryStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeTryStatement)
	node.Location = b.getLocation(tsNode)

	// Extract try body
	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		bodyAST := b.buildNode(bodyNode)
		if bodyAST != nil {
			node.Body = bodyAST.Body
		}
	}

	// Catch and finally clauses carry no field names in the grammar
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "catch_clause":
			handler := b.buildNode(child)
			if handler != nil {
				node.Handlers = append(node.Handlers, handler)
			}
		case "finally_clause":
			node.Finalizer = b.buildNode(child)
		}
	}

	return node
}

// buildCatchClause builds a catch clause node
func (b *ASTBuilder) buildCatchClause(tsNode *sitter.Node) *Node {
	node := NewNode(NodeCatchClause)
	node.Location = b.getLocation(tsNode)

	// Extract parameter (exception variable)
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && child.Type() == "catch_formal_parameter" {
			node.Params = []*Node{b.buildNode(child)}
			break
		}
	}

	// Extract body
	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		bodyAST := b.buildNode(bodyNode)
		if bodyAST != nil {
			node.Body = bodyAST.Body
		}
	}

	return node
}

// buildFinallyClause builds a finally clause node
func (b *ASTBuilder) buildFinallyClause(tsNode *sitter.Node) *Node {
	node := NewNode(NodeFinallyClause)
	node.Location = b.getLocation(tsNode)

	// Extract body
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && child.Type() == "block" {
			bodyAST := b.buildNode(child)
			if bodyAST != nil {
				node.Body = bodyAST.Body
			}
			break
		}
	}

	return node
}

// buildReturnStatement builds a return statement node
func (b *ASTBuilder) buildReturnStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeReturnStatement)
	node.Location = b.getLocation(tsNode)

	// Extract return value
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && !b.isTrivia(child) && child.Type() != "return" && child.Type() != ";" {
			node.Argument = b.buildNode(child)
			break
		}
	}

	return node
}

// buildBreakStatement builds a break statement node
func (b *ASTBuilder) buildBreakStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeBreakStatement)
	node.Location = b.getLocation(tsNode)
	return node
}

// buildContinueStatement builds a continue statement node
func (b *ASTBuilder) buildContinueStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeContinueStatement)
	node.Location = b.getLocation(tsNode)
	return node
}

// buildThrowStatement builds a throw statement node
func (b *ASTBuilder) buildThrowStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeThrowStatement)
	node.Location = b.getLocation(tsNode)

	// Extract thrown value
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && !b.isTrivia(child) && child.Type() != "throw" && child.Type() != ";" {
			node.Argument = b.buildNode(child)
			break
		}
	}

	return node
}

// buildExpressionStatement builds an expression statement node
func (b *ASTBuilder) buildExpressionStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeExpressionStatement)
	node.Location = b.getLocation(tsNode)

	// Unwrap to the expression itself
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && !b.isTrivia(child) && child.Type() != ";" {
			return b.buildNode(child)
		}
	}

	return node
}

// buildMethodInvocation builds a method invocation node
func (b *ASTBuilder) buildMethodInvocation(tsNode *sitter.Node) *Node {
	node := NewNode(NodeMethodInvocation)
	node.Location = b.getLocation(tsNode)
	node.Raw = tsNode.Content(b.source)

	// Extract receiver
	if objNode := b.getChildByFieldName(tsNode, "object"); objNode != nil {
		node.Object = b.buildNode(objNode)
	}

	// Extract invoked method name
	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}

	// Extract arguments
	if argsNode := b.getChildByFieldName(tsNode, "arguments"); argsNode != nil {
		for i := 0; i < int(argsNode.ChildCount()); i++ {
			child := argsNode.Child(i)
			if child != nil && !b.isTrivia(child) && child.Type() != "(" && child.Type() != ")" && child.Type() != "," {
				argNode := b.buildNode(child)
				if argNode != nil {
					node.Arguments = append(node.Arguments, argNode)
				}
			}
		}
	}

	return node
}

// buildFieldAccess builds a field access node
func (b *ASTBuilder) buildFieldAccess(tsNode *sitter.Node) *Node {
	node := NewNode(NodeFieldAccess)
	node.Location = b.getLocation(tsNode)
	node.Raw = tsNode.Content(b.source)

	// Extract object
	if objNode := b.getChildByFieldName(tsNode, "object"); objNode != nil {
		node.Object = b.buildNode(objNode)
	}

	// Extract accessed field
	if fieldNode := b.getChildByFieldName(tsNode, "field"); fieldNode != nil {
		node.Property = b.buildNode(fieldNode)
	}

	return node
}

// buildArrayAccess builds an array access node
func (b *ASTBuilder) buildArrayAccess(tsNode *sitter.Node) *Node {
	node := NewNode(NodeArrayAccess)
	node.Location = b.getLocation(tsNode)

	if arrNode := b.getChildByFieldName(tsNode, "array"); arrNode != nil {
		node.Object = b.buildNode(arrNode)
	}

	if idxNode := b.getChildByFieldName(tsNode, "index"); idxNode != nil {
		node.Argument = b.buildNode(idxNode)
	}

	return node
}

// buildObjectCreation builds an object creation expression node
func (b *ASTBuilder) buildObjectCreation(tsNode *sitter.Node) *Node {
	node := NewNode(NodeObjectCreation)
	node.Location = b.getLocation(tsNode)
	node.Raw = tsNode.Content(b.source)

	// Created type
	if typeNode := b.getChildByFieldName(tsNode, "type"); typeNode != nil {
		node.Name = typeNode.Content(b.source)
	}

	// Extract arguments
	if argsNode := b.getChildByFieldName(tsNode, "arguments"); argsNode != nil {
		for i := 0; i < int(argsNode.ChildCount()); i++ {
			child := argsNode.Child(i)
			if child != nil && !b.isTrivia(child) && child.Type() != "(" && child.Type() != ")" && child.Type() != "," {
				argNode := b.buildNode(child)
				if argNode != nil {
					node.Arguments = append(node.Arguments, argNode)
				}
			}
		}
	}

	return node
}

// buildBinaryExpression builds a binary expression node
func (b *ASTBuilder) buildBinaryExpression(tsNode *sitter.Node) *Node {
	node := NewNode(NodeBinaryExpression)
	node.Location = b.getLocation(tsNode)

	// Extract left operand
	if leftNode := b.getChildByFieldName(tsNode, "left"); leftNode != nil {
		node.Left = b.buildNode(leftNode)
	}

	// Extract operator
	if opNode := b.getChildByFieldName(tsNode, "operator"); opNode != nil {
		node.Operator = opNode.Content(b.source)
	} else {
		// Try to find operator as a child
		for i := 0; i < int(tsNode.ChildCount()); i++ {
			child := tsNode.Child(i)
			if child != nil && b.isOperator(child.Type()) {
				node.Operator = child.Content(b.source)
				break
			}
		}
	}

	// Extract right operand
	if rightNode := b.getChildByFieldName(tsNode, "right"); rightNode != nil {
		node.Right = b.buildNode(rightNode)
	}

	return node
}

// buildInstanceofExpression builds an instanceof check as a binary node
func (b *ASTBuilder) buildInstanceofExpression(tsNode *sitter.Node) *Node {
	node := NewNode(NodeBinaryExpression)
	node.Location = b.getLocation(tsNode)
	node.Operator = "instanceof"

	if leftNode := b.getChildByFieldName(tsNode, "left"); leftNode != nil {
		node.Left = b.buildNode(leftNode)
	}
	if rightNode := b.getChildByFieldName(tsNode, "right"); rightNode != nil {
		node.Right = b.buildNode(rightNode)
	}

	return node
}

// buildUnaryExpression builds a unary expression node
func (b *ASTBuilder) buildUnaryExpression(tsNode *sitter.Node) *Node {
	node := NewNode(NodeUnaryExpression)
	node.Location = b.getLocation(tsNode)

	// Extract operator
	if opNode := b.getChildByFieldName(tsNode, "operator"); opNode != nil {
		node.Operator = opNode.Content(b.source)
	}

	// Extract operand
	if operandNode := b.getChildByFieldName(tsNode, "operand"); operandNode != nil {
		node.Argument = b.buildNode(operandNode)
	}

	return node
}

// buildUpdateExpression builds an update expression node (++, --)
func (b *ASTBuilder) buildUpdateExpression(tsNode *sitter.Node) *Node {
	node := NewNode(NodeUpdateExpression)
	node.Location = b.getLocation(tsNode)

	// The grammar gives no field names here
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		if t := child.Type(); t == "++" || t == "--" {
			node.Operator = t
		} else if !b.isTrivia(child) {
			node.Argument = b.buildNode(child)
		}
	}

	return node
}

// buildAssignmentExpression builds an assignment expression node
func (b *ASTBuilder) buildAssignmentExpression(tsNode *sitter.Node) *Node {
	node := NewNode(NodeAssignmentExpression)
	node.Location = b.getLocation(tsNode)

	// Extract left side
	if leftNode := b.getChildByFieldName(tsNode, "left"); leftNode != nil {
		node.Left = b.buildNode(leftNode)
	}

	// Extract operator
	if opNode := b.getChildByFieldName(tsNode, "operator"); opNode != nil {
		node.Operator = opNode.Content(b.source)
	}

	// Extract right side
	if rightNode := b.getChildByFieldName(tsNode, "right"); rightNode != nil {
		node.Right = b.buildNode(rightNode)
	}

	return node
}

// buildTernaryExpression builds a ternary expression node
func (b *ASTBuilder) buildTernaryExpression(tsNode *sitter.Node) *Node {
	node := NewNode(NodeTernaryExpression)
	node.Location = b.getLocation(tsNode)

	// Extract condition
	if condNode := b.getChildByFieldName(tsNode, "condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
	}

	// Extract consequence
	if consNode := b.getChildByFieldName(tsNode, "consequence"); consNode != nil {
		node.Consequent = b.buildNode(consNode)
	}

	// Extract alternative
	if altNode := b.getChildByFieldName(tsNode, "alternative"); altNode != nil {
		node.Alternate = b.buildNode(altNode)
	}

	return node
}

// buildCastExpression builds a cast expression node
func (b *ASTBuilder) buildCastExpression(tsNode *sitter.Node) *Node {
	node := NewNode(NodeCastExpression)
	node.Location = b.getLocation(tsNode)

	// Target type
	if typeNode := b.getChildByFieldName(tsNode, "type"); typeNode != nil {
		node.Name = typeNode.Content(b.source)
	}

	// Cast value
	if valueNode := b.getChildByFieldName(tsNode, "value"); valueNode != nil {
		node.Argument = b.buildNode(valueNode)
	}

	return node
}

// buildParenthesizedExpression unwraps to the inner expression
func (b *ASTBuilder) buildParenthesizedExpression(tsNode *sitter.Node) *Node {
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && !b.isTrivia(child) && child.Type() != "(" && child.Type() != ")" {
			return b.buildNode(child)
		}
	}
	return b.buildGenericNode(tsNode)
}

// buildIdentifier builds an identifier node
func (b *ASTBuilder) buildIdentifier(tsNode *sitter.Node) *Node {
	node := NewNode(NodeIdentifier)
	node.Location = b.getLocation(tsNode)
	node.Name = tsNode.Content(b.source)
	return node
}

// buildLiteral builds a literal node
func (b *ASTBuilder) buildLiteral(tsNode *sitter.Node) *Node {
	node := NewNode(NodeLiteral)
	node.Location = b.getLocation(tsNode)
	node.Raw = tsNode.Content(b.source)

	// Set the value based on type
	switch tsNode.Type() {
	case "string_literal", "character_literal":
		node.Type = NodeStringLiteral
	case "decimal_integer_literal", "hex_integer_literal",
		"octal_integer_literal", "binary_integer_literal",
		"decimal_floating_point_literal", "hex_floating_point_literal":
		node.Type = NodeNumberLiteral
	case "true", "false":
		node.Type = NodeBooleanLiteral
	case "null_literal":
		node.Type = NodeNullLiteral
	}

	return node
}

// buildQueryExpression substitutes a query node for the placeholder
// literal written by normalization. Location and raw text describe the
// original bracketed block, not the placeholder.
func (b *ASTBuilder) buildQueryExpression(span *QuerySpan) *Node {
	node := NewNode(NodeQueryExpression)
	if span.IsSearch {
		node.Type = NodeSearchExpression
	}

	node.Location = Location{
		File:      b.filename,
		StartLine: span.StartLine,
		StartCol:  span.StartCol,
		EndLine:   span.EndLine,
		EndCol:    span.EndCol,
	}
	node.Raw = string(b.source[span.StartByte:span.EndByte])

	if !span.IsSearch {
		node.Query = ParseSOQL(span.Text, span.StartLine)
	}

	return node
}

// buildBlockStatement builds a block statement node
func (b *ASTBuilder) buildBlockStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeBlockStatement)
	node.Location = b.getLocation(tsNode)

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && !b.isTrivia(child) && child.Type() != "{" && child.Type() != "}" {
			childNode := b.buildNode(child)
			if childNode != nil {
				node.Body = append(node.Body, childNode)
			}
		}
	}

	return node
}

// buildGenericNode builds a generic node for unknown types. This also
// carries error-recovery subtrees, so analysis keeps working on source
// the grammar only partially understood.
func (b *ASTBuilder) buildGenericNode(tsNode *sitter.Node) *Node {
	node := NewNode(NodeType(tsNode.Type()))
	node.Location = b.getLocation(tsNode)

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && !b.isTrivia(child) {
			childNode := b.buildNode(child)
			if childNode != nil {
				node.AddChild(childNode)
			}
		}
	}

	return node
}

// buildMemberList builds the members of a class, interface, or enum body
func (b *ASTBuilder) buildMemberList(bodyNode *sitter.Node) []*Node {
	var members []*Node

	for i := 0; i < int(bodyNode.ChildCount()); i++ {
		child := bodyNode.Child(i)
		if child != nil && !b.isTrivia(child) &&
			child.Type() != "{" && child.Type() != "}" && child.Type() != ";" && child.Type() != "," {
			memberNode := b.buildNode(child)
			if memberNode != nil {
				members = append(members, memberNode)
			}
		}
	}

	return members
}

// buildParameters builds parameter list from formal_parameters node
func (b *ASTBuilder) buildParameters(tsNode *sitter.Node) []*Node {
	var params []*Node

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && !b.isTrivia(child) && child.Type() != "(" && child.Type() != ")" && child.Type() != "," {
			paramNode := b.buildNode(child)
			if paramNode != nil {
				params = append(params, paramNode)
			}
		}
	}

	return params
}

// Helper methods

// getLocation extracts location information from a tree-sitter node
func (b *ASTBuilder) getLocation(tsNode *sitter.Node) Location {
	return Location{
		File:      b.filename,
		StartLine: int(tsNode.StartPoint().Row) + 1,
		StartCol:  int(tsNode.StartPoint().Column),
		EndLine:   int(tsNode.EndPoint().Row) + 1,
		EndCol:    int(tsNode.EndPoint().Column),
	}
}

// getChildByFieldName gets a child node by field name
func (b *ASTBuilder) getChildByFieldName(tsNode *sitter.Node, fieldName string) *sitter.Node {
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && tsNode.FieldNameForChild(i) == fieldName {
			return child
		}
	}
	return nil
}

// isTrivia checks if a node is trivia (whitespace, comments, etc.)
func (b *ASTBuilder) isTrivia(tsNode *sitter.Node) bool {
	nodeType := tsNode.Type()
	return nodeType == "comment" ||
		nodeType == "line_comment" ||
		nodeType == "block_comment" ||
		nodeType == ""
}

// isOperator checks if a node type is an operator
func (b *ASTBuilder) isOperator(nodeType string) bool {
	operators := map[string]bool{
		"+": true, "-": true, "*": true, "/": true, "%": true,
		"==": true, "!=": true,
		"<": true, ">": true, "<=": true, ">=": true,
		"&&": true, "||": true,
		"&": true, "|": true, "^": true, "~": true,
		"<<": true, ">>": true, ">>>": true,
		"instanceof": true,
	}
	return operators[nodeType]
}
