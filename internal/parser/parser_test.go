package parser

import (
	"os"
	"testing"
)

func TestParseSimpleClass(t *testing.T) {
	code := `public class Greeter { public String greet() { return 'hello'; } }`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if ast == nil {
		t.Fatal("AST is nil")
	}

	if ast.Type != NodeProgram {
		t.Errorf("Expected NodeProgram, got %s", ast.Type)
	}

	if len(ast.Body) == 0 {
		t.Fatal("Expected at least one declaration in body")
	}

	classNode := ast.Body[0]
	if classNode.Type != NodeClass {
		t.Errorf("Expected NodeClass, got %s", classNode.Type)
	}

	if classNode.Name != "Greeter" {
		t.Errorf("Expected class name 'Greeter', got '%s'", classNode.Name)
	}

	// Check the method inside the class body
	if len(classNode.Body) == 0 {
		t.Fatal("Class body is empty")
	}

	methodNode := classNode.Body[0]
	if methodNode.Type != NodeMethod {
		t.Errorf("Expected NodeMethod, got %s", methodNode.Type)
	}
	if methodNode.Name != "greet" {
		t.Errorf("Expected method name 'greet', got '%s'", methodNode.Name)
	}
}

func TestParseIfStatement(t *testing.T) {
	code := `
	public class Greeter {
		public String greet(String name) {
			if (name != null) {
				return 'Hello, ' + name;
			} else {
				return 'Hello, stranger';
			}
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if ast == nil || len(ast.Body) == 0 {
		t.Fatal("AST is nil or empty")
	}

	// Find if statement in method body
	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeIfStatement {
			found = true
			if n.Test == nil {
				t.Error("Expected if statement to have test condition")
			}
			if n.Consequent == nil {
				t.Error("Expected if statement to have consequent")
			}
			if n.Alternate == nil {
				t.Error("Expected if statement to have alternate")
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find if statement in method body")
	}
}

func TestParseMethodInvocation(t *testing.T) {
	code := `
	public class Describer {
		public void run() {
			Schema.getGlobalDescribe();
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeMethodInvocation && n.Name == "getGlobalDescribe" {
			found = true
			if n.Object == nil {
				t.Fatal("Expected invocation to have a receiver")
			}
			if n.Object.Name != "Schema" {
				t.Errorf("Expected receiver 'Schema', got '%s'", n.Object.Name)
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find getGlobalDescribe invocation")
	}
}

func TestParseChainedInvocation(t *testing.T) {
	code := `
	public class Describer {
		public void run() {
			Object o = Schema.getGlobalDescribe().get('Account');
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// The outer call is get(); its receiver is the inner call
	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeMethodInvocation && n.Name == "get" {
			found = true
			if n.Object == nil || n.Object.Type != NodeMethodInvocation {
				t.Error("Expected receiver of get() to be an invocation")
			} else if n.Object.Name != "getGlobalDescribe" {
				t.Errorf("Expected inner invocation 'getGlobalDescribe', got '%s'", n.Object.Name)
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find chained invocation")
	}
}

func TestParseForLoop(t *testing.T) {
	code := `
	public class Looper {
		public void run() {
			for (Integer i = 0; i < 10; i++) {
				System.debug(i);
			}
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeForStatement {
			found = true
			if n.Init == nil {
				t.Error("Expected for loop to have init")
			}
			if n.Test == nil {
				t.Error("Expected for loop to have test")
			}
			if n.Update == nil {
				t.Error("Expected for loop to have update")
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find for statement")
	}
}

func TestParseEnhancedForLoop(t *testing.T) {
	code := `
	public class Looper {
		public void run(List<Account> accounts) {
			for (Account acct : accounts) {
				System.debug(acct);
			}
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeEnhancedForStatement {
			found = true
			if n.Name != "acct" {
				t.Errorf("Expected loop variable 'acct', got '%s'", n.Name)
			}
			if n.Test == nil {
				t.Error("Expected enhanced for to have iterated value")
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find enhanced for statement")
	}
}

func TestParseWhileLoop(t *testing.T) {
	code := `
	public class Looper {
		public void run() {
			Integer i = 0;
			while (i < 10) {
				i++;
			}
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeWhileStatement {
			found = true
			if n.Test == nil {
				t.Error("Expected while loop to have test condition")
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find while statement")
	}
}

func TestParseDoWhileLoop(t *testing.T) {
	code := `
	public class Looper {
		public void run() {
			Integer i = 0;
			do {
				i++;
			} while (i < 10);
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeDoWhileStatement {
			found = true
			if n.Test == nil {
				t.Error("Expected do-while loop to have test condition")
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find do-while statement")
	}
}

func TestParseTryCatch(t *testing.T) {
	code := `
	public class Guard {
		public void run() {
			try {
				throw new DmlException();
			} catch (Exception e) {
				System.debug(e);
			} finally {
				cleanup();
			}
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeTryStatement {
			found = true
			if len(n.Handlers) != 1 {
				t.Errorf("Expected 1 catch clause, got %d", len(n.Handlers))
			}
			if n.Finalizer == nil {
				t.Error("Expected try statement to have finalizer (finally)")
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find try statement")
	}
}

func TestParseInlineQuery(t *testing.T) {
	code := `
	public class QueryHolder {
		public List<Account> fetch() {
			return [SELECT Id, Name FROM Account];
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeQueryExpression {
			found = true
			if n.Query == nil {
				t.Fatal("Expected query node to carry parsed query")
			}
			if n.Query.FromObject != "Account" {
				t.Errorf("Expected FROM object 'Account', got '%s'", n.Query.FromObject)
			}
			if len(n.Query.SelectFields) != 2 {
				t.Errorf("Expected 2 selected fields, got %d", len(n.Query.SelectFields))
			}
			if n.Query.HasWhere {
				t.Error("Query should not have WHERE clause")
			}
			if n.Query.HasLimit {
				t.Error("Query should not have LIMIT clause")
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find inline query expression")
	}
}

func TestParseInlineQuery_Location(t *testing.T) {
	code := `public class Q {
	void run() {
		List<Account> rows = [
			SELECT Id
			FROM Account
		];
		System.debug(rows);
	}
}`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var queryLine, debugLine int
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeQueryExpression {
			queryLine = n.Location.StartLine
		}
		if n.Type == NodeMethodInvocation && n.Name == "debug" {
			debugLine = n.Location.StartLine
		}
		return true
	})

	// The query starts at the opening bracket on line 3; masking the
	// block must not shift anything after it
	if queryLine != 3 {
		t.Errorf("Expected query at line 3, got %d", queryLine)
	}
	if debugLine != 7 {
		t.Errorf("Expected debug call at line 7, got %d", debugLine)
	}
}

func TestParseQueryInForEach(t *testing.T) {
	code := `
	public class Looper {
		public void run() {
			for (Account acct : [SELECT Id FROM Account LIMIT 10]) {
				System.debug(acct);
			}
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeEnhancedForStatement {
			if n.Test != nil && n.Test.Type == NodeQueryExpression {
				found = true
				if !n.Test.Query.HasLimit {
					t.Error("Expected query to have LIMIT clause")
				}
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find query as the iterated value")
	}
}

func TestParseSearchQuery(t *testing.T) {
	code := `
	public class Finder {
		public void run() {
			List<List<SObject>> results = [FIND 'acme' IN ALL FIELDS RETURNING Account(Id)];
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeSearchExpression {
			found = true
			if n.Query != nil {
				t.Error("Search expression should not carry a parsed query")
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find search expression")
	}
}

func TestParseGlobalClass(t *testing.T) {
	code := `
	global class Api {
		global static void run() {
			System.debug('go');
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeClass {
			found = true
			if n.Name != "Api" {
				t.Errorf("Expected class name 'Api', got '%s'", n.Name)
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find class declaration")
	}
}

func TestParseSharingModifiers(t *testing.T) {
	codes := []string{
		`public with sharing class Svc { void run() {} }`,
		`public without sharing class Svc { void run() {} }`,
		`public inherited sharing class Svc { void run() {} }`,
	}

	for _, code := range codes {
		parser := NewParser()

		ast, err := parser.ParseString(code)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}

		found := false
		ast.Walk(func(n *Node) bool {
			if n.Type == NodeClass && n.Name == "Svc" {
				found = true
				return false
			}
			return true
		})

		if !found {
			t.Errorf("Expected to find class 'Svc' in %q", code)
		}
		parser.Close()
	}
}

func TestParseTrigger(t *testing.T) {
	code := `trigger AccountTrigger on Account (before insert, after update) {
	System.debug('fired');
}`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	foundUnit := false
	foundCall := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeClass && n.Name == "AccountTrigger" {
			foundUnit = true
		}
		if n.Type == NodeMethodInvocation && n.Name == "debug" {
			foundCall = true
		}
		return true
	})

	if !foundUnit {
		t.Error("Expected trigger to surface as a declaration named AccountTrigger")
	}
	if !foundCall {
		t.Error("Expected to find debug call inside trigger body")
	}
}

func TestParseWalkVisitsDeclarationsOnce(t *testing.T) {
	code := `public class Once {
	public void run() {
		Schema.getGlobalDescribe();
	}
}`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	classVisits := 0
	callVisits := 0
	ast.Walk(func(n *Node) bool {
		switch n.Type {
		case NodeClass:
			classVisits++
		case NodeMethodInvocation:
			callVisits++
		}
		return true
	})

	if classVisits != 1 {
		t.Errorf("Expected the class declaration to be visited once, got %d visits", classVisits)
	}
	if callVisits != 1 {
		t.Errorf("Expected the invocation to be visited once, got %d visits", callVisits)
	}
}

func TestParseConstructorBody(t *testing.T) {
	code := `public class Built {
	public Built() {
		System.debug('ctor');
	}
}`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var ctor *Node
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeConstructor {
			ctor = n
		}
		return true
	})

	if ctor == nil {
		t.Fatal("Expected to find constructor declaration")
	}
	if ctor.Name != "Built" {
		t.Errorf("Expected constructor name 'Built', got '%s'", ctor.Name)
	}
	if len(ctor.Body) == 0 {
		t.Fatal("Expected constructor body statements to survive")
	}

	foundCall := false
	ctor.Walk(func(n *Node) bool {
		if n.Type == NodeMethodInvocation && n.Name == "debug" {
			foundCall = true
		}
		return true
	})
	if !foundCall {
		t.Error("Expected to find debug call inside constructor body")
	}
}

func TestParseStringLiteral(t *testing.T) {
	code := `
	public class Holder {
		public void run() {
			String s = 'hello world';
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeStringLiteral {
			found = true
			// Raw text comes from the original source, single quotes intact
			if n.Raw != "'hello world'" {
				t.Errorf("Expected raw literal \"'hello world'\", got %q", n.Raw)
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find string literal")
	}
}

func TestParseSafeNavigation(t *testing.T) {
	code := `
	public class Holder {
		public String name(Account acct) {
			return acct?.getName();
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeMethodInvocation && n.Name == "getName" {
			found = true
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find invocation behind safe navigation")
	}
}

func TestParseConstructor(t *testing.T) {
	code := `
	public class Person {
		private String name;

		public Person(String name) {
			this.name = name;
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeConstructor {
			found = true
			if n.Name != "Person" {
				t.Errorf("Expected constructor name 'Person', got '%s'", n.Name)
			}
			if len(n.Params) != 1 {
				t.Errorf("Expected 1 parameter, got %d", len(n.Params))
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find constructor declaration")
	}
}

func TestParseFieldDeclaration(t *testing.T) {
	code := `
	public class Holder {
		private Integer count = 0;
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeField {
			found = true
			if len(n.Declarations) != 1 {
				t.Fatalf("Expected 1 declarator, got %d", len(n.Declarations))
			}
			decl := n.Declarations[0]
			if decl.Name != "count" {
				t.Errorf("Expected declarator name 'count', got '%s'", decl.Name)
			}
			if decl.Init == nil {
				t.Error("Expected declarator to have initializer")
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find field declaration")
	}
}

func TestParseTernaryOperator(t *testing.T) {
	code := `
	public class Holder {
		public String mood(Integer x) {
			return x > 0 ? 'positive' : 'non-positive';
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeTernaryExpression {
			found = true
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find ternary expression")
	}
}

func TestParseEnum(t *testing.T) {
	code := `
	public enum Season { WINTER, SPRING, SUMMER, FALL }
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeEnum {
			found = true
			if n.Name != "Season" {
				t.Errorf("Expected enum name 'Season', got '%s'", n.Name)
			}
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find enum declaration")
	}
}

func TestParsePropertyAccessors(t *testing.T) {
	code := `
	public class Holder {
		public Integer count { get; set; }

		public void bump() {
			count++;
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// Accessor blocks are not Java syntax; recovery must keep the rest
	// of the class reachable
	foundClass := false
	foundMethod := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeClass && n.Name == "Holder" {
			foundClass = true
		}
		if n.Type == NodeMethod && n.Name == "bump" {
			foundMethod = true
		}
		return true
	})

	if !foundClass {
		t.Error("Expected to find class despite property accessors")
	}
	if !foundMethod {
		t.Log("Note: method after property accessors may be absorbed by error recovery")
	}
}

func TestParseDmlStatement(t *testing.T) {
	code := `
	public class Writer {
		public void save(List<Account> accounts) {
			insert accounts;
			System.debug('saved');
		}
	}
	`

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// DML keywords are not Java; the statement degrades but siblings
	// must survive recovery
	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeMethodInvocation && n.Name == "debug" {
			found = true
			return false
		}
		return true
	})

	if !found {
		t.Error("Expected to find debug call after DML statement")
	}
}

func TestParseFile(t *testing.T) {
	content, err := os.ReadFile("../../testdata/apex/InventoryService.cls")
	if err != nil {
		t.Skipf("Skipping file test: %v", err)
		return
	}

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseFile("InventoryService.cls", content)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if ast == nil {
		t.Fatal("AST is nil")
	}

	methodCount := 0
	queryCount := 0
	ast.Walk(func(n *Node) bool {
		if n.IsCallable() {
			methodCount++
		}
		if n.Type == NodeQueryExpression {
			queryCount++
		}
		return true
	})

	if methodCount < 3 {
		t.Errorf("Expected at least 3 methods, found %d", methodCount)
	}
	if queryCount < 2 {
		t.Errorf("Expected at least 2 inline queries, found %d", queryCount)
	}
}

func TestParser_ParseString_Empty(t *testing.T) {
	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString("")
	if err != nil {
		t.Fatalf("Parsing empty string failed: %v", err)
	}
	if ast == nil {
		t.Error("AST should not be nil for empty input")
	}
}

func TestParser_Parse_ByteSlice(t *testing.T) {
	code := []byte(`public class C { }`)
	parser := NewParser()
	defer parser.Close()

	ast, err := parser.Parse(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if ast == nil {
		t.Fatal("AST should not be nil")
	}
}

func TestParseApexFile(t *testing.T) {
	code := []byte(`public class C { void run() {} }`)

	ast, err := ParseApexFile("C.cls", code)
	if err != nil {
		t.Fatalf("ParseApexFile failed: %v", err)
	}
	if ast == nil {
		t.Fatal("AST should not be nil")
	}

	if len(ast.Body) == 0 || ast.Body[0].Name != "C" {
		t.Error("Expected to find class 'C'")
	}
}

// AST Node tests

func TestNewNode(t *testing.T) {
	node := NewNode(NodeMethod)

	if node.Type != NodeMethod {
		t.Errorf("Expected NodeMethod, got %s", node.Type)
	}
	if len(node.Children) != 0 {
		t.Error("New node should have empty children")
	}
	if len(node.Params) != 0 {
		t.Error("New node should have empty params")
	}
	if len(node.Body) != 0 {
		t.Error("New node should have empty body")
	}
}

func TestNode_AddChild(t *testing.T) {
	parent := NewNode(NodeMethod)
	child := NewNode(NodeExpressionStatement)

	parent.AddChild(child)

	if len(parent.Children) != 1 {
		t.Error("Parent should have 1 child")
	}
	if child.Parent != parent {
		t.Error("Child's parent should be set")
	}

	// Test adding nil child
	parent.AddChild(nil)
	if len(parent.Children) != 1 {
		t.Error("Adding nil child should not increase children count")
	}
}

func TestNode_Walk_Nil(t *testing.T) {
	var node *Node
	// Should not panic
	node.Walk(func(n *Node) bool {
		return true
	})
}

func TestNode_Walk_StopTraversal(t *testing.T) {
	parent := NewNode(NodeProgram)
	child1 := NewNode(NodeMethod)
	child1.Name = "first"
	child2 := NewNode(NodeMethod)
	child2.Name = "second"

	parent.AddChild(child1)
	parent.AddChild(child2)

	stopVisited := false
	parent.Walk(func(n *Node) bool {
		if n.Name == "first" {
			stopVisited = true
			return false // Stop traversal of this branch
		}
		return true
	})

	if !stopVisited {
		t.Error("first method should have been visited")
	}
}

func TestNode_String(t *testing.T) {
	node := NewNode(NodeMethod)
	node.Name = "doWork"
	node.Location = Location{File: "Worker.cls", StartLine: 10, StartCol: 5}

	str := node.String()
	if str != "MethodDeclaration(doWork) at Worker.cls:10:5" {
		t.Errorf("Unexpected String output: %s", str)
	}

	// Without name
	node2 := NewNode(NodeIfStatement)
	node2.Location = Location{File: "Worker.cls", StartLine: 20, StartCol: 1}
	str2 := node2.String()
	if str2 != "IfStatement at Worker.cls:20:1" {
		t.Errorf("Unexpected String output: %s", str2)
	}
}

func TestNode_IsLoop(t *testing.T) {
	loops := []NodeType{
		NodeForStatement, NodeEnhancedForStatement,
		NodeWhileStatement, NodeDoWhileStatement,
	}

	for _, nt := range loops {
		node := &Node{Type: nt}
		if !node.IsLoop() {
			t.Errorf("%s should be a loop", nt)
		}
	}

	nonLoop := &Node{Type: NodeIfStatement}
	if nonLoop.IsLoop() {
		t.Error("IfStatement should not be a loop")
	}
}

func TestNode_IsCallable(t *testing.T) {
	callables := []NodeType{NodeMethod, NodeConstructor}

	for _, nt := range callables {
		node := &Node{Type: nt}
		if !node.IsCallable() {
			t.Errorf("%s should be callable", nt)
		}
	}

	nonCallable := &Node{Type: NodeClass}
	if nonCallable.IsCallable() {
		t.Error("Class should not be callable")
	}
}

func TestNode_IsStatement(t *testing.T) {
	statements := []NodeType{
		NodeIfStatement, NodeSwitchStatement,
		NodeForStatement, NodeEnhancedForStatement,
		NodeWhileStatement, NodeDoWhileStatement,
		NodeTryStatement, NodeReturnStatement, NodeThrowStatement,
		NodeBreakStatement, NodeContinueStatement,
		NodeLocalVariableDeclaration, NodeExpressionStatement, NodeBlockStatement,
	}

	for _, nt := range statements {
		node := &Node{Type: nt}
		if !node.IsStatement() {
			t.Errorf("%s should be a statement", nt)
		}
	}

	// Non-statement
	nonStmt := &Node{Type: NodeIdentifier}
	if nonStmt.IsStatement() {
		t.Error("Identifier should not be a statement")
	}
}

func TestNode_IsExpression(t *testing.T) {
	expressions := []NodeType{
		NodeMethodInvocation, NodeFieldAccess, NodeObjectCreation,
		NodeBinaryExpression, NodeUnaryExpression, NodeUpdateExpression,
		NodeAssignmentExpression, NodeTernaryExpression, NodeCastExpression,
		NodeArrayAccess, NodeQueryExpression, NodeSearchExpression,
		NodeIdentifier, NodeLiteral, NodeStringLiteral,
	}

	for _, nt := range expressions {
		node := &Node{Type: nt}
		if !node.IsExpression() {
			t.Errorf("%s should be an expression", nt)
		}
	}

	// Non-expression
	nonExpr := &Node{Type: NodeIfStatement}
	if nonExpr.IsExpression() {
		t.Error("IfStatement should not be an expression")
	}
}

func TestLocation_String(t *testing.T) {
	loc := Location{
		File:      "classes/InventoryService.cls",
		StartLine: 42,
		StartCol:  10,
	}

	str := loc.String()
	if str != "classes/InventoryService.cls:42:10" {
		t.Errorf("Expected 'classes/InventoryService.cls:42:10', got '%s'", str)
	}
}
