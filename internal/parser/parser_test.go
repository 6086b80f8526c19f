package parser

import (
	"testing"

	"github.com/belijzajac/wisnialang/internal/ast"
	"github.com/belijzajac/wisnialang/internal/lexer"
	"github.com/belijzajac/wisnialang/internal/token"
)

func parseSource(t *testing.T, src string) *ast.Root {
	t.Helper()
	toks, err := lexer.Tokenize("test.wsn", []byte(src))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	root, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return root
}

func TestParseEmptyMainFunction(t *testing.T) {
	root := parseSource(t, "fn main() {}")
	if len(root.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(root.Functions))
	}
	fn := root.Functions[0]
	if !fn.IsMain() {
		t.Error("expected main to be recognised as the entry point")
	}
	if fn.ReturnType != token.KW_VOID {
		t.Errorf("got return type %v, want KW_VOID", fn.ReturnType)
	}
}

func TestParseFunctionWithParamsAndReturnType(t *testing.T) {
	root := parseSource(t, "fn add(int a, int b) -> int { return a; }")
	fn := root.Functions[0]
	if len(fn.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(fn.Params))
	}
	if fn.Params[0].Type != token.KW_INT || fn.Params[0].Name.Name() != "a" {
		t.Errorf("param 0 = %+v", fn.Params[0])
	}
	if fn.ReturnType != token.KW_INT {
		t.Errorf("got return type %v, want KW_INT", fn.ReturnType)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(fn.Body.Stmts))
	}
	if _, ok := fn.Body.Stmts[0].(*ast.ReturnStmt); !ok {
		t.Errorf("got %T, want *ast.ReturnStmt", fn.Body.Stmts[0])
	}
}

func TestParseVarDeclAndAssign(t *testing.T) {
	root := parseSource(t, "fn main() { int x = 1; x = 2; }")
	stmts := root.Functions[0].Body.Stmts
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	decl, ok := stmts[0].(*ast.VarDeclStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.VarDeclStmt", stmts[0])
	}
	if decl.Name.Name() != "x" || decl.Type != token.KW_INT {
		t.Errorf("decl = %+v", decl)
	}
	assign, ok := stmts[1].(*ast.VarAssignStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.VarAssignStmt", stmts[1])
	}
	if assign.Name.Name() != "x" {
		t.Errorf("assign.Name = %q, want x", assign.Name.Name())
	}
}

func TestParseIfElseChain(t *testing.T) {
	root := parseSource(t, `fn main() {
		if (1 == 1) {
			print("a");
		} elif (1 == 2) {
			print("b");
		} else {
			print("c");
		}
	}`)
	ifStmt, ok := root.Functions[0].Body.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.IfStmt", root.Functions[0].Body.Stmts[0])
	}
	if len(ifStmt.ElifClauses) != 1 {
		t.Fatalf("got %d elif clauses, want 1", len(ifStmt.ElifClauses))
	}
	if ifStmt.Else == nil {
		t.Error("expected an else block")
	}
}

func TestParseWhileLoop(t *testing.T) {
	root := parseSource(t, "fn main() { while (1 == 1) { print(1); } }")
	loop, ok := root.Functions[0].Body.Stmts[0].(*ast.WhileLoop)
	if !ok {
		t.Fatalf("got %T, want *ast.WhileLoop", root.Functions[0].Body.Stmts[0])
	}
	if len(loop.Body.Stmts) != 1 {
		t.Errorf("got %d body statements, want 1", len(loop.Body.Stmts))
	}
}

func TestParseBinaryExpressionPrecedence(t *testing.T) {
	root := parseSource(t, "fn main() { int x = 1 + 2 * 3; }")
	decl := root.Functions[0].Body.Stmts[0].(*ast.VarDeclStmt)
	bin, ok := decl.Init.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.BinaryExpr", decl.Init)
	}
	if bin.Op != token.OP_PLUS {
		t.Fatalf("top-level op = %v, want OP_PLUS (multiplication should bind tighter)", bin.Op)
	}
	if _, ok := bin.RHS.(*ast.BinaryExpr); !ok {
		t.Errorf("RHS = %T, want nested *ast.BinaryExpr for 2*3", bin.RHS)
	}
}

func TestParseFunctionCallAndQualifiedName(t *testing.T) {
	root := parseSource(t, "fn main() { foo(1, 2); }")
	exprStmt := root.Functions[0].Body.Stmts[0].(*ast.ExprStmt)
	call, ok := exprStmt.Expr.(*ast.FnCallExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.FnCallExpr", exprStmt.Expr)
	}
	if call.QualifiedName() != "foo" {
		t.Errorf("QualifiedName() = %q, want foo", call.QualifiedName())
	}
	if len(call.Args) != 2 {
		t.Errorf("got %d args, want 2", len(call.Args))
	}
}

func TestParseMalformedGlobalConstructErrors(t *testing.T) {
	toks, err := lexer.Tokenize("test.wsn", []byte("123"))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if _, err := Parse(toks); err == nil {
		t.Fatal("expected a parse error for a bare literal at global scope")
	}
}
