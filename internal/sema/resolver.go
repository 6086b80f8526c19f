// Package sema resolves names and checks the handful of static properties
// spec.md §7 assigns to SemanticError: undefined name, missing main,
// duplicate function definitions, a non-void function with no return on
// some path, and call-arity mismatches. It also tags every identifier
// reference with the concrete type its declaration carries, so internal/ir
// never has to re-derive a variable's type (spec §4.2's input contract:
// "an AST whose identifier tokens have been tagged with concrete types").
package sema

import (
	"github.com/belijzajac/wisnialang/internal/ast"
	"github.com/belijzajac/wisnialang/internal/token"
	"github.com/belijzajac/wisnialang/internal/wisniaerr"
)

// scope is a single lexical block's symbol table, chained to its parent.
type scope struct {
	parent *scope
	vars   map[string]token.TType
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]token.TType)}
}

func (s *scope) define(name string, t token.TType) { s.vars[name] = t }

func (s *scope) lookup(name string) (token.TType, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return token.INVALID, false
}

// FnSig is a resolved function's arity/return signature.
type FnSig struct {
	ParamTypes []token.TType
	ReturnType token.TType
	Def        *ast.FnDef
}

// Resolver walks a Root once, building the function table and annotating
// every identifier reference in place.
type Resolver struct {
	ast.BaseVisitor
	funcs map[string]*FnSig
	cur   *scope
	err   error
}

func New() *Resolver {
	return &Resolver{funcs: make(map[string]*FnSig)}
}

// Resolve runs semantic analysis on root and returns the function table the
// IR lowering stage needs for call-site type/arity information.
func Resolve(root *ast.Root) (map[string]*FnSig, error) {
	r := New()
	if err := r.collectSignatures(root); err != nil {
		return nil, err
	}
	if _, ok := r.funcs["main"]; !ok {
		return nil, &wisniaerr.SemanticError{Msg: "program has no main function"}
	}
	for _, fn := range root.Functions {
		if err := r.resolveFn(fn); err != nil {
			return nil, err
		}
	}
	for _, cls := range root.Classes {
		for _, m := range cls.Methods {
			if err := r.resolveFn(m); err != nil {
				return nil, err
			}
		}
	}
	return r.funcs, nil
}

func fnKey(fn *ast.FnDef) string {
	if fn.ClassName == "" {
		return fn.Name.Name()
	}
	return fn.ClassName + "::" + fn.Name.Name()
}

func (r *Resolver) collectSignatures(root *ast.Root) error {
	for _, fn := range root.Functions {
		key := fnKey(fn)
		if _, dup := r.funcs[key]; dup {
			return &wisniaerr.SemanticError{Msg: "multiple definitions of function " + key, Pos: fn.Pos}
		}
		r.funcs[key] = signatureOf(fn)
	}
	for _, cls := range root.Classes {
		for _, m := range cls.Methods {
			key := fnKey(m)
			if _, dup := r.funcs[key]; dup {
				return &wisniaerr.SemanticError{Msg: "multiple definitions of method " + key, Pos: m.Pos}
			}
			r.funcs[key] = signatureOf(m)
		}
	}
	return nil
}

func signatureOf(fn *ast.FnDef) *FnSig {
	sig := &FnSig{ReturnType: fn.ReturnType, Def: fn}
	for _, p := range fn.Params {
		sig.ParamTypes = append(sig.ParamTypes, p.Type)
	}
	return sig
}

func (r *Resolver) resolveFn(fn *ast.FnDef) error {
	r.cur = newScope(nil)
	for _, p := range fn.Params {
		r.cur.define(p.Name.Name(), p.Type)
		p.Name.Type = identTypeFor(p.Type)
	}
	if err := r.resolveBlock(fn.Body); err != nil {
		return err
	}
	if !fn.IsMain() && fn.ReturnType != token.KW_VOID && !blockReturns(fn.Body) {
		return &wisniaerr.SemanticError{
			Msg: "non-void function " + fnKey(fn) + " does not return on all paths",
			Pos: fn.Pos,
		}
	}
	return nil
}

// blockReturns approximates "returns on every path" the way the original
// resolver does: true if the block's last statement is a return, or an
// if/else whose every branch returns.
func blockReturns(b *ast.StmtBlock) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	switch last := b.Stmts[len(b.Stmts)-1].(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.IfStmt:
		if last.Else == nil {
			return false
		}
		if !blockReturns(last.Then) || !blockReturns(last.Else) {
			return false
		}
		for _, e := range last.ElifClauses {
			if !blockReturns(e.Body) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// identTypeFor maps a declared surface type to the IDENT_* tag internal/ir
// expects on a resolved variable reference (spec §3 "Operand").
func identTypeFor(declared token.TType) token.TType {
	switch declared {
	case token.KW_INT:
		return token.IDENT_INT
	case token.KW_FLOAT:
		return token.IDENT_FLOAT
	case token.KW_BOOL:
		return token.IDENT_BOOL
	case token.KW_STRING:
		return token.IDENT_STRING
	default:
		return token.IDENT
	}
}

func (r *Resolver) resolveBlock(b *ast.StmtBlock) error {
	r.cur = newScope(r.cur)
	defer func() { r.cur = r.cur.parent }()
	for _, st := range b.Stmts {
		if err := r.resolveStmt(st); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveStmt(st ast.Stmt) error {
	switch n := st.(type) {
	case *ast.VarDeclStmt:
		if err := r.resolveExpr(n.Init); err != nil {
			return err
		}
		r.cur.define(n.Name.Name(), n.Type)
		n.Name.Type = identTypeFor(n.Type)
		return nil
	case *ast.VarAssignStmt:
		t, ok := r.cur.lookup(n.Name.Name())
		if !ok {
			return &wisniaerr.SemanticError{Msg: "undefined name " + n.Name.Name(), Pos: n.Pos}
		}
		n.Name.Type = identTypeFor(t)
		return r.resolveExpr(n.Expr)
	case *ast.ExprStmt:
		return r.resolveExpr(n.Expr)
	case *ast.ReturnStmt:
		if n.Expr != nil {
			return r.resolveExpr(n.Expr)
		}
		return nil
	case *ast.WriteStmt:
		for _, a := range n.Args {
			if err := r.resolveExpr(a); err != nil {
				return err
			}
		}
		return nil
	case *ast.ReadStmt:
		if _, ok := r.cur.lookup(n.Target.Name()); !ok {
			return &wisniaerr.SemanticError{Msg: "undefined name " + n.Target.Name(), Pos: n.Pos}
		}
		return nil
	case *ast.BreakStmt, *ast.ContinueStmt:
		return nil
	case *ast.IfStmt:
		if err := r.resolveExpr(n.Cond); err != nil {
			return err
		}
		if err := r.resolveBlock(n.Then); err != nil {
			return err
		}
		for _, e := range n.ElifClauses {
			if err := r.resolveExpr(e.Cond); err != nil {
				return err
			}
			if err := r.resolveBlock(e.Body); err != nil {
				return err
			}
		}
		if n.Else != nil {
			return r.resolveBlock(n.Else)
		}
		return nil
	case *ast.WhileLoop:
		if err := r.resolveExpr(n.Cond); err != nil {
			return err
		}
		return r.resolveBlock(n.Body)
	case *ast.ForLoop:
		r.cur = newScope(r.cur)
		defer func() { r.cur = r.cur.parent }()
		if err := r.resolveStmt(n.Init); err != nil {
			return err
		}
		if err := r.resolveExpr(n.Cond); err != nil {
			return err
		}
		if err := r.resolveStmt(n.Step); err != nil {
			return err
		}
		return r.resolveBlock(n.Body)
	case *ast.ForEachLoop:
		if _, ok := r.cur.lookup(n.Coll.Name()); !ok {
			return &wisniaerr.SemanticError{Msg: "undefined name " + n.Coll.Name(), Pos: n.Pos}
		}
		return r.resolveBlock(n.Body)
	}
	return nil
}

func (r *Resolver) resolveExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.IdentExpr:
		t, ok := r.cur.lookup(n.Tok.Name())
		if !ok {
			return &wisniaerr.SemanticError{Msg: "undefined name " + n.Tok.Name(), Pos: n.Pos}
		}
		n.Tok.Type = identTypeFor(t)
		return nil
	case *ast.LiteralExpr:
		return nil
	case *ast.BinaryExpr:
		if err := r.resolveExpr(n.LHS); err != nil {
			return err
		}
		return r.resolveExpr(n.RHS)
	case *ast.UnaryExpr:
		return r.resolveExpr(n.Expr)
	case *ast.FnCallExpr:
		sig, ok := r.funcs[n.QualifiedName()]
		if !ok {
			return &wisniaerr.SemanticError{Msg: "call to undefined function " + n.QualifiedName(), Pos: n.Pos}
		}
		if len(sig.ParamTypes) != len(n.Args) {
			return &wisniaerr.SemanticError{Msg: "call arity mismatch for " + n.QualifiedName(), Pos: n.Pos}
		}
		for _, a := range n.Args {
			if err := r.resolveExpr(a); err != nil {
				return err
			}
		}
		return nil
	case *ast.ClassInitExpr:
		for _, a := range n.Args {
			if err := r.resolveExpr(a); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}
