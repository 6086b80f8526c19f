package ast

import (
	"fmt"
	"strings"
)

// dumper renders a tree one line per node, indented by depth — the "-d ast"
// stage cmd/wisnia exposes. It implements Visitor directly rather than
// walking the tree by hand, matching the rest of this package's
// double-dispatch design.
type dumper struct {
	buf   strings.Builder
	depth int
}

// Dump renders root as an indented node listing.
func Dump(root *Root) string {
	d := &dumper{}
	d.VisitRoot(root)
	return d.buf.String()
}

func (d *dumper) line(format string, args ...any) {
	d.buf.WriteString(strings.Repeat("  ", d.depth))
	fmt.Fprintf(&d.buf, format, args...)
	d.buf.WriteByte('\n')
}

func (d *dumper) nested(n Node) {
	d.depth++
	n.Accept(d)
	d.depth--
}

func (d *dumper) VisitRoot(n *Root) {
	d.line("Root")
	d.depth++
	for _, fn := range n.Functions {
		fn.Accept(d)
	}
	for _, cls := range n.Classes {
		cls.Accept(d)
	}
	d.depth--
}

func (d *dumper) VisitFnDef(n *FnDef) {
	d.line("FnDef %s -> %s", n.Name.Name(), n.ReturnType)
	d.depth++
	for _, p := range n.Params {
		p.Accept(d)
	}
	n.Body.Accept(d)
	d.depth--
}

func (d *dumper) VisitClassDef(n *ClassDef) {
	d.line("ClassDef %s", n.Name.Name())
	d.depth++
	for _, f := range n.Fields {
		f.Accept(d)
	}
	for _, m := range n.Methods {
		m.Accept(d)
	}
	d.depth--
}

func (d *dumper) VisitParam(n *Param) { d.line("Param %s %s", n.Type, n.Name.Name()) }

func (d *dumper) VisitStmtBlock(n *StmtBlock) {
	d.line("StmtBlock")
	d.depth++
	for _, st := range n.Stmts {
		st.Accept(d)
	}
	d.depth--
}

func (d *dumper) VisitVarDeclStmt(n *VarDeclStmt) {
	d.line("VarDeclStmt %s %s", n.Type, n.Name.Name())
	d.nested(n.Init)
}

func (d *dumper) VisitVarAssignStmt(n *VarAssignStmt) {
	d.line("VarAssignStmt %s", n.Name.Name())
	d.nested(n.Expr)
}

func (d *dumper) VisitExprStmt(n *ExprStmt) {
	d.line("ExprStmt")
	d.nested(n.Expr)
}

func (d *dumper) VisitReturnStmt(n *ReturnStmt) {
	d.line("ReturnStmt")
	if n.Expr != nil {
		d.nested(n.Expr)
	}
}

func (d *dumper) VisitWriteStmt(n *WriteStmt) {
	d.line("WriteStmt")
	d.depth++
	for _, a := range n.Args {
		a.Accept(d)
	}
	d.depth--
}

func (d *dumper) VisitReadStmt(n *ReadStmt) { d.line("ReadStmt %s", n.Target.Name()) }
func (d *dumper) VisitBreakStmt(n *BreakStmt) { d.line("BreakStmt") }
func (d *dumper) VisitContinueStmt(n *ContinueStmt) { d.line("ContinueStmt") }

func (d *dumper) VisitIfStmt(n *IfStmt) {
	d.line("IfStmt")
	d.depth++
	d.line("Cond")
	d.nested(n.Cond)
	d.line("Then")
	n.Then.Accept(d)
	for _, e := range n.ElifClauses {
		e.Accept(d)
	}
	if n.Else != nil {
		d.line("Else")
		n.Else.Accept(d)
	}
	d.depth--
}

func (d *dumper) VisitElifClause(n *ElifClause) {
	d.line("ElifClause")
	d.depth++
	d.nested(n.Cond)
	n.Body.Accept(d)
	d.depth--
}

func (d *dumper) VisitWhileLoop(n *WhileLoop) {
	d.line("WhileLoop")
	d.depth++
	d.nested(n.Cond)
	n.Body.Accept(d)
	d.depth--
}

func (d *dumper) VisitForLoop(n *ForLoop) {
	d.line("ForLoop")
	d.depth++
	n.Init.Accept(d)
	d.nested(n.Cond)
	n.Step.Accept(d)
	n.Body.Accept(d)
	d.depth--
}

func (d *dumper) VisitForEachLoop(n *ForEachLoop) {
	d.line("ForEachLoop %s in %s", n.Elem.Name(), n.Coll.Name())
	n.Body.Accept(d)
}

func (d *dumper) VisitIdentExpr(n *IdentExpr) { d.line("IdentExpr %s", n.Tok.Name()) }

func (d *dumper) VisitLiteralExpr(n *LiteralExpr) { d.line("LiteralExpr %v", n.Tok.Value) }

func (d *dumper) VisitBinaryExpr(n *BinaryExpr) {
	d.line("BinaryExpr %s", n.Op)
	d.depth++
	n.LHS.Accept(d)
	n.RHS.Accept(d)
	d.depth--
}

func (d *dumper) VisitUnaryExpr(n *UnaryExpr) {
	d.line("UnaryExpr %s", n.Op)
	d.nested(n.Expr)
}

func (d *dumper) VisitFnCallExpr(n *FnCallExpr) {
	d.line("FnCallExpr %s", n.QualifiedName())
	d.depth++
	for _, a := range n.Args {
		a.Accept(d)
	}
	d.depth--
}

func (d *dumper) VisitClassInitExpr(n *ClassInitExpr) {
	d.line("ClassInitExpr %s", n.ClassName.Name())
	d.depth++
	for _, a := range n.Args {
		a.Accept(d)
	}
	d.depth--
}
