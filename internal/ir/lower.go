package ir

import (
	"github.com/belijzajac/wisnialang/internal/ast"
	"github.com/belijzajac/wisnialang/internal/sema"
	"github.com/belijzajac/wisnialang/internal/token"
	"github.com/belijzajac/wisnialang/internal/wisniaerr"
)

// jumpKey is (comparison operator, negate) — the lookup spec §4.2's
// "Control-flow lowering" table describes.
type jumpKey struct {
	op     token.TType
	negate bool
}

var jumpTable = map[jumpKey]Operation{
	{token.OP_GT, true}: JLE, {token.OP_GT, false}: JG,
	{token.OP_GEQ, true}: JL, {token.OP_GEQ, false}: JGE,
	{token.OP_LT, true}: JGE, {token.OP_LT, false}: JL,
	{token.OP_LEQ, true}: JG, {token.OP_LEQ, false}: JLE,
	{token.OP_EQ, true}: JNE, {token.OP_EQ, false}: JE,
	{token.OP_NEQ, true}: JE, {token.OP_NEQ, false}: JNE,
}

// arithTable maps a surface arithmetic operator to its integer IR
// operation (spec §4.2's createBinaryExpression / original's
// binaryExprMapping — only the integer column is lowered, per spec §1
// Non-goals on float codegen).
var arithTable = map[token.TType]Operation{
	token.OP_PLUS:  IADD,
	token.OP_MINUS: ISUB,
	token.OP_STAR:  IMUL,
	token.OP_SLASH: IDIV,
}

// Generator lowers a resolved AST into a Context's instruction list. It
// implements ast.Visitor (spec §9's double-dispatch design); expression
// visit methods push their "result" operand onto valueStack, statement
// visit methods pop their inputs — the stack-based protocol spec §4.2
// describes.
type Generator struct {
	ast.BaseVisitor
	ctx        *Context
	funcs      map[string]*sema.FnSig
	valueStack []*token.Token
	err        error
}

// Lower runs IR lowering over a resolved root and returns the finished
// Context (instructions plus which built-in modules were referenced).
func Lower(root *ast.Root, funcs map[string]*sema.FnSig) (*Context, error) {
	g := &Generator{ctx: NewContext(), funcs: funcs}
	g.lowerRoot(root)
	if g.err != nil {
		return nil, g.err
	}
	g.ctx.MarkUserEnd()
	g.ctx.EmitBuiltinModules()
	return g.ctx, nil
}

func (g *Generator) push(v *token.Token) { g.valueStack = append(g.valueStack, v) }
func (g *Generator) pop() *token.Token {
	n := len(g.valueStack)
	if n == 0 {
		return nil
	}
	v := g.valueStack[n-1]
	g.valueStack = g.valueStack[:n-1]
	return v
}

func (g *Generator) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

// lowerRoot processes functions in reverse source order (spec §4.2
// "Traversal protocol") so main — conventionally the last function in the
// file — is emitted first and lands at the fixed entry-point offset.
func (g *Generator) lowerRoot(root *ast.Root) {
	if len(root.Classes) > 0 {
		c := root.Classes[0]
		g.fail(&wisniaerr.NotImplementedError{Msg: "class definition " + c.Name.Name(), Pos: c.Name.Pos})
		return
	}
	for i := len(root.Functions) - 1; i >= 0; i-- {
		g.lowerFn(root.Functions[i])
		if g.err != nil {
			return
		}
	}
}

func (g *Generator) lowerFn(fn *ast.FnDef) {
	g.ctx.MarkFuncStart()
	if fn.IsMain() {
		g.lowerBlock(fn.Body)
		if g.err != nil {
			return
		}
		g.ctx.Emit(New(CALL, nil, label(ModuleNames[ModuleExit], fn.Pos), nil))
		g.ctx.MarkModuleUsed(ModuleExit)
		return
	}

	p := fn.Pos
	g.ctx.Emit(New(LABEL, label(fn.Name.Name(), p), nil, nil))

	retAddr := g.ctx.NewTemp(p)
	g.ctx.Emit(New(POP, retAddr, nil, nil))

	for i := len(fn.Params) - 1; i >= 0; i-- {
		g.ctx.Emit(New(POP, fn.Params[i].Name, nil, nil))
	}

	g.lowerBlock(fn.Body)
	if g.err != nil {
		return
	}

	g.ctx.Emit(New(PUSH, nil, retAddr, nil))
	g.ctx.Emit(New(RET, nil, nil, nil))
}

func (g *Generator) lowerBlock(b *ast.StmtBlock) {
	for _, st := range b.Stmts {
		st.Accept(g)
		if g.err != nil {
			return
		}
	}
}

// --- Statements ---

func (g *Generator) VisitStmtBlock(n *ast.StmtBlock) { g.lowerBlock(n) }

func (g *Generator) VisitVarDeclStmt(n *ast.VarDeclStmt) {
	n.Init.Accept(g)
	if g.err != nil {
		return
	}
	val := g.pop()
	g.ctx.Emit(New(MOV, n.Name, val, nil))
}

func (g *Generator) VisitVarAssignStmt(n *ast.VarAssignStmt) {
	n.Expr.Accept(g)
	if g.err != nil {
		return
	}
	val := g.pop()
	g.ctx.Emit(New(MOV, n.Name, val, nil))
}

func (g *Generator) VisitExprStmt(n *ast.ExprStmt) {
	n.Expr.Accept(g)
	g.pop()
}

func (g *Generator) VisitReturnStmt(n *ast.ReturnStmt) {
	if n.Expr == nil {
		return
	}
	n.Expr.Accept(g)
	if g.err != nil {
		return
	}
	val := g.pop()
	// Pushed, not MOV'd into R15: the caller's generic 15-register restore
	// loop pops this value as its first pop (into R15, since R15 is last in
	// token.AllocatableOrder and so first in the reversed restore order),
	// so the caller's real saved R15 is deliberately never restored. See
	// VisitFnCallExpr.
	g.ctx.Emit(New(PUSH, nil, val, nil))
}

func (g *Generator) VisitBreakStmt(n *ast.BreakStmt) {
	lbl := g.ctx.CurrentBreakLabel()
	if lbl == nil {
		g.fail(&wisniaerr.InstructionError{Msg: "break outside of a loop", Pos: n.Pos})
		return
	}
	g.ctx.Emit(New(JMP, nil, lbl, nil))
}

func (g *Generator) VisitContinueStmt(n *ast.ContinueStmt) {
	g.fail(&wisniaerr.NotImplementedError{Msg: "continue", Pos: n.Pos})
}

func (g *Generator) VisitReadStmt(n *ast.ReadStmt) {
	g.fail(&wisniaerr.NotImplementedError{Msg: "read", Pos: n.Pos})
}

func (g *Generator) VisitClassInitExpr(n *ast.ClassInitExpr) {
	g.fail(&wisniaerr.NotImplementedError{Msg: "class instantiation", Pos: n.Pos})
	g.push(nil)
}

func (g *Generator) VisitUnaryExpr(n *ast.UnaryExpr) {
	g.fail(&wisniaerr.NotImplementedError{Msg: "unary operator", Pos: n.Pos})
	g.push(nil)
}

// lowerCondition emits the comparison (or bare-expression zero-test) for a
// control-flow condition and returns the conditional jump operation to
// reach the "skip" label (spec §4.2 "Control-flow lowering").
func (g *Generator) lowerCondition(cond ast.Expr, negate bool) Operation {
	if bin, ok := cond.(*ast.BinaryExpr); ok && bin.Op.IsComparison() {
		bin.LHS.Accept(g)
		lhs := g.pop()
		bin.RHS.Accept(g)
		rhs := g.pop()
		g.ctx.Emit(New(CMP, nil, lhs, rhs))
		return jumpTable[jumpKey{bin.Op, negate}]
	}
	cond.Accept(g)
	val := g.pop()
	g.ctx.Emit(New(CMP, nil, val, imm(0, cond.Position())))
	if negate {
		return JE
	}
	return JNE
}

func (g *Generator) VisitIfStmt(n *ast.IfStmt) {
	if len(n.ElifClauses) > 0 {
		g.fail(&wisniaerr.NotImplementedError{Msg: "elif", Pos: n.Pos})
		return
	}
	falseLbl := g.ctx.NewLabel("if", "false", n.Pos)
	endLbl := g.ctx.NewLabel("if", "end", n.Pos)

	jumpOp := g.lowerCondition(n.Cond, true)
	if g.err != nil {
		return
	}
	g.ctx.Emit(New(jumpOp, nil, falseLbl, nil))

	g.lowerBlock(n.Then)
	if g.err != nil {
		return
	}

	if n.Else != nil {
		g.ctx.Emit(New(JMP, nil, endLbl, nil))
		g.ctx.Emit(New(LABEL, falseLbl, nil, nil))
		g.lowerBlock(n.Else)
		if g.err != nil {
			return
		}
		g.ctx.Emit(New(LABEL, endLbl, nil, nil))
	} else {
		g.ctx.Emit(New(LABEL, falseLbl, nil, nil))
	}
	g.ctx.BumpLabelCounter("if")
}

func (g *Generator) VisitWhileLoop(n *ast.WhileLoop) {
	bodyLbl := g.ctx.NewLabel("while", "body", n.Pos)
	checkLbl := g.ctx.NewLabel("while", "check", n.Pos)
	endLbl := g.ctx.NewLabel("while", "end", n.Pos)

	g.ctx.Emit(New(JMP, nil, checkLbl, nil))
	g.ctx.Emit(New(LABEL, bodyLbl, nil, nil))

	g.ctx.PushBreakLabel(endLbl)
	g.lowerBlock(n.Body)
	g.ctx.PopBreakLabel()
	if g.err != nil {
		return
	}

	g.ctx.Emit(New(LABEL, checkLbl, nil, nil))
	jumpOp := g.lowerCondition(n.Cond, false)
	if g.err != nil {
		return
	}
	g.ctx.Emit(New(jumpOp, nil, bodyLbl, nil))
	g.ctx.Emit(New(LABEL, endLbl, nil, nil))
	g.ctx.BumpLabelCounter("while")
}

func (g *Generator) VisitForLoop(n *ast.ForLoop) {
	n.Init.Accept(g)
	if g.err != nil {
		return
	}

	bodyLbl := g.ctx.NewLabel("for", "body", n.Pos)
	checkLbl := g.ctx.NewLabel("for", "check", n.Pos)
	endLbl := g.ctx.NewLabel("for", "end", n.Pos)

	g.ctx.Emit(New(JMP, nil, checkLbl, nil))
	g.ctx.Emit(New(LABEL, bodyLbl, nil, nil))

	g.ctx.PushBreakLabel(endLbl)
	g.lowerBlock(n.Body)
	g.ctx.PopBreakLabel()
	if g.err != nil {
		return
	}

	n.Step.Accept(g)
	if g.err != nil {
		return
	}

	g.ctx.Emit(New(LABEL, checkLbl, nil, nil))
	jumpOp := g.lowerCondition(n.Cond, false)
	if g.err != nil {
		return
	}
	g.ctx.Emit(New(jumpOp, nil, bodyLbl, nil))
	g.ctx.Emit(New(LABEL, endLbl, nil, nil))
	g.ctx.BumpLabelCounter("for")
}

func (g *Generator) VisitForEachLoop(n *ast.ForEachLoop) {
	g.fail(&wisniaerr.NotImplementedError{Msg: "for_each", Pos: n.Pos})
}

// --- print lowering (spec §4.2 "print lowering") ---

// valueKind classifies a print argument as "int", "bool", or "string" —
// the three paths spec §4.2 distinguishes. Only used to pick which
// built-in to invoke; it is not a general type system.
func (g *Generator) valueKind(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.IdentExpr:
		switch n.Tok.Type {
		case token.IDENT_STRING:
			return "string"
		case token.IDENT_BOOL:
			return "bool"
		case token.IDENT_FLOAT:
			return "float"
		default:
			return "int"
		}
	case *ast.LiteralExpr:
		switch n.Tok.Type {
		case token.LIT_STR:
			return "string"
		case token.LIT_BOOL:
			return "bool"
		case token.LIT_FLT:
			return "float"
		default:
			return "int"
		}
	case *ast.BinaryExpr:
		if n.Op.IsComparison() {
			return "bool"
		}
		return "int"
	case *ast.FnCallExpr:
		sig, ok := g.funcs[n.QualifiedName()]
		if ok {
			switch sig.ReturnType {
			case token.KW_STRING:
				return "string"
			case token.KW_BOOL:
				return "bool"
			}
		}
		return "int"
	default:
		return "int"
	}
}

func (g *Generator) VisitWriteStmt(n *ast.WriteStmt) {
	for _, arg := range n.Args {
		kind := g.valueKind(arg)
		switch kind {
		case "float":
			g.fail(&wisniaerr.NotImplementedError{Msg: "float in print", Pos: arg.Position()})
			return
		case "string":
			g.lowerPrintString(arg)
		case "bool":
			arg.Accept(g)
			if g.err != nil {
				return
			}
			val := g.pop()
			g.ctx.Emit(New(MOV, reg(token.RDI, arg.Position()), val, nil))
			g.ctx.Emit(New(CALL, nil, label(ModuleNames[ModulePrintBoolean], arg.Position()), nil))
			g.ctx.MarkModuleUsed(ModulePrintBoolean)
		default: // int
			arg.Accept(g)
			if g.err != nil {
				return
			}
			val := g.pop()
			g.ctx.Emit(New(MOV, reg(token.RDI, arg.Position()), val, nil))
			g.ctx.Emit(New(CALL, nil, label(ModuleNames[ModulePrintNumber], arg.Position()), nil))
			g.ctx.MarkModuleUsed(ModulePrintNumber)
		}
		if g.err != nil {
			return
		}
	}
}

// lowerPrintString handles both string literals (resolved at compile
// time: RDX/RSI loaded directly) and string variables (calls
// __builtin_calculate_string_length first), then always falls through to
// the inline write(1, buf, len) syscall sequence (spec §4.2).
func (g *Generator) lowerPrintString(arg ast.Expr) {
	p := arg.Position()
	if lit, ok := arg.(*ast.LiteralExpr); ok && lit.Tok.Type == token.LIT_STR {
		s := lit.Tok.Value.(string)
		g.ctx.Emit(New(MOV, reg(token.RDX, p), imm(int32(len(s)), p), nil))
		g.ctx.Emit(New(MOV, reg(token.RSI, p), lit.Tok, nil))
	} else {
		arg.Accept(g)
		if g.err != nil {
			return
		}
		val := g.pop()
		g.ctx.Emit(New(MOV, reg(token.RSI, p), val, nil))
		g.ctx.Emit(New(CALL, nil, label(ModuleNames[ModuleStringLength], p), nil))
		g.ctx.MarkModuleUsed(ModuleStringLength)
	}
	g.emitInlineWrite(p)
}

// emitInlineWrite: save rax/rcx/r11/rdi; write(1, rsi, rdx); restore
// rdi/r11/rcx/rax (spec §4.2: "save RAX/RCX/R11/RDI ... restore registers").
func (g *Generator) emitInlineWrite(p token.Position) {
	saved := []token.Register{token.RAX, token.RCX, token.R11, token.RDI}
	for _, r := range saved {
		g.ctx.Emit(New(PUSH, nil, reg(r, p), nil))
	}
	g.ctx.Emit(New(MOV, reg(token.RAX, p), imm(1, p), nil))
	g.ctx.Emit(New(MOV, reg(token.RDI, p), imm(1, p), nil))
	g.ctx.Emit(New(SYSCALL, nil, nil, nil))
	for i := len(saved) - 1; i >= 0; i-- {
		g.ctx.Emit(New(POP, nil, reg(saved[i], p), nil))
	}
}

// --- Expressions ---

func (g *Generator) VisitIdentExpr(n *ast.IdentExpr) { g.push(n.Tok) }
func (g *Generator) VisitLiteralExpr(n *ast.LiteralExpr) { g.push(n.Tok) }

func (g *Generator) VisitBinaryExpr(n *ast.BinaryExpr) {
	if n.Op.IsComparison() {
		// A comparison used as a value (e.g. a print argument) becomes 1 or
		// 0: compare, preset the result to 1 (MOV leaves the flags alone),
		// and clear it when the comparison does not hold.
		jumpOp := g.lowerCondition(n, false)
		temp := g.ctx.NewTemp(n.OpPos)
		endLbl := g.ctx.NewLabel("cmp", "end", n.OpPos)
		g.ctx.BumpLabelCounter("cmp")
		g.ctx.Emit(New(MOV, temp, imm(1, n.OpPos), nil))
		g.ctx.Emit(New(jumpOp, nil, endLbl, nil))
		g.ctx.Emit(New(MOV, temp, imm(0, n.OpPos), nil))
		g.ctx.Emit(New(LABEL, endLbl, nil, nil))
		g.push(temp)
		return
	}
	op, ok := arithTable[n.Op]
	if !ok {
		g.fail(&wisniaerr.InstructionError{Msg: "cannot lower binary operator " + n.Op.String(), Pos: n.OpPos})
		g.push(nil)
		return
	}
	n.LHS.Accept(g)
	if g.err != nil {
		return
	}
	lhs := g.pop()
	n.RHS.Accept(g)
	if g.err != nil {
		return
	}
	rhs := g.pop()

	temp := g.ctx.NewTemp(n.OpPos)
	g.ctx.Emit(New(MOV, temp, lhs, nil))
	if op == IDIV {
		// div reg is a genuine single-operand x86 instruction (implicit
		// RAX:RDX dividend); unlike the other arithmetic ops it does not
		// read back through temp (spec §4.2, original's emitDiv).
		g.ctx.Emit(New(IDIV, temp, rhs, nil))
	} else {
		g.ctx.Emit(New(op, temp, temp, rhs))
	}
	g.push(temp)
}

// VisitFnCallExpr lowers the call convention of spec §4.2: push all 15
// allocatable registers, push each argument (lowered into a temp first),
// CALL, pop the 15 registers back, then (if non-void) capture R15 into a
// fresh temp. A returning callee (VisitReturnStmt) pushes its value instead
// of writing R15 directly, so the restore loop's first pop (R15, since R15
// is last in token.AllocatableOrder) lands that pushed value in R15 rather
// than the caller's original R15. That's why the capture must happen after
// the pop loop, not before it.
func (g *Generator) VisitFnCallExpr(n *ast.FnCallExpr) {
	sig, ok := g.funcs[n.QualifiedName()]
	if !ok {
		g.fail(&wisniaerr.InstructionError{Msg: "call to unresolved function " + n.QualifiedName(), Pos: n.Pos})
		g.push(nil)
		return
	}

	for _, r := range token.AllocatableOrder {
		g.ctx.Emit(New(PUSH, nil, reg(r, n.Pos), nil))
	}

	for _, argExpr := range n.Args {
		argExpr.Accept(g)
		if g.err != nil {
			return
		}
		val := g.pop()
		argTemp := g.ctx.NewTemp(argExpr.Position())
		g.ctx.Emit(New(MOV, argTemp, val, nil))
		g.ctx.Emit(New(PUSH, nil, argTemp, nil))
	}

	g.ctx.Emit(New(CALL, nil, label(n.QualifiedName(), n.Pos), nil))

	for i := len(token.AllocatableOrder) - 1; i >= 0; i-- {
		g.ctx.Emit(New(POP, nil, reg(token.AllocatableOrder[i], n.Pos), nil))
	}

	var result *token.Token
	if sig.ReturnType != token.KW_VOID {
		result = g.ctx.NewTemp(n.Pos)
		g.ctx.Emit(New(MOV, result, reg(token.R15, n.Pos), nil))
	}

	g.push(result)
}
