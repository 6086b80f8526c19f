// Package parser builds an *ast.Root from a token stream via classical
// recursive descent, one function per grammar production, following the
// shape of the teacher's internal/core.Lower (a hand-written, table-
// assisted traversal over a flat token slice with an explicit index).
package parser

import (
	"github.com/belijzajac/wisnialang/internal/ast"
	"github.com/belijzajac/wisnialang/internal/token"
	"github.com/belijzajac/wisnialang/internal/wisniaerr"
)

// Parser holds the token slice and a cursor, mirroring the teacher's
// index-based `Lower(toks []Token)` rather than an iterator/channel.
type Parser struct {
	toks []*token.Token
	pos  int
}

func New(toks []*token.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse consumes a full token stream and returns the program's Root.
func Parse(toks []*token.Token) (*ast.Root, error) {
	return New(toks).ParseRoot()
}

func (p *Parser) cur() *token.Token  { return p.toks[p.pos] }
func (p *Parser) at(t token.TType) bool { return p.cur().Type == t }
func (p *Parser) atEOF() bool        { return p.at(token.TOK_EOF) }

func (p *Parser) advance() *token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(t token.TType) (*token.Token, error) {
	if !p.at(t) {
		return nil, &wisniaerr.ParserError{
			Msg: "expected " + t.String() + ", got " + p.cur().Type.String(),
			Pos: p.cur().Pos,
		}
	}
	return p.advance(), nil
}

// ParseRoot parses every top-level construct until EOF.
func (p *Parser) ParseRoot() (*ast.Root, error) {
	root := &ast.Root{}
	for !p.atEOF() {
		switch p.cur().Type {
		case token.KW_FN:
			fn, err := p.parseFnDef("")
			if err != nil {
				return nil, err
			}
			root.Functions = append(root.Functions, fn)
		case token.KW_CLASS:
			cls, err := p.parseClassDef()
			if err != nil {
				return nil, err
			}
			root.Classes = append(root.Classes, cls)
		default:
			return nil, &wisniaerr.ParserError{
				Msg: "malformed global construct starting with " + p.cur().Type.String(),
				Pos: p.cur().Pos,
			}
		}
	}
	return root, nil
}

func typeTokToTType(t *token.Token) (token.TType, error) {
	switch t.Type {
	case token.KW_INT, token.KW_FLOAT, token.KW_BOOL, token.KW_STRING, token.KW_VOID:
		return t.Type, nil
	}
	return token.INVALID, &wisniaerr.ParserError{Msg: "unsupported type " + t.Type.String(), Pos: t.Pos}
}

// parseFnDef parses `fn name(params) [-> type] { body }`. A parameterless
// fn with no arrow defaults ReturnType to KW_VOID (spec §8).
func (p *Parser) parseFnDef(className string) (*ast.FnDef, error) {
	fnPos := p.cur().Pos
	if _, err := p.expect(token.KW_FN); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []*ast.Param
	for !p.at(token.RPAREN) {
		typeTok := p.advance()
		ttype, err := typeTokToTType(typeTok)
		if err != nil {
			return nil, err
		}
		pname, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Param{Name: pname, Type: ttype})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	retType := token.KW_VOID
	if p.at(token.OP_ARROW) {
		p.advance()
		typeTok := p.advance()
		rt, err := typeTokToTType(typeTok)
		if err != nil {
			return nil, err
		}
		retType = rt
	}
	body, err := p.parseStmtBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FnDef{
		Name: name, ClassName: className, Params: params,
		ReturnType: retType, Body: body, Pos: fnPos,
	}, nil
}

func (p *Parser) parseClassDef() (*ast.ClassDef, error) {
	pos := p.cur().Pos
	p.advance() // class
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	cls := &ast.ClassDef{Name: name, Pos: pos}
	for !p.at(token.RBRACE) {
		if p.at(token.KW_FN) {
			fn, err := p.parseFnDef(name.Name())
			if err != nil {
				return nil, err
			}
			cls.Methods = append(cls.Methods, fn)
			continue
		}
		typeTok := p.advance()
		ttype, err := typeTokToTType(typeTok)
		if err != nil {
			return nil, err
		}
		fname, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		cls.Fields = append(cls.Fields, &ast.Param{Name: fname, Type: ttype})
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return cls, nil
}

func (p *Parser) parseStmtBlock() (*ast.StmtBlock, error) {
	pos := p.cur().Pos
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	blk := &ast.StmtBlock{Pos: pos}
	for !p.at(token.RBRACE) {
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, st)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return blk, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur().Type {
	case token.KW_INT, token.KW_FLOAT, token.KW_BOOL, token.KW_STRING:
		return p.parseVarDecl()
	case token.KW_RETURN:
		return p.parseReturn()
	case token.KW_PRINT:
		return p.parseWrite()
	case token.KW_READ:
		return p.parseRead()
	case token.KW_BREAK:
		pos := p.advance().Pos
		_, err := p.expect(token.SEMICOLON)
		return &ast.BreakStmt{Pos: pos}, err
	case token.KW_CONTINUE:
		pos := p.advance().Pos
		_, err := p.expect(token.SEMICOLON)
		return &ast.ContinueStmt{Pos: pos}, err
	case token.KW_IF:
		return p.parseIf()
	case token.KW_WHILE:
		return p.parseWhile()
	case token.KW_FOR:
		return p.parseFor()
	case token.KW_FOREACH:
		return p.parseForEach()
	case token.IDENT:
		return p.parseIdentStmt()
	default:
		return nil, &wisniaerr.ParserError{Msg: "unexpected token in statement position: " + p.cur().Type.String(), Pos: p.cur().Pos}
	}
}

func (p *Parser) parseVarDecl() (*ast.VarDeclStmt, error) {
	pos := p.cur().Pos
	typeTok := p.advance()
	ttype, err := typeTokToTType(typeTok)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.OP_ASSIGN); err != nil {
		return nil, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.VarDeclStmt{Name: name, Type: ttype, Init: init, Pos: pos}, nil
}

// parseIdentStmt disambiguates `name = expr;`, `name(args);`, and
// `obj.name(args);` — all begin with IDENT.
func (p *Parser) parseIdentStmt() (ast.Stmt, error) {
	pos := p.cur().Pos
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(token.OP_ASSIGN) {
		ident, ok := expr.(*ast.IdentExpr)
		if !ok {
			return nil, &wisniaerr.ParserError{Msg: "left-hand side of assignment must be an identifier", Pos: pos}
		}
		p.advance()
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.VarAssignStmt{Name: ident.Tok, Expr: rhs, Pos: pos}, nil
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Expr: expr, Pos: pos}, nil
}

func (p *Parser) parseReturn() (*ast.ReturnStmt, error) {
	pos := p.advance().Pos
	if p.at(token.SEMICOLON) {
		p.advance()
		return &ast.ReturnStmt{Pos: pos}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Expr: e, Pos: pos}, nil
}

func (p *Parser) parseWrite() (*ast.WriteStmt, error) {
	pos := p.advance().Pos
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.at(token.RPAREN) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.WriteStmt{Args: args, Pos: pos}, nil
}

func (p *Parser) parseRead() (*ast.ReadStmt, error) {
	pos := p.advance().Pos
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ReadStmt{Target: name, Pos: pos}, nil
}

func (p *Parser) parseCond() (ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	c, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Parser) parseIf() (*ast.IfStmt, error) {
	pos := p.advance().Pos
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	then, err := p.parseStmtBlock()
	if err != nil {
		return nil, err
	}
	st := &ast.IfStmt{Cond: cond, Then: then, Pos: pos}
	for p.at(token.KW_ELIF) {
		ePos := p.advance().Pos
		econd, err := p.parseCond()
		if err != nil {
			return nil, err
		}
		ebody, err := p.parseStmtBlock()
		if err != nil {
			return nil, err
		}
		st.ElifClauses = append(st.ElifClauses, &ast.ElifClause{Cond: econd, Body: ebody, Pos: ePos})
	}
	if p.at(token.KW_ELSE) {
		p.advance()
		elseBlk, err := p.parseStmtBlock()
		if err != nil {
			return nil, err
		}
		st.Else = elseBlk
	}
	return st, nil
}

func (p *Parser) parseWhile() (*ast.WhileLoop, error) {
	pos := p.advance().Pos
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStmtBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileLoop{Cond: cond, Body: body, Pos: pos}, nil
}

// parseFor handles `for (int i=0; i<5; i=i+1) {}` (spec §8 parser
// property): an initial VarDeclStmt, a condition expression, and a
// VarAssignStmt increment, all semicolon-separated inside the parens.
func (p *Parser) parseFor() (*ast.ForLoop, error) {
	pos := p.advance().Pos
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	init, err := p.parseVarDecl()
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	stepName, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.OP_ASSIGN); err != nil {
		return nil, err
	}
	stepExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	step := &ast.VarAssignStmt{Name: stepName, Expr: stepExpr, Pos: stepName.Pos}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStmtBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForLoop{Init: init, Cond: cond, Step: step, Body: body, Pos: pos}, nil
}

func (p *Parser) parseForEach() (*ast.ForEachLoop, error) {
	pos := p.advance().Pos
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	elem, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KW_IN); err != nil {
		return nil, err
	}
	coll, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStmtBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForEachLoop{Elem: elem, Coll: coll, Body: body, Pos: pos}, nil
}

// --- Expressions, precedence climbing ---

// precedence groups: ||  &&  == != < <= > >=  + -  * /  unary  primary
func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (ast.Expr, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.OP_OR) {
		opPos := p.advance().Pos
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Op: token.OP_OR, LHS: lhs, RHS: rhs, OpPos: opPos}
	}
	return lhs, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	lhs, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.at(token.OP_AND) {
		opPos := p.advance().Pos
		rhs, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Op: token.OP_AND, LHS: lhs, RHS: rhs, OpPos: opPos}
	}
	return lhs, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	lhs, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.at(token.OP_EQ) || p.at(token.OP_NEQ) {
		op := p.cur().Type
		opPos := p.advance().Pos
		rhs, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Op: op, LHS: lhs, RHS: rhs, OpPos: opPos}
	}
	return lhs, nil
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.at(token.OP_LT) || p.at(token.OP_LEQ) || p.at(token.OP_GT) || p.at(token.OP_GEQ) {
		op := p.cur().Type
		opPos := p.advance().Pos
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Op: op, LHS: lhs, RHS: rhs, OpPos: opPos}
	}
	return lhs, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(token.OP_PLUS) || p.at(token.OP_MINUS) {
		op := p.cur().Type
		opPos := p.advance().Pos
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Op: op, LHS: lhs, RHS: rhs, OpPos: opPos}
	}
	return lhs, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(token.OP_STAR) || p.at(token.OP_SLASH) {
		op := p.cur().Type
		opPos := p.advance().Pos
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Op: op, LHS: lhs, RHS: rhs, OpPos: opPos}
	}
	return lhs, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.at(token.OP_NOT) || p.at(token.OP_MINUS) {
		op := p.cur().Type
		pos := p.advance().Pos
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op, Expr: e, Pos: pos}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Type {
	case token.LIT_INT, token.LIT_FLT, token.LIT_STR, token.LIT_BOOL:
		p.advance()
		return &ast.LiteralExpr{Tok: tok, Pos: tok.Pos}, nil
	case token.LPAREN:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case token.KW_NEW:
		p.advance()
		cname, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return &ast.ClassInitExpr{ClassName: cname, Args: args, Pos: tok.Pos}, nil
	case token.IDENT:
		return p.parseIdentOrCall()
	default:
		return nil, &wisniaerr.ParserError{Msg: "expected expression, got " + tok.Type.String(), Pos: tok.Pos}
	}
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.at(token.RPAREN) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parseIdentOrCall handles a bare identifier, a call `name(...)`, and a
// qualified method call `obj.name(...)`.
func (p *Parser) parseIdentOrCall() (ast.Expr, error) {
	name := p.advance()
	if p.at(token.OP_DOT) {
		p.advance()
		method, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return &ast.FnCallExpr{ClassName: name.Name(), Name: method, Args: args, Pos: name.Pos}, nil
	}
	if p.at(token.LPAREN) {
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return &ast.FnCallExpr{Name: name, Args: args, Pos: name.Pos}, nil
	}
	return &ast.IdentExpr{Tok: name, Pos: name.Pos}, nil
}
