// Package token defines the shared operand/value model that flows from the
// lexer all the way through register allocation: every named thing in the
// compiler (a keyword, an operator, a literal, a variable reference, and
// eventually a physical register or a label) is a *Token.
package token

// TType tags the surface meaning of a token. The same tag set threads
// through the whole pipeline: a token born as IDENT_INT during parsing is
// later rewritten in place to REGISTER by the allocator (see
// internal/regalloc), which is why the tag lives on the shared handle
// rather than being inferred structurally at each stage.
type TType int

const (
	INVALID TType = iota

	// End of input.
	TOK_EOF

	// Keywords.
	KW_FN
	KW_CLASS
	KW_NEW
	KW_DEF
	KW_REM
	KW_RETURN
	KW_IF
	KW_ELIF
	KW_ELSE
	KW_FOR
	KW_WHILE
	KW_FOREACH
	KW_IN
	KW_CONTINUE
	KW_BREAK
	KW_TRUE
	KW_FALSE
	KW_READ
	KW_PRINT
	KW_VOID
	KW_INT
	KW_BOOL
	KW_FLOAT
	KW_STRING

	// Operators.
	OP_PLUS
	OP_MINUS
	OP_STAR
	OP_SLASH
	OP_ASSIGN
	OP_EQ
	OP_NEQ
	OP_LT
	OP_LEQ
	OP_GT
	OP_GEQ
	OP_AND
	OP_OR
	OP_NOT
	OP_ARROW // ->
	OP_DOT   // .

	// Punctuation.
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	SEMICOLON

	// Literals, as produced by the lexer/parser.
	LIT_INT
	LIT_FLT
	LIT_STR
	LIT_BOOL

	// Identifier references, annotated with a concrete type by the resolver.
	IDENT
	IDENT_INT
	IDENT_FLOAT
	IDENT_BOOL
	IDENT_STRING

	// Produced only by the back end.
	REGISTER
	LABEL
)

var ttypeNames = map[TType]string{
	INVALID:     "INVALID",
	TOK_EOF:     "EOF",
	KW_FN:       "fn",
	KW_CLASS:    "class",
	KW_NEW:      "new",
	KW_DEF:      "def",
	KW_REM:      "rem",
	KW_RETURN:   "return",
	KW_IF:       "if",
	KW_ELIF:     "elif",
	KW_ELSE:     "else",
	KW_FOR:      "for",
	KW_WHILE:    "while",
	KW_FOREACH:  "for_each",
	KW_IN:       "in",
	KW_CONTINUE: "continue",
	KW_BREAK:    "break",
	KW_TRUE:     "true",
	KW_FALSE:    "false",
	KW_READ:     "read",
	KW_PRINT:    "print",
	KW_VOID:     "void",
	KW_INT:      "int",
	KW_BOOL:     "bool",
	KW_FLOAT:    "float",
	KW_STRING:   "string",
	OP_PLUS:     "+",
	OP_MINUS:    "-",
	OP_STAR:     "*",
	OP_SLASH:    "/",
	OP_ASSIGN:   "=",
	OP_EQ:       "==",
	OP_NEQ:      "!=",
	OP_LT:       "<",
	OP_LEQ:      "<=",
	OP_GT:       ">",
	OP_GEQ:      ">=",
	OP_AND:      "&&",
	OP_OR:       "||",
	OP_NOT:      "!",
	OP_ARROW:    "->",
	OP_DOT:      ".",
	LPAREN:      "(",
	RPAREN:      ")",
	LBRACE:      "{",
	RBRACE:      "}",
	LBRACKET:    "[",
	RBRACKET:    "]",
	COMMA:       ",",
	SEMICOLON:   ";",
	LIT_INT:     "LIT_INT",
	LIT_FLT:     "LIT_FLT",
	LIT_STR:     "LIT_STR",
	LIT_BOOL:    "LIT_BOOL",
	IDENT:       "IDENT",
	IDENT_INT:   "IDENT_INT",
	IDENT_FLOAT: "IDENT_FLOAT",
	IDENT_BOOL:  "IDENT_BOOL",
	IDENT_STRING: "IDENT_STRING",
	REGISTER:    "REGISTER",
	LABEL:       "LABEL",
}

func (t TType) String() string {
	if s, ok := ttypeNames[t]; ok {
		return s
	}
	return "UNKNOWN_TTYPE"
}

// Keywords maps every reserved word to its TType. Built once at package
// init so the lexer's identifier path is a single map lookup.
var Keywords = map[string]TType{
	"fn": KW_FN, "class": KW_CLASS, "new": KW_NEW, "def": KW_DEF, "rem": KW_REM,
	"return": KW_RETURN, "if": KW_IF, "elif": KW_ELIF, "else": KW_ELSE,
	"for": KW_FOR, "while": KW_WHILE, "for_each": KW_FOREACH, "in": KW_IN,
	"continue": KW_CONTINUE, "break": KW_BREAK, "true": KW_TRUE, "false": KW_FALSE,
	"read": KW_READ, "print": KW_PRINT, "void": KW_VOID, "int": KW_INT,
	"bool": KW_BOOL, "float": KW_FLOAT, "string": KW_STRING,
}

// IsComparison reports whether t is one of the relational/equality operators
// that internal/ir's control-flow lowering turns into a CMP plus a
// conditional jump (see the jump-condition table in internal/ir).
func (t TType) IsComparison() bool {
	switch t {
	case OP_EQ, OP_NEQ, OP_LT, OP_LEQ, OP_GT, OP_GEQ:
		return true
	}
	return false
}
