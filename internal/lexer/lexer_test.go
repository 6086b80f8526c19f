package lexer

import (
	"testing"

	"github.com/belijzajac/wisnialang/internal/token"
)

func tokenTypes(t *testing.T, src string) []token.TType {
	t.Helper()
	toks, err := Tokenize("test.wsn", []byte(src))
	if err != nil {
		t.Fatalf("Tokenize(%q): unexpected error: %v", src, err)
	}
	types := make([]token.TType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestTokenizeKeywordsAndOperators(t *testing.T) {
	tests := []struct {
		src  string
		want []token.TType
	}{
		{"fn main() {}", []token.TType{token.KW_FN, token.IDENT, token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.TOK_EOF}},
		{"a == b", []token.TType{token.IDENT, token.OP_EQ, token.IDENT, token.TOK_EOF}},
		{"a <= b && c", []token.TType{token.IDENT, token.OP_LEQ, token.IDENT, token.OP_AND, token.IDENT, token.TOK_EOF}},
		{"true false", []token.TType{token.LIT_BOOL, token.LIT_BOOL, token.TOK_EOF}},
		{"-> .", []token.TType{token.OP_ARROW, token.OP_DOT, token.TOK_EOF}},
	}
	for _, tc := range tests {
		got := tokenTypes(t, tc.src)
		if len(got) != len(tc.want) {
			t.Fatalf("Tokenize(%q) = %v, want %v", tc.src, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("Tokenize(%q)[%d] = %v, want %v", tc.src, i, got[i], tc.want[i])
			}
		}
	}
}

func TestTokenizeLiterals(t *testing.T) {
	toks, err := Tokenize("test.wsn", []byte(`42 3.5 "a\nb"`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Type != token.LIT_INT || toks[0].Value.(int32) != 42 {
		t.Errorf("got %v %v, want LIT_INT 42", toks[0].Type, toks[0].Value)
	}
	if toks[1].Type != token.LIT_FLT || toks[1].Value.(float32) != 3.5 {
		t.Errorf("got %v %v, want LIT_FLT 3.5", toks[1].Type, toks[1].Value)
	}
	if toks[2].Type != token.LIT_STR || toks[2].Value.(string) != "a\nb" {
		t.Errorf("got %v %q, want LIT_STR %q", toks[2].Type, toks[2].Value, "a\nb")
	}
}

func TestTokenizeIntegerOutOfRange(t *testing.T) {
	_, err := Tokenize("test.wsn", []byte("2147483648"))
	if err == nil {
		t.Fatal("expected an out-of-range error, got nil")
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize("test.wsn", []byte(`"unterminated`))
	if err == nil {
		t.Fatal("expected an unterminated-string error, got nil")
	}
}

func TestTokenizeUnterminatedBlockComment(t *testing.T) {
	_, err := Tokenize("test.wsn", []byte("/* never closes"))
	if err == nil {
		t.Fatal("expected an unterminated-comment error, got nil")
	}
}

func TestTokenizeSkipsLineComments(t *testing.T) {
	got := tokenTypes(t, "a // comment\nb")
	want := []token.TType{token.IDENT, token.IDENT, token.TOK_EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizePositionTracking(t *testing.T) {
	toks, err := Tokenize("test.wsn", []byte("a\nbc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Pos.Line != 1 || toks[0].Pos.Column != 1 {
		t.Errorf("a: got %v, want 1:1", toks[0].Pos)
	}
	if toks[1].Pos.Line != 2 || toks[1].Pos.Column != 1 {
		t.Errorf("bc: got %v, want 2:1", toks[1].Pos)
	}
}
