package expr

import (
	"errors"
	"reflect"
	"testing"
)

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestTokenizeEmptyInput(t *testing.T) {
	tokens, err := Tokenize("")
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", "", err)
	}
	if len(tokens) != 1 || tokens[0].Type != TokenEOF {
		t.Fatalf("Tokenize(%q) = %v, want just EOF", "", tokens)
	}
}

func TestTokenizeOperators(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"(", TokenLeftParen},
		{")", TokenRightParen},
		{",", TokenComma},
		{"+", TokenPlus},
		{"-", TokenMinus},
		{"*", TokenStar},
		{"/", TokenSlash},
		{".", TokenDot},
		{">", TokenGreater},
		{">=", TokenGreaterEqual},
		{"<", TokenLess},
		{"<=", TokenLessEqual},
		{"==", TokenEqualEqual},
		{"!=", TokenNotEqual},
		{"or", TokenOr},
		{"and", TokenAnd},
		{"not", TokenNot},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}
			if len(tokens) != 2 {
				t.Fatalf("Tokenize(%q) produced %d tokens, want 2", tt.input, len(tokens))
			}
			if tokens[0].Type != tt.want {
				t.Errorf("Tokenize(%q)[0].Type = %v, want %v", tt.input, tokens[0].Type, tt.want)
			}
			if tokens[0].Value != tt.input {
				t.Errorf("Tokenize(%q)[0].Value = %q, want %q", tt.input, tokens[0].Value, tt.input)
			}
		})
	}
}

func TestTokenizeKeywordsAreCaseSensitive(t *testing.T) {
	for _, input := range []string{"Or", "AND", "Not", "order", "andy", "not_"} {
		tokens, err := Tokenize(input)
		if err != nil {
			t.Fatalf("Tokenize(%q) error: %v", input, err)
		}
		if tokens[0].Type != TokenIdentifier {
			t.Errorf("Tokenize(%q)[0].Type = %v, want IDENTIFIER", input, tokens[0].Type)
		}
	}
}

func TestTokenizeLiterals(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantType  TokenType
		wantValue string
	}{
		{"integer", "42", TokenNumber, "42"},
		{"decimal", "3.25", TokenNumber, "3.25"},
		{"single quoted", "'AlphaMemory'", TokenString, "AlphaMemory"},
		{"double quoted", `"Rule"`, TokenString, "Rule"},
		{"other quote inside", `"it's"`, TokenString, "it's"},
		{"empty string", "''", TokenString, ""},
		{"backslash kept", `'a\b'`, TokenString, `a\b`},
		{"identifier", "PerfElementCount", TokenIdentifier, "PerfElementCount"},
		{"underscore identifier", "_x1", TokenIdentifier, "_x1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}
			if tokens[0].Type != tt.wantType {
				t.Errorf("type = %v, want %v", tokens[0].Type, tt.wantType)
			}
			if tokens[0].Value != tt.wantValue {
				t.Errorf("value = %q, want %q", tokens[0].Value, tt.wantValue)
			}
		})
	}
}

func TestTokenizeFullExpression(t *testing.T) {
	input := "Math.Min(25, Source.Count) >= 2 and not HasCategory('Rule')"
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}

	want := []TokenType{
		TokenIdentifier, TokenDot, TokenIdentifier, TokenLeftParen, TokenNumber, TokenComma,
		TokenIdentifier, TokenDot, TokenIdentifier, TokenRightParen, TokenGreaterEqual, TokenNumber,
		TokenAnd, TokenNot, TokenIdentifier, TokenLeftParen, TokenString, TokenRightParen, TokenEOF,
	}
	if got := tokenTypes(tokens); !reflect.DeepEqual(got, want) {
		t.Errorf("types = %v\nwant    %v", got, want)
	}
}

func TestTokenizeOffsets(t *testing.T) {
	tokens, err := Tokenize("a >= 'x'")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	wantOffsets := []int{0, 2, 5, 8}
	for i, want := range wantOffsets {
		if tokens[i].Offset != want {
			t.Errorf("tokens[%d].Offset = %d, want %d", i, tokens[i].Offset, want)
		}
	}
}

func TestTokenizeWhitespace(t *testing.T) {
	tokens, err := Tokenize(" \t1\r\n+\n2 ")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	want := []TokenType{TokenNumber, TokenPlus, TokenNumber, TokenEOF}
	if got := tokenTypes(tokens); !reflect.DeepEqual(got, want) {
		t.Errorf("types = %v, want %v", got, want)
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantChar   rune
		wantOffset int
	}{
		{"lone equals", "a = b", '=', 2},
		{"lone bang", "!a", '!', 0},
		{"hash", "#fff", '#', 0},
		{"unterminated single", "HasCategory('Rule)", '\'', 12},
		{"unterminated double", `"abc`, '"', 0},
		{"non ascii", "1 + é", 'é', 4},
		{"bracket", "a[0]", '[', 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if err == nil {
				t.Fatalf("Tokenize(%q) expected error", tt.input)
			}
			var lexErr *LexicalError
			if !errors.As(err, &lexErr) {
				t.Fatalf("error %v is not a *LexicalError", err)
			}
			if !errors.Is(err, ErrLexical) {
				t.Errorf("errors.Is(err, ErrLexical) = false")
			}
			if lexErr.Char != tt.wantChar {
				t.Errorf("Char = %q, want %q", lexErr.Char, tt.wantChar)
			}
			if lexErr.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", lexErr.Offset, tt.wantOffset)
			}
		})
	}
}

func TestTokenizeIsDeterministic(t *testing.T) {
	input := "Color.FromRgb(200, (200*(1765-PerfTotalDurationMilliseconds))/1765, 0)"
	first, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	second, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Tokenize returned different streams for identical input")
	}
}
