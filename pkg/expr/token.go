package expr

import "fmt"

// TokenType represents the type of a lexical token in a style expression.
type TokenType int

const (
	TokenEOF          TokenType = iota
	TokenNumber                 // integer or decimal numeral
	TokenString                 // single- or double-quoted literal
	TokenIdentifier             // bare identifier
	TokenDot                    // .
	TokenLeftParen              // (
	TokenRightParen             // )
	TokenComma                  // ,
	TokenPlus                   // +
	TokenMinus                  // -
	TokenStar                   // *
	TokenSlash                  // /
	TokenGreater                // >
	TokenGreaterEqual           // >=
	TokenLess                   // <
	TokenLessEqual              // <=
	TokenEqualEqual             // ==
	TokenNotEqual               // !=
	TokenOr                     // or
	TokenAnd                    // and
	TokenNot                    // not
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenNumber:       "NUMBER",
	TokenString:       "STRING",
	TokenIdentifier:   "IDENTIFIER",
	TokenDot:          "DOT",
	TokenLeftParen:    "LPAREN",
	TokenRightParen:   "RPAREN",
	TokenComma:        "COMMA",
	TokenPlus:         "PLUS",
	TokenMinus:        "MINUS",
	TokenStar:         "STAR",
	TokenSlash:        "SLASH",
	TokenGreater:      "GREATER",
	TokenGreaterEqual: "GREATER_EQUAL",
	TokenLess:         "LESS",
	TokenLessEqual:    "LESS_EQUAL",
	TokenEqualEqual:   "EQUAL_EQUAL",
	TokenNotEqual:     "NOT_EQUAL",
	TokenOr:           "OR",
	TokenAnd:          "AND",
	TokenNot:          "NOT",
}

// String returns a human-readable name for the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// Token is a single lexical token with its type, literal text and byte offset in the source.
type Token struct {
	Type   TokenType
	Value  string
	Offset int
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "end of expression"
	}
	return fmt.Sprintf("%s '%s'", t.Type, t.Value)
}

// keywords are matched case-sensitively against identifier-shaped runs.
var keywords = map[string]TokenType{
	"or":  TokenOr,
	"and": TokenAnd,
	"not": TokenNot,
}
