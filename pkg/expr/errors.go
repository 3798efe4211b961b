package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrLexical matches any *LexicalError via errors.Is.
	ErrLexical = errors.New("lexical error")
	// ErrParse matches any *ParseError, including *FunctionNotFoundError.
	ErrParse = errors.New("parse error")
	// ErrFunctionNotFound matches any *FunctionNotFoundError.
	ErrFunctionNotFound = errors.New("function not found")
)

// LexicalError reports a character the tokenizer cannot accept.
type LexicalError struct {
	Char         rune
	Offset       int
	Unterminated bool // Char is the opening quote of a string literal that never closes
}

func (e *LexicalError) Error() string {
	if e.Unterminated {
		return fmt.Sprintf("unterminated string literal starting with %q at position %d", e.Char, e.Offset)
	}
	return fmt.Sprintf("unexpected character %q at position %d", e.Char, e.Offset)
}

func (e *LexicalError) Is(target error) bool {
	return target == ErrLexical
}

// ParseError reports a malformed token sequence.
type ParseError struct {
	Token Token
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: got %s at position %d", e.Msg, e.Token, e.Token.Offset)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// FunctionNotFoundError reports a call outside the built-in registry, or a dotted
// member access on an object other than Source or Target.
type FunctionNotFoundError struct {
	ParseError
	Name string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' at position %d", e.Msg, e.Name, e.Token.Offset)
}

func (e *FunctionNotFoundError) Is(target error) bool {
	return target == ErrFunctionNotFound || target == ErrParse
}

func (e *FunctionNotFoundError) Unwrap() error {
	return &e.ParseError
}

func newParseError(tok Token, format string, args ...any) *ParseError {
	return &ParseError{Token: tok, Msg: fmt.Sprintf(format, args...)}
}
