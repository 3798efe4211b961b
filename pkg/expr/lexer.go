package expr

import "unicode/utf8"

// lexer holds the scanning state for one expression.
type lexer struct {
	input  string
	pos    int
	tokens []Token
}

// Tokenize converts an expression string into a token stream terminated by a TokenEOF token.
// Whitespace is discarded. Any character outside the expression alphabet, or a string literal
// without its closing quote, fails with a *LexicalError.
func Tokenize(input string) ([]Token, error) {
	l := &lexer{
		input:  input,
		tokens: make([]Token, 0, len(input)/2+1),
	}
	if err := l.scan(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) scan() error {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		start := l.pos

		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.pos++

		case ch == '\'' || ch == '"':
			if err := l.scanString(ch); err != nil {
				return err
			}

		case isDigit(ch):
			l.scanNumber()

		case isIdentStart(ch):
			l.scanIdentifier()

		default:
			typ, width := l.operator()
			if width == 0 {
				r, _ := utf8.DecodeRuneInString(l.input[start:])
				return &LexicalError{Char: r, Offset: start}
			}
			l.pos += width
			l.emit(typ, l.input[start:l.pos], start)
		}
	}

	l.emit(TokenEOF, "", len(l.input))
	return nil
}

// operator matches the fixed punctuation set at the current position.
// It returns a zero width when nothing matches.
func (l *lexer) operator() (TokenType, int) {
	next := byte(0)
	if l.pos+1 < len(l.input) {
		next = l.input[l.pos+1]
	}

	switch l.input[l.pos] {
	case '(':
		return TokenLeftParen, 1
	case ')':
		return TokenRightParen, 1
	case ',':
		return TokenComma, 1
	case '+':
		return TokenPlus, 1
	case '-':
		return TokenMinus, 1
	case '*':
		return TokenStar, 1
	case '/':
		return TokenSlash, 1
	case '.':
		return TokenDot, 1
	case '>':
		if next == '=' {
			return TokenGreaterEqual, 2
		}
		return TokenGreater, 1
	case '<':
		if next == '=' {
			return TokenLessEqual, 2
		}
		return TokenLess, 1
	case '=':
		if next == '=' {
			return TokenEqualEqual, 2
		}
	case '!':
		if next == '=' {
			return TokenNotEqual, 2
		}
	}
	return TokenEOF, 0
}

// scanString reads a literal up to the matching quote. No escapes are processed.
func (l *lexer) scanString(quote byte) error {
	start := l.pos
	l.pos++ // opening quote

	for l.pos < len(l.input) && l.input[l.pos] != quote {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return &LexicalError{Char: rune(quote), Offset: start, Unterminated: true}
	}

	l.emit(TokenString, l.input[start+1:l.pos], start)
	l.pos++ // closing quote
	return nil
}

// scanNumber reads a digit run with an optional fractional part.
func (l *lexer) scanNumber() {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos+1 < len(l.input) && l.input[l.pos] == '.' && isDigit(l.input[l.pos+1]) {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	l.emit(TokenNumber, l.input[start:l.pos], start)
}

func (l *lexer) scanIdentifier() {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}

	word := l.input[start:l.pos]
	if kw, ok := keywords[word]; ok {
		l.emit(kw, word, start)
		return
	}
	l.emit(TokenIdentifier, word, start)
}

func (l *lexer) emit(typ TokenType, value string, offset int) {
	l.tokens = append(l.tokens, Token{Type: typ, Value: value, Offset: offset})
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
