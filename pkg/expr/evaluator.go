// Package expr implements the DGML style expression language: a tokenizer and a
// single-pass interpreter producing number, string or boolean values.
package expr

// Expression is a tokenized expression ready to be evaluated against any number of contexts.
type Expression struct {
	source string
	tokens []Token
}

// Compile tokenizes an expression and checks that it parses, so authoring defects
// surface before any element is styled. Parsing is repeated on every Eval; only the
// token stream is kept.
func Compile(source string) (*Expression, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	e := &Expression{source: source, tokens: tokens}
	if _, err := e.Eval(&Context{}); err != nil {
		return nil, err
	}
	return e, nil
}

// Source returns the expression text.
func (e *Expression) Source() string { return e.source }

// Eval evaluates the expression against ctx.
func (e *Expression) Eval(ctx *Context) (Value, error) {
	in := &interpreter{tokens: e.tokens, ctx: ctx}
	v, err := in.parseExpression()
	if err != nil {
		return Value{}, err
	}
	if tok := in.peek(); tok.Type != TokenEOF {
		return Value{}, newParseError(tok, "unexpected trailing input")
	}
	return v, nil
}

// Evaluate tokenizes, parses and evaluates an expression in one pass.
func Evaluate(source string, ctx *Context) (Value, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return Value{}, err
	}
	return (&Expression{source: source, tokens: tokens}).Eval(ctx)
}

// interpreter is an operator-precedence recursive descent parser that computes
// values as it recognises each production. No tree is built.
type interpreter struct {
	tokens []Token
	pos    int
	ctx    *Context
}

func (in *interpreter) peek() Token {
	return in.tokens[in.pos]
}

func (in *interpreter) advance() Token {
	tok := in.tokens[in.pos]
	if tok.Type != TokenEOF {
		in.pos++
	}
	return tok
}

func (in *interpreter) expect(typ TokenType) (Token, error) {
	tok := in.peek()
	if tok.Type != typ {
		return tok, newParseError(tok, "expected %s", typ)
	}
	return in.advance(), nil
}

func (in *interpreter) parseExpression() (Value, error) {
	return in.parseOr()
}

func (in *interpreter) parseOr() (Value, error) {
	left, err := in.parseAnd()
	if err != nil {
		return Value{}, err
	}
	for in.peek().Type == TokenOr {
		in.advance()
		right, err := in.parseAnd()
		if err != nil {
			return Value{}, err
		}
		left = Bool(left.ToBool() || right.ToBool())
	}
	return left, nil
}

func (in *interpreter) parseAnd() (Value, error) {
	left, err := in.parseComparison()
	if err != nil {
		return Value{}, err
	}
	for in.peek().Type == TokenAnd {
		in.advance()
		right, err := in.parseComparison()
		if err != nil {
			return Value{}, err
		}
		left = Bool(left.ToBool() && right.ToBool())
	}
	return left, nil
}

// parseComparison always compares numerically. Chained comparisons group left to right.
func (in *interpreter) parseComparison() (Value, error) {
	left, err := in.parseAdditive()
	if err != nil {
		return Value{}, err
	}
	for isComparison(in.peek().Type) {
		op := in.advance()
		right, err := in.parseAdditive()
		if err != nil {
			return Value{}, err
		}
		l, r := left.ToNumber(), right.ToNumber()
		switch op.Type {
		case TokenGreater:
			left = Bool(l > r)
		case TokenGreaterEqual:
			left = Bool(l >= r)
		case TokenLess:
			left = Bool(l < r)
		case TokenLessEqual:
			left = Bool(l <= r)
		case TokenEqualEqual:
			left = Bool(l == r)
		case TokenNotEqual:
			left = Bool(l != r)
		}
	}
	return left, nil
}

func isComparison(t TokenType) bool {
	switch t {
	case TokenGreater, TokenGreaterEqual, TokenLess, TokenLessEqual, TokenEqualEqual, TokenNotEqual:
		return true
	}
	return false
}

func (in *interpreter) parseAdditive() (Value, error) {
	left, err := in.parseMultiplicative()
	if err != nil {
		return Value{}, err
	}
	for in.peek().Type == TokenPlus || in.peek().Type == TokenMinus {
		op := in.advance()
		right, err := in.parseMultiplicative()
		if err != nil {
			return Value{}, err
		}
		if op.Type == TokenPlus {
			left = Number(left.ToNumber() + right.ToNumber())
		} else {
			left = Number(left.ToNumber() - right.ToNumber())
		}
	}
	return left, nil
}

// parseMultiplicative follows IEEE 754: division by zero yields an infinity or NaN.
func (in *interpreter) parseMultiplicative() (Value, error) {
	left, err := in.parseUnary()
	if err != nil {
		return Value{}, err
	}
	for in.peek().Type == TokenStar || in.peek().Type == TokenSlash {
		op := in.advance()
		right, err := in.parseUnary()
		if err != nil {
			return Value{}, err
		}
		if op.Type == TokenStar {
			left = Number(left.ToNumber() * right.ToNumber())
		} else {
			left = Number(left.ToNumber() / right.ToNumber())
		}
	}
	return left, nil
}

func (in *interpreter) parseUnary() (Value, error) {
	switch in.peek().Type {
	case TokenMinus:
		in.advance()
		v, err := in.parseUnary()
		if err != nil {
			return Value{}, err
		}
		return Number(-v.ToNumber()), nil
	case TokenNot:
		in.advance()
		v, err := in.parseUnary()
		if err != nil {
			return Value{}, err
		}
		return Bool(!v.ToBool()), nil
	}
	return in.parsePrimary()
}

func (in *interpreter) parsePrimary() (Value, error) {
	tok := in.peek()

	switch tok.Type {
	case TokenNumber:
		in.advance()
		n, ok := parseNumeral(tok.Value)
		if !ok {
			return Value{}, newParseError(tok, "invalid numeral")
		}
		return Number(n), nil

	case TokenString:
		in.advance()
		return String(tok.Value), nil

	case TokenLeftParen:
		in.advance()
		v, err := in.parseExpression()
		if err != nil {
			return Value{}, err
		}
		if _, err := in.expect(TokenRightParen); err != nil {
			return Value{}, err
		}
		return v, nil

	case TokenIdentifier:
		return in.parseIdentifier()
	}

	return Value{}, newParseError(tok, "unexpected token")
}

// parseIdentifier handles the three identifier-led forms: a property reference,
// a function call and a dotted member (namespaced call or Source/Target property).
func (in *interpreter) parseIdentifier() (Value, error) {
	ident := in.advance()

	switch in.peek().Type {
	case TokenLeftParen:
		return in.parseCall(ident, ident.Value)

	case TokenDot:
		in.advance()
		member, err := in.expect(TokenIdentifier)
		if err != nil {
			return Value{}, err
		}
		if in.peek().Type == TokenLeftParen {
			return in.parseCall(ident, ident.Value+"."+member.Value)
		}
		switch ident.Value {
		case "Source":
			return lookup(in.ctx.source(), member.Value), nil
		case "Target":
			return lookup(in.ctx.target(), member.Value), nil
		}
		return Value{}, &FunctionNotFoundError{
			ParseError: ParseError{Token: ident, Msg: "unknown object for member access"},
			Name:       ident.Value + "." + member.Value,
		}
	}

	return lookup(in.ctx.own(), ident.Value), nil
}

// parseCall parses a parenthesised argument list, evaluating arguments left to right,
// then dispatches to the built-in registry.
func (in *interpreter) parseCall(at Token, name string) (Value, error) {
	if _, err := in.expect(TokenLeftParen); err != nil {
		return Value{}, err
	}

	var args []Value
	if in.peek().Type != TokenRightParen {
		for {
			arg, err := in.parseExpression()
			if err != nil {
				return Value{}, err
			}
			args = append(args, arg)
			if in.peek().Type != TokenComma {
				break
			}
			in.advance()
		}
	}
	if _, err := in.expect(TokenRightParen); err != nil {
		return Value{}, err
	}

	fn, ok := builtins[name]
	if !ok {
		return Value{}, &FunctionNotFoundError{
			ParseError: ParseError{Token: at, Msg: "unknown function"},
			Name:       name,
		}
	}
	return fn(in.ctx, args), nil
}
