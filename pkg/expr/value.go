package expr

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which member of the Value union is populated.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value is the scalar result of evaluating an expression: a number, a string or a boolean.
// The zero Value is the number 0.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
}

// Number returns a numeric Value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports the Value's type.
func (v Value) Kind() Kind { return v.kind }

// ToNumber coerces the Value to a float64.
// Booleans are 1 or 0. Strings are parsed as decimal numerals after trimming whitespace;
// the empty string is 0 and anything unparsable is NaN.
func (v Value) ToNumber() float64 {
	switch v.kind {
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		if n, ok := parseNumeral(v.str); ok {
			return n
		}
		return math.NaN()
	default:
		return v.num
	}
}

// ToBool coerces the Value to a boolean.
// Numbers are true unless zero or NaN; strings are true unless empty.
func (v Value) ToBool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		return v.str != ""
	default:
		return v.num != 0 && !math.IsNaN(v.num)
	}
}

// ToString renders the Value as text.
func (v Value) ToString() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.str
	default:
		return FormatNumber(v.num)
	}
}

func (v Value) String() string { return v.ToString() }

// Equal reports whether two Values have the same kind and payload. NaN is equal to NaN here.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.str == o.str
	default:
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	}
}

// FormatNumber renders a float the way the renderer expects numbers in text:
// integral values without a fraction, NaN and infinities spelled out.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Exponents carry no leading zeros: 1e-7, not 1e-07
		mant, exp, _ := strings.Cut(s, "e")
		return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseNumeral parses property text as a number. Blank text is 0.
// Only plain decimal notation with an optional exponent is accepted, plus the
// spelled-out infinities FormatNumber produces.
func parseNumeral(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0, true
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isDigit(c) && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}
