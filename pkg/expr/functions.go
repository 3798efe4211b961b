package expr

import (
	"math"
	"sort"
)

// builtin implements one callable function. Missing arguments read as undefined:
// NaN when used as a number, "undefined" when used as text.
type builtin func(ctx *Context, args []Value) Value

var builtins = map[string]builtin{
	"HasCategory": func(ctx *Context, args []Value) Value {
		return Bool(ctx.HasCategory(textArg(args, 0)))
	},
	"Math.Min": func(_ *Context, args []Value) Value {
		return Number(math.Min(numArg(args, 0), numArg(args, 1)))
	},
	"Math.Max": func(_ *Context, args []Value) Value {
		return Number(math.Max(numArg(args, 0), numArg(args, 1)))
	},
	"Math.Log": func(_ *Context, args []Value) Value {
		return Number(math.Log(numArg(args, 0)) / math.Log(numArg(args, 1)))
	},
	"Math.Abs": func(_ *Context, args []Value) Value {
		return Number(math.Abs(numArg(args, 0)))
	},
	"Color.FromRgb": func(_ *Context, args []Value) Value {
		r := channel(numArg(args, 0))
		g := channel(numArg(args, 1))
		b := channel(numArg(args, 2))
		return String("rgb(" + FormatNumber(r) + "," + FormatNumber(g) + "," + FormatNumber(b) + ")")
	},
}

// Functions returns the names of all built-in functions in sorted order.
func Functions() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func numArg(args []Value, i int) float64 {
	if i >= len(args) {
		return math.NaN()
	}
	return args[i].ToNumber()
}

func textArg(args []Value, i int) string {
	if i >= len(args) {
		return "undefined"
	}
	return args[i].ToString()
}

// channel clamps a colour component to [0,255] and rounds half up. NaN stays NaN.
func channel(f float64) float64 {
	return math.Floor(math.Max(0, math.Min(255, f)) + 0.5)
}
