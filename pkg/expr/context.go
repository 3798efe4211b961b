package expr

import "slices"

// Context is the read-only data an expression sees while it is evaluated.
// SourceProperties and TargetProperties are only populated for links; a nil map
// behaves as an empty one.
type Context struct {
	Properties       map[string]string
	Categories       []string
	SourceProperties map[string]string
	TargetProperties map[string]string
}

// HasCategory reports whether name is one of the element's own categories.
func (c *Context) HasCategory(name string) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Categories, name)
}

func (c *Context) own() map[string]string {
	if c == nil {
		return nil
	}
	return c.Properties
}

func (c *Context) source() map[string]string {
	if c == nil {
		return nil
	}
	return c.SourceProperties
}

func (c *Context) target() map[string]string {
	if c == nil {
		return nil
	}
	return c.TargetProperties
}

// lookup resolves a property. An absent property is the number 0; a present one is a
// number when its text is a numeral and the raw string otherwise.
func lookup(props map[string]string, name string) Value {
	raw, ok := props[name]
	if !ok {
		return Number(0)
	}
	if n, ok := parseNumeral(raw); ok {
		return Number(n)
	}
	return String(raw)
}
