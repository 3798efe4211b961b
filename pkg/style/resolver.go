// Package style resolves a DGML document's conditional style rules into renderer
// attributes for every node and link.
package style

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/ritzau/dgml-visualizer/pkg/dgml"
	"github.com/ritzau/dgml-visualizer/pkg/expr"
	"github.com/ritzau/dgml-visualizer/pkg/logging"
)

// Attributes maps renderer attribute names to values. Values are strings or float64.
type Attributes map[string]any

// MarshalJSON writes NaN and infinite numbers as null, which JSON cannot represent.
func (a Attributes) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("null"), nil
	}
	out := make(map[string]any, len(a))
	for name, v := range a {
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			out[name] = nil
			continue
		}
		out[name] = v
	}
	return json.Marshal(out)
}

// Result holds the resolved attributes keyed by node id and link id. Elements without
// any resolved attribute have no entry.
type Result struct {
	Nodes map[string]Attributes `json:"nodes"`
	Links map[string]Attributes `json:"links"`
}

// Resolver applies style rules. It keeps no state between calls and may be shared.
type Resolver struct{}

// NewResolver creates a new style resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve evaluates the document's style rules against every node and link. Rules are
// applied in document order and the first rule to set an attribute wins. A document
// without rules gets the fallback palette on its nodes. The first failing expression
// aborts resolution with an *ElementError.
func (r *Resolver) Resolve(doc *dgml.Graph) (*Result, error) {
	result := &Result{
		Nodes: make(map[string]Attributes),
		Links: make(map[string]Attributes),
	}
	if doc == nil {
		return result, nil
	}

	if !doc.HasStyles() {
		for _, n := range doc.Nodes {
			if p, ok := fallbackPalette[n.Category]; ok {
				result.Nodes[n.ID] = p.attributes()
			}
		}
		logging.Debug("applied fallback palette", "nodes", len(doc.Nodes), "styledNodes", len(result.Nodes))
		return result, nil
	}

	index := make(map[string]dgml.Node, len(doc.Nodes))
	for _, n := range doc.Nodes {
		index[n.ID] = n
	}

	var nodeRules, linkRules []dgml.Style
	for _, s := range doc.Styles {
		switch s.TargetType {
		case dgml.TargetNode:
			nodeRules = append(nodeRules, s)
		case dgml.TargetLink:
			linkRules = append(linkRules, s)
		}
	}

	c := &compiler{cache: make(map[string]*expr.Expression)}

	for _, n := range doc.Nodes {
		ctx := &expr.Context{
			Properties: n.Properties(),
			Categories: categories(n.Category),
		}
		attrs, err := c.apply(KindNode, n.ID, nodeRules, ctx)
		if err != nil {
			return nil, err
		}
		if len(attrs) > 0 {
			result.Nodes[n.ID] = attrs
		}
	}

	for _, l := range doc.Links {
		ctx := &expr.Context{
			Properties: l.Properties(),
			Categories: categories(l.Category),
		}
		if src, ok := index[l.Source]; ok {
			ctx.SourceProperties = src.Properties()
		}
		if dst, ok := index[l.Target]; ok {
			ctx.TargetProperties = dst.Properties()
		}
		attrs, err := c.apply(KindLink, l.ID(), linkRules, ctx)
		if err != nil {
			return nil, err
		}
		if len(attrs) > 0 {
			result.Links[l.ID()] = attrs
		}
	}

	logging.Debug("resolved styles",
		"nodeRules", len(nodeRules),
		"linkRules", len(linkRules),
		"styledNodes", len(result.Nodes),
		"styledLinks", len(result.Links))

	return result, nil
}

// Validate compiles every condition and setter expression in the document and returns
// all failures joined. Rules with an unknown target type and setters for properties
// that produce no attribute are logged, not reported.
func (r *Resolver) Validate(doc *dgml.Graph) error {
	if doc == nil {
		return nil
	}

	var errs []error
	for i, s := range doc.Styles {
		kind := KindNode
		switch s.TargetType {
		case dgml.TargetNode:
		case dgml.TargetLink:
			kind = KindLink
		default:
			logging.Warn("style rule ignored", "rule", i+1, "targetType", s.TargetType)
		}

		for _, cond := range s.Conditions {
			if _, err := expr.Compile(cond.Expression); err != nil {
				errs = append(errs, &RuleError{Rule: i, TargetType: s.TargetType, Expression: cond.Expression, Err: err})
			}
		}
		for _, set := range s.Setters {
			if set.Expression != "" {
				if _, err := expr.Compile(set.Expression); err != nil {
					errs = append(errs, &RuleError{Rule: i, TargetType: s.TargetType, Expression: set.Expression, Err: err})
				}
			}
			if MappedAttributes(kind, set.Property) == nil {
				logging.Debug("setter property has no renderer attribute", "rule", i+1, "property", set.Property)
			}
		}
	}
	return errors.Join(errs...)
}

func categories(category string) []string {
	if category == "" {
		return nil
	}
	return []string{category}
}

// compiler caches compiled expressions for the duration of one Resolve call.
type compiler struct {
	cache map[string]*expr.Expression
}

func (c *compiler) eval(source string, ctx *expr.Context) (expr.Value, error) {
	e, ok := c.cache[source]
	if !ok {
		var err error
		e, err = expr.Compile(source)
		if err != nil {
			return expr.Value{}, err
		}
		c.cache[source] = e
	}
	return e.Eval(ctx)
}

// apply runs rules against one element and accumulates its attributes.
func (c *compiler) apply(kind, id string, rules []dgml.Style, ctx *expr.Context) (Attributes, error) {
	mappings := mappingsFor(kind)
	attrs := make(Attributes)

	for _, rule := range rules {
		matched := true
		for _, cond := range rule.Conditions {
			v, err := c.eval(cond.Expression, ctx)
			if err != nil {
				return nil, &ElementError{Kind: kind, ID: id, Expression: cond.Expression, Err: err}
			}
			if !v.ToBool() {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		for _, set := range rule.Setters {
			value, ok, err := c.setterValue(set, ctx)
			if err != nil {
				return nil, &ElementError{Kind: kind, ID: id, Expression: set.Expression, Err: err}
			}
			if !ok {
				continue
			}
			m, ok := mappings[set.Property]
			if !ok {
				continue
			}
			mapped := m.transform(value)
			for _, name := range m.attrs {
				if _, taken := attrs[name]; !taken {
					attrs[name] = mapped
				}
			}
		}
	}
	return attrs, nil
}

// setterValue computes a setter's raw value. Booleans become 1 or 0.
func (c *compiler) setterValue(set dgml.Setter, ctx *expr.Context) (any, bool, error) {
	if set.Expression != "" {
		v, err := c.eval(set.Expression, ctx)
		if err != nil {
			return nil, false, err
		}
		switch v.Kind() {
		case expr.KindBool:
			if v.ToBool() {
				return float64(1), true, nil
			}
			return float64(0), true, nil
		case expr.KindNumber:
			return v.ToNumber(), true, nil
		default:
			return v.ToString(), true, nil
		}
	}
	if set.HasValue {
		return set.Value, true, nil
	}
	return nil, false, nil
}
