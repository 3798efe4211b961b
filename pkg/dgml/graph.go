package dgml

// Target types a Style can apply to.
const (
	TargetNode = "Node"
	TargetLink = "Link"
)

// Graph is a parsed DGML document. Links are not checked against Nodes: a link may
// reference an id that no node declares.
type Graph struct {
	Title      string     `json:"title"`
	Nodes      []Node     `json:"nodes"`
	Links      []Link     `json:"links"`
	Styles     []Style    `json:"styles,omitempty"`
	Categories []Category `json:"categories,omitempty"`
	Properties []Property `json:"properties,omitempty"`
}

// HasStyles reports whether the document declares at least one style rule.
func (g *Graph) HasStyles() bool {
	return len(g.Styles) > 0
}

// Node is a graph vertex. Attrs holds every attribute other than Id, Label and Category.
type Node struct {
	ID       string            `json:"id"`
	Label    string            `json:"label,omitempty"`
	Category string            `json:"category,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

// DisplayLabel returns the label, falling back to the id.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Properties returns the node's complete attribute bag as seen by style expressions,
// including Id, Label and Category. The returned map is a fresh copy.
func (n Node) Properties() map[string]string {
	props := make(map[string]string, len(n.Attrs)+3)
	for k, v := range n.Attrs {
		props[k] = v
	}
	props["Id"] = n.ID
	if n.Label != "" {
		props["Label"] = n.Label
	}
	if n.Category != "" {
		props["Category"] = n.Category
	}
	return props
}

// Link is a directed edge between two node ids. Attrs holds every attribute other than
// Source, Target and Category.
type Link struct {
	Source   string            `json:"source"`
	Target   string            `json:"target"`
	Category string            `json:"category,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

// ID derives the link's identity from its endpoints. Parallel links share an id.
func (l Link) ID() string {
	return l.Source + "-" + l.Target
}

// Properties returns the link's complete attribute bag, including Source, Target and Category.
func (l Link) Properties() map[string]string {
	props := make(map[string]string, len(l.Attrs)+3)
	for k, v := range l.Attrs {
		props[k] = v
	}
	props["Source"] = l.Source
	props["Target"] = l.Target
	if l.Category != "" {
		props["Category"] = l.Category
	}
	return props
}

// Style is a conditional rule. All Conditions must hold for the Setters to apply.
type Style struct {
	TargetType string      `json:"targetType"`
	GroupLabel string      `json:"groupLabel,omitempty"`
	ValueLabel string      `json:"valueLabel,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
	Setters    []Setter    `json:"setters,omitempty"`
}

type Condition struct {
	Expression string `json:"expression"`
}

// Setter assigns a style property from either an Expression or a literal Value.
// A non-empty Expression takes precedence. HasValue distinguishes Value="" from no Value.
type Setter struct {
	Property   string `json:"property"`
	Value      string `json:"value,omitempty"`
	HasValue   bool   `json:"hasValue,omitempty"`
	Expression string `json:"expression,omitempty"`
}

// Category and Property declarations are carried for display only.
type Category struct {
	ID    string            `json:"id"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

type Property struct {
	ID       string            `json:"id"`
	DataType string            `json:"dataType,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}
