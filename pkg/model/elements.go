package model

import (
	"github.com/ritzau/dgml-visualizer/pkg/dgml"
	"github.com/ritzau/dgml-visualizer/pkg/style"
)

// Element groups understood by the renderer.
const (
	GroupNodes = "nodes"
	GroupEdges = "edges"
)

// Element is one renderer element: a node or an edge.
type Element struct {
	Group string      `json:"group"`
	Data  ElementData `json:"data"`
}

// ElementData is the per-element payload. ComputedStyle carries the resolved
// attributes and is omitted for unstyled elements.
type ElementData struct {
	ID            string            `json:"id"`
	Label         string            `json:"label,omitempty"`
	Category      string            `json:"category,omitempty"`
	Source        string            `json:"source,omitempty"`
	Target        string            `json:"target,omitempty"`
	Properties    map[string]string `json:"properties,omitempty"`
	ComputedStyle style.Attributes  `json:"computedStyle,omitempty"`
}

// BuildElements converts a document into renderer elements, nodes first and then
// links, each in document order. result may be nil.
func BuildElements(doc *dgml.Graph, result *style.Result) []Element {
	if doc == nil {
		return []Element{}
	}

	elements := make([]Element, 0, len(doc.Nodes)+len(doc.Links))

	for _, n := range doc.Nodes {
		data := ElementData{
			ID:         n.ID,
			Label:      n.DisplayLabel(),
			Category:   n.Category,
			Properties: n.Attrs,
		}
		if result != nil {
			data.ComputedStyle = result.Nodes[n.ID]
		}
		elements = append(elements, Element{Group: GroupNodes, Data: data})
	}

	for _, l := range doc.Links {
		data := ElementData{
			ID:         l.ID(),
			Category:   l.Category,
			Source:     l.Source,
			Target:     l.Target,
			Properties: l.Attrs,
		}
		if result != nil {
			data.ComputedStyle = result.Links[l.ID()]
		}
		elements = append(elements, Element{Group: GroupEdges, Data: data})
	}

	return elements
}

// Counts returns how many node and edge elements there are and how many carry a style.
func Counts(elements []Element) (nodes, edges, styled int) {
	for _, e := range elements {
		switch e.Group {
		case GroupNodes:
			nodes++
		case GroupEdges:
			edges++
		}
		if len(e.Data.ComputedStyle) > 0 {
			styled++
		}
	}
	return nodes, edges, styled
}
