// Package graph indexes a DGML document as a directed graph for structural queries.
package graph

import (
	"slices"
	"sort"

	"github.com/ritzau/dgml-visualizer/pkg/dgml"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Index is a read-only directed view of a document's nodes and links. Links whose
// endpoints are not declared as nodes are kept aside as dangling.
type Index struct {
	graph     *simple.DirectedGraph
	ids       map[string]int64
	names     []string
	nodes     map[string]dgml.Node
	dangling  []dgml.Link
	selfLoops []string
	parallel  map[string]int
}

// Build creates an index for doc. Duplicate node ids keep the first position and the
// last declaration.
func Build(doc *dgml.Graph) *Index {
	ix := &Index{
		graph:    simple.NewDirectedGraph(),
		ids:      make(map[string]int64),
		nodes:    make(map[string]dgml.Node),
		parallel: make(map[string]int),
	}
	if doc == nil {
		return ix
	}

	for _, n := range doc.Nodes {
		ix.nodes[n.ID] = n
		if _, exists := ix.ids[n.ID]; exists {
			continue
		}
		id := int64(len(ix.names))
		ix.ids[n.ID] = id
		ix.names = append(ix.names, n.ID)
		ix.graph.AddNode(simple.Node(id))
	}

	for _, l := range doc.Links {
		from, okFrom := ix.ids[l.Source]
		to, okTo := ix.ids[l.Target]
		if !okFrom || !okTo {
			ix.dangling = append(ix.dangling, l)
			continue
		}

		// simple.DirectedGraph rejects self edges
		if from == to {
			if !slices.Contains(ix.selfLoops, l.Source) {
				ix.selfLoops = append(ix.selfLoops, l.Source)
			} else {
				ix.parallel[l.ID()]++
			}
			continue
		}

		if ix.graph.HasEdgeFromTo(from, to) {
			ix.parallel[l.ID()]++
			continue
		}
		ix.graph.SetEdge(ix.graph.NewEdge(ix.graph.Node(from), ix.graph.Node(to)))
	}

	return ix
}

// Graph returns the underlying directed graph. Node ids are document positions.
func (ix *Index) Graph() graph.Directed {
	return ix.graph
}

// Node returns a declared node by id.
func (ix *Index) Node(id string) (dgml.Node, bool) {
	n, ok := ix.nodes[id]
	return n, ok
}

// Len returns the number of distinct node ids.
func (ix *Index) Len() int {
	return len(ix.names)
}

// Successors returns the ids a node links to, in document order.
func (ix *Index) Successors(id string) []string {
	gid, ok := ix.ids[id]
	if !ok {
		return nil
	}
	return ix.collect(ix.graph.From(gid))
}

// Predecessors returns the ids linking to a node, in document order.
func (ix *Index) Predecessors(id string) []string {
	gid, ok := ix.ids[id]
	if !ok {
		return nil
	}
	return ix.collect(ix.graph.To(gid))
}

func (ix *Index) collect(it graph.Nodes) []string {
	var ids []int64
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	slices.Sort(ids)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = ix.names[id]
	}
	return out
}

// Roots returns the nodes without incoming links, in document order.
func (ix *Index) Roots() []string {
	var roots []string
	for id, name := range ix.names {
		if ix.graph.To(int64(id)).Len() == 0 {
			roots = append(roots, name)
		}
	}
	return roots
}

// Dangling returns links that reference an undeclared node.
func (ix *Index) Dangling() []dgml.Link {
	return ix.dangling
}

// DuplicateLinks returns the ids of links declared more than once, sorted. Such links
// share one styling entry.
func (ix *Index) DuplicateLinks() []string {
	out := make([]string, 0, len(ix.parallel))
	for id := range ix.parallel {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Cycles returns every strongly connected component with more than one node, plus
// nodes linking to themselves. Members are in document order and components are
// ordered by their first member.
func (ix *Index) Cycles() [][]string {
	var comps [][]int64
	for _, scc := range topo.TarjanSCC(ix.graph) {
		if len(scc) < 2 {
			continue
		}
		ids := make([]int64, len(scc))
		for i, n := range scc {
			ids[i] = n.ID()
		}
		slices.Sort(ids)
		comps = append(comps, ids)
	}
	for _, name := range ix.selfLoops {
		comps = append(comps, []int64{ix.ids[name]})
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })

	out := make([][]string, len(comps))
	for i, comp := range comps {
		names := make([]string, len(comp))
		for j, id := range comp {
			names[j] = ix.names[id]
		}
		out[i] = names
	}
	return out
}

// Stats summarises a document's structure.
type Stats struct {
	Nodes          int            `json:"nodes"`
	Links          int            `json:"links"`
	Styles         int            `json:"styles"`
	Categories     map[string]int `json:"categories"`
	Roots          int            `json:"roots"`
	Cycles         int            `json:"cycles"`
	DanglingLinks  int            `json:"danglingLinks"`
	DuplicateLinks int            `json:"duplicateLinks"`
}

// Stats computes structural statistics for doc using the index.
func (ix *Index) Stats(doc *dgml.Graph) Stats {
	s := Stats{
		Categories:     make(map[string]int),
		Roots:          len(ix.Roots()),
		Cycles:         len(ix.Cycles()),
		DanglingLinks:  len(ix.dangling),
		DuplicateLinks: len(ix.parallel),
	}
	if doc == nil {
		return s
	}
	s.Nodes = len(doc.Nodes)
	s.Links = len(doc.Links)
	s.Styles = len(doc.Styles)
	for _, n := range doc.Nodes {
		if n.Category != "" {
			s.Categories[n.Category]++
		}
	}
	return s
}
