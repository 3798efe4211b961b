package dgml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// xmlElement captures an element's attributes without committing to a schema.
type xmlElement struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

type xmlStyle struct {
	Attrs      []xml.Attr   `xml:",any,attr"`
	Conditions []xmlElement `xml:"Condition"`
	Setters    []xmlElement `xml:"Setter"`
}

type xmlGraph struct {
	XMLName    xml.Name     `xml:"DirectedGraph"`
	Attrs      []xml.Attr   `xml:",any,attr"`
	Nodes      []xmlElement `xml:"Nodes>Node"`
	Links      []xmlElement `xml:"Links>Link"`
	Categories []xmlElement `xml:"Categories>Category"`
	Properties []xmlElement `xml:"Properties>Property"`
	Styles     []xmlStyle   `xml:"Styles>Style"`
}

// Parser decodes DGML documents.
type Parser struct{}

// NewParser creates a new DGML parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a DGML document into a Graph.
func (p *Parser) Parse(data []byte) (*Graph, error) {
	data, err := toUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document text: %w", err)
	}

	// Go's XML parser only supports XML 1.0
	data = bytes.Replace(data, []byte(`<?xml version="1.1"`), []byte(`<?xml version="1.0"`), 1)

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader

	var doc xmlGraph
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	graph := &Graph{
		Title: attrValue(doc.Attrs, "Title"),
		Nodes: make([]Node, 0, len(doc.Nodes)),
		Links: make([]Link, 0, len(doc.Links)),
	}

	for i, el := range doc.Nodes {
		attrs := attrMap(el.Attrs)
		id, ok := attrs["Id"]
		if !ok {
			return nil, fmt.Errorf("node %d: missing required attribute Id", i)
		}
		node := Node{ID: id, Label: attrs["Label"], Category: attrs["Category"]}
		delete(attrs, "Id")
		delete(attrs, "Label")
		delete(attrs, "Category")
		node.Attrs = attrs
		graph.Nodes = append(graph.Nodes, node)
	}

	for i, el := range doc.Links {
		attrs := attrMap(el.Attrs)
		source, hasSource := attrs["Source"]
		target, hasTarget := attrs["Target"]
		if !hasSource || !hasTarget {
			return nil, fmt.Errorf("link %d: Source and Target are required", i)
		}
		link := Link{Source: source, Target: target, Category: attrs["Category"]}
		delete(attrs, "Source")
		delete(attrs, "Target")
		delete(attrs, "Category")
		link.Attrs = attrs
		graph.Links = append(graph.Links, link)
	}

	for _, el := range doc.Styles {
		style := Style{
			TargetType: attrValue(el.Attrs, "TargetType"),
			GroupLabel: attrValue(el.Attrs, "GroupLabel"),
			ValueLabel: attrValue(el.Attrs, "ValueLabel"),
		}
		for _, c := range el.Conditions {
			style.Conditions = append(style.Conditions, Condition{Expression: attrValue(c.Attrs, "Expression")})
		}
		for _, s := range el.Setters {
			attrs := attrMap(s.Attrs)
			value, hasValue := attrs["Value"]
			style.Setters = append(style.Setters, Setter{
				Property:   attrs["Property"],
				Value:      value,
				HasValue:   hasValue,
				Expression: attrs["Expression"],
			})
		}
		graph.Styles = append(graph.Styles, style)
	}

	for _, el := range doc.Categories {
		attrs := attrMap(el.Attrs)
		cat := Category{ID: attrs["Id"]}
		delete(attrs, "Id")
		cat.Attrs = attrs
		graph.Categories = append(graph.Categories, cat)
	}

	for _, el := range doc.Properties {
		attrs := attrMap(el.Attrs)
		prop := Property{ID: attrs["Id"], DataType: attrs["DataType"]}
		delete(attrs, "Id")
		delete(attrs, "DataType")
		prop.Attrs = attrs
		graph.Properties = append(graph.Properties, prop)
	}

	return graph, nil
}

// attrMap collects attributes by local name, skipping namespace declarations.
func attrMap(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		m[a.Name.Local] = a.Value
	}
	return m
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name && a.Name.Space != "xmlns" {
			return a.Value
		}
	}
	return ""
}

// toUTF8 transcodes documents that carry a UTF-16 byte order mark.
func toUTF8(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return data, nil
	}
	if (data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		return out, err
	}
	return bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF")), nil
}

// charsetReader accepts the encodings DGML writers declare. Text declared as UTF-16 has
// already been transcoded by toUTF8 (or was re-encoded by whoever captured it, as with
// documents read out of a debugger session), so it is passed through unchanged.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "us-ascii", "ascii", "utf-16", "utf16", "unicode":
		return input, nil
	}
	return nil, fmt.Errorf("unsupported document encoding %q", label)
}
