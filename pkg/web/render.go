package web

import (
	"embed"
	"html/template"
	"io"

	"github.com/ritzau/dgml-visualizer/pkg/model"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templates = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

// PageView is the data rendered into the graph page.
type PageView struct {
	Title      string
	Document   string
	SnapshotID string
	Elements   []model.Element
	Styles     []StyleRule
	Layout     map[string]any
	Live       bool // subscribe to reloads
}

// NewPageView fills in the base stylesheet and layout. A blank title falls back to
// the document name.
func NewPageView(title, document, snapshotID string, elements []model.Element) PageView {
	if title == "" {
		title = document
	}
	if elements == nil {
		elements = []model.Element{}
	}
	return PageView{
		Title:      title,
		Document:   document,
		SnapshotID: snapshotID,
		Elements:   elements,
		Styles:     BaseStyles(),
		Layout:     Layout(),
	}
}

// RenderPage writes the graph page.
func RenderPage(w io.Writer, view PageView) error {
	return templates.ExecuteTemplate(w, "page.html", view)
}

type errorView struct {
	Message    string
	SnapshotID string
	Live       bool
}

// RenderError writes the page shown in place of the graph when a document cannot be
// rendered. The message is escaped.
func RenderError(w io.Writer, err error) error {
	return templates.ExecuteTemplate(w, "error.html", errorView{Message: err.Error()})
}

// renderLiveError is RenderError for a served snapshot: the page reloads once a newer
// snapshot is published.
func renderLiveError(w io.Writer, err error, snapshotID string) error {
	return templates.ExecuteTemplate(w, "error.html", errorView{Message: err.Error(), SnapshotID: snapshotID, Live: true})
}
