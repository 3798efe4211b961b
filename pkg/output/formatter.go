package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/ritzau/dgml-visualizer/pkg/analysis"
	"github.com/ritzau/dgml-visualizer/pkg/model"
)

// PrintReport prints a nicely formatted summary of a snapshot with colors
func PrintReport(w io.Writer, snap *analysis.Snapshot) {
	// Color definitions
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	title := snap.Title
	if title == "" {
		title = "(untitled)"
	}
	header := "DGML Visualizer - " + title
	bold.Fprintln(w, header)
	bold.Fprintln(w, strings.Repeat("=", len(header)))
	fmt.Fprintf(w, "Document: %s\n", snap.Document)

	if snap.Err != nil {
		fmt.Fprintln(w)
		red.Fprintln(w, "ERROR:")
		fmt.Fprintf(w, "  %v\n", snap.Err)
		return
	}

	stats := snap.Stats
	fmt.Fprintf(w, "Nodes: %d\n", stats.Nodes)
	fmt.Fprintf(w, "Links: %d\n", stats.Links)
	fmt.Fprintf(w, "Style rules: %d\n", stats.Styles)

	_, _, styled := model.Counts(snap.Elements)
	if styled == 0 {
		yellow.Fprintf(w, "Styled elements: 0\n")
	} else {
		green.Fprintf(w, "Styled elements: %d (%d nodes, %d links)\n", styled, len(snap.Result.Nodes), len(snap.Result.Links))
	}
	fmt.Fprintln(w)

	if len(stats.Categories) > 0 {
		bold.Fprintln(w, "CATEGORIES:")
		names := make([]string, 0, len(stats.Categories))
		for name := range stats.Categories {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cyan.Fprintf(w, "  %-20s", name)
			fmt.Fprintf(w, " %d\n", stats.Categories[name])
		}
		fmt.Fprintln(w)
	}

	if len(snap.Roots) > 0 {
		fmt.Fprintf(w, "Roots: %s\n\n", strings.Join(snap.Roots, ", "))
	}

	if len(snap.Cycles) > 0 {
		yellow.Fprintf(w, "CYCLES (%d):\n", len(snap.Cycles))
		for _, c := range snap.Cycles {
			path := append(append([]string{}, c...), c[0])
			fmt.Fprintf(w, "  %s\n", strings.Join(path, " -> "))
		}
		fmt.Fprintln(w)
	}

	if len(snap.Dangling) > 0 {
		red.Fprintf(w, "DANGLING LINKS (%d):\n", len(snap.Dangling))
		for _, l := range snap.Dangling {
			yellow.Fprintf(w, "  %s\n", l.ID())
		}
		fmt.Fprintln(w)
	}

	if len(snap.Duplicates) > 0 {
		yellow.Fprintf(w, "DUPLICATE LINKS (%d):\n", len(snap.Duplicates))
		for _, id := range snap.Duplicates {
			fmt.Fprintf(w, "  %s\n", id)
		}
		fmt.Fprintln(w)
	}

	if len(snap.Dangling) == 0 && len(snap.Duplicates) == 0 {
		green.Fprintln(w, "✓ All links reference declared nodes")
	}
}

// PrintCheck prints the outcome of validating a document's style rules.
func PrintCheck(w io.Writer, document string, err error) {
	if err == nil {
		color.New(color.FgGreen).Fprintf(w, "✓ %s: all style expressions are valid\n", document)
		return
	}
	color.New(color.FgRed).Fprintf(w, "✗ %s:\n", document)
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// WriteJSON writes the snapshot as indented JSON.
func WriteJSON(w io.Writer, snap *analysis.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}
