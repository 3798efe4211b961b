package web

// StyleRule is one entry of the renderer's base stylesheet.
type StyleRule struct {
	Selector string         `json:"selector"`
	Style    map[string]any `json:"style"`
}

// BaseStyles returns the default node and edge stylesheet. Resolved element styles
// are applied on top of it by the client.
func BaseStyles() []StyleRule {
	return []StyleRule{
		{
			Selector: "node",
			Style: map[string]any{
				"shape":              "roundrectangle",
				"label":              "data(label)",
				"text-valign":        "center",
				"text-halign":        "center",
				"color":              "#222",
				"background-color":   "#e0e0e0",
				"border-width":       1,
				"border-color":       "#888",
				"font-family":        "Segoe UI, Arial, sans-serif",
				"font-size":          "13px",
				"padding":            "8px 16px",
				"width":              "label",
				"height":             "label",
				"min-width":          40,
				"min-height":         32,
				"text-wrap":          "wrap",
				"text-max-width":     200,
				"text-outline-width": 0,
				"border-radius":      5,
			},
		},
		{
			Selector: "edge",
			Style: map[string]any{
				"width":              2,
				"line-color":         "#ccc",
				"target-arrow-color": "#ccc",
				"target-arrow-shape": "triangle",
				"curve-style":        "bezier",
			},
		},
	}
}

// Layout returns the layered top-down layout options.
func Layout() map[string]any {
	return map[string]any{
		"name":                        "elk",
		"nodeDimensionsIncludeLabels": true,
		"elk": map[string]any{
			"algorithm":                                 "layered",
			"elk.direction":                             "DOWN",
			"elk.spacing.nodeNode":                      250,
			"elk.layered.spacing.nodeNodeBetweenLayers": 150,
			"elk.layered.nodePlacement.strategy":        "NETWORK_SIMPLEX",
		},
		"fit":     true,
		"padding": 50,
		"animate": false,
	}
}
