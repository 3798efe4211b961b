package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/ritzau/dgml-visualizer/pkg/analysis"
	"github.com/ritzau/dgml-visualizer/pkg/source"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const doc = `<DirectedGraph Title="Sample">
  <Nodes>
    <Node Id="a" Category="Rule"/>
    <Node Id="b" Category="Join"/>
    <Node Id="c" Category="Join"/>
  </Nodes>
  <Links>
    <Link Source="a" Target="b"/>
    <Link Source="b" Target="a"/>
    <Link Source="a" Target="b"/>
    <Link Source="c" Target="ghost"/>
  </Links>
</DirectedGraph>`

func run(t *testing.T, content string) *analysis.Snapshot {
	t.Helper()
	r := analysis.NewRunner(source.NewReader("sample.dgml", strings.NewReader(content)), nil, analysis.Options{})
	snap, _ := r.Run(context.Background(), "test")
	return snap
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, run(t, doc))
	out := buf.String()

	for _, want := range []string{
		"DGML Visualizer - Sample",
		"Document: sample.dgml",
		"Nodes: 3",
		"Links: 4",
		"Styled elements: 3 (3 nodes, 0 links)",
		fmt.Sprintf("  %-20s 2", "Join"),
		"CYCLES (1):",
		"DANGLING LINKS (1):",
		"  c-ghost",
		"DUPLICATE LINKS (1):",
		"  a-b",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "All links reference declared nodes") {
		t.Error("success line printed despite dangling links")
	}
}

func TestPrintReportError(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, run(t, "<DirectedGraph><Nodes>"))
	out := buf.String()
	if !strings.Contains(out, "ERROR:") {
		t.Errorf("report lacks the error:\n%s", out)
	}
	if strings.Contains(out, "Nodes:") {
		t.Errorf("a failed snapshot should not report counts:\n%s", out)
	}
}

func TestPrintCheck(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"valid", nil, []string{"✓ g.dgml: all style expressions are valid"}},
		{"invalid", errors.Join(errors.New("style 1: bad"), errors.New("style 2: worse")),
			[]string{"✗ g.dgml:", "  style 1: bad", "  style 2: worse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintCheck(&buf, "g.dgml", tt.err)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output lacks %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, run(t, doc)); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var got struct {
		Title    string `json:"title"`
		Elements []struct {
			Group string `json:"group"`
		} `json:"elements"`
		Styles struct {
			Nodes map[string]map[string]any `json:"nodes"`
		} `json:"styles"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, buf.String())
	}
	if got.Title != "Sample" || len(got.Elements) != 7 {
		t.Errorf("title %q, %d elements", got.Title, len(got.Elements))
	}
	if got.Styles.Nodes["a"]["background-color"] != "#800080" {
		t.Errorf("a styles = %v, want the Rule palette", got.Styles.Nodes["a"])
	}
}

const zeroDoc = `<DirectedGraph Title="Zero">
  <Nodes>
    <Node Id="a" Count="0"/>
    <Node Id="b" Count="2"/>
  </Nodes>
  <Styles>
    <Style TargetType="Node">
      <Setter Property="StrokeThickness" Expression="1 / Count"/>
    </Style>
  </Styles>
</DirectedGraph>`

func TestWriteJSONNonFinite(t *testing.T) {
	snap := run(t, zeroDoc)
	if snap.Err != nil {
		t.Fatalf("Run: %v", snap.Err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, snap); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var got struct {
		Styles struct {
			Nodes map[string]map[string]any `json:"nodes"`
		} `json:"styles"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, buf.String())
	}
	width, ok := got.Styles.Nodes["a"]["border-width"]
	if !ok || width != nil {
		t.Errorf("a border-width = %v (present %v), want null", width, ok)
	}
	if got.Styles.Nodes["b"]["border-width"] != 0.5 {
		t.Errorf("b border-width = %v, want 0.5", got.Styles.Nodes["b"]["border-width"])
	}
}
