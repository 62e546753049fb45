package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/villas/pkg/plan"
)

func testGraph() plan.Graph {
	return plan.Graph{
		Nodes: []plan.Node{
			{ID: "r1", Size: 7, Stairs: 1, Rooms: []string{"hall"}},
			{ID: "r2", Size: 6, Rooms: []string{"store"}},
			{ID: "r3", Size: 1},
		},
		Edges: []plan.Edge{{From: "r1", To: "r2", Passage: "p1"}},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testGraph(), Options{})

	if !strings.HasPrefix(dot, "graph G {") {
		t.Error("ToDOT() output missing graph declaration")
	}
	for _, id := range []string{`"r1" [label="r1"`, `"r2" [label="r2"`, `"r3" [label="r3"`} {
		if !strings.Contains(dot, id) {
			t.Errorf("ToDOT() output missing node %s", id)
		}
	}
	if !strings.Contains(dot, `"r1" -- "r2" [label="p1"]`) {
		t.Error("ToDOT() output missing edge")
	}
}

func TestToDOT_Isolated(t *testing.T) {
	dot := ToDOT(testGraph(), Options{})

	var isolated string
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, `"r3" [`) {
			isolated = line
		}
		if strings.Contains(line, `"r1" [`) && strings.Contains(line, "dashed") {
			t.Error("ToDOT() marked a linked region as isolated")
		}
	}
	if !strings.Contains(isolated, "dashed") || !strings.Contains(isolated, "lightgrey") {
		t.Errorf("ToDOT() isolated region not highlighted: %q", isolated)
	}

	single := ToDOT(plan.Graph{Nodes: []plan.Node{{ID: "r1", Size: 3}}}, Options{})
	if strings.Contains(single, "dashed") {
		t.Error("ToDOT() single region should not be highlighted")
	}
}

func TestFmtLabel_Simple(t *testing.T) {
	label := fmtLabel(plan.Node{ID: "r1", Size: 7}, false)
	if label != "r1" {
		t.Errorf("fmtLabel() simple mode = %q, want %q", label, "r1")
	}
}

func TestFmtLabel_Detailed(t *testing.T) {
	n := plan.Node{ID: "r1", Size: 7, Stairs: 1, Rooms: []string{"hall", "annex"}}
	want := "r1\ncells: 7\nstairs: 1\nrooms: hall, annex"
	if got := fmtLabel(n, true); got != want {
		t.Errorf("fmtLabel() detailed mode = %q, want %q", got, want)
	}

	bare := fmtLabel(plan.Node{ID: "r2", Size: 3}, true)
	if bare != "r2\ncells: 3" {
		t.Errorf("fmtLabel() detailed mode without extras = %q", bare)
	}
}

func TestFitSVG(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(fitSVG(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("fitSVG() = %q, want %q", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(fitSVG(plain)) != string(plain) {
		t.Error("fitSVG() changed an SVG without viewBox")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testGraph(), Options{Detailed: true}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output is not an SVG document")
	}
	if !strings.Contains(string(svg), "r3") {
		t.Error("RenderSVG() output missing isolated region")
	}
}
