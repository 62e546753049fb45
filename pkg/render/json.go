package render

import (
	"encoding/json"

	"github.com/matzehuels/villas/pkg/plan"
	"github.com/matzehuels/villas/pkg/villa"
)

// Document is the JSON export of a plan.
type Document struct {
	Name     string         `json:"name,omitempty"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Rows     []string       `json:"rows"`
	Rooms    []DocumentRoom `json:"rooms,omitempty"`
	Regions  []plan.Region  `json:"regions"`
	Passages []plan.Passage `json:"passages"`
	Isolated []string       `json:"isolated,omitempty"`
}

// DocumentRoom is a placed room in a [Document].
type DocumentRoom struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Features []villa.Feature `json:"features"`
}

// NewDocument builds the export document, analyzing the plan if a is nil.
func NewDocument(name string, p *plan.Plan, a *plan.Analysis) Document {
	if a == nil {
		a = p.Analyze()
	}
	b := p.Bounds()
	doc := Document{
		Name:     name,
		Width:    b.Width,
		Height:   b.Height,
		Regions:  nonNil(a.Regions),
		Passages: nonNil(a.Passages),
		Isolated: a.Isolated(),
	}
	for _, row := range p.Grid().Rows() {
		runes := make([]rune, len(row))
		for j, t := range row {
			runes[j] = t.Rune()
		}
		doc.Rows = append(doc.Rows, string(runes))
	}
	for _, r := range p.Rooms() {
		doc.Rooms = append(doc.Rooms, DocumentRoom{ID: r.ID, Name: r.Name, Features: r.Features()})
	}
	return doc
}

// JSON renders the plan and its analysis as indented JSON.
func JSON(name string, p *plan.Plan, a *plan.Analysis) ([]byte, error) {
	data, err := json.MarshalIndent(NewDocument(name, p, a), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
