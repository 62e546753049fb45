package blueprint

import (
	"strings"

	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/villa"
)

// blank is accepted in drawings as an explicit wall, since leading and
// trailing spaces do not survive many editors.
const blank = '.'

// ParseDrawing converts an ASCII drawing into features with row 0 at the top
// line. Walls (' ' or '.') are skipped. A single leading newline is ignored so
// multi-line string literals can start on their own line.
func ParseDrawing(drawing string) ([]villa.Feature, error) {
	drawing = strings.ReplaceAll(drawing, "\r\n", "\n")
	drawing = strings.TrimPrefix(drawing, "\n")

	var features []villa.Feature
	for i, line := range strings.Split(drawing, "\n") {
		for j, r := range []rune(line) {
			if r == blank {
				continue
			}
			t, err := villa.ParseTile(r)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "drawing line %d, column %d", i+1, j+1)
			}
			if t == villa.Wall {
				continue
			}
			features = append(features, villa.NewFeature(t, i, j))
		}
	}
	if len(features) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "drawing has no features")
	}
	return features, nil
}

// Draw renders a room as a blueprint drawing: its normalized drawing with
// walls written as '.' and trailing walls trimmed. A row of only walls keeps
// a single '.' so every row stays anchored to the room's bounding box.
func Draw(r *villa.Room) string {
	wall := string(villa.Wall.Rune())
	lines := strings.Split(r.Normalize().Draw(), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, wall)
		if line == "" {
			line = wall
		}
		lines[i] = strings.ReplaceAll(line, wall, string(blank))
	}
	return strings.Join(lines, "\n") + "\n"
}
