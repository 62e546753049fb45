package villa

import (
	"strings"

	"github.com/matzehuels/villas/pkg/errors"
)

// minRoomFloors is the smallest number of floor tiles a room may have.
const minRoomFloors = 3

// Room is a validated, immutable set of features.
type Room struct {
	features []Feature
	box      Box
}

// Box is an inclusive bounding box.
type Box struct {
	MinI, MinJ int
	MaxI, MaxJ int
}

// Rows returns the number of rows covered by the box.
func (b Box) Rows() int { return b.MaxI - b.MinI + 1 }

// Columns returns the number of columns covered by the box.
func (b Box) Columns() int { return b.MaxJ - b.MinJ + 1 }

// Contains reports whether p lies within the box.
func (b Box) Contains(p Pos) bool {
	return p.I >= b.MinI && p.I <= b.MaxI && p.J >= b.MinJ && p.J <= b.MaxJ
}

// NewRoom validates features and returns the room they form.
//
// A room must:
//   - not have two features at the same position
//   - have at least 3 floor tiles
//   - have an orthogonally continuous floor
//   - have every door adjacent (in any of the 8 directions) to a floor and on
//     the edge of the room's bounding box
//
// Validation errors have code INVALID_ROOM. Shape errors include the room drawing.
func NewRoom(features ...Feature) (*Room, error) {
	if len(features) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRoom, "a room cannot be empty")
	}
	cells := make(map[Pos]Feature, len(features))
	for _, f := range features {
		if !f.Tile.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidRoom, "room contains an unknown tile at [%d][%d]", f.I, f.J)
		}
		if prev, ok := cells[f.Pos()]; ok {
			return nil, errors.New(errors.ErrCodeInvalidRoom, "%s and %s share a position", prev, f)
		}
		cells[f.Pos()] = f
	}

	r := &Room{
		features: append([]Feature(nil), features...),
		box:      boxOf(features),
	}

	floors := r.Floors()
	if len(floors) < minRoomFloors {
		return nil, errors.New(errors.ErrCodeInvalidRoom,
			"a room cannot have less than %d floor tiles; got:\n%s", minRoomFloors, r.Draw())
	}
	if visited := walkFloors(floors[0].Pos(), cells); visited != len(floors) {
		return nil, errors.New(errors.ErrCodeInvalidRoom,
			"rooms with non-orthogonally adjacent floors are not allowed:\n%s", r.Draw())
	}
	if invalid := r.invalidDoors(cells); len(invalid) > 0 {
		names := make([]string, len(invalid))
		for i, d := range invalid {
			names[i] = d.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidRoom,
			"these doors are not adjacent to floors or not at the edge of the room: %s. Room:\n%s",
			strings.Join(names, ", "), r.Draw())
	}
	return r, nil
}

// MustRoom is like NewRoom but panics on error. It is meant for tests and
// package-level fixtures.
func MustRoom(features ...Feature) *Room {
	r, err := NewRoom(features...)
	if err != nil {
		panic(err)
	}
	return r
}

// Features returns a copy of the room features in their original order.
func (r *Room) Features() []Feature {
	return append([]Feature(nil), r.features...)
}

// Floors returns the floor features in their original order.
func (r *Room) Floors() []Feature { return r.filter(Floor) }

// Doors returns the door features in their original order.
func (r *Room) Doors() []Feature { return r.filter(Door) }

// Size returns the number of features.
func (r *Room) Size() int { return len(r.features) }

// Box returns the room bounding box.
func (r *Room) Box() Box { return r.box }

// Translate returns a copy of the room moved by di rows and dj columns.
// Validity does not depend on position, so the result needs no re-validation.
func (r *Room) Translate(di, dj int) *Room {
	moved := make([]Feature, len(r.features))
	for i, f := range r.features {
		moved[i] = f.Translate(di, dj)
	}
	return &Room{
		features: moved,
		box:      Box{MinI: r.box.MinI + di, MinJ: r.box.MinJ + dj, MaxI: r.box.MaxI + di, MaxJ: r.box.MaxJ + dj},
	}
}

// Normalize returns the room translated so its bounding box starts at (0, 0).
func (r *Room) Normalize() *Room {
	return r.Translate(-r.box.MinI, -r.box.MinJ)
}

// Draw renders the room's bounding box with one rune per cell. Cells without
// a feature are drawn as walls. Rows are separated by "\n".
func (r *Room) Draw() string {
	return drawFeatures(r.features, r.box)
}

// String returns the room drawing.
func (r *Room) String() string { return r.Draw() }

func (r *Room) filter(t Tile) []Feature {
	var out []Feature
	for _, f := range r.features {
		if f.Tile == t {
			out = append(out, f)
		}
	}
	return out
}

// invalidDoors returns doors that touch no floor or are not on the box edge.
func (r *Room) invalidDoors(cells map[Pos]Feature) []Feature {
	var invalid []Feature
	for _, d := range r.Doors() {
		if !touchesFloor(d.Pos(), cells) || !r.atEdge(d.Pos()) {
			invalid = append(invalid, d)
		}
	}
	return invalid
}

func (r *Room) atEdge(p Pos) bool {
	inside := 0
	for _, n := range p.Orthogonal() {
		if r.box.Contains(n) {
			inside++
		}
	}
	return inside < len(orthogonal)
}

func touchesFloor(p Pos, cells map[Pos]Feature) bool {
	for _, n := range p.Adjacent() {
		if f, ok := cells[n]; ok && f.Tile == Floor {
			return true
		}
	}
	return false
}

// walkFloors counts the floor cells reachable from origin by orthogonal steps
// over floors.
func walkFloors(origin Pos, cells map[Pos]Feature) int {
	visited := map[Pos]bool{origin: true}
	pending := []Pos{origin}
	for len(pending) > 0 {
		curr := pending[0]
		pending = pending[1:]
		for _, n := range curr.Orthogonal() {
			if f, ok := cells[n]; ok && f.Tile == Floor && !visited[n] {
				visited[n] = true
				pending = append(pending, n)
			}
		}
	}
	return len(visited)
}

func boxOf(features []Feature) Box {
	b := Box{MinI: features[0].I, MinJ: features[0].J, MaxI: features[0].I, MaxJ: features[0].J}
	for _, f := range features[1:] {
		b.MinI = min(b.MinI, f.I)
		b.MinJ = min(b.MinJ, f.J)
		b.MaxI = max(b.MaxI, f.I)
		b.MaxJ = max(b.MaxJ, f.J)
	}
	return b
}

func drawFeatures(features []Feature, box Box) string {
	canvas := make([][]rune, box.Rows())
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(string(Wall.Rune()), box.Columns()))
	}
	for _, f := range features {
		canvas[f.I-box.MinI][f.J-box.MinJ] = f.Tile.Rune()
	}
	lines := make([]string, len(canvas))
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}
