package villa

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/villas/pkg/errors"
)

// Feature is a tile at a specific position.
type Feature struct {
	Tile Tile `json:"tile" toml:"tile" yaml:"tile"`
	I    int  `json:"i" toml:"i" yaml:"i"`
	J    int  `json:"j" toml:"j" yaml:"j"`
}

// NewFeature returns a feature with tile t at row i, column j.
func NewFeature(t Tile, i, j int) Feature {
	return Feature{Tile: t, I: i, J: j}
}

// FloorAt returns a floor feature at row i, column j.
func FloorAt(i, j int) Feature { return Feature{Tile: Floor, I: i, J: j} }

// DoorAt returns a door feature at row i, column j.
func DoorAt(i, j int) Feature { return Feature{Tile: Door, I: i, J: j} }

// StairAt returns a stair feature at row i, column j.
func StairAt(i, j int) Feature { return Feature{Tile: Stair, I: i, J: j} }

// Pos returns the feature position.
func (f Feature) Pos() Pos { return Pos{I: f.I, J: f.J} }

// Translate returns the feature moved by di rows and dj columns.
func (f Feature) Translate(di, dj int) Feature {
	return Feature{Tile: f.Tile, I: f.I + di, J: f.J + dj}
}

// String formats the feature as its tile name and position, e.g. "door[0][3]".
func (f Feature) String() string {
	return fmt.Sprintf("%s[%d][%d]", f.Tile.Name(), f.I, f.J)
}

// Pos is a (row, column) coordinate.
type Pos struct {
	I int `json:"i"`
	J int `json:"j"`
}

// String formats the position as "i,j".
func (p Pos) String() string {
	return fmt.Sprintf("%d,%d", p.I, p.J)
}

// ParsePos parses a position written as "i,j".
func ParsePos(s string) (Pos, error) {
	i, j, ok := strings.Cut(s, ",")
	if !ok {
		return Pos{}, errors.New(errors.ErrCodeInvalidInput, "position must be \"i,j\", got %q", s)
	}
	pi, err1 := strconv.Atoi(strings.TrimSpace(i))
	pj, err2 := strconv.Atoi(strings.TrimSpace(j))
	if err1 != nil || err2 != nil {
		return Pos{}, errors.New(errors.ErrCodeInvalidInput, "position must be \"i,j\", got %q", s)
	}
	return Pos{I: pi, J: pj}, nil
}

// Add returns p offset by d.
func (p Pos) Add(d Pos) Pos {
	return Pos{I: p.I + d.I, J: p.J + d.J}
}

// Orthogonal offsets in the order up, down, left, right.
var orthogonal = []Pos{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// diagonal offsets in the order up-left, up-right, down-left, down-right.
var diagonal = []Pos{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

// Orthogonal returns the four orthogonal neighbors of p (up, down, left, right).
func (p Pos) Orthogonal() []Pos {
	return p.neighbors(orthogonal)
}

// Adjacent returns all eight neighbors of p, orthogonal ones first.
func (p Pos) Adjacent() []Pos {
	return append(p.neighbors(orthogonal), p.neighbors(diagonal)...)
}

func (p Pos) neighbors(offsets []Pos) []Pos {
	out := make([]Pos, len(offsets))
	for i, d := range offsets {
		out[i] = p.Add(d)
	}
	return out
}
