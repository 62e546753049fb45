package villa

import (
	"strings"

	"github.com/matzehuels/villas/pkg/errors"
)

// Grid is a rectangular map of tiles. A new grid is solid rock: every cell
// holds a [Wall]. A Grid is not safe for concurrent mutation.
type Grid struct {
	bounds Bounds
	tiles  [][]Tile
}

// Placement is a single tile placement used by [Grid.PlaceAll].
type Placement struct {
	Tile Tile
	I, J int
}

// NewGrid creates a width × height grid filled with walls.
func NewGrid(width, height int) (*Grid, error) {
	b, err := NewBounds(width, height)
	if err != nil {
		return nil, err
	}
	tiles := make([][]Tile, b.Rows())
	for i := range tiles {
		row := make([]Tile, b.Columns())
		for j := range row {
			row[j] = Wall
		}
		tiles[i] = row
	}
	return &Grid{bounds: b, tiles: tiles}, nil
}

// Bounds returns the grid size.
func (g *Grid) Bounds() Bounds { return g.bounds }

// Get returns the tile at (i, j).
func (g *Grid) Get(i, j int) (Tile, error) {
	if err := g.bounds.Check(i, j); err != nil {
		return TileUnknown, err
	}
	return g.tiles[i][j], nil
}

// At returns the tile at p, or [TileUnknown] when p is out of bounds.
func (g *Grid) At(p Pos) Tile {
	if !g.bounds.Contains(p.I, p.J) {
		return TileUnknown
	}
	return g.tiles[p.I][p.J]
}

// Place puts tile t at (i, j).
//
// It fails with INVALID_TILE for an unknown tile, OUT_OF_BOUNDS for an index
// outside the grid, and INVALID_PLACEMENT when the tile currently in the cell
// cannot be replaced with t. The grid is unchanged on failure.
func (g *Grid) Place(t Tile, i, j int) error {
	if err := g.checkReplacement(t, i, j); err != nil {
		return err
	}
	g.tiles[i][j] = t
	return nil
}

// PlaceAll places the tiles in order, stopping at the first failure.
// Placements made before the failure are kept, exactly as if Place had been
// called once per placement.
func (g *Grid) PlaceAll(placements ...Placement) error {
	for _, p := range placements {
		if err := g.Place(p.Tile, p.I, p.J); err != nil {
			return err
		}
	}
	return nil
}

// PlaceRoom carves room into the grid with its features translated by di rows
// and dj columns. Either every feature is placed or, on error, none is.
func (g *Grid) PlaceRoom(room *Room, di, dj int) error {
	if room == nil {
		return errors.New(errors.ErrCodeInvalidRoom, "room cannot be nil")
	}
	scratch := g.Clone()
	for _, f := range room.Features() {
		if err := scratch.Place(f.Tile, f.I+di, f.J+dj); err != nil {
			return err
		}
	}
	g.tiles = scratch.tiles
	return nil
}

// CanPlace reports whether Place(t, i, j) would succeed, without changing the grid.
func (g *Grid) CanPlace(t Tile, i, j int) error {
	return g.checkReplacement(t, i, j)
}

func (g *Grid) checkReplacement(t Tile, i, j int) error {
	if !t.Valid() {
		return errors.New(errors.ErrCodeInvalidTile, "cannot place unknown tile at [%d][%d]", i, j)
	}
	if err := g.bounds.Check(i, j); err != nil {
		return err
	}
	current := g.tiles[i][j]
	switch current {
	case Wall:
		return nil
	case Floor:
		if t == Floor || t == Door {
			return nil
		}
	case Door:
		if t == Door {
			return nil
		}
	case Stair:
		if t == Stair {
			return nil
		}
		return errors.New(errors.ErrCodeInvalidPlacement,
			"%s at [%d][%d] cannot be replaced. Got tile %s", current.Name(), i, j, t.Name())
	default:
		return errors.New(errors.ErrCodeInternal,
			"unknown tile %d when trying to place %s at [%d][%d]", current, t.Name(), i, j)
	}
	return errors.New(errors.ErrCodeInvalidPlacement,
		"%s at [%d][%d] cannot be replaced with %s", current.Name(), i, j, t.Name())
}

// Features returns every non-wall cell in row-major order.
func (g *Grid) Features() []Feature {
	var out []Feature
	for i, row := range g.tiles {
		for j, t := range row {
			if t != Wall {
				out = append(out, Feature{Tile: t, I: i, J: j})
			}
		}
	}
	return out
}

// Count returns how many cells hold tile t.
func (g *Grid) Count(t Tile) int {
	n := 0
	for _, row := range g.tiles {
		for _, c := range row {
			if c == t {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	tiles := make([][]Tile, len(g.tiles))
	for i, row := range g.tiles {
		tiles[i] = append([]Tile(nil), row...)
	}
	return &Grid{bounds: g.bounds, tiles: tiles}
}

// Equal reports whether both grids have the same size and tiles.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.bounds != other.bounds {
		return false
	}
	for i := range g.tiles {
		for j := range g.tiles[i] {
			if g.tiles[i][j] != other.tiles[i][j] {
				return false
			}
		}
	}
	return true
}

// Rows returns a copy of the tile rows.
func (g *Grid) Rows() [][]Tile {
	return g.Clone().tiles
}

// Draw renders the grid with one rune per cell and rows separated by "\n".
func (g *Grid) Draw() string {
	lines := make([]string, len(g.tiles))
	for i, row := range g.tiles {
		var b strings.Builder
		for _, t := range row {
			b.WriteRune(t.Rune())
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

// String renders the grid as a list of rows, e.g.
//
//	[[ , -, D],
//	[ ,  , x]]
func (g *Grid) String() string {
	rows := make([]string, len(g.tiles))
	for i, row := range g.tiles {
		cells := make([]string, len(row))
		for j, t := range row {
			cells[j] = t.String()
		}
		rows[i] = "[" + strings.Join(cells, ", ") + "]"
	}
	return "[" + strings.Join(rows, ",\n") + "]"
}
