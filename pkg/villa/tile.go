package villa

import (
	"strings"

	"github.com/matzehuels/villas/pkg/errors"
)

// Tile is the content of a single grid cell.
type Tile uint8

// Tile values. The zero value is deliberately invalid so that an unset tile is
// never mistaken for a wall.
const (
	TileUnknown Tile = iota
	Wall
	Floor
	Door
	Stair
)

type tileInfo struct {
	name     string
	repr     rune
	walkable bool
}

var tileInfos = map[Tile]tileInfo{
	Wall:  {name: "wall", repr: ' ', walkable: false},
	Floor: {name: "floor", repr: '-', walkable: true},
	Door:  {name: "door", repr: 'D', walkable: true},
	Stair: {name: "stair", repr: 'x', walkable: true},
}

// Tiles returns every placeable tile in declaration order.
func Tiles() []Tile {
	return []Tile{Wall, Floor, Door, Stair}
}

// Valid reports whether t is one of the known tiles.
func (t Tile) Valid() bool {
	_, ok := tileInfos[t]
	return ok
}

// Rune returns the character used to draw the tile, or '?' for unknown tiles.
func (t Tile) Rune() rune {
	if info, ok := tileInfos[t]; ok {
		return info.repr
	}
	return '?'
}

// Walkable reports whether the tile can be walked on.
func (t Tile) Walkable() bool {
	return tileInfos[t].walkable
}

// Name returns the lower-case tile name ("wall", "floor", "door", "stair").
func (t Tile) Name() string {
	if info, ok := tileInfos[t]; ok {
		return info.name
	}
	return "unknown"
}

// String returns the tile rune as a string, matching how tiles are drawn.
func (t Tile) String() string {
	return string(t.Rune())
}

// MarshalText encodes the tile as its name.
func (t Tile) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidTile, "cannot encode unknown tile")
	}
	return []byte(t.Name()), nil
}

// UnmarshalText decodes a tile from its name or its single-character rune.
func (t *Tile) UnmarshalText(text []byte) error {
	s := string(text)
	if parsed, err := ParseTileName(s); err == nil {
		*t = parsed
		return nil
	}
	if r := []rune(s); len(r) == 1 {
		parsed, err := ParseTile(r[0])
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}
	return errors.New(errors.ErrCodeInvalidTile, "unknown tile %q", s)
}

// ParseTile returns the tile drawn with rune r.
func ParseTile(r rune) (Tile, error) {
	for _, t := range Tiles() {
		if t.Rune() == r {
			return t, nil
		}
	}
	return TileUnknown, errors.New(errors.ErrCodeInvalidTile, "unknown tile rune %q", r)
}

// ParseTileName returns the tile with the given name. Matching is case-insensitive.
func ParseTileName(name string) (Tile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range Tiles() {
		if t.Name() == name {
			return t, nil
		}
	}
	return TileUnknown, errors.New(errors.ErrCodeInvalidTile, "unknown tile name %q", name)
}
