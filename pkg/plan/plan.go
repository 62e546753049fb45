// Package plan combines a grid with the rooms carved into it and analyzes the
// resulting floor plan.
//
// A [Plan] is the unit the rest of villas works with: blueprints build plans,
// renderers draw them and stores persist them. After rooms and tiles are
// placed, [Plan.Analyze] splits the walkable area into regions joined by
// passages, and [Plan.Path] finds walkable routes.
package plan

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/villa"
)

// PlacedRoom is a room carved into a plan at an offset.
type PlacedRoom struct {
	ID     string
	Name   string
	Room   *villa.Room
	Offset villa.Pos
}

// Features returns the room features in grid coordinates.
func (p PlacedRoom) Features() []villa.Feature {
	return p.Room.Translate(p.Offset.I, p.Offset.J).Features()
}

// Plan is a grid together with the rooms placed in it.
type Plan struct {
	grid  *villa.Grid
	rooms []PlacedRoom
}

// New creates an empty plan of the given size.
func New(width, height int) (*Plan, error) {
	g, err := villa.NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	return &Plan{grid: g}, nil
}

// Grid returns the plan's grid. Mutating it directly bypasses room tracking.
func (p *Plan) Grid() *villa.Grid { return p.grid }

// Bounds returns the plan size.
func (p *Plan) Bounds() villa.Bounds { return p.grid.Bounds() }

// Rooms returns the placed rooms in placement order.
func (p *Plan) Rooms() []PlacedRoom {
	return append([]PlacedRoom(nil), p.rooms...)
}

// Room returns the placed room with the given ID, name or label.
func (p *Plan) Room(idOrName string) (PlacedRoom, bool) {
	for k, r := range p.rooms {
		if r.ID == idOrName || r.Name == idOrName || roomLabel(k, r) == idOrName {
			return r, true
		}
	}
	return PlacedRoom{}, false
}

// roomLabel names the k-th placed room in an analysis: its name, or "#n"
// with its 1-based placement index when unnamed. Labels depend only on plan
// content, so cached analyses stay valid when the plan is rebuilt.
func roomLabel(k int, r PlacedRoom) string {
	if r.Name != "" {
		return r.Name
	}
	return "#" + strconv.Itoa(k+1)
}


// AddRoom carves room into the plan with its features moved by (di, dj).
// Placement is atomic. Names must be unique within a plan when non-empty.
func (p *Plan) AddRoom(name string, room *villa.Room, di, dj int) (PlacedRoom, error) {
	if name != "" {
		if err := errors.ValidateName(name); err != nil {
			return PlacedRoom{}, err
		}
		if _, ok := p.Room(name); ok {
			return PlacedRoom{}, errors.New(errors.ErrCodeInvalidName, "room %q already exists", name)
		}
	}
	if err := p.grid.PlaceRoom(room, di, dj); err != nil {
		return PlacedRoom{}, err
	}
	placed := PlacedRoom{
		ID:     uuid.NewString(),
		Name:   name,
		Room:   room,
		Offset: villa.Pos{I: di, J: dj},
	}
	p.rooms = append(p.rooms, placed)
	return placed, nil
}

// Place carves a single tile outside of any room.
func (p *Plan) Place(t villa.Tile, i, j int) error {
	return p.grid.Place(t, i, j)
}

// PlaceAll carves tiles in order, stopping at the first failure.
func (p *Plan) PlaceAll(placements ...villa.Placement) error {
	return p.grid.PlaceAll(placements...)
}

// Loose returns cells that differ from what the placed rooms put there, in
// row-major order. These are tiles carved with Place, or room tiles that were
// later replaced (a floor turned into a door).
func (p *Plan) Loose() []villa.Feature {
	fromRooms := make(map[villa.Pos]villa.Tile)
	for _, r := range p.rooms {
		for _, f := range r.Features() {
			fromRooms[f.Pos()] = f.Tile
		}
	}
	var out []villa.Feature
	for _, f := range p.grid.Features() {
		if t, ok := fromRooms[f.Pos()]; !ok || t != f.Tile {
			out = append(out, f)
		}
	}
	return out
}

// Clone returns a deep copy of the plan. Room IDs are preserved.
func (p *Plan) Clone() *Plan {
	return &Plan{grid: p.grid.Clone(), rooms: p.Rooms()}
}
