// Package blueprint reads and writes villa floor plans as files.
//
// A blueprint names a grid size, the rooms carved into it and any loose tiles.
// Rooms can be given as ASCII drawings or as explicit feature lists:
//
//	name = "north wing"
//	width = 12
//	height = 6
//
//	[[rooms]]
//	name = "hall"
//	at = [1, 1]
//	drawing = '''
//	D---
//	----
//	'''
//
//	[[tiles]]
//	tile = "stair"
//	i = 3
//	j = 2
//
// The same structure is accepted as TOML, YAML or JSON. [Build] turns a
// blueprint into a [plan.Plan]; [FromPlan] goes the other way.
package blueprint

import (
	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/plan"
	"github.com/matzehuels/villas/pkg/villa"
)

// Blueprint is the serializable description of a plan.
type Blueprint struct {
	Name   string          `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Width  int             `json:"width" toml:"width" yaml:"width"`
	Height int             `json:"height" toml:"height" yaml:"height"`
	Rooms  []RoomSpec      `json:"rooms,omitempty" toml:"rooms,omitempty" yaml:"rooms,omitempty"`
	Tiles  []villa.Feature `json:"tiles,omitempty" toml:"tiles,omitempty" yaml:"tiles,omitempty"`
}

// RoomSpec describes one room. Exactly one of Drawing and Features is set.
// At is the [row, column] offset added to every feature.
type RoomSpec struct {
	Name     string          `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	At       []int           `json:"at,omitempty" toml:"at,omitempty" yaml:"at,omitempty,flow"`
	Drawing  string          `json:"drawing,omitempty" toml:"drawing,omitempty" yaml:"drawing,omitempty"`
	Features []villa.Feature `json:"features,omitempty" toml:"features,omitempty" yaml:"features,omitempty"`
}

// Offset returns the parsed At offset.
func (s RoomSpec) Offset() (villa.Pos, error) {
	switch len(s.At) {
	case 0:
		return villa.Pos{}, nil
	case 2:
		return villa.Pos{I: s.At[0], J: s.At[1]}, nil
	default:
		return villa.Pos{}, errors.New(errors.ErrCodeInvalidFormat, "at must be [row, column], got %v", s.At)
	}
}

// Room validates the room entry and returns its room, untranslated.
func (s RoomSpec) Room() (*villa.Room, error) {
	var features []villa.Feature
	switch {
	case s.Drawing != "" && len(s.Features) > 0:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "room cannot have both a drawing and features")
	case s.Drawing != "":
		parsed, err := ParseDrawing(s.Drawing)
		if err != nil {
			return nil, err
		}
		features = parsed
	default:
		features = s.Features
	}
	return villa.NewRoom(features...)
}

// Build creates a plan from the blueprint. Rooms are placed in file order,
// then loose tiles. The first failure aborts the build.
func Build(bp *Blueprint) (*plan.Plan, error) {
	if bp.Name != "" {
		if err := errors.ValidateName(bp.Name); err != nil {
			return nil, err
		}
	}
	p, err := plan.New(bp.Width, bp.Height)
	if err != nil {
		return nil, err
	}
	for k, spec := range bp.Rooms {
		if err := addRoom(p, spec); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "room %d (%s)", k+1, labelOf(spec))
		}
	}
	for k, f := range bp.Tiles {
		if err := p.Place(f.Tile, f.I, f.J); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "tile %d (%s)", k+1, f)
		}
	}
	return p, nil
}

func addRoom(p *plan.Plan, spec RoomSpec) error {
	at, err := spec.Offset()
	if err != nil {
		return err
	}
	room, err := spec.Room()
	if err != nil {
		return err
	}
	_, err = p.AddRoom(spec.Name, room, at.I, at.J)
	return err
}

func labelOf(spec RoomSpec) string {
	if spec.Name != "" {
		return spec.Name
	}
	return "unnamed"
}

// FromPlan describes p as a blueprint. Rooms are written as drawings anchored
// at their bounding box; cells not explained by rooms become loose tiles.
func FromPlan(name string, p *plan.Plan) *Blueprint {
	b := p.Bounds()
	bp := &Blueprint{Name: name, Width: b.Width, Height: b.Height}
	for _, r := range p.Rooms() {
		box := r.Room.Box()
		bp.Rooms = append(bp.Rooms, RoomSpec{
			Name:    r.Name,
			At:      []int{r.Offset.I + box.MinI, r.Offset.J + box.MinJ},
			Drawing: Draw(r.Room),
		})
	}
	bp.Tiles = p.Loose()
	return bp
}

// Clone returns a deep copy of the blueprint.
func (bp *Blueprint) Clone() *Blueprint {
	if bp == nil {
		return nil
	}
	out := *bp
	out.Tiles = cloneSlice(bp.Tiles)
	if bp.Rooms != nil {
		out.Rooms = make([]RoomSpec, len(bp.Rooms))
		for i, r := range bp.Rooms {
			r.At = cloneSlice(r.At)
			r.Features = cloneSlice(r.Features)
			out.Rooms[i] = r
		}
	}
	return &out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}
