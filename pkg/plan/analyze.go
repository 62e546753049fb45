package plan

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/villas/pkg/villa"
)

// Region is an orthogonally connected area of floor and stair tiles.
type Region struct {
	ID     string      `json:"id"`
	Cells  []villa.Pos `json:"cells"`
	Stairs int         `json:"stairs,omitempty"`
	Rooms  []string    `json:"rooms,omitempty"` // labels of overlapping placed rooms
}

// Size returns the number of cells in the region.
func (r Region) Size() int { return len(r.Cells) }

// Center returns the mean cell position, used to anchor labels.
func (r Region) Center() (float64, float64) {
	var si, sj float64
	for _, c := range r.Cells {
		si += float64(c.I)
		sj += float64(c.J)
	}
	n := float64(len(r.Cells))
	return si / n, sj / n
}

// Passage is an orthogonally connected cluster of doors and the regions it joins.
type Passage struct {
	ID      string      `json:"id"`
	Doors   []villa.Pos `json:"doors"`
	Regions []string    `json:"regions"`
}

// Analysis is the result of [Plan.Analyze].
type Analysis struct {
	Regions  []Region  `json:"regions"`
	Passages []Passage `json:"passages"`

	regionAt map[villa.Pos]string
}

// UnmarshalJSON decodes an analysis and rebuilds its cell index.
func (a *Analysis) UnmarshalJSON(data []byte) error {
	var v struct {
		Regions  []Region  `json:"regions"`
		Passages []Passage `json:"passages"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	a.Regions, a.Passages = v.Regions, v.Passages
	a.regionAt = make(map[villa.Pos]string)
	for _, r := range a.Regions {
		for _, c := range r.Cells {
			a.regionAt[c] = r.ID
		}
	}
	return nil
}

// RegionAt returns the ID of the region containing p, or "".
func (a *Analysis) RegionAt(p villa.Pos) string {
	return a.regionAt[p]
}

// Region returns the region with the given ID.
func (a *Analysis) Region(id string) (Region, bool) {
	for _, r := range a.Regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// Isolated returns the IDs of regions no passage reaches.
func (a *Analysis) Isolated() []string {
	linked := make(map[string]bool)
	for _, p := range a.Passages {
		for _, id := range p.Regions {
			linked[id] = true
		}
	}
	var out []string
	for _, r := range a.Regions {
		if !linked[r.ID] {
			out = append(out, r.ID)
		}
	}
	return out
}

// Analyze partitions the plan into regions and passages.
//
// Regions are orthogonally connected components of floor and stair cells;
// doors separate them. Passages are orthogonally connected clusters of doors,
// each linked to every region that is adjacent (in any of the 8 directions) to
// one of its doors. Both are numbered in row-major discovery order.
func (p *Plan) Analyze() *Analysis {
	a := &Analysis{regionAt: make(map[villa.Pos]string)}
	owners := p.roomOwners()

	isRegionCell := func(t villa.Tile) bool { return t == villa.Floor || t == villa.Stair }
	isDoor := func(t villa.Tile) bool { return t == villa.Door }

	seenDoors := make(map[villa.Pos]bool)
	var doorClusters [][]villa.Pos

	b := p.grid.Bounds()
	for i := 0; i < b.Rows(); i++ {
		for j := 0; j < b.Columns(); j++ {
			pos := villa.Pos{I: i, J: j}
			t := p.grid.At(pos)
			switch {
			case isRegionCell(t) && a.regionAt[pos] == "":
				id := fmt.Sprintf("r%d", len(a.Regions)+1)
				cells := p.flood(pos, isRegionCell)
				region := Region{ID: id, Cells: cells}
				rooms := make(map[string]bool)
				for _, c := range cells {
					a.regionAt[c] = id
					if p.grid.At(c) == villa.Stair {
						region.Stairs++
					}
					if owner, ok := owners[c]; ok {
						rooms[owner] = true
					}
				}
				region.Rooms = p.orderedRooms(rooms)
				a.Regions = append(a.Regions, region)
			case isDoor(t) && !seenDoors[pos]:
				cluster := p.flood(pos, isDoor)
				for _, c := range cluster {
					seenDoors[c] = true
				}
				doorClusters = append(doorClusters, cluster)
			}
		}
	}

	for k, doors := range doorClusters {
		linked := make(map[string]bool)
		for _, d := range doors {
			for _, n := range d.Adjacent() {
				if id := a.regionAt[n]; id != "" {
					linked[id] = true
				}
			}
		}
		var ids []string
		for _, r := range a.Regions {
			if linked[r.ID] {
				ids = append(ids, r.ID)
			}
		}
		a.Passages = append(a.Passages, Passage{
			ID:      fmt.Sprintf("p%d", k+1),
			Doors:   doors,
			Regions: ids,
		})
	}
	return a
}

// flood returns the cells orthogonally reachable from origin through cells
// accepted by keep, in row-major order.
func (p *Plan) flood(origin villa.Pos, keep func(villa.Tile) bool) []villa.Pos {
	visited := map[villa.Pos]bool{origin: true}
	pending := []villa.Pos{origin}
	cells := []villa.Pos{origin}
	for len(pending) > 0 {
		curr := pending[0]
		pending = pending[1:]
		for _, n := range curr.Orthogonal() {
			if !visited[n] && keep(p.grid.At(n)) {
				visited[n] = true
				pending = append(pending, n)
				cells = append(cells, n)
			}
		}
	}
	slices.SortFunc(cells, comparePos)
	return cells
}

// roomOwners maps every room cell to the room label. Later rooms win where
// rooms overlap.
func (p *Plan) roomOwners() map[villa.Pos]string {
	owners := make(map[villa.Pos]string)
	for k, r := range p.rooms {
		label := roomLabel(k, r)
		for _, f := range r.Features() {
			owners[f.Pos()] = label
		}
	}
	return owners
}

func (p *Plan) orderedRooms(set map[string]bool) []string {
	var out []string
	for k, r := range p.rooms {
		label := roomLabel(k, r)
		if set[label] && !slices.Contains(out, label) {
			out = append(out, label)
		}
	}
	return out
}

func comparePos(a, b villa.Pos) int {
	if a.I != b.I {
		return a.I - b.I
	}
	return a.J - b.J
}
