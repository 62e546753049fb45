package plan

import (
	"slices"

	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/villa"
)

// Path returns the shortest orthogonal route from one cell to another over
// walkable tiles, both ends included. Ties are broken by neighbor order (up,
// down, left, right), so the result is deterministic.
func (p *Plan) Path(from, to villa.Pos) ([]villa.Pos, error) {
	for _, end := range []villa.Pos{from, to} {
		t, err := p.grid.Get(end.I, end.J)
		if err != nil {
			return nil, err
		}
		if !t.Walkable() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s at [%d][%d] is not walkable", t.Name(), end.I, end.J)
		}
	}

	prev := map[villa.Pos]villa.Pos{from: from}
	pending := []villa.Pos{from}
	for len(pending) > 0 {
		curr := pending[0]
		pending = pending[1:]
		if curr == to {
			return backtrack(prev, from, to), nil
		}
		for _, n := range curr.Orthogonal() {
			if _, seen := prev[n]; seen || !p.grid.At(n).Walkable() {
				continue
			}
			prev[n] = curr
			pending = append(pending, n)
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no walkable path from [%d][%d] to [%d][%d]", from.I, from.J, to.I, to.J)
}

func backtrack(prev map[villa.Pos]villa.Pos, from, to villa.Pos) []villa.Pos {
	path := []villa.Pos{to}
	for curr := to; curr != from; {
		curr = prev[curr]
		path = append(path, curr)
	}
	slices.Reverse(path)
	return path
}
