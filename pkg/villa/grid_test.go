package villa

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/villas/pkg/errors"
)

func walls5x5(t *testing.T) *Grid {
	t.Helper()
	g, err := NewGrid(5, 5)
	require.NoError(t, err)
	return g
}

func TestNewGridIsSolidRock(t *testing.T) {
	g := walls5x5(t)
	assert.Equal(t, 25, g.Count(Wall))
	assert.Empty(t, g.Features())
	assert.Equal(t, "     \n     \n     \n     \n     ", g.Draw())
}

func TestNewGridRejectsInvalidBounds(t *testing.T) {
	tests := []struct {
		width, height int
		message       string
	}{
		{0, 5, "width <= 0: 0"},
		{-1, 5, "width <= 0: -1"},
		{5, 0, "height <= 0: 0"},
	}
	for _, tt := range tests {
		_, err := NewGrid(tt.width, tt.height)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidBounds))
		assert.Contains(t, err.Error(), tt.message)
	}
}

func TestPlaceAllowsReplacingWallWithAnyTile(t *testing.T) {
	for _, tile := range Tiles() {
		t.Run(tile.Name(), func(t *testing.T) {
			g := walls5x5(t)
			require.NoError(t, g.Place(tile, 0, 0))
			got, err := g.Get(0, 0)
			require.NoError(t, err)
			assert.Equal(t, tile, got)
		})
	}
}

func TestPlaceAllowsReplacingDoorWithDoor(t *testing.T) {
	g := walls5x5(t)
	require.NoError(t, g.Place(Door, 0, 0))
	require.NoError(t, g.Place(Door, 0, 0))
	got, _ := g.Get(0, 0)
	assert.Equal(t, Door, got)
}

func TestPlaceRejectsReplacingDoorWithOtherTiles(t *testing.T) {
	for _, tile := range []Tile{Wall, Floor, Stair} {
		g := walls5x5(t)
		require.NoError(t, g.Place(Door, 1, 1))
		err := g.Place(tile, 1, 1)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidPlacement), "door -> %s: %v", tile.Name(), err)
	}
}

func TestPlaceAllowsReplacingFloorOnlyWithFloorOrDoor(t *testing.T) {
	for _, tile := range Tiles() {
		t.Run(tile.Name(), func(t *testing.T) {
			g := walls5x5(t)
			require.NoError(t, g.Place(Floor, 0, 0))

			err := g.Place(tile, 0, 0)
			switch tile {
			case Floor, Door:
				require.NoError(t, err)
				got, _ := g.Get(0, 0)
				assert.Equal(t, tile, got)
			default:
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidPlacement))
				assert.Contains(t, err.Error(), "floor at [0][0] cannot be replaced with "+tile.Name())
				got, _ := g.Get(0, 0)
				assert.Equal(t, Floor, got, "grid must be unchanged on failure")
			}
		})
	}
}

func TestPlaceRejectsReplacingStairWithAnythingButStair(t *testing.T) {
	for _, tile := range Tiles() {
		t.Run(tile.Name(), func(t *testing.T) {
			g := walls5x5(t)
			require.NoError(t, g.Place(Stair, 0, 0))

			err := g.Place(tile, 0, 0)
			if tile == Stair {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidPlacement))
				assert.Contains(t, err.Error(), "cannot be replaced. Got tile "+tile.Name())
			}
			got, _ := g.Get(0, 0)
			assert.Equal(t, Stair, got)
		})
	}
}

func TestPlaceRejectsUnknownTile(t *testing.T) {
	g := walls5x5(t)
	err := g.Place(TileUnknown, 0, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidTile))
}

func TestPlaceRejectsOutOfBoundsIndexes(t *testing.T) {
	g := walls5x5(t)
	for _, idx := range [][2]int{{-1, -1}, {6, 6}, {0, 5}, {5, 0}} {
		i, j := idx[0], idx[1]
		t.Run(fmt.Sprintf("%d,%d", i, j), func(t *testing.T) {
			err := g.Place(Wall, i, j)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeOutOfBounds))
			assert.Contains(t, err.Error(), g.Bounds().String())
			assert.Contains(t, err.Error(), fmt.Sprint(i))
			assert.Contains(t, err.Error(), fmt.Sprint(j))

			_, err = g.Get(i, j)
			assert.True(t, errors.Is(err, errors.ErrCodeOutOfBounds))
		})
	}
}

// outcome captures everything observable after a placement sequence.
type outcome struct {
	code    errors.Code
	message string
	drawing string
}

func observe(g *Grid, err error) outcome {
	o := outcome{drawing: g.Draw()}
	if err != nil {
		o.code = errors.GetCode(err)
		o.message = err.Error()
	}
	return o
}

func randomPlacements(rng *rand.Rand, b Bounds, n int) []Placement {
	out := make([]Placement, n)
	tiles := Tiles()
	for k := range out {
		out[k] = Placement{
			Tile: tiles[rng.IntN(len(tiles))],
			I:    rng.IntN(b.Rows()),
			J:    rng.IntN(b.Columns()),
		}
	}
	return out
}

func TestPlaceAllMatchesSequentialPlace(t *testing.T) {
	for _, groupSize := range []int{2, 3} {
		t.Run(fmt.Sprintf("groups of %d", groupSize), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(42, uint64(groupSize)))
			one, all := walls5x5(t), walls5x5(t)

			placements := randomPlacements(rng, one.Bounds(), 100*groupSize)
			for start := 0; start < len(placements); start += groupSize {
				group := placements[start : start+groupSize]

				var seqErr error
				for _, p := range group {
					if seqErr = one.Place(p.Tile, p.I, p.J); seqErr != nil {
						break
					}
				}
				allErr := all.PlaceAll(group...)

				require.Equal(t, observe(one, seqErr), observe(all, allErr))
			}
			assert.True(t, one.Equal(all))
		})
	}
}

func TestPlaceRoomIsAtomic(t *testing.T) {
	g := walls5x5(t)
	require.NoError(t, g.Place(Stair, 1, 3))

	room := MustRoom(FloorAt(0, 0), FloorAt(0, 1), FloorAt(0, 2), FloorAt(0, 3))
	err := g.PlaceRoom(room, 1, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPlacement))
	assert.Equal(t, 1, len(g.Features()), "no room tile may be placed when one fails")

	require.NoError(t, g.PlaceRoom(room, 2, 1))
	assert.Equal(t, "     \n   x \n ----\n     \n     ", g.Draw())
}

func TestPlaceRoomOutOfBounds(t *testing.T) {
	g := walls5x5(t)
	room := MustRoom(FloorAt(0, 0), FloorAt(0, 1), FloorAt(0, 2))
	err := g.PlaceRoom(room, 0, 3)
	assert.True(t, errors.Is(err, errors.ErrCodeOutOfBounds))
	assert.Empty(t, g.Features())
}

func TestGridStringAndEqual(t *testing.T) {
	g, err := NewGrid(3, 2)
	require.NoError(t, err)
	require.NoError(t, g.PlaceAll(
		Placement{Tile: Floor, I: 0, J: 1},
		Placement{Tile: Door, I: 0, J: 2},
		Placement{Tile: Stair, I: 1, J: 2},
	))
	assert.Equal(t, "[[ , -, D],\n[ ,  , x]]", g.String())

	clone := g.Clone()
	assert.True(t, g.Equal(clone))
	require.NoError(t, clone.Place(Floor, 1, 0))
	assert.False(t, g.Equal(clone), "clone must not share storage")

	other, _ := NewGrid(2, 3)
	assert.False(t, g.Equal(other))
}
