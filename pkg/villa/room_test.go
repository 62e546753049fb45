package villa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/villas/pkg/errors"
)

func requireInvalidRoom(t *testing.T, drawing string, features ...Feature) {
	t.Helper()
	_, err := NewRoom(features...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRoom), "unexpected error: %v", err)
	assert.Contains(t, err.Error(), drawing)
}

func requireValidRoom(t *testing.T, features ...Feature) *Room {
	t.Helper()
	r, err := NewRoom(features...)
	require.NoError(t, err)
	return r
}

func TestRoomsSplitByDoorsAreNotValid(t *testing.T) {
	requireInvalidRoom(t, "---D---",
		FloorAt(0, 0), FloorAt(0, 1), FloorAt(0, 2),
		DoorAt(0, 3),
		FloorAt(0, 4), FloorAt(0, 5), FloorAt(0, 6))
}

func TestBifurcatedRoomsEndingAtADoorAreValid(t *testing.T) {
	r := requireValidRoom(t,
		DoorAt(0, 0), FloorAt(0, 1), FloorAt(0, 2),
		FloorAt(1, 0), FloorAt(1, 2),
		FloorAt(2, 0), FloorAt(2, 1), FloorAt(2, 2))
	assert.Equal(t, "D--\n- -\n---", r.String())
}

func TestRoomsWithDoorsNotAtTheEdgeAreNotValid(t *testing.T) {
	requireInvalidRoom(t, "---\n-D-\n- -",
		FloorAt(0, 0), FloorAt(0, 1), FloorAt(0, 2),
		FloorAt(1, 0), DoorAt(1, 1), FloorAt(1, 2),
		FloorAt(2, 0), FloorAt(2, 2))
}

func TestRoomDoorsAreOptional(t *testing.T) {
	r := requireValidRoom(t, FloorAt(0, 0), FloorAt(0, 1), FloorAt(0, 2))
	assert.Empty(t, r.Doors())
}

func TestRoomsWithDoorsNeedThemAdjacentToFloor(t *testing.T) {
	// Each D marks an invalid door position (blanks are walls)
	// DDDDDDD
	// D     D
	// D --- D
	// D     D
	// DDDDDDD
	for i := 0; i < 6; i++ {
		js := []int{0, 6}
		if i == 0 || i == 5 {
			js = []int{0, 1, 2, 3, 4, 5, 6}
		}
		for _, j := range js {
			_, err := NewRoom(DoorAt(i, j), FloorAt(2, 2), FloorAt(2, 3), FloorAt(2, 4))
			require.Error(t, err, "door at [%d][%d]", i, j)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidRoom))
			assert.Contains(t, err.Error(), "---")
			assert.Contains(t, err.Error(), "D")
		}
	}
}

func TestRoomsMustHaveAtLeast3FloorTiles(t *testing.T) {
	requireInvalidRoom(t, "D--D", DoorAt(0, 0), FloorAt(0, 1), FloorAt(0, 2), DoorAt(0, 3))
}

func TestRoomsWithADoorAdjacentInAnyDirectionAreValid(t *testing.T) {
	// D marks door locations to test:
	// DDD
	// D---
	// DDD
	entrance := FloorAt(1, 1)
	for di := -1; di < 2; di++ {
		for dj := -1; dj < 2; dj++ {
			door := DoorAt(entrance.I-di, entrance.J-dj)
			if door.I == 1 && door.J >= 1 {
				continue // occupies another floor
			}
			requireValidRoom(t, door, entrance, FloorAt(1, 2), FloorAt(1, 3))
		}
	}
}

func TestRoomShapes(t *testing.T) {
	tests := []struct {
		name     string
		features []Feature
	}{
		{"one width", []Feature{FloorAt(0, 0), FloorAt(1, 0), FloorAt(2, 0)}},
		{"one height", []Feature{FloorAt(0, 0), FloorAt(0, 1), FloorAt(0, 2)}},
		{"big square", square(5)},
		{
			// - -
			// - -
			// ---
			"u shaped",
			[]Feature{
				FloorAt(0, 0), FloorAt(1, 0), FloorAt(2, 0),
				FloorAt(2, 1),
				FloorAt(2, 2), FloorAt(1, 2), FloorAt(0, 2),
			},
		},
		{
			// ---     ---
			//   --- ---
			//     ---
			//   --- ---
			// ---     ---
			"continuous x shaped",
			[]Feature{
				FloorAt(0, 0), FloorAt(0, 1), FloorAt(0, 2), FloorAt(0, 8), FloorAt(0, 9), FloorAt(0, 10),
				FloorAt(1, 2), FloorAt(1, 3), FloorAt(1, 4), FloorAt(1, 6), FloorAt(1, 7), FloorAt(1, 8),
				FloorAt(2, 4), FloorAt(2, 5), FloorAt(2, 6),
				FloorAt(3, 2), FloorAt(3, 3), FloorAt(3, 4), FloorAt(3, 6), FloorAt(3, 7), FloorAt(3, 8),
				FloorAt(4, 0), FloorAt(4, 1), FloorAt(4, 2), FloorAt(4, 8), FloorAt(4, 9), FloorAt(4, 10),
			},
		},
		{"dangling floor on top", []Feature{FloorAt(0, 2), FloorAt(1, 0), FloorAt(1, 1), FloorAt(1, 2)}},
		{"dangling floor on the bottom", []Feature{FloorAt(0, 0), FloorAt(0, 1), FloorAt(0, 2), FloorAt(1, 2)}},
		{"dangling floor to the left", []Feature{
			FloorAt(0, 1), FloorAt(0, 2), FloorAt(0, 3),
			FloorAt(1, 0), FloorAt(1, 1), FloorAt(1, 2), FloorAt(1, 3),
		}},
		{"dangling floor to the right", []Feature{
			FloorAt(0, 0), FloorAt(0, 1), FloorAt(0, 2),
			FloorAt(1, 0), FloorAt(1, 1), FloorAt(1, 2), FloorAt(1, 3),
		}},
		{"stairs inside", []Feature{FloorAt(0, 0), StairAt(0, 1), FloorAt(1, 0), FloorAt(1, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireValidRoom(t, tt.features...)
		})
	}
}

func TestNonContinuousRoomsAreNotValid(t *testing.T) {
	requireInvalidRoom(t, "- --", FloorAt(0, 0), FloorAt(0, 2), FloorAt(0, 3))
}

func TestRoomsWithDiagonallyAdjacentFloorsAreNotValid(t *testing.T) {
	requireInvalidRoom(t, "--   \n  ---",
		FloorAt(0, 0), FloorAt(0, 1),
		FloorAt(1, 2), FloorAt(1, 3), FloorAt(1, 4))
}

func TestRoomsWithDuplicatePositionsAreNotValid(t *testing.T) {
	_, err := NewRoom(FloorAt(0, 0), FloorAt(0, 1), FloorAt(0, 2), DoorAt(0, 2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRoom))
	assert.Contains(t, err.Error(), "share a position")
}

func TestEmptyRoomIsNotValid(t *testing.T) {
	_, err := NewRoom()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRoom))
}

func TestRoomValidityIsTranslationInvariant(t *testing.T) {
	features := []Feature{
		DoorAt(0, 1), FloorAt(1, 0), FloorAt(1, 1), FloorAt(1, 2),
	}
	base := requireValidRoom(t, features...)
	for _, offset := range [][2]int{{5, 5}, {-3, 7}, {100, -100}} {
		moved := make([]Feature, len(features))
		for i, f := range features {
			moved[i] = f.Translate(offset[0], offset[1])
		}
		r := requireValidRoom(t, moved...)
		assert.Equal(t, base.Draw(), r.Draw())
		assert.Equal(t, base.Features(), r.Normalize().Features())
	}
}

func TestRoomTranslateAndBox(t *testing.T) {
	r := requireValidRoom(t, FloorAt(0, 0), FloorAt(0, 1), FloorAt(1, 1), DoorAt(2, 1))
	assert.Equal(t, Box{MinI: 0, MinJ: 0, MaxI: 2, MaxJ: 1}, r.Box())
	assert.Equal(t, 3, r.Box().Rows())
	assert.Equal(t, 2, r.Box().Columns())

	moved := r.Translate(2, 3)
	assert.Equal(t, Box{MinI: 2, MinJ: 3, MaxI: 4, MaxJ: 4}, moved.Box())
	assert.Equal(t, r.Draw(), moved.Draw())
	assert.Equal(t, DoorAt(4, 4), moved.Doors()[0])
	assert.Equal(t, 4, moved.Size())
}

func square(n int) []Feature {
	var out []Feature
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out = append(out, FloorAt(i, j))
		}
	}
	return out
}
