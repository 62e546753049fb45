package villa

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/villas/pkg/errors"
)

func TestTileAttributes(t *testing.T) {
	tests := []struct {
		tile     Tile
		r        rune
		name     string
		walkable bool
	}{
		{Wall, ' ', "wall", false},
		{Floor, '-', "floor", true},
		{Door, 'D', "door", true},
		{Stair, 'x', "stair", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.r, tt.tile.Rune())
		assert.Equal(t, string(tt.r), tt.tile.String())
		assert.Equal(t, tt.name, tt.tile.Name())
		assert.Equal(t, tt.walkable, tt.tile.Walkable())
		assert.True(t, tt.tile.Valid())
	}

	assert.False(t, TileUnknown.Valid())
	assert.False(t, TileUnknown.Walkable())
	assert.Equal(t, "unknown", TileUnknown.Name())
}

func TestParseTile(t *testing.T) {
	for _, tile := range Tiles() {
		got, err := ParseTile(tile.Rune())
		require.NoError(t, err)
		assert.Equal(t, tile, got)

		got, err = ParseTileName(tile.Name())
		require.NoError(t, err)
		assert.Equal(t, tile, got)
	}

	got, err := ParseTileName(" Door ")
	require.NoError(t, err)
	assert.Equal(t, Door, got)

	_, err = ParseTile('#')
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidTile))
	_, err = ParseTileName("lava")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidTile))
}

func TestTileText(t *testing.T) {
	data, err := json.Marshal(DoorAt(1, 2))
	require.NoError(t, err)
	assert.JSONEq(t, `{"tile":"door","i":1,"j":2}`, string(data))

	var f Feature
	require.NoError(t, json.Unmarshal([]byte(`{"tile":"x","i":3,"j":4}`), &f))
	assert.Equal(t, StairAt(3, 4), f)

	assert.Error(t, json.Unmarshal([]byte(`{"tile":"lava"}`), &f))
	_, err = json.Marshal(Feature{})
	assert.Error(t, err)
}
