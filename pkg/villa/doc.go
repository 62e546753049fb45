// Package villa provides the core building blocks of a dwarven villa: tiles,
// features, grids and rooms.
//
// # Tiles
//
// A [Tile] is one of [Wall], [Floor], [Door] or [Stair]. Each has a display
// rune (' ', '-', 'D', 'x') and a walkability flag. The zero value is an
// unknown tile that can never be placed.
//
// # Grids
//
// A [Grid] starts as solid rock: every cell is a [Wall]. Tiles are carved into
// it with [Grid.Place], which enforces replacement rules keyed by the tile
// currently in the cell:
//
//   - Wall may be replaced with anything
//   - Floor may be replaced only with Floor or Door
//   - Door may be replaced only with Door
//   - Stair may be replaced only with Stair
//
// # Rooms
//
// A [Room] is a validated set of [Feature] values. A room has at least three
// floor tiles, its floor is orthogonally continuous, and every door touches a
// floor and sits on the edge of the room's bounding box. Rooms are placed into
// grids with [Grid.PlaceRoom], which is atomic.
//
// # Coordinates
//
// All coordinates are (i, j) = (row, column), with row 0 at the top.
package villa
