package villa

import (
	"fmt"

	"github.com/matzehuels/villas/pkg/errors"
)

// Bounds is the size of a rectangular area.
type Bounds struct {
	Width  int `json:"width" toml:"width" yaml:"width"`
	Height int `json:"height" toml:"height" yaml:"height"`
}

// NewBounds validates and returns bounds of the given size.
func NewBounds(width, height int) (Bounds, error) {
	if width <= 0 {
		return Bounds{}, errors.New(errors.ErrCodeInvalidBounds, "width <= 0: %d", width)
	}
	if height <= 0 {
		return Bounds{}, errors.New(errors.ErrCodeInvalidBounds, "height <= 0: %d", height)
	}
	return Bounds{Width: width, Height: height}, nil
}

// Rows returns the number of rows (the height).
func (b Bounds) Rows() int { return b.Height }

// Columns returns the number of columns (the width).
func (b Bounds) Columns() int { return b.Width }

// Contains reports whether (i, j) lies within the bounds.
func (b Bounds) Contains(i, j int) bool {
	return i >= 0 && i < b.Rows() && j >= 0 && j < b.Columns()
}

// Check returns an OUT_OF_BOUNDS error if (i, j) lies outside the bounds.
func (b Bounds) Check(i, j int) error {
	if !b.Contains(i, j) {
		return errors.New(errors.ErrCodeOutOfBounds, "[%d][%d] is invalid for an object with %s", i, j, b)
	}
	return nil
}

// String formats the bounds, e.g. "Bounds[width=5, height=5]".
func (b Bounds) String() string {
	return fmt.Sprintf("Bounds[width=%d, height=%d]", b.Width, b.Height)
}
