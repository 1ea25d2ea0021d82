package core

import (
	"fmt"
	"image"
)

// Size describes the dimensions of a rectangular region of the lattice.
type Size struct {
	W int
	H int
}

// Area returns W*H.
func (s Size) Area() int { return s.W * s.H }

// Offset is a 2D integer coordinate, either relative to an event center or
// absolute within the grid.
type Offset struct {
	X int
	Y int
}

// Origin is the zero offset, the center of every event window.
var Origin = Offset{}

// Add returns o+p.
func (o Offset) Add(p Offset) Offset { return Offset{X: o.X + p.X, Y: o.Y + p.Y} }

// Sub returns o-p.
func (o Offset) Sub(p Offset) Offset { return Offset{X: o.X - p.X, Y: o.Y - p.Y} }

// Scale multiplies both components by k.
func (o Offset) Scale(k int) Offset { return Offset{X: o.X * k, Y: o.Y * k} }

// Length returns the Manhattan length |X|+|Y|. Every radius check in the
// system uses this metric.
func (o Offset) Length() int { return abs(o.X) + abs(o.Y) }

// Equal reports whether both components match.
func (o Offset) Equal(p Offset) bool { return o == p }

// Point converts the offset to an image.Point.
func (o Offset) Point() image.Point { return image.Pt(o.X, o.Y) }

func (o Offset) String() string { return fmt.Sprintf("(%d,%d)", o.X, o.Y) }

// Distance returns the Manhattan distance between two offsets.
func Distance(a, b Offset) int { return a.Sub(b).Length() }

// Dir enumerates the eight compass directions around a tile or site.
type Dir uint8

const (
	DirN Dir = iota
	DirNE
	DirE
	DirSE
	DirS
	DirSW
	DirW
	DirNW
)

// DirCount is the number of compass directions.
const DirCount = 8

var dirOffsets = [DirCount]Offset{
	DirN:  {X: 0, Y: -1},
	DirNE: {X: 1, Y: -1},
	DirE:  {X: 1, Y: 0},
	DirSE: {X: 1, Y: 1},
	DirS:  {X: 0, Y: 1},
	DirSW: {X: -1, Y: 1},
	DirW:  {X: -1, Y: 0},
	DirNW: {X: -1, Y: -1},
}

var dirNames = [DirCount]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Offset returns the unit step for the direction.
func (d Dir) Offset() Offset { return dirOffsets[d%DirCount] }

// Opposite returns the direction pointing the other way.
func (d Dir) Opposite() Dir { return (d + DirCount/2) % DirCount }

// IsCorner reports whether d is a diagonal direction.
func (d Dir) IsCorner() bool { return d%2 == 1 }

func (d Dir) String() string { return dirNames[d%DirCount] }

// DirTo returns the direction of the unit step matching the signs of o, and
// false for the zero offset.
func DirTo(o Offset) (Dir, bool) {
	step := Offset{X: sign(o.X), Y: sign(o.Y)}
	for d, off := range dirOffsets {
		if off == step {
			return Dir(d), true
		}
	}
	return 0, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
