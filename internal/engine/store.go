package engine

import (
	"sync/atomic"

	"mfm/internal/atom"
)

// atomGrid stores a 2D array of atoms in row-major order. Words are accessed
// atomically so renderers may read while tiles commit.
type atomGrid struct {
	W, H int
	data []atomic.Uint64
}

func newAtomGrid(w, h int) *atomGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &atomGrid{W: w, H: h, data: make([]atomic.Uint64, w*h)}
}

// index returns the linear slice index for coordinates (x, y).
func (g *atomGrid) index(x, y int) int { return y*g.W + x }

func (g *atomGrid) inside(x, y int) bool { return x >= 0 && y >= 0 && x < g.W && y < g.H }

func (g *atomGrid) load(i int) atom.Atom { return atom.FromBits(g.data[i].Load()) }

func (g *atomGrid) store(i int, a atom.Atom) { g.data[i].Store(a.Bits()) }

// clear resets every word to the Empty atom.
func (g *atomGrid) clear() {
	for i := range g.data {
		g.data[i].Store(0)
	}
}
