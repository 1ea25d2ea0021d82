package engine

import (
	"mfm/internal/atom"
	"mfm/internal/core"
)

// Snapshot is a copy of the authoritative atoms of the whole lattice taken
// without stopping the tiles. Each word is read atomically; the snapshot as
// a whole may mix pre- and post-commit values of concurrent events.
type Snapshot struct {
	Size     core.Size
	TileSize core.Size
	Radius   int
	Cells    []atom.Atom
	// Active[i] is the number of in-flight leases on tile i (row-major).
	Active []int
	// Stats[i] are the counters of tile i.
	Stats []TileStats
}

// At returns the atom at (x, y), or Empty outside the lattice.
func (s *Snapshot) At(x, y int) atom.Atom {
	if x < 0 || y < 0 || x >= s.Size.W || y >= s.Size.H {
		return atom.Atom{}
	}
	return s.Cells[y*s.Size.W+x]
}

// TilesX returns the number of tile columns.
func (s *Snapshot) TilesX() int { return s.Size.W / s.TileSize.W }

// TilesY returns the number of tile rows.
func (s *Snapshot) TilesY() int { return s.Size.H / s.TileSize.H }

// Count returns how many sites hold an atom of type typ.
func (s *Snapshot) Count(typ uint32) int {
	n := 0
	for _, a := range s.Cells {
		if a.IsType(typ) {
			n++
		}
	}
	return n
}

// Snapshot copies the lattice.
func (g *Grid) Snapshot() *Snapshot {
	size := g.Size()
	s := &Snapshot{
		Size:     size,
		TileSize: core.Size{W: g.cfg.TileW, H: g.cfg.TileH},
		Radius:   g.cfg.Radius,
		Cells:    make([]atom.Atom, size.Area()),
		Active:   make([]int, len(g.tiles)),
		Stats:    make([]TileStats, len(g.tiles)),
	}
	g.SnapshotInto(s)
	return s
}

// SnapshotInto refreshes s in place, reusing its buffers when the sizes
// match. Renderers call it once per frame.
func (g *Grid) SnapshotInto(s *Snapshot) {
	size := g.Size()
	if s.Size != size || len(s.Cells) != size.Area() {
		s.Size = size
		s.Cells = make([]atom.Atom, size.Area())
	}
	s.TileSize = core.Size{W: g.cfg.TileW, H: g.cfg.TileH}
	s.Radius = g.cfg.Radius
	if len(s.Active) != len(g.tiles) {
		s.Active = make([]int, len(g.tiles))
		s.Stats = make([]TileStats, len(g.tiles))
	}
	for i, t := range g.tiles {
		for y := 0; y < t.size.H; y++ {
			row := (t.origin.Y + y) * size.W
			for x := 0; x < t.size.W; x++ {
				abs := core.Offset{X: t.origin.X + x, Y: t.origin.Y + y}
				s.Cells[row+abs.X] = t.load(abs)
			}
		}
		s.Active[i] = t.ActiveLeases()
		s.Stats[i] = t.Stats()
	}
}
