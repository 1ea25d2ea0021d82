package engine

import (
	"image/color"
	"testing"

	"mfm/internal/atom"
	"mfm/internal/core"
)

const (
	typeWalker uint32 = 10
	typeCopier uint32 = 11
	typeMarker uint32 = 12
)

// funcBehavior adapts a closure to Behavior for tests.
type funcBehavior struct {
	typ  uint32
	name string
	exec func(w *Window) error
}

func (f funcBehavior) Info() Info {
	return NewInfo(f.name, f.name[:1], "test behavior", 1, color.RGBA{R: 255, A: 255}, nil)
}

func (f funcBehavior) DefaultAtom() atom.Atom { return atom.MustMake(f.typ, 0) }

func (f funcBehavior) Execute(w *Window) error {
	if f.exec == nil {
		return nil
	}
	return f.exec(w)
}

func (funcBehavior) PercentMovable(atom.Atom, atom.Atom, core.Offset) uint32 { return FullyMovable }

func (funcBehavior) Diffusability(*Window, core.Offset, core.Offset) uint32 {
	return CompleteDiffusability
}

// walker swaps into a random empty cardinal neighbor; it conserves atoms.
func walker() funcBehavior {
	return funcBehavior{typ: typeWalker, name: "Walker", exec: func(w *Window) error {
		band, err := w.Table().Band(1)
		if err != nil {
			return err
		}
		off := band[w.GetRandom().Create(len(band))]
		if !w.IsWritableSite(off) {
			return nil
		}
		a, err := w.GetRelativeAtom(off)
		if err != nil || !a.IsEmpty() {
			return err
		}
		return w.SwapAtoms(core.Origin, off)
	}}
}

// copier copies itself into a random empty cardinal neighbor.
func copier() funcBehavior {
	return funcBehavior{typ: typeCopier, name: "Copier", exec: func(w *Window) error {
		band, _ := w.Table().Band(1)
		off := band[w.GetRandom().Create(len(band))]
		if !w.IsWritableSite(off) {
			return nil
		}
		if a, _ := w.GetRelativeAtom(off); a.IsEmpty() {
			return w.SetRelativeAtom(off, w.GetCenterAtom())
		}
		return nil
	}}
}

func testRegistry(t *testing.T, bs ...funcBehavior) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, b := range bs {
		if err := reg.Register(b.typ, b); err != nil {
			t.Fatalf("register %s: %v", b.name, err)
		}
	}
	return reg
}

func testGrid(t *testing.T, tilesX, tilesY, w, h, r int) *Grid {
	t.Helper()
	g, err := NewGrid(Config{TilesX: tilesX, TilesY: tilesY, TileW: w, TileH: h, Radius: r, Seed: 42})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func mustSet(t *testing.T, g *Grid, x, y int, a atom.Atom) {
	t.Helper()
	if err := g.SetAtom(core.Offset{X: x, Y: y}, a); err != nil {
		t.Fatalf("SetAtom(%d,%d): %v", x, y, err)
	}
}

func openWindow(t *testing.T, tile *Tile, center core.Offset) *Window {
	t.Helper()
	l, err := tile.acquire(center)
	if err != nil {
		t.Fatalf("acquire %v: %v", center, err)
	}
	t.Cleanup(func() { tile.release(l) })
	return newWindow(tile, l, 7)
}

// checkHalos verifies every live halo copy matches its owner.
func checkHalos(t *testing.T, g *Grid) {
	t.Helper()
	for _, tile := range g.Tiles() {
		p := tile.padded
		for y := p.Min.Y; y < p.Max.Y; y++ {
			for x := p.Min.X; x < p.Max.X; x++ {
				abs := core.Offset{X: x, Y: y}
				if tile.InCore(abs) || !abs.Point().In(g.Bounds()) {
					continue
				}
				want, err := g.AtomAt(abs)
				if err != nil {
					t.Fatalf("AtomAt %v: %v", abs, err)
				}
				got, _ := tile.AtomAt(abs)
				if got != want {
					t.Fatalf("tile %v halo %v = %v, owner has %v", tile.Index(), abs, got, want)
				}
			}
		}
	}
}
