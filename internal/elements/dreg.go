package elements

import (
	"image/color"

	"mfm/internal/atom"
	"mfm/internal/core"
	"mfm/internal/engine"
)

// Dreg is the dynamic regulator. It fills empty space with Res and more
// Dreg, and deletes whatever else it bumps into, which keeps the lattice
// from saturating.
type Dreg struct {
	element
	dregOdds   *core.Parameter
	resOdds    *core.Parameter
	deleteOdds *core.Parameter
}

// NewDreg returns the Dreg behavior with its default odds.
func NewDreg() *Dreg {
	d := &Dreg{
		dregOdds:   core.NewIntParameter("dreg_create_odds", "Dreg Odds", "1 in N chance to create Dreg in empty space", 1, 1000, 100000),
		resOdds:    core.NewIntParameter("res_create_odds", "Res Odds", "1 in N chance to create Res in empty space", 1, 200, 100000),
		deleteOdds: core.NewIntParameter("delete_odds", "Delete Odds", "1 in N chance to delete a non-Dreg neighbor", 1, 100, 100000),
	}
	d.element = newElement(TypeDreg, "Dreg", "Dr", "Dynamic regulator; creates Res and Dreg, deletes others", 1,
		color.RGBA{R: 0x50, G: 0x50, B: 0x50, A: 0xff}, d.dregOdds, d.resOdds, d.deleteOdds)
	return d
}

func (d *Dreg) Execute(w *engine.Window) error {
	off := cardinal(w)
	if off == core.Origin || !w.IsWritableSite(off) {
		return nil
	}
	other, err := w.GetRelativeAtom(off)
	if err != nil {
		return err
	}
	rng := w.GetRandom()
	switch {
	case other.IsEmpty():
		if rng.OneIn(d.dregOdds.Int()) {
			return w.SetRelativeAtom(off, d.DefaultAtom())
		}
		if rng.OneIn(d.resOdds.Int()) {
			return w.SetRelativeAtom(off, atom.MustMake(TypeRes, 0))
		}
		return w.SwapAtoms(core.Origin, off)
	case !other.IsType(TypeDreg):
		if rng.OneIn(d.deleteOdds.Int()) {
			return w.SetRelativeAtom(off, atom.Atom{})
		}
	}
	return nil
}
