package elements

import (
	"image/color"

	"mfm/internal/atom"
	"mfm/internal/core"
	"mfm/internal/engine"
)

// Isolator surrounds foreign atoms with a shell of itself at cell_radius
// and keeps the inside of the shell clear of Isolators. An Isolator that
// sees nothing to isolate dies.
type Isolator struct {
	element
	cellRadius *core.Parameter
}

// NewIsolator returns the Isolator for event radius r.
func NewIsolator(r int) *Isolator {
	r = max(r, 1)
	iso := &Isolator{
		cellRadius: core.NewIntParameter("cell_radius", "Cell Radius", "Isolator cell radius spacing", 1, r-1, r),
	}
	iso.element = newElement(TypeIsolator, "Isolator", "Is",
		"Surrounds other elements by writing itself to the edge of the event window", 5,
		color.RGBA{R: 0xcc, G: 0x33, B: 0x99, A: 0xff}, iso.cellRadius)
	return iso
}

// PercentMovable is zero: an Isolator cannot be pushed.
func (*Isolator) PercentMovable(atom.Atom, atom.Atom, core.Offset) uint32 { return 0 }

// Diffusability is complete only for staying put.
func (*Isolator) Diffusability(_ *engine.Window, nowAt, maybeAt core.Offset) uint32 {
	if nowAt == maybeAt {
		return engine.CompleteDiffusability
	}
	return 0
}

func (iso *Isolator) Execute(w *engine.Window) error {
	self := w.GetCenterAtom()
	r := w.Radius()
	cell := iso.cellRadius.Int()
	sites, err := w.Table().Within(1, r)
	if err != nil {
		return err
	}

	found := false
	for _, site := range sites {
		if !w.IsLiveSite(site) {
			continue
		}
		other, err := w.GetRelativeAtom(site)
		if err != nil {
			return err
		}
		if other.IsEmpty() || other.IsType(TypeIsolator) {
			continue
		}
		found = true

		// Clear Isolators inside the cell around the foreign atom, fill the
		// empty sites at or beyond it.
		for _, base := range sites {
			shell := site.Add(base)
			if shell.Length() > r || !w.IsWritableSite(shell) {
				continue
			}
			a, err := w.GetRelativeAtom(shell)
			if err != nil {
				return err
			}
			switch {
			case base.Length() < cell && a.IsType(TypeIsolator):
				err = w.SetRelativeAtom(shell, atom.Atom{})
			case base.Length() >= cell && a.IsEmpty():
				err = w.SetRelativeAtom(shell, self)
			}
			if err != nil {
				return err
			}
		}

		if site.Length() == r-1 {
			if err := iso.pushAway(w, site); err != nil {
				return err
			}
		}
	}

	if !found {
		w.SetCenterAtom(atom.Atom{})
	}
	return nil
}

// pushAway moves the foreign atom at site one step further from the center
// when another foreign atom lies beyond it on the far side of the shell.
func (iso *Isolator) pushAway(w *engine.Window, site core.Offset) error {
	r := w.Radius()
	dist := site.Length()
	outer, err := w.Table().Within(r-dist+1, r)
	if err != nil {
		return err
	}
	for _, adj := range outer {
		if adj == site || core.Distance(adj, site) <= dist || !w.IsLiveSite(adj) {
			continue
		}
		seen, err := w.GetRelativeAtom(adj)
		if err != nil {
			return err
		}
		if seen.IsEmpty() || seen.IsType(TypeIsolator) {
			continue
		}
		away := site.Add(core.Offset{X: sign(site.X), Y: sign(site.Y)})
		if away.Length() > r || !w.IsWritableSite(away) || !w.IsWritableSite(site) {
			return nil
		}
		return w.SwapAtoms(site, away)
	}
	return nil
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
