package elements

import (
	"image/color"

	"mfm/internal/atom"
	"mfm/internal/core"
	"mfm/internal/engine"
)

// Eraser empties every other element within erase_radius of itself, then
// wanders, swapping with whatever is in the way.
type Eraser struct {
	element
	radius *core.Parameter
}

// NewEraser returns the Eraser for event radius r.
func NewEraser(r int) *Eraser {
	e := &Eraser{
		radius: core.NewIntParameter("erase_radius", "Erase Radius", "Eraser effective distance", 1, 2, max(r, 1)),
	}
	e.element = newElement(TypeEraser, "Eraser", "Er",
		"Erases any non-Eraser element within erase_radius of itself, wanders", 1,
		color.RGBA{R: 0x58, G: 0x58, B: 0x4c, A: 0xff}, e.radius)
	return e
}

func (e *Eraser) Execute(w *engine.Window) error {
	reach := min(e.radius.Int(), w.Radius())
	sites, err := w.Table().Within(1, reach)
	if err != nil {
		return err
	}
	for _, site := range sites {
		if !w.IsWritableSite(site) {
			continue
		}
		other, err := w.GetRelativeAtom(site)
		if err != nil {
			return err
		}
		if other.IsEmpty() || other.IsType(TypeEraser) {
			continue
		}
		if err := w.SetRelativeAtom(site, atom.Atom{}); err != nil {
			return err
		}
	}
	return wander(w, true)
}
