package elements

import (
	"image/color"

	"mfm/internal/core"
	"mfm/internal/engine"
)

// Res is inert resource that diffuses through empty space.
type Res struct {
	element
}

// NewRes returns the Res behavior.
func NewRes() *Res {
	return &Res{element: newElement(TypeRes, "Res", "Re", "Resource; wanders into empty space", 1,
		color.RGBA{R: 0x67, G: 0x67, B: 0x00, A: 0xff})}
}

func (r *Res) Execute(w *engine.Window) error {
	off := cardinal(w)
	if off == core.Origin || !w.IsWritableSite(off) {
		return nil
	}
	a, err := w.GetRelativeAtom(off)
	if err != nil || !a.IsEmpty() {
		return err
	}
	return w.SwapAtoms(core.Origin, off)
}
