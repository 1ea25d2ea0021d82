// Package elements provides the stock behaviors shipped with the lattice:
// diffusing Res, the Dreg that creates and destroys, the Eraser, the
// Isolator that walls other atoms off, and the excitable Brain cell.
package elements

import (
	"fmt"
	"image/color"
	"strings"

	"mfm/internal/atom"
	"mfm/internal/core"
	"mfm/internal/engine"
)

// Atom types of the stock elements. Type 0 is the engine's Empty.
const (
	TypeRes      uint32 = 1
	TypeDreg     uint32 = 2
	TypeEraser   uint32 = 3
	TypeIsolator uint32 = 4
	TypeBrain    uint32 = 5
)

// element carries the parts every stock behavior shares.
type element struct {
	typ  uint32
	info engine.Info
}

func newElement(typ uint32, name, symbol, desc string, version int, c color.RGBA, params ...*core.Parameter) element {
	var set *core.ParameterSet
	if len(params) > 0 {
		set = core.NewParameterSet(params...)
	}
	return element{typ: typ, info: engine.NewInfo(name, symbol, desc, version, c, set)}
}

func (e element) Info() engine.Info { return e.info }

func (e element) DefaultAtom() atom.Atom { return atom.MustMake(e.typ, 0) }

func (element) PercentMovable(atom.Atom, atom.Atom, core.Offset) uint32 { return engine.FullyMovable }

func (element) Diffusability(*engine.Window, core.Offset, core.Offset) uint32 {
	return engine.CompleteDiffusability
}

// Catalog returns the stock behaviors configured for event radius r, keyed
// by atom type.
func Catalog(r int) map[uint32]engine.Behavior {
	return map[uint32]engine.Behavior{
		TypeRes:      NewRes(),
		TypeDreg:     NewDreg(),
		TypeEraser:   NewEraser(r),
		TypeIsolator: NewIsolator(r),
		TypeBrain:    NewBrain(),
	}
}

// RegisterAll binds every stock behavior into reg.
func RegisterAll(reg *engine.Registry, r int) error {
	catalog := Catalog(r)
	for _, typ := range []uint32{TypeRes, TypeDreg, TypeEraser, TypeIsolator, TypeBrain} {
		if err := reg.Register(typ, catalog[typ]); err != nil {
			return err
		}
	}
	return nil
}

// TypeByName resolves a case-insensitive element name or symbol.
func TypeByName(name string) (uint32, error) {
	for typ, b := range Catalog(1) {
		info := b.Info()
		if strings.EqualFold(info.Name, name) || strings.EqualFold(info.Symbol, name) {
			return typ, nil
		}
	}
	return 0, fmt.Errorf("unknown element %q", name)
}

// cardinal picks one of the four unit steps.
func cardinal(w *engine.Window) core.Offset {
	band, err := w.Table().Band(1)
	if err != nil {
		return core.Origin
	}
	return band[w.GetRandom().Create(len(band))]
}

// wander picks one of eight directions and swaps the center one step that
// way. Diagonal picks leave the atom in place. With swapAny unset only
// Empty sites are entered.
func wander(w *engine.Window, swapAny bool) error {
	d := core.Dir(w.GetRandom().Create(core.DirCount))
	if d.IsCorner() {
		return nil
	}
	off := d.Offset()
	if !w.IsWritableSite(off) {
		return nil
	}
	if !swapAny {
		if a, err := w.GetRelativeAtom(off); err != nil || !a.IsEmpty() {
			return err
		}
	}
	return w.SwapAtoms(core.Origin, off)
}
