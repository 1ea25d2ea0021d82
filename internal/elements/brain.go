package elements

import (
	"image/color"

	"mfm/internal/atom"
	"mfm/internal/core"
	"mfm/internal/engine"
)

// Brain cell states, kept in the low two state bits.
const (
	brainReady  uint64 = 0
	brainFiring uint64 = 1
	brainDying  uint64 = 2

	brainStatePos   = 0
	brainStateWidth = 2
)

// Brain is an excitable cell following Brian's Brain rules, run one cell per
// event instead of in lockstep generations. A firing cell starts dying, a
// dying cell becomes ready, and a ready cell fires when exactly two of its
// eight neighbors are firing. Ready cells also fire spontaneously now and
// then so a fresh lattice has something to propagate.
type Brain struct {
	element
	igniteOdds *core.Parameter
}

// NewBrain returns the Brain behavior.
func NewBrain() *Brain {
	b := &Brain{
		igniteOdds: core.NewIntParameter("brain_ignite_odds", "Ignite Odds", "1 in N chance for a ready Brain cell to fire on its own", 1, 500, 100000),
	}
	b.element = newElement(TypeBrain, "Brain", "Bb", "Brian's Brain cell; ready, firing, dying", 1,
		color.RGBA{R: 0x30, G: 0x60, B: 0xff, A: 0xff}, b.igniteOdds)
	return b
}

// BrainState returns the cell state of a, or brainReady for other types.
func BrainState(a atom.Atom) uint64 {
	if !a.IsType(TypeBrain) {
		return brainReady
	}
	v, err := a.State(brainStatePos, brainStateWidth)
	if err != nil {
		return brainReady
	}
	return v
}

func (b *Brain) withState(v uint64) atom.Atom {
	a, _ := b.DefaultAtom().WithState(brainStatePos, brainStateWidth, v)
	return a
}

func (b *Brain) Execute(w *engine.Window) error {
	switch BrainState(w.GetCenterAtom()) {
	case brainFiring:
		w.SetCenterAtom(b.withState(brainDying))
		return nil
	case brainDying:
		w.SetCenterAtom(b.withState(brainReady))
		return nil
	}

	firing := 0
	for d := core.Dir(0); d < core.DirCount; d++ {
		off := d.Offset()
		if !w.IsLiveSite(off) {
			continue
		}
		a, err := w.GetRelativeAtom(off)
		if err != nil {
			return err
		}
		if a.IsType(TypeBrain) && BrainState(a) == brainFiring {
			firing++
		}
	}
	if firing == 2 || w.GetRandom().OneIn(b.igniteOdds.Int()) {
		w.SetCenterAtom(b.withState(brainFiring))
	}
	return nil
}

// PercentMovable keeps Brain cells in place; they form fixed wiring.
func (*Brain) PercentMovable(atom.Atom, atom.Atom, core.Offset) uint32 { return 0 }
