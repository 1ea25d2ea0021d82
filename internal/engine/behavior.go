package engine

import (
	"fmt"
	"image/color"

	"github.com/google/uuid"

	"mfm/internal/atom"
	"mfm/internal/core"
)

const (
	// CompleteDiffusability is the maximum Diffusability score.
	CompleteDiffusability = 100
	// FullyMovable is the maximum PercentMovable score.
	FullyMovable = 100
)

// Behavior is the rule implementation bound to one atom type.
//
// Execute is the only entry point allowed to change lattice state and is
// invoked once per event for the atom at the window's center. All reads and
// writes must go through the window. PercentMovable and Diffusability are
// advisory scores consulted by movement logic inside behaviors; the
// scheduler never calls them.
type Behavior interface {
	Info() Info
	DefaultAtom() atom.Atom
	Execute(w *Window) error
	PercentMovable(you, me atom.Atom, off core.Offset) uint32
	Diffusability(w *Window, nowAt, maybeAt core.Offset) uint32
}

// Info is descriptive metadata for a behavior.
type Info struct {
	Name        string
	Symbol      string
	Description string
	Version     int
	UUID        uuid.UUID
	Color       color.RGBA
	Params      *core.ParameterSet
}

var behaviorNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("mfm:behavior"))

// BehaviorUUID derives the stable identifier of a behavior version.
func BehaviorUUID(name string, version int) uuid.UUID {
	return uuid.NewSHA1(behaviorNamespace, []byte(fmt.Sprintf("%s-%d", name, version)))
}

// NewInfo fills in the UUID for name and version.
func NewInfo(name, symbol, desc string, version int, c color.RGBA, params *core.ParameterSet) Info {
	return Info{
		Name:        name,
		Symbol:      symbol,
		Description: desc,
		Version:     version,
		UUID:        BehaviorUUID(name, version),
		Color:       c,
		Params:      params,
	}
}

// emptyBehavior is bound to the reserved Empty type. Vacuum does nothing.
type emptyBehavior struct {
	info Info
}

// EmptyBehavior returns the behavior of the vacuum atom.
func EmptyBehavior() Behavior {
	return emptyBehavior{info: NewInfo("Empty", " ", "Vacuum", 1, color.RGBA{A: 255}, nil)}
}

func (e emptyBehavior) Info() Info { return e.info }

func (emptyBehavior) DefaultAtom() atom.Atom { return atom.Atom{} }

func (emptyBehavior) Execute(*Window) error { return nil }

func (emptyBehavior) PercentMovable(atom.Atom, atom.Atom, core.Offset) uint32 {
	return FullyMovable
}

func (emptyBehavior) Diffusability(*Window, core.Offset, core.Offset) uint32 {
	return CompleteDiffusability
}
