package engine

import (
	"fmt"

	"mfm/internal/atom"
	"mfm/internal/core"
	"mfm/internal/mdist"
)

// eventStream separates per-event random streams from the tile's own
// site-selection stream.
const eventStream = 0x9e3779b97f4a7c15

// Window is the bounded view one event has of the lattice. It is the only
// way a behavior can read or write atoms. Offsets are relative to the
// center; a site is live when it lies within the event radius, inside the
// grid, and inside the leased territory. Core sites are writable, halo sites
// are read-only because the neighboring tile is authoritative for them.
//
// A Window is valid only for the duration of Execute.
type Window struct {
	tile   *Tile
	center core.Offset
	lease  *lease
	rng    *core.RNG
	dirty  []core.Offset
	open   bool
}

func newWindow(t *Tile, l *lease, seed uint64) *Window {
	return &Window{
		tile:   t,
		center: l.center,
		lease:  l,
		rng:    core.NewStreamRNG(seed, eventStream),
		open:   true,
	}
}

// Center returns the absolute coordinate of the event center.
func (w *Window) Center() core.Offset { return w.center }

// Radius returns the event radius R.
func (w *Window) Radius() int { return w.tile.radius }

// Table returns the shared distance index for R.
func (w *Window) Table() *mdist.Table { return w.tile.table }

// GetRandom returns the random stream of this event.
func (w *Window) GetRandom() *core.RNG { return w.rng }

// IsLiveSite reports whether off may be read during this event.
func (w *Window) IsLiveSite(off core.Offset) bool {
	_, ok := w.live(off)
	return ok
}

// IsWritableSite reports whether off is live and in the owning tile's core.
func (w *Window) IsWritableSite(off core.Offset) bool {
	abs, ok := w.live(off)
	return ok && w.tile.InCore(abs)
}

// GetRelativeAtom reads the atom at off.
func (w *Window) GetRelativeAtom(off core.Offset) (atom.Atom, error) {
	abs, err := w.resolve(off)
	if err != nil {
		return atom.Atom{}, err
	}
	return w.tile.load(abs), nil
}

// SetRelativeAtom writes a at off. The write lands in the tile's core
// immediately and is propagated to neighbor halos when the event commits.
func (w *Window) SetRelativeAtom(off core.Offset, a atom.Atom) error {
	abs, err := w.resolveWritable(off)
	if err != nil {
		return err
	}
	w.write(abs, a)
	return nil
}

// GetCenterAtom reads the center site. It panics with ErrWindowClosed when
// called after the event has ended.
func (w *Window) GetCenterAtom() atom.Atom {
	w.mustBeOpen()
	return w.tile.load(w.center)
}

// SetCenterAtom writes the center site. It panics with ErrWindowClosed when
// called after the event has ended.
func (w *Window) SetCenterAtom(a atom.Atom) {
	w.mustBeOpen()
	w.write(w.center, a)
}

// SwapAtoms exchanges the contents of two sites. Both must be writable;
// nothing is written unless both are.
func (w *Window) SwapAtoms(a, b core.Offset) error {
	absA, err := w.resolveWritable(a)
	if err != nil {
		return err
	}
	absB, err := w.resolveWritable(b)
	if err != nil {
		return err
	}
	if absA == absB {
		return nil
	}
	atomA, atomB := w.tile.load(absA), w.tile.load(absB)
	w.write(absA, atomB)
	w.write(absB, atomA)
	return nil
}

func (w *Window) live(off core.Offset) (core.Offset, bool) {
	if !w.open || off.Length() > w.tile.radius {
		return core.Offset{}, false
	}
	abs := w.center.Add(off)
	p := abs.Point()
	if !p.In(w.tile.world) || !p.In(w.tile.padded) || !w.lease.covers(abs) {
		return core.Offset{}, false
	}
	return abs, true
}

func (w *Window) resolve(off core.Offset) (core.Offset, error) {
	if !w.open {
		return core.Offset{}, ErrWindowClosed
	}
	abs, ok := w.live(off)
	if !ok {
		return core.Offset{}, fmt.Errorf("%w: offset %v from %v", ErrOutOfBounds, off, w.center)
	}
	return abs, nil
}

func (w *Window) resolveWritable(off core.Offset) (core.Offset, error) {
	abs, err := w.resolve(off)
	if err != nil {
		return abs, err
	}
	if !w.tile.InCore(abs) {
		return abs, fmt.Errorf("%w: offset %v from %v", ErrReadOnlyRegion, off, w.center)
	}
	return abs, nil
}

func (w *Window) write(abs core.Offset, a atom.Atom) {
	w.tile.store(abs, a)
	w.dirty = dirtyAppend(w.dirty, abs)
}

func (w *Window) mustBeOpen() {
	if !w.open {
		panic(ErrWindowClosed)
	}
}

// close ends the event and hands back the sites it wrote.
func (w *Window) close() []core.Offset {
	w.open = false
	return w.dirty
}
