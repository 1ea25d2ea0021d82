package engine

import (
	"fmt"
	"image"
	"slices"
	"sync"
	"sync/atomic"

	"mfm/internal/atom"
	"mfm/internal/core"
	"mfm/internal/mdist"
)

// neighbor is the narrow view a tile has of an adjacent tile: enough to
// coordinate a lease across the shared boundary and to deliver halo updates.
type neighbor interface {
	coreBounds() image.Rectangle
	paddedBounds() image.Rectangle
	tryLock(l *lease) bool
	unlock(l *lease)
	applyHalo(from core.Dir, updates []haloUpdate)
}

type haloUpdate struct {
	site core.Offset
	atom atom.Atom
}

// Tile owns a rectangular core of the lattice plus a halo of width R holding
// copies of the neighbors' boundary atoms.
//
// Core atoms are written only by events centered in this tile. Halo atoms
// are written only by applyHalo, called by the neighbor that owns them while
// it still holds the lease of the committing event.
type Tile struct {
	index  core.Offset
	origin core.Offset
	size   core.Size
	radius int
	world  image.Rectangle
	table  *mdist.Table

	bounds image.Rectangle
	padded image.Rectangle
	cells  *atomGrid

	locks     regionLocks
	neighbors [core.DirCount]neighbor

	rngMu sync.Mutex
	rng   *core.RNG

	haloGen [core.DirCount]atomic.Uint64
	stats   tileCounters
}

func newTile(index, origin core.Offset, size core.Size, radius int, world image.Rectangle, seed uint64, stream uint64) *Tile {
	coreRect := image.Rect(origin.X, origin.Y, origin.X+size.W, origin.Y+size.H)
	return &Tile{
		index:  index,
		origin: origin,
		size:   size,
		radius: radius,
		world:  world,
		table:  mdist.MustGet(radius),
		bounds: coreRect,
		padded: coreRect.Inset(-radius),
		cells:  newAtomGrid(size.W+2*radius, size.H+2*radius),
		rng:    core.NewStreamRNG(seed, stream),
	}
}

// Index returns the tile's position in the grid's tile array.
func (t *Tile) Index() core.Offset { return t.index }

// Origin returns the absolute coordinate of the core's top-left site.
func (t *Tile) Origin() core.Offset { return t.origin }

// Size returns the core dimensions.
func (t *Tile) Size() core.Size { return t.size }

// Radius returns the event radius, which is also the halo width.
func (t *Tile) Radius() int { return t.radius }

// Core returns the core bounds in absolute coordinates.
func (t *Tile) Core() image.Rectangle { return t.bounds }

// InCore reports whether abs belongs to this tile.
func (t *Tile) InCore(abs core.Offset) bool { return abs.Point().In(t.bounds) }

// AtomAt reads a core or halo site by absolute coordinate.
func (t *Tile) AtomAt(abs core.Offset) (atom.Atom, error) {
	if !abs.Point().In(t.padded) {
		return atom.Atom{}, fmt.Errorf("%w: %v not in tile %v", ErrNotInTile, abs, t.index)
	}
	return t.cells.load(t.local(abs)), nil
}

// HaloGeneration counts the halo updates received from direction d.
func (t *Tile) HaloGeneration(d core.Dir) uint64 { return t.haloGen[d%core.DirCount].Load() }

// ActiveLeases returns the number of in-flight events touching this core.
func (t *Tile) ActiveLeases() int { return t.locks.count() }

// Stats returns a snapshot of the tile's counters.
func (t *Tile) Stats() TileStats { return t.stats.snapshot() }

func (t *Tile) local(abs core.Offset) int {
	return t.cells.index(abs.X-t.origin.X+t.radius, abs.Y-t.origin.Y+t.radius)
}

func (t *Tile) load(abs core.Offset) atom.Atom { return t.cells.load(t.local(abs)) }

func (t *Tile) store(abs core.Offset, a atom.Atom) { t.cells.store(t.local(abs), a) }

// pickSite draws a uniform core site and the seed of the event stream.
func (t *Tile) pickSite() (core.Offset, uint64) {
	t.rngMu.Lock()
	defer t.rngMu.Unlock()
	site := core.Offset{
		X: t.origin.X + t.rng.Create(t.size.W),
		Y: t.origin.Y + t.rng.Create(t.size.H),
	}
	return site, t.rng.Uint64()
}

func (t *Tile) eventSeed() uint64 {
	t.rngMu.Lock()
	defer t.rngMu.Unlock()
	return t.rng.Uint64()
}

// acquire leases the diamond of radius R around center. It never blocks: if
// any participating tile already holds an overlapping lease the partial
// registration is rolled back and ErrRegionBusy returned.
func (t *Tile) acquire(center core.Offset) (*lease, error) {
	l := &lease{center: center, radius: t.radius, holders: make([]neighbor, 0, 4)}
	participants := make([]neighbor, 0, 4)
	participants = append(participants, t)
	for _, n := range t.neighbors {
		if n != nil && diamondTouches(n.coreBounds(), center, t.radius) {
			participants = append(participants, n)
		}
	}
	for _, p := range participants {
		if !p.tryLock(l) {
			t.release(l)
			return nil, ErrRegionBusy
		}
		l.holders = append(l.holders, p)
	}
	return l, nil
}

func (t *Tile) release(l *lease) {
	for _, h := range l.holders {
		h.unlock(l)
	}
	l.holders = l.holders[:0]
}

// commit pushes every dirty core site to the neighbors whose halo mirrors
// it. It must run before the lease is released.
func (t *Tile) commit(dirty []core.Offset) {
	if len(dirty) == 0 {
		return
	}
	var batches [core.DirCount][]haloUpdate
	for _, site := range dirty {
		p := site.Point()
		a := t.load(site)
		for d, n := range t.neighbors {
			if n != nil && p.In(n.paddedBounds()) {
				batches[d] = append(batches[d], haloUpdate{site: site, atom: a})
			}
		}
	}
	for d, n := range t.neighbors {
		if n == nil || len(batches[d]) == 0 {
			continue
		}
		n.applyHalo(core.Dir(d).Opposite(), batches[d])
		t.stats.haloPushes.Add(int64(len(batches[d])))
	}
}

// setCore writes a core site outside of any event and propagates it.
func (t *Tile) setCore(abs core.Offset, a atom.Atom) error {
	if !t.InCore(abs) {
		return fmt.Errorf("%w: %v not in tile %v", ErrNotInTile, abs, t.index)
	}
	t.store(abs, a)
	t.commit([]core.Offset{abs})
	return nil
}

func (t *Tile) coreBounds() image.Rectangle { return t.bounds }

func (t *Tile) paddedBounds() image.Rectangle { return t.padded }

func (t *Tile) tryLock(l *lease) bool { return t.locks.tryInsert(l) }

func (t *Tile) unlock(l *lease) { t.locks.remove(l) }

func (t *Tile) applyHalo(from core.Dir, updates []haloUpdate) {
	for _, u := range updates {
		p := u.site.Point()
		if !p.In(t.padded) || p.In(t.bounds) {
			continue
		}
		t.store(u.site, u.atom)
	}
	t.haloGen[from%core.DirCount].Add(1)
}

// dirtyAppend records site once.
func dirtyAppend(dirty []core.Offset, site core.Offset) []core.Offset {
	if slices.Contains(dirty, site) {
		return dirty
	}
	return append(dirty, site)
}
