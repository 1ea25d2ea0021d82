package engine

import (
	"image"
	"sync"

	"mfm/internal/core"
)

// lease is the territory one in-flight event holds: the Manhattan diamond of
// the event radius around its center, which is exactly the set of sites its
// window can address. A lease is registered with every tile whose core the
// diamond touches.
type lease struct {
	center  core.Offset
	radius  int
	holders []neighbor
}

func (l *lease) covers(abs core.Offset) bool {
	return core.Distance(abs, l.center) <= l.radius
}

// overlaps reports whether two diamonds share at least one site.
func (l *lease) overlaps(o *lease) bool {
	return core.Distance(l.center, o.center) <= l.radius+o.radius
}

// regionLocks tracks the leases active against one tile's core. The mutex is
// held only for a single check-and-insert or removal, never while waiting on
// another tile.
type regionLocks struct {
	mu     sync.Mutex
	active []*lease
}

func (rl *regionLocks) tryInsert(l *lease) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for _, a := range rl.active {
		if a.overlaps(l) {
			return false
		}
	}
	rl.active = append(rl.active, l)
	return true
}

func (rl *regionLocks) remove(l *lease) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for i, a := range rl.active {
		if a == l {
			last := len(rl.active) - 1
			rl.active[i] = rl.active[last]
			rl.active[last] = nil
			rl.active = rl.active[:last]
			return
		}
	}
}

func (rl *regionLocks) count() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.active)
}

// diamondTouches reports whether the diamond of radius r around c shares a
// site with rect.
func diamondTouches(rect image.Rectangle, c core.Offset, r int) bool {
	if rect.Empty() {
		return false
	}
	nearest := core.Offset{
		X: clamp(c.X, rect.Min.X, rect.Max.X-1),
		Y: clamp(c.Y, rect.Min.Y, rect.Max.Y-1),
	}
	return core.Distance(nearest, c) <= r
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
