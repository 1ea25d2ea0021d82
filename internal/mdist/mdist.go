// Package mdist precomputes bounded-radius neighborhoods under the Manhattan
// metric. A Table lists every offset within its radius grouped into bands of
// equal distance, so a caller can walk "distance exactly d" or "distance in
// [d1, d2]" without recomputing anything per event.
package mdist

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"mfm/internal/core"
)

// ErrOutOfRange reports a radius, distance or index outside the table.
var ErrOutOfRange = errors.New("mdist: out of range")

// Table is immutable after Build and safe for concurrent readers.
type Table struct {
	radius  int
	offsets []core.Offset
	first   []int
	last    []int
}

// Build enumerates every offset with Manhattan length <= maxRadius. Bands are
// ordered by distance; inside a band offsets are ordered by Y then X.
func Build(maxRadius int) (*Table, error) {
	if maxRadius < 0 {
		return nil, fmt.Errorf("%w: radius %d", ErrOutOfRange, maxRadius)
	}
	t := &Table{
		radius: maxRadius,
		first:  make([]int, maxRadius+1),
		last:   make([]int, maxRadius+1),
	}
	for dy := -maxRadius; dy <= maxRadius; dy++ {
		for dx := -maxRadius; dx <= maxRadius; dx++ {
			o := core.Offset{X: dx, Y: dy}
			if o.Length() <= maxRadius {
				t.offsets = append(t.offsets, o)
			}
		}
	}
	slices.SortStableFunc(t.offsets, func(a, b core.Offset) int {
		return a.Length() - b.Length()
	})
	d := 0
	for i, o := range t.offsets {
		if i == 0 || o.Length() != d {
			d = o.Length()
			t.first[d] = i
		}
		t.last[d] = i
	}
	return t, nil
}

var cache sync.Map // int -> *Table

// Get returns the shared table for radius r, building it on first use.
func Get(r int) (*Table, error) {
	if v, ok := cache.Load(r); ok {
		return v.(*Table), nil
	}
	t, err := Build(r)
	if err != nil {
		return nil, err
	}
	v, _ := cache.LoadOrStore(r, t)
	return v.(*Table), nil
}

// MustGet is like Get but panics on a negative radius.
func MustGet(r int) *Table {
	t, err := Get(r)
	if err != nil {
		panic(err)
	}
	return t
}

// Radius returns the maximum distance covered.
func (t *Table) Radius() int { return t.radius }

// Len returns the number of offsets, center included.
func (t *Table) Len() int { return len(t.offsets) }

// FirstIndex returns the position of the first offset at distance d, which
// is also the first position at or beyond d.
func (t *Table) FirstIndex(d int) (int, error) {
	if d < 0 || d > t.radius {
		return 0, fmt.Errorf("%w: distance %d, radius %d", ErrOutOfRange, d, t.radius)
	}
	return t.first[d], nil
}

// LastIndex returns the position of the last offset at distance d, which is
// also the last position within d.
func (t *Table) LastIndex(d int) (int, error) {
	if d < 0 || d > t.radius {
		return 0, fmt.Errorf("%w: distance %d, radius %d", ErrOutOfRange, d, t.radius)
	}
	return t.last[d], nil
}

// OffsetAt returns the offset stored at position i.
func (t *Table) OffsetAt(i int) (core.Offset, error) {
	if i < 0 || i >= len(t.offsets) {
		return core.Offset{}, fmt.Errorf("%w: index %d of %d", ErrOutOfRange, i, len(t.offsets))
	}
	return t.offsets[i], nil
}

// Within returns the offsets whose distance lies in [d1, d2]. The result
// aliases the table and must not be modified.
func (t *Table) Within(d1, d2 int) ([]core.Offset, error) {
	lo, err := t.FirstIndex(d1)
	if err != nil {
		return nil, err
	}
	hi, err := t.LastIndex(d2)
	if err != nil {
		return nil, err
	}
	if hi < lo {
		return nil, nil
	}
	return t.offsets[lo : hi+1 : hi+1], nil
}

// Band returns the offsets at exactly distance d.
func (t *Table) Band(d int) ([]core.Offset, error) { return t.Within(d, d) }
