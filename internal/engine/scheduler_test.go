package engine

import (
	"context"
	"errors"
	"slices"
	"testing"

	"mfm/internal/atom"
	"mfm/internal/core"
)

func TestCopySelfSingleTile(t *testing.T) {
	g := testGrid(t, 1, 1, 10, 10, 1)
	sched := NewScheduler(testRegistry(t, copier()))
	seed := atom.MustMake(typeCopier, 0)
	mustSet(t, g, 5, 5, seed)

	// A lone copier has four empty cardinal neighbors, so one event at
	// the seed must produce exactly one copy next to it.
	res, err := sched.ExecuteAt(g.Tile(0, 0), core.Offset{X: 5, Y: 5})
	if err != nil || res.Outcome != OutcomeExecuted {
		t.Fatalf("ExecuteAt = %+v, %v", res, err)
	}
	snap := g.Snapshot()
	if n := snap.Count(typeCopier); n != 2 {
		t.Fatalf("copier count = %d, want 2", n)
	}
	neighbors := 0
	for _, off := range []core.Offset{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
		if snap.At(5+off.X, 5+off.Y).IsType(typeCopier) {
			neighbors++
		}
	}
	if neighbors != 1 {
		t.Fatalf("copies adjacent to seed = %d, want 1", neighbors)
	}
}

func TestCopySelfDeterministic(t *testing.T) {
	run := func() []atom.Atom {
		g := testGrid(t, 1, 1, 10, 10, 1)
		sched := NewScheduler(testRegistry(t, copier()))
		mustSet(t, g, 5, 5, atom.MustMake(typeCopier, 0))
		if err := g.Run(context.Background(), sched, RunOptions{EventsPerTile: 400, Workers: 1}); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return g.Snapshot().Cells
	}
	first, second := run(), run()
	if !slices.Equal(first, second) {
		t.Fatal("same seed produced different lattices")
	}
	n := 0
	for _, a := range first {
		if a.IsType(typeCopier) {
			n++
		}
	}
	if n < 2 {
		t.Fatalf("copier never spread: %d", n)
	}
}

func TestStepSiteSelectionFollowsSeed(t *testing.T) {
	steps := func(seed int64) ([]EventResult, []atom.Atom) {
		g, err := NewGrid(Config{TilesX: 1, TilesY: 1, TileW: 10, TileH: 10, Radius: 1, Seed: seed})
		if err != nil {
			t.Fatalf("NewGrid: %v", err)
		}
		for y := 0; y < 10; y++ {
			for x := 0; x < 10; x += 2 {
				mustSet(t, g, x, y, atom.MustMake(typeCopier, 0))
			}
		}
		sched := NewScheduler(testRegistry(t, copier()))
		var out []EventResult
		for i := 0; i < 10; i++ {
			res, err := sched.Step(g.Tile(0, 0))
			if err != nil {
				t.Fatalf("Step: %v", err)
			}
			out = append(out, res)
		}
		return out, g.Snapshot().Cells
	}

	first, cells1 := steps(7)
	second, cells2 := steps(7)
	for i := range first {
		if first[i].Site != second[i].Site || first[i].Type != second[i].Type || first[i].Outcome != second[i].Outcome {
			t.Fatalf("step %d: %+v vs %+v", i, first[i], second[i])
		}
	}
	if !slices.Equal(cells1, cells2) {
		t.Fatal("same seed produced different lattices")
	}

	other, _ := steps(8)
	same := true
	for i := range first {
		if first[i].Site != other[i].Site {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds picked the same ten sites")
	}
}

func TestBoundaryWriteVisibleInNeighborHalo(t *testing.T) {
	marker := atom.MustMake(typeMarker, 0)
	stamp := funcBehavior{typ: typeWalker, name: "Stamp", exec: func(w *Window) error {
		w.SetCenterAtom(marker)
		return w.SetRelativeAtom(core.Offset{X: -1, Y: 0}, marker)
	}}
	g := testGrid(t, 2, 1, 8, 8, 2)
	mustSet(t, g, 7, 4, stamp.DefaultAtom())
	left, right := g.Tile(0, 0), g.Tile(1, 0)
	gen := right.HaloGeneration(core.DirW)

	sched := NewScheduler(testRegistry(t, stamp, funcBehavior{typ: typeMarker, name: "Marker"}))
	if _, err := sched.ExecuteAt(left, core.Offset{X: 7, Y: 4}); err != nil {
		t.Fatalf("ExecuteAt: %v", err)
	}
	for _, x := range []int{6, 7} {
		got, err := right.AtomAt(core.Offset{X: x, Y: 4})
		if err != nil || got != marker {
			t.Fatalf("right halo at x=%d = %v, %v; want marker", x, got, err)
		}
	}
	if right.HaloGeneration(core.DirW) != gen+1 {
		t.Fatalf("generation = %d, want %d", right.HaloGeneration(core.DirW), gen+1)
	}
	if left.ActiveLeases() != 0 || right.ActiveLeases() != 0 {
		t.Fatal("lease not released after commit")
	}
}

func TestDisjointEventsCommute(t *testing.T) {
	// Increments its own state and copies itself west.
	bump := funcBehavior{typ: typeWalker, name: "Bump", exec: func(w *Window) error {
		c := w.GetCenterAtom()
		v, _ := c.State(0, 8)
		next, err := c.WithState(0, 8, v+1)
		if err != nil {
			return err
		}
		w.SetCenterAtom(next)
		return w.SetRelativeAtom(core.Offset{X: -1, Y: 0}, next)
	}}
	a := core.Offset{X: 3, Y: 4}
	b := core.Offset{X: 12, Y: 4}
	run := func(order ...core.Offset) []atom.Atom {
		g := testGrid(t, 2, 1, 8, 8, 2)
		mustSet(t, g, a.X, a.Y, atom.MustMake(typeWalker, 8))
		mustSet(t, g, b.X, b.Y, atom.MustMake(typeWalker, 8))
		sched := NewScheduler(testRegistry(t, bump))
		for _, site := range order {
			tile, _ := g.TileAt(site)
			if _, err := sched.ExecuteAt(tile, site); err != nil {
				t.Fatalf("ExecuteAt %v: %v", site, err)
			}
		}
		return g.Snapshot().Cells
	}
	if !slices.Equal(run(a, b), run(b, a)) {
		t.Fatal("disjoint events do not commute")
	}
}

func TestStepUnknownTypeIsFatal(t *testing.T) {
	g := testGrid(t, 1, 1, 4, 4, 1)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			mustSet(t, g, x, y, atom.MustMake(99, 0))
		}
	}
	sched := NewScheduler(NewRegistry())
	_, err := sched.Step(g.Tile(0, 0))
	var ev *EventError
	if !errors.As(err, &ev) || !errors.Is(err, ErrUnknownType) || !IsFatal(err) {
		t.Fatalf("err = %v, want fatal *EventError wrapping ErrUnknownType", err)
	}
	if ev.Type != 99 {
		t.Fatalf("EventError.Type = %d, want 99", ev.Type)
	}
	if g.Tile(0, 0).ActiveLeases() != 0 {
		t.Fatal("lease leaked after fatal event")
	}
	if err := sched.RunTile(context.Background(), g.Tile(0, 0), 3); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("RunTile err = %v, want ErrUnknownType", err)
	}
}

func TestStepFaultKeepsWrites(t *testing.T) {
	boom := errors.New("boom")
	marker := atom.MustMake(typeMarker, 0)
	faulty := funcBehavior{typ: typeWalker, name: "Faulty", exec: func(w *Window) error {
		w.SetCenterAtom(marker)
		return boom
	}}
	g := testGrid(t, 1, 1, 4, 4, 1)
	mustSet(t, g, 1, 1, faulty.DefaultAtom())
	sched := NewScheduler(testRegistry(t, faulty, funcBehavior{typ: typeMarker, name: "Marker"}))

	res, err := sched.ExecuteAt(g.Tile(0, 0), core.Offset{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("fault surfaced as fatal: %v", err)
	}
	if res.Outcome != OutcomeFault || !errors.Is(res.Err, boom) {
		t.Fatalf("result = %+v, want fault wrapping boom", res)
	}
	if got, _ := g.AtomAt(core.Offset{X: 1, Y: 1}); got != marker {
		t.Fatal("write before the fault was lost")
	}
	st := g.Stats()
	if st.Events != 1 || st.Faults != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestRunTileStrictFaults(t *testing.T) {
	boom := errors.New("boom")
	faulty := funcBehavior{typ: typeWalker, name: "Faulty", exec: func(*Window) error { return boom }}
	g := testGrid(t, 1, 1, 2, 2, 1)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			mustSet(t, g, x, y, faulty.DefaultAtom())
		}
	}
	lenient := NewScheduler(testRegistry(t, faulty))
	if err := lenient.RunTile(context.Background(), g.Tile(0, 0), 5); err != nil {
		t.Fatalf("lenient RunTile: %v", err)
	}
	if f := g.Stats().Faults; f != 5 {
		t.Fatalf("faults = %d, want 5", f)
	}
	strict := NewScheduler(testRegistry(t, faulty), WithStrictFaults())
	if err := strict.RunTile(context.Background(), g.Tile(0, 0), 5); !errors.Is(err, boom) {
		t.Fatalf("strict RunTile err = %v, want boom", err)
	}
}

func TestStepDefersWhenBusy(t *testing.T) {
	g := testGrid(t, 1, 1, 3, 3, 3)
	tile := g.Tile(0, 0)
	held, err := tile.acquire(core.Offset{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer tile.release(held)

	sched := NewScheduler(NewRegistry(), WithMaxRetries(2))
	res, err := sched.Step(tile)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if res.Outcome != OutcomeDeferred || res.Retries != 2 {
		t.Fatalf("result = %+v, want deferred after 2 retries", res)
	}
	st := tile.Stats()
	if st.Busy != 3 || st.Deferred != 1 || st.Events != 0 {
		t.Fatalf("stats = %+v", st)
	}
	if _, err := sched.ExecuteAt(tile, core.Offset{X: 0, Y: 0}); !errors.Is(err, ErrRegionBusy) {
		t.Fatalf("ExecuteAt err = %v, want ErrRegionBusy", err)
	}
}

func TestExecuteAtOutsideTile(t *testing.T) {
	g := testGrid(t, 2, 1, 4, 4, 1)
	sched := NewScheduler(NewRegistry())
	if _, err := sched.ExecuteAt(g.Tile(0, 0), core.Offset{X: 5, Y: 1}); !errors.Is(err, ErrNotInTile) {
		t.Fatalf("err = %v, want ErrNotInTile", err)
	}
}

func TestRunTileStopsOnCancel(t *testing.T) {
	g := testGrid(t, 1, 1, 4, 4, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sched := NewScheduler(NewRegistry())
	if err := sched.RunTile(ctx, g.Tile(0, 0), 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if g.Stats().Events != 0 {
		t.Fatal("events ran after cancellation")
	}
}
