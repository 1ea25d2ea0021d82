package mdist

import (
	"errors"
	"slices"
	"testing"

	"mfm/internal/core"
)

func TestBuildCoversExactlyTheDiamond(t *testing.T) {
	for r := 0; r <= 6; r++ {
		table, err := Build(r)
		if err != nil {
			t.Fatalf("Build(%d): %v", r, err)
		}
		seen := make(map[core.Offset]int)
		for i := 0; i < table.Len(); i++ {
			o, err := table.OffsetAt(i)
			if err != nil {
				t.Fatalf("OffsetAt(%d): %v", i, err)
			}
			seen[o]++
		}
		want := 2*r*r + 2*r + 1
		if table.Len() != want || len(seen) != want {
			t.Fatalf("radius %d: %d offsets (%d unique), want %d", r, table.Len(), len(seen), want)
		}
		for o, n := range seen {
			if n != 1 {
				t.Fatalf("radius %d: %v appears %d times", r, o, n)
			}
			if o.Length() > r {
				t.Fatalf("radius %d: %v outside radius", r, o)
			}
		}
	}
}

func TestBandsAreSortedAndExact(t *testing.T) {
	table, err := Build(4)
	if err != nil {
		t.Fatal(err)
	}
	prev := -1
	for d := 0; d <= 4; d++ {
		first, _ := table.FirstIndex(d)
		last, _ := table.LastIndex(d)
		if first != prev+1 {
			t.Fatalf("band %d starts at %d, previous ended at %d", d, first, prev)
		}
		band, err := table.Band(d)
		if err != nil {
			t.Fatal(err)
		}
		wantLen := 4 * d
		if d == 0 {
			wantLen = 1
		}
		if len(band) != wantLen || last-first+1 != wantLen {
			t.Fatalf("band %d has %d offsets, want %d", d, len(band), wantLen)
		}
		for _, o := range band {
			if o.Length() != d {
				t.Fatalf("band %d contains %v", d, o)
			}
		}
		prev = last
	}
	center, _ := table.OffsetAt(0)
	if center != core.Origin {
		t.Fatalf("first offset %v, want origin", center)
	}
}

func TestWithinExcludesCenter(t *testing.T) {
	table := MustGet(3)
	sites, err := table.Within(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(sites) != 4+8 {
		t.Fatalf("got %d sites, want 12", len(sites))
	}
	for _, o := range sites {
		if o == core.Origin || o.Length() > 2 {
			t.Fatalf("unexpected site %v", o)
		}
	}
}

func TestStableAcrossBuilds(t *testing.T) {
	a, _ := Build(5)
	b, _ := Build(5)
	if !slices.Equal(a.offsets, b.offsets) {
		t.Fatal("repeated builds must produce the same order")
	}
	shared1 := MustGet(5)
	shared2 := MustGet(5)
	if shared1 != shared2 {
		t.Fatal("Get must return the shared table")
	}
}

func TestOutOfRange(t *testing.T) {
	table := MustGet(2)
	checks := []error{}
	_, err := table.FirstIndex(-1)
	checks = append(checks, err)
	_, err = table.LastIndex(3)
	checks = append(checks, err)
	_, err = table.OffsetAt(table.Len())
	checks = append(checks, err)
	_, err = Build(-1)
	checks = append(checks, err)
	_, err = table.Within(0, 5)
	checks = append(checks, err)
	for i, err := range checks {
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("check %d: expected ErrOutOfRange, got %v", i, err)
		}
	}
}
