package core

import (
	"testing"
	"time"
)

func TestOffsetLength(t *testing.T) {
	cases := []struct {
		o    Offset
		want int
	}{
		{Offset{}, 0},
		{Offset{X: 3, Y: 0}, 3},
		{Offset{X: -2, Y: 5}, 7},
		{Offset{X: -1, Y: -1}, 2},
	}
	for _, tc := range cases {
		if got := tc.o.Length(); got != tc.want {
			t.Fatalf("%v.Length() = %d, want %d", tc.o, got, tc.want)
		}
	}
	if Distance(Offset{X: 1, Y: 1}, Offset{X: -1, Y: 2}) != 3 {
		t.Fatal("unexpected distance")
	}
}

func TestDirOppositeAndDirTo(t *testing.T) {
	for d := Dir(0); d < DirCount; d++ {
		sum := d.Offset().Add(d.Opposite().Offset())
		if sum != Origin {
			t.Fatalf("%v and %v are not opposite", d, d.Opposite())
		}
		got, ok := DirTo(d.Offset().Scale(3))
		if !ok || got != d {
			t.Fatalf("DirTo(%v) = %v, %v", d.Offset().Scale(3), got, ok)
		}
	}
	if _, ok := DirTo(Origin); ok {
		t.Fatal("origin has no direction")
	}
	if DirN.IsCorner() || !DirNE.IsCorner() {
		t.Fatal("corner classification wrong")
	}
}

func TestRNGDeterministic(t *testing.T) {
	a := NewStreamRNG(7, 3)
	b := NewStreamRNG(7, 3)
	for i := 0; i < 32; i++ {
		if a.Create(100) != b.Create(100) {
			t.Fatalf("streams diverged at draw %d", i)
		}
	}
	c := NewStreamRNG(7, 4)
	same := true
	for i := 0; i < 32; i++ {
		if a.Uint64() != c.Uint64() {
			same = false
		}
	}
	if same {
		t.Fatal("different streams should not match")
	}
}

func TestRNGBounds(t *testing.T) {
	r := NewRNG(1)
	for i := 0; i < 1000; i++ {
		if v := r.Between(-2, 2); v < -2 || v > 2 {
			t.Fatalf("Between out of range: %d", v)
		}
		if v := r.Create(5); v < 0 || v >= 5 {
			t.Fatalf("Create out of range: %d", v)
		}
	}
	if r.Create(0) != 0 || !r.OneIn(1) {
		t.Fatal("degenerate bounds mishandled")
	}
}

func TestParameterClamps(t *testing.T) {
	p := NewIntParameter("erase_radius", "Erase radius", "", 1, 2, 4)
	if p.Int() != 2 {
		t.Fatalf("default = %d, want 2", p.Int())
	}
	if p.Set(9) {
		t.Fatal("expected out-of-range set to report false")
	}
	if p.Int() != 4 {
		t.Fatalf("expected clamp to 4, got %d", p.Int())
	}
	if !p.Set(3) || p.Int() != 3 {
		t.Fatalf("expected 3, got %d", p.Int())
	}
	p.Reset()
	if p.Int() != 2 {
		t.Fatalf("reset = %d, want 2", p.Int())
	}

	f := NewFloatParameter("chance", "Chance", "", 0, 2, 1)
	if f.Float() != 1 {
		t.Fatalf("default should clamp into range, got %f", f.Float())
	}
}

func TestParameterSetApply(t *testing.T) {
	set := NewParameterSet(
		NewIntParameter("b", "B", "", 0, 1, 10),
		NewIntParameter("a", "A", "", 0, 1, 10),
	)
	if err := set.Apply(map[string]string{"a": "7", "unknown": "x"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	a, _ := set.Get("a")
	if a.Int() != 7 {
		t.Fatalf("a = %d, want 7", a.Int())
	}
	if err := set.Apply(map[string]string{"b": "nope"}); err == nil {
		t.Fatal("expected parse error")
	}
	params := set.Params()
	if len(params) != 2 || params[0].Key != "a" {
		t.Fatalf("params not sorted: %v", params)
	}
}

func TestFixedStep(t *testing.T) {
	now := time.Unix(0, 0)
	fs := newFixedStep(10, func() time.Time { return now })
	if !fs.ShouldStep() {
		t.Fatal("first call should step")
	}
	if fs.ShouldStep() {
		t.Fatal("no time passed, should not step")
	}
	now = now.Add(150 * time.Millisecond)
	if !fs.ShouldStep() {
		t.Fatal("expected a step after 150ms at 10 TPS")
	}
	if got := fs.Wait(); got != 50*time.Millisecond {
		t.Fatalf("wait = %v, want 50ms", got)
	}
}
