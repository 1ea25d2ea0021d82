package main

import (
	"io"
	"testing"

	"mfm/internal/app"
)

func TestParseLayouts(t *testing.T) {
	got, err := parseLayouts(" 2x2, 4X1 ,")
	if err != nil {
		t.Fatalf("parseLayouts: %v", err)
	}
	if len(got) != 2 || got[0] != [2]int{2, 2} || got[1] != [2]int{4, 1} {
		t.Fatalf("parseLayouts = %v", got)
	}
	for _, bad := range []string{"", "2", "0x3", "ax2"} {
		if _, err := parseLayouts(bad); err == nil {
			t.Fatalf("parseLayouts(%q) accepted", bad)
		}
	}
}

func TestParseInts(t *testing.T) {
	got, err := parseInts("2, 4")
	if err != nil || len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Fatalf("parseInts = %v, %v", got, err)
	}
	if _, err := parseInts("two"); err == nil {
		t.Fatal("parseInts accepted a word")
	}
}

func TestRunScenario(t *testing.T) {
	base := app.NewConfig()
	base.Grid.TileW, base.Grid.TileH = 8, 8
	base.Events = 50
	base.Workers = 2
	base.Elements = "res=20,dreg=2"
	app.SetLogOutput(io.Discard)

	res := runScenario(base, scenario{tilesX: 2, tilesY: 2, radius: 2, seed: 5})
	if res.err != nil {
		t.Fatalf("runScenario: %v", res.err)
	}
	if res.events+res.deferred != 4*50 {
		t.Fatalf("events %d + deferred %d != 200", res.events, res.deferred)
	}

	bad := runScenario(base, scenario{tilesX: 2, tilesY: 2, radius: 9, seed: 5})
	if bad.err == nil {
		t.Fatal("radius wider than a tile accepted")
	}
}
