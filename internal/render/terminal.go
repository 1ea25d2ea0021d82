package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"mfm/internal/engine"
)

// Terminal draws snapshots onto a tcell screen, one character per site.
type Terminal struct {
	screen  tcell.Screen
	palette *Palette

	// ShowTiles separates tiles with a one-character border.
	ShowTiles bool
	// Highlight marks tiles with in-flight events.
	Highlight bool
}

// NewTerminal returns a drawer for screen. The caller owns the screen's
// Init and Fini.
func NewTerminal(screen tcell.Screen, p *Palette) *Terminal {
	return &Terminal{screen: screen, palette: p}
}

var (
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	activeStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
)

// ScreenPos maps a lattice coordinate to its screen cell.
func (t *Terminal) ScreenPos(snap *engine.Snapshot, x, y int) (int, int) {
	if !t.ShowTiles {
		return x, y
	}
	return x + x/snap.TileSize.W, y + y/snap.TileSize.H
}

// Draw renders snap and a one-line status below it, then shows the screen.
func (t *Terminal) Draw(snap *engine.Snapshot) {
	t.screen.Clear()
	for y := 0; y < snap.Size.H; y++ {
		for x := 0; x < snap.Size.W; x++ {
			a := snap.At(x, y)
			if a.IsEmpty() {
				continue
			}
			sx, sy := t.ScreenPos(snap, x, y)
			typ, err := a.DecodeType()
			if err != nil {
				t.screen.SetContent(sx, sy, '!', nil, tcell.StyleDefault.Foreground(tcell.ColorRed))
				continue
			}
			c := t.palette.Color(typ)
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
			t.screen.SetContent(sx, sy, t.palette.Symbol(typ), nil, style)
		}
	}
	if t.ShowTiles {
		t.drawBorders(snap)
	}
	if t.Highlight {
		t.drawActive(snap)
	}

	var st engine.TileStats
	for _, s := range snap.Stats {
		st = st.Add(s)
	}
	bottom := snap.Size.H
	if t.ShowTiles {
		bottom += snap.TilesY() - 1
	}
	t.drawText(0, bottom, fmt.Sprintf("events %d  faults %d  busy %d  deferred %d  halo %d",
		st.Events, st.Faults, st.Busy, st.Deferred, st.HaloPushes))
	t.screen.Show()
}

func (t *Terminal) drawBorders(snap *engine.Snapshot) {
	tilesX, tilesY := snap.TilesX(), snap.TilesY()
	w := snap.Size.W + tilesX - 1
	h := snap.Size.H + tilesY - 1
	for ty := 1; ty < tilesY; ty++ {
		row := ty*snap.TileSize.H + ty - 1
		for x := 0; x < w; x++ {
			t.screen.SetContent(x, row, '─', nil, borderStyle)
		}
	}
	for tx := 1; tx < tilesX; tx++ {
		col := tx*snap.TileSize.W + tx - 1
		for y := 0; y < h; y++ {
			r := '│'
			if (y+1)%(snap.TileSize.H+1) == 0 {
				r = '┼'
			}
			t.screen.SetContent(col, y, r, nil, borderStyle)
		}
	}
}

func (t *Terminal) drawActive(snap *engine.Snapshot) {
	tilesX := snap.TilesX()
	for i, n := range snap.Active {
		if n == 0 {
			continue
		}
		// Corner marker at the tile's top-left.
		x, y := t.ScreenPos(snap, (i%tilesX)*snap.TileSize.W, (i/tilesX)*snap.TileSize.H)
		t.screen.SetContent(x, y, '*', nil, activeStyle)
	}
}

func (t *Terminal) drawText(x, y int, s string) {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, statusStyle)
		x++
	}
}
