//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"mfm/internal/engine"
)

// Overlay draws tile structure on top of the lattice view.
type Overlay struct {
	scale       int
	showBorders bool
	showActive  bool
	pixel       *ebiten.Image
}

var (
	borderColor = color.RGBA{R: 90, G: 90, B: 110, A: 200}
	activeColor = color.RGBA{R: 255, G: 220, B: 0, A: 220}
)

// NewOverlay constructs a new overlay instance.
func NewOverlay(scale int, borders, active bool) *Overlay {
	o := &Overlay{scale: scale, showBorders: borders, showActive: active}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles the layers: 1 for tile borders, 2 for active tiles.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showBorders = !o.showBorders
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showActive = !o.showActive
	}
}

// ShowActive reports whether active tiles are highlighted.
func (o *Overlay) ShowActive() bool { return o.showActive }

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image, snap *engine.Snapshot) {
	if snap == nil || snap.TileSize.W <= 0 || snap.TileSize.H <= 0 {
		return
	}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	tw := float64(snap.TileSize.W * scale)
	th := float64(snap.TileSize.H * scale)
	w := float64(snap.Size.W * scale)
	h := float64(snap.Size.H * scale)

	if o.showBorders {
		for tx := 1; tx < snap.TilesX(); tx++ {
			o.drawRect(screen, float64(tx)*tw, 0, 1, h, borderColor)
		}
		for ty := 1; ty < snap.TilesY(); ty++ {
			o.drawRect(screen, 0, float64(ty)*th, w, 1, borderColor)
		}
	}
	if o.showActive {
		tilesX := snap.TilesX()
		for i, n := range snap.Active {
			if n == 0 {
				continue
			}
			x := float64(i%tilesX) * tw
			y := float64(i/tilesX) * th
			o.drawRect(screen, x, y, tw, 1, activeColor)
			o.drawRect(screen, x, y+th-1, tw, 1, activeColor)
			o.drawRect(screen, x, y, 1, th, activeColor)
			o.drawRect(screen, x+tw-1, y, 1, th, activeColor)
		}
	}
}

func (o *Overlay) drawRect(screen *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	if o.pixel == nil || w <= 0 || h <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	screen.DrawImage(o.pixel, op)
}
