//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"mfm/internal/engine"
)

// GridPainter updates a single RGBA image from lattice snapshots.
type GridPainter struct {
	w, h    int
	img     *ebiten.Image
	buf     []byte
	palette *Palette

	// Highlight tints tiles with in-flight events.
	Highlight bool
}

var activeTint = color.RGBA{R: 255, G: 220, B: 0, A: 48}

// NewGridPainter allocates a painter for a lattice of size w*h.
func NewGridPainter(w, h int, p *Palette) *GridPainter {
	gp := &GridPainter{w: w, h: h, buf: make([]byte, 4*w*h), palette: p}
	gp.img = ebiten.NewImage(w, h)
	return gp
}

// Blit uploads snap into the painter image and draws it scaled.
func (gp *GridPainter) Blit(dst *ebiten.Image, snap *engine.Snapshot, scale int) {
	if len(snap.Cells) != gp.w*gp.h {
		return
	}
	FillRGBA(gp.buf, snap, gp.palette)
	if gp.Highlight {
		TintTiles(gp.buf, snap, activeTint)
	}
	gp.img.WritePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(gp.img, op)
}

// Size returns the dimensions of the underlying image.
func (gp *GridPainter) Size() (int, int) { return gp.w, gp.h }
