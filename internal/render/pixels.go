package render

import (
	"image/color"
	"unicode/utf8"

	"mfm/internal/engine"
)

// Palette maps atom types to the color and glyph used to draw them.
type Palette struct {
	colors  map[uint32]color.RGBA
	symbols map[uint32]rune

	// Unknown is used for types without an entry.
	Unknown color.RGBA
}

// PaletteFrom builds a palette from the Info of every registered behavior.
func PaletteFrom(reg *engine.Registry) *Palette {
	p := &Palette{
		colors:  make(map[uint32]color.RGBA),
		symbols: make(map[uint32]rune),
		Unknown: color.RGBA{R: 255, G: 0, B: 255, A: 255},
	}
	for _, typ := range reg.Types() {
		b, err := reg.Lookup(typ)
		if err != nil {
			continue
		}
		info := b.Info()
		p.colors[typ] = info.Color
		if r, _ := utf8.DecodeRuneInString(info.Symbol); r != utf8.RuneError {
			p.symbols[typ] = r
		}
	}
	return p
}

// Color returns the color of typ.
func (p *Palette) Color(typ uint32) color.RGBA {
	if c, ok := p.colors[typ]; ok {
		return c
	}
	return p.Unknown
}

// Symbol returns the glyph of typ, '?' when it has none.
func (p *Palette) Symbol(typ uint32) rune {
	if r, ok := p.symbols[typ]; ok {
		return r
	}
	return '?'
}

// FillRGBA converts the snapshot into RGBA pixels in buf, one pixel per
// site. buf must hold at least 4*W*H bytes.
func FillRGBA(buf []byte, snap *engine.Snapshot, p *Palette) {
	for i, a := range snap.Cells {
		typ, err := a.DecodeType()
		col := p.Unknown
		if err == nil {
			col = p.Color(typ)
		}
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// TintTiles blends tint over every tile with in-flight leases. It is used
// to highlight where events are currently running.
func TintTiles(buf []byte, snap *engine.Snapshot, tint color.RGBA) {
	tilesX := snap.TilesX()
	for i, n := range snap.Active {
		if n == 0 {
			continue
		}
		x0 := (i % tilesX) * snap.TileSize.W
		y0 := (i / tilesX) * snap.TileSize.H
		for y := y0; y < y0+snap.TileSize.H; y++ {
			for x := x0; x < x0+snap.TileSize.W; x++ {
				base := (y*snap.Size.W + x) * 4
				buf[base+0] = blend(buf[base+0], tint.R, tint.A)
				buf[base+1] = blend(buf[base+1], tint.G, tint.A)
				buf[base+2] = blend(buf[base+2], tint.B, tint.A)
			}
		}
	}
}

func blend(dst, src, alpha uint8) uint8 {
	return uint8((uint16(dst)*uint16(255-alpha) + uint16(src)*uint16(alpha)) / 255)
}
