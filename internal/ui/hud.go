//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"mfm/internal/core"
	"mfm/internal/engine"
)

// HUD renders the behavior parameter panel and run statistics to the right
// of the lattice view.
type HUD struct {
	width      int
	panel      *ebiten.Image
	lastHeight int

	controls     []hudControlState
	panelOffsetX int

	pixel *ebiten.Image
}

// NewHUD builds controls for every parameter of every behavior in reg.
func NewHUD(reg *engine.Registry, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	for _, typ := range reg.Types() {
		b, err := reg.Lookup(typ)
		if err != nil {
			continue
		}
		info := b.Info()
		for _, p := range info.Params.Params() {
			h.controls = append(h.controls, hudControlState{owner: info.Name, param: p})
		}
	}
	h.layoutControls()
	return h
}

// Update handles HUD interactions.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	h.handleInput()
}

// Draw paints the HUD panel anchored to the right edge of the lattice view.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int, stats engine.TileStats) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dx() != h.width || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawControls()
	h.drawStats(stats)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) handleInput() {
	if len(h.controls) == 0 {
		return
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i := range h.controls {
		state := &h.controls[i]
		if pointInRect(px, my, state.minusRect) {
			state.adjust(-1)
			return
		}
		if pointInRect(px, my, state.plusRect) {
			state.adjust(1)
			return
		}
	}
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	headerY := panelPadding + headerBaseline
	text.Draw(h.panel, "Parameters", face, panelPadding, headerY, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	if len(h.controls) == 0 {
		text.Draw(h.panel, "No adjustable parameters", face, panelPadding, headerY+infoSpacing, color.RGBA{R: 160, G: 160, B: 170, A: 255})
		return
	}
	for i := range h.controls {
		state := &h.controls[i]
		labelY := state.top + labelBaseline
		label := state.owner + " " + state.param.Label
		text.Draw(h.panel, label, face, panelPadding, labelY, color.RGBA{R: 220, G: 220, B: 230, A: 255})

		value := state.format()
		bounds := text.BoundString(face, value)
		valueX := state.minusRect.Min.X - buttonGap - bounds.Dx()
		text.Draw(h.panel, value, face, valueX, labelY, color.RGBA{R: 220, G: 220, B: 230, A: 255})

		h.drawButton(state.minusRect, "-", state.canAdjust(-1))
		h.drawButton(state.plusRect, "+", state.canAdjust(1))
	}
}

func (h *HUD) drawStats(s engine.TileStats) {
	face := basicfont.Face7x13
	top := controlsTop + len(h.controls)*lineHeight + infoSpacing
	text.Draw(h.panel, "Run", face, panelPadding, top, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	lines := []string{
		fmt.Sprintf("events    %d", s.Events),
		fmt.Sprintf("faults    %d", s.Faults),
		fmt.Sprintf("busy      %d", s.Busy),
		fmt.Sprintf("deferred  %d", s.Deferred),
		fmt.Sprintf("halo      %d", s.HaloPushes),
	}
	for i, line := range lines {
		text.Draw(h.panel, line, face, panelPadding, top+(i+1)*statSpacing, color.RGBA{R: 180, G: 180, B: 190, A: 255})
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorM.Scale(float64(bg.R)/255.0, float64(bg.G)/255.0, float64(bg.B)/255.0, float64(bg.A)/255.0)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	if h.width <= 0 {
		return
	}
	for i := range h.controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plusRect := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minusRect := image.Rect(plusRect.Min.X-buttonGap-buttonSize, buttonY, plusRect.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].top = top
		h.controls[i].minusRect = minusRect
		h.controls[i].plusRect = plusRect
	}
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

type hudControlState struct {
	owner string
	param *core.Parameter

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

func (s *hudControlState) step() float64 {
	if s.param.Type == core.ParamTypeInt {
		// Odds span several orders of magnitude; step by roughly 10%.
		return math.Max(1, math.Round(s.param.Float()/10))
	}
	return math.Max((s.param.Max-s.param.Min)/100, 0.001)
}

func (s *hudControlState) canAdjust(direction int) bool {
	v := s.param.Float()
	if direction < 0 {
		return v > s.param.Min
	}
	return v < s.param.Max
}

func (s *hudControlState) adjust(direction int) {
	s.param.Set(s.param.Float() + float64(direction)*s.step())
}

func (s *hudControlState) format() string {
	if s.param.Type == core.ParamTypeInt {
		return strconv.Itoa(s.param.Int())
	}
	return strconv.FormatFloat(s.param.Float(), 'f', 3, 64)
}

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	infoSpacing    = 36
	statSpacing    = 16
	controlsTop    = panelPadding + headerBaseline + 14
)
