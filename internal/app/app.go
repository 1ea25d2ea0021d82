//go:build ebiten

package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"mfm/internal/engine"
	"mfm/internal/render"
	"mfm/internal/ui"
)

// HUDWidth is the width of the parameter panel in screen pixels.
const HUDWidth = 260

// Game adapts a grid to the ebiten.Game interface. Events run in the
// background; each tick draws whatever the lattice holds at that moment.
type Game struct {
	cfg     *Config
	grid    *engine.Grid
	runner  *Runner
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	snap    engine.Snapshot
	logger  *slog.Logger

	scale  int
	paused bool
	seed   int64
}

// New constructs a Game for the provided grid.
func New(cfg *Config, grid *engine.Grid, sched *engine.Scheduler, reg *engine.Registry) *Game {
	size := grid.Size()
	logger := cfg.Logger()
	g := &Game{
		cfg:     cfg,
		grid:    grid,
		runner:  NewRunner(grid, sched, cfg.RunOptions(), logger),
		painter: render.NewGridPainter(size.W, size.H, render.PaletteFrom(reg)),
		overlay: ui.NewOverlay(cfg.Scale, cfg.Borders, cfg.Highlight),
		hud:     ui.NewHUD(reg, HUDWidth),
		logger:  logger.With(slog.String("component", "app")),
		scale:   cfg.Scale,
		seed:    cfg.Grid.Seed,
	}
	grid.SnapshotInto(&g.snap)
	g.runner.Start()
	return g
}

// Reset clears the grid and scatters the configured population with seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	if err := g.runner.Stop(); err != nil {
		g.logger.Error("runner stopped with error", slog.String("error", err.Error()))
	}
	if err := Reseed(g.cfg, g.grid, seed); err != nil {
		g.logger.Error("reset failed", slog.String("error", err.Error()))
	}
	if !g.paused {
		g.runner.Start()
	}
}

func (g *Game) setPaused(p bool) {
	g.paused = p
	if p {
		g.runner.Stop()
		return
	}
	g.runner.Start()
}

// Update handles input and refreshes the snapshot drawn by Draw.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.runner.Stop()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.setPaused(!g.paused)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.setPaused(false)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) && g.paused {
		if err := g.runner.Step(context.Background()); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}

	g.overlay.Update()
	size := g.grid.Size()
	g.hud.Update(size.W * g.scale)

	if err := g.runner.Err(); err != nil {
		return err
	}
	g.grid.SnapshotInto(&g.snap)
	return nil
}

// Draw renders the current lattice state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Highlight = g.overlay.ShowActive()
	g.painter.Blit(screen, &g.snap, g.scale)
	g.overlay.Draw(screen, &g.snap)
	size := g.grid.Size()
	var stats engine.TileStats
	for _, s := range g.snap.Stats {
		stats = stats.Add(s)
	}
	g.hud.Draw(screen, size.W*g.scale, size.H*g.scale, stats)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.grid.Size()
	return s.W*g.scale + HUDWidth, s.H * g.scale
}
