package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"mfm/internal/atom"
	"mfm/internal/core"
)

// tileStream offsets tile RNG streams so tile 0 does not share a stream with
// the raw seed.
const tileStream = 0x6a09e667f3bcc909

// Grid is a rectangular array of tiles covering the lattice. The lattice is
// not toroidal: halo sites beyond the outer edge are never live.
type Grid struct {
	cfg   Config
	world image.Rectangle
	tiles []*Tile

	running atomic.Bool
	logger  *slog.Logger
}

// NewGrid allocates an all-Empty grid and wires every tile to its
// neighbors.
func NewGrid(cfg Config) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ws := cfg.WorldSize()
	g := &Grid{
		cfg:    cfg,
		world:  image.Rect(0, 0, ws.W, ws.H),
		tiles:  make([]*Tile, cfg.TilesX*cfg.TilesY),
		logger: slog.Default().With(slog.String("component", "grid")),
	}
	size := core.Size{W: cfg.TileW, H: cfg.TileH}
	for ty := 0; ty < cfg.TilesY; ty++ {
		for tx := 0; tx < cfg.TilesX; tx++ {
			i := ty*cfg.TilesX + tx
			origin := core.Offset{X: tx * cfg.TileW, Y: ty * cfg.TileH}
			g.tiles[i] = newTile(core.Offset{X: tx, Y: ty}, origin, size, cfg.Radius, g.world,
				uint64(cfg.Seed), tileStream+uint64(i))
		}
	}
	for _, t := range g.tiles {
		for d := core.Dir(0); d < core.DirCount; d++ {
			if n := g.Tile(t.index.X+d.Offset().X, t.index.Y+d.Offset().Y); n != nil {
				t.neighbors[d] = n
			}
		}
	}
	return g, nil
}

// Config returns the configuration the grid was built with.
func (g *Grid) Config() Config { return g.cfg }

// Size returns the lattice dimensions.
func (g *Grid) Size() core.Size { return core.Size{W: g.world.Dx(), H: g.world.Dy()} }

// Bounds returns the lattice rectangle.
func (g *Grid) Bounds() image.Rectangle { return g.world }

// Tiles returns the tiles in row-major order.
func (g *Grid) Tiles() []*Tile { return g.tiles }

// Tile returns the tile at tile coordinates (tx, ty), or nil.
func (g *Grid) Tile(tx, ty int) *Tile {
	if tx < 0 || ty < 0 || tx >= g.cfg.TilesX || ty >= g.cfg.TilesY {
		return nil
	}
	return g.tiles[ty*g.cfg.TilesX+tx]
}

// TileAt returns the tile whose core holds abs.
func (g *Grid) TileAt(abs core.Offset) (*Tile, error) {
	if !abs.Point().In(g.world) {
		return nil, fmt.Errorf("%w: %v", ErrNotInGrid, abs)
	}
	return g.Tile(abs.X/g.cfg.TileW, abs.Y/g.cfg.TileH), nil
}

// AtomAt reads the authoritative copy of abs.
func (g *Grid) AtomAt(abs core.Offset) (atom.Atom, error) {
	t, err := g.TileAt(abs)
	if err != nil {
		return atom.Atom{}, err
	}
	return t.load(abs), nil
}

// SetAtom writes abs outside of any event and refreshes the neighbor halos.
// It is meant for seeding and refuses while Run is active.
func (g *Grid) SetAtom(abs core.Offset, a atom.Atom) error {
	if g.running.Load() {
		return ErrGridRunning
	}
	t, err := g.TileAt(abs)
	if err != nil {
		return err
	}
	return t.setCore(abs, a)
}

// Clear empties every site, halos included.
func (g *Grid) Clear() error {
	if g.running.Load() {
		return ErrGridRunning
	}
	for _, t := range g.tiles {
		t.cells.clear()
	}
	return nil
}

// Running reports whether Run is active.
func (g *Grid) Running() bool { return g.running.Load() }

// Stats sums the counters of every tile.
func (g *Grid) Stats() TileStats {
	var s TileStats
	for _, t := range g.tiles {
		s = s.Add(t.Stats())
	}
	return s
}

// Run drives every tile with sched until each has run opts.EventsPerTile
// events or ctx is done. Tiles are serviced by a bounded worker pool in
// rounds of opts.Batch events; a tile is never run by two workers at once.
//
// The registry is sealed before the first event. Context cancellation is
// not an error.
func (g *Grid) Run(ctx context.Context, sched *Scheduler, opts RunOptions) (err error) {
	if !g.running.CompareAndSwap(false, true) {
		return ErrGridRunning
	}
	defer g.running.Store(false)

	opts = opts.normalized(len(g.tiles))
	sched.Registry().Seal()

	ctx, span := otel.Tracer("engine").Start(ctx, "engine.Grid.Run",
		trace.WithAttributes(
			attribute.Int("tiles", len(g.tiles)),
			attribute.Int("events_per_tile", opts.EventsPerTile),
			attribute.Int("batch", opts.Batch),
			attribute.Int("workers", opts.Workers),
		),
	)
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "run failed")
		}
	}()

	before := g.Stats()
	done := make([]int, len(g.tiles))
	for round := 0; ; round++ {
		if ctx.Err() != nil {
			break
		}
		eg, egctx := errgroup.WithContext(ctx)
		eg.SetLimit(opts.Workers)
		pending := 0
		for i, t := range g.tiles {
			n := opts.Batch
			if opts.EventsPerTile > 0 {
				n = min(n, opts.EventsPerTile-done[i])
			}
			if n <= 0 {
				continue
			}
			pending++
			done[i] += n
			eg.Go(func() error {
				return g.runBatch(egctx, sched, t, n, round)
			})
		}
		if pending == 0 {
			break
		}
		if err := eg.Wait(); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return err
		}
	}

	delta := g.Stats()
	span.SetAttributes(
		attribute.Int64("events", delta.Events-before.Events),
		attribute.Int64("faults", delta.Faults-before.Faults),
		attribute.Int64("deferred", delta.Deferred-before.Deferred),
	)
	g.logger.Debug("run finished",
		slog.Int64("events", delta.Events-before.Events),
		slog.Int64("faults", delta.Faults-before.Faults),
		slog.Int64("busy", delta.Busy-before.Busy))
	return nil
}

func (g *Grid) runBatch(ctx context.Context, sched *Scheduler, t *Tile, n, round int) error {
	ctx, span := otel.Tracer("engine").Start(ctx, "engine.Tile.Batch",
		trace.WithAttributes(
			attribute.String("tile", t.index.String()),
			attribute.Int("round", round),
			attribute.Int("events", n),
		),
	)
	defer span.End()
	if err := sched.RunTile(ctx, t, n); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch failed")
		return err
	}
	return nil
}
