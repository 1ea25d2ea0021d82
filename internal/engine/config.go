package engine

import (
	"fmt"
	"strconv"

	"mfm/internal/core"
)

// Config controls grid partitioning.
type Config struct {
	TilesX int
	TilesY int
	TileW  int
	TileH  int
	Radius int

	Seed int64
}

// DefaultConfig returns a 2x2 grid of 32x32 tiles with event radius 4.
func DefaultConfig() Config {
	return Config{
		TilesX: 2,
		TilesY: 2,
		TileW:  32,
		TileH:  32,
		Radius: 4,
		Seed:   1337,
	}
}

// Validate checks that every tile core is at least one radius wide so a
// diamond never reaches past an adjacent tile.
func (c Config) Validate() error {
	switch {
	case c.TilesX < 1 || c.TilesY < 1:
		return fmt.Errorf("%w: need at least one tile, got %dx%d", ErrInvalidConfig, c.TilesX, c.TilesY)
	case c.Radius < 1:
		return fmt.Errorf("%w: radius %d < 1", ErrInvalidConfig, c.Radius)
	case c.TileW < c.Radius || c.TileH < c.Radius:
		return fmt.Errorf("%w: tile %dx%d smaller than radius %d", ErrInvalidConfig, c.TileW, c.TileH, c.Radius)
	}
	return nil
}

// WorldSize returns the dimensions of the whole lattice.
func (c Config) WorldSize() core.Size {
	return core.Size{W: c.TilesX * c.TileW, H: c.TilesY * c.TileH}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Unparseable or out-of-range values keep the default.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	positive := func(key string, dst *int) {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				*dst = parsed
			}
		}
	}
	positive("tiles_x", &c.TilesX)
	positive("tiles_y", &c.TilesY)
	positive("tile_w", &c.TileW)
	positive("tile_h", &c.TileH)
	positive("radius", &c.Radius)
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	return c
}

// RunOptions controls Grid.Run.
type RunOptions struct {
	// EventsPerTile bounds the run; zero or less runs until ctx is done.
	EventsPerTile int
	// Batch is the number of events a worker runs on a tile before
	// yielding it back to the pool.
	Batch int
	// Workers caps concurrent tiles; zero or less means one per tile.
	Workers int
}

// DefaultBatch is used when RunOptions.Batch is unset.
const DefaultBatch = 64

func (o RunOptions) normalized(tiles int) RunOptions {
	if o.Batch <= 0 {
		o.Batch = DefaultBatch
	}
	if o.EventsPerTile > 0 && o.Batch > o.EventsPerTile {
		o.Batch = o.EventsPerTile
	}
	if o.Workers <= 0 || o.Workers > tiles {
		o.Workers = tiles
	}
	return o
}
