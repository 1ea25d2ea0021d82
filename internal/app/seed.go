package app

import (
	"errors"
	"fmt"

	"mfm/internal/atom"
	"mfm/internal/core"
	"mfm/internal/elements"
	"mfm/internal/engine"
)

// Placement asks for Count atoms of the named element.
type Placement struct {
	Name  string
	Count int
}

// Populate scatters the placements over empty sites of g, drawing positions
// from seed. Occupied draws are retried a bounded number of times, so a
// nearly full grid may receive fewer atoms than asked.
func Populate(g *engine.Grid, placements []Placement, seed int64) (int, error) {
	rng := core.NewRNG(seed)
	size := g.Size()
	placed := 0
	for _, p := range placements {
		typ, err := elements.TypeByName(p.Name)
		if err != nil {
			return placed, err
		}
		a := atom.MustMake(typ, 0)
		for i := 0; i < p.Count; i++ {
			for try := 0; try < 16; try++ {
				abs := core.Offset{X: rng.Create(size.W), Y: rng.Create(size.H)}
				cur, err := g.AtomAt(abs)
				if err != nil {
					return placed, err
				}
				if !cur.IsEmpty() {
					continue
				}
				if err := g.SetAtom(abs, a); err != nil {
					return placed, err
				}
				placed++
				break
			}
		}
	}
	return placed, nil
}

// Setup builds the registry, applies parameter overrides, and returns a
// populated grid with its scheduler.
func Setup(c *Config) (*engine.Grid, *engine.Scheduler, *engine.Registry, error) {
	grid, err := engine.NewGrid(c.Grid)
	if err != nil {
		return nil, nil, nil, err
	}
	reg := engine.NewRegistry()
	if err := elements.RegisterAll(reg, c.Grid.Radius); err != nil {
		return nil, nil, nil, err
	}
	if err := ApplyParams(reg, c.Params.Map()); err != nil {
		return nil, nil, nil, err
	}
	if err := Reseed(c, grid, c.Grid.Seed); err != nil {
		return nil, nil, nil, err
	}
	sched := engine.NewScheduler(reg, engine.WithLogger(c.Logger().With("component", "scheduler")))
	return grid, sched, reg, nil
}

// Reseed clears grid and scatters the configured population again.
func Reseed(c *Config, grid *engine.Grid, seed int64) error {
	pop, err := c.Population()
	if err != nil {
		return err
	}
	if err := grid.Clear(); err != nil {
		return err
	}
	_, err = Populate(grid, pop, seed)
	return err
}

// ApplyParams applies overrides to every registered behavior. A key no
// behavior knows is an error.
func ApplyParams(reg *engine.Registry, overrides map[string]string) error {
	if len(overrides) == 0 {
		return nil
	}
	known := make(map[string]bool, len(overrides))
	var errs []error
	for _, typ := range reg.Types() {
		b, err := reg.Lookup(typ)
		if err != nil {
			continue
		}
		params := b.Info().Params
		if err := params.Apply(overrides); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Info().Name, err))
		}
		for k := range overrides {
			if _, ok := params.Get(k); ok {
				known[k] = true
			}
		}
	}
	for k := range overrides {
		if !known[k] {
			errs = append(errs, fmt.Errorf("unknown parameter %q", k))
		}
	}
	return errors.Join(errs...)
}
