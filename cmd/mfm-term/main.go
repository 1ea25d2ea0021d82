// Command mfm-term runs a grid and draws it in the terminal, one character
// per site.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"mfm/internal/app"
	"mfm/internal/core"
	"mfm/internal/engine"
	"mfm/internal/render"
)

type viewer struct {
	cfg    *app.Config
	screen tcell.Screen
	grid   *engine.Grid
	runner *app.Runner
	term   *render.Terminal
	bell   *bell
	step   *core.FixedStep
	snap   engine.Snapshot
	logger *slog.Logger

	paused bool
	seed   int64
}

func main() {
	cfg := app.NewConfig()
	cfg.Grid.TileW, cfg.Grid.TileH = 24, 12
	cfg.Events = 64
	cfg.TPS = 15
	cfg.Bind(flag.CommandLine)
	logFile := flag.String("log-file", "", "write logs to this file instead of discarding them")
	sound := flag.Bool("bell", false, "play a tone when behaviors fault")
	flag.Parse()

	app.SetLogOutput(io.Discard)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		app.SetLogOutput(f)
	}

	grid, sched, reg, err := app.Setup(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	b, err := newBell(*sound)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Audio initialization failed: %v\n", err)
	}

	logger := cfg.Logger()
	v := &viewer{
		cfg:    cfg,
		screen: screen,
		grid:   grid,
		runner: app.NewRunner(grid, sched, cfg.RunOptions(), logger),
		term:   render.NewTerminal(screen, render.PaletteFrom(reg)),
		bell:   b,
		step:   core.NewFixedStep(cfg.TPS),
		logger: logger.With(slog.String("component", "term")),
		seed:   cfg.Grid.Seed,
	}
	v.term.ShowTiles = cfg.Borders
	v.term.Highlight = cfg.Highlight

	runErr := v.run()
	b.close()
	screen.Fini()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", runErr)
		os.Exit(1)
	}
}

func (v *viewer) run() error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	v.grid.SnapshotInto(&v.snap)
	v.term.Draw(&v.snap)
	v.runner.Start()
	defer v.runner.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			keep, err := v.handle(ev)
			if err != nil || !keep {
				return err
			}
		case <-time.After(v.step.Wait()):
		}
		if err := v.runner.Err(); err != nil {
			return err
		}
		if !v.step.ShouldStep() {
			continue
		}
		v.grid.SnapshotInto(&v.snap)
		v.bell.observe(v.grid.Stats().Faults)
		v.term.Draw(&v.snap)
	}
}

// handle applies one input event and reports whether the viewer keeps running.
func (v *viewer) handle(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false, nil
		}
		if ev.Key() != tcell.KeyRune {
			return true, nil
		}
		switch ev.Rune() {
		case 'q':
			return false, nil
		case ' ':
			v.paused = !v.paused
			if v.paused {
				v.runner.Stop()
			} else {
				v.runner.Start()
			}
		case 'n':
			if v.paused {
				if err := v.runner.Step(context.Background()); err != nil {
					return false, err
				}
			}
		case 'b':
			v.term.ShowTiles = !v.term.ShowTiles
		case 'h':
			v.term.Highlight = !v.term.Highlight
		case 'r':
			v.reset(v.seed)
		case 's':
			v.reset(time.Now().UnixNano())
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true, nil
}

func (v *viewer) reset(seed int64) {
	v.seed = seed
	if err := v.runner.Stop(); err != nil {
		v.logger.Error("runner stopped with error", slog.String("error", err.Error()))
	}
	if err := app.Reseed(v.cfg, v.grid, seed); err != nil {
		v.logger.Error("reset failed", slog.Int64("seed", seed), slog.String("error", err.Error()))
	}
	if !v.paused {
		v.runner.Start()
	}
}
