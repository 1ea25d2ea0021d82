package app

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"mfm/internal/engine"
)

var logOutput io.Writer = os.Stderr

// SetLogOutput redirects loggers created by Config.Logger. Full-screen front
// ends use it to keep log lines off the display.
func SetLogOutput(w io.Writer) { logOutput = w }

// KVList collects repeated key=value flags.
type KVList []string

func (l *KVList) String() string { return strings.Join(*l, ",") }

func (l *KVList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// Map splits the entries into a map; malformed entries are skipped.
func (l KVList) Map() map[string]string {
	out := make(map[string]string, len(l))
	for _, kv := range l {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

// Config represents the command-line parameters shared by the front ends.
type Config struct {
	Grid engine.Config

	Workers   int
	Events    int
	TPS       int
	Scale     int
	Elements  string
	Borders   bool
	Highlight bool
	LogLevel  string

	// Params holds behavior parameter overrides (-set key=value).
	Params KVList
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Grid:      engine.DefaultConfig(),
		Workers:   runtime.NumCPU(),
		Events:    256,
		TPS:       30,
		Scale:     4,
		Elements:  "dreg=4,res=40",
		Highlight: true,
		LogLevel:  "info",
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Grid.TilesX, "tiles-x", c.Grid.TilesX, "tile columns")
	fs.IntVar(&c.Grid.TilesY, "tiles-y", c.Grid.TilesY, "tile rows")
	fs.IntVar(&c.Grid.TileW, "tile-w", c.Grid.TileW, "tile core width")
	fs.IntVar(&c.Grid.TileH, "tile-h", c.Grid.TileH, "tile core height")
	fs.IntVar(&c.Grid.Radius, "radius", c.Grid.Radius, "event window radius")
	fs.Int64Var(&c.Grid.Seed, "seed", c.Grid.Seed, "seed for tile random streams and initial placement")
	fs.IntVar(&c.Workers, "workers", c.Workers, "concurrent tile workers")
	fs.IntVar(&c.Events, "events", c.Events, "events per tile per background round")
	fs.IntVar(&c.TPS, "tps", c.TPS, "screen refreshes per second")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.StringVar(&c.Elements, "elements", c.Elements, "initial population as name=count pairs")
	fs.BoolVar(&c.Borders, "borders", c.Borders, "draw tile borders")
	fs.BoolVar(&c.Highlight, "highlight", c.Highlight, "highlight tiles with running events")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.Var(&c.Params, "set", "behavior parameter override in key=value form (repeatable)")
}

// Population parses Elements into name/count pairs in flag order.
func (c *Config) Population() ([]Placement, error) {
	var out []Placement
	for _, part := range strings.Split(c.Elements, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, count, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("element %q: want name=count", part)
		}
		n, err := strconv.Atoi(count)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("element %q: bad count %q", name, count)
		}
		out = append(out, Placement{Name: strings.TrimSpace(name), Count: n})
	}
	return out, nil
}

// RunOptions returns the per-tick grid run options.
func (c *Config) RunOptions() engine.RunOptions {
	return engine.RunOptions{EventsPerTile: c.Events, Workers: c.Workers}
}

// Logger returns a text logger at the configured level.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: level}))
}
