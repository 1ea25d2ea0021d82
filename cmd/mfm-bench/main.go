// Command mfm-bench sweeps tile layouts, window radii and seeds, running each
// scenario headless and reporting event throughput and lock contention.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"mfm/internal/app"
	"mfm/internal/elements"
)

type scenario struct {
	tilesX, tilesY int
	radius         int
	seed           int64
}

func (s scenario) String() string {
	return fmt.Sprintf("%dx%d r=%d seed=%d", s.tilesX, s.tilesY, s.radius, s.seed)
}

type scenarioResult struct {
	scenario scenario
	err      error
	elapsed  time.Duration
	events   int64
	faults   int64
	busy     int64
	deferred int64
	halo     int64
	res      int
	dreg     int
}

func (r scenarioResult) rate() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.events) / r.elapsed.Seconds()
}

func (r scenarioResult) busyRatio() float64 {
	attempts := r.events + r.busy
	if attempts == 0 {
		return 0
	}
	return float64(r.busy) / float64(attempts)
}

func main() {
	base := app.NewConfig()
	base.Bind(flag.CommandLine)
	layouts := flag.String("layouts", "1x1,2x2,4x4", "comma separated tile layouts (columns x rows)")
	radii := flag.String("radii", "2,4", "comma separated event window radii")
	seeds := flag.Int("seeds", 3, "seeds per layout, counting up from -seed")
	jobsN := flag.Int("jobs", max(1, runtime.NumCPU()/2), "scenarios run concurrently")
	flag.Parse()

	shapes, err := parseLayouts(*layouts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	rs, err := parseInts(*radii)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var sets []scenario
	for _, shape := range shapes {
		for _, r := range rs {
			for i := 0; i < *seeds; i++ {
				sets = append(sets, scenario{tilesX: shape[0], tilesY: shape[1], radius: r, seed: base.Grid.Seed + int64(i)})
			}
		}
	}

	fmt.Printf("Sweeping %d scenarios (%d jobs, %d grid workers, %d events per tile)\n",
		len(sets), *jobsN, base.Workers, base.Events)

	jobs := make(chan scenario)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < *jobsN; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sc := range jobs {
				results <- runScenario(base, sc)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, sc := range sets {
			jobs <- sc
		}
		close(jobs)
	}()

	start := time.Now()
	var all []scenarioResult
	failed := 0
	for res := range results {
		if res.err != nil {
			failed++
			fmt.Printf("%-22s failed: %v\n", res.scenario, res.err)
			continue
		}
		all = append(all, res)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].rate() > all[j].rate() })
	fmt.Printf("\nResults (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for i, res := range all {
		fmt.Printf("%2d) %-22s %10.0f ev/s events=%d faults=%d busy=%d (%.1f%%) deferred=%d halo=%d res=%d dreg=%d\n",
			i+1, res.scenario, res.rate(), res.events, res.faults, res.busy, 100*res.busyRatio(),
			res.deferred, res.halo, res.res, res.dreg)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runScenario(base *app.Config, sc scenario) scenarioResult {
	cfg := *base
	cfg.Grid.TilesX = sc.tilesX
	cfg.Grid.TilesY = sc.tilesY
	cfg.Grid.Radius = sc.radius
	cfg.Grid.Seed = sc.seed

	out := scenarioResult{scenario: sc}
	grid, sched, _, err := app.Setup(&cfg)
	if err != nil {
		out.err = err
		return out
	}

	start := time.Now()
	if err := grid.Run(context.Background(), sched, cfg.RunOptions()); err != nil {
		out.err = err
		return out
	}
	out.elapsed = time.Since(start)

	stats := grid.Stats()
	out.events = stats.Events
	out.faults = stats.Faults
	out.busy = stats.Busy
	out.deferred = stats.Deferred
	out.halo = stats.HaloPushes

	snap := grid.Snapshot()
	out.res = snap.Count(elements.TypeRes)
	out.dreg = snap.Count(elements.TypeDreg)
	return out
}

// parseLayouts reads "CxR" pairs such as "2x2,4x1".
func parseLayouts(s string) ([][2]int, error) {
	var out [][2]int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cols, rows, ok := strings.Cut(strings.ToLower(part), "x")
		if !ok {
			return nil, fmt.Errorf("layout %q: want COLSxROWS", part)
		}
		c, err1 := strconv.Atoi(cols)
		r, err2 := strconv.Atoi(rows)
		if err1 != nil || err2 != nil || c <= 0 || r <= 0 {
			return nil, fmt.Errorf("layout %q: want positive COLSxROWS", part)
		}
		out = append(out, [2]int{c, r})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no layouts given")
	}
	return out, nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad integer %q", part)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no values given")
	}
	return out, nil
}
