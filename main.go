package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-collision-demos/pkg/config"
	"github.com/df07/go-collision-demos/pkg/log"
	"github.com/df07/go-collision-demos/pkg/sim"
)

// runOptions describes one headless run
type runOptions struct {
	Demo      config.DemoConfig
	Ticks     int
	Paced     bool     // Honour the tick interval instead of stepping flat out
	Keys      []string // Key presses queued before the first tick
	Every     int      // Print a summary every N ticks
	OutputDir string   // Write snapshots as JSON lines under this directory when set
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to a YAML config file")
	preset := flag.String("preset", "", "Preset id from the presets directory (instead of -config)")
	demoName := flag.String("demo", "", "Demo: "+strings.Join(sim.Names(), ", "))
	ticks := flag.Int("ticks", 100, "Number of ticks to run")
	count := flag.Int("count", 0, "Number of spheres or triangles (0 uses the demo default)")
	seed := flag.Int64("seed", 0, "Random seed (0 uses the config seed)")
	interval := flag.Int("interval", 0, "Tick interval in milliseconds when paced (0 uses the demo default)")
	paced := flag.Bool("paced", false, "Run in real time at the tick interval")
	keys := flag.String("keys", "", "Comma separated key presses applied before the first tick, e.g. s,+,+")
	every := flag.Int("every", 10, "Print a summary every N ticks")
	save := flag.Bool("save", false, "Save snapshots to output/<demo>/run_<timestamp>.jsonl")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	sweep := flag.Int("sweep", 0, "Run this many consecutive seeds in parallel and print their digests")
	list := flag.Bool("list", false, "List available demos and presets")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Collision Demos")
		fmt.Println("Usage: collision-demos [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		printDemos(os.Stdout)
		fmt.Println()
		fmt.Println("With -save, snapshots are written to output/<demo>/run_<timestamp>.jsonl")
		return
	}
	if *list {
		printDemos(os.Stdout)
		printPresets(os.Stdout)
		return
	}

	cfg := config.Default()
	switch {
	case *preset != "":
		loaded, info, err := config.LoadPreset(*preset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Using preset %s (%s)\n", info.Name, info.FilePath)
		cfg = loaded
	case *configPath != "":
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *demoName != "" {
		cfg.Demo.Name = *demoName
	}
	if *count != 0 {
		cfg.Demo.Count = *count
	}
	if *seed != 0 {
		cfg.Demo.Seed = *seed
	}
	if *interval != 0 {
		cfg.Demo.IntervalMs = *interval
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	opts := runOptions{
		Demo:  cfg.Demo,
		Ticks: *ticks,
		Paced: *paced,
		Keys:  parseKeys(*keys),
		Every: *every,
	}
	if *save {
		opts.OutputDir = "output"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *sweep > 0 {
		if err := runSweep(ctx, opts, *sweep, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			_ = logger.Sync()
			os.Exit(1)
		}
		return
	}

	if _, err := run(ctx, opts, logger, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

// ErrPausedRun is returned when the queued keys would pause a headless run for good
var ErrPausedRun = errors.New("run would stay paused")

// run drives one demo for opts.Ticks ticks and returns the final snapshot
func run(ctx context.Context, opts runOptions, logger log.Log, out io.Writer) (sim.Snapshot, error) {
	if opts.Ticks <= 0 {
		return sim.Snapshot{}, fmt.Errorf("ticks must be positive, got %d", opts.Ticks)
	}

	demo, err := sim.New(opts.Demo, nil)
	if err != nil {
		return sim.Snapshot{}, err
	}

	runner := sim.NewRunner(demo, sim.RunnerOptions{
		MaxTicks: opts.Ticks,
		Unpaced:  !opts.Paced,
		Logger:   logger,
	})
	toggles := 0
	for _, key := range opts.Keys {
		cmd, err := sim.ParseKey(demo, key)
		if err != nil {
			return sim.Snapshot{}, err
		}
		if cmd == sim.CmdToggleAnimate {
			toggles++
		}
		if err := runner.Send(cmd); err != nil {
			return sim.Snapshot{}, err
		}
	}
	// Nothing can resume a paused headless run
	if toggles%2 == 1 {
		return sim.Snapshot{}, fmt.Errorf("%w: keys leave the run paused", ErrPausedRun)
	}

	var (
		enc *json.Encoder
		buf *bufio.Writer
	)
	if opts.OutputDir != "" {
		// Create output directory for this demo
		dir := filepath.Join(opts.OutputDir, demo.Name())
		if err := os.MkdirAll(dir, 0755); err != nil {
			return sim.Snapshot{}, fmt.Errorf("creating output directory: %w", err)
		}

		// Create timestamped filename
		timestamp := time.Now().Format("20060102_150405")
		filename := filepath.Join(dir, fmt.Sprintf("run_%s.jsonl", timestamp))
		file, err := os.Create(filename)
		if err != nil {
			return sim.Snapshot{}, fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()

		buf = bufio.NewWriter(file)
		enc = json.NewEncoder(buf)
		fmt.Fprintf(out, "Saving snapshots to %s\n", filename)
	}

	fmt.Fprintf(out, "Running %s for %d ticks (seed %d)\n", demo.Name(), opts.Ticks, opts.Demo.Seed)

	start := time.Now()
	var last sim.Snapshot
	err = runner.Run(ctx, func(snap sim.Snapshot) error {
		last = snap
		if enc != nil {
			if err := enc.Encode(snap); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
		}
		if opts.Every > 0 && snap.Tick%uint64(opts.Every) == 0 {
			fmt.Fprintln(out, summarize(snap))
		}
		return nil
	})
	if buf != nil {
		if ferr := buf.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("flushing snapshots: %w", ferr)
		}
	}
	if err != nil {
		return last, err
	}

	fmt.Fprintf(out, "Completed %d ticks in %v\n", last.Tick, time.Since(start))
	fmt.Fprintf(out, "Final digest: %s\n", last.Digest)
	return last, nil
}

// runSweep runs n consecutive seeds starting at the configured seed and prints one line per seed
func runSweep(ctx context.Context, opts runOptions, n int, out io.Writer) error {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = opts.Demo.Seed + int64(i)
	}

	fmt.Fprintf(out, "Sweeping %s over %d seeds for %d ticks\n", opts.Demo.Name, n, opts.Ticks)
	start := time.Now()
	results, err := sim.Sweep(ctx, opts.Demo, seeds, opts.Ticks, 0)
	if err != nil {
		return err
	}
	for _, res := range results {
		fmt.Fprintf(out, "seed %6d  hits %7d  digest %s\n", res.Seed, res.Hits, res.Digest)
	}
	fmt.Fprintf(out, "Sweep completed in %v\n", time.Since(start))
	return nil
}

// summarize renders a one-line description of a snapshot
func summarize(snap sim.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tick %5d", snap.Tick)

	if len(snap.Spheres) > 0 {
		hit := 0
		for _, s := range snap.Spheres {
			if s.Hit {
				hit++
			}
		}
		fmt.Fprintf(&b, "  spheres %d (hit %d)", len(snap.Spheres), hit)
	}
	if len(snap.Triangles) > 0 {
		hit := 0
		for _, t := range snap.Triangles {
			if t.Hit {
				hit++
			}
		}
		fmt.Fprintf(&b, "  triangles %d (hit %d)", len(snap.Triangles), hit)
	}
	if snap.Plane != nil {
		fmt.Fprintf(&b, "  tilt x=%.0f z=%.0f", snap.Plane.XRot, snap.Plane.ZRot)
	}
	fmt.Fprintf(&b, "  digest %s", snap.Digest)
	return b.String()
}

func parseKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func printPresets(w io.Writer) {
	presets, err := config.ListPresets()
	if err != nil || len(presets) == 0 {
		return
	}
	fmt.Fprintln(w, "Available presets:")
	for _, p := range presets {
		fmt.Fprintf(w, "  %-20s - %s: %s\n", p.ID, p.Name, p.Description)
	}
}

func printDemos(w io.Writer) {
	fmt.Fprintln(w, "Available demos:")
	for _, info := range sim.List() {
		fmt.Fprintf(w, "  %-13s - %s\n", info.Name, info.Description)
	}
}
