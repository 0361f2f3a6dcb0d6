package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/skyrun/internal/core/actors"
	"github.com/zeusync/skyrun/internal/core/catalog"
	"github.com/zeusync/skyrun/internal/core/config"
	"github.com/zeusync/skyrun/internal/core/session"
	"github.com/zeusync/skyrun/internal/injector"
	"github.com/zeusync/skyrun/pkg/concurrent"
	"github.com/zeusync/skyrun/pkg/sequence"
)

type options struct {
	configPath  string
	catalogPath string
	envFile     string
	seeds       string
	frames      int
	step        time.Duration
	speed       float64
	parallel    int
	stream      bool
}

type summary struct {
	Seed       string            `yaml:"seed"`
	Session    string            `yaml:"session"`
	Frames     int64             `yaml:"frames"`
	SimTime    string            `yaml:"sim_time"`
	Distance   float64           `yaml:"distance"`
	Tier       int               `yaml:"tier"`
	Chunks     int               `yaml:"active_chunks"`
	Enemies    int               `yaml:"active_enemies"`
	Spawned    uint64            `yaml:"spawned"`
	Despawned  uint64            `yaml:"despawned"`
	MaxActive  int               `yaml:"max_active"`
	PoolMisses uint64            `yaml:"pool_misses"`
	Pickups    int               `yaml:"pickups"`
	Problems   int               `yaml:"problems"`
	Events     map[string]uint64 `yaml:"events"`
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML config file (defaults when empty)")
	flag.StringVar(&opts.catalogPath, "catalog", "", "YAML catalog file (built-in catalog when empty)")
	flag.StringVar(&opts.envFile, "env", ".env", "optional env file with SKYRUN_* overrides")
	flag.StringVar(&opts.seeds, "seeds", "", "comma separated seeds, one session each (config seed when empty)")
	flag.IntVar(&opts.frames, "frames", 3600, "frames to simulate per session")
	flag.DurationVar(&opts.step, "step", 16*time.Millisecond, "simulated time per frame")
	flag.Float64Var(&opts.speed, "speed", 120, "observer speed in units per second")
	flag.IntVar(&opts.parallel, "parallel", 4, "sessions simulated at once")
	flag.BoolVar(&opts.stream, "stream", false, "print each summary as its session finishes instead of in seed order")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "skyrun:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(opts.envFile); err != nil {
		return err
	}

	seeds := []string{cfg.Seed}
	if opts.seeds != "" {
		seeds = strings.Split(opts.seeds, ",")
	}

	enc := yaml.NewEncoder(out)
	defer enc.Close()

	if opts.stream {
		var mu sync.Mutex
		return concurrent.ForEach(ctx, sequence.From(seeds), opts.parallel, func(ctx context.Context, seed string) error {
			sum, err := simulate(ctx, *cfg, strings.TrimSpace(seed), opts)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return enc.Encode(sum)
		})
	}

	results, err := concurrent.ParallelMap(ctx, sequence.From(seeds), opts.parallel, func(ctx context.Context, seed string) (summary, error) {
		return simulate(ctx, *cfg, strings.TrimSpace(seed), opts)
	})
	if err != nil {
		return err
	}
	return enc.Encode(results)
}

func simulate(ctx context.Context, cfg config.Config, seed string, opts options) (summary, error) {
	cfg.Seed = seed
	cat := catalog.Default()
	if opts.catalogPath != "" {
		loaded, err := catalog.Load(opts.catalogPath)
		if err != nil {
			return summary{}, err
		}
		cat = loaded
	}

	registry := actors.NewRegistry()
	for _, d := range cat.Descriptors {
		registry.RegisterDrones(d.Prototype)
	}
	content := session.Content{
		Catalog: cat,
		Factory: registry,
		Terrain: actors.ContentOf(cat.Variants),
		Pickups: &actors.Crates{},
	}

	observer := actors.NewObserver(mgl64.Vec3{})
	s, cleanup, err := injector.InitializeSession(&cfg, observer, content)
	if err != nil {
		return summary{}, fmt.Errorf("seed %q: %w", seed, err)
	}
	defer cleanup()

	perFrame := opts.speed * opts.step.Seconds()
	if err := s.Run(ctx, opts.frames, opts.step, func(int) { observer.Fly(perFrame) }); err != nil {
		return summary{}, fmt.Errorf("seed %q: %w", seed, err)
	}

	st := s.Stats()
	return summary{
		Seed:       st.Seed,
		Session:    st.ID,
		Frames:     st.Frames,
		SimTime:    st.SimTime.String(),
		Distance:   st.Distance,
		Tier:       st.Tier,
		Chunks:     st.ActiveChunks,
		Enemies:    st.ActiveEnemies,
		Spawned:    st.Spawning.Spawned,
		Despawned:  st.Spawning.Despawned,
		MaxActive:  st.Spawning.MaxActiveSeen,
		PoolMisses: st.Spawning.PoolMisses,
		Pickups:    st.Pickups,
		Problems:   st.Problems,
		Events:     st.Events,
	}, nil
}
