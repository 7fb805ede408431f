package main

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/membrane-dev/membrane/pkg/observable"
	rt "github.com/membrane-dev/membrane/pkg/runtime"
)

// profile describes one benchmark load shape.
type profile struct {
	Name      string
	Targets   int
	Consumers int
	Props     int
	Mutations int
}

var profiles = map[string]profile{
	"fast": {
		Name:      "fast",
		Targets:   100,
		Consumers: 50,
		Props:     8,
		Mutations: 10_000,
	},
	"standard": {
		Name:      "standard",
		Targets:   1_000,
		Consumers: 500,
		Props:     16,
		Mutations: 100_000,
	},
	"stress": {
		Name:      "stress",
		Targets:   10_000,
		Consumers: 2_000,
		Props:     32,
		Mutations: 1_000_000,
	},
}

func runCmd() *cobra.Command {
	var (
		profileName string
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a benchmark profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := profiles[profileName]
			if !ok {
				names := make([]string, 0, len(profiles))
				for name := range profiles {
					names = append(names, name)
				}
				sort.Strings(names)
				return fmt.Errorf("unknown profile %q (have %v)", profileName, names)
			}
			return runProfile(cmd.Context(), p, seed)
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "standard", "load profile: fast, standard, stress")
	cmd.Flags().Int64Var(&seed, "seed", 1, "mutation RNG seed")
	return cmd
}

func runProfile(ctx context.Context, p profile, seed int64) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rng := rand.New(rand.NewSource(seed))

	renderer := rt.NewRenderer()
	m := observable.New(renderer)
	scope := rt.NewRootScope(m.Registry())
	defer scope.Dispose()

	// Build targets: records with p.Props counters each.
	targets := make([]*observable.Object, p.Targets)
	for i := range targets {
		o := observable.NewObject()
		for j := 0; j < p.Props; j++ {
			if err := o.Set(propName(j), 0); err != nil {
				return err
			}
		}
		targets[i] = o
	}

	// Each consumer reads a handful of (target, prop) pairs.
	for i := 0; i < p.Consumers; i++ {
		reads := consumerReads(rng, p)
		view := scope.NewView(fmt.Sprintf("consumer-%d", i), func(*rt.RenderContext) {
			for _, rd := range reads {
				proxy, err := m.Wrap(targets[rd.target])
				if err != nil {
					continue
				}
				_, _ = proxy.Get(rd.prop)
			}
		})
		if err := renderer.Render(view); err != nil {
			return err
		}
	}

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	start := time.Now()
	passes := 0
	for i := 0; i < p.Mutations; i++ {
		target := targets[rng.Intn(len(targets))]
		proxy, err := m.Wrap(target)
		if err != nil {
			return err
		}
		if err := proxy.Set(propName(rng.Intn(p.Props)), i); err != nil {
			return err
		}

		// Flush periodically, the way a host scheduler ticks.
		if renderer.Scheduler().Pending() >= 64 {
			n, err := renderer.Flush(ctx)
			if err != nil {
				return err
			}
			passes += n
		}
	}
	n, err := renderer.Flush(ctx)
	if err != nil {
		return err
	}
	passes += n
	elapsed := time.Since(start)

	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)
	stats := m.Registry().Stats()

	fmt.Printf("profile:        %s\n", p.Name)
	fmt.Printf("targets:        %d (proxies cached: %d)\n", p.Targets, m.CacheSize())
	fmt.Printf("consumers:      %d (dependency sets: %d, memberships: %d)\n",
		p.Consumers, stats.Sets, stats.Memberships)
	fmt.Printf("mutations:      %d in %s (%.0f/s)\n",
		p.Mutations, elapsed.Round(time.Millisecond), float64(p.Mutations)/elapsed.Seconds())
	fmt.Printf("render passes:  %d\n", passes)
	fmt.Printf("alloc delta:    %.1f MiB\n",
		float64(memAfter.TotalAlloc-memBefore.TotalAlloc)/(1024*1024))
	return nil
}

type readPair struct {
	target int
	prop   string
}

func consumerReads(rng *rand.Rand, p profile) []readPair {
	reads := make([]readPair, 4)
	for i := range reads {
		reads[i] = readPair{
			target: rng.Intn(p.Targets),
			prop:   propName(rng.Intn(p.Props)),
		}
	}
	return reads
}

func propName(i int) string {
	return fmt.Sprintf("p%d", i)
}
