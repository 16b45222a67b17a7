package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/horde/internal/runner"
	"github.com/vovakirdan/horde/internal/scenario"
)

var (
	flagBenchSeeds int
	flagBenchTicks uint64
)

var benchCmd = &cobra.Command{
	Use:   "bench [scenario]",
	Short: "Measure tick cost over several seeds",
	Long: `Run a scenario headless once per seed with the autopilot and report
tick timings. Nothing is journaled or recorded.

Examples:
  horde bench
  horde bench boss --seeds 10 --ticks 7200`,
	Args: cobra.MaximumNArgs(1),
	Run:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&flagBenchSeeds, "seeds", 5, "Number of seeds to run")
	benchCmd.Flags().Uint64Var(&flagBenchTicks, "ticks", 3600, "Ticks per run")
}

func runBench(_ *cobra.Command, args []string) {
	logger, err := newLogger(os.Stderr)
	if err != nil {
		fail(err)
	}
	name := "swarm"
	if len(args) > 0 {
		name = args[0]
	}
	if flagBenchSeeds < 1 {
		fail(fmt.Errorf("--seeds must be at least 1"))
	}

	rc := runtimeConfig()
	base := rc.Seed
	quiet := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})

	fmt.Printf("Benchmark - %s, %d ticks per seed\n", name, flagBenchTicks)
	fmt.Println()
	fmt.Printf("  %-20s  %-7s  %-8s  %-8s  %-8s  %-8s  %s\n", "Seed", "Ticks", "Avg ms", "Max ms", "Overruns", "Kills", "End")
	fmt.Printf("  %-20s  %-7s  %-8s  %-8s  %-8s  %-8s  %s\n", "----", "-----", "------", "------", "--------", "-----", "---")

	var sumAvg, worst float64
	var overruns uint64
	for i := range flagBenchSeeds {
		rc.Seed = base + int64(i)
		w, dir, err := buildWorld(name, rc, nil, quiet)
		if err != nil {
			fail(err)
		}
		r := runner.New(w, dir, runner.Options{
			Seed:     rc.Seed,
			TickRate: rc.TickRate,
			MaxTicks: flagBenchTicks,
			Pilot:    scenario.NewAutopilot(),
			Logger:   quiet,
		})
		stats, err := r.Run(context.Background())
		if err != nil {
			logger.Warn("run finished with errors", "seed", rc.Seed, "err", err)
		}
		fmt.Printf("  %-20d  %-7d  %-8.3f  %-8.3f  %-8d  %-8d  %s\n",
			rc.Seed, stats.Frames, stats.AvgMs, stats.MaxMs, stats.Overruns, stats.Kills, stats.EndReason)

		sumAvg += stats.AvgMs
		worst = max(worst, stats.MaxMs)
		overruns += stats.Overruns
	}

	fmt.Println()
	fmt.Printf("Mean avg: %.3fms  Worst: %.3fms  Overruns: %d\n", sumAvg/float64(flagBenchSeeds), worst, overruns)
}
