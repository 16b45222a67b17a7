// horde runs headless wave-survival simulations and lets you watch them.
//
// Usage:
//
//	horde list                  - List available scenarios
//	horde run [scenario]        - Run a scenario headless with the autopilot
//	horde view [scenario]       - Play or watch a scenario in the terminal
//	horde serve                 - Start SSH server for remote play
//	horde observe               - Follow a run streamed by --observe
//	horde bench [scenario]      - Measure tick cost over several seeds
//	horde saves                 - Manage save slots
//	horde runs [scenario]       - Show recorded runs
//
// Global flags:
//
//	--tps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible runs
//	--map-w, --map-h    - Override the world size in pixels
//	--db <path>         - Set database path (default: ~/.horde/horde.db)
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagTPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagMapW     float32
	flagMapH     float32

	// Config overrides
	flagSimConfig      string
	flagParamsConfig   string
	flagScenarioConfig string
	flagDifficulty     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "horde",
	Short: "Horde - a wave-survival simulation you can run, watch and benchmark",
	Long: `Horde runs a deterministic wave-survival world: thousands of enemies
chase the player, weapons fire on their own and a scenario decides
score, waves and bosses.

Available commands:
  list     - Show all available scenarios
  run      - Run a scenario headless
  view     - Play or watch a scenario in the terminal
  serve    - Start SSH server for remote play
  observe  - Follow a run over WebSocket
  bench    - Benchmark tick cost
  saves    - Manage save slots
  runs     - Show recorded runs

Examples:
  horde list
  horde run swarm --ticks 3600
  horde view boss --difficulty hard
  horde serve --ssh :2222
  horde runs swarm`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagTPS, "tps", 60, "Tick rate (ticks per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.horde/horde.db", "Path to the runs and saves database")
	rootCmd.PersistentFlags().Float32Var(&flagMapW, "map-w", 0, "World width in pixels (0 = sim config)")
	rootCmd.PersistentFlags().Float32Var(&flagMapH, "map-h", 0, "World height in pixels (0 = sim config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.PersistentFlags().StringVar(&flagSimConfig, "sim-config", "", "Path to custom sim constants YAML")
	rootCmd.PersistentFlags().StringVar(&flagParamsConfig, "params", "", "Path to custom entity params YAML")
	rootCmd.PersistentFlags().StringVar(&flagScenarioConfig, "config", "", "Path to custom scenario YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(observeCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(savesCmd)
	rootCmd.AddCommand(runsCmd)
}

// fail prints err the way every command reports errors and exits.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
