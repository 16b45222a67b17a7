package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/horde/internal/persistence/journal"
	"github.com/vovakirdan/horde/internal/platform/tui"
	"github.com/vovakirdan/horde/internal/scenario"
	"github.com/vovakirdan/horde/internal/storage"
)

var (
	flagRunsLimit int
	flagRunsTUI   bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [scenario]",
	Short: "Show recorded runs",
	Long: `Display the best runs of a scenario, or the most recent runs of all
scenarios when none is given.

Examples:
  horde runs
  horde runs swarm --limit 20
  horde runs --tui
  horde runs show <run-id>
  horde runs stats
  horde runs clear swarm`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its journal summary",
	Args:  cobra.ExactArgs(1),
	Run:   runRunsShow,
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-scenario aggregates",
	Args:  cobra.NoArgs,
	Run:   runRunsStats,
}

var runsClearCmd = &cobra.Command{
	Use:   "clear <scenario>",
	Short: "Delete every recorded run of a scenario",
	Args:  cobra.ExactArgs(1),
	Run:   runRunsClear,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagRunsTUI, "tui", false, "Browse runs interactively")
	runsShowCmd.Flags().StringVar(&flagJournalDir, "journal-dir", "~/.horde/journals", "Directory for event journals")

	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	runsCmd.AddCommand(runsClearCmd)
}

func runRuns(_ *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	if flagRunsTUI {
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}
		if err := tui.RunBoard(store, width, height); err != nil {
			fail(err)
		}
		return
	}

	var (
		runs []storage.RunRecord
		err  error
	)
	if len(args) > 0 {
		if !scenario.Exists(args[0]) {
			fail(fmt.Errorf("unknown scenario %q (run 'horde list')", args[0]))
		}
		runs, err = store.TopRuns(args[0], flagRunsLimit)
		fmt.Printf("Best runs - %s\n", args[0])
	} else {
		runs, err = store.RecentRuns(flagRunsLimit)
		fmt.Println("Recent runs")
	}
	if err != nil {
		fail(err)
	}
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'horde run' to record the first one!")
		return
	}

	fmt.Printf("  %-4s  %-8s  %-8s  %-8s  %-6s  %-9s  %-10s  %s\n", "Rank", "Run", "Scenario", "Score", "Kills", "Time", "End", "Date")
	fmt.Printf("  %-4s  %-8s  %-8s  %-8s  %-6s  %-9s  %-10s  %s\n", "----", "---", "--------", "-----", "-----", "----", "---", "----")
	for i, r := range runs {
		secs := int(r.Elapsed)
		fmt.Printf("  %-4d  %-8s  %-8s  %-8d  %-6d  %-9s  %-10s  %s\n",
			i+1, shortRunID(r.RunID), r.Scenario, r.Score, r.Kills,
			fmt.Sprintf("%d:%02d", secs/60, secs%60), r.EndReason, r.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func runRunsShow(_ *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	r, err := store.RunByID(args[0])
	if err != nil {
		fail(err)
	}
	if r == nil {
		fail(fmt.Errorf("no run with id %q", args[0]))
	}

	fmt.Printf("  Run       %s\n", r.RunID)
	fmt.Printf("  Scenario  %s (seed %d)\n", r.Scenario, r.Seed)
	fmt.Printf("  Ended     %s after %d ticks (%.1fs simulated)\n", r.EndReason, r.Frames, r.Elapsed)
	fmt.Printf("  Score     %d (%d kills)\n", r.Score, r.Kills)
	fmt.Printf("  Tick cost avg %.3fms, max %.3fms, %d over budget\n", r.AvgMs, r.MaxMs, r.Overruns)
	fmt.Printf("  Recorded  %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Println()

	path := journal.PathFor(expandHome(flagJournalDir), r.RunID)
	entries, err := journal.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Println("No journal for this run.")
		return
	}
	if err != nil {
		fail(err)
	}

	summary := journal.Summary(entries)
	types := make([]string, 0, len(summary))
	for t := range summary {
		types = append(types, t)
	}
	sort.Strings(types)

	fmt.Printf("Journal %s (%d events)\n", path, len(entries))
	for _, t := range types {
		fmt.Printf("  %-18s %d\n", t, summary[t])
	}
}

func runRunsStats(_ *cobra.Command, _ []string) {
	store := openStore()
	defer store.Close()

	stats, err := store.AllScenarioStats()
	if err != nil {
		fail(err)
	}
	if len(stats) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}

	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("  %-10s  %-5s  %-8s  %-9s  %-9s  %-9s  %s\n", "Scenario", "Runs", "Best", "Avg", "Longest", "Worst ms", "Last run")
	fmt.Printf("  %-10s  %-5s  %-8s  %-9s  %-9s  %-9s  %s\n", "--------", "----", "----", "---", "-------", "--------", "--------")
	for _, id := range ids {
		s := stats[id]
		fmt.Printf("  %-10s  %-5d  %-8d  %-9.1f  %-9d  %-9.3f  %s\n",
			s.Scenario, s.Runs, s.BestScore, s.AvgScore, s.MaxFrames, s.WorstMs, s.LastRun.Format("2006-01-02 15:04"))
	}
}

func runRunsClear(_ *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()
	if err := store.ClearRuns(args[0]); err != nil {
		fail(err)
	}
	fmt.Printf("Cleared runs of %s\n", args[0])
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
