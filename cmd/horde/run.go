package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/horde/internal/persistence/journal"
	"github.com/vovakirdan/horde/internal/persistence/savefile"
	"github.com/vovakirdan/horde/internal/platform/observer"
	"github.com/vovakirdan/horde/internal/runner"
	"github.com/vovakirdan/horde/internal/scenario"
	"github.com/vovakirdan/horde/internal/sim"
	"github.com/vovakirdan/horde/internal/storage"
)

var (
	flagTicks       uint64
	flagRealtime    bool
	flagJournalDir  string
	flagNoJournal   bool
	flagSaveSlot    string
	flagSaveFile    string
	flagLoadSlot    string
	flagLoadFile    string
	flagObserveAddr string
	flagRemote      bool
)

var runCmd = &cobra.Command{
	Use:   "run [scenario]",
	Short: "Run a scenario headless",
	Long: `Run a scenario without a terminal UI. The autopilot steers the
player, events are journaled and the finished run is recorded in the
database.

Examples:
  horde run                                # swarm until the player dies
  horde run arena --ticks 3600             # one simulated minute
  horde run boss --realtime --observe :8080
  horde run --save-file ./swarm.hsav --ticks 600
  horde run --load-file ./swarm.hsav`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().Uint64Var(&flagTicks, "ticks", 0, "Stop after this many ticks (0 = until the scenario ends)")
	runCmd.Flags().BoolVar(&flagRealtime, "realtime", false, "Pace ticks with the wall clock")
	runCmd.Flags().StringVar(&flagJournalDir, "journal-dir", "~/.horde/journals", "Directory for event journals")
	runCmd.Flags().BoolVar(&flagNoJournal, "no-journal", false, "Do not write an event journal")
	runCmd.Flags().StringVar(&flagSaveSlot, "save", "", "Save the final state to this slot")
	runCmd.Flags().StringVar(&flagSaveFile, "save-file", "", "Save the final state to this .hsav file")
	runCmd.Flags().StringVar(&flagLoadSlot, "load", "", "Resume from this save slot")
	runCmd.Flags().StringVar(&flagLoadFile, "load-file", "", "Resume from this .hsav file")
	runCmd.Flags().StringVar(&flagObserveAddr, "observe", "", "Serve the frame stream on this address (e.g. :8080)")
	runCmd.Flags().BoolVar(&flagRemote, "observe-remote", false, "Allow non-loopback observers")
	runCmd.MarkFlagsMutuallyExclusive("load", "load-file")
}

func runRun(_ *cobra.Command, args []string) {
	logger, err := newLogger(os.Stderr)
	if err != nil {
		fail(err)
	}

	name := "swarm"
	if len(args) > 0 {
		name = args[0]
	}

	// Open storage; a run without it still works
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database, runs will not be recorded", "err", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	var snap *sim.SaveSnapshot
	if l := (loadRequest{slot: flagLoadSlot, file: flagLoadFile}); !l.empty() {
		savedScenario, s, err := loadSnapshot(l, store)
		if err != nil {
			fail(err)
		}
		if len(args) == 0 && savedScenario != "" {
			name = savedScenario
		}
		snap = &s
	}

	rc := runtimeConfig()
	w, dir, err := buildWorld(name, rc, snap, logger)
	if err != nil {
		fail(err)
	}

	runID := uuid.NewString()
	opts := runner.Options{
		RunID:    runID,
		Seed:     rc.Seed,
		TickRate: rc.TickRate,
		MaxTicks: flagTicks,
		Realtime: flagRealtime,
		Pilot:    scenario.NewAutopilot(),
		Logger:   logger,
	}
	if store != nil {
		opts.Recorder = store
	}
	if !flagNoJournal {
		j, err := journal.Create(journal.PathFor(expandHome(flagJournalDir), runID))
		if err != nil {
			logger.Warn("could not create journal", "err", err)
		} else {
			opts.Journal = j
		}
	}

	r := runner.New(w, dir, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagObserveAddr != "" {
		startObserver(ctx, r, name, rc.TickRate, logger)
	}

	start := time.Now()
	stats, err := r.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run finished with errors", "err", err)
	}
	printStats(stats, time.Since(start))

	if err := saveFinal(w, dir, name, store, logger); err != nil {
		fail(err)
	}
}

// saveFinal writes the end state to --save and --save-file.
func saveFinal(w *sim.World, dir scenario.Director, name string, store *storage.Store, logger *log.Logger) error {
	if flagSaveSlot == "" && flagSaveFile == "" {
		return nil
	}
	if dir.Over() {
		logger.Warn("saving a finished run", "scenario", name)
	}
	snap := w.Save()
	if flagSaveSlot != "" {
		if store == nil {
			return fmt.Errorf("cannot save slot %q: database unavailable", flagSaveSlot)
		}
		if _, err := store.PutSave(flagSaveSlot, name, snap); err != nil {
			return err
		}
		fmt.Printf("Saved slot %s\n", flagSaveSlot)
	}
	if flagSaveFile != "" {
		if err := savefile.Write(flagSaveFile, savefile.NewHeader(name, snap), snap); err != nil {
			return fmt.Errorf("cannot write save file: %w", err)
		}
		fmt.Printf("Saved %s\n", flagSaveFile)
	}
	return nil
}

// startObserver serves r's frame stream on --observe until ctx ends.
func startObserver(ctx context.Context, r *runner.Runner, name string, tickRate int, logger *log.Logger) {
	srv := observer.NewServer(r, observer.Info{Scenario: name, TickRate: tickRate}, logger)
	if flagRemote {
		srv.AllowRemote()
	}
	go func() {
		if err := srv.ListenAndServe(ctx, flagObserveAddr); err != nil {
			logger.Error("observer stopped", "err", err)
		}
	}()
}

func printStats(s runner.RunStats, wall time.Duration) {
	fmt.Println()
	fmt.Printf("  Run       %s\n", s.RunID)
	fmt.Printf("  Scenario  %s (seed %d)\n", s.Scenario, s.Seed)
	fmt.Printf("  Ended     %s after %d ticks (%.1fs simulated, %s wall)\n",
		s.EndReason, s.Frames, s.ElapsedSeconds, wall.Round(time.Millisecond))
	fmt.Printf("  Score     %d (%d kills)\n", s.Score, s.Kills)
	fmt.Printf("  Tick cost avg %.3fms, max %.3fms, %d over budget\n", s.AvgMs, s.MaxMs, s.Overruns)
	fmt.Println()
}
