package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/horde/internal/platform/tui"
	"github.com/vovakirdan/horde/internal/runner"
	"github.com/vovakirdan/horde/internal/scenario"
	"github.com/vovakirdan/horde/internal/sim"
	"github.com/vovakirdan/horde/internal/storage"
)

var (
	flagAutopilot bool
	flagLogFile   string
)

var viewCmd = &cobra.Command{
	Use:   "view [scenario]",
	Short: "Play or watch a scenario in the terminal",
	Long: `Start a scenario at real-time speed with a terminal viewer.

Controls:
  WASD/Arrows  - Move (hold)
  Space        - Stop moving
  1/2/3        - Pick a level-up upgrade
  +/-          - Zoom in/out
  P            - Pause
  Ctrl+S       - Save to a new slot
  Q/Ctrl+C     - Quit

Examples:
  horde view
  horde view arena --difficulty hard
  horde view --autopilot --observe :8080
  horde view --load swarm-20250101-120000`,
	Args: cobra.MaximumNArgs(1),
	Run:  runView,
}

func init() {
	viewCmd.Flags().BoolVar(&flagAutopilot, "autopilot", false, "Let the autopilot steer")
	viewCmd.Flags().StringVar(&flagLogFile, "log-file", "~/.horde/horde.log", "Where to write logs while the viewer owns the terminal")
	viewCmd.Flags().StringVar(&flagLoadSlot, "load", "", "Resume from this save slot")
	viewCmd.Flags().StringVar(&flagLoadFile, "load-file", "", "Resume from this .hsav file")
	viewCmd.Flags().StringVar(&flagObserveAddr, "observe", "", "Serve the frame stream on this address (e.g. :8080)")
	viewCmd.Flags().BoolVar(&flagRemote, "observe-remote", false, "Allow non-loopback observers")
	viewCmd.MarkFlagsMutuallyExclusive("load", "load-file")
}

func runView(_ *cobra.Command, args []string) {
	logOut, closeLog := openLogFile(flagLogFile)
	defer closeLog()
	logger, err := newLogger(logOut)
	if err != nil {
		fail(err)
	}

	name := "swarm"
	if len(args) > 0 {
		name = args[0]
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
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

	opts := runner.Options{
		Seed:     rc.Seed,
		TickRate: rc.TickRate,
		Realtime: true,
		Logger:   logger,
	}
	if flagAutopilot {
		opts.Pilot = scenario.NewAutopilot()
	}
	var onSave tui.SaveFunc
	if store != nil {
		opts.Recorder = store
		onSave = slotSaver(store, name, name)
	}
	r := runner.New(w, dir, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if flagObserveAddr != "" {
		startObserver(ctx, r, name, rc.TickRate, logger)
	}

	statsCh := make(chan runner.RunStats, 1)
	go func() {
		stats, err := r.Run(ctx)
		if err != nil {
			logger.Error("run finished with errors", "err", err)
		}
		statsCh <- stats
	}()

	// Get terminal size
	width, height := 80, 24 // Defaults
	if tw, th, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width, height = tw, th
	}

	title := fmt.Sprintf("%s (seed %d)", name, rc.Seed)
	runErr := tui.Run(r, title, onSave, width, height)

	cancel()
	stats := <-statsCh
	if runErr != nil {
		fail(runErr)
	}
	printStats(stats, time.Duration(stats.ElapsedSeconds*float64(time.Second)))
}

// slotSaver returns a SaveFunc that stores the world under a slot named
// prefix plus a timestamp.
func slotSaver(store *storage.Store, scenarioID, prefix string) tui.SaveFunc {
	return func(w *sim.World, _ scenario.Director) (string, error) {
		slot := slotName(prefix, time.Now())
		if _, err := store.PutSave(slot, scenarioID, w.Save()); err != nil {
			return "", err
		}
		return slot, nil
	}
}

// openLogFile opens path for appending. Logging is discarded when the file
// cannot be opened.
func openLogFile(path string) (io.Writer, func()) {
	path = expandHome(path)
	if path == "" {
		return io.Discard, func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return io.Discard, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { f.Close() }
}
