package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/horde/internal/platform/observer"
	"github.com/vovakirdan/horde/internal/sim"
)

var (
	flagObserveFrom  string
	flagObserveEvery int
	flagObserveCount int
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Follow a run over WebSocket",
	Long: `Connect to a run started with --observe and print one line per
received frame.

Examples:
  horde observe                        # localhost:8080, every 60th frame
  horde observe --addr host:9000 --every 1 --count 100`,
	Args: cobra.NoArgs,
	Run:  runObserve,
}

func init() {
	observeCmd.Flags().StringVar(&flagObserveFrom, "addr", "localhost:8080", "Observer address (host:port)")
	observeCmd.Flags().IntVar(&flagObserveEvery, "every", 60, "Only print every Nth frame")
	observeCmd.Flags().IntVar(&flagObserveCount, "count", 0, "Stop after this many frames (0 = until the run ends)")
}

func runObserve(_ *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boot, err := fetchBootstrap(ctx, "http://"+flagObserveFrom+"/bootstrap")
	if err != nil {
		fail(err)
	}
	fmt.Printf("Run %s: %s at %d tps, map %.0fx%.0f, frame %d\n",
		boot.RunID, boot.Scenario, boot.TickRate, boot.MapW, boot.MapH, boot.FrameID)

	seen := 0
	err = observer.Watch(ctx, "ws://"+flagObserveFrom+"/ws", flagObserveEvery, func(f sim.Frame) error {
		fmt.Println(frameLine(f))
		seen++
		if flagObserveCount > 0 && seen >= flagObserveCount {
			return observer.ErrStopWatching
		}
		return nil
	})
	if err != nil && !errors.Is(err, observer.ErrStopWatching) && !errors.Is(err, context.Canceled) {
		fail(err)
	}
}

func fetchBootstrap(ctx context.Context, url string) (observer.BootstrapResponse, error) {
	var boot observer.BootstrapResponse
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return boot, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return boot, fmt.Errorf("cannot reach observer: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return boot, fmt.Errorf("observer bootstrap: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&boot); err != nil {
		return boot, fmt.Errorf("observer bootstrap: %w", err)
	}
	if boot.ProtocolVersion != observer.Version {
		return boot, fmt.Errorf("observer speaks protocol %d, expected %d", boot.ProtocolVersion, observer.Version)
	}
	return boot, nil
}

func frameLine(f sim.Frame) string {
	h := f.HUD
	line := fmt.Sprintf("frame %6d  t=%6.1fs  hp %4.0f/%-4.0f  lv %2d  score %6d  kills %5d  enemies %5d  bullets %4d",
		f.FrameID, h.ElapsedSeconds, h.HP, h.MaxHP, h.Level, h.Score, h.Kills, h.EnemyCount, h.BulletCount)
	if b := f.Boss; b != nil {
		line += fmt.Sprintf("  boss %.0f/%.0f", b.HP, b.MaxHP)
	}
	return line
}
