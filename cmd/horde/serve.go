package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/horde/internal/platform/tui"
	"github.com/vovakirdan/horde/internal/runner"
	"github.com/vovakirdan/horde/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagDefaultScn  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the horde SSH server",
	Long: `Start an SSH server that gives every connection its own run.

The scenario is taken from the ssh command line and defaults to
--scenario. Runs are recorded in the server's database and ctrl+s
saves go to the server's save slots.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.horde/host_key

Examples:
  horde serve                           # Listen on :23234 with auto-generated key
  horde serve --ssh :2222               # Listen on port 2222
  horde serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234
  ssh localhost -p 23234 boss`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagDefaultScn, "scenario", "swarm", "Scenario for sessions that do not name one")
}

func runServe(_ *cobra.Command, _ []string) {
	logger, err := newLogger(os.Stderr)
	if err != nil {
		fail(err)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database, runs will not be recorded", "err", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
	}

	server, err := tui.NewSSHServer(cfg, sessionLauncher(store, logger), logger)
	if err != nil {
		fail(fmt.Errorf("creating server: %w", err))
	}

	fmt.Printf("Starting horde SSH server on %s\n", cfg.Address)
	fmt.Println("Connect with: ssh localhost -p 23234")
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.ListenAndServe(ctx); err != nil {
		fail(fmt.Errorf("server: %w", err))
	}
}

// sessionLauncher starts one realtime run per SSH session. The run stops
// when the session's context ends.
func sessionLauncher(store *storage.Store, logger *log.Logger) tui.Launcher {
	return func(ctx context.Context, user string, args []string) (*tui.Session, error) {
		name := flagDefaultScn
		if len(args) > 0 {
			name = args[0]
		}
		rc := runtimeConfig()
		sessLog := logger.With("user", user)

		w, dir, err := buildWorld(name, rc, nil, sessLog)
		if err != nil {
			return nil, err
		}

		opts := runner.Options{
			Seed:     rc.Seed,
			TickRate: rc.TickRate,
			Realtime: true,
			Logger:   sessLog,
		}
		var onSave tui.SaveFunc
		if store != nil {
			opts.Recorder = store
			onSave = slotSaver(store, name, user+"-"+name)
		}
		r := runner.New(w, dir, opts)
		go func() {
			if _, err := r.Run(ctx); err != nil {
				sessLog.Warn("run finished with errors", "err", err)
			}
		}()

		return &tui.Session{
			Driver: r,
			Title:  fmt.Sprintf("%s @ %s", name, user),
			OnSave: onSave,
		}, nil
	}
}
