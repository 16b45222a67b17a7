package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/horde/internal/config"
	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/persistence/savefile"
	"github.com/vovakirdan/horde/internal/scenario"
	"github.com/vovakirdan/horde/internal/sim"
	"github.com/vovakirdan/horde/internal/storage"
)

// newLogger builds the process logger at --log-level.
func newLogger(out io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "horde",
	})
	logger.SetLevel(level)
	return logger, nil
}

// runtimeConfig collects the global run flags. A zero --seed becomes a
// time based seed.
func runtimeConfig() core.RuntimeConfig {
	rc := core.DefaultConfig()
	if flagTPS > 0 {
		rc.TickRate = flagTPS
	}
	rc.Seed = flagSeed
	if rc.Seed == 0 {
		rc.Seed = time.Now().UnixNano()
	}
	rc.MapW, rc.MapH = flagMapW, flagMapH
	return rc
}

// expandHome replaces a leading ~ with the home directory.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// loadRequest names a snapshot to resume from. At most one field is set.
type loadRequest struct {
	slot string // save slot in the database
	file string // .hsav file
}

func (l loadRequest) empty() bool { return l.slot == "" && l.file == "" }

// loadSnapshot fetches the snapshot named by l. store may be nil when
// only a file is requested.
func loadSnapshot(l loadRequest, store *storage.Store) (string, sim.SaveSnapshot, error) {
	if l.file != "" {
		h, snap, err := savefile.Read(l.file)
		if err != nil {
			return "", snap, fmt.Errorf("cannot read save file: %w", err)
		}
		return h.Scenario, snap, nil
	}
	if store == nil {
		return "", sim.SaveSnapshot{}, fmt.Errorf("cannot load slot %q: database unavailable", l.slot)
	}
	slot, snap, err := store.GetSave(l.slot)
	if err != nil {
		return "", snap, err
	}
	return slot.Scenario, snap, nil
}

// buildWorld creates a world for scenario name with its director already
// set up, or resumed from snap when snap is non-nil.
func buildWorld(name string, rc core.RuntimeConfig, snap *sim.SaveSnapshot, logger *log.Logger) (*sim.World, scenario.Director, error) {
	if !scenario.Exists(name) {
		return nil, nil, fmt.Errorf("unknown scenario %q (run 'horde list')", name)
	}

	simCfg, err := config.LoadSim(flagSimConfig)
	if err != nil {
		return nil, nil, err
	}
	simCfg.ParticleSeed = rc.Seed
	if rc.MapW > 0 && rc.MapH > 0 {
		simCfg.Map.Width, simCfg.Map.Height = rc.MapW, rc.MapH
	}

	pf, err := config.LoadParams(flagParamsConfig)
	if err != nil {
		return nil, nil, err
	}

	scCfg, err := config.LoadScenario(name, flagScenarioConfig)
	if err != nil {
		return nil, nil, err
	}
	if flagDifficulty != "" {
		config.ApplyPreset(&scCfg, config.DifficultyPreset(strings.ToLower(flagDifficulty)))
	}

	dir, err := scenario.Create(name, scCfg, rc.Seed)
	if err != nil {
		return nil, nil, err
	}

	w := sim.New(simCfg, sim.WithLogger(logger))
	w.SetEntityParams(pf.Tables)

	if snap != nil {
		if err := w.Load(*snap); err != nil {
			return nil, nil, fmt.Errorf("cannot load snapshot: %w", err)
		}
		dir.Resume(w)
		return w, dir, nil
	}
	if err := dir.Setup(w); err != nil {
		return nil, nil, err
	}
	return w, dir, nil
}

// slotName is the default name for a save made at t.
func slotName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, t.Format("20060102-150405"))
}
