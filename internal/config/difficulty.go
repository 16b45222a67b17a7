package config

import "math"

// minWaveInterval keeps waves from firing every tick at max difficulty.
const minWaveInterval = 0.5

// DifficultyManager scales wave parameters with score or elapsed time.
type DifficultyManager struct {
	cfg          DifficultyConfig
	initialLevel float64
}

// WaveStep is one wave's parameters after difficulty scaling.
type WaveStep struct {
	Size     int
	Interval float64 // seconds until the next wave
	EliteHP  float64 // elite health multiplier
}

// NewDifficultyManager creates a manager for cfg. A disabled config, or
// one with progression type "none", stays at the initial level.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:          cfg,
		initialLevel: clampF(cfg.InitialLevel, 0.0, 1.0),
	}
}

func (d *DifficultyManager) progressing() bool {
	return d.cfg.Enabled && d.cfg.Progression.Type != "none"
}

// Level returns the current difficulty level (0.0 to 1.0) based on score
// or elapsed seconds.
func (d *DifficultyManager) Level(score int, seconds float64) float64 {
	if !d.progressing() {
		return d.initialLevel
	}

	maxAt := float64(max(d.cfg.Progression.MaxAt, 1))
	var progress float64
	switch d.cfg.Progression.Type {
	case "score":
		progress = float64(score) / maxAt
	case "time":
		progress = seconds / maxAt
	default:
		return d.initialLevel
	}

	// Interpolate from initial level to 1.0
	return d.initialLevel + clampF(progress, 0.0, 1.0)*(1.0-d.initialLevel)
}

// Wave scales base at the given score and time.
func (d *DifficultyManager) Wave(base WaveConfig, score int, seconds float64) WaveStep {
	level := d.Level(score, seconds)
	s := d.cfg.Scaling
	return WaveStep{
		Size:     int(math.Round(float64(base.BaseSize) * (1.0 + level*s.WaveGrowth))),
		Interval: math.Max(base.Interval*(1.0-level*s.IntervalReduction), minWaveInterval),
		EliteHP:  base.EliteHPMultiplier + level*s.EliteHPBonus,
	}
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
