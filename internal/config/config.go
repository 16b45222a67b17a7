// Package config provides YAML-based configuration loading for the
// simulation tuning constants, the entity parameter tables and the demo
// scenarios, plus difficulty progression for the scenario director.
package config

import (
	"github.com/vovakirdan/horde/internal/params"
	"github.com/vovakirdan/horde/internal/spatial"
)

// SimConfig holds the physical constants of one world.
type SimConfig struct {
	Map        MapConfig        `yaml:"map"`
	Player     PlayerConfig     `yaml:"player"`
	Grid       GridConfig       `yaml:"grid"`
	Separation SeparationConfig `yaml:"separation"`
	Bullets    BulletConfig     `yaml:"bullets"`
	Weapons    WeaponConfig     `yaml:"weapons"`
	Chase      ChaseConfig      `yaml:"chase"`
	Items      ItemConfig       `yaml:"items"`
	Spawn      SpawnConfig      `yaml:"spawn"`

	FrameBudgetMs float64 `yaml:"frame_budget_ms"`
	ParticleSeed  int64   `yaml:"particle_seed"`
}

// MapConfig is the world size in pixels.
type MapConfig struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// PlayerConfig defines player movement and damage timing.
type PlayerConfig struct {
	Speed              float32 `yaml:"speed"`
	Radius             float32 `yaml:"radius"`
	MaxHP              float32 `yaml:"max_hp"`
	InvincibleDuration float32 `yaml:"invincible_duration"` // seconds after a contact hit
	// ContactQueryPad is added to Radius for the contact broad phase; it
	// must cover the largest enemy radius.
	ContactQueryPad float32 `yaml:"contact_query_pad"`
}

// GridConfig sizes the collision broad phase.
type GridConfig struct {
	CellSize float32 `yaml:"cell_size"`
}

// SeparationConfig tunes the enemy separation solver.
type SeparationConfig struct {
	Radius float32 `yaml:"radius"`
	Force  float32 `yaml:"force"`
}

// BulletConfig defines projectile motion.
type BulletConfig struct {
	Speed    float32 `yaml:"speed"`
	Radius   float32 `yaml:"radius"`
	Lifetime float32 `yaml:"lifetime"`
}

// WeaponConfig tunes weapon targeting.
type WeaponConfig struct {
	SearchRadius float32 `yaml:"search_radius"`
}

// ChaseConfig tunes the chase AI execution paths.
type ChaseConfig struct {
	ParallelThreshold int `yaml:"parallel_threshold"`
}

// ItemConfig tunes pickups and the magnet effect.
type ItemConfig struct {
	CollectRadius  float32 `yaml:"collect_radius"`
	MagnetRadius   float32 `yaml:"magnet_radius"`
	MagnetPull     float32 `yaml:"magnet_pull"` // px/s
	MagnetDuration float32 `yaml:"magnet_duration"`
}

// SpawnConfig places spawned enemies and the boss.
type SpawnConfig struct {
	RingMin         float32 `yaml:"ring_min"`
	RingMax         float32 `yaml:"ring_max"`
	BossOffsetX     float32 `yaml:"boss_offset_x"`
	BossBodyPadding float32 `yaml:"boss_body_padding"`
}

// ParamsFile is the on-disk form of the entity parameter tables.
type ParamsFile struct {
	Version int `yaml:"version" json:"version"`
	params.Tables `yaml:",inline"`
}

// ScenarioConfig drives the demo rule authority.
type ScenarioConfig struct {
	Name       string             `yaml:"name"`
	Player     ScenarioPlayer     `yaml:"player"`
	Loadout    []uint8            `yaml:"loadout"`
	Waves      WaveConfig         `yaml:"waves"`
	Boss       BossSchedule       `yaml:"boss"`
	Drops      DropConfig         `yaml:"drops"`
	Leveling   LevelingConfig     `yaml:"leveling"`
	Obstacles  []spatial.Obstacle `yaml:"obstacles"`
	Difficulty DifficultyConfig   `yaml:"difficulty"`
}

// ScenarioPlayer sets the starting player state.
type ScenarioPlayer struct {
	MaxHP float32 `yaml:"max_hp"`
}

// WaveConfig schedules regular enemy waves.
type WaveConfig struct {
	Interval          float64 `yaml:"interval"` // seconds between waves
	BaseSize          int     `yaml:"base_size"`
	Kinds             []uint8 `yaml:"kinds"`
	EliteEvery        int     `yaml:"elite_every"` // every Nth wave adds elites, 0 disables
	EliteCount        int     `yaml:"elite_count"`
	EliteHPMultiplier float64 `yaml:"elite_hp_multiplier"`
	MaxEnemies        int     `yaml:"max_enemies"`
}

// BossSchedule controls when and how the boss appears.
type BossSchedule struct {
	Enabled      bool    `yaml:"enabled"`
	Kind         uint8   `yaml:"kind"`
	AtSeconds    float64 `yaml:"at_seconds"`
	RockSpeed    float32 `yaml:"rock_speed"`
	RockDamage   int32   `yaml:"rock_damage"`
	RockLifetime float32 `yaml:"rock_lifetime"`
	ShieldTime   float32 `yaml:"shield_time"` // invincible window after each special
}

// DropConfig decides what killed enemies leave behind.
type DropConfig struct {
	GemValue     uint32  `yaml:"gem_value"`
	PotionChance float64 `yaml:"potion_chance"`
	PotionHeal   uint32  `yaml:"potion_heal"`
	MagnetChance float64 `yaml:"magnet_chance"`
}

// LevelingConfig is the experience curve.
type LevelingConfig struct {
	BaseExp   uint32  `yaml:"base_exp"`
	Growth    float64 `yaml:"growth"`
	KillScore uint32  `yaml:"kill_score"`
	BossScore uint32  `yaml:"boss_score"`
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score or seconds at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	WaveGrowth        float64 `yaml:"wave_growth"`        // Extra wave size fraction at max difficulty
	IntervalReduction float64 `yaml:"interval_reduction"` // Interval fraction removed at max difficulty
	EliteHPBonus      float64 `yaml:"elite_hp_bonus"`     // Added to the elite multiplier at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
