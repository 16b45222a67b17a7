package config

import (
	_ "embed"
)

//go:embed defaults/sim.yaml
var defaultSimYAML []byte

//go:embed defaults/params.yaml
var defaultParamsYAML []byte

//go:embed defaults/params.schema.json
var paramsSchemaJSON []byte

//go:embed defaults/swarm.yaml
var defaultSwarmYAML []byte

//go:embed defaults/arena.yaml
var defaultArenaYAML []byte

//go:embed defaults/boss.yaml
var defaultBossYAML []byte

// DefaultSimConfig returns the built-in physical constants.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Map: MapConfig{Width: 4096, Height: 4096},
		Player: PlayerConfig{
			Speed:              200,
			Radius:             32,
			MaxHP:              100,
			InvincibleDuration: 0.5,
			ContactQueryPad:    32,
		},
		Grid:       GridConfig{CellSize: 80},
		Separation: SeparationConfig{Radius: 30, Force: 120},
		Bullets:    BulletConfig{Speed: 400, Radius: 6, Lifetime: 3},
		Weapons:    WeaponConfig{SearchRadius: 500},
		Chase:      ChaseConfig{ParallelThreshold: 500},
		Items: ItemConfig{
			CollectRadius:  60,
			MagnetRadius:   9999,
			MagnetPull:     300,
			MagnetDuration: 10,
		},
		Spawn: SpawnConfig{
			RingMin:         800,
			RingMax:         1200,
			BossOffsetX:     600,
			BossBodyPadding: 0,
		},
		FrameBudgetMs: 16,
		ParticleSeed:  12345,
	}
}

// DefaultScenarioConfig returns the built-in swarm scenario.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		Name:    "swarm",
		Player:  ScenarioPlayer{MaxHP: 100},
		Loadout: []uint8{0},
		Waves: WaveConfig{
			Interval:          3,
			BaseSize:          10,
			Kinds:             []uint8{0, 1},
			EliteEvery:        5,
			EliteCount:        2,
			EliteHPMultiplier: 3,
			MaxEnemies:        3000,
		},
		Boss: BossSchedule{
			Enabled:      true,
			Kind:         0,
			AtSeconds:    180,
			RockSpeed:    250,
			RockDamage:   15,
			RockLifetime: 4,
			ShieldTime:   1.5,
		},
		Drops: DropConfig{
			GemValue:     1,
			PotionChance: 0.02,
			PotionHeal:   20,
			MagnetChance: 0.005,
		},
		Leveling: LevelingConfig{
			BaseExp:   10,
			Growth:    1.25,
			KillScore: 10,
			BossScore: 1000,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression:  ProgressionConfig{Type: "time", MaxAt: 600},
			Scaling: ScalingConfig{
				WaveGrowth:        3.0,
				IntervalReduction: 0.5,
				EliteHPBonus:      4.0,
			},
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a config name.
func GetDefaultYAML(name string) []byte {
	switch name {
	case "sim":
		return defaultSimYAML
	case "params":
		return defaultParamsYAML
	case "swarm":
		return defaultSwarmYAML
	case "arena":
		return defaultArenaYAML
	case "boss":
		return defaultBossYAML
	default:
		return nil
	}
}

// ScenarioNames lists the scenarios that ship with embedded defaults.
func ScenarioNames() []string {
	return []string{"arena", "boss", "swarm"}
}
