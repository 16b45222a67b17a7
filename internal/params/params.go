// Package params holds the entity parameter tables (enemies, weapons,
// bosses). Rows are plain data keyed by a small integer id; the simulation
// never owns them, it only receives them wholesale from its caller.
package params

import (
	"fmt"
	"strings"
)

// Fallbacks used by systems that need a value for an id with no row.
const (
	DefaultEnemyRadius float32 = 16
	DefaultChainCount          = 1
	// ChainBossRange is how far a chain weapon can jump to reach the boss.
	ChainBossRange float32 = 600
)

// DefaultParticleColor is used when an enemy row is missing.
var DefaultParticleColor = [4]float32{1.0, 0.5, 0.1, 1.0}

// FirePattern selects how a weapon fires.
type FirePattern uint8

const (
	PatternAimed    FirePattern = iota // N bullets fanned toward the nearest enemy
	PatternFixedUp                     // one bullet straight up
	PatternRadial                      // 4 or 8 compass directions
	PatternWhip                        // instant fan hit test in facing direction
	PatternAura                        // instant radius hit test around player
	PatternPiercing                    // one piercing bullet toward nearest enemy
	PatternChain                       // hop between nearest enemies
)

var patternNames = [...]string{
	PatternAimed:    "aimed",
	PatternFixedUp:  "fixed_up",
	PatternRadial:   "radial",
	PatternWhip:     "whip",
	PatternAura:     "aura",
	PatternPiercing: "piercing",
	PatternChain:    "chain",
}

// String returns the config name of the pattern.
func (p FirePattern) String() string {
	if int(p) < len(patternNames) {
		return patternNames[p]
	}
	return fmt.Sprintf("pattern(%d)", uint8(p))
}

// ParseFirePattern converts a config name into a FirePattern.
func ParseFirePattern(s string) (FirePattern, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range patternNames {
		if n == name {
			return FirePattern(i), nil
		}
	}
	return 0, fmt.Errorf("params: unknown fire pattern %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p FirePattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *FirePattern) UnmarshalText(b []byte) error {
	v, err := ParseFirePattern(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// EnemyParams describes one enemy kind.
type EnemyParams struct {
	Name            string     `yaml:"name" json:"name"`
	MaxHP           float32    `yaml:"max_hp" json:"max_hp"`
	Speed           float32    `yaml:"speed" json:"speed"`
	Radius          float32    `yaml:"radius" json:"radius"`
	DamagePerSec    float32    `yaml:"damage_per_sec" json:"damage_per_sec"`
	RenderKind      uint8      `yaml:"render_kind" json:"render_kind"`
	ParticleColor   [4]float32 `yaml:"particle_color" json:"particle_color"`
	PassesObstacles bool       `yaml:"passes_obstacles" json:"passes_obstacles"` // ghosts
}

// WeaponParams describes one weapon kind.
type WeaponParams struct {
	Name     string      `yaml:"name" json:"name"`
	Cooldown float32     `yaml:"cooldown" json:"cooldown"`
	Damage   int32       `yaml:"damage" json:"damage"`
	Pattern  FirePattern `yaml:"pattern" json:"pattern"`
	// BulletTable is indexed by level (1-based); nil means one bullet.
	BulletTable []int   `yaml:"bullet_table,omitempty" json:"bullet_table,omitempty"`
	Range       float32 `yaml:"range" json:"range"`             // whip fan radius, aura radius
	ChainCount  uint8   `yaml:"chain_count" json:"chain_count"` // chain pattern only
}

// BulletCount returns how many bullets one volley fires at level.
func (w WeaponParams) BulletCount(level uint32) int {
	lv := int(min(max(level, 1), MaxWeaponLevel))
	if lv < len(w.BulletTable) {
		return w.BulletTable[lv]
	}
	return 1
}

// WhipRange is the fan radius at level.
func (w WeaponParams) WhipRange(level uint32) float32 {
	return w.Range + (float32(level)-1)*20
}

// AuraRadius is the aura radius at level.
func (w WeaponParams) AuraRadius(level uint32) float32 {
	return w.Range + (float32(level)-1)*15
}

// ChainCountFor is the number of chain links at level.
func (w WeaponParams) ChainCountFor(level uint32) int {
	return int(w.ChainCount) + int(level)/2
}

// BossParams describes one boss kind.
type BossParams struct {
	Name            string  `yaml:"name" json:"name"`
	MaxHP           float32 `yaml:"max_hp" json:"max_hp"`
	Speed           float32 `yaml:"speed" json:"speed"`
	Radius          float32 `yaml:"radius" json:"radius"`
	DamagePerSec    float32 `yaml:"damage_per_sec" json:"damage_per_sec"`
	RenderKind      uint8   `yaml:"render_kind" json:"render_kind"`
	SpecialInterval float32 `yaml:"special_interval" json:"special_interval"`
}

// Tables groups the three parameter tables. The zero value is empty and
// every lookup on it misses.
type Tables struct {
	Enemies []EnemyParams  `yaml:"enemies" json:"enemies"`
	Weapons []WeaponParams `yaml:"weapons" json:"weapons"`
	Bosses  []BossParams   `yaml:"bosses" json:"bosses"`
}

// Enemy returns the row for id.
func (t *Tables) Enemy(id uint8) (EnemyParams, bool) {
	if int(id) < len(t.Enemies) {
		return t.Enemies[id], true
	}
	return EnemyParams{}, false
}

// Weapon returns the row for id.
func (t *Tables) Weapon(id uint8) (WeaponParams, bool) {
	if int(id) < len(t.Weapons) {
		return t.Weapons[id], true
	}
	return WeaponParams{}, false
}

// Boss returns the row for id.
func (t *Tables) Boss(id uint8) (BossParams, bool) {
	if int(id) < len(t.Bosses) {
		return t.Bosses[id], true
	}
	return BossParams{}, false
}

// Ready reports whether any table has been populated. Systems still run
// on an empty table set, they just have nothing to look up.
func (t *Tables) Ready() bool {
	return len(t.Enemies) > 0 || len(t.Weapons) > 0 || len(t.Bosses) > 0
}

// Clone returns a deep copy so a caller's slices are never aliased.
func (t Tables) Clone() Tables {
	out := Tables{
		Enemies: append([]EnemyParams(nil), t.Enemies...),
		Weapons: make([]WeaponParams, len(t.Weapons)),
		Bosses:  append([]BossParams(nil), t.Bosses...),
	}
	for i, w := range t.Weapons {
		w.BulletTable = append([]int(nil), w.BulletTable...)
		out.Weapons[i] = w
	}
	return out
}
