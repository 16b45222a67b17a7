package scenario

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/vovakirdan/horde/internal/config"
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/events"
	"github.com/vovakirdan/horde/internal/params"
	"github.com/vovakirdan/horde/internal/sim"
)

// maxChoices is how many upgrade cards a level-up offers.
const maxChoices = 3

// Waves is the wave-survival director shared by the built-in scenarios.
// Every difference between them lives in the scenario config.
type Waves struct {
	id     string
	cfg    config.ScenarioConfig
	rng    *rand.Rand
	diff   *config.DifficultyManager
	tables params.Tables

	// AutoUpgrade takes the first choice of every level-up immediately.
	AutoUpgrade bool

	hp, maxHP float32
	score     uint32
	kills     uint32
	level     uint32
	exp       uint32
	expToNext uint32
	choices   []string

	elapsed  float64
	nextWave float64
	waveNo   int

	boss bossAI
	over bool
}

// NewWaves returns a director for cfg. AutoUpgrade starts enabled.
func NewWaves(id string, cfg config.ScenarioConfig, seed int64) *Waves {
	return &Waves{
		id:          id,
		cfg:         cfg,
		rng:         rand.New(rand.NewSource(seed)),
		diff:        config.NewDifficultyManager(cfg.Difficulty),
		AutoUpgrade: true,
	}
}

// ID returns the scenario id.
func (d *Waves) ID() string { return d.id }

// Over reports whether the player has died.
func (d *Waves) Over() bool { return d.over }

// Tally returns the current counters.
func (d *Waves) Tally() Tally {
	return Tally{
		Score:        d.score,
		Kills:        d.kills,
		Level:        d.level,
		Exp:          d.exp,
		ExpToNext:    d.expToNext,
		HP:           d.hp,
		MaxHP:        d.maxHP,
		Waves:        d.waveNo,
		BossDefeated: d.boss.defeated,
	}
}

// Setup places obstacles, equips the loadout and sets player health.
func (d *Waves) Setup(w *sim.World) error {
	d.tables = w.Params()

	if err := w.SetObstacles(d.cfg.Obstacles); err != nil {
		return fmt.Errorf("scenario %s: %w", d.id, err)
	}

	d.maxHP = d.cfg.Player.MaxHP
	if d.maxHP <= 0 {
		d.maxHP = w.Config().Player.MaxHP
	}
	d.hp = d.maxHP
	if err := w.SetPlayerMaxHP(d.maxHP); err != nil {
		return err
	}
	if err := w.SetPlayerHP(d.hp); err != nil {
		return err
	}

	slots := make([]params.WeaponSlot, 0, len(d.cfg.Loadout))
	for _, kind := range d.cfg.Loadout {
		slots = append(slots, params.NewWeaponSlot(kind))
	}
	if len(slots) == 0 {
		slots = append(slots, params.NewWeaponSlot(0))
	}
	if err := w.SetWeaponSlots(slots); err != nil {
		return fmt.Errorf("scenario %s: %w", d.id, err)
	}

	w.SetScorePopups(d.cfg.Leveling.KillScore > 0, d.cfg.Leveling.KillScore)
	d.level = 1
	d.expToNext = max(d.cfg.Leveling.BaseExp, 1)
	d.boss = bossAI{cfg: d.cfg.Boss}
	d.publish(w)
	return nil
}

// Resume adopts health and the run clock from a freshly loaded world.
// Score, kills and experience restart.
func (d *Waves) Resume(w *sim.World) {
	d.tables = w.Params()
	snap := w.Save()
	d.hp = snap.PlayerHP
	d.maxHP = snap.PlayerMaxHP
	d.elapsed = float64(snap.ElapsedSeconds)
	d.nextWave = d.elapsed
	d.score, d.kills, d.exp = 0, 0, 0
	d.choices = nil
	d.level = max(d.level, 1)
	d.expToNext = max(d.expToNext, d.cfg.Leveling.BaseExp, 1)
	// Load removes the boss; an undefeated one comes back on schedule.
	d.boss = bossAI{cfg: d.cfg.Boss}
	d.over = d.hp <= 0
	d.publish(w)
}

// Update applies one tick of rules.
func (d *Waves) Update(w *sim.World, evs []events.Event, dt float64) {
	d.elapsed += dt
	for _, ev := range evs {
		d.apply(w, ev)
	}
	if d.hp <= 0 {
		d.over = true
	}

	d.levelUp(w)
	if !d.over {
		d.spawnWave(w)
		d.boss.update(w, d.tables, d.elapsed, float32(dt))
	}
	d.publish(w)
}

func (d *Waves) apply(w *sim.World, ev events.Event) {
	switch e := ev.(type) {
	case events.EnemyKilled:
		d.kills++
		d.score += d.cfg.Leveling.KillScore
		d.drop(w, e.X, e.Y)
	case events.PlayerDamaged:
		d.hp -= e.Damage
	case events.ItemPickup:
		switch entity.ItemKind(e.Kind) {
		case entity.ItemGem:
			d.exp += e.Value
		case entity.ItemPotion:
			d.hp = min(d.hp+float32(e.Value), d.maxHP)
		}
	case events.SpecialEntityDefeated:
		d.score += d.cfg.Leveling.BossScore
		d.boss.defeated = true
		w.SpawnItem(e.X, e.Y, entity.ItemMagnet, 0)
		w.SpawnItem(e.X+40, e.Y, entity.ItemPotion, d.cfg.Drops.PotionHeal)
	}
}

func (d *Waves) drop(w *sim.World, x, y float32) {
	drops := d.cfg.Drops
	roll := d.rng.Float64()
	switch {
	case roll < drops.MagnetChance:
		w.SpawnItem(x, y, entity.ItemMagnet, 0)
	case roll < drops.MagnetChance+drops.PotionChance:
		w.SpawnItem(x, y, entity.ItemPotion, drops.PotionHeal)
	case drops.GemValue > 0:
		w.SpawnItem(x, y, entity.ItemGem, drops.GemValue)
	}
}

func (d *Waves) spawnWave(w *sim.World) {
	waves := d.cfg.Waves
	if len(waves.Kinds) == 0 || d.elapsed < d.nextWave {
		return
	}
	step := d.diff.Wave(waves, int(d.score), d.elapsed)
	d.waveNo++
	d.nextWave = d.elapsed + step.Interval

	room := waves.MaxEnemies - w.EnemyCount()
	if waves.MaxEnemies <= 0 {
		room = math.MaxInt
	}
	size := min(step.Size, room)
	kind := waves.Kinds[(d.waveNo-1)%len(waves.Kinds)]
	if size > 0 {
		w.SpawnEnemies(kind, size)
	}

	if waves.EliteEvery > 0 && d.waveNo%waves.EliteEvery == 0 && room > size {
		w.SpawnEliteEnemies(kind, min(waves.EliteCount, room-size), float32(step.EliteHP))
	}
}

func (d *Waves) levelUp(w *sim.World) {
	for d.exp >= d.expToNext && d.choices == nil {
		d.exp -= d.expToNext
		d.level++
		d.expToNext = uint32(math.Ceil(float64(d.expToNext) * max(d.cfg.Leveling.Growth, 1)))
		d.choices = d.rollChoices(w)
		if len(d.choices) == 0 {
			d.choices = nil
			continue
		}
		if d.AutoUpgrade {
			_ = d.Choose(w, 0)
		}
	}
}

// rollChoices offers up to maxChoices weapons that can still improve.
func (d *Waves) rollChoices(w *sim.World) []string {
	slots := w.WeaponSlots()
	owned := make(map[uint8]uint32, len(slots))
	for _, s := range slots {
		owned[s.KindID] = s.Level
	}

	var pool []string
	for kind := range d.tables.Weapons {
		lv, ok := owned[uint8(kind)]
		switch {
		case ok && lv < params.MaxWeaponLevel:
		case !ok && len(slots) < params.MaxWeaponSlots:
		default:
			continue
		}
		pool = append(pool, fmt.Sprintf("weapon_%d", kind))
	}
	d.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > maxChoices {
		pool = pool[:maxChoices]
	}
	return pool
}

// Choose applies pending choice idx.
func (d *Waves) Choose(w *sim.World, idx int) error {
	if idx < 0 || idx >= len(d.choices) {
		return fmt.Errorf("scenario: no choice %d", idx)
	}
	var kind uint8
	if _, err := fmt.Sscanf(d.choices[idx], "weapon_%d", &kind); err != nil {
		return fmt.Errorf("scenario: bad choice %q: %w", d.choices[idx], err)
	}
	d.choices = nil
	if err := w.AddWeapon(kind); err != nil {
		return err
	}
	d.publish(w)
	return nil
}

// publish injects the authority-owned state back into the world.
func (d *Waves) publish(w *sim.World) {
	_ = w.SetPlayerHP(d.hp)
	w.SetHUD(sim.HUD{
		Score:          d.score,
		Kills:          d.kills,
		Level:          d.level,
		Exp:            d.exp,
		ExpToNext:      d.expToNext,
		LevelUpPending: d.choices != nil,
		Choices:        d.choices,
	})
}
