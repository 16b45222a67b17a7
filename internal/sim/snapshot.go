package sim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/params"
	"github.com/vovakirdan/horde/internal/spatial"
)

// Sprite is one renderable entity.
type Sprite struct {
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	Kind uint8   `json:"kind"`
}

// ParticleSprite is a renderable particle with its fade already applied.
type ParticleSprite struct {
	X     float32    `json:"x"`
	Y     float32    `json:"y"`
	Color [4]float32 `json:"color"`
	Size  float32    `json:"size"`
}

// FrameHUD is the heads-up display: counts computed by the core plus the
// authority's injected fields.
type FrameHUD struct {
	HP               float32       `json:"hp"`
	MaxHP            float32       `json:"max_hp"`
	Score            uint32        `json:"score"`
	Kills            uint32        `json:"kills"`
	Level            uint32        `json:"level"`
	Exp              uint32        `json:"exp"`
	ExpToNext        uint32        `json:"exp_to_next"`
	LevelUpPending   bool          `json:"level_up_pending"`
	Choices          []string      `json:"choices,omitempty"`
	UpgradeDescs     [][]string    `json:"upgrade_descs,omitempty"`
	ElapsedSeconds   float32       `json:"elapsed_seconds"`
	EnemyCount       int           `json:"enemy_count"`
	BulletCount      int           `json:"bullet_count"`
	ItemCount        int           `json:"item_count"`
	MagnetTimer      float32       `json:"magnet_timer"`
	Weapons          []WeaponLevel `json:"weapons"`
	ScreenFlashAlpha float32       `json:"screen_flash_alpha"`
	Popups           []ScorePopup  `json:"popups,omitempty"`
}

// Frame is a self-contained copy of everything a renderer needs.
type Frame struct {
	FrameID      uint64             `json:"frame_id"`
	MapW         float32            `json:"map_w"`
	MapH         float32            `json:"map_h"`
	PlayerX      float32            `json:"player_x"`
	PlayerY      float32            `json:"player_y"`
	PlayerRadius float32            `json:"player_radius"`
	Boss         *BossInfo          `json:"boss,omitempty"`
	Enemies      []Sprite           `json:"enemies"`
	Bullets      []Sprite           `json:"bullets"`
	Particles    []ParticleSprite   `json:"particles"`
	Items        []Sprite           `json:"items"`
	Obstacles    []spatial.Obstacle `json:"obstacles"`
	HUD          FrameHUD           `json:"hud"`
}

// Presentation copies the renderable state. Enemy sprites carry the
// kind's render tag, falling back to the kind id when no row exists.
func (w *World) Presentation() Frame {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st := w.st

	f := Frame{
		FrameID:      st.frameID,
		MapW:         w.mapW,
		MapH:         w.mapH,
		PlayerX:      st.player.X,
		PlayerY:      st.player.Y,
		PlayerRadius: w.cfg.Player.Radius,
		Enemies:      make([]Sprite, 0, st.enemies.Count()),
		Bullets:      make([]Sprite, 0, st.bullets.Count()),
		Particles:    make([]ParticleSprite, 0, st.particles.Count()),
		Items:        make([]Sprite, 0, st.items.Count()),
		Obstacles:    append([]spatial.Obstacle(nil), w.collision.Obstacles()...),
	}
	if st.boss != nil {
		info := st.boss.info()
		f.Boss = &info
	}

	e := st.enemies
	for i := range e.Len() {
		if e.Alive[i] == entity.Dead {
			continue
		}
		kind := e.Kind[i]
		if ep, ok := w.params.Enemy(kind); ok {
			kind = ep.RenderKind
		}
		f.Enemies = append(f.Enemies, Sprite{X: e.X[i], Y: e.Y[i], Kind: kind})
	}
	b := st.bullets
	for i := range b.Len() {
		if b.Alive[i] {
			f.Bullets = append(f.Bullets, Sprite{X: b.X[i], Y: b.Y[i], Kind: b.Kind[i]})
		}
	}
	pt := st.particles
	for i := range pt.Len() {
		if !pt.Alive[i] {
			continue
		}
		c := pt.Color[i]
		c[3] *= pt.Alpha(i)
		f.Particles = append(f.Particles, ParticleSprite{X: pt.X[i], Y: pt.Y[i], Color: c, Size: pt.Size[i]})
	}
	it := st.items
	for i := range it.Len() {
		if it.Alive[i] {
			f.Items = append(f.Items, Sprite{X: it.X[i], Y: it.Y[i], Kind: uint8(it.Kind[i])})
		}
	}

	inj := st.inj
	f.HUD = FrameHUD{
		HP:             st.player.HP,
		MaxHP:          inj.PlayerMaxHP,
		Score:          inj.Score,
		Kills:          inj.Kills,
		Level:          inj.Level,
		Exp:            inj.Exp,
		ExpToNext:      inj.ExpToNext,
		LevelUpPending: inj.LevelUpPending,
		Choices:        append([]string(nil), inj.Choices...),
		UpgradeDescs:   w.upgradeDescs(),
		ElapsedSeconds: st.elapsed,
		EnemyCount:     e.Count(),
		BulletCount:    b.Count(),
		ItemCount:      it.Count(),
		MagnetTimer:    st.magnetTimer,
		Weapons:        w.weaponLevels(),
		Popups:         append([]ScorePopup(nil), st.popups...),
	}
	if d := w.cfg.Player.InvincibleDuration; st.player.InvincibleFor > 0 && d > 0 {
		f.HUD.ScreenFlashAlpha = min(max(st.player.InvincibleFor/d, 0), 1) * 0.5
	}
	return f
}

// upgradeDescs returns the injected descriptions, or derives them from
// choices of the form "weapon_<id>".
func (w *World) upgradeDescs() [][]string {
	inj := w.st.inj
	if len(inj.UpgradeDescs) > 0 {
		out := make([][]string, len(inj.UpgradeDescs))
		for i, d := range inj.UpgradeDescs {
			out[i] = append([]string(nil), d...)
		}
		return out
	}
	if len(inj.Choices) == 0 {
		return nil
	}
	out := make([][]string, len(inj.Choices))
	for i, c := range inj.Choices {
		rest, ok := strings.CutPrefix(c, "weapon_")
		id, err := strconv.ParseUint(rest, 10, 8)
		if !ok || err != nil {
			out[i] = []string{params.UpgradeFallback}
			continue
		}
		var lv uint32
		for _, s := range w.st.slots {
			if s.KindID == uint8(id) {
				lv = s.Level
				break
			}
		}
		out[i] = params.UpgradeDescription(&w.params, uint8(id), lv)
	}
	return out
}

// InterpolationData brackets the last tick for smooth rendering between
// ticks.
type InterpolationData struct {
	PrevPlayerX float32 `json:"prev_player_x"`
	PrevPlayerY float32 `json:"prev_player_y"`
	CurrPlayerX float32 `json:"curr_player_x"`
	CurrPlayerY float32 `json:"curr_player_y"`
	PrevTickMs  uint64  `json:"prev_tick_ms"`
	CurrTickMs  uint64  `json:"curr_tick_ms"`
}

// Interpolation returns the player positions and timestamps of the last
// two ticks.
func (w *World) Interpolation() InterpolationData {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st := w.st
	return InterpolationData{
		PrevPlayerX: st.prevPlayerX,
		PrevPlayerY: st.prevPlayerY,
		CurrPlayerX: st.player.X,
		CurrPlayerY: st.player.Y,
		PrevTickMs:  st.prevTickMs,
		CurrTickMs:  st.currTickMs,
	}
}

// Alpha is the blend factor in [0, 1] for a render at nowMs. It is 1 when
// the two ticks share a timestamp.
func (d InterpolationData) Alpha(nowMs uint64) float32 {
	if d.CurrTickMs <= d.PrevTickMs {
		return 1
	}
	if nowMs <= d.PrevTickMs {
		return 0
	}
	a := float32(nowMs-d.PrevTickMs) / float32(d.CurrTickMs-d.PrevTickMs)
	return min(a, 1)
}

// PlayerAt blends the player position with alpha.
func (d InterpolationData) PlayerAt(alpha float32) (float32, float32) {
	return d.PrevPlayerX + (d.CurrPlayerX-d.PrevPlayerX)*alpha,
		d.PrevPlayerY + (d.CurrPlayerY-d.PrevPlayerY)*alpha
}

// Diagnostics is a full-state debug summary.
type Diagnostics struct {
	FrameID           uint64        `json:"frame_id"`
	ElapsedSeconds    float32       `json:"elapsed_seconds"`
	Player            Player        `json:"player"`
	PlayerMaxHP       float32       `json:"player_max_hp"`
	EnemyCount        int           `json:"enemy_count"`
	EnemySlots        int           `json:"enemy_slots"`
	BulletCount       int           `json:"bullet_count"`
	BulletSlots       int           `json:"bullet_slots"`
	ParticleCount     int           `json:"particle_count"`
	ItemCount         int           `json:"item_count"`
	ObstacleCount     int           `json:"obstacle_count"`
	Boss              *BossInfo     `json:"boss,omitempty"`
	Weapons           []WeaponLevel `json:"weapons"`
	MagnetTimer       float32       `json:"magnet_timer"`
	PendingEvents     int           `json:"pending_events"`
	ParamsReady       bool          `json:"params_ready"`
	Poisoned          bool          `json:"poisoned"`
	MapW              float32       `json:"map_w"`
	MapH              float32       `json:"map_h"`
	LastFrameMs       float64       `json:"last_frame_ms"`
	Perf              PerfSnapshot  `json:"perf"`
	BatchChase        bool          `json:"batch_chase"`
	ParallelThreshold int           `json:"parallel_threshold"`
}

// Diagnostics returns a copy of the world's internal counters.
func (w *World) Diagnostics() Diagnostics {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st := w.st
	d := Diagnostics{
		FrameID:           st.frameID,
		ElapsedSeconds:    st.elapsed,
		Player:            st.player,
		PlayerMaxHP:       st.inj.PlayerMaxHP,
		EnemyCount:        st.enemies.Count(),
		EnemySlots:        st.enemies.Len(),
		BulletCount:       st.bullets.Count(),
		BulletSlots:       st.bullets.Len(),
		ParticleCount:     st.particles.Count(),
		ItemCount:         st.items.Count(),
		ObstacleCount:     len(w.collision.Obstacles()),
		Weapons:           w.weaponLevels(),
		MagnetTimer:       st.magnetTimer,
		PendingEvents:     st.events.Len(),
		ParamsReady:       w.params.Ready(),
		Poisoned:          w.poisoned,
		MapW:              w.mapW,
		MapH:              w.mapH,
		LastFrameMs:       st.lastFrameMs,
		Perf:              w.perf.snapshot(),
		BatchChase:        w.chaser.Batch,
		ParallelThreshold: w.chaser.ParallelThreshold,
	}
	if st.boss != nil {
		info := st.boss.info()
		d.Boss = &info
	}
	return d
}

// DebugDump returns a one-line summary for logs.
func (w *World) DebugDump() string {
	d := w.Diagnostics()
	boss := "none"
	if d.Boss != nil {
		boss = fmt.Sprintf("kind=%d hp=%.0f/%.0f at (%.0f,%.0f)", d.Boss.Kind, d.Boss.HP, d.Boss.MaxHP, d.Boss.X, d.Boss.Y)
	}
	return fmt.Sprintf("frame=%d t=%.1fs enemies=%d/%d bullets=%d particles=%d items=%d player=(%.0f,%.0f) hp=%.0f/%.0f boss=%s",
		d.FrameID, d.ElapsedSeconds, d.EnemyCount, d.EnemySlots, d.BulletCount, d.ParticleCount, d.ItemCount,
		d.Player.X, d.Player.Y, d.Player.HP, d.PlayerMaxHP, boss)
}
