// Package sim is the authoritative simulation core. A World owns every
// entity store, the collision indices and the frame event log; an external
// rule authority drives it through Advance, the injection setters and
// DrainEvents, and never touches its state directly.
//
// All methods are safe for concurrent use. Advance and the setters take the
// write lock; queries take the read lock and return copies.
package sim

import (
	"errors"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/horde/internal/config"
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/events"
	"github.com/vovakirdan/horde/internal/params"
	"github.com/vovakirdan/horde/internal/physics"
	"github.com/vovakirdan/horde/internal/spatial"
)

// Sentinel errors returned at the API boundary.
// pcgStream separates the second PCG seed word from the first.
const pcgStream = 0x9e3779b97f4a7c15

var (
	ErrPoisoned       = errors.New("sim: tick panicked")
	ErrInvalidSlot    = errors.New("sim: invalid weapon slot")
	ErrInvalidMapSize = errors.New("sim: invalid map size")
	ErrInvalidValue   = errors.New("sim: invalid value")
	ErrInvalidKind    = errors.New("sim: unknown kind id")
)

// Player is the player's physical state. Position is the body center.
type Player struct {
	X, Y          float32
	InputDX       float32
	InputDY       float32
	HP            float32 // SetPlayerHP, Load
	InvincibleFor float32 // seconds left
	Facing        float32 // radians, last nonzero input direction
}

// BossState is the boss's physical presence. Its identity, AI and phase
// logic belong to the authority.
type BossState struct {
	Kind         uint8
	X, Y         float32
	HP, MaxHP    float32
	VX, VY       float32 // SetBossVelocity
	Invincible   bool    // SetBossInvincible
	PhaseTimer   float32 // SetBossPhaseTimer; initialized at spawn only
	Radius       float32
	DamagePerSec float32
	RenderKind   uint8
}

// ScorePopup is a floating score number shown where an enemy died.
type ScorePopup struct {
	X, Y     float32
	Value    uint32
	Lifetime float32
}

// Injected holds state that only the authority writes. The core reads it
// for presentation and never modifies it.
type Injected struct {
	PlayerMaxHP    float32    // SetPlayerMaxHP, Load
	Score          uint32     // SetHUD
	Kills          uint32     // SetHUD
	Level          uint32     // SetHUD
	Exp            uint32     // SetHUD
	ExpToNext      uint32     // SetHUD
	LevelUpPending bool       // SetHUD
	Choices        []string   // SetHUD
	UpgradeDescs   [][]string // SetHUD
	ScorePopups    bool       // SetScorePopups
	PopupValue     uint32     // SetScorePopups
}

// HUD is the authority-owned part of the heads-up display.
type HUD struct {
	Score          uint32
	Kills          uint32
	Level          uint32
	Exp            uint32
	ExpToNext      uint32
	LevelUpPending bool
	Choices        []string
	UpgradeDescs   [][]string
}

// state is everything a tick mutates. Advance copies it into a checkpoint
// before stepping so a panicking tick can be rolled back.
type state struct {
	frameID     uint64
	elapsed     float32
	player      Player
	enemies     *entity.EnemyStore
	bullets     *entity.BulletStore
	particles   *entity.ParticleStore
	items       *entity.ItemStore
	boss        *BossState
	magnetTimer float32
	slots       []params.WeaponSlot
	popups      []ScorePopup
	events      events.Log
	inj         Injected

	// bossPending is weapon damage dealt to the boss outside of bullets,
	// folded into the boss update's single damage application.
	bossPending float32

	prevPlayerX, prevPlayerY float32
	prevTickMs, currTickMs   uint64
	lastFrameMs              float64
}

func newState() *state {
	return &state{
		enemies:   entity.NewEnemyStore(1024),
		bullets:   entity.NewBulletStore(256),
		particles: entity.NewParticleStore(512),
		items:     entity.NewItemStore(128),
	}
}

func (s *state) copyFrom(src *state) {
	s.frameID = src.frameID
	s.elapsed = src.elapsed
	s.player = src.player
	s.enemies.CopyFrom(src.enemies)
	s.bullets.CopyFrom(src.bullets)
	s.particles.CopyFrom(src.particles)
	s.items.CopyFrom(src.items)
	if src.boss == nil {
		s.boss = nil
	} else {
		b := *src.boss
		s.boss = &b
	}
	s.magnetTimer = src.magnetTimer
	s.slots = append(s.slots[:0], src.slots...)
	s.popups = append(s.popups[:0], src.popups...)
	s.events.Clear()
	for _, e := range src.events.Pending() {
		s.events.Push(e)
	}
	s.inj = src.inj
	s.bossPending = src.bossPending
	s.prevPlayerX, s.prevPlayerY = src.prevPlayerX, src.prevPlayerY
	s.prevTickMs, s.currTickMs = src.prevTickMs, src.currTickMs
	s.lastFrameMs = src.lastFrameMs
}

// World is the simulation root. Create it with New.
type World struct {
	mu sync.RWMutex

	cfg    config.SimConfig
	logger *log.Logger
	now    func() time.Time

	st   *state
	good *state

	params    params.Tables
	collision *spatial.CollisionWorld
	mapW      float32
	mapH      float32
	rng       *rand.Rand
	rngSrc    *rand.PCG
	goodRNG   rand.PCG // rngSrc as of the last checkpoint

	// queryPad widens enemy broad phase queries: the configured pad or the
	// largest enemy radius, whichever is larger.
	queryPad float32

	chaser    physics.Chaser
	separator *physics.Separator
	nearest   physics.Nearest

	// scratch buffers reused across ticks
	queryBuf    []int
	obstacleBuf []int
	chainHit    []bool
	bossHits    []bossHit

	poisoned     bool
	warnedParams bool
	perf         PerfStats

	// beforeStep runs inside the recovered region; tests use it to inject
	// a panic.
	beforeStep func()
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used for perf warnings and recovery reports.
func WithLogger(l *log.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithClock replaces the wall clock used for interpolation timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *World) {
		if now != nil {
			w.now = now
		}
	}
}

// New creates an empty world with the player at the map center, hp and
// max hp at cfg.Player.MaxHP and a single level 1 weapon of kind 0.
func New(cfg config.SimConfig, opts ...Option) *World {
	w := &World{
		cfg:       cfg,
		logger:    log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel}),
		now:       time.Now,
		st:        newState(),
		good:      newState(),
		collision: spatial.NewCollisionWorld(cfg.Grid.CellSize),
		mapW:      cfg.Map.Width,
		mapH:      cfg.Map.Height,
		chaser:    physics.NewChaser(cfg.Chase.ParallelThreshold),
		separator: physics.NewSeparator(cfg.Separation.Radius, cfg.Separation.Force),
	}
	w.queryPad = max(cfg.Player.ContactQueryPad, params.DefaultEnemyRadius)
	w.rngSrc = rand.NewPCG(uint64(cfg.ParticleSeed), uint64(cfg.ParticleSeed)^pcgStream)
	w.rng = rand.New(w.rngSrc)
	w.nearest.Grid = w.collision.Dynamic
	for _, opt := range opts {
		opt(w)
	}

	w.st.player = Player{X: w.mapW / 2, Y: w.mapH / 2, HP: cfg.Player.MaxHP}
	w.st.inj.PlayerMaxHP = cfg.Player.MaxHP
	w.st.slots = []params.WeaponSlot{params.NewWeaponSlot(0)}
	w.st.prevPlayerX, w.st.prevPlayerY = w.st.player.X, w.st.player.Y
	return w
}

// Config returns the constants the world was built with.
func (w *World) Config() config.SimConfig {
	return w.cfg
}

// Poisoned reports whether any tick has panicked since the world was
// created or last loaded.
func (w *World) Poisoned() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.poisoned
}

// ParamsReady reports whether entity parameter tables have been injected.
func (w *World) ParamsReady() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.params.Ready()
}

func (w *World) enemyRadius(kind uint8) float32 {
	if ep, ok := w.params.Enemy(kind); ok {
		return ep.Radius
	}
	return params.DefaultEnemyRadius
}

func (w *World) enemyObstacleInfo(kind uint8) (float32, bool) {
	if ep, ok := w.params.Enemy(kind); ok {
		return ep.Radius, ep.PassesObstacles
	}
	return params.DefaultEnemyRadius, false
}

func (w *World) particleColor(kind uint8) [4]float32 {
	if ep, ok := w.params.Enemy(kind); ok {
		return ep.ParticleColor
	}
	return params.DefaultParticleColor
}

func nowMs(t time.Time) uint64 {
	return uint64(t.UnixMilli())
}
