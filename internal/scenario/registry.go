// Package scenario provides the demo rule authorities that drive a
// simulation world: wave scheduling, drops, health and experience, and
// boss behaviour. Scenarios register themselves in init() functions so
// the CLI can discover them by id.
package scenario

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/horde/internal/config"
	"github.com/vovakirdan/horde/internal/events"
	"github.com/vovakirdan/horde/internal/sim"
)

// Director is a rule authority. The runner calls Setup once, then Update
// after every tick with the events that tick produced. All calls happen on
// the runner goroutine.
type Director interface {
	// ID returns the scenario id used by the CLI and run records.
	ID() string

	// Setup injects the scenario's starting state into w.
	Setup(w *sim.World) error

	// Resume adopts the state of a world that was just loaded from a save.
	Resume(w *sim.World)

	// Update applies the rules to one tick's events and schedules what
	// happens next. dt is the tick length in seconds.
	Update(w *sim.World, evs []events.Event, dt float64)

	// Choose takes pending level-up choice idx.
	Choose(w *sim.World, idx int) error

	// Over reports whether the run has ended.
	Over() bool

	// Tally returns the authority-owned counters.
	Tally() Tally
}

// Tally is the authority's view of a run.
type Tally struct {
	Score        uint32
	Kills        uint32
	Level        uint32
	Exp          uint32
	ExpToNext    uint32
	HP           float32
	MaxHP        float32
	Waves        int
	BossDefeated bool
}

// Info contains metadata about a registered scenario.
type Info struct {
	ID    string
	Title string
}

// Factory creates a director from its loaded config. seed drives drops
// and upgrade rolls.
type Factory func(cfg config.ScenarioConfig, seed int64) Director

type entry struct {
	title   string
	factory Factory
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds a scenario factory to the registry.
// Panics if a scenario with the same id is already registered.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[id]; exists {
		panic(fmt.Sprintf("scenario: %q already registered", id))
	}
	entries[id] = entry{title: title, factory: f}
}

// List returns all registered scenarios, sorted by id.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(entries))
	for id, e := range entries {
		result = append(result, Info{ID: id, Title: e.title})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates the scenario id with cfg.
func Create(id string, cfg config.ScenarioConfig, seed int64) (Director, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	if !ok {
		return nil, fmt.Errorf("scenario: unknown scenario %q", id)
	}
	return e.factory(cfg, seed), nil
}

// Exists checks if a scenario with the given id is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[id]
	return ok
}

func init() {
	Register("swarm", "Swarm: endless waves", newWaves("swarm"))
	Register("arena", "Arena: pillars and ghosts", newWaves("arena"))
	Register("boss", "Boss rush", newWaves("boss"))
}

func newWaves(id string) Factory {
	return func(cfg config.ScenarioConfig, seed int64) Director {
		return NewWaves(id, cfg, seed)
	}
}
