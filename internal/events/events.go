// Package events defines the one-shot frame events the simulation emits
// for its rule authority, and the append-only log that holds them until the
// caller drains it at the end of a tick.
package events

// Event is a value record of something that happened during a tick.
type Event interface {
	// Type returns a stable name used by journals and observers.
	Type() string
	frameEvent()
}

// EnemyKilled is emitted when an enemy's health reaches zero.
type EnemyKilled struct {
	Kind uint8   `json:"kind"`
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
}

func (EnemyKilled) Type() string { return "enemy_killed" }
func (EnemyKilled) frameEvent()  {}

// PlayerDamaged asks the authority to subtract Damage from player health.
type PlayerDamaged struct {
	Damage float32 `json:"damage"`
}

func (PlayerDamaged) Type() string { return "player_damaged" }
func (PlayerDamaged) frameEvent()  {}

// ItemPickup is emitted when the player collects an item.
// Value is the item payload (gem exp, potion heal amount).
type ItemPickup struct {
	Kind  uint8  `json:"kind"`
	Value uint32 `json:"value"`
}

func (ItemPickup) Type() string { return "item_pickup" }
func (ItemPickup) frameEvent()  {}

// SpecialEntitySpawned is emitted when a boss enters the world.
type SpecialEntitySpawned struct {
	Kind uint8 `json:"kind"`
}

func (SpecialEntitySpawned) Type() string { return "special_spawned" }
func (SpecialEntitySpawned) frameEvent()  {}

// SpecialEntityDamaged carries the total damage the boss took this tick.
type SpecialEntityDamaged struct {
	Damage float32 `json:"damage"`
}

func (SpecialEntityDamaged) Type() string { return "special_damaged" }
func (SpecialEntityDamaged) frameEvent()  {}

// SpecialEntityDefeated is emitted when the boss's health reaches zero.
type SpecialEntityDefeated struct {
	Kind uint8   `json:"kind"`
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
}

func (SpecialEntityDefeated) Type() string { return "special_defeated" }
func (SpecialEntityDefeated) frameEvent()  {}

// Log is an append-only queue of events for the current tick.
// It is not safe for concurrent use; the world lock guards it.
type Log struct {
	buf []Event
}

// Push appends an event.
func (l *Log) Push(e Event) {
	l.buf = append(l.buf, e)
}

// Len returns the number of pending events.
func (l *Log) Len() int {
	return len(l.buf)
}

// Drain returns all pending events in emission order and empties the log.
// The returned slice is owned by the caller; the log never touches it again.
func (l *Log) Drain() []Event {
	if len(l.buf) == 0 {
		return nil
	}
	out := l.buf
	l.buf = nil
	return out
}

// Pending returns the pending events without draining them. The slice is
// only valid until the next Push, Drain or Clear.
func (l *Log) Pending() []Event {
	return l.buf
}

// Clear drops pending events without returning them.
func (l *Log) Clear() {
	l.buf = nil
}
