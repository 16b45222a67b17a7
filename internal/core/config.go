package core

// RuntimeConfig contains settings chosen by whoever runs the simulation
// (CLI, ssh session, tests) rather than by the tuning files.
type RuntimeConfig struct {
	TickRate int     // Simulation ticks per second (default 60)
	Seed     int64   // RNG seed for deterministic runs
	MapW     float32 // World width in pixels, 0 = use tuning default
	MapH     float32 // World height in pixels, 0 = use tuning default
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// TickMs returns the nominal tick length in milliseconds.
func (c RuntimeConfig) TickMs() float64 {
	if c.TickRate <= 0 {
		return 1000.0 / 60.0
	}
	return 1000.0 / float64(c.TickRate)
}
