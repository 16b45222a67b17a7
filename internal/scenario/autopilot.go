package scenario

import (
	"math"

	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/sim"
)

// Autopilot drives the player for headless runs. It kites in a circle
// around the map center so chasing enemies bunch up behind it.
type Autopilot struct {
	// Radius is the orbit radius as a fraction of the shorter map side.
	Radius float32
}

// NewAutopilot returns an autopilot orbiting at a third of the map.
func NewAutopilot() *Autopilot {
	return &Autopilot{Radius: 1.0 / 3}
}

// Input returns the movement intent for the next tick.
func (a *Autopilot) Input(w *sim.World) core.InputFrame {
	cfg := w.Config()
	cx, cy := cfg.Map.Width/2, cfg.Map.Height/2
	orbit := min(cfg.Map.Width, cfg.Map.Height) * a.Radius

	px, py := w.PlayerPos()
	off := core.Vec2{X: px - cx, Y: py - cy}
	dist := off.Len()
	if dist < 1 {
		return core.InputFrame{DX: 1}
	}
	radial := off.Scale(1 / dist)
	tangent := core.Vec2{X: -radial.Y, Y: radial.X}

	// Pull toward the orbit, proportional to how far off it the player is.
	pull := core.Clamp32((orbit-dist)/orbit, -1, 1)
	dir := tangent.Add(radial.Scale(pull)).Normalize()
	return core.InputFrame{DX: round2(dir.X), DY: round2(dir.Y)}
}

// round2 rounds to two decimals.
func round2(v float32) float32 {
	return float32(math.Round(float64(v)*100) / 100)
}
