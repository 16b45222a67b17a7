package core

// InputFrame is the player's movement intent for one simulation tick.
// DX/DY are per-axis inputs in [-1, 1]; diagonal input is normalized by
// the tick driver, not here.
type InputFrame struct {
	DX float32
	DY float32
}

// IsZero reports whether the frame carries no movement.
func (f InputFrame) IsZero() bool {
	return f.DX == 0 && f.DY == 0
}

// Direction returns the normalized movement direction.
func (f InputFrame) Direction() Vec2 {
	return Vec2{X: f.DX, Y: f.DY}.Normalize()
}

// Action represents a viewer-level intent, abstracted from physical keys.
type Action int

const (
	ActionNone  Action = iota
	ActionUp           // W, Up arrow
	ActionDown         // S, Down arrow
	ActionLeft         // A, Left arrow
	ActionRight        // D, Right arrow
	ActionPause        // P
	ActionSave         // Ctrl+S - quick save to the store
	ActionQuit         // Q, Ctrl+C
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionPause:
		return "Pause"
	case ActionSave:
		return "Save"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Apply folds a directional action into the frame.
// Non-directional actions leave it unchanged.
func (f *InputFrame) Apply(a Action) {
	switch a {
	case ActionUp:
		f.DY = -1
	case ActionDown:
		f.DY = 1
	case ActionLeft:
		f.DX = -1
	case ActionRight:
		f.DX = 1
	}
}
