package observer

import "github.com/vovakirdan/horde/internal/sim"

// Version is the observer protocol version.
const Version = 1

// Message types.
const (
	TypeSubscribe = "SUBSCRIBE"
	TypeFrame     = "FRAME"
	TypeEnd       = "END"
)

// SubscribeMsg is the first message a client sends. Every asks for one
// frame out of every N ticks; zero or less means every tick.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion int    `json:"protocol_version"`
	Every           int    `json:"every,omitempty"`
}

// FrameMsg carries one presentation frame.
type FrameMsg struct {
	Type  string    `json:"type"`
	Frame sim.Frame `json:"frame"`
}

// BootstrapResponse describes the world being observed.
type BootstrapResponse struct {
	ProtocolVersion int     `json:"protocol_version"`
	RunID           string  `json:"run_id"`
	Scenario        string  `json:"scenario"`
	FrameID         uint64  `json:"frame_id"`
	MapW            float32 `json:"map_w"`
	MapH            float32 `json:"map_h"`
	TickRate        int     `json:"tick_rate"`
}
