// Package tui is the terminal viewer for a running simulation. It draws
// presentation frames with Bubble Tea and Lip Gloss, forwards movement
// keys to the runner and can serve the same viewer over SSH with Wish.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/horde/internal/sim"
)

// TickMsg is sent to redraw and decay held keys.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(fps int) tea.Cmd {
	interval := time.Second / time.Duration(fps)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// frameMsg carries the newest presentation frame.
type frameMsg sim.Frame

// runEndedMsg is sent when the frame channel closes.
type runEndedMsg struct{}

// waitFrame blocks on the subscription for the next frame.
func waitFrame(frames <-chan sim.Frame) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return runEndedMsg{}
		}
		return frameMsg(f)
	}
}
