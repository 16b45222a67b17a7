package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/scenario"
	"github.com/vovakirdan/horde/internal/sim"
)

// Viewer layout constants
const (
	viewerFPS   = 30
	hudHeight   = 4
	choiceRows  = 8
	holdWindow  = 180 * time.Millisecond // a key counts as held this long after its last repeat
	defaultZoom = 16                     // world pixels per column
	minZoom     = 2
	maxZoom     = 128
)

// Driver is the part of the runner the viewer talks to.
type Driver interface {
	Subscribe(buf int) (<-chan sim.Frame, func())
	SendInput(core.InputFrame)
	Do(fn func(*sim.World, scenario.Director))
	SetPaused(bool)
	Paused() bool
}

// SaveFunc persists the current world. It runs on the runner goroutine.
type SaveFunc func(w *sim.World, d scenario.Director) (string, error)

// statusMsg is shown in the footer for a few seconds.
type statusMsg string

// Model is the Bubble Tea model for watching and steering a run.
type Model struct {
	drv      Driver
	frames   <-chan sim.Frame
	cancel   func()
	onSave   SaveFunc
	title    string
	screen   *core.Screen
	keys     KeyMap
	mapper   *KeyMapper
	help     help.Model
	frame    sim.Frame
	hasFrame bool
	zoom     float32
	width    int
	height   int

	// held tracks the last time each direction was pressed.
	held      [5]time.Time
	lastInput core.InputFrame

	status   string
	statusAt time.Time
	ended    bool
	quitting bool
}

// NewModel creates a viewer for drv. onSave may be nil.
func NewModel(drv Driver, title string, onSave SaveFunc, width, height int) Model {
	frames, cancel := drv.Subscribe(1)
	keys := DefaultKeyMap()
	h := help.New()
	h.ShowAll = false
	m := Model{
		drv:    drv,
		frames: frames,
		cancel: cancel,
		onSave: onSave,
		title:  title,
		keys:   keys,
		mapper: NewKeyMapper(keys),
		help:   h,
		zoom:   defaultZoom,
		width:  width,
		height: height,
	}
	m.screen = core.NewScreen(width, m.worldRows())
	return m
}

func (m Model) worldRows() int {
	rows := m.height - hudHeight - 1
	if m.frame.HUD.LevelUpPending {
		rows -= choiceRows
	}
	return max(rows, 1)
}

// Init starts the redraw ticker and the frame subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(viewerFPS), waitFrame(m.frames))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.screen.Resize(m.width, m.worldRows())
		return m, nil

	case frameMsg:
		m.frame = sim.Frame(msg)
		m.hasFrame = true
		m.screen.Resize(m.width, m.worldRows())
		return m, waitFrame(m.frames)

	case runEndedMsg:
		m.ended = true
		return m, nil

	case statusMsg:
		m.status = string(msg)
		m.statusAt = time.Now()
		return m, nil

	case TickMsg:
		m.sendHeld(time.Time(msg))
		if m.status != "" && time.Since(m.statusAt) > 3*time.Second {
			m.status = ""
		}
		return m, tickCmd(viewerFPS)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if idx := m.mapper.ChoiceIndex(msg); idx >= 0 {
		if m.frame.HUD.LevelUpPending && idx < len(m.frame.HUD.Choices) {
			return m, m.choose(idx)
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.ZoomIn):
		m.zoom = max(m.zoom/2, minZoom)
		return m, nil
	case key.Matches(msg, m.keys.ZoomOut):
		m.zoom = min(m.zoom*2, maxZoom)
		return m, nil
	case key.Matches(msg, m.keys.Stop):
		m.held = [5]time.Time{}
		m.sendHeld(time.Now())
		return m, nil
	}

	switch a := m.mapper.MapKey(msg); a {
	case core.ActionQuit:
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	case core.ActionPause:
		m.drv.SetPaused(!m.drv.Paused())
	case core.ActionSave:
		return m, m.save()
	case core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight:
		now := time.Now()
		m.held[a] = now
		// Opposite directions cancel the older press.
		switch a {
		case core.ActionUp:
			m.held[core.ActionDown] = time.Time{}
		case core.ActionDown:
			m.held[core.ActionUp] = time.Time{}
		case core.ActionLeft:
			m.held[core.ActionRight] = time.Time{}
		case core.ActionRight:
			m.held[core.ActionLeft] = time.Time{}
		}
		m.sendHeld(now)
	}
	return m, nil
}

// heldInput folds every direction pressed within holdWindow of now.
func (m *Model) heldInput(now time.Time) core.InputFrame {
	var in core.InputFrame
	for _, a := range []core.Action{core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight} {
		if t := m.held[a]; !t.IsZero() && now.Sub(t) <= holdWindow {
			in.Apply(a)
		}
	}
	return in
}

func (m *Model) sendHeld(now time.Time) {
	in := m.heldInput(now)
	if in != m.lastInput {
		m.drv.SendInput(in)
		m.lastInput = in
	}
}

func (m Model) choose(idx int) tea.Cmd {
	drv := m.drv
	return func() tea.Msg {
		errCh := make(chan error, 1)
		drv.Do(func(w *sim.World, d scenario.Director) { errCh <- d.Choose(w, idx) })
		select {
		case err := <-errCh:
			if err != nil {
				return statusMsg(err.Error())
			}
			return nil
		case <-time.After(time.Second):
			return statusMsg("runner busy")
		}
	}
}

func (m Model) save() tea.Cmd {
	if m.onSave == nil {
		return func() tea.Msg { return statusMsg("saving is disabled") }
	}
	drv, onSave := m.drv, m.onSave
	return func() tea.Msg {
		type result struct {
			name string
			err  error
		}
		resCh := make(chan result, 1)
		drv.Do(func(w *sim.World, d scenario.Director) {
			name, err := onSave(w, d)
			resCh <- result{name, err}
		})
		select {
		case r := <-resCh:
			if r.err != nil {
				return statusMsg("save failed: " + r.err.Error())
			}
			return statusMsg("saved " + r.name)
		case <-time.After(2 * time.Second):
			return statusMsg("runner busy")
		}
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.hasFrame {
		return dimStyle.Render("waiting for the first frame...")
	}

	DrawWorld(m.screen, m.frame, m.zoom)

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	if cards := RenderChoices(m.frame.HUD); cards != "" {
		b.WriteString(cards)
		b.WriteString("\n")
	}
	b.WriteString(RenderHUD(m.frame, m.width))
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) footer() string {
	var state string
	switch {
	case m.ended:
		state = titleStyle.Render("RUN OVER")
	case m.drv.Paused():
		state = titleStyle.Render("PAUSED")
	default:
		state = dimStyle.Render(m.title)
	}
	parts := []string{state}
	if m.status != "" {
		parts = append(parts, hudStyle.Render(m.status))
	}
	parts = append(parts, dimStyle.Render(m.help.View(m.keys)))
	return strings.Join(parts, "  ")
}

// Ended reports whether the run finished while the viewer was open.
func (m Model) Ended() bool { return m.ended }

// Run starts the Bubble Tea program with a viewer for drv.
func Run(drv Driver, title string, onSave SaveFunc, width, height int) error {
	model := NewModel(drv, title, onSave, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
