package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/scenario"
	"github.com/vovakirdan/horde/internal/sim"
	"github.com/vovakirdan/horde/internal/storage"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestKeyMapper(t *testing.T) {
	km := NewKeyMapper(DefaultKeyMap())
	tests := []struct {
		msg  tea.KeyMsg
		want core.Action
	}{
		{runeKey('w'), core.ActionUp},
		{tea.KeyMsg{Type: tea.KeyDown}, core.ActionDown},
		{runeKey('a'), core.ActionLeft},
		{tea.KeyMsg{Type: tea.KeyRight}, core.ActionRight},
		{runeKey('p'), core.ActionPause},
		{tea.KeyMsg{Type: tea.KeyCtrlS}, core.ActionSave},
		{runeKey('q'), core.ActionQuit},
		{runeKey('x'), core.ActionNone},
	}
	for _, tt := range tests {
		if got := km.MapKey(tt.msg); got != tt.want {
			t.Errorf("MapKey(%q) = %v, expected %v", tt.msg.String(), got, tt.want)
		}
	}

	if got := km.ChoiceIndex(runeKey('2')); got != 1 {
		t.Errorf("ChoiceIndex('2') = %d, expected 1", got)
	}
	if got := km.ChoiceIndex(runeKey('w')); got != -1 {
		t.Errorf("ChoiceIndex('w') = %d, expected -1", got)
	}
}

func testFrame() sim.Frame {
	return sim.Frame{
		FrameID: 7,
		MapW:    4096, MapH: 4096,
		PlayerX: 2000, PlayerY: 2000,
		Enemies: []sim.Sprite{{X: 2032, Y: 2000, Kind: 0}},
		Bullets: []sim.Sprite{{X: 2000, Y: 2064, Kind: entity.BulletKindRock}},
		Items:   []sim.Sprite{{X: 1968, Y: 2000, Kind: uint8(entity.ItemPotion)}},
		Boss:    &sim.BossInfo{X: 1840, Y: 2000, Radius: 10, HP: 50, MaxHP: 100},
		HUD: sim.FrameHUD{
			HP: 80, MaxHP: 100, Score: 1234, Kills: 56, Level: 3,
			Exp: 2, ExpToNext: 10, ElapsedSeconds: 75,
			Weapons: []sim.WeaponLevel{{KindID: 0, Name: "magic_wand", Level: 2}},
		},
	}
}

func TestDrawWorld(t *testing.T) {
	s := core.NewScreen(80, 20)
	DrawWorld(s, testFrame(), 16)

	checks := []struct {
		name string
		x, y int
		want rune
	}{
		{"player", 40, 10, playerGlyph},
		{"enemy", 42, 10, 's'},
		{"potion", 38, 10, '+'},
		{"rock", 40, 12, 'o'},
		{"boss", 30, 10, bossGlyph},
	}
	for _, c := range checks {
		if got := s.Get(c.x, c.y); got != c.want {
			t.Errorf("%s at (%d,%d) = %q, expected %q", c.name, c.x, c.y, got, c.want)
		}
	}
}

func TestDrawWorldFlashesPlayer(t *testing.T) {
	s := core.NewScreen(20, 10)
	f := testFrame()
	f.HUD.ScreenFlashAlpha = 0.5
	DrawWorld(s, f, 16)
	if c := s.GetCell(10, 5); c.Color != core.ColorBrightRed {
		t.Errorf("player color during flash = %v, expected bright red", c.Color)
	}
}

func TestRenderHUD(t *testing.T) {
	out := RenderHUD(testFrame(), 120)
	for _, want := range []string{"score 1234", "kills 56", "Lv3", "01:15", "magic_wand:2", "BOSS"} {
		if !strings.Contains(out, want) {
			t.Errorf("HUD missing %q:\n%s", want, out)
		}
	}
}

func TestRenderChoices(t *testing.T) {
	h := sim.FrameHUD{}
	if got := RenderChoices(h); got != "" {
		t.Errorf("RenderChoices without level-up = %q, expected empty", got)
	}
	h.LevelUpPending = true
	h.Choices = []string{"weapon_0", "weapon_4"}
	h.UpgradeDescs = [][]string{{"DMG: 10 -> 12"}, {"Radius: 80 -> 95"}}
	out := RenderChoices(h)
	for _, want := range []string{"LEVEL UP", "[1] weapon_0", "[2] weapon_4", "DMG: 10 -> 12"} {
		if !strings.Contains(out, want) {
			t.Errorf("choices missing %q:\n%s", want, out)
		}
	}
}

type fakeDriver struct {
	frames chan sim.Frame
	inputs []core.InputFrame
	paused bool
	cmds   int
}

func (d *fakeDriver) Subscribe(int) (<-chan sim.Frame, func()) { return d.frames, func() {} }
func (d *fakeDriver) SendInput(in core.InputFrame)             { d.inputs = append(d.inputs, in) }
func (d *fakeDriver) SetPaused(p bool)                          { d.paused = p }
func (d *fakeDriver) Paused() bool                              { return d.paused }
func (d *fakeDriver) Do(func(*sim.World, scenario.Director))    { d.cmds++ }

func TestModelInputAndPause(t *testing.T) {
	drv := &fakeDriver{frames: make(chan sim.Frame)}
	var m tea.Model = NewModel(drv, "swarm", nil, 80, 30)

	m, _ = m.Update(frameMsg(testFrame()))
	if !strings.Contains(m.View(), "score 1234") {
		t.Error("view does not show the frame HUD")
	}

	m, _ = m.Update(runeKey('d'))
	m, _ = m.Update(runeKey('w'))
	if len(drv.inputs) != 2 {
		t.Fatalf("sent %d inputs, expected 2", len(drv.inputs))
	}
	if got := drv.inputs[1]; got.DX != 1 || got.DY != -1 {
		t.Errorf("held input = %+v, expected up-right", got)
	}

	// Held keys expire after the hold window
	m, _ = m.Update(TickMsg(time.Now().Add(time.Second)))
	if got := drv.inputs[len(drv.inputs)-1]; !got.IsZero() {
		t.Errorf("input after hold window = %+v, expected zero", got)
	}

	m, _ = m.Update(runeKey('p'))
	if !drv.paused {
		t.Error("p did not pause the driver")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view does not show PAUSED")
	}

	m, _ = m.Update(runEndedMsg{})
	if !m.(Model).Ended() {
		t.Error("model not marked ended")
	}
}

func TestModelChoiceOnlyWhenPending(t *testing.T) {
	drv := &fakeDriver{frames: make(chan sim.Frame)}
	var m tea.Model = NewModel(drv, "swarm", nil, 80, 30)
	m, _ = m.Update(frameMsg(testFrame()))

	_, cmd := m.Update(runeKey('1'))
	if cmd != nil {
		t.Error("choice key without a pending level-up produced a command")
	}

	f := testFrame()
	f.HUD.LevelUpPending = true
	f.HUD.Choices = []string{"weapon_0"}
	m, _ = m.Update(frameMsg(f))
	if _, cmd = m.Update(runeKey('1')); cmd == nil {
		t.Error("choice key with a pending level-up produced no command")
	}
}

func TestBoardRows(t *testing.T) {
	runs := []storage.RunRecord{
		{Score: 500, Kills: 40, Elapsed: 125, AvgMs: 1.234, EndReason: "completed", CreatedAt: time.Date(2025, 3, 4, 5, 6, 0, 0, time.UTC)},
	}
	rows := BoardRows(runs)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, expected 1", len(rows))
	}
	want := []string{"1", "500", "40", "2:05", "1.23", "completed", "Mar 04 05:06"}
	for i, w := range want {
		if rows[0][i] != w {
			t.Errorf("column %d = %q, expected %q", i, rows[0][i], w)
		}
	}
}
