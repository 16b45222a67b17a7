package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/sim"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// enemyGlyphs is indexed by render kind.
var enemyGlyphs = []struct {
	r rune
	c core.Color
}{
	{'s', core.ColorGreen},
	{'v', core.ColorMagenta},
	{'G', core.ColorWhite},
	{'g', core.ColorCyan},
	{'k', core.ColorBrightWhite},
}

const (
	playerGlyph = '@'
	bossGlyph   = 'B'
)

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// DrawWorld draws f into s centered on the player. cellW is how many
// world pixels one terminal column covers; rows cover twice that.
// Later layers overwrite earlier ones: obstacles, items, particles,
// enemies, bullets, boss, player.
func DrawWorld(s *core.Screen, f sim.Frame, cellW float32) {
	s.Clear()
	vp := core.Viewport{
		Area:    core.NewRect(0, 0, s.Width(), s.Height()),
		CenterX: f.PlayerX,
		CenterY: f.PlayerY,
		CellW:   cellW,
	}
	put := func(x, y float32, r rune, c core.Color) {
		if sx, sy, ok := vp.Project(x, y); ok {
			s.Set(sx, sy, r, c)
		}
	}

	drawBorder(s, vp, f.MapW, f.MapH)

	for _, o := range f.Obstacles {
		fillDisc(s, vp, o.X, o.Y, o.Radius, '#', core.ColorGray)
	}
	for _, it := range f.Items {
		switch entity.ItemKind(it.Kind) {
		case entity.ItemPotion:
			put(it.X, it.Y, '+', core.ColorBrightRed)
		case entity.ItemMagnet:
			put(it.X, it.Y, 'U', core.ColorBrightMagenta)
		default:
			put(it.X, it.Y, '*', core.ColorBrightCyan)
		}
	}
	for _, p := range f.Particles {
		put(p.X, p.Y, '.', core.ColorFromRGBA(p.Color))
	}
	for _, e := range f.Enemies {
		g := enemyGlyphs[int(e.Kind)%len(enemyGlyphs)]
		put(e.X, e.Y, g.r, g.c)
	}
	for _, b := range f.Bullets {
		switch b.Kind {
		case entity.BulletKindRock:
			put(b.X, b.Y, 'o', core.ColorOrange)
		case entity.BulletKindFireball:
			put(b.X, b.Y, '*', core.ColorOrange)
		case entity.BulletKindWhip:
			put(b.X, b.Y, '~', core.ColorBrightWhite)
		case entity.BulletKindLightning:
			put(b.X, b.Y, '%', core.ColorBrightBlue)
		default:
			put(b.X, b.Y, '-', core.ColorBrightYellow)
		}
	}
	if f.Boss != nil {
		fillDisc(s, vp, f.Boss.X, f.Boss.Y, f.Boss.Radius, bossGlyph, bossColor(f.Boss))
	}

	pc := core.ColorBrightWhite
	if f.HUD.ScreenFlashAlpha > 0.25 {
		pc = core.ColorBrightRed
	}
	put(f.PlayerX, f.PlayerY, playerGlyph, pc)
}

func bossColor(b *sim.BossInfo) core.Color {
	if b.Invincible {
		return core.ColorBrightBlue
	}
	return core.ColorRed
}

// fillDisc marks every cell whose center lies within r of (cx, cy). A
// disc smaller than one cell still gets its center cell.
func fillDisc(s *core.Screen, vp core.Viewport, cx, cy, r float32, ch rune, c core.Color) {
	if sx, sy, ok := vp.Project(cx, cy); ok {
		s.Set(sx, sy, ch, c)
	}
	cellH := vp.CellW * 2
	for y := cy - r; y <= cy+r; y += cellH {
		for x := cx - r; x <= cx+r; x += vp.CellW {
			if dx, dy := x-cx, y-cy; dx*dx+dy*dy <= r*r {
				if sx, sy, ok := vp.Project(x, y); ok {
					s.Set(sx, sy, ch, c)
				}
			}
		}
	}
}

// drawBorder outlines the map edges that fall inside the viewport.
func drawBorder(s *core.Screen, vp core.Viewport, mapW, mapH float32) {
	for x := range s.Width() {
		for _, wy := range [2]float32{0, mapH} {
			wx := vp.CenterX + (float32(x)-float32(vp.Area.W)/2)*vp.CellW
			if wx < 0 || wx > mapW {
				continue
			}
			if sx, sy, ok := vp.Project(wx, wy); ok {
				s.Set(sx, sy, '=', core.ColorGray)
			}
		}
	}
	for y := range s.Height() {
		for _, wx := range [2]float32{0, mapW} {
			wy := vp.CenterY + (float32(y)-float32(vp.Area.H)/2)*vp.CellW*2
			if wy < 0 || wy > mapH {
				continue
			}
			if sx, sy, ok := vp.Project(wx, wy); ok {
				s.Set(sx, sy, '|', core.ColorGray)
			}
		}
	}
}

var (
	hudStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	hpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	expStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	bossStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("57")).
			Padding(0, 1)
)

// bar renders a width-cell gauge filled to v/maxV.
func bar(v, maxV float32, width int) string {
	if maxV <= 0 || width <= 0 {
		return strings.Repeat("░", max(width, 0))
	}
	n := int(core.Clamp32(v/maxV, 0, 1) * float32(width))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

// RenderHUD renders the status lines shown under the world.
func RenderHUD(f sim.Frame, width int) string {
	h := f.HUD
	secs := int(h.ElapsedSeconds)
	line1 := fmt.Sprintf("%s %s %3.0f/%-3.0f  %s %s Lv%d  score %d  kills %d  %02d:%02d",
		hpStyle.Render("HP"), hpStyle.Render(bar(h.HP, h.MaxHP, 12)), max(h.HP, 0), h.MaxHP,
		expStyle.Render("XP"), expStyle.Render(bar(float32(h.Exp), float32(h.ExpToNext), 8)), h.Level,
		h.Score, h.Kills, secs/60, secs%60)

	weapons := make([]string, len(h.Weapons))
	for i, wl := range h.Weapons {
		weapons[i] = fmt.Sprintf("%s:%d", wl.Name, wl.Level)
	}
	line2 := dimStyle.Render(fmt.Sprintf("enemies %d  bullets %d  items %d  [%s]",
		h.EnemyCount, h.BulletCount, h.ItemCount, strings.Join(weapons, " ")))
	if h.MagnetTimer > 0 {
		line2 += expStyle.Render(fmt.Sprintf("  magnet %.0fs", h.MagnetTimer))
	}

	lines := []string{hudStyle.Width(width).Render(line1), line2}
	if b := f.Boss; b != nil {
		lines = append(lines, bossStyle.Render(fmt.Sprintf("BOSS %s %.0f/%.0f", bar(b.HP, b.MaxHP, 30), max(b.HP, 0), b.MaxHP)))
	}
	return strings.Join(lines, "\n")
}

// RenderChoices renders the level-up cards, or "" when none are pending.
func RenderChoices(h sim.FrameHUD) string {
	if !h.LevelUpPending || len(h.Choices) == 0 {
		return ""
	}
	cards := make([]string, len(h.Choices))
	for i, c := range h.Choices {
		body := []string{titleStyle.Render(fmt.Sprintf("[%d] %s", i+1, c))}
		if i < len(h.UpgradeDescs) {
			body = append(body, h.UpgradeDescs[i]...)
		}
		cards[i] = cardStyle.Render(strings.Join(body, "\n"))
	}
	return titleStyle.Render("LEVEL UP") + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}
