package core

// Color represents a foreground color for a screen cell.
// The terminal viewer maps each value to a lipgloss style.
type Color uint8

// Predefined colors for world elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// ColorFromRGBA picks the closest palette entry for a particle color given
// as [r, g, b, a] in 0..1. Alpha is ignored.
func ColorFromRGBA(c [4]float32) Color {
	r, g, b := c[0] > 0.5, c[1] > 0.5, c[2] > 0.5
	switch {
	case r && g && b:
		return ColorBrightWhite
	case r && g:
		return ColorBrightYellow
	case r && b:
		return ColorBrightMagenta
	case g && b:
		return ColorBrightCyan
	case r && c[1] > 0.25:
		return ColorOrange
	case r:
		return ColorBrightRed
	case g:
		return ColorBrightGreen
	case b:
		return ColorBrightBlue
	default:
		return ColorGray
	}
}
