package core

import (
	"math"
	"testing"
)

func TestCircleOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Circle
		expected bool
	}{
		{
			name:     "overlapping",
			a:        Circle{X: 0, Y: 0, Radius: 10},
			b:        Circle{X: 15, Y: 0, Radius: 10},
			expected: true,
		},
		{
			name:     "far apart",
			a:        Circle{X: 0, Y: 0, Radius: 10},
			b:        Circle{X: 100, Y: 100, Radius: 10},
			expected: false,
		},
		{
			name:     "touching is not overlapping",
			a:        Circle{X: 0, Y: 0, Radius: 10},
			b:        Circle{X: 20, Y: 0, Radius: 10},
			expected: false,
		},
		{
			name:     "concentric",
			a:        Circle{X: 5, Y: 5, Radius: 1},
			b:        Circle{X: 5, Y: 5, Radius: 50},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.expected {
				t.Errorf("Overlaps() = %v, expected %v", got, tt.expected)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.expected {
				t.Errorf("Overlaps() reversed = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestVec2Normalize(t *testing.T) {
	v := Vec2{X: 3, Y: 4}.Normalize()
	if math.Abs(float64(v.Len()-1)) > 1e-6 {
		t.Errorf("Normalize().Len() = %f, expected 1", v.Len())
	}
	if v.X <= 0 || v.Y <= 0 {
		t.Errorf("Normalize() flipped direction: %+v", v)
	}

	zero := Vec2{}.Normalize()
	if zero != (Vec2{}) {
		t.Errorf("zero vector Normalize() = %+v, expected zero", zero)
	}
}

func TestClamp32(t *testing.T) {
	tests := []struct {
		val, min, max, expected float32
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{5, 8, 2, 8}, // inverted bounds: min wins
	}

	for _, tt := range tests {
		if got := Clamp32(tt.val, tt.min, tt.max); got != tt.expected {
			t.Errorf("Clamp32(%v, %v, %v) = %v, expected %v", tt.val, tt.min, tt.max, got, tt.expected)
		}
	}
}

func TestInputFrameDirection(t *testing.T) {
	in := InputFrame{DX: 1, DY: 1}
	d := in.Direction()
	if math.Abs(float64(d.Len()-1)) > 1e-6 {
		t.Errorf("diagonal input should normalize to unit length, got %f", d.Len())
	}

	if !(InputFrame{}).IsZero() {
		t.Error("empty frame should be zero")
	}

	var f InputFrame
	f.Apply(ActionLeft)
	f.Apply(ActionDown)
	if f.DX != -1 || f.DY != 1 {
		t.Errorf("Apply() = %+v, expected {-1 1}", f)
	}
	f.Apply(ActionPause)
	if f.DX != -1 || f.DY != 1 {
		t.Errorf("non-directional Apply() changed frame: %+v", f)
	}
}

func TestRuntimeConfigTickMs(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.TickMs(); math.Abs(got-1000.0/60.0) > 1e-9 {
		t.Errorf("TickMs() = %f, expected %f", got, 1000.0/60.0)
	}
	cfg.TickRate = 0
	if got := cfg.TickMs(); got <= 0 {
		t.Errorf("TickMs() with zero rate = %f, expected positive fallback", got)
	}
}
