package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/window-sync/internal/marker"
)

const (
	gradientBands = 12
	glowBands     = 8
)

// Screen is a Canvas on an ebiten image.
type Screen struct {
	dst        *ebiten.Image
	background color.Color

	glow color.RGBA
	blur float64
}

func NewScreen(dst *ebiten.Image, background color.Color) *Screen {
	return &Screen{dst: dst, background: background}
}

func (s *Screen) Clear() {
	s.dst.Fill(s.background)
}

func (s *Screen) SetGlow(c color.RGBA, blur float64) {
	s.glow, s.blur = c, blur
}

// DrawFilledCircle approximates the radial gradient with concentric bands,
// outermost first. An active glow is drawn underneath as fading rings.
func (s *Screen) DrawFilledCircle(x, y, radius float64, fill Fill) {
	if radius <= 0 {
		return
	}
	if s.blur > 0 {
		for i := glowBands; i >= 1; i-- {
			t := float64(i) / glowBands
			a := uint8(float64(s.glow.A) * (1 - t) / 2)
			vector.DrawFilledCircle(s.dst, float32(x), float32(y), float32(radius+s.blur*t), marker.WithAlpha(s.glow, a), true)
		}
	}

	if fill.Inner == fill.Outer {
		vector.DrawFilledCircle(s.dst, float32(x), float32(y), float32(radius), fill.Inner, true)
		return
	}
	for i := gradientBands; i >= 1; i-- {
		t := float64(i) / gradientBands
		vector.DrawFilledCircle(s.dst, float32(x), float32(y), float32(radius*t), lerp(fill.Inner, fill.Outer, t), true)
	}
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
