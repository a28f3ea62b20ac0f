// Package render draws the marker on an immediate-mode canvas.
package render

import (
	"image/color"
	"math"

	"github.com/iburimskiy/window-sync/internal/config"
	"github.com/iburimskiy/window-sync/internal/marker"
)

// Fill is a radial gradient from Inner at the centre to Outer at the rim.
// A solid fill has Inner == Outer.
type Fill struct {
	Inner, Outer color.RGBA
}

// Solid returns a single-colour fill.
func Solid(c color.RGBA) Fill { return Fill{Inner: c, Outer: c} }

// Canvas is the drawing surface. SetGlow applies to every following
// DrawFilledCircle until it is reset with a zero blur.
type Canvas interface {
	Clear()
	SetGlow(c color.RGBA, blur float64)
	DrawFilledCircle(x, y, radius float64, fill Fill)
}

// Style holds the renderer's look.
type Style struct {
	PulseAmp     float64
	DarkenAmount int
	HaloGrow     float64
	HaloAlpha    uint8
	HaloBlur     float64
}

func DefaultStyle() Style {
	return Style{
		PulseAmp:     config.PulseAmp,
		DarkenAmount: config.DarkenAmount,
		HaloGrow:     config.HaloGrow,
		HaloAlpha:    config.HaloAlpha,
		HaloBlur:     config.HaloBlur,
	}
}

// Radius returns the breathing radius for s.
func (st Style) Radius(s marker.State) float64 {
	return s.Radius + math.Sin(s.Pulse)*st.PulseAmp
}

// Draw renders one frame of s onto c.
func (st Style) Draw(c Canvas, s marker.State) {
	c.Clear()

	r := st.Radius(s)
	c.DrawFilledCircle(s.X, s.Y, r, Fill{
		Inner: s.Color,
		Outer: marker.Darken(s.Color, st.DarkenAmount),
	})

	if s.Glow > 0 {
		c.SetGlow(s.Color, st.HaloBlur*s.Glow)
		c.DrawFilledCircle(s.X, s.Y, r+st.HaloGrow, Solid(marker.WithAlpha(s.Color, st.HaloAlpha)))
		c.SetGlow(color.RGBA{}, 0)
	}
}
