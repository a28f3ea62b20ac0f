package marker

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a "#rrggbb" colour into an opaque RGBA.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// Adjust adds amount to each colour channel, clamping to [0, 255]. Alpha is
// kept.
func Adjust(c color.RGBA, amount int) color.RGBA {
	return color.RGBA{
		R: clampChannel(int(c.R) + amount),
		G: clampChannel(int(c.G) + amount),
		B: clampChannel(int(c.B) + amount),
		A: c.A,
	}
}

// Darken is Adjust with a negated amount.
func Darken(c color.RGBA, amount int) color.RGBA {
	return Adjust(c, -amount)
}

// WithAlpha returns c with alpha a, as a premultiplied color.RGBA.
func WithAlpha(c color.RGBA, a uint8) color.RGBA {
	scale := func(v uint8) uint8 { return uint8(uint16(v) * uint16(a) / 0xff) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: a}
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
