// Package proximity turns the geometry of this window and of the most
// recently seen other window into a target position for the marker.
package proximity

import (
	"math"

	"github.com/iburimskiy/window-sync/internal/config"
	"github.com/iburimskiy/window-sync/internal/geometry"
)

// Params tunes the resolver. Distances are in screen units.
type Params struct {
	EdgeMargin         float64
	ProximityThreshold float64
	VerticalThreshold  float64
	VerticalGain       float64
	AttractGlow        float64
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		EdgeMargin:         config.EdgeMargin,
		ProximityThreshold: config.ProximityThreshold,
		VerticalThreshold:  config.VerticalThreshold,
		VerticalGain:       config.VerticalGain,
		AttractGlow:        config.AttractGlow,
	}
}

// Input is everything Resolve looks at.
type Input struct {
	Mine, Other geometry.Rect
	// Center is the default marker position in drawing-surface coordinates.
	CenterX, CenterY float64
	// Width of the drawing surface.
	Width  float64
	Radius float64
}

// Target is the resolved marker destination. Glow is zero when the marker
// is not attracted to a wall.
type Target struct {
	X, Y float64
	Glow float64
}

// Attracted reports whether the target hugs a wall.
func (t Target) Attracted() bool { return t.Glow > 0 }

// Resolve computes the marker target.
//
// Horizontally the marker hugs the wall shared with the other window when the
// facing edges are closer than ProximityThreshold. The right-hand neighbour is
// checked first and the left-hand one second; if both hold, the left wall wins.
// Vertically the marker follows VerticalGain of the difference between the
// windows' top edges when that difference is under VerticalThreshold.
func Resolve(in Input, p Params) Target {
	t := Target{X: in.CenterX, Y: in.CenterY}

	if near(in.Mine.Right(), in.Other.Left(), p.ProximityThreshold) {
		t.X = in.Width - in.Radius - p.EdgeMargin
		t.Glow = p.AttractGlow
	}
	if near(in.Mine.Left(), in.Other.Right(), p.ProximityThreshold) {
		t.X = in.Radius + p.EdgeMargin
		t.Glow = p.AttractGlow
	}

	dy := float64(in.Other.Top() - in.Mine.Top())
	if math.Abs(dy) < p.VerticalThreshold {
		t.Y = in.CenterY + dy*p.VerticalGain
	}
	return t
}

func near(a, b int, threshold float64) bool {
	return math.Abs(float64(a-b)) < threshold
}
