// Package marker owns the animated marker: where it is, where it is heading
// and its transient glow and pulse.
package marker

import (
	"image/color"
	"math"

	"github.com/iburimskiy/window-sync/internal/config"
	"github.com/iburimskiy/window-sync/internal/proximity"
)

// State is the per-frame marker state read by the renderer.
type State struct {
	X, Y   float64
	Radius float64
	Color  color.RGBA
	// Glow is in [0, 1]; Pulse is a phase in [0, 2π).
	Glow  float64
	Pulse float64
}

// Motion holds the per-frame rates.
type Motion struct {
	Easing    float64
	GlowDecay float64
	PulseStep float64
}

func DefaultMotion() Motion {
	return Motion{
		Easing:    config.EasingFactor,
		GlowDecay: config.GlowDecay,
		PulseStep: config.PulseStep,
	}
}

// Animator advances the marker toward its target once per frame.
type Animator struct {
	state  State
	motion Motion

	targetX, targetY float64
	centerX, centerY float64
	width, height    float64
	influenced       bool
}

// NewAnimator places the marker, and its target, at the centre of a
// width x height drawing surface.
func NewAnimator(width, height int, radius float64, c color.RGBA, m Motion) *Animator {
	a := &Animator{motion: m}
	a.setSize(width, height)
	a.state = State{X: a.centerX, Y: a.centerY, Radius: radius, Color: c}
	a.targetX, a.targetY = a.centerX, a.centerY
	return a
}

// State returns the current frame state.
func (a *Animator) State() State { return a.state }

// Target returns the position the marker eases toward.
func (a *Animator) Target() (x, y float64) { return a.targetX, a.targetY }

// Center returns the default marker position.
func (a *Animator) Center() (x, y float64) { return a.centerX, a.centerY }

// Size returns the drawing surface size.
func (a *Animator) Size() (width, height float64) { return a.width, a.height }

// Influenced reports whether the target was last set by a remote update.
func (a *Animator) Influenced() bool { return a.influenced }

// Step advances one frame.
func (a *Animator) Step() {
	a.state.X += (a.targetX - a.state.X) * a.motion.Easing
	a.state.Y += (a.targetY - a.state.Y) * a.motion.Easing
	a.state.Glow = math.Max(0, a.state.Glow-a.motion.GlowDecay)
	a.state.Pulse = math.Mod(a.state.Pulse+a.motion.PulseStep, 2*math.Pi)
}

// Click recenters the target and flashes the glow, dropping any remote
// influence.
func (a *Animator) Click() {
	a.targetX, a.targetY = a.centerX, a.centerY
	a.state.Glow = 1
	a.influenced = false
}

// Resize recomputes the default centre. The target follows the new centre
// only while no remote update is in effect.
func (a *Animator) Resize(width, height int) {
	a.setSize(width, height)
	if !a.influenced {
		a.targetX, a.targetY = a.centerX, a.centerY
	}
}

// Apply sets the target from a resolved remote update and raises the glow
// when the marker is attracted to a wall.
func (a *Animator) Apply(t proximity.Target) {
	a.targetX, a.targetY = t.X, t.Y
	a.influenced = true
	if t.Attracted() {
		a.state.Glow = clamp01(t.Glow)
	}
}

// ResolveInput fills the drawing-surface part of a resolver input.
func (a *Animator) ResolveInput(in proximity.Input) proximity.Input {
	in.CenterX, in.CenterY = a.centerX, a.centerY
	in.Width = a.width
	in.Radius = a.state.Radius
	return in
}

func (a *Animator) setSize(width, height int) {
	a.width, a.height = float64(max(width, 0)), float64(max(height, 0))
	a.centerX, a.centerY = a.width/2, a.height/2
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
