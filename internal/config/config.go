package config

import "time"

const (
	WindowWidth  = 800
	WindowHeight = 600
	WindowTitle  = "Window Sync - drag another instance next to this one, click to recenter"

	// Shared channel
	BroadcastKey      = "window-sync"
	BroadcastInterval = 100 * time.Millisecond
	StorePollInterval = 50 * time.Millisecond

	// Marker
	MarkerRadius = 30
	MarkerColor  = "#00ffff"

	// Animation parameters, per frame
	EasingFactor = 0.08
	GlowDecay    = 0.02
	PulseStep    = 0.05
	PulseAmp     = 2

	// Rendering
	DarkenAmount = 30
	HaloGrow     = 5
	HaloAlpha    = 0x40
	HaloBlur     = 20

	// Proximity resolver
	EdgeMargin         = 30
	ProximityThreshold = 100
	VerticalThreshold  = 200
	VerticalGain       = 0.3
	AttractGlow        = 0.8
)
