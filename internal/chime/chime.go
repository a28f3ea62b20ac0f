// Package chime plays a short tone whenever the marker glow flashes.
package chime

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

const (
	SampleRate = beep.SampleRate(44100)

	toneFreq     = 660.0
	toneLength   = 250 * time.Millisecond
	toneDecay    = 14.0
	maxAmplitude = 0.35
)

// Chime turns glow flashes into tones handed to play.
type Chime struct {
	sr   beep.SampleRate
	play func(...beep.Streamer)
}

// New returns a Chime at sample rate sr. play is usually speaker.Play.
func New(sr beep.SampleRate, play func(...beep.Streamer)) *Chime {
	return &Chime{sr: sr, play: play}
}

// Flash plays a tone whose loudness follows intensity in [0, 1].
func (c *Chime) Flash(intensity float64) {
	if c == nil || c.play == nil || intensity <= 0 {
		return
	}
	c.play(Tone(c.sr, toneFreq, toneLength, maxAmplitude*math.Min(intensity, 1)))
}

// Tone is an exponentially decaying sine of the given length.
func Tone(sr beep.SampleRate, freq float64, length time.Duration, volume float64) beep.Streamer {
	total := sr.N(length)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= total {
			return 0, false
		}
		for n = range samples {
			if pos >= total {
				return n, true
			}
			t := float64(pos) / float64(sr)
			v := volume * math.Exp(-toneDecay*t) * math.Sin(2*math.Pi*freq*t)
			samples[n] = [2]float64{v, v}
			pos++
		}
		return len(samples), true
	})
}
