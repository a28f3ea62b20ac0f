// Package game runs the marker as an ebiten game: one Update per frame
// advances the animation and applies the latest remote geometry, Draw
// renders it.
package game

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/iburimskiy/window-sync/internal/geometry"
	"github.com/iburimskiy/window-sync/internal/marker"
	"github.com/iburimskiy/window-sync/internal/proximity"
	"github.com/iburimskiy/window-sync/internal/render"
)

// Remote is the receiving side of the broadcast channel.
type Remote interface {
	ID() string
	Next() (geometry.Snapshot, bool)
	Other() (geometry.Snapshot, bool)
}

// Flasher is told about glow flashes.
type Flasher interface {
	Flash(intensity float64)
}

// Options configures a Game. Zero values take the defaults.
type Options struct {
	Background color.Color
	Style      *render.Style
	Params     *proximity.Params
	Overlay    bool
	Chime      Flasher
	Now        func() time.Time
}

type Game struct {
	anim   *marker.Animator
	remote Remote
	window geometry.Window

	style      render.Style
	params     proximity.Params
	background color.Color
	overlay    bool
	chime      Flasher
	now        func() time.Time

	// attracted tracks the last resolved target so the chime only fires on
	// the way in.
	attracted bool

	// size applied to the animator
	width, height int

	sizeMu           sync.Mutex
	layoutW, layoutH int
}

func New(anim *marker.Animator, remote Remote, window geometry.Window, opts Options) *Game {
	w, h := anim.Size()
	g := &Game{
		anim:       anim,
		remote:     remote,
		window:     window,
		style:      render.DefaultStyle(),
		params:     proximity.DefaultParams(),
		background: color.Black,
		overlay:    opts.Overlay,
		chime:      opts.Chime,
		now:        opts.Now,
		width:      int(w),
		height:     int(h),
		layoutW:    int(w),
		layoutH:    int(h),
	}
	if opts.Style != nil {
		g.style = *opts.Style
	}
	if opts.Params != nil {
		g.params = *opts.Params
	}
	if opts.Background != nil {
		g.background = opts.Background
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	g.tick(inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft))
	return nil
}

// tick is one frame of game logic.
func (g *Game) tick(clicked bool) {
	g.sizeMu.Lock()
	w, h := g.layoutW, g.layoutH
	g.sizeMu.Unlock()
	if (w != g.width || h != g.height) && w > 0 && h > 0 {
		g.width, g.height = w, h
		g.anim.Resize(w, h)
	}

	if snap, ok := g.remote.Next(); ok {
		g.retarget(snap)
	}

	// A click wins over a remote update arriving in the same frame.
	if clicked {
		g.anim.Click()
		g.attracted = false
		g.flash(1)
	}

	g.anim.Step()
}

func (g *Game) retarget(other geometry.Snapshot) {
	in := g.anim.ResolveInput(proximity.Input{
		Mine:  geometry.RectOf(g.window),
		Other: other.Rect(),
	})
	t := proximity.Resolve(in, g.params)
	g.anim.Apply(t)

	if t.Attracted() && !g.attracted {
		g.flash(t.Glow)
	}
	g.attracted = t.Attracted()
}

func (g *Game) flash(intensity float64) {
	if g.chime != nil {
		g.chime.Flash(intensity)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.style.Draw(render.NewScreen(screen, g.background), g.anim.State())

	if g.overlay {
		ebitenutil.DebugPrintAt(screen, g.status(), 12, 12)
	}
}

// status is the overlay line.
func (g *Game) status() string {
	s := "id " + shortID(g.remote.ID())
	if other, ok := g.remote.Other(); ok {
		s += fmt.Sprintf(" | peer %s seen %s ago", shortID(other.ID), formatDuration(g.now().Sub(other.Time())))
	} else {
		s += " | no peer yet"
	}
	tx, ty := g.anim.Target()
	s += fmt.Sprintf(" | target (%.0f, %.0f)", tx, ty)
	if g.anim.Influenced() {
		s += " remote"
	}
	return s
}

// Layout keeps the drawing surface the size of the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.sizeMu.Lock()
	g.layoutW, g.layoutH = outsideWidth, outsideHeight
	g.sizeMu.Unlock()
	return outsideWidth, outsideHeight
}

// HostWindow reads the geometry of the ebiten window. ebiten only reports
// the client area, so OuterSize leaves out the window decorations and the
// gap to a neighbour is measured between client areas.
type HostWindow struct{}

func (HostWindow) ScreenPosition() (int, int) { return ebiten.WindowPosition() }
func (HostWindow) OuterSize() (int, int)      { return ebiten.WindowSize() }
