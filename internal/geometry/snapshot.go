// Package geometry captures the on-screen rectangle of one instance and
// encodes it for the shared store.
package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrMalformed is returned by Decode for payloads that are not a snapshot.
var ErrMalformed = errors.New("malformed geometry snapshot")

// Window exposes the read-only screen geometry of the host window.
type Window interface {
	ScreenPosition() (x, y int)
	OuterSize() (width, height int)
}

// Rect is a screen rectangle in screen coordinates.
type Rect struct {
	X, Y          int
	Width, Height int
}

func (r Rect) Left() int   { return r.X }
func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Top() int    { return r.Y }
func (r Rect) Bottom() int { return r.Y + r.Height }

// RectOf reads the current rectangle of w.
func RectOf(w Window) Rect {
	x, y := w.ScreenPosition()
	width, height := w.OuterSize()
	return Rect{X: x, Y: y, Width: max(width, 0), Height: max(height, 0)}
}

// Snapshot is one broadcast of an instance's geometry. Its JSON form is
// {id, screenX, screenY, outerWidth, outerHeight, timestamp}.
type Snapshot struct {
	ID          string `json:"id"`
	ScreenX     int    `json:"screenX"`
	ScreenY     int    `json:"screenY"`
	OuterWidth  int    `json:"outerWidth"`
	OuterHeight int    `json:"outerHeight"`
	Timestamp   int64  `json:"timestamp"`
}

// NewInstanceID returns a random session id.
func NewInstanceID() string {
	return uuid.NewString()
}

// Capture builds a snapshot of w for instance id at time now.
func Capture(id string, w Window, now time.Time) Snapshot {
	r := RectOf(w)
	return Snapshot{
		ID:          id,
		ScreenX:     r.X,
		ScreenY:     r.Y,
		OuterWidth:  r.Width,
		OuterHeight: r.Height,
		Timestamp:   now.UnixMilli(),
	}
}

// Rect returns the screen rectangle carried by s.
func (s Snapshot) Rect() Rect {
	return Rect{X: s.ScreenX, Y: s.ScreenY, Width: s.OuterWidth, Height: s.OuterHeight}
}

// Time returns the wall-clock time s was captured at.
func (s Snapshot) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Encode serializes s for the shared store.
func (s Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Decode parses a stored value. Empty, unparseable or id-less payloads
// yield ErrMalformed.
func Decode(raw []byte) (Snapshot, error) {
	var s Snapshot
	if len(raw) == 0 {
		return s, fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if s.ID == "" {
		return Snapshot{}, fmt.Errorf("%w: missing id", ErrMalformed)
	}
	if s.OuterWidth < 0 || s.OuterHeight < 0 {
		return Snapshot{}, fmt.Errorf("%w: negative size %dx%d", ErrMalformed, s.OuterWidth, s.OuterHeight)
	}
	return s, nil
}
