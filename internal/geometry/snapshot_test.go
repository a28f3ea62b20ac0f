package geometry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	x, y, w, h int
}

func (f fakeWindow) ScreenPosition() (int, int) { return f.x, f.y }
func (f fakeWindow) OuterSize() (int, int)      { return f.w, f.h }

func TestCapture(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	s := Capture("abc", fakeWindow{x: 10, y: 20, w: 800, h: 600}, now)

	assert.Equal(t, Snapshot{
		ID:          "abc",
		ScreenX:     10,
		ScreenY:     20,
		OuterWidth:  800,
		OuterHeight: 600,
		Timestamp:   1_700_000_000_123,
	}, s)
	assert.Equal(t, Rect{X: 10, Y: 20, Width: 800, Height: 600}, s.Rect())
	assert.True(t, s.Time().Equal(now))
}

func TestRectOf_ClampsNegativeSize(t *testing.T) {
	r := RectOf(fakeWindow{x: -5, y: 3, w: -1, h: 40})
	assert.Equal(t, Rect{X: -5, Y: 3, Width: 0, Height: 40}, r)
	assert.Equal(t, -5, r.Left())
	assert.Equal(t, -5, r.Right())
	assert.Equal(t, 43, r.Bottom())
}

func TestEncode_WireFields(t *testing.T) {
	raw, err := Snapshot{ID: "abc", ScreenX: 1, ScreenY: 2, OuterWidth: 3, OuterHeight: 4, Timestamp: 5}.Encode()
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Len(t, fields, 6)
	for _, k := range []string{"id", "screenX", "screenY", "outerWidth", "outerHeight", "timestamp"} {
		assert.Contains(t, fields, k)
	}
}

func TestDecode(t *testing.T) {
	s, err := Decode([]byte(`{"id":"x1","screenX":850,"screenY":-10,"outerWidth":640,"outerHeight":480,"timestamp":42}`))
	require.NoError(t, err)
	assert.Equal(t, "x1", s.ID)
	assert.Equal(t, 850, s.ScreenX)
	assert.Equal(t, -10, s.ScreenY)
	assert.Equal(t, int64(42), s.Timestamp)
}

func TestDecode_Malformed(t *testing.T) {
	for _, raw := range []string{"", "{not json", "null", `{"screenX":1}`, `{"id":"a","outerWidth":-3}`} {
		_, err := Decode([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformed, "payload %q", raw)
	}
}

func TestNewInstanceID_Unique(t *testing.T) {
	a, b := NewInstanceID(), NewInstanceID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
