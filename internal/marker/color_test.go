package marker

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#00ffff")
	require.NoError(t, err)
	assert.Equal(t, cyan, c)

	_, err = ParseColor("cyan")
	assert.Error(t, err)
}

func TestAdjust_Clamps(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0, G: 225, B: 225, A: 0xff}, Darken(cyan, 30))
	assert.Equal(t, color.RGBA{R: 30, G: 255, B: 255, A: 0xff}, Adjust(cyan, 30))
	assert.Equal(t, color.RGBA{R: 0, G: 0, B: 0, A: 0xff}, Darken(cyan, 1000))
}

func TestWithAlpha(t *testing.T) {
	c := WithAlpha(cyan, 0x40)
	assert.Equal(t, color.RGBA{R: 0, G: 0x40, B: 0x40, A: 0x40}, c)
}
