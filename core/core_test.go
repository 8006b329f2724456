package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectSize(t *testing.T) {
	r := RectFromXYWH(10, 20, 800, 600)
	assert.Equal(t, Rect{Top: 20, Bottom: 620, Left: 10, Right: 810}, r)
	assert.Equal(t, 800, r.Width())
	assert.Equal(t, 600, r.Height())
	assert.False(t, r.Empty())
	assert.True(t, Rect{}.Empty())
	assert.Equal(t, "(10,20)-(810,620)", r.String())
}

func TestColorRGBA8(t *testing.T) {
	assert.Equal(t, uint32(0xffffffff), Color{1, 1, 1, 1}.RGBA8())
	assert.Equal(t, Color{R: 1, B: 0, A: 1}, ColorFromRGBA8(0xff0000ff))
	assert.Equal(t, uint32(0x443355ff), ColorFromRGBA8(0x443355ff).RGBA8())
	assert.Equal(t, uint32(0xff0000ff), Color{R: 2, G: -1, B: 0, A: 1}.RGBA8())
}

func TestWindowConfigValidate(t *testing.T) {
	require.NoError(t, DefaultWindowConfig().Validate())

	cfg := DefaultWindowConfig()
	cfg.Width = 0
	require.ErrorIs(t, cfg.Validate(), ErrInvalidWindowSize)

	cfg.Fullscreen = true
	require.NoError(t, cfg.Validate())
}

func TestMessageTypeString(t *testing.T) {
	assert.Equal(t, "NoEvent", NoEvent.String())
	assert.Equal(t, "Quit", Quit.String())
	assert.Equal(t, "MessageType(7)", MessageType(7).String())
}
