package treemorph

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInput_Edges(t *testing.T) {
	app := NewAppBuilder().UseModule(InputModule{}).Build()
	input, ok := Resource[Input](app)
	require.True(t, ok)

	input.Press(KeySpace)
	input.Press(KeySpace) // key repeat
	assert.True(t, input.Pressed[KeySpace])
	assert.True(t, input.JustPressed[KeySpace])

	app.Step()
	assert.True(t, input.Pressed[KeySpace])
	assert.False(t, input.JustPressed[KeySpace])

	input.Release(KeySpace)
	assert.True(t, input.JustReleased[KeySpace])
	app.Step()
	assert.False(t, input.JustReleased[KeySpace])

	// out of range keys are ignored
	input.Press(-1)
	input.Press(keyCount)
}

func TestKeyFromGlfw(t *testing.T) {
	key, ok := KeyFromGlfw(glfw.KeyF3)
	assert.True(t, ok)
	assert.Equal(t, KeyF3, key)

	_, ok = KeyFromGlfw(glfw.KeyQ)
	assert.False(t, ok)
}

func TestTreeControls(t *testing.T) {
	app, _ := newTreeApp(t, InputModule{}, TreeControlsModule{})
	input, _ := Resource[Input](app)

	app.Step()
	input.Press(KeySpace)
	app.Step()
	assert.Equal(t, StateFormed, app.State())

	// held key does not toggle again
	app.Step()
	assert.Equal(t, StateFormed, app.State())

	input.Release(KeySpace)
	input.Press(KeySpace)
	app.Step()
	assert.Equal(t, StateChaos, app.State())

	input.Press(KeyEscape)
	app.Step()
	assert.True(t, app.Stopped())
}
