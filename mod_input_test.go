package garden

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInput_PressRelease(t *testing.T) {
	input := &Input{}

	input.Press(KeyP)
	assert.True(t, input.Pressed[KeyP])
	assert.True(t, input.JustPressed[KeyP])

	input.endFrame()
	input.Press(KeyP) // key repeat
	assert.False(t, input.JustPressed[KeyP])

	input.Release(KeyP)
	assert.False(t, input.Pressed[KeyP])
	assert.True(t, input.JustReleased[KeyP])

	input.Press(-1)
	input.Press(keyCount)
}

func TestInput_MouseDelta(t *testing.T) {
	input := &Input{}

	input.MoveMouse(100, 100)
	assert.Zero(t, input.MouseDeltaX, "first sample has no delta")

	input.MoveMouse(110, 95)
	input.MoveMouse(115, 90)
	assert.Equal(t, 15.0, input.MouseDeltaX)
	assert.Equal(t, -10.0, input.MouseDeltaY)

	input.Scroll(1)
	input.Scroll(0.5)
	assert.Equal(t, 1.5, input.ScrollY)

	input.endFrame()
	assert.Zero(t, input.MouseDeltaX)
	assert.Zero(t, input.ScrollY)
	assert.Equal(t, 115.0, input.MouseX)
}

func TestInputModule_TunableBindings(t *testing.T) {
	app := NewApp().UseModules(TunablesModule{Config: DefaultConfig()}, InputModule{})
	input, ok := Resource[Input](app)
	require.True(t, ok)
	tunables, _ := Resource[Tunables](app)

	input.Press(KeyEqual)
	app.Step()
	assert.Equal(t, 210.0, tunables.FireflySize.Get())
	assert.False(t, input.JustPressed[KeyEqual], "cleared at the end of the frame")

	app.Step()
	assert.Equal(t, 210.0, tunables.FireflySize.Get(), "holding a key does not repeat")

	input.Release(KeyEqual)
	input.Press(KeyKPMinus)
	app.Step()
	assert.Equal(t, 200.0, tunables.FireflySize.Get())

	assert.False(t, tunables.ShowPath.Get())
	input.Press(KeyP)
	app.Step()
	assert.True(t, tunables.ShowPath.Get())
}

func TestInputModule_F1TogglesDebug(t *testing.T) {
	app := NewApp().UseModules(
		LoggingModule{Out: io.Discard, Err: io.Discard},
		TunablesModule{Config: DefaultConfig()},
		InputModule{},
	)
	input, _ := Resource[Input](app)
	require.False(t, app.Logger().DebugEnabled())

	input.Press(KeyF1)
	app.Step()
	assert.True(t, app.Logger().DebugEnabled())

	input.Release(KeyF1)
	input.Press(KeyF1)
	app.Step()
	assert.False(t, app.Logger().DebugEnabled())
}
