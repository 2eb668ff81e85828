package garden

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnockGenerator_Stream(t *testing.T) {
	g := newKnock(sampleRate, 100*time.Millisecond, 1)
	buf := make([][2]float64, 512)

	total := 0
	peak := 0.0
	for {
		n, ok := g.Stream(buf)
		for _, s := range buf[:n] {
			assert.Equal(t, s[0], s[1])
			peak = math.Max(peak, math.Abs(s[0]))
		}
		total += n
		if !ok {
			break
		}
	}

	assert.Equal(t, sampleRate.N(100*time.Millisecond), total)
	assert.Greater(t, peak, 0.1)
	assert.LessOrEqual(t, peak, 1.3)
	assert.NoError(t, g.Err())

	n, ok := g.Stream(buf)
	assert.Equal(t, 0, n)
	assert.False(t, ok)
}

func TestAudio_KnockWithoutDevice(t *testing.T) {
	a := NewAudio(0.5)
	a.Knock()
	a.Knock()
	assert.Equal(t, 2, a.Knocks)
	a.Close()
}

func TestNewVolume(t *testing.T) {
	silent, ok := newVolume(newKnock(sampleRate, time.Millisecond, 1), 0).(*effects.Volume)
	require.True(t, ok)
	assert.True(t, silent.Silent)

	half := newVolume(newKnock(sampleRate, time.Millisecond, 1), 0.5).(*effects.Volume)
	assert.InDelta(t, -1, half.Volume, 1e-12)

	loud := newVolume(newKnock(sampleRate, time.Millisecond, 1), 4).(*effects.Volume)
	assert.Equal(t, 0.0, loud.Volume)
}

func TestAudioModule_SubscribesToKnocks(t *testing.T) {
	app := NewApp().UseModules(AssetServerModule{}, GardenSceneModule{})
	app.UseModules(AudioModule{})
	g, _ := Resource[GardenScene](app)
	a, ok := Resource[Audio](app)
	require.True(t, ok)

	g.knock()
	assert.Equal(t, 1, a.Knocks)
}
