package garden

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGardenLogger_LevelsAndWriters(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewGardenLogger("garden", false, &out, &errOut)

	logger.Debugf("hidden %d", 1)
	logger.Infof("hello %s", "koi")
	logger.Warnf("careful")
	logger.Errorf("broken")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[garden] INFO: hello koi")
	assert.Contains(t, errOut.String(), "[garden] WARN: careful")
	assert.Contains(t, errOut.String(), "[garden] ERROR: broken")

	logger.SetDebug(true)
	logger.Debugf("shown")
	assert.Contains(t, out.String(), "DEBUG: shown")
}

func TestGardenLogger_WithSharesSink(t *testing.T) {
	var out bytes.Buffer
	logger := NewGardenLogger("garden", false, &out, &out)
	assets := logger.With("assets")
	textures := assets.With("textures")

	assets.Infof("loaded")
	textures.Infof("decoded")
	assert.Contains(t, out.String(), "[garden assets] INFO: loaded")
	assert.Contains(t, out.String(), "[garden assets.textures] INFO: decoded")

	logger.SetDebug(true)
	assert.True(t, textures.DebugEnabled(), "derived loggers follow the parent's debug switch")
}

func TestLoggingModule_StampsFrame(t *testing.T) {
	var out bytes.Buffer
	app := NewApp().UseModules(LoggingModule{Out: &out, Err: &out})
	_, ok := Resource[GardenLogger](app)
	require.True(t, ok)

	app.Step()
	app.Step()
	app.Logger().With("koi").Infof("swimming")

	line := strings.TrimSpace(out.String())
	assert.True(t, strings.HasSuffix(line, "[garden f=2 koi] INFO: swimming"), "got %q", line)
}

func TestApp_LoggerWithoutModule(t *testing.T) {
	app := NewApp()
	logger := app.Logger()
	require.NotNil(t, logger)
	assert.False(t, logger.DebugEnabled())
	assert.NotPanics(t, func() { logger.With("x").Errorf("dropped") })

	var nilApp *App
	assert.NotNil(t, nilApp.Logger())
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "Level(9)", Level(9).String())
}
