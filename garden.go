package garden

import (
	"time"
)

// GardenModule installs the whole diorama from a Config. Renderer nil renders headless;
// Window nil leaves the App on its current scheduler.
type GardenModule struct {
	Config   Config
	Renderer Renderer
	Window   *WindowState
	// Now overrides the frame clock source.
	Now func() time.Time
}

func (m GardenModule) Install(app *App, cmd *Commands) {
	cfg := m.Config
	mode, err := ParseFollowMode(cfg.Koi.Mode)
	if err != nil {
		app.Logger().Warnf("%v; using %s", err, mode)
	}

	dpr := 1.0
	if m.Window != nil {
		dpr = m.Window.ContentScale()
	}

	app.UseModules(
		TimeModule{Now: m.Now},
		TunablesModule{Config: cfg},
		CameraModule{
			Width:      cfg.Window.Width,
			Height:     cfg.Window.Height,
			PixelRatio: dpr,
			Camera:     cfg.Camera,
		},
		InputModule{},
		OrbitControlsModule{},
		FirefliesModule{Count: cfg.Fireflies.Count, Seed: cfg.Fireflies.Seed},
		WaterModule{Config: cfg.Water},
		FollowerModule{Path: cfg.Koi.Path, Step: cfg.Koi.Step, Mode: mode},
		TweenModule{},
		AssetServerModule{Root: cfg.Assets},
		GardenSceneModule{Koi: cfg.Koi, Garden: cfg.Garden},
		AudioModule{Config: cfg.Audio},
		RenderModule{Renderer: m.Renderer, Fog: cfg.Fog},
	)
	if m.Window != nil {
		app.UseModules(WindowModule{Window: m.Window})
	}
	if cfg.Debug {
		app.UseModules(FrameStatsModule{})
	}
}
