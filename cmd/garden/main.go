package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	garden "github.com/gekko3d/garden"
	"github.com/gekko3d/garden/rt/gpu"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "TOML config file (defaults are used when empty)")
	assets := flag.String("assets", "", "Asset directory, overrides the config")
	debug := flag.Bool("debug", false, "Debug logging, frame stats and the koi path overlay")
	sound := flag.Bool("sound", false, "Play the shishi-odoshi knock")
	followMode := flag.String("follow-mode", "", "Koi speed: \"frame\" (per tick) or \"time\" (per second)")
	headless := flag.Bool("headless", false, "Run the animation without a window")
	flag.Parse()

	if err := run(*configPath, *assets, *debug, *sound, *followMode, *headless); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, assets string, debug, sound bool, followMode string, headless bool) error {
	cfg, err := garden.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if assets != "" {
		cfg.Assets = assets
	}
	if debug {
		cfg.Debug = true
		cfg.Koi.ShowPath = true
	}
	if sound {
		cfg.Audio.Enabled = true
	}
	if followMode != "" {
		cfg.Koi.Mode = followMode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := garden.NewAppBuilder().
		UseModule(garden.LoggingModule{Debug: cfg.Debug})

	module := garden.GardenModule{Config: cfg}
	if headless {
		ticker := garden.NewTickerScheduler(60)
		defer ticker.Stop()
		builder.UseScheduler(ticker)
	} else {
		ws, err := garden.NewWindowState(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)
		if err != nil {
			return fmt.Errorf("open window: %w", err)
		}
		defer ws.Destroy()

		renderer, err := gpu.NewRenderer(ws.Window())
		if err != nil {
			return fmt.Errorf("init renderer: %w", err)
		}
		defer renderer.Release()

		module.Window = ws
		module.Renderer = renderer
	}

	app := builder.UseModule(module).Build()
	if audio, ok := garden.Resource[garden.Audio](app); ok {
		defer audio.Close()
	}

	err = app.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
