package garden

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gekko3d/garden/rt/core"
	"github.com/lucasb-eyer/go-colorful"
)

////
//// Config
////
type Config struct {
	// Directory assets are resolved against
	// !td:unc assets = "static"
	Assets string `toml:"assets"`

	// Background clear color
	// !td:unc clear_color = "#d49c9c"
	ClearColor string `toml:"clear_color"`

	// Enable debug logging and the path overlay
	// !td:unc debug = false
	Debug bool `toml:"debug"`

	// !td:follow
	Window WindowConfig `toml:"window"`

	// !td:follow
	Camera CameraConfig `toml:"camera"`

	// !td:follow
	Fog FogConfig `toml:"fog"`

	// !td:follow
	Water WaterConfig `toml:"water"`

	// !td:follow
	Fireflies FirefliesConfig `toml:"fireflies"`

	// !td:follow
	Koi KoiConfig `toml:"koi"`

	// !td:follow
	Garden GardenConfig `toml:"garden"`

	// !td:follow
	Audio AudioConfig `toml:"audio"`
}

////
//// WindowConfig
////
type WindowConfig struct {
	// !td:unc width = 1280
	Width int `toml:"width"`
	// !td:unc height = 720
	Height int `toml:"height"`
	// !td:unc title = "Koi Garden"
	Title string `toml:"title"`
}

////
//// CameraConfig
////
type CameraConfig struct {
	// Vertical field of view in degrees
	// !td:unc fov = 35.0
	Fov float32 `toml:"fov"`
	// !td:unc near = 0.1
	Near float32 `toml:"near"`
	// !td:unc far = 100.0
	Far float32 `toml:"far"`
	// !td:unc position = [4.1, 2.8, 4.1]
	Position [3]float32 `toml:"position"`
	// !td:unc target = [0.0, 0.0, 0.0]
	Target [3]float32 `toml:"target"`
}

////
//// FogConfig
////
type FogConfig struct {
	// !td:unc color = "#ffffff"
	Color string `toml:"color"`
	// !td:unc near = 0.0
	Near float32 `toml:"near"`
	// !td:unc far = 17.0
	Far float32 `toml:"far"`
}

////
//// WaterConfig
////
type WaterConfig struct {
	// !td:unc color1 = "#96c4e8"
	Color1 string `toml:"color1"`
	// !td:unc color2 = "#e1c1eb"
	Color2 string `toml:"color2"`
	// Grid subdivisions per side
	// !td:unc segments = 150
	Segments int `toml:"segments"`
	// !td:unc size = 2.5
	Size float32 `toml:"size"`
	// !td:unc position = [0.0, 0.3, 0.2]
	Position [3]float32 `toml:"position"`
}

////
//// FirefliesConfig
////
type FirefliesConfig struct {
	// !td:unc count = 30
	Count int `toml:"count"`
	// Point size, 0..500
	// !td:unc size = 200.0
	Size float64 `toml:"size"`
	// Random seed; 0 picks one at startup
	// !td:unc seed = 0
	Seed int64 `toml:"seed"`
}

////
//// KoiConfig
////
type KoiConfig struct {
	// !td:unc model = "koi.glb"
	Model string `toml:"model"`
	// !td:unc matcap = "matcaps11.png"
	Matcap string `toml:"matcap"`
	// Name of the node receiving the matcap material
	// !td:unc body = "fish"
	Body string `toml:"body"`
	// Curve parameter advanced per frame (or per second in "time" mode)
	// !td:unc step = 0.001
	Step float64 `toml:"step"`
	// "frame" advances by step each tick, "time" scales step by frame time
	// !td:unc mode = "frame"
	Mode string `toml:"mode"`
	// !td:unc show_path = false
	ShowPath bool `toml:"show_path"`
	// Closed path control points
	Path [][3]float64 `toml:"path"`
}

////
//// GardenConfig
////
type GardenConfig struct {
	// !td:unc model = "japanese-garden.glb"
	Model string `toml:"model"`
	// !td:unc baked_texture = "jg-bake.jpg"
	BakedTexture string `toml:"baked_texture"`
	// !td:unc lamp_color = "#f5deb3"
	LampColor string `toml:"lamp_color"`
	// !td:unc floor_color = "#2b1d0e"
	FloorColor string `toml:"floor_color"`
	// !td:follow
	Shishi TweenConfig `toml:"shishi"`
}

////
//// TweenConfig
////
type TweenConfig struct {
	// Target rotation.x in radians
	// !td:unc to = 0.785398
	To float32 `toml:"to"`
	// !td:unc duration = 2.0
	Duration float32 `toml:"duration"`
	// !td:unc repeat_delay = 2.0
	RepeatDelay float32 `toml:"repeat_delay"`
	// -1 repeats forever
	// !td:unc repeat = -1
	Repeat int `toml:"repeat"`
	// !td:unc yoyo = true
	Yoyo bool `toml:"yoyo"`
	// !td:unc ease = "power3.out"
	Ease string `toml:"ease"`
}

////
//// AudioConfig
////
type AudioConfig struct {
	// Play a knock each time the shishi-odoshi strikes
	// !td:unc enabled = false
	Enabled bool `toml:"enabled"`
	// !td:unc volume = 0.5
	Volume float64 `toml:"volume"`
}

// GardenPath is the koi's closed swimming loop around the pond.
var GardenPath = [][3]float64{
	{-0.3, 0.2, -0.3},
	{0.5, 0.2, -0.1},
	{0.2, 0.2, 0.7},
	{-0.8, 0.2, 0.7},
	{-0.6, 0.2, 0.1},
	{-0.6, 0.2, -0.2},
}

func DefaultConfig() Config {
	path := make([][3]float64, len(GardenPath))
	copy(path, GardenPath)
	return Config{
		Assets:     "static",
		ClearColor: "#d49c9c",
		Window:     WindowConfig{Width: 1280, Height: 720, Title: "Koi Garden"},
		Camera: CameraConfig{
			Fov:      35,
			Near:     0.1,
			Far:      100,
			Position: [3]float32{4.1, 2.8, 4.1},
		},
		Fog: FogConfig{Color: "#ffffff", Near: 0, Far: 17},
		Water: WaterConfig{
			Color1:   "#96c4e8",
			Color2:   "#e1c1eb",
			Segments: 150,
			Size:     2.5,
			Position: [3]float32{0, 0.3, 0.2},
		},
		Fireflies: FirefliesConfig{Count: 30, Size: 200},
		Koi: KoiConfig{
			Model:  "koi.glb",
			Matcap: "matcaps11.png",
			Body:   "fish",
			Step:   0.001,
			Mode:   "frame",
			Path:   path,
		},
		Garden: GardenConfig{
			Model:        "japanese-garden.glb",
			BakedTexture: "jg-bake.jpg",
			LampColor:    "#f5deb3",
			FloorColor:   "#2b1d0e",
			Shishi: TweenConfig{
				To:          0.785398,
				Duration:    2,
				RepeatDelay: 2,
				Repeat:      -1,
				Yoyo:        true,
				Ease:        "power3.out",
			},
		},
		Audio: AudioConfig{Volume: 0.5},
	}
}

// LoadConfig overlays the TOML file at path onto the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks values a running scene cannot recover from.
func (c Config) Validate() error {
	for name, hex := range map[string]string{
		"clear_color":        c.ClearColor,
		"fog.color":          c.Fog.Color,
		"water.color1":       c.Water.Color1,
		"water.color2":       c.Water.Color2,
		"garden.lamp_color":  c.Garden.LampColor,
		"garden.floor_color": c.Garden.FloorColor,
	} {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if len(c.Koi.Path) < core.MinSplinePoints {
		return &core.InvalidCurveError{Points: len(c.Koi.Path)}
	}
	if c.Fireflies.Count < 0 {
		return fmt.Errorf("fireflies.count must not be negative, got %d", c.Fireflies.Count)
	}
	if _, err := ParseFollowMode(c.Koi.Mode); err != nil {
		return err
	}
	if _, ok := easeByName(c.Garden.Shishi.Ease); !ok {
		return fmt.Errorf("garden.shishi.ease: unknown easing %q", c.Garden.Shishi.Ease)
	}
	return nil
}

func hexOr(s, fallback string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return core.MustHex(fallback)
	}
	return c
}

func (w WaterConfig) color1() colorful.Color { return hexOr(w.Color1, "#96c4e8") }
func (w WaterConfig) color2() colorful.Color { return hexOr(w.Color2, "#e1c1eb") }
func (c Config) clearColor() colorful.Color  { return hexOr(c.ClearColor, "#d49c9c") }
