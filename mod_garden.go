package garden

import (
	"math"

	"github.com/gekko3d/garden/rt/asset"
	"github.com/gekko3d/garden/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// PathDivisions is the number of segments the koi path overlay is drawn with.
const PathDivisions = 50

// PathLine is the optional debug overlay of the koi's swimming loop.
type PathLine struct {
	Points  []mgl32.Vec3
	Visible bool
}

// GardenScene owns the scene graph and the nodes the animation systems drive.
type GardenScene struct {
	Scene  *core.Scene
	Floor  *core.Node
	Koi    *core.Node
	Garden *core.Node
	Shishi *core.Node
	Path   *PathLine

	onKnock []func()
}

// OnKnock subscribes fn to the moment the shishi-odoshi reaches its tipped position.
func (g *GardenScene) OnKnock(fn func()) {
	g.onKnock = append(g.onKnock, fn)
}

func (g *GardenScene) knock() {
	for _, fn := range g.onKnock {
		fn()
	}
}

// textureSlot delivers a texture ref to callers that may ask before or after it loads.
type textureSlot struct {
	ref     core.TextureRef
	ready   bool
	waiting []func(core.TextureRef)
}

func (s *textureSlot) set(ref core.TextureRef) {
	s.ref, s.ready = ref, true
	for _, fn := range s.waiting {
		fn(ref)
	}
	s.waiting = nil
}

func (s *textureSlot) when(fn func(core.TextureRef)) {
	if s.ready {
		fn(s.ref)
		return
	}
	s.waiting = append(s.waiting, fn)
}

// GardenSceneModule builds the static floor and path overlay, then requests the koi and
// garden models. Both arrive asynchronously through the AssetServer.
type GardenSceneModule struct {
	Koi    KoiConfig
	Garden GardenConfig
}

func (m GardenSceneModule) Install(app *App, cmd *Commands) {
	log := app.Logger()
	server, ok := Resource[AssetServer](app)
	if !ok {
		panic("GardenSceneModule requires AssetServerModule")
	}
	follower, _ := Resource[CurveFollower](app)
	tweens, _ := Resource[Tweens](app)

	g := &GardenScene{Scene: core.NewScene()}

	g.Floor = core.NewNode("floor")
	g.Floor.Mesh = core.PlaneGrid(4, 4, 1, 1)
	g.Floor.Local.Rotation = core.EulerXYZ(math.Pi*0.5, 0, 0)
	floorMat := core.NewBasicMaterial(hexOr(m.Garden.FloorColor, "#2b1d0e"))
	g.Floor.Material = &floorMat
	g.Scene.Add(g.Floor)

	g.Path = &PathLine{}
	if follower != nil {
		for _, p := range follower.Spline().Points(PathDivisions) {
			g.Path.Points = append(g.Path.Points, mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])})
		}
	}
	if tunables, ok := Resource[Tunables](app); ok {
		tunables.ShowPath.Bind(func(v bool) { g.Path.Visible = v })
	}

	matcap := &textureSlot{}
	if m.Koi.Matcap != "" {
		server.LoadTexture(m.Koi.Matcap, asset.TextureOptions{SRGB: true}, func(t *TextureAsset) {
			matcap.set(t.Ref())
		})
	}
	server.LoadMesh(m.Koi.Model, func(koi *MeshAsset) {
		body := m.Koi.Body
		if body == "" {
			body = "fish"
		}
		fish, err := koi.Child(body)
		if err != nil {
			server.fail(err)
			return
		}
		matcap.when(func(ref core.TextureRef) {
			fish.SetMaterial(core.NewMatcapMaterial(ref))
		})
		g.Koi = koi.Root
		g.Scene.Add(koi.Root)
		if follower != nil {
			follower.Attach(koi.Root)
		}
		log.Infof("Koi ready (%s)", koi.Path)
	})

	baked := &textureSlot{}
	server.LoadTexture(m.Garden.BakedTexture, asset.TextureOptions{SRGB: true}, func(t *TextureAsset) {
		baked.set(t.Ref())
	})
	server.LoadMesh(m.Garden.Model, func(garden *MeshAsset) {
		parts, err := garden.Children("bake", "shishi", "lamp")
		if err != nil {
			server.fail(err)
			return
		}
		baked.when(func(ref core.TextureRef) {
			parts["bake"].SetMaterial(core.NewTexturedMaterial(ref))
			parts["shishi"].SetMaterial(core.NewTexturedMaterial(ref))
		})
		parts["lamp"].SetMaterial(core.NewBasicMaterial(hexOr(m.Garden.LampColor, "#f5deb3")))

		g.Garden = garden.Root
		g.Shishi = parts["shishi"]
		g.Scene.Add(garden.Root)

		if tweens != nil {
			startShishi(tweens, g, m.Garden.Shishi)
		}
		log.Infof("Garden ready (%s)", garden.Path)
	})

	cmd.AddResources(g)
	app.UseSystem(
		System(sceneCommitSystem).
			InStage(PostUpdate),
	)
}

func startShishi(tweens *Tweens, g *GardenScene, tc TweenConfig) *LoopTween {
	fn, _ := easeByName(tc.Ease)
	return tweens.Start("shishi", RotationXProperty(g.Shishi), tc.To, TweenOptions{
		Duration:    tc.Duration,
		RepeatDelay: tc.RepeatDelay,
		Repeat:      tc.Repeat,
		Yoyo:        tc.Yoyo,
		Ease:        fn,
		OnCycle: func(cycle int) {
			// forward cycles end tipped over
			if !tc.Yoyo || cycle%2 == 0 {
				g.knock()
			}
		},
	})
}

func sceneCommitSystem(g *GardenScene) {
	g.Scene.Commit()
}
