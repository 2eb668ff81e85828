package garden

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gekko3d/garden/rt/asset"
	"github.com/gekko3d/garden/rt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("404 not found")

// fakeMeshes builds node trees in memory. Paths listed in fail return errNotFound.
type fakeMeshes struct {
	mu    sync.Mutex
	build map[string]func() *core.Node
	fail  map[string]bool
	calls []string
}

func (f *fakeMeshes) DecodeMesh(path string) (*core.Node, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()
	if f.fail[path] {
		return nil, errNotFound
	}
	build, ok := f.build[path]
	if !ok {
		return nil, fmt.Errorf("no such model %s", path)
	}
	return build(), nil
}

type fakeTextures struct {
	fail map[string]bool
}

func (f *fakeTextures) DecodeTexture(path string, opts asset.TextureOptions) (*asset.Image, error) {
	if f.fail[path] {
		return nil, errNotFound
	}
	format := asset.TextureFormatRGBA8Unorm
	if opts.SRGB {
		format = asset.TextureFormatRGBA8UnormSrgb
	}
	return &asset.Image{Width: 1, Height: 1, Format: format, Texels: []uint8{255, 255, 255, 255}}, nil
}

func meshNode(name string) *core.Node {
	n := core.NewNode(name)
	n.Mesh = core.PlaneGrid(1, 1, 1, 1)
	mat := core.DefaultMaterial()
	n.Material = &mat
	return n
}

func koiModel() *core.Node {
	root := core.NewNode("Scene")
	root.Add(meshNode("fish"), meshNode("fins"))
	return root
}

func gardenModel(names ...string) func() *core.Node {
	return func() *core.Node {
		root := core.NewNode("Scene")
		for _, name := range names {
			root.Add(meshNode(name))
		}
		return root
	}
}

// waitForAssets steps the loop until every load has been delivered. Each tick stays
// non-blocking; the sleep only gives decoder goroutines a chance to finish.
func waitForAssets(t *testing.T, app *App, server *AssetServer) {
	t.Helper()
	for i := 0; i < 5000; i++ {
		app.Step()
		if i >= 10 && server.Pending() == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("%d assets still pending", server.Pending())
}

func TestHandle_TakeOnce(t *testing.T) {
	h := newHandle[int]("n")

	_, ok, _ := h.Take()
	assert.False(t, ok, "nothing to take before the load finishes")
	assert.False(t, h.Ready())

	h.resolve(7, nil)
	h.resolve(8, errNotFound)
	assert.True(t, h.Ready())

	v, ok, err := h.Take()
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 7, v)

	_, ok, _ = h.Take()
	assert.False(t, ok)
}

func TestAssetServer_LoadAndPoll(t *testing.T) {
	server := NewAssetServer("static")
	meshes := &fakeMeshes{build: map[string]func() *core.Node{"static/koi.glb": koiModel}}
	server.Meshes = meshes
	server.Textures = &fakeTextures{}

	var got *MeshAsset
	h := server.LoadMesh("koi.glb", func(m *MeshAsset) { got = m })
	var tex *TextureAsset
	server.LoadTexture("matcap.png", asset.TextureOptions{SRGB: true}, func(ta *TextureAsset) { tex = ta })
	assert.Equal(t, 2, server.Pending())

	for i := 0; i < 5000 && server.Pending() > 0; i++ {
		server.Poll()
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, 0, server.Pending())
	require.NotNil(t, got)
	require.NotNil(t, tex)

	assert.Equal(t, h.Id, got.Id)
	assert.Equal(t, "koi.glb", got.Path)
	assert.Equal(t, []string{"static/koi.glb"}, meshes.calls)
	m, ok := server.Mesh(got.Id)
	assert.True(t, ok)
	assert.Same(t, got, m)

	img, ok := server.Image(tex.Ref())
	require.True(t, ok)
	assert.Equal(t, asset.TextureFormatRGBA8UnormSrgb, img.Format)
	assert.Empty(t, server.Errors())
}

func TestAssetServer_FailureIsRecorded(t *testing.T) {
	server := NewAssetServer("")
	server.Meshes = &fakeMeshes{fail: map[string]bool{"gone.glb": true}}

	called := false
	server.LoadMesh("gone.glb", func(*MeshAsset) { called = true })
	for i := 0; i < 5000 && server.Pending() > 0; i++ {
		server.Poll()
		time.Sleep(time.Millisecond)
	}

	assert.False(t, called)
	loadErrs := server.LoadErrors()
	require.Len(t, loadErrs, 1)
	assert.Equal(t, "gone.glb", loadErrs[0].Path)
	assert.Equal(t, AssetMesh, loadErrs[0].Kind)
	assert.ErrorIs(t, loadErrs[0], errNotFound)
}

type panickyMeshes struct{}

func (panickyMeshes) DecodeMesh(path string) (*core.Node, error) {
	var nodes []*core.Node
	return nodes[3], nil
}

func TestAssetServer_DecoderPanicIsRecorded(t *testing.T) {
	server := NewAssetServer("")
	server.Meshes = panickyMeshes{}

	called := false
	server.LoadMesh("broken.glb", func(*MeshAsset) { called = true })
	for i := 0; i < 5000 && server.Pending() > 0; i++ {
		server.Poll()
		time.Sleep(time.Millisecond)
	}

	assert.False(t, called)
	loadErrs := server.LoadErrors()
	require.Len(t, loadErrs, 1)
	assert.Equal(t, "broken.glb", loadErrs[0].Path)
	assert.ErrorContains(t, loadErrs[0], "index out of range")
}

func TestAssetServer_LoadFromReadyCallback(t *testing.T) {
	server := NewAssetServer("")
	server.Meshes = &fakeMeshes{build: map[string]func() *core.Node{"koi.glb": koiModel}}
	server.Textures = &fakeTextures{}

	var tex *TextureAsset
	server.LoadMesh("koi.glb", func(*MeshAsset) {
		server.LoadTexture("matcap.png", asset.TextureOptions{}, func(ta *TextureAsset) { tex = ta })
	})
	for i := 0; i < 5000 && (server.Pending() > 0 || tex == nil); i++ {
		server.Poll()
		time.Sleep(time.Millisecond)
	}

	require.NotNil(t, tex, "texture requested from the mesh callback is delivered")
	assert.Equal(t, "matcap.png", tex.Path)
	assert.Equal(t, 0, server.Pending())
	assert.Empty(t, server.Errors())
}

func TestAssetServer_CreateTexture(t *testing.T) {
	server := NewAssetServer("")
	ta := server.CreateTexture(&asset.Image{Width: 2, Height: 2})

	got, ok := server.Texture(ta.Ref())
	require.True(t, ok)
	assert.Same(t, ta, got)

	_, ok = server.Texture("unknown")
	assert.False(t, ok)
}

func TestMeshAsset_Child(t *testing.T) {
	flat := &MeshAsset{Path: "koi.glb", Root: koiModel()}
	fish, err := flat.Child("fish")
	require.NoError(t, err)
	assert.Equal(t, "fish", fish.Name)

	wrapped := core.NewNode("Scene")
	wrapped.Add(koiModel())
	nested := &MeshAsset{Path: "koi.glb", Root: wrapped}
	_, err = nested.Child("fins")
	assert.NoError(t, err)

	_, err = nested.Children("fish", "tail")
	var missing *MissingNamedChildError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "tail", missing.Name)
}

func TestAssetServerModule_PollsAfterClock(t *testing.T) {
	app := NewApp().UseModules(AssetServerModule{})
	var names []string
	for _, s := range app.stages {
		names = append(names, s.Name)
	}
	require.GreaterOrEqual(t, len(names), 3)
	assert.Equal(t, []string{"Prelude", "AssetPoll", "PreUpdate"}, names[:3])

	server, _ := Resource[AssetServer](app)
	server.Meshes = &fakeMeshes{build: map[string]func() *core.Node{"koi.glb": koiModel}}
	var got *MeshAsset
	server.LoadMesh("koi.glb", func(m *MeshAsset) { got = m })
	waitForAssets(t, app, server)
	assert.NotNil(t, got)
}
