package garden

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gekko3d/garden/rt/asset"
	"github.com/gekko3d/garden/rt/core"
	"github.com/google/uuid"
)

type AssetId string

type AssetKind string

const (
	AssetMesh    AssetKind = "mesh"
	AssetTexture AssetKind = "texture"
)

// AssetLoadError reports a model or texture that could not be fetched or decoded.
type AssetLoadError struct {
	Path string
	Kind AssetKind
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("load %s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// MissingNamedChildError reports a loaded model without a node the scene relies on.
type MissingNamedChildError struct {
	Asset string
	Name  string
}

func (e *MissingNamedChildError) Error() string {
	return fmt.Sprintf("asset %s: no child named %q", e.Asset, e.Name)
}

type MeshDecoder interface {
	DecodeMesh(path string) (*core.Node, error)
}

type TextureDecoder interface {
	DecodeTexture(path string, opts asset.TextureOptions) (*asset.Image, error)
}

type MeshAsset struct {
	Id   AssetId
	Path string
	Root *core.Node
}

// Child finds a direct child of the model root by name.
func (m *MeshAsset) Child(name string) (*core.Node, error) {
	if c, ok := m.Root.Child(name); ok {
		return c, nil
	}
	// single-node scenes wrap their content one level deeper
	if len(m.Root.Children) == 1 {
		if c, ok := m.Root.Children[0].Child(name); ok {
			return c, nil
		}
	}
	return nil, &MissingNamedChildError{Asset: m.Path, Name: name}
}

// Children resolves every name or returns the first missing one.
func (m *MeshAsset) Children(names ...string) (map[string]*core.Node, error) {
	out := make(map[string]*core.Node, len(names))
	for _, name := range names {
		c, err := m.Child(name)
		if err != nil {
			return nil, err
		}
		out[name] = c
	}
	return out, nil
}

type TextureAsset struct {
	Id   AssetId
	Path string
	*asset.Image
}

// Ref is the name materials use to sample this texture.
func (t *TextureAsset) Ref() core.TextureRef { return core.TextureRef(t.Id) }

// Handle is a single-assignment result cell filled by a loader goroutine. The loop thread
// polls it without blocking and takes the result at most once.
type Handle[T any] struct {
	Id    AssetId
	Path  string
	once  sync.Once
	done  chan struct{}
	value T
	err   error
	taken bool
}

func newHandle[T any](path string) *Handle[T] {
	return &Handle[T]{
		Id:   makeAssetId(),
		Path: path,
		done: make(chan struct{}),
	}
}

func (h *Handle[T]) resolve(v T, err error) {
	h.once.Do(func() {
		h.value, h.err = v, err
		close(h.done)
	})
}

func (h *Handle[T]) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Take returns the result the first time it is called after the load finished.
// Every other call reports ok == false.
func (h *Handle[T]) Take() (value T, ok bool, err error) {
	if h.taken || !h.Ready() {
		return value, false, nil
	}
	h.taken = true
	return h.value, true, h.err
}

type pendingLoad interface {
	deliver(server *AssetServer) bool
}

type pendingMesh struct {
	handle *Handle[*MeshAsset]
	ready  func(*MeshAsset)
}

func (p *pendingMesh) deliver(server *AssetServer) bool {
	m, ok, err := p.handle.Take()
	if !ok {
		return false
	}
	if err != nil {
		server.fail(&AssetLoadError{Path: p.handle.Path, Kind: AssetMesh, Err: err})
		return true
	}
	server.meshes[m.Id] = m
	if p.ready != nil {
		p.ready(m)
	}
	return true
}

type pendingTexture struct {
	handle *Handle[*TextureAsset]
	ready  func(*TextureAsset)
}

func (p *pendingTexture) deliver(server *AssetServer) bool {
	t, ok, err := p.handle.Take()
	if !ok {
		return false
	}
	if err != nil {
		server.fail(&AssetLoadError{Path: p.handle.Path, Kind: AssetTexture, Err: err})
		return true
	}
	server.textures[t.Id] = t
	if p.ready != nil {
		p.ready(t)
	}
	return true
}

// AssetServer fetches models and textures off the loop thread. Decoding happens in a
// goroutine per asset; results are delivered to callbacks on the loop thread by
// assetsSystem, so a slow or failed load never stalls a tick.
type AssetServer struct {
	Root     string
	Meshes   MeshDecoder
	Textures TextureDecoder

	meshes   map[AssetId]*MeshAsset
	textures map[AssetId]*TextureAsset
	pending  []pendingLoad
	errors   []error
	logger   Logger
}

func NewAssetServer(root string) *AssetServer {
	return &AssetServer{
		Root:     root,
		Meshes:   asset.GLTFDecoder{},
		Textures: asset.ImageDecoder{},
		meshes:   make(map[AssetId]*MeshAsset),
		textures: make(map[AssetId]*TextureAsset),
		logger:   NewNopLogger(),
	}
}

func (server *AssetServer) resolve(path string) string {
	if server.Root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(server.Root, path)
}

// LoadMesh starts decoding a model. ready runs on the loop thread once it succeeds; a
// failure is recorded as an AssetLoadError and ready never runs.
func (server *AssetServer) LoadMesh(path string, ready func(*MeshAsset)) *Handle[*MeshAsset] {
	h := newHandle[*MeshAsset](path)
	decoder := server.Meshes
	full := server.resolve(path)
	go func() {
		defer recoverDecode(h, path)
		root, err := decoder.DecodeMesh(full)
		if err != nil {
			h.resolve(nil, err)
			return
		}
		h.resolve(&MeshAsset{Id: h.Id, Path: path, Root: root}, nil)
	}()
	server.pending = append(server.pending, &pendingMesh{handle: h, ready: ready})
	return h
}

func (server *AssetServer) LoadTexture(path string, opts asset.TextureOptions, ready func(*TextureAsset)) *Handle[*TextureAsset] {
	h := newHandle[*TextureAsset](path)
	decoder := server.Textures
	full := server.resolve(path)
	go func() {
		defer recoverDecode(h, path)
		img, err := decoder.DecodeTexture(full, opts)
		if err != nil {
			h.resolve(nil, err)
			return
		}
		h.resolve(&TextureAsset{Id: h.Id, Path: path, Image: img}, nil)
	}()
	server.pending = append(server.pending, &pendingTexture{handle: h, ready: ready})
	return h
}

// recoverDecode turns a decoder panic into a failed load so a malformed file never takes
// the process down.
func recoverDecode[T any](h *Handle[T], path string) {
	if r := recover(); r != nil {
		var zero T
		h.resolve(zero, fmt.Errorf("decode %s: %v", path, r))
	}
}

// CreateTexture registers an in-memory texture synchronously.
func (server *AssetServer) CreateTexture(img *asset.Image) *TextureAsset {
	t := &TextureAsset{Id: makeAssetId(), Path: "", Image: img}
	server.textures[t.Id] = t
	return t
}

func (server *AssetServer) Texture(ref core.TextureRef) (*TextureAsset, bool) {
	t, ok := server.textures[AssetId(ref)]
	return t, ok
}

func (server *AssetServer) Mesh(id AssetId) (*MeshAsset, bool) {
	m, ok := server.meshes[id]
	return m, ok
}

func (server *AssetServer) Pending() int { return len(server.pending) }

// Errors returns every load and lookup failure recorded so far.
func (server *AssetServer) Errors() []error {
	out := make([]error, len(server.errors))
	copy(out, server.errors)
	return out
}

// LoadErrors returns only the AssetLoadErrors.
func (server *AssetServer) LoadErrors() []*AssetLoadError {
	var out []*AssetLoadError
	for _, err := range server.errors {
		var le *AssetLoadError
		if errors.As(err, &le) {
			out = append(out, le)
		}
	}
	return out
}

func (server *AssetServer) fail(err error) {
	server.errors = append(server.errors, err)
	server.logger.Errorf("%v", err)
}

// Poll delivers every finished load. It never blocks. Loads started from a ready callback
// are queued for a later Poll.
func (server *AssetServer) Poll() int {
	pending := server.pending
	server.pending = nil

	delivered := 0
	var waiting []pendingLoad
	for _, p := range pending {
		if p.deliver(server) {
			delivered++
			continue
		}
		waiting = append(waiting, p)
	}
	server.pending = append(waiting, server.pending...)
	return delivered
}

// AssetPoll runs right after the clock is sampled, so ready callbacks see this frame's time
// and every later stage sees the loaded assets.
var AssetPoll = Stage{Name: "AssetPoll"}

type AssetServerModule struct {
	Root string
}

func (m AssetServerModule) Install(app *App, cmd *Commands) {
	server := NewAssetServer(m.Root)
	server.logger = app.Logger().With("assets")
	app.UseStage(AssetPoll, AfterStage(Prelude))
	cmd.AddResources(server).
		UseSystem(
			System(assetsSystem).
				InStage(AssetPoll),
		)
}

func assetsSystem(server *AssetServer) {
	server.Poll()
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
