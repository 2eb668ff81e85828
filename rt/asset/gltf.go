// Package asset decodes scene files into core scene nodes and CPU-side images.
package asset

import (
	"fmt"

	"github.com/gekko3d/garden/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// GLTFDecoder reads .gltf/.glb files into a node tree rooted at a node named after the scene.
type GLTFDecoder struct{}

func (GLTFDecoder) DecodeMesh(path string) (*core.Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}
	return BuildNodes(doc)
}

// dracoExtension marks compressed primitives. Their attribute accessors carry no buffer view,
// so reading them would silently yield zeroed geometry.
const dracoExtension = "KHR_draco_mesh_compression"

// BuildNodes converts the document's default scene. Primitives of one mesh are merged.
func BuildNodes(doc *gltf.Document) (*core.Node, error) {
	for _, ext := range doc.ExtensionsRequired {
		if ext == dracoExtension {
			return nil, fmt.Errorf("gltf: unsupported required extension %s", ext)
		}
	}
	if len(doc.Scenes) == 0 {
		return nil, fmt.Errorf("gltf: document has no scenes")
	}
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) {
		return nil, fmt.Errorf("gltf: scene index %d out of range", sceneIdx)
	}

	gs := doc.Scenes[sceneIdx]
	root := core.NewNode(gs.Name)
	meshes := make(map[int]*core.MeshData)
	visiting := make(map[int]bool)
	for _, idx := range gs.Nodes {
		n, err := buildNode(doc, idx, meshes, visiting)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	return root, nil
}

func buildNode(doc *gltf.Document, idx int, meshes map[int]*core.MeshData, visiting map[int]bool) (*core.Node, error) {
	if idx < 0 || idx >= len(doc.Nodes) {
		return nil, fmt.Errorf("gltf: node index %d out of range", idx)
	}
	if visiting[idx] {
		return nil, fmt.Errorf("gltf: node %d is its own ancestor", idx)
	}
	visiting[idx] = true
	defer delete(visiting, idx)

	gn := doc.Nodes[idx]
	n := core.NewNode(gn.Name)
	n.Local = nodeTransform(gn)

	if gn.Mesh != nil {
		mi := *gn.Mesh
		md, ok := meshes[mi]
		if !ok {
			var err error
			md, err = readMesh(doc, mi)
			if err != nil {
				return nil, fmt.Errorf("gltf: node %q: %w", gn.Name, err)
			}
			meshes[mi] = md
		}
		n.Mesh = md
		mat := core.DefaultMaterial()
		n.Material = &mat
	}

	for _, ci := range gn.Children {
		c, err := buildNode(doc, ci, meshes, visiting)
		if err != nil {
			return nil, err
		}
		n.Add(c)
	}
	return n, nil
}

func nodeTransform(gn *gltf.Node) core.Transform {
	tr := core.NewTransform()
	t, r, s := gn.Translation, gn.Rotation, gn.Scale
	tr.Position = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
	if r != [4]float64{} {
		tr.Rotation = mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}.Normalize()
	}
	if s != [3]float64{} {
		tr.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
	}
	return tr
}

func readMesh(doc *gltf.Document, mi int) (*core.MeshData, error) {
	if mi < 0 || mi >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", mi)
	}
	md := &core.MeshData{}
	for pi, prim := range doc.Meshes[mi].Primitives {
		if _, ok := prim.Extensions[dracoExtension]; ok {
			return nil, fmt.Errorf("primitive %d: unsupported extension %s", pi, dracoExtension)
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readAccessor(doc, posIdx, modeler.ReadPosition)
		if err != nil {
			return nil, fmt.Errorf("primitive %d positions: %w", pi, err)
		}
		base := uint32(len(md.Positions))
		md.Positions = append(md.Positions, positions...)

		if ni, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err := readAccessor(doc, ni, modeler.ReadNormal)
			if err != nil {
				return nil, fmt.Errorf("primitive %d normals: %w", pi, err)
			}
			md.Normals = append(md.Normals, padVec3(normals, len(positions))...)
		} else {
			md.Normals = append(md.Normals, make([][3]float32, len(positions))...)
		}

		if ti, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err := readAccessor(doc, ti, modeler.ReadTextureCoord)
			if err != nil {
				return nil, fmt.Errorf("primitive %d uvs: %w", pi, err)
			}
			md.UVs = append(md.UVs, padVec2(uvs, len(positions))...)
		} else {
			md.UVs = append(md.UVs, make([][2]float32, len(positions))...)
		}

		if prim.Indices != nil {
			indices, err := readAccessor(doc, *prim.Indices, modeler.ReadIndices)
			if err != nil {
				return nil, fmt.Errorf("primitive %d indices: %w", pi, err)
			}
			for _, ix := range indices {
				md.Indices = append(md.Indices, base+ix)
			}
		} else {
			for i := range positions {
				md.Indices = append(md.Indices, base+uint32(i))
			}
		}
	}
	return md, nil
}

// readAccessor bounds-checks idx before handing the accessor to read.
func readAccessor[T any](doc *gltf.Document, idx int, read func(*gltf.Document, *gltf.Accessor, T) (T, error)) (T, error) {
	var zero T
	if idx < 0 || idx >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return zero, fmt.Errorf("accessor index %d out of range", idx)
	}
	return read(doc, doc.Accessors[idx], zero)
}

func padVec3(v [][3]float32, n int) [][3]float32 {
	if len(v) >= n {
		return v[:n]
	}
	return append(v, make([][3]float32, n-len(v))...)
}

func padVec2(v [][2]float32, n int) [][2]float32 {
	if len(v) >= n {
		return v[:n]
	}
	return append(v, make([][2]float32, n-len(v))...)
}
