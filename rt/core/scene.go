package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Node is an element of the scene graph. Local is authored; World is derived by Scene.Commit.
type Node struct {
	Name     string
	Local    Transform
	World    Transform
	Mesh     *MeshData
	Material *Material
	Visible  bool
	Children []*Node
}

func NewNode(name string) *Node {
	return &Node{
		Name:    name,
		Local:   NewTransform(),
		World:   NewTransform(),
		Visible: true,
	}
}

func (n *Node) Add(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Child returns the direct child with the given name.
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Walk visits n and its descendants depth-first. Returning false skips the subtree.
func (n *Node) Walk(fn func(node *Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// SetMaterial assigns m to every mesh-bearing node in the subtree.
func (n *Node) SetMaterial(m Material) {
	n.Walk(func(node *Node) bool {
		if node.Mesh != nil {
			mat := m
			node.Material = &mat
		}
		return true
	})
}

type Scene struct {
	Roots []*Node
}

func NewScene() *Scene {
	return &Scene{
		Roots: []*Node{},
	}
}

func (s *Scene) Add(n *Node) {
	s.Roots = append(s.Roots, n)
}

func (s *Scene) Remove(n *Node) {
	for i, o := range s.Roots {
		if o == n {
			s.Roots = append(s.Roots[:i], s.Roots[i+1:]...)
			return
		}
	}
}

// Commit propagates local transforms down the hierarchy.
func (s *Scene) Commit() {
	for _, root := range s.Roots {
		commitNode(root, NewTransform())
	}
}

func commitNode(n *Node, parent Transform) {
	n.World = parent.Compose(n.Local)
	for _, c := range n.Children {
		commitNode(c, n.World)
	}
}

// DrawItem is one visible mesh with its resolved world matrix.
type DrawItem struct {
	Node  *Node
	Model mgl32.Mat4
}

// Visible collects mesh-bearing nodes whose whole ancestry is visible.
func (s *Scene) Visible() []DrawItem {
	var items []DrawItem
	for _, root := range s.Roots {
		root.Walk(func(n *Node) bool {
			if !n.Visible {
				return false
			}
			if n.Mesh != nil {
				items = append(items, DrawItem{Node: n, Model: n.World.ObjectToWorld()})
			}
			return true
		})
	}
	return items
}
