package scene

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"snowglobe/internal/geom"
	"snowglobe/internal/mesh"
)

// Transform is a rotation about the Y axis followed by a translation. The
// scene only ever spins around the vertical axis so a full matrix is not
// needed.
type Transform struct {
	RotationY   float64
	Translation r3.Vec
}

func (t Transform) Apply(p r3.Vec) r3.Vec {
	return r3.Add(geom.RotateY(p, t.RotationY), t.Translation)
}

// ApplyInverse maps a world point back into the transform's local space.
func (t Transform) ApplyInverse(p r3.Vec) r3.Vec {
	return geom.RotateY(r3.Sub(p, t.Translation), -t.RotationY)
}

// Compose returns the transform equivalent to applying child first and then t.
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		RotationY:   t.RotationY + child.RotationY,
		Translation: r3.Add(geom.RotateY(child.Translation, t.RotationY), t.Translation),
	}
}

// Node is an entry in the scene graph. A node may carry a mesh, a point
// cloud, or neither (a group).
type Node struct {
	ID        uuid.UUID
	Name      string
	Position  r3.Vec
	RotationY float64
	Visible   bool
	Mesh      *mesh.Mesh
	Points    *Points

	parent   *Node
	children []*Node
}

func NewNode(name string) *Node {
	return &Node{ID: uuid.New(), Name: name, Visible: true}
}

func NewMeshNode(name string, m *mesh.Mesh) *Node {
	n := NewNode(name)
	n.Mesh = m
	return n
}

func NewPointsNode(name string, p *Points) *Node {
	n := NewNode(name)
	n.Points = p
	return n
}

// Add attaches children, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, child := range children {
		if child == nil || child == n {
			continue
		}
		if child.parent != nil {
			child.parent.Remove(child)
		}
		child.parent = n
		n.children = append(n.children, child)
	}
}

func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) Parent() *Node {
	return n.parent
}

// Local returns the node's transform relative to its parent.
func (n *Node) Local() Transform {
	return Transform{RotationY: n.RotationY, Translation: n.Position}
}

// World returns the node's transform relative to the scene root.
func (n *Node) World() Transform {
	t := n.Local()
	for p := n.parent; p != nil; p = p.parent {
		t = p.Local().Compose(t)
	}
	return t
}

// Traverse visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n *Node) Traverse(fn func(node *Node, world Transform) bool) {
	n.traverse(n.World(), fn)
}

func (n *Node) traverse(world Transform, fn func(*Node, Transform) bool) {
	if !fn(n, world) {
		return
	}
	for _, child := range n.children {
		child.traverse(world.Compose(child.Local()), fn)
	}
}

// Find returns the first descendant (or n itself) with the given name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Traverse(func(node *Node, _ Transform) bool {
		if found != nil {
			return false
		}
		if node.Name == name {
			found = node
			return false
		}
		return true
	})
	return found
}

// WorldBounds returns the world space bounding box of every mesh under n.
func (n *Node) WorldBounds() geom.Box {
	box := geom.EmptyBox()
	n.Traverse(func(node *Node, world Transform) bool {
		if node.Mesh == nil || node.Mesh.Geometry == nil {
			return true
		}
		local := node.Mesh.Geometry.BoundingBox()
		if local.IsEmpty() {
			return true
		}
		placed := geom.EmptyBox()
		for _, corner := range local.Corners() {
			placed = placed.Expand(world.Apply(corner))
		}
		box = box.Union(placed)
		return true
	})
	return box
}
