// Package scene builds a traversable runtime node tree from a parsed glTF
// document and maintains the global transform hierarchy used by animation
// and rendering.
package scene

import (
	"errors"
	"fmt"

	"github.com/arclight3d/arclight/pkg/gltf"
	"github.com/arclight3d/arclight/pkg/math"
)

// MaxJoints is the shader-side joint matrix array capacity. Skins with more
// joints are rejected at build time rather than truncated.
const MaxJoints = 100

// ErrJointOverflow reports a skin whose joint list exceeds MaxJoints.
var ErrJointOverflow = errors.New("scene: skin exceeds joint capacity")

// Node is one runtime scene node. Local transform fields are mutated in
// place by animation channels; Global is derived, recomputed by
// UpdateGlobalTransforms and never authoritative.
type Node struct {
	Name     string
	Parent   int // -1 for roots
	Children []int

	// Decomposed local transform. When Matrix is set it takes precedence
	// and the TRS fields are ignored (glTF forbids animating such nodes).
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
	Matrix      *math.Mat4

	Global math.Mat4

	Mesh int // document mesh index, -1 if none
	Skin int // document skin index, -1 if none
}

// Local returns the node's local transform matrix.
func (n *Node) Local() math.Mat4 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	return math.Compose(n.Translation, n.Rotation, n.Scale)
}

// Skin is a resolved document skin: joint node indices in document order
// plus one inverse bind matrix per joint. The ordering fixes shader matrix
// slots and must never be permuted after build.
type Skin struct {
	Name        string
	Joints      []int
	InverseBind []math.Mat4
	Skeleton    int // node index, -1 if unset
}

// Graph is the runtime node tree for one model instance.
type Graph struct {
	Nodes []Node
	Roots []int
	Skins []Skin
}

// Build constructs a Graph from a parsed document. Nodes are created in
// declaration order (deterministic joint indexing), parent/child links are
// wired exactly as declared, and skins are resolved in a second pass so
// forward joint references work regardless of declaration order.
func Build(doc *gltf.Document) (*Graph, error) {
	g := &Graph{
		Nodes: make([]Node, len(doc.Nodes)),
	}

	for i := range doc.Nodes {
		dn := &doc.Nodes[i]
		n := &g.Nodes[i]
		n.Name = dn.Name
		n.Parent = -1
		n.Children = append([]int(nil), dn.Children...)
		n.Mesh = -1
		n.Skin = -1
		if dn.Mesh != nil {
			n.Mesh = *dn.Mesh
		}
		if dn.Skin != nil {
			n.Skin = *dn.Skin
		}

		if dn.Matrix != nil {
			m := math.Mat4(*dn.Matrix)
			n.Matrix = &m
		}
		n.Translation = math.Vec3{}
		n.Rotation = math.QuatIdentity()
		n.Scale = math.Vec3{X: 1, Y: 1, Z: 1}
		if dn.Translation != nil {
			n.Translation = math.Vec3{X: dn.Translation[0], Y: dn.Translation[1], Z: dn.Translation[2]}
		}
		if dn.Rotation != nil {
			n.Rotation = math.QuatFromVec4(*dn.Rotation)
		}
		if dn.Scale != nil {
			n.Scale = math.Vec3{X: dn.Scale[0], Y: dn.Scale[1], Z: dn.Scale[2]}
		}
	}

	// Wire parents. A node claimed by two parents cannot form a tree.
	for i := range g.Nodes {
		for _, c := range g.Nodes[i].Children {
			if g.Nodes[c].Parent >= 0 {
				return nil, fmt.Errorf("%w: node %d has multiple parents (%d and %d)",
					gltf.ErrMalformedAsset, c, g.Nodes[c].Parent, i)
			}
			g.Nodes[c].Parent = i
		}
	}

	// With single parents enforced, a cycle shows up as a parent chain
	// longer than the node count.
	for i := range g.Nodes {
		steps := 0
		for j := i; g.Nodes[j].Parent >= 0; j = g.Nodes[j].Parent {
			steps++
			if steps > len(g.Nodes) {
				return nil, fmt.Errorf("%w: node %d is part of a parent/child cycle", gltf.ErrMalformedAsset, i)
			}
		}
	}

	// Roots: the default scene's nodes when scenes are declared, otherwise
	// every parentless node.
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil {
			si = *doc.Scene
		}
		g.Roots = append([]int(nil), doc.Scenes[si].Nodes...)
	} else {
		for i := range g.Nodes {
			if g.Nodes[i].Parent < 0 {
				g.Roots = append(g.Roots, i)
			}
		}
	}

	// Second pass: resolve skins against the now-complete node table.
	for si := range doc.Skins {
		ds := &doc.Skins[si]
		if len(ds.Joints) > MaxJoints {
			return nil, fmt.Errorf("%w: skin %d has %d joints, capacity %d",
				ErrJointOverflow, si, len(ds.Joints), MaxJoints)
		}

		s := Skin{
			Name:     ds.Name,
			Joints:   append([]int(nil), ds.Joints...),
			Skeleton: -1,
		}
		if ds.Skeleton != nil {
			s.Skeleton = *ds.Skeleton
		}

		if ds.InverseBindMatrices != nil {
			ibm, err := doc.ReadMat4(*ds.InverseBindMatrices)
			if err != nil {
				return nil, fmt.Errorf("skin %d inverse bind matrices: %w", si, err)
			}
			s.InverseBind = ibm
		} else {
			s.InverseBind = make([]math.Mat4, len(s.Joints))
			for i := range s.InverseBind {
				s.InverseBind[i] = math.Identity()
			}
		}
		if len(s.InverseBind) != len(s.Joints) {
			return nil, fmt.Errorf("%w: skin %d has %d joints but %d inverse bind matrices",
				gltf.ErrMalformedAsset, si, len(s.Joints), len(s.InverseBind))
		}

		g.Skins = append(g.Skins, s)
	}

	g.UpdateGlobalTransforms()
	return g, nil
}

// UpdateGlobalTransforms recomputes every node's global transform top-down:
// global(child) = global(parent) * local(child), the root's global equals
// its local. Nodes outside the default scene are treated as roots of their
// own subtrees so a skeleton parked outside the scene list still resolves.
func (g *Graph) UpdateGlobalTransforms() {
	for i := range g.Nodes {
		if g.Nodes[i].Parent < 0 {
			g.updateSubtree(i, math.Identity())
		}
	}
}

func (g *Graph) updateSubtree(i int, parent math.Mat4) {
	n := &g.Nodes[i]
	n.Global = parent.Mul(n.Local())
	for _, c := range n.Children {
		g.updateSubtree(c, n.Global)
	}
}

// Find returns the index of the first node with the given name, or -1.
func (g *Graph) Find(name string) int {
	for i := range g.Nodes {
		if g.Nodes[i].Name == name {
			return i
		}
	}
	return -1
}
