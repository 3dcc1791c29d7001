package model

import (
	"github.com/arclight3d/arclight/internal/engine/animation"
	"github.com/arclight3d/arclight/internal/engine/scene"
	"github.com/arclight3d/arclight/pkg/gltf"
	"github.com/arclight3d/arclight/pkg/math"
)

// Renderer is the boundary between model traversal and the GL layer. The
// model decides per node whether a primitive is drawn statically or
// skinned; the renderer owns buffers, shaders and texture binding.
type Renderer interface {
	DrawMesh(m *Model, mesh *Mesh, prim *Primitive, world math.Mat4)
	DrawSkinnedMesh(m *Model, mesh *Mesh, prim *Primitive, joints []math.Mat4)
}

// Model is one renderable instance of a document. The Document is shared
// read-only across instances; Graph, Animator and override table are per
// instance so playback state never leaks between models.
type Model struct {
	Doc      *gltf.Document
	Graph    *scene.Graph
	Animator *animation.Animator
	Meshes   []Mesh

	overrides map[overrideKey]uint32
}

type overrideKey struct {
	mesh    string
	uniform string
}

// New builds a model instance from a parsed document.
func New(doc *gltf.Document) (*Model, error) {
	g, err := scene.Build(doc)
	if err != nil {
		return nil, err
	}
	anim, err := animation.New(doc, g)
	if err != nil {
		return nil, err
	}
	meshes, err := ExtractMeshes(doc)
	if err != nil {
		return nil, err
	}
	return &Model{
		Doc:      doc,
		Graph:    g,
		Animator: anim,
		Meshes:   meshes,
	}, nil
}

// UpdateAnimation advances playback by dt seconds.
func (m *Model) UpdateAnimation(dt float32) {
	m.Animator.Update(dt)
}

// SetTextureOverride binds a GL texture to a mesh/uniform pair, replacing
// whatever the document's material would supply.
func (m *Model) SetTextureOverride(mesh, uniform string, tex uint32) {
	if m.overrides == nil {
		m.overrides = make(map[overrideKey]uint32)
	}
	m.overrides[overrideKey{mesh, uniform}] = tex
}

// TextureOverride looks up a caller-injected texture binding.
func (m *Model) TextureOverride(mesh, uniform string) (uint32, bool) {
	tex, ok := m.overrides[overrideKey{mesh, uniform}]
	return tex, ok
}

// Render submits every mesh-bearing node. Skinned nodes hand over the
// joint palette for their skin; static nodes hand over their global
// transform.
func (m *Model) Render(r Renderer) {
	m.RenderAt(r, math.Identity())
}

// RenderAt renders the model placed by a world transform. Joint matrices
// are premultiplied so skinned vertices land in world space too.
func (m *Model) RenderAt(r Renderer, world math.Mat4) {
	for ni := range m.Graph.Nodes {
		n := &m.Graph.Nodes[ni]
		if n.Mesh < 0 || n.Mesh >= len(m.Meshes) {
			continue
		}
		mesh := &m.Meshes[n.Mesh]

		if n.Skin >= 0 {
			palette := m.Animator.JointMatrices(n.Skin)
			joints := palette[:m.Animator.JointCount(n.Skin)]
			for i := range joints {
				joints[i] = world.Mul(joints[i])
			}
			for pi := range mesh.Primitives {
				p := &mesh.Primitives[pi]
				if p.Skinned() {
					r.DrawSkinnedMesh(m, mesh, p, joints)
				} else {
					r.DrawMesh(m, mesh, p, world.Mul(n.Global))
				}
			}
			continue
		}
		for pi := range mesh.Primitives {
			r.DrawMesh(m, mesh, &mesh.Primitives[pi], world.Mul(n.Global))
		}
	}
}
