package main

import (
	"github.com/arclight3d/arclight/internal/engine/model"
	"github.com/arclight3d/arclight/pkg/gltf"
)

// flatShape is a solid-color primitive drawn in the XY plane. The
// renderer reads geometry from the primitive and color from the
// document material, so a one-material document is enough.
type flatShape struct {
	model *model.Model
	mesh  *model.Mesh
	prim  *model.Primitive
}

func newFlatShape(name string, color [4]float32, positions [][3]float32, indices []uint32) *flatShape {
	normals := make([][3]float32, len(positions))
	for i := range normals {
		normals[i] = [3]float32{0, 0, 1}
	}
	doc := &gltf.Document{
		Materials: []gltf.Material{{
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &color,
			},
			DoubleSided: true,
		}},
	}
	m := &model.Model{
		Doc: doc,
		Meshes: []model.Mesh{{
			Name: name,
			Primitives: []model.Primitive{{
				Positions: positions,
				Normals:   normals,
				Indices:   indices,
				Material:  0,
			}},
		}},
	}
	mesh := &m.Meshes[0]
	return &flatShape{model: m, mesh: mesh, prim: &mesh.Primitives[0]}
}

// newQuad returns a unit square centered on the origin.
func newQuad(name string, color [4]float32) *flatShape {
	return newFlatShape(name, color,
		[][3]float32{
			{-0.5, -0.5, 0},
			{0.5, -0.5, 0},
			{0.5, 0.5, 0},
			{-0.5, 0.5, 0},
		},
		[]uint32{0, 1, 2, 0, 2, 3},
	)
}

// newShip returns an upward-pointing triangle of unit height.
func newShip(color [4]float32) *flatShape {
	return newFlatShape("ship", color,
		[][3]float32{
			{0, 0.5, 0},
			{-0.4, -0.5, 0},
			{0.4, -0.5, 0},
		},
		[]uint32{0, 1, 2},
	)
}
