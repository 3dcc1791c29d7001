// Package model aggregates a parsed glTF document with its runtime scene
// graph, animator and extracted mesh data, ready for rendering.
package model

import (
	"github.com/arclight3d/arclight/pkg/math"
)

// Primitive is one drawable chunk of a mesh. Attribute slices are indexed
// per vertex; optional attributes are nil when the source mesh lacks them.
type Primitive struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	TexCoords []math.Vec2
	Joints    [][4]uint16
	Weights   [][4]float32
	Indices   []uint32

	Material int // document material index, -1 if none
	Mode     int
}

// Skinned reports whether the primitive carries joint influences.
func (p *Primitive) Skinned() bool {
	return len(p.Joints) > 0 && len(p.Weights) > 0
}

// Mesh is a named group of primitives with a combined bounding box.
type Mesh struct {
	Name       string
	Primitives []Primitive
	Bounds     Bounds
}

// Bounds is an axis-aligned bounding box in mesh-local space.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

func newBounds() Bounds {
	return Bounds{
		Min: math.Vec3{X: 1e10, Y: 1e10, Z: 1e10},
		Max: math.Vec3{X: -1e10, Y: -1e10, Z: -1e10},
	}
}

func (b *Bounds) extend(p math.Vec3) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extents along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}
