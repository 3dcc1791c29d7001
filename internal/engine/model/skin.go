package model

import (
	"github.com/arclight3d/arclight/pkg/math"
)

// JointSentinel marks an unused joint influence slot. Exporters pad the
// four-wide influence vector with it when a vertex has fewer joints.
const JointSentinel = 0xFFFF

// SkinVertexMatrix computes the CPU-side skin matrix for one vertex as the
// weighted sum of its joint matrices. Sentinel and out-of-range joint ids
// are skipped; a vertex with no usable influence gets the fallback
// transform. Weights are used as authored, without renormalization.
func SkinVertexMatrix(joints [4]uint16, weights [4]float32, jointMats []math.Mat4, fallback math.Mat4) math.Mat4 {
	var sum math.Mat4
	used := false
	for i := 0; i < 4; i++ {
		j := joints[i]
		if j == JointSentinel || int(j) >= len(jointMats) {
			continue
		}
		w := weights[i]
		if w == 0 {
			continue
		}
		sum = sum.Add(jointMats[j].Scaled(w))
		used = true
	}
	if !used {
		return fallback
	}
	return sum
}

// SkinPositions applies SkinVertexMatrix to every vertex of a skinned
// primitive. Used for CPU-side skinning previews and collision sampling;
// the render path skins on the GPU.
func SkinPositions(p *Primitive, jointMats []math.Mat4, fallback math.Mat4) []math.Vec3 {
	out := make([]math.Vec3, len(p.Positions))
	for i, pos := range p.Positions {
		m := SkinVertexMatrix(p.Joints[i], p.Weights[i], jointMats, fallback)
		out[i] = m.TransformVec3(pos)
	}
	return out
}
