package model

import (
	"fmt"

	"github.com/arclight3d/arclight/pkg/gltf"
)

// Attribute semantics understood by the extractor.
const (
	attrPosition = "POSITION"
	attrNormal   = "NORMAL"
	attrTexCoord = "TEXCOORD_0"
	attrJoints   = "JOINTS_0"
	attrWeights  = "WEIGHTS_0"
)

// ExtractMeshes decodes every mesh in the document into CPU-side vertex
// data. POSITION is mandatory per primitive; the remaining attributes are
// decoded when present. Primitives without an index accessor get a
// sequential index list so the renderer has a single draw path.
func ExtractMeshes(doc *gltf.Document) ([]Mesh, error) {
	meshes := make([]Mesh, len(doc.Meshes))

	for mi := range doc.Meshes {
		dm := &doc.Meshes[mi]
		m := &meshes[mi]
		m.Name = dm.Name
		m.Bounds = newBounds()
		m.Primitives = make([]Primitive, len(dm.Primitives))

		for pi := range dm.Primitives {
			dp := &dm.Primitives[pi]
			p := &m.Primitives[pi]
			if err := extractPrimitive(doc, dp, p); err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			for _, pos := range p.Positions {
				m.Bounds.extend(pos)
			}
		}
	}
	return meshes, nil
}

func extractPrimitive(doc *gltf.Document, dp *gltf.Primitive, p *Primitive) error {
	p.Material = -1
	if dp.Material != nil {
		p.Material = *dp.Material
	}
	p.Mode = gltf.ModeTriangles
	if dp.Mode != nil {
		p.Mode = *dp.Mode
	}

	posAcc, ok := dp.Attributes[attrPosition]
	if !ok {
		return fmt.Errorf("%w: primitive has no POSITION attribute", gltf.ErrMalformedAsset)
	}
	var err error
	if p.Positions, err = doc.ReadVec3(posAcc); err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	if ai, ok := dp.Attributes[attrNormal]; ok {
		if p.Normals, err = doc.ReadVec3(ai); err != nil {
			return fmt.Errorf("normals: %w", err)
		}
	}
	if ai, ok := dp.Attributes[attrTexCoord]; ok {
		if p.TexCoords, err = doc.ReadVec2(ai); err != nil {
			return fmt.Errorf("texcoords: %w", err)
		}
	}
	if ai, ok := dp.Attributes[attrJoints]; ok {
		if p.Joints, err = doc.ReadJoints(ai); err != nil {
			return fmt.Errorf("joints: %w", err)
		}
	}
	if ai, ok := dp.Attributes[attrWeights]; ok {
		if p.Weights, err = doc.ReadVec4(ai); err != nil {
			return fmt.Errorf("weights: %w", err)
		}
	}

	// Per-vertex attributes must agree on vertex count.
	n := len(p.Positions)
	if (p.Normals != nil && len(p.Normals) != n) ||
		(p.TexCoords != nil && len(p.TexCoords) != n) ||
		(p.Joints != nil && len(p.Joints) != n) ||
		(p.Weights != nil && len(p.Weights) != n) {
		return fmt.Errorf("%w: attribute vertex counts differ", gltf.ErrMalformedAsset)
	}

	if dp.Indices != nil {
		if p.Indices, err = doc.ReadIndices(*dp.Indices); err != nil {
			return fmt.Errorf("indices: %w", err)
		}
		for _, idx := range p.Indices {
			if int(idx) >= n {
				return fmt.Errorf("%w: index %d out of range for %d vertices", gltf.ErrMalformedAsset, idx, n)
			}
		}
	} else {
		p.Indices = make([]uint32, n)
		for i := range p.Indices {
			p.Indices[i] = uint32(i)
		}
	}
	return nil
}
