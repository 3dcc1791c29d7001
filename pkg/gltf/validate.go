package gltf

import "fmt"

// validate checks referential integrity across the whole document: every
// index reference must point at an existing element, and every count,
// offset, and length field must be non-negative. Dangling references are
// never patched, and unsupported sampler interpolation is rejected here
// so playback code can assume it never sees one.
func (d *Document) validate() error {
	check := func(ref *int, n int, what string) error {
		if ref != nil && (*ref < 0 || *ref >= n) {
			return fmt.Errorf("%w: dangling %s reference %d (have %d)", ErrMalformedAsset, what, *ref, n)
		}
		return nil
	}
	checkIdx := func(ref, n int, what string) error {
		if ref < 0 || ref >= n {
			return fmt.Errorf("%w: dangling %s reference %d (have %d)", ErrMalformedAsset, what, ref, n)
		}
		return nil
	}
	nonNeg := func(v int, what string) error {
		if v < 0 {
			return fmt.Errorf("%w: negative %s %d", ErrMalformedAsset, what, v)
		}
		return nil
	}

	if err := check(d.Scene, len(d.Scenes), "scene"); err != nil {
		return err
	}
	for si := range d.Scenes {
		for _, n := range d.Scenes[si].Nodes {
			if err := checkIdx(n, len(d.Nodes), "scene node"); err != nil {
				return err
			}
		}
	}

	for ni := range d.Nodes {
		n := &d.Nodes[ni]
		for _, c := range n.Children {
			if err := checkIdx(c, len(d.Nodes), "child node"); err != nil {
				return err
			}
		}
		if err := check(n.Mesh, len(d.Meshes), "mesh"); err != nil {
			return err
		}
		if err := check(n.Skin, len(d.Skins), "skin"); err != nil {
			return err
		}
	}

	for mi := range d.Meshes {
		for pi := range d.Meshes[mi].Primitives {
			p := &d.Meshes[mi].Primitives[pi]
			for sem, ai := range p.Attributes {
				if err := checkIdx(ai, len(d.Accessors), "attribute "+sem); err != nil {
					return err
				}
			}
			if err := check(p.Indices, len(d.Accessors), "index accessor"); err != nil {
				return err
			}
			if err := check(p.Material, len(d.Materials), "material"); err != nil {
				return err
			}
		}
	}

	for mi := range d.Materials {
		pbr := d.Materials[mi].PBRMetallicRoughness
		if pbr != nil && pbr.BaseColorTexture != nil {
			if err := checkIdx(pbr.BaseColorTexture.Index, len(d.Textures), "base color texture"); err != nil {
				return err
			}
		}
	}

	for ti := range d.Textures {
		t := &d.Textures[ti]
		if err := check(t.Source, len(d.Images), "image"); err != nil {
			return err
		}
		if err := check(t.Sampler, len(d.Samplers), "sampler"); err != nil {
			return err
		}
	}

	for ii := range d.Images {
		if err := check(d.Images[ii].BufferView, len(d.BufferViews), "image buffer view"); err != nil {
			return err
		}
	}

	for si := range d.Skins {
		s := &d.Skins[si]
		for _, j := range s.Joints {
			if err := checkIdx(j, len(d.Nodes), "skin joint"); err != nil {
				return err
			}
		}
		if err := check(s.InverseBindMatrices, len(d.Accessors), "inverse bind matrices"); err != nil {
			return err
		}
		if err := check(s.Skeleton, len(d.Nodes), "skeleton root"); err != nil {
			return err
		}
		if s.InverseBindMatrices != nil {
			ibm := &d.Accessors[*s.InverseBindMatrices]
			if ibm.Count != len(s.Joints) {
				return fmt.Errorf("%w: skin %d has %d joints but %d inverse bind matrices",
					ErrMalformedAsset, si, len(s.Joints), ibm.Count)
			}
		}
	}

	for ai := range d.Animations {
		anim := &d.Animations[ai]
		for smp := range anim.Samplers {
			s := &anim.Samplers[smp]
			if err := checkIdx(s.Input, len(d.Accessors), "animation input"); err != nil {
				return err
			}
			if err := checkIdx(s.Output, len(d.Accessors), "animation output"); err != nil {
				return err
			}
			switch s.Interpolation {
			case "", InterpolationLinear, InterpolationStep:
			case InterpolationCubicSpline:
				return fmt.Errorf("%w: animation %d sampler %d: unsupported interpolation CUBICSPLINE",
					ErrMalformedAsset, ai, smp)
			default:
				return fmt.Errorf("%w: animation %d sampler %d: unknown interpolation %q",
					ErrMalformedAsset, ai, smp, s.Interpolation)
			}
		}
		for ci := range anim.Channels {
			c := &anim.Channels[ci]
			if err := checkIdx(c.Sampler, len(anim.Samplers), "channel sampler"); err != nil {
				return err
			}
			if err := check(c.Target.Node, len(d.Nodes), "channel target node"); err != nil {
				return err
			}
		}
	}

	for bi := range d.Buffers {
		if err := nonNeg(d.Buffers[bi].ByteLength, fmt.Sprintf("buffer %d byteLength", bi)); err != nil {
			return err
		}
	}

	for vi := range d.BufferViews {
		bv := &d.BufferViews[vi]
		if err := checkIdx(bv.Buffer, len(d.Buffers), "buffer"); err != nil {
			return err
		}
		if err := nonNeg(bv.ByteOffset, fmt.Sprintf("buffer view %d byteOffset", vi)); err != nil {
			return err
		}
		if err := nonNeg(bv.ByteLength, fmt.Sprintf("buffer view %d byteLength", vi)); err != nil {
			return err
		}
		if err := nonNeg(bv.ByteStride, fmt.Sprintf("buffer view %d byteStride", vi)); err != nil {
			return err
		}
	}

	for ai := range d.Accessors {
		a := &d.Accessors[ai]
		if err := check(a.BufferView, len(d.BufferViews), "accessor buffer view"); err != nil {
			return err
		}
		if err := nonNeg(a.Count, fmt.Sprintf("accessor %d count", ai)); err != nil {
			return err
		}
		if err := nonNeg(a.ByteOffset, fmt.Sprintf("accessor %d byteOffset", ai)); err != nil {
			return err
		}
		if a.Sparse != nil {
			if err := checkIdx(a.Sparse.Indices.BufferView, len(d.BufferViews), "sparse index view"); err != nil {
				return err
			}
			if err := checkIdx(a.Sparse.Values.BufferView, len(d.BufferViews), "sparse value view"); err != nil {
				return err
			}
			if err := nonNeg(a.Sparse.Count, fmt.Sprintf("accessor %d sparse count", ai)); err != nil {
				return err
			}
			if err := nonNeg(a.Sparse.Indices.ByteOffset, fmt.Sprintf("accessor %d sparse index byteOffset", ai)); err != nil {
				return err
			}
			if err := nonNeg(a.Sparse.Values.ByteOffset, fmt.Sprintf("accessor %d sparse value byteOffset", ai)); err != nil {
				return err
			}
		}
		if componentSize(a.ComponentType) == 0 {
			return fmt.Errorf("%w: accessor %d has unknown component type %d", ErrMalformedAsset, ai, a.ComponentType)
		}
		if componentCount(a.Type) == 0 {
			return fmt.Errorf("%w: accessor %d has unsupported type %q", ErrMalformedAsset, ai, a.Type)
		}
	}

	return nil
}
