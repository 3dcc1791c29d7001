package gltf

import (
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/arclight3d/arclight/pkg/math"
)

// Accessor decoding. Every Read* method materializes exactly Count elements,
// honoring byteStride, normalized integer rescaling and sparse substitution.
// Out-of-bounds reads are a hard ErrMalformedAsset, never a truncation.

// accessorBytes resolves the accessor's buffer view window and element
// stride. A nil data slice with no error means the accessor has no buffer
// view (legal for sparse accessors: the base is all zeros).
func (d *Document) accessorBytes(a *Accessor) (data []byte, stride int, err error) {
	elemSize := componentSize(a.ComponentType) * componentCount(a.Type)
	if elemSize == 0 {
		return nil, 0, fmt.Errorf("%w: accessor %q has unknown component or element type", ErrMalformedAsset, a.Name)
	}
	if a.BufferView == nil {
		return nil, elemSize, nil
	}

	bv := &d.BufferViews[*a.BufferView]
	buf := d.BufferData(bv.Buffer)
	if bv.ByteOffset < 0 || bv.ByteLength < 0 || bv.ByteOffset+bv.ByteLength > len(buf) {
		return nil, 0, fmt.Errorf("%w: buffer view %d exceeds buffer size", ErrMalformedAsset, *a.BufferView)
	}
	view := buf[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]

	stride = bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if a.Count > 0 {
		need := a.ByteOffset + (a.Count-1)*stride + elemSize
		if a.ByteOffset < 0 || need > len(view) {
			return nil, 0, fmt.Errorf("%w: accessor reads %d bytes past view of %d", ErrMalformedAsset, need, len(view))
		}
	}
	return view[a.ByteOffset:], stride, nil
}

// component reads one component at byte offset off, rescaling normalized
// integer types to [0,1] or [-1,1] per the glTF component-type rules.
func component(data []byte, off, componentType int, normalized bool) float32 {
	switch componentType {
	case ComponentFloat:
		return gomath.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
	case ComponentByte:
		v := float32(int8(data[off]))
		if normalized {
			return float32(gomath.Max(float64(v)/127, -1))
		}
		return v
	case ComponentUnsignedByte:
		v := float32(data[off])
		if normalized {
			return v / 255
		}
		return v
	case ComponentShort:
		v := float32(int16(binary.LittleEndian.Uint16(data[off:])))
		if normalized {
			return float32(gomath.Max(float64(v)/32767, -1))
		}
		return v
	case ComponentUnsignedShort:
		v := float32(binary.LittleEndian.Uint16(data[off:]))
		if normalized {
			return v / 65535
		}
		return v
	case ComponentUnsignedInt:
		return float32(binary.LittleEndian.Uint32(data[off:]))
	}
	return 0
}

// uintComponent reads one component as an unsigned integer lane, used for
// index and joint-id accessors where values must stay integral.
func uintComponent(data []byte, off, componentType int) uint32 {
	switch componentType {
	case ComponentByte:
		return uint32(int8(data[off]))
	case ComponentUnsignedByte:
		return uint32(data[off])
	case ComponentShort:
		return uint32(int16(binary.LittleEndian.Uint16(data[off:])))
	case ComponentUnsignedShort:
		return uint32(binary.LittleEndian.Uint16(data[off:]))
	case ComponentUnsignedInt:
		return binary.LittleEndian.Uint32(data[off:])
	case ComponentFloat:
		return uint32(gomath.Float32frombits(binary.LittleEndian.Uint32(data[off:])))
	}
	return 0
}

// floats decodes accessor ai into a flat float32 slice of
// count*componentCount values, applying sparse overrides.
func (d *Document) floats(ai int) ([]float32, error) {
	if ai < 0 || ai >= len(d.Accessors) {
		return nil, fmt.Errorf("%w: accessor index %d out of range", ErrMalformedAsset, ai)
	}
	a := &d.Accessors[ai]
	if a.Count < 0 {
		return nil, fmt.Errorf("%w: accessor %d has negative count %d", ErrMalformedAsset, ai, a.Count)
	}
	comps := componentCount(a.Type)
	compSize := componentSize(a.ComponentType)

	data, stride, err := d.accessorBytes(a)
	if err != nil {
		return nil, err
	}

	out := make([]float32, a.Count*comps)
	if data != nil {
		for i := 0; i < a.Count; i++ {
			base := i * stride
			for c := 0; c < comps; c++ {
				out[i*comps+c] = component(data, base+c*compSize, a.ComponentType, a.Normalized)
			}
		}
	}

	if a.Sparse != nil {
		if err := d.applySparseFloats(a, out, comps, compSize); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// uints decodes accessor ai into flat unsigned integer lanes.
func (d *Document) uints(ai int) ([]uint32, error) {
	if ai < 0 || ai >= len(d.Accessors) {
		return nil, fmt.Errorf("%w: accessor index %d out of range", ErrMalformedAsset, ai)
	}
	a := &d.Accessors[ai]
	if a.Count < 0 {
		return nil, fmt.Errorf("%w: accessor %d has negative count %d", ErrMalformedAsset, ai, a.Count)
	}
	comps := componentCount(a.Type)
	compSize := componentSize(a.ComponentType)

	data, stride, err := d.accessorBytes(a)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, a.Count*comps)
	if data != nil {
		for i := 0; i < a.Count; i++ {
			base := i * stride
			for c := 0; c < comps; c++ {
				out[i*comps+c] = uintComponent(data, base+c*compSize, a.ComponentType)
			}
		}
	}

	if a.Sparse != nil {
		if err := d.applySparseUints(a, out, comps, compSize); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// sparseData resolves the index and value windows of a sparse block.
func (d *Document) sparseData(a *Accessor, comps, compSize int) (idx []uint32, values []byte, err error) {
	s := a.Sparse
	if s.Count < 0 {
		return nil, nil, fmt.Errorf("%w: negative sparse count %d", ErrMalformedAsset, s.Count)
	}

	iv := &d.BufferViews[s.Indices.BufferView]
	ibuf := d.BufferData(iv.Buffer)
	isize := componentSize(s.Indices.ComponentType)
	if isize == 0 {
		return nil, nil, fmt.Errorf("%w: sparse index component type %d", ErrMalformedAsset, s.Indices.ComponentType)
	}
	start := iv.ByteOffset + s.Indices.ByteOffset
	if start < 0 || start+s.Count*isize > len(ibuf) {
		return nil, nil, fmt.Errorf("%w: sparse indices exceed buffer", ErrMalformedAsset)
	}
	idx = make([]uint32, s.Count)
	for i := range idx {
		idx[i] = uintComponent(ibuf, start+i*isize, s.Indices.ComponentType)
		if int(idx[i]) >= a.Count {
			return nil, nil, fmt.Errorf("%w: sparse index %d exceeds accessor count %d", ErrMalformedAsset, idx[i], a.Count)
		}
	}

	vv := &d.BufferViews[s.Values.BufferView]
	vbuf := d.BufferData(vv.Buffer)
	vstart := vv.ByteOffset + s.Values.ByteOffset
	if vstart < 0 || vstart+s.Count*comps*compSize > len(vbuf) {
		return nil, nil, fmt.Errorf("%w: sparse values exceed buffer", ErrMalformedAsset)
	}
	return idx, vbuf[vstart:], nil
}

func (d *Document) applySparseFloats(a *Accessor, out []float32, comps, compSize int) error {
	idx, values, err := d.sparseData(a, comps, compSize)
	if err != nil {
		return err
	}
	for i, e := range idx {
		for c := 0; c < comps; c++ {
			out[int(e)*comps+c] = component(values, (i*comps+c)*compSize, a.ComponentType, a.Normalized)
		}
	}
	return nil
}

func (d *Document) applySparseUints(a *Accessor, out []uint32, comps, compSize int) error {
	idx, values, err := d.sparseData(a, comps, compSize)
	if err != nil {
		return err
	}
	for i, e := range idx {
		for c := 0; c < comps; c++ {
			out[int(e)*comps+c] = uintComponent(values, (i*comps+c)*compSize, a.ComponentType)
		}
	}
	return nil
}

// checkType rejects a read against the wrong accessor element type.
func (d *Document) checkType(ai int, want string) error {
	if ai < 0 || ai >= len(d.Accessors) {
		return fmt.Errorf("%w: accessor index %d out of range", ErrMalformedAsset, ai)
	}
	if got := d.Accessors[ai].Type; got != want {
		return fmt.Errorf("%w: accessor %d is %s, want %s", ErrMalformedAsset, ai, got, want)
	}
	return nil
}

// ReadFloats decodes a SCALAR accessor as float32 values.
func (d *Document) ReadFloats(ai int) ([]float32, error) {
	if err := d.checkType(ai, TypeScalar); err != nil {
		return nil, err
	}
	return d.floats(ai)
}

// ReadIndices decodes a SCALAR accessor as element indices.
func (d *Document) ReadIndices(ai int) ([]uint32, error) {
	if err := d.checkType(ai, TypeScalar); err != nil {
		return nil, err
	}
	return d.uints(ai)
}

// ReadVec2 decodes a VEC2 accessor.
func (d *Document) ReadVec2(ai int) ([]math.Vec2, error) {
	if err := d.checkType(ai, TypeVec2); err != nil {
		return nil, err
	}
	flat, err := d.floats(ai)
	if err != nil {
		return nil, err
	}
	out := make([]math.Vec2, len(flat)/2)
	for i := range out {
		out[i] = math.Vec2{X: flat[i*2], Y: flat[i*2+1]}
	}
	return out, nil
}

// ReadVec3 decodes a VEC3 accessor.
func (d *Document) ReadVec3(ai int) ([]math.Vec3, error) {
	if err := d.checkType(ai, TypeVec3); err != nil {
		return nil, err
	}
	flat, err := d.floats(ai)
	if err != nil {
		return nil, err
	}
	out := make([]math.Vec3, len(flat)/3)
	for i := range out {
		out[i] = math.Vec3{X: flat[i*3], Y: flat[i*3+1], Z: flat[i*3+2]}
	}
	return out, nil
}

// ReadVec4 decodes a VEC4 accessor as raw 4-float elements.
func (d *Document) ReadVec4(ai int) ([][4]float32, error) {
	if err := d.checkType(ai, TypeVec4); err != nil {
		return nil, err
	}
	flat, err := d.floats(ai)
	if err != nil {
		return nil, err
	}
	out := make([][4]float32, len(flat)/4)
	for i := range out {
		copy(out[i][:], flat[i*4:i*4+4])
	}
	return out, nil
}

// ReadQuats decodes a VEC4 accessor as (x, y, z, w) quaternions.
func (d *Document) ReadQuats(ai int) ([]math.Quat, error) {
	raw, err := d.ReadVec4(ai)
	if err != nil {
		return nil, err
	}
	out := make([]math.Quat, len(raw))
	for i, q := range raw {
		out[i] = math.QuatFromVec4(q)
	}
	return out, nil
}

// ReadMat4 decodes a MAT4 accessor. glTF stores matrices column-major,
// matching math.Mat4's layout directly.
func (d *Document) ReadMat4(ai int) ([]math.Mat4, error) {
	if err := d.checkType(ai, TypeMat4); err != nil {
		return nil, err
	}
	flat, err := d.floats(ai)
	if err != nil {
		return nil, err
	}
	out := make([]math.Mat4, len(flat)/16)
	for i := range out {
		copy(out[i][:], flat[i*16:i*16+16])
	}
	return out, nil
}

// ReadJoints decodes a VEC4 accessor of joint ids as integral values.
func (d *Document) ReadJoints(ai int) ([][4]uint16, error) {
	if err := d.checkType(ai, TypeVec4); err != nil {
		return nil, err
	}
	flat, err := d.uints(ai)
	if err != nil {
		return nil, err
	}
	out := make([][4]uint16, len(flat)/4)
	for i := range out {
		for c := 0; c < 4; c++ {
			out[i][c] = uint16(flat[i*4+c])
		}
	}
	return out, nil
}
