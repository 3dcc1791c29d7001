package gltf

import (
	"encoding/binary"
	"errors"
	gomath "math"
	"testing"
)

// docWithBuffer builds a Document holding a single resolved buffer with one
// buffer view covering it entirely.
func docWithBuffer(data []byte, stride int) *Document {
	return &Document{
		Buffers:     []Buffer{{ByteLength: len(data)}},
		BufferViews: []BufferView{{Buffer: 0, ByteLength: len(data), ByteStride: stride}},
		bin:         [][]byte{data},
	}
}

func f32bytes(vals ...float32) []byte {
	out := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], gomath.Float32bits(v))
	}
	return out
}

func intPtr(v int) *int { return &v }

func TestReadFloats(t *testing.T) {
	doc := docWithBuffer(f32bytes(0.5, 1.5, -2), 0)
	doc.Accessors = []Accessor{{
		BufferView:    intPtr(0),
		ComponentType: ComponentFloat,
		Count:         3,
		Type:          TypeScalar,
	}}

	got, err := doc.ReadFloats(0)
	if err != nil {
		t.Fatalf("ReadFloats: %v", err)
	}
	want := []float32{0.5, 1.5, -2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReadNormalizedComponents(t *testing.T) {
	tests := []struct {
		name          string
		data          []byte
		componentType int
		want          []float32
		tol           float32
	}{
		{
			name:          "unsigned byte",
			data:          []byte{0, 127, 255},
			componentType: ComponentUnsignedByte,
			want:          []float32{0, 127.0 / 255, 1},
			tol:           1e-6,
		},
		{
			name:          "signed byte",
			data:          []byte{0x81, 0, 127}, // -127, 0, 127
			componentType: ComponentByte,
			want:          []float32{-1, 0, 1},
			tol:           1e-6,
		},
		{
			name:          "unsigned short",
			data:          []byte{0, 0, 0xFF, 0xFF, 0x00, 0x80},
			componentType: ComponentUnsignedShort,
			want:          []float32{0, 1, 32768.0 / 65535},
			tol:           1e-6,
		},
		{
			name:          "signed short",
			data:          []byte{0x01, 0x80, 0xFF, 0x7F, 0, 0}, // -32767, 32767, 0
			componentType: ComponentShort,
			want:          []float32{-1, 1, 0},
			tol:           1e-6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docWithBuffer(tt.data, 0)
			doc.Accessors = []Accessor{{
				BufferView:    intPtr(0),
				ComponentType: tt.componentType,
				Normalized:    true,
				Count:         len(tt.want),
				Type:          TypeScalar,
			}}

			got, err := doc.ReadFloats(0)
			if err != nil {
				t.Fatalf("ReadFloats: %v", err)
			}
			for i := range tt.want {
				if gomath.Abs(float64(got[i]-tt.want[i])) > float64(tt.tol) {
					t.Errorf("element %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReadVec3WithStride(t *testing.T) {
	// Two Vec3 elements padded to a 16-byte stride; the pad floats must be
	// skipped.
	data := f32bytes(
		1, 2, 3, 99,
		4, 5, 6, 99,
	)
	doc := docWithBuffer(data, 16)
	doc.Accessors = []Accessor{{
		BufferView:    intPtr(0),
		ComponentType: ComponentFloat,
		Count:         2,
		Type:          TypeVec3,
	}}

	got, err := doc.ReadVec3(0)
	if err != nil {
		t.Fatalf("ReadVec3: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d elements, want 2", len(got))
	}
	if got[0].X != 1 || got[0].Y != 2 || got[0].Z != 3 {
		t.Errorf("element 0: got %+v", got[0])
	}
	if got[1].X != 4 || got[1].Y != 5 || got[1].Z != 6 {
		t.Errorf("element 1: got %+v", got[1])
	}
}

func TestReadIndicesComponentTypes(t *testing.T) {
	tests := []struct {
		name          string
		data          []byte
		componentType int
		want          []uint32
	}{
		{"u8", []byte{0, 1, 250}, ComponentUnsignedByte, []uint32{0, 1, 250}},
		{"u16", []byte{0x00, 0x00, 0x34, 0x12, 0xFF, 0xFF}, ComponentUnsignedShort, []uint32{0, 0x1234, 0xFFFF}},
		{"u32", []byte{0x78, 0x56, 0x34, 0x12}, ComponentUnsignedInt, []uint32{0x12345678}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docWithBuffer(tt.data, 0)
			doc.Accessors = []Accessor{{
				BufferView:    intPtr(0),
				ComponentType: tt.componentType,
				Count:         len(tt.want),
				Type:          TypeScalar,
			}}

			got, err := doc.ReadIndices(0)
			if err != nil {
				t.Fatalf("ReadIndices: %v", err)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("element %d: got %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReadMat4ColumnMajor(t *testing.T) {
	var vals []float32
	for i := 0; i < 16; i++ {
		vals = append(vals, float32(i))
	}
	doc := docWithBuffer(f32bytes(vals...), 0)
	doc.Accessors = []Accessor{{
		BufferView:    intPtr(0),
		ComponentType: ComponentFloat,
		Count:         1,
		Type:          TypeMat4,
	}}

	got, err := doc.ReadMat4(0)
	if err != nil {
		t.Fatalf("ReadMat4: %v", err)
	}
	for i := 0; i < 16; i++ {
		if got[0][i] != float32(i) {
			t.Errorf("element %d: got %v, want %v", i, got[0][i], float32(i))
		}
	}
}

func TestReadJoints(t *testing.T) {
	doc := docWithBuffer([]byte{0, 1, 2, 3, 0xFF, 0xFF, 0xFF, 0xFF}, 0)
	doc.Accessors = []Accessor{{
		BufferView:    intPtr(0),
		ComponentType: ComponentUnsignedByte,
		Count:         2,
		Type:          TypeVec4,
	}}

	got, err := doc.ReadJoints(0)
	if err != nil {
		t.Fatalf("ReadJoints: %v", err)
	}
	if got[0] != [4]uint16{0, 1, 2, 3} {
		t.Errorf("element 0: got %v", got[0])
	}
	if got[1] != [4]uint16{255, 255, 255, 255} {
		t.Errorf("element 1: got %v", got[1])
	}
}

func TestAccessorOutOfBounds(t *testing.T) {
	doc := docWithBuffer(f32bytes(1, 2), 0)
	doc.Accessors = []Accessor{{
		BufferView:    intPtr(0),
		ComponentType: ComponentFloat,
		Count:         4, // only 2 floats available
		Type:          TypeScalar,
	}}

	if _, err := doc.ReadFloats(0); !errors.Is(err, ErrMalformedAsset) {
		t.Errorf("expected ErrMalformedAsset, got %v", err)
	}
}

func TestNegativeAccessorCount(t *testing.T) {
	doc := docWithBuffer(f32bytes(1, 2), 0)
	doc.Accessors = []Accessor{{
		BufferView:    intPtr(0),
		ComponentType: ComponentFloat,
		Count:         -1,
		Type:          TypeScalar,
	}}

	if _, err := doc.ReadFloats(0); !errors.Is(err, ErrMalformedAsset) {
		t.Errorf("ReadFloats: expected ErrMalformedAsset, got %v", err)
	}

	doc.Accessors[0].ComponentType = ComponentUnsignedShort
	if _, err := doc.ReadIndices(0); !errors.Is(err, ErrMalformedAsset) {
		t.Errorf("ReadIndices: expected ErrMalformedAsset, got %v", err)
	}
}

func TestNegativeSparseCount(t *testing.T) {
	doc := docWithBuffer(f32bytes(0, 0, 0, 0), 0)

	sparse := &Sparse{Count: -1}
	sparse.Indices.BufferView = 0
	sparse.Indices.ComponentType = ComponentUnsignedByte
	sparse.Values.BufferView = 0

	doc.Accessors = []Accessor{{
		ComponentType: ComponentFloat,
		Count:         4,
		Type:          TypeScalar,
		Sparse:        sparse,
	}}

	if _, err := doc.ReadFloats(0); !errors.Is(err, ErrMalformedAsset) {
		t.Errorf("expected ErrMalformedAsset, got %v", err)
	}
}

func TestSparseAccessor(t *testing.T) {
	// Base: 5 scalars [0..4]. Sparse overrides elements 1 and 3.
	base := f32bytes(0, 1, 2, 3, 4)
	sparseIdx := []byte{1, 3}
	sparseVals := f32bytes(10, 30)

	data := append(append(append([]byte{}, base...), sparseIdx...), sparseVals...)
	doc := &Document{
		Buffers: []Buffer{{ByteLength: len(data)}},
		BufferViews: []BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: len(base)},
			{Buffer: 0, ByteOffset: len(base), ByteLength: 2},
			{Buffer: 0, ByteOffset: len(base) + 2, ByteLength: 8},
		},
		bin: [][]byte{data},
	}

	sparse := &Sparse{Count: 2}
	sparse.Indices.BufferView = 1
	sparse.Indices.ComponentType = ComponentUnsignedByte
	sparse.Values.BufferView = 2

	doc.Accessors = []Accessor{{
		BufferView:    intPtr(0),
		ComponentType: ComponentFloat,
		Count:         5,
		Type:          TypeScalar,
		Sparse:        sparse,
	}}

	got, err := doc.ReadFloats(0)
	if err != nil {
		t.Fatalf("ReadFloats: %v", err)
	}
	want := []float32{0, 10, 2, 30, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSparseAccessorWithoutBufferView(t *testing.T) {
	// No base buffer view: base values are zero, sparse fills element 2.
	sparseIdx := []byte{2}
	sparseVals := f32bytes(7)
	data := append(append([]byte{}, sparseIdx...), sparseVals...)

	doc := &Document{
		Buffers: []Buffer{{ByteLength: len(data)}},
		BufferViews: []BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 1},
			{Buffer: 0, ByteOffset: 1, ByteLength: 4},
		},
		bin: [][]byte{data},
	}

	sparse := &Sparse{Count: 1}
	sparse.Indices.BufferView = 0
	sparse.Indices.ComponentType = ComponentUnsignedByte
	sparse.Values.BufferView = 1

	doc.Accessors = []Accessor{{
		ComponentType: ComponentFloat,
		Count:         4,
		Type:          TypeScalar,
		Sparse:        sparse,
	}}

	got, err := doc.ReadFloats(0)
	if err != nil {
		t.Fatalf("ReadFloats: %v", err)
	}
	want := []float32{0, 0, 7, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSparseIndexOutOfRange(t *testing.T) {
	sparseIdx := []byte{9} // accessor count is 4
	sparseVals := f32bytes(7)
	data := append(append([]byte{}, sparseIdx...), sparseVals...)

	doc := &Document{
		Buffers: []Buffer{{ByteLength: len(data)}},
		BufferViews: []BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 1},
			{Buffer: 0, ByteOffset: 1, ByteLength: 4},
		},
		bin: [][]byte{data},
	}

	sparse := &Sparse{Count: 1}
	sparse.Indices.BufferView = 0
	sparse.Indices.ComponentType = ComponentUnsignedByte
	sparse.Values.BufferView = 1

	doc.Accessors = []Accessor{{
		ComponentType: ComponentFloat,
		Count:         4,
		Type:          TypeScalar,
		Sparse:        sparse,
	}}

	if _, err := doc.ReadFloats(0); !errors.Is(err, ErrMalformedAsset) {
		t.Errorf("expected ErrMalformedAsset, got %v", err)
	}
}

func TestReadWrongElementType(t *testing.T) {
	doc := docWithBuffer(f32bytes(1, 2, 3), 0)
	doc.Accessors = []Accessor{{
		BufferView:    intPtr(0),
		ComponentType: ComponentFloat,
		Count:         1,
		Type:          TypeVec3,
	}}

	if _, err := doc.ReadFloats(0); !errors.Is(err, ErrMalformedAsset) {
		t.Errorf("ReadFloats on VEC3 accessor: expected ErrMalformedAsset, got %v", err)
	}
	if _, err := doc.ReadMat4(0); !errors.Is(err, ErrMalformedAsset) {
		t.Errorf("ReadMat4 on VEC3 accessor: expected ErrMalformedAsset, got %v", err)
	}
}
