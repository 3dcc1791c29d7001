package model

import (
	"encoding/base64"
	"errors"
	"fmt"
	gomath "math"
	"testing"

	"github.com/arclight3d/arclight/internal/engine/animation"
	"github.com/arclight3d/arclight/internal/engine/scene"
	"github.com/arclight3d/arclight/pkg/gltf"
	"github.com/arclight3d/arclight/pkg/math"
)

func floatBytes(vals ...float32) []byte {
	out := make([]byte, 0, len(vals)*4)
	for _, f := range vals {
		bits := gomath.Float32bits(f)
		out = append(out, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	return out
}

func approx(a, b float32) bool {
	d := a - b
	return d > -1e-4 && d < 1e-4
}

func triangleDoc(t *testing.T, withIndices bool) *gltf.Document {
	t.Helper()

	pos := floatBytes(
		0, 0, 0,
		1, 0, 0,
		0, 2, 0,
	)
	idx := []byte{0, 0, 2, 0, 1, 0} // uint16 0, 2, 1
	buf := append(append([]byte(nil), pos...), idx...)

	indices := ""
	views := `{"buffer": 0, "byteOffset": 0, "byteLength": 36}`
	accessors := `{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}`
	if withIndices {
		indices = `, "indices": 1`
		views += `, {"buffer": 0, "byteOffset": 36, "byteLength": 6}`
		accessors += `, {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}`
	}

	js := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"nodes": [{"mesh": 0}],
		"meshes": [{"name": "tri", "primitives": [
			{"attributes": {"POSITION": 0}%s}
		]}],
		"buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}],
		"bufferViews": [%s],
		"accessors": [%s]
	}`, indices, len(buf), base64.StdEncoding.EncodeToString(buf), views, accessors)

	doc, err := gltf.Parse([]byte(js), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestExtractMeshes(t *testing.T) {
	doc := triangleDoc(t, true)

	meshes, err := ExtractMeshes(doc)
	if err != nil {
		t.Fatalf("ExtractMeshes: %v", err)
	}
	if len(meshes) != 1 || meshes[0].Name != "tri" {
		t.Fatalf("meshes = %+v, want one named tri", meshes)
	}
	p := &meshes[0].Primitives[0]
	if len(p.Positions) != 3 {
		t.Fatalf("positions = %d, want 3", len(p.Positions))
	}
	if len(p.Indices) != 3 || p.Indices[1] != 2 {
		t.Fatalf("indices = %v, want [0 2 1]", p.Indices)
	}
	if p.Material != -1 {
		t.Fatalf("material = %d, want -1", p.Material)
	}

	b := meshes[0].Bounds
	if !approx(b.Min.X, 0) || !approx(b.Max.X, 1) || !approx(b.Max.Y, 2) {
		t.Fatalf("bounds = %+v", b)
	}
}

func TestExtractSequentialIndices(t *testing.T) {
	doc := triangleDoc(t, false)

	meshes, err := ExtractMeshes(doc)
	if err != nil {
		t.Fatalf("ExtractMeshes: %v", err)
	}
	p := &meshes[0].Primitives[0]
	if len(p.Indices) != 3 || p.Indices[0] != 0 || p.Indices[2] != 2 {
		t.Fatalf("indices = %v, want [0 1 2]", p.Indices)
	}
}

func TestExtractRequiresPosition(t *testing.T) {
	doc := &gltf.Document{
		Meshes: []gltf.Mesh{{
			Primitives: []gltf.Primitive{{Attributes: map[string]int{}}},
		}},
	}
	if _, err := ExtractMeshes(doc); !errors.Is(err, gltf.ErrMalformedAsset) {
		t.Fatalf("ExtractMeshes error = %v, want ErrMalformedAsset", err)
	}
}

func TestSkinVertexMatrixBlend(t *testing.T) {
	mats := []math.Mat4{
		math.Translate(0, 0, 0),
		math.Translate(10, 0, 0),
	}
	m := SkinVertexMatrix(
		[4]uint16{0, 1, JointSentinel, JointSentinel},
		[4]float32{0.5, 0.5, 0, 0},
		mats, math.Identity())

	p := m.TransformVec3(math.Vec3{})
	if !approx(p.X, 5) {
		t.Fatalf("blended origin X = %v, want 5", p.X)
	}
}

func TestSkinVertexMatrixAllSentinel(t *testing.T) {
	fallback := math.Translate(0, 7, 0)
	m := SkinVertexMatrix(
		[4]uint16{JointSentinel, JointSentinel, JointSentinel, JointSentinel},
		[4]float32{1, 0, 0, 0},
		[]math.Mat4{math.Identity()}, fallback)

	p := m.TransformVec3(math.Vec3{})
	if !approx(p.Y, 7) {
		t.Fatalf("fallback origin Y = %v, want 7", p.Y)
	}
}

func TestSkinVertexMatrixOutOfRangeSkipped(t *testing.T) {
	mats := []math.Mat4{math.Translate(3, 0, 0)}
	m := SkinVertexMatrix(
		[4]uint16{0, 50, JointSentinel, JointSentinel},
		[4]float32{1, 1, 0, 0},
		mats, math.Identity())

	// Only joint 0 contributes; the out-of-range id is skipped without
	// renormalizing the surviving weight.
	p := m.TransformVec3(math.Vec3{})
	if !approx(p.X, 3) {
		t.Fatalf("origin X = %v, want 3", p.X)
	}
}

func TestSkinVertexMatrixOnlyOutOfRangeFallsBack(t *testing.T) {
	fallback := math.Translate(0, 0, 9)
	m := SkinVertexMatrix(
		[4]uint16{50, JointSentinel, JointSentinel, JointSentinel},
		[4]float32{1, 0, 0, 0},
		[]math.Mat4{math.Identity()}, fallback)

	// An id past the palette is no influence at all, so the vertex keeps
	// the fallback transform rather than collapsing to zero.
	p := m.TransformVec3(math.Vec3{})
	if !approx(p.Z, 9) {
		t.Fatalf("origin Z = %v, want 9", p.Z)
	}
}

type recordingRenderer struct {
	static  int
	skinned int
	joints  int
	world   math.Mat4
}

func (r *recordingRenderer) DrawMesh(_ *Model, _ *Mesh, _ *Primitive, world math.Mat4) {
	r.static++
	r.world = world
}

func (r *recordingRenderer) DrawSkinnedMesh(_ *Model, _ *Mesh, _ *Primitive, joints []math.Mat4) {
	r.skinned++
	r.joints = len(joints)
}

func TestRenderDispatch(t *testing.T) {
	doc := &gltf.Document{
		Nodes: []gltf.Node{
			{Name: "static", Mesh: &[]int{0}[0], Translation: &[3]float32{5, 0, 0}},
			{Name: "skinned", Mesh: &[]int{1}[0], Skin: &[]int{0}[0]},
			{Name: "joint"},
		},
		Skins: []gltf.Skin{{Joints: []int{2}}},
	}
	g, err := scene.Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	anim, err := animation.New(doc, g)
	if err != nil {
		t.Fatalf("New animator: %v", err)
	}

	m := &Model{
		Doc:      doc,
		Graph:    g,
		Animator: anim,
		Meshes: []Mesh{
			{Name: "box", Primitives: []Primitive{{Positions: []math.Vec3{{}}}}},
			{Name: "body", Primitives: []Primitive{{
				Positions: []math.Vec3{{}},
				Joints:    [][4]uint16{{0, JointSentinel, JointSentinel, JointSentinel}},
				Weights:   [][4]float32{{1, 0, 0, 0}},
			}}},
		},
	}

	var r recordingRenderer
	m.Render(&r)

	if r.static != 1 || r.skinned != 1 {
		t.Fatalf("draw calls static=%d skinned=%d, want 1 and 1", r.static, r.skinned)
	}
	if r.joints != 1 {
		t.Fatalf("joint palette length = %d, want 1", r.joints)
	}
	p := r.world.TransformVec3(math.Vec3{})
	if !approx(p.X, 5) {
		t.Fatalf("static world origin X = %v, want 5", p.X)
	}
}

func TestTextureOverride(t *testing.T) {
	m := &Model{}
	if _, ok := m.TextureOverride("body", "uDiffuse"); ok {
		t.Fatal("override present on empty table")
	}
	m.SetTextureOverride("body", "uDiffuse", 42)
	tex, ok := m.TextureOverride("body", "uDiffuse")
	if !ok || tex != 42 {
		t.Fatalf("override = %d, %v, want 42, true", tex, ok)
	}
}
