package animation

import (
	"encoding/base64"
	"errors"
	"fmt"
	gomath "math"
	"testing"

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
	return d > -1e-3 && d < 1e-3
}

// channelDoc builds a document with one node and one animation driving a
// single property of that node.
func channelDoc(t *testing.T, path, interp string, times, values []float32, accType string) *gltf.Document {
	t.Helper()

	timeBytes := floatBytes(times...)
	valBytes := floatBytes(values...)
	buf := append(append([]byte(nil), timeBytes...), valBytes...)

	js := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"nodes": [{"name": "target"}],
		"animations": [{
			"name": "clip",
			"channels": [{"sampler": 0, "target": {"node": 0, "path": %q}}],
			"samplers": [{"input": 0, "output": 1, "interpolation": %q}]
		}],
		"buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": %d},
			{"buffer": 0, "byteOffset": %d, "byteLength": %d}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": %d, "type": "SCALAR"},
			{"bufferView": 1, "componentType": 5126, "count": %d, "type": %q}
		]
	}`, path, interp,
		len(buf), base64.StdEncoding.EncodeToString(buf),
		len(timeBytes), len(timeBytes), len(valBytes),
		len(times), len(times), accType)

	doc, err := gltf.Parse([]byte(js), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func newAnimator(t *testing.T, doc *gltf.Document) (*Animator, *scene.Graph) {
	t.Helper()
	g, err := scene.Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a, err := New(doc, g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, g
}

func TestLinearTranslation(t *testing.T) {
	doc := channelDoc(t, "translation", "LINEAR",
		[]float32{0, 1},
		[]float32{0, 0, 0, 10, 0, 0}, "VEC3")
	a, g := newAnimator(t, doc)

	if err := a.Play(0, LoopOnce); err != nil {
		t.Fatalf("Play: %v", err)
	}
	a.Update(0.5)

	if got := g.Nodes[0].Translation.X; !approx(got, 5) {
		t.Fatalf("translation X at t=0.5 = %v, want 5", got)
	}
}

func TestLoopOnceClampsAndFinishes(t *testing.T) {
	doc := channelDoc(t, "translation", "LINEAR",
		[]float32{0, 2},
		[]float32{0, 0, 0, 8, 0, 0}, "VEC3")
	a, g := newAnimator(t, doc)

	if err := a.Play(0, LoopOnce); err != nil {
		t.Fatalf("Play: %v", err)
	}
	a.Update(5)

	if got := g.Nodes[0].Translation.X; !approx(got, 8) {
		t.Fatalf("translation X past clip end = %v, want 8", got)
	}
	if a.Playing() {
		t.Fatal("Playing() = true after clip finished")
	}
}

func TestLoopForeverWraps(t *testing.T) {
	doc := channelDoc(t, "translation", "LINEAR",
		[]float32{0, 2},
		[]float32{0, 0, 0, 8, 0, 0}, "VEC3")
	a, g := newAnimator(t, doc)

	if err := a.Play(0, LoopForever); err != nil {
		t.Fatalf("Play: %v", err)
	}
	// 5.0 wraps to 1.0 on a 2.0 second clip.
	a.Update(5)

	if got := g.Nodes[0].Translation.X; !approx(got, 4) {
		t.Fatalf("translation X after wrap = %v, want 4", got)
	}
	if !a.Playing() {
		t.Fatal("Playing() = false for a looping clip")
	}
}

func TestStepHoldsPreviousKey(t *testing.T) {
	doc := channelDoc(t, "scale", "STEP",
		[]float32{0, 1},
		[]float32{1, 1, 1, 3, 3, 3}, "VEC3")
	a, g := newAnimator(t, doc)

	if err := a.Play(0, LoopOnce); err != nil {
		t.Fatalf("Play: %v", err)
	}
	a.Update(0.9)

	if got := g.Nodes[0].Scale.X; !approx(got, 1) {
		t.Fatalf("scale X under STEP = %v, want 1", got)
	}
	a.Update(0.2)
	if got := g.Nodes[0].Scale.X; !approx(got, 3) {
		t.Fatalf("scale X at final key = %v, want 3", got)
	}
}

func TestRotationSlerp(t *testing.T) {
	// Identity to +90 degrees about Y.
	s := float32(gomath.Sqrt(0.5))
	doc := channelDoc(t, "rotation", "LINEAR",
		[]float32{0, 1},
		[]float32{0, 0, 0, 1, 0, s, 0, s}, "VEC4")
	a, g := newAnimator(t, doc)

	if err := a.Play(0, LoopOnce); err != nil {
		t.Fatalf("Play: %v", err)
	}
	a.Update(0.5)

	// Halfway is 45 degrees: (1,0,0) maps to (cos45, 0, -sin45).
	p := g.Nodes[0].Global.TransformVec3(math.Vec3{X: 1})
	if !approx(p.X, s) || !approx(p.Y, 0) || !approx(p.Z, -s) {
		t.Fatalf("rotated point = %v, want (%v, 0, %v)", p, s, -s)
	}
}

func TestSeekScrubs(t *testing.T) {
	doc := channelDoc(t, "translation", "LINEAR",
		[]float32{0, 2},
		[]float32{0, 0, 0, 8, 0, 0}, "VEC3")
	a, g := newAnimator(t, doc)

	if err := a.Play(0, LoopOnce); err != nil {
		t.Fatalf("Play: %v", err)
	}
	a.Update(5) // finished
	a.Seek(0.5)

	if got := g.Nodes[0].Translation.X; !approx(got, 2) {
		t.Fatalf("translation X after Seek(0.5) = %v, want 2", got)
	}
	if !a.Playing() {
		t.Fatal("Playing() = false after seek revived the clip")
	}
}

func TestClampBeforeFirstKey(t *testing.T) {
	doc := channelDoc(t, "translation", "LINEAR",
		[]float32{1, 2},
		[]float32{4, 0, 0, 8, 0, 0}, "VEC3")
	a, g := newAnimator(t, doc)

	if err := a.Play(0, LoopOnce); err != nil {
		t.Fatalf("Play: %v", err)
	}
	// Clip time 0.5 is before the first key at 1.0.
	a.Update(0.5)

	if got := g.Nodes[0].Translation.X; !approx(got, 4) {
		t.Fatalf("translation X before first key = %v, want 4", got)
	}
}

func TestPlayNameNotFound(t *testing.T) {
	doc := channelDoc(t, "translation", "LINEAR",
		[]float32{0, 1},
		[]float32{0, 0, 0, 1, 0, 0}, "VEC3")
	a, _ := newAnimator(t, doc)

	if err := a.PlayName("missing", LoopOnce); !errors.Is(err, ErrAnimationNotFound) {
		t.Fatalf("PlayName error = %v, want ErrAnimationNotFound", err)
	}
	if err := a.PlayName("clip", LoopOnce); err != nil {
		t.Fatalf("PlayName(clip): %v", err)
	}
}

func TestPlayAllLastWriterWins(t *testing.T) {
	timeBytes := floatBytes(0, 1)
	valA := floatBytes(1, 0, 0, 1, 0, 0)
	valB := floatBytes(7, 0, 0, 7, 0, 0)
	buf := append(append(append([]byte(nil), timeBytes...), valA...), valB...)

	js := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"nodes": [{"name": "target"}],
		"animations": [
			{"name": "a",
			 "channels": [{"sampler": 0, "target": {"node": 0, "path": "translation"}}],
			 "samplers": [{"input": 0, "output": 1}]},
			{"name": "b",
			 "channels": [{"sampler": 0, "target": {"node": 0, "path": "translation"}}],
			 "samplers": [{"input": 0, "output": 2}]}
		],
		"buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 8},
			{"buffer": 0, "byteOffset": 8, "byteLength": 24},
			{"buffer": 0, "byteOffset": 32, "byteLength": 24}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 2, "type": "SCALAR"},
			{"bufferView": 1, "componentType": 5126, "count": 2, "type": "VEC3"},
			{"bufferView": 2, "componentType": 5126, "count": 2, "type": "VEC3"}
		]
	}`, len(buf), base64.StdEncoding.EncodeToString(buf))

	doc, err := gltf.Parse([]byte(js), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	a, g := newAnimator(t, doc)

	a.PlayAll()
	a.Update(0.25)

	if got := g.Nodes[0].Translation.X; !approx(got, 7) {
		t.Fatalf("translation X = %v, want the later clip's 7", got)
	}
}

func TestJointMatrices(t *testing.T) {
	doc := &gltf.Document{
		Nodes: []gltf.Node{
			{Name: "joint", Translation: &[3]float32{0, 2, 0}},
		},
		Skins: []gltf.Skin{{Joints: []int{0}}},
	}
	a, _ := newAnimator(t, doc)

	jm := a.JointMatrices(0)
	p := jm[0].TransformVec3(math.Vec3{})
	if !approx(p.X, 0) || !approx(p.Y, 2) || !approx(p.Z, 0) {
		t.Fatalf("joint 0 origin = %v, want (0, 2, 0)", p)
	}
	if jm[1] != math.Identity() {
		t.Fatal("unused palette slot is not identity")
	}
}

func TestCubicSplineRejectedByParser(t *testing.T) {
	timeBytes := floatBytes(0, 1)
	buf := append(append([]byte(nil), timeBytes...), floatBytes(0, 0, 0, 1, 0, 0)...)

	js := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"nodes": [{}],
		"animations": [{
			"channels": [{"sampler": 0, "target": {"node": 0, "path": "translation"}}],
			"samplers": [{"input": 0, "output": 1, "interpolation": "CUBICSPLINE"}]
		}],
		"buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 8},
			{"buffer": 0, "byteOffset": 8, "byteLength": 24}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 2, "type": "SCALAR"},
			{"bufferView": 1, "componentType": 5126, "count": 2, "type": "VEC3"}
		]
	}`, len(buf), base64.StdEncoding.EncodeToString(buf))

	if _, err := gltf.Parse([]byte(js), ""); !errors.Is(err, gltf.ErrMalformedAsset) {
		t.Fatalf("Parse error = %v, want ErrMalformedAsset", err)
	}
}
