package math

import (
	"testing"
)

func TestVec2Ops(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}

	if got := a.Add(b); got != (Vec2{4, 6}) {
		t.Errorf("Add = %v, want {4 6}", got)
	}
	if got := b.Sub(a); got != (Vec2{2, 2}) {
		t.Errorf("Sub = %v, want {2 2}", got)
	}
	if got := (Vec2{3, 4}).Length(); got != 5 {
		t.Errorf("Length = %v, want 5", got)
	}
}

func TestVec2Normalize(t *testing.T) {
	l := Vec2{3, 4}.Normalize().Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Normalize().Length() = %v, want ~1", l)
	}
}

func TestVec3Cross(t *testing.T) {
	// Right-handed: X cross Y is Z. LookAt depends on this orientation.
	x := Vec3{X: 1}
	y := Vec3{Y: 1}
	if got := x.Cross(y); got != (Vec3{Z: 1}) {
		t.Errorf("Cross = %v, want {0 0 1}", got)
	}
	if got := y.Cross(x); got != (Vec3{Z: -1}) {
		t.Errorf("Cross reversed = %v, want {0 0 -1}", got)
	}
}

func TestVec3Lerp(t *testing.T) {
	// Translation and scale channels interpolate component-wise.
	a := Vec3{X: 0, Y: 10, Z: -4}
	b := Vec3{X: 2, Y: 20, Z: 4}
	got := a.Lerp(b, 0.25)
	want := Vec3{X: 0.5, Y: 12.5, Z: -2}
	if got != want {
		t.Errorf("Lerp = %v, want %v", got, want)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	// The zero vector has no direction; it must come back unchanged
	// rather than as NaN.
	got := Vec3{}.Normalize()
	if got != (Vec3{}) {
		t.Errorf("Normalize of zero = %v, want zero", got)
	}
}

func TestVec3XZ(t *testing.T) {
	v := Vec3{X: 3, Y: 7, Z: -2}
	if got := v.XZ(); got != (Vec2{3, -2}) {
		t.Errorf("XZ = %v, want {3 -2}", got)
	}
}
