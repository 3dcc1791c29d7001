package math

// Compose builds a local transform matrix from decomposed TRS components.
// The result applies scale first, then rotation, then translation
// (T * R * S under column-major composition).
func Compose(translation Vec3, rotation Quat, scale Vec3) Mat4 {
	m := Translate(translation.X, translation.Y, translation.Z)
	m = m.Mul(rotation.ToMat4())
	return m.Mul(Scale(scale.X, scale.Y, scale.Z))
}

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}
