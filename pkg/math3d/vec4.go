package math3d

import "math"

// Vec4 represents a 4D vector. In this module it is used exclusively to
// store a tangent together with its handedness sign in W.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// V4FromV3 creates a Vec4 from a Vec3 with the given W.
func V4FromV3(v Vec3, w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// Vec3 returns the Vec3 portion (ignoring W).
func (v Vec4) Vec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// ApproxEqual reports whether v and b match within the given tolerance
// componentwise.
func (v Vec4) ApproxEqual(b Vec4, tolerance float64) bool {
	return math.Abs(v.X-b.X) < tolerance &&
		math.Abs(v.Y-b.Y) < tolerance &&
		math.Abs(v.Z-b.Z) < tolerance &&
		math.Abs(v.W-b.W) < tolerance
}
