package math

type Vec4 struct {
	X, Y, Z, W float32
}

// Vec4FromPair packs two Vec2 values as (a.X, a.Y, b.X, b.Y).
func Vec4FromPair(a, b Vec2) Vec4 {
	return Vec4{X: a.X, Y: a.Y, Z: b.X, W: b.Y}
}

// Array returns the components in uniform upload order.
func (v Vec4) Array() [4]float32 {
	return [4]float32{v.X, v.Y, v.Z, v.W}
}
