package math

type Vec2 struct {
	X, Y float32
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Vec2FromInts converts a pixel size or position.
func Vec2FromInts(x, y int) Vec2 {
	return Vec2{X: float32(x), Y: float32(y)}
}
