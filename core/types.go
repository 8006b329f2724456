package core

import "fmt"

// Color is a normalized RGBA color.
type Color struct {
	R, G, B, A float32
}

// ColorFromRGBA8 unpacks a 0xRRGGBBAA value.
func ColorFromRGBA8(rgba uint32) Color {
	return Color{
		R: float32(rgba>>24&0xff) / 255,
		G: float32(rgba>>16&0xff) / 255,
		B: float32(rgba>>8&0xff) / 255,
		A: float32(rgba&0xff) / 255,
	}
}

// RGBA8 packs the color as 0xRRGGBBAA, clamping each channel to [0, 1].
func (c Color) RGBA8() uint32 {
	return uint32(channel8(c.R))<<24 | uint32(channel8(c.G))<<16 |
		uint32(channel8(c.B))<<8 | uint32(channel8(c.A))
}

func channel8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Rect is a window rectangle in screen coordinates, stored as its four edges.
type Rect struct {
	Top, Bottom, Left, Right int
}

// RectFromXYWH builds a Rect from an origin and a size.
func RectFromXYWH(x, y, width, height int) Rect {
	return Rect{Top: y, Bottom: y + height, Left: x, Right: x + width}
}

func (r Rect) Width() int {
	return r.Right - r.Left
}

func (r Rect) Height() int {
	return r.Bottom - r.Top
}

func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}
