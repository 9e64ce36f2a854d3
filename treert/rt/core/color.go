package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a linear RGB triple in 0..1.
type Color [3]float32

var White = Color{1, 1, 1}

// Palette entries used by the tree. Values are sRGB hex codes.
var (
	EmeraldDeep  = MustHex("#1a472a")
	EmeraldLight = MustHex("#2d6a4f")
	GoldHigh     = MustHex("#FFD700")
	GoldDeep     = MustHex("#DAA520")
	RedLuxury    = MustHex("#D42426")
	Silver       = MustHex("#E5E4E2")
	WarmWhite    = MustHex("#FFFEF0")
	Background   = MustHex("#0b1015")
)

// Hex parses "#rrggbb" (leading '#' optional).
func Hex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return Color{
		float32((v>>16)&0xff) / 255.0,
		float32((v>>8)&0xff) / 255.0,
		float32(v&0xff) / 255.0,
	}, nil
}

func MustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) Mul(f float32) Color {
	return Color{c[0] * f, c[1] * f, c[2] * f}
}

// Mix returns c blended toward o by t (t=0 -> c, t=1 -> o).
func (c Color) Mix(o Color, t float32) Color {
	return Color{
		c[0] + (o[0]-c[0])*t,
		c[1] + (o[1]-c[1])*t,
		c[2] + (o[2]-c[2])*t,
	}
}

// RGBA widens to the vec4 layout used by GPU buffers.
func (c Color) RGBA() [4]float32 {
	return [4]float32{c[0], c[1], c[2], 1}
}
