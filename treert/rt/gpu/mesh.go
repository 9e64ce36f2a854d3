package gpu

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshVertex matches VertexInput in ornament.wgsl
type MeshVertex struct {
	Pos    [3]float32
	Normal [3]float32
}

type Shape int

const (
	ShapeSphere Shape = iota
	ShapeBox
)

func (s Shape) String() string {
	switch s {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	default:
		return "unknown"
	}
}

// UnitSphere is a triangle-list UV sphere of radius 1.
func UnitSphere(rings, segments int) []MeshVertex {
	point := func(r, s int) MeshVertex {
		phi := math.Pi * float64(r) / float64(rings)
		theta := 2 * math.Pi * float64(s) / float64(segments)
		n := [3]float32{
			float32(math.Sin(phi) * math.Cos(theta)),
			float32(math.Cos(phi)),
			float32(math.Sin(phi) * math.Sin(theta)),
		}
		return MeshVertex{Pos: n, Normal: n}
	}

	verts := make([]MeshVertex, 0, rings*segments*6)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a, b := point(r, s), point(r+1, s)
			c, d := point(r+1, s+1), point(r, s+1)
			// CCW seen from outside
			verts = append(verts, a, d, b, b, d, c)
		}
	}
	return verts
}

// UnitBox is a triangle-list cube spanning -0.5..0.5 with flat normals.
func UnitBox() []MeshVertex {
	faces := []struct {
		n, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}

	verts := make([]MeshVertex, 0, 36)
	for _, f := range faces {
		c := f.n.Mul(0.5)
		corner := func(su, sv float32) MeshVertex {
			p := c.Add(f.u.Mul(su * 0.5)).Add(f.v.Mul(sv * 0.5))
			return MeshVertex{Pos: p, Normal: f.n}
		}
		a, b := corner(-1, -1), corner(1, -1)
		cc, d := corner(1, 1), corner(-1, 1)
		verts = append(verts, a, b, cc, a, cc, d)
	}
	return verts
}
