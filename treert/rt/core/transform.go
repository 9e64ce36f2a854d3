package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// InstanceTransform is the per-ornament pose composed every frame.
// Angle is applied about X then Y, matching an XYZ Euler rotation with z=0.
type InstanceTransform struct {
	Position mgl32.Vec3
	Angle    float32
	Scale    float32
}

func (t InstanceTransform) ObjectToWorld() mgl32.Mat4 {
	// M = T * Rx * Ry * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := mgl32.HomogRotate3DX(t.Angle).Mul4(mgl32.HomogRotate3DY(t.Angle))
	scale := mgl32.Scale3D(t.Scale, t.Scale, t.Scale)

	return translate.Mul4(rotate).Mul4(scale)
}

// Lerp moves a toward b by t without clamping.
func Lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
