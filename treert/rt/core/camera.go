package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera circles the tree axis (Y-up) looking at Target.
type OrbitCamera struct {
	Target          mgl32.Vec3
	Distance        float32
	Height          float32
	Yaw             float32
	FovDegrees      float32
	Near, Far       float32
	AutoRotateSpeed float32 // revolutions per minute, as orbit controls count it
}

func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Target:          mgl32.Vec3{0, 0, 0},
		Distance:        25,
		Height:          2,
		FovDegrees:      45,
		Near:            0.1,
		Far:             200,
		AutoRotateSpeed: 0.5,
	}
}

func (c *OrbitCamera) Position() mgl32.Vec3 {
	return mgl32.Vec3{
		c.Target.X() + c.Distance*float32(math.Sin(float64(c.Yaw))),
		c.Target.Y() + c.Height,
		c.Target.Z() + c.Distance*float32(math.Cos(float64(c.Yaw))),
	}
}

// Advance spins the camera while the tree is formed.
func (c *OrbitCamera) Advance(dt float32, state SpatialState) {
	if !state.Formed() || dt <= 0 {
		return
	}
	c.Yaw += 2 * math.Pi / 60 * c.AutoRotateSpeed * dt
}

func (c *OrbitCamera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *OrbitCamera) GetProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1.0
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovDegrees), aspect, c.Near, c.Far)
}

// ViewDepth returns the view-space z of p. Points in front of the camera are negative.
func (c *OrbitCamera) ViewDepth(p mgl32.Vec3) float32 {
	return c.GetViewMatrix().Mul4x1(p.Vec4(1)).Z()
}
