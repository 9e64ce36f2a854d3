// Package sampler draws single random points from the chaos and formed volumes.
package sampler

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Source yields uniform floats in [0,1). *math/rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// SphereVolume returns a point uniformly distributed inside a sphere of the
// given radius centred at the origin. Draws u, v, w in that order.
func SphereVolume(rng Source, radius float32) mgl32.Vec3 {
	u := rng.Float64()
	v := rng.Float64()
	theta := 2 * math.Pi * u
	phi := math.Acos(2*v - 1)
	// cbrt keeps density constant per unit volume
	r := math.Cbrt(rng.Float64()) * float64(radius)

	sinPhi := math.Sin(phi)
	return mgl32.Vec3{
		float32(r * sinPhi * math.Cos(theta)),
		float32(r * sinPhi * math.Sin(theta)),
		float32(r * math.Cos(phi)),
	}
}

// ConeVolume returns a point inside an upright cone whose base sits at
// y = -height/2 + yBias and whose apex sits at y = height/2 + yBias.
// Height is sampled uniformly, so points pack denser toward the apex.
// A non-positive height yields the apex without consuming draws.
func ConeVolume(rng Source, height, baseRadius, yBias float32) mgl32.Vec3 {
	if height <= 0 {
		return mgl32.Vec3{0, yBias, 0}
	}

	h := float64(height)
	y := rng.Float64() * h
	radiusAtY := (h - y) / h * float64(baseRadius)

	angle := rng.Float64() * 2 * math.Pi
	r := math.Sqrt(rng.Float64()) * radiusAtY

	return mgl32.Vec3{
		float32(r * math.Cos(angle)),
		float32(y - h/2 + float64(yBias)),
		float32(r * math.Sin(angle)),
	}
}

// RadiusAt is the cone's cross-section radius at a local height y in [0, height].
func RadiusAt(height, baseRadius, y float32) float32 {
	if height <= 0 {
		return 0
	}
	return baseRadius * (height - y) / height
}
