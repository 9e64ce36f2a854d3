package sampler

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samples = 20000

// fixedSource replays a canned sequence of draws.
type fixedSource struct {
	vals []float64
	i    int
}

func (s *fixedSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func TestSphereVolume_WithinRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const radius = 15.0
	for i := 0; i < samples; i++ {
		p := SphereVolume(rng, radius)
		require.LessOrEqual(t, p.Len(), float32(radius)+1e-4)
	}
}

func TestSphereVolume_VolumetricDensity(t *testing.T) {
	// For a uniform fill (d/R)^3 is uniform on [0,1); bin it and compare.
	rng := rand.New(rand.NewSource(2))
	const radius = 4.0
	const bins = 10
	var hist [bins]int
	for i := 0; i < samples; i++ {
		d := float64(SphereVolume(rng, radius).Len()) / radius
		b := int(d * d * d * bins)
		if b >= bins {
			b = bins - 1
		}
		hist[b]++
	}

	expected := float64(samples) / bins
	for b, n := range hist {
		assert.InDelta(t, expected, float64(n), expected*0.1, "bin %d", b)
	}
}

func TestSphereVolume_DrawOrder(t *testing.T) {
	// u=0 -> theta=0, v=0.5 -> phi=pi/2, w=1 -> r=radius: the +X pole.
	p := SphereVolume(&fixedSource{vals: []float64{0, 0.5, 1}}, 3)
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{3, 0, 0}, 1e-5), "got %v", p)
}

func TestConeVolume_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const height, base = 12.0, 4.5

	for i := 0; i < samples; i++ {
		p := ConeVolume(rng, height, base, 0)
		require.GreaterOrEqual(t, p.Y(), float32(-height/2))
		require.LessOrEqual(t, p.Y(), float32(height/2))

		local := p.Y() + height/2
		radial := float32(math.Hypot(float64(p.X()), float64(p.Z())))
		require.LessOrEqual(t, radial, RadiusAt(height, base, local)+1e-4)
	}
}

func TestConeVolume_Bias(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		p := ConeVolume(rng, 2, 4.5, -5)
		require.GreaterOrEqual(t, p.Y(), float32(-6))
		require.LessOrEqual(t, p.Y(), float32(-4))
	}
}

func TestConeVolume_ZeroHeightIsApex(t *testing.T) {
	src := &fixedSource{vals: []float64{0.5}}
	p := ConeVolume(src, 0, 4.5, 1.5)
	assert.Equal(t, mgl32.Vec3{0, 1.5, 0}, p)
	assert.Equal(t, 0, src.i, "degenerate cone must not consume draws")
	assert.False(t, math.IsNaN(float64(p.X())))
}

func TestConeVolume_HeightIsUniform(t *testing.T) {
	// The apex bias comes from sampling y uniformly; keep it that way.
	rng := rand.New(rand.NewSource(5))
	const height = 10.0
	var lower int
	for i := 0; i < samples; i++ {
		if ConeVolume(rng, height, 3, 0).Y() < 0 {
			lower++
		}
	}
	assert.InDelta(t, 0.5, float64(lower)/samples, 0.02)
}

func TestRadiusAt(t *testing.T) {
	assert.Equal(t, float32(4), RadiusAt(10, 4, 0))
	assert.Equal(t, float32(2), RadiusAt(10, 4, 5))
	assert.Equal(t, float32(0), RadiusAt(10, 4, 10))
	assert.Equal(t, float32(0), RadiusAt(0, 4, 0))
}
