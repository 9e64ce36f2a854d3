package foliage

import (
	"math"

	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/gekko3d/treemorph/treert/rt/progress"
	"github.com/go-gl/mathgl/mgl32"
)

// Constants shared with foliage.wgsl. Keep both in sync.
const (
	WindThreshold  = 0.8
	WindFrequency  = 2.0
	WindHeightFreq = 0.5
	WindAmplitude  = 0.1
	WindZFactor    = 0.5

	SizeBase      = 2.0
	SizeSeedRange = 4.0
	SizeDepthRef  = 20.0

	ShadeFloor    = 0.6
	ShadeRange    = 0.4
	ShadeOffsetY  = 5.0
	ShadeSpanY    = 10.0
	SparkleSpeed  = 3.0
	SparkleSpread = 100.0
	SparkleCutoff = 0.92
	SparkleMix    = 0.9
)

// Attributes are the static per-particle inputs.
type Attributes struct {
	Chaos  mgl32.Vec3
	Target mgl32.Vec3
	Seed   float32
}

// Sample is the evaluated state of one particle for one frame.
type Sample struct {
	Position mgl32.Vec3
	Color    core.Color
	Sparkle  bool
}

// Position blends chaos toward target by the eased progress and adds a
// sway once the tree is nearly formed.
func Position(a Attributes, u Uniforms) mgl32.Vec3 {
	pos := core.Lerp(a.Chaos, a.Target, progress.Ease(u.Progress))
	if u.Progress > WindThreshold {
		wind := float32(math.Sin(float64(u.Time*WindFrequency+pos.Y()*WindHeightFreq))) * WindAmplitude
		pos[0] += wind
		pos[2] += wind * WindZFactor
	}
	return pos
}

// PointSize returns the sprite size in pixels for a particle at the given
// view-space depth. Particles at or behind the eye get zero size.
func PointSize(seed, viewDepth float32) float32 {
	if viewDepth >= 0 {
		return 0
	}
	return (SizeSeedRange*seed + SizeBase) * (SizeDepthRef / -viewDepth)
}

// Shade darkens the base color toward the bottom of the tree and applies the
// frost sparkle. Nothing is cached; the same inputs always give the same output.
func Shade(base core.Color, y, seed, time float32) (core.Color, bool) {
	h := (y + ShadeOffsetY) / ShadeSpanY
	h = max(0, min(1, h))
	c := base.Mul(ShadeFloor + ShadeRange*h)

	if Sparkling(seed, time) {
		return c.Mix(core.White, SparkleMix), true
	}
	return c, false
}

// Sparkling reports whether the particle flashes this frame.
func Sparkling(seed, time float32) bool {
	return math.Sin(float64(time*SparkleSpeed+seed*SparkleSpread)) > SparkleCutoff
}

// Evaluate runs the full per-particle function. It depends only on a and u.
func Evaluate(a Attributes, u Uniforms) Sample {
	pos := Position(a, u)
	c, sparkle := Shade(u.BaseColor, pos.Y(), a.Seed, u.Time)
	return Sample{Position: pos, Color: c, Sparkle: sparkle}
}
