package dataset

import (
	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/gekko3d/treemorph/treert/rt/sampler"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ornaments scatter a little wider than the foliage
	OrnamentChaosScale = 1.2

	// ornaments hang on the outer 90% of the cone, pushed out onto the leaves
	OrnamentConeScale    = 0.9
	OrnamentSurfacePush  = 1.1
	GiftBandHeight       = 2.0
	GiftBandLift         = 1.0
	HighlightProbability = 0.10
)

// Weight ranges, [min, max).
var (
	GiftSpeed     = [2]float32{0.8, 1.3}
	OrnamentSpeed = [2]float32{1.5, 3.0}

	GiftScale     = [2]float32{0.4, 0.8}
	OrnamentScale = [2]float32{0.2, 0.4}

	RotationSpeed = [2]float32{-1, 1}
)

// Base palette in draw order: the top third of the unit interval picks
// PaletteA, the middle third PaletteB, the bottom third PaletteC.
var (
	PaletteA  = core.RedLuxury
	PaletteB  = core.GoldHigh
	PaletteC  = core.Silver
	Highlight = core.WarmWhite
)

// PaletteColor maps one uniform draw onto the base palette.
func PaletteColor(c float64) core.Color {
	switch {
	case c >= 2.0/3.0:
		return PaletteA
	case c >= 1.0/3.0:
		return PaletteB
	default:
		return PaletteC
	}
}

// ornamentTarget places one ornament or gift on the tree.
func ornamentTarget(rng sampler.Source, p Params, kind Kind) mgl32.Vec3 {
	if kind == Gift {
		return sampler.ConeVolume(rng, GiftBandHeight, p.TreeRadius, -p.TreeHeight/2+GiftBandLift)
	}
	t := sampler.ConeVolume(rng, p.TreeHeight*OrnamentConeScale, p.TreeRadius*OrnamentConeScale, 0)
	return mgl32.Vec3{t.X() * OrnamentSurfacePush, t.Y(), t.Z() * OrnamentSurfacePush}
}

func fillOrnament(d *Dataset, i int, p Params, rng sampler.Source) {
	d.chaos[i] = sampler.SphereVolume(rng, p.ChaosRadius*OrnamentChaosScale)
	d.target[i] = ornamentTarget(rng, p, d.kind)

	color := PaletteColor(rng.Float64())
	if rng.Float64() < HighlightProbability {
		color = Highlight
	}
	d.color[i] = color

	speed, scale := OrnamentSpeed, OrnamentScale
	if d.kind == Gift {
		speed, scale = GiftSpeed, GiftScale
	}
	d.speed[i] = uniform(rng, speed)
	d.scale[i] = uniform(rng, scale)
	d.rotSpeed[i] = uniform(rng, RotationSpeed)
}

func uniform(rng sampler.Source, r [2]float32) float32 {
	return r[0] + float32(rng.Float64())*(r[1]-r[0])
}
