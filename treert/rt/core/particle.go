package core

// FoliageVertex matches the per-instance attributes in foliage.wgsl
// struct { chaos: vec3<f32>, target: vec3<f32>, seed: f32 }
type FoliageVertex struct {
	Chaos  [3]float32
	Target [3]float32
	Seed   float32
}
