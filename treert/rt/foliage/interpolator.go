// Package foliage drives the GPU-evaluated point cloud: it owns the shared
// per-frame uniforms and a CPU reference of the per-particle shader math.
package foliage

import (
	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/gekko3d/treemorph/treert/rt/dataset"
	"github.com/gekko3d/treemorph/treert/rt/progress"
)

// TransitionRate is the progress approach rate, per second.
const TransitionRate = 0.8

// Uniforms are the values shared by every particle in a frame.
type Uniforms struct {
	Time      float32
	Progress  float32
	BaseColor core.Color
}

type Interpolator struct {
	data     *dataset.Dataset
	progress *progress.Controller
	uniforms Uniforms
}

func NewInterpolator(data *dataset.Dataset, baseColor core.Color) *Interpolator {
	return &Interpolator{
		data:     data,
		progress: progress.NewController(),
		uniforms: Uniforms{BaseColor: baseColor},
	}
}

func (f *Interpolator) Dataset() *dataset.Dataset { return f.data }

// Progress exposes the controller so the frame scheduler can tick it.
func (f *Interpolator) Progress() *progress.Controller { return f.progress }

func (f *Interpolator) SetFormed(formed bool) { f.progress.SetFormed(formed) }

// AdvanceProgress ticks the controller at the foliage transition rate.
func (f *Interpolator) AdvanceProgress(dt float32) float32 {
	return f.progress.Tick(dt, TransitionRate)
}

// Update accumulates time and snapshots the uniforms for this frame.
func (f *Interpolator) Update(dt float32) Uniforms {
	if dt > 0 {
		f.uniforms.Time += dt
	}
	f.uniforms.Progress = f.progress.Progress()
	return f.uniforms
}

func (f *Interpolator) Uniforms() Uniforms { return f.uniforms }

func (f *Interpolator) Attributes(i int) Attributes {
	return Attributes{
		Chaos:  f.data.Chaos(i),
		Target: f.data.Target(i),
		Seed:   f.data.Seed(i),
	}
}

// EvaluateAll evaluates every particle sequentially into out, growing it if needed.
func (f *Interpolator) EvaluateAll(out []Sample) []Sample {
	n := f.data.Len()
	if cap(out) < n {
		out = make([]Sample, n)
	}
	out = out[:n]
	u := f.uniforms
	for i := 0; i < n; i++ {
		out[i] = Evaluate(f.Attributes(i), u)
	}
	return out
}
