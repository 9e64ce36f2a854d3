// Package ornament runs the host-side update for instanced ornaments: every
// instance chases its own target at its own speed.
package ornament

import (
	"slices"

	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/gekko3d/treemorph/treert/rt/dataset"
	"github.com/go-gl/mathgl/mgl32"
)

// Interpolator is the only writer of the per-instance current position and
// rotation angle. Both are addressed by the dataset index.
type Interpolator struct {
	data   *dataset.Dataset
	formed bool

	current  []mgl32.Vec3
	rotation []float32

	colors []core.Color
	buffer *InstanceBuffer
}

func NewInterpolator(data *dataset.Dataset) *Interpolator {
	n := data.Len()
	o := &Interpolator{
		data:     data,
		current:  make([]mgl32.Vec3, n),
		rotation: make([]float32, n),
		colors:   data.Colors(),
		buffer:   NewInstanceBuffer(n),
	}
	for i := 0; i < n; i++ {
		o.current[i] = data.Chaos(i)
	}
	o.writeTransforms()
	o.buffer.Publish()
	return o
}

func (o *Interpolator) Dataset() *dataset.Dataset { return o.data }
func (o *Interpolator) Len() int                  { return len(o.current) }
func (o *Interpolator) Formed() bool              { return o.formed }

func (o *Interpolator) SetFormed(formed bool) { o.formed = formed }

func (o *Interpolator) Current(i int) mgl32.Vec3 { return o.current[i] }
func (o *Interpolator) Rotation(i int) float32   { return o.rotation[i] }

// Colors returns a copy of the per-instance colors captured at creation.
func (o *Interpolator) Colors() []core.Color { return slices.Clone(o.colors) }

func (o *Interpolator) Color(i int) core.Color { return o.colors[i] }

// Transforms returns the last published instance transforms.
func (o *Interpolator) Transforms() []mgl32.Mat4 { return o.buffer.Front() }

func (o *Interpolator) Buffer() *InstanceBuffer { return o.buffer }

// Step moves current toward target by dt*speed of the remaining distance.
// The factor is linear (not eased) and capped at 1 so a stalled frame
// lands on the target rather than past it.
func Step(current, target mgl32.Vec3, dt, speed float32) mgl32.Vec3 {
	t := dt * speed
	if t <= 0 {
		return current
	}
	if t > 1 {
		t = 1
	}
	return core.Lerp(current, target, t)
}

// Tick advances every ornament and publishes a fresh transform for each.
func (o *Interpolator) Tick(dt float32) {
	if dt < 0 {
		dt = 0
	}
	for i := range o.current {
		target := o.data.Chaos(i)
		if o.formed {
			target = o.data.Target(i)
		}
		o.current[i] = Step(o.current[i], target, dt, o.data.Speed(i))
		o.rotation[i] += dt * o.data.RotationSpeed(i)
	}
	o.writeTransforms()
	o.buffer.Publish()
}

func (o *Interpolator) writeTransforms() {
	back := o.buffer.Back()
	for i := range o.current {
		back[i] = core.InstanceTransform{
			Position: o.current[i],
			Angle:    o.rotation[i],
			Scale:    o.data.Scale(i),
		}.ObjectToWorld()
	}
}
