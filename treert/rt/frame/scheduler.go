// Package frame drives the foliage and ornament interpolators once per
// rendered frame in a fixed order.
package frame

import (
	"github.com/gekko3d/treemorph/treert/rt/foliage"
	"github.com/gekko3d/treemorph/treert/rt/ornament"
)

type Scheduler struct {
	Foliage   *foliage.Interpolator
	Ornaments []*ornament.Interpolator

	frames  uint64
	elapsed float64
	formed  bool
}

func NewScheduler(f *foliage.Interpolator, o ...*ornament.Interpolator) *Scheduler {
	return &Scheduler{Foliage: f, Ornaments: o}
}

// Tick forwards formed to every interpolator, then advances foliage
// progress, the foliage uniforms and the ornament instances, in that order.
// Negative dt is treated as zero.
func (s *Scheduler) Tick(dt float32, formed bool) {
	if dt < 0 {
		dt = 0
	}
	s.formed = formed

	if s.Foliage != nil {
		s.Foliage.SetFormed(formed)
	}
	for _, o := range s.Ornaments {
		o.SetFormed(formed)
	}

	if s.Foliage != nil {
		s.Foliage.AdvanceProgress(dt)
		s.Foliage.Update(dt)
	}
	for _, o := range s.Ornaments {
		o.Tick(dt)
	}

	s.frames++
	s.elapsed += float64(dt)
}

func (s *Scheduler) Frames() uint64   { return s.frames }
func (s *Scheduler) Elapsed() float64 { return s.elapsed }
func (s *Scheduler) Formed() bool     { return s.formed }

// Progress reports the raw foliage progress, or 0 without foliage.
func (s *Scheduler) Progress() float32 {
	if s.Foliage == nil {
		return 0
	}
	return s.Foliage.Progress().Progress()
}

// Instances counts ornament instances across all groups.
func (s *Scheduler) Instances() int {
	n := 0
	for _, o := range s.Ornaments {
		n += o.Len()
	}
	return n
}
