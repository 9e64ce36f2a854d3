package frame

import (
	"math/rand"
	"testing"

	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/gekko3d/treemorph/treert/rt/dataset"
	"github.com/gekko3d/treemorph/treert/rt/foliage"
	"github.com/gekko3d/treemorph/treert/rt/ornament"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var params = dataset.Params{TreeHeight: 12, TreeRadius: 4.5, ChaosRadius: 15}

func newScheduler(t *testing.T) *Scheduler {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	fd, err := dataset.Build(params, dataset.Foliage, 64, rng)
	require.NoError(t, err)
	od, err := dataset.Build(params, dataset.Ornament, 16, rng)
	require.NoError(t, err)
	gd, err := dataset.Build(params, dataset.Gift, 4, rng)
	require.NoError(t, err)
	return NewScheduler(
		foliage.NewInterpolator(fd, core.EmeraldDeep),
		ornament.NewInterpolator(od),
		ornament.NewInterpolator(gd),
	)
}

func TestScheduler_ForwardsFormed(t *testing.T) {
	s := newScheduler(t)
	s.Tick(0.016, true)

	assert.True(t, s.Formed())
	assert.Equal(t, float32(1), s.Foliage.Progress().Target())
	for _, o := range s.Ornaments {
		assert.True(t, o.Formed())
	}

	s.Tick(0.016, false)
	assert.Equal(t, float32(0), s.Foliage.Progress().Target())
	for _, o := range s.Ornaments {
		assert.False(t, o.Formed())
	}
}

func TestScheduler_UniformsSeeSameTickProgress(t *testing.T) {
	s := newScheduler(t)
	s.Tick(0.5, true)

	// progress advances before the uniform snapshot in the same tick
	u := s.Foliage.Uniforms()
	assert.InDelta(t, 0.4, u.Progress, 1e-6)
	assert.InDelta(t, 0.5, u.Time, 1e-6)
	assert.Equal(t, s.Progress(), u.Progress)
}

func TestScheduler_OrnamentsMoveTowardTarget(t *testing.T) {
	s := newScheduler(t)
	o := s.Ornaments[0]
	d := o.Dataset()
	before := o.Current(0).Sub(d.Target(0)).Len()

	for i := 0; i < 30; i++ {
		s.Tick(1.0/60, true)
	}
	after := o.Current(0).Sub(d.Target(0)).Len()
	assert.Less(t, after, before)
}

func TestScheduler_ReversalMidFlight(t *testing.T) {
	s := newScheduler(t)
	for i := 0; i < 30; i++ {
		s.Tick(1.0/60, true)
	}
	p := s.Progress()
	s.Tick(1.0/60, false)
	assert.Less(t, s.Progress(), p)
}

func TestScheduler_NegativeDt(t *testing.T) {
	s := newScheduler(t)
	s.Tick(0.25, true)
	p := s.Progress()
	time := s.Foliage.Uniforms().Time
	pos := s.Ornaments[0].Current(0)

	s.Tick(-1, true)
	assert.Equal(t, p, s.Progress())
	assert.Equal(t, time, s.Foliage.Uniforms().Time)
	assert.Equal(t, pos, s.Ornaments[0].Current(0))
	assert.Equal(t, uint64(2), s.Frames())
	assert.InDelta(t, 0.25, s.Elapsed(), 1e-6)
}

func TestScheduler_Counts(t *testing.T) {
	s := newScheduler(t)
	assert.Equal(t, 20, s.Instances())
	assert.Zero(t, s.Frames())
}

func TestScheduler_OrnamentsOnly(t *testing.T) {
	d, err := dataset.FromRecords(dataset.Ornament, []dataset.Record{{
		Target: mgl32.Vec3{10, 0, 0}, Scale: 1, Speed: 1,
	}})
	require.NoError(t, err)
	o := ornament.NewInterpolator(d)
	s := NewScheduler(nil, o)

	s.Tick(0.1, true)
	assert.True(t, mgl32.Vec3{1, 0, 0}.ApproxEqual(o.Current(0)))
	assert.Zero(t, s.Progress())
}
