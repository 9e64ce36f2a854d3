package treemorph

import (
	"math/rand"
	"runtime"
	"testing"
	"time"

	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.FoliageCount = 500
	cfg.OrnamentCount = 40
	cfg.GiftCount = 8
	cfg.Seed = 11
	cfg.Workers = 2
	return cfg
}

func TestNewTree(t *testing.T) {
	tree, err := NewTree(smallConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, 500, tree.Foliage.Dataset().Len())
	assert.Equal(t, 40, tree.Ornaments.Len())
	assert.Equal(t, 8, tree.Gifts.Len())
	assert.Equal(t, 48, tree.Scheduler.Instances())
	assert.Equal(t, core.EmeraldDeep, tree.Foliage.Uniforms().BaseColor)
}

func TestNewTree_InvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.OrnamentCount = 0
	_, err := NewTree(cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewTree_SeedIsDeterministic(t *testing.T) {
	a, err := NewTree(smallConfig(), nil)
	require.NoError(t, err)
	b, err := NewTree(smallConfig(), rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Foliage.Dataset().Target(i), b.Foliage.Dataset().Target(i))
		assert.Equal(t, a.Gifts.Dataset().Chaos(i%8), b.Gifts.Dataset().Chaos(i%8))
	}
}

func newTreeApp(t *testing.T, extra ...Module) (*App, *Tree) {
	t.Helper()
	tree, err := NewTree(smallConfig(), nil)
	require.NoError(t, err)

	builder := NewAppBuilder().
		UseStates(StateChaos, StateFormed).
		UseModule(TimeModule{FixedDt: time.Second / 60}).
		UseModule(TreeModule{Tree: tree})
	for _, m := range extra {
		builder.UseModule(m)
	}
	return builder.Build(), tree
}

func TestTreeModule_ToggleTree(t *testing.T) {
	app, tree := newTreeApp(t)
	st, ok := Resource[TreeState](app)
	require.True(t, ok)

	app.Step()
	assert.Equal(t, StateChaos, app.State())
	assert.Equal(t, core.StateChaos, st.Spatial)
	assert.Zero(t, tree.Scheduler.Progress())

	cmd := app.Commands()
	ToggleTree(cmd)
	// applies at the end of the next frame
	assert.Equal(t, StateFormed, cmd.State())
	assert.Equal(t, StateChaos, app.State())

	app.Step()
	assert.Equal(t, StateFormed, app.State())
	assert.Equal(t, core.StateFormed, st.Spatial)

	app.Step()
	assert.Greater(t, tree.Scheduler.Progress(), float32(0))
	assert.True(t, tree.Scheduler.Formed())

	ToggleTree(cmd)
	app.Step()
	assert.Equal(t, StateChaos, app.State())
	assert.Equal(t, core.StateChaos, st.Spatial)
}

func TestTreeModule_RequiresStates(t *testing.T) {
	tree, err := NewTree(smallConfig(), nil)
	require.NoError(t, err)

	assert.PanicsWithValue(t, "TreeModule requires UseStates(StateChaos, StateFormed)", func() {
		NewAppBuilder().UseModule(TreeModule{Tree: tree}).Build()
	})
	assert.PanicsWithValue(t, "TreeModule: nil Tree", func() {
		NewAppBuilder().UseStates(StateChaos, StateFormed).UseModule(TreeModule{}).Build()
	})
}

func TestHeadless_Converges(t *testing.T) {
	base := runtime.NumGoroutine()
	app, _ := newTreeApp(t, HeadlessModule{Frames: 600, ToggleAt: 1, Workers: 2})
	report, ok := Resource[Report](app)
	require.True(t, ok)

	app.Run()

	assert.True(t, app.Stopped())
	assert.Equal(t, 600, report.Frames)
	assert.Equal(t, core.StateFormed, report.State)
	assert.InDelta(t, 1.0, report.Progress, 1e-3)
	// the residual is the wind sway
	assert.Less(t, report.FoliageError, float32(0.15))
	assert.Less(t, report.OrnamentError, float32(0.05))

	// Run shuts down, which retires the evaluator's workers
	assert.LessOrEqual(t, settledGoroutines(base, 3*time.Second), base)
}

func settledGoroutines(want int, timeout time.Duration) int {
	deadline := time.Now().Add(timeout)
	n := runtime.NumGoroutine()
	for n > want && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
		n = runtime.NumGoroutine()
	}
	return n
}

func TestHeadless_StaysScatteredWithoutToggle(t *testing.T) {
	app, _ := newTreeApp(t, HeadlessModule{Frames: 30})
	report, _ := Resource[Report](app)

	app.Run()

	assert.Equal(t, 30, report.Frames)
	assert.Equal(t, core.StateChaos, report.State)
	assert.Zero(t, report.Progress)
	assert.Greater(t, report.FoliageError, float32(1))
}
