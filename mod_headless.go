package treemorph

import (
	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/gekko3d/treemorph/treert/rt/foliage"
	"github.com/gekko3d/treemorph/treert/rt/ornament"
)

// Report summarizes the tree after the most recent headless frame.
type Report struct {
	Frames   int
	State    core.SpatialState
	Progress float32
	// Mean distance from each particle to its formed position.
	FoliageError  float32
	OrnamentError float32
	Sparkling     int
}

// HeadlessModule evaluates the foliage on the CPU every frame in place of a
// GPU, toggles the tree once at ToggleAt and stops the App after Frames.
type HeadlessModule struct {
	Frames   int
	ToggleAt int
	Workers  int
	LogEvery int
}

func (m HeadlessModule) Install(app *App, cmd *Commands) {
	evaluator := foliage.NewParallelEvaluator(m.Workers)
	app.OnShutdown(evaluator.Close)
	var samples []foliage.Sample

	cmd.AddResources(&Report{})
	app.UseSystem(System(func(tree *Tree, st *TreeState, report *Report, cmd *Commands) {
		report.Frames++
		samples = evaluator.EvaluateAll(tree.Foliage, samples)
		measure(report, tree, st, samples)

		if m.LogEvery > 0 && report.Frames%m.LogEvery == 0 {
			LogReport(app.Logger(), report)
		}
		if m.ToggleAt > 0 && report.Frames == m.ToggleAt {
			ToggleTree(cmd)
		}
		if m.Frames > 0 && report.Frames >= m.Frames {
			app.Logger().Infof("headless run finished after %d frames", report.Frames)
			cmd.Stop()
		}
	}).InStage(PostUpdate).RunAlways())
}

func measure(r *Report, tree *Tree, st *TreeState, samples []foliage.Sample) {
	r.State = st.Spatial
	r.Progress = tree.Scheduler.Progress()

	r.Sparkling = 0
	var sum float32
	for i, s := range samples {
		sum += s.Position.Sub(tree.Foliage.Dataset().Target(i)).Len()
		if s.Sparkle {
			r.Sparkling++
		}
	}
	r.FoliageError = 0
	if len(samples) > 0 {
		r.FoliageError = sum / float32(len(samples))
	}

	r.OrnamentError = meanOrnamentError(tree.Ornaments, tree.Gifts)
}

func meanOrnamentError(groups ...*ornament.Interpolator) float32 {
	var sum float32
	n := 0
	for _, o := range groups {
		d := o.Dataset()
		for i := 0; i < o.Len(); i++ {
			sum += o.Current(i).Sub(d.Target(i)).Len()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}
