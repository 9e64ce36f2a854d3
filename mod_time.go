package treemorph

import (
	"time"
)

type Time struct {
	Time    time.Time
	Dt      time.Duration
	Elapsed time.Duration
	Frame   uint64
}

// Seconds is Dt in seconds, the unit the tree simulation ticks in.
func (t *Time) Seconds() float32 {
	return float32(t.Dt.Seconds())
}

// TimeModule advances the Time resource at the start of every frame. With
// FixedDt set every frame lasts exactly FixedDt, which makes runs
// reproducible. MaxDt caps a single frame after a stall.
type TimeModule struct {
	FixedDt time.Duration
	MaxDt   time.Duration
	Now     func() time.Time
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	now := mod.Now
	if now == nil {
		now = time.Now
	}
	cmd.AddResources(&Time{Time: now()})
	cmd.UseSystem(System(mod.system(now)).InStage(Prelude).RunAlways())
}

func (mod TimeModule) system(now func() time.Time) func(*Time) {
	return func(t *Time) {
		var dt time.Duration
		if mod.FixedDt > 0 {
			dt = mod.FixedDt
			t.Time = t.Time.Add(dt)
		} else {
			current := now()
			dt = current.Sub(t.Time)
			t.Time = current
		}
		if dt < 0 {
			dt = 0
		}
		if mod.MaxDt > 0 && dt > mod.MaxDt {
			dt = mod.MaxDt
		}

		t.Dt = dt
		t.Elapsed += dt
		t.Frame++
	}
}
