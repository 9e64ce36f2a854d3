package app

import (
	"strings"
	"testing"
	"time"

	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/stretchr/testify/assert"
)

func fakeClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestProfiler_Smoothing(t *testing.T) {
	p := NewProfiler()
	clock, advance := fakeClock(time.Unix(0, 0))
	p.now = clock
	p.Smoothing = 0.5

	p.BeginScope("upload")
	advance(4 * time.Millisecond)
	p.EndScope("upload")
	assert.Equal(t, 4*time.Millisecond, p.Scopes["upload"])

	p.BeginScope("upload")
	advance(2 * time.Millisecond)
	p.EndScope("upload")
	assert.Equal(t, 3*time.Millisecond, p.Scopes["upload"])

	// unmatched end is ignored
	p.EndScope("upload")
	assert.Equal(t, 3*time.Millisecond, p.Scopes["upload"])
}

func TestProfiler_StatsString(t *testing.T) {
	p := NewProfiler()
	clock, advance := fakeClock(time.Unix(0, 0))
	p.now = clock

	p.BeginScope("upload")
	advance(1500 * time.Microsecond)
	p.EndScope("upload")
	p.BeginScope("render")
	p.EndScope("render")
	p.BeginScope("upload")
	p.SetCount("ornaments", 450)
	p.SetCount("foliage", 15000)

	assert.Equal(t, []string{"upload", "render"}, p.Order)
	s := p.GetStatsString()
	assert.Contains(t, s, "upload    : 1.50 ms")
	assert.Contains(t, s, "render    : 0.00 ms")
	assert.Less(t, strings.Index(s, "foliage"), strings.Index(s, "ornaments"))

	p.Reset()
	assert.Zero(t, p.Scopes["upload"])
}

func TestHUDLines(t *testing.T) {
	assert.Equal(t, "CHAOS    0%\n[space] Decorate Tree", HUDLines(core.StateChaos, 0))
	assert.Equal(t, "FORMED  100%\n[space] Release Magic", HUDLines(core.StateFormed, 1))
	assert.Equal(t, "FORMED   50%\n[space] Release Magic", HUDLines(core.StateFormed, 0.5))
}
