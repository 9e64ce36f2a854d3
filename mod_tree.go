package treemorph

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/gekko3d/treemorph/treert/rt/dataset"
	"github.com/gekko3d/treemorph/treert/rt/foliage"
	"github.com/gekko3d/treemorph/treert/rt/frame"
	"github.com/gekko3d/treemorph/treert/rt/ornament"
	"github.com/gekko3d/treemorph/treert/rt/sampler"
)

// App states mirroring the tree layout.
const (
	StateChaos State = iota
	StateFormed
)

// Tree holds the three particle groups and the scheduler that ticks them.
type Tree struct {
	Config    Config
	Foliage   *foliage.Interpolator
	Ornaments *ornament.Interpolator
	Gifts     *ornament.Interpolator
	Scheduler *frame.Scheduler
}

// NewTree validates cfg and samples fresh datasets. A nil rng is replaced by
// one seeded from cfg.Seed.
func NewTree(cfg Config, rng sampler.Source) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	p := cfg.Params()
	fd, err := dataset.Build(p, dataset.Foliage, cfg.FoliageCount, rng)
	if err != nil {
		return nil, fmt.Errorf("build foliage: %w", err)
	}
	od, err := dataset.Build(p, dataset.Ornament, cfg.OrnamentCount, rng)
	if err != nil {
		return nil, fmt.Errorf("build ornaments: %w", err)
	}
	gd, err := dataset.Build(p, dataset.Gift, cfg.GiftCount, rng)
	if err != nil {
		return nil, fmt.Errorf("build gifts: %w", err)
	}

	t := &Tree{
		Config:    cfg,
		Foliage:   foliage.NewInterpolator(fd, core.EmeraldDeep),
		Ornaments: ornament.NewInterpolator(od),
		Gifts:     ornament.NewInterpolator(gd),
	}
	t.Scheduler = frame.NewScheduler(t.Foliage, t.Ornaments, t.Gifts)
	return t, nil
}

// TreeState is the layout flag read by the tree system each frame. It
// follows the App state; change it with ToggleTree or Commands.ChangeState.
type TreeState struct {
	Spatial core.SpatialState
}

// TreeModule installs a prebuilt Tree. The App must be built with
// UseStates(StateChaos, StateFormed).
type TreeModule struct {
	Tree *Tree
}

func (m TreeModule) Install(app *App, cmd *Commands) {
	if m.Tree == nil {
		panic("TreeModule: nil Tree")
	}
	if !app.stateful || app.initialState > StateChaos || app.finalState < StateFormed {
		panic("TreeModule requires UseStates(StateChaos, StateFormed)")
	}

	cmd.AddResources(m.Tree, &TreeState{})
	enterState := func(s core.SpatialState) func(*TreeState) {
		return func(st *TreeState) {
			st.Spatial = s
			app.Logger().Infof("tree -> %s", s)
		}
	}
	app.UseSystem(System(enterState(core.StateChaos)).InState(OnEnter(StateChaos)))
	app.UseSystem(System(enterState(core.StateFormed)).InState(OnEnter(StateFormed)))
	app.UseSystem(System(treeSystem).InStage(Update).RunAlways())
}

func treeSystem(t *Time, tree *Tree, st *TreeState) {
	tree.Scheduler.Tick(t.Seconds(), st.Spatial.Formed())
}

// ToggleTree requests the opposite layout; it applies at the end of the frame.
func ToggleTree(cmd *Commands) {
	if cmd.State() == StateFormed {
		cmd.ChangeState(StateChaos)
		return
	}
	cmd.ChangeState(StateFormed)
}

// TreeControlsModule binds Space to ToggleTree and Escape to Stop. It needs
// InputModule.
type TreeControlsModule struct{}

func (TreeControlsModule) Install(app *App, cmd *Commands) {
	app.UseSystem(System(treeControlsSystem).InStage(PreUpdate).RunAlways())
}

func treeControlsSystem(input *Input, cmd *Commands) {
	if input.JustPressed[KeySpace] {
		ToggleTree(cmd)
	}
	if input.JustPressed[KeyEscape] {
		cmd.Stop()
	}
}
