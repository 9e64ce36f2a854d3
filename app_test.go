package treemorph

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

type callLog struct {
	calls []string
}

func TestApp_changeState(t *testing.T) {
	app := NewAppBuilder().UseStates(1, 3).Build()
	app.Step()

	app.changeState(2)
	assert.Equal(t, State(2), app.nextState)
	assert.True(t, app.stateTransitioning)

	app.executeChangeState(2)
	assert.Equal(t, State(2), app.State())

	require.PanicsWithValue(t, "State 7 doesn't exist", func() {
		app.changeState(7)
	})
}

func TestApp_changeStateStateless(t *testing.T) {
	app := NewAppBuilder().Build()
	require.Panics(t, func() { app.changeState(1) })
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := &MockResource1{name: "Resource1"}
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := &MockResource2{name: "Resource2"}
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	require.Panics(t, func() { app.addResources(MockResource1{}) }, "values are rejected")
}

func TestResource(t *testing.T) {
	app := NewAppBuilder().Build()
	r := &MockResource1{name: "a"}
	app.Commands().AddResources(r)

	got, ok := Resource[MockResource1](app)
	require.True(t, ok)
	assert.Same(t, r, got)

	_, ok = Resource[MockResource2](app)
	assert.False(t, ok)
}

func TestApp_StepRunsStagesInOrder(t *testing.T) {
	app := NewAppBuilder().Build()
	log := &callLog{}
	app.Commands().AddResources(log)

	record := func(name string) func(*callLog) {
		return func(l *callLog) { l.calls = append(l.calls, name) }
	}
	app.UseSystem(System(record("post")).InStage(PostUpdate))
	app.UseSystem(System(record("update")))
	app.UseSystem(System(record("prelude")).InStage(Prelude))
	app.UseStage(Stage{Name: "Physics"}, BeforeStage(Update))
	app.UseSystem(System(record("physics")).InStage(Stage{Name: "Physics"}))

	app.Step()
	assert.Equal(t, []string{"prelude", "physics", "update", "post"}, log.calls)
	assert.Equal(t, uint64(1), app.Frame())
}

func TestApp_UseStage(t *testing.T) {
	app := NewAppBuilder().Build()
	app.UseStage(Stage{Name: "Late"}, AfterStage(Finale))
	stages := app.Stages()
	assert.Equal(t, "Late", stages[len(stages)-1].Name)

	require.PanicsWithValue(t, "Stage Nope not found", func() {
		app.UseStage(Stage{Name: "X"}, BeforeStage(Stage{Name: "Nope"}))
	})
	require.PanicsWithValue(t, "Stage Nope doesn't exist", func() {
		app.UseSystem(System(func() {}).InStage(Stage{Name: "Nope"}))
	})
}

func TestApp_StatefulPhases(t *testing.T) {
	app := NewAppBuilder().UseStates(0, 1).Build()
	log := &callLog{}
	app.Commands().AddResources(log)

	record := func(name string) func(*callLog) {
		return func(l *callLog) { l.calls = append(l.calls, name) }
	}
	app.UseSystem(System(record("enter0")).InState(OnEnter(0)))
	app.UseSystem(System(record("exec0")).InState(OnExecute(0)))
	app.UseSystem(System(record("exit0")).InState(OnExit(0)))
	app.UseSystem(System(record("enter1")).InState(OnEnter(1)))
	app.UseSystem(System(record("exec1")).InState(OnExecute(1)))
	app.UseSystem(System(record("exit1")).InState(OnExit(1)))
	app.UseSystem(System(record("always")).InState(Always()))

	app.Step()
	app.Commands().ChangeState(1)
	app.Step()
	app.Shutdown()
	app.Shutdown()

	assert.Equal(t, []string{
		"enter0", "always", "exec0",
		"always", "exec0", "exit0", "enter1",
		"exit1",
	}, log.calls)
	assert.Equal(t, State(1), app.State())
}

func TestApp_StatelessRejectsStatefulSystem(t *testing.T) {
	app := NewAppBuilder().Build()
	require.PanicsWithValue(t, "Trying to use a stateful system in a stateless app.", func() {
		app.UseSystem(System(func() {}).InState(OnEnter(0)))
	})
}

func TestApp_RunUntilStop(t *testing.T) {
	app := NewAppBuilder().Build()
	n := 0
	app.UseSystem(System(func(cmd *Commands) {
		n++
		if n == 5 {
			cmd.Stop()
		}
	}))
	app.Run()
	assert.Equal(t, 5, n)
	assert.True(t, app.Stopped())
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := NewAppBuilder().Build()
	app.UseSystem(System(func(r *MockResource2) {}))
	assert.Panics(t, app.Step)
}

func TestCommands_StateSeesPendingChange(t *testing.T) {
	app := NewAppBuilder().UseStates(0, 1).Build()
	app.Step()
	cmd := app.Commands()
	assert.Equal(t, State(0), cmd.State())
	cmd.ChangeState(1)
	assert.Equal(t, State(1), cmd.State())
	assert.Equal(t, State(0), app.State())
}

func TestApp_OnShutdown(t *testing.T) {
	app := NewAppBuilder().UseStates(0, 1).Build()
	log := &callLog{}
	app.Commands().AddResources(log)
	app.UseSystem(System(func(l *callLog) { l.calls = append(l.calls, "exit0") }).InState(OnExit(0)))
	app.OnShutdown(func() { log.calls = append(log.calls, "first") })
	app.OnShutdown(func() { log.calls = append(log.calls, "second") })

	app.Step()
	app.Shutdown()
	app.Shutdown()

	assert.Equal(t, []string{"exit0", "second", "first"}, log.calls)
}
