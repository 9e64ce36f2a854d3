package treemorph

import (
	"fmt"
	"reflect"
	"runtime"
	"slices"
)

type systemFn any

// App runs its systems stage by stage once per Step. A stateful App also
// runs systems bound to the enter, execute and exit phases of its current
// State; state changes requested during a frame apply at the end of it.
type App struct {
	stateful           bool
	stateTransitioning bool
	started            bool
	stopped            bool
	finished           bool
	initialState       State
	finalState         State
	nextState          State
	state              State
	frame              uint64
	stages             []Stage
	systems            map[string]map[State]map[statePhase][]systemFn
	systemsStateless   map[string][]systemFn
	resources          map[reflect.Type]any
	shutdownHooks      []func()
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

func (app *App) State() State    { return app.state }
func (app *App) Frame() uint64   { return app.frame }
func (app *App) Stopped() bool   { return app.stopped }
func (app *App) Stages() []Stage { return slices.Clone(app.stages) }

func (app *App) start() {
	app.started = true
	if app.stateful {
		app.state = app.initialState
		app.callSystems(app.state, enter)
	}
}

// Step runs a single frame.
func (app *App) Step() {
	if !app.started {
		app.start()
	}

	app.callSystems(app.state, execute)

	if app.stateful && app.stateTransitioning {
		app.stateTransitioning = false
		app.executeChangeState(app.nextState)
	}
	app.frame++
}

// Run steps until a system calls Commands.Stop.
func (app *App) Run() {
	if app.stateful {
		app.Logger().Debugf("running in stateful mode, states %d..%d", app.initialState, app.finalState)
	}
	for !app.stopped {
		app.Step()
	}
	app.Shutdown()
}

// Shutdown runs the exit systems of the current state once. Callers driving
// Step themselves call it when their loop ends.
func (app *App) Shutdown() {
	if app.finished {
		return
	}
	app.finished = true
	app.stopped = true
	if app.stateful && app.started {
		app.callSystems(app.state, exit)
	}
	for i := len(app.shutdownHooks) - 1; i >= 0; i-- {
		app.shutdownHooks[i]()
	}
}

// OnShutdown registers fn to run once from Shutdown, after the exit
// systems. Hooks run in reverse registration order.
func (app *App) OnShutdown(fn func()) {
	app.shutdownHooks = append(app.shutdownHooks, fn)
}

func (app *App) callSystems(state State, phase statePhase) {
	for _, stage := range app.stages {
		if phase == execute {
			for _, system := range app.systemsStateless[stage.Name] {
				app.callSystem(system)
			}
		}

		if !app.stateful {
			continue
		}
		if systemsInStage, ok := app.systems[stage.Name]; ok {
			if systemsInState, ok := systemsInStage[state]; ok {
				for _, system := range systemsInState[phase] {
					app.callSystem(system)
				}
			}
		}
	}
}

func (app *App) changeState(newState State) {
	if !app.stateful {
		panic("Trying to change state in a stateless app.")
	}
	if newState < app.initialState || newState > app.finalState {
		panic(fmt.Sprintf("State %v doesn't exist", newState))
	}
	if newState == app.state && !app.stateTransitioning {
		return
	}
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	if newState == app.state {
		return
	}
	app.callSystems(app.state, exit)
	app.state = newState
	app.callSystems(app.state, enter)
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType == nil || resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("%v is not a pointer resource", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the resource of type *T if one was added.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.unresolved(systemValue, systemType, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, ok := app.resources[underlyingType]; ok {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.unresolved(systemValue, systemType, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) unresolved(systemValue reflect.Value, systemType, argType reflect.Type) {
	panic(fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	))
}
