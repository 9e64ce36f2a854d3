package treemorph

import (
	"reflect"
	"slices"
)

type Module interface {
	Install(app *App, cmd *Commands)
}

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: &App{
		resources:        make(map[reflect.Type]any),
		systems:          make(map[string]map[State]map[statePhase][]systemFn),
		systemsStateless: make(map[string][]systemFn),
	}}
}

// UseStates makes the App stateful over the inclusive range
// initialState..finalState, starting in initialState.
func (b *AppBuilder) UseStates(initialState State, finalState State) *AppBuilder {
	b.app.stateful = true
	b.app.initialState = initialState
	b.app.finalState = finalState

	return b
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// Build lays out the default stages and installs modules in the order given.
func (b *AppBuilder) Build() *App {
	app := b.app
	app.state = app.initialState
	for _, stage := range defaultStages {
		if !slices.ContainsFunc(app.stages, func(s Stage) bool { return s.Name == stage.Name }) {
			app.stages = append(app.stages, stage)
			app.initStage(stage)
		}
	}

	commands := &Commands{app: app}
	for _, module := range b.modules {
		module.Install(app, commands)
	}

	return app
}
