package treemorph

// Commands is handed to systems and modules to mutate the App.
type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemScheduleBuilder) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

// State is the current state, or the one being switched to if a change is
// pending this frame.
func (cmd *Commands) State() State {
	if cmd.app.stateTransitioning {
		return cmd.app.nextState
	}
	return cmd.app.state
}

// Stop ends Run after the current frame.
func (cmd *Commands) Stop() {
	cmd.app.stopped = true
}
