package treemorph

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeySpace int = iota
	KeyEscape
	KeyF3
	keyCount
)

type InputModule struct{}

// Input is the key state seen by systems this frame. Window callbacks feed it
// through Press and Release; the Just* edges are cleared in Finale.
type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool
}

func (in *Input) Press(key int) {
	if key < 0 || key >= keyCount {
		return
	}
	if !in.Pressed[key] {
		in.JustPressed[key] = true
	}
	in.Pressed[key] = true
}

func (in *Input) Release(key int) {
	if key < 0 || key >= keyCount {
		return
	}
	if in.Pressed[key] {
		in.JustReleased[key] = true
	}
	in.Pressed[key] = false
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(clearInputSystem).
			InStage(Finale).
			RunAlways(),
	)
}

func clearInputSystem(input *Input) {
	input.JustPressed = [keyCount]bool{}
	input.JustReleased = [keyCount]bool{}
}

// KeyFromGlfw maps a GLFW key onto an Input key.
func KeyFromGlfw(k glfw.Key) (int, bool) {
	for key, gk := range keyToGlfw {
		if gk == k {
			return key, true
		}
	}
	return 0, false
}

var keyToGlfw = [keyCount]glfw.Key{
	KeySpace:  glfw.KeySpace,
	KeyEscape: glfw.KeyEscape,
	KeyF3:     glfw.KeyF3,
}
