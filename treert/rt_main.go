package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/gekko3d/treemorph"
	"github.com/gekko3d/treemorph/treert/rt/app"
	"github.com/gekko3d/treemorph/treert/rt/gpu"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	cfg := treemorph.DefaultConfig()
	configPath := flag.String("config", "", "JSON config file, applied before flags")
	headless := flag.Bool("headless", false, "simulate without a window")
	frames := flag.Int("frames", 600, "frames to simulate in headless mode")
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()

	if *configPath != "" {
		loaded, err := treemorph.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		// flags given explicitly still win over the file
		cfg = overlayFlags(loaded, cfg)
	}

	tree, err := treemorph.NewTree(cfg, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	builder := treemorph.NewAppBuilder().
		UseStates(treemorph.StateChaos, treemorph.StateFormed).
		UseModule(treemorph.LoggingModule{Prefix: "treert", Debug: cfg.Debug})

	if *headless {
		builder.UseModule(
			treemorph.TimeModule{FixedDt: time.Second / 60},
			treemorph.TreeModule{Tree: tree},
			treemorph.HeadlessModule{Frames: *frames, ToggleAt: *frames / 4, Workers: cfg.Workers, LogEvery: 60},
		)
		builder.Build().Run()
		return
	}

	builder.UseModule(
		treemorph.TimeModule{MaxDt: time.Second / 10},
		treemorph.TreeModule{Tree: tree},
		treemorph.InputModule{},
		treemorph.TreeControlsModule{},
	)
	engine := builder.Build()
	if err := runWindow(engine, tree, cfg); err != nil {
		engine.Logger().Errorf("%v", err)
		os.Exit(1)
	}
}

// overlayFlags copies the flags set on the command line onto loaded.
func overlayFlags(loaded, flags treemorph.Config) treemorph.Config {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "foliage":
			loaded.FoliageCount = flags.FoliageCount
		case "ornaments":
			loaded.OrnamentCount = flags.OrnamentCount
		case "gifts":
			loaded.GiftCount = flags.GiftCount
		case "tree-height":
			loaded.TreeHeight = flags.TreeHeight
		case "tree-radius":
			loaded.TreeRadius = flags.TreeRadius
		case "chaos-radius":
			loaded.ChaosRadius = flags.ChaosRadius
		case "seed":
			loaded.Seed = flags.Seed
		case "workers":
			loaded.Workers = flags.Workers
		case "width":
			loaded.WindowWidth = flags.WindowWidth
		case "height":
			loaded.WindowHeight = flags.WindowHeight
		case "debug":
			loaded.Debug = flags.Debug
		}
	})
	return loaded
}

func runWindow(engine *treemorph.App, tree *treemorph.Tree, cfg treemorph.Config) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.WindowWidth, cfg.WindowHeight, "Tree Morph", nil, nil)
	if err != nil {
		return err
	}
	defer window.Destroy()

	viewer := app.NewApp(window, tree.Scheduler, []gpu.Shape{gpu.ShapeSphere, gpu.ShapeBox}, engine.Logger())
	viewer.DebugMode = cfg.Debug
	if err := viewer.Init(); err != nil {
		return err
	}
	defer viewer.Release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		viewer.Resize(width, height)
	})

	input, _ := treemorph.Resource[treemorph.Input](engine)
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		k, ok := treemorph.KeyFromGlfw(key)
		if !ok {
			return
		}
		switch action {
		case glfw.Press:
			input.Press(k)
		case glfw.Release:
			input.Release(k)
		}
	})

	clock, _ := treemorph.Resource[treemorph.Time](engine)
	state, _ := treemorph.Resource[treemorph.TreeState](engine)

	for !window.ShouldClose() && !engine.Stopped() {
		glfw.PollEvents()
		if input.JustPressed[treemorph.KeyF3] {
			viewer.DebugMode = !viewer.DebugMode
		}

		viewer.Profiler.BeginScope("tick")
		engine.Step()
		viewer.Profiler.EndScope("tick")

		viewer.Update(clock.Seconds(), state.Spatial)
		viewer.Render()
	}
	engine.Shutdown()
	return nil
}
