package app

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/gekko3d/treemorph/treert/rt/frame"
	"github.com/gekko3d/treemorph/treert/rt/gpu"
	"github.com/gekko3d/treemorph/treert/rt/shaders"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// Logger is the subset of the engine logger the viewer reports through.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	DepthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView
	Sampler      *wgpu.Sampler

	BufferManager *gpu.BufferManager
	FoliagePass   *gpu.FoliageRenderPass
	OrnamentPass  *gpu.OrnamentRenderPass

	Scheduler *frame.Scheduler
	// Shapes[i] is the mesh drawn for Scheduler.Ornaments[i].
	Shapes   []gpu.Shape
	Camera   *core.OrbitCamera
	State    core.SpatialState
	LightDir mgl32.Vec3
	Clear    core.Color
	Log      Logger

	TextRenderer     *core.TextRenderer
	TextPipeline     *wgpu.RenderPipeline
	TextAtlasView    *wgpu.TextureView
	TextBindGroup    *wgpu.BindGroup
	TextVertexBuffer *wgpu.Buffer
	TextItems        []core.TextItem
	TextVertexCount  uint32

	Profiler  *Profiler
	DebugMode bool

	LastRenderTime float64
	FrameCount     int
	FPS            float64
	FPSTime        float64

	uniformBytes []byte
	cameraBytes  []byte
	groups       []gpu.OrnamentGroup
}

func NewApp(window *glfw.Window, scheduler *frame.Scheduler, shapes []gpu.Shape, log Logger) *App {
	return &App{
		Window:    window,
		Scheduler: scheduler,
		Shapes:    shapes,
		Camera:    core.NewOrbitCamera(),
		LightDir:  mgl32.Vec3{-0.4, -1, -0.6}.Normalize(),
		Clear:     core.Background,
		Log:       log,
		Profiler:  NewProfiler(),
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	format := caps.Formats[0]

	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	if err := a.setupDepth(width, height); err != nil {
		return err
	}

	a.BufferManager = gpu.NewBufferManager(a.Device)

	a.FoliagePass, err = gpu.NewFoliageRenderPass(a.Device, format)
	if err != nil {
		return fmt.Errorf("foliage pass: %w", err)
	}
	a.OrnamentPass, err = gpu.NewOrnamentRenderPass(a.Device, format)
	if err != nil {
		return fmt.Errorf("ornament pass: %w", err)
	}

	// Uniform buffers must exist before the bind groups reference them.
	a.uploadUniforms()
	if err := a.FoliagePass.CreateBindGroup(a.BufferManager.FoliageUniformBuf); err != nil {
		return err
	}
	if err := a.OrnamentPass.CreateBindGroup(a.BufferManager.OrnamentCameraBuf); err != nil {
		return err
	}

	a.Sampler, err = a.Device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}

	a.TextRenderer, err = core.NewTextRenderer(28)
	if err != nil {
		a.Log.Warnf("text renderer disabled: %v", err)
	} else if err := a.setupTextResources(); err != nil {
		a.Log.Warnf("text renderer disabled: %v", err)
		a.TextRenderer = nil
	}

	a.Log.Infof("viewer ready: %dx%d, %v", width, height, format)
	return nil
}

func (a *App) setupDepth(w, h int) error {
	if a.DepthView != nil {
		a.DepthView.Release()
	}
	if a.DepthTexture != nil {
		a.DepthTexture.Release()
	}

	var err error
	a.DepthTexture, err = a.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        gpu.DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("depth texture: %w", err)
	}
	a.DepthView, err = a.DepthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("depth view: %w", err)
	}
	return nil
}

func (a *App) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.Config.Width = uint32(w)
	a.Config.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	if err := a.setupDepth(w, h); err != nil {
		a.Log.Errorf("resize: %v", err)
	}
}

func (a *App) aspect() float32 {
	if a.Config == nil || a.Config.Height == 0 {
		return 1
	}
	return float32(a.Config.Width) / float32(a.Config.Height)
}

func (a *App) uploadUniforms() {
	view := a.Camera.GetViewMatrix()
	proj := a.Camera.GetProjectionMatrix(a.aspect())
	viewProj := proj.Mul4(view)

	viewport := [2]float32{float32(a.Config.Width), float32(a.Config.Height)}
	a.uniformBytes = gpu.EncodeFoliageUniforms(a.uniformBytes, viewProj, view, a.Scheduler.Foliage.Uniforms(), viewport)
	if a.BufferManager.UpdateFoliageUniforms(a.uniformBytes) && a.FoliagePass.BindGroup != nil {
		if err := a.FoliagePass.CreateBindGroup(a.BufferManager.FoliageUniformBuf); err != nil {
			a.Log.Errorf("foliage bind group: %v", err)
		}
	}

	a.cameraBytes = gpu.EncodeOrnamentCamera(a.cameraBytes, viewProj, a.Camera.Position(), a.LightDir)
	if a.BufferManager.UpdateOrnamentCamera(a.cameraBytes) && a.OrnamentPass.BindGroup != nil {
		if err := a.OrnamentPass.CreateBindGroup(a.BufferManager.OrnamentCameraBuf); err != nil {
			a.Log.Errorf("ornament bind group: %v", err)
		}
	}
}

// Update pushes the scheduler's latest output to the GPU. The scheduler has
// already been ticked for this frame; dt only drives the camera.
func (a *App) Update(dt float32, state core.SpatialState) {
	a.State = state
	a.Camera.Advance(dt, state)

	a.Profiler.BeginScope("upload")
	a.BufferManager.UploadFoliage(a.Scheduler.Foliage.Dataset())
	a.uploadUniforms()

	if len(a.groups) != len(a.Scheduler.Ornaments) {
		a.groups = a.groups[:0]
		for i, o := range a.Scheduler.Ornaments {
			shape := gpu.ShapeSphere
			if i < len(a.Shapes) {
				shape = a.Shapes[i]
			}
			a.groups = append(a.groups, gpu.OrnamentGroup{Shape: shape, ID: o.Dataset().ID(), Colors: o.Colors()})
		}
	}
	for i, o := range a.Scheduler.Ornaments {
		a.groups[i].Transforms = o.Transforms()
	}
	if err := a.OrnamentPass.Update(a.Queue, a.groups); err != nil {
		a.Log.Errorf("ornament upload: %v", err)
	}
	a.Profiler.EndScope("upload")

	a.Profiler.SetCount("foliage", int(a.BufferManager.FoliageCount))
	a.Profiler.SetCount("ornaments", a.Scheduler.Instances())

	a.ClearText()
	a.DrawText(HUDLines(state, a.Scheduler.Progress()), 24, 24, 1.0, core.GoldHigh.RGBA())
	if a.DebugMode {
		a.DrawText(fmt.Sprintf("FPS: %.1f\n%s", a.FPS, a.Profiler.GetStatsString()), 24, 120, 0.6, [4]float32{1, 1, 1, 0.8})
	}
	a.uploadText()
}

// HUDLines is the overlay text for the given state.
func HUDLines(state core.SpatialState, progress float32) string {
	action := "Decorate Tree"
	if state.Formed() {
		action = "Release Magic"
	}
	return fmt.Sprintf("%s  %3.0f%%\n[space] %s", state, progress*100, action)
}

func (a *App) uploadText() {
	if len(a.TextItems) == 0 || a.TextRenderer == nil {
		return
	}
	vertices := a.TextRenderer.BuildVertices(a.TextItems, int(a.Config.Width), int(a.Config.Height))
	if len(vertices) == 0 {
		return
	}
	vSize := uint64(len(vertices) * int(unsafe.Sizeof(core.TextVertex{})))
	if a.TextVertexBuffer == nil || a.TextVertexBuffer.GetSize() < vSize {
		if a.TextVertexBuffer != nil {
			a.TextVertexBuffer.Release()
		}
		var err error
		a.TextVertexBuffer, err = a.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Text VB",
			Size:  vSize,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			a.Log.Errorf("text buffer: %v", err)
			return
		}
	}
	a.Queue.WriteBuffer(a.TextVertexBuffer, 0, unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), vSize))
	a.TextVertexCount = uint32(len(vertices))
}

func (a *App) ClearText() {
	a.TextItems = a.TextItems[:0]
	a.TextVertexCount = 0
}

func (a *App) DrawText(text string, x, y float32, scale float32, color [4]float32) {
	a.TextItems = append(a.TextItems, core.TextItem{
		Text:     text,
		Position: [2]float32{x, y},
		Scale:    scale,
		Color:    color,
	})
}

func (a *App) Render() {
	a.Profiler.BeginScope("render")
	defer a.Profiler.EndScope("render")

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Log.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Log.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.Log.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}

	// Ornaments first so they write depth; foliage tests against it without writing.
	scenePass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: float64(a.Clear[0]), G: float64(a.Clear[1]), B: float64(a.Clear[2]), A: 1},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            a.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	a.OrnamentPass.Draw(scenePass)
	a.FoliagePass.Draw(scenePass, a.BufferManager.FoliageVertexBuf, a.BufferManager.FoliageCount)
	if err := scenePass.End(); err != nil {
		a.Log.Errorf("scene pass End failed: %v", err)
	}

	if a.TextVertexCount > 0 && a.TextPipeline != nil {
		textPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:    view,
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			}},
		})
		textPass.SetPipeline(a.TextPipeline)
		textPass.SetBindGroup(0, a.TextBindGroup, nil)
		textPass.SetVertexBuffer(0, a.TextVertexBuffer, 0, a.TextVertexBuffer.GetSize())
		textPass.Draw(a.TextVertexCount, 1, 0, 0)
		if err := textPass.End(); err != nil {
			a.Log.Errorf("text pass End failed: %v", err)
		}
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.Log.Errorf("Encoder Finish failed: %v", err)
		return
	}
	a.Queue.Submit(cmd)
	a.Surface.Present()

	now := glfw.GetTime()
	if a.LastRenderTime > 0 {
		a.FrameCount++
		a.FPSTime += now - a.LastRenderTime
		if a.FPSTime >= 1.0 {
			a.FPS = float64(a.FrameCount) / a.FPSTime
			a.FrameCount = 0
			a.FPSTime = 0
		}
	}
	a.LastRenderTime = now
}

func (a *App) setupTextResources() error {
	tr := a.TextRenderer
	w, h := tr.AtlasImage.Bounds().Dx(), tr.AtlasImage.Bounds().Dy()
	tex, err := a.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Text Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}
	a.Queue.WriteTexture(tex.AsImageCopy(), tr.AtlasImage.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})

	a.TextAtlasView, err = tex.CreateView(nil)
	if err != nil {
		return err
	}

	textMod, err := a.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Text Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		return fmt.Errorf("text shader module: %w", err)
	}

	a.TextPipeline, err = a.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     textMod,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.TextVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     textMod,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: a.Config.Format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("text pipeline: %w", err)
	}

	a.TextBindGroup, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.TextPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.TextAtlasView},
			{Binding: 1, Sampler: a.Sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("text bind group: %w", err)
	}
	return nil
}

func (a *App) Release() {
	if a.OrnamentPass != nil {
		a.OrnamentPass.Release()
	}
	if a.BufferManager != nil {
		a.BufferManager.Release()
	}
	if a.DepthView != nil {
		a.DepthView.Release()
	}
	if a.DepthTexture != nil {
		a.DepthTexture.Release()
	}
	if a.TextVertexBuffer != nil {
		a.TextVertexBuffer.Release()
	}
}
