package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/gekko3d/treemorph/treert/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

const (
	transformStride = uint64(unsafe.Sizeof(mgl32.Mat4{}))
	colorStride     = uint64(unsafe.Sizeof([4]float32{}))
)

// OrnamentGroup is one batch of instances sharing a mesh. Colors belong to
// the dataset identified by ID and are only read when that ID changes.
type OrnamentGroup struct {
	Shape      Shape
	ID         uuid.UUID
	Transforms []mgl32.Mat4
	Colors     []core.Color
}

type ornamentBatch struct {
	shape Shape
	first uint32
	count uint32
}

// ornamentStaging flattens groups into contiguous transform and color
// arrays. Colors are restaged only when the set of group datasets changes.
type ornamentStaging struct {
	batches    []ornamentBatch
	transforms []mgl32.Mat4
	colors     [][4]float32
	ids        []uuid.UUID
}

// stage reports whether colors were restaged and must be uploaded.
func (s *ornamentStaging) stage(groups []OrnamentGroup) bool {
	changed := len(groups) != len(s.ids)
	for i := 0; !changed && i < len(groups); i++ {
		changed = groups[i].ID != s.ids[i]
	}

	s.batches = s.batches[:0]
	s.transforms = s.transforms[:0]
	if changed {
		s.ids = s.ids[:0]
		s.colors = s.colors[:0]
	}
	for _, g := range groups {
		if changed {
			s.ids = append(s.ids, g.ID)
		}
		if len(g.Transforms) == 0 {
			continue
		}
		s.batches = append(s.batches, ornamentBatch{
			shape: g.Shape,
			first: uint32(len(s.transforms)),
			count: uint32(len(g.Transforms)),
		})
		s.transforms = append(s.transforms, g.Transforms...)
		if changed {
			for i := range g.Transforms {
				s.colors = append(s.colors, g.Colors[i].RGBA())
			}
		}
	}
	return changed
}

// invalidate forces the next stage to restage colors.
func (s *ornamentStaging) invalidate() {
	s.ids = nil
	s.batches = s.batches[:0]
}

type OrnamentRenderPass struct {
	Pipeline        *wgpu.RenderPipeline
	BindGroup       *wgpu.BindGroup
	VertexBuffer    *wgpu.Buffer
	ShapeOffsets    map[Shape]uint32
	ShapeCounts     map[Shape]uint32
	TransformBuffer *wgpu.Buffer
	ColorBuffer     *wgpu.Buffer
	InstanceCap     uint32
	ColorUploads    uint64
	Device          *wgpu.Device

	staging ornamentStaging
}

func NewOrnamentRenderPass(device *wgpu.Device, format wgpu.TextureFormat) (*OrnamentRenderPass, error) {
	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "OrnamentShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.OrnamentWGSL},
	})
	if err != nil {
		return nil, err
	}

	bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "OrnamentCameraBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: OrnamentCameraSize,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "OrnamentPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof(MeshVertex{})),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					},
				},
				{
					ArrayStride: transformStride,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 2},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 3},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 4},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 5},
					},
				},
				{
					ArrayStride: colorStride,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 6},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	p := &OrnamentRenderPass{
		Pipeline:     pipeline,
		Device:       device,
		ShapeOffsets: make(map[Shape]uint32),
		ShapeCounts:  make(map[Shape]uint32),
	}

	var vertices []MeshVertex
	addShape := func(s Shape, shapeVertices []MeshVertex) {
		p.ShapeOffsets[s] = uint32(len(vertices))
		p.ShapeCounts[s] = uint32(len(shapeVertices))
		vertices = append(vertices, shapeVertices...)
	}
	addShape(ShapeSphere, UnitSphere(12, 24))
	addShape(ShapeBox, UnitBox())

	vSize := uint64(len(vertices) * int(unsafe.Sizeof(MeshVertex{})))
	p.VertexBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "OrnamentMeshVB",
		Size:  vSize,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	device.GetQueue().WriteBuffer(p.VertexBuffer, 0, unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), vSize))

	return p, nil
}

// Update writes this frame's transforms. Colors are written only when the
// group datasets change. On error nothing is drawn until a later Update
// succeeds.
func (p *OrnamentRenderPass) Update(queue *wgpu.Queue, groups []OrnamentGroup) error {
	colorsChanged := p.staging.stage(groups)
	if len(p.staging.transforms) == 0 {
		return nil
	}

	count := uint32(len(p.staging.transforms))
	if p.TransformBuffer == nil || p.ColorBuffer == nil || p.InstanceCap < count {
		if err := p.grow(count + 64); err != nil {
			p.staging.invalidate()
			return err
		}
		if !colorsChanged {
			p.staging.invalidate()
			colorsChanged = p.staging.stage(groups)
		}
	}

	queue.WriteBuffer(p.TransformBuffer, 0, unsafe.Slice((*byte)(unsafe.Pointer(&p.staging.transforms[0])), uint64(count)*transformStride))
	if colorsChanged {
		queue.WriteBuffer(p.ColorBuffer, 0, unsafe.Slice((*byte)(unsafe.Pointer(&p.staging.colors[0])), uint64(count)*colorStride))
		p.ColorUploads++
	}
	return nil
}

func (p *OrnamentRenderPass) grow(capacity uint32) error {
	for _, b := range []*wgpu.Buffer{p.TransformBuffer, p.ColorBuffer} {
		if b != nil {
			b.Release()
		}
	}
	p.TransformBuffer, p.ColorBuffer, p.InstanceCap = nil, nil, 0

	transforms, err := p.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "OrnamentTransformBuffer",
		Size:  uint64(capacity) * transformStride,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("ornament transform buffer: %w", err)
	}
	colors, err := p.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "OrnamentColorBuffer",
		Size:  uint64(capacity) * colorStride,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		transforms.Release()
		return fmt.Errorf("ornament color buffer: %w", err)
	}
	p.TransformBuffer, p.ColorBuffer, p.InstanceCap = transforms, colors, capacity
	return nil
}

func (p *OrnamentRenderPass) Draw(pass *wgpu.RenderPassEncoder) {
	if p.TransformBuffer == nil || p.ColorBuffer == nil || p.BindGroup == nil || len(p.staging.batches) == 0 {
		return
	}

	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.BindGroup, nil)
	pass.SetVertexBuffer(0, p.VertexBuffer, 0, p.VertexBuffer.GetSize())
	pass.SetVertexBuffer(1, p.TransformBuffer, 0, p.TransformBuffer.GetSize())
	pass.SetVertexBuffer(2, p.ColorBuffer, 0, p.ColorBuffer.GetSize())

	for _, b := range p.staging.batches {
		pass.Draw(p.ShapeCounts[b.shape], b.count, p.ShapeOffsets[b.shape], b.first)
	}
}

func (p *OrnamentRenderPass) CreateBindGroup(cameraBuffer *wgpu.Buffer) error {
	bg, err := p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "OrnamentCameraBG",
		Layout: p.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  cameraBuffer,
				Size:    OrnamentCameraSize,
			},
		},
	})
	if err != nil {
		return err
	}
	if p.BindGroup != nil {
		p.BindGroup.Release()
	}
	p.BindGroup = bg
	return nil
}

func (p *OrnamentRenderPass) Release() {
	for _, b := range []*wgpu.Buffer{p.VertexBuffer, p.TransformBuffer, p.ColorBuffer} {
		if b != nil {
			b.Release()
		}
	}
	p.VertexBuffer, p.TransformBuffer, p.ColorBuffer, p.InstanceCap = nil, nil, nil, 0
	p.staging.invalidate()
}
