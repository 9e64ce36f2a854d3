package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/gekko3d/treemorph/treert/rt/dataset"
	"github.com/google/uuid"
)

// BufferManager owns the uniform and static vertex buffers shared by the
// foliage and ornament passes.
type BufferManager struct {
	Device *wgpu.Device

	FoliageUniformBuf *wgpu.Buffer
	FoliageVertexBuf  *wgpu.Buffer
	FoliageCount      uint32
	OrnamentCameraBuf *wgpu.Buffer

	foliageID uuid.UUID
}

func NewBufferManager(device *wgpu.Device) *BufferManager {
	return &BufferManager{Device: device}
}

func (m *BufferManager) ensureBuffer(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage, headroom int) bool {
	neededSize := uint64(len(data) + headroom)
	if neededSize%4 != 0 {
		neededSize += 4 - (neededSize % 4)
	}

	current := *buf
	if current == nil || current.GetSize() < neededSize {
		if current != nil {
			current.Release()
		}

		newBuf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: name,
			Size:  neededSize,
			Usage: usage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
		*buf = newBuf

		if len(data) > 0 {
			m.Device.GetQueue().WriteBuffer(*buf, 0, data)
		}
		return true
	}

	if len(data) > 0 {
		m.Device.GetQueue().WriteBuffer(*buf, 0, data)
	}
	return false
}

// UploadFoliage writes the static per-particle attributes. Datasets are
// immutable, so the upload only happens when a different dataset arrives.
// Reports whether the buffer was recreated.
func (m *BufferManager) UploadFoliage(d *dataset.Dataset) bool {
	if d.ID() == m.foliageID && m.FoliageVertexBuf != nil {
		return false
	}
	m.foliageID = d.ID()

	verts := d.FoliageVertices()
	m.FoliageCount = uint32(len(verts))
	var data []byte
	if len(verts) > 0 {
		size := len(verts) * int(unsafe.Sizeof(core.FoliageVertex{}))
		data = unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), size)
	} else {
		data = make([]byte, foliageVertexStride)
	}
	return m.ensureBuffer("FoliageVB", &m.FoliageVertexBuf, data, wgpu.BufferUsageVertex, 0)
}

func (m *BufferManager) UpdateFoliageUniforms(data []byte) bool {
	return m.ensureBuffer("FoliageUB", &m.FoliageUniformBuf, data, wgpu.BufferUsageUniform, 0)
}

func (m *BufferManager) UpdateOrnamentCamera(data []byte) bool {
	return m.ensureBuffer("OrnamentCameraUB", &m.OrnamentCameraBuf, data, wgpu.BufferUsageUniform, 0)
}

func (m *BufferManager) Release() {
	for _, b := range []*wgpu.Buffer{m.FoliageUniformBuf, m.FoliageVertexBuf, m.OrnamentCameraBuf} {
		if b != nil {
			b.Release()
		}
	}
	m.FoliageUniformBuf, m.FoliageVertexBuf, m.OrnamentCameraBuf = nil, nil, nil
	m.foliageID = uuid.Nil
}
