package ornament

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// InstanceBuffer is a double-buffered transform array. The writer fills the
// back slice and Publish swaps it to the front, so a reader holding the
// front slice never sees a half-written frame.
type InstanceBuffer struct {
	slots [2][]mgl32.Mat4
	front atomic.Int32
	frame atomic.Uint64
}

func NewInstanceBuffer(n int) *InstanceBuffer {
	b := &InstanceBuffer{}
	b.slots[0] = make([]mgl32.Mat4, n)
	b.slots[1] = make([]mgl32.Mat4, n)
	for i := 0; i < n; i++ {
		b.slots[0][i] = mgl32.Ident4()
		b.slots[1][i] = mgl32.Ident4()
	}
	return b
}

func (b *InstanceBuffer) Len() int { return len(b.slots[0]) }

// Back returns the slice the writer may overwrite this frame.
func (b *InstanceBuffer) Back() []mgl32.Mat4 {
	return b.slots[1-b.front.Load()]
}

// Publish makes the back slice visible to readers.
func (b *InstanceBuffer) Publish() {
	b.front.Store(1 - b.front.Load())
	b.frame.Add(1)
}

// Front returns the most recently published transforms. Callers must not
// retain it across more than one Publish.
func (b *InstanceBuffer) Front() []mgl32.Mat4 {
	return b.slots[b.front.Load()]
}

// Frame counts publishes; renderers compare it to skip redundant uploads.
func (b *InstanceBuffer) Frame() uint64 { return b.frame.Load() }
