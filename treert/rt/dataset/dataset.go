// Package dataset generates the immutable per-particle attributes for the
// foliage cloud and the ornament groups.
package dataset

import (
	"errors"
	"fmt"

	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/gekko3d/treemorph/treert/rt/sampler"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type Kind int

const (
	Foliage  Kind = iota
	Ornament      // light spheres spread over the cone
	Gift          // heavy boxes stacked around the base
)

func (k Kind) String() string {
	switch k {
	case Foliage:
		return "foliage"
	case Ornament:
		return "ornament"
	case Gift:
		return "gift"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsOrnament reports whether the kind is driven by the CPU interpolator.
func (k Kind) IsOrnament() bool { return k == Ornament || k == Gift }

var ErrInvalidParams = errors.New("dataset: invalid parameters")

// Params describe the tree and chaos volumes shared by every kind.
type Params struct {
	TreeHeight  float32
	TreeRadius  float32
	ChaosRadius float32
}

func (p Params) validate() error {
	switch {
	case p.TreeHeight <= 0:
		return fmt.Errorf("%w: tree height %v", ErrInvalidParams, p.TreeHeight)
	case p.TreeRadius <= 0:
		return fmt.Errorf("%w: tree radius %v", ErrInvalidParams, p.TreeRadius)
	case p.ChaosRadius <= 0:
		return fmt.Errorf("%w: chaos radius %v", ErrInvalidParams, p.ChaosRadius)
	}
	return nil
}

// Record is a by-value view of one particle's static attributes.
type Record struct {
	ID            int
	Chaos         mgl32.Vec3
	Target        mgl32.Vec3
	Seed          float32
	Scale         float32
	Color         core.Color
	Speed         float32
	RotationSpeed float32
}

// Dataset is a flat, index-addressed arena of static particle attributes.
// It is never mutated after construction; rebuilding yields a new ID.
type Dataset struct {
	id   uuid.UUID
	kind Kind

	chaos  []mgl32.Vec3
	target []mgl32.Vec3

	// foliage only
	seed []float32

	// ornament kinds only
	scale    []float32
	color    []core.Color
	speed    []float32
	rotSpeed []float32
}

func newDataset(kind Kind, count int) *Dataset {
	d := &Dataset{
		id:     uuid.New(),
		kind:   kind,
		chaos:  make([]mgl32.Vec3, count),
		target: make([]mgl32.Vec3, count),
	}
	if kind == Foliage {
		d.seed = make([]float32, count)
	} else {
		d.scale = make([]float32, count)
		d.color = make([]core.Color, count)
		d.speed = make([]float32, count)
		d.rotSpeed = make([]float32, count)
	}
	return d
}

// Build samples count particles of the given kind.
func Build(p Params, kind Kind, count int, rng sampler.Source) (*Dataset, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: %s count %d", ErrInvalidParams, kind, count)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidParams)
	}

	d := newDataset(kind, count)
	switch kind {
	case Foliage:
		for i := 0; i < count; i++ {
			d.chaos[i] = sampler.SphereVolume(rng, p.ChaosRadius)
			d.target[i] = sampler.ConeVolume(rng, p.TreeHeight, p.TreeRadius, 0)
			d.seed[i] = float32(rng.Float64())
		}
	case Ornament, Gift:
		for i := 0; i < count; i++ {
			fillOrnament(d, i, p, rng)
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidParams, int(kind))
	}
	return d, nil
}

// FromRecords wraps caller-supplied attributes, e.g. a fixed layout for tests
// or a replayed capture. Record IDs are reassigned to their index.
func FromRecords(kind Kind, records []Record) (*Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty %s records", ErrInvalidParams, kind)
	}
	if kind != Foliage && !kind.IsOrnament() {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidParams, int(kind))
	}
	d := newDataset(kind, len(records))
	for i, r := range records {
		d.chaos[i] = r.Chaos
		d.target[i] = r.Target
		if kind == Foliage {
			d.seed[i] = r.Seed
			continue
		}
		d.scale[i] = r.Scale
		d.color[i] = r.Color
		d.speed[i] = r.Speed
		d.rotSpeed[i] = r.RotationSpeed
	}
	return d, nil
}

func (d *Dataset) ID() uuid.UUID { return d.id }
func (d *Dataset) Kind() Kind    { return d.kind }
func (d *Dataset) Len() int      { return len(d.chaos) }

func (d *Dataset) Chaos(i int) mgl32.Vec3  { return d.chaos[i] }
func (d *Dataset) Target(i int) mgl32.Vec3 { return d.target[i] }

func (d *Dataset) Seed(i int) float32 {
	if d.seed == nil {
		return 0
	}
	return d.seed[i]
}

func (d *Dataset) Scale(i int) float32 {
	if d.scale == nil {
		return 1
	}
	return d.scale[i]
}

func (d *Dataset) Color(i int) core.Color {
	if d.color == nil {
		return core.Color{}
	}
	return d.color[i]
}

func (d *Dataset) Speed(i int) float32 {
	if d.speed == nil {
		return 0
	}
	return d.speed[i]
}

func (d *Dataset) RotationSpeed(i int) float32 {
	if d.rotSpeed == nil {
		return 0
	}
	return d.rotSpeed[i]
}

func (d *Dataset) Record(i int) Record {
	return Record{
		ID:            i,
		Chaos:         d.chaos[i],
		Target:        d.target[i],
		Seed:          d.Seed(i),
		Scale:         d.Scale(i),
		Color:         d.Color(i),
		Speed:         d.Speed(i),
		RotationSpeed: d.RotationSpeed(i),
	}
}

func (d *Dataset) Records() []Record {
	out := make([]Record, d.Len())
	for i := range out {
		out[i] = d.Record(i)
	}
	return out
}

// FoliageVertices packs the static per-particle buffer consumed by the
// foliage shader. The returned slice is a fresh copy.
func (d *Dataset) FoliageVertices() []core.FoliageVertex {
	out := make([]core.FoliageVertex, d.Len())
	for i := range out {
		out[i] = core.FoliageVertex{
			Chaos:  d.chaos[i],
			Target: d.target[i],
			Seed:   d.Seed(i),
		}
	}
	return out
}

// Colors returns a copy of the per-instance color array.
func (d *Dataset) Colors() []core.Color {
	out := make([]core.Color, d.Len())
	for i := range out {
		out[i] = d.Color(i)
	}
	return out
}
