package tumble

import (
	"iter"
	"math"

	"github.com/akmonengine/tumble/actor"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrTypeInvalidPartition is the type of the errors returned by NewSpacePartitioner
const ErrTypeInvalidPartition = "invalid_partition_config"

// Renderable is what the partitioner needs from a drawn object
type Renderable interface {
	Position() mgl64.Vec3
	SetTranslation(position mgl64.Vec3)
}

// Entry is an object bucketed in a cell, optionally driven by a body
type Entry struct {
	Object Renderable
	// Body is NoHandle for purely visual objects
	Body Handle
	// Offset from the body position to the object origin, in the body frame
	Offset mgl64.Vec3
}

func (e Entry) HasBody() bool {
	return e.Body != NoHandle
}

// Cell is a horizontal band of the partitioned region
type Cell struct {
	Entries []Entry
}

// PartitionConfig describes the region sliced into bands along Y
type PartitionConfig struct {
	Min     mgl64.Vec3
	Max     mgl64.Vec3
	Cells   int
	Gravity float64
}

// SpacePartitioner buckets objects into fixed height bands and keeps the objects
// with a body in sync with the World it owns.
// Objects are bucketed once, by their height at insertion, and never move to another band.
type SpacePartitioner struct {
	min        mgl64.Vec3
	max        mgl64.Vec3
	bandHeight float64
	cells      []Cell
	world      *World
}

// NewSpacePartitioner validates the configuration and creates an empty partitioner
func NewSpacePartitioner(config PartitionConfig) (*SpacePartitioner, error) {
	if config.Cells <= 0 {
		return nil, errors.New("invalid cell count").
			WithType(ErrTypeInvalidPartition).
			WithTag("cells", config.Cells)
	}

	if !(config.Max.Y() > config.Min.Y()) {
		return nil, errors.New("empty partition region").
			WithType(ErrTypeInvalidPartition).
			WithTag("min_y", config.Min.Y()).
			WithTag("max_y", config.Max.Y())
	}

	return &SpacePartitioner{
		min:        config.Min,
		max:        config.Max,
		bandHeight: (config.Max.Y() - config.Min.Y()) / float64(config.Cells),
		cells:      make([]Cell, config.Cells),
		world:      NewWorld(config.Gravity),
	}, nil
}

// CellID maps a height to its band, clamped to the first and last band
func (sp *SpacePartitioner) CellID(y float64) int {
	if math.IsNaN(y) {
		return 0
	}

	id := math.Floor((y - sp.min.Y()) / sp.bandHeight)
	if id <= 0 {
		return 0
	}
	if last := len(sp.cells) - 1; id >= float64(last) {
		return last
	}

	return int(id)
}

func (sp *SpacePartitioner) GetCell(y float64) *Cell {
	return &sp.cells[sp.CellID(y)]
}

// Insert buckets object by its current height. A non-nil body is handed over to the World
// and its handle returned, NoHandle otherwise.
func (sp *SpacePartitioner) Insert(object Renderable, body *actor.RigidBody, offset mgl64.Vec3) Handle {
	if object == nil {
		logs.Warn(errors.New("inserting a nil object").WithTag("world_id", sp.world.ID))
		return NoHandle
	}

	handle := NoHandle
	if body != nil {
		handle = sp.world.Insert(body)
	}

	cell := sp.GetCell(object.Position().Y())
	cell.Entries = append(cell.Entries, Entry{
		Object: object,
		Body:   handle,
		Offset: offset,
	})

	return handle
}

// Update steps the World then moves every object driven by a live body
func (sp *SpacePartitioner) Update(dt float64) {
	sp.world.Step(dt)

	for _, cell := range sp.Cells() {
		for _, entry := range cell.Entries {
			if !entry.HasBody() {
				continue
			}

			body := sp.world.Body(entry.Body)
			if body == nil {
				continue
			}

			entry.Object.SetTranslation(body.Position().Add(body.ApplyRotation(entry.Offset)))
		}
	}
}

// Cells iterates over the bands from the lowest to the highest
func (sp *SpacePartitioner) Cells() iter.Seq2[int, *Cell] {
	return func(yield func(int, *Cell) bool) {
		for i := range sp.cells {
			if !yield(i, &sp.cells[i]) {
				return
			}
		}
	}
}

// Clear empties every cell and the World
func (sp *SpacePartitioner) Clear() {
	for i := range sp.cells {
		sp.cells[i].Entries = nil
	}
	sp.world.Clear()
}

func (sp *SpacePartitioner) World() *World {
	return sp.world
}
