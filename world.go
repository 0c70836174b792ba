package tumble

import (
	"iter"
	"math"
	"time"

	"github.com/akmonengine/tumble/actor"
	"github.com/akmonengine/tumble/constraint"
	"github.com/akmonengine/tumble/narrowphase"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

const (
	// DEFAULT_GRAVITY acceleration (m/s²), applied along -Y
	DEFAULT_GRAVITY = 9.81

	// MAX_RETRIES bounds how many extra passes a body gets within one step
	// to meet further partners after a collision
	MAX_RETRIES = 8

	// SETTLE_SPEED is the vertical speed under which a body resting on a single
	// contact is stopped
	SETTLE_SPEED = 0.2
	// SETTLE_BOUNCE_MARGIN scales the bounce a resting body takes every step,
	// RESTITUTION·g·dt, into the settle threshold of coarse steps
	SETTLE_BOUNCE_MARGIN = 3.0
	// SETTLE_VERTICALITY is the minimal share of vertical in both the contact normal
	// and the velocity for a body to settle
	SETTLE_VERTICALITY = 0.9
)

// Handle addresses a body in its World. Handles are never reused until Clear.
type Handle int

// NoHandle is the handle of no body
const NoHandle Handle = -1

// World owns the simulated bodies and steps them with swept collisions.
type World struct {
	// Gravity acceleration (m/s²), pulling along -Y
	Gravity float64
	// ID tags the logs of this world
	ID     string
	Events Events

	// arena of bodies indexed by handle, nil once erased
	slots []*actor.RigidBody
	// live handles in insertion order
	order []Handle
	// normal of the latest contact of every body during the current step
	contactNormals map[Handle]mgl64.Vec3
}

// NewWorld creates an empty world
func NewWorld(gravity float64) *World {
	return &World{
		Gravity:        gravity,
		ID:             uuid.NewString(),
		Events:         NewEvents(),
		contactNormals: make(map[Handle]mgl64.Vec3),
	}
}

// Insert hands a body over to the world and returns its handle.
// A nil body is ignored and NoHandle returned.
func (w *World) Insert(body *actor.RigidBody) Handle {
	if body == nil {
		logs.Warn(errors.New("inserting a nil body").WithTag("world_id", w.ID))
		return NoHandle
	}

	handle := Handle(len(w.slots))
	w.slots = append(w.slots, body)
	w.order = append(w.order, handle)
	instrumentBodyGauge(1)

	logs.WithTag("world_id", w.ID).
		WithTag("handle", handle).
		WithTag("shape", body.Kind().String()).
		Debug("body inserted")

	return handle
}

// Erase removes a body from the world. It returns false when the handle is not live.
func (w *World) Erase(handle Handle) bool {
	if w.Body(handle) == nil {
		logs.Warn(errors.New("erasing an unknown body").
			WithTag("world_id", w.ID).
			WithTag("handle", handle))
		return false
	}

	w.slots[handle] = nil
	for i, h := range w.order {
		if h == handle {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	delete(w.contactNormals, handle)
	w.Events.forget(handle)
	instrumentBodyGauge(-1)

	logs.WithTag("world_id", w.ID).
		WithTag("handle", handle).
		Debug("body erased")

	return true
}

// Clear erases every body. Handles start over from zero afterwards.
func (w *World) Clear() {
	instrumentBodyGauge(-float64(len(w.order)))

	w.slots = w.slots[:0]
	w.order = w.order[:0]
	clear(w.contactNormals)
	w.Events.reset()

	logs.WithTag("world_id", w.ID).Debug("world cleared")
}

// Body returns the body behind handle, or nil when it is not live
func (w *World) Body(handle Handle) *actor.RigidBody {
	if handle < 0 || int(handle) >= len(w.slots) {
		return nil
	}

	return w.slots[handle]
}

// Len returns the number of live bodies
func (w *World) Len() int {
	return len(w.order)
}

// Bodies iterates over the live bodies in insertion order
func (w *World) Bodies() iter.Seq2[Handle, *actor.RigidBody] {
	return func(yield func(Handle, *actor.RigidBody) bool) {
		for _, handle := range w.order {
			if !yield(handle, w.slots[handle]) {
				return
			}
		}
	}
}

// Step advances the simulation by dt seconds: integrate, collide and resolve,
// then move every body by what is left of its displacement.
// A non-positive dt does nothing.
func (w *World) Step(dt float64) {
	if !(dt > 0) {
		logs.Warn(errors.New("ignoring non-positive step").
			WithTag("world_id", w.ID).
			WithTag("dt", dt))
		return
	}

	start := time.Now()

	w.integrate(dt)
	w.collide(dt)

	w.Events.processSettleEvents(w.Bodies())
	w.Events.flush()

	instrumentStep(time.Since(start))
}

func (w *World) integrate(dt float64) {
	clear(w.contactNormals)
	for _, handle := range w.order {
		w.slots[handle].Integrate(dt, w.Gravity)
	}
}

// collide sweeps every body against every later body in insertion order.
//
// After a collision the same body gets another pass so it can meet further partners
// with what is left of its displacement. That pass skips the partner met during the
// previous pass, whichever body it belonged to. This keeps a body from bouncing twice
// on the same partner within a step, but it is only an approximation: some three body
// configurations are still missed or resolved twice.
func (w *World) collide(dt float64) {
	latestCollider := NoHandle
	retries := 0

	for i := 0; i < len(w.order); {
		lhsHandle := w.order[i]
		lhs := w.slots[lhsHandle]

		skip := latestCollider
		latestCollider = NoHandle
		found := 0

		for j := i + 1; j < len(w.order); j++ {
			rhsHandle := w.order[j]
			if rhsHandle == skip {
				continue
			}
			rhs := w.slots[rhsHandle]

			// bodies whose swept bounds are apart cannot meet this step
			if !lhs.SweptAABB().Overlaps(rhs.SweptAABB()) {
				continue
			}

			info, ok := narrowphase.Collide(lhs, rhs)
			if !ok {
				continue
			}

			w.recordContact(lhsHandle, rhsHandle, info)
			latestCollider = rhsHandle
			found++

			if lhs.Exhausted() {
				break
			}
		}

		switch {
		case w.settles(lhsHandle, lhs, dt):
			lhs.Settle()
			instrumentSettle()
			logs.WithTag("world_id", w.ID).
				WithTag("handle", lhsHandle).
				Debug("body settled")
		case found == 0 || lhs.Exhausted() || lhs.IsStatic() || retries >= MAX_RETRIES:
			if lhs.Displacement.Len() > actor.EXHAUSTED_DISPLACEMENT {
				lhs.IsSettled = false
			}
			lhs.Move(lhs.Displacement)
			lhs.Displacement = mgl64.Vec3{}
		default:
			retries++
			continue
		}

		i++
		retries = 0
	}
}

func (w *World) recordContact(lhsHandle, rhsHandle Handle, info constraint.CollisionInfo) {
	lhs := w.slots[lhsHandle]
	rhs := w.slots[rhsHandle]
	normal := info.Contact.Normal

	constraint.ApplyFriction(lhs, normal)
	constraint.ApplyFriction(rhs, normal)

	lhs.HasLatestCollision = true
	rhs.HasLatestCollision = true
	lhs.Contacts++
	rhs.Contacts++
	w.contactNormals[lhsHandle] = normal
	w.contactNormals[rhsHandle] = normal

	kind := narrowphase.PairKindOf(lhs.Kind(), rhs.Kind())
	w.Events.recordCollision(lhsHandle, rhsHandle, kind)
	instrumentContact(kind)
}

// settles recognises a dynamic body resting against gravity on a single contact:
// one collision this step, a near vertical contact normal and a small, mostly
// vertical velocity left after the bounce. Stopping it avoids gravity jitter.
func (w *World) settles(handle Handle, body *actor.RigidBody, dt float64) bool {
	if body.IsStatic() || body.Contacts != 1 || !body.HasLatestCollision || w.Gravity <= 0 {
		return false
	}

	normal, ok := w.contactNormals[handle]
	if !ok || math.Abs(normal.Y()) < SETTLE_VERTICALITY*normal.Len() {
		return false
	}

	vertical := math.Abs(body.Velocity.Y())

	return vertical < w.settleSpeed(dt) && vertical >= SETTLE_VERTICALITY*body.Velocity.Len()
}

// settleSpeed is SETTLE_SPEED, raised for steps long enough that the bounce
// of a body lying on its support exceeds it
func (w *World) settleSpeed(dt float64) float64 {
	return math.Max(SETTLE_SPEED, SETTLE_BOUNCE_MARGIN*constraint.RESTITUTION*w.Gravity*dt)
}

// Bounds returns the union of the bounding boxes of every finite body.
// ok is false when the world holds no finite body.
func (w *World) Bounds() (bounds actor.AABB, ok bool) {
	for _, body := range w.Bodies() {
		if math.IsInf(body.Shape.BoundingRadius(), 1) {
			continue
		}

		if !ok {
			bounds, ok = body.AABB(), true
			continue
		}
		bounds = bounds.Union(body.AABB())
	}

	return bounds, ok
}
