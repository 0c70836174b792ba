package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by gravity, thrust, drag and collisions
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not integrated and keep a zero velocity (e.g., ground, walls)
	BodyTypeStatic
)

const (
	// DRAG_COEFFICIENT of a smooth sphere
	DRAG_COEFFICIENT = 0.47
	// CROSS_SECTION is the reference area (m²) used by the drag term for every body
	CROSS_SECTION = 0.01
	// SEA_LEVEL_DENSITY of air (kg/m³) at y = 0
	SEA_LEVEL_DENSITY = 1.225

	// EXHAUSTED_DISPLACEMENT is the per-step displacement below which a body has nothing left to travel
	EXHAUSTED_DISPLACEMENT = 1e-9
)

// RigidBody represents a rigid body in the simulation
type RigidBody struct {
	Transform Transform
	Shape     Shape
	BodyType  BodyType

	// Mass is a caller supplied weight, +Inf for static bodies
	Mass float64
	// Thrust is a constant external acceleration (m/s²) applied every step
	Thrust mgl64.Vec3
	// Velocity is the integrated velocity (m/s), written through SetVelocity
	Velocity mgl64.Vec3
	// Displacement is what is left to travel during the current step
	Displacement mgl64.Vec3

	// InnerEnergy accumulates the kinetic energy received from collision partners this step.
	// Bookkeeping only, nothing in the solver reads it back.
	InnerEnergy        float64
	HasLatestCollision bool
	// Contacts counts the collisions this body took part in during the current step
	Contacts  int
	IsSettled bool
}

// NewRigidBody creates a new rigid body with the given properties.
// mass is ignored for static bodies; a non-positive or NaN mass on a dynamic body falls back to 1.
func NewRigidBody(transform Transform, shape Shape, bodyType BodyType, mass float64) *RigidBody {
	transform = TransformAt(transform.Position, transform.Rotation)

	rb := &RigidBody{
		Transform: transform,
		Shape:     shape,
		BodyType:  bodyType,
		Mass:      mass,
	}

	if bodyType == BodyTypeStatic {
		rb.Mass = math.Inf(1)
	} else if !(mass > 0) {
		rb.Mass = 1.0
	}

	return rb
}

// Kind returns the shape type, derived from the shape itself
func (rb *RigidBody) Kind() ShapeType {
	return rb.Shape.Type()
}

func (rb *RigidBody) IsStatic() bool {
	return rb.BodyType == BodyTypeStatic
}

// Position of the shape centre (sphere, box) or of the reference point (plane)
func (rb *RigidBody) Position() mgl64.Vec3 {
	return rb.Transform.Position
}

// Move translates the body
func (rb *RigidBody) Move(delta mgl64.Vec3) {
	rb.Transform.Position = rb.Transform.Position.Add(delta)
}

// ApplyRotation maps a local offset into the body's world orientation
func (rb *RigidBody) ApplyRotation(offset mgl64.Vec3) mgl64.Vec3 {
	return rb.Shape.ApplyRotation(rb.Transform, offset)
}

// SetVelocity is the single place velocities are written.
// Non-finite components are scrubbed to zero.
func (rb *RigidBody) SetVelocity(velocity mgl64.Vec3) {
	for i := range 3 {
		if math.IsNaN(velocity[i]) || math.IsInf(velocity[i], 0) {
			velocity[i] = 0
		}
	}

	rb.Velocity = velocity
}

// InverseMass is 0 for static bodies
func (rb *RigidBody) InverseMass() float64 {
	if rb.IsStatic() || math.IsInf(rb.Mass, 1) {
		return 0
	}

	return 1.0 / rb.Mass
}

// Exhausted reports whether a dynamic body has no displacement left this step.
// Static bodies never exhaust, they stay available as collision partners.
func (rb *RigidBody) Exhausted() bool {
	return !rb.IsStatic() && rb.Displacement.Len() < EXHAUSTED_DISPLACEMENT
}

// AABB computes the current bounds on demand
func (rb *RigidBody) AABB() AABB {
	return rb.Shape.ComputeAABB(rb.Transform)
}

// SweptAABB bounds the body over what is left of its step displacement
func (rb *RigidBody) SweptAABB() AABB {
	bounds := rb.AABB()

	return bounds.Union(bounds.Translate(rb.Displacement))
}

// Integrate advances the velocity by thrust, gravity (along -Y) and air drag,
// then derives this step's displacement and clears the per-step bookkeeping.
func (rb *RigidBody) Integrate(dt float64, gravity float64) {
	rb.InnerEnergy = 0
	rb.HasLatestCollision = false
	rb.Contacts = 0

	if rb.IsStatic() {
		rb.Velocity = mgl64.Vec3{}
		rb.Displacement = mgl64.Vec3{}
		return
	}

	acceleration := rb.Thrust.Add(mgl64.Vec3{0, -gravity, 0})
	velocity := rb.Velocity.Add(acceleration.Mul(dt))

	// Quadratic drag, opposed to the motion. Never reverses the velocity.
	speed := velocity.Len()
	if speed > 1e-12 {
		drag := 0.5 * AirDensity(rb.Transform.Position.Y()) * DRAG_COEFFICIENT * CROSS_SECTION * speed * speed / rb.Mass
		loss := math.Min(drag*dt, speed)
		velocity = velocity.Sub(velocity.Mul(loss / speed))
	}

	rb.SetVelocity(velocity)
	rb.Displacement = rb.Velocity.Mul(dt)
}

// Settle stops the body: no velocity and nothing left to travel this step
func (rb *RigidBody) Settle() {
	rb.Velocity = mgl64.Vec3{}
	rb.Displacement = mgl64.Vec3{}
	rb.IsSettled = true
}

// AirDensity approximates the air density (kg/m³) at altitude y with a quadratic fit
// of the standard atmosphere over the troposphere. Never negative.
func AirDensity(y float64) float64 {
	// the fit bottoms out near 17km
	y = math.Min(y, 17000)
	density := SEA_LEVEL_DENSITY - 1.17e-4*y + 3.4e-9*y*y
	if density < 0 {
		return 0
	}

	return math.Min(density, 2*SEA_LEVEL_DENSITY)
}
