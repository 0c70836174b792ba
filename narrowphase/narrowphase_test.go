package narrowphase

import (
	"math"
	"testing"

	"github.com/akmonengine/tumble/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

const dt = 0.1

// newMovingBody creates a body with a velocity and the matching step displacement
func newMovingBody(shape actor.Shape, position, velocity mgl64.Vec3, bodyType actor.BodyType) *actor.RigidBody {
	body := actor.NewRigidBody(actor.TransformAt(position, mgl64.QuatIdent()), shape, bodyType, 1)
	body.Velocity = velocity
	body.Displacement = velocity.Mul(dt)

	return body
}

func newBall(position, velocity mgl64.Vec3) *actor.RigidBody {
	return newMovingBody(&actor.Sphere{Radius: 0.5}, position, velocity, actor.BodyTypeDynamic)
}

func newGround() *actor.RigidBody {
	return newMovingBody(actor.NewPlane(mgl64.Vec3{0, 1, 0}), mgl64.Vec3{}, mgl64.Vec3{}, actor.BodyTypeStatic)
}

func newCrate(position mgl64.Vec3) *actor.RigidBody {
	return newMovingBody(&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, position, mgl64.Vec3{}, actor.BodyTypeStatic)
}

func vec3Equal(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func TestPairKindOf(t *testing.T) {
	tests := []struct {
		a, b actor.ShapeType
		want PairKind
	}{
		{actor.ShapeTypeSphere, actor.ShapeTypeSphere, PairSphereSphere},
		{actor.ShapeTypeSphere, actor.ShapeTypePlane, PairSpherePlane},
		{actor.ShapeTypePlane, actor.ShapeTypeSphere, PairSpherePlane},
		{actor.ShapeTypeBox, actor.ShapeTypeSphere, PairSphereBox},
		{actor.ShapeTypePlane, actor.ShapeTypePlane, PairPlanePlane},
		{actor.ShapeTypeBox, actor.ShapeTypePlane, PairPlaneBox},
		{actor.ShapeTypeBox, actor.ShapeTypeBox, PairBoxBox},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, PairKindOf(tt.a, tt.b), "%s/%s", tt.a, tt.b)
	}
}

func TestCollide_StaticPair(t *testing.T) {
	a := newMovingBody(&actor.Sphere{Radius: 1}, mgl64.Vec3{}, mgl64.Vec3{}, actor.BodyTypeStatic)
	b := newMovingBody(&actor.Sphere{Radius: 1}, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{}, actor.BodyTypeStatic)

	_, ok := Collide(a, b)
	require.False(t, ok)
	require.Equal(t, mgl64.Vec3{}, a.Position(), "static pairs are left untouched")
}

func TestCollide_ReversedPairPutsSphereFirst(t *testing.T) {
	ball := newBall(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -10, 0})
	ground := newGround()

	info, ok := Collide(ground, ball)
	require.True(t, ok)
	require.Same(t, ball, info.BodyA)
	require.Same(t, ground, info.BodyB)
	require.True(t, vec3Equal(info.Contact.Normal, mgl64.Vec3{0, 1, 0}, 1e-12))
}

func TestCollide_UnimplementedPairs(t *testing.T) {
	tests := []struct {
		name string
		a, b *actor.RigidBody
	}{
		{
			name: "overlapping boxes",
			a:    newMovingBody(&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, actor.BodyTypeDynamic),
			b:    newMovingBody(&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{}, actor.BodyTypeDynamic),
		},
		{
			name: "box sunk into plane",
			a:    newMovingBody(&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{0, -5, 0}, actor.BodyTypeDynamic),
			b:    newGround(),
		},
		{
			name: "plane on box",
			a:    newGround(),
			b:    newMovingBody(&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{0, -5, 0}, actor.BodyTypeDynamic),
		},
		{
			name: "crossing planes",
			a:    newMovingBody(actor.NewPlane(mgl64.Vec3{1, 0, 0}), mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, actor.BodyTypeDynamic),
			b:    newGround(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positionA, positionB := tt.a.Position(), tt.b.Position()
			velocityA := tt.a.Velocity

			_, ok := Collide(tt.a, tt.b)
			require.False(t, ok)
			require.Equal(t, positionA, tt.a.Position())
			require.Equal(t, positionB, tt.b.Position())
			require.Equal(t, velocityA, tt.a.Velocity)
		})
	}
}

func TestSweepSphere(t *testing.T) {
	tests := []struct {
		name   string
		offset mgl64.Vec3
		motion mgl64.Vec3
		radius float64
		wantT  float64
		wantOK bool
	}{
		{"head-on", mgl64.Vec3{-3, 0, 0}, mgl64.Vec3{4, 0, 0}, 1, 0.5, true},
		{"too short", mgl64.Vec3{-3, 0, 0}, mgl64.Vec3{1, 0, 0}, 1, 0, false},
		{"moving away", mgl64.Vec3{-3, 0, 0}, mgl64.Vec3{-1, 0, 0}, 1, 0, false},
		{"passing by", mgl64.Vec3{-3, 2, 0}, mgl64.Vec3{6, 0, 0}, 1, 0, false},
		{"inside and approaching", mgl64.Vec3{-0.5, 0, 0}, mgl64.Vec3{1, 0, 0}, 1, 0, true},
		{"inside and leaving", mgl64.Vec3{-0.5, 0, 0}, mgl64.Vec3{-1, 0, 0}, 1, 0, false},
		{"not moving", mgl64.Vec3{-3, 0, 0}, mgl64.Vec3{}, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sweepSphere(tt.offset, tt.motion, tt.radius)
			require.Equal(t, tt.wantOK, ok)
			require.InDelta(t, tt.wantT, got, 1e-12)
		})
	}
}

func TestSeparate(t *testing.T) {
	a := newBall(mgl64.Vec3{}, mgl64.Vec3{})
	b := newBall(mgl64.Vec3{}, mgl64.Vec3{})
	b.Mass = 3

	separate(a, b, mgl64.Vec3{1, 0, 0}, 0.4, 0.5)

	// push 0.2 split 3:1 by inverse mass
	require.InDelta(t, 0.15, a.Position().X(), 1e-12)
	require.InDelta(t, -0.05, b.Position().X(), 1e-12)

	// capped
	c := newBall(mgl64.Vec3{}, mgl64.Vec3{})
	separate(c, newGround(), mgl64.Vec3{0, 1, 0}, 10, 1)
	require.InDelta(t, MAX_NUDGE, c.Position().Y(), 1e-12)
}
