package constraint

import (
	"testing"

	"github.com/akmonengine/tumble/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func TestResolve_EqualMassHeadOn(t *testing.T) {
	a := newSphere(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{-1, 0, 0}, 1)
	b := newSphere(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, 1)

	Resolve(CollisionInfo{
		BodyA:   a,
		BodyB:   b,
		Contact: ContactPlane{Point: mgl64.Vec3{0.5, 0, 0}, Normal: mgl64.Vec3{1, 0, 0}},
		Time:    0.5,
	})

	// Velocities are exchanged then scaled by the restitution
	require.True(t, vec3Equal(a.Velocity, mgl64.Vec3{RESTITUTION, 0, 0}, 1e-12), "a velocity %v", a.Velocity)
	require.True(t, vec3Equal(b.Velocity, mgl64.Vec3{-RESTITUTION, 0, 0}, 1e-12), "b velocity %v", b.Velocity)

	require.InDelta(t, 1-RESTITUTION, a.InnerEnergy, 1e-12)
	require.InDelta(t, 1-RESTITUTION, b.InnerEnergy, 1e-12)

	// Half of the step travel is left, along the new velocities
	require.True(t, vec3Equal(a.Displacement, mgl64.Vec3{dt * 0.5, 0, 0}, 1e-12), "a displacement %v", a.Displacement)
	require.True(t, vec3Equal(b.Displacement, mgl64.Vec3{-dt * 0.5, 0, 0}, 1e-12), "b displacement %v", b.Displacement)
}

func TestResolve_HeavierBodyKeepsGoing(t *testing.T) {
	a := newSphere(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, 1)
	b := newSphere(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}, 3)

	Resolve(CollisionInfo{BodyA: a, BodyB: b, Contact: ContactPlane{Normal: mgl64.Vec3{1, 0, 0}}})

	// wA = 1, wB = 1/3
	require.InDelta(t, RESTITUTION*(2*1*2)/(4.0/3), a.Velocity.X(), 1e-12)
	require.InDelta(t, RESTITUTION*((1-1.0/3)*2)/(4.0/3), b.Velocity.X(), 1e-12)
	require.Greater(t, b.Velocity.X(), 0.0)
}

func TestResolve_StaticPartner(t *testing.T) {
	ball := newSphere(mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{3, -2, 0}, 2)
	ground := newGround()

	Resolve(CollisionInfo{
		BodyA:   ball,
		BodyB:   ground,
		Contact: ContactPlane{Normal: mgl64.Vec3{0, 1, 0}},
		Time:    0.5,
	})

	// Normal speed reflected and scaled, tangential speed kept
	require.True(t, vec3Equal(ball.Velocity, mgl64.Vec3{3, 2 * RESTITUTION, 0}, 1e-12), "velocity %v", ball.Velocity)
	require.Zero(t, ball.InnerEnergy, "static partners hand no energy over")

	// The remaining half of the step travel follows the bounce
	travel := mgl64.Vec3{3, -2, 0}.Len() * dt * 0.5
	want := mgl64.Vec3{3, 2 * RESTITUTION, 0}.Normalize().Mul(travel)
	require.True(t, vec3Equal(ball.Displacement, want, 1e-12), "displacement %v", ball.Displacement)

	require.Equal(t, mgl64.Vec3{}, ground.Velocity)
	require.Equal(t, mgl64.Vec3{}, ground.Displacement)
	require.Greater(t, ground.InnerEnergy, 0.0)
}

func TestResolve_MinimalRemainder(t *testing.T) {
	tests := []struct {
		name          string
		time          float64
		wantRemainder float64
	}{
		{"immediate impact", 0, 1 - MIN_REMAINDER},
		{"negative time is clamped", -3, 1 - MIN_REMAINDER},
		{"late impact", 0.8, 0.2},
		{"end of step", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ball := newSphere(mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{0, -4, 0}, 1)

			Resolve(CollisionInfo{BodyA: ball, BodyB: newGround(), Contact: ContactPlane{Normal: mgl64.Vec3{0, 1, 0}}, Time: tt.time})

			require.InDelta(t, 4*dt*tt.wantRemainder, ball.Displacement.Len(), 1e-12)
			if tt.wantRemainder > 0 {
				require.Greater(t, ball.Displacement.Y(), 0.0, "the remainder follows the bounce")
			}
		})
	}
}

func TestResolve_BothStatic(t *testing.T) {
	a := newGround()
	b := actor.NewRigidBody(actor.NewTransform(), &actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, actor.BodyTypeStatic, 0)

	Resolve(CollisionInfo{BodyA: a, BodyB: b, Contact: ContactPlane{Normal: mgl64.Vec3{0, 1, 0}}})

	require.Zero(t, a.InnerEnergy)
	require.Zero(t, b.InnerEnergy)
}

func TestResolve_StoppedBodyKeepsTravelling(t *testing.T) {
	// The moving body hands all of its normal speed over and stops.
	// Its remaining travel falls back to the contact normal.
	a := newSphere(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -2, 0}, 1)
	b := newSphere(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}, 1)

	Resolve(CollisionInfo{BodyA: a, BodyB: b, Contact: ContactPlane{Normal: mgl64.Vec3{0, 1, 0}}, Time: 0.5})

	require.True(t, vec3Equal(a.Velocity, mgl64.Vec3{}, 1e-12), "a velocity %v", a.Velocity)
	require.True(t, vec3Equal(a.Displacement, mgl64.Vec3{0, 2 * dt * 0.5, 0}, 1e-12), "a displacement %v", a.Displacement)

	require.InDelta(t, -2*RESTITUTION, b.Velocity.Y(), 1e-12)
	require.Equal(t, mgl64.Vec3{}, b.Displacement, "b had no travel this step")
}

func TestResolve_StillBodyGetsNoDisplacement(t *testing.T) {
	a := newSphere(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, 1)
	b := newSphere(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}, 1)

	Resolve(CollisionInfo{BodyA: a, BodyB: b, Contact: ContactPlane{Normal: mgl64.Vec3{0, 1, 0}}})

	require.Equal(t, mgl64.Vec3{}, a.Velocity)
	require.InDelta(t, 0, a.Displacement.Len(), 1e-15)
}
