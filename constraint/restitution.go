package constraint

import (
	"math"
)

// Resolve applies a one dimensional, mass weighted collision along the contact
// normal, then turns each body's step displacement along its new velocity and
// shrinks it to what is left of the step.
//
// The normal components follow the elastic two-body exchange scaled by RESTITUTION;
// tangential components are kept. Static bodies act as an infinite mass and are never written.
func Resolve(info CollisionInfo) {
	bodyA := info.BodyA
	bodyB := info.BodyB
	normal := Direction(info.Contact.Normal, bodyA.Position().Sub(bodyB.Position()))

	invMassA := bodyA.InverseMass()
	invMassB := bodyB.InverseMass()
	totalWeight := invMassA + invMassB
	if totalWeight <= 0 {
		return
	}

	speedA := bodyA.Velocity.Dot(normal)
	speedB := bodyB.Velocity.Dot(normal)

	newSpeedA := RESTITUTION * ((invMassB-invMassA)*speedA + 2*invMassA*speedB) / totalWeight
	newSpeedB := RESTITUTION * ((invMassA-invMassB)*speedB + 2*invMassB*speedA) / totalWeight

	// Energy handed over by the partner, static partners hand nothing over
	if !bodyB.IsStatic() {
		bodyA.InnerEnergy += math.Abs(math.Abs(speedB)-math.Abs(newSpeedB)) * bodyB.Mass
	}
	if !bodyA.IsStatic() {
		bodyB.InnerEnergy += math.Abs(math.Abs(speedA)-math.Abs(newSpeedA)) * bodyA.Mass
	}

	remainder := 1.0 - math.Max(clampTime(info.Time), MIN_REMAINDER)

	if !bodyA.IsStatic() {
		travel := bodyA.Displacement.Len()
		bodyA.SetVelocity(bodyA.Velocity.Add(normal.Mul(newSpeedA - speedA)))
		bodyA.Displacement = Direction(bodyA.Velocity, normal).Mul(travel * remainder)
	}
	if !bodyB.IsStatic() {
		travel := bodyB.Displacement.Len()
		bodyB.SetVelocity(bodyB.Velocity.Add(normal.Mul(newSpeedB - speedB)))
		bodyB.Displacement = Direction(bodyB.Velocity, normal.Mul(-1)).Mul(travel * remainder)
	}
}

func clampTime(t float64) float64 {
	if math.IsNaN(t) {
		return 0
	}

	return math.Max(0, math.Min(1, t))
}
