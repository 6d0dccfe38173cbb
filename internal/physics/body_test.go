package physics_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/wandip/drivesim/internal/physics"
)

func newTestBody() *physics.RigidBody {
	return physics.NewBoxBody(physics.IdentityTransform(), mgl64.Vec3{1, 0.5, 2}, 10)
}

func TestIntegrateWithGravity(t *testing.T) {
	body := newTestBody()

	body.Integrate(0.1, mgl64.Vec3{0, -10, 0})

	assert.True(t, mgl64.Vec3{0, -1, 0}.ApproxEqualThreshold(body.Velocity, 1e-12))
	assert.True(t, mgl64.Vec3{0, -0.1, 0}.ApproxEqualThreshold(body.Transform.Position, 1e-12))
}

func TestIntegrateZeroTimeStepLeavesBodyUntouched(t *testing.T) {
	body := newTestBody()
	body.Velocity = mgl64.Vec3{5, 10, 15}

	body.Integrate(0, mgl64.Vec3{0, -10, 0})

	assert.Equal(t, mgl64.Vec3{5, 10, 15}, body.Velocity)
	assert.Equal(t, mgl64.Vec3{}, body.Transform.Position)
}

func TestIntegrateAppliesAccumulatedForceOnce(t *testing.T) {
	body := newTestBody()
	body.ApplyForce(mgl64.Vec3{20, 0, 0})

	body.Integrate(0.5, mgl64.Vec3{})
	body.Integrate(0.5, mgl64.Vec3{})

	assert.InDelta(t, 1.0, body.Velocity.X(), 1e-12)
}

func TestImpulseAtOffsetPointSpinsBody(t *testing.T) {
	body := newTestBody()

	body.ApplyImpulseAtPoint(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, -2})

	assert.InDelta(t, 0.1, body.Velocity.X(), 1e-12)
	assert.Greater(t, math.Abs(body.AngularVelocity.Y()), 0.0)
	assert.InDelta(t, 0.0, body.AngularVelocity.X(), 1e-12)
}

func TestRotationStaysNormalisedWhileSpinning(t *testing.T) {
	body := newTestBody()
	body.AngularVelocity = mgl64.Vec3{0.3, 2, -1}

	for range 1000 {
		body.Integrate(1.0/60, mgl64.Vec3{})
	}

	assert.InDelta(t, 1.0, body.Transform.Rotation.Len(), 1e-9)
}

func TestAngularDampingSlowsSpin(t *testing.T) {
	body := newTestBody()
	body.AngularDamping = 1
	body.AngularVelocity = mgl64.Vec3{0, 1, 0}

	body.Integrate(1, mgl64.Vec3{})

	assert.InDelta(t, math.Exp(-1), body.AngularVelocity.Y(), 1e-9)
}

func TestYawFollowsHeading(t *testing.T) {
	transform := physics.Transform{Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})}

	assert.InDelta(t, math.Pi/2, transform.Yaw(), 1e-9)
	assert.InDelta(t, 0.0, physics.IdentityTransform().Yaw(), 1e-12)
}

func TestInverseEffectiveMassAtCentreIsInverseMass(t *testing.T) {
	body := newTestBody()

	got := body.InverseEffectiveMass(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})

	assert.InDelta(t, 0.1, got, 1e-12)
}
