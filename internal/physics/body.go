package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	localForward = mgl64.Vec3{0, 0, -1}
	localUp      = mgl64.Vec3{0, 1, 0}
	localRight   = mgl64.Vec3{1, 0, 0}
)

// Transform is a position and orientation in world space.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// IdentityTransform is the transform reported before a body exists.
func IdentityTransform() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

// Yaw returns the heading around +Y in radians, zero when facing -Z.
func (t Transform) Yaw() float64 {
	forward := t.Rotation.Rotate(localForward)

	return math.Atan2(-forward.X(), -forward.Z())
}

// RigidBody is a dynamic box-shaped body integrated with semi-implicit Euler.
type RigidBody struct {
	Transform       Transform
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	HalfExtents     mgl64.Vec3
	LinearDamping   float64
	AngularDamping  float64

	mass            float64
	invMass         float64
	invInertiaLocal mgl64.Vec3
	force           mgl64.Vec3
	torque          mgl64.Vec3
}

// NewBoxBody creates a dynamic body with the inertia of a solid box.
func NewBoxBody(transform Transform, halfExtents mgl64.Vec3, mass float64) *RigidBody {
	x2 := halfExtents.X() * halfExtents.X()
	y2 := halfExtents.Y() * halfExtents.Y()
	z2 := halfExtents.Z() * halfExtents.Z()

	inertia := mgl64.Vec3{
		mass / 3 * (y2 + z2),
		mass / 3 * (x2 + z2),
		mass / 3 * (x2 + y2),
	}

	return &RigidBody{
		Transform:       transform,
		HalfExtents:     halfExtents,
		mass:            mass,
		invMass:         1 / mass,
		invInertiaLocal: mgl64.Vec3{1 / inertia.X(), 1 / inertia.Y(), 1 / inertia.Z()},
	}
}

func (b *RigidBody) Mass() float64 {
	return b.mass
}

func (b *RigidBody) Forward() mgl64.Vec3 {
	return b.Transform.Rotation.Rotate(localForward)
}

func (b *RigidBody) Up() mgl64.Vec3 {
	return b.Transform.Rotation.Rotate(localUp)
}

func (b *RigidBody) Right() mgl64.Vec3 {
	return b.Transform.Rotation.Rotate(localRight)
}

// LocalToWorld maps a body-local point into world space.
func (b *RigidBody) LocalToWorld(point mgl64.Vec3) mgl64.Vec3 {
	return b.Transform.Position.Add(b.Transform.Rotation.Rotate(point))
}

// VelocityAtPoint returns the velocity of a world-space point attached to the body.
func (b *RigidBody) VelocityAtPoint(point mgl64.Vec3) mgl64.Vec3 {
	return b.Velocity.Add(b.AngularVelocity.Cross(point.Sub(b.Transform.Position)))
}

func (b *RigidBody) ApplyForce(force mgl64.Vec3) {
	b.force = b.force.Add(force)
}

func (b *RigidBody) ApplyTorque(torque mgl64.Vec3) {
	b.torque = b.torque.Add(torque)
}

func (b *RigidBody) ApplyImpulse(impulse mgl64.Vec3) {
	b.Velocity = b.Velocity.Add(impulse.Mul(b.invMass))
}

// ApplyImpulseAtPoint changes linear and angular velocity as if the impulse
// acted at a world-space point.
func (b *RigidBody) ApplyImpulseAtPoint(impulse, point mgl64.Vec3) {
	b.ApplyImpulse(impulse)

	arm := point.Sub(b.Transform.Position)
	b.AngularVelocity = b.AngularVelocity.Add(b.applyInverseInertia(arm.Cross(impulse)))
}

// InverseEffectiveMass is the inverse mass felt by an impulse along dir at a world point.
func (b *RigidBody) InverseEffectiveMass(point, dir mgl64.Vec3) float64 {
	arm := point.Sub(b.Transform.Position)
	angular := b.applyInverseInertia(arm.Cross(dir)).Cross(arm)

	return b.invMass + dir.Dot(angular)
}

// Integrate advances the body by dt: velocities first, then position and rotation.
func (b *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if dt <= 0 {
		return
	}

	acceleration := gravity.Add(b.force.Mul(b.invMass))
	b.Velocity = b.Velocity.Add(acceleration.Mul(dt))
	b.AngularVelocity = b.AngularVelocity.Add(b.applyInverseInertia(b.torque).Mul(dt))

	b.Velocity = b.Velocity.Mul(math.Exp(-b.LinearDamping * dt))
	b.AngularVelocity = b.AngularVelocity.Mul(math.Exp(-b.AngularDamping * dt))

	b.Transform.Position = b.Transform.Position.Add(b.Velocity.Mul(dt))

	spin := mgl64.Quat{W: 0, V: b.AngularVelocity}.Mul(b.Transform.Rotation).Scale(0.5 * dt)
	b.Transform.Rotation = b.Transform.Rotation.Add(spin).Normalize()

	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

func (b *RigidBody) applyInverseInertia(v mgl64.Vec3) mgl64.Vec3 {
	rotation := b.Transform.Rotation
	local := rotation.Conjugate().Rotate(v)
	scaled := mgl64.Vec3{
		local.X() * b.invInertiaLocal.X(),
		local.Y() * b.invInertiaLocal.Y(),
		local.Z() * b.invInertiaLocal.Z(),
	}

	return rotation.Rotate(scaled)
}
