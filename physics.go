package kestrel

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent places an entity in the world. Rotation is Euler angles
// in radians; it is consumed by rendering and the spin system but never by
// collision; box colliders collide axis-aligned regardless of rotation.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

func NewTransform(position mgl32.Vec3) TransformComponent {
	return TransformComponent{
		Position: position,
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// RigidBodyComponent is the per-entity dynamics state. Mass 0 marks a
// static/kinematic body: it is never integrated and never receives impulses.
type RigidBodyComponent struct {
	Mass       float32
	UseGravity bool
	Velocity   mgl32.Vec3
	Force      mgl32.Vec3
	Drag       float32
	Grounded   bool
}

func (rb *RigidBodyComponent) Static() bool {
	return rb.Mass == 0
}

func (rb *RigidBodyComponent) AddForce(force mgl32.Vec3) {
	rb.Force = rb.Force.Add(force)
}

func (rb *RigidBodyComponent) ApplyImpulse(impulse mgl32.Vec3) {
	if rb.Static() {
		return
	}
	rb.Velocity = rb.Velocity.Add(impulse.Mul(1.0 / rb.Mass))
}

type ColliderShape int

const (
	ShapeBox ColliderShape = iota
	ShapeSphere
	ShapeCapsule
)

// ColliderComponent is the collision shape plus surface material. Size is the
// full box extent (half extents are Size/2). Capsules carry Radius and Height
// but collide as a sphere of their radius for every pairing; Height only
// matters to rendering.
type ColliderComponent struct {
	Shape       ColliderShape
	Size        mgl32.Vec3
	Radius      float32
	Height      float32
	IsTrigger   bool
	Restitution float32
	Friction    float32
}

func BoxCollider(size mgl32.Vec3) ColliderComponent {
	return ColliderComponent{Shape: ShapeBox, Size: size}
}

func SphereCollider(radius float32) ColliderComponent {
	return ColliderComponent{Shape: ShapeSphere, Radius: radius}
}

func CapsuleCollider(radius, height float32) ColliderComponent {
	return ColliderComponent{Shape: ShapeCapsule, Radius: radius, Height: height}
}

type PhysicsWorld struct {
	Gravity mgl32.Vec3
}

func NewPhysicsWorld() *PhysicsWorld {
	return &PhysicsWorld{
		Gravity: mgl32.Vec3{0, -9.8, 0},
	}
}

// PhysicsModule installs the rigid-body simulation: the integrator runs in
// Update, collision detection and resolution in PostUpdate, so every body has
// moved before any pair is tested.
type PhysicsModule struct{}

func (m PhysicsModule) Install(app *App, cmd *Commands) {
	world := NewPhysicsWorld()
	if cfg := GetResource[EngineConfig](app); cfg != nil {
		world.Gravity = cfg.Gravity()
	}
	cmd.AddResources(world)

	app.UseSystem(System(integrationSystem).InStage(Update))
	app.UseSystem(System(collisionSystem).InStage(PostUpdate))
}

func integrationSystem(cmd *Commands, tm *Time, physics *PhysicsWorld) {
	dt := tm.Dt
	if dt <= 0 || dt > 1.0 { // Safety cap for dt
		return
	}
	Integrate(cmd, physics, dt)
}

func collisionSystem(cmd *Commands) {
	ResolveCollisions(cmd)
}

// Integrate advances every dynamic body by one timestep with explicit forward
// Euler: accumulate gravity, derive acceleration from the force accumulator,
// advance velocity, apply drag, advance position, then clear the accumulator
// and the grounded flag for this tick. Forward Euler is not symplectic; it is
// stable at the typical fixed small dt but can blow up at large steps or very
// high drag, which is a documented limitation of this core.
func Integrate(cmd *Commands, physics *PhysicsWorld, dt float32) {
	MakeQuery2[TransformComponent, RigidBodyComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, rb *RigidBodyComponent) bool {
		// Static bodies never move under the integrator
		if rb.Static() {
			return true
		}

		if rb.UseGravity {
			rb.AddForce(physics.Gravity.Mul(rb.Mass))
		}

		acceleration := rb.Force.Mul(1.0 / rb.Mass)
		rb.Velocity = rb.Velocity.Add(acceleration.Mul(dt))

		// Drag reads the already-advanced velocity
		rb.Velocity = rb.Velocity.Add(rb.Velocity.Mul(-rb.Drag * dt))

		if math32.IsNaN(rb.Velocity.Len()) || math32.IsInf(rb.Velocity.Len(), 0) {
			cmd.Logger().Warnf("physics: entity %v velocity diverged, resetting", eid)
			rb.Velocity = mgl32.Vec3{}
		}

		tr.Position = tr.Position.Add(rb.Velocity.Mul(dt))

		rb.Force = mgl32.Vec3{}
		rb.Grounded = false
		return true
	})
}
