package kestrel

import (
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Contact is an ephemeral record of one detected overlap, created and consumed
// within a single tick. A precedes B in enumeration order and A != B. The
// normal is a unit vector pointing from A toward B; penetration is the current
// overlap along it, always > 0.
type Contact struct {
	A           EntityId
	B           EntityId
	Normal      mgl32.Vec3
	Penetration float32
}

// bodyRef bundles direct pointers into column storage for one collidable
// entity. Holding pointers (rather than copies) is what lets resolution
// mutate both sides of a contact; the broad-phase invariant A != B
// guarantees the two pointer sets never alias.
type bodyRef struct {
	eid EntityId
	tr  *TransformComponent
	rb  *RigidBodyComponent // nil for pure scenery colliders
	col *ColliderComponent
}

func collectBodies(cmd *Commands) []bodyRef {
	var bodies []bodyRef
	MakeQuery2[TransformComponent, ColliderComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, col *ColliderComponent) bool {
		bodies = append(bodies, bodyRef{
			eid: eid,
			tr:  tr,
			rb:  GetComponent[RigidBodyComponent](cmd, eid),
			col: col,
		})
		return true
	})

	// Creation order, so pair enumeration is deterministic
	slices.SortFunc(bodies, func(a, b bodyRef) int {
		return int(a.eid) - int(b.eid)
	})
	return bodies
}

// DetectContacts runs the broad and narrow phase and returns every contact in
// the world without resolving any of them. The broad phase is an exhaustive
// O(n²) sweep over all entities carrying both a transform and a collider;
// acceptable for small scenes, and the first thing to replace if entity
// counts grow.
func DetectContacts(cmd *Commands) []Contact {
	return detectContacts(collectBodies(cmd))
}

func detectContacts(bodies []bodyRef) []Contact {
	var contacts []Contact
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := &bodies[i], &bodies[j]
			if normal, penetration, ok := testShapes(a.col, a.tr.Position, b.col, b.tr.Position); ok {
				contacts = append(contacts, Contact{
					A:           a.eid,
					B:           b.eid,
					Normal:      normal,
					Penetration: penetration,
				})
			}
		}
	}
	return contacts
}

// ResolveCollisions detects every contact in the world, then resolves them.
// The full contact list is produced before any resolution mutates an entity,
// so resolution order cannot change which pairs were detected.
func ResolveCollisions(cmd *Commands) {
	bodies := collectBodies(cmd)
	contacts := detectContacts(bodies)
	if len(contacts) == 0 {
		return
	}

	index := make(map[EntityId]int, len(bodies))
	for i, b := range bodies {
		index[b.eid] = i
	}

	for _, contact := range contacts {
		resolveContact(contact, &bodies[index[contact.A]], &bodies[index[contact.B]])
	}
}

// testShapes classifies one candidate pair. Capsules are approximated by a
// sphere of their radius centered at the transform position, so every capsule
// pairing delegates to the corresponding sphere test. Symmetric pairings swap
// arguments to the canonical test and negate the resulting normal.
func testShapes(colA *ColliderComponent, posA mgl32.Vec3, colB *ColliderComponent, posB mgl32.Vec3) (mgl32.Vec3, float32, bool) {
	sphereA, radiusA := sphereApprox(colA)
	sphereB, radiusB := sphereApprox(colB)

	switch {
	case !sphereA && !sphereB:
		return collideBoxBox(posA, colA.Size, posB, colB.Size)
	case sphereA && sphereB:
		return collideSphereSphere(posA, radiusA, posB, radiusB)
	case sphereA:
		return collideSphereBox(posA, radiusA, posB, colB.Size)
	default:
		normal, penetration, ok := collideSphereBox(posB, radiusB, posA, colA.Size)
		if !ok {
			return mgl32.Vec3{}, 0, false
		}
		return normal.Mul(-1), penetration, true
	}
}

func sphereApprox(col *ColliderComponent) (bool, float32) {
	switch col.Shape {
	case ShapeSphere, ShapeCapsule:
		return true, col.Radius
	default:
		return false, 0
	}
}

// collideBoxBox tests two axis-aligned boxes, ignoring rotation. The contact
// axis is the one with minimum overlap; the sign follows the positional delta
// so the normal points from A toward B.
func collideBoxBox(posA, sizeA, posB, sizeB mgl32.Vec3) (mgl32.Vec3, float32, bool) {
	halfA := sizeA.Mul(0.5)
	halfB := sizeB.Mul(0.5)

	delta := posB.Sub(posA)

	overlapX := halfA.X() + halfB.X() - math32.Abs(delta.X())
	overlapY := halfA.Y() + halfB.Y() - math32.Abs(delta.Y())
	overlapZ := halfA.Z() + halfB.Z() - math32.Abs(delta.Z())

	if overlapX <= 0 || overlapY <= 0 || overlapZ <= 0 {
		return mgl32.Vec3{}, 0, false
	}

	var normal mgl32.Vec3
	penetration := overlapX

	if overlapX < overlapY && overlapX < overlapZ {
		penetration = overlapX
		normal[0] = axisSign(delta.X())
	} else if overlapY < overlapZ {
		penetration = overlapY
		normal[1] = axisSign(delta.Y())
	} else {
		penetration = overlapZ
		normal[2] = axisSign(delta.Z())
	}

	return normal, penetration, true
}

// collideSphereSphere tests two spheres. Coincident centers are treated as no
// contact; there is no meaningful normal there and it avoids dividing by zero.
func collideSphereSphere(posA mgl32.Vec3, radiusA float32, posB mgl32.Vec3, radiusB float32) (mgl32.Vec3, float32, bool) {
	delta := posB.Sub(posA)
	distance := delta.Len()
	minDistance := radiusA + radiusB

	if distance <= 0 || distance >= minDistance {
		return mgl32.Vec3{}, 0, false
	}
	return delta.Mul(1 / distance), minDistance - distance, true
}

// collideSphereBox tests a sphere against an axis-aligned box. The normal
// points from the sphere toward the box (A toward B with the sphere as A).
// When the sphere center sits exactly inside the box the closest-point
// direction degenerates, so the center is pushed out along whichever axis has
// the least remaining clearance instead.
func collideSphereBox(spherePos mgl32.Vec3, radius float32, boxPos, boxSize mgl32.Vec3) (mgl32.Vec3, float32, bool) {
	half := boxSize.Mul(0.5)
	boxMin := boxPos.Sub(half)
	boxMax := boxPos.Add(half)

	closest := mgl32.Vec3{
		clamp32(spherePos.X(), boxMin.X(), boxMax.X()),
		clamp32(spherePos.Y(), boxMin.Y(), boxMax.Y()),
		clamp32(spherePos.Z(), boxMin.Z(), boxMax.Z()),
	}

	toClosest := closest.Sub(spherePos)
	distance := toClosest.Len()

	if distance > 0 && distance < radius {
		return toClosest.Mul(1 / distance), radius - distance, true
	}

	if distance == 0 {
		// Center inside the box: clearance to each face pair, capped at radius
		clearance := mgl32.Vec3{
			math32.Min(half.X()-math32.Abs(spherePos.X()-boxPos.X()), radius),
			math32.Min(half.Y()-math32.Abs(spherePos.Y()-boxPos.Y()), radius),
			math32.Min(half.Z()-math32.Abs(spherePos.Z()-boxPos.Z()), radius),
		}

		var normal mgl32.Vec3
		penetration := clearance.X()

		if clearance.X() < clearance.Y() && clearance.X() < clearance.Z() {
			penetration = clearance.X()
			normal[0] = -axisSign(spherePos.X() - boxPos.X())
		} else if clearance.Y() < clearance.Z() {
			penetration = clearance.Y()
			normal[1] = -axisSign(spherePos.Y() - boxPos.Y())
		} else {
			penetration = clearance.Z()
			normal[2] = -axisSign(spherePos.Z() - boxPos.Z())
		}

		return normal, penetration + radius, true
	}

	return mgl32.Vec3{}, 0, false
}

// resolveContact applies positional correction and velocity impulses to one
// contact. Triggers and pairs lacking a rigidbody on either side are detected
// but never resolved; so are static-static pairs.
func resolveContact(contact Contact, a, b *bodyRef) {
	if a.col.IsTrigger || b.col.IsTrigger {
		return
	}
	if a.rb == nil || b.rb == nil {
		return
	}

	staticA := a.rb.Static()
	staticB := b.rb.Static()
	if staticA && staticB {
		return
	}

	// Positional correction: split between two dynamic bodies, full push to
	// the dynamic side otherwise
	if !staticA && !staticB {
		correction := contact.Normal.Mul(contact.Penetration / 2)
		a.tr.Position = a.tr.Position.Sub(correction)
		b.tr.Position = b.tr.Position.Add(correction)
	} else if !staticA {
		a.tr.Position = a.tr.Position.Sub(contact.Normal.Mul(contact.Penetration))
	} else {
		b.tr.Position = b.tr.Position.Add(contact.Normal.Mul(contact.Penetration))
	}

	relativeVelocity := b.rb.Velocity.Sub(a.rb.Velocity)
	velocityAlongNormal := relativeVelocity.Dot(contact.Normal)

	// Separating or stationary along the normal: nothing to resolve
	if velocityAlongNormal >= 0 {
		return
	}

	var invMassA, invMassB float32
	if !staticA {
		invMassA = 1 / a.rb.Mass
	}
	if !staticB {
		invMassB = 1 / b.rb.Mass
	}

	restitution := (a.col.Restitution + b.col.Restitution) / 2
	impulseScalar := -(1 + restitution) * velocityAlongNormal / (invMassA + invMassB)
	impulse := contact.Normal.Mul(impulseScalar)

	if !staticA {
		a.rb.Velocity = a.rb.Velocity.Sub(impulse.Mul(invMassA))
	}
	if !staticB {
		b.rb.Velocity = b.rb.Velocity.Add(impulse.Mul(invMassB))
	}

	// Coulomb-like friction against the pre-impulse tangential velocity
	tangent := relativeVelocity.Sub(contact.Normal.Mul(velocityAlongNormal))
	tangentLength := tangent.Len()

	if tangentLength > 0.001 {
		friction := (a.col.Friction + b.col.Friction) / 2
		frictionImpulse := tangent.Mul(1 / tangentLength).Mul(-friction * math32.Abs(impulseScalar))

		if !staticA {
			a.rb.Velocity = a.rb.Velocity.Sub(frictionImpulse.Mul(invMassA))
		}
		if !staticB {
			b.rb.Velocity = b.rb.Velocity.Add(frictionImpulse.Mul(invMassB))
		}
	}

	// The body on the upper side of the contact is supported from below. The
	// normal points from A toward B, so A is the upper body when it points
	// down. Single-tick heuristic; the integrator clears it every frame.
	if contact.Normal.Y() < -0.5 && !staticA {
		a.rb.Grounded = true
	}
	if contact.Normal.Y() > 0.5 && !staticB {
		b.rb.Grounded = true
	}
}

func axisSign(v float32) float32 {
	if v > 0 {
		return 1
	}
	return -1
}

func clamp32(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(v, hi))
}
