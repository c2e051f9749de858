package world

import "github.com/jakecoffman/cp"

// liveness is implemented by actors and surfaces so an anchor can tell
// whether its supporting body still exists.
type liveness interface {
	Alive() bool
}

// Anchor is a body-local attachment point. Surface-side anchors store the
// hit point in the surface's local frame so they stay correct if the surface
// body is animated.
type Anchor struct {
	body     *cp.Body
	local    cp.Vector
	owner    liveness
	released bool
}

// NewActorAnchor binds an anchor to an actor body at a body-local offset.
func NewActorAnchor(a *Actor, local cp.Vector) *Anchor {
	return &Anchor{body: a.body, local: local, owner: a}
}

// NewSurfaceAnchor binds an anchor to a surface at a world-space point,
// converting it into the surface body's local frame.
func NewSurfaceAnchor(s *Surface, worldPoint cp.Vector) *Anchor {
	return &Anchor{body: s.body, local: s.body.WorldToLocal(worldPoint), owner: s}
}

// Valid reports whether the anchor's supporting body still exists.
func (an *Anchor) Valid() bool {
	return an != nil && !an.released && an.owner.Alive()
}

// Local returns the anchor offset in its body's local frame.
func (an *Anchor) Local() cp.Vector { return an.local }

// World returns the anchor's current world position.
func (an *Anchor) World() cp.Vector {
	return an.body.LocalToWorld(an.local)
}

func (an *Anchor) Body() *cp.Body { return an.body }

// Release invalidates the anchor. Idempotent.
func (an *Anchor) Release() {
	if an == nil {
		return
	}
	an.released = true
}

// VelocityDriver forces an actor body toward a target velocity through a
// pivot joint against a kinematic control body, with a bounded force so it
// dominates gravity and collision response without becoming a teleport.
type VelocityDriver struct {
	space    *cp.Space
	actor    *Actor
	control  *cp.Body
	pivot    *cp.Constraint
	released bool
}

// NewVelocityDriver creates the control body and pivot joint for an actor.
func (w *World) NewVelocityDriver(a *Actor, maxForce float64) *VelocityDriver {
	control := w.space.AddBody(cp.NewKinematicBody())
	control.SetPosition(a.body.Position())

	pivot := cp.NewPivotJoint2(control, a.body, cp.Vector{}, cp.Vector{})
	pivot.SetMaxBias(0)
	pivot.SetMaxForce(maxForce)
	w.space.AddConstraint(pivot)

	return &VelocityDriver{
		space:   w.space,
		actor:   a,
		control: control,
		pivot:   pivot,
	}
}

// SetTargetVelocity updates the velocity the driven body is pulled toward.
func (d *VelocityDriver) SetTargetVelocity(v cp.Vector) {
	if d == nil || d.released {
		return
	}
	d.control.SetVelocityVector(v)
}

// Release removes the pivot joint and control body from the space. Safe to
// call twice, and safe after the driven actor was already removed (removing
// an actor strips its constraints, including this pivot).
func (d *VelocityDriver) Release() {
	if d == nil || d.released {
		return
	}
	d.released = true
	if d.actor.Alive() {
		d.space.RemoveConstraint(d.pivot)
	}
	d.space.RemoveBody(d.control)
	d.pivot = nil
	d.control = nil
}
