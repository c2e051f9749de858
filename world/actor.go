package world

import "github.com/jakecoffman/cp"

// Actor is a controllable dynamic body. The grapple engine treats it as a
// read-only handle: position, mass, movement intent, and facing come from
// here, while the body itself is owned by the world.
type Actor struct {
	ID string

	body  *cp.Body
	shape *cp.Shape
	group uint

	intent cp.Vector
	facing cp.Vector
	alive  bool
}

func (a *Actor) Body() *cp.Body      { return a.body }
func (a *Actor) Position() cp.Vector { return a.body.Position() }
func (a *Actor) Velocity() cp.Vector { return a.body.Velocity() }
func (a *Actor) Mass() float64       { return a.body.Mass() }
func (a *Actor) Alive() bool         { return a != nil && a.alive }

// Intent is the actor's desired travel direction, as last reported by its
// input source. Not necessarily unit length.
func (a *Actor) Intent() cp.Vector { return a.intent }

func (a *Actor) SetIntent(v cp.Vector) { a.intent = v }

// Facing is the actor's look direction; kept non-zero so it can substitute
// for intent when the actor has no active input.
func (a *Actor) Facing() cp.Vector { return a.facing }

func (a *Actor) SetFacing(v cp.Vector) {
	if v.LengthSq() == 0 {
		return
	}
	a.facing = v.Normalize()
}

// ApplyImpulse applies a world-space impulse at the body's center.
func (a *Actor) ApplyImpulse(impulse cp.Vector) {
	a.body.ApplyImpulseAtWorldPoint(impulse, a.body.Position())
}
