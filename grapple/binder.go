package grapple

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/grapple-server/common"
	"github.com/milk9111/grapple-server/world"
)

// binding is the mode-specific physics graph owned by an attached session.
// Exactly one of joint (swing) or driver (zip) is populated, keyed by mode;
// the anchors are created and destroyed as a unit with it.
type binding struct {
	mode    Mode
	surface *world.Surface

	rootAnchor    *world.Anchor
	surfaceAnchor *world.Anchor
	// driverAnchor is the extra root-side point the zip driver acts through.
	driverAnchor *world.Anchor

	joint  *cp.Constraint
	driver *world.VelocityDriver

	released bool
}

// bind builds the physics graph for an accepted target and attaches the
// session. hitPoint is the exact world-space sweep hit; the surface-side
// anchor converts it into the surface's local frame.
func (e *Engine) bind(s *Session, mode Mode, surface *world.Surface, hitPoint, dir cp.Vector) {
	cfg := e.cfg

	b := &binding{
		mode:          mode,
		surface:       surface,
		rootAnchor:    world.NewActorAnchor(s.actor, cp.Vector{}),
		surfaceAnchor: world.NewSurfaceAnchor(surface, hitPoint),
	}

	switch mode {
	case ModeSwing:
		length := common.Clamp(b.separation(), cfg.SwingMinLength, cfg.SwingMaxLength)
		joint := cp.NewSlideJoint(
			s.actor.Body(), surface.Body(),
			b.rootAnchor.Local(), b.surfaceAnchor.Local(),
			0, length,
		)
		e.world.Space().AddConstraint(joint)
		b.joint = joint
	case ModeZip:
		b.driverAnchor = world.NewActorAnchor(s.actor, cp.Vector{})
		b.driver = e.world.NewVelocityDriver(s.actor, cfg.ZipMaxForce)
		b.driver.SetTargetVelocity(dir.Normalize().Mult(cfg.ZipSpeed))
	}

	s.binding = b
	s.state = StateAttached
	s.mode = mode
}

// release tears the binding down: remove the mode-specific physics object if
// still present, release every anchor, null everything. Idempotent, and safe
// when the surface or actor was already destroyed externally (removing a
// body strips its constraints, so only live pairs are removed here).
func (b *binding) release(w *world.World) {
	if b == nil || b.released {
		return
	}
	b.released = true

	if b.joint != nil {
		if b.surface.Alive() && b.rootAnchor.Valid() {
			w.Space().RemoveConstraint(b.joint)
		}
		b.joint = nil
	}
	if b.driver != nil {
		b.driver.Release()
		b.driver = nil
	}

	b.rootAnchor.Release()
	b.surfaceAnchor.Release()
	b.driverAnchor.Release()
	b.rootAnchor = nil
	b.surfaceAnchor = nil
	b.driverAnchor = nil
	b.surface = nil
}

// valid reports whether every supporting part of the binding still exists.
func (b *binding) valid() bool {
	if b == nil || b.released {
		return false
	}
	if !b.rootAnchor.Valid() || !b.surfaceAnchor.Valid() {
		return false
	}
	if b.mode == ModeZip && !b.driverAnchor.Valid() {
		return false
	}
	return b.surface.Alive()
}

// separation is the current distance between the root and surface anchors.
func (b *binding) separation() float64 {
	return b.rootAnchor.World().Distance(b.surfaceAnchor.World())
}

// slide returns the swing distance constraint, nil in zip mode.
func (b *binding) slide() *cp.SlideJoint {
	if b == nil || b.joint == nil {
		return nil
	}
	sj, _ := b.joint.Class.(*cp.SlideJoint)
	return sj
}
