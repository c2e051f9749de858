package grapple

import (
	"github.com/milk9111/grapple-server/common"
	"github.com/milk9111/grapple-server/tuning"
)

// Step advances the engine by one simulation tick: due cooldown expiries,
// the per-session attached update, the physics step, then the status sync
// for every session regardless of state.
func (e *Engine) Step(dt float64) {
	e.clock += dt

	e.runCooldownExpiries()

	e.store.ForEach(func(_ string, s *Session) {
		if s.state != StateAttached {
			return
		}
		e.updateAttached(s, dt)
	})

	e.world.Step(dt)

	e.store.ForEach(func(_ string, s *Session) {
		s.status = e.snapshot(s)
	})
}

func (e *Engine) updateAttached(s *Session, dt float64) {
	// Integrity first: a destroyed surface means the anchors have nothing to
	// hold onto, so the session drops with no impulse.
	if !s.binding.valid() {
		e.forceDetach(s, "anchor_lost")
		return
	}

	// Hard safety valve against runaway stretching from moving geometry or
	// solver glitches.
	if s.binding.separation() > e.cfg.MaxRange+e.cfg.BreakSlack {
		e.forceDetach(s, "break_distance")
		return
	}

	switch s.mode {
	case ModeSwing:
		e.updateSwing(s, dt)
	case ModeZip:
		e.updateZip(s)
	}
}

func (e *Engine) updateSwing(s *Session, dt float64) {
	if s.reelDir == 0 {
		return
	}
	s.reelHold += dt
	mult := reelMultiplier(e.cfg, s.reelHold)

	sj := s.binding.slide()
	length := sj.Max + float64(s.reelDir)*e.cfg.ReelBaseSpeed*mult*dt
	sj.Max = common.Clamp(length, e.cfg.SwingMinLength, e.cfg.SwingMaxLength)
}

// reelMultiplier ramps from 1 toward the cap with continuous hold time, using
// elapsed real time so taps stay fine-grained at any tick rate.
func reelMultiplier(cfg tuning.Config, hold float64) float64 {
	m := 1 + hold*cfg.ReelAccelRate
	if m > cfg.ReelMaxMultiplier {
		return cfg.ReelMaxMultiplier
	}
	return m
}

func (e *Engine) updateZip(s *Session) {
	// Re-aim at the anchor every tick: the surface may be moving and the
	// actor may have been knocked off course.
	to := s.binding.surfaceAnchor.World().Sub(s.actor.Position())
	dist := to.Length()
	if dist < e.cfg.ZipStopDistance {
		// Arrival is terminal, not a momentum event.
		e.forceDetach(s, "arrived")
		return
	}
	s.binding.driver.SetTargetVelocity(to.Mult(1 / dist).Mult(e.cfg.ZipSpeed))
}

// applyMomentum converts the actor's movement intent into a release impulse.
// Falls back to facing when there is no active input, and biases the chosen
// direction upward before normalizing so a flat launch keeps some height.
func (e *Engine) applyMomentum(s *Session) {
	dir := s.actor.Intent()
	if dir.Length() < e.cfg.IntentEpsilon {
		dir = s.actor.Facing()
	}
	if dir.LengthSq() == 0 {
		return
	}
	dir = dir.Normalize()
	dir.Y -= e.cfg.UpwardBias // up is negative Y
	dir = dir.Normalize()

	s.actor.ApplyImpulse(dir.Mult(e.cfg.BaseImpulse * s.actor.Mass()))
}

// cooldownExpiry is the deferred Cooldown→Idle task. It carries the session
// identity and the detach stamp it was scheduled for, and re-validates both
// at execution time; there is no cancellation, staleness is just a no-op.
type cooldownExpiry struct {
	actorID string
	stamp   float64
	at      float64
}

func (e *Engine) scheduleCooldownExpiry(actorID string, stamp, at float64) {
	e.expiries = append(e.expiries, cooldownExpiry{actorID: actorID, stamp: stamp, at: at})
}

func (e *Engine) runCooldownExpiries() {
	if len(e.expiries) == 0 {
		return
	}
	remaining := e.expiries[:0]
	for _, exp := range e.expiries {
		if exp.at > e.clock {
			remaining = append(remaining, exp)
			continue
		}
		s := e.store.Get(exp.actorID)
		if s == nil || s.state != StateCooldown || s.lastDetach != exp.stamp {
			continue
		}
		s.state = StateIdle
	}
	e.expiries = remaining
}

func (e *Engine) snapshot(s *Session) Status {
	st := Status{State: s.state.String()}
	switch s.state {
	case StateAttached:
		st.Mode = s.mode.String()
		if sj := s.binding.slide(); sj != nil {
			st.Length = sj.Max
			st.HasLength = true
		}
	case StateCooldown:
		if rem := s.cooldownUntil - e.clock; rem > 0 {
			st.Cooldown = rem
		}
	}
	return st
}

// EachStatus visits the latest snapshot for every session.
func (e *Engine) EachStatus(fn func(actorID string, st Status)) {
	e.store.ForEach(func(id string, s *Session) {
		fn(id, s.status)
	})
}
