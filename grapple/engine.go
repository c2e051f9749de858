package grapple

import (
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/grapple-server/tuning"
	"github.com/milk9111/grapple-server/world"
)

// TargetFilter is an optional scripted hook consulted after the built-in
// validation passes. Returning false rejects the target.
type TargetFilter interface {
	Allow(tags []string, mode string, distance float64) (bool, error)
}

// Engine owns every grapple session and runs them against the world. All
// methods must be called from one logical thread; the transport layer
// serializes inbound actions against the tick pass.
type Engine struct {
	world  *world.World
	cfg    tuning.Config
	store  *Store
	log    *zap.SugaredLogger
	filter TargetFilter

	// clock is the accumulated simulation time in seconds. Monotonic within
	// an engine: only Step advances it.
	clock    float64
	expiries []cooldownExpiry
}

func NewEngine(w *world.World, cfg tuning.Config, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{
		world: w,
		cfg:   cfg,
		store: NewStore(),
		log:   log,
	}
}

// SetConfig swaps the tuning constants; safe between ticks (hot reload).
func (e *Engine) SetConfig(cfg tuning.Config) { e.cfg = cfg }

// SetTargetFilter installs the scripted target filter.
func (e *Engine) SetTargetFilter(f TargetFilter) { e.filter = f }

// Session returns the session for an actor, or nil.
func (e *Engine) Session(actorID string) *Session { return e.store.Get(actorID) }

// Status returns the latest per-tick snapshot for an actor.
func (e *Engine) Status(actorID string) (Status, bool) {
	s := e.store.Get(actorID)
	if s == nil {
		return Status{}, false
	}
	return s.status, true
}

// Equip creates an idle session for an actor. No-op if one already exists.
func (e *Engine) Equip(a *world.Actor) {
	if a == nil {
		return
	}
	s := &Session{actor: a, state: StateIdle}
	s.status = e.snapshot(s)
	if e.store.Insert(a.ID, s) {
		e.log.Debugw("grapple equipped", "actor", a.ID)
	}
}

// Unequip tears down and removes an actor's session. No-op if absent.
// Call before removing the actor from the world so live constraints are
// detached in order.
func (e *Engine) Unequip(actorID string) {
	s := e.store.Get(actorID)
	if s == nil {
		return
	}
	s.binding.release(e.world)
	s.binding = nil
	e.store.Remove(actorID)
	e.log.Debugw("grapple unequipped", "actor", actorID)
}

// Fire validates a claimed target and, on acceptance, attaches the session.
// Every rejection is a silent no-op toward the caller; the reason is logged
// for telemetry only.
func (e *Engine) Fire(actorID string, origin, dir cp.Vector, mode Mode) {
	s := e.store.Get(actorID)
	if s == nil || s.state != StateIdle {
		e.rejectFire(actorID, "not_idle")
		return
	}
	if dir.LengthSq() == 0 {
		e.rejectFire(actorID, "zero_direction")
		return
	}

	// Anti-spoof bound: the claimed origin must plausibly come from the
	// actor's own body, independent of anything the client supplies.
	if origin.Distance(s.actor.Position()) > e.cfg.OriginTolerance {
		e.rejectFire(actorID, "origin_out_of_tolerance")
		return
	}

	hit, ok := e.world.SweepCast(origin, dir, e.cfg.SweepRadius, e.cfg.MaxRange, s.actor)
	if !ok {
		e.rejectFire(actorID, "no_hit")
		return
	}
	if hit.Actor != nil {
		e.rejectFire(actorID, "hit_actor")
		return
	}
	if hit.Surface.HasTag(e.cfg.ExclusionTag) {
		e.rejectFire(actorID, "excluded_surface")
		return
	}

	if e.filter != nil {
		allowed, err := e.filter.Allow(hit.Surface.Tags(), mode.String(), hit.Point.Distance(s.actor.Position()))
		if err != nil {
			e.log.Warnw("target filter error, rejecting", "actor", actorID, "error", err)
			return
		}
		if !allowed {
			e.rejectFire(actorID, "filtered")
			return
		}
	}

	e.bind(s, mode, hit.Surface, hit.Point, dir)
	e.log.Debugw("grapple attached", "actor", actorID, "mode", mode.String())
}

func (e *Engine) rejectFire(actorID, reason string) {
	e.log.Debugw("fire rejected", "actor", actorID, "reason", reason)
}

// Detach is the voluntary release: applies momentum, then enters cooldown.
// Silent no-op unless the session is attached.
func (e *Engine) Detach(actorID string) {
	s := e.store.Get(actorID)
	if s == nil || s.state != StateAttached {
		return
	}
	e.applyMomentum(s)
	e.detach(s)
	e.log.Debugw("grapple detached", "actor", actorID, "voluntary", true)
}

// forceDetach handles safety breaks, anchor invalidation, and zip arrival:
// same teardown, no momentum.
func (e *Engine) forceDetach(s *Session, reason string) {
	if s == nil || s.state != StateAttached {
		return
	}
	e.detach(s)
	e.log.Debugw("grapple detached", "actor", s.actor.ID, "voluntary", false, "reason", reason)
}

func (e *Engine) detach(s *Session) {
	s.binding.release(e.world)
	s.binding = nil
	s.resetReel()
	s.state = StateCooldown
	s.lastDetach = e.clock
	s.cooldownUntil = e.clock + e.cfg.CooldownSeconds
	e.scheduleCooldownExpiry(s.actor.ID, s.lastDetach, s.cooldownUntil)
}

// Reel sets the swing reel direction: -1 pulls in, 1 lets out. Silent no-op
// outside an attached swing session.
func (e *Engine) Reel(actorID string, dir int) {
	s := e.store.Get(actorID)
	if s == nil || s.state != StateAttached || s.mode != ModeSwing {
		return
	}
	if dir > 1 || dir < -1 || dir == 0 {
		return
	}
	if s.reelDir != dir {
		s.reelHold = 0
	}
	s.reelDir = dir
}

// StopReel clears the reel input and resets the hold accumulator.
func (e *Engine) StopReel(actorID string) {
	s := e.store.Get(actorID)
	if s == nil {
		return
	}
	s.resetReel()
}
