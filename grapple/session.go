// Package grapple is the authoritative per-actor grapple session engine:
// state machine, target validation, dual-mode physics binding, the per-tick
// update loop, momentum transfer, and cooldown scheduling.
package grapple

import "github.com/milk9111/grapple-server/world"

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateAttached
	StateCooldown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAttached:
		return "attached"
	case StateCooldown:
		return "cooldown"
	}
	return "unknown"
}

// Mode selects the physics behavior while attached.
type Mode int

const (
	ModeSwing Mode = iota
	ModeZip
)

func (m Mode) String() string {
	if m == ModeZip {
		return "zip"
	}
	return "swing"
}

// ParseMode maps the wire name to a mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "swing", "Swing":
		return ModeSwing, true
	case "zip", "Zip":
		return ModeZip, true
	}
	return ModeSwing, false
}

// Status is the per-tick outbound state surface consumed by the HUD.
type Status struct {
	State string
	// Mode is set only while attached.
	Mode string
	// Length is the current swing constraint length; HasLength is false in
	// any other state or mode.
	Length    float64
	HasLength bool
	// Cooldown is the remaining cooldown in seconds, 0 outside Cooldown.
	Cooldown float64
}

// Session tracks one actor's grapple. Owned exclusively by the store;
// created on equip, destroyed on unequip or actor removal. All mutation
// happens on the engine's logical thread.
type Session struct {
	actor *world.Actor

	state State
	mode  Mode

	// binding is non-nil exactly while state == StateAttached.
	binding *binding

	// reelDir is -1 (in), 0, or 1 (out); reelHold accumulates seconds of
	// continuous hold for the acceleration ramp.
	reelDir  int
	reelHold float64

	// lastDetach stamps the engine clock at the most recent detach; the
	// cooldown-expiry task re-validates against it.
	lastDetach    float64
	cooldownUntil float64

	status Status
}

func (s *Session) State() State { return s.state }

func (s *Session) Mode() Mode { return s.mode }

func (s *Session) Actor() *world.Actor { return s.actor }

// Status returns the snapshot refreshed by the most recent tick.
func (s *Session) Status() Status { return s.status }

func (s *Session) resetReel() {
	s.reelDir = 0
	s.reelHold = 0
}
