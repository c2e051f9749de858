package world

import "github.com/jakecoffman/cp"

// Surface is a piece of world geometry a grapple can bind to. Surfaces carry
// string tags set by the arena author; the engine uses one of them as the
// grapple-exclusion marker.
type Surface struct {
	body  *cp.Body
	shape *cp.Shape
	tags  map[string]struct{}
	alive bool
}

func (s *Surface) Body() *cp.Body { return s.body }

func (s *Surface) Alive() bool { return s != nil && s.alive }

func (s *Surface) HasTag(tag string) bool {
	_, ok := s.tags[tag]
	return ok
}

// Tags returns the surface's tags as a slice, for scripted filters.
func (s *Surface) Tags() []string {
	out := make([]string, 0, len(s.tags))
	for t := range s.tags {
		out = append(out, t)
	}
	return out
}

// SetVelocity sets the velocity of a kinematic surface body. No effect on
// static surfaces.
func (s *Surface) SetVelocity(v cp.Vector) {
	if s.body.GetType() != cp.BODY_KINEMATIC {
		return
	}
	s.body.SetVelocityVector(v)
}
