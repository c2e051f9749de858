// Package world wraps the Chipmunk space consumed by the grapple engine:
// actor bodies, tagged surfaces, attachment anchors, velocity drivers, and
// the volumetric sweep-cast used for target acquisition.
package world

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/grapple-server/common"
)

// World owns the Chipmunk space and the actors and surfaces living in it.
type World struct {
	space     *cp.Space
	actors    map[string]*Actor
	surfaces  []*Surface
	nextGroup uint
}

func New() *World {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: common.Gravity})

	return &World{
		space:     space,
		actors:    make(map[string]*Actor),
		nextGroup: 1,
	}
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) {
	w.space.Step(dt)
}

// Actor returns the actor registered under id, or nil.
func (w *World) Actor(id string) *Actor {
	return w.actors[id]
}

// SpawnActor creates a dynamic body for an actor. Rotation is fixed the same
// way player bodies are: infinite moment so the capsule never tips over.
func (w *World) SpawnActor(id string, pos cp.Vector, mass, width, height float64) *Actor {
	// Infinite moment keeps the actor body upright, same as player bodies.
	body := w.space.AddBody(cp.NewBody(mass, math.Inf(1)))
	body.SetPosition(pos)

	shape := w.space.AddShape(cp.NewBox(body, width, height, 0))
	shape.SetFriction(0.8)

	group := w.nextGroup
	w.nextGroup++
	shape.SetFilter(cp.NewShapeFilter(group, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))

	a := &Actor{
		ID:     id,
		body:   body,
		shape:  shape,
		group:  group,
		facing: cp.Vector{X: 1, Y: 0},
		alive:  true,
	}
	body.UserData = a
	shape.UserData = a
	w.actors[id] = a
	return a
}

// RemoveActor destroys the actor's body and any constraints still attached
// to it. Safe to call for an unknown id.
func (w *World) RemoveActor(id string) {
	a := w.actors[id]
	if a == nil {
		return
	}
	a.body.EachConstraint(func(c *cp.Constraint) {
		w.space.RemoveConstraint(c)
	})
	w.space.RemoveShape(a.shape)
	w.space.RemoveBody(a.body)
	a.alive = false
	delete(w.actors, id)
}

// AddBoxSurface adds a static box surface centered at pos.
func (w *World) AddBoxSurface(pos cp.Vector, width, height float64, tags ...string) *Surface {
	body := w.space.AddBody(cp.NewStaticBody())
	body.SetPosition(pos)
	shape := w.space.AddShape(cp.NewBox(body, width, height, 0))
	return w.registerSurface(body, shape, tags)
}

// AddKinematicBoxSurface adds a box surface on a kinematic body so the
// geometry can be animated while grapples stay bound to it.
func (w *World) AddKinematicBoxSurface(pos cp.Vector, width, height float64, tags ...string) *Surface {
	body := w.space.AddBody(cp.NewKinematicBody())
	body.SetPosition(pos)
	shape := w.space.AddShape(cp.NewBox(body, width, height, 0))
	return w.registerSurface(body, shape, tags)
}

// AddSegmentSurface adds a thin static segment surface between a and b.
func (w *World) AddSegmentSurface(a, b cp.Vector, radius float64, tags ...string) *Surface {
	body := w.space.AddBody(cp.NewStaticBody())
	shape := w.space.AddShape(cp.NewSegment(body, a, b, radius))
	return w.registerSurface(body, shape, tags)
}

func (w *World) registerSurface(body *cp.Body, shape *cp.Shape, tags []string) *Surface {
	shape.SetFriction(0.9)
	s := &Surface{
		body:  body,
		shape: shape,
		tags:  make(map[string]struct{}, len(tags)),
		alive: true,
	}
	for _, t := range tags {
		s.tags[t] = struct{}{}
	}
	body.UserData = s
	shape.UserData = s
	w.surfaces = append(w.surfaces, s)
	return s
}

// RemoveSurface destroys a surface, detaching any constraints bound to its
// body first so the space never holds a dangling joint. Idempotent.
func (w *World) RemoveSurface(s *Surface) {
	if s == nil || !s.alive {
		return
	}
	s.body.EachConstraint(func(c *cp.Constraint) {
		w.space.RemoveConstraint(c)
	})
	w.space.RemoveShape(s.shape)
	w.space.RemoveBody(s.body)
	s.alive = false

	for i, cur := range w.surfaces {
		if cur == s {
			w.surfaces = append(w.surfaces[:i], w.surfaces[i+1:]...)
			break
		}
	}
}

// Hit is the result of a sweep-cast: exactly one of Surface or Actor is set.
type Hit struct {
	Surface *Surface
	Actor   *Actor
	Point   cp.Vector
}

// SweepCast runs a volumetric segment query of the given radius from origin
// along dir, bounded by maxRange, ignoring the excluded actor's own shapes.
// Returns the nearest hit classified as surface or actor.
func (w *World) SweepCast(origin, dir cp.Vector, radius, maxRange float64, exclude *Actor) (Hit, bool) {
	if dir.LengthSq() == 0 {
		return Hit{}, false
	}
	end := origin.Add(dir.Normalize().Mult(maxRange))

	filter := cp.SHAPE_FILTER_ALL
	if exclude != nil {
		filter = cp.NewShapeFilter(exclude.group, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES)
	}

	info := w.space.SegmentQueryFirst(origin, end, radius, filter)
	if info.Shape == nil {
		return Hit{}, false
	}

	hit := Hit{Point: info.Point}
	switch owner := info.Shape.UserData.(type) {
	case *Surface:
		hit.Surface = owner
	case *Actor:
		hit.Actor = owner
	default:
		return Hit{}, false
	}
	return hit, true
}
