package physics

import (
	"math"
	"sort"

	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/merge-fruit/internal/core"
)

// Collision types assigned to shapes; begin handlers are installed for every
// pair that can actually touch (static bodies never collide with each other).
const (
	dynamicCollision cp.CollisionType = 1
	staticCollision  cp.CollisionType = 2
)

// entry is the adapter's record for one body.
// Non-colliding bodies have no cp body and keep their position here.
type entry struct {
	spec  BodySpec
	body  *cp.Body
	shape *cp.Shape
	pos   core.Vec2
}

// Space is a World backed by a cp.Space.
// It is not safe for concurrent use; one game session owns one Space.
type Space struct {
	gravity float64
	space   *cp.Space
	entries map[Handle]*entry
	next    Handle
	pending []Pair
}

var _ World = (*Space)(nil)

// NewSpace creates an empty world with downward gravity in units/s².
func NewSpace(gravity float64) *Space {
	s := &Space{gravity: gravity}
	s.reset()
	return s
}

// reset replaces the cp space with a fresh one.
func (s *Space) reset() {
	s.space = cp.NewSpace()
	s.space.SetGravity(cp.Vector{X: 0, Y: s.gravity})
	s.entries = make(map[Handle]*entry)
	s.pending = nil

	begin := func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		a, b := arb.Bodies()
		ha, okA := a.UserData.(Handle)
		hb, okB := b.UserData.(Handle)
		if okA && okB {
			s.pending = append(s.pending, Pair{A: ha, B: hb})
		}
		return true
	}

	s.space.NewCollisionHandler(dynamicCollision, dynamicCollision).BeginFunc = begin
	s.space.NewCollisionHandler(dynamicCollision, staticCollision).BeginFunc = begin
}

// Add creates a body from spec and returns its handle.
func (s *Space) Add(spec BodySpec) Handle {
	s.next++
	h := s.next

	e := &entry{spec: spec, pos: spec.Position}
	if spec.Collides {
		e.body, e.shape = s.build(spec, h)
	}
	s.entries[h] = e
	return h
}

// build creates and registers the cp body and shape for spec.
func (s *Space) build(spec BodySpec, h Handle) (*cp.Body, *cp.Shape) {
	var body *cp.Body
	if spec.Static {
		body = cp.NewStaticBody()
	} else {
		mass := spec.Material.Density * area(spec)
		if mass <= 0 {
			mass = 1
		}
		body = cp.NewBody(mass, moment(spec, mass))
	}
	body.SetPosition(toCP(spec.Position))
	body.SetAngle(spec.Angle)
	body.UserData = h

	var shape *cp.Shape
	switch spec.Shape {
	case ShapeBox:
		shape = cp.NewBox(body, spec.Width, spec.Height, 0)
	default:
		shape = cp.NewCircle(body, spec.Radius, cp.Vector{})
	}
	shape.SetFriction(spec.Material.Friction)
	shape.SetElasticity(spec.Material.Restitution)
	if spec.Static {
		shape.SetCollisionType(staticCollision)
	} else {
		shape.SetCollisionType(dynamicCollision)
	}

	s.space.AddBody(body)
	s.space.AddShape(shape)
	return body, shape
}

// Remove deletes a body. Unknown handles are ignored.
func (s *Space) Remove(h Handle) {
	e, ok := s.entries[h]
	if !ok {
		return
	}
	delete(s.entries, h)

	if e.body != nil {
		s.space.RemoveShape(e.shape)
		s.space.RemoveBody(e.body)
	}
}

// Contains reports whether h refers to a live body.
func (s *Space) Contains(h Handle) bool {
	_, ok := s.entries[h]
	return ok
}

// Position returns the current center of a body.
func (s *Space) Position(h Handle) (core.Vec2, bool) {
	e, ok := s.entries[h]
	if !ok {
		return core.Vec2{}, false
	}
	return e.position(), true
}

// SetPosition moves a body. Colliding static bodies are expected to be
// placed once at creation; moving them does not reindex their shapes.
func (s *Space) SetPosition(h Handle, p core.Vec2) {
	e, ok := s.entries[h]
	if !ok {
		return
	}
	if e.body != nil {
		e.body.SetPosition(toCP(p))
		return
	}
	e.pos = p
}

// Bodies returns every body ordered by handle.
func (s *Space) Bodies() []Body {
	result := make([]Body, 0, len(s.entries))
	for _, h := range s.handles() {
		e := s.entries[h]
		result = append(result, Body{
			Handle:   h,
			Spec:     e.spec,
			Position: e.position(),
			Angle:    e.angle(),
		})
	}
	return result
}

// Len returns the number of bodies, colliding or not.
func (s *Space) Len() int {
	return len(s.entries)
}

// Step advances the simulation and returns the collision-start pairs.
func (s *Space) Step(dt float64) []Pair {
	s.pending = nil
	s.space.Step(dt)

	pairs := s.pending
	s.pending = nil

	// A pair can be reported against a body removed earlier in the same
	// step only through stale arbiters; drop anything we no longer track.
	valid := pairs[:0]
	for _, p := range pairs {
		if s.Contains(p.A) && s.Contains(p.B) {
			valid = append(valid, p)
		}
	}
	return valid
}

// Clear removes every body and starts a new cp space.
func (s *Space) Clear() {
	s.reset()
}

// handles returns live handles in ascending order.
func (s *Space) handles() []Handle {
	hs := make([]Handle, 0, len(s.entries))
	for h := range s.entries {
		hs = append(hs, h)
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	return hs
}

func (e *entry) position() core.Vec2 {
	if e.body != nil {
		return fromCP(e.body.Position())
	}
	return e.pos
}

func (e *entry) angle() float64 {
	if e.body != nil {
		return e.body.Angle()
	}
	return e.spec.Angle
}

func area(spec BodySpec) float64 {
	if spec.Shape == ShapeBox {
		return spec.Width * spec.Height
	}
	return math.Pi * spec.Radius * spec.Radius
}

func moment(spec BodySpec, mass float64) float64 {
	if spec.Shape == ShapeBox {
		return cp.MomentForBox(mass, spec.Width, spec.Height)
	}
	return cp.MomentForCircle(mass, 0, spec.Radius, cp.Vector{})
}

func toCP(v core.Vec2) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func fromCP(v cp.Vector) core.Vec2 {
	return core.Vec2{X: v.X, Y: v.Y}
}
