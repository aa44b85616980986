package fruit

import (
	"math"

	"github.com/vovakirdan/merge-fruit/internal/config"
	"github.com/vovakirdan/merge-fruit/internal/core"
	"github.com/vovakirdan/merge-fruit/internal/physics"
)

// role tells the merge resolver and renderer what a body is.
type role int

const (
	roleFruit role = iota
	roleWall
	roleOutside
	rolePreview
	rolePop
)

// bodyInfo is the game's metadata for one physics body.
type bodyInfo struct {
	role   role
	tier   int
	popped bool
}

func (b *bodyInfo) static() bool {
	return b.role == roleWall || b.role == roleOutside
}

// field is the container geometry in world units.
type field struct {
	left, right float64 // Inner edges of the walls; preview x is clamped to this span
	wall        float64
	outside     float64
	height      float64
	floorTop    float64
	preview     float64 // Y of the preview ball and of new drops
}

func newField(c config.ContainerConfig) field {
	left := c.OutsideWidth + c.WallThickness
	return field{
		left:     left,
		right:    left + c.Width,
		wall:     c.WallThickness,
		outside:  c.OutsideWidth,
		height:   c.Height,
		floorTop: c.Height - c.WallThickness,
		preview:  c.PreviewHeight,
	}
}

// width is the total world width: outside zones, walls and the container.
func (f field) width() float64 {
	return f.right + f.wall + f.outside
}

// center returns the x of the container's middle.
func (f field) center() float64 {
	return (f.left + f.right) / 2
}

// clampDrop keeps a drop x inside the container span.
func (f field) clampDrop(x float64) float64 {
	return core.ClampF(x, f.left, f.right)
}

// clampInside moves the center of a fruit of radius r so the fruit lies
// between the walls and above the floor.
func (f field) clampInside(p core.Vec2, r float64) core.Vec2 {
	if f.right-f.left > 2*r {
		p.X = core.ClampF(p.X, f.left+r, f.right-r)
	} else {
		p.X = f.center()
	}
	if p.Y > f.floorTop-r {
		p.Y = f.floorTop - r
	}
	return p
}

// staticBody is a wall, the floor or an outside zone.
type staticBody struct {
	role role
	spec physics.BodySpec
}

// statics returns the walls, floor and outside zones.
func (f field) statics() []staticBody {
	box := func(x, y, w, h float64) physics.BodySpec {
		return physics.BodySpec{
			Shape:    physics.ShapeBox,
			Width:    w,
			Height:   h,
			Position: core.V(x, y),
			Static:   true,
			Collides: true,
		}
	}
	wallH := f.height * 2 / 3
	wallY := f.height * 2 / 3
	outsideH := f.height / 2
	outsideY := f.height * 4 / 5

	return []staticBody{
		{roleWall, box(f.left-f.wall/2, wallY, f.wall, wallH)},
		{roleWall, box(f.right+f.wall/2, wallY, f.wall, wallH)},
		{roleOutside, box(f.left-f.wall-f.outside/2, outsideY, f.outside, outsideH)},
		{roleOutside, box(f.right+f.wall+f.outside/2, outsideY, f.outside, outsideH)},
		{roleWall, box(f.center(), f.height-f.wall/2, f.right-f.left+2*f.wall, f.wall)},
	}
}

// material returns the surface shared by every body.
func (g *Game) material() physics.Material {
	return physics.Material{
		Friction:    g.cfg.Physics.Friction,
		Restitution: g.cfg.Physics.Restitution,
		Density:     g.cfg.Physics.Density,
	}
}

// resetWorld empties the world and the side table and rebuilds the statics.
func (g *Game) resetWorld() {
	g.world.Clear()
	g.bodies = make(map[physics.Handle]*bodyInfo)
	g.preview = 0

	for _, s := range g.field.statics() {
		s.spec.Material = g.material()
		h := g.world.Add(s.spec)
		g.bodies[h] = &bodyInfo{role: s.role}
	}
}

// addFruit inserts a colliding fruit of the given tier.
func (g *Game) addFruit(tier int, pos core.Vec2) physics.Handle {
	h := g.world.Add(physics.BodySpec{
		Shape:    physics.ShapeCircle,
		Radius:   g.cfg.Tiers[tier].Radius,
		Position: pos,
		Material: g.material(),
		Collides: true,
		Tag:      tier,
	})
	g.bodies[h] = &bodyInfo{role: roleFruit, tier: tier}
	return h
}

// addPreview creates the non-colliding preview ball for the current tier.
func (g *Game) addPreview() {
	g.removePreview()
	h := g.world.Add(physics.BodySpec{
		Shape:    physics.ShapeCircle,
		Radius:   g.cfg.Tiers[g.current].Radius,
		Position: core.V(g.previewX, g.field.preview),
		Static:   true,
		Tag:      g.current,
	})
	g.bodies[h] = &bodyInfo{role: rolePreview, tier: g.current}
	g.preview = h
}

func (g *Game) removePreview() {
	if g.preview == 0 {
		return
	}
	g.world.Remove(g.preview)
	delete(g.bodies, g.preview)
	g.preview = 0
}

// addPop shows a short merge flash the size of the consumed fruit and
// schedules its removal.
func (g *Game) addPop(tier int, pos core.Vec2) {
	h := g.world.Add(physics.BodySpec{
		Shape:    physics.ShapeCircle,
		Radius:   g.cfg.Tiers[tier].Radius,
		Position: pos,
		Angle:    g.rng.Float64() * 2 * math.Pi,
		Static:   true,
		Tag:      tier,
	})
	g.bodies[h] = &bodyInfo{role: rolePop, tier: tier}

	g.sched.After(g.rt.TicksFor(g.cfg.Timing.PopLifetimeMS), g.generation, func() {
		g.removeBody(h)
	})
}

// removeBody deletes a body from the world and the side table.
func (g *Game) removeBody(h physics.Handle) {
	g.world.Remove(h)
	delete(g.bodies, h)
}
