package fruit

import (
	"github.com/vovakirdan/merge-fruit/internal/config"
	"github.com/vovakirdan/merge-fruit/internal/core"
	"github.com/vovakirdan/merge-fruit/internal/physics"
)

// resolve applies one step's collision-start pairs in delivered order.
// It returns the number of merges and whether an outside contact ended the game.
func (g *Game) resolve(pairs []physics.Pair) (merges int, lost bool) {
	defer g.sweepPopped()

	for _, p := range pairs {
		a, okA := g.bodies[p.A]
		b, okB := g.bodies[p.B]

		if (okA && a.role == roleOutside) || (okB && b.role == roleOutside) {
			g.lose()
			return merges, true
		}
		if !okA || !okB || a.static() || b.static() {
			continue
		}
		if a.role != roleFruit || b.role != roleFruit {
			continue
		}
		if a.tier != b.tier {
			continue
		}
		if a.popped || b.popped {
			continue
		}

		result, ok := g.mergeResult(a.tier)
		if !ok {
			continue
		}
		g.merge(p, a.tier, result)
		merges++
	}
	return merges, false
}

// mergeResult returns the tier two fruits of tier turn into.
func (g *Game) mergeResult(tier int) (int, bool) {
	n := len(g.cfg.Tiers)
	if tier == n-1 && g.cfg.Merge.Policy == config.MergeCap {
		return 0, false
	}
	return (tier + 1) % n, true
}

// merge consumes the two fruits of p and inserts the result fruit between them.
func (g *Game) merge(p physics.Pair, tier, result int) {
	pa, _ := g.world.Position(p.A)
	pb, _ := g.world.Position(p.B)
	mid := core.Midpoint(pa, pb)
	pos := g.field.clampInside(mid, g.cfg.Tiers[result].Radius)

	// Popped fruits leave the world now but stay in the side table until
	// the batch is done, so later pairs naming them are recognized.
	g.bodies[p.A].popped = true
	g.bodies[p.B].popped = true
	g.world.Remove(p.A)
	g.world.Remove(p.B)

	g.addFruit(result, pos)
	g.tracker.Record(tier)
	g.addPop(tier, pos)

	score, changed := g.tracker.Recompute()
	g.log.Debug("merge", "tier", g.cfg.Tiers[tier].Name, "into", g.cfg.Tiers[result].Name, "score", score, "changed", changed)
}

// sweepPopped drops side table entries of fruits consumed in this batch.
func (g *Game) sweepPopped() {
	for h, b := range g.bodies {
		if b.popped {
			delete(g.bodies, h)
		}
	}
}
