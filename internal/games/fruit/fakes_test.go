package fruit

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/vovakirdan/merge-fruit/internal/config"
	"github.com/vovakirdan/merge-fruit/internal/core"
	"github.com/vovakirdan/merge-fruit/internal/physics"
)

// fakeWorld is a scripted physics world: bodies never move on their own and
// each Step returns the next queued batch of pairs.
type fakeWorld struct {
	bodies  map[physics.Handle]*physics.Body
	next    physics.Handle
	batches [][]physics.Pair
	steps   int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{bodies: make(map[physics.Handle]*physics.Body)}
}

func (w *fakeWorld) Add(spec physics.BodySpec) physics.Handle {
	w.next++
	w.bodies[w.next] = &physics.Body{Handle: w.next, Spec: spec, Position: spec.Position, Angle: spec.Angle}
	return w.next
}

func (w *fakeWorld) Remove(h physics.Handle) { delete(w.bodies, h) }

func (w *fakeWorld) Contains(h physics.Handle) bool {
	_, ok := w.bodies[h]
	return ok
}

func (w *fakeWorld) Position(h physics.Handle) (core.Vec2, bool) {
	b, ok := w.bodies[h]
	if !ok {
		return core.Vec2{}, false
	}
	return b.Position, true
}

func (w *fakeWorld) SetPosition(h physics.Handle, p core.Vec2) {
	if b, ok := w.bodies[h]; ok {
		b.Position = p
	}
}

func (w *fakeWorld) Bodies() []physics.Body {
	result := make([]physics.Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Handle < result[j].Handle })
	return result
}

func (w *fakeWorld) Len() int { return len(w.bodies) }

func (w *fakeWorld) Step(float64) []physics.Pair {
	w.steps++
	if len(w.batches) == 0 {
		return nil
	}
	batch := w.batches[0]
	w.batches = w.batches[1:]
	return batch
}

func (w *fakeWorld) Clear() {
	w.bodies = make(map[physics.Handle]*physics.Body)
	w.batches = nil
}

func (w *fakeWorld) Snapshot() ([]byte, error) {
	var specs []physics.BodySpec
	for _, b := range w.Bodies() {
		if !b.Spec.Collides || b.Spec.Static {
			continue
		}
		spec := b.Spec
		spec.Position = b.Position
		specs = append(specs, spec)
	}
	return json.Marshal(specs)
}

func (w *fakeWorld) Restore(data []byte) ([]physics.Restored, error) {
	var specs []physics.BodySpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("%w: %v", physics.ErrBadSnapshot, err)
	}
	result := make([]physics.Restored, 0, len(specs))
	for _, s := range specs {
		result = append(result, physics.Restored{Handle: w.Add(s), Spec: s})
	}
	return result, nil
}

// queue schedules a batch of pairs for the next Step.
func (w *fakeWorld) queue(pairs ...physics.Pair) {
	w.batches = append(w.batches, pairs)
}

// mapKV is an in-memory core.KV that can be told to fail.
type mapKV struct {
	data map[string]string
	fail error
}

func newMapKV() *mapKV {
	return &mapKV{data: make(map[string]string)}
}

func (kv *mapKV) Get(key string) (string, bool, error) {
	if kv.fail != nil {
		return "", false, kv.fail
	}
	v, ok := kv.data[key]
	return v, ok, nil
}

func (kv *mapKV) Set(key, value string) error {
	if kv.fail != nil {
		return kv.fail
	}
	kv.data[key] = value
	return nil
}

func (kv *mapKV) Remove(key string) error {
	if kv.fail != nil {
		return kv.fail
	}
	delete(kv.data, key)
	return nil
}

var errStoreDown = errors.New("store down")

// testConfig has three tiers worth 1, 3 and 6 points and always drops tier 0.
func testConfig(policy config.MergePolicy) config.FruitConfig {
	cfg := config.DefaultFruitConfig()
	cfg.Tiers = []config.TierConfig{
		{Name: "small", Radius: 10, ScoreValue: 1, Glyph: "s", Color: "red"},
		{Name: "medium", Radius: 20, ScoreValue: 3, Glyph: "m", Color: "green"},
		{Name: "large", Radius: 30, ScoreValue: 6, Glyph: "L", Color: "blue"},
	}
	cfg.Spawn.Tiers = 1
	cfg.Physics.Substeps = 1
	cfg.Merge.Policy = policy
	return cfg
}

var testRuntime = core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1}

func newTestGame(t *testing.T, policy config.MergePolicy) (*Game, *fakeWorld, *mapKV) {
	t.Helper()

	fw := newFakeWorld()
	kv := newMapKV()

	g := New("fruit")
	g.newWorld = func(float64) physics.World { return fw }
	if err := g.UseConfig(testConfig(policy)); err != nil {
		t.Fatalf("UseConfig failed: %v", err)
	}
	g.AttachStore(kv)
	g.Reset(testRuntime)
	return g, fw, kv
}

// press steps the game once with the given actions.
func press(g *Game, actions ...core.Action) core.StepResult {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return g.Step(in)
}

// idle steps the game n times without input.
func idle(g *Game, n int) {
	for i := 0; i < n; i++ {
		g.Step(core.NewInputFrame())
	}
}

// startPlaying leaves the menu and hands back a game in READY.
func startPlaying(t *testing.T, g *Game) {
	t.Helper()
	press(g, core.ActionDrop)
	if g.phase != PhaseReady {
		t.Fatalf("Expected READY after start, got %s", g.phase)
	}
}

// fruits returns the handles of live fruits of a tier, ordered.
func fruits(g *Game, tier int) []physics.Handle {
	var hs []physics.Handle
	for h, b := range g.bodies {
		if b.role == roleFruit && b.tier == tier {
			hs = append(hs, h)
		}
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	return hs
}

// countRole returns how many bodies have the given role.
func countRole(g *Game, r role) int {
	n := 0
	for _, b := range g.bodies {
		if b.role == r {
			n++
		}
	}
	return n
}

// handleOf returns a body handle with the given role.
func handleOf(g *Game, r role) physics.Handle {
	for h, b := range g.bodies {
		if b.role == r {
			return h
		}
	}
	return 0
}
