// Package fruit implements a "merge the fruit" physics game.
// Fruits are dropped into a walled container; two fruits of the same tier
// that touch merge into one fruit of the next tier and score points. A fruit
// that touches an outside zone beside the container ends the game.
package fruit

import (
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/merge-fruit/internal/config"
	"github.com/vovakirdan/merge-fruit/internal/core"
	"github.com/vovakirdan/merge-fruit/internal/physics"
	"github.com/vovakirdan/merge-fruit/internal/registry"
)

// Package-level config path and merge policy override, set from the CLI
// before games are created.
var (
	configPath  string
	mergePolicy config.MergePolicy
)

// SetConfigPath sets the config file used by games created afterwards.
func SetConfigPath(path string) {
	configPath = path
}

// SetMergePolicy overrides the top-tier merge rule of every variant.
// Empty restores the config file and variant rules.
func SetMergePolicy(p config.MergePolicy) {
	mergePolicy = p
}

// Game is one merge-fruit session.
type Game struct {
	variant config.Variant
	cfg     config.FruitConfig
	pinned  bool // cfg was supplied by UseConfig and is not reloaded
	rt      core.RuntimeConfig
	log     *log.Logger
	kv      core.KV

	newWorld func(gravity float64) physics.World
	world    physics.World
	bodies   map[physics.Handle]*bodyInfo
	field    field
	tracker  *Tracker
	sched    scheduler
	rng      *rand.Rand

	phase      Phase
	generation uint64 // Bumped whenever a session starts or ends
	tick       uint64

	preview  physics.Handle // Zero when no preview ball is in the world
	previewX float64
	current  int // Tier of the next drop, shown by the preview ball
	next     int // Tier queued after current, shown in the HUD

	best    int
	newBest bool
	saved   bool // A saved session exists; the menu offers "Continue"
	hint    bool // Controls hint is visible
	prompt  bool // Save prompt is open; the simulation is halted

	view view
}

// New creates a game for the given variant. Unknown variants fall back to "fruit".
func New(variantID string) *Game {
	v, ok := config.GetVariant(variantID)
	if !ok {
		v, _ = config.GetVariant("fruit")
	}
	return &Game{
		variant: v,
		log:     log.New(io.Discard),
		newWorld: func(gravity float64) physics.World {
			return physics.NewSpace(gravity)
		},
	}
}

func init() {
	for _, v := range config.Variants() {
		id := v.ID
		registry.Register(id, func() registry.Game {
			return New(id)
		})
	}
}

// ID returns the variant identifier.
func (g *Game) ID() string {
	return g.variant.ID
}

// Title returns the variant display name.
func (g *Game) Title() string {
	return g.variant.Title
}

// SetLogger sets the logger for game events.
func (g *Game) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	g.log = l.WithPrefix(g.variant.ID)
}

// AttachStore sets the storage for saved sessions and the best score.
// Passing nil disables persistence.
func (g *Game) AttachStore(kv core.KV) {
	g.kv = kv
	g.best = ReadBest(kv)
	g.saved = HasSession(kv)
}

// UseConfig pins the game configuration instead of loading it from disk.
// The variant's palette and merge policy are not applied on top.
func (g *Game) UseConfig(cfg config.FruitConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg
	g.pinned = true
	return nil
}

// Reset prepares the game and shows the start menu.
func (g *Game) Reset(rt core.RuntimeConfig) {
	g.rt = rt
	if !g.pinned {
		g.cfg = g.loadConfig()
	}
	g.rng = rand.New(rand.NewSource(rt.Seed))
	g.field = newField(g.cfg.Container)

	values := make([]int, len(g.cfg.Tiers))
	for i, t := range g.cfg.Tiers {
		values[i] = t.ScoreValue
	}
	g.tracker = NewTracker(values)

	g.world = g.newWorld(g.cfg.Physics.Gravity)
	g.resetWorld()
	g.sched.Reset()

	g.generation++
	g.tick = 0
	g.phase = PhaseMenu
	g.prompt = false
	g.hint = false
	g.newBest = false
	g.previewX = g.field.center()
	g.best = ReadBest(g.kv)
	g.saved = HasSession(g.kv)
	g.view = computeView(g.field, rt.ScreenW, rt.ScreenH)
}

// loadConfig reads the config file and applies the variant preset.
// Errors are logged and the built-in defaults are used.
func (g *Game) loadConfig() config.FruitConfig {
	cfg, err := config.ResolveFruit(configPath, g.variant, mergePolicy)
	if err != nil {
		g.log.Warn("using default config", "err", err)
		cfg = config.DefaultFruitConfig()
		config.ApplyVariant(&cfg, g.variant)
		config.ApplyMergePolicy(&cfg, mergePolicy)
	}
	return cfg
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	switch {
	case g.prompt:
		g.handlePrompt(in)
	case g.phase == PhaseMenu:
		if in.Has(core.ActionDrop) {
			g.start()
		}
	case g.phase == PhaseLose:
		switch {
		case in.Has(core.ActionRestart):
			g.restart()
		case in.Has(core.ActionBack):
			g.toMenu()
		}
	default:
		g.handlePlay(in)
	}

	if g.simulating() {
		g.stepWorld()
	}
	if !g.prompt {
		g.sched.Advance(g.generation)
	}

	return core.StepResult{State: g.State()}
}

// simulating reports whether the physics world advances this tick.
func (g *Game) simulating() bool {
	return !g.prompt && (g.phase == PhaseReady || g.phase == PhaseDrop)
}

// stepWorld runs the physics substeps of one tick and resolves their collisions.
func (g *Game) stepWorld() {
	rate := g.rt.TickRate
	if rate <= 0 {
		rate = 60
	}
	substeps := max(1, g.cfg.Physics.Substeps)
	dt := 1.0 / float64(rate) / float64(substeps)

	for i := 0; i < substeps; i++ {
		pairs := g.world.Step(dt)
		if _, lost := g.resolve(pairs); lost {
			return
		}
	}
}

// handlePlay applies input while READY or DROP.
func (g *Game) handlePlay(in core.InputFrame) {
	if in.Has(core.ActionBack) {
		g.prompt = true
		g.hint = false
		return
	}

	if in.Pointer.Active() {
		g.hint = false
		if g.view.valid {
			g.moveTo(g.view.worldX(in.Pointer.X))
		}
	}

	for _, a := range in.Order {
		switch a {
		case core.ActionLeft:
			g.hint = false
			g.moveBy(-g.cfg.Controls.StepSmall)
		case core.ActionRight:
			g.hint = false
			g.moveBy(g.cfg.Controls.StepSmall)
		case core.ActionLeftFar:
			g.hint = false
			g.moveBy(-g.cfg.Controls.StepBig)
		case core.ActionRightFar:
			g.hint = false
			g.moveBy(g.cfg.Controls.StepBig)
		case core.ActionDrop:
			g.hint = false
			g.drop()
		}
	}

	if in.Pointer.Released {
		g.drop()
	}
}

// handlePrompt answers the save prompt.
func (g *Game) handlePrompt(in core.InputFrame) {
	switch {
	case in.Has(core.ActionYes):
		if err := g.Save(); err != nil {
			g.log.Error("save failed", "err", err)
		}
		g.toMenu()
	case in.Has(core.ActionNo):
		g.toMenu()
	case in.Has(core.ActionBack):
		g.prompt = false
	}
}

// moveTo positions the preview ball. Only READY with a preview ball moves it.
func (g *Game) moveTo(x float64) {
	if g.phase != PhaseReady || g.preview == 0 {
		return
	}
	g.previewX = g.field.clampDrop(x)
	g.world.SetPosition(g.preview, core.V(g.previewX, g.field.preview))
}

func (g *Game) moveBy(dx float64) {
	g.moveTo(g.previewX + dx)
}

// drop commits the current fruit at the preview position.
func (g *Game) drop() {
	if g.phase != PhaseReady {
		return
	}

	g.removePreview()
	g.addFruit(g.current, core.V(g.previewX, g.field.preview))
	g.current = g.next
	g.next = g.randomTier()
	g.setPhase(PhaseDrop)

	g.sched.After(g.rt.TicksFor(g.cfg.Timing.DropCooldownMS), g.generation, func() {
		if g.phase != PhaseDrop {
			return
		}
		g.setPhase(PhaseReady)
		g.addPreview()
	})
}

// lose ends the game. Only READY and DROP can lose.
func (g *Game) lose() {
	if g.phase != PhaseReady && g.phase != PhaseDrop {
		return
	}
	g.setPhase(PhaseLose)
	g.removePreview()

	score := g.tracker.Score()
	g.log.Info("game over", "score", score)

	if g.kv == nil {
		return
	}
	written, err := RecordBest(g.kv, score)
	if err != nil {
		g.log.Error("cannot record best score", "err", err)
		return
	}
	if written {
		g.best = score
		g.newBest = true
		g.log.Info("new best", "score", score)
	}
}

// start leaves the menu, continuing a saved session when there is one.
func (g *Game) start() {
	if g.saved {
		err := g.Load()
		if err == nil {
			return
		}
		if !errors.Is(err, ErrNoSession) {
			g.log.Warn("discarded saved session", "err", err)
		}
	}
	g.begin(true)
}

// restart starts a fresh game from LOSE without the hint.
func (g *Game) restart() {
	g.begin(false)
}

// begin starts a fresh game session in READY.
func (g *Game) begin(showHint bool) {
	g.newSession()
	g.current = g.randomTier()
	g.next = g.randomTier()
	g.setPhase(PhaseReady)
	g.addPreview()
	g.hint = showHint
}

// newSession clears everything a session owns.
func (g *Game) newSession() {
	g.generation++
	g.sched.Reset()
	g.resetWorld()
	g.tracker.Reset()
	g.prompt = false
	g.newBest = false
	g.previewX = g.field.center()
}

// toMenu ends the current session and shows the start menu.
func (g *Game) toMenu() {
	if g.phase != PhaseMenu && !g.setPhase(PhaseMenu) {
		return
	}
	g.generation++
	g.sched.Reset()
	g.resetWorld()
	g.tracker.Reset()
	g.prompt = false
	g.hint = false
	g.saved = HasSession(g.kv)
}

// randomTier draws a droppable tier.
func (g *Game) randomTier() int {
	return g.rng.Intn(g.cfg.Spawn.Tiers)
}

// Save stores the current session. The simulation is halted first.
func (g *Game) Save() error {
	if g.kv == nil {
		return ErrNoStore
	}
	g.prompt = true

	snap, err := g.world.Snapshot()
	if err != nil {
		return fmt.Errorf("fruit: cannot snapshot world: %w", err)
	}
	err = WriteSession(g.kv, SavedSession{
		Snapshot: snap,
		Score:    g.tracker.Score(),
		Merged:   g.tracker.Counts(),
	})
	if err != nil {
		return err
	}
	g.saved = true
	g.log.Info("session saved", "score", g.tracker.Score())
	return nil
}

// Load replaces the current session with the saved one and enters READY.
// The saved session is removed whether or not loading succeeds.
func (g *Game) Load() error {
	if g.kv == nil {
		return ErrNoSession
	}
	s, err := ReadSession(g.kv, len(g.cfg.Tiers))
	if errors.Is(err, ErrNoSession) {
		g.saved = false
		return err
	}
	defer func() {
		if cerr := ClearSession(g.kv); cerr != nil {
			g.log.Error("cannot clear saved session", "err", cerr)
		}
		g.saved = false
	}()
	if err != nil {
		if !errors.Is(err, ErrCorruptSession) {
			err = fmt.Errorf("%w: %v", ErrCorruptSession, err)
		}
		return err
	}

	g.newSession()
	restored, err := g.world.Restore(s.Snapshot)
	if err != nil {
		g.resetWorld()
		return fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	for _, r := range restored {
		if err := g.checkRestored(r.Spec); err != nil {
			g.resetWorld()
			return fmt.Errorf("%w: %v", ErrCorruptSession, err)
		}
	}
	for _, r := range restored {
		tier := r.Spec.Tag
		if r.Spec.Radius != g.cfg.Tiers[tier].Radius {
			// Saved under other tier sizes: rebuild at the current size.
			g.world.Remove(r.Handle)
			g.addFruit(tier, g.field.clampInside(r.Spec.Position, g.cfg.Tiers[tier].Radius))
			continue
		}
		g.bodies[r.Handle] = &bodyInfo{role: roleFruit, tier: tier}
	}
	g.tracker.Restore(s.Merged, s.Score)

	g.current = g.randomTier()
	g.next = g.randomTier()
	if g.phase == PhaseMenu || g.phase == PhaseLose {
		g.setPhase(PhaseReady)
	} else {
		g.phase = PhaseReady
	}
	g.addPreview()
	g.log.Info("session loaded", "score", s.Score, "fruits", len(restored))
	return nil
}

// checkRestored rejects a saved body that cannot be a fruit.
func (g *Game) checkRestored(spec physics.BodySpec) error {
	switch {
	case spec.Tag < 0 || spec.Tag >= len(g.cfg.Tiers):
		return fmt.Errorf("fruit tier %d", spec.Tag)
	case spec.Shape != physics.ShapeCircle:
		return fmt.Errorf("fruit shape %d", spec.Shape)
	case spec.Static || !spec.Collides:
		return fmt.Errorf("fruit is static or non-colliding")
	}
	return nil
}

// State returns the platform-facing game state.
func (g *Game) State() core.GameState {
	score := 0
	if g.tracker != nil {
		score = g.tracker.Score()
	}
	return core.GameState{
		Score:    score,
		Best:     g.best,
		GameOver: g.phase == PhaseLose,
		Paused:   g.prompt,
		InMenu:   g.phase == PhaseMenu,
	}
}
