package fruit

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vovakirdan/merge-fruit/internal/config"
	"github.com/vovakirdan/merge-fruit/internal/core"
	"github.com/vovakirdan/merge-fruit/internal/physics"
)

func TestTrackerRecompute(t *testing.T) {
	tr := NewTracker([]int{1, 3, 6})
	tr.Record(0)
	tr.Record(0)
	tr.Record(1)

	score, changed := tr.Recompute()
	if score != 5 || !changed {
		t.Errorf("Recompute() = (%d, %v), want (5, true)", score, changed)
	}

	score, changed = tr.Recompute()
	if score != 5 || changed {
		t.Errorf("second Recompute() = (%d, %v), want (5, false)", score, changed)
	}

	tr.Record(-1)
	tr.Record(3)
	if got := tr.Counts(); !reflect.DeepEqual(got, []int{2, 1, 0}) {
		t.Errorf("Counts() = %v, want [2 1 0]", got)
	}
}

func TestTrackerRestore(t *testing.T) {
	tr := NewTracker([]int{1, 3, 6})
	tr.Restore([]int{4}, 4)
	if got := tr.Counts(); !reflect.DeepEqual(got, []int{4, 0, 0}) {
		t.Errorf("Counts() after short restore = %v, want [4 0 0]", got)
	}
	if tr.Score() != 4 {
		t.Errorf("Score() = %d, want 4", tr.Score())
	}

	tr.Restore([]int{1, 1, 1, 9}, 10)
	if got := tr.Counts(); !reflect.DeepEqual(got, []int{1, 1, 1}) {
		t.Errorf("Counts() after long restore = %v, want [1 1 1]", got)
	}

	tr.Reset()
	if tr.Score() != 0 || !reflect.DeepEqual(tr.Counts(), []int{0, 0, 0}) {
		t.Errorf("Reset left score=%d counts=%v", tr.Score(), tr.Counts())
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to Phase
		want     bool
	}{
		{PhaseMenu, PhaseReady, true},
		{PhaseReady, PhaseDrop, true},
		{PhaseDrop, PhaseReady, true},
		{PhaseReady, PhaseLose, true},
		{PhaseDrop, PhaseLose, true},
		{PhaseLose, PhaseReady, true},
		{PhaseLose, PhaseMenu, true},
		{PhaseReady, PhaseMenu, true},
		{PhaseDrop, PhaseMenu, true},
		{PhaseMenu, PhaseDrop, false},
		{PhaseMenu, PhaseLose, false},
		{PhaseLose, PhaseDrop, false},
		{PhaseReady, PhaseReady, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSchedulerDropsStaleTasks(t *testing.T) {
	var s scheduler
	ran := 0
	s.After(1, 1, func() { ran++ })
	s.After(2, 2, func() { ran += 10 })

	s.Advance(2)
	if ran != 0 {
		t.Errorf("No task should run on the first tick, ran=%d", ran)
	}
	if s.Pending() != 1 {
		t.Errorf("Stale task should be discarded, pending=%d", s.Pending())
	}

	s.Advance(2)
	if ran != 10 {
		t.Errorf("Current-generation task should run once, ran=%d", ran)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}

func TestResetShowsMenu(t *testing.T) {
	g, fw, _ := newTestGame(t, config.MergeWrap)

	if g.phase != PhaseMenu {
		t.Errorf("Reset should show the menu, got %s", g.phase)
	}
	if !g.State().InMenu {
		t.Error("State().InMenu should be true")
	}
	// two walls, two outside zones and the floor
	if fw.Len() != 5 {
		t.Errorf("World should hold 5 statics, got %d", fw.Len())
	}

	// Only the start control works in the menu.
	press(g, core.ActionLeft, core.ActionRestart, core.ActionYes)
	if g.phase != PhaseMenu {
		t.Errorf("Menu should ignore play keys, got %s", g.phase)
	}
}

func TestStartShowsPreviewAndHint(t *testing.T) {
	g, _, _ := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	if g.preview == 0 {
		t.Fatal("READY should have a preview ball")
	}
	if !g.hint {
		t.Error("Fresh start should show the hint")
	}
	if g.previewX != g.field.center() {
		t.Errorf("Preview should start centered, x=%.1f", g.previewX)
	}

	press(g, core.ActionRight)
	if g.hint {
		t.Error("A play key should hide the hint")
	}
}

func TestMergeSameTier(t *testing.T) {
	g, fw, _ := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	a := g.addFruit(0, core.V(700, 500))
	b := g.addFruit(0, core.V(720, 500))
	fw.queue(physics.Pair{A: a, B: b})
	res := press(g)

	if got := g.tracker.Counts(); !reflect.DeepEqual(got, []int{1, 0, 0}) {
		t.Errorf("Counts = %v, want [1 0 0]", got)
	}
	if res.State.Score != 1 {
		t.Errorf("Score = %d, want 1", res.State.Score)
	}
	if fw.Contains(a) || fw.Contains(b) {
		t.Error("Merged fruits should leave the world")
	}
	if _, ok := g.bodies[a]; ok {
		t.Error("Merged fruits should leave the side table")
	}
	if len(fruits(g, 0)) != 0 {
		t.Errorf("No tier 0 fruits should remain, got %d", len(fruits(g, 0)))
	}

	merged := fruits(g, 1)
	if len(merged) != 1 {
		t.Fatalf("Expected one tier 1 fruit, got %d", len(merged))
	}
	pos, _ := fw.Position(merged[0])
	if pos != core.V(710, 500) {
		t.Errorf("Merged fruit at %v, want midpoint (710,500)", pos)
	}

	pop := handleOf(g, rolePop)
	if pop == 0 {
		t.Fatal("Merge should leave a pop flash")
	}
	if fw.bodies[pop].Spec.Radius != 10 {
		t.Errorf("Pop radius = %.1f, want consumed radius 10", fw.bodies[pop].Spec.Radius)
	}
	if fw.bodies[pop].Spec.Collides {
		t.Error("Pop flash must not collide")
	}

	idle(g, g.rt.TicksFor(g.cfg.Timing.PopLifetimeMS))
	if fw.Contains(pop) || countRole(g, rolePop) != 0 {
		t.Error("Pop flash should disappear after its lifetime")
	}
}

func TestMergeSkipsDifferentTiersAndStatics(t *testing.T) {
	g, fw, _ := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	a := g.addFruit(0, core.V(700, 500))
	b := g.addFruit(1, core.V(720, 500))
	wall := handleOf(g, roleWall)
	fw.queue(
		physics.Pair{A: a, B: b},
		physics.Pair{A: a, B: wall},
		physics.Pair{A: a, B: 9999},
	)
	press(g)

	if g.tracker.Score() != 0 {
		t.Errorf("No merge expected, score=%d", g.tracker.Score())
	}
	if !fw.Contains(a) || !fw.Contains(b) {
		t.Error("Unmerged fruits should stay")
	}
	if g.phase != PhaseReady {
		t.Errorf("Phase = %s, want READY", g.phase)
	}
}

func TestMergeOncePerBody(t *testing.T) {
	g, fw, _ := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	a := g.addFruit(0, core.V(700, 500))
	b := g.addFruit(0, core.V(720, 500))
	c := g.addFruit(0, core.V(740, 500))
	fw.queue(
		physics.Pair{A: a, B: b},
		physics.Pair{A: b, B: a},
		physics.Pair{A: b, B: c},
	)
	press(g)

	if got := g.tracker.Counts()[0]; got != 1 {
		t.Errorf("mergeCount[0] = %d, want 1", got)
	}
	if !fw.Contains(c) {
		t.Error("Third fruit should survive")
	}
	if len(fruits(g, 1)) != 1 {
		t.Errorf("Expected exactly one tier 1 fruit, got %d", len(fruits(g, 1)))
	}
}

func TestMergeTopTier(t *testing.T) {
	tests := []struct {
		policy     config.MergePolicy
		wantMerged bool
	}{
		{config.MergeWrap, true},
		{config.MergeCap, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			g, fw, _ := newTestGame(t, tt.policy)
			startPlaying(t, g)

			a := g.addFruit(2, core.V(700, 500))
			b := g.addFruit(2, core.V(760, 500))
			fw.queue(physics.Pair{A: a, B: b})
			press(g)

			if tt.wantMerged {
				if got := g.tracker.Counts()[2]; got != 1 {
					t.Errorf("mergeCount[2] = %d, want 1", got)
				}
				if g.tracker.Score() != 6 {
					t.Errorf("Score = %d, want 6", g.tracker.Score())
				}
				// The drop preview is tier 0 too; count only real fruits.
				if len(fruits(g, 0)) != 1 {
					t.Errorf("Top tier should wrap to one tier 0 fruit, got %d", len(fruits(g, 0)))
				}
				return
			}

			if g.tracker.Score() != 0 {
				t.Errorf("Capped top tier should not score, got %d", g.tracker.Score())
			}
			if !fw.Contains(a) || !fw.Contains(b) {
				t.Error("Capped top tier fruits should stay")
			}
		})
	}
}

// loadedGame builds a variant that reads its config through the normal
// search path instead of a pinned test config.
func loadedGame(t *testing.T, variant, yaml string, override config.MergePolicy) (*Game, *fakeWorld) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fruit.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	SetConfigPath(path)
	SetMergePolicy(override)
	t.Cleanup(func() {
		SetConfigPath("")
		SetMergePolicy("")
	})

	fw := newFakeWorld()
	g := New(variant)
	g.newWorld = func(float64) physics.World { return fw }
	g.AttachStore(newMapKV())
	g.Reset(testRuntime)
	return g, fw
}

func TestMergePolicyFromConfigFile(t *testing.T) {
	tests := []struct {
		name       string
		variant    string
		yaml       string
		override   config.MergePolicy
		wantMerged bool
	}{
		{"file cap on fruit", "fruit", "merge:\n  policy: cap\n", "", false},
		{"file wrap on classic", "fruit_classic", "merge:\n  policy: wrap\n", "", true},
		{"unset keeps classic cap", "fruit_classic", "spawn:\n  tiers: 3\n", "", false},
		{"flag wrap beats file cap", "fruit", "merge:\n  policy: cap\n", config.MergeWrap, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, fw := loadedGame(t, tt.variant, tt.yaml, tt.override)
			startPlaying(t, g)

			top := len(g.cfg.Tiers) - 1
			c := g.field.center()
			a := g.addFruit(top, core.V(c-100, 600))
			b := g.addFruit(top, core.V(c+100, 600))
			fw.queue(physics.Pair{A: a, B: b})
			press(g)

			merged := g.tracker.Counts()[top] == 1
			if merged != tt.wantMerged {
				t.Errorf("policy %q: top tier merged = %v, want %v", g.cfg.Merge.Policy, merged, tt.wantMerged)
			}
			if !tt.wantMerged && (!fw.Contains(a) || !fw.Contains(b)) {
				t.Error("Capped top tier fruits should stay")
			}
		})
	}
}

func TestMergeClampedInsideContainer(t *testing.T) {
	g, fw, _ := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	left := g.field.left
	a := g.addFruit(0, core.V(left-5, 900))
	b := g.addFruit(0, core.V(left+5, 925))
	fw.queue(physics.Pair{A: a, B: b})
	press(g)

	merged := fruits(g, 1)
	if len(merged) != 1 {
		t.Fatalf("Expected one tier 1 fruit, got %d", len(merged))
	}
	pos, _ := fw.Position(merged[0])
	r := g.cfg.Tiers[1].Radius
	if pos.X != left+r {
		t.Errorf("Merged x = %.1f, want %.1f", pos.X, left+r)
	}
	if pos.Y != g.field.floorTop-r {
		t.Errorf("Merged y = %.1f, want %.1f", pos.Y, g.field.floorTop-r)
	}
}

func TestOutsideCollisionLoses(t *testing.T) {
	g, fw, kv := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	a := g.addFruit(0, core.V(700, 500))
	b := g.addFruit(0, core.V(720, 500))
	outside := handleOf(g, roleOutside)
	fw.queue(
		physics.Pair{A: a, B: outside},
		physics.Pair{A: a, B: b},
	)
	res := press(g)

	if g.phase != PhaseLose || !res.State.GameOver {
		t.Fatalf("Outside contact should lose, got %s", g.phase)
	}
	if g.tracker.Counts()[0] != 0 {
		t.Error("Pairs after the outside contact must not be processed")
	}
	if _, ok := kv.data[KeyHighscore]; ok {
		t.Error("A zero score should not be stored as best")
	}

	steps := fw.steps
	idle(g, 10)
	if fw.steps != steps {
		t.Errorf("Physics should stop in LOSE, stepped %d more times", fw.steps-steps)
	}
}

func TestOutsideCollisionDuringDrop(t *testing.T) {
	g, fw, _ := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	press(g, core.ActionDrop)
	if g.phase != PhaseDrop {
		t.Fatalf("Expected DROP, got %s", g.phase)
	}

	dropped := fruits(g, 0)[0]
	fw.queue(physics.Pair{A: handleOf(g, roleOutside), B: dropped})
	press(g)
	if g.phase != PhaseLose {
		t.Errorf("Outside contact in DROP should lose, got %s", g.phase)
	}
}

func TestDropIgnoredOutsideReady(t *testing.T) {
	g, fw, _ := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	press(g, core.ActionDrop)
	if g.phase != PhaseDrop {
		t.Fatalf("Expected DROP, got %s", g.phase)
	}
	bodies, score := fw.Len(), g.tracker.Score()
	press(g, core.ActionDrop)
	if fw.Len() != bodies || g.tracker.Score() != score {
		t.Errorf("Drop in DROP changed bodies %d->%d or score", bodies, fw.Len())
	}

	fw.queue(physics.Pair{A: handleOf(g, roleOutside), B: fruits(g, 0)[0]})
	press(g)
	if g.phase != PhaseLose {
		t.Fatalf("Expected LOSE, got %s", g.phase)
	}
	bodies, score = fw.Len(), g.tracker.Score()
	press(g, core.ActionDrop)
	if fw.Len() != bodies || g.tracker.Score() != score {
		t.Errorf("Drop in LOSE changed bodies %d->%d or score", bodies, fw.Len())
	}
	if g.phase != PhaseLose {
		t.Errorf("Drop should not leave LOSE, got %s", g.phase)
	}
}

func TestDropCooldown(t *testing.T) {
	g, fw, _ := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	x := g.previewX
	press(g, core.ActionDrop)
	if g.phase != PhaseDrop {
		t.Fatalf("Expected DROP, got %s", g.phase)
	}
	if g.preview != 0 {
		t.Error("Preview should be gone during DROP")
	}
	dropped := fruits(g, 0)
	if len(dropped) != 1 {
		t.Fatalf("Expected one dropped fruit, got %d", len(dropped))
	}
	pos, _ := fw.Position(dropped[0])
	if pos != core.V(x, g.field.preview) {
		t.Errorf("Dropped at %v, want (%.1f,%.1f)", pos, x, g.field.preview)
	}

	cooldown := g.rt.TicksFor(g.cfg.Timing.DropCooldownMS)
	idle(g, cooldown-2)
	if g.phase != PhaseDrop {
		t.Fatalf("Cooldown ended early: %s", g.phase)
	}
	idle(g, 1)
	if g.phase != PhaseReady {
		t.Fatalf("Cooldown should return to READY, got %s", g.phase)
	}
	if g.preview == 0 {
		t.Error("READY after cooldown should have a preview ball")
	}
}

func TestCooldownAfterLoseAndRestart(t *testing.T) {
	g, fw, _ := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	press(g, core.ActionDrop)
	fw.queue(physics.Pair{A: handleOf(g, roleOutside), B: fruits(g, 0)[0]})
	press(g)
	if g.phase != PhaseLose {
		t.Fatalf("Expected LOSE, got %s", g.phase)
	}

	idle(g, g.rt.TicksFor(g.cfg.Timing.DropCooldownMS)+5)
	if g.phase != PhaseLose {
		t.Fatalf("Cooldown must not leave LOSE, got %s", g.phase)
	}
	if g.preview != 0 {
		t.Error("Cooldown must not add a preview in LOSE")
	}

	press(g, core.ActionRestart)
	if g.phase != PhaseReady {
		t.Fatalf("Restart should enter READY, got %s", g.phase)
	}
	if g.hint {
		t.Error("Restart should not show the hint")
	}
	if g.tracker.Score() != 0 || len(fruits(g, 0)) != 0 {
		t.Error("Restart should clear the score and fruits")
	}
	if g.sched.Pending() != 0 {
		t.Errorf("Restart should drop old tasks, pending=%d", g.sched.Pending())
	}
}

func TestPreviewPositioning(t *testing.T) {
	g, fw, _ := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)
	start := g.previewX

	press(g, core.ActionRight)
	if g.previewX != start+20 {
		t.Errorf("Small step: x=%.1f, want %.1f", g.previewX, start+20)
	}
	press(g, core.ActionLeftFar)
	if g.previewX != start-40 {
		t.Errorf("Big step: x=%.1f, want %.1f", g.previewX, start-40)
	}
	pos, _ := fw.Position(g.preview)
	if pos.X != g.previewX || pos.Y != g.field.preview {
		t.Errorf("Preview body at %v, want (%.1f,%.1f)", pos, g.previewX, g.field.preview)
	}

	for i := 0; i < 20; i++ {
		press(g, core.ActionRightFar)
	}
	if g.previewX != g.field.right {
		t.Errorf("Preview should clamp to %.1f, got %.1f", g.field.right, g.previewX)
	}

	// Several presses within one tick all apply.
	in := core.NewInputFrame()
	in.Set(core.ActionLeft)
	in.Set(core.ActionLeft)
	g.Step(in)
	if g.previewX != g.field.right-40 {
		t.Errorf("Two steps in one tick: x=%.1f, want %.1f", g.previewX, g.field.right-40)
	}

	press(g, core.ActionDrop)
	x := g.previewX
	press(g, core.ActionLeftFar)
	if g.previewX != x {
		t.Error("Positioning must be ignored in DROP")
	}
}

func TestPointerMoveAndRelease(t *testing.T) {
	g, fw, _ := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	in := core.NewInputFrame()
	in.MovePointer(40, 10)
	g.Step(in)
	want := g.field.clampDrop(g.view.worldX(40))
	if g.previewX != want {
		t.Errorf("Pointer move: x=%.1f, want %.1f", g.previewX, want)
	}

	in = core.NewInputFrame()
	in.ReleasePointer(0, 10)
	g.Step(in)
	if g.phase != PhaseDrop {
		t.Fatalf("Pointer release should drop, got %s", g.phase)
	}
	pos, _ := fw.Position(fruits(g, 0)[0])
	if pos.X != g.field.left {
		t.Errorf("Release far left should drop at the wall, x=%.1f", pos.X)
	}
}

func TestSaveAndLoad(t *testing.T) {
	g, fw, kv := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	a := g.addFruit(0, core.V(700, 500))
	b := g.addFruit(0, core.V(720, 500))
	fw.queue(physics.Pair{A: a, B: b})
	press(g)
	g.addFruit(2, core.V(900, 800))
	wantCounts := g.tracker.Counts()
	wantScore := g.tracker.Score()

	press(g, core.ActionBack)
	if !g.State().Paused {
		t.Fatal("Back during play should open the save prompt")
	}
	steps := fw.steps
	idle(g, 5)
	if fw.steps != steps {
		t.Error("The prompt should halt the simulation")
	}

	press(g, core.ActionYes)
	if g.phase != PhaseMenu {
		t.Fatalf("Yes should go to the menu, got %s", g.phase)
	}
	for _, k := range []string{KeyState, KeyScore, KeyFruitsMerged} {
		if _, ok := kv.data[k]; !ok {
			t.Errorf("Key %s should be saved", k)
		}
	}
	if !g.saved {
		t.Error("Menu should offer Continue after saving")
	}

	press(g, core.ActionDrop)
	if g.phase != PhaseReady {
		t.Fatalf("Continue should enter READY, got %s", g.phase)
	}
	if g.tracker.Score() != wantScore {
		t.Errorf("Score = %d, want %d", g.tracker.Score(), wantScore)
	}
	if got := g.tracker.Counts(); !reflect.DeepEqual(got, wantCounts) {
		t.Errorf("Counts = %v, want %v", got, wantCounts)
	}
	if len(fruits(g, 1)) != 1 || len(fruits(g, 2)) != 1 {
		t.Errorf("Restored fruits: tier1=%d tier2=%d, want 1 and 1", len(fruits(g, 1)), len(fruits(g, 2)))
	}
	if g.hint {
		t.Error("A restored game should not show the hint")
	}
	if len(kv.data) != 0 {
		t.Errorf("Loading should consume the session, left %v", kv.data)
	}
	if err := g.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Second load error = %v, want ErrNoSession", err)
	}
}

func TestPromptNoDiscards(t *testing.T) {
	g, _, kv := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	press(g, core.ActionBack)
	press(g, core.ActionNo)
	if g.phase != PhaseMenu {
		t.Fatalf("No should go to the menu, got %s", g.phase)
	}
	if len(kv.data) != 0 {
		t.Errorf("No should not save, got %v", kv.data)
	}

	startPlaying(t, g)
	press(g, core.ActionBack)
	press(g, core.ActionBack)
	if g.prompt || g.phase != PhaseReady {
		t.Errorf("Back in the prompt should resume, prompt=%v phase=%s", g.prompt, g.phase)
	}
}

func TestCorruptSessionStartsFresh(t *testing.T) {
	tests := []struct {
		name string
		data map[string]string
	}{
		{"bad world", map[string]string{KeyScore: "12", KeyState: "garbage", KeyFruitsMerged: "[1]"}},
		{"bad score", map[string]string{KeyScore: "twelve", KeyState: "[]", KeyFruitsMerged: "[1]"}},
		{"bad counts", map[string]string{KeyScore: "12", KeyState: "[]", KeyFruitsMerged: "{"}},
		{"missing counts", map[string]string{KeyScore: "12", KeyState: "[]"}},
		{"too many counts", map[string]string{KeyScore: "12", KeyState: "[]", KeyFruitsMerged: "[1,2,3,4]"}},
		{"bad tier", map[string]string{KeyScore: "12", KeyState: `[{"shape":0,"radius":10,"collides":true,"tag":7}]`, KeyFruitsMerged: "[1]"}},
		{"static fruit", map[string]string{KeyScore: "12", KeyState: `[{"shape":0,"radius":5000,"static":true,"collides":false,"tag":0}]`, KeyFruitsMerged: "[1]"}},
		{"ghost fruit", map[string]string{KeyScore: "12", KeyState: `[{"shape":0,"radius":10,"collides":false,"tag":0}]`, KeyFruitsMerged: "[1]"}},
		{"box fruit", map[string]string{KeyScore: "12", KeyState: `[{"shape":1,"width":10,"height":10,"collides":true,"tag":0}]`, KeyFruitsMerged: "[1]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, fw, kv := newTestGame(t, config.MergeWrap)
			for k, v := range tt.data {
				kv.data[k] = v
			}
			g.Reset(testRuntime)
			if !g.saved {
				t.Fatal("Menu should see the saved session")
			}

			press(g, core.ActionDrop)
			if g.phase != PhaseReady {
				t.Fatalf("Corrupt session should still start a game, got %s", g.phase)
			}
			if g.tracker.Score() != 0 || !reflect.DeepEqual(g.tracker.Counts(), []int{0, 0, 0}) {
				t.Errorf("Fresh game expected, score=%d counts=%v", g.tracker.Score(), g.tracker.Counts())
			}
			if !g.hint {
				t.Error("A fresh game should show the hint")
			}
			if len(kv.data) != 0 {
				t.Errorf("Corrupt session should be removed, left %v", kv.data)
			}
			for _, b := range fw.Bodies() {
				if info := g.bodies[b.Handle]; info == nil {
					t.Errorf("Body %d has no side table entry", b.Handle)
				}
			}
		})
	}
}

func TestLoadRebuildsResizedFruit(t *testing.T) {
	g, fw, kv := newTestGame(t, config.MergeWrap)
	kv.data[KeyScore] = "1"
	kv.data[KeyFruitsMerged] = "[1]"
	kv.data[KeyState] = `[{"shape":0,"radius":99,"position":{"x":5000,"y":500},"collides":true,"tag":1},` +
		`{"shape":0,"radius":10,"position":{"x":700,"y":500},"collides":true,"tag":0}]`
	g.Reset(testRuntime)

	if err := g.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	resized := fruits(g, 1)
	if len(resized) != 1 {
		t.Fatalf("Expected one tier 1 fruit, got %d", len(resized))
	}
	body := fw.bodies[resized[0]]
	if body.Spec.Radius != 20 {
		t.Errorf("Tier 1 radius = %.1f, want config radius 20", body.Spec.Radius)
	}
	if x := body.Position.X; x > g.field.right-20 {
		t.Errorf("Rebuilt fruit at x=%.1f should be inside the container", x)
	}
	if len(fruits(g, 0)) != 1 {
		t.Errorf("Matching fruit should be kept, got %d tier 0 fruits", len(fruits(g, 0)))
	}
	if countRole(g, roleFruit) != 2 {
		t.Errorf("Expected 2 fruits, got %d", countRole(g, roleFruit))
	}
	for _, b := range fw.Bodies() {
		if g.bodies[b.Handle] == nil {
			t.Errorf("Body %d has no side table entry", b.Handle)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	g, _, kv := newTestGame(t, config.MergeWrap)
	if err := g.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load with nothing saved = %v, want ErrNoSession", err)
	}

	kv.data[KeyScore] = "-3"
	kv.data[KeyState] = "[]"
	kv.data[KeyFruitsMerged] = "[]"
	if err := g.Load(); !errors.Is(err, ErrCorruptSession) {
		t.Errorf("Load with negative score = %v, want ErrCorruptSession", err)
	}
	if len(kv.data) != 0 {
		t.Errorf("Failed load should remove the session, left %v", kv.data)
	}
}

func TestReadSessionPadsCounts(t *testing.T) {
	kv := newMapKV()
	err := WriteSession(kv, SavedSession{Snapshot: []byte("[]"), Score: 4, Merged: []int{1, 1}})
	if err != nil {
		t.Fatalf("WriteSession failed: %v", err)
	}
	if !HasSession(kv) {
		t.Fatal("HasSession should be true after writing")
	}

	s, err := ReadSession(kv, 4)
	if err != nil {
		t.Fatalf("ReadSession failed: %v", err)
	}
	if !reflect.DeepEqual(s.Merged, []int{1, 1, 0, 0}) {
		t.Errorf("Merged = %v, want [1 1 0 0]", s.Merged)
	}
	if s.Score != 4 || string(s.Snapshot) != "[]" {
		t.Errorf("ReadSession = %+v", s)
	}

	if err := ClearSession(kv); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}
	if HasSession(kv) {
		t.Error("HasSession should be false after clearing")
	}
}

func TestStoreErrors(t *testing.T) {
	kv := newMapKV()
	kv.fail = errStoreDown

	if HasSession(kv) {
		t.Error("HasSession should be false when the store fails")
	}
	if err := WriteSession(kv, SavedSession{}); !errors.Is(err, errStoreDown) {
		t.Errorf("WriteSession error = %v, want store error", err)
	}
	if _, err := RecordBest(kv, 10); !errors.Is(err, errStoreDown) {
		t.Errorf("RecordBest error = %v, want store error", err)
	}
	if _, err := RecordBest(nil, 10); !errors.Is(err, ErrNoStore) {
		t.Errorf("RecordBest(nil) error = %v, want ErrNoStore", err)
	}
	if ReadBest(kv) != 0 {
		t.Error("ReadBest should fall back to 0")
	}
}

func TestBestScoreOnLose(t *testing.T) {
	g, fw, kv := newTestGame(t, config.MergeWrap)
	startPlaying(t, g)

	a := g.addFruit(1, core.V(700, 500))
	b := g.addFruit(1, core.V(740, 500))
	fw.queue(physics.Pair{A: a, B: b})
	press(g)
	fw.queue(physics.Pair{A: handleOf(g, roleOutside), B: fruits(g, 2)[0]})
	res := press(g)

	if kv.data[KeyHighscore] != "3" {
		t.Errorf("highscore = %q, want \"3\"", kv.data[KeyHighscore])
	}
	if res.State.Best != 3 || !g.newBest {
		t.Errorf("Best = %d newBest=%v, want 3 true", res.State.Best, g.newBest)
	}

	kv.data[KeyHighscore] = "10"
	press(g, core.ActionRestart)
	a = g.addFruit(1, core.V(700, 500))
	b = g.addFruit(1, core.V(740, 500))
	fw.queue(physics.Pair{A: a, B: b})
	press(g)
	fw.queue(physics.Pair{A: handleOf(g, roleOutside), B: fruits(g, 2)[0]})
	press(g)

	if kv.data[KeyHighscore] != "10" {
		t.Errorf("Lower score must not replace best, got %q", kv.data[KeyHighscore])
	}
	if g.newBest {
		t.Error("newBest should be false for a lower score")
	}

	press(g, core.ActionBack)
	if g.phase != PhaseMenu {
		t.Errorf("Back in LOSE should go to the menu, got %s", g.phase)
	}
}

func TestRender(t *testing.T) {
	g, _, kv := newTestGame(t, config.MergeWrap)
	screen := core.NewScreen(80, 24)

	g.Render(screen)
	if !strings.Contains(screen.String(), "[Enter] Start") {
		t.Errorf("Menu should offer Start:\n%s", screen.String())
	}

	kv.data[KeyScore] = "1"
	g.AttachStore(kv)
	screen.Clear()
	g.Render(screen)
	if !strings.Contains(screen.String(), "[Enter] Continue") {
		t.Errorf("Menu should offer Continue:\n%s", screen.String())
	}
	delete(kv.data, KeyScore)
	g.AttachStore(kv)

	startPlaying(t, g)
	screen.Clear()
	g.Render(screen)
	out := screen.String()
	if !strings.Contains(out, "Score 0") {
		t.Errorf("HUD should show the score:\n%s", out)
	}
	px, py := g.view.cell(core.V(g.previewX, g.field.preview))
	if screen.Get(px, py) != 's' {
		t.Errorf("Preview fruit glyph should be drawn at (%d,%d):\n%s", px, py, out)
	}
	if !strings.ContainsRune(out, '█') {
		t.Errorf("Walls should be drawn:\n%s", out)
	}

	small := core.NewScreen(20, 5)
	g.Render(small)
	if !strings.Contains(small.String(), "too small") {
		t.Errorf("Tiny screen should say it is too small:\n%s", small.String())
	}
}

func TestVariants(t *testing.T) {
	for _, id := range []string{"fruit", "fruit_classic", "fruit_pastel"} {
		g := New(id)
		if g.ID() != id {
			t.Errorf("New(%q).ID() = %q", id, g.ID())
		}
		if g.Title() == "" {
			t.Errorf("New(%q) has no title", id)
		}
	}
	if New("nope").ID() != "fruit" {
		t.Error("Unknown variant should fall back to fruit")
	}
}
