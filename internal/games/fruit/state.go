package fruit

// Phase is the game's position in the MENU/READY/DROP/LOSE machine.
type Phase int

const (
	PhaseMenu  Phase = iota // Start screen, only the start control works
	PhaseReady              // Preview ball follows input, a drop may be committed
	PhaseDrop               // A fruit was dropped, waiting for the cooldown
	PhaseLose               // A fruit touched an outside zone
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseMenu:
		return "MENU"
	case PhaseReady:
		return "READY"
	case PhaseDrop:
		return "DROP"
	case PhaseLose:
		return "LOSE"
	default:
		return "UNKNOWN"
	}
}

// transitions lists every allowed move between phases.
var transitions = map[Phase][]Phase{
	PhaseMenu:  {PhaseReady},
	PhaseReady: {PhaseDrop, PhaseLose, PhaseMenu},
	PhaseDrop:  {PhaseReady, PhaseLose, PhaseMenu},
	PhaseLose:  {PhaseReady, PhaseMenu},
}

// CanTransition reports whether the machine may move from one phase to another.
func CanTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// setPhase moves the machine to a new phase. Disallowed moves are logged
// and ignored.
func (g *Game) setPhase(to Phase) bool {
	if !CanTransition(g.phase, to) {
		g.log.Debug("ignored transition", "from", g.phase, "to", to)
		return false
	}
	g.log.Debug("transition", "from", g.phase, "to", to)
	g.phase = to
	return true
}

// Phase returns the current phase.
func (g *Game) Phase() Phase {
	return g.phase
}
