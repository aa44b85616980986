package core

// Action represents a semantic game action, abstracted from physical key presses.
// This allows games to work with high-level intents rather than raw input.
type Action int

const (
	ActionNone      Action = iota
	ActionLeft             // Left arrow, numpad 4 - small step left
	ActionRight            // Right arrow, numpad 6 - small step right
	ActionLeftFar          // Numpad 1 - big step left
	ActionRightFar         // Numpad 3 - big step right
	ActionDrop             // Enter, Down, numpad 5 - commit drop / start from menu
	ActionBack             // B, Escape - leave the current screen
	ActionRestart          // R key - restart game after game over
	ActionYes              // Y - confirm a prompt
	ActionNo               // N - decline a prompt
	ActionQuit             // Q, Ctrl+C - exit game/session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionLeftFar:
		return "LeftFar"
	case ActionRightFar:
		return "RightFar"
	case ActionDrop:
		return "Drop"
	case ActionBack:
		return "Back"
	case ActionRestart:
		return "Restart"
	case ActionYes:
		return "Yes"
	case ActionNo:
		return "No"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Pointer carries mouse state gathered during one tick, in screen cells.
type Pointer struct {
	X, Y     int
	Moved    bool // Pointer moved at least once this tick
	Released bool // Primary button released this tick
}

// Active reports whether any pointer event happened this tick.
func (p Pointer) Active() bool {
	return p.Moved || p.Released
}

// InputFrame represents the player's input during one simulation tick.
// It contains all actions that were triggered during this frame.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	// Using a map allows checking multiple actions without order dependency.
	Actions map[Action]bool

	// Order keeps the sequence in which actions arrived. Stepping keys
	// pressed several times within one tick are all applied.
	Order []Action

	Pointer Pointer
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
	f.Order = append(f.Order, a)
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// MovePointer records a pointer position for this frame.
func (f *InputFrame) MovePointer(x, y int) {
	f.Pointer.X = x
	f.Pointer.Y = y
	f.Pointer.Moved = true
}

// ReleasePointer records a primary button release at the given position.
func (f *InputFrame) ReleasePointer(x, y int) {
	f.Pointer.X = x
	f.Pointer.Y = y
	f.Pointer.Released = true
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
	f.Order = f.Order[:0]
	f.Pointer = Pointer{}
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	clone.Order = append(clone.Order, f.Order...)
	clone.Pointer = f.Pointer
	return clone
}
