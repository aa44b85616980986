package core

// RuntimeConfig contains configuration passed to games at initialization.
// Games use this to adapt to screen size and for deterministic simulation.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// TicksFor converts a duration in milliseconds to a whole number of ticks,
// never less than one.
func (c RuntimeConfig) TicksFor(ms int) int {
	rate := c.TickRate
	if rate <= 0 {
		rate = 60
	}
	ticks := (ms*rate + 999) / 1000
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// GameState represents the current state of a game.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Score    int  // Current score
	Best     int  // Stored best score
	GameOver bool // Whether the game has ended
	Paused   bool // Whether the simulation is halted (prompt open)
	InMenu   bool // Whether the game sits on its start screen
}

// StepResult is returned by Game.Step() after each simulation tick.
type StepResult struct {
	State GameState
}
