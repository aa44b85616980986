package fruit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/vovakirdan/merge-fruit/internal/core"
)

// Storage keys of a saved session and the best score.
const (
	KeyState        = "gameState"
	KeyScore        = "gameScore"
	KeyFruitsMerged = "gameFruitsMerged"
	KeyHighscore    = "highscore"
)

var (
	// ErrNoSession is returned when there is no saved session to load.
	ErrNoSession = errors.New("fruit: no saved session")
	// ErrCorruptSession is wrapped when a saved session cannot be decoded.
	// The session is discarded before the error is returned.
	ErrCorruptSession = errors.New("fruit: corrupt saved session")
	// ErrNoStore is returned by operations that need storage when none is attached.
	ErrNoStore = errors.New("fruit: no store attached")
)

// SavedSession is the stored form of an in-progress game.
type SavedSession struct {
	Snapshot []byte // Opaque physics world snapshot
	Score    int
	Merged   []int // Merge count per tier
}

// WriteSession stores a session under the fixed session keys.
func WriteSession(kv core.KV, s SavedSession) error {
	merged, err := json.Marshal(s.Merged)
	if err != nil {
		return fmt.Errorf("fruit: cannot encode merge counts: %w", err)
	}
	if err := kv.Set(KeyState, string(s.Snapshot)); err != nil {
		return fmt.Errorf("fruit: cannot save world: %w", err)
	}
	if err := kv.Set(KeyFruitsMerged, string(merged)); err != nil {
		return fmt.Errorf("fruit: cannot save merge counts: %w", err)
	}
	// Score goes last: its presence marks a complete session.
	if err := kv.Set(KeyScore, strconv.Itoa(s.Score)); err != nil {
		return fmt.Errorf("fruit: cannot save score: %w", err)
	}
	return nil
}

// HasSession reports whether a saved session exists.
func HasSession(kv core.KV) bool {
	if kv == nil {
		return false
	}
	_, ok, err := kv.Get(KeyScore)
	return err == nil && ok
}

// ReadSession decodes the saved session without removing it.
// It returns ErrNoSession when nothing is saved and a wrapped
// ErrCorruptSession when the stored values cannot be decoded.
func ReadSession(kv core.KV, tiers int) (SavedSession, error) {
	scoreText, ok, err := kv.Get(KeyScore)
	if err != nil {
		return SavedSession{}, fmt.Errorf("fruit: cannot read score: %w", err)
	}
	if !ok {
		return SavedSession{}, ErrNoSession
	}

	score, err := strconv.Atoi(scoreText)
	if err != nil || score < 0 {
		return SavedSession{}, fmt.Errorf("%w: score %q", ErrCorruptSession, scoreText)
	}

	state, ok, err := kv.Get(KeyState)
	if err != nil {
		return SavedSession{}, fmt.Errorf("fruit: cannot read world: %w", err)
	}
	if !ok {
		return SavedSession{}, fmt.Errorf("%w: missing world", ErrCorruptSession)
	}

	mergedText, ok, err := kv.Get(KeyFruitsMerged)
	if err != nil {
		return SavedSession{}, fmt.Errorf("fruit: cannot read merge counts: %w", err)
	}
	if !ok {
		return SavedSession{}, fmt.Errorf("%w: missing merge counts", ErrCorruptSession)
	}

	var merged []int
	if err := json.Unmarshal([]byte(mergedText), &merged); err != nil {
		return SavedSession{}, fmt.Errorf("%w: merge counts: %v", ErrCorruptSession, err)
	}
	if len(merged) > tiers {
		return SavedSession{}, fmt.Errorf("%w: %d merge counts for %d tiers", ErrCorruptSession, len(merged), tiers)
	}
	for i, n := range merged {
		if n < 0 {
			return SavedSession{}, fmt.Errorf("%w: negative merge count for tier %d", ErrCorruptSession, i)
		}
	}
	// Older saves may know fewer tiers.
	for len(merged) < tiers {
		merged = append(merged, 0)
	}

	return SavedSession{Snapshot: []byte(state), Score: score, Merged: merged}, nil
}

// ClearSession removes every session key. All keys are attempted; the first
// error is returned.
func ClearSession(kv core.KV) error {
	var first error
	for _, k := range []string{KeyState, KeyScore, KeyFruitsMerged} {
		if err := kv.Remove(k); err != nil && first == nil {
			first = fmt.Errorf("fruit: cannot remove %s: %w", k, err)
		}
	}
	return first
}

// ReadBest returns the stored best score, or 0 when absent or unreadable.
func ReadBest(kv core.KV) int {
	if kv == nil {
		return 0
	}
	text, ok, err := kv.Get(KeyHighscore)
	if err != nil || !ok {
		return 0
	}
	best, err := strconv.Atoi(text)
	if err != nil || best < 0 {
		return 0
	}
	return best
}

// RecordBest stores score as the best score when it is strictly greater
// than the stored one. It reports whether the value was written.
func RecordBest(kv core.KV, score int) (bool, error) {
	if kv == nil {
		return false, ErrNoStore
	}
	if score <= ReadBest(kv) {
		return false, nil
	}
	if err := kv.Set(KeyHighscore, strconv.Itoa(score)); err != nil {
		return false, fmt.Errorf("fruit: cannot save best score: %w", err)
	}
	return true, nil
}
