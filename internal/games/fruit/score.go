package fruit

// Tracker keeps per-tier merge counts and the score derived from them.
// The score is always recomputed from the counts, never accumulated.
type Tracker struct {
	values []int
	counts []int
	score  int
}

// NewTracker creates a tracker for a tier table with the given score values.
func NewTracker(values []int) *Tracker {
	return &Tracker{
		values: append([]int(nil), values...),
		counts: make([]int, len(values)),
	}
}

// Record counts one merge that consumed two fruits of tier.
func (t *Tracker) Record(tier int) {
	if tier < 0 || tier >= len(t.counts) {
		return
	}
	t.counts[tier]++
}

// Recompute derives the score from the merge counts and reports whether
// it differs from the previous value.
func (t *Tracker) Recompute() (int, bool) {
	score := 0
	for i, n := range t.counts {
		score += t.values[i] * n
	}
	changed := score != t.score
	t.score = score
	return score, changed
}

// Score returns the last computed score.
func (t *Tracker) Score() int {
	return t.score
}

// Counts returns a copy of the merge counts.
func (t *Tracker) Counts() []int {
	return append([]int(nil), t.counts...)
}

// Restore replaces the counts and score with saved values. Shorter count
// slices are zero-padded, longer ones truncated.
func (t *Tracker) Restore(counts []int, score int) {
	for i := range t.counts {
		t.counts[i] = 0
		if i < len(counts) {
			t.counts[i] = counts[i]
		}
	}
	t.score = score
}

// Reset zeroes every count and the score.
func (t *Tracker) Reset() {
	for i := range t.counts {
		t.counts[i] = 0
	}
	t.score = 0
}
