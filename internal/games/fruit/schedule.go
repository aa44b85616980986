package fruit

// task is work due at a given tick on behalf of one game session.
type task struct {
	due uint64
	gen uint64
	run func()
}

// scheduler runs delayed work on simulation ticks instead of wall-clock
// timers. Every task carries the session generation it was created in and
// is dropped unrun once the session has moved on.
type scheduler struct {
	now   uint64
	tasks []task
}

// After schedules fn to run ticks ticks from now (at least one).
func (s *scheduler) After(ticks int, gen uint64, fn func()) {
	if ticks < 1 {
		ticks = 1
	}
	s.tasks = append(s.tasks, task{due: s.now + uint64(ticks), gen: gen, run: fn})
}

// Advance moves the clock by one tick and runs the tasks that became due,
// in the order they were scheduled. Tasks from another generation are discarded.
func (s *scheduler) Advance(gen uint64) {
	s.now++

	var due []task
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		switch {
		case t.gen != gen:
			// stale
		case t.due <= s.now:
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	s.tasks = kept

	for _, t := range due {
		t.run()
	}
}

// Pending returns the number of queued tasks.
func (s *scheduler) Pending() int {
	return len(s.tasks)
}

// Reset drops all tasks.
func (s *scheduler) Reset() {
	s.tasks = nil
}
