package layout

// InsertIntervalBreaks adds a line break after every perLine ordinary
// measures. Counting restarts at rehearsal marks (the marked measure is the
// first of a new line), at double bars and at any measure already carrying a
// break. Multi-measure rest runs are never split and do not count, the
// counter starts over after a run. Number of added breaks is returned.
func InsertIntervalBreaks(staff Staff, runs RestRuns, perLine int) int {
	if perLine < 1 {
		return 0
	}

	added, count := 0, 0
	for i := 0; i < len(staff); i++ {
		if runs.isHead(i) {
			i = runs.end(i)
			count = 0
			continue
		}

		m := &staff[i]
		switch {
		case m.HasDoubleBar():
			count = 0
		case m.HasRehearsalMark():
			count = 1
		default:
			count++
		}

		if m.HasBreak() {
			count = 0
			continue
		}
		if count == perLine {
			m.Break = BreakLine
			added++
			count = 0
		}
	}
	return added
}
