package layout

const (
	// a line this long or longer
	balanceLongLine = 4
	// followed by a line this short or shorter gets merged with it
	balanceShortLine = 2
)

// BalanceLines fixes orphaned short lines. When a line of at least 4
// measures is followed by a line of at most 2, the break between them is
// removed. If the first line was longer than 4 a new break is placed near the
// middle of the merged run, see splitPoint. Rehearsal marks and double bars
// are hard boundaries: lines are never merged across them. Returns number of
// removed breaks.
func BalanceLines(staff Staff, runs RestRuns) int {
	var (
		merged  int
		initial int // first measure of the line ending at first
		first   = -1
	)
	for i := range staff {
		m := &staff[i]
		// the boundary break sits on the run head when the measure is
		// inside or right after a collapsed rest, next line starts after it
		if m.HasDoubleBar() {
			initial, first = runs.headOf(i)+1, -1
			continue
		}
		if m.HasRehearsalMark() {
			initial, first = i, -1
			if i > 0 {
				initial = runs.headOf(i-1) + 1
			}
		}
		if !m.HasBreak() {
			continue
		}
		if first < 0 {
			first = i
			continue
		}

		second := i
		line1, line2 := first-initial+1, second-first
		if line1 < balanceLongLine || line2 > balanceShortLine {
			// slide: line ending at second is compared with the next one
			initial, first = first+1, second
			continue
		}

		staff[first].Break = BreakNone
		merged++
		if line1 > balanceLongLine {
			if at, ok := splitPoint(runs, initial, second); ok && addLineBreak(staff, at) {
				initial = at + 1
			}
		}
		first = second
	}
	return merged
}

// splitPoint picks the measure to break the merged line initial..second on.
// Both halves must keep more than balanceShortLine measures. A midpoint inside
// a rest run moves to the run head, or past the run when the head is too
// close to initial. When neither fits the merged line stays whole.
func splitPoint(runs RestRuns, initial, second int) (int, bool) {
	fits := func(at int) bool {
		return at-initial+1 > balanceShortLine && second-at > balanceShortLine
	}
	head := runs.headOf((initial + second) / 2)
	if fits(head) {
		return head, true
	}
	if runs.inRun(head) {
		if next := runs.end(head) + 1; fits(next) {
			return next, true
		}
	}
	return 0, false
}
