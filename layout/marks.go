package layout

import "go.uber.org/zap"

// addLineBreak puts a line break on measure i unless it already has one.
func addLineBreak(staff Staff, i int) bool {
	if staff[i].HasBreak() {
		return false
	}
	staff[i].Break = BreakLine
	return true
}

// InsertMarkBreaks forces line breaks around section boundaries: before every
// rehearsal mark and on every double bar. A target inside a multi-measure
// rest is moved to the head of the run. Existing breaks are kept, number of
// added breaks is returned.
func InsertMarkBreaks(staff Staff, runs RestRuns, log *zap.Logger) int {
	added := 0
	for i := range staff {
		m := &staff[i]
		if m.HasRehearsalMark() {
			if i == 0 {
				// nothing before the first measure to break on
				log.Warn("Rehearsal mark on the first measure, skipping break", zap.Int("measure", m.Number))
			} else if target := runs.headOf(i - 1); addLineBreak(staff, target) {
				added++
				log.Debug("Line break before rehearsal mark", zap.Int("measure", staff[target].Number), zap.Int("mark", m.Number))
			}
		}
		if m.HasDoubleBar() {
			if target := runs.headOf(i); addLineBreak(staff, target) {
				added++
				log.Debug("Line break on double bar", zap.Int("measure", staff[target].Number))
			}
		}
	}
	return added
}
