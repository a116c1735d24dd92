package layout

import (
	"errors"
	"fmt"
)

// ErrOverlappingRestRun means a collapsed rest starts before the previous one
// ended. Input is corrupted and must not be merged silently.
var ErrOverlappingRestRun = errors.New("overlapping multi-measure rest runs")

const notInRun = -1

// RestRuns is per-measure scratch state: distance from the end of the
// multi-measure rest run the measure belongs to (head holds length-1, last
// measure holds 0) or notInRun.
type RestRuns []int

// Remaining returns distance of measure i from the end of its run, ok is false
// when the measure is not part of a run.
func (r RestRuns) Remaining(i int) (int, bool) {
	if i < 0 || i >= len(r) || r[i] == notInRun {
		return 0, false
	}
	return r[i], true
}

// MarkRestRuns walks staff once and marks every measure belonging to a
// collapsed multi-measure rest. Runs cut short by the end of the staff are
// clipped.
func MarkRestRuns(staff Staff) (RestRuns, error) {
	runs := make(RestRuns, len(staff))
	open, head := 0, 0
	for i := range staff {
		length := staff[i].RestLength()
		switch {
		case length > 0 && open > 0:
			return nil, fmt.Errorf("measure %d starts a rest while run from measure %d has %d measures left: %w",
				staff[i].Number, staff[head].Number, open, ErrOverlappingRestRun)
		case length > 0:
			runs[i], open, head = length-1, length-1, i
		case open > 0:
			open--
			runs[i] = open
		default:
			runs[i] = notInRun
		}
	}
	return runs, nil
}

func (r RestRuns) inRun(i int) bool {
	return r[i] != notInRun
}

// isHead reports whether measure i starts a run. Runs may follow each other
// directly, previous one then ends with 0.
func (r RestRuns) isHead(i int) bool {
	return r.inRun(i) && (i == 0 || r[i-1] <= 0)
}

// isInterior reports whether measure i belongs to a run but is not its head.
// Breaks never land on such measures.
func (r RestRuns) isInterior(i int) bool {
	return r.inRun(i) && !r.isHead(i)
}

// headOf returns index of the run head for measure i, or i itself when it is
// not inside a run.
func (r RestRuns) headOf(i int) int {
	for i > 0 && r.isInterior(i) {
		i--
	}
	return i
}

// end returns index of the last measure of the run started at head.
func (r RestRuns) end(head int) int {
	return head + r[head]
}
