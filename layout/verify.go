package layout

import (
	"fmt"

	"go.uber.org/multierr"
)

// Verify checks finished placement and reports every violation found: no
// break inside a multi-measure rest, page breaks only when requested, no
// page holding more lines than allowed (one extra line is tolerated where
// the planner had to pick the second candidate or ran out of breaks).
func Verify(staff Staff, opts Options) (err error) {
	runs, rerr := MarkRestRuns(staff)
	if rerr != nil {
		return rerr
	}

	count, cutoff := 0, opts.FirstPageLines
	for i := range staff {
		m := &staff[i]
		if m.HasBreak() && runs.isInterior(i) {
			err = multierr.Append(err, fmt.Errorf("measure %d: %s break inside multi-measure rest", m.Number, m.Break))
		}
		if m.HasPageBreak() && !opts.PageBreaks {
			err = multierr.Append(err, fmt.Errorf("measure %d: unexpected page break", m.Number))
		}
		if !opts.PageBreaks || !m.HasBreak() || runs.isInterior(i) {
			continue
		}
		count++
		if m.HasPageBreak() {
			if count > cutoff+1 {
				err = multierr.Append(err, fmt.Errorf("measure %d: page with %d lines, expected at most %d", m.Number, count, cutoff+1))
			}
			count, cutoff = 0, opts.PageLines
		}
	}
	return err
}
