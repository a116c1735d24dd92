package layout

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrInvalidOptions is returned by Run when Options fail validation.
var ErrInvalidOptions = errors.New("invalid layout options")

// Result summarizes a single engine run.
type Result struct {
	Measures   int
	Rests      int
	MarkBreaks int
	Interval   int
	Merged     int
	Lines      int
	Pages      int
}

func (o Options) validate() error {
	if o.MeasuresPerLine < 1 {
		return fmt.Errorf("measures per line %d: %w", o.MeasuresPerLine, ErrInvalidOptions)
	}
	if o.PageBreaks && (o.FirstPageLines < 1 || o.PageLines < 1) {
		return fmt.Errorf("lines per page %d/%d: %w", o.FirstPageLines, o.PageLines, ErrInvalidOptions)
	}
	return nil
}

// Run places breaks on staff. Passes are executed strictly in order, each one
// depends on the complete output of the previous. Existing breaks are
// discarded, so running twice gives the same placement as running once.
func Run(staff Staff, opts Options, log *zap.Logger) (Result, error) {
	res := Result{Measures: len(staff)}
	if err := opts.validate(); err != nil {
		return res, err
	}

	StripBreaks(staff)

	runs, err := MarkRestRuns(staff)
	if err != nil {
		return res, err
	}
	for i := range runs {
		if runs.isHead(i) {
			res.Rests++
		}
	}

	res.MarkBreaks = InsertMarkBreaks(staff, runs, log)
	runs.mustHold(staff, "mark breaks")

	res.Interval = InsertIntervalBreaks(staff, runs, opts.MeasuresPerLine)
	runs.mustHold(staff, "interval breaks")

	res.Merged = BalanceLines(staff, runs)
	runs.mustHold(staff, "balancing")

	if opts.PageBreaks {
		res.Pages = len(PlanPageBreaks(staff, runs, opts))
		runs.mustHold(staff, "page breaks")
	}

	res.Lines = len(Lines(staff))
	log.Debug("Layout completed",
		zap.Int("measures", res.Measures), zap.Int("rests", res.Rests), zap.Int("lines", res.Lines), zap.Int("pages", res.Pages+1))
	return res, nil
}

// mustHold panics when a pass left a break inside a multi-measure rest. Next
// pass would work on corrupted state, this is a programming error.
func (r RestRuns) mustHold(staff Staff, pass string) {
	for i := range staff {
		if staff[i].HasBreak() && r.isInterior(i) {
			panic(fmt.Sprintf("layout: %s left %s break inside multi-measure rest at measure %d", pass, staff[i].Break, staff[i].Number))
		}
	}
}
