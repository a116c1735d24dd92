package layout

// PlanPageBreaks promotes line breaks to page breaks. Lines are counted per
// page (breaks on measures inside multi-measure rests do not count). When the
// count reaches the cutoff (FirstPageLines on the first page, PageLines after)
// that break and the next one are candidates, the better one becomes a page
// break. Indexes of page breaks are returned in staff order.
func PlanPageBreaks(staff Staff, runs RestRuns, opts Options) []int {
	var (
		pages     []int
		count     int
		firstPage = true
		candidate = -1
	)
	for i := range staff {
		if !staff[i].HasLineBreak() || runs.isInterior(i) {
			continue
		}
		count++

		cutoff := opts.PageLines
		if firstPage {
			cutoff = opts.FirstPageLines
		}
		if candidate < 0 {
			if count >= cutoff {
				candidate = i
			}
			continue
		}

		chosen := choosePageBreak(staff, runs, candidate, i)
		staff[chosen].Break = BreakPage
		pages = append(pages, chosen)

		// line ending at the second candidate is already on the new page
		count = 0
		if chosen == candidate {
			count = 1
		}
		firstPage, candidate = false, -1
	}
	return pages
}

// choosePageBreak picks between two consecutive line breaks. Preferred is a
// page starting with a multi-measure rest, then a page starting a new section.
func choosePageBreak(staff Staff, runs RestRuns, first, second int) int {
	opensWithRest := func(b int) bool {
		return b+1 < len(staff) && runs.inRun(b+1)
	}
	opensSection := func(b int) bool {
		return staff[b].HasDoubleBar() || (b+1 < len(staff) && staff[b+1].HasRehearsalMark())
	}

	switch {
	case opensWithRest(first):
		return first
	case opensWithRest(second):
		return second
	case opensSection(first):
		return first
	case opensSection(second):
		return second
	default:
		return first
	}
}
