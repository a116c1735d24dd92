package layout

import (
	"fmt"
	"strings"
)

type treeWriter struct {
	w strings.Builder
}

func (tw *treeWriter) String() string {
	return tw.w.String()
}

func (tw *treeWriter) line(depth int, format string, args ...any) {
	for range depth {
		tw.w.WriteString("  ")
	}
	fmt.Fprintf(&tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Dump renders placed breaks as a page/line tree with section boundaries and
// collapsed rests noted. Used for debug reports.
func Dump(staff Staff) string {
	tw := &treeWriter{}
	if len(staff) == 0 {
		tw.line(0, "empty staff")
		return tw.String()
	}

	page := 1
	tw.line(0, "page %d", page)
	for n, l := range Lines(staff) {
		first, last := &staff[l.From], &staff[l.To]
		tw.line(1, "line %d: measures %d-%d (%d)", n+1, first.Number, last.Number, l.Len())
		for i := l.From; i <= l.To; i++ {
			m := &staff[i]
			if m.HasRehearsalMark() {
				tw.line(2, "mark at %d", m.Number)
			}
			if length := m.RestLength(); length > 0 {
				tw.line(2, "rest of %d at %d", length, m.Number)
			}
			if m.HasDoubleBar() {
				tw.line(2, "double bar at %d", m.Number)
			}
		}
		if last.HasPageBreak() && l.To < len(staff)-1 {
			page++
			tw.line(0, "page %d", page)
		}
	}
	return tw.String()
}
