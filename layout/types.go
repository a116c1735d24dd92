// Package layout places line and page breaks into a staff of measures.
//
// The engine works on a plain slice of Measure values built once from the
// score document. Every pass mutates the slice in place, scratch state shared
// between passes (position inside a collapsed multi-measure rest) is kept in a
// separate slice owned by a single Run and dropped when it returns.
package layout

import "fmt"

// Break is the layout marker a measure carries. A measure has at most one.
type Break int

const (
	// BreakNone means the measure does not end a line.
	BreakNone Break = iota
	// BreakLine ends the system after the measure.
	BreakLine
	// BreakPage ends the page after the measure, it ends the line as well.
	BreakPage
)

func (b Break) String() string {
	switch b {
	case BreakNone:
		return "none"
	case BreakLine:
		return "line"
	case BreakPage:
		return "page"
	default:
		return fmt.Sprintf("Break(%d)", int(b))
	}
}

// ContentKind enumerates musical content the engine cares about.
type ContentKind int

const (
	ContentNote ContentKind = iota
	ContentRest
	ContentRehearsalMark
	ContentBarLine
	ContentMultiRest
)

// Content is one item of a measure's primary voice. Length is only
// meaningful for ContentMultiRest: number of real measures the collapsed run
// represents.
type Content struct {
	Kind   ContentKind
	Length int
}

// Measure is a single bar of the staff.
type Measure struct {
	// Number is 1-based position in the staff, used for logging only.
	Number  int
	Break   Break
	Content []Content
}

// HasLineBreak reports whether the measure carries a plain line break.
func (m *Measure) HasLineBreak() bool { return m.Break == BreakLine }

// HasPageBreak reports whether the measure carries a page break.
func (m *Measure) HasPageBreak() bool { return m.Break == BreakPage }

// HasBreak reports whether the measure ends a line, by either kind of break.
func (m *Measure) HasBreak() bool { return m.Break != BreakNone }

func (m *Measure) has(kind ContentKind) bool {
	for _, c := range m.Content {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// HasRehearsalMark reports whether the measure opens a rehearsal section.
func (m *Measure) HasRehearsalMark() bool {
	return m.has(ContentRehearsalMark)
}

// HasDoubleBar reports whether the measure closes with a double or final bar
// line.
func (m *Measure) HasDoubleBar() bool {
	return m.has(ContentBarLine)
}

// RestLength returns length of the collapsed multi-measure rest started by
// this measure or 0 when the measure is not a run head.
func (m *Measure) RestLength() int {
	for _, c := range m.Content {
		if c.Kind == ContentMultiRest {
			return c.Length
		}
	}
	return 0
}

// Staff is an ordered sequence of measures of a single instrumental line.
type Staff []Measure

// Line is a derived run of consecutive measures, From and To are inclusive
// staff indexes.
type Line struct {
	From, To int
}

func (l Line) Len() int {
	return l.To - l.From + 1
}

// Lines splits staff into lines at every break (line or page).
func Lines(staff Staff) []Line {
	var (
		lines []Line
		from  int
	)
	for i := range staff {
		if staff[i].HasBreak() {
			lines = append(lines, Line{From: from, To: i})
			from = i + 1
		}
	}
	if from < len(staff) {
		lines = append(lines, Line{From: from, To: len(staff) - 1})
	}
	return lines
}

// Options control a single engine run.
type Options struct {
	MeasuresPerLine int
	FirstPageLines  int
	PageLines       int
	PageBreaks      bool
}

// DefaultOptions returns engine defaults.
func DefaultOptions() Options {
	return Options{
		MeasuresPerLine: 6,
		FirstPageLines:  7,
		PageLines:       8,
		PageBreaks:      true,
	}
}
