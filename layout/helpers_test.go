package layout

import (
	"math/rand/v2"
	"slices"
	"testing"
)

// newStaff returns n plain measures numbered from 1.
func newStaff(n int) Staff {
	staff := make(Staff, n)
	for i := range staff {
		staff[i] = Measure{Number: i + 1, Content: []Content{{Kind: ContentNote}}}
	}
	return staff
}

// at returns measure by its 1-based number.
func at(staff Staff, number int) *Measure {
	return &staff[number-1]
}

func withMarks(staff Staff, numbers ...int) Staff {
	for _, n := range numbers {
		m := at(staff, n)
		m.Content = append(m.Content, Content{Kind: ContentRehearsalMark})
	}
	return staff
}

func withDoubleBars(staff Staff, numbers ...int) Staff {
	for _, n := range numbers {
		m := at(staff, n)
		m.Content = append(m.Content, Content{Kind: ContentBarLine})
	}
	return staff
}

// withRest collapses length measures starting at measure number start.
func withRest(staff Staff, start, length int) Staff {
	for n := start; n < start+length && n <= len(staff); n++ {
		at(staff, n).Content = []Content{{Kind: ContentRest}}
	}
	m := at(staff, start)
	m.Content = append(m.Content, Content{Kind: ContentMultiRest, Length: length})
	return staff
}

func withLineBreaks(staff Staff, numbers ...int) Staff {
	for _, n := range numbers {
		at(staff, n).Break = BreakLine
	}
	return staff
}

// breaksOf returns measure numbers carrying the requested break.
func breaksOf(staff Staff, kind Break) []int {
	var out []int
	for i := range staff {
		if staff[i].Break == kind {
			out = append(out, staff[i].Number)
		}
	}
	return out
}

// anyBreaks returns measure numbers carrying any break.
func anyBreaks(staff Staff) []int {
	var out []int
	for i := range staff {
		if staff[i].HasBreak() {
			out = append(out, staff[i].Number)
		}
	}
	return out
}

func mustRuns(t *testing.T, staff Staff) RestRuns {
	t.Helper()
	runs, err := MarkRestRuns(staff)
	if err != nil {
		t.Fatalf("MarkRestRuns() error = %v", err)
	}
	return runs
}

func assertNumbers(t *testing.T, what string, got, want []int) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}

// randomStaff builds a reproducible staff with marks, double bars and
// optionally collapsed rests.
func randomStaff(seed uint64, n int, rests bool) Staff {
	rnd := rand.New(rand.NewPCG(seed, seed^0x5bd1e995))
	staff := newStaff(n)
	for i := 1; i <= n; i++ {
		switch r := rnd.IntN(100); {
		case r < 6 && i > 1:
			withMarks(staff, i)
		case r < 9:
			withDoubleBars(staff, i)
		case rests && r < 13 && i+1 < n:
			length := 2 + rnd.IntN(8)
			if i+length > n {
				length = n - i
			}
			if length > 1 {
				withRest(staff, i, length)
				i += length - 1
			}
		}
	}
	// some stale breaks to be stripped
	for i := 0; i < n/10; i++ {
		staff[rnd.IntN(n)].Break = Break(1 + rnd.IntN(2))
	}
	return staff
}
