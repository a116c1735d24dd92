package layout

// StripBreaks removes every existing line or page break so placement starts
// from a clean slate.
func StripBreaks(staff Staff) {
	for i := range staff {
		staff[i].Break = BreakNone
	}
}
