package config

// Visual template controlling header content and stylesheet selection.
// ENUM(broadway, jazz, classical)
type Style int

// HasShowHeader reports whether show number and title are printed.
func (s Style) HasShowHeader() bool {
	return s == StyleBroadway
}
