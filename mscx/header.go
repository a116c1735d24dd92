package mscx

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"

	"partfmt/config"
)

// Text styles MuseScore uses for header texts.
const (
	StyleShowNumber = "user_2"
	StyleShowTitle  = "user_3"
	StylePartName   = "instrument_excerpt"
)

// Header holds running header texts for one document.
type Header struct {
	ShowNumber string
	ShowTitle  string
	PartName   string
}

// InjectHeader puts header texts into the first VBox of the staff. Show
// number and title are written for styles having show header only and are
// updated in place when already present. Part name label is added unless one
// exists. Returns false when staff has no VBox.
func InjectHeader(staff *etree.Element, h Header, style config.Style, log *zap.Logger) bool {
	vbox := staff.SelectElement("VBox")
	if vbox == nil {
		log.Warn("No title frame in staff, header skipped")
		return false
	}

	if style.HasShowHeader() {
		setText(vbox, StyleShowNumber, h.ShowNumber, log)
		setText(vbox, StyleShowTitle, h.ShowTitle, log)
	}

	if len(h.PartName) > 0 {
		if findText(vbox, StylePartName) != nil {
			log.Debug("Part name label already present")
		} else {
			appendText(vbox, StylePartName, h.PartName)
		}
	}
	return true
}

// findText returns Text element with requested style.
func findText(vbox *etree.Element, style string) *etree.Element {
	for _, txt := range vbox.SelectElements("Text") {
		if childText(txt, "style") == style {
			return txt
		}
	}
	return nil
}

func setText(vbox *etree.Element, style, value string, log *zap.Logger) {
	if len(value) == 0 {
		return
	}
	txt := findText(vbox, style)
	if txt == nil {
		appendText(vbox, style, value)
		return
	}
	el := txt.SelectElement("text")
	if el == nil {
		el = txt.CreateElement("text")
	}
	if old := el.Text(); old != value {
		log.Debug("Updating header text", zap.String("style", style), zap.String("old", old), zap.String("new", value))
		el.SetText(value)
	}
}

func appendText(vbox *etree.Element, style, value string) {
	txt := vbox.CreateElement("Text")
	txt.CreateElement("style").SetText(style)
	txt.CreateElement("text").SetText(value)
}
