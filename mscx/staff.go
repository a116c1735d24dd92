package mscx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"partfmt/layout"
)

const (
	layoutBreakTag = "LayoutBreak"
	voiceTag       = "voice"
)

// bar line subtypes which do not end a section
var plainBarLines = map[string]bool{
	"normal": true,
	"dashed": true,
	"dotted": true,
	"tick":   true,
	"short":  true,
}

// BuildStaff converts measures of the formatted staff into engine model.
// Musical content is classified once here, breaks already present are
// reported so the engine can discard them.
func (d *Document) BuildStaff(log *zap.Logger) (layout.Staff, error) {
	staff := make(layout.Staff, len(d.measures))
	for i, el := range d.measures {
		m := layout.Measure{Number: i + 1}
		m.Break = readBreak(el)

		if mmr := el.SelectElement("multiMeasureRest"); mmr != nil {
			length, err := strconv.Atoi(strings.TrimSpace(mmr.Text()))
			if err != nil || length < 1 {
				return nil, fmt.Errorf("measure %d: bad multi-measure rest length %q: %w", m.Number, mmr.Text(), ErrMalformedDocument)
			}
			m.Content = append(m.Content, layout.Content{Kind: layout.ContentMultiRest, Length: length})
		}

		// only primary voice defines what the measure holds
		if voice := el.SelectElement(voiceTag); voice != nil {
			m.Content = append(m.Content, readVoice(voice, m.Number, log)...)
		}
		staff[i] = m
	}
	return staff, nil
}

// childText returns trimmed text of the first child with tag, empty when
// there is none.
func childText(el *etree.Element, tag string) string {
	if child := el.SelectElement(tag); child != nil {
		return strings.TrimSpace(child.Text())
	}
	return ""
}

func readBreak(el *etree.Element) layout.Break {
	for _, lb := range el.SelectElements(layoutBreakTag) {
		switch childText(lb, "subtype") {
		case "line":
			return layout.BreakLine
		case "page":
			return layout.BreakPage
		}
	}
	return layout.BreakNone
}

func readVoice(voice *etree.Element, number int, log *zap.Logger) []layout.Content {
	var out []layout.Content
	for _, child := range voice.ChildElements() {
		switch child.Tag {
		case "Chord":
			out = append(out, layout.Content{Kind: layout.ContentNote})
		case "Rest":
			out = append(out, layout.Content{Kind: layout.ContentRest})
		case "RehearsalMark":
			out = append(out, layout.Content{Kind: layout.ContentRehearsalMark})
		case "BarLine":
			subtype := childText(child, "subtype")
			if subtype == "" {
				subtype = "normal"
			}
			if plainBarLines[subtype] {
				log.Debug("Ignoring plain bar line", zap.Int("measure", number), zap.String("subtype", subtype))
				continue
			}
			out = append(out, layout.Content{Kind: layout.ContentBarLine})
		}
	}
	return out
}

// ApplyBreaks writes breaks from staff back into the document. Existing line
// and page breaks are replaced, other layout breaks (section, no break) are
// kept untouched.
func (d *Document) ApplyBreaks(staff layout.Staff) error {
	if len(staff) != len(d.measures) {
		return fmt.Errorf("staff has %d measures, document has %d", len(staff), len(d.measures))
	}
	for i, el := range d.measures {
		removeBreaks(el)
		if staff[i].HasBreak() {
			insertBreak(el, staff[i].Break)
		}
	}
	return nil
}

func removeBreaks(el *etree.Element) {
	for _, lb := range el.SelectElements(layoutBreakTag) {
		switch childText(lb, "subtype") {
		case "line", "page":
			el.RemoveChild(lb)
		}
	}
}

// insertBreak puts LayoutBreak right before the first voice, where MuseScore
// keeps measure level elements.
func insertBreak(el *etree.Element, b layout.Break) {
	lb := etree.NewElement(layoutBreakTag)
	lb.CreateElement("subtype").SetText(b.String())

	if voice := el.SelectElement(voiceTag); voice != nil {
		el.InsertChildAt(voice.Index(), lb)
		return
	}
	el.AddChild(lb)
}
