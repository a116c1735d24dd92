// Package mscx bridges MuseScore uncompressed score documents and the layout
// engine. It locates the staff to be formatted, builds engine measures from
// it, writes placed breaks back and owns header and metadata injection.
package mscx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// ErrMalformedDocument means the document is not a score we can format: no
// museScore/Score element or no staff with measures.
var ErrMalformedDocument = errors.New("malformed score document")

// Document is a parsed .mscx file. Element references are kept so breaks can
// be written back in place, everything we do not touch is preserved.
type Document struct {
	doc   *etree.Document
	score *etree.Element
	staff *etree.Element // first staff carrying measures

	measures []*etree.Element
}

func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
	}
	return doc
}

// Parse reads score document from r.
func Parse(r io.Reader) (*Document, error) {
	doc := newDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read score: %w", err)
	}
	return fromTree(doc)
}

// Load reads score document from file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func fromTree(doc *etree.Document) (*Document, error) {
	root := doc.Root()
	if root == nil || root.Tag != "museScore" {
		return nil, fmt.Errorf("no museScore root element: %w", ErrMalformedDocument)
	}
	score := root.SelectElement("Score")
	if score == nil {
		return nil, fmt.Errorf("no Score element: %w", ErrMalformedDocument)
	}

	d := &Document{doc: doc, score: score}
	// Part/Staff holds staff definitions, measures live in Score/Staff
	for _, staff := range score.SelectElements("Staff") {
		if measures := staff.SelectElements("Measure"); len(measures) > 0 {
			d.staff, d.measures = staff, measures
			break
		}
	}
	if d.staff == nil {
		return nil, fmt.Errorf("no staff with measures: %w", ErrMalformedDocument)
	}
	return d, nil
}

// Score returns museScore/Score element.
func (d *Document) Score() *etree.Element { return d.score }

// Staff returns the first staff element carrying measures, the one receiving
// breaks.
func (d *Document) Staff() *etree.Element { return d.staff }

// Measures returns number of measures on the formatted staff.
func (d *Document) Measures() int { return len(d.measures) }

// Staves returns number of Score/Staff elements.
func (d *Document) Staves() int { return len(d.score.SelectElements("Staff")) }

// WriteTo serializes document to w with consistent indentation.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	d.doc.Indent(2)
	return d.doc.WriteTo(w)
}

// Bytes returns serialized document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
