// Package format drives formatting of scores: single documents and extracted
// score archives.
package format

import (
	"fmt"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"partfmt/config"
	"partfmt/layout"
	"partfmt/mscx"
)

// Movement describes a document to format.
type Movement struct {
	// Name is used for logging and reporting.
	Name string
	// Part is true for excerpts, they use part line density and label.
	Part bool
	// PartName overrides configured label.
	PartName string
}

// engineOptions derives engine options from configuration.
func engineOptions(cfg *config.LayoutConfig, part bool) layout.Options {
	opts := layout.Options{
		MeasuresPerLine: cfg.MeasuresPerLine,
		FirstPageLines:  cfg.LinesFirstPage,
		PageLines:       cfg.LinesPerPage,
		PageBreaks:      cfg.PageBreaks,
	}
	if part {
		opts.MeasuresPerLine = cfg.PartMeasuresPerLine()
	}
	return opts
}

// partLabel turns excerpt directory name into a label: "trumpet_1" becomes
// "TRUMPET 1".
func partLabel(dir string) string {
	label := strings.Join(strings.FieldsFunc(dir, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	}), " ")
	return cases.Upper(language.Und).String(label)
}

// FormatMovement formats a parsed document in place: places breaks on the
// first staff, updates metadata and injects header texts. Panics are turned
// into errors so a broken document cannot take the whole run down.
func FormatMovement(doc *mscx.Document, mv Movement, cfg *config.LayoutConfig, log *zap.Logger) (res layout.Result, rerr error) {
	log = log.With(zap.String("movement", mv.Name))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Formatting ended with panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("formatting panic: %v", r)
		}
	}()

	staff, err := doc.BuildStaff(log)
	if err != nil {
		return res, err
	}

	opts := engineOptions(cfg, mv.Part)
	if res, err = layout.Run(staff, opts, log.Named("layout")); err != nil {
		return res, err
	}
	if err := layout.Verify(staff, opts); err != nil {
		// placement is still usable, report to be looked at
		log.Warn("Layout verification failed", zap.Error(err))
	}
	if err := doc.ApplyBreaks(staff); err != nil {
		return res, err
	}

	mscx.ApplyMetadata(doc.Score(), mscx.Metadata{
		Composer:      cfg.Composer,
		Arranger:      cfg.Arranger,
		WorkNumber:    cfg.ShowNumber,
		MovementTitle: cfg.ShowTitle,
		Version:       cfg.Version,
	}, log)

	header := mscx.Header{
		ShowNumber: cfg.ShowNumber,
		ShowTitle:  cfg.ShowTitle,
		PartName:   cfg.PartName,
	}
	if len(mv.PartName) > 0 {
		header.PartName = mv.PartName
	}
	mscx.InjectHeader(doc.Staff(), header, cfg.Style, log)

	log.Debug("Movement formatted",
		zap.Bool("part", mv.Part),
		zap.Int("measures", res.Measures),
		zap.Int("lines", res.Lines),
		zap.Int("pages", res.Pages+1),
		zap.Int("staves", doc.Staves()))
	return res, nil
}
