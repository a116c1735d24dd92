package format

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"
	"go.uber.org/zap"

	"partfmt/config"
	"partfmt/layout"
	"partfmt/misc"
	"partfmt/mscx"
	"partfmt/style"
)

var (
	// ErrCompressedScore means .mscz container was given, it has to be
	// extracted first.
	ErrCompressedScore = errors.New("compressed score, extract it first")
	// ErrNoScores means source has nothing to format.
	ErrNoScores = errors.New("no scores found")
	// ErrDestinationExists means output exists and overwrite was not allowed.
	ErrDestinationExists = errors.New("destination already exists")
)

// Formatter formats scores according to a single configuration.
type Formatter struct {
	cfg       *config.Config
	templates *style.Templates
	rpt       *config.Report
	runID     uuid.UUID
	overwrite bool
	log       *zap.Logger
}

// New prepares formatter, style templates are loaded and validated here.
// Report may be nil.
func New(cfg *config.Config, rpt *config.Report, runID uuid.UUID, overwrite bool, log *zap.Logger) (*Formatter, error) {
	templates, err := style.Load(cfg.Layout.Style, cfg.Layout.StylesDir, log)
	if err != nil {
		return nil, fmt.Errorf("unable to load style templates: %w", err)
	}
	return &Formatter{
		cfg:       cfg,
		templates: templates,
		rpt:       rpt,
		runID:     runID,
		overwrite: overwrite,
		log:       log,
	}, nil
}

// Summary describes finished run.
type Summary struct {
	Output    string
	Movements int
	Parts     int
	Styles    int
	Copied    int
}

// Process formats src, extracted score directory or single .mscx file, and
// writes result under dst directory. Returns path of the result.
func (f *Formatter) Process(ctx context.Context, src, dst string) (*Summary, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("input source was not found: %w", err)
	}

	if fi.IsDir() {
		return f.FormatArchive(ctx, src, dst)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("unexpected path mode for %s", src)
	}

	compressed, err := isCompressedScore(src)
	if err != nil {
		return nil, fmt.Errorf("unable to check file type: %w", err)
	}
	if compressed {
		return nil, fmt.Errorf("%s: %w", src, ErrCompressedScore)
	}
	score, err := isScoreFile(src)
	if err != nil {
		return nil, fmt.Errorf("unable to check file type: %w", err)
	}
	if !score {
		f.log.Debug("Input not recognized", zap.String("file", src), zap.String("kind", kindOf(src).Extension))
		return nil, fmt.Errorf("input was not recognized as MuseScore score (%s)", src)
	}
	return f.FormatFile(ctx, src, dst)
}

// FormatFile formats a single score document.
func (f *Formatter) FormatFile(ctx context.Context, src, dst string) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.rpt.Store("source/"+filepath.Base(src), src)

	doc, err := mscx.Load(src)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(src)
	if _, err := FormatMovement(doc, Movement{Name: name}, &f.cfg.Layout, f.log); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	f.storeLayout(name, doc)
	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("unable to serialize %s: %w", name, err)
	}

	out := buildOutputPath(src, dst, ScoreExt, f.values(doc, name), &f.cfg.Output, f.log)
	if _, err := f.prepareDestination(src, out); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return nil, fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return nil, fmt.Errorf("unable to write result: %w", err)
	}
	f.rpt.Store("result/"+filepath.Base(out), out)
	return &Summary{Output: out, Movements: 1}, nil
}

// plan is the complete in-memory result of archive formatting. Nothing is
// written until every movement succeeded.
type plan struct {
	files   []string          // every regular file, slash separated
	outputs map[string][]byte // replaced content
	main    *mscx.Document    // first non excerpt score, nil when there is none
	summary Summary
}

// FormatArchive formats every score of an extracted archive. All movements
// are processed in memory, first failure aborts the run and nothing is
// written. On success the whole tree is reproduced under dst with scores and
// stylesheets replaced.
func (f *Formatter) FormatArchive(ctx context.Context, src, dst string) (*Summary, error) {
	if err := f.rpt.StoreCopy("source", src); err != nil {
		f.log.Warn("Unable to store source in report", zap.Error(err))
	}

	p, err := f.prepare(ctx, src)
	if err != nil {
		return nil, err
	}

	out := buildOutputPath(src, dst, "", f.values(p.main, filepath.Base(src)), &f.cfg.Output, f.log)
	if err := f.commit(ctx, p, src, out); err != nil {
		return nil, err
	}
	p.summary.Output = out
	f.rpt.Store("result", out)
	return &p.summary, nil
}

// sortScores puts scores before excerpts, each group in natural order.
func sortScores(scores []string) {
	slices.SortFunc(scores, func(a, b string) int {
		if pa, pb := style.IsPart(a), style.IsPart(b); pa != pb {
			if pb {
				return -1
			}
			return 1
		}
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})
}

func (f *Formatter) prepare(ctx context.Context, src string) (*plan, error) {
	fsys := os.DirFS(src)
	p := &plan{outputs: make(map[string][]byte)}

	var scores []string
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			// directories are recreated from files, links are not followed
			return nil
		}
		p.files = append(p.files, name)
		switch strings.ToLower(path.Ext(name)) {
		case ScoreExt:
			scores = append(scores, name)
		case CompressedScoreExt:
			return fmt.Errorf("%s: %w", name, ErrCompressedScore)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to scan %s: %w", src, err)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("%s: %w", src, ErrNoScores)
	}
	sortScores(scores)

	for _, name := range scores {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := f.formatOne(fsys, name)
		if err != nil {
			return nil, err
		}
		if p.outputs[name], err = doc.Bytes(); err != nil {
			return nil, fmt.Errorf("unable to serialize %s: %w", name, err)
		}
		if style.IsPart(name) {
			p.summary.Parts++
			continue
		}
		p.summary.Movements++
		if p.main == nil {
			p.main = doc
		}
	}

	styles, err := style.Substitute(fsys, f.templates, f.log)
	if err != nil {
		return nil, err
	}
	for name, data := range styles {
		p.outputs[name] = data
	}
	p.summary.Styles = len(styles)
	p.summary.Copied = len(p.files) - len(p.outputs)
	return p, nil
}

// excerptName returns name of the excerpt a score belongs to: its directory
// under Excerpts or file name when it sits there directly.
func excerptName(name string) string {
	dir := path.Base(path.Dir(name))
	if style.IsPart(dir) || dir == "." {
		return strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	return dir
}

func (f *Formatter) formatOne(fsys fs.FS, name string) (*mscx.Document, error) {
	r, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc, err := mscx.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	mv := Movement{Name: name, Part: style.IsPart(name)}
	if mv.Part {
		mv.PartName = partLabel(excerptName(name))
	}
	if _, err := FormatMovement(doc, mv, &f.cfg.Layout, f.log); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	f.storeLayout(name, doc)
	return doc, nil
}

// storeLayout puts placement read back from formatted document into debug
// report.
func (f *Formatter) storeLayout(name string, doc *mscx.Document) {
	if f.rpt == nil {
		return
	}
	staff, err := doc.BuildStaff(f.log)
	if err != nil {
		f.log.Warn("Unable to read placement back", zap.String("movement", name), zap.Error(err))
		return
	}
	f.rpt.StoreData("layout/"+name+".txt", []byte(layout.Dump(staff)))
}

func (f *Formatter) values(doc *mscx.Document, src string) Values {
	v := Values{
		ShowNumber: f.cfg.Layout.ShowNumber,
		ShowTitle:  f.cfg.Layout.ShowTitle,
		Style:      f.cfg.Layout.Style.String(),
		SourceFile: strings.TrimSuffix(src, filepath.Ext(src)),
		RunID:      f.runID.String(),
	}
	if doc != nil {
		v.Title = doc.Meta("workTitle")
		v.Composer = doc.Meta("composer")
	}
	return v
}

// prepareDestination refuses to overwrite source and existing results unless
// asked to. Reports whether out exists.
func (f *Formatter) prepareDestination(src, out string) (bool, error) {
	if filepath.Clean(src) == filepath.Clean(out) {
		return false, fmt.Errorf("result would replace source %s", src)
	}
	_, err := os.Lstat(out)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	case !f.overwrite:
		return true, fmt.Errorf("%s: %w", out, ErrDestinationExists)
	}
	f.log.Warn("Overwriting existing result", zap.String("path", out))
	return true, nil
}

// commit writes planned tree into a staging directory next to out and moves
// it in place, so out never holds partial result.
func (f *Formatter) commit(ctx context.Context, p *plan, src, out string) (rerr error) {
	exists, err := f.prepareDestination(src, out)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	staging, err := os.MkdirTemp(filepath.Dir(out), "."+misc.GetAppName()+"-")
	if err != nil {
		return fmt.Errorf("unable to create staging directory: %w", err)
	}
	defer func() {
		if rerr != nil {
			os.RemoveAll(staging)
		}
	}()

	for _, name := range p.files {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(staging, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if data, ok := p.outputs[name]; ok {
			if err := os.WriteFile(target, data, 0644); err != nil {
				return fmt.Errorf("unable to write %s: %w", name, err)
			}
			continue
		}
		if err := copyFile(filepath.Join(src, filepath.FromSlash(name)), target); err != nil {
			return fmt.Errorf("unable to copy %s: %w", name, err)
		}
	}

	if exists {
		if err := os.RemoveAll(out); err != nil {
			return fmt.Errorf("unable to remove previous result: %w", err)
		}
	}
	if err := os.Rename(staging, out); err != nil {
		return fmt.Errorf("unable to move result in place: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, time.Now(), info.ModTime())
}
