// Package style selects MuseScore stylesheets for the requested visual
// template and substitutes them into an extracted score.
package style

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"partfmt/config"
)

//go:embed templates/*.mss
var templateFiles embed.FS

// ErrInvalidTemplate means stylesheet is not a MuseScore style document.
var ErrInvalidTemplate = errors.New("invalid style template")

// Ext is stylesheet file extension.
const Ext = ".mss"

// path segments holding excerpts (parts) of the score
var partDirs = []string{"excerpts", "parts"}

// Templates is a pair of stylesheets for one style.
type Templates struct {
	Style config.Style
	Score []byte
	Part  []byte
}

// For returns stylesheet for a resource at relative path rel.
func (t *Templates) For(rel string) []byte {
	if IsPart(rel) {
		return t.Part
	}
	return t.Score
}

// IsPart reports whether resource at relative path rel belongs to an excerpt.
func IsPart(rel string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if slices.Contains(partDirs, strings.ToLower(seg)) {
			return true
		}
	}
	return false
}

func templateName(s config.Style, kind string) string {
	return s.String() + "_" + kind + Ext
}

// Load returns templates for style. Files named <style>_score.mss and
// <style>_part.mss in dir (when not empty) override embedded defaults.
func Load(s config.Style, dir string, log *zap.Logger) (*Templates, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("unsupported style %d: %w", s, config.ErrInvalidStyle)
	}

	var err error
	t := &Templates{Style: s}
	t.Score, err = loadOne(templateName(s, "score"), dir, log)
	if err != nil {
		return nil, err
	}
	t.Part, err = loadOne(templateName(s, "part"), dir, log)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func loadOne(name, dir string, log *zap.Logger) ([]byte, error) {
	if len(dir) > 0 {
		data, err := os.ReadFile(filepath.Join(dir, name))
		switch {
		case err == nil:
			log.Debug("Using style override", zap.String("file", filepath.Join(dir, name)))
			if err := Validate(data); err != nil {
				return nil, fmt.Errorf("%s: %w", filepath.Join(dir, name), err)
			}
			return data, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("unable to read style template: %w", err)
		}
	}
	data, err := templateFiles.ReadFile(path.Join("templates", name))
	if err != nil {
		return nil, fmt.Errorf("embedded style template %s: %w", name, err)
	}
	return data, nil
}

// Validate checks data is a MuseScore style document: museScore root with
// Style child.
func Validate(data []byte) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "museScore" {
		return fmt.Errorf("no museScore root: %w", ErrInvalidTemplate)
	}
	if root.SelectElement("Style") == nil {
		return fmt.Errorf("no Style element: %w", ErrInvalidTemplate)
	}
	return nil
}

// Substitute finds every stylesheet in fsys and returns replacement content
// keyed by slash separated path. Nothing is written, caller decides when
// results are committed. Walk errors are collected so all unreadable entries
// are reported at once.
func Substitute(fsys fs.FS, t *Templates, log *zap.Logger) (map[string][]byte, error) {
	var errs error
	out := make(map[string][]byte)

	walkErr := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = multierr.Append(errs, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(p), Ext) {
			return nil
		}
		out[p] = t.For(p)
		log.Debug("Replacing style", zap.String("file", p), zap.Bool("part", IsPart(p)), zap.Stringer("style", t.Style))
		return nil
	})
	if err := multierr.Append(errs, walkErr); err != nil {
		return nil, fmt.Errorf("unable to substitute styles: %w", err)
	}
	return out, nil
}
