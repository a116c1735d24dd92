package format

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"partfmt/config"
)

// Values is a struct that holds variables we make available for output name
// template expansion.
type Values struct {
	Context    string
	Title      string
	Composer   string
	ShowNumber string
	ShowTitle  string
	Style      string
	SourceFile string
	RunID      string
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values.Context = string(name)

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// buildOutputPath returns path of the formatted result inside dst. Without
// name template source name is kept. Template may produce subdirectories,
// every segment is cleaned and optionally transliterated. ext is empty for
// directories.
func buildOutputPath(src, dst, ext string, values Values, cfg *config.OutputConfig, log *zap.Logger) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if len(ext) == 0 {
		base = filepath.Base(src)
	}
	defaultPath := filepath.Join(dst, cleanPathSegment(base, cfg)+ext)

	if len(cfg.NameTemplate) == 0 {
		return defaultPath
	}

	expanded, err := expandTemplate(config.OutputNameTemplateFieldName, cfg.NameTemplate, values)
	if err != nil {
		log.Warn("Unable to prepare output name, using default", zap.Error(err))
		return defaultPath
	}
	segments := splitAndCleanPath(filepath.FromSlash(expanded))
	if len(segments) == 0 {
		return defaultPath
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, dst)
	for _, seg := range segments[:len(segments)-1] {
		parts = append(parts, cleanPathSegment(seg, cfg))
	}
	parts = append(parts, cleanPathSegment(segments[len(segments)-1], cfg)+ext)
	return filepath.Join(parts...)
}

// splitAndCleanPath splits path into segments, dropping empty ones and
// attempts to climb up.
func splitAndCleanPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); ; head, tail = filepath.Split(head) {
		if tail != "" && tail != "." && tail != ".." {
			segments = slices.Insert(segments, 0, tail)
		}
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" || head == path {
			break
		}
		path = head
	}
	return segments
}

func cleanPathSegment(segment string, cfg *config.OutputConfig) string {
	if cfg.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
