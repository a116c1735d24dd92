package format

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"partfmt/config"
	"partfmt/layout"
	"partfmt/mscx"
	"partfmt/style"
)

func newFormatter(t *testing.T, cfg *config.Config, overwrite bool) *Formatter {
	t.Helper()
	f, err := New(cfg, nil, uuid.Must(uuid.NewV7()), overwrite, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return f
}

func loadStaff(t *testing.T, path string) (*mscx.Document, layout.Staff) {
	t.Helper()
	doc, err := mscx.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	staff, err := doc.BuildStaff(zap.NewNop())
	if err != nil {
		t.Fatalf("BuildStaff() error = %v", err)
	}
	return doc, staff
}

func TestFormatArchive(t *testing.T) {
	src := sampleArchive(t)
	dst := t.TempDir()
	f := newFormatter(t, testConfig(), false)

	sum, err := f.FormatArchive(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("FormatArchive() error = %v", err)
	}

	if want := filepath.Join(dst, "Overture"); sum.Output != want {
		t.Errorf("Output = %q, want %q", sum.Output, want)
	}
	if sum.Movements != 1 || sum.Parts != 1 || sum.Styles != 2 || sum.Copied != 2 {
		t.Errorf("summary = %+v", *sum)
	}

	// score
	doc, staff := loadStaff(t, filepath.Join(sum.Output, "Overture.mscx"))
	if staff[1].HasBreak() {
		t.Error("stale break on measure 2 survived")
	}
	if !staff[8].HasLineBreak() {
		t.Error("no line break before rehearsal mark")
	}
	for n := 21; n <= 23; n++ {
		if staff[n-1].HasBreak() {
			t.Errorf("break inside collapsed rest at measure %d", n)
		}
	}
	if got := doc.Meta("versionNum"); got != "1.0.0" {
		t.Errorf("versionNum = %q, want 1.0.0", got)
	}
	if got := doc.Meta("workNumber"); got != "1-1" {
		t.Errorf("workNumber = %q, want 1-1", got)
	}
	if !strings.Contains(readFile(t, filepath.Join(sum.Output, "Overture.mscx")), "<text>CONDUCTOR SCORE</text>") {
		t.Error("score label missing")
	}

	// excerpt
	part := readFile(t, filepath.Join(sum.Output, "Excerpts", "Trumpet_1", "Trumpet_1.mscx"))
	if !strings.Contains(part, "<text>TRUMPET 1</text>") {
		t.Error("excerpt label not derived from directory name")
	}
	if !strings.Contains(part, "<text>MyShow</text>") {
		t.Error("excerpt has no show title")
	}

	// styles replaced, the rest copied as is
	tmpl, _ := style.Load(config.StyleBroadway, "", zap.NewNop())
	if got := readFile(t, filepath.Join(sum.Output, "score_style.mss")); got != string(tmpl.Score) {
		t.Error("score style not replaced with score template")
	}
	if got := readFile(t, filepath.Join(sum.Output, "Excerpts", "Trumpet_1", "Trumpet_1.mss")); got != string(tmpl.Part) {
		t.Error("excerpt style not replaced with part template")
	}
	if got := readFile(t, filepath.Join(sum.Output, "audiosettings.json")); got != `{"activeSoundFlags":[]}` {
		t.Errorf("copied file content = %q", got)
	}

	// source untouched
	if got := readFile(t, filepath.Join(src, "score_style.mss")); got != styleFile {
		t.Error("source stylesheet modified")
	}

	// no staging leftovers
	entries, err := os.ReadDir(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("destination has %d entries, want 1", len(entries))
	}
}

func TestFormatArchiveAllOrNothing(t *testing.T) {
	src := sampleArchive(t)
	writeTree(t, src, map[string]string{
		// sorts after Overture, fails after the first movement is done
		"Reprise.mscx": `<?xml version="1.0"?><museScore version="4.20"><Score/></museScore>`,
	})
	dst := t.TempDir()

	_, err := newFormatter(t, testConfig(), false).FormatArchive(context.Background(), src, dst)
	if !errors.Is(err, mscx.ErrMalformedDocument) {
		t.Fatalf("FormatArchive() error = %v, want %v", err, mscx.ErrMalformedDocument)
	}

	entries, err := os.ReadDir(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("destination has %d entries after failure, want none", len(entries))
	}
}

func TestFormatArchiveOverlappingRests(t *testing.T) {
	src := sampleArchive(t)
	bad := scoreFixture{title: "Bad", measures: 10, rest: [2]int{2, 5}}.xml()
	bad = strings.Replace(bad, "<Measure><voice>", "<Measure><multiMeasureRest>3</multiMeasureRest><voice>", 3)
	writeTree(t, src, map[string]string{"Bad.mscx": bad})

	_, err := newFormatter(t, testConfig(), false).FormatArchive(context.Background(), src, t.TempDir())
	if !errors.Is(err, layout.ErrOverlappingRestRun) {
		t.Errorf("FormatArchive() error = %v, want %v", err, layout.ErrOverlappingRestRun)
	}
}

func TestFormatArchiveDestinationExists(t *testing.T) {
	src := sampleArchive(t)
	dst := t.TempDir()
	writeTree(t, dst, map[string]string{"Overture/old.txt": "old"})

	_, err := newFormatter(t, testConfig(), false).FormatArchive(context.Background(), src, dst)
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("FormatArchive() error = %v, want %v", err, ErrDestinationExists)
	}
	if got := readFile(t, filepath.Join(dst, "Overture", "old.txt")); got != "old" {
		t.Error("existing result modified")
	}

	sum, err := newFormatter(t, testConfig(), true).FormatArchive(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("FormatArchive() with overwrite error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(sum.Output, "old.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Error("previous result not replaced")
	}
}

func TestFormatArchiveIntoItself(t *testing.T) {
	src := sampleArchive(t)
	_, err := newFormatter(t, testConfig(), true).FormatArchive(context.Background(), src, filepath.Dir(src))
	if err == nil || !strings.Contains(err.Error(), "replace source") {
		t.Errorf("FormatArchive() error = %v, want refusal to replace source", err)
	}
}

func TestFormatArchiveNoScores(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"readme.txt": "nothing"})
	_, err := newFormatter(t, testConfig(), false).FormatArchive(context.Background(), src, t.TempDir())
	if !errors.Is(err, ErrNoScores) {
		t.Errorf("FormatArchive() error = %v, want %v", err, ErrNoScores)
	}
}

func TestFormatArchiveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dst := t.TempDir()
	if _, err := newFormatter(t, testConfig(), false).FormatArchive(ctx, sampleArchive(t), dst); !errors.Is(err, context.Canceled) {
		t.Errorf("FormatArchive() error = %v, want %v", err, context.Canceled)
	}
}

func TestFormatArchiveNameTemplate(t *testing.T) {
	cfg := testConfig()
	cfg.Output.NameTemplate = `{{ .ShowNumber }}/{{ .Title | upper }} ({{ .Style }})`
	cfg.Output.FileNameTransliterate = false

	sum, err := newFormatter(t, cfg, false).FormatArchive(context.Background(), sampleArchive(t), t.TempDir())
	if err != nil {
		t.Fatalf("FormatArchive() error = %v", err)
	}
	if got, want := filepath.Base(sum.Output), "OVERTURE (broadway)"; got != want {
		t.Errorf("output name = %q, want %q", got, want)
	}
	if got := filepath.Base(filepath.Dir(sum.Output)); got != "1-1" {
		t.Errorf("output directory = %q, want 1-1", got)
	}
}

func TestProcessSingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "Song.mscx")
	writeTree(t, dir, map[string]string{"in/Song.mscx": scoreFixture{title: "Song", measures: 24}.xml()})
	cfg := testConfig()
	cfg.Layout.Style = config.StyleJazz

	sum, err := newFormatter(t, cfg, false).Process(context.Background(), src, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if want := filepath.Join(dir, "out", "Song.mscx"); sum.Output != want {
		t.Errorf("Output = %q, want %q", sum.Output, want)
	}

	_, staff := loadStaff(t, sum.Output)
	var got []int
	for i := range staff {
		if staff[i].HasBreak() {
			got = append(got, staff[i].Number)
		}
	}
	if want := []int{6, 12, 18, 24}; !slices.Equal(got, want) {
		t.Errorf("breaks = %v, want %v", got, want)
	}
	if strings.Contains(readFile(t, sum.Output), "<style>user_2</style>") {
		t.Error("jazz output has show number")
	}
}

func TestProcessRejectsCompressed(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Score.mscz")
	out, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(out)
	fw, err := w.Create("Score.mscx")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(scoreFixture{title: "Score", measures: 4}.xml()))
	w.Close()
	out.Close()

	_, err = newFormatter(t, testConfig(), false).Process(context.Background(), src, t.TempDir())
	if !errors.Is(err, ErrCompressedScore) {
		t.Errorf("Process() error = %v, want %v", err, ErrCompressedScore)
	}
}

func TestProcessRejectsUnknown(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"notes.mscx": "just text"})
	if _, err := newFormatter(t, testConfig(), false).Process(context.Background(), filepath.Join(dir, "notes.mscx"), t.TempDir()); err == nil {
		t.Error("Process() accepted non score file")
	}
	if _, err := newFormatter(t, testConfig(), false).Process(context.Background(), filepath.Join(dir, "missing"), t.TempDir()); err == nil {
		t.Error("Process() accepted missing source")
	}
}

func TestSortScores(t *testing.T) {
	scores := []string{
		"Excerpts/Trumpet_2/Trumpet_2.mscx",
		"Movement 10.mscx",
		"Excerpts/Trumpet_10/Trumpet_10.mscx",
		"Movement 2.mscx",
		"Movement 1.mscx",
	}
	sortScores(scores)
	want := []string{
		"Movement 1.mscx",
		"Movement 2.mscx",
		"Movement 10.mscx",
		"Excerpts/Trumpet_2/Trumpet_2.mscx",
		"Excerpts/Trumpet_10/Trumpet_10.mscx",
	}
	for i := range want {
		if scores[i] != want[i] {
			t.Fatalf("sortScores() = %v, want %v", scores, want)
		}
	}
}

func TestExcerptName(t *testing.T) {
	tests := map[string]string{
		"Excerpts/Trumpet_1/Trumpet_1.mscx": "Trumpet_1",
		"Excerpts/Flute.mscx":               "Flute",
		"Parts/alto sax/score.mscx":         "alto sax",
	}
	for in, want := range tests {
		if got := excerptName(in); got != want {
			t.Errorf("excerptName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatArchiveReport(t *testing.T) {
	name := filepath.Join(t.TempDir(), "report.zip")
	rpt, err := (&config.ReporterConfig{Destination: name}).Prepare()
	if err != nil {
		t.Fatal(err)
	}
	f, err := New(testConfig(), rpt, uuid.Must(uuid.NewV7()), false, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.FormatArchive(context.Background(), sampleArchive(t), t.TempDir()); err != nil {
		t.Fatalf("FormatArchive() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	found := make(map[string]bool)
	for _, zf := range zr.File {
		found[zf.Name] = true
	}
	for _, want := range []string{
		"source/Overture.mscx",
		"source/Excerpts/Trumpet_1/Trumpet_1.mscx",
		"layout/Overture.mscx.txt",
		"layout/Excerpts/Trumpet_1/Trumpet_1.mscx.txt",
		"MANIFEST",
	} {
		if !found[want] {
			t.Errorf("report has no %s", want)
		}
	}
}
