package format

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"partfmt/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Version: 1,
		Layout: config.LayoutConfig{
			Style:           config.StyleBroadway,
			MeasuresPerLine: 6,
			LinesFirstPage:  7,
			LinesPerPage:    8,
			PageBreaks:      true,
			ShowTitle:       "MyShow",
			ShowNumber:      "1-1",
			PartName:        "CONDUCTOR SCORE",
			Version:         "1.0.0",
		},
	}
}

// scoreFixture describes generated score document.
type scoreFixture struct {
	title    string
	measures int
	marks    []int // measures opening rehearsal sections
	rest     [2]int
}

func (s scoreFixture) xml() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<museScore version="4.20">
  <Score>
    <metaTag name="composer">Jane Roe</metaTag>
    <metaTag name="workTitle">` + s.title + `</metaTag>
    <Part id="1"><Staff id="1"/></Part>
    <Staff id="1">
      <VBox><Text><style>title</style><text>` + s.title + `</text></Text></VBox>
`)
	for n := 1; n <= s.measures; n++ {
		voice := "<Chord><durationType>quarter</durationType></Chord>"
		for _, m := range s.marks {
			if m == n {
				voice = "<RehearsalMark><text>A</text></RehearsalMark>" + voice
			}
		}
		mmr := ""
		if s.rest[1] > 0 && s.rest[0] == n {
			mmr = fmt.Sprintf("<multiMeasureRest>%d</multiMeasureRest>", s.rest[1])
		}
		// stale break which must not survive
		if n == 2 {
			mmr += "<LayoutBreak><subtype>line</subtype></LayoutBreak>"
		}
		fmt.Fprintf(&b, "      <Measure>%s<voice>%s</voice></Measure>\n", mmr, voice)
	}
	b.WriteString("    </Staff>\n  </Score>\n</museScore>\n")
	return b.String()
}

const styleFile = `<?xml version="1.0" encoding="UTF-8"?>
<museScore version="4.20"><Style><spatium>1.2</spatium></Style></museScore>
`

// writeTree creates files under dir, names are slash separated.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// sampleArchive returns extracted archive with a score, one excerpt and
// auxiliary files.
func sampleArchive(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "Overture")
	writeTree(t, src, map[string]string{
		"Overture.mscx":                     scoreFixture{title: "Overture", measures: 30, marks: []int{10}, rest: [2]int{20, 4}}.xml(),
		"score_style.mss":                   styleFile,
		"Excerpts/Trumpet_1/Trumpet_1.mscx": scoreFixture{title: "Overture", measures: 30, rest: [2]int{3, 5}}.xml(),
		"Excerpts/Trumpet_1/Trumpet_1.mss":  styleFile,
		"Thumbnails/thumbnail.png":          "\x89PNG\r\n\x1a\n",
		"audiosettings.json":                `{"activeSoundFlags":[]}`,
	})
	return src
}
