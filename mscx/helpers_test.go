package mscx

import (
	"fmt"
	"strings"
	"testing"
)

const scoreHead = `<?xml version="1.0" encoding="UTF-8"?>
<museScore version="4.20">
  <Score>
    <metaTag name="composer">Jane Roe</metaTag>
    <metaTag name="arranger"></metaTag>
    <metaTag name="workTitle">Overture</metaTag>
    <Part id="1">
      <Staff id="1">
        <StaffType group="pitched"/>
      </Staff>
    </Part>
`

const scoreTail = `  </Score>
</museScore>
`

// measure builds a Measure element with given voice content.
func measure(voice ...string) string {
	return "<Measure><voice>" + strings.Join(voice, "") + "</voice></Measure>"
}

const (
	chord    = "<Chord><durationType>quarter</durationType></Chord>"
	rest     = "<Rest><durationType>measure</durationType></Rest>"
	mark     = "<RehearsalMark><text>A</text></RehearsalMark>"
	dbl      = "<BarLine><subtype>double</subtype></BarLine>"
	final    = "<BarLine><subtype>end</subtype></BarLine>"
	dashed   = "<BarLine><subtype>dashed</subtype></BarLine>"
	vboxText = `<VBox><height>10</height><Text><style>title</style><text>Overture</text></Text></VBox>`
)

// restHead builds a collapsed rest head measure.
func restHead(length int) string {
	return fmt.Sprintf("<Measure><multiMeasureRest>%d</multiMeasureRest><voice>%s</voice></Measure>", length, rest)
}

// withBreak builds a measure carrying a layout break of subtype.
func withBreak(subtype string, voice ...string) string {
	return fmt.Sprintf("<Measure><LayoutBreak><subtype>%s</subtype></LayoutBreak><voice>%s</voice></Measure>",
		subtype, strings.Join(voice, ""))
}

// staffXML wraps children into a Score/Staff element.
func staffXML(id int, children ...string) string {
	return fmt.Sprintf("    <Staff id=\"%d\">\n%s\n    </Staff>\n", id, strings.Join(children, "\n"))
}

func scoreXML(staves ...string) string {
	return scoreHead + strings.Join(staves, "") + scoreTail
}

func plainMeasures(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = measure(chord)
	}
	return out
}

func mustParse(t *testing.T, xml string) *Document {
	t.Helper()
	d, err := Parse(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return d
}
