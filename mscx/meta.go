package mscx

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// ArrangerFromComposer as arranger value copies document composer.
const ArrangerFromComposer = "COMPOSER"

// Metadata holds metaTag values to be set. Empty values leave document
// untouched.
type Metadata struct {
	Composer      string
	Arranger      string
	WorkNumber    string
	MovementTitle string
	Version       string
}

// Meta returns value of the named metaTag.
func (d *Document) Meta(name string) string {
	if tag := findMeta(d.score, name); tag != nil {
		return tag.Text()
	}
	return ""
}

func findMeta(score *etree.Element, name string) *etree.Element {
	for _, tag := range score.SelectElements("metaTag") {
		if tag.SelectAttrValue("name", "") == name {
			return tag
		}
	}
	return nil
}

// ApplyMetadata updates metaTag entries of the score. Missing tags are created
// next to existing ones. Returns number of changed tags.
func ApplyMetadata(score *etree.Element, meta Metadata, log *zap.Logger) int {
	if meta.Arranger == ArrangerFromComposer {
		meta.Arranger = meta.Composer
		if len(meta.Arranger) == 0 {
			if tag := findMeta(score, "composer"); tag != nil {
				meta.Arranger = tag.Text()
			}
		}
	}

	changed := 0
	for _, kv := range []struct{ name, value string }{
		{"composer", meta.Composer},
		{"arranger", meta.Arranger},
		{"workNumber", meta.WorkNumber},
		{"movementTitle", meta.MovementTitle},
		{"versionNum", meta.Version},
	} {
		if len(kv.value) == 0 {
			continue
		}
		tag := findMeta(score, kv.name)
		switch {
		case tag == nil:
			tag = etree.NewElement("metaTag")
			tag.CreateAttr("name", kv.name)
			insertMeta(score, tag)
		case tag.Text() == kv.value:
			continue
		}
		log.Debug("Setting score metadata", zap.String("name", kv.name), zap.String("value", kv.value))
		tag.SetText(kv.value)
		changed++
	}
	return changed
}

// insertMeta keeps metaTag elements together, MuseScore writes them before
// parts and staves.
func insertMeta(score *etree.Element, tag *etree.Element) {
	tags := score.SelectElements("metaTag")
	if len(tags) == 0 {
		if first := score.SelectElement("Part"); first != nil {
			score.InsertChildAt(first.Index(), tag)
			return
		}
		score.AddChild(tag)
		return
	}
	score.InsertChildAt(tags[len(tags)-1].Index()+1, tag)
}
