package format

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
)

const (
	ScoreExt           = ".mscx"
	CompressedScoreExt = ".mscz"

	// enough to see past XML declaration and processing instructions
	sniffLen = 512
)

var scoreType = filetype.NewType("mscx", "application/x-musescore+xml")

func init() {
	filetype.AddMatcher(scoreType, matchScore)
}

func matchScore(buf []byte) bool {
	buf = bytes.TrimPrefix(buf, []byte{0xEF, 0xBB, 0xBF})
	return bytes.Contains(buf, []byte("<museScore"))
}

func sniff(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}

// isCompressedScore reports whether file is a zip container: a .mscz score
// which has to be extracted before formatting.
func isCompressedScore(path string) (bool, error) {
	head, err := sniff(path)
	if err != nil {
		return false, err
	}
	kind, err := filetype.Archive(head)
	if err != nil {
		return false, nil
	}
	return kind == matchers.TypeZip, nil
}

// isScoreFile reports whether file looks like uncompressed MuseScore score.
func isScoreFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ScoreExt) {
		return false, nil
	}
	head, err := sniff(path)
	if err != nil {
		return false, err
	}
	kind, err := filetype.Match(head)
	if err != nil {
		return false, nil
	}
	return kind == scoreType, nil
}

// kindOf is used for logging only.
func kindOf(path string) types.Type {
	head, err := sniff(path)
	if err != nil {
		return filetype.Unknown
	}
	kind, _ := filetype.Match(head)
	return kind
}
