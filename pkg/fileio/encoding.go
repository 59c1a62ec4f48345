// pkg/fileio/encoding.go
package fileio

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

const (
	// DefaultSampleSize is how many leading bytes encoding detection reads
	DefaultSampleSize = 10000
	// ConfidenceThreshold is the detection confidence below which UTF-8 is assumed
	ConfidenceThreshold = 0.7
	// DefaultEncoding is used whenever detection is unsure
	DefaultEncoding = "utf-8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// charsetAliases maps detector names that are not IANA names
var charsetAliases = map[string]string{
	"gb-18030":     "GB18030",
	"iso-8859-8-i": "ISO-8859-8",
}

// DetectEncoding guesses the charset of a byte sample. It returns UTF-8
// when the detector fails or its confidence is below the threshold.
func DetectEncoding(sample []byte) (string, float64) {
	if len(sample) == 0 || bytes.HasPrefix(sample, utf8BOM) {
		return DefaultEncoding, 1
	}
	if isASCII(sample) {
		return "ascii", 1
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil {
		return DefaultEncoding, 0
	}

	confidence := float64(result.Confidence) / 100
	if confidence < ConfidenceThreshold {
		return DefaultEncoding, confidence
	}
	return result.Charset, confidence
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// lookupEncoding resolves a charset name. A nil encoding means UTF-8.
func lookupEncoding(name string) (encoding.Encoding, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" || normalized == "utf-8" || normalized == "utf8" || normalized == "ascii" || normalized == "us-ascii" {
		return nil, nil
	}
	if alias, ok := charsetAliases[normalized]; ok {
		name = alias
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// decode wraps r so that it yields UTF-8 text, dropping a UTF-8 BOM
func decode(data []byte, charset string) (io.Reader, error) {
	enc, err := lookupEncoding(charset)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)), nil
	}
	return transform.NewReader(bytes.NewReader(data), enc.NewDecoder()), nil
}
