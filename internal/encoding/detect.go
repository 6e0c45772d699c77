// Package encoding normalises uploaded text files to UTF-8. Spreadsheet and bank exports in Brazil
// are frequently saved as Windows-1252 or ISO-8859-1.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// legacy maps the chardet names seen in practice to decoders. Anything else falls back to Windows-1252.
var legacy = map[string]encoding.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
}

// NewUTF8Reader returns a reader that yields r decoded to UTF-8.
//
// A UTF-8 BOM is stripped and UTF-16 BOMs select the matching decoder. Without a BOM, input that
// is already valid UTF-8 passes through; otherwise chardet picks a single-byte charset.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	}

	if utf8.Valid(trimPartialRune(buf)) {
		return br, nil
	}

	return transform.NewReader(br, Detect(buf).NewDecoder()), nil
}

// Detect guesses the single-byte charset of sample.
func Detect(sample []byte) encoding.Encoding {
	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err == nil {
		if enc, ok := legacy[result.Charset]; ok {
			return enc
		}
	}

	return charmap.Windows1252
}

// trimPartialRune drops a multi-byte sequence cut by the sniff window.
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}

			break
		}
	}

	return b
}
