package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names the source encoding a statement was decoded from.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88599    Charset = "ISO-8859-9"
)

const sniffSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// NewUTF8Reader returns a UTF-8 view of r and the charset it was decoded from.
// A byte order mark wins, then UTF-8 validity of the first block, then chardet.
// Anything undetectable is read as Windows-1252, the usual bank export default.
func NewUTF8Reader(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(head, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, UTF8, nil
	case bytes.HasPrefix(head, bomUTF16LE):
		return decode(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), UTF16LE, nil
	case bytes.HasPrefix(head, bomUTF16BE):
		return decode(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), UTF16BE, nil
	case utf8.Valid(trimPartialRune(head, len(head) == sniffSize)):
		return br, UTF8, nil
	}

	if res, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		switch res.Charset {
		case "UTF-8":
			return br, UTF8, nil
		case "ISO-8859-9":
			return decode(br, charmap.ISO8859_9.NewDecoder()), ISO88599, nil
		}
	}

	return decode(br, charmap.Windows1252.NewDecoder()), Windows1252, nil
}

// trimPartialRune drops a multibyte sequence cut off by the peek boundary.
func trimPartialRune(b []byte, truncated bool) []byte {
	if !truncated {
		return b
	}

	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}

			break
		}
	}

	return b
}

func decode(r io.Reader, t transform.Transformer) io.Reader {
	return transform.NewReader(r, t)
}
