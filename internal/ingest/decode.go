package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrBinaryContent is returned for uploads that are not text.
var ErrBinaryContent = errors.New("file appears to contain binary data")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// binarySniffLen bounds how much of a file is scanned for NUL bytes.
const binarySniffLen = 8000

// Decode turns uploaded bytes into text. UTF-8 is preferred (a leading BOM
// is dropped); anything else is read as Windows-1252, which maps every
// byte. Content with NUL bytes is rejected as binary.
func Decode(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	sniff := raw
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		return "", ErrBinaryContent
	}

	if utf8.Valid(raw) {
		return string(raw), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding as windows-1252: %w", err)
	}
	return string(out), nil
}
