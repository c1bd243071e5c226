// Package textenc decodes source files into text and writes text back in the
// encoding it was read with.
//
// Decoding tries, in order: UTF-8 with a byte order mark, plain UTF-8,
// Windows-1252 and ISO-8859-1. The last one accepts any byte sequence, so
// decoding only fails on empty candidate lists.
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names the character encoding a file was decoded with.
type Encoding string

const (
	UTF8        Encoding = "utf-8"
	UTF8BOM     Encoding = "utf-8-sig"
	Windows1252 Encoding = "windows-1252"
	Latin1      Encoding = "iso-8859-1"
)

// ErrUndecodable is returned when no candidate encoding accepts the input.
var ErrUndecodable = errors.New("could not decode file with any supported encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type candidate struct {
	name    Encoding
	accepts func([]byte) bool
	codec   encoding.Encoding
}

var candidates = []candidate{
	{UTF8BOM, func(b []byte) bool { return bytes.HasPrefix(b, utf8BOM) && utf8.Valid(b) }, unicode.UTF8BOM},
	{UTF8, utf8.Valid, unicode.UTF8},
	{Windows1252, definedIn1252, charmap.Windows1252},
	{Latin1, func([]byte) bool { return true }, charmap.ISO8859_1},
}

// Bytes left unassigned by Windows-1252.
func definedIn1252(b []byte) bool {
	for _, c := range b {
		switch c {
		case 0x81, 0x8D, 0x8F, 0x90, 0x9D:
			return false
		}
	}
	return true
}

// Decode converts raw file content to text, returning the encoding used.
func Decode(data []byte) (string, Encoding, error) {
	for _, c := range candidates {
		if !c.accepts(data) {
			continue
		}
		out, err := c.codec.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		return string(out), c.name, nil
	}
	return "", "", ErrUndecodable
}

// Encode converts text back to bytes in the given encoding.
func Encode(text string, enc Encoding) ([]byte, error) {
	for _, c := range candidates {
		if c.name != enc {
			continue
		}
		out, err := c.codec.NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("encoding as %s: %w", enc, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported encoding: %s", enc)
}
