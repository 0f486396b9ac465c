// ABOUTME: Lenient decoding of git output bytes into UTF-8 text
// ABOUTME: Invalid byte sequences become U+FFFD instead of failing the decode

// Package textenc turns raw command output into valid UTF-8 strings.
package textenc

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is the source encoding assumed for git output.
const DefaultEncoding = "utf-8"

// ErrUnknownEncoding is returned for names the IANA index cannot resolve.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Lookup resolves an IANA encoding name such as "utf-8", "gbk" or "windows-1252".
func Lookup(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, DefaultEncoding) || strings.EqualFold(name, "utf8") {
		return unicode.UTF8, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	// Registered in the index but without a decoder in x/text.
	if enc == nil {
		return nil, fmt.Errorf("%w: %q has no decoder", ErrUnknownEncoding, name)
	}

	return enc, nil
}

// Decode converts b from the named encoding to UTF-8. Bytes that are not
// valid in the source encoding are replaced with U+FFFD.
func Decode(b []byte, name string) (string, error) {
	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}

	return string(out), nil
}

// Lenient decodes b as UTF-8, replacing invalid sequences.
func Lenient(b []byte) string {
	out, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), b)
	if err != nil {
		return strings.ToValidUTF8(string(b), replacement)
	}

	return string(out)
}

const replacement = "\uFFFD"
