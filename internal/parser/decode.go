package parser

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw bytes in the declared charset to UTF-8. An empty
// charset means UTF-8. A leading byte order mark is dropped.
func Decode(raw []byte, charset string) ([]byte, error) {
	name := strings.TrimSpace(charset)
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return bytes.TrimPrefix(raw, utf8BOM), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("parser: unknown charset %q: %w", charset, err)
	}
	if enc == encoding.Nop {
		return raw, nil
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("parser: decode %s: %w", charset, err)
	}
	return bytes.TrimPrefix(out, utf8BOM), nil
}

// ValidCharset reports whether name is a charset Decode understands.
func ValidCharset(name string) bool {
	if strings.TrimSpace(name) == "" {
		return true
	}
	_, err := htmlindex.Get(name)
	return err == nil
}
