package lexer

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

// utf8BOM is the UTF-8 byte order mark some editors prepend to .rel files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normalize prepares raw .rel source for tokenization: it strips a leading
// UTF-8 BOM and applies Unicode NFC normalization, so lexically equivalent
// source produces identical token streams regardless of encoding
// variations. A schema identifier like `Café` tokenizes the same whether
// the editor saved it precomposed (NFC) or decomposed (NFD), and a BOM in
// front of `define` does not surface as an unexpected-character error.
//
// Runs once per file, before the lexer sees the text.
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, utf8BOM)
	if norm.NFC.IsNormal(src) {
		return src
	}
	return norm.NFC.Bytes(src)
}
