package bpe

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Decode maps token ids back to text. A special-token id becomes its literal
// string; a trained id expands to its bytes. The concatenated bytes are then
// decoded as UTF-8 with every invalid byte replaced by U+FFFD, so decoding a
// structurally valid sequence never fails. An id outside both the trained
// range and the special table fails with ErrUnknownToken.
func (m *Model) Decode(ids []int) (string, error) {
	var buf []byte
	for _, id := range ids {
		if lit, ok := m.specialByID[id]; ok {
			buf = append(buf, lit...)
			continue
		}
		if id < 0 || id >= len(m.vocab) {
			return "", fmt.Errorf("%w: %d", ErrUnknownToken, id)
		}
		buf = append(buf, m.vocab[id]...)
	}
	return replaceInvalidUTF8(buf), nil
}

// replaceInvalidUTF8 substitutes U+FFFD for every byte that is not part of a
// valid encoding, one replacement per bad byte.
func replaceInvalidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b) + len(b)/4)
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			sb.WriteRune(utf8.RuneError)
			i++
			continue
		}
		sb.Write(b[i : i+size])
		i += size
	}
	return sb.String()
}
