package bpe

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// Split patterns ported from the GPT-2 and GPT-4 tokenizers to regexp2
// syntax: the PCRE possessive quantifiers become atomic groups. Both carry
// \p{M} so combining marks stay attached to the word they modify.
const (
	GPT2SplitPattern = `'(?:[sdmt]|ll|ve|re)| ?[\p{L}\p{M}]+| ?\p{N}+| ?[^\s\p{L}\p{M}\p{N}]+|\s+(?!\S)|\s+`
	GPT4SplitPattern = `'(?i:[sdmt]|ll|ve|re)|(?>[^\r\n\p{L}\p{N}]?)[\p{L}\p{M}]+|\p{N}{1,3}| ?(?>[^\s\p{L}\p{M}\p{N}]+)[\r\n]*|\s*[\r\n]|\s+(?!\S)|\s+`
)

// Splitter variant names as stored in model files.
const (
	VariantByteLevel = "bytelevel"
	VariantRegex     = "regex"
)

// Splitter divides text into ordered pieces. Merges never cross a piece
// boundary, neither during training nor during encoding.
type Splitter interface {
	// Split returns the pieces of text in order. Concatenating the pieces
	// yields text exactly.
	Split(text string) ([]string, error)
	// Variant identifies the splitter kind in persisted models.
	Variant() string
	// Pattern returns the regex pattern, or "" for non-regex splitters.
	Pattern() string
}

// ByteLevel treats the entire text as a single piece, so merges may span any
// boundary. It is the default for Train.
type ByteLevel struct{}

// Split returns text as one piece, or no pieces for empty text.
func (ByteLevel) Split(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}

func (ByteLevel) Variant() string { return VariantByteLevel }
func (ByteLevel) Pattern() string { return "" }

// RegexSplitter partitions text with a regex pattern so that learned tokens
// never span unrelated chunks, such as trailing whitespace and the word that
// follows it.
type RegexSplitter struct {
	pattern string
	re      *regexp2.Regexp
}

// NewRegexSplitter compiles pattern. Patterns use regexp2 syntax; the
// GPT2SplitPattern and GPT4SplitPattern constants are known-good choices.
func NewRegexSplitter(pattern string) (*RegexSplitter, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("bpe: invalid split pattern: %v", err)
	}
	return &RegexSplitter{pattern: pattern, re: re}, nil
}

// Split returns the pattern matches in order. Text the pattern skips over
// still becomes a piece of its own: dropping it would make encoding lossy.
func (s *RegexSplitter) Split(text string) ([]string, error) {
	runes := []rune(text)
	var pieces []string
	prev := 0
	m, err := s.re.FindRunesMatch(runes)
	if err != nil {
		return nil, err
	}
	for m != nil {
		if m.Index > prev {
			pieces = append(pieces, string(runes[prev:m.Index]))
		}
		if m.Length > 0 {
			pieces = append(pieces, m.String())
		}
		prev = m.Index + m.Length
		m, err = s.re.FindNextMatch(m)
		if err != nil {
			return nil, err
		}
	}
	if prev < len(runes) {
		pieces = append(pieces, string(runes[prev:]))
	}
	return pieces, nil
}

func (s *RegexSplitter) Variant() string { return VariantRegex }
func (s *RegexSplitter) Pattern() string { return s.pattern }
