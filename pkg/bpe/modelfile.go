package bpe

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// modelMagic is the first line of every model file.
const modelMagic = "subtok/v1"

// maxPrealloc bounds slice and map capacity hints taken from count headers.
const maxPrealloc = 1 << 16

// Save writes the model in the subtok/v1 text format: a header naming the
// splitter and vocabulary size, then one line per merge rule and one per
// special token. Each merge line carries its own new id, so a reader does
// not depend on line order to recover ranks. The split pattern and special
// literals are base64 encoded, keeping the file line oriented whatever bytes
// they contain.
func (m *Model) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, modelMagic)
	fmt.Fprintf(bw, "variant %s\n", m.splitter.Variant())
	if pattern := m.splitter.Pattern(); pattern != "" {
		fmt.Fprintf(bw, "pattern %s\n", base64.StdEncoding.EncodeToString([]byte(pattern)))
	} else {
		fmt.Fprintln(bw, "pattern")
	}
	fmt.Fprintf(bw, "vocab %d\n", len(m.vocab))
	fmt.Fprintf(bw, "merges %d\n", len(m.merges))
	for _, rule := range m.merges {
		fmt.Fprintf(bw, "%d %d %d\n", rule.Left, rule.Right, rule.NewID)
	}
	type special struct {
		lit string
		id  int
	}
	specials := make([]special, 0, len(m.specials))
	for lit, id := range m.specials {
		specials = append(specials, special{lit, id})
	}
	sort.Slice(specials, func(i, j int) bool { return specials[i].id < specials[j].id })
	fmt.Fprintf(bw, "specials %d\n", len(specials))
	for _, s := range specials {
		fmt.Fprintf(bw, "%s %d\n", base64.StdEncoding.EncodeToString([]byte(s.lit)), s.id)
	}
	return bw.Flush()
}

// modelReader scans a model file line by line, turning premature EOF into
// ErrCorruptModel.
type modelReader struct {
	sc *bufio.Scanner
}

func (r *modelReader) line() (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: unexpected end of file", ErrCorruptModel)
	}
	return r.sc.Text(), nil
}

// field returns the value of a "key value" header line, checking the key.
func (r *modelReader) field(key string) (string, error) {
	line, err := r.line()
	if err != nil {
		return "", err
	}
	name, value, _ := strings.Cut(line, " ")
	if name != key {
		return "", fmt.Errorf("%w: expected %q header, got %q", ErrCorruptModel, key, line)
	}
	return value, nil
}

func (r *modelReader) intField(key string) (int, error) {
	value, err := r.field(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad %s count %q", ErrCorruptModel, key, value)
	}
	return n, nil
}

// Load reads a model saved by Save. Merge lines may appear in any order;
// ranks are recovered from the new ids, and every structural defect in the
// file fails with an error wrapping ErrCorruptModel.
func Load(r io.Reader) (*Model, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	mr := &modelReader{sc: sc}

	magic, err := mr.line()
	if err != nil {
		return nil, err
	}
	if magic != modelMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorruptModel, magic)
	}

	variant, err := mr.field("variant")
	if err != nil {
		return nil, err
	}
	patternB64, err := mr.field("pattern")
	if err != nil {
		return nil, err
	}
	var pattern string
	if patternB64 != "" {
		raw, err := base64.StdEncoding.DecodeString(patternB64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad pattern encoding: %v", ErrCorruptModel, err)
		}
		pattern = string(raw)
	}

	var splitter Splitter
	switch variant {
	case VariantByteLevel:
		if pattern != "" {
			return nil, fmt.Errorf("%w: bytelevel model carries a pattern", ErrCorruptModel)
		}
		splitter = ByteLevel{}
	case VariantRegex:
		rs, err := NewRegexSplitter(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
		}
		splitter = rs
	default:
		return nil, fmt.Errorf("%w: unknown splitter variant %q", ErrCorruptModel, variant)
	}

	vocabSize, err := mr.intField("vocab")
	if err != nil {
		return nil, err
	}
	if vocabSize < BaseVocabSize {
		return nil, fmt.Errorf("%w: vocab size %d below %d", ErrCorruptModel, vocabSize, BaseVocabSize)
	}
	mergeCount, err := mr.intField("merges")
	if err != nil {
		return nil, err
	}
	if mergeCount != vocabSize-BaseVocabSize {
		return nil, fmt.Errorf("%w: %d merges for vocab size %d", ErrCorruptModel, mergeCount, vocabSize)
	}

	// The count headers are untrusted: cap the preallocations so a hostile
	// count cannot exhaust memory, and let the slices grow with the lines
	// actually present. A short file fails at line() with ErrCorruptModel.
	merges := make([]MergeRule, 0, min(mergeCount, maxPrealloc))
	for i := 0; i < mergeCount; i++ {
		line, err := mr.line()
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: bad merge line %q", ErrCorruptModel, line)
		}
		var rule MergeRule
		var perr error
		if rule.Left, perr = strconv.Atoi(fields[0]); perr == nil {
			if rule.Right, perr = strconv.Atoi(fields[1]); perr == nil {
				rule.NewID, perr = strconv.Atoi(fields[2])
			}
		}
		if perr != nil {
			return nil, fmt.Errorf("%w: bad merge line %q", ErrCorruptModel, line)
		}
		merges = append(merges, rule)
	}
	sort.Slice(merges, func(i, j int) bool { return merges[i].NewID < merges[j].NewID })

	model, err := newModel(splitter, merges)
	if err != nil {
		return nil, err
	}

	specialCount, err := mr.intField("specials")
	if err != nil {
		return nil, err
	}
	specials := make(map[string]int, min(specialCount, maxPrealloc))
	for i := 0; i < specialCount; i++ {
		line, err := mr.line()
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: bad special line %q", ErrCorruptModel, line)
		}
		raw, err := base64.StdEncoding.DecodeString(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: bad special encoding: %v", ErrCorruptModel, err)
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad special id %q", ErrCorruptModel, fields[1])
		}
		lit := string(raw)
		if _, dup := specials[lit]; dup {
			return nil, fmt.Errorf("%w: special token %q listed twice", ErrCorruptModel, lit)
		}
		specials[lit] = id
	}
	if err := model.AddSpecialTokens(specials); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
	}

	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			return nil, fmt.Errorf("%w: trailing data %q", ErrCorruptModel, sc.Text())
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return model, nil
}
