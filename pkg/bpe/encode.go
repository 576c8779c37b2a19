package bpe

import "fmt"

// Specials selects which registered special tokens Encode recognizes in its
// input. The zero value recognizes none, so special-token strings are
// encoded as ordinary text.
type Specials struct {
	all   bool
	names []string
}

// NoSpecials treats every registered special-token string as ordinary text.
func NoSpecials() Specials { return Specials{} }

// AllSpecials recognizes every registered special token.
func AllSpecials() Specials { return Specials{all: true} }

// SomeSpecials recognizes only the named tokens. Registered tokens outside
// the subset are encoded as ordinary text.
func SomeSpecials(names ...string) Specials {
	return Specials{names: append([]string(nil), names...)}
}

// allowed resolves the mode against the model's table. Naming an
// unregistered token is an error: it is almost always a typo, and encoding
// it as plain text would silently change the output.
func (s Specials) allowed(m *Model) (map[string]int, error) {
	if s.all {
		if len(m.specials) == 0 {
			return nil, nil
		}
		out := make(map[string]int, len(m.specials))
		for lit, id := range m.specials {
			out[lit] = id
		}
		return out, nil
	}
	if len(s.names) == 0 {
		return nil, nil
	}
	out := make(map[string]int, len(s.names))
	for _, name := range s.names {
		id, ok := m.specials[name]
		if !ok {
			return nil, fmt.Errorf("bpe: special token %q is not registered", name)
		}
		out[name] = id
	}
	return out, nil
}

// Encode maps text to token ids by replaying the learned merges in training
// rank order. Special tokens selected by specials are matched
// leftmost-longest, non-overlapping, and emitted as single ids; the text
// between them is split into pieces and merged pair by pair, always taking
// the present pair with the lowest rank first. The result depends only on
// the model and the input, never on the input's own pair statistics.
func (m *Model) Encode(text string, specials Specials) ([]int, error) {
	allowed, err := specials.allowed(m)
	if err != nil {
		return nil, err
	}

	var ids []int
	for _, seg := range splitSpecials(text, allowed) {
		if seg.special {
			ids = append(ids, seg.id)
			continue
		}
		pieces, err := m.splitter.Split(seg.text)
		if err != nil {
			return nil, err
		}
		for _, piece := range pieces {
			ids = m.encodePiece(piece, ids)
		}
	}
	return ids, nil
}

// encodePiece appends the token ids for one piece. The piece starts as raw
// bytes; the present pair with the lowest rank is rewritten until no
// remaining pair has a rank.
func (m *Model) encodePiece(piece string, ids []int) []int {
	cur := make([]int, len(piece))
	for i := 0; i < len(piece); i++ {
		cur[i] = int(piece[i])
	}
	for len(cur) >= 2 {
		bestRank := -1
		for i := 0; i+1 < len(cur); i++ {
			if r, ok := m.ranks[Pair{cur[i], cur[i+1]}]; ok && (bestRank < 0 || r < bestRank) {
				bestRank = r
			}
		}
		if bestRank < 0 {
			break
		}
		rule := m.merges[bestRank]
		cur = mergeAll(cur, Pair{rule.Left, rule.Right}, rule.NewID)
	}
	return append(ids, cur...)
}
