// Package bpe implements byte-level Byte Pair Encoding tokenization.
//
// A vocabulary is learned from raw text by iteratively merging the most
// frequent adjacent symbol pair (Train), then applied to new text in training
// rank order (Model.Encode). Token ids 0-255 are the raw bytes, ids 256 and
// up are learned merges, and special tokens occupy a disjoint range strictly
// above the trained vocabulary. Encoding is reversible: Decode recovers the
// original text from any encoded sequence.
package bpe

import (
	"errors"
	"fmt"
)

// BaseVocabSize is the number of fixed raw-byte tokens. Ids below it are
// never relearned.
const BaseVocabSize = 256

var (
	// ErrEmptyCorpus is returned by Train when the training text is empty.
	ErrEmptyCorpus = errors.New("bpe: empty training corpus")

	// ErrCorruptModel is returned by Load when a model file is malformed.
	ErrCorruptModel = errors.New("bpe: corrupt model")

	// ErrUnknownToken is returned by Decode for an id outside the trained
	// vocabulary and the special-token table.
	ErrUnknownToken = errors.New("bpe: unknown token id")
)

// Model is a trained vocabulary: the learned merge rules in rank order, the
// byte expansion of every token id, and the pre-tokenizer the model was
// trained with. All of that is immutable after construction. The
// special-token table is the one mutable part; it is owned by the instance
// and changed only through AddSpecialTokens.
//
// Encode and Decode never mutate the model, so concurrent calls on
// independent inputs need no locking once setup is complete.
type Model struct {
	splitter Splitter
	merges   []MergeRule  // merges[i].NewID == BaseVocabSize+i
	ranks    map[Pair]int // pair -> rank
	vocab    [][]byte     // id -> byte expansion

	specials    map[string]int // literal -> id
	specialByID map[int]string
}

// newModel builds a model from merge rules sorted by NewID. Rules produced
// by training satisfy the id sequencing by construction; rules read from a
// model file must prove it here.
func newModel(splitter Splitter, merges []MergeRule) (*Model, error) {
	m := &Model{
		splitter:    splitter,
		merges:      merges,
		ranks:       make(map[Pair]int, len(merges)),
		vocab:       make([][]byte, BaseVocabSize, BaseVocabSize+len(merges)),
		specials:    make(map[string]int),
		specialByID: make(map[int]string),
	}
	for i := 0; i < BaseVocabSize; i++ {
		m.vocab[i] = []byte{byte(i)}
	}
	for i, rule := range merges {
		want := BaseVocabSize + i
		if rule.NewID != want {
			return nil, fmt.Errorf("%w: merge id %d out of sequence (want %d)", ErrCorruptModel, rule.NewID, want)
		}
		if rule.Left < 0 || rule.Left >= rule.NewID || rule.Right < 0 || rule.Right >= rule.NewID {
			return nil, fmt.Errorf("%w: merge %d references undefined id", ErrCorruptModel, rule.NewID)
		}
		pair := Pair{rule.Left, rule.Right}
		if _, dup := m.ranks[pair]; dup {
			return nil, fmt.Errorf("%w: pair (%d, %d) merged twice", ErrCorruptModel, rule.Left, rule.Right)
		}
		expansion := make([]byte, 0, len(m.vocab[rule.Left])+len(m.vocab[rule.Right]))
		expansion = append(expansion, m.vocab[rule.Left]...)
		expansion = append(expansion, m.vocab[rule.Right]...)
		m.vocab = append(m.vocab, expansion)
		m.ranks[pair] = i
	}
	return m, nil
}

// VocabSize returns the number of trained token ids: the 256 raw bytes plus
// one per merge rule. Special tokens are not counted.
func (m *Model) VocabSize() int {
	return len(m.vocab)
}

// TokenBytes returns the byte expansion of a trained token id.
func (m *Model) TokenBytes(id int) ([]byte, bool) {
	if id < 0 || id >= len(m.vocab) {
		return nil, false
	}
	out := make([]byte, len(m.vocab[id]))
	copy(out, m.vocab[id])
	return out, true
}

// Rank returns the order in which the pair (left, right) was learned, lower
// meaning earlier, and whether the pair was merged at all. Encode applies
// merges in exactly this order.
func (m *Model) Rank(left, right int) (int, bool) {
	r, ok := m.ranks[Pair{left, right}]
	return r, ok
}

// Merges returns a copy of the learned merge rules in rank order.
func (m *Model) Merges() []MergeRule {
	out := make([]MergeRule, len(m.merges))
	copy(out, m.merges)
	return out
}

// Splitter returns the pre-tokenizer the model was trained with.
func (m *Model) Splitter() Splitter {
	return m.splitter
}

// AddSpecialTokens registers literal strings mapped to ids. Every id must
// lie strictly above the trained vocabulary, and neither an id nor a literal
// may be bound twice with different partners. On error nothing is added.
func (m *Model) AddSpecialTokens(tokens map[string]int) error {
	staged := make(map[int]string, len(tokens))
	for lit, id := range tokens {
		if lit == "" {
			return fmt.Errorf("bpe: empty special token string")
		}
		if id < len(m.vocab) {
			return fmt.Errorf("bpe: special token id %d overlaps trained vocabulary (size %d)", id, len(m.vocab))
		}
		if prev, ok := m.specialByID[id]; ok && prev != lit {
			return fmt.Errorf("bpe: special token id %d already bound to %q", id, prev)
		}
		if prev, ok := staged[id]; ok && prev != lit {
			return fmt.Errorf("bpe: special token id %d bound to both %q and %q", id, prev, lit)
		}
		if prevID, ok := m.specials[lit]; ok && prevID != id {
			return fmt.Errorf("bpe: special token %q already bound to id %d", lit, prevID)
		}
		staged[id] = lit
	}
	for id, lit := range staged {
		m.specials[lit] = id
		m.specialByID[id] = lit
	}
	return nil
}

// SpecialTokens returns a copy of the special-token table.
func (m *Model) SpecialTokens() map[string]int {
	out := make(map[string]int, len(m.specials))
	for lit, id := range m.specials {
		out[lit] = id
	}
	return out
}
