package bpe

import (
	"github.com/emirpasic/gods/v2/trees/binaryheap"
)

// TrainConfig carries the optional training knobs. The zero value trains a
// byte-level model silently.
type TrainConfig struct {
	// Splitter pre-tokenizes the corpus. nil means ByteLevel.
	Splitter Splitter
	// Progress, when non-nil, is called after every learned merge with the
	// 1-based step, the target merge count, the new rule and the pair count
	// that won the step.
	Progress func(step, total int, rule MergeRule, count int)
}

// Train learns vocabSize-256 merge rules from text using byte-level
// pre-tokenization. See TrainWithConfig.
func Train(text string, vocabSize int) (*Model, error) {
	return TrainWithConfig(text, vocabSize, TrainConfig{})
}

// candidate is one queue entry: a pair and the count it had when pushed.
// Merges rewrite the corpus underneath the queue, so an entry is validated
// against the live totals when popped and re-queued if its count drifted.
type candidate struct {
	pair  Pair
	count int
}

// compareCandidates orders the queue by count, highest first, then by the
// numerically smallest pair. This is the deterministic tie-break that makes
// training reproducible.
func compareCandidates(a, b *candidate) int {
	if a.count != b.count {
		if a.count > b.count {
			return -1
		}
		return 1
	}
	if a.pair != b.pair {
		if a.pair.less(b.pair) {
			return -1
		}
		return 1
	}
	return 0
}

// TrainWithConfig learns up to vocabSize-256 merge rules from text. Each
// iteration merges the highest-count adjacent pair, rewrites only the pieces
// that contain it, and adjusts the pair counts incrementally from the
// rewrite deltas. Training stops early once no pair occurs at least twice.
//
// A vocabSize of 256 or less yields the base byte vocabulary with no merges.
// An empty corpus fails with ErrEmptyCorpus.
func TrainWithConfig(text string, vocabSize int, cfg TrainConfig) (*Model, error) {
	splitter := cfg.Splitter
	if splitter == nil {
		splitter = ByteLevel{}
	}
	if text == "" {
		return nil, ErrEmptyCorpus
	}
	pieces, err := splitter.Split(text)
	if err != nil {
		return nil, err
	}
	if len(pieces) == 0 {
		return nil, ErrEmptyCorpus
	}
	if vocabSize <= BaseVocabSize {
		return newModel(splitter, nil)
	}

	corpus := make([][]int, len(pieces))
	for i, piece := range pieces {
		ids := make([]int, len(piece))
		for j := 0; j < len(piece); j++ {
			ids[j] = int(piece[j])
		}
		corpus[i] = ids
	}

	counts, where := countPairs(corpus)
	queue := binaryheap.NewWith[*candidate](compareCandidates)
	for pair, count := range counts {
		if count >= 2 {
			queue.Push(&candidate{pair: pair, count: count})
		}
	}

	total := vocabSize - BaseVocabSize
	merges := make([]MergeRule, 0, total)
	learned := make(map[Pair]struct{}, total)

	for len(merges) < total {
		top, ok := queue.Pop()
		if !ok {
			break
		}
		if _, done := learned[top.pair]; done {
			continue
		}
		if cur := counts[top.pair]; cur != top.count {
			// Stale entry: the pair's count changed since it was pushed.
			if cur >= 2 {
				top.count = cur
				queue.Push(top)
			}
			continue
		}
		if top.count < 2 {
			break
		}

		rule := MergeRule{Left: top.pair.Left, Right: top.pair.Right, NewID: BaseVocabSize + len(merges)}
		merges = append(merges, rule)
		learned[top.pair] = struct{}{}

		created := make(map[Pair]struct{})
		for idx := range where[top.pair] {
			rewritten, deltas := mergePiece(corpus[idx], top.pair, rule.NewID)
			corpus[idx] = rewritten
			for _, d := range deltas {
				counts[d.pair] += d.delta
				if d.delta > 0 {
					set := where[d.pair]
					if set == nil {
						set = make(map[int]struct{})
						where[d.pair] = set
					}
					set[idx] = struct{}{}
					created[d.pair] = struct{}{}
				}
			}
		}
		for pair := range created {
			if count := counts[pair]; count >= 2 {
				queue.Push(&candidate{pair: pair, count: count})
			}
		}

		if cfg.Progress != nil {
			cfg.Progress(len(merges), total, rule, top.count)
		}
	}

	return newModel(splitter, merges)
}
