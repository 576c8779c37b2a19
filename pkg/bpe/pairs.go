package bpe

// Pair is an adjacent (left, right) id occurrence within one piece.
type Pair struct {
	Left, Right int
}

// MergeRule records that the pair (Left, Right) was merged into NewID.
// The rule's rank is NewID - BaseVocabSize.
type MergeRule struct {
	Left, Right, NewID int
}

// less orders pairs numerically, left id first. Equal-count training
// candidates are broken toward the smaller pair so training is reproducible.
func (p Pair) less(q Pair) bool {
	if p.Left != q.Left {
		return p.Left < q.Left
	}
	return p.Right < q.Right
}

// countPairs counts every adjacent in-piece pair across the corpus and
// records which pieces each pair occurs in. Pairs never span pieces.
func countPairs(corpus [][]int) (map[Pair]int, map[Pair]map[int]struct{}) {
	counts := make(map[Pair]int)
	where := make(map[Pair]map[int]struct{})
	for idx, ids := range corpus {
		for i := 0; i+1 < len(ids); i++ {
			p := Pair{ids[i], ids[i+1]}
			counts[p]++
			set := where[p]
			if set == nil {
				set = make(map[int]struct{})
				where[p] = set
			}
			set[idx] = struct{}{}
		}
	}
	return counts, where
}

// pairDelta is one pair-count adjustment produced by a piece rewrite.
type pairDelta struct {
	pair  Pair
	delta int
}

// mergePiece rewrites every occurrence of pair in ids with newID, scanning
// left to right, greedy and non-overlapping. It also returns the count
// deltas for the pairs destroyed and created around each merge site, so the
// trainer can update its totals without recounting the whole corpus.
func mergePiece(ids []int, pair Pair, newID int) ([]int, []pairDelta) {
	out := make([]int, 0, len(ids))
	var deltas []pairDelta
	for i := 0; i < len(ids); {
		if i+1 < len(ids) && ids[i] == pair.Left && ids[i+1] == pair.Right {
			if len(out) > 0 {
				prev := out[len(out)-1]
				deltas = append(deltas,
					pairDelta{Pair{prev, pair.Left}, -1},
					pairDelta{Pair{prev, newID}, +1})
			}
			deltas = append(deltas, pairDelta{pair, -1})
			if i+2 < len(ids) {
				next := ids[i+2]
				deltas = append(deltas,
					pairDelta{Pair{pair.Right, next}, -1},
					pairDelta{Pair{newID, next}, +1})
			}
			out = append(out, newID)
			i += 2
		} else {
			out = append(out, ids[i])
			i++
		}
	}
	return out, deltas
}

// mergeAll rewrites the pair in ids without tracking deltas. Encode uses it
// when replaying merges in rank order.
func mergeAll(ids []int, pair Pair, newID int) []int {
	out := make([]int, 0, len(ids))
	for i := 0; i < len(ids); {
		if i+1 < len(ids) && ids[i] == pair.Left && ids[i+1] == pair.Right {
			out = append(out, newID)
			i += 2
		} else {
			out = append(out, ids[i])
			i++
		}
	}
	return out
}
