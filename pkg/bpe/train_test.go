package bpe

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestTrainReferenceCorpus(t *testing.T) {
	m, err := Train("aaabdaaabac", 259)
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	wantMerges := []MergeRule{
		{97, 97, 256},
		{97, 98, 257},
		{256, 257, 258},
	}
	if got := m.Merges(); !reflect.DeepEqual(got, wantMerges) {
		t.Errorf("merges: got %v, want %v", got, wantMerges)
	}
	if m.VocabSize() != 259 {
		t.Errorf("vocab size: got %d, want 259", m.VocabSize())
	}

	ids, err := m.Encode("aaabdaaabac", NoSpecials())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []int{258, 100, 258, 97, 99}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("encode: got %v, want %v", ids, want)
	}
}

func TestTrainBaseVocab(t *testing.T) {
	for _, size := range []int{0, 100, 256} {
		m, err := Train("some text", size)
		if err != nil {
			t.Fatalf("train size %d: %v", size, err)
		}
		if m.VocabSize() != BaseVocabSize {
			t.Errorf("size %d: got vocab %d, want %d", size, m.VocabSize(), BaseVocabSize)
		}
		if len(m.Merges()) != 0 {
			t.Errorf("size %d: got %d merges, want 0", size, len(m.Merges()))
		}
	}
}

func TestTrainEmptyCorpus(t *testing.T) {
	if _, err := Train("", 300); !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("got %v, want ErrEmptyCorpus", err)
	}
}

func TestTrainStopsBelowTwo(t *testing.T) {
	// One merge exhausts every repeated pair; training stops early even
	// though the requested vocabulary has room for more.
	m, err := Train("abab", 300)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	want := []MergeRule{{97, 98, 256}}
	if got := m.Merges(); !reflect.DeepEqual(got, want) {
		t.Errorf("merges: got %v, want %v", got, want)
	}
}

func TestTrainTieBreak(t *testing.T) {
	// (97, 98) and (99, 100) both occur twice; the numerically smaller pair
	// must win the first rank.
	m, err := Train("abab cdcd", 300)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	want := []MergeRule{
		{97, 98, 256},
		{99, 100, 257},
	}
	if got := m.Merges(); !reflect.DeepEqual(got, want) {
		t.Errorf("merges: got %v, want %v", got, want)
	}
}

func TestTrainDeterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)
	first, err := Train(text, 300)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	for i := 0; i < 5; i++ {
		m, err := Train(text, 300)
		if err != nil {
			t.Fatalf("train: %v", err)
		}
		if !reflect.DeepEqual(m.Merges(), first.Merges()) {
			t.Fatalf("run %d diverged: got %v, want %v", i, m.Merges(), first.Merges())
		}
	}
}

func TestTrainProgress(t *testing.T) {
	var steps []int
	var rules []MergeRule
	_, err := TrainWithConfig("aaabdaaabac", 259, TrainConfig{
		Progress: func(step, total int, rule MergeRule, count int) {
			if total != 3 {
				t.Errorf("total: got %d, want 3", total)
			}
			if count < 2 {
				t.Errorf("step %d: count %d below 2", step, count)
			}
			steps = append(steps, step)
			rules = append(rules, rule)
		},
	})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if !reflect.DeepEqual(steps, []int{1, 2, 3}) {
		t.Errorf("steps: got %v", steps)
	}
	if rules[0].NewID != 256 || rules[2].NewID != 258 {
		t.Errorf("rules: got %v", rules)
	}
}

func TestTrainRegexBoundary(t *testing.T) {
	// With the GPT-4 pattern "hug hug" splits into "hug" and " hug", so the
	// space never merges into a cross-boundary token. The (h, u) pair still
	// counts twice because counts aggregate across pieces.
	s, err := NewRegexSplitter(GPT4SplitPattern)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	m, err := TrainWithConfig("hug hug", 300, TrainConfig{Splitter: s})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	want := []MergeRule{
		{104, 117, 256},
		{256, 103, 257},
	}
	if got := m.Merges(); !reflect.DeepEqual(got, want) {
		t.Errorf("merges: got %v, want %v", got, want)
	}

	ids, err := m.Encode("hug hug", NoSpecials())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if wantIDs := []int{257, 32, 257}; !reflect.DeepEqual(ids, wantIDs) {
		t.Errorf("encode: got %v, want %v", ids, wantIDs)
	}
}

func BenchmarkTrain(b *testing.B) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200)
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Train(text, 512); err != nil {
			b.Fatal(err)
		}
	}
}
