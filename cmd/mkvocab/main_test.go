package main

import (
	"testing"

	"github.com/ha1tch/subtok/pkg/bpe"
)

func resetSplitterFlags() {
	*gpt2 = false
	*gpt4 = false
	*pattern = ""
}

func TestChooseSplitter(t *testing.T) {
	testCases := []struct {
		name        string
		setup       func()
		wantVariant string
		wantPattern string
	}{
		{
			name:        "default is byte level",
			setup:       func() {},
			wantVariant: bpe.VariantByteLevel,
			wantPattern: "",
		},
		{
			name:        "gpt2",
			setup:       func() { *gpt2 = true },
			wantVariant: bpe.VariantRegex,
			wantPattern: bpe.GPT2SplitPattern,
		},
		{
			name:        "gpt4",
			setup:       func() { *gpt4 = true },
			wantVariant: bpe.VariantRegex,
			wantPattern: bpe.GPT4SplitPattern,
		},
		{
			name:        "custom pattern",
			setup:       func() { *pattern = `\w+|\s+` },
			wantVariant: bpe.VariantRegex,
			wantPattern: `\w+|\s+`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resetSplitterFlags()
			defer resetSplitterFlags()
			tc.setup()

			s, err := chooseSplitter()
			if err != nil {
				t.Fatalf("chooseSplitter: %v", err)
			}
			if s.Variant() != tc.wantVariant {
				t.Errorf("variant: got %q, want %q", s.Variant(), tc.wantVariant)
			}
			if s.Pattern() != tc.wantPattern {
				t.Errorf("pattern: got %q, want %q", s.Pattern(), tc.wantPattern)
			}
		})
	}
}

func TestChooseSplitterConflicts(t *testing.T) {
	testCases := []struct {
		name  string
		setup func()
	}{
		{"gpt2 and gpt4", func() { *gpt2 = true; *gpt4 = true }},
		{"gpt4 and pattern", func() { *gpt4 = true; *pattern = `\w+` }},
		{"invalid custom pattern", func() { *pattern = "(unclosed" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resetSplitterFlags()
			defer resetSplitterFlags()
			tc.setup()

			if _, err := chooseSplitter(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
