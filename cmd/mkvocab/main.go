// Command mkvocab trains a BPE vocabulary from a text corpus.
//
//	mkvocab [-size N] [-gpt2|-gpt4|-pattern REGEX] [-v] -o model.stk [corpus.txt]
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ha1tch/subtok/pkg/bpe"
)

var (
	vocabSize = flag.Int("size", 512, "target vocabulary size (256 raw bytes + merges)")
	gpt2      = flag.Bool("gpt2", false, "split with the GPT-2 pattern")
	gpt4      = flag.Bool("gpt4", false, "split with the GPT-4 pattern")
	pattern   = flag.String("pattern", "", "split with a custom regex pattern")
	output    = flag.String("o", "", "output model file (required)")
	verbose   = flag.Bool("v", false, "report each learned merge on stderr")
	help      = flag.Bool("h", false, "display this help")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}
	if *output == "" {
		fmt.Fprintln(os.Stderr, "mkvocab: missing -o output file")
		fmt.Fprintln(os.Stderr, "Try 'mkvocab -h' for more information.")
		os.Exit(1)
	}

	splitter, err := chooseSplitter()
	if err != nil {
		fatal("%v", err)
	}

	var corpus []byte
	switch flag.NArg() {
	case 0:
		corpus, err = io.ReadAll(os.Stdin)
	case 1:
		corpus, err = os.ReadFile(flag.Arg(0))
	default:
		fatal("too many arguments")
	}
	if err != nil {
		fatal("read corpus: %v", err)
	}

	cfg := bpe.TrainConfig{Splitter: splitter}
	if *verbose {
		cfg.Progress = func(step, total int, rule bpe.MergeRule, count int) {
			fmt.Fprintf(os.Stderr, "merge %d/%d: (%d, %d) -> %d (count %d)\n",
				step, total, rule.Left, rule.Right, rule.NewID, count)
		}
	}

	model, err := bpe.TrainWithConfig(string(corpus), *vocabSize, cfg)
	if err != nil {
		fatal("train: %v", err)
	}

	var buf bytes.Buffer
	if err := model.Save(&buf); err != nil {
		fatal("save: %v", err)
	}
	if err := os.WriteFile(*output, buf.Bytes(), 0644); err != nil {
		fatal("write %s: %v", *output, err)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "wrote %s: vocab %d, %d merges\n",
			*output, model.VocabSize(), len(model.Merges()))
	}
}

func chooseSplitter() (bpe.Splitter, error) {
	chosen := 0
	for _, set := range []bool{*gpt2, *gpt4, *pattern != ""} {
		if set {
			chosen++
		}
	}
	if chosen > 1 {
		return nil, fmt.Errorf("at most one of -gpt2, -gpt4, -pattern")
	}
	switch {
	case *gpt2:
		return bpe.NewRegexSplitter(bpe.GPT2SplitPattern)
	case *gpt4:
		return bpe.NewRegexSplitter(bpe.GPT4SplitPattern)
	case *pattern != "":
		return bpe.NewRegexSplitter(*pattern)
	}
	return bpe.ByteLevel{}, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: mkvocab [-size N] [-gpt2|-gpt4|-pattern REGEX] [-v] -o model.stk [corpus.txt]

Train a BPE vocabulary from a text corpus and write it as a model file.
The corpus is read from the named file, or from stdin when no file is given.

Options:
  -size N     target vocabulary size, 256 raw bytes plus merges (default 512)
  -gpt2       pre-tokenize with the GPT-2 split pattern
  -gpt4       pre-tokenize with the GPT-4 split pattern
  -pattern R  pre-tokenize with a custom regex pattern
  -o FILE     output model file (required)
  -v          report each learned merge on stderr
  -h          display this help

Without a split option the whole corpus is one piece and merges may
cross word boundaries.
`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "mkvocab: "+format+"\n", args...)
	os.Exit(1)
}
