// Command detok decodes token ids back into text using a trained model.
//
//	detok -m model.stk [ids.txt]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ha1tch/subtok/pkg/bpe"
)

var (
	modelPath = flag.String("m", "", "model file (required)")
	help      = flag.Bool("h", false, "display this help")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}
	if *modelPath == "" {
		fmt.Fprintln(os.Stderr, "detok: missing -m model file")
		fmt.Fprintln(os.Stderr, "Try 'detok -h' for more information.")
		os.Exit(1)
	}

	f, err := os.Open(*modelPath)
	if err != nil {
		fatal("%v", err)
	}
	model, err := bpe.Load(f)
	f.Close()
	if err != nil {
		fatal("load %s: %v", *modelPath, err)
	}

	var input []byte
	switch flag.NArg() {
	case 0:
		input, err = io.ReadAll(os.Stdin)
	case 1:
		input, err = os.ReadFile(flag.Arg(0))
	default:
		fatal("too many arguments")
	}
	if err != nil {
		fatal("read input: %v", err)
	}

	ids, err := parseIDs(string(input))
	if err != nil {
		fatal("%v", err)
	}
	text, err := model.Decode(ids)
	if err != nil {
		fatal("decode: %v", err)
	}
	fmt.Print(text)
}

// parseIDs reads whitespace-separated token ids.
func parseIDs(input string) ([]int, error) {
	fields := strings.Fields(input)
	ids := make([]int, 0, len(fields))
	for _, field := range fields {
		id, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("bad token id %q", field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: detok -m model.stk [ids.txt]

Decode whitespace-separated token ids back into text with a trained BPE
model. Ids are read from the named file, or from stdin when no file is
given. The decoded text is written to stdout.

Options:
  -m FILE   model file written by mkvocab (required)
  -h        display this help
`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "detok: "+format+"\n", args...)
	os.Exit(1)
}
