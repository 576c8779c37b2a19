// Command entok encodes text into token ids using a trained model.
//
//	entok -m model.stk [-specials all|none|NAME,...] [input.txt]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ha1tch/subtok/pkg/bpe"
)

var (
	modelPath = flag.String("m", "", "model file (required)")
	specials  = flag.String("specials", "none", "special tokens to recognize: all, none, or a comma-separated list")
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
		fmt.Fprintln(os.Stderr, "entok: missing -m model file")
		fmt.Fprintln(os.Stderr, "Try 'entok -h' for more information.")
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

	var text []byte
	switch flag.NArg() {
	case 0:
		text, err = io.ReadAll(os.Stdin)
	case 1:
		text, err = os.ReadFile(flag.Arg(0))
	default:
		fatal("too many arguments")
	}
	if err != nil {
		fatal("read input: %v", err)
	}

	ids, err := model.Encode(string(text), parseSpecials(*specials))
	if err != nil {
		fatal("encode: %v", err)
	}

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = fmt.Sprint(id)
	}
	fmt.Println(strings.Join(out, " "))
}

func parseSpecials(mode string) bpe.Specials {
	switch mode {
	case "all":
		return bpe.AllSpecials()
	case "none", "":
		return bpe.NoSpecials()
	}
	return bpe.SomeSpecials(strings.Split(mode, ",")...)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: entok -m model.stk [-specials all|none|NAME,...] [input.txt]

Encode text into token ids with a trained BPE model. Input is read from
the named file, or from stdin when no file is given. Ids are written to
stdout, space separated, on one line.

Options:
  -m FILE         model file written by mkvocab (required)
  -specials MODE  special tokens to recognize in the input:
                  all, none (default), or a comma-separated list of
                  registered token strings
  -h              display this help
`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "entok: "+format+"\n", args...)
	os.Exit(1)
}
