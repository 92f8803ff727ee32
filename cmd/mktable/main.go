// Command mktable writes a codepage translation table for a single-byte
// character set, in the format read by codepage.LoadTable.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"unicode/utf8"

	"github.com/wbrown/dotprint/codepage"
	"golang.org/x/text/encoding"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mktable", flag.ContinueOnError)
	fs.SetOutput(stderr)
	name := fs.String("encoding", "", "character set to tabulate, e.g. CP850 (required)")
	output := fs.String("output", "", "table file to write; '-' for stdout")
	list := fs.Bool("list", false, "list the known character sets")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *list {
		for _, n := range codepage.Encodings() {
			fmt.Fprintln(stdout, n)
		}
		return 0
	}
	if *name == "" || *output == "" {
		fmt.Fprintln(stderr, "Usage: mktable -encoding NAME -output FILE")
		fs.PrintDefaults()
		return 2
	}

	enc, err := codepage.LookupEncoding(*name)
	if err != nil {
		log.New(stderr, "", 0).Printf("ERROR: %v", err)
		return 1
	}
	entries := tabulate(enc)

	w := stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			log.New(stderr, "", 0).Printf("ERROR: failed to create table: %v", err)
			return 1
		}
		defer f.Close()
		w = f
	}
	header := fmt.Sprintf("%s\nByte to Unicode codepoint, %d entries.", *name, len(entries))
	if err := codepage.WriteTable(w, header, entries); err != nil {
		log.New(stderr, "", 0).Printf("ERROR: failed to write table: %v", err)
		return 1
	}
	return 0
}

// tabulate decodes every printable byte. Control bytes and bytes that do
// not decode to exactly one codepoint are left out.
func tabulate(enc encoding.Encoding) map[byte]rune {
	entries := make(map[byte]rune)
	dec := enc.NewDecoder()
	for i := 0x20; i < 0x100; i++ {
		if i == 0x7F {
			continue
		}
		out, err := dec.Bytes([]byte{byte(i)})
		if err != nil {
			continue
		}
		r, size := utf8.DecodeRune(out)
		if r == utf8.RuneError || size != len(out) {
			continue
		}
		entries[byte(i)] = r
	}
	return entries
}
