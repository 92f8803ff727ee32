package codepage

import (
	"bufio"
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

//go:embed tables/*.trans
var tableFS embed.FS

// ErrTableParse is matched by every error describing a malformed table line.
var ErrTableParse = errors.New("codepage table parse error")

// TableParseError reports a malformed line in a translation table.
type TableParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *TableParseError) Error() string {
	return fmt.Sprintf("codepage table line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Is makes errors.Is(err, ErrTableParse) hold for any TableParseError.
func (e *TableParseError) Is(target error) bool {
	return target == ErrTableParse
}

// Table translates bytes through an explicit byte to codepoint map.
type Table struct {
	name    string
	entries map[byte]rune
	logger  *log.Logger
}

// LoadTable builds a Table from a table file. Tables shipped with the
// package (see Tables) are found by bare name; anything else is read from
// the filesystem. A missing file yields an error matching fs.ErrNotExist.
func LoadTable(name string, opts ...Option) (*Table, error) {
	// First, try the VFS.
	data, vfsErr := tableFS.ReadFile("tables/" + name + ".trans")
	if vfsErr == nil {
		return ParseTable(bytes.NewReader(data), name, opts...)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open codepage table: %w", err)
	}
	defer f.Close()
	return ParseTable(f, name, opts...)
}

// ParseTable reads table lines of the form
//
//	<hex byte> U+<hex codepoint> [# comment]
//
// Blank and comment-only lines are skipped.
func ParseTable(r io.Reader, name string, opts ...Option) (*Table, error) {
	o := newOptions(opts)
	t := &Table{
		name:    name,
		entries: make(map[byte]rune),
		logger:  o.logger,
	}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		b, cp, err := parseTableLine(text)
		if err != nil {
			return nil, &TableParseError{Line: lineNo, Text: text, Reason: err.Error()}
		}
		t.entries[b] = cp
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read codepage table %s: %w", name, err)
	}
	return t, nil
}

func parseTableLine(text string) (byte, rune, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return 0, 0, errors.New("expected byte and codepoint")
	}

	hexByte := strings.TrimPrefix(strings.TrimPrefix(fields[0], "0x"), "0X")
	b, err := strconv.ParseUint(hexByte, 16, 32)
	if err != nil {
		return 0, 0, errors.New("byte value is not hexadecimal")
	}
	if b > 0xFF {
		return 0, 0, errors.New("byte value too high")
	}

	if !strings.HasPrefix(fields[1], "U+") {
		return 0, 0, errors.New("codepoint lacks U+ prefix")
	}
	cp, err := strconv.ParseUint(fields[1][2:], 16, 32)
	if err != nil || !utf8.ValidRune(rune(cp)) {
		return 0, 0, errors.New("codepoint is not a valid hexadecimal scalar value")
	}
	return byte(b), rune(cp), nil
}

// Translate implements Translator.
func (t *Table) Translate(b byte) (rune, bool) {
	if r, ok := t.entries[b]; ok {
		return r, true
	}
	t.logger.Printf("WARN: table %s: dropping unknown byte 0x%02x", t.name, b)
	return 0, false
}

// Len returns the number of mapped bytes.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the byte to codepoint map.
func (t *Table) Entries() map[byte]rune {
	m := make(map[byte]rune, len(t.entries))
	for b, r := range t.entries {
		m[b] = r
	}
	return m
}

// Tables lists the names of the tables embedded in the package.
func Tables() []string {
	dir, err := tableFS.ReadDir("tables")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(dir))
	for _, e := range dir {
		names = append(names, strings.TrimSuffix(e.Name(), ".trans"))
	}
	return names
}

// WriteTable writes entries in table file format, ordered by byte value.
func WriteTable(w io.Writer, header string, entries map[byte]rune) error {
	bw := bufio.NewWriter(w)
	if header != "" {
		for _, line := range strings.Split(header, "\n") {
			fmt.Fprintf(bw, "# %s\n", line)
		}
	}
	for i := 0; i < 256; i++ {
		r, ok := entries[byte(i)]
		if !ok {
			continue
		}
		fmt.Fprintf(bw, "%02X U+%04X\n", i, r)
	}
	return bw.Flush()
}
