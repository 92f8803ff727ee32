package dotprint

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wbrown/dotprint/internal/logging"
)

func feed(p Preprocessor, in []byte) []string {
	l := &recordingLayout{}
	for _, b := range in {
		p.Process(l, b)
	}
	return l.calls
}

func TestPlainPreprocessor(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(log.New(&buf, "", 0))
	got := feed(p, []byte("a\r\nb\fc\x07"))
	want := []string{
		"append('a')",
		"newLine",
		"append('b')",
		"newPage",
		"append('c')",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Calls mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "0x0d") || !strings.Contains(buf.String(), "0x07") {
		t.Errorf("Expected diagnostics for CR and BEL, got %q", buf.String())
	}
}

func TestCRLFPreprocessor(t *testing.T) {
	p := NewCRLF(logging.Discard())
	got := feed(p, []byte("a\r\nb\n\f\x1b"))
	want := []string{
		"append('a')",
		"carriageReturn",
		"lineFeed",
		"append('b')",
		"lineFeed",
		"newPage",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Calls mismatch (-want +got):\n%s", diff)
	}
}

func TestEpsonPreprocessor(t *testing.T) {
	condensed := fmt.Sprintf("stretchFont(%g,1)", StandardCPI/CondensedCPI)
	testCases := map[string]struct {
		in   []byte
		want []string
	}{
		"printable bytes": {
			in:   []byte("abc"),
			want: []string{"append('a')", "append('b')", "append('c')"},
		},
		"carriage return": {
			in:   []byte{CR},
			want: []string{"carriageReturn"},
		},
		"line feed": {
			in:   []byte{LF},
			want: []string{"lineFeed"},
		},
		"form feed": {
			in:   []byte{FF},
			want: []string{"newPage"},
		},
		"condensed": {
			in:   []byte{SI, 'a', DC2},
			want: []string{condensed, "append('a')", "stretchFont(1,1)"},
		},
		"expanded cancelled by DC4": {
			in:   []byte{SO, 'a', DC4, 'b'},
			want: []string{"stretchFont(2,1)", "append('a')", "stretchFont(1,1)", "append('b')"},
		},
		"expanded lasts one line": {
			in:   []byte{SO, 'a', LF, 'b', LF},
			want: []string{"stretchFont(2,1)", "append('a')", "stretchFont(1,1)", "lineFeed", "append('b')", "lineFeed"},
		},
		"condensed survives line feed": {
			in:   []byte{SI, LF},
			want: []string{condensed, "lineFeed"},
		},
		"other controls print": {
			in:   []byte{0x07, HT, 0x00},
			want: []string{"append('\\a')", "append('\\t')", "append('\\x00')"},
		},
		"bold and italic": {
			in:   []byte{ESC, 'E', ESC, '4', 'x', ESC, 'F', ESC, '5'},
			want: []string{"weight(1)", "slant(1)", "append('x')", "weight(0)", "slant(0)"},
		},
		"one byte parameters are skipped": {
			in:   []byte{ESC, '-', 1, ESC, '3', 30, ESC, 'x', 1, 'a'},
			want: []string{"append('a')"},
		},
		"initialize is a no-op": {
			in:   []byte{ESC, '@', 'a'},
			want: []string{"append('a')"},
		},
		"tab stops run to NUL": {
			in:   []byte{ESC, 'D', 8, 16, 24, 0, 'a'},
			want: []string{"append('a')"},
		},
		"unknown escape returns to normal": {
			in:   []byte{ESC, 'Q', 'a'},
			want: []string{"append('a')"},
		},
		"bit image payload is consumed": {
			// Two columns of three bytes, payload bytes look like text.
			in:   []byte{ESC, '*', 39, 2, 0, 'A', 'B', 'C', 'D', 'E', 'F', 'g'},
			want: []string{"append('g')"},
		},
		"empty bit image": {
			in:   []byte{ESC, '*', 39, 0, 0, 'g'},
			want: []string{"append('g')"},
		},
		"truncated escape": {
			in:   []byte{'a', ESC, '*', 0, 10, 0, 'x'},
			want: []string{"append('a')"},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := feed(NewEpson(logging.Discard()), tc.in)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEpsonStates(t *testing.T) {
	p := NewEpson(logging.Discard())
	l := &recordingLayout{}

	p.Process(l, SI)
	if in, _, mode := p.State(); in != StateNormal || mode != FontSizeCondensed {
		t.Errorf("Expected normal input and condensed mode, got %v %v", in, mode)
	}
	p.Process(l, ESC)
	if in, esc, _ := p.State(); in != StateEscape || esc != EscapeEntered {
		t.Errorf("Expected escape entered, got %v %v", in, esc)
	}
	p.Process(l, 'D')
	if _, esc, _ := p.State(); esc != EscapeSetTabWidth {
		t.Errorf("Expected tab width state, got %v", esc)
	}
	p.Process(l, 0)
	if in, _, _ := p.State(); in != StateNormal {
		t.Errorf("Expected normal input after NUL, got %v", in)
	}
}

func TestEpsonBitImageLength(t *testing.T) {
	// 300 columns: nL=44, nH=1.
	in := append([]byte{ESC, '*', 33, 44, 1}, bytes.Repeat([]byte{0xFF}, 900)...)
	in = append(in, 'z')
	got := feed(NewEpson(logging.Discard()), in)
	if diff := cmp.Diff([]string{"append('z')"}, got); diff != "" {
		t.Errorf("Calls mismatch (-want +got):\n%s", diff)
	}
}

func TestEpsonEmptyBitImage(t *testing.T) {
	got := feed(NewEpson(logging.Discard()), []byte{ESC, '*', 0, 0, 0, 'z'})
	if diff := cmp.Diff([]string{"append('z')"}, got); diff != "" {
		t.Errorf("Calls mismatch (-want +got):\n%s", diff)
	}
}

func TestEpsonUnknownEscapeIsLogged(t *testing.T) {
	var buf bytes.Buffer
	feed(NewEpson(log.New(&buf, "", 0)), []byte{ESC, 'Q'})
	if !strings.Contains(buf.String(), "unknown escape ESC 0x51") {
		t.Errorf("Expected unknown escape diagnostic, got %q", buf.String())
	}
}

func TestGraphicsStateAssembly(t *testing.T) {
	var g GraphicsState
	for _, b := range []byte{32, 1, 0} {
		g.feed(b)
	}
	if g.Mode != 32 || g.Columns != 1 || g.Done() {
		t.Fatalf("Unexpected header state %+v", g)
	}
	g.feed(0x12)
	g.feed(0x34)
	if g.column != 0x123400 {
		t.Errorf("Expected partial column 0x123400, got %#x", g.column)
	}
	g.feed(0x56)
	if !g.Done() {
		t.Error("Expected assembly to be done after one column")
	}
}

func TestPreprocessorRegistry(t *testing.T) {
	if DefaultPreprocessor() != "simple" {
		t.Errorf("Expected simple as default, got %q", DefaultPreprocessor())
	}
	for name, want := range map[string]any{
		"simple": &Plain{},
		"crlf":   &CRLF{},
		"EPSON":  &Epson{},
	} {
		p, err := NewPreprocessor(name, logging.Discard())
		if err != nil {
			t.Fatalf("NewPreprocessor(%q) failed: %v", name, err)
		}
		if fmt.Sprintf("%T", p) != fmt.Sprintf("%T", want) {
			t.Errorf("NewPreprocessor(%q) = %T, want %T", name, p, want)
		}
	}
	if _, err := NewPreprocessor("pcl", nil); !errors.Is(err, ErrUnknownPreprocessor) {
		t.Errorf("Expected ErrUnknownPreprocessor, got %v", err)
	}
	names := PreprocessorNames()
	if len(names) != 3 || !strings.HasSuffix(names[0], "[default]") {
		t.Errorf("Unexpected listing %v", names)
	}
}

func TestPreprocessorsKeepSeparateState(t *testing.T) {
	a, _ := NewPreprocessor("epson", logging.Discard())
	b, _ := NewPreprocessor("epson", logging.Discard())
	feed(a, []byte{ESC})
	got := feed(b, []byte("x"))
	if diff := cmp.Diff([]string{"append('x')"}, got); diff != "" {
		t.Errorf("Calls mismatch (-want +got):\n%s", diff)
	}
}
