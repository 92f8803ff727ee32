package cli

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wbrown/dotprint"
	"github.com/wbrown/dotprint/codepage"
)

func parse(t *testing.T, args ...string) *RenderFlags {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var f RenderFlags
	f.Register(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) failed: %v", args, err)
	}
	return &f
}

func TestDefaultsMatchConfig(t *testing.T) {
	cfg, err := parse(t).Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if diff := cmp.Diff(dotprint.DefaultConfig(), cfg); diff != "" {
		t.Errorf("Default flags mismatch (-want +got):\n%s", diff)
	}
}

func TestShortAndLongNames(t *testing.T) {
	short, err := parse(t, "-p", "letter", "-l", "-P", "epson", "-T", "cp850",
		"-s", "9", "-m", "5,10", "-g").Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	long, err := parse(t, "--page", "letter", "--landscape", "--preprocessor", "epson",
		"--encoding", "cp850", "--font-size", "9", "--margins", "5,10", "--gray").Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if diff := cmp.Diff(short, long); diff != "" {
		t.Errorf("Short and long flags differ (-short +long):\n%s", diff)
	}
	if short.PageSize != dotprint.PageSizes[3].Size || !short.Landscape || short.Encoding != "cp850" {
		t.Errorf("Unexpected config %+v", short)
	}
}

func TestConfigErrors(t *testing.T) {
	testCases := []struct {
		name  string
		args  []string
		usage bool
	}{
		{"both translators", []string{"-t", "cp437", "-T", "cp850"}, true},
		{"unknown page", []string{"-p", "B5"}, false},
		{"bad margins", []string{"-m", "1,2,3,4,5"}, false},
		{"unknown encoding", []string{"-T", "klingon"}, false},
		{"zero font size", []string{"-s", "0"}, false},
		{"zero dpi", []string{"-r", "0"}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse(t, tc.args...).Config()
			if err == nil {
				t.Fatal("Expected an error")
			}
			if errors.Is(err, ErrUsage) != tc.usage {
				t.Errorf("errors.Is(%v, ErrUsage) = %v, want %v", err, !tc.usage, tc.usage)
			}
		})
	}
}

func TestIntrospect(t *testing.T) {
	testCases := []struct {
		args []string
		want []string
	}{
		{[]string{"-p", "list"}, dotprint.PageSizeNames()},
		{[]string{"-P", "LIST"}, dotprint.PreprocessorNames()},
		{[]string{"-t", "list"}, codepage.Tables()},
		{[]string{"-T", "list"}, codepage.Encodings()},
		{[]string{"-m", "formats"}, dotprint.MarginFormats},
	}
	for _, tc := range testCases {
		var buf bytes.Buffer
		if !parse(t, tc.args...).Introspect(&buf) {
			t.Errorf("Introspect(%v) printed nothing", tc.args)
			continue
		}
		got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Introspect(%v) mismatch (-want +got):\n%s", tc.args, diff)
		}
	}

	if parse(t).Introspect(io.Discard) {
		t.Error("Introspect with default flags should print nothing")
	}
}
