// Package cli holds the rendering flags shared by the dotprint commands.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/wbrown/dotprint"
	"github.com/wbrown/dotprint/codepage"
)

// ListKeyword asks a flag to print its choices instead of taking a value.
const ListKeyword = "list"

// ErrUsage marks errors in how the command was invoked.
var ErrUsage = errors.New("usage error")

// RenderFlags are the flags that build a dotprint.Config.
type RenderFlags struct {
	Page         string
	Landscape    bool
	Preprocessor string
	Table        string
	Encoding     string
	FontFace     string
	FontSize     float64
	Margins      string
	DPI          float64
	Gray         bool
}

// StringFlag registers a string flag under a short and a long name.
func StringFlag(fs *flag.FlagSet, p *string, short, long, value, usage string) {
	fs.StringVar(p, short, value, usage)
	fs.StringVar(p, long, value, "same as -"+short)
}

// BoolFlag registers a boolean flag under a short and a long name.
func BoolFlag(fs *flag.FlagSet, p *bool, short, long, usage string) {
	fs.BoolVar(p, short, false, usage)
	fs.BoolVar(p, long, false, "same as -"+short)
}

func floatFlag(fs *flag.FlagSet, p *float64, short, long string, value float64, usage string) {
	fs.Float64Var(p, short, value, usage)
	fs.Float64Var(p, long, value, "same as -"+short)
}

// Register adds the rendering flags to fs.
func (f *RenderFlags) Register(fs *flag.FlagSet) {
	def := dotprint.DefaultConfig()
	StringFlag(fs, &f.Page, "p", "page", dotprint.PageSizes[0].Name,
		"page size, or 'list' to show the choices")
	BoolFlag(fs, &f.Landscape, "l", "landscape", "rotate the page")
	StringFlag(fs, &f.Preprocessor, "P", "preprocessor", def.Preprocessor,
		"input preprocessor, or 'list' to show the choices")
	StringFlag(fs, &f.Table, "t", "translator", "",
		"codepage translation table file or embedded table name, or 'list'")
	StringFlag(fs, &f.Encoding, "T", "encoding", "",
		"input character set, e.g. CP850, or 'list'")
	StringFlag(fs, &f.FontFace, "f", "font-face", def.FontFace,
		"font family or path to a TTF file")
	floatFlag(fs, &f.FontSize, "s", "font-size", def.FontSize, "font size in points")
	StringFlag(fs, &f.Margins, "m", "margins", fmt.Sprintf("%g", dotprint.DefaultMarginMM),
		"page margins in millimetres, or 'formats' to show the syntax")
	floatFlag(fs, &f.DPI, "r", "dpi", def.DPI, "resolution of image output")
	BoolFlag(fs, &f.Gray, "g", "gray", "write grayscale images")
}

// Introspect prints the choices of the first flag set to 'list' (or
// 'formats' for margins) and reports whether it printed anything.
func (f *RenderFlags) Introspect(w io.Writer) bool {
	var lines []string
	switch {
	case strings.EqualFold(f.Page, ListKeyword):
		lines = dotprint.PageSizeNames()
	case strings.EqualFold(f.Preprocessor, ListKeyword):
		lines = dotprint.PreprocessorNames()
	case strings.EqualFold(f.Table, ListKeyword):
		lines = codepage.Tables()
	case strings.EqualFold(f.Encoding, ListKeyword):
		lines = codepage.Encodings()
	case strings.EqualFold(f.Margins, "formats"):
		lines = dotprint.MarginFormats
	default:
		return false
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return true
}

// Config validates the flags and builds a rendering configuration.
// Conflicting translators are reported as ErrUsage.
func (f *RenderFlags) Config() (dotprint.Config, error) {
	cfg := dotprint.DefaultConfig()
	if f.Table != "" && f.Encoding != "" {
		return cfg, fmt.Errorf("%w: -t and -T are mutually exclusive", ErrUsage)
	}

	page, err := dotprint.LookupPageSize(f.Page)
	if err != nil {
		return cfg, err
	}
	margins, err := dotprint.ParseMargins(f.Margins)
	if err != nil {
		return cfg, err
	}
	if f.Encoding != "" {
		if _, err := codepage.LookupEncoding(f.Encoding); err != nil {
			return cfg, err
		}
	}
	if f.FontSize <= 0 {
		return cfg, fmt.Errorf("font size must be positive, got %g", f.FontSize)
	}
	if f.DPI <= 0 {
		return cfg, fmt.Errorf("dpi must be positive, got %g", f.DPI)
	}

	cfg.PageSize = page
	cfg.Landscape = f.Landscape
	cfg.Margins = margins
	cfg.Preprocessor = f.Preprocessor
	cfg.Table = f.Table
	cfg.Encoding = f.Encoding
	cfg.FontFace = f.FontFace
	cfg.FontSize = f.FontSize
	cfg.DPI = f.DPI
	cfg.Grayscale = f.Gray
	return cfg, nil
}
