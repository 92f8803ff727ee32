package dotprint

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/wbrown/dotprint/codepage"
	"github.com/wbrown/dotprint/imageutil"
	"github.com/wbrown/dotprint/internal/logging"
)

// ErrConflictingTranslators is returned when both a table and an encoding
// are configured.
var ErrConflictingTranslators = errors.New("translator table and encoding are mutually exclusive")

// Config gathers everything needed to render one document.
type Config struct {
	PageSize     PageSize
	Landscape    bool
	Margins      Margins
	Preprocessor string
	// Table names a translation table file or an embedded table.
	Table string
	// Encoding names a single-byte character set.
	Encoding  string
	FontFace  string
	FontSize  float64
	DPI       float64
	Grayscale bool
	Title     string
}

// DefaultConfig returns A4 portrait, 10 mm margins, the simple
// preprocessor, ASCII input and an 11 point monospaced font.
func DefaultConfig() Config {
	return Config{
		PageSize:     DefaultPageSize(),
		Margins:      DefaultMargins(),
		Preprocessor: DefaultPreprocessor(),
		FontFace:     DefaultFontFace,
		FontSize:     DefaultFontSize,
		DPI:          DefaultDPI,
	}
}

// Page returns the configured page size with orientation applied.
func (c Config) Page() PageSize {
	if c.Landscape {
		return c.PageSize.Landscape()
	}
	return c.PageSize
}

// NewTranslator builds the translator selected by c.
func (c Config) NewTranslator(logger *log.Logger) (codepage.Translator, error) {
	opt := codepage.WithLogger(logger)
	switch {
	case c.Table != "" && c.Encoding != "":
		return nil, ErrConflictingTranslators
	case c.Table != "":
		return codepage.LoadTable(c.Table, opt)
	case c.Encoding != "":
		return codepage.NewCharset(c.Encoding, opt)
	default:
		return codepage.NewASCII(opt), nil
	}
}

// Format is an output document kind.
type Format int

const (
	FormatPDF Format = iota
	FormatImage
	FormatText
)

// FormatFor picks the output format from a file extension. Unknown
// extensions produce PDF.
func FormatFor(path string) Format {
	switch {
	case imageutil.IsImagePath(path):
		return FormatImage
	case strings.EqualFold(filepath.Ext(path), ".txt"):
		return FormatText
	default:
		return FormatPDF
	}
}

// Render feeds every byte of r through p onto c. It stops at the first
// canvas error; end of input ends processing wherever p is.
func Render(r io.Reader, c Canvas, p Preprocessor) error {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return c.Err()
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		p.Process(c, b)
		if err := c.Err(); err != nil {
			return err
		}
	}
}

// Renderer renders documents with a fixed configuration.
type Renderer struct {
	Config Config
	logger *log.Logger
	fonts  *FontLibrary
}

// RendererOption is a functional option for configuring a Renderer.
type RendererOption func(*Renderer)

// WithRendererLogger sets the logger handed to every component.
func WithRendererLogger(l *log.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = l
	}
}

// NewRenderer validates cfg and returns a Renderer. Every document gets its
// own surface, canvas, translator and preprocessor; fonts are shared.
func NewRenderer(cfg Config, opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{Config: cfg, logger: log.Default()}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.Discard()
	}
	if !cfg.Page().Valid() {
		return nil, fmt.Errorf("invalid page size %v", cfg.PageSize)
	}
	if cfg.FontSize <= 0 {
		return nil, fmt.Errorf("invalid font size %g", cfg.FontSize)
	}
	if cfg.Table != "" && cfg.Encoding != "" {
		return nil, ErrConflictingTranslators
	}
	if _, err := NewPreprocessor(cfg.Preprocessor, r.logger); err != nil {
		return nil, err
	}
	r.fonts = NewFontLibrary(r.logger)
	return r, nil
}

func (r *Renderer) newSurface(out string, w io.Writer) Surface {
	switch FormatFor(out) {
	case FormatImage:
		return NewRasterSurface(out,
			WithDPI(r.Config.DPI),
			WithGrayscale(r.Config.Grayscale),
			WithRasterFonts(r.fonts),
			WithRasterLogger(r.logger))
	case FormatText:
		return NewTextSurface(w)
	default:
		return NewPDFSurface(w,
			WithTitle(r.Config.Title),
			WithPDFFonts(r.fonts),
			WithPDFLogger(r.logger))
	}
}

// RenderFile renders the input file to out. Image output is written as one
// file per page (see PagePath); the output document is finished on every
// return path.
func (r *Renderer) RenderFile(in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return r.RenderTo(f, out)
}

// RenderTo renders the stream in to out.
func (r *Renderer) RenderTo(in io.Reader, out string) (err error) {
	translator, err := r.Config.NewTranslator(r.logger)
	if err != nil {
		return err
	}
	pre, err := NewPreprocessor(r.Config.Preprocessor, r.logger)
	if err != nil {
		return err
	}

	var (
		w       io.WriteCloser = nopWriteCloser{}
		discard bool
	)
	if FormatFor(out) != FormatImage {
		file, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		w = file
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close output: %w", cerr))
		}
		if discard && FormatFor(out) != FormatImage {
			os.Remove(out)
		}
	}()

	surface := r.newSurface(out, w)
	tty, err := NewTTY(surface, r.Config.Page(),
		WithMargins(r.Config.Margins),
		WithFont(r.Config.FontFace, r.Config.FontSize),
		WithTranslator(translator),
		WithLogger(r.logger))
	if err != nil {
		// Nothing was rendered: release the surface and leave no output behind.
		discard = true
		err = errors.Join(err, surface.Finish())
		if rs, ok := surface.(*RasterSurface); ok {
			for _, f := range rs.Files() {
				os.Remove(f)
			}
		}
		return err
	}
	defer func() {
		if cerr := tty.Close(); cerr != nil && !errors.Is(err, cerr) {
			err = errors.Join(err, cerr)
		}
	}()

	logging.Debugf(r.logger, "rendering to %s with %s preprocessor", out, r.Config.Preprocessor)
	return Render(in, tty, pre)
}

type nopWriteCloser struct{}

func (nopWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (nopWriteCloser) Close() error                { return nil }
