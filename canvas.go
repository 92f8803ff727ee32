package dotprint

import (
	"fmt"
	"log"
	"unicode"

	"github.com/wbrown/dotprint/codepage"
	"github.com/wbrown/dotprint/internal/logging"
)

// Layout is the part of the canvas a preprocessor drives.
type Layout interface {
	Home()
	NewLine()
	CarriageReturn()
	LineFeed()
	NewPage()
	StretchFont(sx, sy float64)
	SetFontWeight(w FontWeight)
	SetFontSlant(s FontSlant)
	// AppendByte translates b and paints the result. Unmapped bytes are dropped.
	AppendByte(b byte)
	AppendRune(r rune)
}

// Canvas is the full canvas held by whoever owns the output document.
type Canvas interface {
	Layout
	SetPageSize(p PageSize) error
	SetFontName(name string)
	SetFontSize(size float64) error
	// Err returns the first surface error, after which the canvas is inert.
	Err() error
	Close() error
}

// TTY lays out a stream of characters on pages of a Surface, wrapping at
// the right margin and breaking pages at the bottom margin.
type TTY struct {
	surface    Surface
	translator codepage.Translator
	logger     *log.Logger

	page    PageSize
	margins Margins

	font      Font
	fontDirty bool
	sx, sy    float64

	x, y float64

	err    error
	closed bool
}

// TTYOption configures a TTY.
type TTYOption func(*TTY)

// WithTranslator sets the byte translator used by AppendByte.
func WithTranslator(t codepage.Translator) TTYOption {
	return func(c *TTY) {
		c.translator = t
	}
}

// WithMargins sets the page margins.
func WithMargins(m Margins) TTYOption {
	return func(c *TTY) {
		c.margins = m
	}
}

// WithFont sets the initial font family and size.
func WithFont(family string, size float64) TTYOption {
	return func(c *TTY) {
		c.font.Family = family
		c.font.Size = size
	}
}

// WithLogger sets the logger for unprintable character diagnostics.
func WithLogger(l *log.Logger) TTYOption {
	return func(c *TTY) {
		if l == nil {
			l = logging.Discard()
		}
		c.logger = l
	}
}

// NewTTY returns a canvas drawing on s with the given page size, homed and
// ready for the first character. Default margins are 10 mm, the default
// translator is ASCII and the default font is DefaultFontFace at
// DefaultFontSize.
func NewTTY(s Surface, page PageSize, opts ...TTYOption) (*TTY, error) {
	c := &TTY{
		surface: s,
		logger:  log.Default(),
		margins: DefaultMargins(),
		font:    Font{Family: DefaultFontFace, Size: DefaultFontSize},
		sx:      1,
		sy:      1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.translator == nil {
		c.translator = codepage.NewASCII(codepage.WithLogger(c.logger))
	}
	if c.margins.Top < 0 || c.margins.Right < 0 || c.margins.Bottom < 0 || c.margins.Left < 0 {
		return nil, fmt.Errorf("%w: negative margin", ErrBadMargins)
	}
	if c.font.Size <= 0 {
		return nil, fmt.Errorf("invalid font size %g", c.font.Size)
	}
	if err := c.SetPageSize(page); err != nil {
		return nil, err
	}
	c.fontDirty = true
	c.Home()
	if c.err != nil {
		return nil, c.err
	}
	return c, nil
}

func (c *TTY) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *TTY) inert() bool {
	return c.err != nil || c.closed
}

// SetPageSize changes the page dimensions.
func (c *TTY) SetPageSize(p PageSize) error {
	if !p.Valid() {
		return fmt.Errorf("invalid page size %gx%g: width and height must be positive", p.Width, p.Height)
	}
	if err := c.surface.SetPageSize(p.Width, p.Height); err != nil {
		return fmt.Errorf("failed to set page size: %w", err)
	}
	c.page = p
	return nil
}

// PageSize returns the current page dimensions.
func (c *TTY) PageSize() PageSize {
	return c.page
}

// Margins returns the page margins.
func (c *TTY) Margins() Margins {
	return c.margins
}

// Cursor returns the cursor relative to the printable area.
func (c *TTY) Cursor() (x, y float64) {
	return c.x, c.y
}

// Font returns the current font selection, applied or not.
func (c *TTY) Font() Font {
	return c.font
}

// Stretch returns the horizontal and vertical scale factors.
func (c *TTY) Stretch() (sx, sy float64) {
	return c.sx, c.sy
}

// applyFont selects the pending font on the surface.
func (c *TTY) applyFont() {
	if !c.fontDirty || c.inert() {
		return
	}
	if err := c.surface.SelectFont(c.font); err != nil {
		c.fail(fmt.Errorf("failed to select font: %w", err))
		return
	}
	c.fontDirty = false
}

func (c *TTY) lineHeight() float64 {
	c.applyFont()
	return c.surface.FontExtents().Height * c.sy
}

// Home moves the cursor to the first baseline of the printable area.
func (c *TTY) Home() {
	c.x = 0
	c.y = c.lineHeight()
}

// CarriageReturn moves the cursor to the left margin.
func (c *TTY) CarriageReturn() {
	c.x = 0
}

// LineFeed advances one line, starting a new page when the line would
// fall below the bottom margin.
func (c *TTY) LineFeed() {
	c.y += c.lineHeight()
	if c.margins.Top+c.y > c.page.Height-c.margins.Bottom {
		c.NewPage()
	}
}

// NewLine is CarriageReturn followed by LineFeed.
func (c *TTY) NewLine() {
	c.CarriageReturn()
	c.LineFeed()
}

// NewPage commits the current page and homes the cursor.
func (c *TTY) NewPage() {
	if c.inert() {
		return
	}
	if err := c.surface.ShowPage(); err != nil {
		c.fail(fmt.Errorf("failed to show page: %w", err))
		return
	}
	logging.Debugf(c.logger, "page break")
	c.Home()
}

// SetFontName selects a font family for the next glyph.
func (c *TTY) SetFontName(name string) {
	c.font.Family = name
	c.fontDirty = true
}

// SetFontSize sets the size in points; it must be positive.
func (c *TTY) SetFontSize(size float64) error {
	if size <= 0 {
		return fmt.Errorf("invalid font size %g", size)
	}
	c.font.Size = size
	c.fontDirty = true
	return nil
}

// SetFontWeight switches between regular and bold.
func (c *TTY) SetFontWeight(w FontWeight) {
	c.font.Weight = w
	c.fontDirty = true
}

// SetFontSlant switches between upright and italic.
func (c *TTY) SetFontSlant(s FontSlant) {
	c.font.Slant = s
	c.fontDirty = true
}

// StretchFont sets the scale factors used for advances and painting.
func (c *TTY) StretchFont(sx, sy float64) {
	if sx <= 0 || sy <= 0 {
		c.logger.Printf("WARN: ignoring non-positive font stretch %gx%g", sx, sy)
		return
	}
	c.sx, c.sy = sx, sy
}

// AppendByte translates b and paints it.
func (c *TTY) AppendByte(b byte) {
	r, ok := c.translator.Translate(b)
	if !ok {
		return
	}
	c.AppendRune(r)
}

// AppendRune paints r at the cursor, wrapping to a new line first when the
// glyph would cross the right margin.
func (c *TTY) AppendRune(r rune) {
	if c.inert() {
		return
	}
	switch {
	case r == '\t':
		// Tab stops are not implemented.
		return
	case unicode.IsControl(r):
		c.logger.Printf("WARN: cannot print control character %U", r)
		return
	}

	c.applyFont()
	advance := c.surface.TextAdvance(r) * c.sx
	if c.margins.Left+c.x+advance > c.page.Width-c.margins.Right {
		c.NewLine()
		if c.inert() {
			return
		}
	}
	if err := c.surface.ShowGlyph(c.margins.Left+c.x, c.margins.Top+c.y, c.sx, c.sy, r); err != nil {
		c.fail(fmt.Errorf("failed to paint %U: %w", r, err))
		return
	}
	c.x += advance
}

// Err returns the first surface error.
func (c *TTY) Err() error {
	return c.err
}

// Close finishes the surface. It is safe to call more than once.
func (c *TTY) Close() error {
	if c.closed {
		return c.err
	}
	c.closed = true
	if err := c.surface.Finish(); err != nil {
		c.fail(fmt.Errorf("failed to finish output: %w", err))
	}
	return c.err
}
