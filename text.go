package dotprint

import (
	"bufio"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Cell geometry of the text surface relative to the font size.
const (
	textCellWidth  = 0.6
	textLineHeight = 1.2
)

// TextSurface renders pages as rows of monospaced text. Each glyph lands in
// the cell nearest to its position, or the next free cell when condensed
// glyphs would collide; stretching only affects spacing. Pages are
// separated by a form feed.
type TextSurface struct {
	w         *bufio.Writer
	separator string

	size     float64
	cell     float64
	line     float64
	rows     [][]rune
	placed   map[int]placement
	dirty    bool
	pages    int
	finished bool
}

// placement is the last glyph painted on a row.
type placement struct {
	x   float64
	end int
}

// TextOption configures a TextSurface.
type TextOption func(*TextSurface)

// WithPageSeparator replaces the form feed written between pages.
func WithPageSeparator(sep string) TextOption {
	return func(s *TextSurface) {
		s.separator = sep
	}
}

// NewTextSurface writes text pages to w.
func NewTextSurface(w io.Writer, opts ...TextOption) *TextSurface {
	s := &TextSurface{
		w:         bufio.NewWriter(w),
		separator: "\f",
		placed:    make(map[int]placement),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setSize(DefaultFontSize)
	return s
}

func (s *TextSurface) setSize(size float64) {
	s.size = size
	s.cell = size * textCellWidth
	s.line = size * textLineHeight
}

func (s *TextSurface) SetPageSize(width, height float64) error {
	return nil
}

func (s *TextSurface) SelectFont(f Font) error {
	s.setSize(f.Size)
	return nil
}

func (s *TextSurface) FontExtents() FontExtents {
	return FontExtents{
		Ascent:  s.size,
		Descent: s.line - s.size,
		Height:  s.line,
	}
}

func (s *TextSurface) TextAdvance(r rune) float64 {
	w := runewidth.RuneWidth(r)
	if w < 1 {
		w = 1
	}
	return float64(w) * s.cell
}

func (s *TextSurface) ShowGlyph(x, y, sx, sy float64, r rune) error {
	col := int(math.Round(x / s.cell))
	row := int(math.Round(y/s.line)) - 1
	if row < 0 {
		row = 0
	}
	for len(s.rows) <= row {
		s.rows = append(s.rows, nil)
	}
	w := runewidth.RuneWidth(r)
	if w < 1 {
		w = 1
	}
	// Glyphs narrower than a cell still get a cell of their own. Moving
	// left (after a carriage return) overprints.
	if p, ok := s.placed[row]; ok && x > p.x && col < p.end {
		col = p.end
	}
	s.placed[row] = placement{x: x, end: col + w}
	line := s.rows[row]
	for len(line) < col+w {
		line = append(line, ' ')
	}
	line[col] = r
	for i := 1; i < w; i++ {
		// Wide runes occupy the following cells.
		line[col+i] = 0
	}
	s.rows[row] = line
	s.dirty = true
	return nil
}

func (s *TextSurface) ShowPage() error {
	if s.pages > 0 {
		s.w.WriteString(s.separator)
	}
	last := len(s.rows)
	for last > 0 && strings.TrimSpace(string(s.rows[last-1])) == "" {
		last--
	}
	for _, line := range s.rows[:last] {
		var b strings.Builder
		for _, r := range line {
			if r != 0 {
				b.WriteRune(r)
			}
		}
		s.w.WriteString(strings.TrimRight(b.String(), " "))
		s.w.WriteByte('\n')
	}
	s.rows = s.rows[:0]
	clear(s.placed)
	s.dirty = false
	s.pages++
	return s.w.Flush()
}

// Pages returns the number of pages written so far.
func (s *TextSurface) Pages() int {
	return s.pages
}

func (s *TextSurface) Finish() error {
	if s.finished {
		return nil
	}
	s.finished = true
	if s.dirty || s.pages == 0 {
		return s.ShowPage()
	}
	return s.w.Flush()
}
