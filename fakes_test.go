package dotprint

import (
	"fmt"
)

// recordingLayout records every call a preprocessor makes.
type recordingLayout struct {
	calls []string
}

func (l *recordingLayout) add(format string, args ...any) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *recordingLayout) Home()                      { l.add("home") }
func (l *recordingLayout) NewLine()                   { l.add("newLine") }
func (l *recordingLayout) CarriageReturn()            { l.add("carriageReturn") }
func (l *recordingLayout) LineFeed()                  { l.add("lineFeed") }
func (l *recordingLayout) NewPage()                   { l.add("newPage") }
func (l *recordingLayout) StretchFont(sx, sy float64) { l.add("stretchFont(%g,%g)", sx, sy) }
func (l *recordingLayout) SetFontWeight(w FontWeight) { l.add("weight(%d)", w) }
func (l *recordingLayout) SetFontSlant(s FontSlant)   { l.add("slant(%d)", s) }
func (l *recordingLayout) AppendByte(b byte)          { l.add("append(%q)", b) }
func (l *recordingLayout) AppendRune(r rune)          { l.add("appendRune(%q)", r) }

// fakeSurface is a Surface with fixed metrics: every glyph advances 6
// points and lines are 12 points apart.
type fakeSurface struct {
	calls   []string
	pages   int
	pageErr error
}

func (s *fakeSurface) add(format string, args ...any) {
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
}

func (s *fakeSurface) SetPageSize(w, h float64) error {
	s.add("pageSize(%g,%g)", w, h)
	return nil
}

func (s *fakeSurface) SelectFont(f Font) error {
	s.add("select(%s,%g,%d,%d)", f.Family, f.Size, f.Weight, f.Slant)
	return nil
}

func (s *fakeSurface) FontExtents() FontExtents {
	return FontExtents{Ascent: 9, Descent: 3, Height: 12}
}

func (s *fakeSurface) TextAdvance(r rune) float64 {
	return 6
}

func (s *fakeSurface) ShowGlyph(x, y, sx, sy float64, r rune) error {
	s.add("glyph(%g,%g,%g,%g,%q)", x, y, sx, sy, r)
	return nil
}

func (s *fakeSurface) ShowPage() error {
	if s.pageErr != nil {
		return s.pageErr
	}
	s.pages++
	s.add("showPage")
	return nil
}

func (s *fakeSurface) Finish() error {
	s.add("finish")
	return nil
}

// reset forgets the calls recorded so far.
func (s *fakeSurface) reset() {
	s.calls = nil
}
