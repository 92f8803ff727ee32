package dotprint

// Surface is a page-rendering backend. Coordinates are in points from the
// top-left page corner; y is the glyph baseline.
type Surface interface {
	SetPageSize(width, height float64) error
	SelectFont(f Font) error
	FontExtents() FontExtents
	// TextAdvance is the horizontal advance of r at scale 1.0.
	TextAdvance(r rune) float64
	// ShowGlyph paints r at (x, y) scaled by (sx, sy) around that point.
	ShowGlyph(x, y, sx, sy float64, r rune) error
	// ShowPage commits the current page and starts a new one.
	ShowPage() error
	// Finish flushes the last page and releases the output.
	Finish() error
}

var (
	_ Surface = (*PDFSurface)(nil)
	_ Surface = (*RasterSurface)(nil)
	_ Surface = (*TextSurface)(nil)
	_ Canvas  = (*TTY)(nil)
)
