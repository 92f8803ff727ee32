package dotprint

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

// PDFSurface renders pages into a PDF document written on Finish.
type PDFSurface struct {
	w      io.Writer
	doc    *fpdf.Fpdf
	logger *log.Logger
	title  string

	lib        *FontLibrary
	metrics    fontMetrics
	registered map[string]bool

	size     PageSize
	pageOpen bool
	finished bool
}

// PDFOption configures a PDFSurface.
type PDFOption func(*PDFSurface)

// WithTitle sets the document title.
func WithTitle(title string) PDFOption {
	return func(s *PDFSurface) {
		s.title = title
	}
}

// WithPDFFonts shares a font library between surfaces.
func WithPDFFonts(lib *FontLibrary) PDFOption {
	return func(s *PDFSurface) {
		s.lib = lib
	}
}

// WithPDFLogger sets the logger for font substitution warnings.
func WithPDFLogger(l *log.Logger) PDFOption {
	return func(s *PDFSurface) {
		s.logger = l
	}
}

// NewPDFSurface returns a surface writing a PDF document to w.
func NewPDFSurface(w io.Writer, opts ...PDFOption) *PDFSurface {
	s := &PDFSurface{
		w:          w,
		logger:     log.Default(),
		registered: make(map[string]bool),
		size:       DefaultPageSize(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lib == nil {
		s.lib = NewFontLibrary(s.logger)
	}
	s.metrics.lib = s.lib

	s.doc = fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: s.size.Width, Ht: s.size.Height},
	})
	s.doc.SetAutoPageBreak(false, 0)
	s.doc.SetMargins(0, 0, 0)
	s.doc.SetCreator("dotprint", true)
	if s.title != "" {
		s.doc.SetTitle(s.title, true)
	}
	return s
}

func (s *PDFSurface) SetPageSize(width, height float64) error {
	s.size = PageSize{Width: width, Height: height}
	return nil
}

// fontFamily registers f's face with the document and returns its name.
func (s *PDFSurface) fontFamily(f Font) (string, error) {
	key, data, err := s.lib.TTF(f)
	if err != nil {
		return "", err
	}
	family := strings.ReplaceAll(strings.TrimSuffix(filepath.Base(key), filepath.Ext(key)), " ", "")
	id := family + "/" + f.Style()
	if !s.registered[id] {
		s.doc.AddUTF8FontFromBytes(family, f.Style(), data)
		if err := s.doc.Error(); err != nil {
			return "", fmt.Errorf("failed to embed font %q: %w", f.Family, err)
		}
		s.registered[id] = true
	}
	return family, nil
}

func (s *PDFSurface) SelectFont(f Font) error {
	if err := s.metrics.selectFont(f); err != nil {
		return err
	}
	family, err := s.fontFamily(f)
	if err != nil {
		return err
	}
	s.doc.SetFont(family, f.Style(), f.Size)
	return s.doc.Error()
}

func (s *PDFSurface) FontExtents() FontExtents {
	return s.metrics.extents()
}

func (s *PDFSurface) TextAdvance(r rune) float64 {
	return s.metrics.advance(r)
}

func (s *PDFSurface) openPage() {
	if !s.pageOpen {
		s.doc.AddPageFormat("P", fpdf.SizeType{Wd: s.size.Width, Ht: s.size.Height})
		s.pageOpen = true
	}
}

func (s *PDFSurface) ShowGlyph(x, y, sx, sy float64, r rune) error {
	s.openPage()
	if sx == 1 && sy == 1 {
		s.doc.Text(x, y, string(r))
	} else {
		s.doc.TransformBegin()
		s.doc.TransformScale(sx*100, sy*100, x, y)
		s.doc.Text(x, y, string(r))
		s.doc.TransformEnd()
	}
	return s.doc.Error()
}

func (s *PDFSurface) ShowPage() error {
	s.openPage()
	s.pageOpen = false
	return s.doc.Error()
}

// Pages returns the number of pages started so far.
func (s *PDFSurface) Pages() int {
	return s.doc.PageCount()
}

func (s *PDFSurface) Finish() error {
	if s.finished {
		return nil
	}
	s.finished = true
	defer s.metrics.close()
	if s.doc.PageCount() == 0 {
		s.openPage()
	}
	if err := s.doc.Output(s.w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
