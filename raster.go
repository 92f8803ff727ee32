package dotprint

import (
	"fmt"
	"image"
	"image/draw"
	"log"
	"math"
	"path/filepath"
	"strings"

	"github.com/wbrown/dotprint/imageutil"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DefaultDPI is the raster surface resolution unless configured.
const DefaultDPI = 150.0

// PagePath returns the file name of page n (1-based) for an output path:
// out.png becomes out-001.png.
func PagePath(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%03d%s", strings.TrimSuffix(path, ext), n, ext)
}

// RasterSurface paints pages into bitmaps and writes each finished page to
// its own image file. The format follows the output path's extension.
type RasterSurface struct {
	path   string
	dpi    float64
	gray   bool
	ink    imageutil.RGB
	paper  imageutil.RGB
	interp imageutil.Interpolation
	logger *log.Logger

	lib     *FontLibrary
	metrics fontMetrics
	face    font.Face

	size  PageSize
	page  *imageutil.RGBAImage
	files []string
}

// RasterOption configures a RasterSurface.
type RasterOption func(*RasterSurface)

// WithDPI sets the raster resolution in dots per inch.
func WithDPI(dpi float64) RasterOption {
	return func(s *RasterSurface) {
		if dpi > 0 {
			s.dpi = dpi
		}
	}
}

// WithGrayscale writes single channel page images.
func WithGrayscale(gray bool) RasterOption {
	return func(s *RasterSurface) {
		s.gray = gray
	}
}

// WithColors sets the ink and paper colors.
func WithColors(ink, paper imageutil.RGB) RasterOption {
	return func(s *RasterSurface) {
		s.ink, s.paper = ink, paper
	}
}

// WithInterpolation picks the filter used for stretched glyphs.
func WithInterpolation(interp imageutil.Interpolation) RasterOption {
	return func(s *RasterSurface) {
		s.interp = interp
	}
}

// WithRasterFonts shares a font library between surfaces.
func WithRasterFonts(lib *FontLibrary) RasterOption {
	return func(s *RasterSurface) {
		s.lib = lib
	}
}

// WithRasterLogger sets the logger for font substitution warnings.
func WithRasterLogger(l *log.Logger) RasterOption {
	return func(s *RasterSurface) {
		s.logger = l
	}
}

// NewRasterSurface returns a surface writing pages next to path.
func NewRasterSurface(path string, opts ...RasterOption) *RasterSurface {
	s := &RasterSurface{
		path:   path,
		dpi:    DefaultDPI,
		ink:    imageutil.Black,
		paper:  imageutil.White,
		interp: imageutil.InterpolationLinear,
		logger: log.Default(),
		size:   DefaultPageSize(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lib == nil {
		s.lib = NewFontLibrary(s.logger)
	}
	s.metrics.lib = s.lib
	return s
}

// Files returns the page images written so far.
func (s *RasterSurface) Files() []string {
	return s.files
}

func (s *RasterSurface) px(v float64) int {
	return int(math.Round(v * s.dpi / Inch))
}

func (s *RasterSurface) SetPageSize(width, height float64) error {
	if s.page != nil {
		return fmt.Errorf("page size cannot change on a started page")
	}
	s.size = PageSize{Width: width, Height: height}
	return nil
}

func (s *RasterSurface) SelectFont(f Font) error {
	if err := s.metrics.selectFont(f); err != nil {
		return err
	}
	face, err := s.lib.Face(f, s.dpi)
	if err != nil {
		return err
	}
	if s.face != nil {
		s.face.Close()
	}
	s.face = face
	return nil
}

func (s *RasterSurface) FontExtents() FontExtents {
	return s.metrics.extents()
}

func (s *RasterSurface) TextAdvance(r rune) float64 {
	return s.metrics.advance(r)
}

func (s *RasterSurface) startPage() {
	if s.page == nil {
		s.page = imageutil.NewPage(s.px(s.size.Width), s.px(s.size.Height), s.paper)
	}
}

func (s *RasterSurface) ShowGlyph(x, y, sx, sy float64, r rune) error {
	if s.face == nil {
		return fmt.Errorf("no font selected")
	}
	s.startPage()

	dr, mask, maskp, _, ok := s.face.Glyph(fixed.Point26_6{}, r)
	if !ok || dr.Empty() {
		return nil
	}
	ink := image.NewUniform(s.ink.ToColor())
	origin := image.Pt(s.px(x), s.px(y))

	if sx == 1 && sy == 1 {
		draw.DrawMask(s.page.RGBA, dr.Add(origin), ink, image.Point{}, mask, maskp, draw.Over)
		return nil
	}

	tile := imageutil.NewRGBAImage(dr.Dx(), dr.Dy())
	draw.DrawMask(tile.RGBA, tile.Bounds(), ink, image.Point{}, mask, maskp, draw.Src)
	target := image.Rect(
		origin.X+int(math.Round(float64(dr.Min.X)*sx)),
		origin.Y+int(math.Round(float64(dr.Min.Y)*sy)),
		origin.X+int(math.Round(float64(dr.Max.X)*sx)),
		origin.Y+int(math.Round(float64(dr.Max.Y)*sy)),
	)
	imageutil.ScaleOnto(s.page, target, tile, s.interp)
	return nil
}

func (s *RasterSurface) ShowPage() error {
	s.startPage()
	name := PagePath(s.path, len(s.files)+1)

	var img image.Image = s.page.RGBA
	if s.gray {
		img = imageutil.ToGrayscale(s.page).Gray
	}
	if err := imageutil.SaveImage(img, name); err != nil {
		return err
	}
	s.files = append(s.files, name)
	s.page = nil
	return nil
}

func (s *RasterSurface) Finish() error {
	defer s.metrics.close()
	if s.face != nil {
		defer s.face.Close()
	}
	if s.page != nil || len(s.files) == 0 {
		return s.ShowPage()
	}
	return nil
}
