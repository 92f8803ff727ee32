package dotprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wbrown/dotprint/imageutil"
	"github.com/wbrown/dotprint/internal/logging"
)

func TestPagePath(t *testing.T) {
	if got := PagePath("/tmp/out.png", 3); got != "/tmp/out-003.png" {
		t.Errorf("PagePath = %q", got)
	}
	if got := PagePath("scan.tiff", 12); got != "scan-012.tiff" {
		t.Errorf("PagePath = %q", got)
	}
}

func TestRasterSurfaceWritesPages(t *testing.T) {
	out := filepath.Join(t.TempDir(), "page.png")
	s := NewRasterSurface(out, WithDPI(72), WithRasterLogger(logging.Discard()))
	c, err := NewTTY(s, PageSize{Width: 200, Height: 100},
		WithMargins(UniformMargins(10)),
		WithFont("Courier New", 20),
		WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("NewTTY failed: %v", err)
	}
	c.AppendRune('H')
	c.NewPage()
	c.NewPage()
	c.AppendRune('i')
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	want := []string{PagePath(out, 1), PagePath(out, 2), PagePath(out, 3)}
	if diff := cmp.Diff(want, s.Files()); diff != "" {
		t.Fatalf("Files mismatch (-want +got):\n%s", diff)
	}

	first, err := imageutil.LoadImage(want[0])
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if first.Width() != 200 || first.Height() != 100 {
		t.Errorf("Expected a 200x100 page at 72 dpi, got %dx%d", first.Width(), first.Height())
	}
	ink := first.InkBounds(imageutil.White)
	if ink.Empty() {
		t.Fatal("Expected ink on the first page")
	}
	if ink.Min.X < 10 || ink.Min.Y < 10 {
		t.Errorf("Ink %v should stay inside the margins", ink)
	}

	blank, err := imageutil.LoadImage(want[1])
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if !blank.InkBounds(imageutil.White).Empty() {
		t.Error("Second page should be blank")
	}
}

func TestRasterSurfaceStretchedGlyph(t *testing.T) {
	measure := func(sx float64, interp imageutil.Interpolation) int {
		s := NewRasterSurface(filepath.Join(t.TempDir(), "x.png"), WithDPI(144), WithInterpolation(interp))
		if err := s.SetPageSize(200, 100); err != nil {
			t.Fatalf("SetPageSize failed: %v", err)
		}
		if err := s.SelectFont(Font{Family: "Go Mono", Size: 24}); err != nil {
			t.Fatalf("SelectFont failed: %v", err)
		}
		if err := s.ShowGlyph(20, 60, sx, 1, 'M'); err != nil {
			t.Fatalf("ShowGlyph failed: %v", err)
		}
		return s.page.InkBounds(imageutil.White).Dx()
	}

	normal := measure(1, imageutil.InterpolationLinear)
	if normal == 0 {
		t.Fatal("Expected ink for an unstretched glyph")
	}
	for _, interp := range []imageutil.Interpolation{imageutil.InterpolationLinear, imageutil.InterpolationNearest} {
		wide := measure(2, interp)
		if wide < 2*normal-4 || wide > 2*normal+4 {
			t.Errorf("Interpolation %d: expected a stretched glyph about twice as wide as %d px, got %d px",
				interp, normal, wide)
		}
	}
}

func TestRasterSurfaceGrayscale(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gray.png")
	s := NewRasterSurface(out, WithDPI(36), WithGrayscale(true))
	if err := s.SetPageSize(100, 100); err != nil {
		t.Fatalf("SetPageSize failed: %v", err)
	}
	if err := s.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	f, err := os.Open(PagePath(out, 1))
	if err != nil {
		t.Fatalf("Expected a single blank page: %v", err)
	}
	f.Close()
}
