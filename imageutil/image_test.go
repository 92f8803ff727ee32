package imageutil

import (
	"image"
	"path/filepath"
	"testing"
)

func TestNewRGBAImage(t *testing.T) {
	img := NewRGBAImage(100, 50)
	if img.Width() != 100 {
		t.Errorf("Expected width 100, got %d", img.Width())
	}
	if img.Height() != 50 {
		t.Errorf("Expected height 50, got %d", img.Height())
	}
}

func TestNewPageIsPaper(t *testing.T) {
	img := NewPage(20, 10, White)
	if got := img.GetRGB(19, 9); got != White {
		t.Errorf("Expected paper color, got %v", got)
	}
	if !img.InkBounds(White).Empty() {
		t.Errorf("Blank page should have no ink, got %v", img.InkBounds(White))
	}
}

func TestRGBAImageGetSetRGB(t *testing.T) {
	img := NewRGBAImage(10, 10)
	c := RGB{R: 100, G: 150, B: 200}
	img.SetRGB(5, 5, c)

	got := img.GetRGB(5, 5)
	if got != c {
		t.Errorf("Expected %v, got %v", c, got)
	}
}

func TestInkBounds(t *testing.T) {
	img := NewPage(50, 50, White)
	img.SetRGB(10, 20, Black)
	img.SetRGB(30, 25, RGB{R: 128, G: 128, B: 128})

	want := image.Rect(10, 20, 31, 26)
	if got := img.InkBounds(White); got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestToGrayscale(t *testing.T) {
	img := NewRGBAImage(1, 1)
	img.SetRGB(0, 0, RGB{R: 255, G: 255, B: 255})

	gray := ToGrayscale(img)
	if v := gray.GrayAt(0, 0).Y; v != 255 {
		t.Errorf("White pixel should convert to 255, got %d", v)
	}

	img.SetRGB(0, 0, RGB{R: 0, G: 0, B: 0})
	gray = ToGrayscale(img)
	if v := gray.GrayAt(0, 0).Y; v != 0 {
		t.Errorf("Black pixel should convert to 0, got %d", v)
	}

	// Test red (0.299 * 255 = 76.245)
	img.SetRGB(0, 0, RGB{R: 255, G: 0, B: 0})
	gray = ToGrayscale(img)
	if v := gray.GrayAt(0, 0).Y; v < 75 || v > 77 {
		t.Errorf("Red pixel should convert to ~76, got %d", v)
	}
}

func TestScaleOnto(t *testing.T) {
	src := NewPage(4, 4, Black)
	dst := NewPage(40, 40, White)

	ScaleOnto(dst, image.Rect(10, 10, 18, 14), src, InterpolationNearest)

	want := image.Rect(10, 10, 18, 14)
	if got := dst.InkBounds(White); got != want {
		t.Errorf("Expected ink in %v, got %v", want, got)
	}
	if dst.GetRGB(12, 12) != Black {
		t.Errorf("Expected black inside the scaled area, got %v", dst.GetRGB(12, 12))
	}
}

func TestLoadSaveImage(t *testing.T) {
	tmpDir := t.TempDir()
	img := CreateCheckerboardImage(64, 64, 8)

	for _, ext := range []string{".png", ".gif", ".tif"} {
		path := filepath.Join(tmpDir, "test"+ext)
		if err := SaveImage(img.RGBA, path); err != nil {
			t.Fatalf("Failed to save %s: %v", ext, err)
		}
		loaded, err := LoadImage(path)
		if err != nil {
			t.Fatalf("Failed to load %s: %v", ext, err)
		}
		// Black and white survive every lossless format.
		if mse := CalculateMSE(img, loaded); mse > 0.01 {
			t.Errorf("%s should be lossless, MSE=%f", ext, mse)
		}
	}
}

func TestIsImagePath(t *testing.T) {
	for path, want := range map[string]bool{
		"out.png":  true,
		"OUT.TIFF": true,
		"out.jpeg": true,
		"out.pdf":  false,
		"out":      false,
	} {
		if got := IsImagePath(path); got != want {
			t.Errorf("IsImagePath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestCalculateMSE(t *testing.T) {
	img1 := NewPage(10, 10, Black)
	img2 := NewPage(10, 10, Black)

	if mse := CalculateMSE(img1, img2); mse != 0 {
		t.Errorf("Identical images should have MSE=0, got %f", mse)
	}

	img2.Fill(RGB{R: 10, G: 10, B: 10})
	if mse := CalculateMSE(img1, img2); mse != 100.0 {
		t.Errorf("Expected MSE=100, got %f", mse)
	}
}
