package imageutil

import "image/draw"

// ToGrayscale flattens a page to a single luminance channel.
func ToGrayscale(page *RGBAImage) *GrayImage {
	gray := NewGrayImage(page.Width(), page.Height())
	draw.Draw(gray.Gray, gray.Bounds(), page.RGBA, page.Bounds().Min, draw.Src)
	return gray
}
