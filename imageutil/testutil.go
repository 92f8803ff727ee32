package imageutil

// CreateCheckerboardImage creates a black and white checkerboard.
func CreateCheckerboardImage(width, height, squareSize int) *RGBAImage {
	img := NewPage(width, height, White)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x/squareSize)+(y/squareSize))%2 == 0 {
				img.SetRGB(x, y, Black)
			}
		}
	}
	return img
}

// CalculateMSE calculates the Mean Squared Error between two images.
// Lower values indicate more similar images.
func CalculateMSE(img1, img2 *RGBAImage) float64 {
	if img1.Width() != img2.Width() || img1.Height() != img2.Height() {
		return -1
	}

	var sum float64
	n := img1.Width() * img1.Height() * 3

	for y := 0; y < img1.Height(); y++ {
		for x := 0; x < img1.Width(); x++ {
			c1 := img1.GetRGB(x, y)
			c2 := img2.GetRGB(x, y)

			dr := float64(c1.R) - float64(c2.R)
			dg := float64(c1.G) - float64(c2.G)
			db := float64(c1.B) - float64(c2.B)

			sum += dr*dr + dg*dg + db*db
		}
	}

	return sum / float64(n)
}
