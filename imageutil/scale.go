package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for scaling.
type Interpolation int

const (
	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear Interpolation = iota

	// InterpolationCatmullRom is slower and sharper.
	InterpolationCatmullRom

	// InterpolationNearest keeps hard pixel edges.
	InterpolationNearest
)

func (i Interpolation) scaler() draw.Scaler {
	switch i {
	case InterpolationCatmullRom:
		return draw.CatmullRom
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.BiLinear
	}
}

// ScaleOnto scales all of src into dr of dst, compositing over what is
// already there.
func ScaleOnto(dst *RGBAImage, dr image.Rectangle, src image.Image, interp Interpolation) {
	if dr.Empty() {
		return
	}
	interp.scaler().Scale(dst.RGBA, dr, src, src.Bounds(), draw.Over, nil)
}
