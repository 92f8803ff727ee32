package dotprint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Units. All geometry is expressed in PostScript points.
const (
	Point      = 1.0
	Inch       = 72.0
	Millimetre = Inch / 25.4
)

// DefaultMarginMM is the margin applied to every side unless configured.
const DefaultMarginMM = 10.0

var (
	// ErrUnknownPageSize is returned by LookupPageSize for unregistered names.
	ErrUnknownPageSize = errors.New("unknown page size")
	// ErrBadMargins is returned by ParseMargins for malformed input.
	ErrBadMargins = errors.New("wrong margin format")
)

// PageSize is a page's width and height in points.
type PageSize struct {
	Width, Height float64
}

// Landscape returns the size rotated by 90 degrees.
func (p PageSize) Landscape() PageSize {
	return PageSize{Width: p.Height, Height: p.Width}
}

// Valid reports whether both dimensions are positive.
func (p PageSize) Valid() bool {
	return p.Width > 0 && p.Height > 0
}

func (p PageSize) String() string {
	return fmt.Sprintf("%.1fx%.1fmm", p.Width/Millimetre, p.Height/Millimetre)
}

// NamedPageSize is one entry of the page size registry.
type NamedPageSize struct {
	Name string
	Size PageSize
}

// PageSizes is the page size registry. The first entry is the default.
var PageSizes = []NamedPageSize{
	{Name: "A4", Size: PageSize{Width: 210 * Millimetre, Height: 297 * Millimetre}},
	{Name: "A5", Size: PageSize{Width: 148.5 * Millimetre, Height: 210 * Millimetre}},
	{Name: "A3", Size: PageSize{Width: 297 * Millimetre, Height: 420 * Millimetre}},
	{Name: "Letter", Size: PageSize{Width: 8.5 * Inch, Height: 11 * Inch}},
	{Name: "Legal", Size: PageSize{Width: 8.5 * Inch, Height: 14 * Inch}},
	// 132 column continuous form paper.
	{Name: "Fanfold", Size: PageSize{Width: 14.875 * Inch, Height: 11 * Inch}},
}

// DefaultPageSize returns the first registered page size.
func DefaultPageSize() PageSize {
	return PageSizes[0].Size
}

// LookupPageSize finds a page size by name, ignoring case.
func LookupPageSize(name string) (PageSize, error) {
	for _, p := range PageSizes {
		if strings.EqualFold(p.Name, name) {
			return p.Size, nil
		}
	}
	return PageSize{}, fmt.Errorf("%w: %q", ErrUnknownPageSize, name)
}

// PageSizeNames lists the registry, marking the default.
func PageSizeNames() []string {
	names := make([]string, len(PageSizes))
	for i, p := range PageSizes {
		names[i] = p.Name
		if i == 0 {
			names[i] += " [default]"
		}
	}
	return names
}

// Margins are the distances between the page edges and the printable area.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// UniformMargins returns margins of v points on every side.
func UniformMargins(v float64) Margins {
	return Margins{Top: v, Right: v, Bottom: v, Left: v}
}

// DefaultMargins returns DefaultMarginMM on every side.
func DefaultMargins() Margins {
	return UniformMargins(DefaultMarginMM * Millimetre)
}

// MarginFormats describes the shorthand accepted by ParseMargins.
var MarginFormats = []string{
	"number:               one value for all margins.",
	"num1,num2:            top & bottom, then left & right.",
	"num1,num2,num3:       top, then left & right, then bottom.",
	"num1,num2,num3,num4:  top, then right, then bottom, then left.",
}

// ParseMargins parses one to four comma separated millimetre values.
func ParseMargins(s string) (Margins, error) {
	parts := strings.Split(s, ",")
	if len(parts) > 4 {
		return Margins{}, fmt.Errorf("%w: %q has more than four values", ErrBadMargins, s)
	}
	v := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Margins{}, fmt.Errorf("%w: %q", ErrBadMargins, s)
		}
		if f < 0 {
			return Margins{}, fmt.Errorf("%w: negative margin in %q", ErrBadMargins, s)
		}
		v[i] = f * Millimetre
	}

	switch len(v) {
	case 1:
		return UniformMargins(v[0]), nil
	case 2:
		return Margins{Top: v[0], Right: v[1], Bottom: v[0], Left: v[1]}, nil
	case 3:
		return Margins{Top: v[0], Right: v[1], Bottom: v[2], Left: v[1]}, nil
	default:
		return Margins{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}, nil
	}
}
