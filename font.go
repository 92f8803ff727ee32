package dotprint

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const (
	// DefaultFontFace is the family requested when none is configured.
	DefaultFontFace = "Courier New"
	// DefaultFontSize is in points.
	DefaultFontSize = 11.0
)

// FontWeight selects regular or bold glyphs.
type FontWeight int

const (
	FontWeightNormal FontWeight = iota
	FontWeightBold
)

// FontSlant selects upright or italic glyphs.
type FontSlant int

const (
	FontSlantNormal FontSlant = iota
	FontSlantItalic
)

// Font is the complete font selection handed to a Surface.
type Font struct {
	Family string
	Size   float64
	Weight FontWeight
	Slant  FontSlant
}

// Style returns the style string used by PDF font registration.
func (f Font) Style() string {
	s := ""
	if f.Weight == FontWeightBold {
		s += "B"
	}
	if f.Slant == FontSlantItalic {
		s += "I"
	}
	return s
}

func (f Font) styleIndex() int {
	i := 0
	if f.Weight == FontWeightBold {
		i |= 1
	}
	if f.Slant == FontSlantItalic {
		i |= 2
	}
	return i
}

// FontExtents are vertical font metrics in points.
type FontExtents struct {
	Ascent  float64
	Descent float64
	// Height is the distance between consecutive baselines.
	Height float64
}

// fontFamily holds TrueType data indexed by Font.styleIndex.
type fontFamily [4][]byte

var builtinFamilies = map[string]fontFamily{
	"go mono": {gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF},
	"go":      {goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF},
}

var familyAliases = map[string]string{
	"courier new": "go mono",
	"courier":     "go mono",
	"monospace":   "go mono",
	"mono":        "go mono",
	"gomono":      "go mono",
	"sans":        "go",
	"sans-serif":  "go",
	"helvetica":   "go",
	"arial":       "go",
}

type fontKey struct {
	family string
	style  int
}

// FontLibrary resolves family names to TrueType data. Family names are the
// built-in Go families ("Go Mono", "Go"), their aliases ("Courier New",
// "monospace", ...) or a path to a .ttf file, which then serves every style.
// Unknown families fall back to Go Mono.
type FontLibrary struct {
	mu     sync.Mutex
	files  map[string]fontFamily
	parsed map[fontKey]*truetype.Font
	warned map[string]bool
	logger *log.Logger
}

// NewFontLibrary returns an empty library logging substitutions to logger.
func NewFontLibrary(logger *log.Logger) *FontLibrary {
	if logger == nil {
		logger = log.Default()
	}
	return &FontLibrary{
		files:  make(map[string]fontFamily),
		parsed: make(map[fontKey]*truetype.Font),
		warned: make(map[string]bool),
		logger: logger,
	}
}

// resolve returns a stable family key and its data. Callers hold l.mu.
func (l *FontLibrary) resolve(family string) (string, fontFamily, error) {
	name := strings.ToLower(strings.TrimSpace(family))
	if strings.HasSuffix(name, ".ttf") {
		if fam, ok := l.files[family]; ok {
			return family, fam, nil
		}
		data, err := os.ReadFile(family)
		if err != nil {
			return "", fontFamily{}, fmt.Errorf("failed to read font: %w", err)
		}
		fam := fontFamily{data, data, data, data}
		l.files[family] = fam
		return family, fam, nil
	}
	if alias, ok := familyAliases[name]; ok {
		name = alias
	}
	if fam, ok := builtinFamilies[name]; ok {
		return name, fam, nil
	}
	if !l.warned[family] {
		l.warned[family] = true
		l.logger.Printf("WARN: font %q not available, using Go Mono", family)
	}
	return "go mono", builtinFamilies["go mono"], nil
}

// TTF returns the family key and TrueType bytes for f's family and style.
func (l *FontLibrary) TTF(f Font) (string, []byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key, fam, err := l.resolve(f.Family)
	if err != nil {
		return "", nil, err
	}
	return key, fam[f.styleIndex()], nil
}

// Parsed returns the parsed TrueType font for f's family and style.
func (l *FontLibrary) Parsed(f Font) (*truetype.Font, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key, fam, err := l.resolve(f.Family)
	if err != nil {
		return nil, err
	}
	k := fontKey{family: key, style: f.styleIndex()}
	if tt, ok := l.parsed[k]; ok {
		return tt, nil
	}
	tt, err := freetype.ParseFont(fam[k.style])
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %q: %w", f.Family, err)
	}
	l.parsed[k] = tt
	return tt, nil
}

// Face returns a face for f rendered at dpi.
func (l *FontLibrary) Face(f Font, dpi float64) (font.Face, error) {
	tt, err := l.Parsed(f)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(tt, &truetype.Options{
		Size:    f.Size,
		DPI:     dpi,
		Hinting: font.HintingNone,
	}), nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// fontMetrics measures text in points for the TrueType based surfaces.
type fontMetrics struct {
	lib  *FontLibrary
	face font.Face
}

func (m *fontMetrics) selectFont(f Font) error {
	face, err := m.lib.Face(f, 72)
	if err != nil {
		return err
	}
	if m.face != nil {
		m.face.Close()
	}
	m.face = face
	return nil
}

func (m *fontMetrics) extents() FontExtents {
	if m.face == nil {
		return FontExtents{}
	}
	met := m.face.Metrics()
	e := FontExtents{
		Ascent:  fixedToFloat(met.Ascent),
		Descent: fixedToFloat(met.Descent),
		Height:  fixedToFloat(met.Height),
	}
	if e.Ascent+e.Descent > e.Height {
		e.Height = e.Ascent + e.Descent
	}
	return e
}

func (m *fontMetrics) advance(r rune) float64 {
	if m.face == nil {
		return 0
	}
	adv, ok := m.face.GlyphAdvance(r)
	if !ok {
		adv, _ = m.face.GlyphAdvance('?')
	}
	return fixedToFloat(adv)
}

func (m *fontMetrics) close() {
	if m.face != nil {
		m.face.Close()
		m.face = nil
	}
}
