package dotprint

import (
	"log"

	"github.com/wbrown/dotprint/internal/logging"
)

// Character pitches in characters per inch.
const (
	StandardCPI  = 10.0
	CondensedCPI = 17.0
)

// InputState is the outer state of the Epson interpreter.
type InputState int

const (
	StateNormal InputState = iota // Printing and control bytes
	StateEscape                   // Inside an ESC sequence
)

// EscapeState tracks which ESC sequence is being assembled.
type EscapeState int

const (
	EscapeEntered        EscapeState = iota // ESC seen, command byte next
	EscapeUnderline                         // ESC - n
	EscapeSetLineSpacing                    // ESC 3 n
	EscapeSetTabWidth                       // ESC D n1 ... 0
	EscapeSelectQuality                     // ESC x n
	EscapeDrawGraphics                      // ESC * m nL nH data
)

// FontSizeMode is the active character pitch.
type FontSizeMode int

const (
	FontSizeNormal FontSizeMode = iota
	FontSizeSingleLineExpanded
	FontSizeCondensed
)

// bytesPerColumn is the payload size of one bit-image column: 24 dots.
const bytesPerColumn = 3

// GraphicsState assembles an ESC * bit-image sequence. The image itself is
// not rendered; the state only tracks how much of the payload is left.
type GraphicsState struct {
	Mode      byte
	Columns   int
	assembled int
	maxBytes  int
	column    uint32
}

// Done reports whether the whole payload has been consumed. A zero column
// image is done right after nH; no further byte belongs to it.
func (g *GraphicsState) Done() bool {
	return g.assembled >= 3 && g.assembled >= g.maxBytes+3
}

// feed consumes one byte of the sequence following ESC *.
func (g *GraphicsState) feed(b byte) {
	switch g.assembled {
	case 0:
		g.Mode = b
	case 1:
		g.Columns = int(b)
	case 2:
		g.Columns += int(b) << 8
		g.maxBytes = g.Columns * bytesPerColumn
	default:
		lane := (g.assembled - 3) % bytesPerColumn
		g.column |= uint32(b) << (8 * (bytesPerColumn - 1 - lane))
		if lane == bytesPerColumn-1 {
			// Column complete. Bit images are not rendered.
			g.column = 0
		}
	}
	g.assembled++
}

// Epson emulates the text subset of Epson ESC/P: print pitch, bold and
// italic, and enough of the remaining escapes to skip their parameters.
type Epson struct {
	logger *log.Logger

	input    InputState
	escape   EscapeState
	mode     FontSizeMode
	graphics GraphicsState
}

// NewEpson returns an interpreter in the Normal state.
func NewEpson(logger *log.Logger) *Epson {
	return &Epson{logger: orDefault(logger)}
}

// State returns the interpreter's current states.
func (p *Epson) State() (InputState, EscapeState, FontSizeMode) {
	return p.input, p.escape, p.mode
}

// Process implements Preprocessor.
func (p *Epson) Process(l Layout, b byte) {
	switch p.input {
	case StateEscape:
		p.processEscape(l, b)
	default:
		p.processNormal(l, b)
	}
}

func (p *Epson) processNormal(l Layout, b byte) {
	switch b {
	case SO:
		l.StretchFont(2, 1)
		p.mode = FontSizeSingleLineExpanded
	case DC4, DC2:
		l.StretchFont(1, 1)
		p.mode = FontSizeNormal
	case SI:
		l.StretchFont(StandardCPI/CondensedCPI, 1)
		p.mode = FontSizeCondensed
	case CR:
		l.CarriageReturn()
	case LF:
		if p.mode == FontSizeSingleLineExpanded {
			l.StretchFont(1, 1)
			p.mode = FontSizeNormal
		}
		l.LineFeed()
	case FF:
		l.NewPage()
	case ESC:
		p.input = StateEscape
		p.escape = EscapeEntered
	default:
		l.AppendByte(b)
	}
}

func (p *Epson) processEscape(l Layout, b byte) {
	switch p.escape {
	case EscapeEntered:
		p.selectEscape(l, b)
	case EscapeUnderline, EscapeSetLineSpacing, EscapeSelectQuality:
		// Single parameter byte, not applied.
		p.input = StateNormal
	case EscapeSetTabWidth:
		if b == 0 {
			p.input = StateNormal
		}
	case EscapeDrawGraphics:
		p.graphics.feed(b)
		if p.graphics.Done() {
			logging.Debugf(p.logger, "epson: skipped bit image mode %d, %d columns",
				p.graphics.Mode, p.graphics.Columns)
			p.input = StateNormal
		}
	}
}

func (p *Epson) selectEscape(l Layout, b byte) {
	p.input = StateNormal
	switch b {
	case 'E':
		l.SetFontWeight(FontWeightBold)
	case 'F':
		l.SetFontWeight(FontWeightNormal)
	case '4':
		l.SetFontSlant(FontSlantItalic)
	case '5':
		l.SetFontSlant(FontSlantNormal)
	case '@':
		// Initialize printer: nothing is reset.
	case '*':
		p.input = StateEscape
		p.escape = EscapeDrawGraphics
		p.graphics = GraphicsState{}
	case '-':
		p.input = StateEscape
		p.escape = EscapeUnderline
	case '3':
		p.input = StateEscape
		p.escape = EscapeSetLineSpacing
	case 'D':
		p.input = StateEscape
		p.escape = EscapeSetTabWidth
	case 'x':
		p.input = StateEscape
		p.escape = EscapeSelectQuality
	default:
		p.logger.Printf("WARN: epson: unknown escape ESC 0x%02x", b)
	}
}
