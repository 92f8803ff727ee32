package dotprint

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

// Control bytes shared by the preprocessors.
const (
	BS  = 0x08
	HT  = 0x09
	LF  = 0x0A
	FF  = 0x0C
	CR  = 0x0D
	SO  = 0x0E
	SI  = 0x0F
	DC2 = 0x12
	DC4 = 0x14
	ESC = 0x1B
	DEL = 0x7F
)

// ErrUnknownPreprocessor is returned by NewPreprocessor for unregistered names.
var ErrUnknownPreprocessor = errors.New("unknown preprocessor")

// Preprocessor interprets one input byte at a time and drives a Layout.
// A preprocessor keeps per-stream state and must not be shared between
// streams.
type Preprocessor interface {
	Process(l Layout, b byte)
}

// PreprocessorInfo is a preprocessor registry entry.
type PreprocessorInfo struct {
	Name        string
	Description string
	New         func(logger *log.Logger) Preprocessor
}

// Preprocessors is the registry. The first entry is the default.
var Preprocessors = []PreprocessorInfo{
	{
		Name:        "simple",
		Description: "plain text; LF starts a new line, FF a new page",
		New:         func(l *log.Logger) Preprocessor { return NewPlain(l) },
	},
	{
		Name:        "crlf",
		Description: "plain text with separate CR and LF",
		New:         func(l *log.Logger) Preprocessor { return NewCRLF(l) },
	},
	{
		Name:        "epson",
		Description: "Epson ESC/P printer emulation",
		New:         func(l *log.Logger) Preprocessor { return NewEpson(l) },
	},
}

// DefaultPreprocessor is the name of the first registry entry.
func DefaultPreprocessor() string {
	return Preprocessors[0].Name
}

// NewPreprocessor constructs the named preprocessor.
func NewPreprocessor(name string, logger *log.Logger) (Preprocessor, error) {
	for _, p := range Preprocessors {
		if strings.EqualFold(p.Name, name) {
			return p.New(logger), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPreprocessor, name)
}

// PreprocessorNames lists the registry, marking the default.
func PreprocessorNames() []string {
	names := make([]string, len(Preprocessors))
	for i, p := range Preprocessors {
		names[i] = fmt.Sprintf("%-8s %s", p.Name, p.Description)
		if i == 0 {
			names[i] += " [default]"
		}
	}
	return names
}

func isControl(b byte) bool {
	return b < 0x20 || b == DEL
}

func orDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}

// Plain prints everything except control bytes. LF is a full new line.
type Plain struct {
	logger *log.Logger
}

// NewPlain returns a Plain preprocessor logging to logger.
func NewPlain(logger *log.Logger) *Plain {
	return &Plain{logger: orDefault(logger)}
}

// Process implements Preprocessor.
func (p *Plain) Process(l Layout, b byte) {
	if !isControl(b) {
		l.AppendByte(b)
		return
	}
	switch b {
	case LF:
		l.NewLine()
	case FF:
		l.NewPage()
	default:
		p.logger.Printf("WARN: simple: dropping control byte 0x%02x", b)
	}
}

// CRLF is Plain with CR and LF handled separately.
type CRLF struct {
	logger *log.Logger
}

// NewCRLF returns a CRLF preprocessor logging to logger.
func NewCRLF(logger *log.Logger) *CRLF {
	return &CRLF{logger: orDefault(logger)}
}

// Process implements Preprocessor.
func (p *CRLF) Process(l Layout, b byte) {
	if !isControl(b) {
		l.AppendByte(b)
		return
	}
	switch b {
	case CR:
		l.CarriageReturn()
	case LF:
		l.LineFeed()
	case FF:
		l.NewPage()
	default:
		p.logger.Printf("WARN: crlf: dropping control byte 0x%02x", b)
	}
}
