// Package codepage maps single printer bytes to Unicode codepoints.
//
// Three translators are provided: ASCII (identity over 0-127), Table
// (driven by a .trans file) and Charset (backed by a golang.org/x/text
// single-byte decoder). A byte a translator cannot map is reported with
// ok=false and a diagnostic is logged; callers drop such bytes.
package codepage

import (
	"io"
	"log"
)

// Translator converts one input byte to a codepoint.
type Translator interface {
	Translate(b byte) (r rune, ok bool)
}

type options struct {
	logger *log.Logger
}

// Option configures a translator.
type Option func(*options)

// WithLogger sets the logger used for dropped-byte diagnostics.
// A nil logger discards them.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = log.New(io.Discard, "", 0)
		}
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
