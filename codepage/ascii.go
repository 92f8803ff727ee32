package codepage

import "log"

// ASCII passes 7-bit bytes through unchanged and rejects the upper half.
type ASCII struct {
	logger *log.Logger
}

// NewASCII returns the identity translator for bytes 0-127.
func NewASCII(opts ...Option) *ASCII {
	o := newOptions(opts)
	return &ASCII{logger: o.logger}
}

// Translate implements Translator.
func (a *ASCII) Translate(b byte) (rune, bool) {
	if b <= 127 {
		return rune(b), true
	}
	a.logger.Printf("WARN: ascii: dropping non-ASCII byte 0x%02x", b)
	return 0, false
}
