package codepage

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned when an encoding name cannot be resolved.
var ErrUnknownEncoding = errors.New("unknown encoding")

// charmaps holds the single-byte encodings addressable by short name.
// Keys are normalized with normalizeEncodingName.
var charmaps = map[string]*charmap.Charmap{
	"cp037":       charmap.CodePage037,
	"cp437":       charmap.CodePage437,
	"cp850":       charmap.CodePage850,
	"cp852":       charmap.CodePage852,
	"cp855":       charmap.CodePage855,
	"cp858":       charmap.CodePage858,
	"cp860":       charmap.CodePage860,
	"cp862":       charmap.CodePage862,
	"cp863":       charmap.CodePage863,
	"cp865":       charmap.CodePage865,
	"cp866":       charmap.CodePage866,
	"cp1047":      charmap.CodePage1047,
	"iso88591":    charmap.ISO8859_1,
	"iso88592":    charmap.ISO8859_2,
	"iso88593":    charmap.ISO8859_3,
	"iso88594":    charmap.ISO8859_4,
	"iso88595":    charmap.ISO8859_5,
	"iso88596":    charmap.ISO8859_6,
	"iso88597":    charmap.ISO8859_7,
	"iso88598":    charmap.ISO8859_8,
	"iso88599":    charmap.ISO8859_9,
	"iso885910":   charmap.ISO8859_10,
	"iso885913":   charmap.ISO8859_13,
	"iso885914":   charmap.ISO8859_14,
	"iso885915":   charmap.ISO8859_15,
	"iso885916":   charmap.ISO8859_16,
	"latin1":      charmap.ISO8859_1,
	"latin2":      charmap.ISO8859_2,
	"koi8r":       charmap.KOI8R,
	"koi8u":       charmap.KOI8U,
	"macintosh":   charmap.Macintosh,
	"windows874":  charmap.Windows874,
	"windows1250": charmap.Windows1250,
	"windows1251": charmap.Windows1251,
	"windows1252": charmap.Windows1252,
	"windows1253": charmap.Windows1253,
	"windows1254": charmap.Windows1254,
	"windows1255": charmap.Windows1255,
	"windows1256": charmap.Windows1256,
	"windows1257": charmap.Windows1257,
	"windows1258": charmap.Windows1258,
}

func normalizeEncodingName(name string) string {
	n := strings.ToLower(name)
	n = strings.NewReplacer("-", "", "_", "", " ", "", ".", "").Replace(n)
	switch {
	case strings.HasPrefix(n, "ibm"):
		n = "cp" + strings.TrimPrefix(n, "ibm")
	case strings.HasPrefix(n, "codepage"):
		n = "cp" + strings.TrimPrefix(n, "codepage")
	case strings.HasPrefix(n, "cp125"):
		n = "windows" + strings.TrimPrefix(n, "cp")
	}
	return n
}

// LookupEncoding resolves an encoding by short name (CP850, IBM437,
// ISO-8859-2, windows-1250, KOI8-R) or by any IANA name known to
// golang.org/x/text.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if cm, ok := charmaps[normalizeEncodingName(name)]; ok {
		return cm, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// Encodings lists the short encoding names accepted by LookupEncoding.
func Encodings() []string {
	names := make([]string, 0, len(charmaps))
	for n := range charmaps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type failureReason int

const (
	reasonInvalid failureReason = iota
	reasonIncomplete
	reasonOverlong
	reasonUnknown
)

func (r failureReason) String() string {
	switch r {
	case reasonInvalid:
		return "invalid sequence"
	case reasonIncomplete:
		return "incomplete sequence"
	case reasonOverlong:
		return "expands to more than one codepoint"
	default:
		return "unknown failure"
	}
}

// Charset decodes each byte on its own with a golang.org/x/text decoder.
// Only encodings where every byte stands alone are useful here: lead bytes
// of multi-byte encodings are rejected as incomplete sequences.
type Charset struct {
	name   string
	dec    *encoding.Decoder
	logger *log.Logger
}

// NewCharset returns a translator for the named encoding.
func NewCharset(name string, opts ...Option) (*Charset, error) {
	enc, err := LookupEncoding(name)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return &Charset{
		name:   name,
		dec:    enc.NewDecoder(),
		logger: o.logger,
	}, nil
}

// Name returns the encoding name the translator was built with.
func (c *Charset) Name() string {
	return c.name
}

// Translate implements Translator.
func (c *Charset) Translate(b byte) (rune, bool) {
	r, reason, err := c.decode(b)
	if err == nil && reason < 0 {
		return r, true
	}
	c.dec.Reset()
	if err != nil {
		c.logger.Printf("WARN: charset %s: dropping byte 0x%02x: %v: %v", c.name, b, reason, err)
	} else {
		c.logger.Printf("WARN: charset %s: dropping byte 0x%02x: %v", c.name, b, reason)
	}
	return 0, false
}

// decode returns a negative reason on success.
func (c *Charset) decode(b byte) (rune, failureReason, error) {
	var dst [16]byte
	src := [1]byte{b}

	nDst, nSrc, err := c.dec.Transform(dst[:], src[:], false)
	switch {
	case errors.Is(err, transform.ErrShortSrc):
		return 0, reasonIncomplete, nil
	case errors.Is(err, transform.ErrShortDst):
		return 0, reasonOverlong, nil
	case err != nil:
		return 0, reasonUnknown, err
	case nSrc != 1:
		return 0, reasonIncomplete, nil
	}

	var out []rune
	for p := dst[:nDst]; len(p) > 0; {
		r, size := utf8.DecodeRune(p)
		out = append(out, r)
		p = p[size:]
	}

	switch {
	case len(out) == 0:
		return 0, reasonIncomplete, nil
	case len(out) == 1:
		if out[0] == utf8.RuneError {
			return 0, reasonInvalid, nil
		}
		return out[0], -1, nil
	case len(out) == 2 && out[0] == 0xFEFF:
		if out[1] == utf8.RuneError {
			return 0, reasonInvalid, nil
		}
		return out[1], -1, nil
	default:
		return 0, reasonOverlong, nil
	}
}
