package n3

import (
	"strconv"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rune classification tables, lifted from the teacher's rune.go (itself
// transcribed from the Turtle/N3 grammar's PN_CHARS_BASE / PN_CHARS_U /
// PN_CHARS / PN_LOCAL character classes).
var (
	hexDigits   = []byte("0123456789ABCDEFabcdef")
	pnLocalEsc  = [...]rune{'_', '~', '.', '-', '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=', '/', '?', '#', '@', '%'}
	badIRIRunes = [...]rune{' ', '<', '"', '{', '}', '|', '^', '`'}

	pnCharsTab = []rune{
		'A', 'Z',
		'a', 'z',
		0x00C0, 0x00D6,
		0x00D8, 0x00F6,
		0x00F8, 0x02FF,
		0x0370, 0x037D,
		0x037F, 0x1FFF,
		0x200C, 0x200D,
		0x2070, 0x218F,
		0x2C00, 0x2FEF,
		0x3001, 0xD7FF,
		0xF900, 0xFDCF,
		0xFDF0, 0xFFFD,
		0x10000, 0xEFFFF, // last of PN_CHARS_BASE
		'_', '_',
		':', ':', // last of PN_CHARS_U
		'-', '-',
		'0', '9',
		0x00B7, 0x00B7,
		0x0300, 0x036F,
		0x203F, 0x2040, // last of PN_CHARS
	}
	pnLocalTab = []rune{
		'A', 'Z',
		'a', 'z',
		0x00C0, 0x00D6,
		0x00D8, 0x00F6,
		0x00F8, 0x02FF,
		0x0370, 0x037D,
		0x037F, 0x1FFF,
		0x200C, 0x200D,
		0x2070, 0x218F,
		0x2C00, 0x2FEF,
		0x3001, 0xD7FF,
		0xF900, 0xFDCF,
		0xFDF0, 0xFFFD,
		0x10000, 0xEFFFF, // last of PN_CHARS_BASE
		'_', '_', // last of PN_CHARS_U
		':', ':',
		'0', '9',
		'%', '%',
		'\\', '\\', // last of PN_LOCAL first character
		'-', '-',
		0x00B7, 0x00B7,
		0x0300, 0x036F,
		0x203F, 0x2040,
		'.', '.', // last of PN_LOCAL (except last character)
	}
)

func isAlpha(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isAlphaOrDigit(r rune) bool { return isAlpha(r) || isDigit(r) }

func isWhitespaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func inTable(r rune, tab []rune) bool {
	for i := 0; i < len(tab); i += 2 {
		if r >= tab[i] && r <= tab[i+1] {
			return true
		}
	}
	return false
}

func isPnCharsBase(r rune) bool { return inTable(r, pnCharsTab[:2*14]) }
func isPnCharsU(r rune) bool    { return inTable(r, pnCharsTab[:2*16]) }
func isPnChars(r rune) bool     { return inTable(r, pnCharsTab) }
func isPnLocalFirst(r rune) bool { return inTable(r, pnLocalTab[:2*19]) }
func isPnLocalMid(r rune) bool  { return inTable(r, pnLocalTab) }

const (
	runeError rune = unicode.MaxRune + 1

	t1 = 0x00
	tx = 0x80
	t2 = 0xC0
	t3 = 0xE0
	t4 = 0xF0
	t5 = 0xF8

	maskx = 0x3F
	mask2 = 0x1F
	mask3 = 0x0F
	mask4 = 0x07

	rune1Max = 1<<7 - 1
	rune2Max = 1<<11 - 1
	rune3Max = 1<<16 - 1
)

// decodeRune is utf8.DecodeRune, except illegal bytes decode to a private
// runeError sentinel distinct from unicode.ReplacementChar (which N3
// string literals are allowed to contain literally). Transcribed from the
// teacher's rune.go, itself adapted from the Go standard library's
// unicode/utf8 (BSD-licensed) and github.com/cznic/scanner.
func decodeRune(s []byte) (r rune, size int) {
	n := len(s)
	if n < 1 {
		return 0, 0
	}
	c0 := s[0]

	if c0 < tx {
		return rune(c0), 1
	}
	if c0 < t2 {
		return runeError, 1
	}
	if n < 2 {
		return runeError, 1
	}
	c1 := s[1]
	if c1 < tx || t2 <= c1 {
		return runeError, 1
	}
	if c0 < t3 {
		r = rune(c0&mask2)<<6 | rune(c1&maskx)
		if r <= rune1Max {
			return runeError, 1
		}
		return r, 2
	}
	if n < 3 {
		return runeError, 1
	}
	c2 := s[2]
	if c2 < tx || t2 <= c2 {
		return runeError, 1
	}
	if c0 < t4 {
		r = rune(c0&mask3)<<12 | rune(c1&maskx)<<6 | rune(c2&maskx)
		if r <= rune2Max {
			return runeError, 1
		}
		return r, 3
	}
	if n < 4 {
		return runeError, 1
	}
	c3 := s[3]
	if c3 < tx || t2 <= c3 {
		return runeError, 1
	}
	if c0 < t5 {
		r = rune(c0&mask4)<<18 | rune(c1&maskx)<<12 | rune(c2&maskx)<<6 | rune(c3&maskx)
		if r <= rune3Max || unicode.MaxRune < r {
			return runeError, 1
		}
		return r, 4
	}
	return runeError, 1
}

// unescapeNumericString decodes the backslash escapes (\t \b \n \r \f \" \'
// \\ \uXXXX \UXXXXXXXX) of a string literal's body into its final value.
func unescapeNumericString(s string) (string, error) {
	r := []rune(s)
	out := make([]rune, 0, len(r))
	for i := 0; i < len(r); {
		if r[i] != '\\' {
			out = append(out, r[i])
			i++
			continue
		}
		i++
		if i >= len(r) {
			return "", &LexError{Message: "truncated escape sequence"}
		}
		switch r[i] {
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 'f':
			out = append(out, '\f')
		case '"':
			out = append(out, '"')
		case '\'':
			out = append(out, '\'')
		case '\\':
			out = append(out, '\\')
		case 'u':
			if i+4 >= len(r) {
				return "", &LexError{Message: "short unicode escape"}
			}
			v, err := strconv.ParseInt(string(r[i+1:i+5]), 16, 32)
			if err != nil {
				return "", &LexError{Message: "invalid unicode escape"}
			}
			out = append(out, rune(v))
			i += 4
		case 'U':
			if i+8 >= len(r) {
				return "", &LexError{Message: "short unicode escape"}
			}
			v, err := strconv.ParseInt(string(r[i+1:i+9]), 16, 32)
			if err != nil {
				return "", &LexError{Message: "invalid unicode escape"}
			}
			out = append(out, rune(v))
			i += 8
		default:
			return "", &LexError{Message: "disallowed escape character"}
		}
		i++
	}
	return string(out), nil
}

// unescapeReservedChars decodes the PN_LOCAL escapes (\_ \~ \. \- ... ) used
// in prefixed-name local parts.
func unescapeReservedChars(s string) string {
	r := []rune(s)
	out := make([]rune, 0, len(r))
	for i := 0; i < len(r); i++ {
		if r[i] != '\\' {
			out = append(out, r[i])
			continue
		}
		i++
		if i >= len(r) {
			break
		}
		out = append(out, r[i])
	}
	return string(out)
}

// lowerLangTag case-folds a language tag at emission time (spec.md §4.3:
// "lang lowercased ... only where the recognizer demands it"). Uses
// golang.org/x/text/cases rather than strings.ToLower so tags with
// non-ASCII script subtags fold the same way a BCP 47-aware consumer
// would expect.
func lowerLangTag(tag string) string {
	return cases.Lower(language.Und).String(tag)
}
