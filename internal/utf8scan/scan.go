// Package utf8scan is the single source of truth for UTF-8 byte-length and
// codepoint decoding used across the module. No other package
// re-implements these length tables (spec.md §4.1).
package utf8scan

import "github.com/nanotrie/subword/internal/errs"

// MaxCodepoint is the largest legal Unicode scalar value.
const MaxCodepoint = 0x10FFFF

// byteLengthTable maps a leading byte's high bits to the length of the UTF-8
// sequence it starts, or 0 if the byte can never lead a sequence.
var byteLengthTable = func() [256]uint8 {
	var t [256]uint8
	for b := 0; b < 256; b++ {
		switch {
		case b&0x80 == 0x00:
			t[b] = 1
		case b&0xE0 == 0xC0:
			t[b] = 2
		case b&0xF0 == 0xE0:
			t[b] = 3
		case b&0xF8 == 0xF0:
			t[b] = 4
		default:
			t[b] = 0
		}
	}
	return t
}()

// minForLen is the smallest codepoint that legally requires len bytes;
// anything below it is an overlong encoding.
var minForLen = [5]rune{0, 0, 0x80, 0x800, 0x10000}

// ByteLength returns the UTF-8 sequence length {1,2,3,4} a leading byte
// starts, or 0 if the byte is not a valid lead byte (a continuation byte or
// one of the bytes 0xF8-0xFF that UTF-8 never uses).
func ByteLength(lead byte) int {
	return int(byteLengthTable[lead])
}

// Extract returns the slice of buf starting at i that holds exactly one
// UTF-8-encoded character, and its length. It only validates the length
// fits in buf; it does not validate the bytes decode to a legal codepoint
// (use ToCodepoint for that).
func Extract(buf []byte, i int) ([]byte, int, error) {
	if i < 0 || i >= len(buf) {
		return nil, 0, errs.New(errs.InvalidUtf8, "index out of range")
	}
	n := ByteLength(buf[i])
	if n == 0 {
		return nil, 0, errs.New(errs.InvalidUtf8, "invalid leading byte")
	}
	if i+n > len(buf) {
		return nil, 0, errs.New(errs.InvalidUtf8, "truncated sequence")
	}
	return buf[i : i+n], n, nil
}

// ToCodepoint decodes the single UTF-8 character at the start of buf,
// returning its scalar value and byte length. It rejects truncated,
// overlong, surrogate-range, and out-of-range sequences.
func ToCodepoint(buf []byte) (cp rune, length int, err error) {
	if len(buf) == 0 {
		return 0, 0, errs.New(errs.InvalidUtf8, "empty input")
	}

	n := ByteLength(buf[0])
	if n == 0 {
		return 0, 0, errs.New(errs.InvalidUtf8, "invalid leading byte")
	}
	if len(buf) < n {
		return 0, 0, errs.New(errs.InvalidUtf8, "truncated sequence")
	}

	var v rune
	switch n {
	case 1:
		v = rune(buf[0])
	case 2:
		v = rune(buf[0] & 0x1F)
	case 3:
		v = rune(buf[0] & 0x0F)
	case 4:
		v = rune(buf[0] & 0x07)
	}

	for i := 1; i < n; i++ {
		b := buf[i]
		if b&0xC0 != 0x80 {
			return 0, 0, errs.New(errs.InvalidUtf8, "bad continuation byte")
		}
		v = (v << 6) | rune(b&0x3F)
	}

	if v < minForLen[n] {
		return 0, 0, errs.New(errs.InvalidUtf8, "overlong encoding")
	}
	if v > MaxCodepoint {
		return 0, 0, errs.New(errs.InvalidUtf8, "codepoint out of range")
	}
	if v >= 0xD800 && v <= 0xDFFF {
		return 0, 0, errs.New(errs.InvalidUtf8, "surrogate codepoint")
	}

	return v, n, nil
}

// Valid reports whether buf is entirely well-formed UTF-8.
func Valid(buf []byte) bool {
	for i := 0; i < len(buf); {
		_, n, err := ToCodepoint(buf[i:])
		if err != nil {
			return false
		}
		i += n
	}
	return true
}

// Encode appends the UTF-8 encoding of cp to dst and returns the result,
// mirroring utf8.AppendRune except that it does not validate cp: a
// surrogate is written in its raw 3-byte form and a value above
// MaxCodepoint in the 4-byte form, neither replaced by U+FFFD.
func Encode(dst []byte, cp rune) []byte {
	switch {
	case cp < 0x80:
		return append(dst, byte(cp))
	case cp < 0x800:
		return append(dst, byte(0xC0|(cp>>6)), byte(0x80|(cp&0x3F)))
	case cp < 0x10000:
		return append(dst,
			byte(0xE0|(cp>>12)),
			byte(0x80|((cp>>6)&0x3F)),
			byte(0x80|(cp&0x3F)))
	default:
		return append(dst,
			byte(0xF0|(cp>>18)),
			byte(0x80|((cp>>12)&0x3F)),
			byte(0x80|((cp>>6)&0x3F)),
			byte(0x80|(cp&0x3F)))
	}
}
