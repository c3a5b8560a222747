// Package charclass classifies single UTF-8 characters and whole strings
// into a small bitmask of character kinds (spec.md §3 "CharKind", §4.2).
package charclass

import (
	"github.com/nanotrie/subword/internal/utf8scan"
	"golang.org/x/text/width"
)

// Kind is the 3-bit character-class mask.
type Kind uint8

const (
	Digit    Kind = 1 << 0
	Alphabet Kind = 1 << 1
	Katakana Kind = 1 << 2
	Any      Kind = Digit | Alphabet | Katakana
	Other    Kind = 0
)

// String renders k as the pipe-joined names of its set bits, "any" when
// every bit is set, or "other" when none are — used by the patterns text
// sidecar, where char_kind must be human-readable.
func (k Kind) String() string {
	switch k {
	case Any:
		return "any"
	case Other:
		return "other"
	}
	s := ""
	if k&Digit != 0 {
		s += "digit"
	}
	if k&Alphabet != 0 {
		if s != "" {
			s += "|"
		}
		s += "alphabet"
	}
	if k&Katakana != 0 {
		if s != "" {
			s += "|"
		}
		s += "katakana"
	}
	return s
}

// Table maps a codepoint to its Kind mask. Absence means the character is
// unclassified ("OTHER" dominates on classification, per spec.md §4.2).
type Table struct {
	m map[rune]Kind
}

// NewTable returns an empty Table. Seed alphabets are added with
// AddAlphabet; bits are OR'd together if a rune appears in more than one
// seed.
func NewTable() *Table {
	t := &Table{m: make(map[rune]Kind)}
	return t
}

// AddAlphabet marks every rune of alphabet with kind, additionally
// registering any full-width/half-width counterpart known to
// golang.org/x/text/width so Japanese full-width digits/letters (e.g. "０"
// for "0") classify the same as their narrow form, per spec.md §1's mixed
// "full-width alphanumerics" scope and §9's "configuration, not process-wide
// state" guidance — this only runs at table-construction time.
func (t *Table) AddAlphabet(alphabet string, kind Kind) {
	for _, r := range alphabet {
		t.m[r] |= kind
		if variant, ok := widthVariant(r); ok {
			t.m[variant] |= kind
		}
	}
}

func widthVariant(r rune) (rune, bool) {
	s := string(r)

	// Narrow -> fullwidth (e.g. "0" -> "０").
	if wide := width.Widen.String(s); wide != s {
		if wr := []rune(wide); len(wr) == 1 {
			return wr[0], true
		}
	}

	// Fullwidth/halfwidth -> narrow (e.g. "０" -> "0").
	if narrow := width.Fold.String(s); narrow != s {
		if nr := []rune(narrow); len(nr) == 1 {
			return nr[0], true
		}
	}

	return 0, false
}

// Lookup returns the Kind registered for r, or Other if unregistered.
func (t *Table) Lookup(r rune) (Kind, bool) {
	k, ok := t.m[r]
	return k, ok
}

// Classify ANDs the masks of every character in s; returns Other if s
// contains a character absent from the table, or if the running mask ever
// becomes zero. An empty string classifies as Any, per spec.md §4.2.
func Classify(s []byte, t *Table) Kind {
	m := Any
	for i := 0; i < len(s); {
		cp, n, err := utf8scan.ToCodepoint(s[i:])
		if err != nil {
			return Other
		}
		k, ok := t.Lookup(cp)
		if !ok {
			return Other
		}
		m &= k
		if m == Other {
			return Other
		}
		i += n
	}
	return m
}

// DefaultDigits, DefaultAlphabet, and DefaultKatakana are the seed alphabets
// spec.md §9 calls out as "immutable configuration" injected into
// construction rather than held as process-wide state. Callers targeting a
// different corpus build their own Table instead of mutating these.
const (
	DefaultDigits   = "0123456789"
	DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	DefaultKatakana = "アイウエオカキクケコサシスセソタチツテトナニヌネノハヒフヘホマミムメモヤユヨラリルレロワヲンガギグゲゴザジズゼゾダヂヅデドバビブベボパピプペポャュョッーヴ"
)

// NewDefaultTable builds the table used by the tokenizer/trainer unless a
// caller supplies their own alphabets.
func NewDefaultTable() *Table {
	t := NewTable()
	t.AddAlphabet(DefaultDigits, Digit)
	t.AddAlphabet(DefaultAlphabet, Alphabet)
	t.AddAlphabet(DefaultKatakana, Katakana)
	return t
}
