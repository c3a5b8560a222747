// Package errs defines the typed error kinds shared by every core package.
//
// Every operation that can fail on bad input returns one of these kinds,
// never a panic. Use Wrap to attach positional/contextual detail while
// keeping the kind recoverable via errors.Is.
package errs

import "github.com/pkg/errors"

// Kind identifies the class of failure, independent of any human-readable
// detail attached by Wrap.
type Kind int

const (
	_ Kind = iota
	InvalidUtf8
	EmptyKey
	UnsortedOrDuplicate
	TooMany
	SchemaMismatch
	InvalidPosLine
	UnknownId
	InvalidFallbackSequence
	CorruptBlob
	IoFailed
)

func (k Kind) String() string {
	switch k {
	case InvalidUtf8:
		return "InvalidUtf8"
	case EmptyKey:
		return "EmptyKey"
	case UnsortedOrDuplicate:
		return "UnsortedOrDuplicate"
	case TooMany:
		return "TooMany"
	case SchemaMismatch:
		return "SchemaMismatch"
	case InvalidPosLine:
		return "InvalidPosLine"
	case UnknownId:
		return "UnknownId"
	case InvalidFallbackSequence:
		return "InvalidFallbackSequence"
	case CorruptBlob:
		return "CorruptBlob"
	case IoFailed:
		return "IoFailed"
	default:
		return "Unknown"
	}
}

// sentinel is the error value every Kind resolves to under errors.Is; Wrap
// layers context on top of it without losing that identity.
type sentinel struct{ kind Kind }

func (s *sentinel) Error() string { return s.kind.String() }

var sentinels = map[Kind]*sentinel{
	InvalidUtf8:             {InvalidUtf8},
	EmptyKey:                {EmptyKey},
	UnsortedOrDuplicate:     {UnsortedOrDuplicate},
	TooMany:                 {TooMany},
	SchemaMismatch:          {SchemaMismatch},
	InvalidPosLine:          {InvalidPosLine},
	UnknownId:               {UnknownId},
	InvalidFallbackSequence: {InvalidFallbackSequence},
	CorruptBlob:             {CorruptBlob},
	IoFailed:                {IoFailed},
}

// Sentinel returns the stable error value identifying kind, for use with
// errors.Is.
func Sentinel(kind Kind) error { return sentinels[kind] }

// New builds a fresh error of kind with the given contextual message.
func New(kind Kind, msg string) error {
	return errors.WithMessage(sentinels[kind], msg)
}

// Newf builds a fresh error of kind with a formatted contextual message.
func Newf(kind Kind, format string, args ...any) error {
	return errors.WithMessagef(sentinels[kind], format, args...)
}

// Wrap attaches kind identity and msg to an existing cause, preserving the
// cause in the error chain for %+v stack rendering.
func Wrap(kind Kind, cause error, msg string) error {
	if cause == nil {
		return New(kind, msg)
	}
	return errors.Wrap(&causeWithKind{kind: kind, cause: cause}, msg)
}

type causeWithKind struct {
	kind  Kind
	cause error
}

func (c *causeWithKind) Error() string { return c.kind.String() + ": " + c.cause.Error() }
func (c *causeWithKind) Unwrap() error { return c.cause }
func (c *causeWithKind) Is(target error) bool {
	s, ok := target.(*sentinel)
	return ok && s.kind == c.kind
}

// Of reports the Kind of err, if err (or a wrapped cause) carries one.
func Of(err error) (Kind, bool) {
	for err != nil {
		if s, ok := err.(*sentinel); ok {
			return s.kind, true
		}
		if c, ok := err.(*causeWithKind); ok {
			return c.kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = u.Unwrap()
	}
	return 0, false
}
