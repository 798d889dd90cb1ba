package spellfile

import "errors"

// The exhaustive error taxonomy of spec.md §7. Each is a sentinel value
// so callers can use errors.Is against it even though concrete errors
// are wrapped with additional context via fmt.Errorf("...: %w", ...).
var (
	// ErrTruncated is returned on unexpected end of file while reading a
	// section or tree.
	ErrTruncated = errors.New("spellfile: truncated input")
	// ErrFormat covers magic mismatch, a required-but-unknown section, a
	// length field out of range, a count inconsistency, a duplicate
	// entry in a sorted list, or an invalid flag form.
	ErrFormat = errors.New("spellfile: format error")
	// ErrVersion is returned for a file version too old or too new for
	// this reader.
	ErrVersion = errors.New("spellfile: unsupported version")
	// ErrIO wraps an underlying file I/O failure.
	ErrIO = errors.New("spellfile: io error")
	// ErrResource names an allocation failure. No code path in this
	// package returns it, and the loader has no degraded mode.
	ErrResource = errors.New("spellfile: resource error")
	// ErrRule is returned when a prefix condition or compound rule
	// stored in a .spl file fails to compile, and by
	// engine.LoadLanguage for a language that sets NOBREAK together with
	// a compound flag. The .aff compiler uses its own affix.ErrRule.
	ErrRule = errors.New("spellfile: rule error")
)

const (
	minVersion = 50
	maxVersion = 99
)
