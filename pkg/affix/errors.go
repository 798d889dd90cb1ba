package affix

import "errors"

// ErrRule marks a malformed .aff directive that forced the load to
// abort (a recoverable one is logged and skipped instead, per spec.md
// §7). ErrIO wraps a scanner failure reading the .aff stream.
var (
	ErrRule = errors.New("affix: rule error")
	ErrIO   = errors.New("affix: io error")
)
