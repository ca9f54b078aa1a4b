package scratch

import "errors"

// ErrInvalidArgument marks a caller bug: an out-of-range card index, a
// malformed coordinate or radius, or an unusable session configuration.
var ErrInvalidArgument = errors.New("invalid argument")
