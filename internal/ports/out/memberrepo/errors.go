package memberrepo

import "errors"

var (
	// ErrUnknownField indicates a predicate or sort key referenced a field the store cannot address.
	ErrUnknownField = errors.New("unknown member field")

	// ErrUnsupportedRule indicates a predicate contained a rule kind the store does not implement.
	ErrUnsupportedRule = errors.New("unsupported predicate rule")
)
