package core

import "errors"

// Error classes shared by every stage of the effect. All of them are fatal:
// the same inputs reproduce the same failure, so callers never retry.
var (
	// ErrConfiguration covers invalid zero positions, unknown delay functions,
	// malformed function arguments and degenerate delay profiles.
	ErrConfiguration = errors.New("configuration error")

	// ErrStream covers source decode failures, sink write failures and a
	// source ending before its declared frame count.
	ErrStream = errors.New("stream error")

	// ErrNumeric marks internal invariant violations such as non-finite
	// delay values or an out-of-range buffer offset.
	ErrNumeric = errors.New("numeric error")
)
