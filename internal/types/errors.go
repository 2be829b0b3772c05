package types

import "errors"

// ErrInvalidInput is returned when a buffer, sample rate or transform length cannot be analyzed.
var ErrInvalidInput = errors.New("invalid input")
