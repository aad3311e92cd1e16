package ecoguard

import "errors"

var (
	// ErrUnknownSeverity is returned when a severity name or value is not recognized.
	ErrUnknownSeverity = errors.New("unknown severity")
	// ErrUnknownCategory is returned when a category name or value is not recognized.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownFormat is returned when an output format name is not recognized.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrMalformedResult is returned when a serialized issue or result cannot be reconstructed.
	ErrMalformedResult = errors.New("malformed analysis result")
	// ErrRuleFailed wraps any error or panic raised by a rule during a check.
	ErrRuleFailed = errors.New("rule failed")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)
