// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import "fmt"

// ValidationError indicates a PDF failed the cheap pre-extraction checks.
// Validation failures are never retried: the file will not get smaller or
// grow a signature on a second attempt.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid PDF %s: %s", e.Path, e.Reason)
}

// ParsingError indicates the extraction engine failed or returned no
// usable result.
type ParsingError struct {
	Path string
	Err  error
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParsingError) Unwrap() error { return e.Err }
