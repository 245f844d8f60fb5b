// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import "fmt"

// TimeoutError indicates the arXiv API did not respond within the
// configured timeout. The call may be retried by the caller.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("arXiv API request timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// APIError indicates the arXiv API returned a non-2xx status.
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("arXiv API returned HTTP %d", e.StatusCode)
}

// ParseError indicates the top-level Atom feed could not be decoded.
// Unlike a malformed individual entry (skipped with a warning), this is
// fatal to the fetch: there is no partial result.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing arXiv response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
