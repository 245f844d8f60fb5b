// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import "fmt"

// TimeoutExhaustedError indicates every download attempt timed out and
// the retry budget is spent.
type TimeoutExhaustedError struct {
	PaperID  string
	Attempts int
	Err      error
}

func (e *TimeoutExhaustedError) Error() string {
	return fmt.Sprintf("download of %s timed out after %d attempts: %v", e.PaperID, e.Attempts, e.Err)
}

func (e *TimeoutExhaustedError) Unwrap() error { return e.Err }

// DownloadError indicates the download failed for a non-timeout reason
// after exhausting retries, or could not be attempted at all.
type DownloadError struct {
	PaperID  string
	Attempts int
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download of %s failed after %d attempts: %v", e.PaperID, e.Attempts, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
