// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the E-utilities client.
var (
	// ErrEmptyQuery indicates a blank search term.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrRejectedQuery indicates esearch refused or could not interpret the query.
	ErrRejectedQuery = errors.New("query rejected by PubMed")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from PubMed")

	// ErrHTTPStatus indicates a non-success HTTP status after retries.
	ErrHTTPStatus = errors.New("unexpected HTTP status from PubMed")
)

// QueryError reports a search that failed or was rejected. It is fatal for
// a pipeline run.
type QueryError struct {
	Query      string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *QueryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("searching PubMed for %q (HTTP %d): %v", e.Query, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("searching PubMed for %q: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// FetchError reports one identifier group that could not be fetched after
// retries. It is not fatal: the other groups of the run proceed.
type FetchError struct {
	// Group is the zero-based index of the group within the FetchBatch call.
	Group int
	// IDs are the identifiers the group requested.
	IDs        []string
	StatusCode int // 0 when no HTTP response was received
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	ids := strings.Join(e.IDs, ",")
	if len(e.IDs) > 3 {
		ids = strings.Join(e.IDs[:3], ",") + fmt.Sprintf(",... (%d ids)", len(e.IDs))
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching group %d [%s] failed after %d attempt(s) (HTTP %d): %v", e.Group+1, ids, e.Attempts, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetching group %d [%s] failed after %d attempt(s): %v", e.Group+1, ids, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsQueryError reports whether err is, or wraps, a *QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

// IsFetchError reports whether err is, or wraps, a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
