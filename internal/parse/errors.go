// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"errors"
	"fmt"
)

// Causes wrapped by ParseError.
var (
	// ErrMalformedXML indicates the document is not well-formed XML or is
	// not a PubmedArticle.
	ErrMalformedXML = errors.New("malformed XML")

	// ErrMissingPMID indicates the record has no PMID.
	ErrMissingPMID = errors.New("missing PMID")

	// ErrMissingTitle indicates the record has neither an article title
	// nor a vernacular title.
	ErrMissingTitle = errors.New("missing title")
)

// ParseError reports a record that could not be turned into a Paper.
// It is non-fatal for a pipeline run: the record is skipped.
type ParseError struct {
	// PMID is the record identifier when it could be recovered.
	PMID string
	Err  error
}

func (e *ParseError) Error() string {
	if e.PMID != "" {
		return fmt.Sprintf("parsing article %s: %v", e.PMID, e.Err)
	}
	return fmt.Sprintf("parsing article: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is, or wraps, a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
