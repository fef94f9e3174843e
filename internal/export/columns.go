// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders papers as CSV, JSON, YAML or a console table.
package export

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pdiddy/paperscraper/pkg/types"
)

// Column names.
const (
	ColPMID                = "PubmedID"
	ColTitle               = "Title"
	ColPublicationDate     = "Publication Date"
	ColNonAcademicAuthors  = "Non-academic Author(s)"
	ColAcademicAuthors     = "Academic Author(s)"
	ColUnknownAuthors      = "Unknown Author(s)"
	ColCompanyAffiliations = "Company Affiliation(s)"
	ColEmail               = "Corresponding Email"
	ColDOI                 = "DOI"
	ColJournal             = "Journal"
	ColReferenceCount      = "Reference Count"
	ColPubMedURL           = "PubMed URL"
	ColAbstract            = "Abstract"
)

// ColumnSet names a predefined list of columns.
type ColumnSet string

// Predefined column sets.
const (
	SetDefault ColumnSet = "default"
	SetAll     ColumnSet = "all"
	SetMinimal ColumnSet = "minimal"
)

var allColumns = []string{
	ColPMID,
	ColTitle,
	ColPublicationDate,
	ColNonAcademicAuthors,
	ColAcademicAuthors,
	ColUnknownAuthors,
	ColCompanyAffiliations,
	ColEmail,
	ColDOI,
	ColJournal,
	ColReferenceCount,
	ColPubMedURL,
}

var defaultColumns = []string{
	ColPMID,
	ColTitle,
	ColPublicationDate,
	ColNonAcademicAuthors,
	ColCompanyAffiliations,
	ColEmail,
}

var minimalColumns = []string{
	ColPMID,
	ColTitle,
	ColCompanyAffiliations,
}

// ParseColumnSet validates a column set name. The empty string selects the
// default set.
func ParseColumnSet(s string) (ColumnSet, error) {
	switch ColumnSet(strings.ToLower(strings.TrimSpace(s))) {
	case "", SetDefault:
		return SetDefault, nil
	case SetAll:
		return SetAll, nil
	case SetMinimal:
		return SetMinimal, nil
	}
	return "", fmt.Errorf("invalid column set %q: must be default, all, or minimal", s)
}

// Columns returns the columns of a predefined set, without Abstract.
func (s ColumnSet) Columns() []string {
	switch s {
	case SetAll:
		return slices.Clone(allColumns)
	case SetMinimal:
		return slices.Clone(minimalColumns)
	default:
		return slices.Clone(defaultColumns)
	}
}

// AllColumns returns every known column name, Abstract last.
func AllColumns() []string {
	return append(slices.Clone(allColumns), ColAbstract)
}

// Headers resolves the columns to output. A non-empty custom list overrides
// set and is validated; Abstract is accepted in it only when
// includeAbstract is true. Otherwise the set's columns are returned with
// Abstract appended when includeAbstract is true.
func Headers(set ColumnSet, custom []string, includeAbstract bool) ([]string, error) {
	var headers []string
	for _, c := range custom {
		if c = strings.TrimSpace(c); c != "" {
			headers = append(headers, c)
		}
	}

	if len(headers) > 0 {
		valid := slices.Clone(allColumns)
		if includeAbstract {
			valid = append(valid, ColAbstract)
		}
		var invalid []string
		for _, h := range headers {
			if !slices.Contains(valid, h) {
				invalid = append(invalid, h)
			}
		}
		if len(invalid) > 0 {
			slices.Sort(valid)
			return nil, fmt.Errorf("invalid column names %q; valid options: %s", invalid, strings.Join(valid, ", "))
		}
		return headers, nil
	}

	headers = set.Columns()
	if includeAbstract {
		headers = append(headers, ColAbstract)
	}
	return headers, nil
}

// HeadersFromConfig resolves headers from an ExportConfig.
func HeadersFromConfig(cfg types.ExportConfig) ([]string, error) {
	set, err := ParseColumnSet(cfg.ColumnSet)
	if err != nil {
		return nil, err
	}
	return Headers(set, cfg.CustomColumns, cfg.IncludeAbstract)
}

// SplitColumns splits a comma-separated column list.
func SplitColumns(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Row returns the cell values of p for headers. Author names and
// affiliations are joined with "; "; absent values are empty.
func Row(p *types.Paper, headers []string) []string {
	row := make([]string, len(headers))
	for i, h := range headers {
		row[i] = cell(p, h)
	}
	return row
}

func cell(p *types.Paper, column string) string {
	switch column {
	case ColPMID:
		return p.PMID
	case ColTitle:
		return p.Title
	case ColPublicationDate:
		if p.PublicationDate == nil {
			return ""
		}
		return p.PublicationDate.Format("2006-01-02")
	case ColNonAcademicAuthors:
		return names(p.NonAcademicAuthors())
	case ColAcademicAuthors:
		return names(p.AcademicAuthors())
	case ColUnknownAuthors:
		return names(p.UnknownAuthors())
	case ColCompanyAffiliations:
		return strings.Join(p.CompanyAffiliations(), "; ")
	case ColEmail:
		return p.CorrespondingEmail()
	case ColDOI:
		return p.DOI
	case ColJournal:
		return p.JournalTitle
	case ColReferenceCount:
		if p.ReferenceCount == nil {
			return ""
		}
		return strconv.Itoa(*p.ReferenceCount)
	case ColPubMedURL:
		return p.PubMedURL()
	case ColAbstract:
		return p.FormattedAbstract()
	}
	return ""
}

func names(authors []types.Author) string {
	out := make([]string, len(authors))
	for i, a := range authors {
		out[i] = a.Name
	}
	return strings.Join(out, "; ")
}
