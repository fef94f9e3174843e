// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperscraper pipeline:
// the Paper and Author records built by the parser, the affiliation
// classification, and the configuration structs consumed by the client and
// the CLI.
package types

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AffiliationType is the coarse classification of an author's affiliation.
type AffiliationType int

const (
	// Unknown is the zero value: no affiliation text, or no keyword matched.
	Unknown AffiliationType = iota
	Academic
	NonAcademic
)

func (t AffiliationType) String() string {
	switch t {
	case Academic:
		return "academic"
	case NonAcademic:
		return "non_academic"
	default:
		return "unknown"
	}
}

// MarshalText encodes the type as its String form for JSON and YAML output.
func (t AffiliationType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the String form produced by MarshalText.
func (t *AffiliationType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "academic":
		*t = Academic
	case "non_academic", "non-academic":
		*t = NonAcademic
	case "unknown", "":
		*t = Unknown
	default:
		return fmt.Errorf("unknown affiliation type %q", text)
	}
	return nil
}

// Author is one author of a Paper. It has no identity outside its paper.
type Author struct {
	// Name is "ForeName LastName", or the collective name for group authors.
	Name string `json:"name" yaml:"name"`

	// Affiliation is the first affiliation entry listed for the author.
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`

	// Email is the first address found in the author's affiliation text.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// AffiliationType is computed once, at parse time, from Affiliation.
	AffiliationType AffiliationType `json:"affiliation_type" yaml:"affiliation_type"`
}

func (a Author) IsAcademic() bool    { return a.AffiliationType == Academic }
func (a Author) IsNonAcademic() bool { return a.AffiliationType == NonAcademic }
func (a Author) IsUnknown() bool     { return a.AffiliationType == Unknown }

// PubMedURLBase prefixes a PMID to form the article's web address.
const PubMedURLBase = "https://pubmed.ncbi.nlm.nih.gov/"

// Paper is one PubMed record. The parser builds it once; nothing mutates it
// afterwards, and the grouped views below are computed on demand.
type Paper struct {
	// PMID is the PubMed identifier, unique per record.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title with inline markup flattened.
	Title string `json:"title" yaml:"title"`

	// PublicationDate is nil when the record carries no usable date.
	// Partial dates are normalized to the first day of the missing unit.
	PublicationDate *time.Time `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`

	JournalTitle string `json:"journal_title,omitempty" yaml:"journal_title,omitempty"`
	DOI          string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ReferenceCount is nil when the record has no reference list.
	ReferenceCount *int `json:"reference_count,omitempty" yaml:"reference_count,omitempty"`

	// Abstract joins all abstract sections with newlines.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Authors lists the paper authors in source order.
	Authors []Author `json:"authors" yaml:"authors"`
}

// AcademicAuthors returns the authors classified as academic.
func (p *Paper) AcademicAuthors() []Author {
	return p.authorsOf(Academic)
}

// NonAcademicAuthors returns the authors classified as non-academic.
func (p *Paper) NonAcademicAuthors() []Author {
	return p.authorsOf(NonAcademic)
}

// UnknownAuthors returns the authors whose affiliation could not be classified.
func (p *Paper) UnknownAuthors() []Author {
	return p.authorsOf(Unknown)
}

func (p *Paper) authorsOf(t AffiliationType) []Author {
	var out []Author
	for _, a := range p.Authors {
		if a.AffiliationType == t {
			out = append(out, a)
		}
	}
	return out
}

// HasNonAcademicAuthor reports whether at least one author is non-academic.
// A paper without authors never qualifies.
func (p *Paper) HasNonAcademicAuthor() bool {
	for _, a := range p.Authors {
		if a.IsNonAcademic() {
			return true
		}
	}
	return false
}

// CompanyAffiliations returns the sorted, unique affiliation texts of the
// non-academic authors.
func (p *Paper) CompanyAffiliations() []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range p.Authors {
		if !a.IsNonAcademic() || a.Affiliation == "" || seen[a.Affiliation] {
			continue
		}
		seen[a.Affiliation] = true
		out = append(out, a.Affiliation)
	}
	sort.Strings(out)
	return out
}

// CorrespondingEmail returns the first email found among the authors, in
// author order, or "" when none has one.
func (p *Paper) CorrespondingEmail() string {
	for _, a := range p.Authors {
		if a.Email != "" {
			return a.Email
		}
	}
	return ""
}

// FormattedAbstract returns the abstract with runs of whitespace collapsed.
func (p *Paper) FormattedAbstract() string {
	return strings.Join(strings.Fields(p.Abstract), " ")
}

// PubMedURL returns the article page on pubmed.ncbi.nlm.nih.gov.
func (p *Paper) PubMedURL() string {
	return PubMedURLBase + p.PMID + "/"
}
