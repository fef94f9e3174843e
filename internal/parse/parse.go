// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse converts PubMed efetch XML into Paper records.
//
// Parse handles one <PubmedArticle> document; SplitArticleSet cuts an
// efetch <PubmedArticleSet> response into such documents. Only a missing
// PMID, a missing title, or XML that is not well formed is fatal for a
// record. Every other absent element leaves the matching field empty.
package parse

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paperscraper/internal/classify"
	"github.com/pdiddy/paperscraper/pkg/types"
)

// anonymousAuthor names an author block with no usable name fields.
const anonymousAuthor = "(anonymous)"

var (
	emailRE = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	pmidRE  = regexp.MustCompile(`<PMID[^>]*>\s*([^<\s]+)\s*</PMID>`)
	yearRE  = regexp.MustCompile(`\b(\d{4})\b`)
)

// Parse decodes one <PubmedArticle> document into a Paper. Each author is
// classified here, once; the classification is stored on the Author.
func Parse(raw []byte) (*types.Paper, error) {
	var art pubmedArticle
	if err := decodeStrict(raw, &art); err != nil {
		return nil, &ParseError{PMID: PMIDOf(raw), Err: fmt.Errorf("%w: %v", ErrMalformedXML, err)}
	}

	pmid := strings.TrimSpace(art.MedlineCitation.PMID)
	if pmid == "" {
		return nil, &ParseError{Err: ErrMissingPMID}
	}

	a := &art.MedlineCitation.Article
	title := a.ArticleTitle.normalized()
	if title == "" {
		title = a.VernacularTitle.normalized()
	}
	if title == "" {
		return nil, &ParseError{PMID: pmid, Err: ErrMissingTitle}
	}

	p := &types.Paper{
		PMID:            pmid,
		Title:           title,
		PublicationDate: publicationDate(a),
		JournalTitle:    strings.TrimSpace(a.Journal.Title),
		DOI:             doi(&art),
		ReferenceCount:  referenceCount(&art.PubmedData),
		Abstract:        abstract(a.Abstract),
	}

	for _, xa := range a.Authors {
		p.Authors = append(p.Authors, author(xa))
	}
	return p, nil
}

// decodeStrict decodes the document root into v and then reads the rest of
// the input so that trailing malformed content is reported.
func decodeStrict(raw []byte, v any) error {
	d := newDecoder(bytes.NewReader(raw))
	if err := d.Decode(v); err != nil {
		return err
	}
	for {
		if _, err := d.Token(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func newDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	// Records occasionally carry HTML entities such as &nbsp;.
	d.Entity = xml.HTMLEntity
	return d
}

// PMIDOf extracts the first PMID element of a document without fully
// decoding it, for error reports on records that fail to parse. It
// returns "" when none is found.
func PMIDOf(raw []byte) string {
	m := pmidRE.FindSubmatch(raw)
	if m == nil {
		return ""
	}
	return string(m[1])
}

func author(xa xmlAuthor) types.Author {
	var affiliation string
	if len(xa.Affiliations) > 0 {
		affiliation = xa.Affiliations[0].normalized()
	}

	return types.Author{
		Name:            authorName(xa),
		Affiliation:     affiliation,
		Email:           authorEmail(xa),
		AffiliationType: classify.Classify(affiliation),
	}
}

func authorName(xa xmlAuthor) string {
	last := strings.TrimSpace(xa.LastName)
	given := strings.TrimSpace(xa.ForeName)
	if given == "" {
		given = strings.TrimSpace(xa.Initials)
	}

	switch {
	case last != "" && given != "":
		return given + " " + last
	case last != "":
		return last
	}
	if collective := xa.CollectiveName.normalized(); collective != "" {
		return collective
	}
	if given != "" {
		return given
	}
	return anonymousAuthor
}

// authorEmail returns the first address found in any of the author's
// affiliation entries, then in the author's identifier fields.
func authorEmail(xa xmlAuthor) string {
	for _, aff := range xa.Affiliations {
		if m := emailRE.FindString(string(aff)); m != "" {
			return m
		}
	}
	for _, id := range xa.Identifiers {
		if m := emailRE.FindString(id); m != "" {
			return m
		}
	}
	return ""
}

func abstract(sections []mixedText) string {
	var parts []string
	for _, s := range sections {
		if text := strings.TrimSpace(string(s)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

func doi(art *pubmedArticle) string {
	for _, id := range art.PubmedData.ArticleIDs {
		if strings.EqualFold(id.IDType, "doi") {
			if v := strings.TrimSpace(id.Value); v != "" {
				return v
			}
		}
	}
	for _, loc := range art.MedlineCitation.Article.ELocationIDs {
		if strings.EqualFold(loc.EIDType, "doi") {
			if v := strings.TrimSpace(loc.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

func referenceCount(pd *xmlPubmedData) *int {
	if len(pd.ReferenceLists) == 0 {
		return nil
	}
	n := 0
	for _, rl := range pd.ReferenceLists {
		n += len(rl.References)
	}
	return &n
}

// publicationDate prefers the journal issue date, then the MedlineDate
// free-text year, then the electronic article date.
func publicationDate(a *xmlArticle) *time.Time {
	pd := a.Journal.JournalIssue.PubDate
	if year, ok := parseYear(pd.Year); ok {
		return buildDate(year, monthNumber(pd.Month), pd.Day)
	}
	if m := yearRE.FindStringSubmatch(pd.MedlineDate); m != nil {
		if year, ok := parseYear(m[1]); ok {
			return buildDate(year, 0, "")
		}
	}
	for _, ad := range a.ArticleDates {
		if year, ok := parseYear(ad.Year); ok {
			return buildDate(year, monthNumber(ad.Month), ad.Day)
		}
	}
	return nil
}

// buildDate normalizes a possibly partial date. A missing or invalid month
// becomes January; a missing or invalid day becomes the first of the month.
func buildDate(year, month int, day string) *time.Time {
	if month < 1 || month > 12 {
		t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}
	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil || d < 1 || d > daysIn(year, time.Month(month)) {
		d = 1
	}
	t := time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1000 {
		return 0, false
	}
	return y, true
}

var monthAbbrev = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// monthNumber accepts "3", "03", "Mar" or "March"; anything else is 0.
func monthNumber(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0
		}
		return n
	}
	if len(s) < 3 {
		return 0
	}
	return monthAbbrev[strings.ToLower(s[:3])]
}
