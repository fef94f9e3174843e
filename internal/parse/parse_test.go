// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperscraper/pkg/types"
)

const sampleArticle = `<PubmedArticle>
  <MedlineCitation Status="MEDLINE" Owner="NLM">
    <PMID Version="1">38000001</PMID>
    <Article PubModel="Print-Electronic">
      <Journal>
        <JournalIssue CitedMedium="Internet">
          <PubDate><Year>2023</Year><Month>Mar</Month><Day>15</Day></PubDate>
        </JournalIssue>
        <Title>Nature biotechnology</Title>
      </Journal>
      <ArticleTitle>CRISPR screens in <i>vivo</i> identify new targets.</ArticleTitle>
      <ELocationID EIdType="pii" ValidYN="Y">S0000-0000(23)00001-1</ELocationID>
      <Abstract>
        <AbstractText Label="BACKGROUND">Gene editing   is widely used.</AbstractText>
        <AbstractText Label="RESULTS">We found <sup>3</sup> targets.</AbstractText>
      </Abstract>
      <AuthorList CompleteYN="Y">
        <Author ValidYN="Y">
          <LastName>Smith</LastName><ForeName>Jane</ForeName><Initials>J</Initials>
          <AffiliationInfo><Affiliation>Pfizer Inc, New York, NY, USA. jane.smith@pfizer.com.</Affiliation></AffiliationInfo>
        </Author>
        <Author ValidYN="Y">
          <LastName>Doe</LastName><ForeName>John</ForeName><Initials>J</Initials>
          <AffiliationInfo><Affiliation>Dept. of Biology, Harvard University, Cambridge, MA.</Affiliation></AffiliationInfo>
          <AffiliationInfo><Affiliation>Genentech Inc, South San Francisco. jdoe@gene.com</Affiliation></AffiliationInfo>
        </Author>
        <Author ValidYN="Y">
          <LastName>Lee</LastName><Initials>K</Initials>
        </Author>
        <Author ValidYN="Y">
          <CollectiveName>CRISPR <b>Screening</b> Consortium</CollectiveName>
        </Author>
      </AuthorList>
    </Article>
  </MedlineCitation>
  <PubmedData>
    <ArticleIdList>
      <ArticleId IdType="pubmed">38000001</ArticleId>
      <ArticleId IdType="doi">10.1038/s41587-023-00001-1</ArticleId>
    </ArticleIdList>
    <ReferenceList>
      <Reference><Citation>Ref one.</Citation></Reference>
      <Reference><Citation>Ref two.</Citation></Reference>
    </ReferenceList>
    <ReferenceList>
      <Reference><Citation>Ref three.</Citation></Reference>
    </ReferenceList>
  </PubmedData>
</PubmedArticle>`

// article builds a minimal PubmedArticle around the given inner elements.
func article(pmid, title, articleInner string) string {
	var b strings.Builder
	b.WriteString("<PubmedArticle><MedlineCitation>")
	if pmid != "" {
		fmt.Fprintf(&b, "<PMID>%s</PMID>", pmid)
	}
	b.WriteString("<Article>")
	if title != "" {
		fmt.Fprintf(&b, "<ArticleTitle>%s</ArticleTitle>", title)
	}
	b.WriteString(articleInner)
	b.WriteString("</Article></MedlineCitation></PubmedArticle>")
	return b.String()
}

func TestParse_FullRecord(t *testing.T) {
	p, err := Parse([]byte(sampleArticle))
	require.NoError(t, err)

	assert.Equal(t, "38000001", p.PMID)
	assert.Equal(t, "CRISPR screens in vivo identify new targets.", p.Title)
	require.NotNil(t, p.PublicationDate)
	assert.Equal(t, time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), *p.PublicationDate)
	assert.Equal(t, "Nature biotechnology", p.JournalTitle)
	assert.Equal(t, "10.1038/s41587-023-00001-1", p.DOI)
	require.NotNil(t, p.ReferenceCount)
	assert.Equal(t, 3, *p.ReferenceCount)
	assert.Equal(t, "Gene editing   is widely used.\nWe found 3 targets.", p.Abstract)
	assert.Equal(t, "Gene editing is widely used. We found 3 targets.", p.FormattedAbstract())

	require.Len(t, p.Authors, 4)

	assert.Equal(t, "Jane Smith", p.Authors[0].Name)
	assert.Equal(t, types.NonAcademic, p.Authors[0].AffiliationType)
	assert.Equal(t, "jane.smith@pfizer.com", p.Authors[0].Email)

	// Only the first affiliation is classified; the email may come from any entry.
	assert.Equal(t, "John Doe", p.Authors[1].Name)
	assert.Equal(t, "Dept. of Biology, Harvard University, Cambridge, MA.", p.Authors[1].Affiliation)
	assert.Equal(t, types.Academic, p.Authors[1].AffiliationType)
	assert.Equal(t, "jdoe@gene.com", p.Authors[1].Email)

	assert.Equal(t, "K Lee", p.Authors[2].Name)
	assert.Equal(t, "", p.Authors[2].Affiliation)
	assert.Equal(t, types.Unknown, p.Authors[2].AffiliationType)

	assert.Equal(t, "CRISPR Screening Consortium", p.Authors[3].Name)

	assert.Equal(t, "jane.smith@pfizer.com", p.CorrespondingEmail())
	assert.Equal(t, []string{"Pfizer Inc, New York, NY, USA. jane.smith@pfizer.com."}, p.CompanyAffiliations())
	assert.True(t, p.HasNonAcademicAuthor())
}

func TestParse_AffiliationScenarios(t *testing.T) {
	tests := []struct {
		name   string
		author string
		want   types.AffiliationType
	}{
		{
			name:   "company",
			author: `<Author><LastName>A</LastName><AffiliationInfo><Affiliation>Pfizer Inc, New York</Affiliation></AffiliationInfo></Author>`,
			want:   types.NonAcademic,
		},
		{
			name:   "university",
			author: `<Author><LastName>B</LastName><AffiliationInfo><Affiliation>Dept. of Biology, Harvard University</Affiliation></AffiliationInfo></Author>`,
			want:   types.Academic,
		},
		{
			name:   "missing affiliation element",
			author: `<Author><LastName>C</LastName></Author>`,
			want:   types.Unknown,
		},
		{
			name:   "empty affiliation element",
			author: `<Author><LastName>D</LastName><AffiliationInfo><Affiliation>  </Affiliation></AffiliationInfo></Author>`,
			want:   types.Unknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := article("1", "T", "<AuthorList>"+tt.author+"</AuthorList>")
			p, err := Parse([]byte(raw))
			require.NoError(t, err)
			require.Len(t, p.Authors, 1)
			assert.Equal(t, tt.want, p.Authors[0].AffiliationType)
		})
	}
}

func TestParse_MandatoryFields(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"missing title", article("123", "", ""), ErrMissingTitle},
		{"blank title", article("123", "   ", ""), ErrMissingTitle},
		{"missing pmid", article("", "Some title", ""), ErrMissingPMID},
		{"not xml", "this is not xml", ErrMalformedXML},
		{"truncated", `<PubmedArticle><MedlineCitation><PMID>9</PMID>`, ErrMalformedXML},
		{"wrong root", `<PubmedBookArticle><PMID>9</PMID></PubmedBookArticle>`, ErrMalformedXML},
		{"empty", "", ErrMalformedXML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.raw))
			assert.Nil(t, p)
			require.Error(t, err)
			assert.True(t, IsParseError(err), "want *ParseError, got %T", err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_ErrorCarriesPMID(t *testing.T) {
	_, err := Parse([]byte(article("4242", "", "")))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "4242", pe.PMID)
	assert.Contains(t, err.Error(), "4242")

	_, err = Parse([]byte(`<PubmedArticle><MedlineCitation><PMID>77</PMID><broken`))
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "77", pe.PMID)
}

func TestParse_VernacularTitleFallback(t *testing.T) {
	raw := article("5", "", "<VernacularTitle>Étude clinique</VernacularTitle>")
	p, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Étude clinique", p.Title)
}

func TestParse_OptionalFieldsAbsent(t *testing.T) {
	p, err := Parse([]byte(article("6", "Bare record", "")))
	require.NoError(t, err)

	assert.Nil(t, p.PublicationDate)
	assert.Nil(t, p.ReferenceCount)
	assert.Empty(t, p.JournalTitle)
	assert.Empty(t, p.DOI)
	assert.Empty(t, p.Abstract)
	assert.Empty(t, p.Authors)
	assert.False(t, p.HasNonAcademicAuthor())
}

func TestParse_DOIFromELocation(t *testing.T) {
	raw := article("7", "T", `<ELocationID EIdType="doi" ValidYN="Y">10.1000/xyz</ELocationID>`)
	p, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "10.1000/xyz", p.DOI)
}

func TestParse_PublicationDate(t *testing.T) {
	date := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	journal := func(pubDate string) string {
		return "<Journal><JournalIssue><PubDate>" + pubDate + "</PubDate></JournalIssue></Journal>"
	}

	tests := []struct {
		name  string
		inner string
		want  *time.Time
	}{
		{"full", journal("<Year>2020</Year><Month>Dec</Month><Day>31</Day>"), date(2020, time.December, 31)},
		{"numeric month", journal("<Year>2020</Year><Month>07</Month><Day>4</Day>"), date(2020, time.July, 4)},
		{"long month name", journal("<Year>2019</Year><Month>September</Month>"), date(2019, time.September, 1)},
		{"year only", journal("<Year>2018</Year>"), date(2018, time.January, 1)},
		{"season ignored", journal("<Year>2017</Year><Season>Spring</Season>"), date(2017, time.January, 1)},
		{"invalid day", journal("<Year>2021</Year><Month>Feb</Month><Day>30</Day>"), date(2021, time.February, 1)},
		{"invalid month", journal("<Year>2021</Year><Month>13</Month><Day>3</Day>"), date(2021, time.January, 1)},
		{"medline date", journal("<MedlineDate>1998 Dec-1999 Jan</MedlineDate>"), date(1998, time.January, 1)},
		{"unparseable medline date", journal("<MedlineDate>Winter</MedlineDate>"), nil},
		{"article date fallback", `<ArticleDate DateType="Electronic"><Year>2022</Year><Month>05</Month><Day>09</Day></ArticleDate>`, date(2022, time.May, 9)},
		{"bad year", journal("<Year>20x0</Year>"), nil},
		{"missing", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(article("8", "Dated", tt.inner)))
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, p.PublicationDate)
				return
			}
			require.NotNil(t, p.PublicationDate)
			assert.Equal(t, *tt.want, *p.PublicationDate)
		})
	}
}

func TestParse_AuthorNames(t *testing.T) {
	tests := []struct {
		name   string
		author string
		want   string
	}{
		{"fore and last", "<LastName>Curie</LastName><ForeName>Marie</ForeName>", "Marie Curie"},
		{"initials only", "<LastName>Curie</LastName><Initials>M</Initials>", "M Curie"},
		{"last only", "<LastName>Curie</LastName>", "Curie"},
		{"collective", "<CollectiveName>COVID-19 Genomics Consortium</CollectiveName>", "COVID-19 Genomics Consortium"},
		{"nothing", "", anonymousAuthor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := article("9", "T", "<AuthorList><Author>"+tt.author+"</Author></AuthorList>")
			p, err := Parse([]byte(raw))
			require.NoError(t, err)
			require.Len(t, p.Authors, 1)
			assert.Equal(t, tt.want, p.Authors[0].Name)
		})
	}
}

func TestParse_HTMLEntityTolerated(t *testing.T) {
	p, err := Parse([]byte(article("10", "Alpha&nbsp;beta &amp; gamma", "")))
	require.NoError(t, err)
	assert.Equal(t, "Alpha beta & gamma", p.Title)
}

// The non-academic author set must not depend on where authors appear.
func TestParse_NonAcademicSetIndependentOfAuthorOrder(t *testing.T) {
	authors := []string{
		`<Author><LastName>One</LastName><AffiliationInfo><Affiliation>Acme Biotech Ltd</Affiliation></AffiliationInfo></Author>`,
		`<Author><LastName>Two</LastName><AffiliationInfo><Affiliation>Oxford University</Affiliation></AffiliationInfo></Author>`,
		`<Author><LastName>Three</LastName><AffiliationInfo><Affiliation>Roche Diagnostics GmbH</Affiliation></AffiliationInfo></Author>`,
		`<Author><LastName>Four</LastName></Author>`,
	}
	permutations := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1}}

	var want []string
	for i, perm := range permutations {
		var b strings.Builder
		b.WriteString("<AuthorList>")
		for _, idx := range perm {
			b.WriteString(authors[idx])
		}
		b.WriteString("</AuthorList>")

		p, err := Parse([]byte(article("11", "Perm", b.String())))
		require.NoError(t, err)

		var got []string
		for _, a := range p.NonAcademicAuthors() {
			got = append(got, a.Name)
		}
		sort.Strings(got)
		if i == 0 {
			want = got
			assert.Equal(t, []string{"One", "Three"}, want)
			continue
		}
		assert.Equal(t, want, got, "permutation %v", perm)
	}
}

func TestPMIDOf(t *testing.T) {
	assert.Equal(t, "123", PMIDOf([]byte(`<x><PMID Version="1"> 123 </PMID></x>`)))
	assert.Equal(t, "", PMIDOf([]byte(`<x/>`)))
}
