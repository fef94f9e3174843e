// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PubMed efetch XML structures. Only the elements the parser reads are mapped.
type pubmedArticle struct {
	XMLName         xml.Name           `xml:"PubmedArticle"`
	MedlineCitation xmlMedlineCitation `xml:"MedlineCitation"`
	PubmedData      xmlPubmedData      `xml:"PubmedData"`
}

type xmlMedlineCitation struct {
	PMID    string     `xml:"PMID"`
	Article xmlArticle `xml:"Article"`
}

type xmlArticle struct {
	Journal         xmlJournal     `xml:"Journal"`
	ArticleTitle    mixedText      `xml:"ArticleTitle"`
	VernacularTitle mixedText      `xml:"VernacularTitle"`
	ELocationIDs    []xmlELocation `xml:"ELocationID"`
	Abstract        []mixedText    `xml:"Abstract>AbstractText"`
	Authors         []xmlAuthor    `xml:"AuthorList>Author"`
	ArticleDates    []xmlDate      `xml:"ArticleDate"`
}

type xmlJournal struct {
	Title        string `xml:"Title"`
	JournalIssue struct {
		PubDate xmlDate `xml:"PubDate"`
	} `xml:"JournalIssue"`
}

type xmlDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

type xmlELocation struct {
	EIDType string `xml:"EIdType,attr"`
	Value   string `xml:",chardata"`
}

type xmlAuthor struct {
	LastName       string      `xml:"LastName"`
	ForeName       string      `xml:"ForeName"`
	Initials       string      `xml:"Initials"`
	CollectiveName mixedText   `xml:"CollectiveName"`
	Affiliations   []mixedText `xml:"AffiliationInfo>Affiliation"`
	Identifiers    []string    `xml:"Identifier"`
}

type xmlPubmedData struct {
	ArticleIDs     []xmlArticleID     `xml:"ArticleIdList>ArticleId"`
	ReferenceLists []xmlReferenceList `xml:"ReferenceList"`
}

type xmlArticleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

type xmlReferenceList struct {
	References []struct{} `xml:"Reference"`
}

// mixedText collects the character data of an element and all of its
// descendants, flattening inline markup such as <i> or <sup>.
type mixedText string

func (m *mixedText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				*m = mixedText(b.String())
				return nil
			}
			depth--
		}
	}
}

// normalized returns the text with whitespace runs collapsed to one space.
func (m mixedText) normalized() string {
	return strings.Join(strings.Fields(string(m)), " ")
}

// SplitArticleSet cuts an efetch <PubmedArticleSet> response into one
// <PubmedArticle> document per record, in response order. Elements other
// than PubmedArticle (book articles, deleted citations) are skipped.
//
// When the response breaks off or is malformed, the documents read so far
// are returned together with a *ParseError wrapping ErrMalformedXML.
func SplitArticleSet(raw []byte) ([][]byte, error) {
	d := newDecoder(bytes.NewReader(raw))
	var docs [][]byte
	for {
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return docs, nil
			}
			return docs, &ParseError{Err: fmt.Errorf("%w: article set: %v", ErrMalformedXML, err)}
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "PubmedArticle" {
			continue
		}

		var inner struct {
			Body []byte `xml:",innerxml"`
		}
		if err := d.DecodeElement(&inner, &start); err != nil {
			return docs, &ParseError{Err: fmt.Errorf("%w: article set: %v", ErrMalformedXML, err)}
		}

		doc := make([]byte, 0, len(inner.Body)+32)
		doc = append(doc, "<PubmedArticle>"...)
		doc = append(doc, inner.Body...)
		doc = append(doc, "</PubmedArticle>"...)
		docs = append(docs, doc)
	}
}
