// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperscraper/pkg/types"
)

// Record is the structured form of a paper: the parsed fields plus the
// derived views the CSV columns are built from.
type Record struct {
	types.Paper         `yaml:",inline"`
	URL                 string   `json:"pubmed_url" yaml:"pubmed_url"`
	CompanyAffiliations []string `json:"company_affiliations" yaml:"company_affiliations"`
	CorrespondingEmail  string   `json:"corresponding_email,omitempty" yaml:"corresponding_email,omitempty"`
}

// Records builds the structured form of papers. When includeAbstract is
// false the abstract is left out.
func Records(papers []*types.Paper, includeAbstract bool) []Record {
	out := make([]Record, len(papers))
	for i, p := range papers {
		rec := Record{
			Paper:               *p,
			URL:                 p.PubMedURL(),
			CompanyAffiliations: p.CompanyAffiliations(),
			CorrespondingEmail:  p.CorrespondingEmail(),
		}
		if !includeAbstract {
			rec.Abstract = ""
		}
		out[i] = rec
	}
	return out
}

// WriteJSON writes papers as indented JSON.
func WriteJSON(w io.Writer, papers []*types.Paper, includeAbstract bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Records(papers, includeAbstract)); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteYAML writes papers as a YAML sequence.
func WriteYAML(w io.Writer, papers []*types.Paper, includeAbstract bool) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Records(papers, includeAbstract)); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return nil
}
