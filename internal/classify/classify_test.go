// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/paperscraper/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		affiliation string
		want        types.AffiliationType
	}{
		{"empty", "", types.Unknown},
		{"whitespace only", "  \t\n ", types.Unknown},
		{"pfizer inc", "Pfizer Inc, New York", types.NonAcademic},
		{"harvard", "Dept. of Biology, Harvard University", types.Academic},
		{"gmbh", "Boehringer Ingelheim Pharma GmbH & Co. KG, Biberach", types.NonAcademic},
		{"ag suffix", "Novartis Pharma AG, Basel, Switzerland", types.NonAcademic},
		{"ltd with period", "AstraZeneca UK Ltd., Cambridge", types.NonAcademic},
		{"therapeutics", "Moderna Therapeutics, Cambridge, MA", types.NonAcademic},
		{"singular pharmaceutical", "Takeda Pharmaceutical Company, Osaka", types.NonAcademic},
		{"plural pharmaceuticals", "Regeneron Pharmaceuticals, Tarrytown, NY", types.NonAcademic},
		{"hospital", "Massachusetts General Hospital, Boston", types.Academic},
		{"school of medicine", "Yale School of Medicine, New Haven", types.Academic},
		{"medical center", "Erasmus Medical Center, Rotterdam", types.Academic},
		{"german university", "Ludwig-Maximilians-Universität München", types.Academic},
		{"portuguese university", "Universidade de São Paulo, Brazil", types.Academic},
		{"upper case", "STANFORD UNIVERSITY", types.Academic},
		{"both prefers commercial", "Harvard University and Genentech Inc, South San Francisco", types.NonAcademic},
		{"corp inside word", "Incorporated Society of Musicians", types.Unknown},
		{"ag inside word", "Environmental Protection Agency", types.Unknown},
		{"inc inside word", "Department of Medicine, Princeton", types.Unknown},
		{"no keywords", "Department of Chemistry, Oxford", types.Unknown},
		{"non ascii no keyword", "东京大学 医学部", types.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.affiliation); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.affiliation, got, tt.want)
			}
		})
	}
}

func TestClassify_CommercialKeywordAlwaysWins(t *testing.T) {
	nonAcademic, academic := Keywords()
	for _, nk := range nonAcademic {
		for _, ak := range academic {
			for _, text := range []string{
				nk + " " + ak,
				strings.ToUpper(ak) + ", " + strings.ToUpper(nk),
				"Dept. of X, " + ak + " (" + nk + ")",
			} {
				assert.Equal(t, types.NonAcademic, Classify(text), "Classify(%q)", text)
			}
		}
	}
}

func TestClassify_AcademicOnly(t *testing.T) {
	_, academic := Keywords()
	for _, ak := range academic {
		text := "Department of Pathology, " + strings.ToUpper(ak) + " of Somewhere"
		assert.Equal(t, types.Academic, Classify(text), "Classify(%q)", text)
	}
}

func TestClassify_TotalOverArbitraryInput(t *testing.T) {
	inputs := []string{
		"\xff\xfe\xfd",
		"Inc\xff",
		strings.Repeat("ä", 1000),
		"İstanbul Üniversitesi",
		"\x00\x01corp\x02",
		"ag",
		"a",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			first := Classify(in)
			assert.Equal(t, first, Classify(in), "Classify must be deterministic for %q", in)
		})
	}
	assert.Equal(t, types.NonAcademic, Classify("\x00\x01corp\x02"))
	assert.Equal(t, types.NonAcademic, Classify("Inc\xff"))
}

func TestKeywordsReturnsCopies(t *testing.T) {
	nonAcademic, academic := Keywords()
	nonAcademic[0] = "mutated"
	academic[0] = "mutated"

	again, againAcademic := Keywords()
	assert.NotEqual(t, "mutated", again[0])
	assert.NotEqual(t, "mutated", againAcademic[0])
}
