// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify maps free-text author affiliations to an AffiliationType
// using fixed keyword lists.
//
// Commercial keywords take priority: an affiliation naming both a
// university and a company is non-academic, because downstream consumers
// look for any commercial involvement. Downstream output depends on this
// exact policy and these exact lists.
package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/paperscraper/pkg/types"
)

// nonAcademicKeywords indicate a commercial, for-profit entity.
var nonAcademicKeywords = []string{
	"pharmaceutical",
	"pharmaceuticals",
	"biotech",
	"therapeutics",
	"diagnostics",
	"ventures",
	"llc",
	"inc",
	"ltd",
	"corp",
	"corporation",
	"gmbh",
	"ag",
}

// academicKeywords indicate a university, hospital, or non-profit research entity.
var academicKeywords = []string{
	"university",
	"universität",
	"universidade",
	"institute",
	"hospital",
	"school of medicine",
	"medical center",
	"research center",
	"laboratory",
	"college",
	"academy",
	"foundation",
}

// Classify returns NonAcademic when the affiliation contains any commercial
// keyword, Academic when it contains only academic keywords, and Unknown
// otherwise. Matching is case-insensitive and on whole words, so "corp"
// does not match "incorporated". Classify is total over any input.
func Classify(affiliation string) types.AffiliationType {
	text := strings.ToLower(strings.ToValidUTF8(affiliation, " "))
	if strings.TrimSpace(text) == "" {
		return types.Unknown
	}
	if containsAny(text, nonAcademicKeywords) {
		return types.NonAcademic
	}
	if containsAny(text, academicKeywords) {
		return types.Academic
	}
	return types.Unknown
}

// Keywords returns copies of the commercial and academic keyword lists.
func Keywords() (nonAcademic, academic []string) {
	return append([]string(nil), nonAcademicKeywords...), append([]string(nil), academicKeywords...)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if containsWord(text, kw) {
			return true
		}
	}
	return false
}

// containsWord reports whether kw occurs in text bounded on both sides by
// a non-word rune or the end of the string.
func containsWord(text, kw string) bool {
	for start := 0; start < len(text); {
		idx := strings.Index(text[start:], kw)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(kw)
		if !wordBefore(text, idx) && !wordAfter(text, end) {
			return true
		}
		// Step past the first rune of the failed match.
		_, size := utf8.DecodeRuneInString(text[idx:])
		start = idx + size
	}
	return false
}

func wordBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isWordRune(r)
}

func wordAfter(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
