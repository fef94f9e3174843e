// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/paperscraper/pkg/types"
)

const (
	maxWideColumn   = 50 // Title, Abstract
	maxAffilColumn  = 40 // Company Affiliation(s)
	maxLinkColumn   = 45 // DOI, PubMed URL
	maxNarrowColumn = 30
	columnGap       = "  "
)

// WriteTable writes papers as a fixed-width table followed by a count.
// Long cells are truncated with "...".
func WriteTable(w io.Writer, papers []*types.Paper, headers []string) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	rows := make([][]string, len(papers))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for r, p := range papers {
		rows[r] = Row(p, headers)
		for i, c := range rows[r] {
			c = truncate(oneLine(c), maxWidth(headers[i]))
			rows[r][i] = c
			widths[i] = max(widths[i], utf8.RuneCountInString(c))
		}
	}

	writeRow(w, headers, widths)
	total := 0
	for _, wd := range widths {
		total += wd + len(columnGap)
	}
	fmt.Fprintln(w, strings.Repeat("-", total-len(columnGap)))
	for _, row := range rows {
		writeRow(w, row, widths)
	}

	fmt.Fprintf(w, "\n%d papers\n", len(papers))
}

func writeRow(w io.Writer, cells []string, widths []int) {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteString(columnGap)
		}
		b.WriteString(c)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c)))
		}
	}
	fmt.Fprintln(w, b.String())
}

func maxWidth(column string) int {
	switch column {
	case ColTitle, ColAbstract:
		return maxWideColumn
	case ColCompanyAffiliations:
		return maxAffilColumn
	case ColDOI, ColPubMedURL:
		return maxLinkColumn
	}
	return maxNarrowColumn
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
