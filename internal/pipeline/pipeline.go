// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a PubMed query end to end: search, batched fetch,
// parse, and the non-academic filter.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/pdiddy/paperscraper/internal/parse"
	"github.com/pdiddy/paperscraper/internal/pubmed"
	"github.com/pdiddy/paperscraper/pkg/types"
)

// ErrCancelled is returned by Run when its context is cancelled. The error
// also matches the context error.
var ErrCancelled = errors.New("run cancelled")

// ProgressFunc receives the number of identifiers processed so far and the
// total returned by the search. It is never called concurrently.
type ProgressFunc func(done, total int)

// Options controls a single run.
type Options struct {
	// FilterNonAcademic keeps only papers with at least one NonAcademic author.
	FilterNonAcademic bool
	// Progress is called after each fetched group is parsed. Nil is a no-op.
	Progress ProgressFunc
}

// Result is the outcome of a completed run. Papers are in search-result
// order; errors encountered along the way are recorded, not fatal.
type Result struct {
	Query string
	// Total is the number of distinct identifiers the search returned.
	Total int
	// Papers are the papers kept after filtering.
	Papers []*types.Paper
	// Parsed is the number of records parsed before filtering.
	Parsed      int
	FetchErrors []*pubmed.FetchError
	ParseErrors []*parse.ParseError
}

// HasErrors reports whether any group failed to fetch or any record failed
// to parse.
func (r *Result) HasErrors() bool {
	return len(r.FetchErrors) > 0 || len(r.ParseErrors) > 0
}

// Summary returns a one-line description of the run.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d identifiers, %d parsed, %d kept", r.Total, r.Parsed, len(r.Papers))
	if n := len(r.FetchErrors); n > 0 {
		failed := 0
		for _, fe := range r.FetchErrors {
			failed += len(fe.IDs)
		}
		fmt.Fprintf(&b, ", %d fetch error(s) (%d identifiers)", n, failed)
	}
	if n := len(r.ParseErrors); n > 0 {
		fmt.Fprintf(&b, ", %d parse error(s)", n)
	}
	return b.String()
}

// Pipeline runs queries against PubMed.
type Pipeline struct {
	cfg  types.PubMedConfig
	opts []pubmed.Option
}

// New creates a pipeline. opts are passed to the pubmed client opened for
// every run.
func New(cfg types.PubMedConfig, opts ...pubmed.Option) *Pipeline {
	return &Pipeline{cfg: cfg, opts: opts}
}

// Run searches PubMed for query, fetches and parses every hit and returns
// the papers in search-result order. A search failure returns the
// *pubmed.QueryError and no result. Fetch and parse failures are recorded
// in the result. If ctx is cancelled Run returns a nil result and an error
// matching both ErrCancelled and ctx.Err(); partial papers are discarded.
func (p *Pipeline) Run(ctx context.Context, query string, opts Options) (*Result, error) {
	client := pubmed.NewClient(p.cfg, p.opts...)
	defer client.Close()

	ids, err := client.Search(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}
		return nil, err
	}
	ids, order := dedupe(ids)
	slog.Info("search complete", "query", query, "identifiers", len(ids))

	res := &Result{Query: query, Total: len(ids)}
	if len(ids) == 0 {
		report(opts.Progress, 0, 0)
		return res, nil
	}

	slots := make([]*types.Paper, len(ids))
	var extra []*types.Paper
	done := 0

	err = client.FetchBatchFunc(ctx, ids, func(b *pubmed.Batch, fe *pubmed.FetchError) {
		if fe != nil {
			slog.Warn("fetch failed", "group", fe.Group, "ids", len(fe.IDs), "error", fe.Err)
			res.FetchErrors = append(res.FetchErrors, fe)
			done += len(fe.IDs)
			report(opts.Progress, done, len(ids))
			return
		}

		for _, paper := range parseBatch(b, res) {
			i, ok := order[paper.PMID]
			switch {
			case !ok:
				extra = append(extra, paper)
			case slots[i] == nil:
				slots[i] = paper
			default:
				slog.Debug("duplicate record dropped", "pmid", paper.PMID)
			}
		}
		done += len(b.IDs)
		report(opts.Progress, done, len(ids))
	})
	if err != nil || ctx.Err() != nil {
		return nil, cancelled(ctx)
	}

	for _, paper := range append(compact(slots), extra...) {
		res.Parsed++
		if opts.FilterNonAcademic && !paper.HasNonAcademicAuthor() {
			continue
		}
		res.Papers = append(res.Papers, paper)
	}

	sortErrors(res)
	slog.Info("run complete", "query", query, "summary", res.Summary())
	return res, nil
}

// parseBatch splits one efetch response and parses every article in it.
// Failures are recorded in res.
func parseBatch(b *pubmed.Batch, res *Result) []*types.Paper {
	docs, err := parse.SplitArticleSet(b.Body)
	if err != nil {
		slog.Warn("malformed article set", "group", b.Index, "error", err)
		res.ParseErrors = append(res.ParseErrors, asParseError(err, ""))
	}

	papers := make([]*types.Paper, 0, len(docs))
	for _, doc := range docs {
		paper, err := parse.Parse(doc)
		if err != nil {
			pe := asParseError(err, parse.PMIDOf(doc))
			slog.Warn("skipping record", "pmid", pe.PMID, "error", pe.Err)
			res.ParseErrors = append(res.ParseErrors, pe)
			continue
		}
		papers = append(papers, paper)
	}
	return papers
}

func asParseError(err error, pmid string) *parse.ParseError {
	var pe *parse.ParseError
	if errors.As(err, &pe) {
		return pe
	}
	return &parse.ParseError{PMID: pmid, Err: err}
}

func compact(slots []*types.Paper) []*types.Paper {
	out := make([]*types.Paper, 0, len(slots))
	for _, p := range slots {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// sortErrors orders fetch errors by group; they arrive in completion order.
func sortErrors(res *Result) {
	sort.Slice(res.FetchErrors, func(i, j int) bool {
		return res.FetchErrors[i].Group < res.FetchErrors[j].Group
	})
}

func report(fn ProgressFunc, done, total int) {
	if fn != nil {
		fn(done, total)
	}
}

func cancelled(ctx context.Context) error {
	cause := ctx.Err()
	if cause == nil {
		cause = context.Canceled
	}
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// dedupe drops repeated identifiers, keeping the first occurrence, and
// returns each identifier's position in the result.
func dedupe(ids []string) ([]string, map[string]int) {
	order := make(map[string]int, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := order[id]; ok {
			continue
		}
		order[id] = len(out)
		out = append(out, id)
	}
	if n := len(ids) - len(out); n > 0 {
		slog.Debug("duplicate identifiers dropped", "count", n)
	}
	return out, order
}
