// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/pdiddy/paperscraper/internal/httputil"
)

// Batch is one successfully fetched identifier group.
type Batch struct {
	// Index is the zero-based position of the group in the FetchBatch call.
	Index int
	IDs   []string
	// Body is the raw PubmedArticleSet XML.
	Body []byte
}

// Groups splits ids into consecutive groups of at most size identifiers.
func Groups(ids []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var groups [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		groups = append(groups, ids[start:end])
	}
	return groups
}

// BatchFunc receives the outcome of one group: exactly one of b and fe is
// non-nil.
type BatchFunc func(b *Batch, fe *FetchError)

// FetchBatch fetches ids in groups of the configured batch size with at most
// FetchWorkers calls in flight. Successful groups and failures are both
// returned ordered by group index. A failed group does not stop the others.
// When ctx is cancelled the in-flight calls abort and the outcomes gathered
// so far are returned; callers check ctx.Err().
func (c *Client) FetchBatch(ctx context.Context, ids []string) ([]Batch, []*FetchError) {
	var batches []Batch
	var failures []*FetchError
	c.FetchBatchFunc(ctx, ids, func(b *Batch, fe *FetchError) {
		if fe != nil {
			failures = append(failures, fe)
			return
		}
		batches = append(batches, *b)
	})

	sort.Slice(batches, func(i, j int) bool { return batches[i].Index < batches[j].Index })
	sort.Slice(failures, func(i, j int) bool { return failures[i].Group < failures[j].Group })
	return batches, failures
}

// FetchBatchFunc is FetchBatch delivering each group to fn as it completes,
// in completion order. fn is never called concurrently and is not called
// after ctx is cancelled. It returns ctx.Err() once every worker has exited.
func (c *Client) FetchBatchFunc(ctx context.Context, ids []string, fn BatchFunc) error {
	groups := Groups(ids, c.cfg.BatchSize)
	if len(groups) == 0 {
		return ctx.Err()
	}

	type outcome struct {
		batch *Batch
		err   *FetchError
	}

	jobs := make(chan int)
	results := make(chan outcome, len(groups))
	var wg sync.WaitGroup

	workers := min(FetchWorkers, len(groups))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				b, fe := c.fetchGroup(ctx, idx, groups[idx])
				results <- outcome{batch: b, err: fe}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for idx := range groups {
			select {
			case jobs <- idx:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for o := range results {
		if ctx.Err() != nil {
			continue
		}
		fn(o.batch, o.err)
	}
	return ctx.Err()
}

// fetchGroup performs one efetch call with retries.
func (c *Client) fetchGroup(ctx context.Context, idx int, ids []string) (*Batch, *FetchError) {
	params := c.params()
	params.Set("retmode", "xml")
	params.Set("rettype", "abstract")
	params.Set("id", strings.Join(ids, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/efetch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Group: idx, IDs: ids, Err: fmt.Errorf("creating request: %w", err)}
	}

	body, status, attempts, err := httputil.ReadWithRetry(ctx, c.paced, c.newRequest(req), c.cfg.MaxRetries, maxBodyBytes)
	if err != nil {
		slog.Debug("efetch failed", "group", idx, "ids", len(ids), "attempts", attempts, "error", err)
		return nil, &FetchError{Group: idx, IDs: ids, StatusCode: status, Attempts: attempts, Err: fmt.Errorf("efetch request: %w", err)}
	}
	if status != http.StatusOK {
		slog.Debug("efetch failed", "group", idx, "ids", len(ids), "attempts", attempts, "status", status)
		return nil, &FetchError{Group: idx, IDs: ids, StatusCode: status, Attempts: attempts, Err: ErrHTTPStatus}
	}

	slog.Debug("efetch complete", "group", idx, "ids", len(ids), "bytes", len(body), "attempts", attempts)
	return &Batch{Index: idx, IDs: ids, Body: body}, nil
}
