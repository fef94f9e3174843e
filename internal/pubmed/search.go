// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pdiddy/paperscraper/internal/httputil"
)

// esearchResponse is the JSON envelope of esearch.fcgi with retmode=json.
type esearchResponse struct {
	Result *esearchResult `json:"esearchresult"`
	Error  string         `json:"error"`
}

type esearchResult struct {
	Count     string   `json:"count"`
	IDList    []string `json:"idlist"`
	Error     string   `json:"ERROR"`
	ErrorList struct {
		PhrasesNotFound []string `json:"phrasesnotfound"`
		FieldsNotFound  []string `json:"fieldsnotfound"`
	} `json:"errorlist"`
	WarningList struct {
		QuotedPhrasesNotFound []string `json:"quotedphrasesnotfound"`
		OutputMessages        []string `json:"outputmessages"`
	} `json:"warninglist"`
}

// Search runs the query through esearch and returns the matching PubMed
// identifiers in the order PubMed ranks them. The query is passed through
// verbatim. A query with no hits returns an empty slice and nil error; a
// blank, rejected or unreadable query returns a *QueryError. Cancellation
// returns the context error.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &QueryError{Query: query, Err: ErrEmptyQuery}
	}

	params := c.params()
	params.Set("term", query)
	params.Set("retmode", "json")
	params.Set("retmax", strconv.Itoa(c.cfg.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/esearch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, &QueryError{Query: query, Err: fmt.Errorf("creating request: %w", err)}
	}

	resp, _, err := httputil.DoWithRetry(ctx, c.paced, c.newRequest(req), c.cfg.MaxRetries)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &QueryError{Query: query, Err: fmt.Errorf("esearch request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &QueryError{
			Query:      query,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrRejectedQuery, strings.TrimSpace(string(snippet))),
		}
	}

	var er esearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&er); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &QueryError{Query: query, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: decoding esearch JSON: %v", ErrInvalidResponse, err)}
	}
	if er.Result == nil {
		msg := "missing esearchresult"
		if er.Error != "" {
			msg = er.Error
		}
		return nil, &QueryError{Query: query, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %s", ErrInvalidResponse, msg)}
	}

	r := er.Result
	if r.Error != "" {
		return nil, &QueryError{Query: query, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %s", ErrRejectedQuery, r.Error)}
	}
	if len(r.ErrorList.PhrasesNotFound) > 0 {
		if len(r.IDList) == 0 {
			return nil, &QueryError{
				Query:      query,
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("%w: phrases not found: %s", ErrRejectedQuery, strings.Join(r.ErrorList.PhrasesNotFound, ", ")),
			}
		}
		slog.Warn("esearch ignored phrases", "query", query, "phrases", r.ErrorList.PhrasesNotFound)
	}
	for _, msg := range r.WarningList.OutputMessages {
		slog.Debug("esearch warning", "query", query, "message", msg)
	}

	ids := make([]string, 0, len(r.IDList))
	for _, id := range r.IDList {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	slog.Debug("esearch complete", "query", query, "count", r.Count, "returned", len(ids))
	return ids, nil
}
