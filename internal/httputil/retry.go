// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the E-utilities client.
package httputil

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"syscall"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff between
// attempts. Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

const defaultMaxRetries = 3

// Doer sends a single HTTP request. *http.Client satisfies it; wrappers can
// pace or instrument calls before the client applies its timeout.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoWithRetry executes an HTTP request and retries transient failures with
// exponential backoff. The delay starts at RetryBaseDelay and doubles each
// attempt: 0.5 s, 1 s, 2 s.
//
// Transient failures are network errors (timeouts, connection resets,
// refused connections), HTTP 429 and HTTP 5xx. Any other status, 4xx
// included, is returned at once for the caller to inspect.
//
// A negative maxRetries selects the default (3) and 0 makes a single
// attempt. On each retried response the body is drained and closed before
// sleeping. If the context is
// cancelled the function returns ctx.Err(). After exhausting retries the
// last response is returned as-is, or the last network error.
//
// The attempts return value counts the calls made, successful or not.
func DoWithRetry(ctx context.Context, client Doer, req *http.Request, maxRetries int) (resp *http.Response, attempts int, err error) {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		attempts = attempt + 1
		resp, err = client.Do(req.Clone(ctx))
		if ctxErr := ctx.Err(); ctxErr != nil {
			if resp != nil {
				resp.Body.Close()
			}
			return nil, attempts, ctxErr
		}

		if err != nil {
			if !IsTransient(err) || attempt >= maxRetries {
				return nil, attempts, err
			}
		} else {
			if !IsRetryableStatus(resp.StatusCode) || attempt >= maxRetries {
				return resp, attempts, nil
			}
			// Drain and close the body before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		slog.Debug("transient failure, retrying",
			"url", req.URL.Redacted(), "attempt", attempt+1, "max_retries", maxRetries,
			"status", statusOf(resp), "error", err)
		if err := wait(ctx, attempt); err != nil {
			return nil, attempts, err
		}
	}
}

// ReadWithRetry is DoWithRetry for callers that need the whole body. A
// transient failure while reading the body, such as a timeout or a reset
// connection mid-transfer, is retried like one before the headers. At most
// maxBytes of body are read.
//
// The body of the last attempt is returned together with its status, even
// when the status is not a success; err is set only for network failures
// and cancellation.
func ReadWithRetry(ctx context.Context, client Doer, req *http.Request, maxRetries int, maxBytes int64) (body []byte, status int, attempts int, err error) {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		attempts = attempt + 1
		body, status, err = readOnce(ctx, client, req, maxBytes)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, status, attempts, ctxErr
		}

		retry := IsRetryableStatus(status)
		if err != nil {
			retry = IsTransient(err)
		}
		if !retry || attempt >= maxRetries {
			return body, status, attempts, err
		}

		slog.Debug("transient failure, retrying",
			"url", req.URL.Redacted(), "attempt", attempt+1, "max_retries", maxRetries,
			"status", status, "error", err)
		if err := wait(ctx, attempt); err != nil {
			return nil, status, attempts, err
		}
	}
}

func readOnce(ctx context.Context, client Doer, req *http.Request, maxBytes int64) ([]byte, int, error) {
	resp, err := client.Do(req.Clone(ctx))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// wait sleeps for the backoff of the given zero-based attempt.
func wait(ctx context.Context, attempt int) error {
	backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}

// IsRetryableStatus reports whether an HTTP status is worth retrying:
// 429 Too Many Requests and every 5xx.
func IsRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// IsTransient reports whether a transport error is likely to succeed on a
// retry. Context cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
