// Package httputil provides the HTTP client used to fetch diagram documents
// and workspace notes.
//
// # Overview
//
//   - [Client]: GET requests with default headers, status mapping,
//     optional retries and optional response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Client
//
// [Client] maps response statuses to coded errors from pkg/errors: 404
// becomes NOT_FOUND, 5xx and transport failures become retryable
// NETWORK_ERROR, other statuses FETCH_FAILED. Every request reports to the
// registered observability HTTP hooks.
//
//	c := httputil.NewClient(cache.NewNullCache(), "notes", 0, nil)
//	var notes map[string]string
//	err := c.Get(ctx, base+"/api/workspaces/demo/notes", &notes)
//
// By default a request is attempted once. [WithRetry] enables retries of
// transient failures.
//
// # Retry
//
// [Retry] runs a function until it succeeds, returns a non-retryable error
// or runs out of attempts, doubling the delay between attempts. Only errors
// wrapped in [RetryableError] are retried.
package httputil
