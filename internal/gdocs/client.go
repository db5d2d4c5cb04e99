package gdocs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cguess/prepcook/internal/doctree"
	"golang.org/x/oauth2"
	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Client fetches documents from the Google Docs API.
type Client struct {
	svc     *docs.Service
	timeout time.Duration

	// Stats records the latency of every Fetch.
	Stats *FetchStats
}

// Options tunes the client. Zero values use the library defaults.
type Options struct {
	Endpoint   string        // Base URL override, e.g. a test server
	Timeout    time.Duration // Per-fetch deadline
	UserAgent  string
	HTTPClient *http.Client // Replaces token-based auth entirely when set
}

// NewClient builds a Docs API client authenticated by ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts Options) (*Client, error) {
	var clientOpts []option.ClientOption
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	} else {
		clientOpts = append(clientOpts, option.WithTokenSource(ts))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	if opts.UserAgent != "" {
		clientOpts = append(clientOpts, option.WithUserAgent(opts.UserAgent))
	}

	svc, err := docs.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create docs service: %w", err)
	}
	return &Client{svc: svc, timeout: opts.Timeout, Stats: NewFetchStats(time.Hour)}, nil
}

// Fetch downloads one document and converts its body.
func (c *Client) Fetch(ctx context.Context, documentID string) (*doctree.Document, error) {
	if documentID == "" {
		return nil, &FetchError{Err: errors.New("empty document ID")}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	doc, err := c.svc.Documents.Get(documentID).Context(ctx).Do()
	c.Stats.Record(time.Since(start), err != nil)
	if err != nil {
		fe := &FetchError{DocumentID: documentID, Err: err}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			fe.StatusCode = gerr.Code
		}
		return nil, fe
	}
	return Convert(doc), nil
}

// FetchError reports a failed document fetch.
type FetchError struct {
	DocumentID string
	StatusCode int // HTTP status from the API, 0 for transport errors
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch document %q: status %d: %v", e.DocumentID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch document %q: %v", e.DocumentID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Hint is a short operator-facing explanation of the failure.
func (e *FetchError) Hint() string {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound:
		return "You probably have the wrong document ID or you don't have access to it."
	case http.StatusUnauthorized:
		return "The stored credentials were rejected. Run `prepcook auth` to sign in again."
	case 0:
		return "Could not reach the Google Docs API."
	}
	return "The Google Docs API returned an error."
}
