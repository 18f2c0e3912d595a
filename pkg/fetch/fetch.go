// Package fetch retrieves monitored resources over HTTP and decodes them
// into text using the charset announced by the server.
package fetch

import (
	"context"
	"time"

	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/go-logr/logr"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Options configure a *Fetcher.
type Options struct {
	// UserAgent overrides the default user agent header if not empty.
	UserAgent string

	// Headers are additional request headers.
	Headers map[string]string

	// Timeout bounds the whole request. Zero means no timeout.
	Timeout time.Duration

	// FailOnHTTPError makes non-2xx responses fail the fetch. By default the
	// body of any response is passed on.
	FailOnHTTPError bool
}

// Fetcher fetches the content of a URL.
type Fetcher struct {
	client  *resty.Client
	options Options
}

// New creates a new *Fetcher with options.
func New(options Options) *Fetcher {
	client := resty.New()

	if options.Timeout > 0 {
		client.SetTimeout(options.Timeout)
	}

	if options.UserAgent != "" {
		client.SetHeader("User-Agent", options.UserAgent)
	}

	client.SetHeaders(options.Headers)

	return &Fetcher{
		client:  client,
		options: options,
	}
}

// Fetch issues a GET request to url and returns the decoded body. All
// failures are returned as *models.Error of kind models.KindFetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("url", url)

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", models.NewError(models.KindFetch, errors.Wrapf(err, "failed to fetch %s", url))
	}

	if f.options.FailOnHTTPError && !resp.IsSuccess() {
		return "", models.Errorf(models.KindFetch, "unexpected response status %q from %s", resp.Status(), url)
	}

	contentType := resp.Header().Get("Content-Type")

	content, name, err := Decode(resp.Body(), contentType)
	if err != nil {
		return "", models.NewError(models.KindFetch, errors.Wrapf(err, "failed to decode response body as %s", name))
	}

	log.V(1).Info("fetched content", "status", resp.StatusCode(), "content-type", contentType, "charset", name, "bytes", len(resp.Body()), "duration", resp.Time())

	return content, nil
}
