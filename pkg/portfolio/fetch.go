package portfolio

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
)

// DefaultFetchTimeout bounds a single document read when the caller sets no deadline.
const DefaultFetchTimeout = 30 * time.Second

// FetchWithContext retrieves the raw document from a file or URL. A deadline
// already on ctx is kept as is.
func FetchWithContext(ctx context.Context, source string) (data []byte, err error) {
	if source == "" {
		err = errors.New("document source is required")
		return data, err
	}

	ctx, cancel := fetchContext(ctx)
	defer cancel()

	parsedURL, urlErr := url.Parse(source)
	if urlErr == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") {
		data, err = fetchFromURL(ctx, source)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch document from URL: %s", source)
			return data, err
		}
		return data, err
	}

	data, err = fetchFromFile(source)
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch document from file: %s", source)
		return data, err
	}

	return data, err
}

// fetchContext applies DefaultFetchTimeout unless ctx already has a deadline.
func fetchContext(ctx context.Context) (out context.Context, cancel context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		out, cancel = context.WithCancel(ctx)
		return out, cancel
	}

	out, cancel = context.WithTimeout(ctx, DefaultFetchTimeout)
	return out, cancel
}

// fetchFromFile reads the document from disk.
func fetchFromFile(path string) (data []byte, err error) {
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read file: %s", path)
		return data, err
	}

	if len(data) == 0 {
		err = errors.New("file is empty")
		return data, err
	}

	return data, err
}

// fetchFromURL retrieves the document over HTTP.
func fetchFromURL(ctx context.Context, urlStr string) (data []byte, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return data, err
	}

	req.Header.Set("User-Agent", "portfolio/1.0")
	req.Header.Set("Accept", "application/json")

	var resp *http.Response
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return data, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return data, err
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return data, err
	}

	if len(data) == 0 {
		err = errors.New("fetched document is empty")
		return data, err
	}

	return data, err
}
