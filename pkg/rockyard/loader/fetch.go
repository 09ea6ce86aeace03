package loader

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Fetcher downloads a URL into a destination directory and returns the
// local path of the downloaded file.
type Fetcher interface {
	Fetch(rawURL, destDir string) (string, error)
}

// HTTPFetcher fetches over HTTP(S). Retry policy, if any, belongs here,
// not in the loader.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher with a sane default timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: 30 * time.Second}}
}

// Fetch downloads rawURL into destDir under the URL's base filename.
// The file is written to a temporary name and renamed into place so a
// concurrent reader never sees a partial download.
func (f *HTTPFetcher) Fetch(rawURL, destDir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &Error{Code: CodeFetchFailed, Msg: fmt.Sprintf("invalid URL %s", rawURL), Err: err}
	}

	resp, err := f.Client.Get(rawURL)
	if err != nil {
		return "", &Error{Code: CodeFetchFailed, Msg: fmt.Sprintf("failed fetching %s", rawURL), Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", &Error{Code: CodeNotFound, Msg: fmt.Sprintf("%s not found", rawURL)}
	case resp.StatusCode != http.StatusOK:
		return "", &Error{Code: CodeFetchFailed, Msg: fmt.Sprintf("failed fetching %s: %s", rawURL, resp.Status)}
	}

	target := filepath.Join(destDir, path.Base(u.Path))
	tmp, err := os.CreateTemp(destDir, ".fetch-*")
	if err != nil {
		return "", &Error{Code: CodeFetchFailed, Msg: "cannot create download file", Err: err}
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", &Error{Code: CodeFetchFailed, Msg: fmt.Sprintf("failed fetching %s", rawURL), Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", &Error{Code: CodeFetchFailed, Msg: "cannot finish download", Err: err}
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return "", &Error{Code: CodeFetchFailed, Msg: "cannot place download", Err: err}
	}

	return target, nil
}
