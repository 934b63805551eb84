package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var ErrNoTransport = errors.New("no transport can serve the given url")

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.URL)
}

// Transport performs one transfer. Implementations must be safe for
// concurrent use; the loader fetches several files at once.
type Transport interface {
	Fetch(ctx context.Context, url string, settings RequestSettings) ([]byte, error)
}

// HTTPTransport fetches over net/http.
type HTTPTransport struct {
	Client *http.Client
}

func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{Client: &http.Client{}}
}

func (t *HTTPTransport) Fetch(ctx context.Context, url string, settings RequestSettings) ([]byte, error) {
	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if settings.UserAgent != "" {
		req.Header.Set("User-Agent", settings.UserAgent)
	}
	for k, v := range settings.Headers {
		req.Header.Set(k, v)
	}
	if settings.User != "" {
		req.SetBasicAuth(settings.User, settings.Password)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// FileTransport reads from a local directory root. It serves file:// URLs
// and bare relative paths when the loader is configured with local_root.
type FileTransport struct {
	Root string
}

func (t *FileTransport) Fetch(ctx context.Context, url string, settings RequestSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(url, "file://")
	if !filepath.IsAbs(path) {
		path = filepath.Join(t.Root, path)
	}
	// Keep resolution inside the configured root.
	if t.Root != "" {
		root, err := filepath.Abs(t.Root)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return nil, fmt.Errorf("path %q escapes local root %q", url, t.Root)
		}
	}
	return os.ReadFile(path)
}

// transportFor picks the transport serving the resolved URL.
func (l *Loader) transportFor(resolved string) (Transport, error) {
	switch {
	case strings.HasPrefix(resolved, "http://"), strings.HasPrefix(resolved, "https://"),
		strings.HasPrefix(resolved, "//"):
		return l.http, nil
	case strings.HasPrefix(resolved, "file://"):
		return l.local, nil
	case !IsAbsoluteURL(resolved) && l.cfg.LocalRoot != "":
		return l.local, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoTransport, resolved)
	}
}
