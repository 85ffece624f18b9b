package yahoo

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/stockbook"
	"go.uber.org/zap"
)

// diskCache implements a simple disk cache for HTTP responses.
//
// Keys include the current day, so that entries expire every day.
type diskCache struct {
	base http.RoundTripper
	dir  string
}

// RoundTrip implements the http.RoundTripper interface. It checks for a cached
// response on disk first. If a fresh cached response is not found, it proceeds
// with the actual HTTP request and caches the new response if it's successful.
func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := fmt.Sprintf("%s %s %s", stockbook.Today(), req.Method, req.URL.String())
	key = fmt.Sprintf("yahoo-%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		zap.L().Debug("http-cache-hit", zap.String("url", req.URL.Path))
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("http-get", zap.String("host", req.URL.Host), zap.String("path", req.URL.Path), zap.String("status", resp.Status))
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		zap.L().Warn("http-cache-write", zap.Error(err))
	}
	return resp, nil
}

// get retrieves a cached response from disk.
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk. DumpResponse leaves resp.Body readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}
