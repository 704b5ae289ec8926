package usps

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultCacheTTL  = 300 * time.Second
	defaultCacheSize = 64
)

type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

// responseCache is a transport that serves repeated successful GETs from
// memory until their ttl runs out. Anything else goes to next untouched.
type responseCache struct {
	next http.RoundTripper
	lru  *expirable.LRU[string, cachedResponse]
}

func newResponseCache(next http.RoundTripper, ttl time.Duration) *responseCache {
	if next == nil {
		next = http.DefaultTransport
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &responseCache{
		next: next,
		lru:  expirable.NewLRU[string, cachedResponse](defaultCacheSize, nil, ttl),
	}
}

func (c *responseCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.next.RoundTrip(req)
	}

	key := req.URL.String()
	if cached, ok := c.lru.Get(key); ok {
		return cached.response(req), nil
	}

	res, err := c.next.RoundTrip(req)
	if err != nil || res.StatusCode != http.StatusOK {
		return res, err
	}

	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		return nil, err
	}
	cached := cachedResponse{
		status: res.StatusCode,
		header: res.Header.Clone(),
		body:   body,
	}
	// replaying cookies from a stale page would undo a later login
	cached.header.Del("Set-Cookie")
	c.lru.Add(key, cached)

	res.Body = io.NopCloser(bytes.NewReader(body))
	return res, nil
}

func (r cachedResponse) response(req *http.Request) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", r.status, http.StatusText(r.status)),
		StatusCode:    r.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        r.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(r.body)),
		ContentLength: int64(len(r.body)),
		Request:       req,
	}
}

// Purge drops every cached response.
func (c *responseCache) Purge() {
	c.lru.Purge()
}

func (c *responseCache) Len() int {
	return c.lru.Len()
}
