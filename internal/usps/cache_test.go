package usps

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResponseCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "n", Value: "v"})
		w.Write([]byte("page " + r.URL.RawQuery))
	}))
	defer server.Close()

	cache := newResponseCache(http.DefaultTransport, time.Minute)
	client := &http.Client{Transport: cache}

	get := func(path string) (*http.Response, string) {
		res, err := client.Get(server.URL + path)
		require.NoError(t, err)
		defer res.Body.Close()
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		return res, string(body)
	}

	res, body := get("/page?a=1")
	require.Equal(t, "page a=1", body)
	require.NotEmpty(t, res.Header.Values("Set-Cookie"))

	res, body = get("/page?a=1")
	require.Equal(t, "page a=1", body)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Empty(t, res.Header.Values("Set-Cookie"))
	require.EqualValues(t, 1, hits.Load())

	_, body = get("/page?a=2")
	require.Equal(t, "page a=2", body)
	require.EqualValues(t, 2, hits.Load())

	get("/missing")
	get("/missing")
	require.EqualValues(t, 4, hits.Load())

	res, err := client.Post(server.URL+"/page?a=1", "text/plain", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.EqualValues(t, 5, hits.Load())

	require.Equal(t, 2, cache.Len())
	cache.Purge()
	require.Equal(t, 0, cache.Len())
	get("/page?a=1")
	require.EqualValues(t, 6, hits.Load())
}

func TestResponseCacheExpires(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := &http.Client{Transport: newResponseCache(nil, 50*time.Millisecond)}
	for i := 0; i < 2; i++ {
		res, err := client.Get(server.URL)
		require.NoError(t, err)
		res.Body.Close()
	}
	require.EqualValues(t, 1, hits.Load())

	require.Eventually(t, func() bool {
		res, err := client.Get(server.URL)
		require.NoError(t, err)
		res.Body.Close()
		return hits.Load() == 2
	}, 2*time.Second, 20*time.Millisecond)
}
