package usps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"myusps/internal/cookiestore"
)

// CookieEntry is one persisted cookie.
type CookieEntry struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	HostOnly bool      `json:"host_only"`
	Secure   bool      `json:"secure"`
	HttpOnly bool      `json:"http_only"`
	Expires  time.Time `json:"expires"`
}

func (e CookieEntry) key() string {
	return e.Domain + ";" + e.Path + ";" + e.Name
}

func (e CookieEntry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && !e.Expires.After(now)
}

// Jar is an http.CookieJar that remembers what it was given so that it can
// be written out and restored later, cookie matching is delegated to
// net/http/cookiejar.
type Jar struct {
	mu      sync.Mutex
	inner   *cookiejar.Jar
	entries map[string]CookieEntry
	now     func() time.Time
}

func newInnerJar() *cookiejar.Jar {
	// cookiejar.New only fails on invalid options
	inner, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}
	return inner
}

func NewJar() *Jar {
	return &Jar{
		inner:   newInnerJar(),
		entries: map[string]CookieEntry{},
		now:     time.Now,
	}
}

func defaultCookiePath(u *url.URL) string {
	p := u.Path
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	for _, c := range cookies {
		entry := CookieEntry{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   strings.ToLower(strings.TrimPrefix(c.Domain, ".")),
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
			Expires:  c.Expires,
		}
		if entry.Domain == "" {
			entry.Domain = strings.ToLower(u.Hostname())
			entry.HostOnly = true
		}
		if entry.Path == "" || entry.Path[0] != '/' {
			entry.Path = defaultCookiePath(u)
		}
		if c.MaxAge > 0 {
			entry.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}

		if c.MaxAge < 0 || entry.expired(now) {
			delete(j.entries, entry.key())
			continue
		}
		j.entries[entry.key()] = entry
	}
	j.inner.SetCookies(u, cookies)
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// Clear forgets every cookie.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner = newInnerJar()
	j.entries = map[string]CookieEntry{}
}

// Entries returns the unexpired cookies sorted by domain, path and name.
func (j *Jar) Entries() []CookieEntry {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	out := make([]CookieEntry, 0, len(j.entries))
	for _, e := range j.entries {
		if e.expired(now) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].key() < out[b].key()
	})
	return out
}

func (j *Jar) restore(e CookieEntry) {
	scheme := "http"
	if e.Secure {
		scheme = "https"
	}
	u := &url.URL{Scheme: scheme, Host: e.Domain, Path: e.Path}
	c := &http.Cookie{
		Name:     e.Name,
		Value:    e.Value,
		Path:     e.Path,
		Expires:  e.Expires,
		Secure:   e.Secure,
		HttpOnly: e.HttpOnly,
	}
	if !e.HostOnly {
		c.Domain = e.Domain
	}
	j.inner.SetCookies(u, []*http.Cookie{c})
	j.entries[e.key()] = e
}

type jarBlob struct {
	Cookies []CookieEntry `json:"cookies"`
}

func (j *Jar) MarshalBinary() ([]byte, error) {
	return json.Marshal(jarBlob{Cookies: j.Entries()})
}

// UnmarshalBinary replaces the contents of the jar with a blob produced by
// MarshalBinary, expired cookies are dropped.
func (j *Jar) UnmarshalBinary(data []byte) error {
	var blob jarBlob
	err := json.Unmarshal(data, &blob)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.inner = newInnerJar()
	j.entries = map[string]CookieEntry{}
	now := j.now()
	for _, e := range blob.Cookies {
		if e.Name == "" || e.Domain == "" || e.expired(now) {
			continue
		}
		j.restore(e)
	}
	return nil
}

// SaveCookies writes the jar to the store, replacing what was there.
func SaveCookies(ctx context.Context, store cookiestore.Store, jar *Jar) error {
	blob, err := jar.MarshalBinary()
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}
	err = store.Save(ctx, blob)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// LoadCookies reads a jar from the store. When nothing was saved yet the
// error matches cookiestore.ErrNotFound, every other failure is a *PersistenceError.
func LoadCookies(ctx context.Context, store cookiestore.Store) (*Jar, error) {
	blob, err := store.Load(ctx)
	if errors.Is(err, cookiestore.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	jar := NewJar()
	err = jar.UnmarshalBinary(blob)
	if err != nil {
		return nil, &PersistenceError{Op: "decode", Err: fmt.Errorf("corrupt cookie blob: %w", err)}
	}
	return jar, nil
}
