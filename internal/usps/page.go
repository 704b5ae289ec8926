package usps

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	}
	return false
}

func hasLoginForm(doc *goquery.Document) bool {
	return doc.Find(selLoginForm).Length() > 0
}

// fetchPage gets a page that requires a session. A redirect or a login form
// where content was expected both mean the session expired.
func (s *Session) fetchPage(ctx context.Context, link string, query map[string]string) (*goquery.Document, error) {
	res, err := s.http.R().
		SetContext(noFollow(ctx)).
		SetQueryParams(query).
		Get(link)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", link, err)
	}
	if isRedirect(res.StatusCode()) {
		return nil, errSessionExpired
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", link, res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", link, err)
	}
	if hasLoginForm(doc) {
		return nil, errSessionExpired
	}
	return doc, nil
}
