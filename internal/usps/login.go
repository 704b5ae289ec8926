package usps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

const (
	selLoginForm  = "form[name=loginForm]"
	selLoginToken = "input[name=token]"
	selLoginError = "span.error"

	secondaryAuthSuccess = "success"
)

var (
	uuidTokenRegex  = regexp.MustCompile(`(?m)"uniqueStateKey",100,"(.+?)"`)
	payloadKeyRegex = regexp.MustCompile(`(?m)httpMethods:\["POST"\]\}\],"(.+?)"`)
)

// loginTokens are scraped fresh from the login page for every attempt.
type loginTokens struct {
	form       string
	uuid       string
	payloadKey string
}

func parseLoginTokens(page []byte, legacy bool) (loginTokens, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return loginTokens{}, fmt.Errorf("parse login page: %w", err)
	}

	token, ok := doc.Find(selLoginForm).First().Find(selLoginToken).First().Attr("value")
	if !ok || token == "" {
		return loginTokens{}, ErrNoLoginToken
	}
	tokens := loginTokens{form: token}
	if !legacy {
		return tokens, nil
	}

	uuid := uuidTokenRegex.FindSubmatch(page)
	payloadKey := payloadKeyRegex.FindSubmatch(page)
	if len(uuid) < 2 || len(payloadKey) < 2 {
		return loginTokens{}, fmt.Errorf("gtm tokens: %w", ErrNoLoginToken)
	}
	tokens.uuid = string(uuid[1])
	tokens.payloadKey = string(payloadKey[1])
	return tokens, nil
}

func (s *Session) fetchLoginTokens(ctx context.Context) (loginTokens, error) {
	res, err := s.http.R().
		SetContext(ctx).
		Get(s.endpoints.LoginPage)
	if err != nil {
		return loginTokens{}, fmt.Errorf("fetch login page: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return loginTokens{}, fmt.Errorf("fetch login page: unexpected status %s", res.Status())
	}
	return parseLoginTokens(res.Body(), s.legacyTokens)
}

type secondaryAuthResult struct {
	Rs *string `json:"rs"`
}

func (s *Session) secondaryAuth(ctx context.Context, tokens loginTokens) error {
	req := s.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": s.creds.username,
			"password": s.creds.password,
		})
	if s.legacyTokens {
		req.SetHeader(efmjHeader+"uniqueStateKey", tokens.uuid)
		req.SetHeader(efmjHeader+tokens.payloadKey, "")
	}

	res, err := req.Post(s.endpoints.Authenticate)
	if err != nil {
		return fmt.Errorf("secondary auth request: %w", err)
	}

	var result secondaryAuthResult
	err = json.Unmarshal(res.Body(), &result)
	if err != nil {
		return &AuthError{Reason: "unreadable secondary auth response", Err: err}
	}
	if result.Rs == nil || *result.Rs != secondaryAuthSuccess {
		return &AuthError{Reason: "secondary auth rejected"}
	}
	return nil
}

func loginError(page []byte) (string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", false, fmt.Errorf("parse login response: %w", err)
	}
	sel := doc.Find(selLoginError).First()
	if sel.Length() == 0 {
		return "", false, nil
	}
	return strings.TrimSpace(sel.Text()), true, nil
}

// Login runs the full login sequence from a clean cookie jar and persists
// the resulting cookies. On failure the jar should not be relied on.
func (s *Session) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "session:Login")
	defer span.End()

	fail := func(status string, err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		s.tel.ReportBroken(report_session_login, fmt.Errorf("%s: %w", status, err))
		return err
	}

	s.tel.ReportDebug("attempting login")
	s.jar.Clear()
	if s.cache != nil {
		s.cache.Purge()
	}

	tokens, err := s.fetchLoginTokens(ctx)
	if err != nil {
		return fail("failed to get login tokens", err)
	}

	if !s.skipSecondaryAuth {
		err = s.secondaryAuth(ctx, tokens)
		if err != nil {
			return fail("secondary auth failed", err)
		}
	}

	res, err := s.http.R().
		SetContext(noFollow(ctx)).
		SetFormData(map[string]string{
			"username":          s.creds.username,
			"password":          s.creds.password,
			"token":             tokens.form,
			"struts.token.name": "token",
		}).
		Post(s.endpoints.Login)
	if err != nil {
		return fail("failed to post login", fmt.Errorf("login request: %w", err))
	}

	reason, rejected, err := loginError(res.Body())
	if err != nil {
		return fail("failed to parse login response", err)
	}
	if rejected {
		return fail("login rejected", &AuthError{Reason: reason})
	}

	err = s.persist(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist cookies")
		return err
	}
	s.tel.ReportDebug("login succeeded")
	return nil
}
