package usps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"myusps/internal/components/assert"
	"myusps/internal/components/chrono"
	"myusps/internal/components/telemetry"
	"myusps/internal/cookiestore"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("myusps/usps")

const (
	report_session_get     = "session.get"
	report_session_login   = "session.login"
	report_session_persist = "session.persist"

	defaultTimeout = 30 * time.Second
	maxRedirects   = 10
)

// Options configure a Session, the zero value talks to the live site and
// keeps cookies in cookiestore.DefaultPath.
type Options struct {
	// CookiePath is the file cookies are kept in when Store is nil.
	CookiePath string
	Store      cookiestore.Store

	// Endpoints defaults to DefaultEndpoints.
	Endpoints *Endpoints

	// Cache serves repeated GETs from memory for CacheTTL (default 300s).
	Cache    bool
	CacheTTL time.Duration

	Timeout   time.Duration
	Time      chrono.API
	Telemetry telemetry.API

	// SkipSecondaryAuth skips the JSON AuthenticateAction call during login.
	SkipSecondaryAuth bool
	// LegacyTokens scrapes the GTM uniqueStateKey and payload key from the
	// login page and sends them as x-efmj headers on the secondary auth call.
	LegacyTokens bool
	// CloudflareBypass wraps the transport with cloudflare-bp-go.
	CloudflareBypass bool
	// EagerLogin logs in even when persisted cookies exist.
	EagerLogin bool
}

// Session is one authenticated account. It is not safe for concurrent use,
// the cookie jar and the persisted blob are mutated in place.
type Session struct {
	creds     Credentials
	endpoints Endpoints
	store     cookiestore.Store
	jar       *Jar
	http      *resty.Client
	cache     *responseCache
	time      chrono.API
	tel       telemetry.API

	skipSecondaryAuth bool
	legacyTokens      bool
}

type noFollowKeyType int

var noFollowKey noFollowKeyType

// noFollow makes requests made with ctx return redirect responses as they are.
func noFollow(ctx context.Context) context.Context {
	return context.WithValue(ctx, noFollowKey, true)
}

func redirectPolicy(req *http.Request, via []*http.Request) error {
	if disabled, _ := req.Context().Value(noFollowKey).(bool); disabled {
		return http.ErrUseLastResponse
	}
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

// NewSession builds a session without touching the network or the store,
// GetSession is what most callers want.
func NewSession(creds Credentials, opts Options) (*Session, error) {
	if creds.Empty() {
		return nil, fmt.Errorf("usps: username and password are required")
	}

	endpoints := DefaultEndpoints
	if opts.Endpoints != nil {
		endpoints = *opts.Endpoints
	}
	assert.NotEmptyStr(endpoints.Dashboard)

	store := opts.Store
	if store == nil {
		store = cookiestore.NewFileStore(opts.CookiePath)
	}

	clock := opts.Time
	if clock == nil {
		var err error
		clock, err = chrono.NewStandardImpl("")
		if err != nil {
			return nil, err
		}
	}

	var tel telemetry.API = telemetry.SlogAPI{}
	if opts.Telemetry != nil {
		tel = opts.Telemetry
	}
	tel = telemetry.NewScopedAPI("usps", tel)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	jar := NewJar()
	client := resty.New()
	client.SetCookieJar(jar)
	client.SetHeader("User-Agent", UserAgent)
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(redirectPolicy))
	client.SetTimeout(timeout)

	transport := client.GetClient().Transport
	assert.NotNil(transport)
	if opts.CloudflareBypass {
		transport = cloudflarebp.AddCloudFlareByPass(transport)
	}
	var cache *responseCache
	if opts.Cache {
		cache = newResponseCache(transport, opts.CacheTTL)
		transport = cache
	}
	client.SetTransport(transport)

	telemetry.InstrumentResty(client, tel, "myusps/usps/http")

	return &Session{
		creds:             creds,
		endpoints:         endpoints,
		store:             store,
		jar:               jar,
		http:              client,
		cache:             cache,
		time:              clock,
		tel:               tel,
		skipSecondaryAuth: opts.SkipSecondaryAuth,
		legacyTokens:      opts.LegacyTokens,
	}, nil
}

// GetSession returns a ready to use session. Persisted cookies are trusted
// without a network call, when there are none it logs in immediately.
func GetSession(ctx context.Context, creds Credentials, opts Options) (*Session, error) {
	s, err := NewSession(creds, opts)
	if err != nil {
		return nil, err
	}

	jar, err := LoadCookies(ctx, s.store)
	switch {
	case errors.Is(err, cookiestore.ErrNotFound):
		s.tel.ReportDebug("no persisted cookies, logging in")
		err = s.Login(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		s.tel.ReportBroken(report_session_get, err)
		return nil, err
	}

	s.setJar(jar)
	s.tel.ReportDebug("loaded persisted cookies", len(jar.Entries()))

	if opts.EagerLogin {
		err = s.Login(ctx)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) setJar(jar *Jar) {
	s.jar = jar
	s.http.SetCookieJar(jar)
}

// Cookies exposes the session's jar.
func (s *Session) Cookies() *Jar {
	return s.jar
}

func (s *Session) persist(ctx context.Context) error {
	err := SaveCookies(ctx, s.store, s.jar)
	if err != nil {
		s.tel.ReportBroken(report_session_persist, err)
		return err
	}
	return nil
}
