package resolver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// DefaultTokenTTL is the assumed lifetime of a bearer token whose
// expiry cannot be decoded from its claims (spec's open question:
// "fixed 1-hour default token expiry when a real expiry cannot be
// decoded" — tightening or refusing this is left to the deploying
// operator, not hardcoded further here).
const DefaultTokenTTL = time.Hour

// RegistryResolver resolves assumption tables from an external HTTP
// registry (spec §4.7, §6: LIVECALC_AM_URL / LIVECALC_AM_TOKEN). The
// bearer token is passed to resty's auth header and is never logged —
// resty's request logging is left disabled by default.
type RegistryResolver struct {
	client    *resty.Client
	limiter   *rate.Limiter
	baseURL   string
	expiresAt time.Time
}

// TokenExpiresAt returns when the configured bearer token is expected
// to expire, or the zero Time if no token was configured.
func (r *RegistryResolver) TokenExpiresAt() time.Time {
	return r.expiresAt
}

// TokenExpired reports whether the configured token has passed its
// (decoded or assumed) expiry. Callers may use this to warn an operator
// or to trigger a fresh token prompt; RegistryResolver itself never
// refuses a call on this basis alone, since a registry's own 401 is the
// authoritative signal.
func (r *RegistryResolver) TokenExpired() bool {
	return !r.expiresAt.IsZero() && time.Now().After(r.expiresAt)
}

// jwtExpiry decodes the "exp" claim of a JWT-shaped token (three
// dot-separated base64url segments) without verifying its signature —
// the registry itself is the authority on validity; this is purely to
// surface an expiry hint locally. Returns the zero Time if token is not
// JWT-shaped or carries no "exp" claim.
func jwtExpiry(token string) time.Time {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return time.Time{}
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Exp == 0 {
		return time.Time{}
	}
	return time.Unix(claims.Exp, 0)
}

// RegistryOptions configures a RegistryResolver.
type RegistryOptions struct {
	BaseURL string
	Token   string
	// RequestsPerSecond bounds outbound calls to the registry; 0 disables
	// limiting.
	RequestsPerSecond float64
	Timeout           time.Duration
}

// NewRegistryResolver builds a resolver against opts.BaseURL. The token,
// if set, is attached as a bearer credential and never surfaces in
// error messages or logs.
func NewRegistryResolver(opts RegistryOptions) *RegistryResolver {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().SetBaseURL(opts.BaseURL).SetTimeout(timeout)
	var expiresAt time.Time
	if opts.Token != "" {
		client.SetAuthToken(opts.Token)
		expiresAt = jwtExpiry(opts.Token)
		if expiresAt.IsZero() {
			expiresAt = time.Now().Add(DefaultTokenTTL)
		}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &RegistryResolver{client: client, limiter: limiter, baseURL: opts.BaseURL, expiresAt: expiresAt}
}

func (r *RegistryResolver) await(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}

func classifyHTTPStatus(status int, name, version string, body string) error {
	switch status {
	case http.StatusNotFound:
		return &Error{Kind: NotFound, Name: name, Version: version}
	case http.StatusUnauthorized:
		return &Error{Kind: Unauthorized, Name: name, Version: version}
	case http.StatusForbidden:
		return &Error{Kind: Forbidden, Name: name, Version: version}
	default:
		return &Error{Kind: NetworkUnavailable, Name: name, Version: version,
			Reason: fmt.Sprintf("unexpected status %d", status)}
	}
}

type wireTable struct {
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

func (r *RegistryResolver) ResolveTable(ctx context.Context, name, version string) (Table, error) {
	if r.baseURL == "" {
		return Table{}, &Error{Kind: NotConfigured, Name: name, Version: version, Reason: "registry base URL not set"}
	}
	if err := r.await(ctx); err != nil {
		return Table{}, &Error{Kind: NetworkUnavailable, Name: name, Version: version, Reason: err.Error()}
	}

	var body wireTable
	resp, err := r.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(fmt.Sprintf("/assumptions/%s/%s", name, version))
	if err != nil {
		return Table{}, &Error{Kind: NetworkUnavailable, Name: name, Version: version, Reason: sanitizeTransportError(err)}
	}
	if resp.IsError() {
		return Table{}, classifyHTTPStatus(resp.StatusCode(), name, version, "")
	}
	if len(body.Columns) == 0 {
		return Table{}, &Error{Kind: MalformedData, Name: name, Version: version, Reason: "empty columns"}
	}
	return Table{Columns: body.Columns, Rows: body.Rows}, nil
}

type wireScalar struct {
	Value float64 `json:"value"`
}

func (r *RegistryResolver) ResolveScalar(ctx context.Context, name, version string, attrs map[string]string) (float64, error) {
	if r.baseURL == "" {
		return 0, &Error{Kind: NotConfigured, Name: name, Version: version, Reason: "registry base URL not set"}
	}
	if err := r.await(ctx); err != nil {
		return 0, &Error{Kind: NetworkUnavailable, Name: name, Version: version, Reason: err.Error()}
	}

	var body wireScalar
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(attrs).
		SetResult(&body).
		Get(fmt.Sprintf("/assumptions/%s/%s/scalar", name, version))
	if err != nil {
		return 0, &Error{Kind: NetworkUnavailable, Name: name, Version: version, Reason: sanitizeTransportError(err)}
	}
	if resp.IsError() {
		return 0, classifyHTTPStatus(resp.StatusCode(), name, version, "")
	}
	return body.Value, nil
}

func (r *RegistryResolver) ListVersions(ctx context.Context, name string) ([]string, error) {
	if r.baseURL == "" {
		return nil, &Error{Kind: NotConfigured, Name: name, Reason: "registry base URL not set"}
	}
	if err := r.await(ctx); err != nil {
		return nil, &Error{Kind: NetworkUnavailable, Name: name, Reason: err.Error()}
	}

	var versions []string
	resp, err := r.client.R().
		SetContext(ctx).
		SetResult(&versions).
		Get(fmt.Sprintf("/assumptions/%s/versions", name))
	if err != nil {
		return nil, &Error{Kind: NetworkUnavailable, Name: name, Reason: sanitizeTransportError(err)}
	}
	if resp.IsError() {
		return nil, classifyHTTPStatus(resp.StatusCode(), name, "", "")
	}
	return versions, nil
}

// sanitizeTransportError strips any bearer-token-shaped fragment a
// lower-level transport error might embed (e.g. a redirected URL with
// credentials in it) before the error is allowed to surface.
func sanitizeTransportError(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, "Authorization"); idx >= 0 {
		return msg[:idx] + "[redacted]"
	}
	return msg
}
