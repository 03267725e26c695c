package transport

import (
	"net/http"

	"postline/internal/observability"
)

// Session is the slice of the session manager the interceptor needs.
type Session interface {
	Token() string
	Logout()
}

// AuthInterceptor is an http.RoundTripper that attaches the current bearer
// token to every outgoing request. A request issued with no stored token is
// an authentication precondition failure: the session is logged out
// immediately, and the request is still forwarded unmodified so the caller's
// pipeline completes. A 401 from downstream also logs the session out; the
// response is propagated unchanged.
type AuthInterceptor struct {
	session Session
	base    http.RoundTripper
	log     *observability.Logger
}

// NewAuthInterceptor wraps base with credential handling. A nil base falls
// back to http.DefaultTransport.
func NewAuthInterceptor(session Session, base http.RoundTripper, log *observability.Logger) *AuthInterceptor {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthInterceptor{session: session, base: base, log: log}
}

// RoundTrip implements http.RoundTripper. The incoming request is never
// mutated; the authorization header is added on a clone.
func (t *AuthInterceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.session.Token()
	if token == "" {
		t.log.WarnContext(req.Context(), "request issued without credential, logging out")
		t.session.Logout()
		return t.base.RoundTrip(req)
	}

	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.base.RoundTrip(authed)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.log.WarnContext(req.Context(), "unauthorized response, logging out")
		t.session.Logout()
	}
	return resp, nil
}
