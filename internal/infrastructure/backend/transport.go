package backend

import (
	"net/http"
	"strings"
)

// TokenSource provides the current stored bearer token. The credential
// store satisfies this.
type TokenSource interface {
	Token() string
}

// UnauthorizedHook is invoked synchronously whenever an authenticated call
// comes back 401, before the failing call's own error handling runs. It is
// the "kill session everywhere" behavior: clear the store and signal a
// forced navigation to login.
type UnauthorizedHook func()

// sessionTransport decorates every outgoing request with the stored bearer
// token and intercepts 401 responses globally.
type sessionTransport struct {
	base           http.RoundTripper
	tokens         TokenSource
	onUnauthorized UnauthorizedHook
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	authenticated := req.Header.Get("Authorization") != ""
	if !authenticated && t.tokens != nil && !isLoginPath(req.URL.Path) {
		if token := t.tokens.Token(); token != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
			authenticated = true
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// Only calls that actually carried credentials can invalidate the
	// session; a 401 from the login endpoint itself is a failed login,
	// not a rejected session.
	if resp.StatusCode == http.StatusUnauthorized && authenticated && t.onUnauthorized != nil {
		t.onUnauthorized()
	}

	return resp, nil
}

// isLoginPath reports whether the request targets the unauthenticated login
// endpoint. The stored token is never attached there: a login attempt while
// a session exists, such as the password check before a withdrawal, must not
// be able to invalidate that session.
func isLoginPath(path string) bool {
	return strings.HasSuffix(path, "/"+pathLogin)
}
