// Package auth attaches Panoramax credentials to outgoing requests.
//
// Credentials are only sent to the hosts they were issued for. Image assets
// are often served from another host (a CDN or object store) that must
// not see the token.
package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/robert-malhotra/go-panoramax-client/pkg/client"
)

// Scope limits credentials to a set of hosts. An empty scope matches every
// host.
type Scope []string

// ScopeFor builds a scope from endpoint URLs; entries without a host are
// skipped.
func ScopeFor(endpoints ...string) Scope {
	var s Scope
	for _, ep := range endpoints {
		u, err := url.Parse(ep)
		if err != nil || u.Host == "" {
			continue
		}
		s = append(s, u.Host)
	}
	return s
}

// Allows reports whether requests to u may carry the credentials.
func (s Scope) Allows(u *url.URL) bool {
	if len(s) == 0 {
		return true
	}
	for _, host := range s {
		if strings.EqualFold(host, u.Host) {
			return true
		}
	}
	return false
}

// APIKeyTransport injects an API key header into outgoing requests.
type APIKeyTransport struct {
	Key    string
	Header string
	Scope  Scope
	Base   http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *APIKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	header := t.Header
	if header == "" {
		header = "Authorization"
	}
	return roundTrip(t.Base, req, t.Scope, header, t.Key)
}

// BearerTokenTransport injects a bearer token.
type BearerTokenTransport struct {
	Token string
	Scope Scope
	Base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	value := ""
	if t.Token != "" {
		value = "Bearer " + t.Token
	}
	return roundTrip(t.Base, req, t.Scope, "Authorization", value)
}

func roundTrip(base http.RoundTripper, req *http.Request, scope Scope, header, value string) (*http.Response, error) {
	if base == nil {
		base = http.DefaultTransport
	}
	if value == "" || !scope.Allows(req.URL) {
		return base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set(header, value)
	return base.RoundTrip(clone)
}

// BearerMiddleware returns client middleware that sets a bearer token on
// requests within scope.
func BearerMiddleware(token string, scope Scope) client.Middleware {
	return func(_ context.Context, req *http.Request) error {
		if token != "" && scope.Allows(req.URL) {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}
