// Package httpcache provides the read-path response coordination for the
// API: a short-TTL response cache over Redis and an in-flight request
// coordinator that collapses concurrent identical GETs into one execution.
//
// Both key requests by the same fingerprint: (method, path+query,
// auth-identity). The cache is a debounce, not a durability layer —
// losing every entry is never incorrect, only less efficient.
package httpcache

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// anonymousIdentity stands in for requests carrying no bearer token, so
// authenticated and anonymous views of the same URL never share entries.
const anonymousIdentity = "anonymous"

// Fingerprint builds the cache/dedup key for a request.
func Fingerprint(method, uri, bearerToken string) string {
	if bearerToken == "" {
		bearerToken = anonymousIdentity
	}
	return method + ":" + uri + ":" + bearerToken
}

// RequestFingerprint derives the fingerprint of an Echo request from its
// method, full request URI (path and query), and Authorization header.
func RequestFingerprint(c echo.Context) string {
	req := c.Request()
	return Fingerprint(req.Method, req.RequestURI, bearerToken(c))
}

// bearerToken extracts the token from an "Authorization: Bearer x" header,
// or returns "" when absent.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return ""
}
