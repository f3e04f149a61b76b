package validators

import (
	"net/http"
	"strings"
)

// Credential names shared by the middleware and the admin login controller.
const (
	BearerCookieName       = "sf_access_token"
	SessionTokenCookieName = "sf_session_token"
	AdminTokenCookieName   = "sf_admin_token"

	SessionTokenHeaderName = "X-Session-Token"
	AdminTokenHeaderName   = "X-Admin-Token"
)

// ExtractBearerToken returns the bearer credential, preferring the cookie over
// the Authorization header. Cookie wins so browser sessions are not overridden
// by a stale header a client keeps sending.
func ExtractBearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(BearerCookieName); err == nil {
		if token := strings.TrimSpace(cookie.Value); token != "" {
			return token
		}
	}
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	return raw
}

// ExtractOpaqueToken tries the named cookie first, then the named header.
func ExtractOpaqueToken(r *http.Request, cookieName, headerName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil {
		if token := strings.TrimSpace(cookie.Value); token != "" {
			return token
		}
	}
	return strings.TrimSpace(r.Header.Get(headerName))
}
