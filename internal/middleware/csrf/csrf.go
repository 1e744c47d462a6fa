// Package csrf guards the shop's state-changing routes with a double-submit
// token. Only requests that carry a shop credential (the auth cookies or the
// guest cart session) are checked: without one there is no identity to forge.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/appdotbuilder/pc-part-shop/internal/logging"
	"github.com/appdotbuilder/pc-part-shop/internal/middleware/session"
	"github.com/appdotbuilder/pc-part-shop/internal/tokens"
)

const (
	DefaultCookieName = "XSRF-TOKEN"
	DefaultHeaderName = "X-CSRF-Token"
	tokenBytes        = 32
)

type Config struct {
	CookieName string
	HeaderName string
	Secure     bool
	MaxAge     time.Duration

	// CredentialCookies mark a request as acting for someone.
	CredentialCookies []string
	// ExemptPrefixes are route prefixes that are never checked.
	ExemptPrefixes []string
	// TrustedOrigins may send unsafe requests besides the shop's own host.
	TrustedOrigins []string
}

// DefaultConfig exempts the auth endpoints, which run before a session
// exists or only rotate cookies, and the health check.
func DefaultConfig() Config {
	return Config{
		CookieName:        DefaultCookieName,
		HeaderName:        DefaultHeaderName,
		Secure:            true,
		MaxAge:            24 * time.Hour,
		CredentialCookies: []string{tokens.AccessCookie, tokens.RefreshCookie, session.CookieName},
		ExemptPrefixes:    []string{"/auth/", "/health"},
	}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = def.MaxAge
	}
	if cfg.CredentialCookies == nil {
		cfg.CredentialCookies = def.CredentialCookies
	}
	return cfg
}

func (cfg Config) exempt(path string) bool {
	for _, p := range cfg.ExemptPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (cfg Config) credentialed(r *http.Request) bool {
	for _, name := range cfg.CredentialCookies {
		if ck, err := r.Cookie(name); err == nil && ck.Value != "" {
			return true
		}
	}
	return false
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

// Middleware issues the token cookie on safe requests and echoes it in the
// response header; unsafe credentialed requests must send it back in the header.
func Middleware(cfg Config) echo.MiddlewareFunc {
	cfg = cfg.withDefaults()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if cfg.exempt(req.URL.Path) {
				return next(c)
			}

			token := ""
			if ck, err := req.Cookie(cfg.CookieName); err == nil {
				token = ck.Value
			}

			if safeMethod(req.Method) {
				if token == "" {
					var err error
					if token, err = newToken(); err != nil {
						return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
					}
					c.SetCookie(&http.Cookie{
						Name:     cfg.CookieName,
						Value:    token,
						Path:     "/",
						Secure:   cfg.Secure,
						MaxAge:   int(cfg.MaxAge.Seconds()),
						SameSite: http.SameSiteLaxMode,
					})
				}
				c.Response().Header().Set(cfg.HeaderName, token)
				return next(c)
			}

			if !cfg.credentialed(req) {
				return next(c)
			}

			l := logging.FromContext(req.Context()).With("middleware", "csrf")
			if !cfg.originAllowed(req) {
				l.Warn("csrf_rejected", "status", http.StatusForbidden, "reason", "origin", "origin", req.Header.Get(echo.HeaderOrigin))
				return echo.NewHTTPError(http.StatusForbidden, "invalid origin")
			}
			if !matches(token, req.Header.Get(cfg.HeaderName)) {
				l.Warn("csrf_rejected", "status", http.StatusForbidden, "reason", "token")
				return echo.NewHTTPError(http.StatusForbidden, "invalid CSRF token")
			}
			return next(c)
		}
	}
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func matches(cookie, header string) bool {
	if cookie == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) == 1
}

// originAllowed leaves requests without Origin or Referer to the token check.
func (cfg Config) originAllowed(r *http.Request) bool {
	origin := r.Header.Get(echo.HeaderOrigin)
	if origin == "" {
		origin = r.Referer()
	}
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return slices.ContainsFunc(cfg.TrustedOrigins, func(o string) bool {
		return strings.EqualFold(strings.TrimSuffix(o, "/"), u.Scheme+"://"+u.Host)
	})
}
