package tokens

import (
	"net/http"
	"time"

	"github.com/coursehub/coursehub-api/internal/config"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// CookiePolicy decides how session tokens are delivered: httpOnly, SameSite
// lax, lifetime equal to the configured token windows.
type CookiePolicy struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Secure     bool
	Domain     string
}

func NewCookiePolicy(cfg *config.Config) CookiePolicy {
	return CookiePolicy{
		AccessTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTTL: cfg.JWT.RefreshTokenTTL,
		Secure:     cfg.Cookie.Secure,
		Domain:     cfg.Cookie.Domain,
	}
}

// AttachSessionCookies writes both tokens of p as cookies.
func (cp CookiePolicy) AttachSessionCookies(w http.ResponseWriter, p *Pair) {
	http.SetCookie(w, cp.cookie(AccessCookie, p.AccessToken, cp.AccessTTL, p.AccessExpiresAt))
	http.SetCookie(w, cp.cookie(RefreshCookie, p.RefreshToken, cp.RefreshTTL, p.RefreshExpiresAt))
}

// ClearSessionCookies expires both session cookies immediately.
func (cp CookiePolicy) ClearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		c := cp.cookie(name, "", 0, time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (cp CookiePolicy) cookie(name, value string, ttl time.Duration, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cp.Domain,
		Expires:  expires,
		MaxAge:   int(ttl / time.Second),
		Secure:   cp.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
