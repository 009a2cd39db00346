package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookiePolicy decides the attributes of the two credential cookies.
// Secure cookies are sent with SameSite=None so a separately hosted admin
// frontend can use them; otherwise SameSite=Lax.
type CookiePolicy struct {
	Secure bool
	Domain string
}

func (p CookiePolicy) cookie(name, value string, expires time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   p.Domain,
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if p.Secure {
		ck.Secure = true
		ck.SameSite = http.SameSiteNoneMode
	}
	return ck
}

func (p CookiePolicy) setSession(c echo.Context, access string, accessExp time.Time, refresh string, refreshExp time.Time) {
	now := time.Now()
	accessCk := p.cookie(AccessTokenCookie, access, accessExp)
	accessCk.MaxAge = int(accessExp.Sub(now).Seconds())
	refreshCk := p.cookie(RefreshTokenCookie, refresh, refreshExp)
	refreshCk.MaxAge = int(refreshExp.Sub(now).Seconds())

	c.SetCookie(accessCk)
	c.SetCookie(refreshCk)
}

func (p CookiePolicy) clearSession(c echo.Context) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		ck := p.cookie(name, "", time.Unix(0, 0))
		ck.MaxAge = -1
		c.SetCookie(ck)
	}
}
