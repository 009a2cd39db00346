package domain

import "time"

const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Session is the result of a successful login or refresh: a freshly minted
// credential pair plus the public view of the administrator it belongs to.
type Session struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	Admin            *Admin
}
