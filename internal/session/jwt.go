package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry returns the exp claim of token when it is a JWT carrying one.
// The signature is not checked.
func tokenExpiry(token string) (time.Time, bool) {
	t, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := t.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// sessionExpiry is now+ttl, or the token's own expiry if that comes first.
func sessionExpiry(token string, now time.Time, ttl time.Duration) time.Time {
	expires := now.Add(ttl)
	if exp, ok := tokenExpiry(token); ok && exp.Before(expires) {
		return exp
	}
	return expires
}
