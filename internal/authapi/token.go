package authapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry lee exp de un JWT sin verificar la firma: el cliente no tiene
// la clave y solo lo usa para decidir si conviene refrescar.
// Tokens opacos o sin exp devuelven false.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// TokenExpired informa si el token vence antes de now+skew.
func TokenExpired(token string, now time.Time, skew time.Duration) bool {
	exp, ok := TokenExpiry(token)
	if !ok {
		return false
	}
	return !now.Add(skew).Before(exp)
}
