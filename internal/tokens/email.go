package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const emailScope = "email_confirm"

type EmailClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// NewEmailToken mints the confirmation token that is embedded in the
// verification link mailed to a freshly registered user.
func NewEmailToken(email string, secret []byte, ttl time.Duration) (string, error) {
	claims := EmailClaims{
		Scope: emailScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// EmailFromToken returns the address a confirmation token was issued for.
func EmailFromToken(tokenStr string, secret []byte) (string, error) {
	var claims EmailClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", ErrTokenInvalid
	}
	if claims.Scope != emailScope {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
