package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

const accessScope = "access"

type AccessClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// NewAccessToken mints an HS256 access token for the given username.
func NewAccessToken(username string, secret []byte, ttl time.Duration) (string, error) {
	claims := AccessClaims{
		Scope: accessScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// AccessClaimsFromToken verifies signature, expiry and scope. Tokens of
// another type signed with the same secret, such as mailed confirmation
// tokens, are rejected. Expiry failures are reported as ErrTokenExpired so
// callers can tell them apart from forgeries.
func AccessClaimsFromToken(tokenStr string, secret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tkn.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Scope != accessScope {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}
