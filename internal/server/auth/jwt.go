// Package auth issues and verifies the bearer tokens handed out on login.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenLifetime is fixed; callers cannot ask for a longer token.
const TokenLifetime = 120 * time.Minute

// Claims are the registered claims carried by every token. The subject is the
// username, the audience equals the issuer.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs tokens with HS256. It is immutable after NewIssuer and safe
// for concurrent use.
type Issuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewIssuer(secret []byte, issuer string) *Issuer {
	return &Issuer{
		secret: append([]byte(nil), secret...),
		issuer: issuer,
		now:    time.Now,
	}
}

// Issue returns a signed token for username with a fresh jti.
func (i *Issuer) Issue(username string) (string, error) {
	now := i.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	})

	return token.SignedString(i.secret)
}

// Parse validates signature, expiry, issuer and audience. Expired tokens
// yield common.ErrTokenExpired, every other failure common.ErrInvalidToken.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
