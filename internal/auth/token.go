// Package auth issues and verifies the HS256 bearer tokens that carry
// request identity. Tokens are stateless: there is no revocation list,
// so deleting a user or changing a role only takes effect once the
// token's fixed lifetime runs out.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stockroom/internal/domain"
)

var (
	// ErrTokenExpired indicates the token was valid once but its lifetime has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrSignatureInvalid indicates the signature does not verify against the secret.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenMalformed indicates the token could not be parsed at all.
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims binds a user id and role to the standard registered claims.
type Claims struct {
	UserID int64       `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issuer creates and verifies signed identity tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Used by tests to pin expiry
// boundaries; production code never calls it.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue signs a token for the given user id and role, valid for the
// issuer's configured lifetime.
func (i *Issuer) Issue(userID int64, role domain.Role) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   jwtSubject(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}

// Verify checks signature and expiry and returns the embedded claims.
// The distinct failure errors are for logging and tests; callers facing
// clients must collapse them into a single generic rejection.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func jwtSubject(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
