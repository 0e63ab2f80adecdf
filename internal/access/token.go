package access

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "linentrack/internal/errors"
)

type sessionClaims struct {
	Role Role `json:"role"`
	View View `json:"view"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration, issuer string, clock func() time.Time) *TokenIssuer {
	if clock == nil {
		clock = time.Now
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    clock,
	}
}

// Issue opens a session for role on view and returns it with its signed
// token.
func (ti *TokenIssuer) Issue(role Role, view View) (Session, string, error) {
	now := ti.now()
	s := Session{
		ID:        uuid.New().String(),
		Role:      role,
		View:      view,
		IssuedAt:  now.Truncate(time.Second),
		ExpiresAt: now.Add(ti.ttl).Truncate(time.Second),
	}

	claims := sessionClaims{
		Role: role,
		View: view,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Issuer:    ti.issuer,
			Subject:   string(role),
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return Session{}, "", apperrors.NewInternalError("signing session token", err)
	}
	return s, signed, nil
}

// Parse verifies a token and returns its session. Any failure is an
// UnauthorizedError.
func (ti *TokenIssuer) Parse(token string) (Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ti.secret, nil
	},
		jwt.WithIssuer(ti.issuer),
		jwt.WithTimeFunc(ti.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return Session{}, apperrors.NewUnauthorizedError("session token is invalid or expired")
	}

	if claims.Role != RoleClient && claims.Role != RoleAdmin {
		return Session{}, apperrors.NewUnauthorizedError("session token carries an unknown role")
	}

	s := Session{
		ID:   claims.ID,
		Role: claims.Role,
		View: claims.View,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}
