package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rohits-web03/stashbox/internal/models"
)

// Claims is the payload of a session token.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue signs a token for u and returns it with its expiry.
func (s *Sessions) Issue(u *models.User) (string, time.Time, error) {
	now := s.now()
	expiration := now.Add(s.ttl)
	claims := &Claims{
		UserID:   u.ID.String(),
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, newError(ErrStorageFailure, "Failed to create token", err)
	}
	return token, expiration, nil
}

// Parse verifies a token and returns the user ID it was issued for.
func (s *Sessions) Parse(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, newError(ErrUnauthenticated, "Unauthorized", nil)
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("token is not valid")
		}
		return uuid.Nil, newError(ErrUnauthenticated, "Unauthorized", err)
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, newError(ErrUnauthenticated, "Unauthorized", err)
	}
	return id, nil
}
