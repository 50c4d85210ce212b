package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession covers malformed, forged, expired and revoked tokens.
var ErrInvalidSession = errors.New("invalid session")

// Sessions issues signed admin tokens and checks them against a
// SessionStore, so a token stops working once its session is deleted.
type Sessions struct {
	store  SessionStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions signs tokens with secret. An empty secret is replaced by a
// random one, which invalidates tokens across restarts.
func NewSessions(store SessionStore, secret string, ttl time.Duration) (*Sessions, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("session secret: %w", err)
		}
	}
	return &Sessions{store: store, secret: key, ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of new sessions.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Start opens a session and returns its signed token.
func (s *Sessions) Start(ctx context.Context) (string, error) {
	sid, err := s.store.Create(ctx, s.ttl)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sid,
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		s.store.Delete(ctx, sid)
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Check returns the session id carried by a valid, live token.
func (s *Sessions) Check(ctx context.Context, token string) (string, error) {
	sid, err := s.parse(token)
	if err != nil {
		return "", err
	}
	ok, err := s.store.Exists(ctx, sid)
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	if !ok {
		return "", ErrInvalidSession
	}
	return sid, nil
}

// End deletes the session behind token. Invalid tokens are ignored.
func (s *Sessions) End(ctx context.Context, token string) error {
	sid, err := s.parse(token)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, sid)
}

func (s *Sessions) parse(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.ID == "" {
		return "", ErrInvalidSession
	}
	return claims.ID, nil
}
