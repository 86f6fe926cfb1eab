package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the session lifetime used when none is configured.
const DefaultTokenTTL = 60 * time.Minute

var (
	// ErrInvalidSignature is returned when the token was not signed with our key.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrTokenExpired is returned when the token's exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrMalformedToken is returned for anything that does not parse as a JWT.
	ErrMalformedToken = errors.New("malformed token")
)

// Claims represents the session token claims. Subject carries the user email.
type Claims struct {
	jwt.RegisteredClaims
}

// Email returns the authenticated user's email.
func (c *Claims) Email() string {
	return c.Subject
}

// JWTService issues and verifies HS256 session tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret and token lifetime.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs claims after filling iat, nbf, exp and jti when they are unset.
func (s *JWTService) Issue(claims Claims) (string, error) {
	now := s.now()
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.NotBefore == nil {
		claims.NotBefore = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	if claims.ID == "" {
		claims.ID = uuid.New().String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueFor issues a session token whose subject is email.
func (s *JWTService) IssueFor(email string) (string, error) {
	return s.Issue(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: email}})
}

// Verify checks signature and expiry and returns the claims.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrInvalidSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrMalformedToken
	}
	return claims, nil
}
