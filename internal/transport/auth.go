package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type usernameKey struct{}

// Claims is the JWT payload for interviewer dashboard tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTService issues and validates interviewer dashboard tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService creates a JWT service with the given signing secret and
// token lifetime. A zero lifetime falls back to 24 hours.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &JWTService{secret: []byte(secret), ttl: ttl}
}

// GenerateToken creates a signed token for an interviewer.
func (s *JWTService) GenerateToken(username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning its claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// UsernameFromContext returns the authenticated interviewer username.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey{}).(string)
	return username, ok
}

// AuthMiddleware enforces bearer token authentication on dashboard routes.
func AuthMiddleware(tokens *JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey{}, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
