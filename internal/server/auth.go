package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// authorize admits the trigger request either via the scheduler's shared
// secret (header or query parameter) or via a bearer token whose claims
// carry the admin role. It returns the HTTP status to respond with when
// the request is rejected.
func (s *Server) authorize(r *http.Request) (int, error) {
	if secret := s.cfg.Auth.CronSecret; secret != "" {
		provided := r.Header.Get("X-Cron-Secret")
		if provided == "" {
			provided = r.URL.Query().Get("secret")
		}
		if provided != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1 {
			return 0, nil
		}
	}

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return http.StatusUnauthorized, fmt.Errorf("missing credentials")
	}

	// Without a configured secret every HMAC signature would verify,
	// including one produced with an empty key. Refuse bearer auth
	// entirely in that case.
	if s.cfg.Auth.JWTSecret == "" {
		return http.StatusUnauthorized, fmt.Errorf("bearer authentication is not configured")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(s.cfg.Auth.JWTSecret), nil
		})
	if err != nil {
		return http.StatusUnauthorized, fmt.Errorf("invalid token: %w", err)
	}

	if role, _ := claims["role"].(string); role != "admin" {
		return http.StatusForbidden, fmt.Errorf("administrator role required")
	}

	return 0, nil
}
