package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the claims in the dashboard JWT token
type JWTClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

const roleDashboard = "dashboard"

// withAuth is middleware that requires valid JWT authentication
func (r *Router) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		authHeader := req.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, `{"error": "missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			http.Error(w, `{"error": "invalid authorization format"}`, http.StatusUnauthorized)
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(r.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, `{"error": "invalid token"}`, http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(*JWTClaims)
		if !ok || claims.Role != roleDashboard {
			http.Error(w, `{"error": "invalid token claims"}`, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, req)
	}
}

// generateJWT creates a new dashboard JWT token
func (r *Router) generateJWT() (string, time.Time, error) {
	expiresAt := time.Now().Add(r.cfg.JWTExpiry)

	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   roleDashboard,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: roleDashboard,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(r.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// handleToken exchanges the dashboard access key for a JWT.
func (r *Router) handleToken(w http.ResponseWriter, req *http.Request) {
	var body struct {
		AccessKey string `json:"access_key"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	if r.cfg.DashboardKey == "" {
		http.Error(w, `{"error": "dashboard access not configured"}`, http.StatusForbidden)
		return
	}
	if subtle.ConstantTimeCompare([]byte(body.AccessKey), []byte(r.cfg.DashboardKey)) != 1 {
		http.Error(w, `{"error": "invalid access key"}`, http.StatusUnauthorized)
		return
	}

	tokenString, expiresAt, err := r.generateJWT()
	if err != nil {
		r.logger.Printf("token generation failed: %v", err)
		captureError(req, err, "token generation failed")
		http.Error(w, `{"error": "failed to generate token"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      tokenString,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}
