package middleware

import (
	"log"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"
)

// RequireRole wraps a handler and ensures the JWT's role is one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetRole(r)
			if slices.Contains(roles, role) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

// RequestLogger logs every API request with the caller's identity.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r)
		userID, userRole := "-", "-"
		if claims != nil {
			userID = claims.UserID
			userRole = claims.Role
		}
		log.Printf("[API] UserID=%s Role=%s IP=%s Path=%s Method=%s Time=%s",
			userID, userRole, getClientIP(r), r.URL.Path, r.Method, time.Now().Format(time.RFC3339))
		next.ServeHTTP(w, r)
	})
}

// Extracts client IP from headers or remote addr
func getClientIP(r *http.Request) string {
	// Priority: X-Forwarded-For → X-Real-IP → RemoteAddr
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.Split(ip, ",")[0]
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
