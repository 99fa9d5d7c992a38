package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJWTMiddlewareRoundTrip(t *testing.T) {
	token, err := GenerateToken("4f5c0000-0000-0000-0000-000000000001", "supplier", "Sven", "sven@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var gotClaims *Claims
	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = GetClaims(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	if gotClaims == nil {
		t.Fatal("claims not stored in context")
	}
	if gotClaims.UserID != "4f5c0000-0000-0000-0000-000000000001" {
		t.Errorf("UserID = %q", gotClaims.UserID)
	}
	if gotClaims.Role != "supplier" {
		t.Errorf("Role = %q", gotClaims.Role)
	}
}

func TestJWTMiddlewareRejects(t *testing.T) {
	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, expected 401", rec.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		role     string
		allowed  []string
		wantCode int
	}{
		{"matching role", "admin", []string{"admin"}, http.StatusOK},
		{"one of several", "supplier", []string{"supplier", "admin"}, http.StatusOK},
		{"wrong role", "customer", []string{"admin"}, http.StatusForbidden},
		{"no claims at all", "", []string{"admin"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/admin/settings", nil)
			if tt.role != "" {
				token, err := GenerateToken("4f5c0000-0000-0000-0000-000000000002", tt.role, "Test", "test@example.com")
				if err != nil {
					t.Fatalf("GenerateToken: %v", err)
				}
				req.Header.Set("Authorization", "Bearer "+token)
			}

			handler := JWTMiddleware(RequireRole(tt.allowed...)(okHandler))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if tt.role == "" {
				// Request never clears JWT validation without a token.
				if rec.Code != http.StatusUnauthorized {
					t.Errorf("status = %d, expected 401", rec.Code)
				}
				return
			}
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, expected %d", rec.Code, tt.wantCode)
			}
		})
	}
}
