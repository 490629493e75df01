package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})

	tokenStr := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:     "doctor",
		FullName: "Dr. Rao",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotRole string
	h := mw(func(c echo.Context) error {
		gotRole = RoleFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRole != "doctor" {
		t.Errorf("expected role doctor, got %q", gotRole)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	err := h(c)
	if err == nil {
		t.Fatal("expected error for missing header")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	e := echo.New()
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})

	tokenStr := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Role: "nurse",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := h(c); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name    string
		role    string
		allowed []string
		wantOK  bool
	}{
		{"exact match", "pharmacist", []string{"pharmacist"}, true},
		{"admin passes everything", "admin", []string{"doctor"}, true},
		{"wrong role", "receptionist", []string{"doctor", "nurse"}, false},
		{"no role", "", []string{"doctor"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			ctx := context.WithValue(req.Context(), UserRoleKey, tt.role)
			req = req.WithContext(ctx)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			mw := RequireRole(tt.allowed...)
			h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
			err := h(c)

			if tt.wantOK && err != nil {
				t.Errorf("expected pass, got %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("expected forbidden")
			}
		})
	}
}
