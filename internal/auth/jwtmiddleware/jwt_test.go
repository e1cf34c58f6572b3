package jwtmiddleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/online-store/internal/auth/jwtmiddleware"
	"github.com/stretchr/testify/assert"
)

// createTestToken создаёт JWT-токен с заданными userID, customerID и секретом.
func createTestToken(userID, customerID int64, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", userID),
		"customer": fmt.Sprintf("%d", customerID),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func TestJWTMiddleware_MissingAuthorization(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	middleware := jwtmiddleware.NewJWTMiddleware()
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status when no token provided")
	assert.True(t, strings.Contains(rr.Body.String(), "missing token"))
}

func TestJWTMiddleware_InvalidAuthorizationFormat(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	middleware := jwtmiddleware.NewJWTMiddleware()
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "InvalidFormat")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status for invalid token format")
	assert.True(t, strings.Contains(rr.Body.String(), "invalid token format"))
}

func TestJWTMiddleware_InvalidToken(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	middleware := jwtmiddleware.NewJWTMiddleware()
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer invalid.token.value")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status for invalid token")
	assert.True(t, strings.Contains(rr.Body.String(), "invalid token"))
}

// Токен без клейма customer непригоден: ядро доверяет customer_id из токена.
func TestJWTMiddleware_MissingCustomerClaim(t *testing.T) {
	secret := "testsecret"
	os.Setenv("JWT_SECRET", secret)
	defer os.Unsetenv("JWT_SECRET")

	claims := jwt.MapClaims{"sub": "123"}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)

	middleware := jwtmiddleware.NewJWTMiddleware()
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status when customer claim is absent")
	assert.True(t, strings.Contains(rr.Body.String(), "customer not found"))
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	secret := "testsecret"
	os.Setenv("JWT_SECRET", secret)
	defer os.Unsetenv("JWT_SECRET")

	// Создаём токен для userID=123, customerID=42.
	tokenStr, err := createTestToken(123, 42, secret)
	assert.NoError(t, err)

	var gotUserID, gotCustomerID int64
	middleware := jwtmiddleware.NewJWTMiddleware()
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			http.Error(w, "userID not found", http.StatusInternalServerError)
			return
		}
		customerID, ok := jwtmiddleware.CustomerFromContext(r.Context())
		if !ok {
			http.Error(w, "customerID not found", http.StatusInternalServerError)
			return
		}
		gotUserID, gotCustomerID = userID, customerID
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "Expected OK status for valid token")
	assert.Equal(t, int64(123), gotUserID, "Expected userID from token")
	assert.Equal(t, int64(42), gotCustomerID, "Expected customerID from token")
}

func TestFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), jwtmiddleware.UserIDKey, int64(456))
	userID, ok := jwtmiddleware.FromContext(ctx)
	assert.True(t, ok, "Expected to retrieve userID from context")
	assert.Equal(t, int64(456), userID, "Expected userID to match")
}

func TestCustomerFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), jwtmiddleware.CustomerIDKey, int64(42))
	customerID, ok := jwtmiddleware.CustomerFromContext(ctx)
	assert.True(t, ok, "Expected to retrieve customerID from context")
	assert.Equal(t, int64(42), customerID, "Expected customerID to match")
}
