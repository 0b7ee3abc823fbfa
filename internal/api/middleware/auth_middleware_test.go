package middleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront-api/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJwtKey = []byte("test-secret-key-123456789012345")

func createTestToken(userID uuid.UUID, email string, role models.Role, duration time.Duration, key []byte) (string, error) {
	claims := &models.Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func withLogger(req *http.Request) *http.Request {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return req.WithContext(context.WithValue(req.Context(), middleware.LoggerKey, logger))
}

func TestAuthMiddleware(t *testing.T) {
	// Arrange
	authMiddleware := middleware.NewAuthMiddleware(testJwtKey)
	userID := uuid.New()
	userEmail := "test@example.com"

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		require.True(t, ok, "User claims should be in context")
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, userEmail, claims.Email)
		assert.Equal(t, models.RoleCustomer, claims.Role)

		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(`{"success": true}`))
		require.NoError(t, err)
	})

	validToken, err := createTestToken(userID, userEmail, models.RoleCustomer, time.Hour, testJwtKey)
	require.NoError(t, err)

	wrongKeyToken, err := createTestToken(userID, userEmail, models.RoleCustomer, time.Hour, []byte("different-secret-key-0987654321"))
	require.NoError(t, err)

	expiredToken, err := createTestToken(userID, userEmail, models.RoleCustomer, -time.Hour, testJwtKey)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success - Valid Token",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
		},
		{
			name:           "Failure - Missing Authorization Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"success": false, "error": {"code": "UNAUTHORIZED", "message": "Authorization header is required"}}`,
		},
		{
			name:           "Failure - No Bearer Prefix",
			authHeader:     "InvalidTokenFormat",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"success": false, "error": {"code": "UNAUTHORIZED", "message": "Invalid authorization format"}}`,
		},
		{
			name:           "Failure - Malformed Token",
			authHeader:     "Bearer not.a.valid.token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"success": false, "error": {"code": "UNAUTHORIZED", "message": "Invalid or expired token"}}`,
		},
		{
			name:           "Failure - Wrong Signing Key",
			authHeader:     "Bearer " + wrongKeyToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"success": false, "error": {"code": "UNAUTHORIZED", "message": "Invalid or expired token"}}`,
		},
		{
			name:           "Failure - Expired Token",
			authHeader:     "Bearer " + expiredToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"success": false, "error": {"code": "UNAUTHORIZED", "message": "Invalid or expired token"}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := withLogger(httptest.NewRequest(http.MethodGet, "/", nil))
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			rr := httptest.NewRecorder()

			// Act
			authMiddleware.Authenticate(nextHandler).ServeHTTP(rr, req)

			// Assert
			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func TestRequireRole(t *testing.T) {
	authMiddleware := middleware.NewAuthMiddleware(testJwtKey)
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true

		w.WriteHeader(http.StatusOK)
	})
	handler := authMiddleware.Authenticate(middleware.RequireRole(models.RoleAdmin, next))

	t.Run("Success - Admin", func(t *testing.T) {
		// Arrange
		reached = false
		token, err := createTestToken(uuid.New(), "admin@example.com", models.RoleAdmin, time.Hour, testJwtKey)
		require.NoError(t, err)

		req := withLogger(httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil))
		req.Header.Set("Authorization", "Bearer "+token)

		rr := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, reached)
	})

	t.Run("Failure - Customer", func(t *testing.T) {
		// Arrange
		reached = false
		token, err := createTestToken(uuid.New(), "customer@example.com", models.RoleCustomer, time.Hour, testJwtKey)
		require.NoError(t, err)

		req := withLogger(httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil))
		req.Header.Set("Authorization", "Bearer "+token)

		rr := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.False(t, reached)
		assert.JSONEq(t, `{"success": false, "error": {"code": "FORBIDDEN", "message": "Insufficient permissions"}}`, rr.Body.String())
	})

	t.Run("Failure - No claims", func(t *testing.T) {
		rr := httptest.NewRecorder()

		middleware.RequireRole(models.RoleAdmin, next).ServeHTTP(rr, withLogger(httptest.NewRequest(http.MethodGet, "/", nil)))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
