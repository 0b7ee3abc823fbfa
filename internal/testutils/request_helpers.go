package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/storefront-api/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	"github.com/aaravmahajanofficial/storefront-api/internal/utils/response"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// CreateTestRequestWithContext builds a request authenticated as a customer.
func CreateTestRequestWithContext(method, target string, body io.Reader, userID uuid.UUID, pathParams map[string]string) *http.Request {
	return CreateTestRequestWithClaims(method, target, body, &models.Claims{
		UserID: userID,
		Email:  "test@example.com",
		Role:   models.RoleCustomer,
	}, pathParams)
}

// CreateAdminRequest builds a request authenticated as an admin.
func CreateAdminRequest(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	return CreateTestRequestWithClaims(method, target, body, &models.Claims{
		UserID: uuid.New(),
		Email:  "admin@example.com",
		Role:   models.RoleAdmin,
	}, pathParams)
}

func CreateTestRequestWithClaims(method, target string, body io.Reader, claims *models.Claims, pathParams map[string]string) *http.Request {
	req := CreateTestRequestWithoutContext(method, target, body, pathParams)
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, claims)

	return req.WithContext(ctx)
}

func CreateTestRequestWithoutContext(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.WithValue(req.Context(), middleware.LoggerKey, logger)

	return req.WithContext(ctx)
}

// JSONBody marshals v for use as a request body.
func JSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	return bytes.NewReader(data)
}

// DecodeResponse decodes the envelope and, when data is non-nil, its data
// field into data.
func DecodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data any) response.APIResponse {
	t.Helper()

	var envelope struct {
		Success bool                    `json:"success"`
		Data    json.RawMessage         `json:"data"`
		Error   *response.ErrorResponse `json:"error"`
	}

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	if data != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}

	return response.APIResponse{Success: envelope.Success, Error: envelope.Error}
}
