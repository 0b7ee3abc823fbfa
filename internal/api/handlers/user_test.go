package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aaravmahajanofficial/storefront-api/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/storefront-api/internal/errors"
	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	"github.com/aaravmahajanofficial/storefront-api/internal/services/mocks"
	"github.com/aaravmahajanofficial/storefront-api/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupUserTest() (*mocks.UserService, *handlers.UserHandler) {
	mockUserService := new(mocks.UserService)

	return mockUserService, handlers.NewUserHandler(mockUserService)
}

func TestRegister(t *testing.T) {
	t.Run("Success - User Registered", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		registerReq := models.RegisterRequest{Email: "jane@example.com", Password: "hunter22", Name: "Jane"}
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register",
			testutils.JSONBody(t, registerReq), nil)
		rec := httptest.NewRecorder()
		user := &models.User{ID: uuid.New(), Email: registerReq.Email, Name: "Jane", Password: "hash", Role: models.RoleCustomer}
		mockUserService.On("Register", mock.Anything, &registerReq).Return(user, nil).Once()

		// Act
		userHandler.Register()(rec, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, rec.Body.String(), "hash")
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Invalid Email", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		body := strings.NewReader(`{"email":"not-an-email","password":"hunter22","name":"Jane"}`)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", body, nil)
		rec := httptest.NewRecorder()

		// Act
		userHandler.Register()(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockUserService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Email Taken", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		body := strings.NewReader(`{"email":"jane@example.com","password":"hunter22","name":"Jane"}`)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", body, nil)
		rec := httptest.NewRecorder()
		mockUserService.On("Register", mock.Anything, mock.Anything).
			Return(nil, appErrors.DuplicateEntryError("Email already registered")).Once()

		// Act
		userHandler.Register()(rec, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success - Token Returned", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		body := strings.NewReader(`{"email":"jane@example.com","password":"hunter22"}`)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", body, nil)
		rec := httptest.NewRecorder()
		loginResp := &models.LoginResponse{Token: "jwt-token", ExpiresIn: 3600, User: &models.User{ID: uuid.New()}}
		mockUserService.On("Login", mock.Anything, &models.LoginRequest{Email: "jane@example.com", Password: "hunter22"}).
			Return(loginResp, nil).Once()

		// Act
		userHandler.Login()(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)

		var got models.LoginResponse
		testutils.DecodeResponse(t, rec, &got)
		assert.Equal(t, "jwt-token", got.Token)
	})

	t.Run("Failure - Rate Limited", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		body := strings.NewReader(`{"email":"jane@example.com","password":"x"}`)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", body, nil)
		rec := httptest.NewRecorder()
		mockUserService.On("Login", mock.Anything, mock.Anything).
			Return(nil, appErrors.TooManyRequestsError("Too many login attempts")).Once()

		// Act
		userHandler.Login()(rec, req)

		// Assert
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)

		resp := testutils.DecodeResponse(t, rec, nil)
		assert.Equal(t, appErrors.ErrCodeTooManyRequests, resp.Error.Code)
	})

	t.Run("Failure - Empty Body", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", nil, nil)
		rec := httptest.NewRecorder()

		// Act
		userHandler.Login()(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockUserService.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})
}

func TestProfile(t *testing.T) {
	t.Run("Success - Own Profile", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		userID := uuid.New()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/users/profile", nil, userID, nil)
		rec := httptest.NewRecorder()
		mockUserService.On("GetUserByID", mock.Anything, userID).Return(&models.User{ID: userID, Name: "Jane"}, nil).Once()

		// Act
		userHandler.Profile()(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)

		var got models.User
		testutils.DecodeResponse(t, rec, &got)
		assert.Equal(t, userID, got.ID)
	})

	t.Run("Failure - Unauthorized", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/users/profile", nil, nil)
		rec := httptest.NewRecorder()

		// Act
		userHandler.Profile()(rec, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		mockUserService.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})
}

func TestUpdateUserStatus(t *testing.T) {
	t.Run("Success - Blocked", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		id := uuid.New()
		req := testutils.CreateAdminRequest(http.MethodPatch, "/api/v1/admin/users/"+id.String()+"/status",
			strings.NewReader(`{"status":"blocked"}`), map[string]string{"id": id.String()})
		rec := httptest.NewRecorder()
		mockUserService.On("UpdateUserStatus", mock.Anything, id, models.UserStatusBlocked).
			Return(&models.User{ID: id, Status: models.UserStatusBlocked}, nil).Once()

		// Act
		userHandler.UpdateUserStatus()(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Unknown Status", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		id := uuid.New()
		req := testutils.CreateAdminRequest(http.MethodPatch, "/api/v1/admin/users/"+id.String()+"/status",
			strings.NewReader(`{"status":"banished"}`), map[string]string{"id": id.String()})
		rec := httptest.NewRecorder()

		// Act
		userHandler.UpdateUserStatus()(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockUserService.AssertNotCalled(t, "UpdateUserStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
