package service_test

import (
	"errors"
	"testing"

	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	repository "github.com/aaravmahajanofficial/storefront-api/internal/repositories"
	repoMocks "github.com/aaravmahajanofficial/storefront-api/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/storefront-api/internal/services"
	"github.com/aaravmahajanofficial/storefront-api/internal/services/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNotificationService(t *testing.T) {
	customer := &models.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com"}
	order := &models.Order{
		ID:            uuid.MustParse("0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0"),
		CustomerID:    customer.ID,
		Status:        models.OrderStatusShipped,
		TotalAmount:   59.5,
		PaymentMethod: models.PaymentMethodCashOnDelivery,
		Items:         []models.OrderItem{{ProductID: uuid.New(), Quantity: 2, UnitPrice: 29.75}},
	}

	t.Run("Success - Confirmation Addressed To Customer", func(t *testing.T) {
		// Arrange
		users := &repoMocks.UserRepository{}
		email := &mocks.EmailService{}
		users.On("GetUserByID", mock.Anything, customer.ID).Return(customer, nil)
		email.On("Send", mock.Anything, mock.MatchedBy(func(msg *models.EmailMessage) bool {
			return msg.To == "jane@example.com" &&
				msg.ToName == "Jane" &&
				msg.Subject == "Order confirmation #0f1e2d3c" &&
				msg.HTMLContent != ""
		})).Return(nil)

		// Act
		err := service.NewNotificationService(users, email).SendOrderConfirmation(t.Context(), order)

		// Assert
		require.NoError(t, err)
		email.AssertExpectations(t)
	})

	t.Run("Success - Status Update Names New Status", func(t *testing.T) {
		// Arrange
		users := &repoMocks.UserRepository{}
		email := &mocks.EmailService{}
		users.On("GetUserByID", mock.Anything, customer.ID).Return(customer, nil)

		var sent *models.EmailMessage

		email.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			sent = args.Get(1).(*models.EmailMessage)
		}).Return(nil)

		// Act
		err := service.NewNotificationService(users, email).SendOrderStatusUpdate(t.Context(), order)

		// Assert
		require.NoError(t, err)
		require.NotNil(t, sent)
		assert.Contains(t, sent.Content, "shipped")
	})

	t.Run("Failure - Recipient Missing", func(t *testing.T) {
		// Arrange
		users := &repoMocks.UserRepository{}
		email := &mocks.EmailService{}
		users.On("GetUserByID", mock.Anything, customer.ID).Return(nil, repository.ErrNotFound)

		// Act
		err := service.NewNotificationService(users, email).SendOrderConfirmation(t.Context(), order)

		// Assert
		require.ErrorIs(t, err, repository.ErrNotFound)
		email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Provider Error", func(t *testing.T) {
		// Arrange
		users := &repoMocks.UserRepository{}
		email := &mocks.EmailService{}
		users.On("GetUserByID", mock.Anything, customer.ID).Return(customer, nil)
		email.On("Send", mock.Anything, mock.Anything).Return(errors.New("status code: 401"))

		// Act
		err := service.NewNotificationService(users, email).SendOrderConfirmation(t.Context(), order)

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send email")
	})
}
