package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	stripeClient "github.com/aaravmahajanofficial/storefront-api/pkg/stripe"
	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/stretchr/testify/mock"
)

type CartService struct {
	mock.Mock
}

func (m *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

func (m *CartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, userID, req)
	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

func (m *CartService) UpdateItemQuantity(ctx context.Context, userID, productID uuid.UUID, req *models.UpdateQuantityRequest) (*models.Cart, error) {
	args := m.Called(ctx, userID, productID, req)
	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

func (m *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID, productID)
	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

func (m *CartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

type OrderService struct {
	mock.Mock
}

func (m *OrderService) Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, bool, error) {
	args := m.Called(ctx, userID, req)
	order, _ := args.Get(0).(*models.Order)

	return order, args.Bool(1), args.Error(2)
}

func (m *OrderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*models.Order)

	return order, args.Error(1)
}

func (m *OrderService) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, page, size int) ([]*models.Order, int, error) {
	args := m.Called(ctx, customerID, page, size)
	orders, _ := args.Get(0).([]*models.Order)

	return orders, args.Int(1), args.Error(2)
}

func (m *OrderService) ListOrders(ctx context.Context, filter models.OrderListFilter, page, size int) ([]*models.Order, int, error) {
	args := m.Called(ctx, filter, page, size)
	orders, _ := args.Get(0).([]*models.Order)

	return orders, args.Int(1), args.Error(2)
}

func (m *OrderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, userID, orderID)
	order, _ := args.Get(0).(*models.Order)

	return order, args.Error(1)
}

func (m *OrderService) RequestRefund(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, userID, orderID)
	order, _ := args.Get(0).(*models.Order)

	return order, args.Error(1)
}

func (m *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	args := m.Called(ctx, orderID, req)
	order, _ := args.Get(0).(*models.Order)

	return order, args.Error(1)
}

func (m *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type ProductService struct {
	mock.Mock
}

func (m *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, req)
	product, _ := args.Get(0).(*models.Product)

	return product, args.Error(1)
}

func (m *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*models.Product)

	return product, args.Error(1)
}

func (m *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, id, req)
	product, _ := args.Get(0).(*models.Product)

	return product, args.Error(1)
}

func (m *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter, page, pageSize int) ([]*models.Product, int, error) {
	args := m.Called(ctx, filter, page, pageSize)
	products, _ := args.Get(0).([]*models.Product)

	return products, args.Int(1), args.Error(2)
}

type UserService struct {
	mock.Mock
}

func (m *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*models.User)

	return user, args.Error(1)
}

func (m *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.LoginResponse)

	return resp, args.Error(1)
}

func (m *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)

	return user, args.Error(1)
}

func (m *UserService) UpdateUserStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) (*models.User, error) {
	args := m.Called(ctx, id, status)
	user, _ := args.Get(0).(*models.User)

	return user, args.Error(1)
}

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *NotificationService) SendOrderStatusUpdate(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

type EmailService struct {
	mock.Mock
}

func (m *EmailService) Send(ctx context.Context, msg *models.EmailMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *EmailService) GetSendGridClient() *sendgrid.Client {
	return nil
}

type StripeClient struct {
	mock.Mock
}

func (m *StripeClient) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*stripeClient.PaymentIntent, error) {
	args := m.Called(ctx, paymentIntentID)
	intent, _ := args.Get(0).(*stripeClient.PaymentIntent)

	return intent, args.Error(1)
}

func (m *StripeClient) RefundPayment(ctx context.Context, paymentIntentID string, amount int64, idempotencyKey string) (*stripeClient.Refund, error) {
	args := m.Called(ctx, paymentIntentID, amount, idempotencyKey)
	refund, _ := args.Get(0).(*stripeClient.Refund)

	return refund, args.Error(1)
}

func (m *StripeClient) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type Publisher struct {
	mock.Mock
}

func (m *Publisher) PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *Publisher) Close() error {
	return m.Called().Error(0)
}
