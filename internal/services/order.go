package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aaravmahajanofficial/storefront-api/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-api/internal/cache"
	appErrors "github.com/aaravmahajanofficial/storefront-api/internal/errors"
	"github.com/aaravmahajanofficial/storefront-api/internal/events"
	"github.com/aaravmahajanofficial/storefront-api/internal/metrics"
	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	repository "github.com/aaravmahajanofficial/storefront-api/internal/repositories"
	"github.com/aaravmahajanofficial/storefront-api/internal/utils"
	stripeClient "github.com/aaravmahajanofficial/storefront-api/pkg/stripe"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/aaravmahajanofficial/storefront-api/internal/services")

// eventPublishTimeout bounds how long a request waits on the broker.
const eventPublishTimeout = 5 * time.Second

type OrderService interface {
	// Checkout turns the user's cart into an order. replayed is true when an
	// order already existed for the request's idempotency key.
	Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (order *models.Order, replayed bool, err error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, page, size int) ([]*models.Order, int, error)
	ListOrders(ctx context.Context, filter models.OrderListFilter, page, size int) ([]*models.Order, int, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	RequestRefund(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

type orderService struct {
	tx          repository.Transactor
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	products    cache.Cache
	payments    stripeClient.Client
	publisher   events.Publisher
	notifier    NotificationService
}

func NewOrderService(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	products cache.Cache,
	payments stripeClient.Client,
	publisher events.Publisher,
	notifier NotificationService,
) OrderService {
	return &orderService{
		tx:          tx,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		products:    products,
		payments:    payments,
		publisher:   publisher,
		notifier:    notifier,
	}
}

var errPaymentRejected = errors.New("payment rejected")

func (s *orderService) Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, bool, error) {
	ctx, span := tracer.Start(ctx, "OrderService.Checkout", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("payment.method", string(req.PaymentMethod)),
	))
	defer span.End()

	start := time.Now()

	order, replayed, err := s.checkout(ctx, userID, req)

	metrics.RecordCheckout(checkoutOutcome(replayed, err), time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, false, err
	}

	span.SetAttributes(attribute.String("order.id", order.ID.String()), attribute.Bool("order.replayed", replayed))

	if !replayed {
		metrics.RecordOrderPlaced(order.TotalAmount)
		s.afterPlaced(ctx, order)
	}

	return order, replayed, nil
}

func (s *orderService) checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, bool, error) {
	logger := middleware.LoggerFromContext(ctx)

	if len(req.IdempotencyKey) > models.MaxIdempotencyKeyLength {
		return nil, false, appErrors.ValidationError(fmt.Sprintf("Idempotency key must be at most %d characters", models.MaxIdempotencyKeyLength))
	}

	if req.IdempotencyKey != "" {
		existing, err := s.findByKey(ctx, userID, req.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}

		if existing != nil {
			logger.Info("Replaying order for idempotency key", slog.String("orderId", existing.ID.String()))

			return existing, true, nil
		}
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentMethodCashOnDelivery
	}

	paymentStatus := models.PaymentStatusPending

	var intent *stripeClient.PaymentIntent

	if method == models.PaymentMethodStripe {
		var err error

		intent, err = s.verifyPayment(ctx, req.PaymentIntentID)
		if err != nil {
			return nil, false, err
		}

		paymentStatus = models.PaymentStatusPaid
	}

	order := &models.Order{
		ID:              uuid.New(),
		CustomerID:      userID,
		Status:          models.InitialOrderStatus,
		PaymentMethod:   method,
		PaymentStatus:   paymentStatus,
		ShippingAddress: sanitizeAddress(req.ShippingAddress),
		IdempotencyKey:  req.IdempotencyKey,
	}

	if intent != nil {
		order.PaymentIntentID = intent.ID
	}

	var replay *models.Order

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.cartRepo.LockCartByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return appErrors.EmptyCartError()
			}

			return appErrors.DatabaseError("Failed to retrieve cart").WithError(err)
		}

		// The cart lock serializes checkouts for this user, so a request that
		// waited here on a same-key request sees the order it committed.
		if req.IdempotencyKey != "" {
			existing, err := s.findByKey(ctx, userID, req.IdempotencyKey)
			if err != nil {
				return err
			}

			if existing != nil {
				replay = existing

				return nil
			}
		}

		if cart.IsEmpty() {
			return appErrors.EmptyCartError()
		}

		if intent != nil && intent.Amount != stripeClient.ToMinorUnits(cart.Total) {
			return appErrors.ValidationError("Payment amount does not match the cart total").WithError(errPaymentRejected)
		}

		if err := s.reserveStock(ctx, cart.Items); err != nil {
			return err
		}

		order.TotalAmount = cart.Total
		order.Items = make([]models.OrderItem, 0, len(cart.Items))

		for _, line := range cart.Items {
			order.Items = append(order.Items, models.OrderItem{
				ID:        uuid.New(),
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			})
		}

		if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return err
			}

			return appErrors.DatabaseError("Failed to create order").WithError(err)
		}

		cart.Clear()

		if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
			return appErrors.DatabaseError("Failed to clear cart").WithError(err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) && req.IdempotencyKey != "" {
			// A concurrent request with the same key committed first.
			winner, findErr := s.findByKey(ctx, userID, req.IdempotencyKey)
			if findErr != nil {
				return nil, false, findErr
			}

			if winner != nil {
				return winner, true, nil
			}
		}

		return nil, false, asAppError(err, "Failed to place order")
	}

	if replay != nil {
		logger.Info("Replaying order for idempotency key", slog.String("orderId", replay.ID.String()))

		return replay, true, nil
	}

	logger.Info("Order placed",
		slog.String("orderId", order.ID.String()),
		slog.Int("items", len(order.Items)),
		slog.Float64("total", order.TotalAmount))

	return order, false, nil
}

// reserveStock validates every line before decrementing any of them, then
// decrements in ascending product id order.
func (s *orderService) reserveStock(ctx context.Context, lines []models.CartItem) error {
	names := make(map[uuid.UUID]string, len(lines))

	for _, line := range lines {
		product, err := s.productRepo.GetProductByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return appErrors.NotFoundError("Product not found").WithDetail(line.ProductID.String()).WithError(err)
			}

			return appErrors.DatabaseError("Failed to fetch product").WithError(err)
		}

		if product.StockQuantity < line.Quantity {
			return appErrors.InsufficientStockError(product.Name)
		}

		names[product.ID] = product.Name
	}

	sorted := slices.Clone(lines)
	slices.SortFunc(sorted, func(a, b models.CartItem) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})

	for _, line := range sorted {
		if err := s.productRepo.ReserveStock(ctx, line.ProductID, line.Quantity); err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				return appErrors.InsufficientStockError(names[line.ProductID]).WithError(err)
			}

			return appErrors.DatabaseError("Failed to reserve stock").WithError(err)
		}
	}

	return nil
}

func (s *orderService) verifyPayment(ctx context.Context, intentID string) (*stripeClient.PaymentIntent, error) {
	intent, err := s.payments.GetPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, appErrors.ThirdPartyError("Failed to verify payment").WithError(err)
	}

	if intent.Status != stripeClient.PaymentIntentSucceeded {
		return nil, appErrors.ValidationError("Payment has not succeeded").
			WithDetail(fmt.Sprintf("payment intent status is %s", intent.Status)).
			WithError(errPaymentRejected)
	}

	return intent, nil
}

func (s *orderService) findByKey(ctx context.Context, userID uuid.UUID, key string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByIdempotencyKey(ctx, userID, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}

		return nil, appErrors.DatabaseError("Failed to look up order").WithError(err)
	}

	return order, nil
}

func checkoutOutcome(replayed bool, err error) string {
	if err == nil {
		if replayed {
			return metrics.CheckoutReplayed
		}

		return metrics.CheckoutPlaced
	}

	if errors.Is(err, errPaymentRejected) {
		return metrics.CheckoutPaymentRejected
	}

	if appErr, ok := appErrors.IsAppError(err); ok {
		switch appErr.Code {
		case appErrors.ErrCodeEmptyCart:
			return metrics.CheckoutEmptyCart
		case appErrors.ErrCodeInsufficientStock:
			return metrics.CheckoutInsufficientStock
		}
	}

	return metrics.CheckoutFailed
}

func (s *orderService) afterPlaced(ctx context.Context, order *models.Order) {
	ctx = context.WithoutCancel(ctx)

	s.invalidateProducts(ctx, order.Items)

	s.publish(ctx, &models.OrderEvent{
		Type:        models.OrderEventPlaced,
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
		OccurredAt:  time.Now().UTC(),
	})

	go func() {
		if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
			middleware.LoggerFromContext(ctx).Warn("Failed to send order confirmation",
				slog.String("orderId", order.ID.String()),
				slog.Any("error", err))
		}
	}()
}

func (s *orderService) publish(ctx context.Context, event *models.OrderEvent) {
	ctx, cancel := context.WithTimeout(ctx, eventPublishTimeout)
	defer cancel()

	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to publish order event",
			slog.String("orderId", event.OrderID.String()),
			slog.String("type", string(event.Type)),
			slog.Any("error", err))
	}
}

// invalidateProducts drops cached catalogue entries whose stock just changed.
func (s *orderService) invalidateProducts(ctx context.Context, items []models.OrderItem) {
	keys := make([]string, 0, len(items))

	for _, item := range items {
		keys = append(keys, productKey(item.ProductID))
	}

	if len(keys) == 0 {
		return
	}

	if err := s.products.Delete(ctx, keys...); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to invalidate product cache", slog.Any("error", err))
	}
}

func (s *orderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	return order, nil
}

func (s *orderService) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, page, size int) ([]*models.Order, int, error) {
	orders, total, err := s.orderRepo.ListOrdersByCustomer(ctx, customerID, page, size)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to list orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter models.OrderListFilter, page, size int) ([]*models.Order, int, error) {
	orders, total, err := s.orderRepo.ListOrders(ctx, filter, page, size)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to list orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.Cancellable() {
		return nil, appErrors.ConflictError(fmt.Sprintf("Order cannot be cancelled once %s", order.Status))
	}

	return s.transition(ctx, order, models.OrderStatusCancelled)
}

func (s *orderService) RequestRefund(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusDelivered {
		return nil, appErrors.ConflictError("Refunds can only be requested for delivered orders")
	}

	return s.transition(ctx, order, models.OrderStatusRefundRequested)
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	if !req.Status.IsValid() {
		return nil, appErrors.ValidationError(fmt.Sprintf("Unknown order status %q", req.Status))
	}

	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(req.Status) {
		return nil, appErrors.ConflictError(fmt.Sprintf("Cannot move order from %s to %s", order.Status, req.Status))
	}

	return s.transition(ctx, order, req.Status)
}

func (s *orderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.NotFoundError("Order not found").WithError(err)
		}

		return appErrors.DatabaseError("Failed to delete order").WithError(err)
	}

	middleware.LoggerFromContext(ctx).Info("Order deleted", slog.String("orderId", id.String()))

	return nil
}

func (s *orderService) ownedOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.CustomerID != userID {
		return nil, appErrors.ForbiddenError("You do not have access to this order")
	}

	return order, nil
}

// transition applies an already-validated status change. Cancelling returns
// the order's stock and refunding a card payment refunds it through Stripe,
// both in the same transaction as the status update. The refund carries an
// idempotency key derived from the order, so retrying after a failed commit
// never refunds twice.
func (s *orderService) transition(ctx context.Context, order *models.Order, to models.OrderStatus) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.Transition", trace.WithAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.String("order.from", string(order.Status)),
		attribute.String("order.to", string(to)),
	))
	defer span.End()

	from := order.Status
	refund := to == models.OrderStatusRefunded &&
		order.PaymentMethod == models.PaymentMethodStripe &&
		order.PaymentStatus == models.PaymentStatusPaid

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if to == models.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := s.productRepo.ReleaseStock(ctx, item.ProductID, item.Quantity); err != nil {
					return appErrors.DatabaseError("Failed to release stock").WithError(err)
				}
			}
		}

		if err := s.orderRepo.UpdateOrderStatus(ctx, order.ID, from, to); err != nil {
			switch {
			case errors.Is(err, repository.ErrStatusChanged):
				return appErrors.ConflictError("Order status changed, please retry").WithError(err)
			case errors.Is(err, repository.ErrNotFound):
				return appErrors.NotFoundError("Order not found").WithError(err)
			default:
				return appErrors.DatabaseError("Failed to update order status").WithError(err)
			}
		}

		if !refund {
			return nil
		}

		amount := stripeClient.ToMinorUnits(order.TotalAmount)
		if _, err := s.payments.RefundPayment(ctx, order.PaymentIntentID, amount, refundKey(order.ID)); err != nil {
			return appErrors.ThirdPartyError("Failed to refund payment").WithError(err)
		}

		if err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusRefunded); err != nil {
			return appErrors.DatabaseError("Failed to update payment status").WithError(err)
		}

		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, asAppError(err, "Failed to update order status")
	}

	order.Status = to
	order.UpdatedAt = time.Now().UTC()

	if refund {
		order.PaymentStatus = models.PaymentStatusRefunded
	}

	metrics.RecordStatusTransition(string(from), string(to))

	bg := context.WithoutCancel(ctx)

	if to == models.OrderStatusCancelled {
		s.invalidateProducts(bg, order.Items)
	}

	middleware.LoggerFromContext(ctx).Info("Order status updated",
		slog.String("orderId", order.ID.String()),
		slog.String("from", string(from)),
		slog.String("to", string(to)))

	s.publish(bg, &models.OrderEvent{
		Type:        models.OrderEventStatusChanged,
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		Status:      to,
		OldStatus:   from,
		TotalAmount: order.TotalAmount,
		OccurredAt:  order.UpdatedAt,
	})

	go func() {
		if err := s.notifier.SendOrderStatusUpdate(bg, order); err != nil {
			middleware.LoggerFromContext(bg).Warn("Failed to send order status email",
				slog.String("orderId", order.ID.String()),
				slog.Any("error", err))
		}
	}()

	return order, nil
}

func refundKey(orderID uuid.UUID) string {
	return "refund-" + orderID.String()
}

func sanitizeAddress(addr *models.Address) *models.Address {
	if addr == nil {
		return nil
	}

	return &models.Address{
		Street:     utils.SanitizeString(addr.Street),
		City:       utils.SanitizeString(addr.City),
		State:      utils.SanitizeString(addr.State),
		PostalCode: utils.SanitizeString(addr.PostalCode),
		Country:    utils.SanitizeString(addr.Country),
	}
}
