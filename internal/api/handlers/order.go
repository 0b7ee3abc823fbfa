package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront-api/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-api/internal/errors"
	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	service "github.com/aaravmahajanofficial/storefront-api/internal/services"
	"github.com/aaravmahajanofficial/storefront-api/internal/utils"
	"github.com/aaravmahajanofficial/storefront-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type OrderHandler struct {
	orderService service.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService, validator: validator.New()}
}

// Checkout godoc
//
//	@Summary		Place an order from the cart
//	@Description	Turns the authenticated user's cart into an order, reserving stock for every line. The body may be omitted for a cash-on-delivery order without a shipping address. Repeating a request with the same Idempotency-Key returns the original order with status 200.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string					false	"Client generated key, at most 255 characters"
//	@Param			order			body		models.CheckoutRequest	false	"Shipping and payment details"
//	@Success		201				{object}	models.Order			"Order placed"
//	@Success		200				{object}	models.Order			"Order already placed for this key"
//	@Failure		400				{object}	response.ErrorResponse	"Validation error, empty cart, or insufficient stock"
//	@Failure		401				{object}	response.ErrorResponse	"Authentication required"
//	@Failure		429				{object}	response.ErrorResponse	"Too many checkout attempts"
//	@Failure		500				{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders [post]
func (h *OrderHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req models.CheckoutRequest

		if r.ContentLength != 0 {
			if !utils.ParseAndValidate(r, w, &req, h.validator) {
				logger.Warn("Invalid checkout input")

				return
			}
		}

		req.IdempotencyKey = r.Header.Get(IdempotencyKeyHeader)

		order, replayed, err := h.orderService.Checkout(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Error("Checkout failed", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		if replayed {
			logger.Info("Checkout replayed", slog.String("orderId", order.ID.String()))
			response.Success(w, http.StatusOK, order)

			return
		}

		logger.Info("Order placed", slog.String("orderId", order.ID.String()))
		response.Success(w, http.StatusCreated, order)
	}
}

// GetOrder godoc
//
//	@Summary		Get an order by ID
//	@Description	Customers can only read their own orders. Admins can read any order.
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path		string					true	"Order ID (UUID)"	Format(uuid)
//	@Success		200	{object}	models.Order			"Order"
//	@Failure		400	{object}	response.ErrorResponse	"Invalid order ID format"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		403	{object}	response.ErrorResponse	"Order belongs to another user"
//	@Failure		404	{object}	response.ErrorResponse	"Order not found"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders/{id} [get]
func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid order id", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		order, err := h.orderService.GetOrderByID(r.Context(), id)
		if err != nil {
			logger.Error("Failed to get order", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		if order.CustomerID != claims.UserID && !claims.IsAdmin() {
			logger.Warn("Attempted to access another user's order",
				slog.String("orderId", id.String()),
				slog.String("ownerId", order.CustomerID.String()))
			response.Error(w, errors.ForbiddenError("You don't have permission to access this order"))

			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// ListOrders godoc
//
//	@Summary	List the authenticated user's orders
//	@Tags		Orders
//	@Produce	json
//	@Param		page		query		int												false	"Page number (default: 1)"						minimum(1)
//	@Param		pageSize	query		int												false	"Items per page (default: 10, max: 100)"	minimum(1)	maximum(100)
//	@Success	200			{object}	models.PaginatedResponse{Data=[]models.Order}	"Orders, newest first"
//	@Failure	401			{object}	response.ErrorResponse							"Authentication required"
//	@Failure	500			{object}	response.ErrorResponse							"Internal server error"
//	@Security	BearerAuth
//	@Router		/orders [get]
func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		page, pageSize := utils.ParsePagination(r)

		orders, total, err := h.orderService.ListOrdersByCustomer(r.Context(), claims.UserID, page, pageSize)
		if err != nil {
			logger.Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{
			Data:     orders,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		})
	}
}

// CancelOrder godoc
//
//	@Summary		Cancel an order
//	@Description	Only orders that are still processing can be cancelled. Reserved stock is returned.
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path		string					true	"Order ID (UUID)"	Format(uuid)
//	@Success		200	{object}	models.Order			"Cancelled order"
//	@Failure		400	{object}	response.ErrorResponse	"Invalid order ID format"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		403	{object}	response.ErrorResponse	"Order belongs to another user"
//	@Failure		404	{object}	response.ErrorResponse	"Order not found"
//	@Failure		409	{object}	response.ErrorResponse	"Order can no longer be cancelled"
//	@Security		BearerAuth
//	@Router			/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder() http.HandlerFunc {
	return h.customerTransition("cancel", h.orderService.CancelOrder)
}

// RequestRefund godoc
//
//	@Summary		Request a refund
//	@Description	Only delivered orders can be refunded. An admin approves or rejects the request.
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path		string					true	"Order ID (UUID)"	Format(uuid)
//	@Success		200	{object}	models.Order			"Order awaiting refund"
//	@Failure		400	{object}	response.ErrorResponse	"Invalid order ID format"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		403	{object}	response.ErrorResponse	"Order belongs to another user"
//	@Failure		404	{object}	response.ErrorResponse	"Order not found"
//	@Failure		409	{object}	response.ErrorResponse	"Order is not delivered"
//	@Security		BearerAuth
//	@Router			/orders/{id}/refund [post]
func (h *OrderHandler) RequestRefund() http.HandlerFunc {
	return h.customerTransition("refund", h.orderService.RequestRefund)
}

func (h *OrderHandler) customerTransition(action string, apply func(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		logger = logger.With(slog.String("orderId", id.String()), slog.String("action", action))

		order, err := apply(r.Context(), claims.UserID, id)
		if err != nil {
			logger.Warn("Order action rejected", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Order action applied", slog.String("status", string(order.Status)))
		response.Success(w, http.StatusOK, order)
	}
}

// ListAllOrders godoc
//
//	@Summary	List all orders (admin)
//	@Tags		Admin
//	@Produce	json
//	@Param		status		query		string											false	"Filter by status"	Enums(processing, shipped, delivered, cancelled, refund_requested, refunded)
//	@Param		page		query		int												false	"Page number (default: 1)"
//	@Param		pageSize	query		int												false	"Items per page (default: 10, max: 100)"
//	@Success	200			{object}	models.PaginatedResponse{Data=[]models.Order}	"Orders"
//	@Failure	400			{object}	response.ErrorResponse							"Unknown status"
//	@Failure	401			{object}	response.ErrorResponse							"Authentication required"
//	@Failure	403			{object}	response.ErrorResponse							"Admin role required"
//	@Security	BearerAuth
//	@Router		/admin/orders [get]
func (h *OrderHandler) ListAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		filter := models.OrderListFilter{Status: models.OrderStatus(r.URL.Query().Get("status"))}
		if filter.Status != "" && !filter.Status.IsValid() {
			response.Error(w, errors.BadRequestError("Unknown order status"))

			return
		}

		page, pageSize := utils.ParsePagination(r)

		orders, total, err := h.orderService.ListOrders(r.Context(), filter, page, pageSize)
		if err != nil {
			logger.Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{
			Data:     orders,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		})
	}
}

// UpdateOrderStatus godoc
//
//	@Summary		Move an order to a new status (admin)
//	@Description	Allowed moves: processing to shipped or cancelled, shipped to delivered, delivered to refund_requested, refund_requested to refunded or back to delivered. Refunding a card payment refunds it through Stripe.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Order ID (UUID)"	Format(uuid)
//	@Param			status	body		models.UpdateOrderStatusRequest	true	"New status"
//	@Success		200		{object}	models.Order					"Updated order"
//	@Failure		400		{object}	response.ErrorResponse			"Invalid order ID or status"
//	@Failure		403		{object}	response.ErrorResponse			"Admin role required"
//	@Failure		404		{object}	response.ErrorResponse			"Order not found"
//	@Failure		409		{object}	response.ErrorResponse			"Transition not allowed"
//	@Failure		500		{object}	response.ErrorResponse			"Refund or database failure"
//	@Security		BearerAuth
//	@Router			/admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update order status input")

			return
		}

		logger = logger.With(slog.String("orderId", id.String()), slog.String("newStatus", string(req.Status)))

		order, err := h.orderService.UpdateOrderStatus(r.Context(), id, &req)
		if err != nil {
			logger.Error("Failed to update order status", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Order status updated")
		response.Success(w, http.StatusOK, order)
	}
}

// DeleteOrder godoc
//
//	@Summary	Delete an order (admin)
//	@Tags		Admin
//	@Param		id	path	string	true	"Order ID (UUID)"	Format(uuid)
//	@Success	204
//	@Failure	400	{object}	response.ErrorResponse	"Invalid order ID format"
//	@Failure	403	{object}	response.ErrorResponse	"Admin role required"
//	@Failure	404	{object}	response.ErrorResponse	"Order not found"
//	@Security	BearerAuth
//	@Router		/admin/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		if err := h.orderService.DeleteOrder(r.Context(), id); err != nil {
			logger.Error("Failed to delete order", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.NoContent(w)
	}
}
