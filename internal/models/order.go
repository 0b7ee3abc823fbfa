package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

type PaymentStatus string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodStripe         PaymentMethod = "stripe"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

const MaxIdempotencyKeyLength = 255

type Address struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required,iso3166_1_alpha2"`
}

// OrderItem is the price-at-purchase snapshot of a cart line.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	CreatedAt time.Time `json:"created_at"`
}

type Order struct {
	ID              uuid.UUID     `json:"id"`
	CustomerID      uuid.UUID     `json:"customer_id"`
	Status          OrderStatus   `json:"status"`
	TotalAmount     float64       `json:"total_amount"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty"`
	ShippingAddress *Address      `json:"shipping_address,omitempty"`
	IdempotencyKey  string        `json:"-"`
	Items           []OrderItem   `json:"items"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// CheckoutRequest is the body of a place-order call. The idempotency key
// travels in the Idempotency-Key header and is filled in by the handler.
type CheckoutRequest struct {
	ShippingAddress *Address      `json:"shipping_address,omitempty"`
	PaymentMethod   PaymentMethod `json:"payment_method,omitempty" validate:"omitempty,oneof=cash_on_delivery stripe"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty" validate:"required_if=PaymentMethod stripe"`
	IdempotencyKey  string        `json:"-"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=processing shipped delivered cancelled refund_requested refunded"`
}

type OrderListFilter struct {
	Status OrderStatus
}
