package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderEventType string

const (
	OrderEventPlaced        OrderEventType = "order.placed"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
)

// OrderEvent is published after an order transaction commits.
type OrderEvent struct {
	Type        OrderEventType `json:"type"`
	OrderID     uuid.UUID      `json:"order_id"`
	CustomerID  uuid.UUID      `json:"customer_id"`
	Status      OrderStatus    `json:"status"`
	OldStatus   OrderStatus    `json:"old_status,omitempty"`
	TotalAmount float64        `json:"total_amount"`
	Items       []OrderItem    `json:"items,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}
