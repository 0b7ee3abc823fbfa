package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line of a cart. UnitPrice is the product price captured
// when the line was first added.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}

func (i CartItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// EmptyCart is the representation returned for a user who has never added anything.
func EmptyCart(userID uuid.UUID) *Cart {
	return &Cart{
		UserID: userID,
		Items:  []CartItem{},
	}
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Recalculate sets Total from the lines. It always sums every line so the
// stored total can never drift from the items.
func (c *Cart) Recalculate() {
	var total float64

	for _, item := range c.Items {
		total += item.Subtotal()
	}

	c.Total = total
}

func (c *Cart) FindItem(productID uuid.UUID) (int, bool) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i, true
		}
	}

	return -1, false
}

// AddItem merges quantity into an existing line, keeping its original price
// snapshot, or appends a new line priced at unitPrice. It returns the line's
// resulting quantity.
func (c *Cart) AddItem(productID uuid.UUID, quantity int, unitPrice float64) int {
	if i, ok := c.FindItem(productID); ok {
		c.Items[i].Quantity += quantity
		c.Recalculate()

		return c.Items[i].Quantity
	}

	c.Items = append(c.Items, CartItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	})
	c.Recalculate()

	return quantity
}

func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) bool {
	i, ok := c.FindItem(productID)
	if !ok {
		return false
	}

	c.Items[i].Quantity = quantity
	c.Recalculate()

	return true
}

// RemoveItem drops the line for productID. Removing an absent line is a no-op.
func (c *Cart) RemoveItem(productID uuid.UUID) bool {
	i, ok := c.FindItem(productID)
	if !ok {
		return false
	}

	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.Recalculate()

	return true
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Total = 0
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"required,min=1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}
