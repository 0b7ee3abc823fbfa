package models_test

import (
	"testing"

	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumLines(c *models.Cart) float64 {
	var total float64
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}

	return total
}

func TestCartAddItem(t *testing.T) {
	t.Run("Success - Appends new line with price snapshot", func(t *testing.T) {
		// Arrange
		cart := models.EmptyCart(uuid.New())
		productID := uuid.New()

		// Act
		qty := cart.AddItem(productID, 2, 10)

		// Assert
		assert.Equal(t, 2, qty)
		require.Len(t, cart.Items, 1)
		assert.InDelta(t, 10.0, cart.Items[0].UnitPrice, 0.0001)
		assert.InDelta(t, 20.0, cart.Total, 0.0001)
	})

	t.Run("Success - Merges quantity and keeps original price", func(t *testing.T) {
		// Arrange
		cart := models.EmptyCart(uuid.New())
		productID := uuid.New()
		cart.AddItem(productID, 1, 10)

		// Act
		qty := cart.AddItem(productID, 3, 12.5)

		// Assert
		assert.Equal(t, 4, qty)
		require.Len(t, cart.Items, 1)
		assert.InDelta(t, 10.0, cart.Items[0].UnitPrice, 0.0001)
		assert.InDelta(t, 40.0, cart.Total, 0.0001)
	})

	t.Run("Success - Preserves line order", func(t *testing.T) {
		cart := models.EmptyCart(uuid.New())
		first, second, third := uuid.New(), uuid.New(), uuid.New()

		cart.AddItem(first, 1, 1)
		cart.AddItem(second, 1, 2)
		cart.AddItem(third, 1, 3)
		cart.AddItem(first, 1, 1)

		require.Len(t, cart.Items, 3)
		assert.Equal(t, first, cart.Items[0].ProductID)
		assert.Equal(t, second, cart.Items[1].ProductID)
		assert.Equal(t, third, cart.Items[2].ProductID)
	})
}

func TestCartTotalMatchesLinesAfterEveryMutation(t *testing.T) {
	cart := models.EmptyCart(uuid.New())
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	steps := []func(){
		func() { cart.AddItem(a, 2, 9.99) },
		func() { cart.AddItem(b, 1, 120) },
		func() { cart.AddItem(a, 3, 9.99) },
		func() { cart.SetQuantity(b, 4) },
		func() { cart.AddItem(c, 7, 0.35) },
		func() { cart.RemoveItem(a) },
		func() { cart.RemoveItem(uuid.New()) },
		func() { cart.SetQuantity(c, 1) },
		func() { cart.Clear() },
	}

	for i, step := range steps {
		step()
		assert.InDelta(t, sumLines(cart), cart.Total, 0.0001, "total drifted after step %d", i)
	}
}

func TestCartSetQuantity(t *testing.T) {
	cart := models.EmptyCart(uuid.New())
	productID := uuid.New()
	cart.AddItem(productID, 1, 5)

	assert.True(t, cart.SetQuantity(productID, 6))
	assert.InDelta(t, 30.0, cart.Total, 0.0001)

	assert.False(t, cart.SetQuantity(uuid.New(), 2))
	assert.InDelta(t, 30.0, cart.Total, 0.0001)
}

func TestCartRemoveItemIsIdempotent(t *testing.T) {
	// Arrange
	cart := models.EmptyCart(uuid.New())
	keep := uuid.New()
	cart.AddItem(keep, 2, 3)
	before := append([]models.CartItem(nil), cart.Items...)

	// Act
	removed := cart.RemoveItem(uuid.New())

	// Assert
	assert.False(t, removed)
	assert.Equal(t, before, cart.Items)
	assert.InDelta(t, 6.0, cart.Total, 0.0001)
}

func TestCartClear(t *testing.T) {
	cart := models.EmptyCart(uuid.New())
	cart.AddItem(uuid.New(), 2, 3)

	cart.Clear()

	assert.True(t, cart.IsEmpty())
	assert.NotNil(t, cart.Items)
	assert.Zero(t, cart.Total)
}
