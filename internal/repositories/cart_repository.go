package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	"github.com/aaravmahajanofficial/storefront-api/internal/utils"
	"github.com/google/uuid"
)

type CartRepository interface {
	// GetCartByUserID returns ErrNotFound when the user has no cart yet.
	GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	// LockCartByUserID reads the cart with a row lock held until the
	// surrounding transaction ends.
	LockCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	EnsureCart(ctx context.Context, userID uuid.UUID) error
	UpdateCart(ctx context.Context, cart *models.Cart) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

const selectCartColumns = `SELECT id, user_id, items, total, created_at, updated_at FROM carts WHERE user_id = $1`

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return r.getCart(ctx, selectCartColumns, userID)
}

func (r *cartRepository) LockCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return r.getCart(ctx, selectCartColumns+` FOR UPDATE`, userID)
}

func (r *cartRepository) getCart(ctx context.Context, query string, userID uuid.UUID) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	cart := &models.Cart{}

	var itemsJSON []byte

	err := executor(ctx, r.DB).QueryRowContext(dbCtx, query, userID).
		Scan(&cart.ID, &cart.UserID, &itemsJSON, &cart.Total, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
	}

	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	return cart, nil
}

// EnsureCart creates an empty cart for the user unless one already exists.
func (r *cartRepository) EnsureCart(ctx context.Context, userID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO carts (id, user_id, items, total, created_at, updated_at)
		VALUES ($1, $2, '[]'::jsonb, 0, NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := executor(ctx, r.DB).ExecContext(dbCtx, query, uuid.New(), userID); err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}

	return nil
}

// UpdateCart persists the full items document and total.
func (r *cartRepository) UpdateCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	query := `
		UPDATE carts
		SET items = $1, total = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	err = executor(ctx, r.DB).QueryRowContext(dbCtx, query, itemsJSON, cart.Total, cart.ID).Scan(&cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}

		return fmt.Errorf("failed to update cart: %w", err)
	}

	return nil
}
