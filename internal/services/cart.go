package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront-api/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront-api/internal/errors"
	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	repository "github.com/aaravmahajanofficial/storefront-api/internal/repositories"
	"github.com/google/uuid"
)

type CartService interface {
	// GetCart returns the user's cart, or an empty one if none exists yet.
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, productID uuid.UUID, req *models.UpdateQuantityRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type cartService struct {
	tx          repository.Transactor
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(tx repository.Transactor, cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{tx: tx, cartRepo: cartRepo, productRepo: productRepo}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.EmptyCart(userID), nil
		}

		return nil, appErrors.DatabaseError("Failed to retrieve cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {
	logger := middleware.LoggerFromContext(ctx)

	var cart *models.Cart

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return appErrors.NotFoundError("Product not found").WithError(err)
			}

			return appErrors.DatabaseError("Failed to fetch product").WithError(err)
		}

		if err := s.cartRepo.EnsureCart(ctx, userID); err != nil {
			return appErrors.DatabaseError("Failed to create cart").WithError(err)
		}

		cart, err = s.cartRepo.LockCartByUserID(ctx, userID)
		if err != nil {
			return appErrors.DatabaseError("Failed to retrieve cart").WithError(err)
		}

		if quantity := cart.AddItem(product.ID, req.Quantity, product.Price); quantity > product.StockQuantity {
			return appErrors.InsufficientStockError(product.Name)
		}

		if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
			return appErrors.DatabaseError("Failed to update cart").WithError(err)
		}

		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Failed to add item to cart")
	}

	logger.Info("Item added to cart",
		slog.String("productId", req.ProductID.String()),
		slog.Int("quantity", req.Quantity),
		slog.Float64("cartTotal", cart.Total))

	return cart, nil
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, productID uuid.UUID, req *models.UpdateQuantityRequest) (*models.Cart, error) {
	var cart *models.Cart

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error

		cart, err = s.lockExistingCart(ctx, userID)
		if err != nil {
			return err
		}

		if !cart.SetQuantity(productID, req.Quantity) {
			return appErrors.NotFoundError("Item not found in the cart")
		}

		if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
			return appErrors.DatabaseError("Failed to update cart").WithError(err)
		}

		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Failed to update cart item")
	}

	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	var cart *models.Cart

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error

		cart, err = s.lockExistingCart(ctx, userID)
		if err != nil {
			return err
		}

		if !cart.RemoveItem(productID) {
			return nil
		}

		if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
			return appErrors.DatabaseError("Failed to update cart").WithError(err)
		}

		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Failed to remove cart item")
	}

	return cart, nil
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart *models.Cart

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error

		cart, err = s.cartRepo.LockCartByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				cart = models.EmptyCart(userID)

				return nil
			}

			return appErrors.DatabaseError("Failed to retrieve cart").WithError(err)
		}

		cart.Clear()

		if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
			return appErrors.DatabaseError("Failed to clear cart").WithError(err)
		}

		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Failed to clear cart")
	}

	return cart, nil
}

func (s *cartService) lockExistingCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cartRepo.LockCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.NotFoundError("Cart not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to retrieve cart").WithError(err)
	}

	return cart, nil
}

// asAppError passes AppErrors through and reports anything else, such as a
// failed commit, as a database error.
func asAppError(err error, message string) error {
	if appErr, ok := appErrors.IsAppError(err); ok {
		return appErr
	}

	return appErrors.DatabaseError(message).WithError(err)
}
