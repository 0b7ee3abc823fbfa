package repository_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	repository "github.com/aaravmahajanofficial/storefront-api/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartRepoTest(t *testing.T) (repository.CartRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	repo := repository.NewCartRepo(db)
	require.NotNil(t, repo, "NewCartRepo should return a non-nil repository")

	return repo, mock
}

var cartColumns = []string{"id", "user_id", "items", "total", "created_at", "updated_at"}

func TestCartRepository_GetCartByUserID(t *testing.T) {
	repo, mock := setupCartRepoTest(t)
	ctx := t.Context()

	selectSQL := regexp.QuoteMeta(`SELECT id, user_id, items, total, created_at, updated_at FROM carts WHERE user_id = $1`)

	t.Run("Success - Items In Insertion Order", func(t *testing.T) {
		// Arrange
		cartID, userID := uuid.New(), uuid.New()
		first, second := uuid.New(), uuid.New()
		now := time.Now()
		itemsJSON := `[{"product_id":"` + first.String() + `","quantity":2,"unit_price":10},` +
			`{"product_id":"` + second.String() + `","quantity":1,"unit_price":5.5}]`

		mock.ExpectQuery(selectSQL).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(cartColumns).
				AddRow(cartID.String(), userID.String(), []byte(itemsJSON), 25.5, now, now))

		// Act
		cart, err := repo.GetCartByUserID(ctx, userID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, cartID, cart.ID)
		assert.Equal(t, userID, cart.UserID)
		require.Len(t, cart.Items, 2)
		assert.Equal(t, first, cart.Items[0].ProductID)
		assert.Equal(t, 2, cart.Items[0].Quantity)
		assert.Equal(t, second, cart.Items[1].ProductID)
		assert.InDelta(t, 25.5, cart.Total, 0.001)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Null Items Become Empty Slice", func(t *testing.T) {
		// Arrange
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(selectSQL).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(cartColumns).
				AddRow(uuid.NewString(), userID.String(), []byte(`null`), 0.0, now, now))

		// Act
		cart, err := repo.GetCartByUserID(ctx, userID)

		// Assert
		require.NoError(t, err)
		assert.NotNil(t, cart.Items)
		assert.Empty(t, cart.Items)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		userID := uuid.New()
		mock.ExpectQuery(selectSQL).WithArgs(userID).WillReturnError(sql.ErrNoRows)

		// Act
		cart, err := repo.GetCartByUserID(ctx, userID)

		// Assert
		require.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, cart)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Corrupt Items Document", func(t *testing.T) {
		// Arrange
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(selectSQL).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(cartColumns).
				AddRow(uuid.NewString(), userID.String(), []byte(`{not json`), 0.0, now, now))

		// Act
		cart, err := repo.GetCartByUserID(ctx, userID)

		// Assert
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to unmarshal cart items")
		assert.Nil(t, cart)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCartRepository_LockCartByUserID(t *testing.T) {
	repo, mock := setupCartRepoTest(t)

	t.Run("Success - Reads With Row Lock", func(t *testing.T) {
		// Arrange
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM carts WHERE user_id = $1 FOR UPDATE`)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(cartColumns).
				AddRow(uuid.NewString(), userID.String(), []byte(`[]`), 0.0, now, now))

		// Act
		cart, err := repo.LockCartByUserID(t.Context(), userID)

		// Assert
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCartRepository_EnsureCart(t *testing.T) {
	repo, mock := setupCartRepoTest(t)
	ctx := t.Context()

	insertSQL := regexp.QuoteMeta(`ON CONFLICT (user_id) DO NOTHING`)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		userID := uuid.New()
		mock.ExpectExec(insertSQL).
			WithArgs(sqlmock.AnyArg(), userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		err := repo.EnsureCart(ctx, userID)

		// Assert
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Existing Cart Is Left Alone", func(t *testing.T) {
		// Arrange
		userID := uuid.New()
		mock.ExpectExec(insertSQL).
			WithArgs(sqlmock.AnyArg(), userID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Act
		err := repo.EnsureCart(ctx, userID)

		// Assert
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		userID := uuid.New()
		mock.ExpectExec(insertSQL).
			WithArgs(sqlmock.AnyArg(), userID).
			WillReturnError(errors.New("connection reset"))

		// Act
		err := repo.EnsureCart(ctx, userID)

		// Assert
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to create cart")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCartRepository_UpdateCart(t *testing.T) {
	repo, mock := setupCartRepoTest(t)
	ctx := t.Context()

	updateSQL := regexp.QuoteMeta(`UPDATE carts SET items = $1, total = $2, updated_at = NOW() WHERE id = $3 RETURNING updated_at`)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		productID := uuid.New()
		cart := &models.Cart{ID: uuid.New(), UserID: uuid.New()}
		cart.AddItem(productID, 3, 2.5)

		itemsJSON := `[{"product_id":"` + productID.String() + `","quantity":3,"unit_price":2.5}]`
		now := time.Now()

		mock.ExpectQuery(updateSQL).
			WithArgs([]byte(itemsJSON), 7.5, cart.ID).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

		// Act
		err := repo.UpdateCart(ctx, cart)

		// Assert
		require.NoError(t, err)
		assert.WithinDuration(t, now, cart.UpdatedAt, time.Second)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Cart Missing", func(t *testing.T) {
		// Arrange
		cart := &models.Cart{ID: uuid.New(), Items: []models.CartItem{}}
		mock.ExpectQuery(updateSQL).
			WithArgs(sqlmock.AnyArg(), 0.0, cart.ID).
			WillReturnError(sql.ErrNoRows)

		// Act
		err := repo.UpdateCart(ctx, cart)

		// Assert
		require.ErrorIs(t, err, repository.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
