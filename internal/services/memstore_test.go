package service_test

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	repository "github.com/aaravmahajanofficial/storefront-api/internal/repositories"
	"github.com/google/uuid"
)

type txMarker struct{}

// memStore is an in-memory Transactor plus cart, product and order
// repositories. A transaction holds the store lock until it finishes and a
// failed transaction restores the state it started from, so concurrent
// checkouts behave like serialized database transactions.
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]models.Product
	carts    map[uuid.UUID]models.Cart
	orders   map[uuid.UUID]models.Order

	// Injected failures.
	createOrderErr   error
	paymentStatusErr error
	reserveErr       map[uuid.UUID]error
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[uuid.UUID]models.Product{},
		carts:      map[uuid.UUID]models.Cart{},
		orders:     map[uuid.UUID]models.Order{},
		reserveErr: map[uuid.UUID]error{},
	}
}

type memSnapshot struct {
	products map[uuid.UUID]models.Product
	carts    map[uuid.UUID]models.Cart
	orders   map[uuid.UUID]models.Order
}

func (s *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Stored values are never mutated in place, so shallow map copies are
	// enough to roll back.
	snap := memSnapshot{
		products: maps.Clone(s.products),
		carts:    maps.Clone(s.carts),
		orders:   maps.Clone(s.orders),
	}

	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		s.products, s.carts, s.orders = snap.products, snap.carts, snap.orders

		return err
	}

	return nil
}

func (s *memStore) lock(ctx context.Context) func() {
	if ctx.Value(txMarker{}) != nil {
		return func() {}
	}

	s.mu.Lock()

	return s.mu.Unlock
}

// Seeding and inspection helpers, used outside transactions.

func (s *memStore) addProduct(name string, price float64, stock int) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.products[id] = models.Product{ID: id, Name: name, Price: price, StockQuantity: stock}

	return id
}

func (s *memStore) setCart(userID uuid.UUID, items ...models.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := models.Cart{ID: uuid.New(), UserID: userID, Items: slices.Clone(items)}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	cart.Recalculate()
	s.carts[userID] = cart
}

func (s *memStore) stock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.products[id].StockQuantity
}

func (s *memStore) cart(userID uuid.UUID) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.carts[userID]
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.orders)
}

func (s *memStore) storedOrder(id uuid.UUID) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.orders[id]
}

func (s *memStore) putOrder(order models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.Items = slices.Clone(order.Items)
	s.orders[order.ID] = order
}

// CartRepository

func (s *memStore) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	defer s.lock(ctx)()

	cart, ok := s.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	cart.Items = slices.Clone(cart.Items)

	return &cart, nil
}

func (s *memStore) LockCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.GetCartByUserID(ctx, userID)
}

func (s *memStore) EnsureCart(ctx context.Context, userID uuid.UUID) error {
	defer s.lock(ctx)()

	if _, ok := s.carts[userID]; !ok {
		s.carts[userID] = models.Cart{ID: uuid.New(), UserID: userID, Items: []models.CartItem{}}
	}

	return nil
}

func (s *memStore) UpdateCart(ctx context.Context, cart *models.Cart) error {
	defer s.lock(ctx)()

	if _, ok := s.carts[cart.UserID]; !ok {
		return repository.ErrNotFound
	}

	stored := *cart
	stored.Items = slices.Clone(cart.Items)
	s.carts[cart.UserID] = stored

	return nil
}

// ProductRepository

func (s *memStore) CreateProduct(ctx context.Context, product *models.Product) error {
	defer s.lock(ctx)()

	s.products[product.ID] = *product

	return nil
}

func (s *memStore) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	defer s.lock(ctx)()

	product, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return &product, nil
}

func (s *memStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	defer s.lock(ctx)()

	if _, ok := s.products[product.ID]; !ok {
		return repository.ErrNotFound
	}

	s.products[product.ID] = *product

	return nil
}

func (s *memStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	defer s.lock(ctx)()

	if _, ok := s.products[id]; !ok {
		return repository.ErrNotFound
	}

	delete(s.products, id)

	return nil
}

func (s *memStore) ListProducts(ctx context.Context, _ models.ProductFilter, _, _ int) ([]*models.Product, int, error) {
	defer s.lock(ctx)()

	products := make([]*models.Product, 0, len(s.products))

	for _, p := range s.products {
		products = append(products, &p)
	}

	return products, len(products), nil
}

func (s *memStore) ReserveStock(ctx context.Context, id uuid.UUID, quantity int) error {
	defer s.lock(ctx)()

	if err := s.reserveErr[id]; err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	product, ok := s.products[id]
	if !ok || product.StockQuantity < quantity {
		return repository.ErrInsufficientStock
	}

	product.StockQuantity -= quantity
	s.products[id] = product

	return nil
}

func (s *memStore) ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	defer s.lock(ctx)()

	product, ok := s.products[id]
	if !ok {
		return repository.ErrNotFound
	}

	product.StockQuantity += quantity
	s.products[id] = product

	return nil
}

// OrderRepository

func (s *memStore) CreateOrder(ctx context.Context, order *models.Order) error {
	defer s.lock(ctx)()

	if s.createOrderErr != nil {
		return s.createOrderErr
	}

	if order.IdempotencyKey != "" {
		for _, existing := range s.orders {
			if existing.CustomerID == order.CustomerID && existing.IdempotencyKey == order.IdempotencyKey {
				return repository.ErrDuplicateKey
			}
		}
	}

	now := time.Now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].CreatedAt = now
	}

	stored := *order
	stored.Items = slices.Clone(order.Items)
	s.orders[order.ID] = stored

	return nil
}

func (s *memStore) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	defer s.lock(ctx)()

	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	order.Items = slices.Clone(order.Items)

	return &order, nil
}

func (s *memStore) GetOrderByIdempotencyKey(ctx context.Context, customerID uuid.UUID, key string) (*models.Order, error) {
	defer s.lock(ctx)()

	for _, order := range s.orders {
		if order.CustomerID == customerID && order.IdempotencyKey == key {
			order.Items = slices.Clone(order.Items)

			return &order, nil
		}
	}

	return nil, repository.ErrNotFound
}

func (s *memStore) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, _, _ int) ([]*models.Order, int, error) {
	defer s.lock(ctx)()

	var orders []*models.Order

	for _, order := range s.orders {
		if order.CustomerID == customerID {
			orders = append(orders, &order)
		}
	}

	return orders, len(orders), nil
}

func (s *memStore) ListOrders(ctx context.Context, filter models.OrderListFilter, _, _ int) ([]*models.Order, int, error) {
	defer s.lock(ctx)()

	var orders []*models.Order

	for _, order := range s.orders {
		if filter.Status == "" || order.Status == filter.Status {
			orders = append(orders, &order)
		}
	}

	return orders, len(orders), nil
}

func (s *memStore) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	defer s.lock(ctx)()

	order, ok := s.orders[id]
	if !ok {
		return repository.ErrNotFound
	}

	if order.Status != from {
		return repository.ErrStatusChanged
	}

	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	s.orders[id] = order

	return nil
}

func (s *memStore) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error {
	defer s.lock(ctx)()

	if s.paymentStatusErr != nil {
		return s.paymentStatusErr
	}

	order, ok := s.orders[id]
	if !ok {
		return repository.ErrNotFound
	}

	order.PaymentStatus = status
	s.orders[id] = order

	return nil
}

func (s *memStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	defer s.lock(ctx)()

	if _, ok := s.orders[id]; !ok {
		return repository.ErrNotFound
	}

	delete(s.orders, id)

	return nil
}

// keyLookupBarrier holds the first n idempotency key lookups made outside a
// transaction until all n have arrived, so that many requests miss the key
// before any of them commits.
type keyLookupBarrier struct {
	*memStore

	pending atomic.Int32
	arrived sync.WaitGroup
}

func newKeyLookupBarrier(store *memStore, n int) *keyLookupBarrier {
	b := &keyLookupBarrier{memStore: store}
	b.pending.Store(int32(n))
	b.arrived.Add(n)

	return b
}

func (b *keyLookupBarrier) GetOrderByIdempotencyKey(ctx context.Context, customerID uuid.UUID, key string) (*models.Order, error) {
	if ctx.Value(txMarker{}) == nil && b.pending.Add(-1) >= 0 {
		b.arrived.Done()
		b.arrived.Wait()
	}

	return b.memStore.GetOrderByIdempotencyKey(ctx, customerID, key)
}

func sortUUIDs(ids []uuid.UUID) {
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
}
