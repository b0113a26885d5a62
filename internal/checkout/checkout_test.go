package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cartly/cartly-golang/internal/models"
)

// mockStore is a mutex-guarded in-memory Store. Like the real SQL store, the
// stock check inside CreateOrder is the authoritative one.
type mockStore struct {
	mu     sync.Mutex
	stock  map[int64]int
	price  map[int64]float64
	name   map[int64]string
	carts  map[int64]map[int64]int // userID -> productID -> quantity
	orders map[int64]*models.Order
	nextID int64
}

func newMockStore() *mockStore {
	return &mockStore{
		stock:  make(map[int64]int),
		price:  make(map[int64]float64),
		name:   make(map[int64]string),
		carts:  make(map[int64]map[int64]int),
		orders: make(map[int64]*models.Order),
	}
}

func (m *mockStore) addProduct(id int64, name string, price float64, stock int) {
	m.name[id] = name
	m.price[id] = price
	m.stock[id] = stock
}

func (m *mockStore) addToCart(userID, productID int64, quantity int) {
	if m.carts[userID] == nil {
		m.carts[userID] = make(map[int64]int)
	}
	m.carts[userID][productID] += quantity
}

func (m *mockStore) CartLines(ctx context.Context, userID int64) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lines []Line
	for productID, qty := range m.carts[userID] {
		lines = append(lines, Line{
			ProductID: productID,
			Name:      m.name[productID],
			Quantity:  qty,
			Price:     m.price[productID],
			Stock:     m.stock[productID],
		})
	}
	return lines, nil
}

func (m *mockStore) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range items {
		if m.stock[item.ProductID] < item.Quantity {
			return ErrInsufficientStock
		}
	}
	for _, item := range items {
		m.stock[item.ProductID] -= item.Quantity
	}

	// Re-snapshot prices under the lock and recompute the total, like the
	// SQL store does under its transaction.
	var total float64
	for i := range items {
		items[i].Price = m.price[items[i].ProductID]
		total += float64(items[i].Quantity) * items[i].Price
	}
	order.TotalPrice = total

	m.nextID++
	order.ID = m.nextID

	saved := *order
	saved.Items = append([]models.OrderItem(nil), items...)
	m.orders[order.ID] = &saved

	delete(m.carts, order.UserID)
	return nil
}

func (m *mockStore) OrderWithItems(ctx context.Context, orderID int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *order
	copied.Items = append([]models.OrderItem(nil), order.Items...)
	return &copied, nil
}

func (m *mockStore) CancelOrder(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.orders[order.ID]
	if !ok {
		return ErrOrderNotFound
	}
	if !models.CanCancel(stored.Status) {
		return ErrNotCancellable
	}
	for _, item := range stored.Items {
		m.stock[item.ProductID] += item.Quantity
	}
	stored.Status = models.OrderStatusCancelled
	return nil
}

func validInput() PlacementInput {
	return PlacementInput{
		PaymentMethod:   models.PaymentCreditCard,
		ShippingAddress: "1 Main Street",
		PhoneNumber:     "+60123456789",
	}
}

func TestPlaceOrder_TotalAndPriceSnapshot(t *testing.T) {
	store := newMockStore()
	store.addProduct(1, "Product A", 10.00, 5)
	store.addProduct(2, "Product B", 5.00, 5)
	store.addToCart(100, 1, 2)
	store.addToCart(100, 2, 1)

	svc := NewService(store)
	order, err := svc.PlaceOrder(context.Background(), 100, validInput())
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if order.TotalPrice != 25.00 {
		t.Errorf("expected total 25.00, got %v", order.TotalPrice)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("expected pending status, got %s", order.Status)
	}

	// A later price change must not touch the snapshot.
	store.mu.Lock()
	store.price[1] = 99.99
	store.mu.Unlock()

	saved, err := store.OrderWithItems(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("OrderWithItems failed: %v", err)
	}
	for _, item := range saved.Items {
		if item.ProductID == 1 && item.Price != 10.00 {
			t.Errorf("snapshot price changed: got %v", item.Price)
		}
	}
	if saved.TotalPrice != 25.00 {
		t.Errorf("stored total changed: got %v", saved.TotalPrice)
	}
}

// repricingStore changes a product's price right after the cart is read,
// standing in for a concurrent price update.
type repricingStore struct {
	*mockStore
	productID int64
	newPrice  float64
}

func (s *repricingStore) CartLines(ctx context.Context, userID int64) ([]Line, error) {
	lines, err := s.mockStore.CartLines(ctx, userID)
	s.mu.Lock()
	s.price[s.productID] = s.newPrice
	s.mu.Unlock()
	return lines, err
}

func TestPlaceOrder_SnapshotsPriceAtCommit(t *testing.T) {
	inner := newMockStore()
	inner.addProduct(1, "Product A", 10.00, 5)
	inner.addToCart(100, 1, 2)
	store := &repricingStore{mockStore: inner, productID: 1, newPrice: 12.50}

	svc := NewService(store)
	order, err := svc.PlaceOrder(context.Background(), 100, validInput())
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	// The price that changed between the cart read and the order write must
	// be the one stored, not the stale read.
	if order.TotalPrice != 25.00 {
		t.Errorf("expected total 25.00 from the committed price, got %v", order.TotalPrice)
	}
	if len(order.Items) != 1 || order.Items[0].Price != 12.50 {
		t.Errorf("expected item price 12.50, got %+v", order.Items)
	}
}

func TestPlaceOrder_EmptiesCart(t *testing.T) {
	store := newMockStore()
	store.addProduct(1, "Product A", 10.00, 5)
	store.addToCart(100, 1, 2)

	svc := NewService(store)
	if _, err := svc.PlaceOrder(context.Background(), 100, validInput()); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	lines, err := store.CartLines(context.Background(), 100)
	if err != nil {
		t.Fatalf("CartLines failed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected empty cart after placement, got %d lines", len(lines))
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	svc := NewService(newMockStore())
	if _, err := svc.PlaceOrder(context.Background(), 100, validInput()); !errors.Is(err, ErrCartEmpty) {
		t.Errorf("expected ErrCartEmpty, got %v", err)
	}
}

func TestPlaceOrder_InvalidPaymentMethod(t *testing.T) {
	store := newMockStore()
	store.addProduct(1, "Product A", 10.00, 5)
	store.addToCart(100, 1, 1)

	svc := NewService(store)
	in := validInput()
	in.PaymentMethod = "carrier_pigeon"
	if _, err := svc.PlaceOrder(context.Background(), 100, in); !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Errorf("expected ErrInvalidPaymentMethod, got %v", err)
	}
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	store := newMockStore()
	store.addProduct(1, "Product A", 10.00, 1)
	store.addToCart(100, 1, 3)

	svc := NewService(store)
	_, err := svc.PlaceOrder(context.Background(), 100, validInput())
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	var stockErr *StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected *StockError, got %T", err)
	}
	if stockErr.ProductID != 1 || stockErr.Available != 1 {
		t.Errorf("unexpected stock error detail: %+v", stockErr)
	}
}

func TestPlaceOrder_ConcurrentLastUnits(t *testing.T) {
	initialStock := 20
	totalBuyers := 50

	store := newMockStore()
	store.addProduct(1, "Product A", 10.00, initialStock)
	for i := 0; i < totalBuyers; i++ {
		store.addToCart(int64(1000+i), 1, 1)
	}

	svc := NewService(store)

	var successCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < totalBuyers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			if _, err := svc.PlaceOrder(context.Background(), userID, validInput()); err == nil {
				successCount.Add(1)
			}
		}(int64(1000 + i))
	}
	wg.Wait()

	if int(successCount.Load()) != initialStock {
		t.Errorf("expected exactly %d successful placements, got %d", initialStock, successCount.Load())
	}
	store.mu.Lock()
	remaining := store.stock[1]
	store.mu.Unlock()
	if remaining != 0 {
		t.Errorf("expected stock 0, got %d", remaining)
	}
}

func TestCancelOrder_RestoresStock(t *testing.T) {
	store := newMockStore()
	store.addProduct(1, "Product A", 10.00, 5)
	store.addProduct(2, "Product B", 5.00, 3)
	store.addToCart(100, 1, 2)
	store.addToCart(100, 2, 1)

	svc := NewService(store)
	order, err := svc.PlaceOrder(context.Background(), 100, validInput())
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	cancelled, err := svc.CancelOrder(context.Background(), 100, false, order.ID)
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if cancelled.Status != models.OrderStatusCancelled {
		t.Errorf("expected cancelled status, got %s", cancelled.Status)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.stock[1] != 5 || store.stock[2] != 3 {
		t.Errorf("stock not restored: got %d and %d", store.stock[1], store.stock[2])
	}
}

func TestCancelOrder_RejectsShipped(t *testing.T) {
	store := newMockStore()
	store.addProduct(1, "Product A", 10.00, 5)
	store.addToCart(100, 1, 1)

	svc := NewService(store)
	order, err := svc.PlaceOrder(context.Background(), 100, validInput())
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	store.mu.Lock()
	store.orders[order.ID].Status = models.OrderStatusShipped
	store.mu.Unlock()

	if _, err := svc.CancelOrder(context.Background(), 100, false, order.ID); !errors.Is(err, ErrNotCancellable) {
		t.Errorf("expected ErrNotCancellable, got %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.stock[1] != 4 {
		t.Errorf("stock of a shipped order must stay decremented, got %d", store.stock[1])
	}
}

func TestCancelOrder_RejectsDoubleCancel(t *testing.T) {
	store := newMockStore()
	store.addProduct(1, "Product A", 10.00, 5)
	store.addToCart(100, 1, 2)

	svc := NewService(store)
	order, err := svc.PlaceOrder(context.Background(), 100, validInput())
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if _, err := svc.CancelOrder(context.Background(), 100, false, order.ID); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}

	// A second cancel must fail without restoring stock twice.
	if _, err := svc.CancelOrder(context.Background(), 100, false, order.ID); !errors.Is(err, ErrNotCancellable) {
		t.Errorf("expected ErrNotCancellable on double cancel, got %v", err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.stock[1] != 5 {
		t.Errorf("expected stock 5 after a single restore, got %d", store.stock[1])
	}
}

func TestCancelOrder_Ownership(t *testing.T) {
	store := newMockStore()
	store.addProduct(1, "Product A", 10.00, 5)
	store.addToCart(100, 1, 1)

	svc := NewService(store)
	order, err := svc.PlaceOrder(context.Background(), 100, validInput())
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	// Another customer sees a 404, not a 403.
	if _, err := svc.CancelOrder(context.Background(), 999, false, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound for foreign order, got %v", err)
	}

	// Admins may cancel anyone's order.
	if _, err := svc.CancelOrder(context.Background(), 999, true, order.ID); err != nil {
		t.Errorf("admin cancel failed: %v", err)
	}
}
