// Package checkout owns the two operations with real invariants: placing an
// order from a cart and cancelling one. Everything here runs against the
// Store interface so the stock accounting can be tested without a database.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cartly/cartly-golang/internal/models"
)

var (
	ErrCartEmpty            = errors.New("cart is empty")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrOrderNotFound        = errors.New("order not found")
	ErrNotCancellable       = errors.New("order can no longer be cancelled")
)

// StockError carries which product ran short so the handler can name it.
type StockError struct {
	ProductID int64
	Name      string
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("only %d of %q available", e.Available, e.Name)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// PlacementInput is the order-level data the client supplies at checkout.
type PlacementInput struct {
	PaymentMethod   string
	ShippingAddress string
	PhoneNumber     string
	Notes           string
}

// Service implements order placement and cancellation on top of a Store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// PlaceOrder turns the user's cart into an order: one order item per cart
// line with the price frozen at commit time, total equal to the sum of the
// line subtotals, stock decremented, cart emptied. The store performs the
// writes in a single transaction with a conditional decrement, so two
// concurrent placements cannot both take the last unit.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, in PlacementInput) (*models.Order, error) {
	if !models.IsValidPaymentMethod(in.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	lines, err := s.store.CartLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	var total float64
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Stock < line.Quantity {
			return nil, &StockError{ProductID: line.ProductID, Name: line.Name, Available: line.Stock}
		}
		items = append(items, models.OrderItem{
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			Price:       line.Price,
			ProductName: line.Name,
		})
		total += float64(line.Quantity) * line.Price
	}

	now := time.Now()
	order := &models.Order{
		UserID:          userID,
		TotalPrice:      total,
		Status:          models.OrderStatusPending,
		PaymentMethod:   in.PaymentMethod,
		ShippingAddress: in.ShippingAddress,
		PhoneNumber:     in.PhoneNumber,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// The stock check and prices above are advisory; the store re-verifies
	// stock and re-reads prices under the transaction and is the one that
	// actually guards against races.
	if err := s.store.CreateOrder(ctx, order, items); err != nil {
		return nil, err
	}

	order.Items = items
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	return order, nil
}

// CancelOrder restores stock for every line item and marks the order
// cancelled. Only pending and processing orders may be cancelled. Non-owners
// are told the order does not exist unless they are admins.
func (s *Service) CancelOrder(ctx context.Context, userID int64, isAdmin bool, orderID int64) (*models.Order, error) {
	order, err := s.store.OrderWithItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID && !isAdmin {
		return nil, ErrOrderNotFound
	}
	if !models.CanCancel(order.Status) {
		return nil, ErrNotCancellable
	}

	if err := s.store.CancelOrder(ctx, order); err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusCancelled
	return order, nil
}
