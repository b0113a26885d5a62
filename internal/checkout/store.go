package checkout

import (
	"context"

	"github.com/cartly/cartly-golang/internal/models"
)

// Line is one cart row joined with the product's current price and stock.
type Line struct {
	ProductID int64
	Name      string
	Quantity  int
	Price     float64
	Stock     int
}

// Store is the persistence boundary of the checkout service.
type Store interface {
	// CartLines returns the user's cart joined with active products.
	CartLines(ctx context.Context, userID int64) ([]Line, error)

	// CreateOrder atomically inserts the order and its items, decrements
	// each product's stock (failing with ErrInsufficientStock if any
	// product no longer covers its line) and empties the user's cart.
	// Item prices and the order total are re-read under the transaction,
	// so the stored snapshot reflects the prices at commit time. On
	// success order.ID and order.TotalPrice are set.
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error

	// OrderWithItems loads an order and its line items, or ErrOrderNotFound.
	OrderWithItems(ctx context.Context, orderID int64) (*models.Order, error)

	// CancelOrder atomically restores stock for the order's items and sets
	// the status to cancelled. Fails with ErrNotCancellable if the order
	// moved to a non-cancellable status in the meantime.
	CancelOrder(ctx context.Context, order *models.Order) error
}
