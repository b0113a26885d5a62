package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cartly/cartly-golang/internal/models"
)

// SQLStore is the MySQL implementation of Store.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CartLines(ctx context.Context, userID int64) ([]Line, error) {
	query := `
		SELECT ci.product_id, p.name, ci.quantity, p.price, p.stock
		FROM cart_items ci
		JOIN carts c ON ci.cart_id = c.id
		JOIN products p ON ci.product_id = p.id
		WHERE c.user_id = ? AND p.is_active = 1`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ProductID, &line.Name, &line.Quantity, &line.Price, &line.Stock); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (s *SQLStore) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Lock each product row and re-read its price so the snapshot cannot go
	// stale between the cart read and the commit. The total is recomputed
	// from the locked prices.
	var total float64
	for i := range items {
		err := tx.QueryRowContext(ctx,
			"SELECT price FROM products WHERE id = ? FOR UPDATE", items[i].ProductID,
		).Scan(&items[i].Price)
		if err != nil {
			return fmt.Errorf("lock product price: %w", err)
		}
		total += float64(items[i].Quantity) * items[i].Price
	}
	order.TotalPrice = total

	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders (user_id, total_price, status, payment_method, shipping_address, phone_number, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.UserID, order.TotalPrice, order.Status, order.PaymentMethod,
		order.ShippingAddress, order.PhoneNumber, order.Notes, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("order id: %w", err)
	}

	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES (?, ?, ?, ?)`,
			orderID, item.ProductID, item.Quantity, item.Price,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		// The conditional decrement is the actual race guard: if another
		// transaction took the stock first, zero rows match and we roll
		// the whole order back.
		res, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
			item.Quantity, item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return ErrInsufficientStock
		}
	}

	_, err = tx.ExecContext(ctx, `
		DELETE ci FROM cart_items ci
		JOIN carts c ON ci.cart_id = c.id
		WHERE c.user_id = ?`, order.UserID,
	)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	order.ID = orderID
	return nil
}

func (s *SQLStore) OrderWithItems(ctx context.Context, orderID int64) (*models.Order, error) {
	var o models.Order
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, total_price, status, payment_method, shipping_address, phone_number, notes, created_at, updated_at
		FROM orders WHERE id = ?`, orderID,
	).Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.PaymentMethod,
		&o.ShippingAddress, &o.PhoneNumber, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, p.name, p.image_url
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?
		ORDER BY oi.id`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.Price, &item.ProductName, &item.ProductImage); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return &o, rows.Err()
}

func (s *SQLStore) CancelOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Guard against a concurrent status change; only still-cancellable
	// orders match.
	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = NOW()
		WHERE id = ? AND status IN (?, ?)`,
		models.OrderStatusCancelled, order.ID,
		models.OrderStatusPending, models.OrderStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotCancellable
	}

	for _, item := range order.Items {
		_, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock + ? WHERE id = ?`,
			item.Quantity, item.ProductID,
		)
		if err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}
	}

	return tx.Commit()
}
