package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cartly/cartly-golang/internal/checkout"
	"github.com/cartly/cartly-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Order Handlers (Authenticated) ---
//

// PlaceOrderInput defines the JSON for POST /api/orders/.
type PlaceOrderInput struct {
	PaymentMethod   string `json:"payment_method" binding:"required"`
	ShippingAddress string `json:"shipping_address" binding:"required"`
	PhoneNumber     string `json:"phone_number" binding:"required"`
	Notes           string `json:"notes"`
}

// PlaceOrder creates an order from the caller's cart. Price snapshots, the
// guarded stock decrement and emptying the cart all happen inside the
// checkout service.
func (h *Handlers) PlaceOrder(c *gin.Context) {
	userID := currentUserID(c)

	var input PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.Checkout.PlaceOrder(c, userID, checkout.PlacementInput{
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: input.ShippingAddress,
		PhoneNumber:     input.PhoneNumber,
		Notes:           input.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrCartEmpty):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		case errors.Is(err, checkout.ErrInvalidPaymentMethod):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method"})
		case errors.Is(err, checkout.ErrInsufficientStock):
			var stockErr *checkout.StockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusConflict, gin.H{"error": stockErr.Error()})
			} else {
				c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock"})
			}
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		}
		return
	}

	c.JSON(http.StatusCreated, order)
}

// OrderSummary is the minimal shape used by the order list.
type OrderSummary struct {
	ID         int64     `json:"id"`
	TotalPrice float64   `json:"totalPrice"`
	Status     string    `json:"status"`
	ItemsCount int       `json:"itemsCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListOrders is the handler for GET /api/orders/.
// Customers see their own orders; admins see everything.
func (h *Handlers) ListOrders(c *gin.Context) {
	query := `
		SELECT o.id, o.total_price, o.status, COUNT(oi.id), o.created_at
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id`
	var args []interface{}
	if !isAdmin(c) {
		query += " WHERE o.user_id = ?"
		args = append(args, currentUserID(c))
	}
	query += " GROUP BY o.id ORDER BY o.created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	orders := []OrderSummary{}
	for rows.Next() {
		var o OrderSummary
		if err := rows.Scan(&o.ID, &o.TotalPrice, &o.Status, &o.ItemsCount, &o.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// loadOrder fetches an order with its items and hides other users' orders
// behind a 404 unless the caller is an admin.
func (h *Handlers) loadOrder(c *gin.Context) (*models.Order, bool) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return nil, false
	}

	var o models.Order
	err = h.DB.QueryRow(`
		SELECT id, user_id, total_price, status, payment_method, shipping_address, phone_number, notes, created_at, updated_at
		FROM orders WHERE id = ?`, orderID,
	).Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.PaymentMethod,
		&o.ShippingAddress, &o.PhoneNumber, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}

	if o.UserID != currentUserID(c) && !isAdmin(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return nil, false
	}

	rows, err := h.DB.Query(`
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, p.name, p.image_url
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?
		ORDER BY oi.id`, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return nil, false
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.Price, &item.ProductName, &item.ProductImage); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order item"})
			return nil, false
		}
		o.Items = append(o.Items, item)
	}
	return &o, true
}

// GetOrder is the handler for GET /api/orders/:id/.
func (h *Handlers) GetOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder is the handler for POST /api/orders/:id/cancel/.
func (h *Handlers) CancelOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	order, err := h.Checkout.CancelOrder(c, currentUserID(c), isAdmin(c), orderID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, checkout.ErrNotCancellable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order can no longer be cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatusInput defines the JSON for the update_status action.
type UpdateOrderStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus is the handler for PATCH /api/orders/:id/update_status/.
// Admin-only; the transition table in models decides what is legal.
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsValidOrderStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	order, ok := h.loadOrder(c)
	if !ok {
		return
	}

	if !models.CanTransition(order.Status, input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cannot change status from " + order.Status + " to " + input.Status,
		})
		return
	}

	_, err := h.DB.Exec(
		"UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
		input.Status, time.Now(), order.ID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	order.Status = input.Status
	c.JSON(http.StatusOK, order)
}
