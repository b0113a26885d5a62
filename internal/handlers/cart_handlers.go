package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//
// --- Cart Handlers (Authenticated) ---
//

// cartCanHold reports whether a product's stock covers what the cart would
// hold after adding the requested quantity to what is already there.
func cartCanHold(stock, inCart, requested int) bool {
	return inCart+requested <= stock
}

// getOrCreateCartID finds the user's cart or creates one. Used inside a
// transaction so a concurrent first-add cannot create two carts.
func (h *Handlers) getOrCreateCartID(tx *sql.Tx, userID int64) (int64, error) {
	var cartID int64
	err := tx.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err == nil {
		return cartID, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		now := time.Now()
		result, err := tx.Exec(
			"INSERT INTO carts (user_id, created_at, updated_at) VALUES (?, ?, ?)",
			userID, now, now,
		)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}
	return 0, err
}

// addItemToCart holds the shared add logic for POST /api/cart/ and the
// product-level add_to_cart action. The stock check counts what is already
// in the cart so the cart can never ask for more than exists.
func (h *Handlers) addItemToCart(c *gin.Context, userID, productID int64, quantity int) {
	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	cartID, err := h.getOrCreateCartID(tx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart initialization failed"})
		return
	}

	var stock int
	err = tx.QueryRow(
		"SELECT stock FROM products WHERE id = ? AND is_active = 1", productID,
	).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found or not available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var inCart int
	err = tx.QueryRow(
		"SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE cart_id = ? AND product_id = ?",
		cartID, productID,
	).Scan(&inCart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !cartCanHold(stock, inCart, quantity) {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Only %d items available in stock", stock)})
		return
	}

	_, err = tx.Exec(`
		INSERT INTO cart_items (cart_id, product_id, quantity, added_at)
		VALUES (?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		cartID, productID, quantity,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product added to cart"})
}

// AddToCartInput defines the JSON for POST /api/cart/.
type AddToCartInput struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gte=1"`
}

func (h *Handlers) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	h.addItemToCart(c, currentUserID(c), input.ProductID, input.Quantity)
}

// CartItemResponse is one line of the GET /api/cart/ payload.
type CartItemResponse struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Image     *string `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
	Stock     int     `json:"stock"`
}

// GetCart is the handler for GET /api/cart/.
// A user with no cart row simply has an empty cart.
func (h *Handlers) GetCart(c *gin.Context) {
	userID := currentUserID(c)

	var cartID int64
	err := h.DB.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusOK, gin.H{
				"items":      []CartItemResponse{},
				"totalPrice": 0.0,
				"totalItems": 0,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT ci.id, ci.product_id, p.name, p.slug, p.image_url, p.price, ci.quantity, p.stock
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = ? AND p.is_active = 1
		ORDER BY ci.added_at DESC`, cartID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query cart items"})
		return
	}
	defer rows.Close()

	items := []CartItemResponse{}
	var totalPrice float64
	var totalItems int
	for rows.Next() {
		var item CartItemResponse
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Name, &item.Slug,
			&item.Image, &item.Price, &item.Quantity, &item.Stock); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan cart item"})
			return
		}
		item.Subtotal = item.Price * float64(item.Quantity)
		totalPrice += item.Subtotal
		totalItems += item.Quantity
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating cart items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"totalPrice": totalPrice,
		"totalItems": totalItems,
	})
}

// UpdateCartItemInput defines the JSON for PATCH /api/cart/items/:id/.
type UpdateCartItemInput struct {
	Quantity int `json:"quantity" binding:"required,gte=1"`
}

func (h *Handlers) UpdateCartItem(c *gin.Context) {
	userID := currentUserID(c)
	itemID := c.Param("id")

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The join enforces ownership: the item must sit in this user's cart.
	var productID int64
	var stock int
	err := h.DB.QueryRow(`
		SELECT ci.product_id, p.stock
		FROM cart_items ci
		JOIN carts ca ON ci.cart_id = ca.id
		JOIN products p ON ci.product_id = p.id
		WHERE ci.id = ? AND ca.user_id = ?`, itemID, userID,
	).Scan(&productID, &stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// A PATCH sets the absolute quantity, so nothing already in the cart
	// counts against it.
	if !cartCanHold(stock, 0, input.Quantity) {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Only %d items available in stock", stock)})
		return
	}

	_, err = h.DB.Exec("UPDATE cart_items SET quantity = ? WHERE id = ?", input.Quantity, itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item quantity updated"})
}

// RemoveCartItem is the handler for DELETE /api/cart/items/:id/.
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	userID := currentUserID(c)
	itemID := c.Param("id")

	result, err := h.DB.Exec(`
		DELETE ci FROM cart_items ci
		JOIN carts ca ON ci.cart_id = ca.id
		WHERE ci.id = ? AND ca.user_id = ?`, itemID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearCart is the handler for DELETE /api/cart/clear/.
func (h *Handlers) ClearCart(c *gin.Context) {
	userID := currentUserID(c)

	_, err := h.DB.Exec(`
		DELETE ci FROM cart_items ci
		JOIN carts ca ON ci.cart_id = ca.id
		WHERE ca.user_id = ?`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	c.Status(http.StatusNoContent)
}
