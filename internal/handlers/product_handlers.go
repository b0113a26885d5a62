package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cartly/cartly-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/gosimple/slug"
)

//
// --- Product Handlers ---
//

// productSelect is the shared column list for product listings.
const productSelect = `
	SELECT p.id, p.name, p.slug, p.description, p.price, p.stock, p.image_url,
	       p.category_id, p.seller_id, p.is_active, p.created_at, p.updated_at,
	       c.name, u.username
	FROM products p
	JOIN categories c ON p.category_id = c.id
	JOIN users u ON p.seller_id = u.id`

// orderings whitelists the ?ordering= values. Anything else falls back to
// newest-first.
var orderings = map[string]string{
	"price":       "p.price ASC",
	"-price":      "p.price DESC",
	"created_at":  "p.created_at ASC",
	"-created_at": "p.created_at DESC",
	"stock":       "p.stock ASC",
	"-stock":      "p.stock DESC",
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock,
			&p.ImageURL, &p.CategoryID, &p.SellerID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryName, &p.SellerName); err != nil {
			return nil, err
		}
		p.InStock = p.IsInStock()
		products = append(products, p)
	}
	return products, rows.Err()
}

// pagination reads ?page= and ?page_size= with sane bounds.
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// ListProducts is the handler for GET /api/products/.
// Filters: category, seller, min_price, max_price, search; plus ordering
// and pagination. Only active products are listed.
func (h *Handlers) ListProducts(c *gin.Context) {
	var where strings.Builder
	var args []interface{}

	where.WriteString(" WHERE p.is_active = 1")

	if category := c.Query("category"); category != "" {
		where.WriteString(" AND p.category_id = ?")
		args = append(args, category)
	}
	if seller := c.Query("seller"); seller != "" {
		where.WriteString(" AND p.seller_id = ?")
		args = append(args, seller)
	}
	if minPrice := c.Query("min_price"); minPrice != "" {
		where.WriteString(" AND p.price >= ?")
		args = append(args, minPrice)
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		where.WriteString(" AND p.price <= ?")
		args = append(args, maxPrice)
	}
	if search := c.Query("search"); search != "" {
		where.WriteString(" AND (p.name LIKE ? OR p.description LIKE ?)")
		term := "%" + search + "%"
		args = append(args, term, term)
	}

	orderBy, ok := orderings[c.Query("ordering")]
	if !ok {
		orderBy = "p.created_at DESC"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM products p" + where.String()
	if err := h.DB.QueryRow(countQuery, args...).Scan(&total); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	page, pageSize := pagination(c)
	query := productSelect + where.String() +
		" ORDER BY " + orderBy + " LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": total, "results": products})
}

// GetProduct is the handler for GET /api/products/:slug/.
// Detail view with the nested category and the seller's public info.
func (h *Handlers) GetProduct(c *gin.Context) {
	productSlug := c.Param("slug")

	var p models.Product
	var cat models.Category
	var seller models.SellerInfo
	err := h.DB.QueryRow(`
		SELECT p.id, p.name, p.slug, p.description, p.price, p.stock, p.image_url,
		       p.category_id, p.seller_id, p.is_active, p.created_at, p.updated_at,
		       c.id, c.name, c.description, c.slug, c.created_at,
		       u.id, u.username, u.email
		FROM products p
		JOIN categories c ON p.category_id = c.id
		JOIN users u ON p.seller_id = u.id
		WHERE p.slug = ? AND p.is_active = 1`, productSlug,
	).Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock, &p.ImageURL,
		&p.CategoryID, &p.SellerID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&cat.ID, &cat.Name, &cat.Description, &cat.Slug, &cat.CreatedAt,
		&seller.ID, &seller.Username, &seller.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	p.InStock = p.IsInStock()
	p.Category = &cat
	p.Seller = &seller
	c.JSON(http.StatusOK, p)
}

// ProductInput defines the JSON for creating and updating products.
type ProductInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       *int    `json:"stock" binding:"required,gte=0"`
	CategoryID  int64   `json:"category_id" binding:"required"`
	Image       *string `json:"image"`
	IsActive    *bool   `json:"is_active"`
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry error (1062).
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// uniqueProductSlug derives a slug from the name, suffixing a counter on
// collision ("blue-shirt", "blue-shirt-2", ...).
func (h *Handlers) uniqueProductSlug(name string) (string, error) {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		var exists int
		err := h.DB.QueryRow("SELECT COUNT(*) FROM products WHERE slug = ?", candidate).Scan(&exists)
		if err != nil {
			return "", err
		}
		if exists == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// CreateProduct is the handler for POST /api/products/.
// The seller is always the authenticated caller.
func (h *Handlers) CreateProduct(c *gin.Context) {
	sellerID := currentUserID(c)

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var categoryExists int
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM categories WHERE id = ?", input.CategoryID).Scan(&categoryExists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if categoryExists == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	// Two concurrent creates with the same name can both see a slug as free.
	// The unique index catches the loser, who re-derives the slug and tries
	// again with the next suffix.
	now := time.Now()
	var id int64
	var productSlug string
	for attempt := 0; ; attempt++ {
		var err error
		productSlug, err = h.uniqueProductSlug(input.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		result, err := h.DB.Exec(`
			INSERT INTO products (name, slug, description, price, stock, image_url, category_id, seller_id, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			input.Name, productSlug, input.Description, input.Price, *input.Stock,
			input.Image, input.CategoryID, sellerID, isActive, now, now,
		)
		if err == nil {
			id, _ = result.LastInsertId()
			break
		}
		if isDuplicateKey(err) && attempt < 3 {
			continue
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, models.Product{
		ID:          id,
		Name:        input.Name,
		Slug:        productSlug,
		Description: input.Description,
		Price:       input.Price,
		Stock:       *input.Stock,
		ImageURL:    input.Image,
		CategoryID:  input.CategoryID,
		SellerID:    sellerID,
		IsActive:    isActive,
		InStock:     *input.Stock > 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// sellerOwns loads the product id behind a slug and enforces that the
// caller is its seller. Active and inactive products both resolve here so
// a seller can manage soft-deleted listings.
func (h *Handlers) sellerOwns(c *gin.Context, productSlug string) (int64, bool) {
	var productID, sellerID int64
	err := h.DB.QueryRow("SELECT id, seller_id FROM products WHERE slug = ?", productSlug).
		Scan(&productID, &sellerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return 0, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return 0, false
	}
	if sellerID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the seller may modify this product"})
		return 0, false
	}
	return productID, true
}

// UpdateProduct is the handler for PUT /api/products/:slug/.
// The slug never changes after creation, even if the name does.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	productID, ok := h.sellerOwns(c, c.Param("slug"))
	if !ok {
		return
	}

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var categoryExists int
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM categories WHERE id = ?", input.CategoryID).Scan(&categoryExists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if categoryExists == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	_, err := h.DB.Exec(`
		UPDATE products
		SET name = ?, description = ?, price = ?, stock = ?, image_url = ?,
		    category_id = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		input.Name, input.Description, input.Price, *input.Stock, input.Image,
		input.CategoryID, isActive, time.Now(), productID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// DeleteProduct is the handler for DELETE /api/products/:slug/.
// Products referenced by orders must survive, so delete is a soft delete.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	productID, ok := h.sellerOwns(c, c.Param("slug"))
	if !ok {
		return
	}

	_, err := h.DB.Exec(
		"UPDATE products SET is_active = 0, updated_at = ? WHERE id = ?",
		time.Now(), productID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.Status(http.StatusNoContent)
}

// FeaturedProducts is the handler for GET /api/products/featured/.
// Well-stocked active products, newest first, capped at ten.
func (h *Handlers) FeaturedProducts(c *gin.Context) {
	rows, err := h.DB.Query(productSelect + `
		WHERE p.is_active = 1 AND p.stock > 10
		ORDER BY p.created_at DESC
		LIMIT 10`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": products})
}

// MyProducts is the handler for GET /api/products/my_products/.
func (h *Handlers) MyProducts(c *gin.Context) {
	sellerID := currentUserID(c)
	page, pageSize := pagination(c)

	var total int
	err := h.DB.QueryRow(
		"SELECT COUNT(*) FROM products WHERE seller_id = ? AND is_active = 1", sellerID,
	).Scan(&total)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	rows, err := h.DB.Query(productSelect+`
		WHERE p.seller_id = ? AND p.is_active = 1
		ORDER BY p.created_at DESC
		LIMIT ? OFFSET ?`,
		sellerID, pageSize, (page-1)*pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": total, "results": products})
}

// AddProductToCartInput defines the JSON for the add_to_cart product action.
type AddProductToCartInput struct {
	Quantity int `json:"quantity" binding:"required,gte=1"`
}

// ProductAddToCart is the handler for POST /api/products/:slug/add_to_cart/.
// Convenience action mirroring POST /api/cart/ but addressed by slug.
func (h *Handlers) ProductAddToCart(c *gin.Context) {
	var input AddProductToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var productID int64
	err := h.DB.QueryRow(
		"SELECT id FROM products WHERE slug = ? AND is_active = 1", c.Param("slug"),
	).Scan(&productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	h.addItemToCart(c, currentUserID(c), productID, input.Quantity)
}
