package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/cartly/cartly-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Category Handlers (Public, Read-Only) ---
//
// Categories are managed by the seed tooling, not the API, so the only
// endpoints here are reads. Product counts only include active products.
//

// GetAllCategories is the handler for GET /api/categories/.
func (h *Handlers) GetAllCategories(c *gin.Context) {
	rows, err := h.DB.Query(`
		SELECT c.id, c.name, c.description, c.slug, c.created_at,
		       COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id AND p.is_active = 1
		GROUP BY c.id
		ORDER BY c.name ASC`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.Slug,
			&cat.CreatedAt, &cat.ProductCount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan category"})
			return
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory is the handler for GET /api/categories/:slug/.
func (h *Handlers) GetCategory(c *gin.Context) {
	slug := c.Param("slug")

	var cat models.Category
	err := h.DB.QueryRow(`
		SELECT c.id, c.name, c.description, c.slug, c.created_at,
		       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id AND p.is_active = 1)
		FROM categories c
		WHERE c.slug = ?`, slug,
	).Scan(&cat.ID, &cat.Name, &cat.Description, &cat.Slug, &cat.CreatedAt, &cat.ProductCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, cat)
}

// GetCategoryProducts is the handler for GET /api/categories/:slug/products/.
// It lists the category's active products with the standard pagination.
func (h *Handlers) GetCategoryProducts(c *gin.Context) {
	slug := c.Param("slug")

	var categoryID int64
	err := h.DB.QueryRow("SELECT id FROM categories WHERE slug = ?", slug).Scan(&categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	page, pageSize := pagination(c)

	var total int
	err = h.DB.QueryRow(
		"SELECT COUNT(*) FROM products WHERE category_id = ? AND is_active = 1", categoryID,
	).Scan(&total)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	rows, err := h.DB.Query(productSelect+`
		WHERE p.category_id = ? AND p.is_active = 1
		ORDER BY p.created_at DESC
		LIMIT ? OFFSET ?`,
		categoryID, pageSize, (page-1)*pageSize)
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
