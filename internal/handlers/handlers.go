package handlers

import (
	"database/sql"

	"github.com/cartly/cartly-golang/internal/auth"
	"github.com/cartly/cartly-golang/internal/checkout"
	"github.com/cartly/cartly-golang/internal/middleware"
	"github.com/cartly/cartly-golang/internal/models"
	"github.com/gin-gonic/gin"
)

// Handlers holds all dependencies for the HTTP layer.
type Handlers struct {
	DB        *sql.DB
	Tokens    *auth.Tokens
	Blacklist auth.TokenBlacklist
	Checkout  *checkout.Service
	UploadDir string
}

// currentUserID reads the user ID set by the auth middleware.
func currentUserID(c *gin.Context) int64 {
	raw, _ := c.Get(middleware.ContextUserID)
	id, _ := raw.(int64)
	return id
}

// isAdmin reads the role set by the auth middleware.
func isAdmin(c *gin.Context) bool {
	raw, _ := c.Get(middleware.ContextRole)
	return raw == models.RoleAdmin
}
