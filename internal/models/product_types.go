package models

import "time"

// Product is the model for the 'products' table.
// Pointers are used for nullable columns so they serialize cleanly.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Slug        string  `json:"slug" db:"slug"`
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`
	Stock       int     `json:"stock" db:"stock"`
	ImageURL    *string `json:"image,omitempty" db:"image_url"`
	CategoryID  int64   `json:"categoryId" db:"category_id"`
	SellerID    int64   `json:"sellerId" db:"seller_id"`
	IsActive    bool    `json:"isActive" db:"is_active"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Derived from Stock at read time.
	InStock bool `json:"isInStock" db:"-"`

	// Joined fields, populated manually where the endpoint needs them.
	CategoryName string      `json:"categoryName,omitempty" db:"-"`
	SellerName   string      `json:"sellerName,omitempty" db:"-"`
	Category     *Category   `json:"category,omitempty" db:"-"`
	Seller       *SellerInfo `json:"seller,omitempty" db:"-"`
}

// SellerInfo is the public subset of a seller's account shown on product detail.
type SellerInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// IsInStock reports whether any stock remains.
func (p *Product) IsInStock() bool {
	return p.Stock > 0
}
