package models

import "time"

// Category defines the struct for the 'categories' table.
// The slug is always derived from the name, never supplied by a client.
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Slug        string    `json:"slug" db:"slug"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	// Populated by a COUNT join, not a table column.
	ProductCount int `json:"productCount" db:"-"`
}
