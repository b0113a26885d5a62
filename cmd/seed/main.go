// Command seed populates the database with sample categories, users and
// products for local development. Safe to run repeatedly: existing rows are
// reused, not duplicated.
package main

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/cartly/cartly-golang/internal/config"
	"github.com/cartly/cartly-golang/internal/database"
	"github.com/cartly/cartly-golang/internal/models"
	"github.com/gosimple/slug"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Creating categories...")
	categories := map[string]string{
		"Electronics":   "Electronic devices and gadgets",
		"Clothing":      "Fashion and apparel",
		"Books":         "Books and magazines",
		"Home & Garden": "Home improvement and garden supplies",
	}
	categoryIDs := make(map[string]int64)
	for name, description := range categories {
		id, err := getOrCreateCategory(db, name, description)
		if err != nil {
			log.Fatalf("Failed to create category %q: %v", name, err)
		}
		categoryIDs[name] = id
	}

	log.Println("Creating users...")
	if _, err := getOrCreateUser(db, "admin", "admin@example.com", "AdminPass123!", models.RoleAdmin); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	sellerID, err := getOrCreateUser(db, "seller1", "seller1@example.com", "TestPass123!", models.RoleCustomer)
	if err != nil {
		log.Fatalf("Failed to create seller: %v", err)
	}
	if _, err := getOrCreateUser(db, "customer1", "customer1@example.com", "TestPass123!", models.RoleCustomer); err != nil {
		log.Fatalf("Failed to create customer: %v", err)
	}

	log.Println("Creating products...")
	products := []struct {
		name        string
		description string
		price       float64
		stock       int
		category    string
	}{
		{"iPhone 15 Pro", "Latest iPhone with A17 chip", 999.99, 50, "Electronics"},
		{"MacBook Pro", "Powerful laptop for professionals", 2499.99, 20, "Electronics"},
		{"Classic Denim Jacket", "Timeless denim jacket in mid-blue", 79.90, 35, "Clothing"},
		{"The Go Programming Language", "The definitive Go reference", 39.99, 120, "Books"},
		{"Cordless Drill", "18V cordless drill with two batteries", 129.00, 14, "Home & Garden"},
	}
	for _, p := range products {
		if err := getOrCreateProduct(db, p.name, p.description, p.price, p.stock, categoryIDs[p.category], sellerID); err != nil {
			log.Fatalf("Failed to create product %q: %v", p.name, err)
		}
	}

	log.Println("Database populated successfully!")
}

func getOrCreateCategory(db *sql.DB, name, description string) (int64, error) {
	var id int64
	err := db.QueryRow("SELECT id FROM categories WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	result, err := db.Exec(
		"INSERT INTO categories (name, description, slug, created_at) VALUES (?, ?, ?, ?)",
		name, description, slug.Make(name), time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func getOrCreateUser(db *sql.DB, username, email, plaintext, role string) (int64, error) {
	var id int64
	err := db.QueryRow("SELECT id FROM users WHERE username = ?", username).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	var password models.Password
	if err := password.Set(plaintext); err != nil {
		return 0, err
	}

	now := time.Now()
	result, err := db.Exec(`
		INSERT INTO users (username, email, password_hash, first_name, last_name, role, created_at, updated_at)
		VALUES (?, ?, ?, '', '', ?, ?, ?)`,
		username, email, password.Hash, role, now, now,
	)
	if err != nil {
		return 0, err
	}
	log.Printf("Created user %s (password: %s)", username, plaintext)
	return result.LastInsertId()
}

func getOrCreateProduct(db *sql.DB, name, description string, price float64, stock int, categoryID, sellerID int64) error {
	var id int64
	err := db.QueryRow("SELECT id FROM products WHERE name = ?", name).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	now := time.Now()
	_, err = db.Exec(`
		INSERT INTO products (name, slug, description, price, stock, category_id, seller_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		name, slug.Make(name), description, price, stock, categoryID, sellerID, now, now,
	)
	return err
}
