package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"storefront/config"
)

// InitDB opens the configured database, checks connectivity and applies the schema.
func InitDB(cfg *config.Config) (*sql.DB, error) {
	db, err := Open(cfg.Database.Driver, cfg.DataSource(), cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, cfg.Database.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func Open(driver, dsn string, maxOpen int) (*sql.DB, error) {
	if driver == "sqlite3" && !strings.Contains(dsn, "_busy_timeout") {
		// foreign keys stay unenforced: order items must outlive deleted products
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_busy_timeout=5000"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetConnMaxLifetime(30 * time.Minute)
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// Migrate creates the tables when they do not exist yet.
func Migrate(db *sql.DB, driver string) error {
	stmts := sqliteSchema
	if driver == "mysql" {
		stmts = mysqlSchema
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func CloseDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		phone TEXT NOT NULL,
		password TEXT NOT NULL,
		address TEXT,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT,
		price NUMERIC NOT NULL,
		image TEXT,
		category TEXT,
		stock INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL,
		customer_name TEXT NOT NULL,
		customer_phone TEXT,
		customer_email TEXT,
		total_amount NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL,
		FOREIGN KEY (customer_id) REFERENCES customers (id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		price NUMERIC NOT NULL CHECK (price >= 0),
		FOREIGN KEY (order_id) REFERENCES orders (id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		email TEXT,
		created_at DATETIME NOT NULL
	)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		phone VARCHAR(64) NOT NULL,
		password VARCHAR(255) NOT NULL,
		address VARCHAR(512),
		created_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price DECIMAL(12,2) NOT NULL,
		image VARCHAR(1024),
		category VARCHAR(128),
		stock INT NOT NULL DEFAULT 0,
		created_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		customer_name VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(64),
		customer_email VARCHAR(255),
		total_amount DECIMAL(12,2) NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'pending',
		created_at DATETIME(6) NOT NULL,
		INDEX idx_orders_customer (customer_id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL CHECK (quantity > 0),
		price DECIMAL(12,2) NOT NULL CHECK (price >= 0),
		INDEX idx_order_items_order (order_id),
		FOREIGN KEY (order_id) REFERENCES orders (id)
	)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(128) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		email VARCHAR(255),
		created_at DATETIME(6) NOT NULL
	)`,
}
