// Package testhelpers builds throwaway sqlite databases for package tests.
package testhelpers

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"storefront/database"
	"storefront/models"
)

// NewDB returns a migrated sqlite database in t.TempDir, closed on cleanup.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open("sqlite3", filepath.Join(t.TempDir(), "store.db"), 1)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, "sqlite3"))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// InsertCustomer adds a customer row with a dummy password hash.
func InsertCustomer(t *testing.T, db *sql.DB, name, email, phone string) int64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO customers (name, email, phone, password, address, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		name, email, phone, "x", "", time.Now().UTC(),
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// InsertProduct adds a catalog row priced at price.
func InsertProduct(t *testing.T, db *sql.DB, name, price string) int64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO products (name, description, price, image, category, stock, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		name, "", decimal.RequireFromString(price), "", "", 10, time.Now().UTC(),
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func Count(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

// OrderItems reads the stored line items of one order in insertion order.
func OrderItems(t *testing.T, db *sql.DB, orderID int64) []models.OrderItem {
	t.Helper()
	rows, err := db.Query(
		"SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = ? ORDER BY id", orderID)
	require.NoError(t, err)
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		require.NoError(t, rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price))
		items = append(items, it)
	}
	require.NoError(t, rows.Err())
	return items
}
