package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/models"
)

type OrderRepository struct{ db *sql.DB }

func NewOrderRepository(db *sql.DB) *OrderRepository { return &OrderRepository{db: db} }

// Create writes the order row and its items in one transaction and returns
// the generated order id. Nothing is persisted if any insert fails.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (customer_id, customer_name, customer_phone, customer_email, total_amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.CustomerID, o.CustomerName, o.CustomerPhone, o.CustomerEmail, o.TotalAmount, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("order id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO order_items (order_id, product_id, quantity, price) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare items: %w", err)
	}
	defer stmt.Close()

	for i, item := range o.Items {
		if _, err := stmt.ExecContext(ctx, orderID, item.ProductID, item.Quantity, item.Price); err != nil {
			return 0, fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return orderID, nil
}

const orderColumns = `id, customer_id, customer_name, COALESCE(customer_phone, ''), COALESCE(customer_email, ''), total_amount, status, created_at`

// List returns orders newest first. customerID 0 means every customer.
func (r *OrderRepository) List(ctx context.Context, customerID int64) ([]models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders"
	var args []any
	if customerID != 0 {
		query += " WHERE customer_id = ?"
		args = append(args, customerID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// ItemLines returns item lines joined with product names, grouped by order
// and in insertion order. customerID 0 means every customer, orderID 0 every order.
func (r *OrderRepository) ItemLines(ctx context.Context, customerID, orderID int64) ([]models.ItemLine, error) {
	query := `
		SELECT oi.order_id, oi.product_id, COALESCE(p.name, ''), oi.quantity
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN products p ON p.id = oi.product_id`
	var (
		where []string
		args  []any
	)
	if customerID != 0 {
		where = append(where, "o.customer_id = ?")
		args = append(args, customerID)
	}
	if orderID != 0 {
		where = append(where, "oi.order_id = ?")
		args = append(args, orderID)
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY oi.order_id, oi.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.ItemLine
	for rows.Next() {
		var l models.ItemLine
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// UpdateStatusIf moves the order to toStatus only if it is still in
// fromStatus. false means nothing matched.
func (r *OrderRepository) UpdateStatusIf(ctx context.Context, id int64, fromStatus, toStatus models.Status) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status = ? WHERE id = ? AND status = ?",
		string(toStatus), id, string(fromStatus),
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (models.Order, error) {
	var (
		o      models.Order
		status string
	)
	if err := s.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail,
		&o.TotalAmount, &status, &o.CreatedAt); err != nil {
		return o, err
	}
	o.Status = models.Status(status)
	return o, nil
}
