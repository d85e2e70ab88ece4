package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/models"
)

type CustomerRepository struct{ db *sql.DB }

func NewCustomerRepository(db *sql.DB) *CustomerRepository { return &CustomerRepository{db: db} }

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO customers (name, email, phone, password, address, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.Name, c.Email, c.Phone, c.PasswordHash, c.Address, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert customer: %w", err)
	}
	return res.LastInsertId()
}

const customerColumns = "id, name, email, phone, password, COALESCE(address, ''), created_at"

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	return r.get(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = ?", id)
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return r.get(ctx, "SELECT "+customerColumns+" FROM customers WHERE email = ?", email)
}

func (r *CustomerRepository) get(ctx context.Context, query string, arg any) (*models.Customer, error) {
	var c models.Customer
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.PasswordHash, &c.Address, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// UpdateProfile changes the contact fields only; past orders keep their snapshot.
// It does not report a missing id; callers look the customer up first.
func (r *CustomerRepository) UpdateProfile(ctx context.Context, id int64, p models.ProfileUpdate) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE customers SET name = ?, phone = ?, address = ? WHERE id = ?",
		p.Name, p.Phone, p.Address, id,
	); err != nil {
		return fmt.Errorf("update customer %d: %w", id, err)
	}
	return nil
}
