package repository

import (
	"context"
	"database/sql"
	"errors"

	"storefront/models"
)

type AdminRepository struct{ db *sql.DB }

func NewAdminRepository(db *sql.DB) *AdminRepository { return &AdminRepository{db: db} }

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var a models.AdminUser
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, password, COALESCE(email, ''), created_at FROM admin_users WHERE username = ?", username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Email, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
