package services

import (
	"context"

	"storefront/models"
)

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) (int64, error)
	List(ctx context.Context, customerID int64) ([]models.Order, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	ItemLines(ctx context.Context, customerID, orderID int64) ([]models.ItemLine, error)
	UpdateStatusIf(ctx context.Context, id int64, from, to models.Status) (bool, error)
}

type CustomerStore interface {
	Create(ctx context.Context, c *models.Customer) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	UpdateProfile(ctx context.Context, id int64, p models.ProfileUpdate) error
}

type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
}

type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) (int64, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int64) error
}

// EventPublisher ships order events to the audit stream.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev models.OrderEvent) error
}

// IdempotencyStore remembers checkout results per customer and key.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
	Release(ctx context.Context, scope, key string) error
}

type nopPublisher struct{}

func (nopPublisher) PublishOrderEvent(context.Context, models.OrderEvent) error { return nil }
