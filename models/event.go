package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	OrderID    int64           `json:"order_id"`
	CustomerID int64           `json:"customer_id,omitempty"`
	Type       string          `json:"type"`
	Status     Status          `json:"status"`
	PrevStatus Status          `json:"prev_status,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Occurred   time.Time       `json:"occurred"`
}
