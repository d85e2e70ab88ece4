package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts travel as JSON numbers, the way the storefront client sends them
	decimal.MarshalJSONWithoutQuotes = true
}

type Order struct {
	ID            int64           `json:"id"`
	CustomerID    int64           `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	CustomerEmail string          `json:"customer_email"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []OrderItem     `json:"-"`
}

type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id" binding:"required,gt=0"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
}

// Subtotal is the line amount at order time.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderView is an order enriched for display: the snapshot fields plus the
// comma-joined "Name (xN)" item summary.
type OrderView struct {
	ID            int64           `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CustomerID    int64           `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	CustomerEmail string          `json:"customer_email"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        Status          `json:"status"`
	NextStatus    Status          `json:"next_status,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         *string         `json:"items,omitempty"`
}

// ItemLine is one order line joined with its product name. ProductName is
// empty when the product has since been deleted.
type ItemLine struct {
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
}

const UnknownProductName = "Unknown product"

func (l ItemLine) Label() string {
	name := l.ProductName
	if name == "" {
		name = UnknownProductName
	}
	return fmt.Sprintf("%s (x%d)", name, l.Quantity)
}

// FormatOrderNumber renders the customer-facing order number, e.g. 7 -> ORD-0007.
func FormatOrderNumber(id int64) string {
	return fmt.Sprintf("ORD-%04d", id)
}

// CreateOrderRequest is the checkout body.
type CreateOrderRequest struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []OrderItem     `json:"items" binding:"required,min=1,dive"`
}

type CreateOrderResponse struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"order_number"`
	Message     string `json:"message,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
