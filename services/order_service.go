package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"storefront/config"
	"storefront/logging"
	"storefront/models"
	"storefront/repository"
)

type OrderOptions struct {
	// ListFailureMode is config.ListFailEmpty or config.ListFailError.
	ListFailureMode  string
	AllowStatusJumps bool
}

type OrderOption func(*OrderService)

func WithEvents(p EventPublisher) OrderOption {
	return func(s *OrderService) {
		if p != nil {
			s.events = p
		}
	}
}

func WithIdempotency(store IdempotencyStore) OrderOption {
	return func(s *OrderService) { s.idem = store }
}

func WithLogger(l *zap.Logger) OrderOption {
	return func(s *OrderService) { s.logger = logging.OrNop(l) }
}

func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

// OrderService owns the order lifecycle: checkout, listings and status moves.
type OrderService struct {
	orders    OrderStore
	customers CustomerStore
	events    EventPublisher
	idem      IdempotencyStore
	opts      OrderOptions
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderService(orders OrderStore, customers CustomerStore, opts OrderOptions, options ...OrderOption) *OrderService {
	if opts.ListFailureMode == "" {
		opts.ListFailureMode = config.ListFailEmpty
	}
	s := &OrderService{
		orders:    orders,
		customers: customers,
		events:    nopPublisher{},
		opts:      opts,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

type CreateOrderInput struct {
	TotalAmount    decimal.Decimal
	Items          []models.OrderItem
	IdempotencyKey string
}

// Create places a pickup order for the customer. The customer's current
// name, phone and email are copied onto the order and never re-synced.
func (s *OrderService) Create(ctx context.Context, customerID int64, in CreateOrderInput) (models.CreateOrderResponse, error) {
	if customerID <= 0 {
		return models.CreateOrderResponse{}, ErrUnauthenticated
	}
	if err := validateCheckout(in); err != nil {
		return models.CreateOrderResponse{}, err
	}

	scope := strconv.FormatInt(customerID, 10)
	if s.idem != nil && in.IdempotencyKey != "" {
		if prev, ok, err := s.idem.Recall(ctx, scope, in.IdempotencyKey); err == nil && ok {
			if id, err := strconv.ParseInt(prev, 10, 64); err == nil {
				return models.CreateOrderResponse{ID: id, OrderNumber: models.FormatOrderNumber(id)}, nil
			}
		}
		locked, err := s.idem.TryLock(ctx, scope, in.IdempotencyKey)
		if err != nil {
			return models.CreateOrderResponse{}, fmt.Errorf("%w: idempotency lock: %v", ErrStorage, err)
		}
		if !locked {
			return models.CreateOrderResponse{}, ErrDuplicateRequest
		}
	}

	id, err := s.create(ctx, customerID, in)
	if err != nil {
		if s.idem != nil && in.IdempotencyKey != "" {
			_ = s.idem.Release(ctx, scope, in.IdempotencyKey)
		}
		return models.CreateOrderResponse{}, err
	}
	if s.idem != nil && in.IdempotencyKey != "" {
		if err := s.idem.Remember(ctx, scope, in.IdempotencyKey, strconv.FormatInt(id, 10)); err != nil {
			s.logger.Warn("remember idempotency key", zap.Int64("order_id", id), zap.Error(err))
		}
	}

	return models.CreateOrderResponse{ID: id, OrderNumber: models.FormatOrderNumber(id)}, nil
}

func (s *OrderService) create(ctx context.Context, customerID int64, in CreateOrderInput) (int64, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("customer %d: %w", customerID, ErrNotFound)
		}
		return 0, fmt.Errorf("%w: load customer: %v", ErrStorage, err)
	}

	order := &models.Order{
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		CustomerEmail: customer.Email,
		TotalAmount:   in.TotalAmount,
		Status:        models.StatusPending,
		CreatedAt:     s.now().UTC(),
		Items:         in.Items,
	}
	id, err := s.orders.Create(ctx, order)
	if err != nil {
		return 0, fmt.Errorf("%w: create order: %v", ErrStorage, err)
	}
	order.ID = id

	s.logger.Info("order created",
		zap.Int64("order_id", id),
		zap.Int64("customer_id", customerID),
		zap.Int("items", len(in.Items)),
		zap.String("total", in.TotalAmount.StringFixed(2)),
	)
	s.publish(ctx, models.OrderEvent{
		OrderID:    id,
		CustomerID: customerID,
		Type:       models.EventOrderCreated,
		Status:     order.Status,
		Total:      order.TotalAmount,
		Occurred:   order.CreatedAt,
	})
	return id, nil
}

func validateCheckout(in CreateOrderInput) error {
	if len(in.Items) == 0 {
		return validationf("order must contain at least one item")
	}
	if in.TotalAmount.IsNegative() {
		return validationf("total_amount must not be negative")
	}
	if !isCents(in.TotalAmount) {
		return validationf("total_amount must have at most two decimal places")
	}
	sum := decimal.Zero
	for i, item := range in.Items {
		if item.ProductID <= 0 {
			return validationf(fmt.Sprintf("items[%d]: product_id is required", i))
		}
		if item.Quantity < 1 {
			return validationf(fmt.Sprintf("items[%d]: quantity must be at least 1", i))
		}
		if item.Price.IsNegative() {
			return validationf(fmt.Sprintf("items[%d]: price must not be negative", i))
		}
		if !isCents(item.Price) {
			return validationf(fmt.Sprintf("items[%d]: price must have at most two decimal places", i))
		}
		sum = sum.Add(item.Subtotal())
	}
	if !sum.Equal(in.TotalAmount) {
		return validationf(fmt.Sprintf("total_amount %s does not match items total %s",
			in.TotalAmount.StringFixed(2), sum.StringFixed(2)))
	}
	return nil
}

// isCents reports whether d fits the DECIMAL(12,2) money columns unchanged.
func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// ListAll is the admin view over every order. On storage failure it either
// returns an empty list or ErrStorage, depending on ListFailureMode.
func (s *OrderService) ListAll(ctx context.Context) ([]models.OrderView, error) {
	views, err := s.list(ctx, 0)
	if err != nil {
		if s.opts.ListFailureMode == config.ListFailEmpty {
			s.logger.Error("list orders failed, returning empty list", zap.Error(err))
			return []models.OrderView{}, nil
		}
		return nil, fmt.Errorf("%w: list orders: %v", ErrStorage, err)
	}
	return views, nil
}

// ListForCustomer returns only the caller's orders, newest first.
func (s *OrderService) ListForCustomer(ctx context.Context, customerID int64) ([]models.OrderView, error) {
	if customerID <= 0 {
		return nil, ErrUnauthenticated
	}
	views, err := s.list(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list customer orders: %v", ErrStorage, err)
	}
	return views, nil
}

func (s *OrderService) list(ctx context.Context, customerID int64) ([]models.OrderView, error) {
	orders, err := s.orders.List(ctx, customerID)
	if err != nil {
		return nil, err
	}
	lines, err := s.orders.ItemLines(ctx, customerID, 0)
	if err != nil {
		return nil, err
	}
	return buildViews(orders, lines), nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (*models.OrderView, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: get order: %v", ErrStorage, err)
	}
	lines, err := s.orders.ItemLines(ctx, 0, id)
	if err != nil {
		return nil, fmt.Errorf("%w: order items: %v", ErrStorage, err)
	}
	views := buildViews([]models.Order{*order}, lines)
	return &views[0], nil
}

// UpdateStatus moves an order to target and returns the status written.
// Only transitions allowed by the lifecycle table are written; the write is
// conditional on the status read.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, target string) (models.Status, error) {
	to, ok := models.ParseStatus(strings.TrimSpace(target))
	if !ok {
		return "", validationf(fmt.Sprintf("unknown status %q", target))
	}
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return "", fmt.Errorf("%w: get order: %v", ErrStorage, err)
	}
	from := order.Status
	if !models.CanTransition(from, to, s.opts.AllowStatusJumps) {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	updated, err := s.orders.UpdateStatusIf(ctx, id, from, to)
	if err != nil {
		return "", fmt.Errorf("%w: update status: %v", ErrStorage, err)
	}
	if !updated {
		return "", fmt.Errorf("%w: order %d changed while updating", ErrConflict, id)
	}

	s.logger.Info("order status updated",
		zap.Int64("order_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	s.publish(ctx, models.OrderEvent{
		OrderID:    id,
		CustomerID: order.CustomerID,
		Type:       models.EventOrderStatusChanged,
		Status:     to,
		PrevStatus: from,
		Total:      order.TotalAmount,
		Occurred:   s.now().UTC(),
	})
	return to, nil
}

func (s *OrderService) publish(ctx context.Context, ev models.OrderEvent) {
	if err := s.events.PublishOrderEvent(ctx, ev); err != nil {
		s.logger.Warn("publish order event",
			zap.String("type", ev.Type),
			zap.Int64("order_id", ev.OrderID),
			zap.Error(err),
		)
	}
}

// buildViews attaches the "Name (xN)" summary to each order. lines must be
// grouped by order in insertion order.
func buildViews(orders []models.Order, lines []models.ItemLine) []models.OrderView {
	labels := make(map[int64][]string, len(orders))
	for _, l := range lines {
		labels[l.OrderID] = append(labels[l.OrderID], l.Label())
	}

	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		v := models.OrderView{
			ID:            o.ID,
			OrderNumber:   models.FormatOrderNumber(o.ID),
			CustomerID:    o.CustomerID,
			CustomerName:  o.CustomerName,
			CustomerPhone: o.CustomerPhone,
			CustomerEmail: o.CustomerEmail,
			TotalAmount:   o.TotalAmount,
			Status:        o.Status,
			CreatedAt:     o.CreatedAt,
		}
		if next, ok := o.Status.Next(); ok {
			v.NextStatus = next
		}
		if ls, ok := labels[o.ID]; ok {
			items := strings.Join(ls, ",")
			v.Items = &items
		}
		views = append(views, v)
	}
	return views
}
