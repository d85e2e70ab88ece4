package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront/internal/testhelpers"
	"storefront/models"
	"storefront/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newOrder(customerID int64, items ...models.OrderItem) *models.Order {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return &models.Order{
		CustomerID:    customerID,
		CustomerName:  "Ana",
		CustomerPhone: "555-0100",
		CustomerEmail: "a@b.com",
		TotalAmount:   total,
		Status:        models.StatusPending,
		CreatedAt:     time.Now().UTC(),
		Items:         items,
	}
}

func TestOrderRepository_CreateWritesOrderAndItems(t *testing.T) {
	db := testhelpers.NewDB(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()
	cid := testhelpers.InsertCustomer(t, db, "Ana", "a@b.com", "555-0100")

	id, err := repo.Create(ctx, newOrder(cid,
		models.OrderItem{ProductID: 1, Quantity: 2, Price: dec("2.50")},
		models.OrderItem{ProductID: 5, Quantity: 1, Price: dec("4.90")},
	))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, "Ana", got.CustomerName)
	assert.True(t, got.TotalAmount.Equal(dec("9.90")), got.TotalAmount.String())

	items := testhelpers.OrderItems(t, db, id)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[1].Price.Equal(dec("4.90")))
}

func TestOrderRepository_CreateIsAtomic(t *testing.T) {
	db := testhelpers.NewDB(t)
	repo := repository.NewOrderRepository(db)
	cid := testhelpers.InsertCustomer(t, db, "Ana", "a@b.com", "555-0100")

	// the second line violates the quantity check
	_, err := repo.Create(context.Background(), newOrder(cid,
		models.OrderItem{ProductID: 1, Quantity: 1, Price: dec("1.00")},
		models.OrderItem{ProductID: 2, Quantity: 0, Price: dec("1.00")},
	))
	require.Error(t, err)

	assert.Zero(t, testhelpers.Count(t, db, "SELECT COUNT(*) FROM orders"))
	assert.Zero(t, testhelpers.Count(t, db, "SELECT COUNT(*) FROM order_items"))
}

func TestOrderRepository_GetMissing(t *testing.T) {
	repo := repository.NewOrderRepository(testhelpers.NewDB(t))
	_, err := repo.Get(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOrderRepository_ItemLines(t *testing.T) {
	db := testhelpers.NewDB(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()

	ana := testhelpers.InsertCustomer(t, db, "Ana", "a@b.com", "1")
	bob := testhelpers.InsertCustomer(t, db, "Bob", "b@b.com", "2")
	cola := testhelpers.InsertProduct(t, db, "Coca Cola 600ml", "2.50")
	bread := testhelpers.InsertProduct(t, db, "Bolillo", "0.80")

	first, err := repo.Create(ctx, newOrder(ana,
		models.OrderItem{ProductID: cola, Quantity: 2, Price: dec("2.50")},
		models.OrderItem{ProductID: bread, Quantity: 4, Price: dec("0.80")},
	))
	require.NoError(t, err)
	second, err := repo.Create(ctx, newOrder(bob,
		models.OrderItem{ProductID: 404, Quantity: 1, Price: dec("1.00")},
	))
	require.NoError(t, err)

	all, err := repo.ItemLines(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.ItemLine{OrderID: first, ProductID: cola, ProductName: "Coca Cola 600ml", Quantity: 2}, all[0])
	assert.Equal(t, models.ItemLine{OrderID: first, ProductID: bread, ProductName: "Bolillo", Quantity: 4}, all[1])
	assert.Equal(t, models.ItemLine{OrderID: second, ProductID: 404, ProductName: "", Quantity: 1}, all[2])

	bobs, err := repo.ItemLines(ctx, bob, 0)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, second, bobs[0].OrderID)

	one, err := repo.ItemLines(ctx, 0, first)
	require.NoError(t, err)
	assert.Len(t, one, 2)
}

func TestOrderRepository_ListScopesAndOrders(t *testing.T) {
	db := testhelpers.NewDB(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()

	ana := testhelpers.InsertCustomer(t, db, "Ana", "a@b.com", "1")
	bob := testhelpers.InsertCustomer(t, db, "Bob", "b@b.com", "2")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, cid := range []int64{ana, bob, ana} {
		o := newOrder(cid, models.OrderItem{ProductID: 1, Quantity: 1, Price: dec("1")})
		o.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := repo.Create(ctx, o)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.True(t, all[0].CreatedAt.Equal(base.Add(2*time.Minute)))

	anas, err := repo.List(ctx, ana)
	require.NoError(t, err)
	require.Len(t, anas, 2)
	for _, o := range anas {
		assert.Equal(t, ana, o.CustomerID)
	}
}

func TestOrderRepository_UpdateStatusIf(t *testing.T) {
	db := testhelpers.NewDB(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()
	cid := testhelpers.InsertCustomer(t, db, "Ana", "a@b.com", "1")

	id, err := repo.Create(ctx, newOrder(cid, models.OrderItem{ProductID: 1, Quantity: 1, Price: dec("1")}))
	require.NoError(t, err)

	ok, err := repo.UpdateStatusIf(ctx, id, models.StatusPending, models.StatusPreparing)
	require.NoError(t, err)
	assert.True(t, ok)

	// stale read: the order is no longer pending
	ok, err = repo.UpdateStatusIf(ctx, id, models.StatusPending, models.StatusPreparing)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UpdateStatusIf(ctx, 999, models.StatusPending, models.StatusPreparing)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, got.Status)
}
