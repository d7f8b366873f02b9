package handler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/internal/cache"
	"storefront-backend/internal/database/dbtest"
	"storefront-backend/internal/database/models"
)

var day0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func seedOrder(t *testing.T, db *gorm.DB, status models.OrderStatus, at time.Time, items ...models.OrderItem) models.Order {
	t.Helper()

	total := decimal.Zero
	for i := range items {
		items[i].RecomputeTotal()
		total = total.Add(items[i].TotalPrice)
	}
	order := models.Order{
		OrderNumber:  "ORD-TEST-" + uuid.NewString()[:8],
		CustomerName: "Ravi",
		Phone:        "9123456780",
		ItemTotal:    total,
		GrandTotal:   total,
		Status:       status,
		CreatedAt:    at,
		OrderItems:   items,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func line(p models.Product, qty int32) models.OrderItem {
	return models.OrderItem{ProductID: p.ID, ProductName: p.Name, Quantity: qty, UnitPrice: p.Price}
}

func TestStats(t *testing.T) {
	db := dbtest.Open(t)
	h := NewDashboardHandler(db, cache.Noop{})
	ctx := context.Background()

	rice := dbtest.SeedProduct(t, db, "Rice", 100, 50)
	dal := dbtest.SeedProduct(t, db, "Dal", 30, 2)

	seedOrder(t, db, models.OrderPending, day0, line(rice, 1))
	seedOrder(t, db, models.OrderDelivered, day0, line(dal, 2))
	seedOrder(t, db, models.OrderCancelled, day0, line(rice, 5))

	stats, err := h.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ActiveProducts)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.Equal(t, int64(1), stats.LowStockItems)
	assert.True(t, decimal.NewFromInt(160).Equal(stats.TotalRevenue), stats.TotalRevenue.String())
}

func TestStats_Cached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := dbtest.Open(t)
	h := NewDashboardHandler(db, cache.New(client))
	ctx := context.Background()

	first, err := h.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, first.ActiveProducts)
	assert.True(t, mr.Exists(cache.DASHBOARD_STATS_KEY))

	dbtest.SeedProduct(t, db, "Rice", 100, 50)
	cached, err := h.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, cached.ActiveProducts)

	mr.FastForward(cache.CACHE_TTL_SHORT + time.Second)
	fresh, err := h.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.ActiveProducts)
}

func TestSalesReport(t *testing.T) {
	db := dbtest.Open(t)
	h := NewDashboardHandler(db, cache.Noop{})
	ctx := context.Background()

	rice := dbtest.SeedProduct(t, db, "Rice", 100, 50)

	seedOrder(t, db, models.OrderDelivered, day0, line(rice, 1))
	seedOrder(t, db, models.OrderDelivered, day0.Add(2*time.Hour), line(rice, 2))
	seedOrder(t, db, models.OrderDelivered, day0.Add(24*time.Hour), line(rice, 3))
	seedOrder(t, db, models.OrderShipped, day0, line(rice, 4))
	seedOrder(t, db, models.OrderDelivered, day0.Add(10*24*time.Hour), line(rice, 5))

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	report, err := h.SalesReport(ctx, start, start.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.Orders)
	assert.Equal(t, int64(6), report.ItemsSold)
	assert.True(t, decimal.NewFromInt(600).Equal(report.Revenue))
	require.Len(t, report.Daily, 2)
	assert.Equal(t, "2026-03-01", report.Daily[0].Date)
	assert.Equal(t, int64(2), report.Daily[0].Orders)
	assert.True(t, decimal.NewFromInt(300).Equal(report.Daily[0].Revenue))
	assert.Equal(t, "2026-03-02", report.Daily[1].Date)

	_, err = h.SalesReport(ctx, start, start)
	assert.Error(t, err)
}

func TestTopProducts(t *testing.T) {
	db := dbtest.Open(t)
	h := NewDashboardHandler(db, cache.Noop{})
	ctx := context.Background()

	rice := dbtest.SeedProduct(t, db, "Rice", 100, 50)
	dal := dbtest.SeedProduct(t, db, "Dal", 30, 50)
	ghee := dbtest.SeedProduct(t, db, "Ghee", 500, 50)

	seedOrder(t, db, models.OrderPending, day0, line(rice, 1), line(dal, 2))
	seedOrder(t, db, models.OrderDelivered, day0, line(dal, 3))
	seedOrder(t, db, models.OrderCancelled, day0, line(ghee, 9))

	top, err := h.TopProducts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, dal.ID, top[0].ProductID)
	assert.Equal(t, "Dal", top[0].ProductName)
	assert.Equal(t, int64(5), top[0].Quantity)
	assert.True(t, decimal.NewFromInt(150).Equal(top[0].Revenue))
	assert.Equal(t, rice.ID, top[1].ProductID)

	top, err = h.TopProducts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}
