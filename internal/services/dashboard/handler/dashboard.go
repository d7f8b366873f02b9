package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/database/models"
)

const (
	DefaultTopProducts = 10
	MaxTopProducts     = cache.MAX_TOP_PRODUCTS
)

var closedStatuses = []models.OrderStatus{models.OrderCancelled, models.OrderRefunded}

type DashboardHandler struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewDashboardHandler(db *gorm.DB, c cache.Cache) *DashboardHandler {
	return &DashboardHandler{db: db, cache: c}
}

type Stats struct {
	TotalUsers     int64           `json:"totalUsers"`
	ActiveProducts int64           `json:"activeProducts"`
	TotalOrders    int64           `json:"totalOrders"`
	PendingOrders  int64           `json:"pendingOrders"`
	LowStockItems  int64           `json:"lowStockItems"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
}

type DailySales struct {
	Date    string          `json:"date"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type SalesReport struct {
	Start     time.Time       `json:"start"`
	End       time.Time       `json:"end"`
	Orders    int64           `json:"orders"`
	ItemsSold int64           `json:"itemsSold"`
	Revenue   decimal.Decimal `json:"revenue"`
	Daily     []DailySales    `json:"daily"`
}

type TopProduct struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// Stats is cached briefly; order writes drop the cached copy.
func (s *DashboardHandler) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if s.cache.Get(ctx, cache.DASHBOARD_STATS_KEY, &stats) {
		return &stats, nil
	}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, s.db.WithContext(ctx).Model(&models.User{})},
		{&stats.ActiveProducts, s.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)},
		{&stats.TotalOrders, s.db.WithContext(ctx).Model(&models.Order{})},
		{&stats.PendingOrders, s.db.WithContext(ctx).Model(&models.Order{}).Where("status = ?", models.OrderPending)},
		{&stats.LowStockItems, s.db.WithContext(ctx).Model(&models.Inventory{}).Where("quantity <= low_stock_alert")},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, apperr.Internal("database error", err)
		}
	}

	var revenue struct{ Revenue decimal.NullDecimal }
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("sum(grand_total) as revenue").
		Where("status NOT IN ?", closedStatuses).
		Scan(&revenue).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}
	stats.TotalRevenue = revenue.Revenue.Decimal

	s.cache.Set(ctx, cache.DASHBOARD_STATS_KEY, stats, cache.CACHE_TTL_SHORT)
	return &stats, nil
}

// SalesReport totals delivered orders created in [start, end).
func (s *DashboardHandler) SalesReport(ctx context.Context, start, end time.Time) (*SalesReport, error) {
	if !end.After(start) {
		return nil, apperr.Validation("end must be after start")
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Select("id", "grand_total", "created_at").
		Where("status = ? AND created_at >= ? AND created_at < ?", models.OrderDelivered, start, end).
		Order("created_at").
		Find(&orders).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}

	report := &SalesReport{Start: start, End: end, Revenue: decimal.Zero, Daily: []DailySales{}}
	ids := make([]int64, 0, len(orders))
	byDay := map[string]int{}
	for _, o := range orders {
		ids = append(ids, o.ID)
		report.Orders++
		report.Revenue = report.Revenue.Add(o.GrandTotal)

		day := o.CreatedAt.In(start.Location()).Format(time.DateOnly)
		i, ok := byDay[day]
		if !ok {
			i = len(report.Daily)
			byDay[day] = i
			report.Daily = append(report.Daily, DailySales{Date: day, Revenue: decimal.Zero})
		}
		report.Daily[i].Orders++
		report.Daily[i].Revenue = report.Daily[i].Revenue.Add(o.GrandTotal)
	}

	if len(ids) > 0 {
		var sold struct{ Items int64 }
		if err := s.db.WithContext(ctx).Model(&models.OrderItem{}).
			Select("coalesce(sum(quantity), 0) as items").
			Where("order_id IN ?", ids).
			Scan(&sold).Error; err != nil {
			return nil, apperr.Internal("database error", err)
		}
		report.ItemsSold = sold.Items
	}
	return report, nil
}

// TopProducts ranks products by units sold on orders that were not cancelled or refunded.
func (s *DashboardHandler) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = DefaultTopProducts
	}
	if limit > MaxTopProducts {
		limit = MaxTopProducts
	}

	key := fmt.Sprintf("%s%d", cache.TOP_PRODUCTS_KEY, limit)
	var top []TopProduct
	if s.cache.Get(ctx, key, &top) {
		return top, nil
	}

	var rows []struct {
		ProductID   int64
		ProductName string
		Quantity    int64
		Revenue     decimal.NullDecimal
	}
	if err := s.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id, max(order_items.product_name) as product_name, "+
			"sum(order_items.quantity) as quantity, sum(order_items.total_price) as revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status NOT IN ?", closedStatuses).
		Group("order_items.product_id").
		Order("quantity DESC, order_items.product_id").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}

	top = make([]TopProduct, 0, len(rows))
	for _, r := range rows {
		top = append(top, TopProduct{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			Revenue:     r.Revenue.Decimal,
		})
	}

	s.cache.Set(ctx, key, top, cache.CACHE_TTL_SHORT)
	return top, nil
}
