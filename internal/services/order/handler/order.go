package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/config"
	"storefront-backend/internal/apperr"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/database"
	"storefront-backend/internal/database/models"
	coupons "storefront-backend/internal/services/coupon/handler"
	ledger "storefront-backend/internal/services/inventory/handler"
)

type OrderHandler struct {
	db           *gorm.DB
	cache        cache.Cache
	deliveryDays int
	now          func() time.Time
}

func NewOrderHandler(db *gorm.DB, c cache.Cache, cfg config.OrderConfig) *OrderHandler {
	return &OrderHandler{
		db:           db,
		cache:        c,
		deliveryDays: cfg.EstimatedDeliveryDays,
		now:          time.Now,
	}
}

type OrderStats struct {
	TotalOrders  int64                        `json:"totalOrders"`
	ByStatus     map[models.OrderStatus]int64 `json:"byStatus"`
	TotalRevenue decimal.Decimal              `json:"totalRevenue"`
}

// CreateOrder prices the cart from the catalog, applies an optional coupon,
// reserves stock and records coupon usage in a single transaction.
func (s *OrderHandler) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	var created models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, itemTotal, err := priceItems(tx, req.CartItems)
		if err != nil {
			return err
		}
		if !itemTotal.Equal(req.Pricing.ItemTotal) {
			return apperr.Validation("Item total %s does not match cart total %s",
				req.Pricing.ItemTotal.StringFixed(2), itemTotal.StringFixed(2))
		}

		order := req.newOrder()

		var applied *coupons.Result
		switch {
		case req.CouponCode != nil:
			applied, err = coupons.ValidateWith(tx, *req.CouponCode, itemTotal)
		case req.CouponID != nil:
			applied, err = coupons.ValidateByIDWith(tx, *req.CouponID, itemTotal)
		}
		if err != nil {
			return err
		}
		if applied != nil {
			if !applied.Discount.Equal(req.Pricing.Discount) {
				return apperr.Validation("Discount %s does not match coupon discount %s",
					req.Pricing.Discount.StringFixed(2), applied.Discount.StringFixed(2))
			}
			if p := applied.FreeProduct; p != nil {
				items = append(items, models.OrderItem{
					ProductID:   p.ID,
					ProductName: p.Name,
					Quantity:    1,
					UnitPrice:   decimal.Zero,
					IsFreeItem:  true,
				})
			}
			order.CouponID = &applied.Coupon.ID
		}

		need, err := quantitiesByProduct(items)
		if err != nil {
			return err
		}
		productIDs := sortedIDs(need)
		for _, id := range productIDs {
			if _, err := ledger.CheckAvailability(tx, id, need[id]); err != nil {
				return err
			}
		}

		order.OrderNumber = newOrderNumber(now)
		order.CreatedAt = now
		order.UpdatedAt = now
		order.EstimatedDelivery = now.AddDate(0, 0, s.deliveryDays)
		if err := tx.Omit("OrderItems").Create(&order).Error; err != nil {
			return apperr.Internal("failed to create order", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
			items[i].CreatedAt = now
			items[i].RecomputeTotal()
		}
		if err := tx.Create(&items).Error; err != nil {
			return apperr.Internal("failed to create order items", err)
		}

		ref := ledger.OrderReference(order.OrderNumber)
		for _, id := range productIDs {
			if _, err := ledger.ReserveStock(tx, id, need[id], ref); err != nil {
				return err
			}
		}

		if applied != nil {
			if _, err := coupons.RecordUsage(tx, applied.Coupon.ID, order.ID, req.UserID, applied.Discount); err != nil {
				return err
			}
		}

		order.OrderItems = items
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order created",
		"order_number", created.OrderNumber,
		"items", len(created.OrderItems),
		"grand_total", created.GrandTotal.StringFixed(2))
	s.invalidate(ctx, productIDsOf(created.OrderItems)...)
	return &created, nil
}

// UpdateStatus moves an order along the status machine and applies the
// matching inventory effect.
func (s *OrderHandler) UpdateStatus(ctx context.Context, id int64, target models.OrderStatus) (*models.Order, error) {
	if _, ok := orderTransitions[target]; !ok {
		return nil, apperr.Validation("invalid order status %q", target)
	}

	var moved []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(database.LockForUpdate(tx).Preload("OrderItems"), "id = ?", id)
		if err != nil {
			return err
		}
		if !CanTransition(order.Status, target) {
			return invalidTransition(string(order.Status), string(target))
		}

		now := s.now()
		updates := map[string]interface{}{
			"status":     target,
			"updated_at": now,
		}

		ref := ledger.OrderReference(order.OrderNumber)
		need, err := quantitiesByProduct(order.OrderItems)
		if err != nil {
			return err
		}
		productIDs := sortedIDs(need)

		var move func(tx *gorm.DB, productID int64, qty int32, ref ledger.Reference) (*models.Inventory, error)
		switch target {
		case models.OrderShipped, models.OrderDelivered:
			if order.ShippedDate == nil {
				move = ledger.ShipReservedStock
				updates["shipped_date"] = now
			}
			if target == models.OrderDelivered {
				updates["delivered_date"] = now
			}
		case models.OrderCancelled, models.OrderRefunded:
			if order.ShippedDate == nil {
				move = ledger.ReleaseReservedStock
			} else {
				move = ledger.RestockStock
			}
			updates["cancelled_date"] = now
			if target == models.OrderRefunded && order.PaymentStatus == models.PaymentPaid {
				updates["payment_status"] = models.PaymentRefunded
			}
		}

		// Guarded on the old status so two concurrent transitions cannot both apply.
		res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", id, order.Status).Updates(updates)
		if res.Error != nil {
			return apperr.Internal("failed to update order status", res.Error)
		}
		if res.RowsAffected == 0 {
			return invalidTransition(string(order.Status), string(target))
		}

		if move != nil {
			moved = productIDs
			for _, productID := range productIDs {
				if _, err := move(tx, productID, need[productID], ref); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order status updated", "order_id", id, "status", target)
	s.invalidate(ctx, moved...)
	return s.GetOrder(ctx, id)
}

func (s *OrderHandler) CancelOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.UpdateStatus(ctx, id, models.OrderCancelled)
}

func (s *OrderHandler) UpdatePaymentStatus(ctx context.Context, id int64, target models.PaymentStatus) (*models.Order, error) {
	if _, ok := paymentTransitions[target]; !ok {
		return nil, apperr.Validation("invalid payment status %q", target)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, "id = ?", id)
		if err != nil {
			return err
		}
		if !CanTransitionPayment(order.PaymentStatus, target) {
			return invalidTransition(string(order.PaymentStatus), string(target))
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status = ?", id, order.PaymentStatus).
			Updates(map[string]interface{}{"payment_status": target, "updated_at": s.now()})
		if res.Error != nil {
			return apperr.Internal("failed to update payment status", res.Error)
		}
		if res.RowsAffected == 0 {
			return invalidTransition(string(order.PaymentStatus), string(target))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.GetOrder(ctx, id)
}

// DeleteOrder removes a finished order with its items and coupon usages.
// Orders still in fulfilment hold reservations and must be cancelled first.
func (s *OrderHandler) DeleteOrder(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, "id = ?", id)
		if err != nil {
			return err
		}
		if !IsTerminal(order.Status) {
			return apperr.Conflict(apperr.CodeInUse,
				"Order %s is %s; cancel it before deleting", order.OrderNumber, order.Status)
		}

		if err := tx.Where("order_id = ?", id).Delete(&models.CouponUsage{}).Error; err != nil {
			return apperr.Internal("failed to delete coupon usages", err)
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return apperr.Internal("failed to delete order items", err)
		}
		if err := tx.Delete(order).Error; err != nil {
			return apperr.Internal("failed to delete order", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *OrderHandler) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return loadOrder(s.db.WithContext(ctx).Preload("OrderItems"), "id = ?", id)
}

func (s *OrderHandler) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return loadOrder(s.db.WithContext(ctx).Preload("OrderItems"), "order_number = ?", strings.TrimSpace(orderNumber))
}

func (s *OrderHandler) ListOrders(ctx context.Context, page database.PageRequest) ([]models.Order, database.Pagination, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, database.Pagination{}, apperr.Internal("database error", err)
	}

	var orders []models.Order
	if err := page.Scope(s.db.WithContext(ctx).Preload("OrderItems")).
		Order("created_at desc, id desc").
		Find(&orders).Error; err != nil {
		return nil, database.Pagination{}, apperr.Internal("database error", err)
	}
	return orders, page.Result(total), nil
}

func (s *OrderHandler) OrdersByPhone(ctx context.Context, phone string) ([]models.Order, error) {
	phone = strings.TrimSpace(phone)
	if !phonePattern.MatchString(phone) {
		return nil, apperr.Validation("Valid 10-digit phone number is required")
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Where("phone = ?", phone).
		Order("created_at desc, id desc").
		Find(&orders).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}
	return orders, nil
}

func (s *OrderHandler) Stats(ctx context.Context) (*OrderStats, error) {
	var rows []struct {
		Status models.OrderStatus
		Total  int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}

	stats := &OrderStats{ByStatus: make(map[models.OrderStatus]int64, len(orderTransitions))}
	for status := range orderTransitions {
		stats.ByStatus[status] = 0
	}
	for _, r := range rows {
		stats.ByStatus[r.Status] = r.Total
		stats.TotalOrders += r.Total
	}

	var revenue struct{ Revenue decimal.NullDecimal }
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("sum(grand_total) as revenue").
		Where("status NOT IN ?", []models.OrderStatus{models.OrderCancelled, models.OrderRefunded}).
		Scan(&revenue).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}
	stats.TotalRevenue = revenue.Revenue.Decimal
	return stats, nil
}

// invalidate drops the aggregates an order write changes, plus the cached
// detail of every product whose stock moved.
func (s *OrderHandler) invalidate(ctx context.Context, productIDs ...int64) {
	keys := append([]string{cache.DASHBOARD_STATS_KEY, cache.PRODUCTS_CACHE_KEY}, cache.TopProductsKeys()...)
	for _, id := range productIDs {
		keys = append(keys, fmt.Sprintf("%s%d", cache.PRODUCT_CACHE_PREFIX, id))
	}
	s.cache.Delete(ctx, keys...)
}

// priceItems snapshots name and price from the catalog for every cart line.
func priceItems(tx *gorm.DB, cart []CartItem) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]int64, 0, len(cart))
	for _, item := range cart {
		ids = append(ids, item.ProductID)
	}

	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, decimal.Zero, apperr.Internal("database error", err)
	}
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(cart))
	total := decimal.Zero
	for _, line := range cart {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, decimal.Zero, apperr.NotFound(apperr.CodeNotFound, "Product %d not found", line.ProductID)
		}
		if !p.IsActive {
			return nil, decimal.Zero, apperr.New(apperr.KindValidation, apperr.CodeProductNotAvailable,
				fmt.Sprintf("Product %s is not available", p.Name))
		}
		if line.UnitPrice != nil && !line.UnitPrice.Equal(p.Price) {
			return nil, decimal.Zero, apperr.Validation("Price of %s changed to %s", p.Name, p.Price.StringFixed(2))
		}

		item := models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   p.Price,
		}
		item.RecomputeTotal()
		total = total.Add(item.TotalPrice)
		items = append(items, item)
	}
	return items, total, nil
}

func quantitiesByProduct(items []models.OrderItem) (map[int64]int32, error) {
	sums := make(map[int64]int64, len(items))
	for _, item := range items {
		sums[item.ProductID] += int64(item.Quantity)
	}
	need := make(map[int64]int32, len(sums))
	for _, item := range items {
		total := sums[item.ProductID]
		if total > math.MaxInt32 {
			return nil, apperr.Validation("Total quantity of %s exceeds %d", item.ProductName, math.MaxInt32)
		}
		need[item.ProductID] = int32(total)
	}
	return need, nil
}

func productIDsOf(items []models.OrderItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if !slices.Contains(ids, item.ProductID) {
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

// sortedIDs gives a stable lock order across concurrent transactions.
func sortedIDs(m map[int64]int32) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

func loadOrder(tx *gorm.DB, query string, arg interface{}) (*models.Order, error) {
	var order models.Order
	if err := tx.Where(query, arg).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.CodeNotFound, "Order not found")
		}
		return nil, apperr.Internal("database error", err)
	}
	return &order, nil
}
