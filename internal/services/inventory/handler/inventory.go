package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/database"
	"storefront-backend/internal/database/models"
)

type InventoryHandler struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewInventoryHandler(db *gorm.DB, c cache.Cache) *InventoryHandler {
	return &InventoryHandler{
		db:    db,
		cache: c,
	}
}

func (s *InventoryHandler) InvalidateInventoryCaches(ctx context.Context, productIDs ...int64) {
	keys := []string{cache.PRODUCTS_CACHE_KEY, cache.DASHBOARD_STATS_KEY}
	for _, id := range productIDs {
		keys = append(keys, fmt.Sprintf("%s%d", cache.PRODUCT_CACHE_PREFIX, id))
	}
	s.cache.Delete(ctx, keys...)
}

type CreateInventoryRequest struct {
	ProductID     int64  `json:"productId" binding:"required"`
	Quantity      int32  `json:"quantity"`
	LowStockAlert *int32 `json:"lowStockAlert"`
}

type UpdateInventoryRequest struct {
	Quantity      *int32 `json:"quantity"`
	LowStockAlert *int32 `json:"lowStockAlert"`
	Notes         string `json:"notes"`
}

type StockRequest struct {
	Quantity int32  `json:"quantity" binding:"required"`
	Notes    string `json:"notes"`
}

func (s *InventoryHandler) GetInventory(ctx context.Context, productID int64) (*models.Inventory, error) {
	var inv models.Inventory
	if err := s.db.WithContext(ctx).Preload("Product.Category").Where("product_id = ?", productID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventoryNotFound(productID)
		}
		return nil, apperr.Internal("database error", err)
	}
	return &inv, nil
}

func (s *InventoryHandler) ListInventory(ctx context.Context, page database.PageRequest) ([]models.Inventory, database.Pagination, error) {
	var items []models.Inventory
	var total int64

	if err := s.db.WithContext(ctx).Model(&models.Inventory{}).Count(&total).Error; err != nil {
		return nil, database.Pagination{}, apperr.Internal("database error", err)
	}
	if err := page.Scope(s.db.WithContext(ctx).Preload("Product")).Order("product_id").Find(&items).Error; err != nil {
		return nil, database.Pagination{}, apperr.Internal("database error", err)
	}
	return items, page.Result(total), nil
}

// GetLowStockItems returns every row at or below its own alert threshold.
func (s *InventoryHandler) GetLowStockItems(ctx context.Context) ([]models.Inventory, error) {
	var items []models.Inventory
	if err := s.db.WithContext(ctx).
		Preload("Product.Category").
		Where("quantity <= low_stock_alert").
		Order("quantity").
		Find(&items).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}
	return items, nil
}

func (s *InventoryHandler) CreateInventory(ctx context.Context, req CreateInventoryRequest) (*models.Inventory, error) {
	if req.Quantity < 0 {
		return nil, apperr.Validation("quantity cannot be negative")
	}
	if req.LowStockAlert != nil && *req.LowStockAlert < 0 {
		return nil, apperr.Validation("lowStockAlert cannot be negative")
	}

	var created *models.Inventory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(apperr.CodeNotFound, "Product %d not found", req.ProductID)
			}
			return apperr.Internal("database error", err)
		}

		var existing int64
		if err := tx.Model(&models.Inventory{}).Where("product_id = ?", req.ProductID).Count(&existing).Error; err != nil {
			return apperr.Internal("database error", err)
		}
		if existing > 0 {
			return apperr.Conflict(apperr.CodeDuplicate, "Inventory already exists for product %d", req.ProductID)
		}

		inv := models.Inventory{ProductID: req.ProductID, Quantity: req.Quantity, LowStockAlert: 10}
		if req.LowStockAlert != nil {
			inv.LowStockAlert = *req.LowStockAlert
		}
		if err := tx.Create(&inv).Error; err != nil {
			return apperr.Internal("failed to create inventory", err)
		}

		if req.Quantity > 0 {
			movement := models.StockMovement{
				ProductID:     req.ProductID,
				MovementType:  models.MovementRestock,
				Quantity:      req.Quantity,
				ReferenceType: models.ReferenceManual,
				CreatedAt:     time.Now(),
			}
			if err := tx.Create(&movement).Error; err != nil {
				return apperr.Internal("failed to create stock movement record", err)
			}
		}
		created = &inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateInventoryCaches(ctx, req.ProductID)
	return created, nil
}

// UpdateInventory sets absolute stock figures. An ADJUST movement records the delta.
func (s *InventoryHandler) UpdateInventory(ctx context.Context, productID int64, req UpdateInventoryRequest) (*models.Inventory, error) {
	if req.Quantity == nil && req.LowStockAlert == nil {
		return nil, apperr.Validation("quantity or lowStockAlert must be provided")
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, apperr.Validation("quantity cannot be negative")
	}
	if req.LowStockAlert != nil && *req.LowStockAlert < 0 {
		return nil, apperr.Validation("lowStockAlert cannot be negative")
	}

	var updated *models.Inventory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Inventory
		if err := database.LockForUpdate(tx).Where("product_id = ?", productID).First(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return inventoryNotFound(productID)
			}
			return apperr.Internal("database error", err)
		}

		delta := int32(0)
		if req.Quantity != nil {
			delta = *req.Quantity - inv.Quantity
			inv.Quantity = *req.Quantity
		}
		if req.LowStockAlert != nil {
			inv.LowStockAlert = *req.LowStockAlert
		}
		inv.UpdatedAt = time.Now()

		if err := tx.Save(&inv).Error; err != nil {
			return apperr.Internal("failed to update stock", err)
		}

		if delta != 0 {
			movement := models.StockMovement{
				ProductID:     productID,
				MovementType:  models.MovementAdjust,
				Quantity:      delta,
				ReferenceType: models.ReferenceManual,
				CreatedAt:     time.Now(),
			}
			if req.Notes != "" {
				movement.Notes = &req.Notes
			}
			if err := tx.Create(&movement).Error; err != nil {
				return apperr.Internal("failed to create stock movement record", err)
			}
		}
		updated = &inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateInventoryCaches(ctx, productID)
	return updated, nil
}

func (s *InventoryHandler) DeleteInventory(ctx context.Context, productID int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := loadInventory(database.LockForUpdate(tx), productID)
		if err != nil {
			return err
		}
		if inv.ReservedQuantity > 0 {
			return apperr.Conflict(apperr.CodeInUse,
				"Cannot delete inventory with %d reserved units", inv.ReservedQuantity)
		}
		if err := tx.Delete(inv).Error; err != nil {
			return apperr.Internal("failed to delete inventory", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.InvalidateInventoryCaches(ctx, productID)
	return nil
}

func (s *InventoryHandler) ReserveStock(ctx context.Context, productID int64, req StockRequest) (*models.Inventory, error) {
	var inv *models.Inventory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		inv, err = ReserveStock(tx, productID, req.Quantity, ManualReference(req.Notes))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.InvalidateInventoryCaches(ctx, productID)
	return inv, nil
}

func (s *InventoryHandler) ReleaseStock(ctx context.Context, productID int64, req StockRequest) (*models.Inventory, error) {
	var inv *models.Inventory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		inv, err = ReleaseReservedStock(tx, productID, req.Quantity, ManualReference(req.Notes))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.InvalidateInventoryCaches(ctx, productID)
	return inv, nil
}

func (s *InventoryHandler) ListMovements(ctx context.Context, productID int64, limit int) ([]models.StockMovement, error) {
	if limit <= 0 || limit > database.MaxPageSize {
		limit = database.DefaultPageSize
	}
	var movements []models.StockMovement
	if err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id desc").
		Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}
	return movements, nil
}
