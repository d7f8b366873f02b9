package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/database"
	"storefront-backend/internal/database/models"
	ledger "storefront-backend/internal/services/inventory/handler"
)

type ProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	// CategoryID 0 clears the category on update.
	CategoryID *int64 `json:"categoryId"`
	IsActive   *bool  `json:"isActive"`

	// Create only.
	InitialStock  *int32 `json:"initialStock"`
	LowStockAlert *int32 `json:"lowStockAlert"`
}

// ListProducts returns the active storefront catalog.
func (s *CatalogHandler) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if s.cache.Get(ctx, cache.PRODUCTS_CACHE_KEY, &products) {
		return products, nil
	}

	if err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Inventory").
		Where("is_active = ?", true).
		Order("name").
		Find(&products).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}

	s.cache.Set(ctx, cache.PRODUCTS_CACHE_KEY, products, cache.CACHE_TTL_SHORT)
	return products, nil
}

// ListAllProducts includes inactive products.
func (s *CatalogHandler) ListAllProducts(ctx context.Context, page database.PageRequest) ([]models.Product, database.Pagination, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, database.Pagination{}, apperr.Internal("database error", err)
	}

	var products []models.Product
	if err := page.Scope(s.db.WithContext(ctx).Preload("Category").Preload("Inventory")).
		Order("id").
		Find(&products).Error; err != nil {
		return nil, database.Pagination{}, apperr.Internal("database error", err)
	}
	return products, page.Result(total), nil
}

func (s *CatalogHandler) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	key := fmt.Sprintf("%s%d", cache.PRODUCT_CACHE_PREFIX, id)
	var product models.Product
	if s.cache.Get(ctx, key, &product) {
		return &product, nil
	}

	if err := s.db.WithContext(ctx).Preload("Category").Preload("Inventory").First(&product, id).Error; err != nil {
		return nil, notFound(err, "Product %d not found", id)
	}

	s.cache.Set(ctx, key, product, cache.CACHE_TTL_SHORT)
	return &product, nil
}

// CreateProduct inserts the product and its inventory row together.
func (s *CatalogHandler) CreateProduct(ctx context.Context, req ProductRequest) (*models.Product, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, apperr.Validation("Product name is required")
	}
	if req.Price == nil || !req.Price.IsPositive() {
		return nil, apperr.Validation("Product price must be greater than 0")
	}
	if req.InitialStock != nil && *req.InitialStock < 0 {
		return nil, apperr.Validation("initialStock cannot be negative")
	}
	if req.LowStockAlert != nil && *req.LowStockAlert < 0 {
		return nil, apperr.Validation("lowStockAlert cannot be negative")
	}

	active := req.IsActive == nil || *req.IsActive
	product := models.Product{
		Name:        strings.TrimSpace(*req.Name),
		Description: req.Description,
		Price:       *req.Price,
		IsActive:    active,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.CategoryID != nil && *req.CategoryID != 0 {
			if err := tx.First(&models.Category{}, *req.CategoryID).Error; err != nil {
				return notFound(err, "Category %d not found", *req.CategoryID)
			}
			product.CategoryID = req.CategoryID
		}

		if err := tx.Create(&product).Error; err != nil {
			return duplicate(err, "product")
		}
		if err := deactivate(tx, &product, active); err != nil {
			return apperr.Internal("failed to save product", err)
		}

		inv := models.Inventory{ProductID: product.ID, LowStockAlert: 10}
		if req.LowStockAlert != nil {
			inv.LowStockAlert = *req.LowStockAlert
		}
		if err := tx.Create(&inv).Error; err != nil {
			return apperr.Internal("failed to create inventory", err)
		}
		if req.LowStockAlert != nil && *req.LowStockAlert == 0 {
			if err := tx.Model(&inv).Update("low_stock_alert", 0).Error; err != nil {
				return apperr.Internal("failed to create inventory", err)
			}
		}

		if req.InitialStock != nil && *req.InitialStock > 0 {
			if _, err := ledger.RestockStock(tx, product.ID, *req.InitialStock, ledger.ManualReference("initial stock")); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateCatalogCaches(ctx, product.ID)
	return s.GetProduct(ctx, product.ID)
}

func (s *CatalogHandler) UpdateProduct(ctx context.Context, id int64, req ProductRequest) (*models.Product, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			return notFound(err, "Product %d not found", id)
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperr.Validation("Product name cannot be empty")
			}
			product.Name = name
		}
		if req.Description != nil {
			product.Description = req.Description
		}
		if req.Price != nil {
			if !req.Price.IsPositive() {
				return apperr.Validation("Product price must be greater than 0")
			}
			product.Price = *req.Price
		}
		if req.CategoryID != nil {
			if *req.CategoryID == 0 {
				product.CategoryID = nil
			} else {
				if err := tx.First(&models.Category{}, *req.CategoryID).Error; err != nil {
					return notFound(err, "Category %d not found", *req.CategoryID)
				}
				categoryID := *req.CategoryID
				product.CategoryID = &categoryID
			}
		}
		if req.IsActive != nil {
			product.IsActive = *req.IsActive
		}

		if err := tx.Save(&product).Error; err != nil {
			return duplicate(err, "product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateCatalogCaches(ctx, id)
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product that no order or coupon refers to.
// Products with history should be deactivated instead.
func (s *CatalogHandler) DeleteProduct(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			return notFound(err, "Product %d not found", id)
		}

		var orderItems, coupons int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&orderItems).Error; err != nil {
			return apperr.Internal("database error", err)
		}
		if err := tx.Model(&models.Coupon{}).Where("product_id = ?", id).Count(&coupons).Error; err != nil {
			return apperr.Internal("database error", err)
		}
		if orderItems > 0 || coupons > 0 {
			return apperr.Conflict(apperr.CodeInUse,
				"Product %s is referenced by orders or coupons; deactivate it instead", product.Name)
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.StockMovement{}).Error; err != nil {
			return apperr.Internal("failed to delete stock movements", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Inventory{}).Error; err != nil {
			return apperr.Internal("failed to delete inventory", err)
		}
		if err := tx.Delete(&product).Error; err != nil {
			return apperr.Internal("failed to delete product", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.InvalidateCatalogCaches(ctx, id)
	return nil
}
