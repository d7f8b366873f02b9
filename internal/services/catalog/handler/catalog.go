package handler

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront-backend/config"
	"storefront-backend/internal/apperr"
	"storefront-backend/internal/cache"
)

// CatalogHandler serves products, categories, grains and promo banners.
type CatalogHandler struct {
	db         *gorm.DB
	cache      cache.Cache
	cycleCheck bool
}

func NewCatalogHandler(db *gorm.DB, c cache.Cache, cfg config.CatalogConfig) *CatalogHandler {
	return &CatalogHandler{
		db:         db,
		cache:      c,
		cycleCheck: cfg.CategoryCycleCheck,
	}
}

func (s *CatalogHandler) InvalidateCatalogCaches(ctx context.Context, productIDs ...int64) {
	keys := []string{cache.PRODUCTS_CACHE_KEY, cache.CATEGORIES_CACHE_KEY, cache.DASHBOARD_STATS_KEY}
	for _, id := range productIDs {
		keys = append(keys, fmt.Sprintf("%s%d", cache.PRODUCT_CACHE_PREFIX, id))
	}
	s.cache.Delete(ctx, keys...)
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(apperr.CodeNotFound, format, args...)
	}
	return apperr.Internal("database error", err)
}

func duplicate(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict(apperr.CodeDuplicate, "%s already exists", what)
	}
	return apperr.Internal("failed to save "+what, err)
}

// deactivate clears is_active after Create. Create skips false on columns
// with a default and reads the default back into model, so active must be
// the requested value captured before Create.
func deactivate(tx *gorm.DB, model any, active bool) error {
	if active {
		return nil
	}
	return tx.Model(model).Update("is_active", false).Error
}
