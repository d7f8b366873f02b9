package handler

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/database/models"
)

type GrainRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Unit        *string          `json:"unit"`
	IsActive    *bool            `json:"isActive"`
}

func (s *CatalogHandler) ListGrains(ctx context.Context) ([]models.Grain, error) {
	var grains []models.Grain
	if err := s.db.WithContext(ctx).Order("name").Find(&grains).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}
	return grains, nil
}

// ListActiveGrains is the public price list.
func (s *CatalogHandler) ListActiveGrains(ctx context.Context) ([]models.Grain, error) {
	var grains []models.Grain
	if s.cache.Get(ctx, cache.GRAINS_CACHE_KEY, &grains) {
		return grains, nil
	}

	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&grains).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}

	s.cache.Set(ctx, cache.GRAINS_CACHE_KEY, grains, cache.CACHE_TTL_MEDIUM)
	return grains, nil
}

func (s *CatalogHandler) GetGrain(ctx context.Context, id int64) (*models.Grain, error) {
	var grain models.Grain
	if err := s.db.WithContext(ctx).First(&grain, id).Error; err != nil {
		return nil, notFound(err, "Grain %d not found", id)
	}
	return &grain, nil
}

func (s *CatalogHandler) CreateGrain(ctx context.Context, req GrainRequest) (*models.Grain, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, apperr.Validation("Grain name is required")
	}
	if req.Price == nil || !req.Price.IsPositive() {
		return nil, apperr.Validation("Grain price must be greater than 0")
	}

	active := req.IsActive == nil || *req.IsActive
	grain := models.Grain{
		Name:        strings.TrimSpace(*req.Name),
		Description: req.Description,
		Price:       *req.Price,
		IsActive:    active,
	}
	if req.Unit != nil && strings.TrimSpace(*req.Unit) != "" {
		grain.Unit = strings.TrimSpace(*req.Unit)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uniqueGrainName(tx, grain.Name, 0); err != nil {
			return err
		}
		if err := tx.Create(&grain).Error; err != nil {
			return duplicate(err, "grain")
		}
		if err := deactivate(tx, &grain, active); err != nil {
			return apperr.Internal("failed to save grain", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, cache.GRAINS_CACHE_KEY)
	return s.GetGrain(ctx, grain.ID)
}

func (s *CatalogHandler) UpdateGrain(ctx context.Context, id int64, req GrainRequest) (*models.Grain, error) {
	var grain models.Grain
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&grain, id).Error; err != nil {
			return notFound(err, "Grain %d not found", id)
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperr.Validation("Grain name cannot be empty")
			}
			if err := uniqueGrainName(tx, name, id); err != nil {
				return err
			}
			grain.Name = name
		}
		if req.Description != nil {
			grain.Description = req.Description
		}
		if req.Price != nil {
			if !req.Price.IsPositive() {
				return apperr.Validation("Grain price must be greater than 0")
			}
			grain.Price = *req.Price
		}
		if req.Unit != nil && strings.TrimSpace(*req.Unit) != "" {
			grain.Unit = strings.TrimSpace(*req.Unit)
		}
		if req.IsActive != nil {
			grain.IsActive = *req.IsActive
		}

		if err := tx.Save(&grain).Error; err != nil {
			return duplicate(err, "grain")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, cache.GRAINS_CACHE_KEY)
	return &grain, nil
}

// DeactivateGrain hides a grain from the public list without deleting it.
func (s *CatalogHandler) DeactivateGrain(ctx context.Context, id int64) (*models.Grain, error) {
	inactive := false
	return s.UpdateGrain(ctx, id, GrainRequest{IsActive: &inactive})
}

func (s *CatalogHandler) DeleteGrain(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Grain{}, id)
	if res.Error != nil {
		return apperr.Internal("failed to delete grain", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(apperr.CodeNotFound, "Grain %d not found", id)
	}
	s.cache.Delete(ctx, cache.GRAINS_CACHE_KEY)
	return nil
}

func uniqueGrainName(tx *gorm.DB, name string, selfID int64) error {
	var n int64
	if err := tx.Model(&models.Grain{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, selfID).
		Count(&n).Error; err != nil {
		return apperr.Internal("database error", err)
	}
	if n > 0 {
		return apperr.Conflict(apperr.CodeDuplicate, "Grain %s already exists", name)
	}
	return nil
}
