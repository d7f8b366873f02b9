package handler

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/database/models"
)

type PromoRequest struct {
	ImageURL     *string            `json:"imageUrl"`
	Title        *string            `json:"title"`
	Description  *string            `json:"description"`
	IsActive     *bool              `json:"isActive"`
	DisplayOrder *int32             `json:"displayOrder"`
	DeviceType   *models.DeviceType `json:"deviceType"`
}

func (s *CatalogHandler) ListPromos(ctx context.Context) ([]models.Promo, error) {
	var promos []models.Promo
	if err := s.db.WithContext(ctx).Order("display_order, id").Find(&promos).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}
	return promos, nil
}

// ListActivePromos returns the banners shown on device. An empty device returns all active banners.
func (s *CatalogHandler) ListActivePromos(ctx context.Context, device models.DeviceType) ([]models.Promo, error) {
	if device != "" && !device.Valid() {
		return nil, apperr.Validation("invalid device type %q", device)
	}

	var promos []models.Promo
	if !s.cache.Get(ctx, cache.PROMOS_CACHE_KEY, &promos) {
		if err := s.db.WithContext(ctx).
			Where("is_active = ?", true).
			Order("display_order, id").
			Find(&promos).Error; err != nil {
			return nil, apperr.Internal("database error", err)
		}
		s.cache.Set(ctx, cache.PROMOS_CACHE_KEY, promos, cache.CACHE_TTL_MEDIUM)
	}

	if device == "" || device == models.DeviceBoth {
		return promos, nil
	}
	shown := promos[:0:0]
	for _, p := range promos {
		if p.DeviceType == device || p.DeviceType == models.DeviceBoth {
			shown = append(shown, p)
		}
	}
	return shown, nil
}

func (s *CatalogHandler) GetPromo(ctx context.Context, id int64) (*models.Promo, error) {
	var promo models.Promo
	if err := s.db.WithContext(ctx).First(&promo, id).Error; err != nil {
		return nil, notFound(err, "Promo %d not found", id)
	}
	return &promo, nil
}

// CreatePromo records adminID as the author.
func (s *CatalogHandler) CreatePromo(ctx context.Context, adminID int64, req PromoRequest) (*models.Promo, error) {
	if req.ImageURL == nil || strings.TrimSpace(*req.ImageURL) == "" {
		return nil, apperr.Validation("imageUrl is required")
	}

	active := req.IsActive == nil || *req.IsActive
	promo := models.Promo{
		ImageURL:    strings.TrimSpace(*req.ImageURL),
		Title:       req.Title,
		Description: req.Description,
		IsActive:    active,
		DeviceType:  models.DeviceBoth,
	}
	if req.DisplayOrder != nil {
		promo.DisplayOrder = *req.DisplayOrder
	}
	if req.DeviceType != nil {
		if !req.DeviceType.Valid() {
			return nil, apperr.Validation("invalid device type %q", *req.DeviceType)
		}
		promo.DeviceType = *req.DeviceType
	}
	if adminID != 0 {
		promo.CreatedByID = &adminID
		promo.UpdatedByID = &adminID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&promo).Error; err != nil {
			return apperr.Internal("failed to create promo", err)
		}
		if err := deactivate(tx, &promo, active); err != nil {
			return apperr.Internal("failed to create promo", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, cache.PROMOS_CACHE_KEY)
	return &promo, nil
}

func (s *CatalogHandler) UpdatePromo(ctx context.Context, adminID, id int64, req PromoRequest) (*models.Promo, error) {
	var promo models.Promo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&promo, id).Error; err != nil {
			return notFound(err, "Promo %d not found", id)
		}

		if req.ImageURL != nil {
			url := strings.TrimSpace(*req.ImageURL)
			if url == "" {
				return apperr.Validation("imageUrl cannot be empty")
			}
			promo.ImageURL = url
		}
		if req.Title != nil {
			promo.Title = req.Title
		}
		if req.Description != nil {
			promo.Description = req.Description
		}
		if req.IsActive != nil {
			promo.IsActive = *req.IsActive
		}
		if req.DisplayOrder != nil {
			promo.DisplayOrder = *req.DisplayOrder
		}
		if req.DeviceType != nil {
			if !req.DeviceType.Valid() {
				return apperr.Validation("invalid device type %q", *req.DeviceType)
			}
			promo.DeviceType = *req.DeviceType
		}
		if adminID != 0 {
			promo.UpdatedByID = &adminID
		}

		if err := tx.Save(&promo).Error; err != nil {
			return apperr.Internal("failed to update promo", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, cache.PROMOS_CACHE_KEY)
	return &promo, nil
}

func (s *CatalogHandler) DeletePromo(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Promo{}, id)
	if res.Error != nil {
		return apperr.Internal("failed to delete promo", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(apperr.CodeNotFound, "Promo %d not found", id)
	}
	s.cache.Delete(ctx, cache.PROMOS_CACHE_KEY)
	return nil
}
