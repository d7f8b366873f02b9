package handler

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/database/models"
)

type CategoryRequest struct {
	Name *string `json:"name"`
	// ParentID 0 detaches the category from its parent on update.
	ParentID *int64 `json:"parentId"`
}

func (s *CatalogHandler) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if s.cache.Get(ctx, cache.CATEGORIES_CACHE_KEY, &categories) {
		return categories, nil
	}

	if err := s.db.WithContext(ctx).Preload("Children").Order("name").Find(&categories).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}

	s.cache.Set(ctx, cache.CATEGORIES_CACHE_KEY, categories, cache.CACHE_TTL_LONG)
	return categories, nil
}

func (s *CatalogHandler) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Preload("Parent").Preload("Children").First(&category, id).Error; err != nil {
		return nil, notFound(err, "Category %d not found", id)
	}
	return &category, nil
}

func (s *CatalogHandler) CreateCategory(ctx context.Context, req CategoryRequest) (*models.Category, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, apperr.Validation("Category name is required")
	}

	category := models.Category{Name: strings.TrimSpace(*req.Name)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.ParentID != nil && *req.ParentID != 0 {
			if err := tx.First(&models.Category{}, *req.ParentID).Error; err != nil {
				return notFound(err, "Parent category %d not found", *req.ParentID)
			}
			category.ParentID = req.ParentID
		}
		if err := tx.Create(&category).Error; err != nil {
			return duplicate(err, "category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateCatalogCaches(ctx)
	return &category, nil
}

func (s *CatalogHandler) UpdateCategory(ctx context.Context, id int64, req CategoryRequest) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err, "Category %d not found", id)
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperr.Validation("Category name cannot be empty")
			}
			category.Name = name
		}

		if req.ParentID != nil {
			if *req.ParentID == 0 {
				category.ParentID = nil
			} else {
				if err := tx.First(&models.Category{}, *req.ParentID).Error; err != nil {
					return notFound(err, "Parent category %d not found", *req.ParentID)
				}
				if s.cycleCheck {
					if err := checkAncestry(tx, id, *req.ParentID); err != nil {
						return err
					}
				}
				parentID := *req.ParentID
				category.ParentID = &parentID
			}
		}

		if err := tx.Save(&category).Error; err != nil {
			return duplicate(err, "category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateCatalogCaches(ctx)
	return &category, nil
}

// DeleteCategory refuses to orphan subcategories or products.
func (s *CatalogHandler) DeleteCategory(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err, "Category %d not found", id)
		}

		var children, products int64
		if err := tx.Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return apperr.Internal("database error", err)
		}
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
			return apperr.Internal("database error", err)
		}
		if children > 0 || products > 0 {
			return apperr.Conflict(apperr.CodeInUse,
				"Category %s still has %d subcategories and %d products", category.Name, children, products)
		}

		if err := tx.Delete(&category).Error; err != nil {
			return apperr.Internal("failed to delete category", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.InvalidateCatalogCaches(ctx)
	return nil
}

// checkAncestry fails when parentID is id itself or one of its descendants.
func checkAncestry(tx *gorm.DB, id, parentID int64) error {
	seen := map[int64]bool{}
	for cur := &parentID; cur != nil; {
		if *cur == id {
			return apperr.Conflict(apperr.CodeCategoryCycle, "Category %d cannot be its own ancestor", id)
		}
		if seen[*cur] {
			// pre-existing loop not involving id
			return nil
		}
		seen[*cur] = true

		var parent models.Category
		if err := tx.Select("id", "parent_id").First(&parent, *cur).Error; err != nil {
			return notFound(err, "Category %d not found", *cur)
		}
		cur = parent.ParentID
	}
	return nil
}
