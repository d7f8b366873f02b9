package handler

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/database"
	"storefront-backend/internal/database/models"
)

type CouponHandler struct {
	db *gorm.DB
}

func NewCouponHandler(db *gorm.DB) *CouponHandler {
	return &CouponHandler{db: db}
}

// CouponRequest is the create/update body. Fields of the other variant are ignored.
type CouponRequest struct {
	Type        string  `json:"type"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`

	Code                      *string          `json:"code"`
	DiscountAmount            *decimal.Decimal `json:"discountAmount"`
	MinOrderAmountForDiscount *decimal.Decimal `json:"minOrderAmountForDiscount"`

	ProductID      *int64           `json:"productId"`
	MinOrderAmount *decimal.Decimal `json:"minOrderAmount"`
}

type ValidateRequest struct {
	Code        string          `json:"code" binding:"required"`
	OrderAmount decimal.Decimal `json:"orderAmount"`
	UserID      *int64          `json:"userId"`
}

type ApplyRequest struct {
	CouponID    int64            `json:"couponId" binding:"required"`
	OrderID     int64            `json:"orderId" binding:"required"`
	UserID      *int64           `json:"userId"`
	OrderAmount *decimal.Decimal `json:"orderAmount"`
}

// CouponView is the JSON shape of a coupon; only its variant's fields are set.
type CouponView struct {
	ID          int64             `json:"id"`
	Type        models.CouponType `json:"type"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	IsActive    bool              `json:"isActive"`

	Code                      *string          `json:"code,omitempty"`
	DiscountAmount            *decimal.Decimal `json:"discountAmount,omitempty"`
	MinOrderAmountForDiscount *decimal.Decimal `json:"minOrderAmountForDiscount,omitempty"`

	ProductID      *int64           `json:"productId,omitempty"`
	ProductName    *string          `json:"productName,omitempty"`
	MinOrderAmount *decimal.Decimal `json:"minOrderAmount,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToView(c *models.Coupon) CouponView {
	v := CouponView{
		ID:          c.ID,
		Type:        c.Type,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	switch c.Type {
	case models.CouponDiscountCode:
		v.Code = c.Code
		v.DiscountAmount = nullable(c.DiscountAmount)
		v.MinOrderAmountForDiscount = nullable(c.MinOrderAmountForDiscount)
	case models.CouponAdditionalItem:
		v.Code = c.Code
		v.ProductID = c.ProductID
		v.MinOrderAmount = nullable(c.MinOrderAmount)
		if c.Product != nil {
			v.ProductName = &c.Product.Name
		}
	}
	return v
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

type ValidationView struct {
	Valid          bool            `json:"valid"`
	Coupon         CouponView      `json:"coupon"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FreeProduct    *FreeProduct    `json:"freeProduct,omitempty"`
	Message        string          `json:"message"`
}

type FreeProduct struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type UsageStats struct {
	CouponID           int64           `json:"couponId"`
	TotalUsages        int64           `json:"totalUsages"`
	TotalDiscountGiven decimal.Decimal `json:"totalDiscountGiven"`
}

func (s *CouponHandler) Validate(ctx context.Context, req ValidateRequest) (*ValidationView, error) {
	res, err := ValidateWith(s.db.WithContext(ctx), req.Code, req.OrderAmount)
	if err != nil {
		return nil, err
	}

	view := &ValidationView{
		Valid:          true,
		Coupon:         ToView(res.Coupon),
		DiscountAmount: res.Discount,
		Message:        res.Message(),
	}
	if res.FreeProduct != nil {
		view.FreeProduct = &FreeProduct{ID: res.FreeProduct.ID, Name: res.FreeProduct.Name, Price: res.FreeProduct.Price}
		view.Coupon.ProductName = &res.FreeProduct.Name
	}
	return view, nil
}

// Apply records that a coupon was used on an existing order. When OrderAmount
// is omitted the order's item total is used.
func (s *CouponHandler) Apply(ctx context.Context, req ApplyRequest) (*models.CouponUsage, error) {
	var usage *models.CouponUsage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		coupon, err := loadCoupon(tx, req.CouponID)
		if err != nil {
			return err
		}

		var order models.Order
		if err := tx.First(&order, req.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(apperr.CodeNotFound, "Order %d not found", req.OrderID)
			}
			return apperr.Internal("database error", err)
		}

		amount := order.ItemTotal
		if req.OrderAmount != nil {
			amount = *req.OrderAmount
		}

		terms, err := TermsOf(coupon)
		if err != nil {
			return err
		}
		discount := decimal.Zero
		if dc, ok := terms.(DiscountCode); ok {
			discount = dc.Discount(amount)
		}

		usage, err = RecordUsage(tx, coupon.ID, order.ID, req.UserID, discount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return usage, nil
}

func (s *CouponHandler) GetCoupon(ctx context.Context, id int64) (*CouponView, error) {
	coupon, err := loadCoupon(s.db.WithContext(ctx).Preload("Product"), id)
	if err != nil {
		return nil, err
	}
	v := ToView(coupon)
	return &v, nil
}

func (s *CouponHandler) ListCoupons(ctx context.Context, page database.PageRequest) ([]CouponView, database.Pagination, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Coupon{}).Count(&total).Error; err != nil {
		return nil, database.Pagination{}, apperr.Internal("database error", err)
	}

	var coupons []models.Coupon
	if err := page.Scope(s.db.WithContext(ctx).Preload("Product")).
		Order("created_at desc, id desc").
		Find(&coupons).Error; err != nil {
		return nil, database.Pagination{}, apperr.Internal("database error", err)
	}

	views := make([]CouponView, 0, len(coupons))
	for i := range coupons {
		views = append(views, ToView(&coupons[i]))
	}
	return views, page.Result(total), nil
}

func (s *CouponHandler) CreateCoupon(ctx context.Context, req CouponRequest) (*CouponView, error) {
	if req.Name == nil || *req.Name == "" {
		return nil, apperr.Validation("Coupon type and name are required")
	}
	kind, err := ParseCouponType(req.Type)
	if err != nil {
		return nil, err
	}
	terms, err := req.terms(kind, nil)
	if err != nil {
		return nil, err
	}

	active := req.IsActive == nil || *req.IsActive
	coupon := models.Coupon{
		Name:        *req.Name,
		Description: req.Description,
		IsActive:    active,
	}
	terms.applyTo(&coupon)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTerms(tx, terms, 0); err != nil {
			return err
		}
		if err := tx.Create(&coupon).Error; err != nil {
			return translateWriteError(err)
		}
		// Create skips false on a defaulted column and reads the default back.
		if !active {
			return tx.Model(&coupon).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCoupon(ctx, coupon.ID)
}

func (s *CouponHandler) UpdateCoupon(ctx context.Context, id int64, req CouponRequest) (*CouponView, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		coupon, err := loadCoupon(tx, id)
		if err != nil {
			return err
		}

		kind := coupon.Type
		var current Terms
		if req.Type != "" {
			if kind, err = ParseCouponType(req.Type); err != nil {
				return err
			}
		}
		if kind == coupon.Type {
			if current, err = TermsOf(coupon); err != nil {
				return err
			}
		}

		terms, err := req.terms(kind, current)
		if err != nil {
			return err
		}
		if err := checkTerms(tx, terms, coupon.ID); err != nil {
			return err
		}

		if req.Name != nil {
			if *req.Name == "" {
				return apperr.Validation("name cannot be empty")
			}
			coupon.Name = *req.Name
		}
		if req.Description != nil {
			coupon.Description = req.Description
		}
		if req.IsActive != nil {
			coupon.IsActive = *req.IsActive
		}
		terms.applyTo(coupon)

		if err := tx.Save(coupon).Error; err != nil {
			return translateWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCoupon(ctx, id)
}

// DeleteCoupon refuses to remove a coupon that any order has used; deactivate it instead.
func (s *CouponHandler) DeleteCoupon(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		coupon, err := loadCoupon(tx, id)
		if err != nil {
			return err
		}

		var usages int64
		if err := tx.Model(&models.CouponUsage{}).Where("coupon_id = ?", id).Count(&usages).Error; err != nil {
			return apperr.Internal("database error", err)
		}
		if usages > 0 {
			return apperr.Conflict(apperr.CodeCouponInUse,
				"Cannot delete coupon that has been used %d time(s). Deactivate it instead.", usages)
		}

		if err := tx.Delete(coupon).Error; err != nil {
			return apperr.Internal("failed to delete coupon", err)
		}
		return nil
	})
}

// ApplicableAdditionalItems lists free-item coupons an order of orderAmount qualifies for, highest threshold first.
func (s *CouponHandler) ApplicableAdditionalItems(ctx context.Context, orderAmount decimal.Decimal) ([]CouponView, error) {
	if !orderAmount.IsPositive() {
		return nil, apperr.Validation("Valid order amount is required")
	}

	var coupons []models.Coupon
	if err := s.db.WithContext(ctx).
		Preload("Product").
		Where("type = ? AND is_active = ? AND min_order_amount <= ?", models.CouponAdditionalItem, true, orderAmount).
		Order("min_order_amount desc").
		Find(&coupons).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}

	views := make([]CouponView, 0, len(coupons))
	for i := range coupons {
		if coupons[i].Product == nil || !coupons[i].Product.IsActive {
			continue
		}
		views = append(views, ToView(&coupons[i]))
	}
	return views, nil
}

func (s *CouponHandler) UsageStats(ctx context.Context, id int64) (*UsageStats, error) {
	if _, err := loadCoupon(s.db.WithContext(ctx), id); err != nil {
		return nil, err
	}

	var row struct {
		TotalUsages   int64
		TotalDiscount decimal.NullDecimal
	}
	if err := s.db.WithContext(ctx).Model(&models.CouponUsage{}).
		Select("count(*) as total_usages, sum(discount_applied) as total_discount").
		Where("coupon_id = ?", id).
		Scan(&row).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}

	return &UsageStats{
		CouponID:           id,
		TotalUsages:        row.TotalUsages,
		TotalDiscountGiven: row.TotalDiscount.Decimal,
	}, nil
}

// terms builds the variant from the request, falling back to current for omitted fields.
func (r CouponRequest) terms(kind models.CouponType, current Terms) (Terms, error) {
	switch kind {
	case models.CouponDiscountCode:
		var base DiscountCode
		if dc, ok := current.(DiscountCode); ok {
			base = dc
		}
		if r.Code != nil {
			base.Code = *r.Code
		}
		if r.DiscountAmount != nil {
			base.DiscountAmount = *r.DiscountAmount
		}
		if r.MinOrderAmountForDiscount != nil {
			base.MinOrderAmount = *r.MinOrderAmountForDiscount
		}
		return NewDiscountCode(base.Code, base.DiscountAmount, base.MinOrderAmount)

	case models.CouponAdditionalItem:
		var base AdditionalItem
		if ai, ok := current.(AdditionalItem); ok {
			base = ai
		}
		if r.Code != nil {
			base.Code = *r.Code
		}
		if r.ProductID != nil {
			base.ProductID = *r.ProductID
		}
		if r.MinOrderAmount != nil {
			base.MinOrderAmount = *r.MinOrderAmount
		}
		return NewAdditionalItem(base.Code, base.ProductID, base.MinOrderAmount)
	}
	return nil, apperr.Validation("unknown coupon type %s", kind)
}

// checkTerms enforces the constraints that need the database: code uniqueness
// and an active free product.
func checkTerms(tx *gorm.DB, terms Terms, selfID int64) error {
	var code string
	switch t := terms.(type) {
	case DiscountCode:
		code = t.Code
	case AdditionalItem:
		code = t.Code
	}
	if code != "" {
		var n int64
		if err := tx.Model(&models.Coupon{}).Where("code = ? AND id <> ?", code, selfID).Count(&n).Error; err != nil {
			return apperr.Internal("database error", err)
		}
		if n > 0 {
			return duplicateCode(code)
		}
	}

	if t, ok := terms.(AdditionalItem); ok {
		var product models.Product
		if err := tx.First(&product, t.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(apperr.CodeNotFound, "Product %d not found", t.ProductID)
			}
			return apperr.Internal("database error", err)
		}
		if !product.IsActive {
			return apperr.New(apperr.KindValidation, apperr.CodeProductNotAvailable,
				"Product "+product.Name+" is not active")
		}
	}
	return nil
}

func loadCoupon(tx *gorm.DB, id int64) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := tx.First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.CodeCouponNotFound, "Coupon not found")
		}
		return nil, apperr.Internal("database error", err)
	}
	return &coupon, nil
}

func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict(apperr.CodeDuplicateCouponCode, "Coupon code already exists")
	}
	return apperr.Internal("failed to save coupon", err)
}

func duplicateCode(code string) error {
	return apperr.Conflict(apperr.CodeDuplicateCouponCode, "Coupon code %s already exists", code)
}
